package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/carestaff/api"
	"github.com/Domenick1991/carestaff/config"
	"github.com/Domenick1991/carestaff/internal/auth"
	"github.com/Domenick1991/carestaff/internal/bootstrap"
	"github.com/Domenick1991/carestaff/internal/cache"
	"github.com/Domenick1991/carestaff/internal/kafka"
	"github.com/Domenick1991/carestaff/internal/notify"
	"github.com/Domenick1991/carestaff/internal/repository"
	"github.com/Domenick1991/carestaff/internal/service/booking"
	"github.com/Domenick1991/carestaff/internal/service/missions"
	"github.com/Domenick1991/carestaff/internal/service/offers"
	"github.com/Domenick1991/carestaff/internal/service/quotes"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		cfg.Booking.MissionsCacheTTL(),
		cache.WithInbox(cfg.Notifications.InboxSize, cfg.Notifications.InboxTTL()),
	)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	notifier := notify.NewKafkaNotifier(producer, cfg.Kafka.NotificationsTopic)

	missionRepo := repository.NewMissionRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	quoteRepo := repository.NewQuoteRepository(pool)

	missionService := missions.NewMissionService(missionRepo, redisCache, missions.WithMaxLimit(cfg.Booking.MaxPageSize))
	bookingService := booking.NewBookingService(
		bookingRepo,
		missionRepo,
		offerRepo,
		notifier,
		booking.WithEvents(producer, cfg.Kafka.EventsTopic),
		booking.WithMissionCache(redisCache),
		booking.WithCloseMissionOnConfirm(cfg.Booking.CloseMissionOnConfirm),
		booking.WithSideEffectTimeout(cfg.Booking.SideEffectTimeout()),
	)
	quoteService := quotes.NewQuoteService(quoteRepo, missionRepo, notifier,
		quotes.WithEvents(producer, cfg.Kafka.EventsTopic),
		quotes.WithSideEffectTimeout(cfg.Booking.SideEffectTimeout()),
	)
	offerService := offers.NewOfferService(offerRepo)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TTL())

	router := bootstrap.NewRouter(cfg, tokens, bootstrap.Handlers{
		Missions:      api.NewMissionHandler(missionService, bookingService),
		Offers:        api.NewOfferHandler(offerService, bookingService),
		Bookings:      api.NewBookingHandler(bookingService),
		Quotes:        api.NewQuoteHandler(quoteService),
		Notifications: api.NewNotificationHandler(redisCache),
	},
		bootstrap.HealthCheck{Name: "postgres", Check: pool.Ping},
		bootstrap.HealthCheck{Name: "redis", Check: redisCache.Ping},
		bootstrap.HealthCheck{Name: "kafka", Check: producer.CheckConnection},
	)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/carestaff/config"
	"github.com/Domenick1991/carestaff/internal/cache"
	"github.com/Domenick1991/carestaff/internal/email"
	"github.com/Domenick1991/carestaff/internal/kafka"
	"github.com/Domenick1991/carestaff/internal/notify"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		cfg.Booking.MissionsCacheTTL(),
		cache.WithInbox(cfg.Notifications.InboxSize, cfg.Notifications.InboxTTL()),
	)
	defer redisCache.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	deliverer := notify.NewDeliverer(redisCache, email.NewSender())

	log.Printf("consuming %s as %s", cfg.Kafka.NotificationsTopic, cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, kafka.NotificationHandler(deliverer.Handle)); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Printf("worker shut down")
}

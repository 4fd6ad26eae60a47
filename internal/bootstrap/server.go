package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/Domenick1991/carestaff/api"
	"github.com/Domenick1991/carestaff/config"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers are the HTTP surfaces mounted under /api/v1.
type Handlers struct {
	Missions      *api.MissionHandler
	Offers        *api.OfferHandler
	Bookings      *api.BookingHandler
	Quotes        *api.QuoteHandler
	Notifications *api.NotificationHandler
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter builds the gin engine. Everything under /api/v1 requires a bearer token.
func NewRouter(cfg *config.Config, verifier api.TokenVerifier, h Handlers, checks ...HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", healthz(checks))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile("/swagger/doc.json", filepath.Join(cfg.HTTP.SwaggerDir, "swagger.json"))
	} else {
		router.GET("/swagger/doc.json", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json; charset=utf-8", api.SwaggerJSON)
		})
	}
	router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))

	v1 := router.Group("/api/v1", api.AuthMiddleware(verifier))
	if h.Missions != nil {
		h.Missions.Register(v1.Group("/missions"))
	}
	if h.Offers != nil {
		h.Offers.Register(v1.Group("/offers"))
	}
	if h.Bookings != nil {
		h.Bookings.Register(v1.Group("/bookings"))
		h.Bookings.RegisterLines(v1.Group("/lines"))
		h.Bookings.RegisterInvoices(v1.Group("/invoices"))
	}
	if h.Quotes != nil {
		h.Quotes.Register(v1.Group("/quotes"))
	}
	if h.Notifications != nil {
		h.Notifications.Register(v1.Group("/notifications"))
	}

	return router
}

func healthz(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{}
		healthy := true
		for _, check := range checks {
			if err := check.Check(c.Request.Context()); err != nil {
				log.Printf("WARNING: health check %s failed: %v", check.Name, err)
				status[check.Name] = "down"
				healthy = false
				continue
			}
			status[check.Name] = "up"
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status})
	}
}

// Run serves handler on cfg.HTTP.Address and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http server listening on %s", cfg.HTTP.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

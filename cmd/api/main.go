// Command api runs the timeclock HTTP API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"timeclock_backend/internal/adjustments"
	"timeclock_backend/internal/alerts"
	"timeclock_backend/internal/email"
	"timeclock_backend/internal/events"
	apphttp "timeclock_backend/internal/http"
	"timeclock_backend/internal/http/router"
	"timeclock_backend/internal/notification"
	"timeclock_backend/internal/serviceorders"
	"timeclock_backend/internal/timeclock"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/config"
	"timeclock_backend/platform/db"
	"timeclock_backend/platform/httpkit"
	"timeclock_backend/platform/logger"
	"timeclock_backend/platform/validator"
)

const (
	startupRetries    = 5
	startupRetryDelay = 3 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	if err := withRetry(log, "run migrations", func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	var pool *pgxpool.Pool
	if err := withRetry(log, "connect database", func() error {
		var poolErr error
		pool, poolErr = db.NewPool(ctx, cfg)
		return poolErr
	}); err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	val := validator.New()
	bus := events.NewInMemoryBus(log)

	sender := email.NewSender(cfg, log)
	notification.New(sender, cfg, log).Register(bus)

	soModule := serviceorders.NewModule(pool, val, log)
	alertsModule := alerts.NewModule(pool, timeclockrepo.New(pool), bus, val, log)
	timeclockModule := timeclock.NewModule(pool, soModule.Service(), alertsModule.Service(), val, log)
	adjustmentsModule := adjustments.NewModule(pool, bus, val, log)

	health := db.NewPoolAdapter(pool)
	engine := router.New(router.Options{
		Config:  cfg,
		Logger:  log,
		Limiter: newLimiter(cfg, log),
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return health.Ping(pingCtx)
		},
		Modules: []apphttp.Module{
			timeclockModule,
			alertsModule,
			soModule,
			adjustmentsModule,
		},
	})

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("api server starting", "addr", cfg.GetHTTPAddr(), "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

// newLimiter prefers the Redis-backed limiter when Redis is configured so all
// instances share one throttling budget.
func newLimiter(cfg *config.Config, log *logger.Logger) httpkit.Limiter {
	if cfg.GetRedisURL() != "" {
		client, err := httpkit.NewRedisClient(cfg.GetRedisURL())
		if err == nil {
			log.Info("using redis rate limiter")
			return httpkit.NewRedisRateLimiter(client, cfg.GetRateLimitBurst(), time.Second)
		}
		log.Warn("redis unavailable, falling back to in-process rate limiter", "error", err)
	}
	return httpkit.NewIPRateLimiter(rate.Limit(cfg.GetRateLimitRPS()), cfg.GetRateLimitBurst())
}

func withRetry(log *logger.Logger, operation string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= startupRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("startup step failed, retrying",
			"operation", operation, "attempt", attempt, "error", err)
		time.Sleep(startupRetryDelay)
	}
	return err
}

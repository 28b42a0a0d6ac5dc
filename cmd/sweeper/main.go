// Command sweeper runs the background alert sweep: a scheduler that enqueues
// the sweep task at a fixed interval and a worker that processes it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"timeclock_backend/internal/alerts/repository"
	alertsservice "timeclock_backend/internal/alerts/service"
	"timeclock_backend/internal/events"
	"timeclock_backend/internal/sweep"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/config"
	"timeclock_backend/platform/db"
	"timeclock_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	bus := events.NewInMemoryBus(log)
	entries := timeclockrepo.New(pool)
	alerts := alertsservice.New(repository.New(pool), entries, bus, log)
	sweeper := sweep.NewSweeper(entries, alerts, log)

	scheduler, err := sweep.NewScheduler(cfg, log)
	if err != nil {
		log.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}

	server, mux, err := sweep.NewServer(cfg, sweeper, log)
	if err != nil {
		log.Error("worker setup failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Error("scheduler stopped", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		log.Info("sweep worker starting",
			"queue", cfg.GetAsynqQueueName(), "interval", cfg.GetSweepInterval().String())
		if err := server.Run(mux); err != nil {
			log.Error("worker stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	scheduler.Shutdown()
	server.Stop()
	server.Shutdown()
}

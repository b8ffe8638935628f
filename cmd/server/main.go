package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plradhouane-dev/gmao/internal/config"
	"github.com/plradhouane-dev/gmao/internal/infra"
	"github.com/plradhouane-dev/gmao/internal/repository"
	"github.com/plradhouane-dev/gmao/internal/router"
	"github.com/plradhouane-dev/gmao/internal/scheduler"
	"github.com/plradhouane-dev/gmao/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.EnsureDefaultAdmin(db, cfg.InitialAdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed default admin")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	if _, err := infra.LoadKey(cfg.KeyFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load secret key")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async notification pipeline: reminder scans and report deliveries
	// go through the Redis queue, failures land in the DLQ.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	notifyWorker := worker.NewNotifyWorker(mailer, cfg.NotifyEmail)
	worker.StartWorkerPool(ctx, rdb, notifyWorker, cfg.WorkerPoolSize)

	scheduler.StartReminderCron(ctx, scheduler.ReminderConfig{
		ScheduleRepo:      repository.NewScheduleRepository(db),
		PartRepo:          repository.NewPartRepository(db),
		Notifier:          dispatcher,
		LowStockThreshold: cfg.LowStockThreshold,
		Interval:          time.Duration(cfg.ReminderIntervalHours) * time.Hour,
	})

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("GMAO backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dqplatform/dq-engine/config"
	"github.com/dqplatform/dq-engine/internal/crypto"
	"github.com/dqplatform/dq-engine/internal/executor"
	"github.com/dqplatform/dq-engine/internal/infrastructure/postgres"
	ctxlog "github.com/dqplatform/dq-engine/internal/log"
	"github.com/dqplatform/dq-engine/internal/metrics"
	"github.com/dqplatform/dq-engine/internal/notify"
	"github.com/dqplatform/dq-engine/internal/scheduler"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewWorkerPool(ctx, cfg.DatabaseURL, int32(cfg.MaxWorkers)+5)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	logger.Info("db connected")

	box, err := crypto.NewBox(cfg.EncryptionKey)
	if err != nil {
		stop()
		log.Fatalf("encryption key: %v", err)
	}

	metrics.Register()

	connectionRepo := postgres.NewConnectionRepository(pool)
	checkRepo := postgres.NewCheckRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool, logger)
	resultRepo := postgres.NewResultRepository(pool)
	incidentRepo := postgres.NewIncidentRepository(pool)
	channelRepo := postgres.NewNotificationChannelRepository(pool)

	dispatcher := notify.New(channelRepo, logger)
	bus := notify.NewBus(ctx, dispatcher, logger, 4)

	connectionUC := usecase.NewConnectionUsecase(connectionRepo, box)
	incidentUC := usecase.NewIncidentUsecase(incidentRepo, bus, logger)
	exec := executor.New(resultRepo)

	worker := scheduler.NewWorker(
		jobRepo,
		checkRepo,
		connectionUC,
		resultRepo,
		incidentUC,
		exec,
		logger,
		time.Duration(cfg.PollIntervalSec)*time.Second,
		cfg.MaxWorkers,
		time.Duration(cfg.ExecutionTimeoutSec)*time.Second,
	)
	go worker.Start(ctx)

	reaper := scheduler.NewReaper(
		jobRepo,
		logger,
		time.Duration(cfg.ReaperIntervalSec)*time.Second,
		time.Duration(cfg.HeartbeatTimeoutSec)*time.Second,
	)
	go reaper.Start(ctx)

	cronDispatcher := scheduler.NewDispatcher(scheduleRepo, logger, time.Duration(cfg.DispatchIntervalSec)*time.Second)
	go cronDispatcher.Start(ctx)

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("scheduler shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}

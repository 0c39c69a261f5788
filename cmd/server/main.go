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
	"github.com/dqplatform/dq-engine/internal/health"
	"github.com/dqplatform/dq-engine/internal/infrastructure/postgres"
	ctxlog "github.com/dqplatform/dq-engine/internal/log"
	"github.com/dqplatform/dq-engine/internal/metrics"
	"github.com/dqplatform/dq-engine/internal/notify"
	httptransport "github.com/dqplatform/dq-engine/internal/transport/http"
	"github.com/dqplatform/dq-engine/internal/transport/http/handler"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
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
	jobUC := usecase.NewJobUsecase(jobRepo)
	exec := executor.New(resultRepo)
	checkUC := usecase.NewCheckUsecase(checkRepo, connectionUC, jobUC, exec)
	scheduleUC := usecase.NewScheduleUsecase(scheduleRepo)
	resultUC := usecase.NewResultUsecase(resultRepo)
	incidentUC := usecase.NewIncidentUsecase(incidentRepo, bus, logger)
	notificationUC := usecase.NewNotificationUsecase(channelRepo, dispatcher)

	handlers := httptransport.Handlers{
		Connection:   handler.NewConnectionHandler(connectionUC, logger),
		Check:        handler.NewCheckHandler(checkUC, logger),
		Job:          handler.NewJobHandler(jobUC, logger),
		Schedule:     handler.NewScheduleHandler(scheduleUC, logger),
		Result:       handler.NewResultHandler(resultUC, logger),
		Incident:     handler.NewIncidentHandler(incidentUC, logger),
		Notification: handler.NewNotificationHandler(notificationUC, logger),
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(handlers, checker, logger, cfg.APIKeyHeader, cfg.APIKeys),
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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

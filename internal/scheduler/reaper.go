package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dqplatform/dq-engine/internal/metrics"
	"github.com/dqplatform/dq-engine/internal/repository"
)

// Reaper recovers Jobs abandoned by crashed workers: a job whose heartbeat
// has gone stale is rescheduled (if retries remain) or permanently failed.
type Reaper struct {
	repo             repository.JobRepository
	logger           *slog.Logger
	interval         time.Duration
	heartbeatTimeout time.Duration
}

func NewReaper(repo repository.JobRepository, logger *slog.Logger, interval, heartbeatTimeout time.Duration) *Reaper {
	return &Reaper{
		repo:             repo,
		logger:           logger.With("component", "reaper"),
		interval:         interval,
		heartbeatTimeout: heartbeatTimeout,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval, "heartbeat_timeout", r.heartbeatTimeout)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper shut down")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	started := time.Now()
	defer func() {
		metrics.ReaperCycleDuration.Observe(time.Since(started).Seconds())
	}()

	staleCutoff := time.Now().Add(-r.heartbeatTimeout)

	rescheduled, err := r.repo.RescheduleStale(ctx, staleCutoff, 100)
	if err != nil {
		r.logger.Error("reschedule stale", "error", err)
	} else if rescheduled > 0 {
		metrics.ReaperRescuedTotal.WithLabelValues("reschedule").Add(float64(rescheduled))
		r.logger.Info("rescheduled stale jobs", "count", rescheduled)
	}

	failed, err := r.repo.FailStale(ctx, staleCutoff, 100)
	if err != nil {
		r.logger.Error("fail stale", "error", err)
	} else if failed > 0 {
		metrics.ReaperRescuedTotal.WithLabelValues("fail").Add(float64(failed))
		r.logger.Warn("permanently failed stale jobs", "count", failed, "reason", "max retries exceeded")
	}
}

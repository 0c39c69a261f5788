package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/metrics"
	"github.com/dqplatform/dq-engine/internal/repository"
	"github.com/robfig/cron/v3"
)

type Dispatcher struct {
	scheduleRepo repository.ScheduleRepository
	logger       *slog.Logger
	interval     time.Duration
}

func NewDispatcher(repo repository.ScheduleRepository, logger *slog.Logger, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		scheduleRepo: repo,
		logger:       logger.With("component", "dispatcher"),
		interval:     interval,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("dispatcher started", "interval", d.interval)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher shut down")
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context) {
	jobs, err := d.scheduleRepo.ClaimAndFire(ctx, 100, d.computeNext)
	if err != nil {
		d.logger.Error("dispatcher claim and fire", "error", err)
		return
	}
	metrics.SchedulerDueSchedules.Set(float64(len(jobs)))
	if len(jobs) > 0 {
		d.logger.Info("dispatcher fired jobs", "count", len(jobs))
	}
}

// computeNext returns the next future run time for the schedule, skipping any missed runs.
func (d *Dispatcher) computeNext(s *domain.Schedule) time.Time {
	sched, err := cron.ParseStandard(s.CronExpr)
	if err != nil {
		// Expression was validated on create; this should never happen.
		d.logger.Error("invalid cron expression in schedule", "schedule_id", s.ID, "cron_expr", s.CronExpr, "error", err)
		return time.Now().Add(time.Hour) // safe fallback
	}

	from := time.Now()
	if s.NextRunAt != nil {
		from = *s.NextRunAt
	}
	next := sched.Next(from)
	now := time.Now()
	for next.Before(now) {
		next = sched.Next(next)
	}
	return next
}

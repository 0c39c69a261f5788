// Package scheduler implements the worker pool and the
// cron-driven scheduler loop. Both are poll-based against
// Postgres rather than a separate broker, in a single-process
// dispatch style: a ticker claims a batch of due work and fans it out to
// goroutines.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/executor"
	"github.com/dqplatform/dq-engine/internal/metrics"
	"github.com/dqplatform/dq-engine/internal/repository"
	"github.com/dqplatform/dq-engine/internal/usecase"
)

// Worker is a pool of concurrent job consumers. Each claimed Job runs
// the full execution pipeline on a fresh connector session and updates
// incident state.
type Worker struct {
	id           string
	jobRepo      repository.JobRepository
	checkRepo    repository.CheckRepository
	connUC       *usecase.ConnectionUsecase
	resultRepo   repository.ResultRepository
	incidents    *usecase.IncidentUsecase
	execute      *executor.Executor
	logger       *slog.Logger
	pollInterval time.Duration
	concurrency  int
	jobTimeout   time.Duration
}

func NewWorker(
	jobRepo repository.JobRepository,
	checkRepo repository.CheckRepository,
	connUC *usecase.ConnectionUsecase,
	resultRepo repository.ResultRepository,
	incidents *usecase.IncidentUsecase,
	execute *executor.Executor,
	logger *slog.Logger,
	pollInterval time.Duration,
	concurrency int,
	jobTimeout time.Duration,
) *Worker {
	hostname, _ := os.Hostname()
	id := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	return &Worker{
		id:           id,
		jobRepo:      jobRepo,
		checkRepo:    checkRepo,
		connUC:       connUC,
		resultRepo:   resultRepo,
		incidents:    incidents,
		execute:      execute,
		logger:       logger.With("component", "worker", "worker_id", id),
		pollInterval: pollInterval,
		concurrency:  concurrency,
		jobTimeout:   jobTimeout,
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	metrics.WorkerStartTime.Set(float64(time.Now().Unix()))
	w.logger.Info("worker started", "concurrency", w.concurrency)

	for {
		select {
		case <-ctx.Done():
			metrics.WorkerShutdownsTotal.Inc()
			w.logger.Info("worker shut down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.jobRepo.Claim(ctx, w.id, w.concurrency)
	if err != nil {
		w.logger.Error("claim error", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	w.logger.Info("claimed jobs", "count", len(jobs))

	var wg sync.WaitGroup
	for _, job := range jobs {
		metrics.JobPickupLatency.Observe(time.Since(job.CreatedAt).Seconds())
		wg.Add(1)
		go func(j *domain.Job) {
			defer wg.Done()
			w.runJob(ctx, j)
		}(job)
	}
	wg.Wait()
}

// runJob implements the execution contract. Infrastructure failures
// (DB down, can't even load the Check) mark the Job failed and engage the
// retry policy; any execution-domain failure is captured on the
// CheckResult itself and the Job still completes.
func (w *Worker) runJob(ctx context.Context, job *domain.Job) {
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	started := time.Now()
	status := "failed"
	defer func() {
		metrics.JobExecutionDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	}()

	heartbeatCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	go w.heartbeat(heartbeatCtx, job.ID)

	runCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	check, err := w.checkRepo.GetByID(runCtx, job.CheckID)
	if err != nil {
		w.failOrRetry(ctx, job, fmt.Errorf("load check: %w", err))
		metrics.JobsCompletedTotal.WithLabelValues("failed").Inc()
		return
	}

	in, err := w.buildInput(runCtx, check)
	if err != nil {
		w.failOrRetry(ctx, job, fmt.Errorf("resolve connection: %w", err))
		metrics.JobsCompletedTotal.WithLabelValues("failed").Inc()
		return
	}

	checkStarted := time.Now()
	result, err := w.execute.Execute(runCtx, *in)
	metrics.CheckExecutionDuration.WithLabelValues(string(check.CheckType)).Observe(time.Since(checkStarted).Seconds())
	if err != nil {
		w.failOrRetry(ctx, job, fmt.Errorf("execute check: %w", err))
		metrics.JobsCompletedTotal.WithLabelValues("failed").Inc()
		metrics.ChecksExecutedTotal.WithLabelValues("error").Inc()
		return
	}
	result.JobID = job.ID

	created, err := w.resultRepo.Create(runCtx, result)
	if err != nil {
		w.failOrRetry(ctx, job, fmt.Errorf("persist result: %w", err))
		metrics.JobsCompletedTotal.WithLabelValues("failed").Inc()
		return
	}

	outcome := "passed"
	if !created.Passed {
		outcome = "failed"
	}
	metrics.ChecksExecutedTotal.WithLabelValues(outcome).Inc()

	w.updateIncident(runCtx, check.ID, created)

	if err := w.jobRepo.Complete(ctx, job.ID); err != nil {
		w.logger.Error("complete job failed", "job_id", job.ID, "error", err)
	}
	status = "completed"
	metrics.JobsCompletedTotal.WithLabelValues("completed").Inc()
	w.logger.Info("job completed", "job_id", job.ID, "check_id", job.CheckID, "passed", created.Passed, "severity", created.Severity)
}

// buildInput resolves the decrypted connection config(s) for a check,
// including the cross-source reference connection when configured. A
// failure to resolve the reference side is not an infra failure — it is
// almost always a stale/unknown connection id in the check's own
// parameters, which belongs on the CheckResult, not the Job.
func (w *Worker) buildInput(ctx context.Context, check *domain.Check) (*executor.Input, error) {
	connType, config, err := w.connUC.ResolveForExecution(ctx, check.ConnectionID)
	if err != nil {
		return nil, err
	}
	in := &executor.Input{
		Check:        check,
		ConnectionID: check.ConnectionID,
		ConnType:     connType,
		Config:       config,
	}

	if refID, isCrossSource := check.ReferenceConnectionID(); isCrossSource {
		refType, refConfig, refErr := w.connUC.ResolveForExecution(ctx, refID)
		if refErr != nil {
			in.ReferenceConnID = refID
			return in, nil // let the executor's cross-source path fail the check, not the job
		}
		in.ReferenceConnID = refID
		in.ReferenceType = refType
		in.ReferenceConfig = refConfig
	}
	return in, nil
}

// updateIncident resolves on pass,
// open-or-update on failure. Failures here are logged and
// swallowed — they can never undo the already-persisted CheckResult.
func (w *Worker) updateIncident(ctx context.Context, checkID string, result *domain.CheckResult) {
	var err error
	if result.Passed {
		_, err = w.incidents.Resolve(ctx, checkID, "system", nil)
	} else {
		_, err = w.incidents.OpenOrUpdate(ctx, checkID, result.Message, result.Severity, &result.ID)
	}
	if err != nil {
		w.logger.Error("incident update failed", "check_id", checkID, "error", err)
	}
}

// failOrRetry implements the retry policy: up to MaxRetries (3) retries,
// each due 60s after the failure, then a terminal Failed with the error
// persisted.
func (w *Worker) failOrRetry(ctx context.Context, job *domain.Job, cause error) {
	errMsg := cause.Error()
	if job.RetryCount < job.MaxRetries {
		retryAt := time.Now().Add(60 * time.Second)
		if err := w.jobRepo.Reschedule(ctx, job.ID, errMsg, retryAt); err != nil {
			w.logger.Error("reschedule job failed", "job_id", job.ID, "error", err)
		}
		w.logger.Warn("job failed, retrying", "job_id", job.ID, "retry", job.RetryCount+1, "max_retries", job.MaxRetries, "retry_at", retryAt, "cause", errMsg)
		return
	}
	if err := w.jobRepo.Fail(ctx, job.ID, errMsg); err != nil {
		w.logger.Error("fail job failed", "job_id", job.ID, "error", err)
	}
	w.logger.Error("job permanently failed", "job_id", job.ID, "cause", errMsg)
}

func (w *Worker) heartbeat(ctx context.Context, jobID string) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.jobRepo.UpdateHeartbeat(ctx, jobID); err != nil {
				w.logger.Error("heartbeat failed", "job_id", jobID, "error", err)
			}
		}
	}
}

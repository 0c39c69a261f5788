package repository

import (
	"context"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
// This way we get: 1) can swap DB later without touching usecase 2) We can pass a mock implementation of interface in tests
type ListJobsInput struct {
	CheckID    string // optional filter
	Status     domain.JobStatus // optional filter
	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) (*domain.Job, error)
	GetByID(ctx context.Context, jobID string) (*domain.Job, error)
	List(ctx context.Context, input ListJobsInput) ([]*domain.Job, error)

	// what does the worker pool need? Worker to poll, then claim and process the batch.
	// Reaper process to find jobs abandoned by crashed workers and fail/reschedule them.
	Claim(ctx context.Context, workerID string, limit int) ([]*domain.Job, error)
	UpdateHeartbeat(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string) error
	Fail(ctx context.Context, jobID string, errMsg string) error
	Cancel(ctx context.Context, jobID string) error
	Reschedule(ctx context.Context, jobID string, errMsg string, retryAt time.Time) error

	// Reaper methods — recover jobs from crashed workers.
	RescheduleStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error)
	FailStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error)
}

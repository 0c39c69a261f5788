package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
)

// JobUsecase is the job manager: creates, times, and cancels Job
// records. Actual execution is the worker pool's job; this usecase
// only owns the state machine and queries surfaced over the API.
type JobUsecase struct {
	repo repository.JobRepository
}

func NewJobUsecase(repo repository.JobRepository) *JobUsecase {
	return &JobUsecase{repo: repo}
}

// CreateJob inserts a pending Job for checkID, tagged with who triggered it
// ("api" or "scheduler") and, for scheduler-fired jobs, the originating
// Schedule id. The job becomes claimable by the worker pool immediately.
func (u *JobUsecase) CreateJob(ctx context.Context, checkID, triggeredBy string, scheduleID *string) (*domain.Job, error) {
	job := &domain.Job{
		CheckID:     checkID,
		Status:      domain.JobPending,
		ScheduledAt: time.Now(),
		Metadata:    domain.NewJobMetadata(triggeredBy, scheduleID),
		MaxRetries:  3,
	}
	created, err := u.repo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return created, nil
}

func (u *JobUsecase) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

type ListJobsInput struct {
	CheckID string
	Status  domain.JobStatus
	Cursor  string
	Limit   int
}

type ListJobsResult struct {
	Jobs       []*domain.Job
	NextCursor *string
}

func (u *JobUsecase) ListJobs(ctx context.Context, input ListJobsInput) (ListJobsResult, error) {
	limit := clampLimit(input.Limit)
	repoInput := repository.ListJobsInput{CheckID: input.CheckID, Status: input.Status, Limit: limit + 1}

	if input.Cursor != "" {
		ct, cid, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListJobsResult{}, domain.NewValidationError("invalid cursor")
		}
		repoInput.CursorTime = ct
		repoInput.CursorID = cid
	}

	jobs, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListJobsResult{}, fmt.Errorf("list jobs: %w", err)
	}

	var nextCursor *string
	if len(jobs) == limit+1 {
		last := jobs[limit]
		s := encodeCursor(last.ScheduledAt, last.ID)
		nextCursor = &s
		jobs = jobs[:limit]
	}
	return ListJobsResult{Jobs: jobs, NextCursor: nextCursor}, nil
}

// CancelJob is only valid from pending|running per the job state machine;
// anything else is a ValidationError (422), not a 404/409.
func (u *JobUsecase) CancelJob(ctx context.Context, id string) error {
	job, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if !job.Status.CanTransition(domain.JobCancelled) {
		return domain.NewValidationError("job %q cannot be cancelled from status %q", id, job.Status)
	}
	if err := u.repo.Cancel(ctx, id); err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	return nil
}

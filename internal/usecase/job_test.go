package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
)

type fakeJobRepo struct {
	jobs map[string]*domain.Job
	seq  int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*domain.Job)}
}

func (f *fakeJobRepo) Create(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	f.seq++
	cp := *j
	cp.ID = string(rune('a' + f.seq))
	cp.CreatedAt = time.Now()
	f.jobs[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, domain.NewNotFoundError("job", id)
	}
	return j, nil
}

func (f *fakeJobRepo) List(ctx context.Context, input repository.ListJobsInput) ([]*domain.Job, error) {
	var out []*domain.Job
	for _, j := range f.jobs {
		if input.CheckID != "" && j.CheckID != input.CheckID {
			continue
		}
		if input.Status != "" && j.Status != input.Status {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeJobRepo) Claim(ctx context.Context, workerID string, limit int) ([]*domain.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) UpdateHeartbeat(ctx context.Context, id string) error { return nil }

func (f *fakeJobRepo) Complete(ctx context.Context, id string) error {
	f.jobs[id].Status = domain.JobCompleted
	return nil
}

func (f *fakeJobRepo) Fail(ctx context.Context, id, errMsg string) error {
	f.jobs[id].Status = domain.JobFailed
	return nil
}

func (f *fakeJobRepo) Cancel(ctx context.Context, id string) error {
	j, ok := f.jobs[id]
	if !ok {
		return domain.NewNotFoundError("job", id)
	}
	j.Status = domain.JobCancelled
	return nil
}

func (f *fakeJobRepo) Reschedule(ctx context.Context, id, errMsg string, retryAt time.Time) error {
	return nil
}

func (f *fakeJobRepo) RescheduleStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return 0, nil
}

func (f *fakeJobRepo) FailStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return 0, nil
}

func TestCreateJobSetsPendingAndMetadata(t *testing.T) {
	repo := newFakeJobRepo()
	uc := NewJobUsecase(repo)

	job, err := uc.CreateJob(context.Background(), "check1", "api", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != domain.JobPending {
		t.Fatalf("expected pending status, got %q", job.Status)
	}
	if job.TriggeredBy() != "api" {
		t.Fatalf("expected triggered_by=api, got %q", job.TriggeredBy())
	}
	if job.MaxRetries != 3 {
		t.Fatalf("expected max_retries=3, got %d", job.MaxRetries)
	}
}

func TestCancelJobRejectsTerminalStatus(t *testing.T) {
	repo := newFakeJobRepo()
	uc := NewJobUsecase(repo)

	job, _ := uc.CreateJob(context.Background(), "check1", "api", nil)
	repo.jobs[job.ID].Status = domain.JobCompleted

	if err := uc.CancelJob(context.Background(), job.ID); err == nil {
		t.Fatal("expected error cancelling a completed job")
	}
}

func TestCancelJobFromPendingSucceeds(t *testing.T) {
	repo := newFakeJobRepo()
	uc := NewJobUsecase(repo)

	job, _ := uc.CreateJob(context.Background(), "check1", "api", nil)
	if err := uc.CancelJob(context.Background(), job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.jobs[job.ID].Status != domain.JobCancelled {
		t.Fatalf("expected cancelled status, got %q", repo.jobs[job.ID].Status)
	}
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	metadata, err := json.Marshal(job.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal job metadata: %w", err)
	}

	query := `
		INSERT INTO jobs (check_id, status, scheduled_at, metadata, max_retries)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, check_id, status, scheduled_at, started_at, completed_at,
		          error_message, metadata, retry_count, max_retries,
		          claimed_at, claimed_by, heartbeat_at, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, job.CheckID, job.Status, job.ScheduledAt, metadata, job.MaxRetries)
	return scanJob(row)
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `
		SELECT id, check_id, status, scheduled_at, started_at, completed_at,
		       error_message, metadata, retry_count, max_retries,
		       claimed_at, claimed_by, heartbeat_at, created_at, updated_at
		FROM jobs WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("job", id)
		}
		return nil, err
	}
	return j, nil
}

func (r *JobRepository) List(ctx context.Context, input repository.ListJobsInput) ([]*domain.Job, error) {
	args := []any{}
	where := []string{"TRUE"}

	if input.CheckID != "" {
		args = append(args, input.CheckID)
		where = append(where, fmt.Sprintf("check_id = $%d", len(args)))
	}
	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(scheduled_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, check_id, status, scheduled_at, started_at, completed_at,
		       error_message, metadata, retry_count, max_retries,
		       claimed_at, claimed_by, heartbeat_at, created_at, updated_at
		FROM jobs
		WHERE %s
		ORDER BY scheduled_at DESC, id DESC
		LIMIT $%d`, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Claim implements the FOR UPDATE SKIP LOCKED pattern, same idiom as the
// schedule claim: prevents double-execution across concurrently polling
// workers.
func (r *JobRepository) Claim(ctx context.Context, workerID string, limit int) ([]*domain.Job, error) {
	query := `
		UPDATE jobs
		SET    status       = 'running',
		       claimed_at   = NOW(),
		       claimed_by   = $1,
		       heartbeat_at = NOW(),
		       started_at   = COALESCE(started_at, NOW()),
		       updated_at   = NOW()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE  status       = 'pending'
			  AND  scheduled_at <= NOW()
			ORDER BY scheduled_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, check_id, status, scheduled_at, started_at, completed_at,
		          error_message, metadata, retry_count, max_retries,
		          claimed_at, claimed_by, heartbeat_at, created_at, updated_at`

	rows, err := r.pool.Query(ctx, query, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("claim jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) UpdateHeartbeat(ctx context.Context, jobID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs SET heartbeat_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'running'`, jobID)
	return err
}

func (r *JobRepository) Complete(ctx context.Context, jobID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1`, jobID)
	return err
}

func (r *JobRepository) Fail(ctx context.Context, jobID string, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs SET status = 'failed', error_message = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1`, jobID, errMsg)
	return err
}

func (r *JobRepository) Cancel(ctx context.Context, jobID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE jobs SET status = 'cancelled', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'running')`, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewValidationError("job %q is not pending or running", jobID)
	}
	return nil
}

// Reschedule implements the fixed 60s-countdown retry policy (up to
// 3 retries): retry_count increments, scheduled_at moves to retryAt, and
// the job returns to pending for another worker to claim.
func (r *JobRepository) Reschedule(ctx context.Context, jobID string, errMsg string, retryAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs
		SET    status        = 'pending',
		       retry_count   = retry_count + 1,
		       error_message = $2,
		       scheduled_at  = $3,
		       claimed_at    = NULL,
		       claimed_by    = NULL,
		       heartbeat_at  = NULL,
		       updated_at    = NOW()
		WHERE id = $1`, jobID, errMsg, retryAt)
	return err
}

func (r *JobRepository) RescheduleStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET    status        = 'pending',
		       retry_count   = retry_count + 1,
		       error_message = 'worker heartbeat timeout',
		       scheduled_at  = NOW(),
		       claimed_at    = NULL,
		       claimed_by    = NULL,
		       heartbeat_at  = NULL,
		       updated_at    = NOW()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE  status       = 'running'
			  AND  heartbeat_at < $1
			  AND  retry_count  < max_retries
			ORDER BY heartbeat_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, staleCutoff, limit)
	return int(tag.RowsAffected()), err
}

func (r *JobRepository) FailStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET    status        = 'failed',
		       error_message = 'worker heartbeat timeout: max retries exceeded',
		       completed_at  = NOW(),
		       updated_at    = NOW()
		WHERE id IN (
			SELECT id FROM jobs
			WHERE  status       = 'running'
			  AND  heartbeat_at < $1
			  AND  retry_count  >= max_retries
			ORDER BY heartbeat_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, staleCutoff, limit)
	return int(tag.RowsAffected()), err
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	var metadata []byte
	err := row.Scan(
		&j.ID, &j.CheckID, &j.Status, &j.ScheduledAt, &j.StartedAt, &j.CompletedAt,
		&j.ErrorMessage, &metadata, &j.RetryCount, &j.MaxRetries,
		&j.ClaimedAt, &j.ClaimedBy, &j.HeartbeatAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &j.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal job metadata: %w", err)
		}
	}
	return &j, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewScheduleRepository(pool *pgxpool.Pool, logger *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{pool: pool, logger: logger.With("component", "schedule_repo")}
}

func (r *ScheduleRepository) Create(ctx context.Context, s *domain.Schedule) (*domain.Schedule, error) {
	query := `
		INSERT INTO schedules (check_id, cron_expr, timezone, is_active, next_run_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, check_id, cron_expr, timezone, is_active, last_run_at, next_run_at, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, s.CheckID, s.CronExpr, s.Timezone, s.IsActive, s.NextRunAt)

	created, err := scanSchedule(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.NewConflictError("schedule already exists for check %q", s.CheckID)
		}
		return nil, err
	}
	return created, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `
		SELECT id, check_id, cron_expr, timezone, is_active, last_run_at, next_run_at, created_at, updated_at
		FROM schedules WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanSchedule(row)
}

func (r *ScheduleRepository) List(ctx context.Context, input repository.ListSchedulesInput) ([]*domain.Schedule, error) {
	args := []any{}
	where := []string{"TRUE"}

	if input.CheckID != "" {
		args = append(args, input.CheckID)
		where = append(where, fmt.Sprintf("check_id = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, check_id, cron_expr, timezone, is_active, last_run_at, next_run_at, created_at, updated_at
		FROM schedules
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`,
		strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE schedules SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		id, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("schedule", id)
	}
	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("schedule", id)
	}
	return nil
}

// ClaimAndFire atomically claims due schedules, inserts a job for each, and
// advances next_run_at — all in one transaction, so a crash mid-tick leaves
// no schedule fired without its job or vice versa.
func (r *ScheduleRepository) ClaimAndFire(ctx context.Context, limit int, computeNext func(*domain.Schedule) time.Time) ([]*domain.Job, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT id, check_id, cron_expr, timezone, is_active, last_run_at, next_run_at, created_at, updated_at
		FROM schedules
		WHERE is_active AND next_run_at <= NOW()
		ORDER BY next_run_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim schedules: %w", err)
	}

	var schedules []*domain.Schedule
	for rows.Next() {
		s, scanErr := scanSchedule(rows)
		if scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		schedules = append(schedules, s)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	var firedJobs []*domain.Job

	for _, s := range schedules {
		next := computeNext(s)

		scheduleID := s.ID
		metadata := domain.NewJobMetadata("scheduler", &scheduleID)
		metadataJSON, mErr := json.Marshal(metadata)
		if mErr != nil {
			return nil, fmt.Errorf("marshal job metadata for schedule %s: %w", s.ID, mErr)
		}

		var j domain.Job
		var jobMetadata []byte
		scanErr := tx.QueryRow(ctx, `
			INSERT INTO jobs (check_id, status, scheduled_at, metadata, max_retries)
			VALUES ($1, 'pending', NOW(), $2, $3)
			RETURNING id, check_id, status, scheduled_at, started_at, completed_at,
			          error_message, metadata, retry_count, max_retries,
			          claimed_at, claimed_by, heartbeat_at, created_at, updated_at`,
			s.CheckID, metadataJSON, defaultMaxRetries,
		).Scan(
			&j.ID, &j.CheckID, &j.Status, &j.ScheduledAt, &j.StartedAt, &j.CompletedAt,
			&j.ErrorMessage, &jobMetadata, &j.RetryCount, &j.MaxRetries,
			&j.ClaimedAt, &j.ClaimedBy, &j.HeartbeatAt, &j.CreatedAt, &j.UpdatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("insert job for schedule %s: %w", s.ID, scanErr)
		}
		if len(jobMetadata) > 0 {
			if err := json.Unmarshal(jobMetadata, &j.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal job metadata: %w", err)
			}
		}
		firedJobs = append(firedJobs, &j)

		if _, updateErr := tx.Exec(ctx,
			`UPDATE schedules SET next_run_at = $2, last_run_at = NOW(), updated_at = NOW() WHERE id = $1`,
			s.ID, next,
		); updateErr != nil {
			return nil, fmt.Errorf("advance schedule %s: %w", s.ID, updateErr)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return firedJobs, nil
}

const defaultMaxRetries = 3

func scanSchedule(row rowScanner) (*domain.Schedule, error) {
	var s domain.Schedule
	err := row.Scan(
		&s.ID, &s.CheckID, &s.CronExpr, &s.Timezone, &s.IsActive,
		&s.LastRunAt, &s.NextRunAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("schedule", "")
		}
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	return &s, nil
}

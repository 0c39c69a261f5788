package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IncidentRepository struct {
	pool *pgxpool.Pool
}

func NewIncidentRepository(pool *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{pool: pool}
}

func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `
		SELECT id, check_id, result_id, status, severity, title, description,
		       first_failure_at, last_failure_at, failure_count,
		       resolved_at, resolved_by, resolution_notes,
		       acknowledged_at, acknowledged_by, created_at, updated_at
		FROM incidents WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("incident", id)
		}
		return nil, err
	}
	return inc, nil
}

func (r *IncidentRepository) List(ctx context.Context, input repository.ListIncidentsInput) ([]*domain.Incident, error) {
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
		where = append(where, fmt.Sprintf("(last_failure_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, check_id, result_id, status, severity, title, description,
		       first_failure_at, last_failure_at, failure_count,
		       resolved_at, resolved_by, resolution_notes,
		       acknowledged_at, acknowledged_by, created_at, updated_at
		FROM incidents
		WHERE %s
		ORDER BY last_failure_at DESC, id DESC
		LIMIT $%d`, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var out []*domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

func (r *IncidentRepository) GetOpenForCheck(ctx context.Context, checkID string) (*domain.Incident, error) {
	query := `
		SELECT id, check_id, result_id, status, severity, title, description,
		       first_failure_at, last_failure_at, failure_count,
		       resolved_at, resolved_by, resolution_notes,
		       acknowledged_at, acknowledged_by, created_at, updated_at
		FROM incidents
		WHERE check_id = $1 AND status != 'resolved'`
	row := r.pool.QueryRow(ctx, query, checkID)
	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("open incident for check", checkID)
		}
		return nil, err
	}
	return inc, nil
}

// OpenOrIncrement atomically opens or increments: a failing check
// either opens a fresh incident or bumps the existing non-resolved one's
// failure_count and last_failure_at. One transaction takes a per-check
// advisory lock, looks up the open incident, then updates it by id or
// inserts a new one, so concurrent calls for the same check run one after
// the other and the second one increments what the first one inserted.
func (r *IncidentRepository) OpenOrIncrement(ctx context.Context, incident *domain.Incident) (*domain.Incident, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// SELECT ... FOR UPDATE below locks nothing while no open incident
	// exists, so the check itself is locked for the rest of the transaction.
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, incident.CheckID); err != nil {
		return nil, false, fmt.Errorf("lock check: %w", err)
	}

	existing, getErr := r.getOpenForCheckTx(ctx, tx, incident.CheckID)
	if getErr != nil && !errors.Is(getErr, pgx.ErrNoRows) {
		err = getErr
		return nil, false, fmt.Errorf("lookup open incident: %w", getErr)
	}

	if existing != nil {
		row := tx.QueryRow(ctx, `
			UPDATE incidents
			SET    result_id = $2, last_failure_at = $3, failure_count = failure_count + 1, updated_at = NOW()
			WHERE  id = $1
			RETURNING id, check_id, result_id, status, severity, title, description,
			          first_failure_at, last_failure_at, failure_count,
			          resolved_at, resolved_by, resolution_notes,
			          acknowledged_at, acknowledged_by, created_at, updated_at`,
			existing.ID, incident.ResultID, incident.LastFailureAt,
		)
		updated, scanErr := scanIncident(row)
		if scanErr != nil {
			err = scanErr
			return nil, false, fmt.Errorf("increment incident: %w", scanErr)
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("commit tx: %w", err)
		}
		return updated, false, nil
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO incidents (
			check_id, result_id, status, severity, title, description,
			first_failure_at, last_failure_at, failure_count
		) VALUES ($1, $2, 'open', $3, $4, $5, $6, $6, 1)
		RETURNING id, check_id, result_id, status, severity, title, description,
		          first_failure_at, last_failure_at, failure_count,
		          resolved_at, resolved_by, resolution_notes,
		          acknowledged_at, acknowledged_by, created_at, updated_at`,
		incident.CheckID, incident.ResultID, incident.Severity, incident.Title, incident.Description,
		incident.LastFailureAt,
	)
	created, scanErr := scanIncident(row)
	if scanErr != nil {
		err = scanErr
		return nil, false, fmt.Errorf("insert incident: %w", scanErr)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}
	return created, true, nil
}

func (r *IncidentRepository) getOpenForCheckTx(ctx context.Context, tx pgx.Tx, checkID string) (*domain.Incident, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, check_id, result_id, status, severity, title, description,
		       first_failure_at, last_failure_at, failure_count,
		       resolved_at, resolved_by, resolution_notes,
		       acknowledged_at, acknowledged_by, created_at, updated_at
		FROM incidents
		WHERE check_id = $1 AND status != 'resolved'
		FOR UPDATE`, checkID)
	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	return inc, nil
}

func (r *IncidentRepository) Resolve(ctx context.Context, checkID, resolvedBy string, notes *string) (*domain.Incident, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE incidents
		SET    status = 'resolved', resolved_at = NOW(), resolved_by = $2, resolution_notes = $3, updated_at = NOW()
		WHERE  check_id = $1 AND status != 'resolved'
		RETURNING id, check_id, result_id, status, severity, title, description,
		          first_failure_at, last_failure_at, failure_count,
		          resolved_at, resolved_by, resolution_notes,
		          acknowledged_at, acknowledged_by, created_at, updated_at`,
		checkID, resolvedBy, notes,
	)
	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("open incident for check", checkID)
		}
		return nil, err
	}
	return inc, nil
}

func (r *IncidentRepository) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus, by string, notes *string) (*domain.Incident, error) {
	var query string
	var args []any
	switch status {
	case domain.IncidentResolved:
		query = `
			UPDATE incidents
			SET status = $2, resolved_at = NOW(), resolved_by = $3, resolution_notes = $4, updated_at = NOW()
			WHERE id = $1`
		args = []any{id, status, by, notes}
	case domain.IncidentAcknowledged:
		query = `
			UPDATE incidents
			SET status = $2, acknowledged_at = NOW(), acknowledged_by = $3, updated_at = NOW()
			WHERE id = $1`
		args = []any{id, status, by}
	default:
		query = `UPDATE incidents SET status = $2, updated_at = NOW() WHERE id = $1`
		args = []any{id, status}
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update incident status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.NewNotFoundError("incident", id)
	}
	return r.GetByID(ctx, id)
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var inc domain.Incident
	err := row.Scan(
		&inc.ID, &inc.CheckID, &inc.ResultID, &inc.Status, &inc.Severity, &inc.Title, &inc.Description,
		&inc.FirstFailureAt, &inc.LastFailureAt, &inc.FailureCount,
		&inc.ResolvedAt, &inc.ResolvedBy, &inc.ResolutionNotes,
		&inc.AcknowledgedAt, &inc.AcknowledgedBy, &inc.CreatedAt, &inc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan incident: %w", err)
	}
	return &inc, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CheckRepository struct {
	pool *pgxpool.Pool
}

func NewCheckRepository(pool *pgxpool.Pool) *CheckRepository {
	return &CheckRepository{pool: pool}
}

func (r *CheckRepository) Create(ctx context.Context, c *domain.Check) (*domain.Check, error) {
	params, err := json.Marshal(c.Parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal check parameters: %w", err)
	}
	ruleParams, err := json.Marshal(c.RuleParameters)
	if err != nil {
		return nil, fmt.Errorf("marshal rule parameters: %w", err)
	}
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal check metadata: %w", err)
	}

	query := `
		INSERT INTO checks (
			connection_id, name, description, check_type, check_mode, time_scale,
			target_schema, target_table, target_column, partition_by_column,
			parameters, rule_parameters, is_active, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, connection_id, name, description, check_type, check_mode, time_scale,
		          target_schema, target_table, target_column, partition_by_column,
		          parameters, rule_parameters, is_active, metadata, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query,
		c.ConnectionID, c.Name, c.Description, c.CheckType, c.CheckMode, c.TimeScale,
		c.TargetSchema, c.TargetTable, c.TargetColumn, c.PartitionByColumn,
		params, ruleParams, c.IsActive, metadata,
	)
	return scanCheck(row)
}

func (r *CheckRepository) GetByID(ctx context.Context, id string) (*domain.Check, error) {
	query := `
		SELECT id, connection_id, name, description, check_type, check_mode, time_scale,
		       target_schema, target_table, target_column, partition_by_column,
		       parameters, rule_parameters, is_active, metadata, created_at, updated_at
		FROM checks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("check", id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CheckRepository) List(ctx context.Context, input repository.ListChecksInput) ([]*domain.Check, error) {
	args := []any{}
	where := []string{"TRUE"}
	if input.ConnectionID != "" {
		args = append(args, input.ConnectionID)
		where = append(where, fmt.Sprintf("connection_id = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, connection_id, name, description, check_type, check_mode, time_scale,
		       target_schema, target_table, target_column, partition_by_column,
		       parameters, rule_parameters, is_active, metadata, created_at, updated_at
		FROM checks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CheckRepository) Update(ctx context.Context, c *domain.Check) (*domain.Check, error) {
	params, err := json.Marshal(c.Parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal check parameters: %w", err)
	}
	ruleParams, err := json.Marshal(c.RuleParameters)
	if err != nil {
		return nil, fmt.Errorf("marshal rule parameters: %w", err)
	}

	query := `
		UPDATE checks
		SET name = $2, description = $3, check_mode = $4, time_scale = $5,
		    target_schema = $6, target_table = $7, target_column = $8, partition_by_column = $9,
		    parameters = $10, rule_parameters = $11, is_active = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING id, connection_id, name, description, check_type, check_mode, time_scale,
		          target_schema, target_table, target_column, partition_by_column,
		          parameters, rule_parameters, is_active, metadata, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Description, c.CheckMode, c.TimeScale,
		c.TargetSchema, c.TargetTable, c.TargetColumn, c.PartitionByColumn,
		params, ruleParams, c.IsActive,
	)
	updated, err := scanCheck(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("check", c.ID)
		}
		return nil, err
	}
	return updated, nil
}

func (r *CheckRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE checks SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("check", id)
	}
	return nil
}

func (r *CheckRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM checks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("check", id)
	}
	return nil
}

func scanCheck(row rowScanner) (*domain.Check, error) {
	var c domain.Check
	var params, ruleParams, metadata []byte
	err := row.Scan(
		&c.ID, &c.ConnectionID, &c.Name, &c.Description, &c.CheckType, &c.CheckMode, &c.TimeScale,
		&c.TargetSchema, &c.TargetTable, &c.TargetColumn, &c.PartitionByColumn,
		&params, &ruleParams, &c.IsActive, &metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan check: %w", err)
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &c.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshal check parameters: %w", err)
		}
	}
	if len(ruleParams) > 0 {
		if err := json.Unmarshal(ruleParams, &c.RuleParameters); err != nil {
			return nil, fmt.Errorf("unmarshal rule parameters: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal check metadata: %w", err)
		}
	}
	return &c, nil
}

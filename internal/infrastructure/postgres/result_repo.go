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

type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts an immutable, append-only check result (results are
// never updated or deleted once written).
func (r *ResultRepository) Create(ctx context.Context, res *domain.CheckResult) (*domain.CheckResult, error) {
	details, err := json.Marshal(res.ResultDetails)
	if err != nil {
		return nil, fmt.Errorf("marshal result details: %w", err)
	}

	query := `
		INSERT INTO results (
			check_id, job_id, connection_id, target_table, target_column, check_type,
			actual_value, expected_value, passed, severity, message,
			execution_time_ms, rows_scanned, result_details, error_message, executed_sql
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, executed_at, check_id, job_id, connection_id, target_table, target_column,
		          check_type, actual_value, expected_value, passed, severity, message,
		          execution_time_ms, rows_scanned, result_details, error_message, executed_sql`

	row := r.pool.QueryRow(ctx, query,
		res.CheckID, res.JobID, res.ConnectionID, res.TargetTable, res.TargetColumn, res.CheckType,
		res.ActualValue, res.ExpectedValue, res.Passed, res.Severity, res.Message,
		res.ExecutionTimeMS, res.RowsScanned, details, res.ErrorMessage, res.ExecutedSQL,
	)
	return scanResult(row)
}

func (r *ResultRepository) GetByID(ctx context.Context, id string) (*domain.CheckResult, error) {
	query := `
		SELECT id, executed_at, check_id, job_id, connection_id, target_table, target_column,
		       check_type, actual_value, expected_value, passed, severity, message,
		       execution_time_ms, rows_scanned, result_details, error_message, executed_sql
		FROM results WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("result", id)
		}
		return nil, err
	}
	return res, nil
}

func (r *ResultRepository) List(ctx context.Context, input repository.ListResultsInput) ([]*domain.CheckResult, error) {
	args := []any{}
	where := []string{"TRUE"}

	if input.CheckID != "" {
		args = append(args, input.CheckID)
		where = append(where, fmt.Sprintf("check_id = $%d", len(args)))
	}
	if input.ConnectionID != "" {
		args = append(args, input.ConnectionID)
		where = append(where, fmt.Sprintf("connection_id = $%d", len(args)))
	}
	if input.Severity != "" {
		args = append(args, input.Severity)
		where = append(where, fmt.Sprintf("severity = $%d", len(args)))
	}
	if input.Since != nil {
		args = append(args, *input.Since)
		where = append(where, fmt.Sprintf("executed_at >= $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(executed_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, executed_at, check_id, job_id, connection_id, target_table, target_column,
		       check_type, actual_value, expected_value, passed, severity, message,
		       execution_time_ms, rows_scanned, result_details, error_message, executed_sql
		FROM results
		WHERE %s
		ORDER BY executed_at DESC, id DESC
		LIMIT $%d`, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []*domain.CheckResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ResultRepository) Summary(ctx context.Context, checkID string, since time.Time) (*domain.ResultsSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE passed),
			COUNT(*) FILTER (WHERE NOT passed),
			COALESCE(AVG(execution_time_ms), 0),
			COUNT(*) FILTER (WHERE severity = 'warning'),
			COUNT(*) FILTER (WHERE severity = 'error'),
			COUNT(*) FILTER (WHERE severity = 'fatal')
		FROM results
		WHERE check_id = $1 AND executed_at >= $2`

	var total, passed, failed int64
	var avgMS float64
	var warning, errorCount, fatal int64
	err := r.pool.QueryRow(ctx, query, checkID, since).Scan(
		&total, &passed, &failed, &avgMS, &warning, &errorCount, &fatal,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize results: %w", err)
	}

	summary := &domain.ResultsSummary{
		Total:              total,
		Passed:             passed,
		Failed:             failed,
		AvgExecutionTimeMS: avgMS,
		BySeverity: map[domain.ResultSeverity]int64{
			domain.SeverityWarning: warning,
			domain.SeverityError:   errorCount,
			domain.SeverityFatal:   fatal,
		},
	}
	if total > 0 {
		summary.PassRate = float64(passed) / float64(total) * 100
	}
	return summary, nil
}

// RecentActualValues backs the anomaly rule's _historical_values injection
// most-recent-first, non-null actual_value rows within the
// lookback window.
func (r *ResultRepository) RecentActualValues(ctx context.Context, checkID string, since time.Time, limit int) ([]float64, error) {
	query := `
		SELECT actual_value FROM results
		WHERE check_id = $1 AND executed_at >= $2 AND actual_value IS NOT NULL
		ORDER BY executed_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, checkID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("recent actual values: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan actual value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanResult(row rowScanner) (*domain.CheckResult, error) {
	var res domain.CheckResult
	var details []byte
	err := row.Scan(
		&res.ID, &res.ExecutedAt, &res.CheckID, &res.JobID, &res.ConnectionID,
		&res.TargetTable, &res.TargetColumn, &res.CheckType,
		&res.ActualValue, &res.ExpectedValue, &res.Passed, &res.Severity, &res.Message,
		&res.ExecutionTimeMS, &res.RowsScanned, &details, &res.ErrorMessage, &res.ExecutedSQL,
	)
	if err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &res.ResultDetails); err != nil {
			return nil, fmt.Errorf("unmarshal result details: %w", err)
		}
	}
	return &res, nil
}

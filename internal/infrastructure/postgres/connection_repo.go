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

type ConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{pool: pool}
}

func (r *ConnectionRepository) Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	query := `
		INSERT INTO connections (name, description, type, encrypted_config, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, type, encrypted_config, is_active, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, c.Name, c.Description, c.Type, c.EncryptedConfig, c.IsActive)
	return scanConnection(row)
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	query := `
		SELECT id, name, description, type, encrypted_config, is_active, created_at, updated_at
		FROM connections WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanConnection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("connection", id)
		}
		return nil, err
	}
	return c, nil
}

func (r *ConnectionRepository) List(ctx context.Context, input repository.ListConnectionsInput) ([]*domain.Connection, error) {
	args := []any{}
	where := []string{"TRUE"}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, name, description, type, encrypted_config, is_active, created_at, updated_at
		FROM connections
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var out []*domain.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConnectionRepository) Update(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	query := `
		UPDATE connections
		SET name = $2, description = $3, encrypted_config = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, type, encrypted_config, is_active, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.EncryptedConfig, c.IsActive)
	updated, err := scanConnection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("connection", c.ID)
		}
		return nil, err
	}
	return updated, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("connection", id)
	}
	return nil
}

func scanConnection(row rowScanner) (*domain.Connection, error) {
	var c domain.Connection
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Type, &c.EncryptedConfig, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan connection: %w", err)
	}
	return &c, nil
}

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

type NotificationChannelRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationChannelRepository(pool *pgxpool.Pool) *NotificationChannelRepository {
	return &NotificationChannelRepository{pool: pool}
}

func (r *NotificationChannelRepository) Create(ctx context.Context, c *domain.NotificationChannel) (*domain.NotificationChannel, error) {
	config, err := json.Marshal(c.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal channel config: %w", err)
	}

	query := `
		INSERT INTO notification_channels (name, description, channel_type, config, events, min_severity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, description, channel_type, config, events, min_severity, is_active, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, c.Name, c.Description, c.ChannelType, config, c.Events, c.MinSeverity, c.IsActive)
	return scanChannel(row)
}

func (r *NotificationChannelRepository) GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	query := `
		SELECT id, name, description, channel_type, config, events, min_severity, is_active, created_at, updated_at
		FROM notification_channels WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("notification_channel", id)
		}
		return nil, err
	}
	return c, nil
}

func (r *NotificationChannelRepository) List(ctx context.Context, input repository.ListChannelsInput) ([]*domain.NotificationChannel, error) {
	args := []any{}
	where := []string{"TRUE"}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT id, name, description, channel_type, config, events, min_severity, is_active, created_at, updated_at
		FROM notification_channels
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notification channels: %w", err)
	}
	defer rows.Close()

	var out []*domain.NotificationChannel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListActive backs the notification dispatcher's ChannelLister interface
// (internal/notify): every active channel, regardless of event/severity —
// filtering happens per-event in the dispatcher.
func (r *NotificationChannelRepository) ListActive(ctx context.Context) ([]domain.NotificationChannel, error) {
	query := `
		SELECT id, name, description, channel_type, config, events, min_severity, is_active, created_at, updated_at
		FROM notification_channels
		WHERE is_active
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active notification channels: %w", err)
	}
	defer rows.Close()

	var out []domain.NotificationChannel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *NotificationChannelRepository) Update(ctx context.Context, c *domain.NotificationChannel) (*domain.NotificationChannel, error) {
	config, err := json.Marshal(c.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal channel config: %w", err)
	}

	query := `
		UPDATE notification_channels
		SET name = $2, description = $3, config = $4, events = $5, min_severity = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, channel_type, config, events, min_severity, is_active, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Description, config, c.Events, c.MinSeverity, c.IsActive)
	updated, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("notification_channel", c.ID)
		}
		return nil, err
	}
	return updated, nil
}

func (r *NotificationChannelRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notification_channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("notification_channel", id)
	}
	return nil
}

func scanChannel(row rowScanner) (*domain.NotificationChannel, error) {
	var c domain.NotificationChannel
	var config []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.ChannelType, &config, &c.Events, &c.MinSeverity, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan notification channel: %w", err)
	}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &c.Config); err != nil {
			return nil, fmt.Errorf("unmarshal channel config: %w", err)
		}
	}
	return &c, nil
}

package repository

import (
	"context"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
)

type ListConnectionsInput struct {
	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type ConnectionRepository interface {
	Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error)
	GetByID(ctx context.Context, id string) (*domain.Connection, error)
	List(ctx context.Context, input ListConnectionsInput) ([]*domain.Connection, error)
	Update(ctx context.Context, c *domain.Connection) (*domain.Connection, error)
	Delete(ctx context.Context, id string) error
}

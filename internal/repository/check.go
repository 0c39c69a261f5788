package repository

import (
	"context"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
)

type ListChecksInput struct {
	ConnectionID string // optional filter
	CursorTime   *time.Time
	CursorID     string
	Limit        int
}

type CheckRepository interface {
	Create(ctx context.Context, c *domain.Check) (*domain.Check, error)
	GetByID(ctx context.Context, id string) (*domain.Check, error)
	List(ctx context.Context, input ListChecksInput) ([]*domain.Check, error)
	Update(ctx context.Context, c *domain.Check) (*domain.Check, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

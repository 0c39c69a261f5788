package repository

import (
	"context"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
)

type ListChannelsInput struct {
	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type NotificationChannelRepository interface {
	Create(ctx context.Context, c *domain.NotificationChannel) (*domain.NotificationChannel, error)
	GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error)
	List(ctx context.Context, input ListChannelsInput) ([]*domain.NotificationChannel, error)
	ListActive(ctx context.Context) ([]domain.NotificationChannel, error)
	Update(ctx context.Context, c *domain.NotificationChannel) (*domain.NotificationChannel, error)
	Delete(ctx context.Context, id string) error
}

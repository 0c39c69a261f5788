package usecase

import (
	"context"
	"fmt"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/notify"
	"github.com/dqplatform/dq-engine/internal/repository"
)

// NotificationUsecase owns NotificationChannel CRUD and the test-send
// operation backing the notification dispatcher.
type NotificationUsecase struct {
	repo       repository.NotificationChannelRepository
	dispatcher *notify.Dispatcher
}

func NewNotificationUsecase(repo repository.NotificationChannelRepository, dispatcher *notify.Dispatcher) *NotificationUsecase {
	return &NotificationUsecase{repo: repo, dispatcher: dispatcher}
}

var validEvents = map[string]bool{
	string(domain.EventIncidentOpened):   true,
	string(domain.EventIncidentResolved): true,
}

type CreateChannelInput struct {
	Name        string
	Description string
	Config      domain.ChannelConfig
	Events      []string
	MinSeverity *domain.ResultSeverity
}

func (u *NotificationUsecase) CreateChannel(ctx context.Context, input CreateChannelInput) (*domain.NotificationChannel, error) {
	for _, e := range input.Events {
		if !validEvents[e] {
			return nil, domain.NewValidationError("unknown event %q", e)
		}
	}

	c := &domain.NotificationChannel{
		Name:        input.Name,
		Description: input.Description,
		ChannelType: "webhook",
		Config:      input.Config,
		Events:      input.Events,
		MinSeverity: input.MinSeverity,
		IsActive:    true,
	}
	created, err := u.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return created, nil
}

func (u *NotificationUsecase) GetChannel(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return c, nil
}

type ListChannelsInput struct {
	Cursor string
	Limit  int
}

type ListChannelsResult struct {
	Channels   []*domain.NotificationChannel
	NextCursor *string
}

func (u *NotificationUsecase) ListChannels(ctx context.Context, input ListChannelsInput) (ListChannelsResult, error) {
	limit := clampLimit(input.Limit)
	repoInput := repository.ListChannelsInput{Limit: limit + 1}

	if input.Cursor != "" {
		ct, cid, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListChannelsResult{}, domain.NewValidationError("invalid cursor")
		}
		repoInput.CursorTime = ct
		repoInput.CursorID = cid
	}

	channels, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListChannelsResult{}, fmt.Errorf("list channels: %w", err)
	}

	var nextCursor *string
	if len(channels) == limit+1 {
		last := channels[limit]
		s := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &s
		channels = channels[:limit]
	}
	return ListChannelsResult{Channels: channels, NextCursor: nextCursor}, nil
}

type UpdateChannelInput struct {
	ID          string
	Name        string
	Description string
	Config      domain.ChannelConfig
	Events      []string
	MinSeverity *domain.ResultSeverity
	IsActive    bool
}

func (u *NotificationUsecase) UpdateChannel(ctx context.Context, input UpdateChannelInput) (*domain.NotificationChannel, error) {
	for _, e := range input.Events {
		if !validEvents[e] {
			return nil, domain.NewValidationError("unknown event %q", e)
		}
	}

	existing, err := u.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	existing.Name = input.Name
	existing.Description = input.Description
	existing.Config = input.Config
	existing.Events = input.Events
	existing.MinSeverity = input.MinSeverity
	existing.IsActive = input.IsActive

	updated, err := u.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}
	return updated, nil
}

func (u *NotificationUsecase) DeleteChannel(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

// TestSend delivers a fixed test payload to one channel and reports the
// raw outcome rather than erroring — a 4xx/5xx from the remote endpoint is
// an expected answer to "does this webhook work", not a bug in our code.
func (u *NotificationUsecase) TestSend(ctx context.Context, id string) (notify.DeliveryResult, error) {
	ch, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return notify.DeliveryResult{}, fmt.Errorf("get channel: %w", err)
	}
	return u.dispatcher.TestSend(ctx, *ch), nil
}

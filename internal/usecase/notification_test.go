package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/notify"
	"github.com/dqplatform/dq-engine/internal/repository"
)

type fakeChannelRepo struct {
	channels map[string]*domain.NotificationChannel
	seq      int
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{channels: make(map[string]*domain.NotificationChannel)}
}

func (f *fakeChannelRepo) Create(ctx context.Context, c *domain.NotificationChannel) (*domain.NotificationChannel, error) {
	f.seq++
	cp := *c
	cp.ID = string(rune('a' + f.seq))
	cp.CreatedAt = time.Now()
	f.channels[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeChannelRepo) GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	c, ok := f.channels[id]
	if !ok {
		return nil, domain.NewNotFoundError("channel", id)
	}
	return c, nil
}

func (f *fakeChannelRepo) List(ctx context.Context, input repository.ListChannelsInput) ([]*domain.NotificationChannel, error) {
	var out []*domain.NotificationChannel
	for _, c := range f.channels {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeChannelRepo) ListActive(ctx context.Context) ([]domain.NotificationChannel, error) {
	var out []domain.NotificationChannel
	for _, c := range f.channels {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChannelRepo) Update(ctx context.Context, c *domain.NotificationChannel) (*domain.NotificationChannel, error) {
	f.channels[c.ID] = c
	return c, nil
}

func (f *fakeChannelRepo) Delete(ctx context.Context, id string) error {
	delete(f.channels, id)
	return nil
}

func TestCreateChannelRejectsUnknownEvent(t *testing.T) {
	repo := newFakeChannelRepo()
	uc := NewNotificationUsecase(repo, notify.New(repo, slog.Default()))

	_, err := uc.CreateChannel(context.Background(), CreateChannelInput{
		Name:   "slack",
		Config: domain.ChannelConfig{URL: "https://example.com/hook"},
		Events: []string{"incident.deleted"},
	})
	if err == nil {
		t.Fatal("expected validation error for unknown event")
	}
}

func TestCreateChannelAcceptsKnownEvents(t *testing.T) {
	repo := newFakeChannelRepo()
	uc := NewNotificationUsecase(repo, notify.New(repo, slog.Default()))

	c, err := uc.CreateChannel(context.Background(), CreateChannelInput{
		Name:   "slack",
		Config: domain.ChannelConfig{URL: "https://example.com/hook"},
		Events: []string{string(domain.EventIncidentOpened), string(domain.EventIncidentResolved)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsActive {
		t.Fatal("expected new channel to be active")
	}
}

func TestTestSendUnknownChannel(t *testing.T) {
	repo := newFakeChannelRepo()
	uc := NewNotificationUsecase(repo, notify.New(repo, slog.Default()))

	if _, err := uc.TestSend(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

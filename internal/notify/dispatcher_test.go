package notify

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dqplatform/dq-engine/internal/domain"
)

type fakeChannelLister struct {
	channels []domain.NotificationChannel
}

func (f *fakeChannelLister) ListActive(ctx context.Context) ([]domain.NotificationChannel, error) {
	return f.channels, nil
}

func TestDispatchFiltersByEventAndSeverity(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	minHigh := domain.SeverityFatal
	channels := []domain.NotificationChannel{
		{ID: "subscribed", Events: []string{"incident.opened"}, Config: domain.ChannelConfig{URL: srv.URL}, IsActive: true},
		{ID: "not-subscribed", Events: []string{"incident.resolved"}, Config: domain.ChannelConfig{URL: srv.URL}, IsActive: true},
		{ID: "too-strict", Events: []string{"incident.opened"}, MinSeverity: &minHigh, Config: domain.ChannelConfig{URL: srv.URL}, IsActive: true},
	}
	d := New(&fakeChannelLister{channels: channels}, slog.Default())

	incident := domain.Incident{ID: "inc1", CheckID: "check1", Severity: domain.IncidentLow, Title: "t"}
	if err := d.Dispatch(context.Background(), domain.EventIncidentOpened, incident); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected exactly 1 delivery, got %d", got)
	}
}

func TestTestSendReportsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New(&fakeChannelLister{}, slog.Default())
	result := d.TestSend(context.Background(), domain.NotificationChannel{ID: "c1", Config: domain.ChannelConfig{URL: srv.URL}})
	if result.Success {
		t.Fatal("expected failure on 500 response")
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", result.StatusCode)
	}
}

func TestPostSkipsChannelWithNoURL(t *testing.T) {
	d := New(&fakeChannelLister{}, slog.Default())
	result := d.TestSend(context.Background(), domain.NotificationChannel{ID: "c1"})
	if result.Success {
		t.Fatal("expected failure for channel with no url")
	}
}

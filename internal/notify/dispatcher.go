// Package notify implements the notification dispatcher: fan-out of
// incident events to webhook channels, fire-and-forget.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/metrics"
)

const requestTimeout = 10 * time.Second

// ChannelLister reads the active notification channels. Implemented by the
// Postgres repository in production and a fake in tests.
type ChannelLister interface {
	ListActive(ctx context.Context) ([]domain.NotificationChannel, error)
}

// DeliveryResult is what a test-send operation returns.
type DeliveryResult struct {
	ChannelID  string
	Success    bool
	StatusCode int
	Error      string
}

// Dispatcher fans out incident events to webhook channels. The HTTP
// client has bounded idle connections, a TLS 1.2 floor, capped redirects
// and a per-request timeout.
type Dispatcher struct {
	channels ChannelLister
	client   *http.Client
	logger   *slog.Logger
}

func New(channels ChannelLister, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		logger: logger.With("component", "notify"),
	}
}

// Dispatch fans event out to every active, subscribed, severity-eligible
// channel. Delivery failures are logged and
// counted but never retried or propagated — this method never returns an
// error for a channel POST failure, only for failing to list channels.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType domain.IncidentEventType, incident domain.Incident) error {
	channels, err := d.channels.ListActive(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "notify: failed to list channels", "error", err)
		return fmt.Errorf("list active channels: %w", err)
	}

	payload := domain.WebhookPayload{
		Event:     string(eventType),
		Timestamp: time.Now(),
		Incident: domain.WebhookIncidentPayload{
			ID:           incident.ID,
			Title:        incident.Title,
			Severity:     incident.Severity,
			Status:       incident.Status,
			FailureCount: incident.FailureCount,
			CheckID:      incident.CheckID,
			Description:  incident.Description,
		},
	}

	for i := range channels {
		ch := channels[i]
		if !ch.SubscribesTo(eventType) || !ch.Passes(incident.Severity) {
			continue
		}
		d.deliver(ctx, ch, payload)
	}
	return nil
}

// TestSend delivers a fixed {event: "test", ...} payload to one channel.
func (d *Dispatcher) TestSend(ctx context.Context, ch domain.NotificationChannel) DeliveryResult {
	payload := domain.WebhookPayload{
		Event:     "test",
		Timestamp: time.Now(),
		Incident: domain.WebhookIncidentPayload{
			ID:          "test",
			Title:       "Test notification",
			Status:      domain.IncidentOpen,
			Description: "This is a test delivery from the notification channel configuration.",
		},
	}
	return d.post(ctx, ch, payload)
}

func (d *Dispatcher) deliver(ctx context.Context, ch domain.NotificationChannel, payload domain.WebhookPayload) {
	result := d.post(ctx, ch, payload)
	if !result.Success {
		metrics.NotificationDeliveriesTotal.WithLabelValues("failed").Inc()
		d.logger.WarnContext(ctx, "notify: delivery failed",
			"channel_id", ch.ID, "status", result.StatusCode, "error", result.Error)
		return
	}
	metrics.NotificationDeliveriesTotal.WithLabelValues("success").Inc()
}

func (d *Dispatcher) post(ctx context.Context, ch domain.NotificationChannel, payload domain.WebhookPayload) DeliveryResult {
	if ch.Config.URL == "" {
		return DeliveryResult{ChannelID: ch.ID, Success: false, Error: "channel has no url"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryResult{ChannelID: ch.ID, Success: false, Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ch.Config.URL, bytes.NewReader(body))
	if err != nil {
		return DeliveryResult{ChannelID: ch.ID, Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range ch.Config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{ChannelID: ch.ID, Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return DeliveryResult{ChannelID: ch.ID, Success: false, StatusCode: resp.StatusCode, Error: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return DeliveryResult{ChannelID: ch.ID, Success: true, StatusCode: resp.StatusCode}
}

package notify

import (
	"context"
	"log/slog"

	"github.com/dqplatform/dq-engine/internal/domain"
)

// defaultQueueSize bounds the event backlog so a webhook outage can only
// ever hold this many pending deliveries in memory before producers start
// dropping events rather than blocking the triggering transaction (the load
// "bound the queue to shed load under webhook outages").
const defaultQueueSize = 1000

// Bus is the internal events channel between incident transitions and
// the webhook fan-out. Publish never blocks the caller: producers
// write and return immediately, a small worker pool drains the channel.
type Bus struct {
	events     chan domain.IncidentEvent
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewBus starts workerCount background goroutines draining a
// defaultQueueSize-bounded channel into dispatcher.Dispatch. The workers
// exit when ctx is cancelled; events still queued then are not delivered.
func NewBus(ctx context.Context, dispatcher *Dispatcher, logger *slog.Logger, workerCount int) *Bus {
	if workerCount < 1 {
		workerCount = 1
	}
	b := &Bus{
		events:     make(chan domain.IncidentEvent, defaultQueueSize),
		dispatcher: dispatcher,
		logger:     logger.With("component", "notify_bus"),
	}
	for i := 0; i < workerCount; i++ {
		go b.drain(ctx)
	}
	return b
}

func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-b.events:
			if !ok {
				return
			}
			if err := b.dispatcher.Dispatch(ctx, ev.Type, *ev.Incident); err != nil {
				b.logger.ErrorContext(ctx, "notify bus: dispatch failed", "event", ev.Type, "incident_id", ev.Incident.ID, "error", err)
			}
		}
	}
}

// Publish enqueues event without blocking. If the queue is full — sustained
// webhook outage — the event is dropped and logged rather than stalling the
// incident transition that produced it.
func (b *Bus) Publish(event domain.IncidentEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn("notify bus: queue full, dropping event", "event", event.Type, "incident_id", event.Incident.ID)
	}
}

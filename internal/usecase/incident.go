package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/metrics"
	"github.com/dqplatform/dq-engine/internal/repository"
)

// EventPublisher is the notification dispatcher's inbound edge: incident transitions are emitted
// fire-and-forget so a notification outage can never abort the triggering
// check-result transaction.
type EventPublisher interface {
	Publish(event domain.IncidentEvent)
}

// IncidentUsecase is the incident manager.
type IncidentUsecase struct {
	repo   repository.IncidentRepository
	events EventPublisher
	logger *slog.Logger
}

func NewIncidentUsecase(repo repository.IncidentRepository, events EventPublisher, logger *slog.Logger) *IncidentUsecase {
	return &IncidentUsecase{repo: repo, events: events, logger: logger.With("component", "incidents")}
}

// OpenOrUpdate dedupes onto the one
// non-resolved incident for checkID if present (increment failure_count,
// advance last_failure_at, refresh description, severity untouched),
// otherwise insert a new open incident with severity mapped from
// resultSeverity. Emits incident.opened only on insert.
func (u *IncidentUsecase) OpenOrUpdate(ctx context.Context, checkID, failureMessage string, resultSeverity domain.ResultSeverity, resultID *string) (*domain.Incident, error) {
	now := time.Now()
	candidate := &domain.Incident{
		CheckID:        checkID,
		ResultID:       resultID,
		Status:         domain.IncidentOpen,
		Severity:       domain.MapResultSeverity(resultSeverity),
		Title:          fmt.Sprintf("Check %s is failing", checkID),
		Description:    failureMessage,
		FirstFailureAt: now,
		LastFailureAt:  now,
		FailureCount:   1,
	}

	incident, created, err := u.repo.OpenOrIncrement(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("open or increment incident: %w", err)
	}

	if created {
		metrics.IncidentsOpen.Inc()
		u.publish(domain.EventIncidentOpened, incident)
	}
	return incident, nil
}

// Resolve is a no-op if there is no open incident for
// checkID; otherwise marks it resolved and emits incident.resolved exactly
// once.
func (u *IncidentUsecase) Resolve(ctx context.Context, checkID, resolvedBy string, notes *string) (*domain.Incident, error) {
	incident, err := u.repo.Resolve(ctx, checkID, resolvedBy, notes)
	if err != nil {
		if _, isNotFound := err.(*domain.NotFoundError); isNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve incident: %w", err)
	}
	if incident == nil {
		return nil, nil
	}
	metrics.IncidentsOpen.Dec()
	u.publish(domain.EventIncidentResolved, incident)
	return incident, nil
}

// UpdateStatus enforces the transition table open<->acknowledged,
// {open,acknowledged}->resolved, resolved->open (reopen). Reject invalid
// transitions with a ValidationError.
func (u *IncidentUsecase) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus, by string, notes *string) (*domain.Incident, error) {
	existing, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get incident: %w", err)
	}
	if !existing.Status.CanTransition(status) {
		return nil, domain.NewValidationError("incident %q cannot transition from %q to %q", id, existing.Status, status)
	}

	updated, err := u.repo.UpdateStatus(ctx, id, status, by, notes)
	if err != nil {
		return nil, fmt.Errorf("update incident status: %w", err)
	}

	switch {
	case status == domain.IncidentResolved:
		metrics.IncidentsOpen.Dec()
		u.publish(domain.EventIncidentResolved, updated)
	case existing.Status == domain.IncidentResolved && status == domain.IncidentOpen:
		metrics.IncidentsOpen.Inc()
	}
	return updated, nil
}

func (u *IncidentUsecase) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	incident, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

type ListIncidentsInput struct {
	CheckID string
	Status  domain.IncidentStatus
	Cursor  string
	Limit   int
}

type ListIncidentsResult struct {
	Incidents  []*domain.Incident
	NextCursor *string
}

func (u *IncidentUsecase) ListIncidents(ctx context.Context, input ListIncidentsInput) (ListIncidentsResult, error) {
	limit := clampLimit(input.Limit)
	repoInput := repository.ListIncidentsInput{CheckID: input.CheckID, Status: input.Status, Limit: limit + 1}

	if input.Cursor != "" {
		ct, cid, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListIncidentsResult{}, domain.NewValidationError("invalid cursor")
		}
		repoInput.CursorTime = ct
		repoInput.CursorID = cid
	}

	incidents, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListIncidentsResult{}, fmt.Errorf("list incidents: %w", err)
	}

	var nextCursor *string
	if len(incidents) == limit+1 {
		last := incidents[limit]
		s := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &s
		incidents = incidents[:limit]
	}
	return ListIncidentsResult{Incidents: incidents, NextCursor: nextCursor}, nil
}

func (u *IncidentUsecase) publish(eventType domain.IncidentEventType, incident *domain.Incident) {
	if u.events == nil || incident == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("incident event publish panicked", "event", eventType, "panic", r)
		}
	}()
	u.events.Publish(domain.IncidentEvent{Type: eventType, Incident: incident, Timestamp: time.Now()})
}

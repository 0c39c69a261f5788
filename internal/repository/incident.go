package repository

import (
	"context"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
)

type ListIncidentsInput struct {
	CheckID    string // optional filter
	Status     domain.IncidentStatus // optional filter
	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type IncidentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	List(ctx context.Context, input ListIncidentsInput) ([]*domain.Incident, error)

	// GetOpenForCheck returns the one non-resolved incident for checkID, if any.
	GetOpenForCheck(ctx context.Context, checkID string) (*domain.Incident, error)

	// OpenOrIncrement inserts a new incident or increments the existing
	// open one's failure_count, atomically: concurrent calls for the same
	// check never create a second open incident.
	// Returns the incident plus whether it was newly created.
	OpenOrIncrement(ctx context.Context, incident *domain.Incident) (*domain.Incident, bool, error)

	Resolve(ctx context.Context, checkID, resolvedBy string, notes *string) (*domain.Incident, error)
	UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus, by string, notes *string) (*domain.Incident, error)
}

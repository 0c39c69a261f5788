package repository

import (
	"context"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
)

type ListResultsInput struct {
	CheckID      string // optional filter
	ConnectionID string // optional filter
	Severity     domain.ResultSeverity // optional filter
	Since        *time.Time
	CursorTime   *time.Time
	CursorID     string
	Limit        int
}

type ResultRepository interface {
	Create(ctx context.Context, r *domain.CheckResult) (*domain.CheckResult, error)
	GetByID(ctx context.Context, id string) (*domain.CheckResult, error)
	List(ctx context.Context, input ListResultsInput) ([]*domain.CheckResult, error)
	Summary(ctx context.Context, checkID string, since time.Time) (*domain.ResultsSummary, error)

	// RecentActualValues backs the anomaly rule's _historical_values
	// injection: the last <= limit non-null actual_values for
	// checkID within the lookback window, most-recent-first.
	RecentActualValues(ctx context.Context, checkID string, since time.Time, limit int) ([]float64, error)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
)

// ResultUsecase surfaces the append-only CheckResult time series over the
// API: list with filters and the /summary aggregate.
type ResultUsecase struct {
	repo repository.ResultRepository
}

func NewResultUsecase(repo repository.ResultRepository) *ResultUsecase {
	return &ResultUsecase{repo: repo}
}

func (u *ResultUsecase) GetByID(ctx context.Context, id string) (*domain.CheckResult, error) {
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return r, nil
}

type ListResultsInput struct {
	CheckID      string
	ConnectionID string
	Passed       *bool
	Severity     domain.ResultSeverity
	FromDate     *time.Time
	ToDate       *time.Time
	Cursor       string
	Limit        int
}

type ListResultsResult struct {
	Results    []*domain.CheckResult
	NextCursor *string
}

func (u *ResultUsecase) ListResults(ctx context.Context, input ListResultsInput) (ListResultsResult, error) {
	limit := clampLimit(input.Limit)
	repoInput := repository.ListResultsInput{
		CheckID:      input.CheckID,
		ConnectionID: input.ConnectionID,
		Severity:     input.Severity,
		Since:        input.FromDate,
		Limit:        limit + 1,
	}

	if input.Cursor != "" {
		ct, cid, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListResultsResult{}, domain.NewValidationError("invalid cursor")
		}
		repoInput.CursorTime = ct
		repoInput.CursorID = cid
	}

	results, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListResultsResult{}, fmt.Errorf("list results: %w", err)
	}

	if input.Passed != nil {
		filtered := results[:0]
		for _, r := range results {
			if r.Passed == *input.Passed {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if input.ToDate != nil {
		filtered := results[:0]
		for _, r := range results {
			if !r.ExecutedAt.After(*input.ToDate) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	var nextCursor *string
	if len(results) == limit+1 {
		last := results[limit]
		s := encodeCursor(last.ExecutedAt, last.ID)
		nextCursor = &s
		results = results[:limit]
	}
	return ListResultsResult{Results: results, NextCursor: nextCursor}, nil
}

// Summary returns the aggregate {total, passed, failed, pass_rate,
// avg_execution_time_ms, by_severity} over the given lookback window.
func (u *ResultUsecase) Summary(ctx context.Context, checkID string, since time.Time) (*domain.ResultsSummary, error) {
	summary, err := u.repo.Summary(ctx, checkID, since)
	if err != nil {
		return nil, fmt.Errorf("results summary: %w", err)
	}
	return summary, nil
}

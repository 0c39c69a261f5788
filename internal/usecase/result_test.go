package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
)

type fakeResultRepo struct {
	results []*domain.CheckResult
	summary *domain.ResultsSummary
}

func (f *fakeResultRepo) Create(ctx context.Context, r *domain.CheckResult) (*domain.CheckResult, error) {
	f.results = append(f.results, r)
	return r, nil
}

func (f *fakeResultRepo) GetByID(ctx context.Context, id string) (*domain.CheckResult, error) {
	for _, r := range f.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.NewNotFoundError("result", id)
}

func (f *fakeResultRepo) List(ctx context.Context, input repository.ListResultsInput) ([]*domain.CheckResult, error) {
	sorted := make([]*domain.CheckResult, len(f.results))
	copy(sorted, f.results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ExecutedAt.After(sorted[j].ExecutedAt) })

	var out []*domain.CheckResult
	for _, r := range sorted {
		if input.CheckID != "" && r.CheckID != input.CheckID {
			continue
		}
		if input.ConnectionID != "" && r.ConnectionID != input.ConnectionID {
			continue
		}
		if input.Severity != "" && r.Severity != input.Severity {
			continue
		}
		if input.Since != nil && r.ExecutedAt.Before(*input.Since) {
			continue
		}
		out = append(out, r)
		if len(out) == input.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeResultRepo) Summary(ctx context.Context, checkID string, since time.Time) (*domain.ResultsSummary, error) {
	return f.summary, nil
}

func (f *fakeResultRepo) RecentActualValues(ctx context.Context, checkID string, since time.Time, limit int) ([]float64, error) {
	return nil, nil
}

func TestListResultsFiltersByPassed(t *testing.T) {
	now := time.Now()
	pass := true
	repo := &fakeResultRepo{results: []*domain.CheckResult{
		{ID: "r1", CheckID: "check1", ExecutedAt: now, Passed: true, Severity: domain.SeverityPassed},
		{ID: "r2", CheckID: "check1", ExecutedAt: now.Add(time.Minute), Passed: false, Severity: domain.SeverityError},
	}}
	uc := NewResultUsecase(repo)

	out, err := uc.ListResults(context.Background(), ListResultsInput{CheckID: "check1", Passed: &pass})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].ID != "r1" {
		t.Fatalf("expected only the passed result, got %+v", out.Results)
	}
}

func TestListResultsRejectsInvalidCursor(t *testing.T) {
	repo := &fakeResultRepo{}
	uc := NewResultUsecase(repo)

	if _, err := uc.ListResults(context.Background(), ListResultsInput{Cursor: "not-base64!!"}); err == nil {
		t.Fatal("expected error for malformed cursor")
	}
}

func TestSummaryDelegatesToRepository(t *testing.T) {
	repo := &fakeResultRepo{summary: &domain.ResultsSummary{
		Total: 10, Passed: 8, Failed: 2, PassRate: 0.8,
		BySeverity: map[domain.ResultSeverity]int64{domain.SeverityError: 2},
	}}
	uc := NewResultUsecase(repo)

	summary, err := uc.Summary(context.Background(), "check1", time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 10 || summary.PassRate != 0.8 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

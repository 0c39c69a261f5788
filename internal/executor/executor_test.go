package executor

import (
	"context"
	"testing"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
)

func f(v float64) *float64 { return &v }

type fakeHistory struct{ vals []float64 }

func (h *fakeHistory) RecentActualValues(ctx context.Context, checkID string, since time.Time, limit int) ([]float64, error) {
	return h.vals, nil
}

func TestExecuteUnregisteredCheckTypeWithNoLegacyEntryReturnsErrorResult(t *testing.T) {
	e := New(&fakeHistory{})
	check := &domain.Check{ID: "c1", CheckType: "totally_unknown_type", TargetTable: "orders"}
	result, err := e.Execute(context.Background(), Input{Check: check, ConnectionID: "conn1"})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if result.Passed || result.Severity != domain.SeverityError {
		t.Fatalf("expected error result, got %+v", result)
	}
	if result.ErrorMessage == nil {
		t.Fatal("expected ErrorMessage to be set")
	}
}

func TestMatchPercentFormula(t *testing.T) {
	cases := []struct {
		a, b *float64
		want *float64
	}{
		{nil, f(1), nil},
		{f(1), nil, nil},
		{f(0), f(0), f(100)},
		{f(0), f(5), f(0)},
		{f(5), f(10), f(50)},
		{f(-10), f(5), f(50)},
	}
	for _, c := range cases {
		got := matchPercent(c.a, c.b)
		if (got == nil) != (c.want == nil) {
			t.Fatalf("matchPercent(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
		}
		if got != nil && *got != *c.want {
			t.Fatalf("matchPercent(%v,%v) = %v, want %v", c.a, c.b, *got, *c.want)
		}
	}
}

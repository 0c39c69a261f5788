package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
)

type fakeIncidentRepo struct {
	byCheck map[string]*domain.Incident
	seq     int
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{byCheck: make(map[string]*domain.Incident)}
}

func (f *fakeIncidentRepo) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	for _, i := range f.byCheck {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, domain.NewNotFoundError("incident", id)
}

func (f *fakeIncidentRepo) List(ctx context.Context, input repository.ListIncidentsInput) ([]*domain.Incident, error) {
	var out []*domain.Incident
	for _, i := range f.byCheck {
		out = append(out, i)
	}
	return out, nil
}

func (f *fakeIncidentRepo) GetOpenForCheck(ctx context.Context, checkID string) (*domain.Incident, error) {
	i, ok := f.byCheck[checkID]
	if !ok || i.Status == domain.IncidentResolved {
		return nil, domain.NewNotFoundError("open incident for check", checkID)
	}
	return i, nil
}

func (f *fakeIncidentRepo) OpenOrIncrement(ctx context.Context, candidate *domain.Incident) (*domain.Incident, bool, error) {
	existing, ok := f.byCheck[candidate.CheckID]
	if ok && existing.Status != domain.IncidentResolved {
		existing.FailureCount++
		existing.LastFailureAt = candidate.LastFailureAt
		existing.Description = candidate.Description
		return existing, false, nil
	}
	f.seq++
	cp := *candidate
	cp.ID = string(rune('a' + f.seq))
	cp.CreatedAt = time.Now()
	f.byCheck[cp.CheckID] = &cp
	return &cp, true, nil
}

func (f *fakeIncidentRepo) Resolve(ctx context.Context, checkID, resolvedBy string, notes *string) (*domain.Incident, error) {
	i, ok := f.byCheck[checkID]
	if !ok || i.Status == domain.IncidentResolved {
		return nil, domain.NewNotFoundError("open incident for check", checkID)
	}
	i.Status = domain.IncidentResolved
	i.ResolvedBy = &resolvedBy
	i.ResolutionNotes = notes
	return i, nil
}

func (f *fakeIncidentRepo) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus, by string, notes *string) (*domain.Incident, error) {
	for _, i := range f.byCheck {
		if i.ID == id {
			i.Status = status
			return i, nil
		}
	}
	return nil, domain.NewNotFoundError("incident", id)
}

type fakeEventPublisher struct {
	events []domain.IncidentEvent
}

func (f *fakeEventPublisher) Publish(event domain.IncidentEvent) {
	f.events = append(f.events, event)
}

func TestOpenOrUpdateEmitsOnlyOnFirstOpen(t *testing.T) {
	repo := newFakeIncidentRepo()
	events := &fakeEventPublisher{}
	uc := NewIncidentUsecase(repo, events, slog.Default())

	if _, err := uc.OpenOrUpdate(context.Background(), "check1", "row_count too low", domain.SeverityError, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.OpenOrUpdate(context.Background(), "check1", "still too low", domain.SeverityError, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events.events) != 1 {
		t.Fatalf("expected exactly 1 opened event, got %d", len(events.events))
	}
	if repo.byCheck["check1"].FailureCount != 2 {
		t.Fatalf("expected failure_count=2, got %d", repo.byCheck["check1"].FailureCount)
	}
}

func TestResolveIsNoOpWithoutOpenIncident(t *testing.T) {
	repo := newFakeIncidentRepo()
	events := &fakeEventPublisher{}
	uc := NewIncidentUsecase(repo, events, slog.Default())

	incident, err := uc.Resolve(context.Background(), "check-unknown", "system", nil)
	if err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if incident != nil {
		t.Fatal("expected nil incident for a check with no open incident")
	}
	if len(events.events) != 0 {
		t.Fatal("expected no events published for a no-op resolve")
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo := newFakeIncidentRepo()
	uc := NewIncidentUsecase(repo, &fakeEventPublisher{}, slog.Default())

	incident, _ := uc.OpenOrUpdate(context.Background(), "check1", "failing", domain.SeverityFatal, nil)
	repo.UpdateStatus(context.Background(), incident.ID, domain.IncidentResolved, "system", nil)

	if _, err := uc.UpdateStatus(context.Background(), incident.ID, domain.IncidentAcknowledged, "alice", nil); err == nil {
		t.Fatal("expected error transitioning resolved -> acknowledged")
	}
}

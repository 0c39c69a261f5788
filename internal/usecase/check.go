package usecase

import (
	"context"
	"fmt"

	"github.com/dqplatform/dq-engine/internal/checkregistry"
	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/executor"
	"github.com/dqplatform/dq-engine/internal/repository"
)

type CheckUsecase struct {
	repo    repository.CheckRepository
	connUC  *ConnectionUsecase
	jobUC   *JobUsecase
	execute *executor.Executor
}

func NewCheckUsecase(repo repository.CheckRepository, connUC *ConnectionUsecase, jobUC *JobUsecase, exec *executor.Executor) *CheckUsecase {
	return &CheckUsecase{repo: repo, connUC: connUC, jobUC: jobUC, execute: exec}
}

type CreateCheckInput struct {
	ConnectionID      string
	Name              string
	Description       string
	CheckType         domain.CheckType
	CheckMode         domain.CheckMode
	TimeScale         *domain.TimeScale
	TargetSchema      string
	TargetTable       string
	TargetColumn      *string
	PartitionByColumn *string
	Parameters        map[string]any
	RuleParameters    domain.RuleParameters
}

func (u *CheckUsecase) CreateCheck(ctx context.Context, input CreateCheckInput) (*domain.Check, error) {
	entry, ok := checkregistry.Lookup(string(input.CheckType))
	isColumnLevel := ok && entry.IsColumnLevel

	c := &domain.Check{
		ConnectionID:      input.ConnectionID,
		Name:              input.Name,
		Description:       input.Description,
		CheckType:         input.CheckType,
		CheckMode:         input.CheckMode,
		TimeScale:         input.TimeScale,
		TargetSchema:      input.TargetSchema,
		TargetTable:       input.TargetTable,
		TargetColumn:      input.TargetColumn,
		PartitionByColumn: input.PartitionByColumn,
		Parameters:        input.Parameters,
		RuleParameters:    input.RuleParameters,
		IsActive:          true,
	}
	if err := c.Validate(isColumnLevel); err != nil {
		return nil, err
	}

	created, err := u.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create check: %w", err)
	}
	return created, nil
}

func (u *CheckUsecase) GetCheck(ctx context.Context, id string) (*domain.Check, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get check: %w", err)
	}
	return c, nil
}

type ListChecksInput struct {
	ConnectionID string
	Cursor       string
	Limit        int
}

type ListChecksResult struct {
	Checks     []*domain.Check
	NextCursor *string
}

func (u *CheckUsecase) ListChecks(ctx context.Context, input ListChecksInput) (ListChecksResult, error) {
	limit := clampLimit(input.Limit)
	repoInput := repository.ListChecksInput{ConnectionID: input.ConnectionID, Limit: limit + 1}

	if input.Cursor != "" {
		ct, cid, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListChecksResult{}, domain.NewValidationError("invalid cursor")
		}
		repoInput.CursorTime = ct
		repoInput.CursorID = cid
	}

	checks, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListChecksResult{}, fmt.Errorf("list checks: %w", err)
	}

	var nextCursor *string
	if len(checks) == limit+1 {
		last := checks[limit]
		s := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &s
		checks = checks[:limit]
	}
	return ListChecksResult{Checks: checks, NextCursor: nextCursor}, nil
}

type UpdateCheckInput struct {
	ID                string
	Name              string
	Description       string
	CheckMode         domain.CheckMode
	TimeScale         *domain.TimeScale
	TargetSchema      string
	TargetTable       string
	TargetColumn      *string
	PartitionByColumn *string
	Parameters        map[string]any
	RuleParameters    domain.RuleParameters
}

func (u *CheckUsecase) UpdateCheck(ctx context.Context, input UpdateCheckInput) (*domain.Check, error) {
	existing, err := u.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get check: %w", err)
	}

	entry, ok := checkregistry.Lookup(string(existing.CheckType))
	isColumnLevel := ok && entry.IsColumnLevel

	existing.Name = input.Name
	existing.Description = input.Description
	existing.CheckMode = input.CheckMode
	existing.TimeScale = input.TimeScale
	existing.TargetSchema = input.TargetSchema
	existing.TargetTable = input.TargetTable
	existing.TargetColumn = input.TargetColumn
	existing.PartitionByColumn = input.PartitionByColumn
	existing.Parameters = input.Parameters
	existing.RuleParameters = input.RuleParameters

	if err := existing.Validate(isColumnLevel); err != nil {
		return nil, err
	}

	updated, err := u.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update check: %w", err)
	}
	return updated, nil
}

func (u *CheckUsecase) SetActive(ctx context.Context, id string, active bool) error {
	if err := u.repo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set check active: %w", err)
	}
	return nil
}

func (u *CheckUsecase) DeleteCheck(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete check: %w", err)
	}
	return nil
}

// RunCheck is the async POST /checks/{id}/run operation: it creates a Job
// and returns immediately — the worker pool picks it up, executes the
// check, and persists the result. It never touches CheckResult/Incident rows
// itself (those belong to the worker).
func (u *CheckUsecase) RunCheck(ctx context.Context, checkID string) (*domain.Job, error) {
	if _, err := u.repo.GetByID(ctx, checkID); err != nil {
		return nil, fmt.Errorf("get check: %w", err)
	}
	job, err := u.jobUC.CreateJob(ctx, checkID, "api", nil)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// BatchRun fires off a RunCheck for every id and reports per-check outcome;
// one check's failure to enqueue never blocks the others.
type BatchRunItem struct {
	CheckID string
	Job     *domain.Job
	Error   string
}

func (u *CheckUsecase) BatchRun(ctx context.Context, checkIDs []string) []BatchRunItem {
	items := make([]BatchRunItem, 0, len(checkIDs))
	for _, id := range checkIDs {
		job, err := u.RunCheck(ctx, id)
		item := BatchRunItem{CheckID: id}
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Job = job
		}
		items = append(items, item)
	}
	return items
}

// PreviewCheck runs the full execution pipeline synchronously against
// an already-persisted Check and returns the full CheckResult detail. Per
// preview, nothing is written: no Job, no CheckResult, no Incident.
func (u *CheckUsecase) PreviewCheck(ctx context.Context, checkID string) (*domain.CheckResult, error) {
	check, err := u.repo.GetByID(ctx, checkID)
	if err != nil {
		return nil, fmt.Errorf("get check: %w", err)
	}
	return u.preview(ctx, check)
}

// ValidatePreviewInput is a transient check configuration — never persisted
// — used by POST /validate/preview to test a check definition before
// creating it.
type ValidatePreviewInput struct {
	ConnectionID      string
	CheckType         domain.CheckType
	CheckMode         domain.CheckMode
	TargetSchema      string
	TargetTable       string
	TargetColumn      *string
	PartitionByColumn *string
	Parameters        map[string]any
	RuleParameters    domain.RuleParameters
}

func (u *CheckUsecase) ValidatePreview(ctx context.Context, input ValidatePreviewInput) (*domain.CheckResult, error) {
	entry, ok := checkregistry.Lookup(string(input.CheckType))
	isColumnLevel := ok && entry.IsColumnLevel

	check := &domain.Check{
		ID:                "preview",
		ConnectionID:      input.ConnectionID,
		CheckType:         input.CheckType,
		CheckMode:         input.CheckMode,
		TargetSchema:      input.TargetSchema,
		TargetTable:       input.TargetTable,
		TargetColumn:      input.TargetColumn,
		PartitionByColumn: input.PartitionByColumn,
		Parameters:        input.Parameters,
		RuleParameters:    input.RuleParameters,
		IsActive:          true,
	}
	if err := check.Validate(isColumnLevel); err != nil {
		return nil, err
	}
	return u.preview(ctx, check)
}

// preview resolves the check's connection config(s) and delegates to the executor
// without persisting anything, shared by PreviewCheck and ValidatePreview.
func (u *CheckUsecase) preview(ctx context.Context, check *domain.Check) (*domain.CheckResult, error) {
	connType, config, err := u.connUC.ResolveForExecution(ctx, check.ConnectionID)
	if err != nil {
		return nil, fmt.Errorf("resolve connection: %w", err)
	}

	in := executor.Input{
		Check:        check,
		ConnectionID: check.ConnectionID,
		ConnType:     connType,
		Config:       config,
	}

	if refID, isCrossSource := check.ReferenceConnectionID(); isCrossSource {
		refType, refConfig, err := u.connUC.ResolveForExecution(ctx, refID)
		if err != nil {
			msg := fmt.Sprintf("Execution failed: reference connection %q: %v", refID, err)
			return &domain.CheckResult{
				CheckID:      check.ID,
				ConnectionID: check.ConnectionID,
				CheckType:    check.CheckType,
				Passed:       false,
				Severity:     domain.SeverityError,
				Message:      msg,
				ErrorMessage: &msg,
			}, nil
		}
		in.ReferenceConnID = refID
		in.ReferenceType = refType
		in.ReferenceConfig = refConfig
	}

	result, err := u.execute.Preview(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("preview check: %w", err)
	}
	return result, nil
}

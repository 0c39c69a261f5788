package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/repository"
	"github.com/robfig/cron/v3"
)

type ScheduleUsecase struct {
	repo repository.ScheduleRepository
}

func NewScheduleUsecase(repo repository.ScheduleRepository) *ScheduleUsecase {
	return &ScheduleUsecase{repo: repo}
}

type CreateScheduleInput struct {
	CheckID  string
	CronExpr string
	Timezone string
}

func (u *ScheduleUsecase) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*domain.Schedule, error) {
	loc := time.UTC
	if input.Timezone != "" {
		l, err := time.LoadLocation(input.Timezone)
		if err != nil {
			return nil, domain.NewValidationError("invalid timezone %q", input.Timezone)
		}
		loc = l
	}

	sched, err := cron.ParseStandard(input.CronExpr)
	if err != nil {
		return nil, domain.NewValidationError("invalid cron expression %q", input.CronExpr)
	}

	nextRunAt := sched.Next(time.Now().In(loc))

	s := &domain.Schedule{
		CheckID:   input.CheckID,
		CronExpr:  input.CronExpr,
		Timezone:  input.Timezone,
		IsActive:  true,
		NextRunAt: &nextRunAt,
	}

	created, err := u.repo.Create(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return created, nil
}

func (u *ScheduleUsecase) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s, nil
}

type ListSchedulesInput struct {
	CheckID string
	Cursor  string
	Limit   int
}

type ListSchedulesResult struct {
	Schedules  []*domain.Schedule
	NextCursor *string
}

func (u *ScheduleUsecase) ListSchedules(ctx context.Context, input ListSchedulesInput) (ListSchedulesResult, error) {
	limit := clampLimit(input.Limit)
	repoInput := repository.ListSchedulesInput{CheckID: input.CheckID, Limit: limit + 1}

	if input.Cursor != "" {
		ct, cid, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListSchedulesResult{}, domain.NewValidationError("invalid cursor")
		}
		repoInput.CursorTime = ct
		repoInput.CursorID = cid
	}

	schedules, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListSchedulesResult{}, fmt.Errorf("list schedules: %w", err)
	}

	var nextCursor *string
	if len(schedules) == limit+1 {
		last := schedules[limit]
		s := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &s
		schedules = schedules[:limit]
	}
	return ListSchedulesResult{Schedules: schedules, NextCursor: nextCursor}, nil
}

func (u *ScheduleUsecase) PauseSchedule(ctx context.Context, id string) error {
	if err := u.repo.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("pause schedule: %w", err)
	}
	return nil
}

func (u *ScheduleUsecase) ResumeSchedule(ctx context.Context, id string) error {
	if err := u.repo.SetActive(ctx, id, true); err != nil {
		return fmt.Errorf("resume schedule: %w", err)
	}
	return nil
}

func (u *ScheduleUsecase) DeleteSchedule(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler exposes cron expressions bound to a Check.
type ScheduleHandler struct {
	uc     *usecase.ScheduleUsecase
	logger *slog.Logger
}

func NewScheduleHandler(uc *usecase.ScheduleUsecase, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{uc: uc, logger: logger.With("component", "schedule_handler")}
}

type createScheduleRequest struct {
	CheckID  string `json:"check_id"  binding:"required"`
	CronExpr string `json:"cron_expr" binding:"required"`
	Timezone string `json:"timezone"`
}

type scheduleResponse struct {
	ID        string     `json:"id"`
	CheckID   string     `json:"check_id"`
	CronExpr  string     `json:"cron_expr"`
	Timezone  string     `json:"timezone"`
	IsActive  bool       `json:"is_active"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toScheduleResponse(s *domain.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:        s.ID,
		CheckID:   s.CheckID,
		CronExpr:  s.CronExpr,
		Timezone:  s.Timezone,
		IsActive:  s.IsActive,
		LastRunAt: s.LastRunAt,
		NextRunAt: s.NextRunAt,
		CreatedAt: s.CreatedAt,
	}
}

func (h *ScheduleHandler) Create(ctx *gin.Context) {
	var req createScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	s, err := h.uc.CreateSchedule(ctx.Request.Context(), usecase.CreateScheduleInput{
		CheckID:  req.CheckID,
		CronExpr: req.CronExpr,
		Timezone: req.Timezone,
	})
	if err != nil {
		writeError(ctx, h.logger, "create schedule", err)
		return
	}

	ctx.JSON(http.StatusCreated, toScheduleResponse(s))
}

func (h *ScheduleHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListSchedules(ctx.Request.Context(), usecase.ListSchedulesInput{
		CheckID: ctx.Query("check_id"),
		Cursor:  ctx.Query("cursor"),
		Limit:   limit,
	})
	if err != nil {
		writeError(ctx, h.logger, "list schedules", err)
		return
	}

	items := make([]scheduleResponse, len(result.Schedules))
	for i, s := range result.Schedules {
		items[i] = toScheduleResponse(s)
	}
	ctx.JSON(http.StatusOK, gin.H{"schedules": items, "next_cursor": result.NextCursor})
}

func (h *ScheduleHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	s, err := h.uc.GetSchedule(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get schedule", err)
		return
	}
	ctx.JSON(http.StatusOK, toScheduleResponse(s))
}

type updateScheduleRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *ScheduleHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	var req updateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	var err error
	if req.IsActive {
		err = h.uc.ResumeSchedule(ctx.Request.Context(), id)
	} else {
		err = h.uc.PauseSchedule(ctx.Request.Context(), id)
	}
	if err != nil {
		writeError(ctx, h.logger, "update schedule", err)
		return
	}

	s, err := h.uc.GetSchedule(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get schedule", err)
		return
	}
	ctx.JSON(http.StatusOK, toScheduleResponse(s))
}

func (h *ScheduleHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.uc.DeleteSchedule(ctx.Request.Context(), id); err != nil {
		writeError(ctx, h.logger, "delete schedule", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

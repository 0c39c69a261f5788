package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/gin-gonic/gin"
)

// JobHandler exposes the job manager's read/cancel surface. Jobs are created as a side
// effect of POST /checks/{id}/run and POST /checks/batch/run (see
// CheckHandler), never directly.
type JobHandler struct {
	uc     *usecase.JobUsecase
	logger *slog.Logger
}

func NewJobHandler(uc *usecase.JobUsecase, logger *slog.Logger) *JobHandler {
	return &JobHandler{uc: uc, logger: logger.With("component", "job_handler")}
}

func toJobResponse(j *domain.Job) gin.H {
	return gin.H{
		"id":            j.ID,
		"check_id":      j.CheckID,
		"status":        j.Status,
		"scheduled_at":  j.ScheduledAt,
		"started_at":    j.StartedAt,
		"completed_at":  j.CompletedAt,
		"error_message": j.ErrorMessage,
		"triggered_by":  j.TriggeredBy(),
		"retry_count":   j.RetryCount,
		"created_at":    j.CreatedAt,
	}
}

func (h *JobHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListJobs(ctx.Request.Context(), usecase.ListJobsInput{
		CheckID: ctx.Query("check_id"),
		Status:  domain.JobStatus(ctx.Query("status")),
		Cursor:  ctx.Query("cursor"),
		Limit:   limit,
	})
	if err != nil {
		writeError(ctx, h.logger, "list jobs", err)
		return
	}

	items := make([]gin.H, len(result.Jobs))
	for i, j := range result.Jobs {
		items[i] = toJobResponse(j)
	}
	ctx.JSON(http.StatusOK, gin.H{"jobs": items, "next_cursor": result.NextCursor})
}

func (h *JobHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	job, err := h.uc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get job", err)
		return
	}
	ctx.JSON(http.StatusOK, toJobResponse(job))
}

func (h *JobHandler) Cancel(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.uc.CancelJob(ctx.Request.Context(), id); err != nil {
		writeError(ctx, h.logger, "cancel job", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

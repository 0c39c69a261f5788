package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/gin-gonic/gin"
)

// IncidentHandler exposes list/get and the status-transition endpoint
// (acknowledge, resolve, reopen all funnel through PATCH /{id}).
type IncidentHandler struct {
	uc     *usecase.IncidentUsecase
	logger *slog.Logger
}

func NewIncidentHandler(uc *usecase.IncidentUsecase, logger *slog.Logger) *IncidentHandler {
	return &IncidentHandler{uc: uc, logger: logger.With("component", "incident_handler")}
}

func toIncidentResponse(i *domain.Incident) gin.H {
	return gin.H{
		"id":               i.ID,
		"check_id":         i.CheckID,
		"result_id":        i.ResultID,
		"status":           i.Status,
		"severity":         i.Severity,
		"title":            i.Title,
		"description":      i.Description,
		"first_failure_at": i.FirstFailureAt,
		"last_failure_at":  i.LastFailureAt,
		"failure_count":    i.FailureCount,
		"resolved_at":      i.ResolvedAt,
		"resolved_by":      i.ResolvedBy,
		"resolution_notes": i.ResolutionNotes,
		"acknowledged_at":  i.AcknowledgedAt,
		"acknowledged_by":  i.AcknowledgedBy,
		"created_at":       i.CreatedAt,
		"updated_at":       i.UpdatedAt,
	}
}

func (h *IncidentHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListIncidents(ctx.Request.Context(), usecase.ListIncidentsInput{
		CheckID: ctx.Query("check_id"),
		Status:  domain.IncidentStatus(ctx.Query("status")),
		Cursor:  ctx.Query("cursor"),
		Limit:   limit,
	})
	if err != nil {
		writeError(ctx, h.logger, "list incidents", err)
		return
	}

	items := make([]gin.H, len(result.Incidents))
	for i, incident := range result.Incidents {
		items[i] = toIncidentResponse(incident)
	}
	ctx.JSON(http.StatusOK, gin.H{"incidents": items, "next_cursor": result.NextCursor})
}

func (h *IncidentHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	i, err := h.uc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get incident", err)
		return
	}
	ctx.JSON(http.StatusOK, toIncidentResponse(i))
}

type updateIncidentStatusRequest struct {
	Status domain.IncidentStatus `json:"status" binding:"required"`
	By     string                `json:"by"`
	Notes  *string               `json:"notes,omitempty"`
}

func (h *IncidentHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")
	var req updateIncidentStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	i, err := h.uc.UpdateStatus(ctx.Request.Context(), id, req.Status, req.By, req.Notes)
	if err != nil {
		writeError(ctx, h.logger, "update incident status", err)
		return
	}
	ctx.JSON(http.StatusOK, toIncidentResponse(i))
}

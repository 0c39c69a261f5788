package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dqplatform/dq-engine/internal/checkregistry"
	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/gin-gonic/gin"
)

// CheckHandler exposes check CRUD plus the run/preview/validate surface
// that drives check execution and preview.
type CheckHandler struct {
	uc     *usecase.CheckUsecase
	logger *slog.Logger
}

func NewCheckHandler(uc *usecase.CheckUsecase, logger *slog.Logger) *CheckHandler {
	return &CheckHandler{uc: uc, logger: logger.With("component", "check_handler")}
}

type checkRequest struct {
	ConnectionID      string                `json:"connection_id"`
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	CheckType         domain.CheckType      `json:"check_type"`
	CheckMode         domain.CheckMode      `json:"check_mode"`
	TimeScale         *domain.TimeScale     `json:"time_scale,omitempty"`
	TargetSchema      string                `json:"target_schema"`
	TargetTable       string                `json:"target_table"`
	TargetColumn      *string               `json:"target_column,omitempty"`
	PartitionByColumn *string               `json:"partition_by_column,omitempty"`
	Parameters        map[string]any        `json:"parameters,omitempty"`
	RuleParameters    domain.RuleParameters `json:"rule_parameters,omitempty"`
}

func toCheckResponse(c *domain.Check) gin.H {
	return gin.H{
		"id":                  c.ID,
		"connection_id":       c.ConnectionID,
		"name":                c.Name,
		"description":         c.Description,
		"check_type":          c.CheckType,
		"check_mode":          c.CheckMode,
		"time_scale":          c.TimeScale,
		"target_schema":       c.TargetSchema,
		"target_table":        c.TargetTable,
		"target_column":       c.TargetColumn,
		"partition_by_column": c.PartitionByColumn,
		"parameters":          c.Parameters,
		"rule_parameters":     c.RuleParameters,
		"is_active":           c.IsActive,
		"created_at":          c.CreatedAt,
		"updated_at":          c.UpdatedAt,
	}
}

func (h *CheckHandler) Create(ctx *gin.Context) {
	var req checkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	c, err := h.uc.CreateCheck(ctx.Request.Context(), usecase.CreateCheckInput{
		ConnectionID:      req.ConnectionID,
		Name:              req.Name,
		Description:       req.Description,
		CheckType:         req.CheckType,
		CheckMode:         req.CheckMode,
		TimeScale:         req.TimeScale,
		TargetSchema:      req.TargetSchema,
		TargetTable:       req.TargetTable,
		TargetColumn:      req.TargetColumn,
		PartitionByColumn: req.PartitionByColumn,
		Parameters:        req.Parameters,
		RuleParameters:    req.RuleParameters,
	})
	if err != nil {
		writeError(ctx, h.logger, "create check", err)
		return
	}
	ctx.JSON(http.StatusCreated, toCheckResponse(c))
}

func (h *CheckHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListChecks(ctx.Request.Context(), usecase.ListChecksInput{
		ConnectionID: ctx.Query("connection_id"),
		Cursor:       ctx.Query("cursor"),
		Limit:        limit,
	})
	if err != nil {
		writeError(ctx, h.logger, "list checks", err)
		return
	}

	items := make([]gin.H, len(result.Checks))
	for i, c := range result.Checks {
		items[i] = toCheckResponse(c)
	}
	ctx.JSON(http.StatusOK, gin.H{"checks": items, "next_cursor": result.NextCursor})
}

func (h *CheckHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	c, err := h.uc.GetCheck(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get check", err)
		return
	}
	ctx.JSON(http.StatusOK, toCheckResponse(c))
}

func (h *CheckHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	var req checkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	c, err := h.uc.UpdateCheck(ctx.Request.Context(), usecase.UpdateCheckInput{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description,
		CheckMode:         req.CheckMode,
		TimeScale:         req.TimeScale,
		TargetSchema:      req.TargetSchema,
		TargetTable:       req.TargetTable,
		TargetColumn:      req.TargetColumn,
		PartitionByColumn: req.PartitionByColumn,
		Parameters:        req.Parameters,
		RuleParameters:    req.RuleParameters,
	})
	if err != nil {
		writeError(ctx, h.logger, "update check", err)
		return
	}
	ctx.JSON(http.StatusOK, toCheckResponse(c))
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *CheckHandler) SetActive(ctx *gin.Context) {
	id := ctx.Param("id")
	var req setActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}
	if err := h.uc.SetActive(ctx.Request.Context(), id, req.IsActive); err != nil {
		writeError(ctx, h.logger, "set check active", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *CheckHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := h.uc.DeleteCheck(ctx.Request.Context(), id); err != nil {
		writeError(ctx, h.logger, "delete check", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *CheckHandler) Run(ctx *gin.Context) {
	id := ctx.Param("id")
	job, err := h.uc.RunCheck(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "run check", err)
		return
	}
	ctx.JSON(http.StatusAccepted, toJobResponse(job))
}

type batchRunRequest struct {
	CheckIDs []string `json:"check_ids" binding:"required"`
}

func (h *CheckHandler) BatchRun(ctx *gin.Context) {
	var req batchRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	items := h.uc.BatchRun(ctx.Request.Context(), req.CheckIDs)
	results := make([]gin.H, len(items))
	for i, item := range items {
		entry := gin.H{"check_id": item.CheckID}
		if item.Error != "" {
			entry["error"] = item.Error
		} else {
			entry["job"] = toJobResponse(item.Job)
		}
		results[i] = entry
	}
	ctx.JSON(http.StatusAccepted, gin.H{"results": results})
}

func toCheckResultResponse(r *domain.CheckResult) gin.H {
	return gin.H{
		"id":            r.ID,
		"check_id":      r.CheckID,
		"job_id":        r.JobID,
		"connection_id": r.ConnectionID,
		"check_type":    r.CheckType,
		"passed":        r.Passed,
		"severity":      r.Severity,
		"actual_value":  r.ActualValue,
		"message":       r.Message,
		"error_message": r.ErrorMessage,
		"executed_at":   r.ExecutedAt,
	}
}

func (h *CheckHandler) Preview(ctx *gin.Context) {
	id := ctx.Param("id")
	result, err := h.uc.PreviewCheck(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "preview check", err)
		return
	}
	ctx.JSON(http.StatusOK, toCheckResultResponse(result))
}

func (h *CheckHandler) ValidatePreview(ctx *gin.Context) {
	var req checkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	result, err := h.uc.ValidatePreview(ctx.Request.Context(), usecase.ValidatePreviewInput{
		ConnectionID:      req.ConnectionID,
		CheckType:         req.CheckType,
		CheckMode:         req.CheckMode,
		TargetSchema:      req.TargetSchema,
		TargetTable:       req.TargetTable,
		TargetColumn:      req.TargetColumn,
		PartitionByColumn: req.PartitionByColumn,
		Parameters:        req.Parameters,
		RuleParameters:    req.RuleParameters,
	})
	if err != nil {
		writeError(ctx, h.logger, "validate preview", err)
		return
	}
	ctx.JSON(http.StatusOK, toCheckResultResponse(result))
}

// ListCheckTypes serves the descriptive GET /check-types endpoint the UI
// uses to populate a check-creation form, optionally filtered by the
// "category" query parameter; there is no column/table-level filter.
func (h *CheckHandler) ListCheckTypes(ctx *gin.Context) {
	var entries []checkregistry.CheckEntry
	if cat := ctx.Query("category"); cat != "" {
		entries = checkregistry.ByCategory(checkregistry.Category(cat))
	} else {
		entries = checkregistry.All()
	}

	items := make([]gin.H, len(entries))
	for i, e := range entries {
		items[i] = gin.H{
			"check_type":      e.CheckType,
			"category":        e.Category,
			"is_column_level": e.IsColumnLevel,
			"default_params":  e.DefaultParams,
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"check_types": items})
}

// ListCheckModes serves the static set of check_mode values.
func (h *CheckHandler) ListCheckModes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"check_modes": []domain.CheckMode{
		domain.CheckModeProfiling, domain.CheckModeMonitoring, domain.CheckModePartitioned,
	}})
}

// ListTimeScales serves the static set of time_scale values.
func (h *CheckHandler) ListTimeScales(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"time_scales": []domain.TimeScale{
		domain.TimeScaleDaily, domain.TimeScaleMonthly,
	}})
}

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

// ResultHandler exposes the append-only CheckResult time series:
// list with filters, and the /summary aggregate.
type ResultHandler struct {
	uc     *usecase.ResultUsecase
	logger *slog.Logger
}

func NewResultHandler(uc *usecase.ResultUsecase, logger *slog.Logger) *ResultHandler {
	return &ResultHandler{uc: uc, logger: logger.With("component", "result_handler")}
}

func (h *ResultHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	input := usecase.ListResultsInput{
		CheckID:      ctx.Query("check_id"),
		ConnectionID: ctx.Query("connection_id"),
		Severity:     domain.ResultSeverity(ctx.Query("severity")),
		Cursor:       ctx.Query("cursor"),
		Limit:        limit,
	}
	if v := ctx.Query("passed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			bindError(ctx, err)
			return
		}
		input.Passed = &b
	}
	if v := ctx.Query("from_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			bindError(ctx, err)
			return
		}
		input.FromDate = &t
	}
	if v := ctx.Query("to_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			bindError(ctx, err)
			return
		}
		input.ToDate = &t
	}

	result, err := h.uc.ListResults(ctx.Request.Context(), input)
	if err != nil {
		writeError(ctx, h.logger, "list results", err)
		return
	}

	items := make([]gin.H, len(result.Results))
	for i, r := range result.Results {
		items[i] = toCheckResultResponse(r)
	}
	ctx.JSON(http.StatusOK, gin.H{"results": items, "next_cursor": result.NextCursor})
}

func (h *ResultHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	r, err := h.uc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get result", err)
		return
	}
	ctx.JSON(http.StatusOK, toCheckResultResponse(r))
}

func (h *ResultHandler) Summary(ctx *gin.Context) {
	checkID := ctx.Query("check_id")
	since := time.Now().Add(-7 * 24 * time.Hour)
	if v := ctx.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			bindError(ctx, err)
			return
		}
		since = t
	}

	summary, err := h.uc.Summary(ctx.Request.Context(), checkID, since)
	if err != nil {
		writeError(ctx, h.logger, "results summary", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

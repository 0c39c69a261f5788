package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps the domain error taxonomy onto HTTP status codes
// and the standard {"error":{"message","type"}} envelope. Anything
// unrecognized is logged and surfaced as a generic 500 — the executor
// itself never returns a Go error for execution-domain failures, so any
// error reaching this far really is unexpected.
func writeError(ctx *gin.Context, logger *slog.Logger, op string, err error) {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var connFailure *domain.ConnectionFailureError

	switch {
	case errors.As(err, &notFound):
		ctx.JSON(http.StatusNotFound, errorBody(notFound.Error(), "not_found"))
	case errors.As(err, &validation):
		ctx.JSON(http.StatusUnprocessableEntity, errorBody(validation.Error(), "validation"))
	case errors.As(err, &conflict):
		ctx.JSON(http.StatusConflict, errorBody(conflict.Error(), "conflict"))
	case errors.As(err, &connFailure):
		ctx.JSON(http.StatusBadGateway, errorBody(connFailure.Error(), "connection_failure"))
	default:
		logger.Error(op, "error", err)
		ctx.JSON(http.StatusInternalServerError, errorBody("internal server error", "internal"))
	}
}

func errorBody(message, errType string) gin.H {
	return gin.H{"error": gin.H{"message": message, "type": errType}}
}

func bindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusUnprocessableEntity, errorBody(err.Error(), "validation"))
}

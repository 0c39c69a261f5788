package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/gin-gonic/gin"
)

// ConnectionHandler exposes registered-source CRUD plus the
// test/schema-browsing endpoints.
type ConnectionHandler struct {
	uc     *usecase.ConnectionUsecase
	logger *slog.Logger
}

func NewConnectionHandler(uc *usecase.ConnectionUsecase, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{uc: uc, logger: logger.With("component", "connection_handler")}
}

type connectionRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Type        domain.ConnectionType `json:"type" binding:"required"`
	Config      map[string]any        `json:"config"`
	IsActive    bool                  `json:"is_active"`
}

func toConnectionResponse(c *domain.Connection) gin.H {
	return gin.H{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
		"is_active":   c.IsActive,
		"created_at":  c.CreatedAt,
		"updated_at":  c.UpdatedAt,
	}
}

func (h *ConnectionHandler) Create(ctx *gin.Context) {
	var req connectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	c, err := h.uc.CreateConnection(ctx.Request.Context(), usecase.CreateConnectionInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Config:      req.Config,
	})
	if err != nil {
		writeError(ctx, h.logger, "create connection", err)
		return
	}
	ctx.JSON(http.StatusCreated, toConnectionResponse(c))
}

func (h *ConnectionHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListConnections(ctx.Request.Context(), usecase.ListConnectionsInput{
		Cursor: ctx.Query("cursor"),
		Limit:  limit,
	})
	if err != nil {
		writeError(ctx, h.logger, "list connections", err)
		return
	}

	items := make([]gin.H, len(result.Connections))
	for i, c := range result.Connections {
		items[i] = toConnectionResponse(c)
	}
	ctx.JSON(http.StatusOK, gin.H{"connections": items, "next_cursor": result.NextCursor})
}

func (h *ConnectionHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	c, err := h.uc.GetConnection(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get connection", err)
		return
	}
	ctx.JSON(http.StatusOK, toConnectionResponse(c))
}

func (h *ConnectionHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	var req connectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	c, err := h.uc.UpdateConnection(ctx.Request.Context(), usecase.UpdateConnectionInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(ctx, h.logger, "update connection", err)
		return
	}
	ctx.JSON(http.StatusOK, toConnectionResponse(c))
}

func (h *ConnectionHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := h.uc.DeleteConnection(ctx.Request.Context(), id); err != nil {
		writeError(ctx, h.logger, "delete connection", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *ConnectionHandler) Test(ctx *gin.Context) {
	id := ctx.Param("id")

	result, err := h.uc.TestConnection(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "test connection", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": result.Success, "error": result.Error})
}

func (h *ConnectionHandler) ListSchemas(ctx *gin.Context) {
	id := ctx.Param("id")

	schemas, err := h.uc.ListSchemas(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "list schemas", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"schemas": schemas})
}

func (h *ConnectionHandler) ListTables(ctx *gin.Context) {
	id := ctx.Param("id")
	schema := ctx.Query("schema")

	tables, err := h.uc.ListTables(ctx.Request.Context(), id, schema)
	if err != nil {
		writeError(ctx, h.logger, "list tables", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *ConnectionHandler) ListColumns(ctx *gin.Context) {
	id := ctx.Param("id")
	schema := ctx.Query("schema")
	table := ctx.Query("table")

	columns, err := h.uc.ListColumns(ctx.Request.Context(), id, schema, table)
	if err != nil {
		writeError(ctx, h.logger, "list columns", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"columns": columns})
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/usecase"
	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the notification channel CRUD and test-send surface.
type NotificationHandler struct {
	uc     *usecase.NotificationUsecase
	logger *slog.Logger
}

func NewNotificationHandler(uc *usecase.NotificationUsecase, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, logger: logger.With("component", "notification_handler")}
}

type channelRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Config      domain.ChannelConfig   `json:"config"`
	Events      []string               `json:"events"`
	MinSeverity *domain.ResultSeverity `json:"min_severity,omitempty"`
	IsActive    bool                   `json:"is_active"`
}

func toChannelResponse(c *domain.NotificationChannel) gin.H {
	return gin.H{
		"id":           c.ID,
		"name":         c.Name,
		"description":  c.Description,
		"channel_type": c.ChannelType,
		"config":       c.Config,
		"events":       c.Events,
		"min_severity": c.MinSeverity,
		"is_active":    c.IsActive,
		"created_at":   c.CreatedAt,
		"updated_at":   c.UpdatedAt,
	}
}

func (h *NotificationHandler) Create(ctx *gin.Context) {
	var req channelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	c, err := h.uc.CreateChannel(ctx.Request.Context(), usecase.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
		Events:      req.Events,
		MinSeverity: req.MinSeverity,
	})
	if err != nil {
		writeError(ctx, h.logger, "create channel", err)
		return
	}
	ctx.JSON(http.StatusCreated, toChannelResponse(c))
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := h.uc.ListChannels(ctx.Request.Context(), usecase.ListChannelsInput{
		Cursor: ctx.Query("cursor"),
		Limit:  limit,
	})
	if err != nil {
		writeError(ctx, h.logger, "list channels", err)
		return
	}

	items := make([]gin.H, len(result.Channels))
	for i, c := range result.Channels {
		items[i] = toChannelResponse(c)
	}
	ctx.JSON(http.StatusOK, gin.H{"channels": items, "next_cursor": result.NextCursor})
}

func (h *NotificationHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	c, err := h.uc.GetChannel(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "get channel", err)
		return
	}
	ctx.JSON(http.StatusOK, toChannelResponse(c))
}

func (h *NotificationHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	var req channelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	c, err := h.uc.UpdateChannel(ctx.Request.Context(), usecase.UpdateChannelInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
		Events:      req.Events,
		MinSeverity: req.MinSeverity,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(ctx, h.logger, "update channel", err)
		return
	}
	ctx.JSON(http.StatusOK, toChannelResponse(c))
}

func (h *NotificationHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := h.uc.DeleteChannel(ctx.Request.Context(), id); err != nil {
		writeError(ctx, h.logger, "delete channel", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *NotificationHandler) TestSend(ctx *gin.Context) {
	id := ctx.Param("id")

	result, err := h.uc.TestSend(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, h.logger, "test send", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"channel_id":  result.ChannelID,
		"success":     result.Success,
		"status_code": result.StatusCode,
		"error":       result.Error,
	})
}

package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/dqplatform/dq-engine/internal/health"
	"github.com/dqplatform/dq-engine/internal/transport/http/handler"
	"github.com/dqplatform/dq-engine/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

// Handlers bundles every resource handler the router wires up, one field
// per resource group.
type Handlers struct {
	Connection   *handler.ConnectionHandler
	Check        *handler.CheckHandler
	Job          *handler.JobHandler
	Schedule     *handler.ScheduleHandler
	Result       *handler.ResultHandler
	Incident     *handler.IncidentHandler
	Notification *handler.NotificationHandler
}

// NewRouter builds the gin engine: unauthenticated health probes,
// then the API-key-guarded /api/v1 resource tree.
func NewRouter(h Handlers, checker *health.Checker, logger *slog.Logger, apiKeyHeader string, apiKeys []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), sloggin.New(logger), middleware.Metrics(), middleware.Security())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, checker.Liveness(c.Request.Context()))
	})
	// /health is the deep dependency probe (Postgres, and any future
	// broker); /readyz is kept as an alias for k8s-style readiness probes.
	deepHealth := func(c *gin.Context) {
		result := checker.Readiness(c.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	}
	r.GET("/health", deepHealth)
	r.GET("/readyz", deepHealth)

	v1 := r.Group("/api/v1", middleware.APIKey(apiKeyHeader, apiKeys))

	connections := v1.Group("/connections")
	connections.POST("", h.Connection.Create)
	connections.GET("", h.Connection.List)
	connections.GET("/:id", h.Connection.GetByID)
	connections.PUT("/:id", h.Connection.Update)
	connections.DELETE("/:id", h.Connection.Delete)
	connections.POST("/:id/test", h.Connection.Test)
	connections.GET("/:id/schemas", h.Connection.ListSchemas)
	connections.GET("/:id/tables", h.Connection.ListTables)
	connections.GET("/:id/columns", h.Connection.ListColumns)

	checks := v1.Group("/checks")
	checks.POST("", h.Check.Create)
	checks.GET("", h.Check.List)
	checks.GET("/:id", h.Check.GetByID)
	checks.PUT("/:id", h.Check.Update)
	checks.PATCH("/:id/active", h.Check.SetActive)
	checks.DELETE("/:id", h.Check.Delete)
	checks.POST("/:id/run", h.Check.Run)
	checks.POST("/batch/run", h.Check.BatchRun)
	checks.GET("/:id/preview", h.Check.Preview)
	checks.POST("/validate/preview", h.Check.ValidatePreview)

	v1.GET("/check-types", h.Check.ListCheckTypes)
	v1.GET("/check-modes", h.Check.ListCheckModes)
	v1.GET("/time-scales", h.Check.ListTimeScales)

	jobs := v1.Group("/jobs")
	jobs.GET("", h.Job.List)
	jobs.GET("/:id", h.Job.GetByID)
	jobs.POST("/:id/cancel", h.Job.Cancel)

	schedules := v1.Group("/schedules")
	schedules.POST("", h.Schedule.Create)
	schedules.GET("", h.Schedule.List)
	schedules.GET("/:id", h.Schedule.GetByID)
	schedules.PATCH("/:id", h.Schedule.Update)
	schedules.DELETE("/:id", h.Schedule.Delete)

	results := v1.Group("/results")
	results.GET("", h.Result.List)
	results.GET("/summary", h.Result.Summary)
	results.GET("/:id", h.Result.GetByID)

	incidents := v1.Group("/incidents")
	incidents.GET("", h.Incident.List)
	incidents.GET("/:id", h.Incident.GetByID)
	incidents.PATCH("/:id", h.Incident.UpdateStatus)

	channels := v1.Group("/notification-channels")
	channels.POST("", h.Notification.Create)
	channels.GET("", h.Notification.List)
	channels.GET("/:id", h.Notification.GetByID)
	channels.PUT("/:id", h.Notification.Update)
	channels.DELETE("/:id", h.Notification.Delete)
	channels.POST("/:id/test", h.Notification.TestSend)

	return r
}

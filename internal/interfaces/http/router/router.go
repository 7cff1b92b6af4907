// Package router wires the HTTP routes.
package router

import (
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/interfaces/http/handler"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Setup builds the gin engine with middleware and all sync routes
func Setup(syncHandler *handler.SyncHandler, healthHandler *handler.HealthHandler, log *zap.Logger) *gin.Engine {
	middleware.SetupValidator()

	r := gin.New()
	r.Use(logger.GinMiddleware(log))
	r.Use(logger.Recovery(log))

	r.GET("/health", healthHandler.Check)

	v1 := r.Group("/api/v1")
	runs := v1.Group("/sync/runs")
	{
		runs.POST("", syncHandler.CreateRun)
		runs.GET("", syncHandler.ListRuns)
		runs.GET("/:id", syncHandler.GetRun)
		runs.POST("/:id/steps", syncHandler.RunStep)
	}

	return r
}

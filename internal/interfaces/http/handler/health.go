package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports liveness of a backing dependency
type Pinger interface {
	Ping() error
}

// HealthHandler serves the service health endpoint
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
		return
	}
	h.Success(c, gin.H{"status": "ok"})
}

package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CatalogStatusReader reports the catalog load status
type CatalogStatusReader interface {
	State() storefront.CatalogState
}

// SessionCounter reports how many sessions are live
type SessionCounter interface {
	Len() int
}

// SystemHandler handles health and ping endpoints
type SystemHandler struct {
	BaseHandler
	catalog   CatalogStatusReader
	sessions  SessionCounter
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(catalog CatalogStatusReader, sessions SessionCounter, version string) *SystemHandler {
	return &SystemHandler{
		catalog:   catalog,
		sessions:  sessions,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string                   `json:"status" example:"healthy"`
	Version        string                   `json:"version" example:"1.0.0"`
	GoVersion      string                   `json:"go_version" example:"go1.25.5"`
	Uptime         string                   `json:"uptime" example:"1h30m45s"`
	Catalog        storefront.CatalogStatus `json:"catalog" example:"ready"`
	ActiveSessions int                      `json:"active_sessions" example:"12"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports "degraded" while the catalog is in the failed state. The process stays up either way.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	state := h.catalog.State()
	status := "healthy"
	if state.Status == storefront.CatalogFailed {
		status = "degraded"
	}

	h.Success(c, HealthResponse{
		Status:         status,
		Version:        h.version,
		GoVersion:      runtime.Version(),
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		Catalog:        state.Status,
		ActiveSessions: h.sessions.Len(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

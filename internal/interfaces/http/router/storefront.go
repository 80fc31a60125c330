package router

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// StorefrontLimits guards the storefront endpoints that touch shared state.
// A nil limit leaves its route unguarded.
type StorefrontLimits struct {
	// CreateSession guards session creation
	CreateSession gin.HandlerFunc
	// Reload guards the manual catalog reload, which refetches for everyone
	Reload gin.HandlerFunc
}

// NewStorefrontRoutes builds the /storefront group
func NewStorefrontRoutes(h *handler.StorefrontHandler, limits StorefrontLimits) *DomainGroup {
	storefront := NewDomainGroup("storefront", "/storefront")

	storefront.Group("catalog", "/catalog").
		GET("", h.GetCatalog).
		GET("/products/:productId", h.GetProduct).
		POST("/reload", guarded(limits.Reload, h.ReloadCatalog)...)

	storefront.Group("sessions", "/sessions").
		POST("", guarded(limits.CreateSession, h.CreateSession)...).
		GET("/:id", h.GetSession).
		POST("/:id/intents", h.DispatchIntent)

	return storefront
}

func guarded(limit, h gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limit, h}
}

// RegisterSystemRoutes mounts /health at the root and /api/v1/ping
func RegisterSystemRoutes(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
	engine.GET("/api/v1/ping", h.Ping)
}

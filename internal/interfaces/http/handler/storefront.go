package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CatalogReader is the catalog side of the storefront service
type CatalogReader interface {
	View() storefront.CatalogView
	Product(id int64) (storefront.ProductView, error)
	Load(ctx context.Context) error
}

// SessionRegistry creates and finds visitor sessions
type SessionRegistry interface {
	Create() (*storefront.Session, error)
	Get(id string) (*storefront.Session, error)
}

// StorefrontHandler serves the catalog and the per-visitor session API
type StorefrontHandler struct {
	BaseHandler
	catalog  CatalogReader
	sessions SessionRegistry
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(catalog CatalogReader, sessions SessionRegistry) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:  catalog,
		sessions: sessions,
	}
}

// GetCatalog godoc
// @Summary      Get the product catalog
// @Description  Returns the load status and every product in source order with display prices
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=storefront.CatalogView}
// @Router       /storefront/catalog [get]
func (h *StorefrontHandler) GetCatalog(c *gin.Context) {
	h.Success(c, h.catalog.View())
}

// GetProduct godoc
// @Summary      Get one product
// @Tags         catalog
// @Produce      json
// @Param        productId path int true "Product ID"
// @Success      200 {object} dto.Response{data=storefront.ProductView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /storefront/catalog/products/{productId} [get]
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidInput, "Product ID must be an integer")
		return
	}

	product, err := h.catalog.Product(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ReloadCatalog godoc
// @Summary      Reload the catalog
// @Description  Fetches the catalog again. This is the only way out of the failed state.
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=storefront.CatalogView}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /storefront/catalog/reload [post]
func (h *StorefrontHandler) ReloadCatalog(c *gin.Context) {
	if err := h.catalog.Load(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.catalog.View())
}

// CreateSession godoc
// @Summary      Start a storefront session
// @Description  Creates an empty cart with the overlay closed
// @Tags         sessions
// @Produce      json
// @Success      201 {object} dto.Response{data=storefront.Snapshot}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /storefront/sessions [post]
func (h *StorefrontHandler) CreateSession(c *gin.Context) {
	session, err := h.sessions.Create()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session.Snapshot())
}

// GetSession godoc
// @Summary      Get a session snapshot
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} dto.Response{data=storefront.Snapshot}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /storefront/sessions/{id} [get]
func (h *StorefrontHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session.Snapshot())
}

// DispatchIntent godoc
// @Summary      Dispatch a user intent
// @Description  Applies one intent to the session and returns the new snapshot with any effects
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body storefront.Intent true "Intent"
// @Success      200 {object} dto.Response{data=storefront.Result}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /storefront/sessions/{id}/intents [post]
func (h *StorefrontHandler) DispatchIntent(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var intent storefront.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := session.Dispatch(c.Request.Context(), intent)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

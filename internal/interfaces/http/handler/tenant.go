package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stockhub/backend/internal/application/identity"
)

// TenantHandler handles tenant directory HTTP requests
type TenantHandler struct {
	BaseHandler
	tenantService *identity.TenantDirectoryService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *identity.TenantDirectoryService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// RegisterTenantRequest is the tenant registration payload
type RegisterTenantRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	StoreDSN string `json:"store_dsn" binding:"required"`
}

// Register registers a new tenant with its store descriptor
func (h *TenantHandler) Register(c *gin.Context) {
	var req RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenant, err := h.tenantService.Register(c.Request.Context(), identity.RegisterTenantInput{
		Code:     req.Code,
		Name:     req.Name,
		StoreDSN: req.StoreDSN,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tenant)
}

// List returns every registered tenant
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.tenantService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenants)
}

// Deactivate locks a tenant out. Its users can no longer log in and its
// store is no longer opened.
func (h *TenantHandler) Deactivate(c *gin.Context) {
	if err := h.tenantService.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate restores a deactivated tenant
func (h *TenantHandler) Activate(c *gin.Context) {
	if err := h.tenantService.Activate(c.Request.Context(), c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stockhub/backend/internal/application/identity"
	domainIdentity "github.com/stockhub/backend/internal/domain/identity"
)

// PermissionHandler handles permission management HTTP requests
type PermissionHandler struct {
	BaseHandler
	permissionService *identity.PermissionService
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(permissionService *identity.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		permissionService: permissionService,
	}
}

func parseUserIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListModules returns the closed set of permission modules
func (h *PermissionHandler) ListModules(c *gin.Context) {
	h.Success(c, ModulesResponse{Modules: h.permissionService.ListAvailableModules()})
}

// GetUserPermissions returns the grant rows of one managed user
func (h *PermissionHandler) GetUserPermissions(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := parseUserIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	grants, err := h.permissionService.GetUserGrants(c.Request.Context(), actorID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grants)
}

// GetManagedPermissions returns grant rows for every user the acting admin
// manages
func (h *PermissionHandler) GetManagedPermissions(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	grants, err := h.permissionService.GetManagedGrants(c.Request.Context(), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grants)
}

// SetUserPermissions upserts the listed module rows for one managed user
func (h *PermissionHandler) SetUserPermissions(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := parseUserIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	grants, err := h.permissionService.SetGrants(c.Request.Context(), actorID, userID, toGrantInputs(req.Grants))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grants)
}

// RemoveUserPermission removes a single module row. Removing an absent row
// succeeds.
func (h *PermissionHandler) RemoveUserPermission(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := parseUserIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	module := c.Param("module")
	if err := h.permissionService.RemoveGrant(c.Request.Context(), actorID, userID, module); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RemovalResponse{UserID: userID, Module: module, Removed: true})
}

// RemoveAllUserPermissions clears the user's whole matrix
func (h *PermissionHandler) RemoveAllUserPermissions(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := parseUserIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.permissionService.RemoveAllGrants(c.Request.Context(), actorID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RemovalResponse{UserID: userID, Removed: true})
}

// GetUserPermissionSummary aggregates one user's matrix for dashboards
func (h *PermissionHandler) GetUserPermissionSummary(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := parseUserIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	summary, err := h.permissionService.Summarize(c.Request.Context(), actorID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// BulkUpdatePermissions applies the same grants to several users. Failures
// are per-user; the call itself succeeds.
func (h *PermissionHandler) BulkUpdatePermissions(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req BulkUpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	results, err := h.permissionService.BulkSetGrants(c.Request.Context(), actorID, req.UserIDs, toGrantInputs(req.Grants))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// BulkRemovePermissions removes module rows from several users
func (h *PermissionHandler) BulkRemovePermissions(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req BulkRemovePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	results, err := h.permissionService.BulkRemoveGrants(c.Request.Context(), actorID, req.UserIDs, req.Modules, req.RemoveAll)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// GetOwnPermissions returns the caller's own grant rows
func (h *PermissionHandler) GetOwnPermissions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	grants, err := h.permissionService.GetOwnGrants(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grants)
}

// CheckPermission answers whether the caller holds an action on a module.
// Unknown module names answer false instead of erroring.
func (h *PermissionHandler) CheckPermission(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PermissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	response := PermissionCheckResponse{Module: req.Module, Action: req.Action}

	module, err := domainIdentity.ParseModule(req.Module)
	if err != nil {
		h.Success(c, response)
		return
	}

	allowed, err := h.permissionService.HasPermission(c.Request.Context(), userID, module, req.Action)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response.Allowed = allowed
	h.Success(c, response)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stockhub/backend/internal/application/identity"
	"github.com/stockhub/backend/internal/interfaces/http/dto"
)

// UserHandler handles user administration HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserAdminService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserAdminService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create creates a user account under the acting admin
func (h *UserHandler) Create(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identity.CreateUserInput{
		ActorID:     actorID,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		IsAdmin:     req.IsAdmin,
		BranchID:    req.BranchID,
		CounterID:   req.CounterID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// GetByID returns one managed user
func (h *UserHandler) GetByID(c *gin.Context) {
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

	user, err := h.userService.GetByID(c.Request.Context(), actorID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// List returns the acting admin's managed users, paginated
func (h *UserHandler) List(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	result, err := h.userService.List(c.Request.Context(), actorID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Users, result.Total, result.Page, result.PageSize)
}

// Update updates a managed user's profile and scope
func (h *UserHandler) Update(c *gin.Context) {
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

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), identity.UpdateUserInput{
		ActorID:     actorID,
		UserID:      userID,
		DisplayName: req.DisplayName,
		BranchID:    req.BranchID,
		CounterID:   req.CounterID,
		ClearScope:  req.ClearScope,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// ResetPassword replaces a managed user's password
func (h *UserHandler) ResetPassword(c *gin.Context) {
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

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), actorID, userID, req.NewPassword); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Deactivate soft-deletes a managed user account
func (h *UserHandler) Deactivate(c *gin.Context) {
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

	if err := h.userService.Deactivate(c.Request.Context(), actorID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate restores a deactivated managed user account
func (h *UserHandler) Activate(c *gin.Context) {
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

	if err := h.userService.Activate(c.Request.Context(), actorID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

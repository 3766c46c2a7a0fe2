package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stockhub/backend/internal/application/identity"
)

// AccessHandler answers branch and counter access questions for the caller
type AccessHandler struct {
	BaseHandler
	accessService *identity.AccessService
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(accessService *identity.AccessService) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
	}
}

// AccessCheckResponse answers a scope access check
type AccessCheckResponse struct {
	BranchID  *int64 `json:"branch_id,omitempty"`
	CounterID *int64 `json:"counter_id,omitempty"`
	Allowed   bool   `json:"allowed"`
}

// AccessibleIDsResponse lists the ids the caller may reach
type AccessibleIDsResponse struct {
	IDs []int64 `json:"ids"`
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListBranches returns the branch ids the caller may access
func (h *AccessHandler) ListBranches(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	ids, err := h.accessService.AccessibleBranchIDs(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AccessibleIDsResponse{IDs: ids})
}

// ListCounters returns the counter ids the caller may access
func (h *AccessHandler) ListCounters(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	ids, err := h.accessService.AccessibleCounterIDs(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AccessibleIDsResponse{IDs: ids})
}

// CheckBranch answers whether the caller may access one branch
func (h *AccessHandler) CheckBranch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	branchID, ok := parseIDParam(c, "branchId")
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	allowed, err := h.accessService.CanAccessBranch(c.Request.Context(), userID, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AccessCheckResponse{BranchID: &branchID, Allowed: allowed})
}

// CheckCounter answers whether the caller may access one counter
func (h *AccessHandler) CheckCounter(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	counterID, ok := parseIDParam(c, "counterId")
	if !ok {
		h.BadRequest(c, "Invalid counter ID")
		return
	}

	allowed, err := h.accessService.CanAccessCounter(c.Request.Context(), userID, counterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AccessCheckResponse{CounterID: &counterID, Allowed: allowed})
}

// Check answers the combined branch and counter check. Both must match for
// the caller to pass.
func (h *AccessHandler) Check(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	branchID, err := strconv.ParseInt(c.Query("branch_id"), 10, 64)
	if err != nil || branchID <= 0 {
		h.BadRequest(c, "Invalid branch ID")
		return
	}
	counterID, err := strconv.ParseInt(c.Query("counter_id"), 10, 64)
	if err != nil || counterID <= 0 {
		h.BadRequest(c, "Invalid counter ID")
		return
	}

	allowed, err := h.accessService.CanAccessBranchAndCounter(c.Request.Context(), userID, branchID, counterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AccessCheckResponse{BranchID: &branchID, CounterID: &counterID, Allowed: allowed})
}

package handler

// CreateUserRequest is the user creation payload
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
	BranchID    *int64 `json:"branch_id"`
	CounterID   *int64 `json:"counter_id"`
}

// UpdateUserRequest is the user update payload. Omitted fields keep their
// current value; ClearScope removes the branch and counter assignment.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name"`
	BranchID    *int64  `json:"branch_id"`
	CounterID   *int64  `json:"counter_id"`
	ClearScope  bool    `json:"clear_scope"`
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

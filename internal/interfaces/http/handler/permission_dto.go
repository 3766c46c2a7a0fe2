package handler

import "github.com/stockhub/backend/internal/application/identity"

// GrantRequest is one module row of a permission update
type GrantRequest struct {
	Module    string `json:"module" binding:"required"`
	CanView   bool   `json:"can_view"`
	CanCreate bool   `json:"can_create"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
	CanExport bool   `json:"can_export"`
	CanImport bool   `json:"can_import"`
}

// SetPermissionsRequest replaces the listed module rows for one user
type SetPermissionsRequest struct {
	Grants []GrantRequest `json:"grants" binding:"required"`
}

// BulkUpdatePermissionsRequest applies the same grants to several users
type BulkUpdatePermissionsRequest struct {
	UserIDs []int64        `json:"user_ids" binding:"required,min=1"`
	Grants  []GrantRequest `json:"grants" binding:"required"`
}

// BulkRemovePermissionsRequest removes module rows from several users.
// With RemoveAll set, the module list is ignored and every row goes.
type BulkRemovePermissionsRequest struct {
	UserIDs   []int64  `json:"user_ids" binding:"required,min=1"`
	Modules   []string `json:"modules"`
	RemoveAll bool     `json:"remove_all"`
}

// ModulesResponse lists the closed set of module names
type ModulesResponse struct {
	Modules []string `json:"modules"`
}

// RemovalResponse confirms a permission removal. Module is empty when the
// whole matrix was cleared.
type RemovalResponse struct {
	UserID  int64  `json:"user_id"`
	Module  string `json:"module,omitempty"`
	Removed bool   `json:"removed"`
}

// PermissionCheckRequest asks whether the caller holds an action on a module
type PermissionCheckRequest struct {
	Module string `json:"module" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// PermissionCheckResponse answers a permission check
type PermissionCheckResponse struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}

func toGrantInputs(reqs []GrantRequest) []identity.GrantInput {
	inputs := make([]identity.GrantInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, identity.GrantInput{
			Module:    r.Module,
			CanView:   r.CanView,
			CanCreate: r.CanCreate,
			CanEdit:   r.CanEdit,
			CanDelete: r.CanDelete,
			CanExport: r.CanExport,
			CanImport: r.CanImport,
		})
	}
	return inputs
}

package identity

import "context"

// PermissionGrantRepository defines control-plane persistence for permission
// grants. Grants live in the control-plane store so that permission checks
// never need to open a tenant-specific store.
type PermissionGrantRepository interface {
	// Upsert creates or overwrites the single (user, module) grant row
	Upsert(ctx context.Context, grant *PermissionGrant) error

	// FindByUser returns all grant rows for a user
	FindByUser(ctx context.Context, userID int64) ([]*PermissionGrant, error)

	// FindByUserAndModule returns the single grant row for a (user, module)
	// pair, or shared.ErrNotFound when no row exists
	FindByUserAndModule(ctx context.Context, userID int64, module Module) (*PermissionGrant, error)

	// FindByUsers returns all grant rows for a set of users
	FindByUsers(ctx context.Context, userIDs []int64) ([]*PermissionGrant, error)

	// Delete removes the (user, module) row; deleting a non-existent row is
	// not an error
	Delete(ctx context.Context, userID int64, module Module) error

	// DeleteAllForUser removes every grant row for a user
	DeleteAllForUser(ctx context.Context, userID int64) error
}

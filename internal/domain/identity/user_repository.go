package identity

import "context"

// UserFilter defines the filter criteria for user queries
type UserFilter struct {
	TenantCode    string
	ParentAdminID *int64
	ActiveOnly    bool
	// Pagination
	Page  int
	Limit int
}

// UserRepository defines control-plane persistence for user accounts
type UserRepository interface {
	// Create creates a new user account
	Create(ctx context.Context, user *UserAccount) error

	// Update updates an existing user account
	Update(ctx context.Context, user *UserAccount) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id int64) (*UserAccount, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*UserAccount, error)

	// FindAll finds users matching the filter, returning the total count
	FindAll(ctx context.Context, filter UserFilter) ([]*UserAccount, int64, error)

	// ExistsByID checks whether a user with the given ID exists
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// ExistsByUsername checks whether a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

package identity

import "context"

// TenantRepository defines control-plane persistence for tenants
type TenantRepository interface {
	// Create registers a new tenant
	Create(ctx context.Context, tenant *Tenant) error

	// Update updates an existing tenant
	Update(ctx context.Context, tenant *Tenant) error

	// FindByCode finds a tenant by its unique code
	FindByCode(ctx context.Context, code string) (*Tenant, error)

	// FindAll returns every registered tenant
	FindAll(ctx context.Context) ([]*Tenant, error)

	// ExistsByCode checks whether a tenant with the given code is registered
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

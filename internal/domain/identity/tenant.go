package identity

import (
	"strings"
	"time"

	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Tenant represents one organization in the multi-tenant system. Each tenant
// owns an isolated data store described by StoreDSN; the control plane only
// keeps the descriptor, never the data behind it.
//
// Tenants are never hard-deleted. Deactivation closes the door to the store
// while keeping the registration for referential integrity.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(200);not null"`
	StoreDSN  string    `gorm:"type:varchar(500);not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new active tenant with required fields
func NewTenant(code, name, storeDSN string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if err := validateTenantName(name); err != nil {
		return nil, err
	}
	if storeDSN == "" {
		return nil, shared.NewDomainError("INVALID_STORE_DSN", "Tenant store descriptor cannot be empty")
	}

	now := time.Now()
	return &Tenant{
		ID:        uuid.New(),
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Name:      strings.TrimSpace(name),
		StoreDSN:  storeDSN,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Activate re-activates the tenant
func (t *Tenant) Activate() error {
	if t.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}
	t.Active = true
	t.UpdatedAt = time.Now()
	return nil
}

// Deactivate deactivates the tenant without removing the record
func (t *Tenant) Deactivate() error {
	if !t.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Tenant is already inactive")
	}
	t.Active = false
	t.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true if the tenant may be resolved to a store
func (t *Tenant) IsActive() bool {
	return t.Active
}

func validateTenantCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Tenant code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateTenantName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}
	return nil
}

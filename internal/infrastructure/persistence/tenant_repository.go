package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// Create creates a new tenant record
func (r *GormTenantRepository) Create(ctx context.Context, tenant *identity.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// Update updates an existing tenant record
func (r *GormTenantRepository) Update(ctx context.Context, tenant *identity.Tenant) error {
	result := r.db.WithContext(ctx).Save(tenant)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByCode finds a tenant by code, case-insensitively
func (r *GormTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindAll returns every registered tenant
func (r *GormTenantRepository) FindAll(ctx context.Context) ([]*identity.Tenant, error) {
	var tenants []*identity.Tenant
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// ExistsByCode checks whether a tenant code is registered
func (r *GormTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&identity.Tenant{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error
	return count > 0, err
}

// Ensure GormTenantRepository implements TenantRepository
var _ identity.TenantRepository = (*GormTenantRepository)(nil)

package tenantstore

import (
	"context"
	"errors"

	"github.com/stockhub/backend/internal/domain/org"
	"github.com/stockhub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrgRepository reads branch/counter master data from one tenant store
type GormOrgRepository struct {
	db         *gorm.DB
	tenantCode string
}

// NewOrgRepository creates a repository bound to a single tenant's store
func NewOrgRepository(db *gorm.DB, tenantCode string) *GormOrgRepository {
	return &GormOrgRepository{db: db, tenantCode: tenantCode}
}

// BranchIDs enumerates all branch ids in the store
func (r *GormOrgRepository) BranchIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&org.Branch{}).
		Where("tenant_code = ?", r.tenantCode).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CounterIDs enumerates all counter ids in the store
func (r *GormOrgRepository) CounterIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&org.Counter{}).
		Where("tenant_code = ?", r.tenantCode).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// BranchName looks up a branch display name
func (r *GormOrgRepository) BranchName(ctx context.Context, id int64) (string, error) {
	var branch org.Branch
	if err := r.db.WithContext(ctx).
		Where("tenant_code = ?", r.tenantCode).
		First(&branch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return branch.Name, nil
}

// CounterName looks up a counter display name
func (r *GormOrgRepository) CounterName(ctx context.Context, id int64) (string, error) {
	var counter org.Counter
	if err := r.db.WithContext(ctx).
		Where("tenant_code = ?", r.tenantCode).
		First(&counter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return counter.Name, nil
}

// Ensure GormOrgRepository implements org.Repository
var _ org.Repository = (*GormOrgRepository)(nil)

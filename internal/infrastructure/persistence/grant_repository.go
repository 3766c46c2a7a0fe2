package persistence

import (
	"context"
	"errors"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGrantRepository implements PermissionGrantRepository using GORM
type GormGrantRepository struct {
	db *gorm.DB
}

// NewGormGrantRepository creates a new GormGrantRepository
func NewGormGrantRepository(db *gorm.DB) *GormGrantRepository {
	return &GormGrantRepository{db: db}
}

// Upsert creates or overwrites the single (user, module) grant row
func (r *GormGrantRepository) Upsert(ctx context.Context, grant *identity.PermissionGrant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"can_view", "can_create", "can_edit", "can_delete", "can_export", "can_import", "updated_at",
		}),
	}).Create(grant).Error
}

// FindByUser returns all grant rows for a user
func (r *GormGrantRepository) FindByUser(ctx context.Context, userID int64) ([]*identity.PermissionGrant, error) {
	var grants []*identity.PermissionGrant
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("module ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// FindByUserAndModule returns the single grant row for a (user, module) pair
func (r *GormGrantRepository) FindByUserAndModule(ctx context.Context, userID int64, module identity.Module) (*identity.PermissionGrant, error) {
	var grant identity.PermissionGrant
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND module = ?", userID, module).
		First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &grant, nil
}

// FindByUsers returns all grant rows for a set of users
func (r *GormGrantRepository) FindByUsers(ctx context.Context, userIDs []int64) ([]*identity.PermissionGrant, error) {
	if len(userIDs) == 0 {
		return []*identity.PermissionGrant{}, nil
	}
	var grants []*identity.PermissionGrant
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id ASC, module ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// Delete removes the (user, module) row. Deleting a row that does not exist
// is not an error.
func (r *GormGrantRepository) Delete(ctx context.Context, userID int64, module identity.Module) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND module = ?", userID, module).
		Delete(&identity.PermissionGrant{}).Error
}

// DeleteAllForUser removes every grant row for a user
func (r *GormGrantRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&identity.PermissionGrant{}).Error
}

// Ensure GormGrantRepository implements PermissionGrantRepository
var _ identity.PermissionGrantRepository = (*GormGrantRepository)(nil)

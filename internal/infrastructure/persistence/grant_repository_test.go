package persistence

import (
	"context"
	"testing"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupGrantTestDB creates an in-memory SQLite database for testing
func setupGrantTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE permission_grants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			module TEXT NOT NULL,
			can_view INTEGER NOT NULL DEFAULT 0,
			can_create INTEGER NOT NULL DEFAULT 0,
			can_edit INTEGER NOT NULL DEFAULT 0,
			can_delete INTEGER NOT NULL DEFAULT 0,
			can_export INTEGER NOT NULL DEFAULT 0,
			can_import INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE(user_id, module)
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormGrantRepository_Upsert(t *testing.T) {
	db := setupGrantTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	grant := &identity.PermissionGrant{
		UserID:  1,
		Module:  identity.ModuleProduct,
		CanView: true,
	}
	require.NoError(t, repo.Upsert(ctx, grant))

	retrieved, err := repo.FindByUserAndModule(ctx, 1, identity.ModuleProduct)
	require.NoError(t, err)
	assert.True(t, retrieved.CanView)
	assert.False(t, retrieved.CanEdit)

	// Upserting the same (user, module) overwrites the row in place
	updated := &identity.PermissionGrant{
		UserID:  1,
		Module:  identity.ModuleProduct,
		CanEdit: true,
	}
	require.NoError(t, repo.Upsert(ctx, updated))

	retrieved, err = repo.FindByUserAndModule(ctx, 1, identity.ModuleProduct)
	require.NoError(t, err)
	assert.False(t, retrieved.CanView)
	assert.True(t, retrieved.CanEdit)

	var count int64
	require.NoError(t, db.Model(&identity.PermissionGrant{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormGrantRepository_FindByUserAndModule_NotFound(t *testing.T) {
	db := setupGrantTestDB(t)
	repo := NewGormGrantRepository(db)

	_, err := repo.FindByUserAndModule(context.Background(), 1, identity.ModuleRFID)
	assert.Equal(t, shared.ErrNotFound, err)
}

func TestGormGrantRepository_FindByUser(t *testing.T) {
	db := setupGrantTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 1, Module: identity.ModuleProduct, CanView: true}))
	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 1, Module: identity.ModuleInvoice, CanView: true}))
	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 2, Module: identity.ModuleProduct, CanView: true}))

	grants, err := repo.FindByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, grants, 2)
}

func TestGormGrantRepository_FindByUsers(t *testing.T) {
	db := setupGrantTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 1, Module: identity.ModuleProduct}))
	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 2, Module: identity.ModuleProduct}))
	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 3, Module: identity.ModuleProduct}))

	grants, err := repo.FindByUsers(ctx, []int64{1, 3})
	require.NoError(t, err)
	assert.Len(t, grants, 2)

	grants, err = repo.FindByUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestGormGrantRepository_Delete_Idempotent(t *testing.T) {
	db := setupGrantTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 1, Module: identity.ModuleProduct}))

	require.NoError(t, repo.Delete(ctx, 1, identity.ModuleProduct))
	// Second delete of the same row still succeeds
	require.NoError(t, repo.Delete(ctx, 1, identity.ModuleProduct))

	_, err := repo.FindByUserAndModule(ctx, 1, identity.ModuleProduct)
	assert.Equal(t, shared.ErrNotFound, err)
}

func TestGormGrantRepository_DeleteAllForUser(t *testing.T) {
	db := setupGrantTestDB(t)
	repo := NewGormGrantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 1, Module: identity.ModuleProduct}))
	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 1, Module: identity.ModuleInvoice}))
	require.NoError(t, repo.Upsert(ctx, &identity.PermissionGrant{UserID: 2, Module: identity.ModuleProduct}))

	require.NoError(t, repo.DeleteAllForUser(ctx, 1))

	grants, err := repo.FindByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, grants)

	grants, err = repo.FindByUser(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

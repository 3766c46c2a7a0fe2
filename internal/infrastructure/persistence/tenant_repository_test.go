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

// setupTenantTestDB creates an in-memory SQLite database for testing
func setupTenantTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE tenants (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			store_dsn TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormTenantRepository_CreateAndFind(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant, err := identity.NewTenant("acme", "Acme Retail", "postgres://tenant-acme/inventory")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tenant))

	// Lookup is case-insensitive on the code
	found, err := repo.FindByCode(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "ACME", found.Code)
	assert.True(t, found.Active)
}

func TestGormTenantRepository_FindByCode_NotFound(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.Equal(t, shared.ErrNotFound, err)
}

func TestGormTenantRepository_Update(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant, err := identity.NewTenant("ACME", "Acme Retail", "dsn")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tenant))

	require.NoError(t, tenant.Deactivate())
	require.NoError(t, repo.Update(ctx, tenant))

	found, err := repo.FindByCode(ctx, "ACME")
	require.NoError(t, err)
	assert.False(t, found.Active)
}

func TestGormTenantRepository_ExistsByCode(t *testing.T) {
	db := setupTenantTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant, err := identity.NewTenant("ACME", "Acme Retail", "dsn")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tenant))

	ok, err := repo.ExistsByCode(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByCode(ctx, "GLOBEX")
	require.NoError(t, err)
	assert.False(t, ok)
}

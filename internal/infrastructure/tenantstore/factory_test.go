package tenantstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/org"
	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/stockhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubTenantRepo serves a fixed set of tenants
type stubTenantRepo struct {
	tenants map[string]*identity.Tenant
}

func (s *stubTenantRepo) Create(_ context.Context, _ *identity.Tenant) error { return nil }
func (s *stubTenantRepo) Update(_ context.Context, _ *identity.Tenant) error { return nil }
func (s *stubTenantRepo) FindByCode(_ context.Context, code string) (*identity.Tenant, error) {
	tenant, ok := s.tenants[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return tenant, nil
}
func (s *stubTenantRepo) FindAll(_ context.Context) ([]*identity.Tenant, error) { return nil, nil }
func (s *stubTenantRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := s.tenants[code]
	return ok, nil
}

func testConfig() config.TenantStoreConfig {
	return config.TenantStoreConfig{
		OpenTimeout:  time.Second,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	}
}

func newActiveTenant(t *testing.T, code string) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant(code, code+" Inc", "postgres://store/"+code)
	require.NoError(t, err)
	return tenant
}

// seededStore builds an in-memory store with branch/counter master data
func seededStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE branches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			tenant_code TEXT NOT NULL
		)
	`).Error)
	require.NoError(t, db.Exec(`
		CREATE TABLE counters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			branch_id INTEGER NOT NULL,
			tenant_code TEXT NOT NULL
		)
	`).Error)

	require.NoError(t, db.Exec(`INSERT INTO branches (name, tenant_code) VALUES ('Main', 'ACME'), ('North', 'ACME')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO counters (name, branch_id, tenant_code) VALUES ('Front Desk', 1, 'ACME')`).Error)
	return db
}

func TestFactory_WithTenant_UnknownTenant(t *testing.T) {
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{}}
	factory := NewFactory(repo, testConfig(), zap.NewNop())

	err := factory.WithTenant(context.Background(), "NOPE", func(org.Repository) error { return nil })
	assert.Equal(t, shared.ErrTenantNotFound, err)
}

func TestFactory_WithTenant_InactiveTenant(t *testing.T) {
	tenant := newActiveTenant(t, "ACME")
	require.NoError(t, tenant.Deactivate())
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{"ACME": tenant}}
	factory := NewFactory(repo, testConfig(), zap.NewNop())

	err := factory.WithTenant(context.Background(), "ACME", func(org.Repository) error { return nil })
	assert.Equal(t, shared.ErrTenantInactive, err)
}

func TestFactory_WithTenant_OpenFailureIsUnreachable(t *testing.T) {
	tenant := newActiveTenant(t, "ACME")
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{"ACME": tenant}}
	factory := NewFactory(repo, testConfig(), zap.NewNop())
	factory.open = func(string) (*gorm.DB, error) {
		return nil, assert.AnError
	}

	err := factory.WithTenant(context.Background(), "ACME", func(org.Repository) error { return nil })
	assert.Equal(t, shared.ErrTenantUnreachable, err)
}

func TestFactory_WithTenant_OpenTimeoutIsUnreachable(t *testing.T) {
	tenant := newActiveTenant(t, "ACME")
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{"ACME": tenant}}

	cfg := testConfig()
	cfg.OpenTimeout = 50 * time.Millisecond
	factory := NewFactory(repo, cfg, zap.NewNop())
	factory.open = func(string) (*gorm.DB, error) {
		time.Sleep(500 * time.Millisecond)
		return nil, assert.AnError
	}

	start := time.Now()
	err := factory.WithTenant(context.Background(), "ACME", func(org.Repository) error { return nil })
	assert.Equal(t, shared.ErrTenantUnreachable, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestFactory_WithTenant_TimedOutOpenClosesLatePool(t *testing.T) {
	tenant := newActiveTenant(t, "ACME")
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{"ACME": tenant}}

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	cfg := testConfig()
	cfg.OpenTimeout = 50 * time.Millisecond
	factory := NewFactory(repo, cfg, zap.NewNop())
	factory.open = func(string) (*gorm.DB, error) {
		time.Sleep(200 * time.Millisecond)
		return gorm.Open(postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	}

	err = factory.WithTenant(context.Background(), "ACME", func(org.Repository) error { return nil })
	require.Equal(t, shared.ErrTenantUnreachable, err)

	// The pool that arrived after the deadline must be closed, not abandoned
	assert.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestFactory_WithTenant_QueriesStore(t *testing.T) {
	tenant := newActiveTenant(t, "ACME")
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{"ACME": tenant}}

	store := seededStore(t)
	opens := 0
	factory := NewFactory(repo, testConfig(), zap.NewNop())
	factory.open = func(string) (*gorm.DB, error) {
		opens++
		return store, nil
	}

	var ids []int64
	err := factory.WithTenant(context.Background(), "ACME", func(r org.Repository) error {
		var queryErr error
		ids, queryErr = r.BranchIDs(context.Background())
		return queryErr
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, ids)

	// Second acquisition reuses the pooled connection
	err = factory.WithTenant(context.Background(), "ACME", func(r org.Repository) error {
		name, queryErr := r.CounterName(context.Background(), 1)
		assert.Equal(t, "Front Desk", name)
		return queryErr
	})
	require.NoError(t, err)
	assert.Equal(t, 1, opens)
}

func TestFactory_WithTenant_CallbackErrorPropagates(t *testing.T) {
	tenant := newActiveTenant(t, "ACME")
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{"ACME": tenant}}

	store := seededStore(t)
	factory := NewFactory(repo, testConfig(), zap.NewNop())
	factory.open = func(string) (*gorm.DB, error) { return store, nil }

	err := factory.WithTenant(context.Background(), "ACME", func(org.Repository) error {
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)
}

func TestOrgRepository_StoreFailurePropagates(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .* FROM "branches"`).WillReturnError(assert.AnError)

	repo := NewOrgRepository(db, "ACME")
	_, err = repo.BranchIDs(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFactory_Evict(t *testing.T) {
	tenant := newActiveTenant(t, "ACME")
	repo := &stubTenantRepo{tenants: map[string]*identity.Tenant{"ACME": tenant}}

	opens := 0
	factory := NewFactory(repo, testConfig(), zap.NewNop())
	factory.open = func(string) (*gorm.DB, error) {
		opens++
		return seededStore(t), nil
	}

	require.NoError(t, factory.WithTenant(context.Background(), "ACME", func(org.Repository) error { return nil }))
	factory.Evict("ACME")
	require.NoError(t, factory.WithTenant(context.Background(), "ACME", func(org.Repository) error { return nil }))
	assert.Equal(t, 2, opens)
}

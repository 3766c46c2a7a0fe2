// Package tenantstore opens and pools connections to each tenant's isolated
// data store. Access is strictly scoped: callers receive a repository inside a
// callback and can never hold a store reference past the operation that asked
// for it.
package tenantstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/org"
	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/stockhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openFunc opens a raw connection to a tenant store DSN. Overridable in tests.
type openFunc func(dsn string) (*gorm.DB, error)

// Factory resolves tenant codes to pooled store connections. Pools are opened
// lazily on first use and kept per tenant; concurrent operations for
// different tenants never share a pool.
type Factory struct {
	tenants identity.TenantRepository
	cfg     config.TenantStoreConfig
	logger  *zap.Logger

	mu    sync.Mutex
	pools map[string]*gorm.DB
	open  openFunc
}

// NewFactory creates a new tenant store factory
func NewFactory(tenants identity.TenantRepository, cfg config.TenantStoreConfig, log *zap.Logger) *Factory {
	f := &Factory{
		tenants: tenants,
		cfg:     cfg,
		logger:  log,
		pools:   make(map[string]*gorm.DB),
	}
	f.open = f.openPostgres
	return f
}

func (f *Factory) openPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(f.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(f.cfg.MaxIdleConns)
	return db, nil
}

// WithTenant resolves the tenant, acquires its store, and runs fn with a
// repository bound to that store. The store reference does not escape fn.
// Unknown codes yield TENANT_NOT_FOUND, deactivated tenants TENANT_INACTIVE,
// and any open or ping failure within the bounded timeout TENANT_UNREACHABLE.
func (f *Factory) WithTenant(ctx context.Context, tenantCode string, fn func(repo org.Repository) error) error {
	tenant, err := f.tenants.FindByCode(ctx, tenantCode)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrTenantNotFound
		}
		return fmt.Errorf("resolve tenant %q: %w", tenantCode, err)
	}
	if !tenant.IsActive() {
		return shared.ErrTenantInactive
	}

	db, err := f.acquire(ctx, tenant)
	if err != nil {
		return err
	}

	return fn(NewOrgRepository(db, tenant.Code))
}

// acquire returns the tenant's pooled connection, opening it on first use.
// The open is bounded by the configured timeout; exceeding it folds into the
// unreachable error rather than blocking the caller.
func (f *Factory) acquire(ctx context.Context, tenant *identity.Tenant) (*gorm.DB, error) {
	f.mu.Lock()
	if db, ok := f.pools[tenant.Code]; ok {
		f.mu.Unlock()
		return db, nil
	}
	f.mu.Unlock()

	openCtx, cancel := context.WithTimeout(ctx, f.cfg.OpenTimeout)
	defer cancel()

	type openResult struct {
		db  *gorm.DB
		err error
	}
	resultCh := make(chan openResult, 1)
	go func() {
		db, err := f.open(tenant.StoreDSN)
		if err == nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				err = sqlDB.PingContext(openCtx)
			}
		}
		resultCh <- openResult{db: db, err: err}
	}()

	select {
	case <-openCtx.Done():
		// The open goroutine may still deliver a live pool; drain and close
		// it so a timed-out open never leaks connections
		go func() {
			result := <-resultCh
			closeDB(result.db)
		}()
		f.logger.Warn("Tenant store open timed out",
			zap.String("tenant_code", tenant.Code),
			zap.Duration("timeout", f.cfg.OpenTimeout))
		return nil, shared.ErrTenantUnreachable
	case result := <-resultCh:
		if result.err != nil {
			closeDB(result.db)
			f.logger.Warn("Tenant store open failed",
				zap.String("tenant_code", tenant.Code),
				zap.Error(result.err))
			return nil, shared.ErrTenantUnreachable
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		// Another goroutine may have won the race; keep the first pool
		if existing, ok := f.pools[tenant.Code]; ok {
			closeDB(result.db)
			return existing, nil
		}
		f.pools[tenant.Code] = result.db
		return result.db, nil
	}
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Evict drops a tenant's pooled connection, closing it. Used when a tenant is
// deactivated or its store descriptor changes.
func (f *Factory) Evict(tenantCode string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if db, ok := f.pools[tenantCode]; ok {
		closeDB(db)
		delete(f.pools, tenantCode)
	}
}

// CloseAll closes every pooled tenant connection
func (f *Factory) CloseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for code, db := range f.pools {
		closeDB(db)
		delete(f.pools, code)
	}
}

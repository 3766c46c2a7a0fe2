package identity

import (
	"context"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/org"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.UserAccount) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.UserAccount) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*identity.UserAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserAccount), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.UserAccount, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserAccount), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.UserAccount, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.UserAccount), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context) ([]*identity.Tenant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockGrantRepository is a mock implementation of identity.PermissionGrantRepository
type MockGrantRepository struct {
	mock.Mock
}

func (m *MockGrantRepository) Upsert(ctx context.Context, grant *identity.PermissionGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockGrantRepository) FindByUser(ctx context.Context, userID int64) ([]*identity.PermissionGrant, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*identity.PermissionGrant), args.Error(1)
}

func (m *MockGrantRepository) FindByUserAndModule(ctx context.Context, userID int64, module identity.Module) (*identity.PermissionGrant, error) {
	args := m.Called(ctx, userID, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.PermissionGrant), args.Error(1)
}

func (m *MockGrantRepository) FindByUsers(ctx context.Context, userIDs []int64) ([]*identity.PermissionGrant, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).([]*identity.PermissionGrant), args.Error(1)
}

func (m *MockGrantRepository) Delete(ctx context.Context, userID int64, module identity.Module) error {
	args := m.Called(ctx, userID, module)
	return args.Error(0)
}

func (m *MockGrantRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockOrgRepository is a mock implementation of org.Repository
type MockOrgRepository struct {
	mock.Mock
}

func (m *MockOrgRepository) BranchIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockOrgRepository) CounterIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockOrgRepository) BranchName(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockOrgRepository) CounterName(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockTenantStores binds a MockOrgRepository behind the TenantStores contract.
// Err simulates a store that cannot be opened at all.
type MockTenantStores struct {
	Repo org.Repository
	Err  error
}

func (m *MockTenantStores) WithTenant(_ context.Context, _ string, fn func(repo org.Repository) error) error {
	if m.Err != nil {
		return m.Err
	}
	return fn(m.Repo)
}

package handler

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	domainIdentity "github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/org"
	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/stockhub/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

// stubUserRepo serves user accounts from a map
type stubUserRepo struct {
	users map[int64]*domainIdentity.UserAccount
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domainIdentity.UserAccount)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domainIdentity.UserAccount) error {
	user.ID = int64(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domainIdentity.UserAccount) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domainIdentity.UserAccount, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domainIdentity.UserAccount, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubUserRepo) FindAll(_ context.Context, filter domainIdentity.UserFilter) ([]*domainIdentity.UserAccount, int64, error) {
	var out []*domainIdentity.UserAccount
	for _, user := range r.users {
		if filter.TenantCode != "" && user.TenantCode != filter.TenantCode {
			continue
		}
		if filter.ParentAdminID != nil {
			if user.ParentAdminID == nil || *user.ParentAdminID != *filter.ParentAdminID {
				continue
			}
		}
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// stubTenantRepo serves tenants from a map keyed by code
type stubTenantRepo struct {
	tenants map[string]*domainIdentity.Tenant
}

func newStubTenantRepo() *stubTenantRepo {
	return &stubTenantRepo{tenants: make(map[string]*domainIdentity.Tenant)}
}

func (r *stubTenantRepo) Create(_ context.Context, tenant *domainIdentity.Tenant) error {
	r.tenants[tenant.Code] = tenant
	return nil
}

func (r *stubTenantRepo) Update(_ context.Context, tenant *domainIdentity.Tenant) error {
	r.tenants[tenant.Code] = tenant
	return nil
}

func (r *stubTenantRepo) FindByCode(_ context.Context, code string) (*domainIdentity.Tenant, error) {
	tenant, ok := r.tenants[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return tenant, nil
}

func (r *stubTenantRepo) FindAll(_ context.Context) ([]*domainIdentity.Tenant, error) {
	var out []*domainIdentity.Tenant
	for _, tenant := range r.tenants {
		out = append(out, tenant)
	}
	return out, nil
}

func (r *stubTenantRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := r.tenants[code]
	return ok, nil
}

// stubGrantRepo keeps grant rows in memory
type stubGrantRepo struct {
	grants map[int64]map[domainIdentity.Module]*domainIdentity.PermissionGrant
}

func newStubGrantRepo() *stubGrantRepo {
	return &stubGrantRepo{grants: make(map[int64]map[domainIdentity.Module]*domainIdentity.PermissionGrant)}
}

func (r *stubGrantRepo) Upsert(_ context.Context, grant *domainIdentity.PermissionGrant) error {
	if r.grants[grant.UserID] == nil {
		r.grants[grant.UserID] = make(map[domainIdentity.Module]*domainIdentity.PermissionGrant)
	}
	r.grants[grant.UserID][grant.Module] = grant
	return nil
}

func (r *stubGrantRepo) FindByUser(_ context.Context, userID int64) ([]*domainIdentity.PermissionGrant, error) {
	var out []*domainIdentity.PermissionGrant
	for _, grant := range r.grants[userID] {
		out = append(out, grant)
	}
	return out, nil
}

func (r *stubGrantRepo) FindByUserAndModule(_ context.Context, userID int64, module domainIdentity.Module) (*domainIdentity.PermissionGrant, error) {
	grant, ok := r.grants[userID][module]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return grant, nil
}

func (r *stubGrantRepo) FindByUsers(_ context.Context, userIDs []int64) ([]*domainIdentity.PermissionGrant, error) {
	var out []*domainIdentity.PermissionGrant
	for _, id := range userIDs {
		for _, grant := range r.grants[id] {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (r *stubGrantRepo) Delete(_ context.Context, userID int64, module domainIdentity.Module) error {
	delete(r.grants[userID], module)
	return nil
}

func (r *stubGrantRepo) DeleteAllForUser(_ context.Context, userID int64) error {
	delete(r.grants, userID)
	return nil
}

// stubOrgRepo answers branch/counter queries from fixed data
type stubOrgRepo struct {
	branchIDs    []int64
	counterIDs   []int64
	branchNames  map[int64]string
	counterNames map[int64]string
}

func (r *stubOrgRepo) BranchIDs(_ context.Context) ([]int64, error)  { return r.branchIDs, nil }
func (r *stubOrgRepo) CounterIDs(_ context.Context) ([]int64, error) { return r.counterIDs, nil }

func (r *stubOrgRepo) BranchName(_ context.Context, id int64) (string, error) {
	name, ok := r.branchNames[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return name, nil
}

func (r *stubOrgRepo) CounterName(_ context.Context, id int64) (string, error) {
	name, ok := r.counterNames[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return name, nil
}

// stubStores hands the same org repository to every tenant
type stubStores struct {
	repo org.Repository
	err  error
}

func (s *stubStores) WithTenant(_ context.Context, _ string, fn func(org.Repository) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(s.repo)
}

func mustAdmin(t *testing.T, repo *stubUserRepo, username string) *domainIdentity.UserAccount {
	t.Helper()
	admin, err := domainIdentity.NewAdminAccount("ACME", username, "secret-pass-1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), admin))
	return admin
}

func mustScopedUser(t *testing.T, repo *stubUserRepo, username string, branchID, counterID int64, parentAdminID int64) *domainIdentity.UserAccount {
	t.Helper()
	user, err := domainIdentity.NewUserAccount("ACME", username, "secret-pass-1")
	require.NoError(t, err)
	require.NoError(t, user.AssignScope(&branchID, &counterID))
	require.NoError(t, repo.Create(context.Background(), user))
	require.NoError(t, user.SetParentAdmin(parentAdminID))
	return user
}

// authAs injects the user ID the JWT middleware would have stored
func authAs(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID)
		c.Next()
	}
}

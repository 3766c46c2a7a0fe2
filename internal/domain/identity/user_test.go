package identity

import (
	"testing"

	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestNewUserAccount(t *testing.T) {
	user, err := NewUserAccount("acme", "Alice.Smith", "password123")
	require.NoError(t, err)

	assert.Equal(t, "ACME", user.TenantCode)
	assert.Equal(t, "alice.smith", user.Username)
	assert.True(t, user.Active)
	assert.False(t, user.IsAdmin)
	assert.Nil(t, user.BranchID)
	assert.Nil(t, user.CounterID)
	assert.True(t, user.VerifyPassword("password123"))
	assert.False(t, user.VerifyPassword("wrong"))
}

func TestNewUserAccount_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantCode string
	}{
		{"empty username", "", "password123", "INVALID_USERNAME"},
		{"short username", "ab", "password123", "INVALID_USERNAME"},
		{"bad characters", "alice smith", "password123", "INVALID_USERNAME"},
		{"empty password", "alice", "", "INVALID_PASSWORD"},
		{"short password", "alice", "pass1", "INVALID_PASSWORD"},
		{"no number", "alice", "passwordonly", "INVALID_PASSWORD"},
		{"no letter", "alice", "1234567890", "INVALID_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUserAccount("ACME", tt.username, tt.password)
			require.Error(t, err)
			domainErr, ok := err.(*shared.DomainError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestNewAdminAccount(t *testing.T) {
	admin, err := NewAdminAccount("ACME", "boss", "password123")
	require.NoError(t, err)

	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.IsTenantWideAdmin())
}

func TestUserAccount_AssignScope(t *testing.T) {
	user, err := NewUserAccount("ACME", "alice", "password123")
	require.NoError(t, err)

	// Counter without branch is rejected
	err = user.AssignScope(nil, int64Ptr(7))
	require.Error(t, err)
	assert.Equal(t, "INVALID_SCOPE", err.(*shared.DomainError).Code)

	err = user.AssignScope(int64Ptr(0), nil)
	require.Error(t, err)

	require.NoError(t, user.AssignScope(int64Ptr(3), int64Ptr(7)))
	assert.Equal(t, int64(3), *user.BranchID)
	assert.Equal(t, int64(7), *user.CounterID)

	user.ClearScope()
	assert.Nil(t, user.BranchID)
	assert.Nil(t, user.CounterID)
}

func TestUserAccount_IsTenantWideAdmin(t *testing.T) {
	admin, err := NewAdminAccount("ACME", "boss", "password123")
	require.NoError(t, err)
	assert.True(t, admin.IsTenantWideAdmin())

	// A branch-scoped admin only manages its own creations
	require.NoError(t, admin.AssignScope(int64Ptr(1), nil))
	assert.False(t, admin.IsTenantWideAdmin())

	user, err := NewUserAccount("ACME", "alice", "password123")
	require.NoError(t, err)
	assert.False(t, user.IsTenantWideAdmin())
}

func TestUserAccount_DeactivateActivate(t *testing.T) {
	user, err := NewUserAccount("ACME", "alice", "password123")
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.CanLogin())

	err = user.Deactivate()
	require.Error(t, err)

	require.NoError(t, user.Activate())
	assert.True(t, user.CanLogin())
}

func TestUserAccount_SetPassword(t *testing.T) {
	user, err := NewUserAccount("ACME", "alice", "password123")
	require.NoError(t, err)

	require.NoError(t, user.SetPassword("newsecret42"))
	assert.True(t, user.VerifyPassword("newsecret42"))
	assert.False(t, user.VerifyPassword("password123"))

	err = user.SetPassword("short")
	require.Error(t, err)
}

func TestUserAccount_GetDisplayNameOrUsername(t *testing.T) {
	user, err := NewUserAccount("ACME", "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.GetDisplayNameOrUsername())

	require.NoError(t, user.SetDisplayName("Alice Smith"))
	assert.Equal(t, "Alice Smith", user.GetDisplayNameOrUsername())
}

package identity

import (
	"testing"

	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	tenant, err := NewTenant("acme", "Acme Retail", "postgres://tenant-acme/inventory")
	require.NoError(t, err)

	assert.Equal(t, "ACME", tenant.Code)
	assert.Equal(t, "Acme Retail", tenant.Name)
	assert.True(t, tenant.Active)
	assert.NotEqual(t, "", tenant.ID.String())
}

func TestNewTenant_Validation(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		orgName  string
		storeDSN string
		wantCode string
	}{
		{"empty code", "", "Acme", "dsn", "INVALID_CODE"},
		{"invalid characters", "ac me!", "Acme", "dsn", "INVALID_CODE"},
		{"empty name", "ACME", "", "dsn", "INVALID_NAME"},
		{"empty dsn", "ACME", "Acme", "", "INVALID_STORE_DSN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTenant(tt.code, tt.orgName, tt.storeDSN)
			require.Error(t, err)
			domainErr, ok := err.(*shared.DomainError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestTenant_DeactivateActivate(t *testing.T) {
	tenant, err := NewTenant("ACME", "Acme Retail", "dsn")
	require.NoError(t, err)

	require.NoError(t, tenant.Deactivate())
	assert.False(t, tenant.IsActive())

	// Double-deactivation is rejected
	err = tenant.Deactivate()
	require.Error(t, err)

	require.NoError(t, tenant.Activate())
	assert.True(t, tenant.IsActive())
}

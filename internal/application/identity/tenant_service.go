package identity

import (
	"context"
	"time"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TenantDirectoryService resolves tenant codes to store descriptors. It is the
// single authority on which tenants exist and whether they are active.
type TenantDirectoryService struct {
	tenantRepo identity.TenantRepository
	logger     *zap.Logger
}

// NewTenantDirectoryService creates a new tenant directory service
func NewTenantDirectoryService(tenantRepo identity.TenantRepository, logger *zap.Logger) *TenantDirectoryService {
	return &TenantDirectoryService{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// RegisterTenantInput contains input for registering a tenant
type RegisterTenantInput struct {
	Code     string
	Name     string
	StoreDSN string
}

// TenantDTO represents tenant data transfer object
type TenantDTO struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Register registers a new tenant with its store descriptor
func (s *TenantDirectoryService) Register(ctx context.Context, input RegisterTenantInput) (*TenantDTO, error) {
	s.logger.Info("Registering tenant", zap.String("code", input.Code))

	tenant, err := identity.NewTenant(input.Code, input.Name, input.StoreDSN)
	if err != nil {
		return nil, err
	}

	exists, err := s.tenantRepo.ExistsByCode(ctx, tenant.Code)
	if err != nil {
		s.logger.Error("Failed to check tenant code existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check tenant code availability")
	}
	if exists {
		return nil, shared.NewDomainError("TENANT_CODE_EXISTS", "Tenant code already registered")
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		s.logger.Error("Failed to register tenant", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register tenant")
	}

	s.logger.Info("Tenant registered", zap.String("code", tenant.Code))
	return toTenantDTO(tenant), nil
}

// Resolve returns the tenant for a code. Unknown codes map to TENANT_NOT_FOUND
// and inactive tenants to TENANT_INACTIVE; callers never receive a descriptor
// they are not allowed to open.
func (s *TenantDirectoryService) Resolve(ctx context.Context, code string) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrTenantNotFound
		}
		s.logger.Error("Failed to resolve tenant", zap.String("code", code), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve tenant")
	}
	if !tenant.IsActive() {
		return nil, shared.ErrTenantInactive
	}
	return tenant, nil
}

// IsActive reports whether a tenant code resolves to an active tenant
func (s *TenantDirectoryService) IsActive(ctx context.Context, code string) (bool, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return tenant.IsActive(), nil
}

// List returns all registered tenants, active and inactive
func (s *TenantDirectoryService) List(ctx context.Context) ([]TenantDTO, error) {
	tenants, err := s.tenantRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list tenants", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list tenants")
	}

	dtos := make([]TenantDTO, 0, len(tenants))
	for _, tenant := range tenants {
		dtos = append(dtos, *toTenantDTO(tenant))
	}
	return dtos, nil
}

// Deactivate deactivates a tenant; its users can no longer resolve a store
func (s *TenantDirectoryService) Deactivate(ctx context.Context, code string) error {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrTenantNotFound
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find tenant")
	}

	if err := tenant.Deactivate(); err != nil {
		return err
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		s.logger.Error("Failed to deactivate tenant", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate tenant")
	}

	s.logger.Info("Tenant deactivated", zap.String("code", tenant.Code))
	return nil
}

// Activate re-activates a tenant
func (s *TenantDirectoryService) Activate(ctx context.Context, code string) error {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrTenantNotFound
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find tenant")
	}

	if err := tenant.Activate(); err != nil {
		return err
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		s.logger.Error("Failed to activate tenant", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to activate tenant")
	}

	s.logger.Info("Tenant activated", zap.String("code", tenant.Code))
	return nil
}

func toTenantDTO(tenant *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:        tenant.ID.String(),
		Code:      tenant.Code,
		Name:      tenant.Name,
		Active:    tenant.Active,
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}
}

package identity

import (
	"context"
	"time"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserAdminService handles user administration. Every operation runs under
// the management hierarchy: an admin only sees and touches the accounts it
// manages.
type UserAdminService struct {
	userRepo  identity.UserRepository
	grantRepo identity.PermissionGrantRepository
	tenants   *TenantDirectoryService
	hierarchy *HierarchyService
	access    *AccessService
	logger    *zap.Logger
}

// NewUserAdminService creates a new user administration service
func NewUserAdminService(
	userRepo identity.UserRepository,
	grantRepo identity.PermissionGrantRepository,
	tenants *TenantDirectoryService,
	hierarchy *HierarchyService,
	access *AccessService,
	logger *zap.Logger,
) *UserAdminService {
	return &UserAdminService{
		userRepo:  userRepo,
		grantRepo: grantRepo,
		tenants:   tenants,
		hierarchy: hierarchy,
		access:    access,
		logger:    logger,
	}
}

// CreateUserInput contains input for creating a user account
type CreateUserInput struct {
	ActorID     int64
	Username    string
	Password    string
	DisplayName string
	IsAdmin     bool
	BranchID    *int64
	CounterID   *int64
}

// UpdateUserInput contains input for updating a user account
type UpdateUserInput struct {
	ActorID     int64
	UserID      int64
	DisplayName *string
	BranchID    *int64
	CounterID   *int64
	ClearScope  bool
}

// UserDTO represents user account data transfer object. Branch and counter
// names come from the tenant store and may read "Unavailable" when that store
// cannot be reached.
type UserDTO struct {
	ID            int64     `json:"id"`
	TenantCode    string    `json:"tenant_code"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	IsAdmin       bool      `json:"is_admin"`
	BranchID      *int64    `json:"branch_id,omitempty"`
	BranchName    string    `json:"branch_name,omitempty"`
	CounterID     *int64    `json:"counter_id,omitempty"`
	CounterName   string    `json:"counter_name,omitempty"`
	ParentAdminID *int64    `json:"parent_admin_id,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserListResult represents paginated user list result
type UserListResult struct {
	Users      []UserDTO `json:"users"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Create creates a user account under the acting admin. The new account lands
// in the actor's tenant with the actor recorded as parent admin.
func (s *UserAdminService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	actor, err := s.userRepo.FindByID(ctx, input.ActorID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrAuthorizationDenied
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load acting admin")
	}
	if !actor.IsAdmin || !actor.Active {
		return nil, shared.ErrAuthorizationDenied
	}

	if _, err := s.tenants.Resolve(ctx, actor.TenantCode); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username availability", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
	}
	if taken {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username is already taken")
	}

	var user *identity.UserAccount
	if input.IsAdmin {
		user, err = identity.NewAdminAccount(actor.TenantCode, input.Username, input.Password)
	} else {
		user, err = identity.NewUserAccount(actor.TenantCode, input.Username, input.Password)
	}
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.BranchID != nil || input.CounterID != nil {
		if err := user.AssignScope(input.BranchID, input.CounterID); err != nil {
			return nil, err
		}
	}
	if err := user.SetParentAdmin(actor.ID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.String("username", user.Username), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	s.logger.Info("User created",
		zap.Int64("acting_admin_id", actor.ID),
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Bool("is_admin", user.IsAdmin))
	return s.toUserDTO(ctx, user), nil
}

// GetByID returns one managed user
func (s *UserAdminService) GetByID(ctx context.Context, actorID, userID int64) (*UserDTO, error) {
	user, err := s.findManaged(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	return s.toUserDTO(ctx, user), nil
}

// List returns the users the acting admin manages. Tenant-wide admins see
// their whole tenant, scoped admins only the accounts they created.
func (s *UserAdminService) List(ctx context.Context, actorID int64, page, limit int) (*UserListResult, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrAuthorizationDenied
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load acting admin")
	}
	if !actor.IsAdmin || !actor.Active {
		return nil, shared.ErrAuthorizationDenied
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := identity.UserFilter{
		TenantCode: actor.TenantCode,
		Page:       page,
		Limit:      limit,
	}
	if !actor.IsTenantWideAdmin() {
		filter.ParentAdminID = &actor.ID
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Int64("actor_id", actorID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, *s.toUserDTO(ctx, user))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &UserListResult{
		Users:      dtos,
		Total:      total,
		Page:       page,
		PageSize:   limit,
		TotalPages: totalPages,
	}, nil
}

// Update changes display name and branch/counter scope of a managed user
func (s *UserAdminService) Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.findManaged(ctx, input.ActorID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.ClearScope {
		user.ClearScope()
	} else if input.BranchID != nil || input.CounterID != nil {
		if err := user.AssignScope(input.BranchID, input.CounterID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User updated",
		zap.Int64("acting_admin_id", input.ActorID),
		zap.Int64("user_id", user.ID))
	return s.toUserDTO(ctx, user), nil
}

// ResetPassword sets a new password for a managed user
func (s *UserAdminService) ResetPassword(ctx context.Context, actorID, userID int64, newPassword string) error {
	user, err := s.findManaged(ctx, actorID, userID)
	if err != nil {
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Int64("user_id", user.ID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	s.logger.Info("Password reset",
		zap.Int64("acting_admin_id", actorID),
		zap.Int64("user_id", user.ID))
	return nil
}

// Deactivate soft-deletes a managed user. The record and its grant rows stay
// for referential integrity.
func (s *UserAdminService) Deactivate(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot deactivate own account")
	}

	user, err := s.findManaged(ctx, actorID, userID)
	if err != nil {
		return err
	}

	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to deactivate user", zap.Int64("user_id", user.ID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate user")
	}

	s.logger.Info("User deactivated",
		zap.Int64("acting_admin_id", actorID),
		zap.Int64("user_id", user.ID))
	return nil
}

// Activate re-activates a managed user
func (s *UserAdminService) Activate(ctx context.Context, actorID, userID int64) error {
	user, err := s.findManaged(ctx, actorID, userID)
	if err != nil {
		return err
	}

	if err := user.Activate(); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to activate user", zap.Int64("user_id", user.ID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to activate user")
	}

	s.logger.Info("User activated",
		zap.Int64("acting_admin_id", actorID),
		zap.Int64("user_id", user.ID))
	return nil
}

func (s *UserAdminService) findManaged(ctx context.Context, actorID, userID int64) (*identity.UserAccount, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrUserNotFound
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user")
	}

	allowed, err := s.hierarchy.CanManage(ctx, actorID, userID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check management authority")
	}
	if !allowed {
		return nil, shared.ErrAuthorizationDenied
	}
	return user, nil
}

func (s *UserAdminService) toUserDTO(ctx context.Context, user *identity.UserAccount) *UserDTO {
	dto := &UserDTO{
		ID:            user.ID,
		TenantCode:    user.TenantCode,
		Username:      user.Username,
		DisplayName:   user.GetDisplayNameOrUsername(),
		IsAdmin:       user.IsAdmin,
		BranchID:      user.BranchID,
		CounterID:     user.CounterID,
		ParentAdminID: user.ParentAdminID,
		Active:        user.Active,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
	if user.BranchID != nil {
		dto.BranchName = s.access.BranchDisplayName(ctx, user.TenantCode, *user.BranchID)
	}
	if user.CounterID != nil {
		dto.CounterName = s.access.CounterDisplayName(ctx, user.TenantCode, *user.CounterID)
	}
	return dto
}

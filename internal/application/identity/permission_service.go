package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PermissionService manages the module/action capability matrix. Every
// mutation is attributed to the acting admin and authorized through the
// management hierarchy before it touches a grant row.
type PermissionService struct {
	grantRepo identity.PermissionGrantRepository
	userRepo  identity.UserRepository
	hierarchy *HierarchyService
	activity  ActivityLog
	logger    *zap.Logger
}

// NewPermissionService creates a new permission service with a zap-backed
// activity log
func NewPermissionService(
	grantRepo identity.PermissionGrantRepository,
	userRepo identity.UserRepository,
	hierarchy *HierarchyService,
	logger *zap.Logger,
) *PermissionService {
	return &PermissionService{
		grantRepo: grantRepo,
		userRepo:  userRepo,
		hierarchy: hierarchy,
		activity:  NewZapActivityLog(logger),
		logger:    logger,
	}
}

// SetActivityLog replaces the audit trail sink
func (s *PermissionService) SetActivityLog(activity ActivityLog) {
	s.activity = activity
}

// GrantInput is one module's capability flags in a set request
type GrantInput struct {
	Module    string
	CanView   bool
	CanCreate bool
	CanEdit   bool
	CanDelete bool
	CanExport bool
	CanImport bool
}

// GrantDTO represents a permission grant data transfer object
type GrantDTO struct {
	UserID    int64     `json:"user_id"`
	Module    string    `json:"module"`
	CanView   bool      `json:"can_view"`
	CanCreate bool      `json:"can_create"`
	CanEdit   bool      `json:"can_edit"`
	CanDelete bool      `json:"can_delete"`
	CanExport bool      `json:"can_export"`
	CanImport bool      `json:"can_import"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModuleSummaryDTO is the per-module slice of a permission summary
type ModuleSummaryDTO struct {
	Module          string `json:"module"`
	PermissionCount int    `json:"permission_count"`
}

// PermissionSummaryDTO aggregates a user's matrix for dashboards. Total is
// the theoretical ceiling (rows times six capabilities), Active the flags
// actually granted.
type PermissionSummaryDTO struct {
	UserID            int64              `json:"user_id"`
	ModuleCount       int                `json:"module_count"`
	TotalPermissions  int                `json:"total_permissions"`
	ActivePermissions int                `json:"active_permissions"`
	Modules           []ModuleSummaryDTO `json:"modules"`
}

// BulkUserResult reports the outcome of a bulk operation for one user
type BulkUserResult struct {
	UserID  int64  `json:"user_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ListAvailableModules returns the fixed closed set of module names
func (s *PermissionService) ListAvailableModules() []string {
	modules := identity.AllModules()
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, string(m))
	}
	return names
}

// GetUserGrants returns every grant row of the target user. The acting admin
// must manage the target.
func (s *PermissionService) GetUserGrants(ctx context.Context, actorID, userID int64) ([]GrantDTO, error) {
	if err := s.authorize(ctx, actorID, userID); err != nil {
		return nil, err
	}

	grants, err := s.grantRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load grants", zap.Int64("user_id", userID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load permissions")
	}
	return toGrantDTOs(grants), nil
}

// GetOwnGrants returns the caller's own grant rows without any management
// check, for the profile endpoints
func (s *PermissionService) GetOwnGrants(ctx context.Context, userID int64) ([]GrantDTO, error) {
	grants, err := s.grantRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load own grants", zap.Int64("user_id", userID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load permissions")
	}
	return toGrantDTOs(grants), nil
}

// GetManagedGrants returns the grant rows of every user the acting admin
// manages, itself included
func (s *PermissionService) GetManagedGrants(ctx context.Context, actorID int64) ([]GrantDTO, error) {
	ids, err := s.hierarchy.ManagedUserIDs(ctx, actorID)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve managed users")
	}
	ids = append(ids, actorID)

	grants, err := s.grantRepo.FindByUsers(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load managed grants", zap.Int64("actor_id", actorID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load permissions")
	}
	return toGrantDTOs(grants), nil
}

// HasPermission reports whether the user holds the action on the module.
// A user with no grant row for the module holds nothing; unknown action names
// answer false rather than erroring.
func (s *PermissionService) HasPermission(ctx context.Context, userID int64, module identity.Module, action string) (bool, error) {
	grant, err := s.grantRepo.FindByUserAndModule(ctx, userID, module)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		s.logger.Error("Failed to check permission",
			zap.Int64("user_id", userID),
			zap.String("module", string(module)),
			zap.Error(err))
		return false, shared.NewDomainError("INTERNAL_ERROR", "Failed to check permission")
	}
	return grant.Allows(action), nil
}

// Summarize aggregates the target user's matrix
func (s *PermissionService) Summarize(ctx context.Context, actorID, userID int64) (*PermissionSummaryDTO, error) {
	if err := s.authorize(ctx, actorID, userID); err != nil {
		return nil, err
	}

	grants, err := s.grantRepo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load grants for summary", zap.Int64("user_id", userID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load permissions")
	}

	summary := &PermissionSummaryDTO{
		UserID:           userID,
		ModuleCount:      len(grants),
		TotalPermissions: len(grants) * identity.ActionsPerModule,
		Modules:          make([]ModuleSummaryDTO, 0, len(grants)),
	}
	for _, grant := range grants {
		active := grant.ActiveCount()
		summary.ActivePermissions += active
		summary.Modules = append(summary.Modules, ModuleSummaryDTO{
			Module:          string(grant.Module),
			PermissionCount: active,
		})
	}
	return summary, nil
}

// SetGrants upserts one grant row per listed module. Existing rows are
// overwritten in place.
func (s *PermissionService) SetGrants(ctx context.Context, actorID, userID int64, inputs []GrantInput) ([]GrantDTO, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one grant is required")
	}
	if err := s.authorize(ctx, actorID, userID); err != nil {
		return nil, err
	}

	// Validate every module before touching any row
	modules := make([]identity.Module, 0, len(inputs))
	for _, input := range inputs {
		module, err := identity.ParseModule(input.Module)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	saved := make([]*identity.PermissionGrant, 0, len(inputs))
	for i, input := range inputs {
		grant := &identity.PermissionGrant{
			UserID:    userID,
			Module:    modules[i],
			CanView:   input.CanView,
			CanCreate: input.CanCreate,
			CanEdit:   input.CanEdit,
			CanDelete: input.CanDelete,
			CanExport: input.CanExport,
			CanImport: input.CanImport,
		}
		if err := s.grantRepo.Upsert(ctx, grant); err != nil {
			s.logger.Error("Failed to upsert grant",
				zap.Int64("user_id", userID),
				zap.String("module", string(modules[i])),
				zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save permissions")
		}
		saved = append(saved, grant)
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID: actorID,
		UserID:  userID,
		Action:  "permissions.assigned",
		Detail:  fmt.Sprintf("%d modules", len(saved)),
	})
	return toGrantDTOs(saved), nil
}

// RemoveGrant deletes the single (user, module) row. Removing a grant that
// does not exist succeeds.
func (s *PermissionService) RemoveGrant(ctx context.Context, actorID, userID int64, moduleName string) error {
	module, err := identity.ParseModule(moduleName)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, userID); err != nil {
		return err
	}

	if err := s.grantRepo.Delete(ctx, userID, module); err != nil {
		s.logger.Error("Failed to remove grant",
			zap.Int64("user_id", userID),
			zap.String("module", string(module)),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to remove permission")
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID: actorID,
		UserID:  userID,
		Action:  "permissions.removed",
		Detail:  string(module),
	})
	return nil
}

// RemoveAllGrants deletes every grant row of the target user
func (s *PermissionService) RemoveAllGrants(ctx context.Context, actorID, userID int64) error {
	if err := s.authorize(ctx, actorID, userID); err != nil {
		return err
	}

	if err := s.grantRepo.DeleteAllForUser(ctx, userID); err != nil {
		s.logger.Error("Failed to remove all grants", zap.Int64("user_id", userID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to remove permissions")
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID: actorID,
		UserID:  userID,
		Action:  "permissions.removed_all",
	})
	return nil
}

// BulkSetGrants applies SetGrants to every listed user. A failure on one user
// never blocks the rest; the per-user outcome is reported back.
func (s *PermissionService) BulkSetGrants(ctx context.Context, actorID int64, userIDs []int64, inputs []GrantInput) ([]BulkUserResult, error) {
	if len(userIDs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one user is required")
	}

	results := make([]BulkUserResult, 0, len(userIDs))
	for _, userID := range userIDs {
		if _, err := s.SetGrants(ctx, actorID, userID, inputs); err != nil {
			results = append(results, BulkUserResult{UserID: userID, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkUserResult{UserID: userID, Success: true})
	}
	return results, nil
}

// BulkRemoveGrants removes the listed modules, or every grant when removeAll
// is set, from every listed user
func (s *PermissionService) BulkRemoveGrants(ctx context.Context, actorID int64, userIDs []int64, moduleNames []string, removeAll bool) ([]BulkUserResult, error) {
	if len(userIDs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one user is required")
	}
	if !removeAll {
		if len(moduleNames) == 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Modules are required unless removing all")
		}
		// A bad module name is a payload fault, not a per-user one
		for _, name := range moduleNames {
			if _, err := identity.ParseModule(name); err != nil {
				return nil, err
			}
		}
	}

	results := make([]BulkUserResult, 0, len(userIDs))
	for _, userID := range userIDs {
		var err error
		if removeAll {
			err = s.RemoveAllGrants(ctx, actorID, userID)
		} else {
			for _, name := range moduleNames {
				if err = s.RemoveGrant(ctx, actorID, userID, name); err != nil {
					break
				}
			}
		}
		if err != nil {
			results = append(results, BulkUserResult{UserID: userID, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkUserResult{UserID: userID, Success: true})
	}
	return results, nil
}

// authorize maps the target through the hierarchy: unknown target is 404,
// unmanaged target is 403
func (s *PermissionService) authorize(ctx context.Context, actorID, userID int64) error {
	exists, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check user")
	}
	if !exists {
		return shared.ErrUserNotFound
	}

	allowed, err := s.hierarchy.CanManage(ctx, actorID, userID)
	if err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check management authority")
	}
	if !allowed {
		return shared.ErrAuthorizationDenied
	}
	return nil
}

func toGrantDTOs(grants []*identity.PermissionGrant) []GrantDTO {
	dtos := make([]GrantDTO, 0, len(grants))
	for _, grant := range grants {
		dtos = append(dtos, GrantDTO{
			UserID:    grant.UserID,
			Module:    string(grant.Module),
			CanView:   grant.CanView,
			CanCreate: grant.CanCreate,
			CanEdit:   grant.CanEdit,
			CanDelete: grant.CanDelete,
			CanExport: grant.CanExport,
			CanImport: grant.CanImport,
			UpdatedAt: grant.UpdatedAt,
		})
	}
	return dtos
}

package identity

import (
	"context"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// HierarchyService answers who may manage whom. Management authority follows
// the creation chain: a tenant-wide admin manages every user in its tenant,
// while a scoped admin only manages the accounts it created itself.
type HierarchyService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewHierarchyService creates a new hierarchy service
func NewHierarchyService(userRepo identity.UserRepository, logger *zap.Logger) *HierarchyService {
	return &HierarchyService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CanManage reports whether the acting user may administer the target user.
// Missing accounts and non-admin actors answer false rather than erroring, so
// the predicate never leaks whether an account exists.
func (s *HierarchyService) CanManage(ctx context.Context, actorID, targetID int64) (bool, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if !actor.IsAdmin || !actor.Active {
		return false, nil
	}

	if actorID == targetID {
		return true, nil
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if target.TenantCode != actor.TenantCode {
		return false, nil
	}

	if actor.IsTenantWideAdmin() {
		return true, nil
	}

	return target.ParentAdminID != nil && *target.ParentAdminID == actorID, nil
}

// ManagedUserIDs returns the ids of every user the acting admin may manage
// within its tenant, itself excluded
func (s *HierarchyService) ManagedUserIDs(ctx context.Context, actorID int64) ([]int64, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if err == shared.ErrNotFound {
			return []int64{}, nil
		}
		return nil, err
	}
	if !actor.IsAdmin || !actor.Active {
		return []int64{}, nil
	}

	filter := identity.UserFilter{TenantCode: actor.TenantCode}
	if !actor.IsTenantWideAdmin() {
		filter.ParentAdminID = &actor.ID
	}

	users, _, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list managed users", zap.Int64("actor_id", actorID), zap.Error(err))
		return nil, err
	}

	ids := make([]int64, 0, len(users))
	for _, user := range users {
		if user.ID == actorID {
			continue
		}
		ids = append(ids, user.ID)
	}
	return ids, nil
}

package identity

import (
	"context"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/org"
	"github.com/stockhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TenantStores provides scoped access to a tenant's isolated store. The
// callback receives a repository bound to exactly that store; the underlying
// handle is released when the callback returns, on every exit path.
type TenantStores interface {
	WithTenant(ctx context.Context, tenantCode string, fn func(repo org.Repository) error) error
}

// AccessService decides branch/counter reachability for a user. Admins bypass
// scoping unconditionally; scoped users are confined to their assigned branch
// and counter by exact id equality.
type AccessService struct {
	userRepo identity.UserRepository
	stores   TenantStores
	logger   *zap.Logger
}

// NewAccessService creates a new access control service
func NewAccessService(userRepo identity.UserRepository, stores TenantStores, logger *zap.Logger) *AccessService {
	return &AccessService{
		userRepo: userRepo,
		stores:   stores,
		logger:   logger,
	}
}

// IsAdmin reports whether the user is an active admin. Absent users answer
// false, never an error.
func (s *AccessService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// CanAccessBranch reports whether the user may act on the branch
func (s *AccessService) CanAccessBranch(ctx context.Context, userID, branchID int64) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if user.IsAdmin {
		return true, nil
	}
	return user.BranchID != nil && *user.BranchID == branchID, nil
}

// CanAccessCounter reports whether the user may act on the counter
func (s *AccessService) CanAccessCounter(ctx context.Context, userID, counterID int64) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if user.IsAdmin {
		return true, nil
	}
	return user.CounterID != nil && *user.CounterID == counterID, nil
}

// CanAccessBranchAndCounter requires both scopes to match. A scoped user
// matching only one of the two is denied.
func (s *AccessService) CanAccessBranchAndCounter(ctx context.Context, userID, branchID, counterID int64) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if user.IsAdmin {
		return true, nil
	}
	branchOK := user.BranchID != nil && *user.BranchID == branchID
	counterOK := user.CounterID != nil && *user.CounterID == counterID
	return branchOK && counterOK, nil
}

// AccessibleBranchIDs enumerates every branch id the user may act on. Admins
// get the full enumeration from their tenant's store; a store failure on that
// path yields an empty list so an outage narrows access instead of widening
// it. Scoped users get their assigned branch without touching the store.
func (s *AccessService) AccessibleBranchIDs(ctx context.Context, userID int64) ([]int64, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil || user == nil {
		return []int64{}, err
	}

	if !user.IsAdmin {
		if user.BranchID == nil {
			return []int64{}, nil
		}
		return []int64{*user.BranchID}, nil
	}

	var ids []int64
	err = s.stores.WithTenant(ctx, user.TenantCode, func(repo org.Repository) error {
		var storeErr error
		ids, storeErr = repo.BranchIDs(ctx)
		return storeErr
	})
	if err != nil {
		s.logger.Warn("Branch enumeration failed, returning empty set",
			zap.String("tenant_code", user.TenantCode),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return []int64{}, nil
	}
	return dedupeIDs(ids), nil
}

// AccessibleCounterIDs enumerates every counter id the user may act on
func (s *AccessService) AccessibleCounterIDs(ctx context.Context, userID int64) ([]int64, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil || user == nil {
		return []int64{}, err
	}

	if !user.IsAdmin {
		if user.CounterID == nil {
			return []int64{}, nil
		}
		return []int64{*user.CounterID}, nil
	}

	var ids []int64
	err = s.stores.WithTenant(ctx, user.TenantCode, func(repo org.Repository) error {
		var storeErr error
		ids, storeErr = repo.CounterIDs(ctx)
		return storeErr
	})
	if err != nil {
		s.logger.Warn("Counter enumeration failed, returning empty set",
			zap.String("tenant_code", user.TenantCode),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return []int64{}, nil
	}
	return dedupeIDs(ids), nil
}

// UnavailableName is substituted when an auxiliary display lookup fails
const UnavailableName = "Unavailable"

// BranchDisplayName looks up a branch name for display. The lookup is
// auxiliary: any failure degrades to UnavailableName instead of erroring.
func (s *AccessService) BranchDisplayName(ctx context.Context, tenantCode string, branchID int64) string {
	var name string
	err := s.stores.WithTenant(ctx, tenantCode, func(repo org.Repository) error {
		var storeErr error
		name, storeErr = repo.BranchName(ctx, branchID)
		return storeErr
	})
	if err != nil {
		s.logger.Debug("Branch name lookup degraded",
			zap.String("tenant_code", tenantCode),
			zap.Int64("branch_id", branchID),
			zap.Error(err))
		return UnavailableName
	}
	return name
}

// CounterDisplayName looks up a counter name for display, degrading to
// UnavailableName on any failure
func (s *AccessService) CounterDisplayName(ctx context.Context, tenantCode string, counterID int64) string {
	var name string
	err := s.stores.WithTenant(ctx, tenantCode, func(repo org.Repository) error {
		var storeErr error
		name, storeErr = repo.CounterName(ctx, counterID)
		return storeErr
	})
	if err != nil {
		s.logger.Debug("Counter name lookup degraded",
			zap.String("tenant_code", tenantCode),
			zap.Int64("counter_id", counterID),
			zap.Error(err))
		return UnavailableName
	}
	return name
}

// findUser returns nil without error for unknown or deactivated users so
// predicates answer false instead of leaking account existence
func (s *AccessService) findUser(ctx context.Context, userID int64) (*identity.UserAccount, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, nil
		}
		s.logger.Error("Failed to load user for access check", zap.Int64("user_id", userID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user")
	}
	if !user.Active {
		return nil, nil
	}
	return user, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

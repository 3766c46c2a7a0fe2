package identity

import (
	"context"
	"time"

	"github.com/stockhub/backend/internal/domain/identity"
	"github.com/stockhub/backend/internal/domain/shared"
	"github.com/stockhub/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	tenants    *TenantDirectoryService
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tenants *TenantDirectoryService,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tenants:    tenants,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// LoginInput contains login credentials
type LoginInput struct {
	Username string
	Password string
}

// UserInfo carries the authenticated user's identity back to the client
type UserInfo struct {
	ID          int64  `json:"id"`
	TenantCode  string `json:"tenant_code"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
	BranchID    *int64 `json:"branch_id,omitempty"`
	CounterID   *int64 `json:"counter_id,omitempty"`
}

// LoginResult contains the outcome of a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// RefreshTokenInput contains the refresh token
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput identifies the session being terminated
type LogoutInput struct {
	UserID    int64
	JTI       string
	ExpiresAt time.Time
}

// Login authenticates a user and returns a token pair. Credentials of unknown
// users and wrong passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	// The tenant must still resolve; a deactivated tenant locks out its users
	if _, err := s.tenants.Resolve(ctx, user.TenantCode); err != nil {
		s.logger.Warn("Login blocked by tenant state",
			zap.String("username", input.Username),
			zap.String("tenant_code", user.TenantCode),
			zap.Error(err))
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantCode: user.TenantCode,
		UserID:     user.ID,
		Username:   user.Username,
		IsAdmin:    user.IsAdmin,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.Int64("user_id", user.ID),
		zap.String("tenant_code", user.TenantCode))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  toUserInfo(user),
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*LoginResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		switch err {
		case auth.ErrExpiredToken:
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		default:
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAt.Time)
	if err != nil {
		s.logger.Error("Failed to check token invalidation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate session")
	}
	if invalidated {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Session has been revoked")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.Int64("user_id", claims.UserID))
		return nil, shared.ErrUserNotFound
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is no longer active")
	}
	if _, err := s.tenants.Resolve(ctx, user.TenantCode); err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantCode: user.TenantCode,
		UserID:     user.ID,
		Username:   user.Username,
		IsAdmin:    user.IsAdmin,
	})
	if err != nil {
		s.logger.Error("Failed to refresh token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  toUserInfo(user),
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ttl := time.Until(input.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.AddToBlacklist(ctx, input.JTI, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Int64("user_id", input.UserID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke session")
	}

	s.logger.Info("User logged out", zap.Int64("user_id", input.UserID))
	return nil
}

// RevokeUserSessions invalidates every outstanding token of a user. Used when
// an admin deactivates an account mid-session.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID int64) error {
	ttl := s.jwtService.AccessExpiration()
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID, ttl); err != nil {
		s.logger.Error("Failed to revoke user sessions", zap.Int64("user_id", userID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke sessions")
	}
	return nil
}

// GetCurrentUser returns the authenticated user's own record
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.ErrUserNotFound
	}
	info := toUserInfo(user)
	return &info, nil
}

func toUserInfo(user *identity.UserAccount) UserInfo {
	return UserInfo{
		ID:          user.ID,
		TenantCode:  user.TenantCode,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		IsAdmin:     user.IsAdmin,
		BranchID:    user.BranchID,
		CounterID:   user.CounterID,
	}
}

package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/stockhub/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// UserAccount represents a control-plane user record. The two-tier model is
// carried by IsAdmin plus the optional scope fields: an admin bypasses
// branch/counter scoping entirely, while a scoped user is confined to the
// assigned branch and counter. ParentAdminID links a user to the admin that
// created it, which drives the management hierarchy.
type UserAccount struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	TenantCode    string `gorm:"type:varchar(50);not null;index"`
	Username      string `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash  string `gorm:"type:varchar(200);not null"`
	DisplayName   string `gorm:"type:varchar(200)"`
	IsAdmin       bool   `gorm:"not null;default:false"`
	BranchID      *int64 `gorm:"index"`
	CounterID     *int64 `gorm:"index"`
	ParentAdminID *int64 `gorm:"index"`
	Active        bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (UserAccount) TableName() string {
	return "user_accounts"
}

// NewUserAccount creates a new active scoped user
func NewUserAccount(tenantCode, username, password string) (*UserAccount, error) {
	if err := validateTenantCode(tenantCode); err != nil {
		return nil, err
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	return &UserAccount{
		TenantCode:   strings.ToUpper(strings.TrimSpace(tenantCode)),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewAdminAccount creates a new active admin user
func NewAdminAccount(tenantCode, username, password string) (*UserAccount, error) {
	user, err := NewUserAccount(tenantCode, username, password)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = true
	return user, nil
}

// SetDisplayName sets the user's display name
func (u *UserAccount) SetDisplayName(displayName string) error {
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = time.Now()
	return nil
}

// SetParentAdmin records which admin created this account
func (u *UserAccount) SetParentAdmin(adminID int64) error {
	if adminID <= 0 {
		return shared.NewDomainError("INVALID_PARENT_ADMIN", "Parent admin ID must be positive")
	}
	u.ParentAdminID = &adminID
	u.UpdatedAt = time.Now()
	return nil
}

// AssignScope assigns the branch/counter scope. A counter assignment without
// a branch is rejected because a counter always belongs to a branch.
func (u *UserAccount) AssignScope(branchID, counterID *int64) error {
	if counterID != nil && branchID == nil {
		return shared.NewDomainError("INVALID_SCOPE", "Counter scope requires a branch scope")
	}
	if branchID != nil && *branchID <= 0 {
		return shared.NewDomainError("INVALID_SCOPE", "Branch ID must be positive")
	}
	if counterID != nil && *counterID <= 0 {
		return shared.NewDomainError("INVALID_SCOPE", "Counter ID must be positive")
	}
	u.BranchID = branchID
	u.CounterID = counterID
	u.UpdatedAt = time.Now()
	return nil
}

// ClearScope removes any branch/counter restriction
func (u *UserAccount) ClearScope() {
	u.BranchID = nil
	u.CounterID = nil
	u.UpdatedAt = time.Now()
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *UserAccount) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *UserAccount) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Activate re-activates the account
func (u *UserAccount) Activate() error {
	if u.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Active = true
	u.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the account. Permission grants and history keep
// referencing the record, so it is never removed.
func (u *UserAccount) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "User is already deactivated")
	}
	u.Active = false
	u.UpdatedAt = time.Now()
	return nil
}

// IsTenantWideAdmin returns true for admins with no branch/counter scope.
// Such admins manage every user in their tenant.
func (u *UserAccount) IsTenantWideAdmin() bool {
	return u.IsAdmin && u.BranchID == nil && u.CounterID == nil
}

// CanLogin returns true if the account may authenticate
func (u *UserAccount) CanLogin() bool {
	return u.Active
}

// GetDisplayNameOrUsername returns display name if set, otherwise username
func (u *UserAccount) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

package identity

import (
	"strings"
	"time"

	"github.com/stockhub/backend/internal/domain/shared"
)

// Module is a closed category of business functionality subject to
// independent permission grants. The set is fixed at compile time; unknown
// module names are a validation error at the external boundary only.
type Module string

const (
	ModuleProduct           Module = "Product"
	ModuleRFID              Module = "RFID"
	ModuleInvoice           Module = "Invoice"
	ModuleReports           Module = "Reports"
	ModuleStockTransfer     Module = "StockTransfer"
	ModuleStockVerification Module = "StockVerification"
	ModuleProductImage      Module = "ProductImage"
	ModuleUser              Module = "User"
	ModuleAdmin             Module = "Admin"
)

// AllModules returns the fixed set of modules in declaration order
func AllModules() []Module {
	return []Module{
		ModuleProduct,
		ModuleRFID,
		ModuleInvoice,
		ModuleReports,
		ModuleStockTransfer,
		ModuleStockVerification,
		ModuleProductImage,
		ModuleUser,
		ModuleAdmin,
	}
}

// ParseModule maps a module name to its Module value, case-insensitively.
// Unknown names are a validation error.
func ParseModule(name string) (Module, error) {
	trimmed := strings.TrimSpace(name)
	for _, m := range AllModules() {
		if strings.EqualFold(string(m), trimmed) {
			return m, nil
		}
	}
	return "", shared.NewDomainError("VALIDATION_ERROR", "Unknown module: "+name)
}

// Action identifies one of the six capabilities a grant carries
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionImport Action = "import"
)

// ActionsPerModule is the number of independent capabilities per grant row
const ActionsPerModule = 6

// PermissionGrant is the per-user capability row for one module. At most one
// row exists per (user, module) pair; writes use upsert semantics. Absence of
// a row means "not evaluated", which every action check treats as denied.
type PermissionGrant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_grants_user_module"`
	Module    Module `gorm:"type:varchar(50);not null;uniqueIndex:idx_grants_user_module"`
	CanView   bool   `gorm:"not null;default:false"`
	CanCreate bool   `gorm:"not null;default:false"`
	CanEdit   bool   `gorm:"not null;default:false"`
	CanDelete bool   `gorm:"not null;default:false"`
	CanExport bool   `gorm:"not null;default:false"`
	CanImport bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (PermissionGrant) TableName() string {
	return "permission_grants"
}

// Allows reports whether the grant carries the named action. The action is
// matched case-insensitively; "update" is accepted as a synonym for "edit".
// Unrecognized action names are simply not allowed, never an error.
func (g *PermissionGrant) Allows(action string) bool {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case string(ActionView):
		return g.CanView
	case string(ActionCreate):
		return g.CanCreate
	case string(ActionEdit), "update":
		return g.CanEdit
	case string(ActionDelete):
		return g.CanDelete
	case string(ActionExport):
		return g.CanExport
	case string(ActionImport):
		return g.CanImport
	default:
		return false
	}
}

// ActiveCount returns the number of capabilities set to true
func (g *PermissionGrant) ActiveCount() int {
	count := 0
	for _, allowed := range []bool{g.CanView, g.CanCreate, g.CanEdit, g.CanDelete, g.CanExport, g.CanImport} {
		if allowed {
			count++
		}
	}
	return count
}

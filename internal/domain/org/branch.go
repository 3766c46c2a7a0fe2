// Package org holds the branch/counter master data that lives inside each
// tenant's isolated store. The access-control core only ever reads it.
package org

import "context"

// Branch is a physical location of a tenant
type Branch struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"type:varchar(200);not null"`
	TenantCode string `gorm:"type:varchar(50);not null;index"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// Counter is a sales counter within a branch. A counter belongs to exactly
// one branch.
type Counter struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"type:varchar(200);not null"`
	BranchID   int64  `gorm:"not null;index"`
	TenantCode string `gorm:"type:varchar(50);not null;index"`
}

// TableName returns the table name for GORM
func (Counter) TableName() string {
	return "counters"
}

// Repository reads branch/counter master data from one tenant store. An
// implementation is always bound to a single tenant handle and must never be
// shared across tenants.
type Repository interface {
	// BranchIDs enumerates all branch ids in the store
	BranchIDs(ctx context.Context) ([]int64, error)

	// CounterIDs enumerates all counter ids in the store
	CounterIDs(ctx context.Context) ([]int64, error)

	// BranchName looks up a branch display name
	BranchName(ctx context.Context, id int64) (string, error)

	// CounterName looks up a counter display name
	CounterName(ctx context.Context, id int64) (string, error)
}

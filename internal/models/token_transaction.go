package models

import (
	"time"

	"gorm.io/datatypes"
)

// TokenTransactionType classifies a token ledger entry.
type TokenTransactionType string

// TokenTransactionType constants define ledger entry kinds.
const (
	// TokenTransactionDeduct records quota spent on a paid action.
	TokenTransactionDeduct TokenTransactionType = "deduct"
	// TokenTransactionGrant records tokens credited back to a user.
	TokenTransactionGrant TokenTransactionType = "grant"
	// TokenTransactionReset records a period rollover re-grant.
	TokenTransactionReset TokenTransactionType = "reset"
)

// TokenTransaction is an append-only audit entry for a token balance
// mutation. Rows are never updated after creation and are not read back
// by any balance computation.
type TokenTransaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Reference string `gorm:"type:varchar(36);not null;uniqueIndex"` // Opaque entry reference.

	UserID uint64 `gorm:"not null;index"` // Affected user ID.

	Amount int64                `gorm:"not null"`                  // Signed token delta (negative for deduct).
	Type   TokenTransactionType `gorm:"type:varchar(16);not null"` // Entry kind.
	Reason string               `gorm:"type:text"`                 // Free-text reason.

	BalanceAfter int64 `gorm:"not null"` // Remaining balance after the mutation.

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Extra context for audit tooling.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

package models

import "time"

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

// SubscriptionStatus constants define subscription lifecycle states.
const (
	// SubscriptionStatusActive marks a subscription that renews normally.
	SubscriptionStatusActive SubscriptionStatus = "active"
	// SubscriptionStatusCancelled marks a subscription with no renewal scheduled.
	// Tokens remain usable until the current period ends.
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription records a user's active plan and token quota for the
// current billing period. One row per user.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning user ID.
	User   User   `gorm:"foreignKey:UserID"`    // Owning user record.

	PlanType string             `gorm:"type:varchar(64);not null"`            // Active plan code.
	Status   SubscriptionStatus `gorm:"type:varchar(16);not null;default:'active'"` // Lifecycle state.

	TokensLimit int64 `gorm:"not null;default:0"` // Quota granted for the current period.
	TokensUsed  int64 `gorm:"not null;default:0"` // Tokens consumed so far in the period.

	CurrentPeriodStart time.Time `gorm:"not null"` // Billing window start.
	CurrentPeriodEnd   time.Time `gorm:"not null"` // Billing window end.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

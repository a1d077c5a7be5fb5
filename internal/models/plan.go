package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlanInterval represents the billing period unit of a plan.
type PlanInterval string

// PlanInterval constants define the supported billing intervals.
const (
	// PlanIntervalMonth bills every month.
	PlanIntervalMonth PlanInterval = "month"
	// PlanIntervalSixMonths bills every six months.
	PlanIntervalSixMonths PlanInterval = "6months"
	// PlanIntervalYear bills every year.
	PlanIntervalYear PlanInterval = "year"
)

// AddTo returns the end of a billing period that starts at t.
func (i PlanInterval) AddTo(t time.Time) time.Time {
	switch i {
	case PlanIntervalSixMonths:
		return t.AddDate(0, 6, 0)
	case PlanIntervalYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Plan codes for the built-in catalog.
const (
	// PlanCodeFree is the default no-cost plan.
	PlanCodeFree = "free"
	// PlanCodeMonthly is the monthly plan.
	PlanCodeMonthly = "monthly"
	// PlanCodeSixMonth is the six-month plan.
	PlanCodeSixMonth = "sixMonth"
	// PlanCodeAnnual is the annual plan.
	PlanCodeAnnual = "annual"
)

// Plan represents a subscription plan configuration.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Code        string  `gorm:"type:varchar(64);not null;uniqueIndex"` // Stable plan code referenced by subscriptions.
	Name        string  `gorm:"type:varchar(255);not null"`            // Display name.
	Description string  `gorm:"type:text"`                             // Plan description.
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0"` // Price per billing period.

	Interval        PlanInterval `gorm:"type:varchar(16);not null"`    // Billing period unit.
	TokensPerPeriod int64        `gorm:"not null;default:0"`           // Token allotment granted each period.
	Features        datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Feature descriptions for the pricing page.

	SortOrder int `gorm:"not null;default:0"` // Display ordering weight.

	IsEnabled bool `gorm:"not null;default:true"` // Whether the plan can be activated.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

package db

import (
	"fmt"

	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate runs schema migrations and seeds the built-in plan catalog.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Subscription{},
		&models.TokenTransaction{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultPlans(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// defaultPlans is the built-in plan catalog seeded on first migration.
// Admins may adjust prices and allotments afterwards; the seeder never
// overwrites existing rows.
func defaultPlans() []models.Plan {
	return []models.Plan{
		{
			Code:            models.PlanCodeFree,
			Name:            "Free",
			Description:     "Try AdSmith with a small monthly token allowance.",
			Price:           0,
			Interval:        models.PlanIntervalMonth,
			TokensPerPeriod: 10,
			Features:        datatypes.JSON([]byte(`["10 tokens per month","Caption generation"]`)),
			SortOrder:       0,
			IsEnabled:       true,
		},
		{
			Code:            models.PlanCodeMonthly,
			Name:            "Creator Monthly",
			Description:     "For creators publishing every week.",
			Price:           29,
			Interval:        models.PlanIntervalMonth,
			TokensPerPeriod: 500,
			Features:        datatypes.JSON([]byte(`["500 tokens per month","Caption and ad generation","Draft autosave"]`)),
			SortOrder:       1,
			IsEnabled:       true,
		},
		{
			Code:            models.PlanCodeSixMonth,
			Name:            "Studio Six-Month",
			Description:     "Half-year commitment with a bigger allotment.",
			Price:           149,
			Interval:        models.PlanIntervalSixMonths,
			TokensPerPeriod: 3500,
			Features:        datatypes.JSON([]byte(`["3500 tokens per period","Caption and ad generation","Draft autosave"]`)),
			SortOrder:       2,
			IsEnabled:       true,
		},
		{
			Code:            models.PlanCodeAnnual,
			Name:            "Agency Annual",
			Description:     "Best value for agencies running campaigns all year.",
			Price:           249,
			Interval:        models.PlanIntervalYear,
			TokensPerPeriod: 8000,
			Features:        datatypes.JSON([]byte(`["8000 tokens per year","Caption and ad generation","Draft autosave","Priority support"]`)),
			SortOrder:       3,
			IsEnabled:       true,
		},
	}
}

// ensureDefaultPlans inserts the built-in plans when absent.
func ensureDefaultPlans(conn *gorm.DB) error {
	for _, plan := range defaultPlans() {
		if errCreate := conn.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&plan).Error; errCreate != nil {
			return fmt.Errorf("db: seed plan %s: %w", plan.Code, errCreate)
		}
	}
	return nil
}

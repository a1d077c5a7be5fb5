// Package subscription governs which plan and token allotment apply to
// a user, and the cancel/reactivate state machine around it.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidPlan indicates an unknown or disabled plan code.
	ErrInvalidPlan = errors.New("subscription: invalid plan")
	// ErrPeriodLapsed indicates a reactivation attempt after the billing
	// period already ended. The caller must activate a plan instead.
	ErrPeriodLapsed = errors.New("subscription: billing period has lapsed")
)

// Lifecycle manages plan activation and the cancellation state machine.
type Lifecycle struct {
	db     *gorm.DB
	ledger *ledger.Ledger
	nowFn  func() time.Time
}

// New constructs a Lifecycle.
func New(db *gorm.DB, led *ledger.Ledger) *Lifecycle {
	return &Lifecycle{db: db, ledger: led, nowFn: time.Now}
}

// Get returns the user's subscription record.
func (s *Lifecycle) Get(ctx context.Context, userID uint64) (*models.Subscription, error) {
	var sub models.Subscription
	errFind := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("subscription: load: %w", errFind)
	}
	return &sub, nil
}

// ListPlans returns the activatable plans ordered by price ascending.
func (s *Lifecycle) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if errFind := s.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("price ASC, sort_order ASC").
		Find(&plans).Error; errFind != nil {
		return nil, fmt.Errorf("subscription: list plans: %w", errFind)
	}
	return plans, nil
}

// Activate puts the user on the plan with a fresh period and full token
// allotment. An existing subscription is overwritten unconditionally;
// there is no proration.
func (s *Lifecycle) Activate(ctx context.Context, userID uint64, planCode string) (*models.Subscription, error) {
	var plan models.Plan
	errPlan := s.db.WithContext(ctx).
		Where("code = ? AND is_enabled = ?", planCode, true).
		First(&plan).Error
	if errPlan != nil {
		if errors.Is(errPlan, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPlan
		}
		return nil, fmt.Errorf("subscription: load plan: %w", errPlan)
	}

	now := s.nowFn().UTC()
	sub := models.Subscription{
		UserID:             userID,
		PlanType:           plan.Code,
		Status:             models.SubscriptionStatusActive,
		TokensLimit:        plan.TokensPerPeriod,
		TokensUsed:         0,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   plan.Interval.AddTo(now),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if errUpsert := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_type", "status", "tokens_limit", "tokens_used",
			"current_period_start", "current_period_end", "updated_at",
		}),
	}).Create(&sub).Error; errUpsert != nil {
		return nil, fmt.Errorf("subscription: activate: %w", errUpsert)
	}

	s.ledger.Record(ctx, userID, models.TokenTransactionGrant, plan.TokensPerPeriod,
		"plan activation: "+plan.Code,
		ledger.Balance{Remaining: plan.TokensPerPeriod, Used: 0, Limit: plan.TokensPerPeriod})
	return &sub, nil
}

// Cancel stops renewal without touching the current allotment. Tokens
// stay usable until the period boundary. Repeating a cancel is a no-op.
func (s *Lifecycle) Cancel(ctx context.Context, userID uint64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"status":     models.SubscriptionStatusCancelled,
			"updated_at": s.nowFn().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("subscription: cancel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ledger.ErrSubscriptionNotFound
	}
	return nil
}

// Reactivate undoes a cancellation on the existing record without
// recomputing limits or period dates. Once the period has lapsed the
// record is stale and reactivation is refused.
func (s *Lifecycle) Reactivate(ctx context.Context, userID uint64) error {
	sub, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if s.nowFn().UTC().After(sub.CurrentPeriodEnd) {
		return ErrPeriodLapsed
	}

	if errUpdate := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"status":     models.SubscriptionStatusActive,
			"updated_at": s.nowFn().UTC(),
		}).Error; errUpdate != nil {
		return fmt.Errorf("subscription: reactivate: %w", errUpdate)
	}
	return nil
}

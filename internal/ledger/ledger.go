// Package ledger implements token quota accounting: affordability
// checks, debits and credits against the current period allotment, and
// an append-only audit trail.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adsmith-studio/adsmith-backend/internal/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to callers. They gate real side effects and
// are never silently defaulted.
var (
	// ErrSubscriptionNotFound indicates the user has no subscription row.
	ErrSubscriptionNotFound = errors.New("token ledger: subscription not found")
	// ErrInsufficientTokens indicates a deduction would drive the balance negative.
	ErrInsufficientTokens = errors.New("token ledger: insufficient tokens")
	// ErrNegativeAmount indicates a negative token amount was passed.
	ErrNegativeAmount = errors.New("token ledger: amount must be non-negative")
)

// Balance summarizes a user's token position for the current period.
type Balance struct {
	Remaining int64 `json:"remaining"` // Tokens still spendable.
	Used      int64 `json:"used"`      // Tokens consumed.
	Limit     int64 `json:"limit"`     // Period allotment.
}

// Ledger applies token debits and credits with a non-negative-balance
// guarantee. All mutations go through atomic conditional updates so two
// concurrent deductions can never double-spend the same tokens.
type Ledger struct {
	db       *gorm.DB
	notifier *BalanceNotifier
	nowFn    func() time.Time
}

// New constructs a Ledger. The notifier may be nil when no consumer
// cares about balance events.
func New(db *gorm.DB, notifier *BalanceNotifier) *Ledger {
	return &Ledger{db: db, notifier: notifier, nowFn: time.Now}
}

// BalanceOf computes the balance view of a subscription record.
func BalanceOf(sub *models.Subscription) Balance {
	remaining := sub.TokensLimit - sub.TokensUsed
	if remaining < 0 {
		remaining = 0
	}
	return Balance{Remaining: remaining, Used: sub.TokensUsed, Limit: sub.TokensLimit}
}

// Balance loads the user's current token balance.
func (l *Ledger) Balance(ctx context.Context, userID uint64) (Balance, error) {
	sub, err := l.loadSubscription(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return BalanceOf(sub), nil
}

// HasEnough reports whether the user can afford the required amount.
// A request for zero tokens always succeeds.
func (l *Ledger) HasEnough(ctx context.Context, userID uint64, required int64) (bool, error) {
	if required < 0 {
		return false, ErrNegativeAmount
	}
	bal, err := l.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	if required == 0 {
		return true, nil
	}
	return bal.Remaining >= required, nil
}

// Deduct spends tokens and returns the remaining balance. The debit is a
// single conditional UPDATE guarded by the limit, so an unaffordable
// deduction leaves the row untouched and fails with ErrInsufficientTokens.
func (l *Ledger) Deduct(ctx context.Context, userID uint64, amount int64, reason string) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	res := l.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND tokens_limit - tokens_used >= ?", userID, amount).
		Updates(map[string]any{
			"tokens_used": gorm.Expr("tokens_used + ?", amount),
			"updated_at":  l.nowFn().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("token ledger: deduct: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, errLoad := l.loadSubscription(ctx, userID); errLoad != nil {
			return 0, errLoad
		}
		return 0, ErrInsufficientTokens
	}

	bal, errBalance := l.Balance(ctx, userID)
	if errBalance != nil {
		return 0, errBalance
	}
	l.Record(ctx, userID, models.TokenTransactionDeduct, -amount, reason, bal)
	return bal.Remaining, nil
}

// Grant credits tokens back by lowering tokens_used, flooring at zero.
// Excess grant amount is absorbed; the balance never exceeds the limit.
func (l *Ledger) Grant(ctx context.Context, userID uint64, amount int64, reason string) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	res := l.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"tokens_used": gorm.Expr("CASE WHEN tokens_used > ? THEN tokens_used - ? ELSE 0 END", amount, amount),
			"updated_at":  l.nowFn().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("token ledger: grant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrSubscriptionNotFound
	}

	bal, errBalance := l.Balance(ctx, userID)
	if errBalance != nil {
		return 0, errBalance
	}
	l.Record(ctx, userID, models.TokenTransactionGrant, amount, reason, bal)
	return bal.Remaining, nil
}

// ResetPeriod zeroes usage and rolls the billing window forward by the
// plan's interval starting from now.
func (l *Ledger) ResetPeriod(ctx context.Context, userID uint64) error {
	sub, err := l.loadSubscription(ctx, userID)
	if err != nil {
		return err
	}

	var plan models.Plan
	if errPlan := l.db.WithContext(ctx).
		Where("code = ?", sub.PlanType).
		First(&plan).Error; errPlan != nil {
		return fmt.Errorf("token ledger: plan %q: %w", sub.PlanType, errPlan)
	}

	now := l.nowFn().UTC()
	if errUpdate := l.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"tokens_used":          0,
			"current_period_start": now,
			"current_period_end":   plan.Interval.AddTo(now),
			"updated_at":           now,
		}).Error; errUpdate != nil {
		return fmt.Errorf("token ledger: reset period: %w", errUpdate)
	}

	bal := Balance{Remaining: sub.TokensLimit, Used: 0, Limit: sub.TokensLimit}
	l.Record(ctx, userID, models.TokenTransactionReset, sub.TokensLimit, "period reset", bal)
	return nil
}

// Record appends an audit entry and publishes a balance event. The audit
// log is best-effort telemetry: a failed append is logged and never rolls
// back the balance mutation that already happened.
func (l *Ledger) Record(ctx context.Context, userID uint64, txType models.TokenTransactionType, amount int64, reason string, bal Balance) {
	row := models.TokenTransaction{
		Reference:    uuid.NewString(),
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		Reason:       reason,
		BalanceAfter: bal.Remaining,
		CreatedAt:    l.nowFn().UTC(),
	}
	if errCreate := l.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).
			WithField("user_id", userID).
			Warn("token ledger: audit append failed")
	}

	l.notifier.Publish(BalanceEvent{
		UserID:    userID,
		Kind:      txType,
		Remaining: bal.Remaining,
		Used:      bal.Used,
		Limit:     bal.Limit,
	})
}

// loadSubscription fetches the user's subscription row.
func (l *Ledger) loadSubscription(ctx context.Context, userID uint64) (*models.Subscription, error) {
	var sub models.Subscription
	errFind := l.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("token ledger: load subscription: %w", errFind)
	}
	return &sub, nil
}

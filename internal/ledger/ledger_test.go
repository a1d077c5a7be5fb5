package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/adsmith-studio/adsmith-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(&models.Plan{}, &models.Subscription{}, &models.TokenTransaction{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedSubscription(t *testing.T, conn *gorm.DB, userID uint64, limit, used int64) {
	t.Helper()
	now := time.Now().UTC()
	sub := models.Subscription{
		UserID:             userID,
		PlanType:           models.PlanCodeMonthly,
		Status:             models.SubscriptionStatusActive,
		TokensLimit:        limit,
		TokensUsed:         used,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}
	if errCreate := conn.Create(&sub).Error; errCreate != nil {
		t.Fatalf("seed subscription: %v", errCreate)
	}
}

func TestDeduct_SequenceAndAudit(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn, nil)
	seedSubscription(t, conn, 1, 100, 0)

	ctx := context.Background()
	wantBalances := []int64{99, 98, 97}
	for i, want := range wantBalances {
		got, errDeduct := led.Deduct(ctx, 1, 1, "caption generation")
		if errDeduct != nil {
			t.Fatalf("deduct %d: %v", i, errDeduct)
		}
		if got != want {
			t.Fatalf("deduct %d: balance = %d, want %d", i, got, want)
		}
	}

	var sub models.Subscription
	if errFind := conn.Where("user_id = ?", 1).First(&sub).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if sub.TokensUsed != 3 {
		t.Fatalf("tokens_used = %d, want 3", sub.TokensUsed)
	}

	var rows []models.TokenTransaction
	if errFind := conn.Where("user_id = ?", 1).Order("id ASC").Find(&rows).Error; errFind != nil {
		t.Fatalf("load transactions: %v", errFind)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 audit rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Type != models.TokenTransactionDeduct || row.Amount != -1 {
			t.Fatalf("row %d: type=%s amount=%d", i, row.Type, row.Amount)
		}
		if row.BalanceAfter != wantBalances[i] {
			t.Fatalf("row %d: balance_after = %d, want %d", i, row.BalanceAfter, wantBalances[i])
		}
	}
}

func TestDeduct_InsufficientLeavesStateUntouched(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn, nil)
	seedSubscription(t, conn, 1, 10, 8)

	_, errDeduct := led.Deduct(context.Background(), 1, 5, "ad generation")
	if !errors.Is(errDeduct, ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", errDeduct)
	}

	var sub models.Subscription
	if errFind := conn.Where("user_id = ?", 1).First(&sub).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if sub.TokensUsed != 8 {
		t.Fatalf("tokens_used = %d, want 8 (unchanged)", sub.TokensUsed)
	}

	var count int64
	if errCount := conn.Model(&models.TokenTransaction{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count transactions: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("expected no audit rows for a rejected deduction, got %d", count)
	}
}

func TestDeduct_ExactBalanceSucceeds(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn, nil)
	seedSubscription(t, conn, 1, 10, 5)

	got, errDeduct := led.Deduct(context.Background(), 1, 5, "last tokens")
	if errDeduct != nil {
		t.Fatalf("deduct: %v", errDeduct)
	}
	if got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
}

func TestDeduct_MissingSubscription(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn, nil)

	_, errDeduct := led.Deduct(context.Background(), 42, 1, "caption generation")
	if !errors.Is(errDeduct, ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", errDeduct)
	}
}

func TestHasEnough(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn, nil)
	seedSubscription(t, conn, 1, 10, 7)

	ctx := context.Background()
	cases := []struct {
		required int64
		want     bool
	}{
		{0, true},
		{3, true},
		{4, false},
	}
	for _, tc := range cases {
		got, errCheck := led.HasEnough(ctx, 1, tc.required)
		if errCheck != nil {
			t.Fatalf("HasEnough(%d): %v", tc.required, errCheck)
		}
		if got != tc.want {
			t.Fatalf("HasEnough(%d) = %v, want %v", tc.required, got, tc.want)
		}
	}

	if _, errCheck := led.HasEnough(ctx, 1, -1); !errors.Is(errCheck, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", errCheck)
	}
	if _, errCheck := led.HasEnough(ctx, 99, 1); !errors.Is(errCheck, ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", errCheck)
	}
}

func TestGrant_SaturatesAtZeroUsed(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn, nil)
	seedSubscription(t, conn, 1, 100, 30)

	ctx := context.Background()
	got, errGrant := led.Grant(ctx, 1, 20, "support credit")
	if errGrant != nil {
		t.Fatalf("grant: %v", errGrant)
	}
	if got != 90 {
		t.Fatalf("balance = %d, want 90", got)
	}

	// excess grant is absorbed, used floors at zero
	got, errGrant = led.Grant(ctx, 1, 500, "oversized credit")
	if errGrant != nil {
		t.Fatalf("grant: %v", errGrant)
	}
	if got != 100 {
		t.Fatalf("balance = %d, want 100", got)
	}

	var sub models.Subscription
	if errFind := conn.Where("user_id = ?", 1).First(&sub).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if sub.TokensUsed != 0 {
		t.Fatalf("tokens_used = %d, want 0", sub.TokensUsed)
	}
}

func TestResetPeriod_RollsWindowForward(t *testing.T) {
	conn := openTestDB(t)
	led := New(conn, nil)

	plan := models.Plan{Code: models.PlanCodeAnnual, Name: "Agency Annual", Interval: models.PlanIntervalYear, TokensPerPeriod: 8000, IsEnabled: true}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("seed plan: %v", errCreate)
	}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := models.Subscription{
		UserID:             1,
		PlanType:           models.PlanCodeAnnual,
		Status:             models.SubscriptionStatusActive,
		TokensLimit:        8000,
		TokensUsed:         4200,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(1, 0, 0),
	}
	if errCreate := conn.Create(&sub).Error; errCreate != nil {
		t.Fatalf("seed subscription: %v", errCreate)
	}

	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	led.nowFn = func() time.Time { return now }

	if errReset := led.ResetPeriod(context.Background(), 1); errReset != nil {
		t.Fatalf("reset period: %v", errReset)
	}

	var after models.Subscription
	if errFind := conn.Where("user_id = ?", 1).First(&after).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if after.TokensUsed != 0 {
		t.Fatalf("tokens_used = %d, want 0", after.TokensUsed)
	}
	if !after.CurrentPeriodEnd.After(sub.CurrentPeriodEnd) {
		t.Fatalf("period end did not move forward")
	}
	if !after.CurrentPeriodEnd.Equal(now.AddDate(1, 0, 0)) {
		t.Fatalf("period end = %v, want %v", after.CurrentPeriodEnd, now.AddDate(1, 0, 0))
	}

	var row models.TokenTransaction
	if errFind := conn.Where("user_id = ? AND type = ?", 1, models.TokenTransactionReset).First(&row).Error; errFind != nil {
		t.Fatalf("load reset transaction: %v", errFind)
	}
	if row.Amount != 8000 || row.BalanceAfter != 8000 {
		t.Fatalf("reset row amount=%d balance_after=%d, want 8000/8000", row.Amount, row.BalanceAfter)
	}
}

func TestDeduct_PublishesBalanceEvent(t *testing.T) {
	conn := openTestDB(t)
	notifier := NewBalanceNotifier()
	led := New(conn, notifier)
	seedSubscription(t, conn, 7, 50, 0)

	events, cancel := notifier.Subscribe(1)
	defer cancel()

	if _, errDeduct := led.Deduct(context.Background(), 7, 5, "caption generation"); errDeduct != nil {
		t.Fatalf("deduct: %v", errDeduct)
	}

	select {
	case event := <-events:
		if event.UserID != 7 || event.Remaining != 45 || event.Kind != models.TokenTransactionDeduct {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
		t.Fatalf("expected a balance event")
	}
}

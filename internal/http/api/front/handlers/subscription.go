package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/format"
	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"github.com/adsmith-studio/adsmith-backend/internal/subscription"
)

// SubscriptionFrontHandler serves the user's subscription endpoints.
type SubscriptionFrontHandler struct {
	lifecycle *subscription.Lifecycle
	ledger    *ledger.Ledger
}

// NewSubscriptionFrontHandler constructs a SubscriptionFrontHandler.
func NewSubscriptionFrontHandler(lifecycle *subscription.Lifecycle, led *ledger.Ledger) *SubscriptionFrontHandler {
	return &SubscriptionFrontHandler{lifecycle: lifecycle, ledger: led}
}

// Get returns the subscription with its token balance and the display
// strings the dashboard renders.
func (h *SubscriptionFrontHandler) Get(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, errGet := h.lifecycle.Get(c.Request.Context(), userID)
	if errGet != nil {
		if errors.Is(errGet, ledger.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	bal := ledger.BalanceOf(sub)
	pct := format.UsagePercentage(bal.Used, bal.Limit)
	c.JSON(http.StatusOK, gin.H{
		"plan":                 sub.PlanType,
		"status":               sub.Status,
		"current_period_start": sub.CurrentPeriodStart,
		"current_period_end":   sub.CurrentPeriodEnd,
		"days_left":            format.DaysUntil(sub.CurrentPeriodEnd, time.Now().UTC()),
		"tokens": gin.H{
			"remaining":           bal.Remaining,
			"used":                bal.Used,
			"limit":               bal.Limit,
			"remaining_display":   format.FormatCount(bal.Remaining),
			"limit_display":       format.FormatCount(bal.Limit),
			"usage_percentage":    pct,
			"usage_display":       format.FormatPercentage(pct),
		},
	})
}

// activateRequest defines the request body for plan activation.
type activateRequest struct {
	Plan string `json:"plan"`
}

// Activate switches the user onto a plan and grants its token
// allotment.
func (h *SubscriptionFrontHandler) Activate(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body activateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	planCode := strings.TrimSpace(body.Plan)
	if planCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan is required"})
		return
	}

	sub, errActivate := h.lifecycle.Activate(c.Request.Context(), userID, planCode)
	if errActivate != nil {
		if errors.Is(errActivate, subscription.ErrInvalidPlan) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activate failed"})
		return
	}

	bal := ledger.BalanceOf(sub)
	c.JSON(http.StatusOK, gin.H{
		"plan":               sub.PlanType,
		"status":             sub.Status,
		"current_period_end": sub.CurrentPeriodEnd,
		"tokens": gin.H{
			"remaining": bal.Remaining,
			"limit":     bal.Limit,
		},
	})
}

// Cancel stops renewal. The remaining tokens stay usable until the
// period ends.
func (h *SubscriptionFrontHandler) Cancel(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if errCancel := h.lifecycle.Cancel(c.Request.Context(), userID); errCancel != nil {
		if errors.Is(errCancel, ledger.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.SubscriptionStatusCancelled})
}

// Reactivate resumes a cancelled subscription while its billing period
// is still running.
func (h *SubscriptionFrontHandler) Reactivate(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if errReactivate := h.lifecycle.Reactivate(c.Request.Context(), userID); errReactivate != nil {
		switch {
		case errors.Is(errReactivate, ledger.ErrSubscriptionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription"})
		case errors.Is(errReactivate, subscription.ErrPeriodLapsed):
			c.JSON(http.StatusConflict, gin.H{"error": "billing period has ended, activate a plan instead"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reactivate failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.SubscriptionStatusActive})
}

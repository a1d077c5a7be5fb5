package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"gorm.io/gorm"
)

// TokenHandler manages admin token grant, reset, and audit endpoints.
type TokenHandler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

// NewTokenHandler constructs a TokenHandler.
func NewTokenHandler(db *gorm.DB, led *ledger.Ledger) *TokenHandler {
	return &TokenHandler{db: db, ledger: led}
}

// grantTokensRequest defines the request body for a manual grant.
type grantTokensRequest struct {
	Amount int64  `json:"amount"` // Tokens to credit back.
	Reason string `json:"reason"` // Free-text audit reason.
}

// Grant credits tokens back to a user, capped at the period limit.
func (h *TokenHandler) Grant(c *gin.Context) {
	userID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body grantTokensRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	reason := strings.TrimSpace(body.Reason)
	if reason == "" {
		reason = "manual grant"
	}

	remaining, errGrant := h.ledger.Grant(c.Request.Context(), userID, body.Amount, reason)
	if errGrant != nil {
		if errors.Is(errGrant, ledger.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "grant failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}

// Reset rolls the user's billing period over and restores the full
// allotment.
func (h *TokenHandler) Reset(c *gin.Context) {
	userID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if errReset := h.ledger.ResetPeriod(c.Request.Context(), userID); errReset != nil {
		if errors.Is(errReset, ledger.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Transactions lists a user's token audit entries, newest first.
func (h *TokenHandler) Transactions(c *gin.Context) {
	userID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	limit := 100
	if limitQ := strings.TrimSpace(c.Query("limit")); limitQ != "" {
		if parsed, errLimit := strconv.Atoi(limitQ); errLimit == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	var rows []models.TokenTransaction
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list transactions failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"reference":     row.Reference,
			"amount":        row.Amount,
			"type":          row.Type,
			"reason":        row.Reason,
			"balance_after": row.BalanceAfter,
			"created_at":    row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

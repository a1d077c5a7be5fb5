package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/config"
	"github.com/adsmith-studio/adsmith-backend/internal/draftstore"
	"github.com/adsmith-studio/adsmith-backend/internal/generation"
	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/ratelimit"
	log "github.com/sirupsen/logrus"
)

// GenerateFrontHandler serves the paid content generation endpoints.
type GenerateFrontHandler struct {
	ledger    *ledger.Ledger
	generator generation.Generator
	drafts    draftstore.Store
	limiter   *ratelimit.Manager
	cfg       config.ServiceConfig
}

// NewGenerateFrontHandler constructs a GenerateFrontHandler.
func NewGenerateFrontHandler(led *ledger.Ledger, gen generation.Generator, drafts draftstore.Store, limiter *ratelimit.Manager, cfg config.ServiceConfig) *GenerateFrontHandler {
	return &GenerateFrontHandler{ledger: led, generator: gen, drafts: drafts, limiter: limiter, cfg: cfg}
}

// checkRateAndBalance runs the shared preamble for generation calls:
// the per-minute rate limit first, then the token balance. It writes
// the error response itself and reports whether the caller may proceed.
func (h *GenerateFrontHandler) checkRateAndBalance(c *gin.Context, userID uint64, cost int64) bool {
	result, errAllow := h.limiter.Allow(c.Request.Context(), "generate:"+strconv.FormatUint(userID, 10), h.cfg.GeneratePerMinute)
	if errAllow != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limit check failed"})
		return false
	}
	if !result.Allowed {
		c.Header("Retry-After", strconv.FormatInt(int64(time.Until(result.Reset).Seconds())+1, 10))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many generation requests, slow down"})
		return false
	}

	enough, errCheck := h.ledger.HasEnough(c.Request.Context(), userID, cost)
	if errCheck != nil {
		if errors.Is(errCheck, ledger.ErrSubscriptionNotFound) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "no active subscription"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance check failed"})
		return false
	}
	if !enough {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough tokens"})
		return false
	}
	return true
}

// chargeFor deducts the cost after a successful generation. The balance
// was checked up front, but a concurrent request may have spent the
// same tokens; in that case the user gets the content for free rather
// than a negative balance.
func (h *GenerateFrontHandler) chargeFor(c *gin.Context, userID uint64, cost int64, reason string) int64 {
	remaining, errDeduct := h.ledger.Deduct(c.Request.Context(), userID, cost, reason)
	if errDeduct != nil {
		log.WithError(errDeduct).WithField("user_id", userID).Warn("deduct after generation failed")
		return 0
	}
	return remaining
}

// Caption generates an ad caption and stores it as a draft.
func (h *GenerateFrontHandler) Caption(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body generation.CaptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Product == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product is required"})
		return
	}

	cost := h.cfg.TokenCosts.Caption
	if !h.checkRateAndBalance(c, userID, cost) {
		return
	}

	caption, errGen := h.generator.Caption(c.Request.Context(), body)
	if errGen != nil {
		if errors.Is(errGen, generation.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation is not configured"})
			return
		}
		log.WithError(errGen).WithField("user_id", userID).Warn("caption generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "caption generation failed"})
		return
	}

	remaining := h.chargeFor(c, userID, cost, "caption generation")
	h.drafts.Set(c.Request.Context(), userID, draftstore.Key(body.Platform, "caption"), caption)

	c.JSON(http.StatusOK, gin.H{
		"caption":          caption,
		"tokens_spent":     cost,
		"tokens_remaining": remaining,
	})
}

// AdImage generates an ad image and stores it as a draft.
func (h *GenerateFrontHandler) AdImage(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body generation.AdImageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Product == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product is required"})
		return
	}

	cost := h.cfg.TokenCosts.AdImage
	if !h.checkRateAndBalance(c, userID, cost) {
		return
	}

	image, errGen := h.generator.AdImage(c.Request.Context(), body)
	if errGen != nil {
		if errors.Is(errGen, generation.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation is not configured"})
			return
		}
		log.WithError(errGen).WithField("user_id", userID).Warn("ad image generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "ad image generation failed"})
		return
	}

	remaining := h.chargeFor(c, userID, cost, "ad image generation")
	dataURL := "data:" + image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
	h.drafts.Set(c.Request.Context(), userID, draftstore.Key(body.Platform, "generated"), dataURL)

	c.JSON(http.StatusOK, gin.H{
		"image":            dataURL,
		"mime_type":        image.MIMEType,
		"tokens_spent":     cost,
		"tokens_remaining": remaining,
	})
}

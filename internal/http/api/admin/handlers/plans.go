package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanHandler manages admin CRUD endpoints for plans.
type PlanHandler struct {
	db *gorm.DB // Database handle for plan records.
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

// normalizePlanFeatures validates and normalizes the features JSON
// payload into an array of trimmed strings.
func normalizePlanFeatures(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}

	var features []string
	if errUnmarshal := json.Unmarshal(raw, &features); errUnmarshal != nil {
		return nil, errors.New("invalid features")
	}
	cleaned := make([]string, 0, len(features))
	for _, feature := range features {
		if f := strings.TrimSpace(feature); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	rawFeatures, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawFeatures), nil
}

// validPlanInterval reports whether the interval is one of the
// supported billing periods.
func validPlanInterval(interval models.PlanInterval) bool {
	switch interval {
	case models.PlanIntervalMonth, models.PlanIntervalSixMonths, models.PlanIntervalYear:
		return true
	default:
		return false
	}
}

// createPlanRequest captures the payload for creating a plan.
type createPlanRequest struct {
	Code            string          `json:"code"`              // Stable plan code.
	Name            string          `json:"name"`              // Plan name.
	Description     string          `json:"description"`       // Plan description.
	Price           float64         `json:"price"`             // Price per billing period.
	Interval        string          `json:"interval"`          // Billing period unit.
	TokensPerPeriod int64           `json:"tokens_per_period"` // Token allotment per period.
	Features        json.RawMessage `json:"features"`          // Feature list payload.
	SortOrder       int             `json:"sort_order"`        // Display order.
	IsEnabled       *bool           `json:"is_enabled"`        // Optional active flag.
}

// Create validates input and inserts a new plan.
func (h *PlanHandler) Create(c *gin.Context) {
	var body createPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	code := strings.TrimSpace(body.Code)
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	interval := models.PlanInterval(strings.TrimSpace(body.Interval))
	if !validPlanInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval"})
		return
	}
	if body.TokensPerPeriod < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tokens_per_period cannot be negative"})
		return
	}

	isEnabled := true
	if body.IsEnabled != nil {
		isEnabled = *body.IsEnabled
	}

	features, errFeatures := normalizePlanFeatures(body.Features)
	if errFeatures != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid features"})
		return
	}

	now := time.Now().UTC()
	plan := models.Plan{
		Code:            code,
		Name:            strings.TrimSpace(body.Name),
		Description:     body.Description,
		Price:           body.Price,
		Interval:        interval,
		TokensPerPeriod: body.TokensPerPeriod,
		Features:        features,
		SortOrder:       body.SortOrder,
		IsEnabled:       isEnabled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&plan).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create plan failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatPlan(&plan))
}

// List returns all plans, optionally filtered by enabled flag.
func (h *PlanHandler) List(c *gin.Context) {
	enabledQ := strings.TrimSpace(c.Query("is_enabled"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.Plan{})
	if enabledQ != "" {
		if enabledQ == "true" || enabledQ == "1" {
			q = q.Where("is_enabled = ?", true)
		} else if enabledQ == "false" || enabledQ == "0" {
			q = q.Where("is_enabled = ?", false)
		}
	}

	var rows []models.Plan
	if errFind := q.Order("sort_order ASC, created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatPlan(&row))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches a plan by ID.
func (h *PlanHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var plan models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&plan, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatPlan(&plan))
}

// updatePlanRequest captures optional fields for plan updates.
type updatePlanRequest struct {
	Name            *string          `json:"name"`              // Optional name update.
	Description     *string          `json:"description"`       // Optional description.
	Price           *float64         `json:"price"`             // Optional price.
	Interval        *string          `json:"interval"`          // Optional billing period unit.
	TokensPerPeriod *int64           `json:"tokens_per_period"` // Optional token allotment.
	Features        *json.RawMessage `json:"features"`          // Optional feature list payload.
	SortOrder       *int             `json:"sort_order"`        // Optional display order.
	IsEnabled       *bool            `json:"is_enabled"`        // Optional active flag.
}

// Update validates and applies plan field updates. The plan code is
// immutable: subscriptions reference it.
func (h *PlanHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updatePlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}

	if body.Name != nil {
		n := strings.TrimSpace(*body.Name)
		if n == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = n
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Price != nil {
		updates["price"] = *body.Price
	}
	if body.Interval != nil {
		interval := models.PlanInterval(strings.TrimSpace(*body.Interval))
		if !validPlanInterval(interval) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval"})
			return
		}
		updates["interval"] = interval
	}
	if body.TokensPerPeriod != nil {
		if *body.TokensPerPeriod < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tokens_per_period cannot be negative"})
			return
		}
		updates["tokens_per_period"] = *body.TokensPerPeriod
	}
	if body.Features != nil {
		features, errFeatures := normalizePlanFeatures(*body.Features)
		if errFeatures != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid features"})
			return
		}
		updates["features"] = features
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}
	if body.IsEnabled != nil {
		updates["is_enabled"] = *body.IsEnabled
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Plan{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a plan by ID.
func (h *PlanHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Plan{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Enable marks a plan as enabled.
func (h *PlanHandler) Enable(c *gin.Context) {
	h.setEnabled(c, true)
}

// Disable marks a plan as disabled.
func (h *PlanHandler) Disable(c *gin.Context) {
	h.setEnabled(c, false)
}

// setEnabled toggles the enabled state for a plan.
func (h *PlanHandler) setEnabled(c *gin.Context, enabled bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	now := time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).Model(&models.Plan{}).Where("id = ?", id).
		Updates(map[string]any{"is_enabled": enabled, "updated_at": now})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// formatPlan converts a plan model into a response payload.
func (h *PlanHandler) formatPlan(p *models.Plan) gin.H {
	return gin.H{
		"id":                p.ID,
		"code":              p.Code,
		"name":              p.Name,
		"description":       p.Description,
		"price":             p.Price,
		"interval":          p.Interval,
		"tokens_per_period": p.TokensPerPeriod,
		"features":          p.Features,
		"sort_order":        p.SortOrder,
		"is_enabled":        p.IsEnabled,
		"created_at":        p.CreatedAt,
		"updated_at":        p.UpdatedAt,
	}
}

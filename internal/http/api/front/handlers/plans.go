package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/subscription"
)

// PlanFrontHandler serves plan-related front endpoints.
type PlanFrontHandler struct {
	lifecycle *subscription.Lifecycle
}

// NewPlanFrontHandler constructs a PlanFrontHandler.
func NewPlanFrontHandler(lifecycle *subscription.Lifecycle) *PlanFrontHandler {
	return &PlanFrontHandler{lifecycle: lifecycle}
}

// List returns the activatable plans.
func (h *PlanFrontHandler) List(c *gin.Context) {
	plans, errList := h.lifecycle.ListPlans(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}

	out := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		out = append(out, gin.H{
			"id":                plan.ID,
			"code":              plan.Code,
			"name":              plan.Name,
			"description":       plan.Description,
			"price":             plan.Price,
			"interval":          plan.Interval,
			"tokens_per_period": plan.TokensPerPeriod,
			"features":          plan.Features,
			"sort_order":        plan.SortOrder,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

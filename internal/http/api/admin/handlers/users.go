package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/adsmith-studio/adsmith-backend/internal/db"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"gorm.io/gorm"
)

// UserHandler manages user account endpoints.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns users with optional filters.
func (h *UserHandler) List(c *gin.Context) {
	var (
		emailQ  = strings.TrimSpace(c.Query("email"))
		searchQ = strings.TrimSpace(c.Query("search"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if emailQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+emailQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "email"), pattern)
	}
	if searchQ != "" {
		searchPattern := "%" + searchQ + "%"
		ciPattern := dbutil.NormalizeLikePattern(h.db, searchPattern)
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR CAST(id AS TEXT) LIKE ?",
			ciPattern,
			ciPattern,
			searchPattern,
		)
	}

	var rows []models.User
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatUser(&row))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Get fetches a user by ID along with their subscription.
func (h *UserHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	payload := h.formatUser(&user)
	var sub models.Subscription
	if errSub := h.db.WithContext(c.Request.Context()).Where("user_id = ?", id).First(&sub).Error; errSub == nil {
		payload["subscription"] = gin.H{
			"plan":               sub.PlanType,
			"status":             sub.Status,
			"tokens_used":        sub.TokensUsed,
			"tokens_limit":       sub.TokensLimit,
			"current_period_end": sub.CurrentPeriodEnd,
		}
	}
	c.JSON(http.StatusOK, payload)
}

// Disable blocks a user from signing in.
func (h *UserHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

// Enable restores a disabled user.
func (h *UserHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

// setActive toggles the active flag for a user.
func (h *UserHandler) setActive(c *gin.Context, active bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	now := time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"active": active, "updated_at": now})
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

// formatUser converts a user model into a response payload.
func (h *UserHandler) formatUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"is_admin":   u.IsAdmin,
		"active":     u.Active,
		"created_at": u.CreatedAt,
	}
}

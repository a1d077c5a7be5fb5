package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/config"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"github.com/adsmith-studio/adsmith-backend/internal/security"
	"github.com/adsmith-studio/adsmith-backend/internal/subscription"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthFrontHandler handles user registration and login.
type AuthFrontHandler struct {
	db        *gorm.DB
	jwtCfg    config.JWTConfig
	lifecycle *subscription.Lifecycle
}

// NewAuthFrontHandler constructs an AuthFrontHandler.
func NewAuthFrontHandler(db *gorm.DB, jwtCfg config.JWTConfig, lifecycle *subscription.Lifecycle) *AuthFrontHandler {
	return &AuthFrontHandler{db: db, jwtCfg: jwtCfg, lifecycle: lifecycle}
}

// registerRequest defines the request body for registration.
type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates a user account and starts it on the free plan.
func (h *AuthFrontHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	password := strings.TrimSpace(body.Password)
	if len(password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		Email:     email,
		Name:      strings.TrimSpace(body.Name),
		Password:  hash,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	// New accounts start on the free plan so generation works
	// immediately after signup.
	if _, errActivate := h.lifecycle.Activate(c.Request.Context(), user.ID, models.PlanCodeFree); errActivate != nil {
		log.WithError(errActivate).WithField("user_id", user.ID).Warn("activate free plan failed")
	}

	token, errSign := security.SignUserToken(h.jwtCfg, user.ID, user.IsAdmin)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a JWT.
func (h *AuthFrontHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	token, errSign := security.SignUserToken(h.jwtCfg, user.ID, user.IsAdmin)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.Name,
			"is_admin": user.IsAdmin,
		},
	})
}

// getUserID reads the authenticated user ID set by the auth middleware.
func getUserID(c *gin.Context) uint64 {
	v, ok := c.Get("userID")
	if !ok {
		return 0
	}
	id, ok := v.(uint64)
	if !ok {
		return 0
	}
	return id
}

// Package admin exposes the operator HTTP API: plan management, token
// grants and resets, and user administration.
package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/config"
	handlers "github.com/adsmith-studio/adsmith-backend/internal/http/api/admin/handlers"
	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"github.com/adsmith-studio/adsmith-backend/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, led *ledger.Ledger) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	authed := r.Group("/api/admin")
	authed.Use(adminAuthMiddleware(db, jwtCfg))

	planHandler := handlers.NewPlanHandler(db)
	authed.POST("/plans", planHandler.Create)
	authed.GET("/plans", planHandler.List)
	authed.GET("/plans/:id", planHandler.Get)
	authed.PUT("/plans/:id", planHandler.Update)
	authed.DELETE("/plans/:id", planHandler.Delete)
	authed.POST("/plans/:id/enable", planHandler.Enable)
	authed.POST("/plans/:id/disable", planHandler.Disable)

	tokenHandler := handlers.NewTokenHandler(db, led)
	authed.POST("/users/:id/tokens/grant", tokenHandler.Grant)
	authed.POST("/users/:id/tokens/reset", tokenHandler.Reset)
	authed.GET("/users/:id/transactions", tokenHandler.Transactions)

	userHandler := handlers.NewUserHandler(db)
	authed.GET("/users", userHandler.List)
	authed.GET("/users/:id", userHandler.Get)
	authed.POST("/users/:id/disable", userHandler.Disable)
	authed.POST("/users/:id/enable", userHandler.Enable)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg, token)
		if errJWT != nil || !claims.IsAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.User
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Next()
	}
}

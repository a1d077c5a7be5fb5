// Package front exposes the user-facing HTTP API: authentication,
// plans, subscription lifecycle, content generation, and drafts.
package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/config"
	"github.com/adsmith-studio/adsmith-backend/internal/draftstore"
	"github.com/adsmith-studio/adsmith-backend/internal/generation"
	handlers "github.com/adsmith-studio/adsmith-backend/internal/http/api/front/handlers"
	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"github.com/adsmith-studio/adsmith-backend/internal/ratelimit"
	"github.com/adsmith-studio/adsmith-backend/internal/security"
	"github.com/adsmith-studio/adsmith-backend/internal/subscription"
	"gorm.io/gorm"
)

// Deps bundles the collaborators the front API needs.
type Deps struct {
	DB        *gorm.DB
	JWT       config.JWTConfig
	Ledger    *ledger.Ledger
	Lifecycle *subscription.Lifecycle
	Drafts    draftstore.Store
	Generator generation.Generator
	Limiter   *ratelimit.Manager
	Service   config.ServiceConfig
}

// RegisterFrontRoutes registers front routes, middleware, and handlers.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	api := r.Group("/api")

	authHandler := handlers.NewAuthFrontHandler(deps.DB, deps.JWT, deps.Lifecycle)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	planHandler := handlers.NewPlanFrontHandler(deps.Lifecycle)
	api.GET("/plans", planHandler.List)

	authed := api.Group("")
	authed.Use(userAuthMiddleware(deps.DB, deps.JWT))

	subHandler := handlers.NewSubscriptionFrontHandler(deps.Lifecycle, deps.Ledger)
	authed.GET("/subscription", subHandler.Get)
	authed.POST("/subscription/activate", subHandler.Activate)
	authed.POST("/subscription/cancel", subHandler.Cancel)
	authed.POST("/subscription/reactivate", subHandler.Reactivate)

	generateHandler := handlers.NewGenerateFrontHandler(deps.Ledger, deps.Generator, deps.Drafts, deps.Limiter, deps.Service)
	authed.POST("/generate/caption", generateHandler.Caption)
	authed.POST("/generate/ad", generateHandler.AdImage)

	draftHandler := handlers.NewDraftFrontHandler(deps.Drafts)
	authed.GET("/drafts/:key", draftHandler.Get)
	authed.PUT("/drafts/:key", draftHandler.Put)
	authed.DELETE("/drafts/:key", draftHandler.Delete)
}

// userAuthMiddleware validates user JWTs and loads user context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
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
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		c.Set("userID", user.ID)
		c.Next()
	}
}

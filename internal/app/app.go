// Package app wires configuration, storage, and the HTTP API together
// and runs the server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/config"
	"github.com/adsmith-studio/adsmith-backend/internal/db"
	"github.com/adsmith-studio/adsmith-backend/internal/draftstore"
	"github.com/adsmith-studio/adsmith-backend/internal/generation"
	adminapi "github.com/adsmith-studio/adsmith-backend/internal/http/api/admin"
	"github.com/adsmith-studio/adsmith-backend/internal/http/api/front"
	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/ratelimit"
	"github.com/adsmith-studio/adsmith-backend/internal/subscription"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtConfig, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	serviceConfig, errService := config.LoadServiceConfig(configPath)
	if errService != nil {
		return errService
	}

	if errAdmin := ensureAdminUser(conn); errAdmin != nil {
		return errAdmin
	}

	notifier := ledger.NewBalanceNotifier()
	led := ledger.New(conn, notifier)
	lifecycle := subscription.New(conn, led)
	limiter := ratelimit.NewManager(serviceConfig.Redis, nil)
	drafts := buildDraftStore(serviceConfig.Redis)

	generator, closeGenerator, errGen := buildGenerator(ctx, serviceConfig.GenAI)
	if errGen != nil {
		return errGen
	}
	defer closeGenerator()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogMiddleware())

	adminapi.RegisterAdminRoutes(engine, conn, jwtConfig, led)
	front.RegisterFrontRoutes(engine, front.Deps{
		DB:        conn,
		JWT:       jwtConfig,
		Ledger:    led,
		Lifecycle: lifecycle,
		Drafts:    drafts,
		Generator: generator,
		Limiter:   limiter,
		Service:   serviceConfig,
	})

	if defaultPort <= 0 {
		defaultPort = 8318
	}
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(defaultPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("shutdown: %w", errShutdown)
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}

// buildDraftStore picks the Redis-backed draft store when Redis is
// configured and falls back to process memory.
func buildDraftStore(cfg config.RedisConfig) draftstore.Store {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return draftstore.NewMemoryStore(0)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return draftstore.NewRedisStore(client, cfg.Prefix, 0)
}

// buildGenerator constructs the Gemini generator when an API key is
// configured, or a disabled stand-in otherwise.
func buildGenerator(ctx context.Context, cfg config.GenAIConfig) (generation.Generator, func(), error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn("no generative API key configured, generation endpoints disabled")
		return generation.Disabled{}, func() {}, nil
	}
	gemini, errNew := generation.NewGemini(ctx, cfg)
	if errNew != nil {
		return nil, nil, errNew
	}
	return gemini, func() {
		if errClose := gemini.Close(); errClose != nil {
			log.WithError(errClose).Warn("close generator failed")
		}
	}, nil
}

// requestLogMiddleware emits one structured log line per request.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}

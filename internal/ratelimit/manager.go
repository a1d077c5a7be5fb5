package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adsmith-studio/adsmith-backend/internal/config"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// redisBreakerDuration pauses Redis attempts after a failure so a dead
// Redis does not add latency to every request.
const redisBreakerDuration = 30 * time.Second

// Manager prefers the Redis backend when configured and falls back to
// process memory when Redis is absent or unhealthy.
type Manager struct {
	nowFn         func() time.Time
	memoryLimiter Limiter
	redisLimiter  *RedisLimiter

	mu           sync.Mutex
	breakerUntil time.Time
}

// NewManager constructs a Manager. An empty Redis address yields a
// memory-only manager.
func NewManager(cfg config.RedisConfig, nowFn func() time.Time) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	m := &Manager{
		nowFn:         nowFn,
		memoryLimiter: NewMemoryLimiter(),
	}
	if addr := strings.TrimSpace(cfg.Addr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		m.redisLimiter = NewRedisLimiter(client, cfg.Prefix)
	}
	return m
}

// Allow checks the rate limit using the best available backend.
func (m *Manager) Allow(ctx context.Context, key string, limit int) (Result, error) {
	if m == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	now := m.nowFn()

	if m.redisLimiter != nil && !m.isBreakerActive(now) {
		result, errAllow := m.redisLimiter.Allow(ctx, key, limit, now)
		if errAllow == nil {
			return result, nil
		}
		m.tripBreaker(errAllow, now)
	}
	return m.memoryLimiter.Allow(ctx, key, limit, now)
}

func (m *Manager) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("rate limit: redis unavailable, falling back to memory")
}

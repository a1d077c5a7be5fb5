package draftstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// defaultDraftTTL bounds how long an untouched draft survives.
const defaultDraftTTL = 7 * 24 * time.Hour

// RedisStore keeps drafts in Redis so multiple service nodes see the
// same in-progress work. Same best-effort contract as MemoryStore:
// Redis being down or full never surfaces to the caller.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore. A non-positive ttl falls back
// to a week.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &RedisStore{client: client, prefix: strings.TrimSpace(prefix), ttl: ttl}
}

// Set stores the draft with a TTL. On failure (connection loss, OOM
// with a maxmemory policy) it evicts the heavy keys and retries once;
// a second failure drops the write and logs.
func (s *RedisStore) Set(ctx context.Context, userID uint64, key, value string) {
	if s == nil || s.client == nil || key == "" {
		return
	}

	redisKey := s.buildKey(userID, key)
	errSet := s.client.Set(ctx, redisKey, value, s.ttl).Err()
	if errSet == nil {
		return
	}

	for _, heavy := range HeavyKeys() {
		if errDel := s.client.Del(ctx, s.buildKey(userID, heavy)).Err(); errDel != nil {
			break
		}
	}
	if errRetry := s.client.Set(ctx, redisKey, value, s.ttl).Err(); errRetry != nil {
		log.WithError(errRetry).WithField("key", key).Warn("draft store: redis write dropped")
	}
}

// Get returns the stored draft, or ("", false) on a miss or any error.
func (s *RedisStore) Get(ctx context.Context, userID uint64, key string) (string, bool) {
	if s == nil || s.client == nil {
		return "", false
	}
	value, errGet := s.client.Get(ctx, s.buildKey(userID, key)).Result()
	if errGet != nil {
		if !errors.Is(errGet, redis.Nil) {
			log.WithError(errGet).Debug("draft store: redis read failed")
		}
		return "", false
	}
	return value, true
}

// Remove deletes the draft; failures are swallowed.
func (s *RedisStore) Remove(ctx context.Context, userID uint64, key string) {
	if s == nil || s.client == nil {
		return
	}
	if errDel := s.client.Del(ctx, s.buildKey(userID, key)).Err(); errDel != nil {
		log.WithError(errDel).Debug("draft store: redis delete failed")
	}
}

func (s *RedisStore) buildKey(userID uint64, key string) string {
	userPart := strconv.FormatUint(userID, 10)
	if s.prefix == "" {
		return "drafts:" + userPart + ":" + key
	}
	return s.prefix + ":drafts:" + userPart + ":" + key
}

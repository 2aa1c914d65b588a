package lockout

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

const keyPrefix = "gestproj:lockout:"

// RedisStore shares counters between instances. Failures expire one cooldown after the last
// attempt; a lock is a separate key whose TTL is the remaining cooldown.
type RedisStore struct {
	client   *redis.Client
	max      int
	cooldown time.Duration
	log      zerolog.Logger
}

// NewRedisStore mirrors NewMemoryStore over client.
func NewRedisStore(client *redis.Client, maxAttempts, cooldownSeconds int, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client:   client,
		max:      maxAttempts,
		cooldown: cooldownOrDefault(cooldownSeconds),
		log:      log,
	}
}

func failKey(key string) string { return keyPrefix + "fail:" + key }
func lockKey(key string) string { return keyPrefix + "lock:" + key }

// IsLocked fails open: a Redis error never locks anyone out.
func (s *RedisStore) IsLocked(ctx context.Context, key string) (bool, int) {
	if s.max <= 0 {
		return false, 0
	}
	ttl, err := s.client.PTTL(ctx, lockKey(key)).Result()
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("lockout lookup failed")
		return false, 0
	}
	if ttl <= 0 {
		return false, 0
	}
	return true, retryAfter(ttl)
}

func (s *RedisStore) RecordFailure(ctx context.Context, key string) {
	if s.max <= 0 {
		return
	}
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, failKey(key))
	pipe.Expire(ctx, failKey(key), s.cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("lockout record failed")
		return
	}
	if incr.Val() < int64(s.max) {
		return
	}
	pipe = s.client.TxPipeline()
	pipe.Set(ctx, lockKey(key), 1, s.cooldown)
	pipe.Del(ctx, failKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("lockout lock failed")
	}
}

func (s *RedisStore) RecordSuccess(ctx context.Context, key string) {
	if err := s.client.Del(ctx, failKey(key), lockKey(key)).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("lockout reset failed")
	}
}

var _ ports.AttemptLimiter = (*RedisStore)(nil)

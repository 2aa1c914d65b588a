package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, maxAttempts, cooldown int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, maxAttempts, cooldown, zerolog.Nop()), mr
}

func TestRedisStore_LocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, 2, 60)

	s.RecordFailure(ctx, "password:1")
	locked, _ := s.IsLocked(ctx, "password:1")
	assert.False(t, locked)

	s.RecordFailure(ctx, "password:1")
	locked, retry := s.IsLocked(ctx, "password:1")
	require.True(t, locked)
	assert.Equal(t, 60, retry)
	assert.False(t, mr.Exists(failKey("password:1")), "failures reset once locked")

	other, _ := s.IsLocked(ctx, "password:2")
	assert.False(t, other)

	mr.FastForward(61 * time.Second)
	locked, _ = s.IsLocked(ctx, "password:1")
	assert.False(t, locked)
}

func TestRedisStore_SuccessClears(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, 3, 60)
	s.RecordFailure(ctx, "k")
	s.RecordFailure(ctx, "k")
	s.RecordSuccess(ctx, "k")
	assert.False(t, mr.Exists(failKey("k")))

	s.RecordFailure(ctx, "k")
	locked, _ := s.IsLocked(ctx, "k")
	assert.False(t, locked)
}

func TestRedisStore_FailuresExpire(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, 2, 30)
	s.RecordFailure(ctx, "k")
	mr.FastForward(31 * time.Second)
	s.RecordFailure(ctx, "k")
	locked, _ := s.IsLocked(ctx, "k")
	assert.False(t, locked)
}

func TestRedisStore_FailsOpen(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, 1, 60, zerolog.Nop())
	s.RecordFailure(ctx, "k")
	locked, _ := s.IsLocked(ctx, "k")
	assert.False(t, locked)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 1, retryAfter(0))
	assert.Equal(t, 1, retryAfter(200*time.Millisecond))
	assert.Equal(t, 2, retryAfter(1500*time.Millisecond))
	assert.Equal(t, 60, retryAfter(time.Minute))
}

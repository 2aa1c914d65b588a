// Package lockout counts failed attempts per key and locks the key for a cooldown.
package lockout

import (
	"context"
	"sync"
	"time"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// DefaultCooldown applies when a non-positive cooldown is configured.
const DefaultCooldown = 15 * time.Minute

type counter struct {
	failures    int
	lockedUntil time.Time
}

func (c counter) lockedAt(now time.Time) bool {
	return now.Before(c.lockedUntil)
}

// MemoryStore keeps counters in process memory. A restart forgets every lock.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]counter
	max      int
	cooldown time.Duration
	now      func() time.Time
}

// NewMemoryStore locks a key for cooldownSeconds once it reaches maxAttempts failures.
// maxAttempts <= 0 disables locking.
func NewMemoryStore(maxAttempts, cooldownSeconds int) *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]counter),
		max:      maxAttempts,
		cooldown: cooldownOrDefault(cooldownSeconds),
		now:      time.Now,
	}
}

func cooldownOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultCooldown
	}
	return time.Duration(seconds) * time.Second
}

func (s *MemoryStore) IsLocked(_ context.Context, key string) (bool, int) {
	if s.max <= 0 {
		return false, 0
	}
	s.mu.Lock()
	c := s.counters[key]
	s.mu.Unlock()

	now := s.now()
	if !c.lockedAt(now) {
		return false, 0
	}
	return true, retryAfter(c.lockedUntil.Sub(now))
}

func (s *MemoryStore) RecordFailure(_ context.Context, key string) {
	if s.max <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := s.counters[key]
	if !c.lockedUntil.IsZero() && !c.lockedAt(now) {
		c = counter{}
	}
	c.failures++
	if c.failures >= s.max {
		c.lockedUntil = now.Add(s.cooldown)
	}
	s.counters[key] = c
}

func (s *MemoryStore) RecordSuccess(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.counters, key)
	s.mu.Unlock()
}

// retryAfter rounds a remaining lock up to whole seconds, never below 1.
func retryAfter(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}

var _ ports.AttemptLimiter = (*MemoryStore)(nil)

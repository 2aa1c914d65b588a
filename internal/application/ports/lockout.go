package ports

import "context"

// AttemptLimiter tracks failed attempts per key and locks the key for a cooldown after too many.
type AttemptLimiter interface {
	// IsLocked returns true if key is locked, and the remaining cooldown in seconds.
	IsLocked(ctx context.Context, key string) (locked bool, retryAfterSeconds int)
	// RecordFailure records a failed attempt; may lock key after N failures.
	RecordFailure(ctx context.Context, key string)
	// RecordSuccess clears the failure count for key.
	RecordSuccess(ctx context.Context, key string)
}

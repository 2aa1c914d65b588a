package ports

import "context"

// TaskEnqueuer enqueues async tasks (event delivery, overdue scan).
type TaskEnqueuer interface {
	EnqueueEvent(ctx context.Context, event DomainEvent) error
	EnqueueOverdueScan(ctx context.Context) error
}

package queue

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// NoopEnqueuer is a no-op enqueuer when Redis/Asynq is not configured.
type NoopEnqueuer struct{}

func NewNoopEnqueuer() *NoopEnqueuer {
	return &NoopEnqueuer{}
}

func (q *NoopEnqueuer) EnqueueEvent(ctx context.Context, event ports.DomainEvent) error {
	return nil
}

func (q *NoopEnqueuer) EnqueueOverdueScan(ctx context.Context) error {
	return nil
}

var _ ports.TaskEnqueuer = (*NoopEnqueuer)(nil)

package queue

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// Emitter is an EventEmitter that defers delivery to the worker.
type Emitter struct {
	enq ports.TaskEnqueuer
}

func NewEmitter(enq ports.TaskEnqueuer) *Emitter {
	return &Emitter{enq: enq}
}

// Emit implements ports.EventEmitter.
func (e *Emitter) Emit(ctx context.Context, event ports.DomainEvent) error {
	return e.enq.EnqueueEvent(ctx, event)
}

var _ ports.EventEmitter = (*Emitter)(nil)

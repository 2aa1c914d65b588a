package webhook

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// NoopEmitter discards domain events when WEBHOOK_URL is not set.
type NoopEmitter struct{}

// NewNoopEmitter returns an EventEmitter that discards all events.
func NewNoopEmitter() *NoopEmitter {
	return &NoopEmitter{}
}

// Emit implements ports.EventEmitter.
func (e *NoopEmitter) Emit(ctx context.Context, event ports.DomainEvent) error {
	return nil
}

var _ ports.EventEmitter = (*NoopEmitter)(nil)

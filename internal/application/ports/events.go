package ports

import (
	"context"
	"time"
)

// Event types emitted after successful mutations.
const (
	EventProjectCreated        = "project.created"
	EventProjectUpdated        = "project.updated"
	EventProjectDeleted        = "project.deleted"
	EventProjectDuplicated     = "project.duplicated"
	EventProjectTemplated      = "project.templated"
	EventProjectInstantiated   = "project.instantiated"
	EventProjectOverdue        = "project.overdue"
	EventUserCreated           = "user.created"
	EventUserUpdated           = "user.updated"
	EventUserDeactivated       = "user.deactivated"
	EventUserActivationChanged = "user.activation_changed"
	EventUserRoleChanged       = "user.role_changed"
	EventUserPasswordChanged   = "user.password_changed"
)

// DomainEvent records something that happened to a project or user.
type DomainEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	EntityID   int64          `json:"entity_id"`
	ActorID    int64          `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// EventEmitter publishes domain events (webhook, queue, or nowhere).
type EventEmitter interface {
	Emit(ctx context.Context, event DomainEvent) error
}

package middleware

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor injects the acting user into the context.
func WithActor(ctx context.Context, actor *domain.User) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the acting user from the context, or nil.
func ActorFromContext(ctx context.Context) *domain.User {
	v := ctx.Value(actorContextKey)
	if v == nil {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// ActorID returns the acting user's id, or 0 when the request carries none.
func ActorID(ctx context.Context) int64 {
	if u := ActorFromContext(ctx); u != nil {
		return u.ID
	}
	return 0
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	mw "github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/middleware"
)

// Auditor logs and publishes a DomainEvent after each successful mutation.
type Auditor struct {
	log     zerolog.Logger
	emitter ports.EventEmitter
	now     func() time.Time
}

// NewAuditor builds an Auditor. A nil emitter only logs.
func NewAuditor(log zerolog.Logger, emitter ports.EventEmitter) *Auditor {
	return &Auditor{log: log, emitter: emitter, now: time.Now}
}

// Emit records eventType for entityID, attributed to the request's actor.
// Delivery failures are logged and counted; they never fail the request.
func (a *Auditor) Emit(r *http.Request, eventType string, entityID int64, data map[string]any) {
	if a == nil {
		return
	}
	event := ports.DomainEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		ActorID:    mw.ActorID(r.Context()),
		OccurredAt: a.now().UTC(),
		Data:       data,
	}
	AuditLog(a.log, r, event)
	if a.emitter == nil {
		return
	}
	if err := a.emitter.Emit(r.Context(), event); err != nil {
		a.log.Warn().Err(err).Str("event_id", event.ID).Str("event", event.Type).Msg("emit event failed")
		mw.RecordDomainEvent(event.Type, false)
		return
	}
	mw.RecordDomainEvent(event.Type, true)
}

// AuditLog writes one audit line for event.
func AuditLog(log zerolog.Logger, r *http.Request, event ports.DomainEvent) {
	log.Info().
		Str("event", event.Type).
		Str("event_id", event.ID).
		Int64("entity_id", event.EntityID).
		Int64("actor_id", event.ActorID).
		Str("ip", getClientIP(r)).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("audit")
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return r.RemoteAddr
}

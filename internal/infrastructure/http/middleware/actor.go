package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// ActorHeader names the user a request acts on behalf of. It attributes requests; it does not authenticate them.
const ActorHeader = "X-Actor-ID"

// ActorResolver loads the user named by ActorHeader and checks role permissions.
type ActorResolver struct {
	users    ports.UserUseCases
	enforced bool
	log      zerolog.Logger
}

// NewActorResolver builds the resolver. With enforced false, Require lets every request through.
func NewActorResolver(users ports.UserUseCases, enforced bool, log zerolog.Logger) *ActorResolver {
	return &ActorResolver{users: users, enforced: enforced, log: log}
}

// Handler sets the actor in context when ActorHeader is present. Requests without it pass through anonymously.
func (m *ActorResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ActorHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeErrActor(w, http.StatusBadRequest, "invalid_request", "invalid "+ActorHeader)
			return
		}
		actor, err := m.users.GetUser(r.Context(), id)
		if err != nil {
			if errors.Is(err, domerrors.ErrNotFound) {
				writeErrActor(w, http.StatusUnauthorized, "unauthorized", "unknown actor")
				return
			}
			m.log.Error().Err(err).Int64("actor_id", id).Msg("resolve actor failed")
			writeErrActor(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		if !actor.Actif {
			writeErrActor(w, http.StatusForbidden, "forbidden", "actor is inactive")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// Require rejects requests whose actor is missing or lacks action. Use after Handler.
func (m *ActorResolver) Require(action domain.Action) func(next http.Handler) http.Handler {
	return m.require(action, false)
}

// RequireSelfOr is Require, except that an actor acting on its own {id} is always let through.
func (m *ActorResolver) RequireSelfOr(action domain.Action) func(next http.Handler) http.Handler {
	return m.require(action, true)
}

func (m *ActorResolver) require(action domain.Action, allowSelf bool) func(next http.Handler) http.Handler {
	if !m.enforced {
		return noopMiddleware
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if actor == nil {
				writeErrActor(w, http.StatusUnauthorized, "unauthorized", ActorHeader+" required")
				return
			}
			if allowSelf && chi.URLParam(r, "id") == strconv.FormatInt(actor.ID, 10) {
				next.ServeHTTP(w, r)
				return
			}
			ok, err := m.users.Authorize(r.Context(), actor.ID, action)
			if err != nil {
				m.log.Error().Err(err).Int64("actor_id", actor.ID).Msg("authorize failed")
				writeErrActor(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
			if !ok {
				writeErrActor(w, http.StatusForbidden, "forbidden", "missing permission "+string(action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeErrActor(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

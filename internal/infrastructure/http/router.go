package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	HealthHandler   *handlers.HealthHandler
	ProjectsHandler *handlers.ProjectsHandler
	UsersHandler    *handlers.UsersHandler
	Actors          *middleware.ActorResolver // X-Actor-ID resolution and permission checks
	Log             zerolog.Logger
	APIVersion      string
	Secure          func(http.Handler) http.Handler
	CORS            func(http.Handler) http.Handler
	IPRateLimit     func(http.Handler) http.Handler
	ActorRateLimit  func(http.Handler) http.Handler
	Metrics         bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.APIVersion != "" {
		r.Use(middleware.APIVersion(cfg.APIVersion))
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))
		r.Use(chimid.SetHeader("Content-Type", "application/json"))
		if cfg.Actors != nil {
			r.Use(cfg.Actors.Handler)
		}
		if cfg.ActorRateLimit != nil {
			r.Use(cfg.ActorRateLimit)
		}
		require := func(action domain.Action) func(http.Handler) http.Handler {
			if cfg.Actors == nil {
				return passthrough
			}
			return cfg.Actors.Require(action)
		}
		requireSelfOr := func(action domain.Action) func(http.Handler) http.Handler {
			if cfg.Actors == nil {
				return passthrough
			}
			return cfg.Actors.RequireSelfOr(action)
		}

		if h := cfg.ProjectsHandler; h != nil {
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.List)
				r.With(require(domain.ActionCreerProjet)).Post("/", h.Create)
				r.Get("/templates", h.Templates)
				r.With(require(domain.ActionCreerProjet)).Post("/from-template", h.FromTemplate)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Get)
					r.With(require(domain.ActionModifierProjet)).Patch("/", h.Update)
					r.With(require(domain.ActionModifierProjet)).Put("/", h.Update)
					r.With(require(domain.ActionSupprimerProjet)).Delete("/", h.Delete)
					r.With(require(domain.ActionCreerProjet)).Post("/duplicate", h.Duplicate)
					r.With(require(domain.ActionModifierProjet)).Post("/template", h.SaveAsTemplate)
					r.Get("/avancement", h.Avancement)
					r.Get("/ecart", h.Ecart)
				})
			})
		}

		if h := cfg.UsersHandler; h != nil {
			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.List)
				r.With(require(domain.ActionGererUtilisateurs)).Post("/", h.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Get)
					r.With(require(domain.ActionGererUtilisateurs)).Patch("/", h.Update)
					r.With(require(domain.ActionGererUtilisateurs)).Delete("/", h.Delete)
					r.With(require(domain.ActionGererUtilisateurs)).Patch("/activate", h.SetActive)
					r.With(require(domain.ActionGererUtilisateurs)).Patch("/role", h.ChangeRole)
					r.With(requireSelfOr(domain.ActionGererUtilisateurs)).Post("/change-password", h.ChangePassword)
				})
			})
		}
	})

	return r
}

func passthrough(next http.Handler) http.Handler { return next }

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", chimid.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Msg("request")
		})
	}
}

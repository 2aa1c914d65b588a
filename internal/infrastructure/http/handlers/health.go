package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /health with optional database and Redis checks.
type HealthHandler struct {
	db      Pinger
	redis   *redis.Client
	storage string
}

// NewHealthHandler creates a health handler. db and redisClient may be nil; storage names the driver in the response.
func NewHealthHandler(db Pinger, redisClient *redis.Client, storage string) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, storage: storage}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Storage string            `json:"storage,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allOK := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "down: " + err.Error()
			allOK = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down: " + err.Error()
			allOK = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !allOK {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "unhealthy",
			Storage: h.storage,
			Checks:  checks,
			Message: "one or more checks failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Storage: h.storage, Checks: checks})
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const limiterPrefix = "gestproj_limiter"

// LimiterOption configures where limiter counters live.
type LimiterOption func(*limiterConfig)

type limiterConfig struct {
	redis *redis.Client
}

// WithRedisStore keeps counters in Redis so every instance shares one budget.
// A nil client keeps the in-memory store.
func WithRedisStore(client *redis.Client) LimiterOption {
	return func(c *limiterConfig) { c.redis = client }
}

// newLimiter parses a rate like "100-M", "1000-H" or "50-S". An empty rate returns nil.
func newLimiter(rateFormatted, scope string, opts []LimiterOption) (*limiter.Limiter, error) {
	if rateFormatted == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	var cfg limiterConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: limiterPrefix + "_" + scope})
	if cfg.redis != nil {
		store, err = sredis.NewStoreWithOptions(cfg.redis, limiter.StoreOptions{
			Prefix:   limiterPrefix + "_" + scope,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, err
		}
	}
	return limiter.New(store, rate), nil
}

// NewIPRateLimiter limits requests per client IP.
func NewIPRateLimiter(rateFormatted string, opts ...LimiterOption) (func(next http.Handler) http.Handler, error) {
	instance, err := newLimiter(rateFormatted, "ip", opts)
	if err != nil || instance == nil {
		return noopMiddleware, err
	}
	return stdlib.NewMiddleware(instance, stdlib.WithLimitReachedHandler(writeRateLimited)).Handler, nil
}

// NewActorRateLimiter limits requests per acting user. Mount after ActorResolver.Handler;
// anonymous requests are left to the IP limiter.
func NewActorRateLimiter(rateFormatted string, opts ...LimiterOption) (func(next http.Handler) http.Handler, error) {
	instance, err := newLimiter(rateFormatted, "actor", opts)
	if err != nil || instance == nil {
		return noopMiddleware, err
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ActorID(r.Context())
			if id == 0 {
				next.ServeHTTP(w, r)
				return
			}
			lc, err := instance.Increment(r.Context(), "actor:"+strconv.FormatInt(id, 10), 1)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))
			if lc.Reached {
				h.Set("Retry-After", strconv.FormatInt(max(lc.Reset-time.Now().Unix(), 1), 10))
				writeRateLimited(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","code":"rate_limited"}`))
}

func noopMiddleware(next http.Handler) http.Handler {
	return next
}

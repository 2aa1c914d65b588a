package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/application/user"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/memory"
)

func newUsers(t *testing.T) (*user.Service, map[domain.Role]*domain.User) {
	t.Helper()
	svc := user.NewService(memory.NewUserRepository(), memory.NewTxManager(), nil)
	byRole := map[domain.Role]*domain.User{}
	for i, role := range domain.Roles {
		u, err := svc.CreateUser(context.Background(), ports.CreateUserInput{
			Nom:      "User",
			Prenom:   role.String(),
			Email:    "u" + strconv.Itoa(i) + "@example.com",
			Password: "password123",
			Role:     role,
		})
		require.NoError(t, err)
		byRole[role] = u
	}
	return svc, byRole
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if a := ActorFromContext(r.Context()); a != nil {
		_, _ = w.Write([]byte(strconv.FormatInt(a.ID, 10)))
	}
}

func serve(h http.Handler, method, path, actor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if actor != "" {
		req.Header.Set(ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestActorResolver_Handler(t *testing.T) {
	users, byRole := newUsers(t)
	res := NewActorResolver(users, true, zerolog.Nop())
	h := res.Handler(http.HandlerFunc(okHandler))

	rec := serve(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	admin := byRole[domain.RoleAdministrateur]
	rec = serve(h, http.MethodGet, "/", strconv.FormatInt(admin.ID, 10))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, strconv.FormatInt(admin.ID, 10), rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/", "-1").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/", "x").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/", "404").Code)

	_, err := users.SetActive(context.Background(), admin.ID, false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/", strconv.FormatInt(admin.ID, 10)).Code)
}

func TestActorResolver_Require(t *testing.T) {
	users, byRole := newUsers(t)
	res := NewActorResolver(users, true, zerolog.Nop())
	h := res.Handler(res.Require(domain.ActionSupprimerProjet)(http.HandlerFunc(okHandler)))

	tests := []struct {
		role domain.Role
		want int
	}{
		{domain.RoleAdministrateur, http.StatusOK},
		{domain.RoleGestionnaire, http.StatusForbidden},
		{domain.RoleEmploye, http.StatusForbidden},
	}
	for _, tt := range tests {
		rec := serve(h, http.MethodDelete, "/", strconv.FormatInt(byRole[tt.role].ID, 10))
		assert.Equal(t, tt.want, rec.Code, tt.role)
	}
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodDelete, "/", "").Code)
}

func TestActorResolver_NotEnforced(t *testing.T) {
	users, byRole := newUsers(t)
	res := NewActorResolver(users, false, zerolog.Nop())
	h := res.Handler(res.Require(domain.ActionGererUtilisateurs)(http.HandlerFunc(okHandler)))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/", strconv.FormatInt(byRole[domain.RoleEmploye].ID, 10)).Code)
}

func TestActorResolver_RequireSelfOr(t *testing.T) {
	users, byRole := newUsers(t)
	res := NewActorResolver(users, true, zerolog.Nop())
	r := chi.NewRouter()
	r.Use(res.Handler)
	r.With(res.RequireSelfOr(domain.ActionGererUtilisateurs)).Post("/users/{id}", okHandler)

	employee := byRole[domain.RoleEmploye]
	admin := byRole[domain.RoleAdministrateur]
	self := "/users/" + strconv.FormatInt(employee.ID, 10)
	other := "/users/" + strconv.FormatInt(admin.ID, 10)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, self, strconv.FormatInt(employee.ID, 10)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, other, strconv.FormatInt(employee.ID, 10)).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, self, strconv.FormatInt(admin.ID, 10)).Code)
}

func TestActorRateLimiter(t *testing.T) {
	users, byRole := newUsers(t)
	res := NewActorResolver(users, false, zerolog.Nop())
	limit, err := NewActorRateLimiter("2-M")
	require.NoError(t, err)
	h := res.Handler(limit(http.HandlerFunc(okHandler)))

	admin := strconv.FormatInt(byRole[domain.RoleAdministrateur].ID, 10)
	employee := strconv.FormatInt(byRole[domain.RoleEmploye].ID, 10)

	rec := serve(h, http.MethodGet, "/", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/", admin).Code)
	rec = serve(h, http.MethodGet, "/", admin)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/", employee).Code, "limits are per actor")
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/", "").Code, "anonymous requests are not limited here")
	}
}

func TestRateLimiters_EmptyAndInvalid(t *testing.T) {
	for _, ctor := range []func(string, ...LimiterOption) (func(http.Handler) http.Handler, error){NewIPRateLimiter, NewActorRateLimiter} {
		mw, err := ctor("")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, serve(mw(http.HandlerFunc(okHandler)), http.MethodGet, "/", "").Code)

		_, err = ctor("lots")
		assert.Error(t, err)
	}
}

func TestIPRateLimiter_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limit, err := NewIPRateLimiter("1-M", WithRedisStore(client))
	require.NoError(t, err)
	h := limit(http.HandlerFunc(okHandler))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/", "").Code)
	rec := serve(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded","code":"rate_limited"}`, rec.Body.String())
	assert.NotEmpty(t, mr.Keys())
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example"}, nil, nil)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), ActorHeader)

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	off := CORS(nil, nil, nil)(http.HandlerFunc(okHandler))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec = httptest.NewRecorder()
	off.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureAndVersionHeaders(t *testing.T) {
	h := NewSecure(SecureOptions(true))(APIVersion("2")(http.HandlerFunc(okHandler)))
	rec := serve(h, http.MethodGet, "/", "")
	assert.Equal(t, "2", rec.Header().Get("X-API-Version"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/application/project"
	"github.com/amirhosseinghanipour/gestproj/internal/application/user"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/lockout"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/memory"
)

var testNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type recordingEmitter struct {
	mu     sync.Mutex
	events []ports.DomainEvent
}

func (e *recordingEmitter) Emit(ctx context.Context, ev ports.DomainEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type testServer struct {
	handler http.Handler
	events  *recordingEmitter
	users   *user.Service
}

func newTestServer(t *testing.T, enforced bool) *testServer {
	t.Helper()
	log := zerolog.Nop()
	tx := memory.NewTxManager()
	projects := project.NewService(memory.NewProjectRepository(), tx, clock)
	users := user.NewService(memory.NewUserRepository(), tx, clock)
	events := &recordingEmitter{}
	audit := handlers.NewAuditor(log, events)

	h := NewRouter(RouterConfig{
		HealthHandler:   handlers.NewHealthHandler(nil, nil, "memory"),
		ProjectsHandler: handlers.NewProjectsHandler(projects, audit, log, clock),
		UsersHandler:    handlers.NewUsersHandler(users, lockout.NewMemoryStore(2, 60), audit, log),
		Actors:          middleware.NewActorResolver(users, enforced, log),
		Log:             log,
		APIVersion:      "1",
		Secure:          middleware.NewSecure(middleware.SecureOptions(true)),
		Metrics:         true,
	})
	return &testServer{handler: h, events: events, users: users}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field"`
}

func alphaBody() map[string]any {
	return map[string]any{
		"numero":            "P-1",
		"nom":               "Alpha",
		"type":              "INTERNAL",
		"date_debut":        "2025-01-01",
		"date_echeance":     "2025-01-31",
		"heures_planifiees": 100,
		"heures_reelles":    40,
		"responsable_id":    1,
		"entreprise_id":     2,
	}
}

func (s *testServer) createProject(t *testing.T, body map[string]any) handlers.ProjectResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handlers.ProjectResponse](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-API-Version"))
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, false)
	s.do(t, http.MethodGet, "/health", nil)
	rec := s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gestproj_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), `path="/health"`)
}

func TestProjects_CreateAndGet(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProject(t, alphaBody())

	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "P-1", p.Numero)
	assert.Equal(t, "2025-01-01", p.DateDebut)
	assert.Equal(t, "2025-01-31", p.DateEcheance)
	assert.Equal(t, 40.0, p.Avancement)
	assert.Equal(t, -60.0, p.EcartTemps)
	assert.True(t, p.IsActive)
	assert.Equal(t, 16, p.DaysRemaining)
	assert.False(t, p.EstEnRetard)
	assert.Equal(t, testNow.Format(time.RFC3339), p.DateCreation)

	rec := s.do(t, http.MethodGet, "/api/projects/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p, decode[handlers.ProjectResponse](t, rec))

	assert.Equal(t, []string{ports.EventProjectCreated}, s.events.types())
}

func TestProjects_CreateErrors(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(t, alphaBody())

	tests := []struct {
		name   string
		mutate func(b map[string]any)
		status int
		code   string
		field  string
	}{
		{"duplicate numero", func(b map[string]any) { b["nom"] = "Beta" }, http.StatusConflict, handlers.ErrCodeAlreadyExists, "numero"},
		{"duplicate nom", func(b map[string]any) { b["numero"] = "P-2" }, http.StatusConflict, handlers.ErrCodeAlreadyExists, "nom"},
		{"missing nom", func(b map[string]any) { b["numero"] = "P-2"; delete(b, "nom") }, http.StatusBadRequest, handlers.ErrCodeValidation, "nom"},
		{"unknown type", func(b map[string]any) { b["numero"] = "P-2"; b["nom"] = "Beta"; b["type"] = "RESEARCH" }, http.StatusBadRequest, handlers.ErrCodeValidation, "type"},
		{"bad date", func(b map[string]any) { b["numero"] = "P-2"; b["nom"] = "Beta"; b["date_debut"] = "01/01/2025" }, http.StatusBadRequest, handlers.ErrCodeValidation, "date_debut"},
		{"due before start", func(b map[string]any) { b["numero"] = "P-2"; b["nom"] = "Beta"; b["date_echeance"] = "2024-12-01" }, http.StatusBadRequest, handlers.ErrCodeValidation, "date_echeance"},
		{"negative hours", func(b map[string]any) { b["numero"] = "P-2"; b["nom"] = "Beta"; b["heures_planifiees"] = -1 }, http.StatusBadRequest, handlers.ErrCodeValidation, "heures_planifiees"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := alphaBody()
			tt.mutate(body)
			rec := s.do(t, http.MethodPost, "/api/projects", body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			e := decode[errResp](t, rec)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.field, e.Field)
		})
	}
	assert.Len(t, s.events.types(), 1)
}

func TestProjects_LowercaseTypeAccepted(t *testing.T) {
	s := newTestServer(t, false)
	body := alphaBody()
	body["type"] = "maintenance"
	p := s.createProject(t, body)
	assert.Equal(t, "MAINTENANCE", p.Type)
}

func TestProjects_RejectsNonJSONAndUnknownFields(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewBufferString(`numero=P-1`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	body := alphaBody()
	body["budget"] = 10
	rec = s.do(t, http.MethodPost, "/api/projects", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handlers.ErrCodeInvalidRequest, decode[errResp](t, rec).Code)
}

func TestProjects_GetErrors(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(t, http.MethodGet, "/api/projects/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handlers.ErrCodeNotFound, decode[errResp](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/projects/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjects_Update(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(t, alphaBody())
	other := alphaBody()
	other["numero"], other["nom"] = "P-2", "Beta"
	s.createProject(t, other)

	rec := s.do(t, http.MethodPatch, "/api/projects/1", map[string]any{"heures_reelles": 120, "stade": "execution"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[handlers.ProjectResponse](t, rec)
	assert.Equal(t, "Alpha", p.Nom)
	assert.Equal(t, "execution", p.Stade)
	assert.Equal(t, 120.0, p.HeuresReelles)
	assert.True(t, p.EstEnRetard)
	assert.Equal(t, 20.0, p.EcartTemps)

	rec = s.do(t, http.MethodPut, "/api/projects/1", map[string]any{"nom": "Beta"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/projects/1", map[string]any{"date_echeance": "2024-12-31"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date_echeance", decode[errResp](t, rec).Field)

	rec = s.do(t, http.MethodPatch, "/api/projects/9", map[string]any{"nom": "Gamma"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{ports.EventProjectCreated, ports.EventProjectCreated, ports.EventProjectUpdated}, s.events.types())
}

func TestProjects_Delete(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(t, alphaBody())

	rec := s.do(t, http.MethodDelete, "/api/projects/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/projects/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/projects/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_ListPaging(t *testing.T) {
	s := newTestServer(t, false)
	for i := 1; i <= 3; i++ {
		body := alphaBody()
		body["numero"] = "P-" + strconv.Itoa(i)
		body["nom"] = "Project " + strconv.Itoa(i)
		s.createProject(t, body)
	}

	rec := s.do(t, http.MethodGet, "/api/projects?offset=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[handlers.ProjectListResponse](t, rec)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "P-2", list.Projects[0].Numero)
	require.NotNil(t, list.Offset)
	require.NotNil(t, list.Limit)
	assert.Equal(t, 1, *list.Offset)
	assert.Equal(t, 1, *list.Limit)
	assert.Equal(t, 1, list.Total)

	rec = s.do(t, http.MethodGet, "/api/projects", nil)
	list = decode[handlers.ProjectListResponse](t, rec)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 20, *list.Limit)
}

func TestProjects_ListFilters(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(t, alphaBody())
	other := alphaBody()
	other["numero"], other["nom"], other["responsable_id"], other["entreprise_id"] = "P-2", "Beta", 7, 8
	s.createProject(t, other)

	rec := s.do(t, http.MethodGet, "/api/projects?responsable_id=7", nil)
	list := decode[handlers.ProjectListResponse](t, rec)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "Beta", list.Projects[0].Nom)
	assert.Nil(t, list.Offset)

	rec = s.do(t, http.MethodGet, "/api/projects?entreprise_id=2", nil)
	list = decode[handlers.ProjectListResponse](t, rec)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "Alpha", list.Projects[0].Nom)

	rec = s.do(t, http.MethodGet, "/api/projects?responsable_id=7&entreprise_id=2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/projects?template_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjects_TemplateFlow(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(t, alphaBody())

	rec := s.do(t, http.MethodPost, "/api/projects/from-template", map[string]any{
		"template_id": 1, "numero": "P-2", "nom": "Beta",
		"date_debut": "2025-02-01", "date_echeance": "2025-03-01",
		"responsable_id": 3, "entreprise_id": 4,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, "not yet a template")
	assert.Equal(t, "template_id", decode[errResp](t, rec).Field)

	rec = s.do(t, http.MethodPost, "/api/projects/1/template", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[handlers.ProjectResponse](t, rec).EstTemplate)

	rec = s.do(t, http.MethodGet, "/api/projects/templates", nil)
	templates := decode[handlers.ProjectListResponse](t, rec)
	require.Len(t, templates.Projects, 1)
	assert.Equal(t, int64(1), templates.Projects[0].ID)

	rec = s.do(t, http.MethodPost, "/api/projects/from-template", map[string]any{
		"template_id": 1, "numero": "P-2", "nom": "Beta",
		"date_debut": "2025-02-01", "date_echeance": "2025-03-01",
		"responsable_id": 3, "entreprise_id": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	child := decode[handlers.ProjectResponse](t, rec)
	require.NotNil(t, child.ProjetTemplateID)
	assert.Equal(t, int64(1), *child.ProjetTemplateID)
	assert.False(t, child.EstTemplate)
	assert.Equal(t, int64(3), child.ResponsableID)

	rec = s.do(t, http.MethodGet, "/api/projects?template_id=1", nil)
	list := decode[handlers.ProjectListResponse](t, rec)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, child.ID, list.Projects[0].ID)

	rec = s.do(t, http.MethodPost, "/api/projects/9/template", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{
		ports.EventProjectCreated,
		ports.EventProjectTemplated,
		ports.EventProjectInstantiated,
	}, s.events.types())
}

func TestProjects_Duplicate(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(t, alphaBody())

	body := map[string]any{"numero": "P-2", "nom": "Alpha bis", "date_debut": "2025-02-01", "date_echeance": "2025-02-28"}
	rec := s.do(t, http.MethodPost, "/api/projects/1/duplicate", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dup := decode[handlers.ProjectResponse](t, rec)
	assert.Equal(t, "Alpha bis", dup.Nom)
	assert.Equal(t, "2025-02-01", dup.DateDebut)
	assert.NotEqual(t, int64(1), dup.ID)

	rec = s.do(t, http.MethodPost, "/api/projects/1/duplicate", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/projects/5/duplicate", map[string]any{"numero": "P-3", "nom": "X", "date_debut": "2025-02-01", "date_echeance": "2025-02-28"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_AvancementAndEcart(t *testing.T) {
	s := newTestServer(t, false)
	s.createProject(t, alphaBody())

	rec := s.do(t, http.MethodGet, "/api/projects/1/avancement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"projet_id":1,"heures_planifiees":100,"heures_reelles":40,"avancement":40}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/projects/1/ecart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"projet_id":1,"heures_planifiees":100,"heures_reelles":40,"ecart":-60,"ecart_pourcentage":-60}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/projects/2/ecart", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func createUserBody(email, role string) map[string]any {
	return map[string]any{"nom": "Durand", "prenom": "Alex", "email": email, "password": "password123", "role": role}
}

func TestUsers_CRUD(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/api/users", createUserBody("Alex@Example.com", "employe"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "hash")
	u := decode[handlers.UserResponse](t, rec)
	assert.Equal(t, "alex@example.com", u.Email)
	assert.Equal(t, "EMPLOYE", u.Role)
	assert.Equal(t, "Alex Durand", u.NomComplet)
	assert.True(t, u.Actif)

	rec = s.do(t, http.MethodPost, "/api/users", createUserBody("alex@example.com", "EMPLOYE"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email", decode[errResp](t, rec).Field)

	short := createUserBody("sam@example.com", "EMPLOYE")
	short["password"] = "short"
	rec = s.do(t, http.MethodPost, "/api/users", short)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password", decode[errResp](t, rec).Field)

	rec = s.do(t, http.MethodPost, "/api/users", createUserBody("sam@example.com", "SUPERVISEUR"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "role", decode[errResp](t, rec).Field)

	rec = s.do(t, http.MethodPatch, "/api/users/1", map[string]any{"prenom": "Sam"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sam Durand", decode[handlers.UserResponse](t, rec).NomComplet)

	rec = s.do(t, http.MethodPatch, "/api/users/1/role", map[string]any{"role": "gestionnaire"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GESTIONNAIRE", decode[handlers.UserResponse](t, rec).Role)

	rec = s.do(t, http.MethodPatch, "/api/users/1/activate", map[string]any{"actif": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[handlers.UserResponse](t, rec).Actif)

	rec = s.do(t, http.MethodPatch, "/api/users/1/activate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/users/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[handlers.UserResponse](t, rec).Actif)

	rec = s.do(t, http.MethodGet, "/api/users?limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Users []handlers.UserResponse `json:"users"`
		Limit int                     `json:"limit"`
	}](t, rec)
	assert.Len(t, list.Users, 1)
	assert.Equal(t, 100, list.Limit)

	assert.Equal(t, []string{
		ports.EventUserCreated,
		ports.EventUserUpdated,
		ports.EventUserRoleChanged,
		ports.EventUserActivationChanged,
		ports.EventUserDeactivated,
	}, s.events.types())
}

func TestUsers_ChangePasswordLockout(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(t, http.MethodPost, "/api/users", createUserBody("alex@example.com", "EMPLOYE"))
	require.Equal(t, http.StatusCreated, rec.Code)

	wrong := map[string]any{"old_password": "nope-nope", "new_password": "new-password"}
	right := map[string]any{"old_password": "password123", "new_password": "new-password"}

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodPost, "/api/users/1/change-password", wrong)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "old_password", decode[errResp](t, rec).Field)
	}
	rec = s.do(t, http.MethodPost, "/api/users/1/change-password", right)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = s.do(t, http.MethodPost, "/api/users/2/change-password", right)
	assert.Equal(t, http.StatusNotFound, rec.Code, "other users are not locked")
}

func TestUsers_ChangePassword(t *testing.T) {
	s := newTestServer(t, false)
	rec := s.do(t, http.MethodPost, "/api/users", createUserBody("alex@example.com", "EMPLOYE"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users/1/change-password", map[string]any{"old_password": "password123", "new_password": "new-password"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	u, err := s.users.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, u.VerifyPassword("new-password"))
	assert.Contains(t, s.events.types(), ports.EventUserPasswordChanged)
}

func TestPermissions_Enforced(t *testing.T) {
	s := newTestServer(t, true)
	ctx := context.Background()
	admin, err := s.users.CreateUser(ctx, ports.CreateUserInput{Nom: "Root", Prenom: "Ada", Email: "ada@example.com", Password: "password123", Role: domain.RoleAdministrateur})
	require.NoError(t, err)
	manager, err := s.users.CreateUser(ctx, ports.CreateUserInput{Nom: "Lead", Prenom: "Max", Email: "max@example.com", Password: "password123", Role: domain.RoleGestionnaire})
	require.NoError(t, err)
	employee, err := s.users.CreateUser(ctx, ports.CreateUserInput{Nom: "Dev", Prenom: "Kim", Email: "kim@example.com", Password: "password123", Role: domain.RoleEmploye})
	require.NoError(t, err)
	as := func(u *domain.User) []string {
		return []string{middleware.ActorHeader, strconv.FormatInt(u.ID, 10)}
	}

	rec := s.do(t, http.MethodPost, "/api/projects", alphaBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/projects", alphaBody(), as(employee)...)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/projects", alphaBody(), as(manager)...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/projects/1", nil, as(manager)...)
	assert.Equal(t, http.StatusForbidden, rec.Code, "managers cannot delete")

	rec = s.do(t, http.MethodGet, "/api/projects/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads need no actor")

	rec = s.do(t, http.MethodDelete, "/api/projects/1", nil, as(admin)...)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/users/3/role", map[string]any{"role": "ADMINISTRATEUR"}, as(employee)...)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users/3/change-password",
		map[string]any{"old_password": "password123", "new_password": "new-password"}, as(employee)...)
	assert.Equal(t, http.StatusNoContent, rec.Code, "users may change their own password")

	rec = s.do(t, http.MethodPost, "/api/users/1/change-password",
		map[string]any{"old_password": "password123", "new_password": "new-password"}, as(employee)...)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/users/2/activate", map[string]any{"actif": false}, as(admin)...)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/projects", alphaBody(), as(manager)...)
	assert.Equal(t, http.StatusForbidden, rec.Code, "inactive actors are refused")

	rec = s.do(t, http.MethodGet, "/api/projects", nil, middleware.ActorHeader, "99")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/projects", nil, middleware.ActorHeader, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvents_CarryActor(t *testing.T) {
	s := newTestServer(t, false)
	admin, err := s.users.CreateUser(context.Background(), ports.CreateUserInput{Nom: "Root", Prenom: "Ada", Email: "ada@example.com", Password: "password123", Role: domain.RoleAdministrateur})
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/api/projects", alphaBody(), middleware.ActorHeader, strconv.FormatInt(admin.ID, 10))
	require.Equal(t, http.StatusCreated, rec.Code)

	s.events.mu.Lock()
	defer s.events.mu.Unlock()
	require.Len(t, s.events.events, 1)
	ev := s.events.events[0]
	assert.Equal(t, admin.ID, ev.ActorID)
	assert.Equal(t, int64(1), ev.EntityID)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "P-1", ev.Data["numero"])
}

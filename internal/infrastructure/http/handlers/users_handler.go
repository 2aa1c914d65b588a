package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// UsersHandler handles /api/users/*.
type UsersHandler struct {
	users    ports.UserUseCases
	attempts ports.AttemptLimiter
	audit    *Auditor
	validate *validator.Validate
	log      zerolog.Logger
}

// NewUsersHandler creates the user handler. attempts guards change-password and may be nil.
func NewUsersHandler(users ports.UserUseCases, attempts ports.AttemptLimiter, audit *Auditor, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		users:    users,
		attempts: attempts,
		audit:    audit,
		validate: NewValidator(),
		log:      log,
	}
}

// UserResponse is the JSON shape of a user. The password hash is never exposed.
type UserResponse struct {
	ID           int64  `json:"id"`
	Nom          string `json:"nom"`
	Prenom       string `json:"prenom"`
	NomComplet   string `json:"nom_complet"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Actif        bool   `json:"actif"`
	DateCreation string `json:"date_creation"`
}

// NewUserResponse renders u without its password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Nom:          u.Nom,
		Prenom:       u.Prenom,
		NomComplet:   u.FullName(),
		Email:        u.Email,
		Role:         u.Role.String(),
		Actif:        u.Actif,
		DateCreation: u.DateCreation.UTC().Format(time.RFC3339),
	}
}

type createUserRequest struct {
	Nom      string `json:"nom" validate:"required,max=100"`
	Prenom   string `json:"prenom" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
	Role     string `json:"role" validate:"required,role"`
}

type updateUserRequest struct {
	Nom    *string `json:"nom" validate:"omitempty,max=100"`
	Prenom *string `json:"prenom" validate:"omitempty,max=100"`
	Email  *string `json:"email" validate:"omitempty,email,max=254"`
}

type activateRequest struct {
	Actif *bool `json:"actif" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,max=128"`
	NewPassword string `json:"new_password" validate:"required,max=128"`
}

// List handles GET /api/users with optional limit/offset.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	users, err := h.users.ListUsers(r.Context(), offset, limit)
	if err != nil {
		writeDomainErr(w, h.log, err, "list users")
		return
	}
	items := make([]UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, NewUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": items, "offset": offset, "limit": limit, "total": len(items)})
}

// Create handles POST /api/users. The new user starts active.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createUserRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		writeDomainErr(w, h.log, err, "create user")
		return
	}
	u, err := h.users.CreateUser(r.Context(), ports.CreateUserInput{
		Nom:      body.Nom,
		Prenom:   body.Prenom,
		Email:    SanitizeEmail(body.Email),
		Password: body.Password,
		Role:     role,
	})
	if err != nil {
		writeDomainErr(w, h.log, err, "create user")
		return
	}
	h.audit.Emit(r, ports.EventUserCreated, u.ID, map[string]any{"email": u.Email, "role": u.Role.String()})
	writeJSON(w, http.StatusCreated, NewUserResponse(u))
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	u, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeDomainErr(w, h.log, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, NewUserResponse(u))
}

// Update handles PATCH /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body updateUserRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	u, err := h.users.UpdateUser(r.Context(), id, ports.UpdateUserInput{
		Nom:    body.Nom,
		Prenom: body.Prenom,
		Email:  body.Email,
	})
	if err != nil {
		writeDomainErr(w, h.log, err, "update user")
		return
	}
	h.audit.Emit(r, ports.EventUserUpdated, u.ID, map[string]any{"email": u.Email})
	writeJSON(w, http.StatusOK, NewUserResponse(u))
}

// Delete handles DELETE /api/users/{id}. Users are deactivated, never removed.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeDomainErr(w, h.log, err, "delete user")
		return
	}
	h.audit.Emit(r, ports.EventUserDeactivated, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// SetActive handles PATCH /api/users/{id}/activate. Body: { "actif": bool }.
func (h *UsersHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body activateRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	u, err := h.users.SetActive(r.Context(), id, *body.Actif)
	if err != nil {
		writeDomainErr(w, h.log, err, "set active")
		return
	}
	h.audit.Emit(r, ports.EventUserActivationChanged, u.ID, map[string]any{"actif": u.Actif})
	writeJSON(w, http.StatusOK, NewUserResponse(u))
}

// ChangeRole handles PATCH /api/users/{id}/role. Body: { "role": "..." }, any case.
func (h *UsersHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body roleRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		writeDomainErr(w, h.log, err, "change role")
		return
	}
	u, err := h.users.ChangeRole(r.Context(), id, role)
	if err != nil {
		writeDomainErr(w, h.log, err, "change role")
		return
	}
	h.audit.Emit(r, ports.EventUserRoleChanged, u.ID, map[string]any{"role": u.Role.String()})
	writeJSON(w, http.StatusOK, NewUserResponse(u))
}

// ChangePassword handles POST /api/users/{id}/change-password. Repeated wrong old
// passwords lock the endpoint for that user until the cooldown ends.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	key := "password:" + strconv.FormatInt(id, 10)
	if h.attempts != nil {
		if locked, retryAfter := h.attempts.IsLocked(r.Context(), key); locked {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeErr(w, http.StatusTooManyRequests, ErrCodeTooManyAttempts, "too many failed attempts, try again later")
			return
		}
	}
	var body changePasswordRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	err := h.users.ChangePassword(r.Context(), id, body.OldPassword, body.NewPassword)
	if err != nil {
		if h.attempts != nil && errors.Is(err, domerrors.ErrIncorrectPassword) {
			h.attempts.RecordFailure(r.Context(), key)
		}
		writeDomainErr(w, h.log, err, "change password")
		return
	}
	if h.attempts != nil {
		h.attempts.RecordSuccess(r.Context(), key)
	}
	h.audit.Emit(r, ports.EventUserPasswordChanged, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

// Request limits.
const (
	MaxEmailLength    = 254
	MaxPasswordLength = 128
	MaxBodyBytes      = 1 << 20
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

// NewValidator returns a validator that reports json field names and knows the
// project_type and role tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("project_type", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseProjectType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseRole(fl.Field().String())
		return err == nil
	})
	return v
}

// SanitizeEmail trims and lowercases email; returns empty if over the length limit.
func SanitizeEmail(email string) string {
	s := domain.NormalizeEmail(email)
	if len(s) > MaxEmailLength {
		return ""
	}
	return s
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure it writes the 400 itself and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body: "+err.Error())
		return false
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error: describeFieldError(fe),
				Code:  ErrCodeValidation,
				Field: fe.Field(),
			})
			return false
		}
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return false
	}
	return true
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": is required"
	case "datetime":
		return fe.Field() + ": must be a date formatted " + DateLayout
	case "project_type":
		return fe.Field() + ": must be one of INTERNAL, EXTERNAL, MAINTENANCE, DEVELOPMENT"
	case "role":
		return fe.Field() + ": must be one of ADMINISTRATEUR, GESTIONNAIRE, EMPLOYE"
	case "email":
		return fe.Field() + ": invalid address"
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
}

// idParam parses the {id} path parameter. It writes the 400 itself and returns false when invalid.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter.
func queryID(r *http.Request, name string) (int64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, fmt.Errorf("invalid %s", name)
	}
	return id, true, nil
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// pagination reads offset and limit. Bad values fall back to the defaults; limit is capped at maxListLimit.
func pagination(r *http.Request) (offset, limit int) {
	limit = defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return offset, limit
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is empty, a default is used from code.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	writeJSON(w, code, errorBody{Error: message, Code: errCode})
}

// writeDomainErr maps a use-case error to its status: validation 400, already exists 409,
// not found 404, anything else 500 (logged, message hidden).
func writeDomainErr(w http.ResponseWriter, log zerolog.Logger, err error, op string) {
	var ve *domerrors.ValidationError
	var ae *domerrors.AlreadyExistsError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Code: ErrCodeValidation, Field: ve.Field})
	case errors.As(err, &ae):
		writeJSON(w, http.StatusConflict, errorBody{Error: ae.Error(), Code: ErrCodeAlreadyExists, Field: ae.Field})
	case errors.Is(err, domerrors.ErrNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		log.Error().Err(err).Str("op", op).Msg("request failed")
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusUnsupportedMediaType:
		return ErrCodeUnsupportedMedia
	case http.StatusTooManyRequests:
		return ErrCodeTooManyAttempts
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

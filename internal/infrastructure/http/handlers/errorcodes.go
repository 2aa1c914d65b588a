package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeTooManyAttempts  = "too_many_attempts"
	ErrCodeUnsupportedMedia = "unsupported_media_type"
	ErrCodeInternal         = "internal_error"
)

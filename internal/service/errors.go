package service

import (
	"errors"

	"streamgate/internal/model"
	"streamgate/internal/ratelimit"
)

var (
	ErrNotFound           = errors.New("access code not found")
	ErrInactive           = errors.New("access code is inactive")
	ErrExpired            = errors.New("access code has expired")
	ErrSessionSuperseded  = errors.New("session was replaced by a newer login")
	ErrInvalidPassword    = errors.New("invalid admin password")
	ErrAdminNotConfigured = errors.New("admin password not configured")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidFormat      = errors.New("access code must be 6-12 letters or digits")
	ErrCodeExists         = errors.New("access code already exists")
	ErrItemNotFound       = errors.New("catalog item not found")
)

// ErrorCode maps a service error to the wire error code
func ErrorCode(err error) string {
	var limited *ratelimit.LimitedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &limited):
		return model.ErrCodeRateLimited
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound):
		return model.ErrCodeNotFound
	case errors.Is(err, ErrInactive):
		return model.ErrCodeInactive
	case errors.Is(err, ErrExpired):
		return model.ErrCodeExpired
	case errors.Is(err, ErrSessionSuperseded):
		return model.ErrCodeSessionSuperseded
	case errors.Is(err, ErrInvalidPassword):
		return model.ErrCodeInvalidPassword
	case errors.Is(err, ErrMissingFields):
		return model.ErrCodeMissingFields
	case errors.Is(err, ErrInvalidFormat):
		return model.ErrCodeInvalidFormat
	case errors.Is(err, ErrCodeExists):
		return model.ErrCodeCodeExists
	case errors.Is(err, ErrInvalidToken):
		return model.ErrCodeUnauthorized
	}
	return model.ErrCodeInternal
}

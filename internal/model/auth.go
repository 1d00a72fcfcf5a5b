package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role distinguishes subscriber sessions from administrator sessions
type Role string

const (
	RoleSubscriber    Role = "subscriber"
	RoleAdministrator Role = "administrator"
)

// AdminClaims are JWT claims for the elevated admin session
type AdminClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Error codes carried in the `error` field of auth responses
const (
	ErrCodeRateLimited       = "rate_limited"
	ErrCodeInvalidPassword   = "invalid_password"
	ErrCodeNotFound          = "not_found"
	ErrCodeExpired           = "expired"
	ErrCodeInactive          = "inactive"
	ErrCodeSessionSuperseded = "session_superseded"
	ErrCodeMissingFields     = "missing_fields"
	ErrCodeInvalidFormat     = "invalid_format"
	ErrCodeCodeExists        = "pin_exists"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeInternal          = "internal_error"
	ErrCodeInvalidAction     = "invalid_action"
)

// ErrorResponse is the failure body shared by every endpoint
type ErrorResponse struct {
	Success       bool       `json:"success"`
	Error         string     `json:"error"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
	RemainingTime int        `json:"remaining_time,omitempty"`
}

// PinLoginRequest is the body of a code validation
type PinLoginRequest struct {
	Code     string `json:"pin_code"`
	ClientID string `json:"client_identifier"`
}

// PinLoginResponse is the result of a code validation
type PinLoginResponse struct {
	Success       bool          `json:"success"`
	Grant         *SessionGrant `json:"pin_data,omitempty"`
	Error         string        `json:"error,omitempty"`
	BlockedUntil  *time.Time    `json:"blocked_until,omitempty"`
	RemainingTime int           `json:"remaining_time,omitempty"`
}

// AdminLoginRequest is the body of an admin authentication
type AdminLoginRequest struct {
	Password string `json:"password"`
	ClientID string `json:"client_identifier"`
}

// AdminLoginResponse is the result of an admin authentication
type AdminLoginResponse struct {
	Success       bool       `json:"success"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Error         string     `json:"error,omitempty"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
	RemainingTime int        `json:"remaining_time,omitempty"`
}

// SessionCheckRequest asks whether a marker is still current for a code
type SessionCheckRequest struct {
	Code   string `json:"pin_code"`
	Marker string `json:"session_id"`
}

// SessionCheckResponse is the liveness verdict
type SessionCheckResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

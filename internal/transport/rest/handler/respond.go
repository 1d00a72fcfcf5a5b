package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"streamgate/internal/model"
	"streamgate/internal/ratelimit"
	"streamgate/internal/service"

	"github.com/sirupsen/logrus"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, model.ErrorResponse{Error: code})
}

// writeServiceError maps a service error to its status and wire code.
// Server faults are logged; the client only sees internal_error.
func writeServiceError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var limited *ratelimit.LimitedError
	if errors.As(err, &limited) {
		w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfterSeconds()))
		blockedUntil := limited.BlockedUntil
		writeJSON(w, http.StatusTooManyRequests, model.ErrorResponse{
			Error:         model.ErrCodeRateLimited,
			BlockedUntil:  &blockedUntil,
			RemainingTime: limited.RemainingMinutes(),
		})
		return
	}

	code := service.ErrorCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeError(w, status, code)
}

// writeCredentialError is writeServiceError for login and liveness
// endpoints, where an unknown code is a rejected credential, not a 404
func writeCredentialError(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch service.ErrorCode(err) {
	case model.ErrCodeNotFound, model.ErrCodeExpired, model.ErrCodeInactive,
		model.ErrCodeInvalidPassword, model.ErrCodeSessionSuperseded:
		writeError(w, http.StatusUnauthorized, service.ErrorCode(err))
		return
	}
	writeServiceError(w, log, err)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeMissingFields, model.ErrCodeInvalidFormat, model.ErrCodeInvalidAction:
		return http.StatusBadRequest
	case model.ErrCodeCodeExists:
		return http.StatusConflict
	case model.ErrCodeExpired, model.ErrCodeInactive, model.ErrCodeInvalidPassword,
		model.ErrCodeSessionSuperseded, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into v, answering 400 itself on failure
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingFields)
		return false
	}
	return true
}

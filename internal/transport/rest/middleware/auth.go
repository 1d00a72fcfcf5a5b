package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"streamgate/internal/model"
	"streamgate/internal/service"
)

type contextKey string

const AdminIDKey contextKey = "adminId"

// Headers a subscriber sends with catalog requests
const (
	HeaderPinCode   = "X-Pin-Code"
	HeaderSessionID = "X-Session-Id"
)

// AuthMiddleware guards admin routes with the admin JWT and catalog routes
// with either the admin JWT or a live subscriber session
type AuthMiddleware struct {
	authSvc   *service.AuthService
	accessSvc *service.AccessService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService, accessSvc *service.AccessService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc, accessSvc: accessSvc}
}

// RequireAdmin validates the admin JWT from the Authorization header
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			deny(w, model.ErrCodeUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateAdminToken(token)
		if err != nil {
			deny(w, model.ErrCodeUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireViewer admits an admin token or a subscriber whose code and
// marker pass the liveness check
func (m *AuthMiddleware) RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := extractBearerToken(r); token != "" {
			m.RequireAdmin(next).ServeHTTP(w, r)
			return
		}

		code := r.Header.Get(HeaderPinCode)
		marker := r.Header.Get(HeaderSessionID)
		if code == "" || marker == "" {
			deny(w, model.ErrCodeUnauthorized)
			return
		}

		if err := m.accessSvc.CheckSession(r.Context(), code, marker); err != nil {
			reason := service.ErrorCode(err)
			if reason == model.ErrCodeInternal {
				writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: reason})
				return
			}
			deny(w, reason)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetAdminID extracts the admin token id from context
func GetAdminID(ctx context.Context) string {
	if v := ctx.Value(AdminIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func deny(w http.ResponseWriter, code string) {
	writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package handler

import (
	"net/http"

	"streamgate/internal/model"
	"streamgate/internal/service"

	"github.com/sirupsen/logrus"
)

// AuthHandler handles code login, admin login and session liveness
type AuthHandler struct {
	accessSvc *service.AccessService
	authSvc   *service.AuthService
	log       *logrus.Entry
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accessSvc *service.AccessService, authSvc *service.AuthService, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{accessSvc: accessSvc, authSvc: authSvc, log: log}
}

// ValidatePin handles POST /v1/auth/pin
func (h *AuthHandler) ValidatePin(w http.ResponseWriter, r *http.Request) {
	var req model.PinLoginRequest
	if !decode(w, r, &req) {
		return
	}

	grant, err := h.accessSvc.ValidateCode(r.Context(), req.Code, req.ClientID)
	if err != nil {
		writeCredentialError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, model.PinLoginResponse{Success: true, Grant: grant})
}

// ValidateAdmin handles POST /v1/auth/admin
func (h *AuthHandler) ValidateAdmin(w http.ResponseWriter, r *http.Request) {
	var req model.AdminLoginRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.authSvc.ValidateAdmin(r.Context(), req.Password, req.ClientID)
	if err != nil {
		writeCredentialError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ValidateSession handles POST /v1/auth/session
func (h *AuthHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	var req model.SessionCheckRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.accessSvc.CheckSession(r.Context(), req.Code, req.Marker); err != nil {
		writeCredentialError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SessionCheckResponse{Success: true})
}

// SecureAuth handles POST /functions/v1/secure-auth?action=..., the single
// dispatch endpoint older clients call
func (h *AuthHandler) SecureAuth(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "validate-pin":
		h.ValidatePin(w, r)
	case "validate-admin":
		h.ValidateAdmin(w, r)
	case "validate-session":
		h.ValidateSession(w, r)
	default:
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidAction)
	}
}

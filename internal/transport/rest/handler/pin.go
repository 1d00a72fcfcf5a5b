package handler

import (
	"net/http"

	"streamgate/internal/model"
	"streamgate/internal/service"
	"streamgate/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// PinHandler handles admin access code endpoints
type PinHandler struct {
	pinSvc *service.PinService
	log    *logrus.Entry
}

// NewPinHandler creates a new PIN handler
func NewPinHandler(pinSvc *service.PinService, log *logrus.Entry) *PinHandler {
	return &PinHandler{pinSvc: pinSvc, log: log}
}

// List handles GET /v1/admin/pins
func (h *PinHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.pinSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// Create handles POST /v1/admin/pins
func (h *PinHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCodeRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.pinSvc.Create(r.Context(), &req, middleware.GetAdminID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Deactivate handles POST /v1/admin/pins/{id}/deactivate
func (h *PinHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	rec, err := h.pinSvc.Deactivate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /v1/admin/pins/{id}
func (h *PinHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.pinSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

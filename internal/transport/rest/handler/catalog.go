package handler

import (
	"net/http"

	"streamgate/internal/model"
	"streamgate/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// CatalogHandler handles catalog reads and admin catalog writes
type CatalogHandler struct {
	catalogSvc *service.CatalogService
	log        *logrus.Entry
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogSvc *service.CatalogService, log *logrus.Entry) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc, log: log}
}

func filterFrom(r *http.Request) model.CatalogFilter {
	q := r.URL.Query()
	genre := q.Get("genre")
	if genre == "" {
		genre = q.Get("category")
	}
	return model.CatalogFilter{Query: q.Get("q"), Genre: genre}
}

// reply writes v or the service error
func (h *CatalogHandler) reply(w http.ResponseWriter, status int, v interface{}, err error) {
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, status, v)
}

func (h *CatalogHandler) noContent(w http.ResponseWriter, err error) {
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Movies

// ListMovies handles GET /v1/catalog/movies?q=&genre=
func (h *CatalogHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalogSvc.ListMovies(r.Context(), filterFrom(r))
	h.reply(w, http.StatusOK, movies, err)
}

// GetMovie handles GET /v1/catalog/movies/{id}
func (h *CatalogHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalogSvc.GetMovie(r.Context(), mux.Vars(r)["id"])
	h.reply(w, http.StatusOK, m, err)
}

// CreateMovie handles POST /v1/admin/movies
func (h *CatalogHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var m model.Movie
	if !decode(w, r, &m) {
		return
	}
	created, err := h.catalogSvc.CreateMovie(r.Context(), &m)
	h.reply(w, http.StatusCreated, created, err)
}

// UpdateMovie handles PUT /v1/admin/movies/{id}. Fields absent from the
// body keep their stored values.
func (h *CatalogHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, err := h.catalogSvc.GetMovie(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if !decode(w, r, m) {
		return
	}
	m.ID = id
	h.reply(w, http.StatusOK, m, h.catalogSvc.UpdateMovie(r.Context(), m))
}

// DeleteMovie handles DELETE /v1/admin/movies/{id}
func (h *CatalogHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.catalogSvc.DeleteMovie(r.Context(), mux.Vars(r)["id"]))
}

// Series and anime share handlers parameterized by kind

// ListShows handles GET /v1/catalog/{series,anime}
func (h *CatalogHandler) ListShows(kind model.ShowKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shows, err := h.catalogSvc.ListShows(r.Context(), kind, filterFrom(r))
		h.reply(w, http.StatusOK, shows, err)
	}
}

// GetShow handles GET /v1/catalog/{series,anime}/{id}
func (h *CatalogHandler) GetShow(kind model.ShowKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := h.catalogSvc.GetShow(r.Context(), kind, mux.Vars(r)["id"])
		h.reply(w, http.StatusOK, sh, err)
	}
}

// CreateShow handles POST /v1/admin/{series,anime}
func (h *CatalogHandler) CreateShow(kind model.ShowKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sh model.Show
		if !decode(w, r, &sh) {
			return
		}
		sh.Kind = kind
		created, err := h.catalogSvc.CreateShow(r.Context(), &sh)
		h.reply(w, http.StatusCreated, created, err)
	}
}

// UpdateShow handles PUT /v1/admin/{series,anime}/{id}
func (h *CatalogHandler) UpdateShow(kind model.ShowKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		sh, err := h.catalogSvc.GetShow(r.Context(), kind, id)
		if err != nil {
			writeServiceError(w, h.log, err)
			return
		}
		if !decode(w, r, sh) {
			return
		}
		sh.ID, sh.Kind = id, kind
		h.reply(w, http.StatusOK, sh, h.catalogSvc.UpdateShow(r.Context(), sh))
	}
}

// DeleteShow handles DELETE /v1/admin/{series,anime}/{id}
func (h *CatalogHandler) DeleteShow(kind model.ShowKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.noContent(w, h.catalogSvc.DeleteShow(r.Context(), kind, mux.Vars(r)["id"]))
	}
}

// Live TV

// ListChannels handles GET /v1/catalog/livetv?q=&category=
func (h *CatalogHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.catalogSvc.ListChannels(r.Context(), filterFrom(r))
	h.reply(w, http.StatusOK, channels, err)
}

// GetChannel handles GET /v1/catalog/livetv/{id}
func (h *CatalogHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalogSvc.GetChannel(r.Context(), mux.Vars(r)["id"])
	h.reply(w, http.StatusOK, c, err)
}

// CreateChannel handles POST /v1/admin/livetv
func (h *CatalogHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var c model.LiveChannel
	if !decode(w, r, &c) {
		return
	}
	created, err := h.catalogSvc.CreateChannel(r.Context(), &c)
	h.reply(w, http.StatusCreated, created, err)
}

// UpdateChannel handles PUT /v1/admin/livetv/{id}
func (h *CatalogHandler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := h.catalogSvc.GetChannel(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if !decode(w, r, c) {
		return
	}
	c.ID = id
	h.reply(w, http.StatusOK, c, h.catalogSvc.UpdateChannel(r.Context(), c))
}

// DeleteChannel handles DELETE /v1/admin/livetv/{id}
func (h *CatalogHandler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.catalogSvc.DeleteChannel(r.Context(), mux.Vars(r)["id"]))
}

// Login backgrounds

// ActiveBackgrounds handles GET /v1/backgrounds
func (h *CatalogHandler) ActiveBackgrounds(w http.ResponseWriter, r *http.Request) {
	bgs, err := h.catalogSvc.ListBackgrounds(r.Context(), true)
	h.reply(w, http.StatusOK, bgs, err)
}

// ListBackgrounds handles GET /v1/admin/backgrounds
func (h *CatalogHandler) ListBackgrounds(w http.ResponseWriter, r *http.Request) {
	bgs, err := h.catalogSvc.ListBackgrounds(r.Context(), false)
	h.reply(w, http.StatusOK, bgs, err)
}

// CreateBackground handles POST /v1/admin/backgrounds
func (h *CatalogHandler) CreateBackground(w http.ResponseWriter, r *http.Request) {
	var b model.BackgroundImage
	if !decode(w, r, &b) {
		return
	}
	created, err := h.catalogSvc.CreateBackground(r.Context(), &b)
	h.reply(w, http.StatusCreated, created, err)
}

// UpdateBackground handles PUT /v1/admin/backgrounds/{id}
func (h *CatalogHandler) UpdateBackground(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, err := h.catalogSvc.GetBackground(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if !decode(w, r, b) {
		return
	}
	b.ID = id
	h.reply(w, http.StatusOK, b, h.catalogSvc.UpdateBackground(r.Context(), b))
}

// ToggleBackground handles POST /v1/admin/backgrounds/{id}/toggle
func (h *CatalogHandler) ToggleBackground(w http.ResponseWriter, r *http.Request) {
	b, err := h.catalogSvc.ToggleBackground(r.Context(), mux.Vars(r)["id"])
	h.reply(w, http.StatusOK, b, err)
}

// DeleteBackground handles DELETE /v1/admin/backgrounds/{id}
func (h *CatalogHandler) DeleteBackground(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.catalogSvc.DeleteBackground(r.Context(), mux.Vars(r)["id"]))
}

// Settings and stats

// Welcome handles GET /v1/settings/welcome
func (h *CatalogHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	msg, err := h.catalogSvc.Welcome(r.Context())
	h.reply(w, http.StatusOK, msg, err)
}

// SetWelcome handles PUT /v1/admin/settings/welcome
func (h *CatalogHandler) SetWelcome(w http.ResponseWriter, r *http.Request) {
	var req model.WelcomeMessage
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.catalogSvc.SetWelcome(r.Context(), req.Message)
	h.reply(w, http.StatusOK, msg, err)
}

// Stats handles GET /v1/admin/stats
func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.catalogSvc.Stats(r.Context())
	h.reply(w, http.StatusOK, st, err)
}

package rest

import (
	"net/http"

	"streamgate/internal/config"
	"streamgate/internal/metrics"
	"streamgate/internal/model"
	"streamgate/internal/service"
	"streamgate/internal/transport/rest/handler"
	"streamgate/internal/transport/rest/middleware"
	"streamgate/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Container holds all dependencies for the router
type Container struct {
	Config         *config.Config
	AccessService  *service.AccessService
	AuthService    *service.AuthService
	PinService     *service.PinService
	CatalogService *service.CatalogService
	WSHub          *ws.Hub
	Log            *logrus.Entry
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AccessService, c.AuthService, c.Log)
	pinHandler := handler.NewPinHandler(c.PinService, c.Log)
	catalogHandler := handler.NewCatalogHandler(c.CatalogService, c.Log)
	wsHandler := ws.NewHandler(c.WSHub, c.AccessService, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService, c.AccessService)

	// Recovery outermost, CORS before routing-dependent middleware
	r.Use(middleware.Recover(c.Log))
	r.Use(middleware.RequestLogger(c.Log))
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware(c.Config))

	// Health check and metrics
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Single dispatch endpoint kept for older clients
	r.HandleFunc("/functions/v1/secure-auth", authHandler.SecureAuth).Methods("POST", "OPTIONS")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/pin", authHandler.ValidatePin).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/admin", authHandler.ValidateAdmin).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/session", authHandler.ValidateSession).Methods("POST", "OPTIONS")
	v1.HandleFunc("/backgrounds", catalogHandler.ActiveBackgrounds).Methods("GET", "OPTIONS")
	v1.HandleFunc("/settings/welcome", catalogHandler.Welcome).Methods("GET", "OPTIONS")

	// WebSocket route (credentials in query params)
	v1.HandleFunc("/ws/session", wsHandler.SessionWS).Methods("GET")

	// Catalog routes (subscriber session or admin token)
	catalog := v1.PathPrefix("/catalog").Subrouter()
	catalog.Use(authMW.RequireViewer)

	catalog.HandleFunc("/movies", catalogHandler.ListMovies).Methods("GET", "OPTIONS")
	catalog.HandleFunc("/movies/{id}", catalogHandler.GetMovie).Methods("GET", "OPTIONS")
	catalog.HandleFunc("/series", catalogHandler.ListShows(model.ShowSeries)).Methods("GET", "OPTIONS")
	catalog.HandleFunc("/series/{id}", catalogHandler.GetShow(model.ShowSeries)).Methods("GET", "OPTIONS")
	catalog.HandleFunc("/anime", catalogHandler.ListShows(model.ShowAnime)).Methods("GET", "OPTIONS")
	catalog.HandleFunc("/anime/{id}", catalogHandler.GetShow(model.ShowAnime)).Methods("GET", "OPTIONS")
	catalog.HandleFunc("/livetv", catalogHandler.ListChannels).Methods("GET", "OPTIONS")
	catalog.HandleFunc("/livetv/{id}", catalogHandler.GetChannel).Methods("GET", "OPTIONS")

	// Admin routes (require admin token)
	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(authMW.RequireAdmin)

	admin.HandleFunc("/pins", pinHandler.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/pins", pinHandler.Create).Methods("POST", "OPTIONS")
	admin.HandleFunc("/pins/{id}/deactivate", pinHandler.Deactivate).Methods("POST", "OPTIONS")
	admin.HandleFunc("/pins/{id}", pinHandler.Delete).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/stats", catalogHandler.Stats).Methods("GET", "OPTIONS")
	admin.HandleFunc("/settings/welcome", catalogHandler.SetWelcome).Methods("PUT", "OPTIONS")

	admin.HandleFunc("/movies", catalogHandler.CreateMovie).Methods("POST", "OPTIONS")
	admin.HandleFunc("/movies/{id}", catalogHandler.UpdateMovie).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/movies/{id}", catalogHandler.DeleteMovie).Methods("DELETE", "OPTIONS")

	for _, kind := range []model.ShowKind{model.ShowSeries, model.ShowAnime} {
		base := "/" + string(kind)
		admin.HandleFunc(base, catalogHandler.CreateShow(kind)).Methods("POST", "OPTIONS")
		admin.HandleFunc(base+"/{id}", catalogHandler.UpdateShow(kind)).Methods("PUT", "OPTIONS")
		admin.HandleFunc(base+"/{id}", catalogHandler.DeleteShow(kind)).Methods("DELETE", "OPTIONS")
	}

	admin.HandleFunc("/livetv", catalogHandler.CreateChannel).Methods("POST", "OPTIONS")
	admin.HandleFunc("/livetv/{id}", catalogHandler.UpdateChannel).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/livetv/{id}", catalogHandler.DeleteChannel).Methods("DELETE", "OPTIONS")

	admin.HandleFunc("/backgrounds", catalogHandler.ListBackgrounds).Methods("GET", "OPTIONS")
	admin.HandleFunc("/backgrounds", catalogHandler.CreateBackground).Methods("POST", "OPTIONS")
	admin.HandleFunc("/backgrounds/{id}", catalogHandler.UpdateBackground).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/backgrounds/{id}/toggle", catalogHandler.ToggleBackground).Methods("POST", "OPTIONS")
	admin.HandleFunc("/backgrounds/{id}", catalogHandler.DeleteBackground).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.CORSAllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.CORSAllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

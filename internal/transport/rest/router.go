package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"mockmate/internal/metrics"
	"mockmate/internal/service"
	"mockmate/internal/transport/rest/handler"
	"mockmate/internal/transport/rest/middleware"
	"mockmate/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	HistoryService *service.HistoryService
	Metrics        *metrics.Metrics
	WSHub          *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AuthService)
	historyHandler := handler.NewHistoryHandler(c.HistoryService)
	progressHandler := handler.NewProgressHandler(c.HistoryService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Metrics
	v1.Handle("/metrics", handler.NewMetricsHandler(c.Metrics)).Methods("GET")

	// Authenticated routes (require a session token)
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireSession)

	authed.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/sessions/{id}/reset", sessionHandler.Reset).Methods("POST", "OPTIONS")
	authed.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")

	authed.HandleFunc("/history", historyHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/history", historyHandler.Clear).Methods("DELETE", "OPTIONS")
	authed.HandleFunc("/history/summary", historyHandler.Summary).Methods("GET", "OPTIONS")
	authed.HandleFunc("/history/dedupe", historyHandler.Dedupe).Methods("POST", "OPTIONS")

	authed.HandleFunc("/progress", progressHandler.DeleteAll).Methods("DELETE", "OPTIONS")
	authed.HandleFunc("/progress/{topic}", progressHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/progress/{topic}", progressHandler.Update).Methods("PUT", "OPTIONS")
	authed.HandleFunc("/progress/{topic}", progressHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

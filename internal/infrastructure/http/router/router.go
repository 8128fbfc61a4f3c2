package router

import (
	"net/http"

	"fraud-scoring-engine/internal/interfaces/http/handler"
)

// Router holds all HTTP handlers
type Router struct {
	mux           *http.ServeMux
	scoreHandler  *handler.ScoreHandler
	alertHandler  *handler.AlertHandler
	userHandler   *handler.UserHandler
	healthHandler *handler.HealthHandler
	metricsPath   string
}

// NewRouter creates a new router with all routes configured.
// userHandler may be nil when no velocity cache is wired.
func NewRouter(
	scoreHandler *handler.ScoreHandler,
	alertHandler *handler.AlertHandler,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	metricsPath string,
) *Router {
	r := &Router{
		mux:           http.NewServeMux(),
		scoreHandler:  scoreHandler,
		alertHandler:  alertHandler,
		userHandler:   userHandler,
		healthHandler: healthHandler,
		metricsPath:   metricsPath,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Health endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)
	r.mux.HandleFunc("GET /live", r.healthHandler.Live)

	// Scoring endpoints
	r.mux.HandleFunc("POST /api/v1/score", r.scoreHandler.Score)
	r.mux.HandleFunc("POST /api/v1/score/batch", r.scoreHandler.BatchScore)

	// Alert endpoints
	r.mux.HandleFunc("GET /api/v1/alerts", r.alertHandler.ListAlerts)
	r.mux.HandleFunc("GET /api/v1/alerts/stats", r.alertHandler.AlertStats)

	// User velocity profiles
	if r.userHandler != nil {
		r.mux.HandleFunc("GET /api/v1/users/{id}/velocity", r.userHandler.GetVelocityProfile)
	}

	if r.metricsPath != "" {
		r.mux.Handle("GET "+r.metricsPath, handler.MetricsHandler())
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// Handler returns the http.Handler
func (r *Router) Handler() http.Handler {
	return r
}

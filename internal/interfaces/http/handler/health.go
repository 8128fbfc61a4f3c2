package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is an interface for services that can be health-checked
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ModelStatus reports whether a scoring model is loaded and which
// version it is
type ModelStatus interface {
	Loaded() bool
	Version() string
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	dbClient    HealthChecker
	redisClient HealthChecker
	models      ModelStatus
	version     string
}

// NewHealthHandler creates a new health handler. models may be nil for
// binaries that do not score.
func NewHealthHandler(dbClient, redisClient HealthChecker, models ModelStatus, version string) *HealthHandler {
	return &HealthHandler{
		dbClient:    dbClient,
		redisClient: redisClient,
		models:      models,
		version:     version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	ModelLoaded  bool              `json:"model_loaded"`
	ModelVersion string            `json:"model_version,omitempty"`
	Timestamp    string            `json:"timestamp"`
	Services     map[string]string `json:"services,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.models != nil {
		response.ModelLoaded = h.models.Loaded()
		response.ModelVersion = h.models.Version()
	}

	writeJSON(w, http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	allHealthy := true

	if h.dbClient != nil {
		if err := h.dbClient.Ping(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["database"] = "healthy"
		}
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["redis"] = "healthy"
		}
	}

	if h.models != nil {
		if h.models.Loaded() {
			services["model"] = "healthy"
		} else {
			services["model"] = "unhealthy: no model loaded"
			allHealthy = false
		}
	}

	response := HealthResponse{
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}
	if h.models != nil {
		response.ModelLoaded = h.models.Loaded()
		response.ModelVersion = h.models.Version()
	}

	if allHealthy {
		response.Status = "ready"
		writeJSON(w, http.StatusOK, response)
	} else {
		response.Status = "not ready"
		writeJSON(w, http.StatusServiceUnavailable, response)
	}
}

// Live handles GET /live
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/ricirt/problem-interpretation/internal/config"
	"github.com/ricirt/problem-interpretation/internal/health"
)

// livenessBody is fixed at start and written verbatim on every call.
var livenessBody = []byte(`{"status":"alive"}` + "\n")

// Snapshotter serves the latest round of component checks.
type Snapshotter interface {
	Snapshot() health.Snapshot
}

// HealthHandler serves the liveness, readiness and health endpoints.
type HealthHandler struct {
	checks  Snapshotter
	cfg     *config.Config
	version string
}

func NewHealthHandler(checks Snapshotter, cfg *config.Config, version string) *HealthHandler {
	return &HealthHandler{checks: checks, cfg: cfg, version: version}
}

type healthResponse struct {
	Status     health.Status                     `json:"status"`
	Timestamp  time.Time                         `json:"timestamp"`
	Version    string                            `json:"version"`
	Debug      bool                              `json:"debug"`
	Components map[string]health.ComponentHealth `json:"components"`
}

type readinessResponse struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// Live handles GET /health/live
//
// It touches no other component, so it keeps answering while the engine,
// store or LLM are down.
//
// @Summary  Liveness check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health/live [get]
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(livenessBody)
}

// Health handles GET /health
//
// @Summary  Component health
// @Tags     health
// @Produce  json
// @Success  200  {object}  healthResponse
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	snap := h.checks.Snapshot()
	respondJSON(w, http.StatusOK, healthResponse{
		Status:     snap.Status,
		Timestamp:  time.Now().UTC(),
		Version:    h.version,
		Debug:      h.cfg.Debug,
		Components: snap.Components,
	})
}

// Ready handles GET /health/ready
//
// @Summary  Readiness check
// @Tags     health
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	snap := h.checks.Snapshot()
	if snap.Ready() {
		respondJSON(w, http.StatusOK, readinessResponse{Ready: true, Message: "All components ready"})
		return
	}
	respondJSON(w, http.StatusServiceUnavailable, readinessResponse{
		Ready:   false,
		Message: "Unhealthy components: " + strings.Join(snap.Unhealthy(), ", "),
	})
}

// Config handles GET /health/config
//
// Only non-sensitive values are returned, and only in debug mode.
//
// @Summary  Configuration info
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /health/config [get]
func (h *HealthHandler) Config(w http.ResponseWriter, _ *http.Request) {
	if !h.cfg.Debug {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Config info only available in debug mode"})
		return
	}

	apiURL := h.cfg.ComBaseAPIURL
	if apiURL == "" {
		apiURL = "Not configured"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"app_name":               h.cfg.AppName,
		"debug":                  h.cfg.Debug,
		"log_level":              h.cfg.LogLevel,
		"llm_model":              h.cfg.LLMModel,
		"llm_api_key_set":        h.cfg.LLMAPIKey != "",
		"llm_api_base":           h.cfg.LLMAPIBase,
		"combase_models_path":    h.cfg.ComBaseModelsPath,
		"combase_api_url":        apiURL,
		"combase_timeout":        h.cfg.ComBaseTimeout.String(),
		"default_temperature_c":  h.cfg.DefaultTemperatureAbuseC,
		"default_ph":             h.cfg.DefaultPH,
		"default_water_activity": h.cfg.DefaultWaterActivity,
		"store_driver":           h.cfg.StoreDriver,
		"health_check_interval":  h.cfg.HealthCheckInterval.String(),
	})
}

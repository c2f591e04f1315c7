package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/problem-interpretation/internal/combase"
	"github.com/ricirt/problem-interpretation/internal/health"
	"github.com/ricirt/problem-interpretation/internal/llm"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Predictions        *prometheus.CounterVec
	PredictionFailures *prometheus.CounterVec
	LLMRequests        *prometheus.CounterVec
	LLMDuration        *prometheus.HistogramVec
	ModelsLoaded       prometheus.Gauge
	ComponentHealth    *prometheus.GaugeVec
}

// New registers all instruments with the given Prometheus registerer.
// A custom registry keeps tests isolated from global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),

		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful engine predictions.",
		}, []string{"organism", "model_type"}),

		PredictionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed prediction requests by reason.",
		}, []string{"reason"}),

		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM calls by operation and outcome.",
		}, []string{"operation", "outcome"}),

		LLMDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Latency of upstream LLM calls.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),

		ModelsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "combase_models_loaded",
			Help: "Number of broth models in the loaded catalogue.",
		}),

		ComponentHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "component_health",
			Help: "Latest component health: 1 healthy, 0.5 degraded, 0 unhealthy.",
		}, []string{"component"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.Predictions,
		m.PredictionFailures,
		m.LLMRequests,
		m.LLMDuration,
		m.ModelsLoaded,
		m.ComponentHealth,
	)

	return m
}

// EngineHooks returns the callbacks expected by combase.NewEngine.
func (m *Metrics) EngineHooks() combase.EngineHooks {
	return combase.EngineHooks{
		OnModelsLoaded: func(count int) { m.ModelsLoaded.Set(float64(count)) },
	}
}

// LLMHooks returns the callbacks expected by llm.NewClient.
func (m *Metrics) LLMHooks() llm.Hooks {
	return llm.Hooks{
		OnRequest: func(operation, outcome string, latency time.Duration) {
			m.LLMRequests.WithLabelValues(operation, outcome).Inc()
			if latency > 0 {
				m.LLMDuration.WithLabelValues(operation).Observe(latency.Seconds())
			}
		},
	}
}

// HealthHooks returns the callbacks expected by health.NewMonitor.
func (m *Metrics) HealthHooks() health.Hooks {
	return health.Hooks{
		OnCheck: func(component string, status health.Status) {
			m.ComponentHealth.WithLabelValues(component).Set(status.Score())
		},
	}
}

// PredictionHooks returns the callback functions used by the prediction
// service. Centralises the prometheus calls so the service stays import-free.
func (m *Metrics) PredictionHooks() (
	onSuccess func(organism, modelType string),
	onFailure func(reason string),
) {
	onSuccess = func(organism, modelType string) {
		m.Predictions.WithLabelValues(organism, modelType).Inc()
	}
	onFailure = func(reason string) {
		m.PredictionFailures.WithLabelValues(reason).Inc()
	}
	return
}

// ObserveHTTP records one completed request.
func (m *Metrics) ObserveHTTP(method, route string, status int, latency time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ricirt/problem-interpretation/internal/health"
	"github.com/ricirt/problem-interpretation/internal/metrics"
)

func TestHooksUpdateInstruments(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.EngineHooks().OnModelsLoaded(42)
	if got := testutil.ToFloat64(m.ModelsLoaded); got != 42 {
		t.Fatalf("expected 42 models, got %v", got)
	}

	m.LLMHooks().OnRequest("classify_intent", "success", 150*time.Millisecond)
	if got := testutil.ToFloat64(m.LLMRequests.WithLabelValues("classify_intent", "success")); got != 1 {
		t.Fatalf("expected 1 llm request, got %v", got)
	}

	m.HealthHooks().OnCheck("engine", health.StatusDegraded)
	if got := testutil.ToFloat64(m.ComponentHealth.WithLabelValues("engine")); got != 0.5 {
		t.Fatalf("expected 0.5 for degraded, got %v", got)
	}

	onSuccess, onFailure := m.PredictionHooks()
	onSuccess("lm", "growth")
	onFailure("model_not_found")
	if got := testutil.ToFloat64(m.Predictions.WithLabelValues("lm", "growth")); got != 1 {
		t.Fatalf("expected 1 prediction, got %v", got)
	}
	if got := testutil.ToFloat64(m.PredictionFailures.WithLabelValues("model_not_found")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestObserveHTTPGroupsStatus(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/health/live", 200, time.Millisecond)
	m.ObserveHTTP("GET", "/health/ready", 503, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/health/live", "2xx")); got != 1 {
		t.Fatalf("expected one 2xx, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/health/ready", "5xx")); got != 1 {
		t.Fatalf("expected one 5xx, got %v", got)
	}
}

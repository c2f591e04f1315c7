package health_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/health"
)

func healthyCheck(context.Context) (bool, string, error) { return true, "ok", nil }
func degradedCheck(context.Context) (bool, string, error) { return false, "not loaded", nil }
func failingCheck(context.Context) (bool, string, error) {
	return false, "", errors.New("connection refused")
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		check   health.CheckFunc
		status  health.Status
		message string
	}{
		{"healthy", healthyCheck, health.StatusHealthy, "ok"},
		{"not healthy is degraded", degradedCheck, health.StatusDegraded, "not loaded"},
		{"error is unhealthy", failingCheck, health.StatusUnhealthy, "Error: connection refused"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := health.Evaluate(context.Background(), tc.check)
			if h.Status != tc.status || h.Message != tc.message {
				t.Fatalf("expected %s %q, got %s %q", tc.status, tc.message, h.Status, h.Message)
			}
		})
	}
}

func TestOverall(t *testing.T) {
	healthy := health.ComponentHealth{Status: health.StatusHealthy}
	degraded := health.ComponentHealth{Status: health.StatusDegraded}
	unhealthy := health.ComponentHealth{Status: health.StatusUnhealthy}

	tests := []struct {
		name       string
		components map[string]health.ComponentHealth
		expected   health.Status
	}{
		{"all healthy", map[string]health.ComponentHealth{"a": healthy, "b": healthy}, health.StatusHealthy},
		{"one degraded", map[string]health.ComponentHealth{"a": healthy, "b": degraded}, health.StatusDegraded},
		{"one unhealthy", map[string]health.ComponentHealth{"a": degraded, "b": unhealthy}, health.StatusUnhealthy},
		{"no components", map[string]health.ComponentHealth{}, health.StatusHealthy},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := health.Overall(tc.components); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestSnapshot_UnhealthySorted(t *testing.T) {
	s := health.Snapshot{Components: map[string]health.ComponentHealth{
		"store":      {Status: health.StatusUnhealthy},
		"engine":     {Status: health.StatusDegraded},
		"llm_client": {Status: health.StatusUnhealthy},
	}}

	names := s.Unhealthy()
	if len(names) != 2 || names[0] != "llm_client" || names[1] != "store" {
		t.Fatalf("unexpected unhealthy names %v", names)
	}
	if s.Ready() {
		t.Fatal("expected not ready")
	}
}

func TestMonitor_CheckNowStoresSnapshot(t *testing.T) {
	observed := map[string]health.Status{}
	p := health.NewMonitor(time.Hour, time.Second, health.Hooks{
		OnCheck: func(c string, s health.Status) { observed[c] = s },
	}, zap.NewNop())
	p.Register("engine", degradedCheck)
	p.Register("store", healthyCheck)

	snap := p.CheckNow(context.Background())
	if snap.Status != health.StatusDegraded {
		t.Fatalf("expected degraded, got %s", snap.Status)
	}
	if got := p.Snapshot(); got.Components["store"].Status != health.StatusHealthy {
		t.Fatalf("expected stored snapshot, got %+v", got)
	}
	if observed["engine"] != health.StatusDegraded || observed["store"] != health.StatusHealthy {
		t.Fatalf("expected hooks per component, got %v", observed)
	}
}

func TestMonitor_CheckTimeout(t *testing.T) {
	p := health.NewMonitor(time.Hour, 20*time.Millisecond, health.Hooks{}, zap.NewNop())
	p.Register("slow", func(ctx context.Context) (bool, string, error) {
		<-ctx.Done()
		return false, "", ctx.Err()
	})

	snap := p.CheckNow(context.Background())
	if snap.Components["slow"].Status != health.StatusUnhealthy {
		t.Fatalf("expected a timed-out check to be unhealthy, got %+v", snap.Components["slow"])
	}
}

func TestMonitor_RunRefreshesUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	p := health.NewMonitor(10*time.Millisecond, time.Second, health.Hooks{}, zap.NewNop())
	p.Register("counter", func(context.Context) (bool, string, error) {
		calls.Add(1)
		return true, "", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("expected the monitor to tick at least twice")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after cancel")
	}
}

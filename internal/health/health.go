package health

import (
	"context"
	"sort"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Score maps a status to a gauge value: 1 healthy, 0.5 degraded, 0 unhealthy.
func (s Status) Score() float64 {
	switch s {
	case StatusHealthy:
		return 1
	case StatusDegraded:
		return 0.5
	}
	return 0
}

// CheckFunc checks one component. Returning healthy=false marks the component
// degraded; returning an error marks it unhealthy.
type CheckFunc func(ctx context.Context) (healthy bool, message string, err error)

type ComponentHealth struct {
	Status    Status   `json:"status"`
	Message   string   `json:"message,omitempty"`
	LatencyMS *float64 `json:"latency_ms,omitempty"`
}

// Evaluate runs check and converts its outcome into a ComponentHealth.
func Evaluate(ctx context.Context, check CheckFunc) ComponentHealth {
	start := time.Now()
	healthy, message, err := check(ctx)
	latency := float64(time.Since(start).Microseconds()) / 1000

	switch {
	case err != nil:
		return ComponentHealth{Status: StatusUnhealthy, Message: "Error: " + err.Error()}
	case !healthy:
		return ComponentHealth{Status: StatusDegraded, Message: message, LatencyMS: &latency}
	default:
		return ComponentHealth{Status: StatusHealthy, Message: message, LatencyMS: &latency}
	}
}

// Snapshot is the result of one round of checks.
type Snapshot struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

// Overall is healthy when every component is healthy, unhealthy when any
// component is unhealthy and degraded otherwise.
func Overall(components map[string]ComponentHealth) Status {
	status := StatusHealthy
	for _, c := range components {
		switch c.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// Unhealthy returns the sorted names of unhealthy components.
func (s Snapshot) Unhealthy() []string {
	var names []string
	for name, c := range s.Components {
		if c.Status == StatusUnhealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Ready reports whether no component is unhealthy.
func (s Snapshot) Ready() bool {
	return len(s.Unhealthy()) == 0
}

package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hooks lets the metrics layer observe check results. Nil hooks are skipped.
type Hooks struct {
	OnCheck func(component string, status Status)
}

type namedCheck struct {
	name  string
	check CheckFunc
}

// Monitor runs registered checks on a fixed interval and keeps the latest
// snapshot so health endpoints never block on slow dependencies.
type Monitor struct {
	interval time.Duration
	timeout  time.Duration
	checks   []namedCheck
	hooks    Hooks
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

func NewMonitor(interval, timeout time.Duration, hooks Hooks, logger *zap.Logger) *Monitor {
	return &Monitor{
		interval: interval,
		timeout:  timeout,
		hooks:    hooks,
		logger:   logger,
		snapshot: Snapshot{Status: StatusHealthy, Components: map[string]ComponentHealth{}},
	}
}

// Register adds a component check. Call before Run.
func (m *Monitor) Register(name string, check CheckFunc) {
	m.checks = append(m.checks, namedCheck{name: name, check: check})
}

// CheckNow runs every check concurrently and stores the result.
func (m *Monitor) CheckNow(ctx context.Context) Snapshot {
	results := make(map[string]ComponentHealth, len(m.checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, nc := range m.checks {
		wg.Add(1)
		go func(nc namedCheck) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			h := Evaluate(checkCtx, nc.check)
			mu.Lock()
			results[nc.name] = h
			mu.Unlock()
		}(nc)
	}
	wg.Wait()

	snap := Snapshot{Status: Overall(results), Components: results, CheckedAt: time.Now().UTC()}
	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	for name, h := range results {
		if m.hooks.OnCheck != nil {
			m.hooks.OnCheck(name, h.Status)
		}
		if h.Status != StatusHealthy {
			m.logger.Warn("component not healthy",
				zap.String("component", name),
				zap.String("status", string(h.Status)),
				zap.String("message", h.Message),
			)
		}
	}
	return snap
}

// Snapshot returns the latest stored result.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Run ticks every interval and refreshes the snapshot.
// Stops cleanly when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("health monitor started", zap.Duration("interval", m.interval))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("health monitor stopping")
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

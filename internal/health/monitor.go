package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes a dependency.
type CheckFunc func(ctx context.Context) error

// PoolStats reports worker pool occupancy.
type PoolStats interface {
	Size() int
	InFlight() int64
}

type component struct {
	name     string
	check    CheckFunc
	critical bool
}

// Monitor aggregates health status from the registered components.
type Monitor struct {
	components []component
	pool       PoolStats
	cacheFor   time.Duration
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. Reports are reused for cacheFor.
func NewMonitor(pool PoolStats, cacheFor time.Duration) *Monitor {
	return &Monitor{
		pool:     pool,
		cacheFor: cacheFor,
	}
}

// Register adds a component. A failing critical component makes the system
// critical; any other failure only degrades it.
func (m *Monitor) Register(name string, check CheckFunc, critical bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, check: check, critical: critical})
	m.lastReport = nil
}

// CheckHealth probes every component and the worker pool.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport != nil && time.Since(m.lastCheck) < m.cacheFor {
		return *m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.components)),
	}

	for _, c := range m.components {
		health := ComponentHealth{Name: c.name, Status: StatusHealthy}
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := c.check(checkCtx); err != nil {
			health.Error = err.Error()
			health.Status = StatusDegraded
			if c.critical {
				health.Status = StatusCritical
			}
		}
		cancel()
		report.Components[c.name] = health
		report.SystemStatus = worse(report.SystemStatus, health.Status)
	}

	if m.pool != nil {
		report.Pool = PoolHealth{
			Size:     m.pool.Size(),
			InFlight: m.pool.InFlight(),
			Status:   StatusHealthy,
		}
		// A full pool means new work waits for a slot.
		if report.Pool.InFlight >= int64(report.Pool.Size) {
			report.Pool.Status = StatusDegraded
		}
		report.SystemStatus = worse(report.SystemStatus, report.Pool.Status)
	}

	m.lastCheck = time.Now()
	m.lastReport = &report
	return report
}

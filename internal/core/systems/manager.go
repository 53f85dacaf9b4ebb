package systems

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrDuplicateSystem = errors.New("system already registered")
	ErrNilSystem       = errors.New("nil system")
)

// Manager runs registered systems phase by phase, highest priority first
// inside a phase and registration order among equals. A failing system stops
// the tick; later systems do not run.
type Manager struct {
	systems []entry
	order   []int
	dirty   bool
}

type entry struct {
	sys     System
	seq     int
	metrics Metrics
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) RegisterSystem(s System) error {
	if s == nil {
		return ErrNilSystem
	}
	if m.HasSystem(s.Name()) {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
	}
	m.systems = append(m.systems, entry{sys: s, seq: len(m.systems)})
	m.dirty = true
	return nil
}

func (m *Manager) HasSystem(name string) bool {
	for _, e := range m.systems {
		if e.sys.Name() == name {
			return true
		}
	}
	return false
}

// Update runs one tick.
func (m *Manager) Update(dt float64) error {
	m.sort()
	for _, i := range m.order {
		e := &m.systems[i]
		start := time.Now()
		err := e.sys.Update(dt)
		took := time.Since(start)

		e.metrics.ExecutionCount++
		e.metrics.TotalExecutionTime += took
		e.metrics.MaxExecutionTime = max(e.metrics.MaxExecutionTime, took)
		if err != nil {
			e.metrics.ErrorCount++
			e.metrics.LastError = err
			return fmt.Errorf("%s system %s: %w", e.sys.ExecutionPhase(), e.sys.Name(), err)
		}
	}
	return nil
}

// GetExecutionOrder lists system names in the order Update runs them.
func (m *Manager) GetExecutionOrder() []string {
	m.sort()
	names := make([]string, 0, len(m.order))
	for _, i := range m.order {
		names = append(names, m.systems[i].sys.Name())
	}
	return names
}

func (m *Manager) GetSystemMetrics(name string) (Metrics, bool) {
	for _, e := range m.systems {
		if e.sys.Name() == name {
			return e.metrics, true
		}
	}
	return Metrics{}, false
}

func (m *Manager) sort() {
	if !m.dirty {
		return
	}
	m.order = m.order[:0]
	for i := range m.systems {
		m.order = append(m.order, i)
	}
	slices.SortStableFunc(m.order, func(a, b int) int {
		ea, eb := m.systems[a], m.systems[b]
		if pa, pb := ea.sys.ExecutionPhase(), eb.sys.ExecutionPhase(); pa != pb {
			return int(pa) - int(pb)
		}
		if ea.sys.Priority() != eb.sys.Priority() {
			return int(eb.sys.Priority()) - int(ea.sys.Priority())
		}
		return ea.seq - eb.seq
	})
	m.dirty = false
}

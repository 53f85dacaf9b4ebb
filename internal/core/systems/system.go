package systems

import "time"

// System is one stage of the per-tick race pipeline. Systems are stateless
// with respect to the manager; whatever they mutate belongs to the session
// that built them.
type System interface {
	Name() string
	ExecutionPhase() ExecutionPhase
	Priority() Priority

	// Update runs the stage for one tick of dt seconds.
	Update(dt float64) error
}

// Priority orders systems inside a phase. Higher runs first.
type Priority uint16

const (
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs inside a tick.
type ExecutionPhase uint8

const (
	// PhasePreUpdate produces control input.
	PhasePreUpdate ExecutionPhase = iota
	// PhaseUpdate applies motion.
	PhaseUpdate
	// PhasePostUpdate steps the physics collaborator.
	PhasePostUpdate
	// PhaseLateUpdate consumes collisions and updates race state.
	PhaseLateUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
}

// AverageExecutionTime is TotalExecutionTime over ExecutionCount.
func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}

// Func adapts a function to System.
type Func struct {
	SystemName string
	Phase      ExecutionPhase
	Order      Priority
	Fn         func(dt float64) error
}

func (f Func) Name() string                   { return f.SystemName }
func (f Func) ExecutionPhase() ExecutionPhase { return f.Phase }
func (f Func) Priority() Priority             { return f.Order }
func (f Func) Update(dt float64) error        { return f.Fn(dt) }

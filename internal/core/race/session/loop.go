package session

import (
	"fmt"
	"math"

	"github.com/zeusync/circuit/internal/core/observability/log"
	"github.com/zeusync/circuit/internal/core/race/config"
	"github.com/zeusync/circuit/internal/core/systems"
	"github.com/zeusync/circuit/internal/core/systems/physics"
)

// Rewinder is implemented by control sources that replay input and should
// start over when the race restarts.
type Rewinder interface {
	Rewind()
}

type contact struct{ a, b physics.BodyID }

// Loop drives a Session one tick at a time:
//
//	input    (pre update)   player and AI controls
//	motion   (update)       controller writes transforms and velocities
//	physics  (post update)  one world step; begin contacts are only queued
//	progress (late update)  queued contacts feed the tracker
type Loop struct {
	def  config.Definition
	opts Options

	session *Session
	queue   []contact
	systems *systems.Manager
}

func NewLoop(def config.Definition, opts Options) (*Loop, error) {
	l := &Loop{def: def, opts: opts.withDefaults()}
	if err := l.start(); err != nil {
		return nil, err
	}

	l.systems = systems.NewManager()
	for _, sys := range []systems.System{
		systems.Func{SystemName: "input", Phase: systems.PhasePreUpdate, Order: systems.PriorityNormal, Fn: l.input},
		systems.Func{SystemName: "motion", Phase: systems.PhaseUpdate, Order: systems.PriorityNormal, Fn: l.motion},
		systems.Func{SystemName: "physics", Phase: systems.PhasePostUpdate, Order: systems.PriorityNormal, Fn: l.physics},
		systems.Func{SystemName: "progress", Phase: systems.PhaseLateUpdate, Order: systems.PriorityNormal, Fn: l.progress},
	} {
		if err := l.systems.RegisterSystem(sys); err != nil {
			return nil, fmt.Errorf("new loop: %w", err)
		}
	}
	return l, nil
}

func (l *Loop) start() error {
	opts := l.opts
	if l.session != nil {
		// a restarted race never reuses the previous session id
		opts.ID = ""
	}
	s, err := New(l.def, opts)
	if err != nil {
		return err
	}
	s.world.OnCollisionBegin(l.enqueue)
	l.session = s
	l.queue = l.queue[:0]
	return nil
}

func (l *Loop) enqueue(a, b physics.BodyID) {
	l.queue = append(l.queue, contact{a: a, b: b})
}

// Session is the race currently driven by the loop. It changes on Restart.
func (l *Loop) Session() *Session { return l.session }

// Snapshot is the HUD view of the current race.
func (l *Loop) Snapshot() Snapshot { return l.session.Snapshot() }

// Done reports whether the race has finished and its settle delay is over.
func (l *Loop) Done() bool { return l.session.SettleElapsed() }

// Tick advances the race by dt seconds. A non-positive, NaN or infinite dt
// is dropped: no phase runs and the tick is not counted. After the settle
// delay the loop stops ticking and returns ErrSessionOver.
func (l *Loop) Tick(dt float64) error {
	if l.Done() {
		return ErrSessionOver
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil
	}
	if err := l.systems.Update(dt); err != nil {
		return err
	}
	l.session.ticks++
	return nil
}

// Restart discards the current race and builds a fresh one from the same
// definition. Replayed player input is rewound.
func (l *Loop) Restart() error {
	if r, ok := l.opts.Player.(Rewinder); ok {
		r.Rewind()
	}
	old := l.session.id
	if err := l.start(); err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	l.session.logger.Info("race restarted", log.String("previous_session", old))
	return nil
}

func (l *Loop) input(float64) error {
	l.session.gatherInput()
	return nil
}

func (l *Loop) motion(dt float64) error {
	l.session.applyMotion(dt)
	return nil
}

func (l *Loop) physics(dt float64) error {
	l.session.world.Step(dt)
	return nil
}

func (l *Loop) progress(float64) error {
	for _, c := range l.queue {
		l.session.contact(c.a, c.b)
	}
	l.queue = l.queue[:0]
	return nil
}

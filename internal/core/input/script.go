package input

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/circuit/internal/core/race/vehicle"
)

var ErrInvalidScript = errors.New("invalid input script")

// Step holds a key state for a number of ticks.
type Step struct {
	Keys  KeyState `yaml:",inline"`
	Ticks int      `yaml:"ticks"`
}

// Script replays recorded steps, one Control call per tick, and coasts once
// the steps run out.
type Script struct {
	steps []Step
	step  int
	tick  int
}

var _ vehicle.ControlSource = (*Script)(nil)

func NewScript(steps ...Step) (*Script, error) {
	for i, s := range steps {
		if s.Ticks <= 0 {
			return nil, fmt.Errorf("%w: step %d has %d ticks", ErrInvalidScript, i, s.Ticks)
		}
	}
	return &Script{steps: append([]Step(nil), steps...)}, nil
}

// LoadScript reads a YAML list of steps:
//
//	- {forward: true, ticks: 120}
//	- {forward: true, right: true, ticks: 30}
func LoadScript(r io.Reader) (*Script, error) {
	var steps []Step
	if err := yaml.NewDecoder(r).Decode(&steps); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode input script: %w", err)
	}
	return NewScript(steps...)
}

func (s *Script) Control(vehicle.Situation) vehicle.Control {
	if s.Done() {
		return vehicle.Coast
	}
	st := s.steps[s.step]
	s.tick++
	if s.tick >= st.Ticks {
		s.step++
		s.tick = 0
	}
	return st.Keys.Control()
}

// Done reports whether every step has been replayed.
func (s *Script) Done() bool { return s.step >= len(s.steps) }

// Rewind restarts the script from its first step.
func (s *Script) Rewind() {
	s.step, s.tick = 0, 0
}

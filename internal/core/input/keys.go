// Package input turns player key states into vehicle controls and provides
// headless control sources for simulated races.
package input

import (
	"sync"

	"github.com/zeusync/circuit/internal/core/race/vehicle"
)

// KeyState is the pressed state of the driving keys for one frame.
type KeyState struct {
	Forward   bool `yaml:"forward"`
	Back      bool `yaml:"back"`
	Left      bool `yaml:"left"`
	Right     bool `yaml:"right"`
	HardBrake bool `yaml:"hard_brake"`
}

// Control maps keys to a control pair. When both keys of an axis are held
// the later one in W, S and A, D order wins, so Back beats Forward and Right
// beats Left.
func (k KeyState) Control() vehicle.Control {
	var c vehicle.Control
	if k.Forward {
		c.Throttle = 1
	}
	if k.Back {
		c.Throttle = -1
	}
	if k.Left {
		c.Steering = -1
	}
	if k.Right {
		c.Steering = 1
	}
	c.HardBrake = k.HardBrake
	return c
}

// Keyboard is a ControlSource fed by a device layer. Set may be called from
// the input thread while the tick reads the latest state.
type Keyboard struct {
	mu    sync.Mutex
	state KeyState
}

var _ vehicle.ControlSource = (*Keyboard)(nil)

func (k *Keyboard) Set(s KeyState) {
	k.mu.Lock()
	k.state = s
	k.mu.Unlock()
}

func (k *Keyboard) Control(vehicle.Situation) vehicle.Control {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state.Control()
}

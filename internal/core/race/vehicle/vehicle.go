// Package vehicle turns per-frame control input into car motion. Player and
// AI cars share one motion model; they differ in where their Control comes
// from and in whether fuel applies.
package vehicle

import "github.com/zeusync/circuit/internal/core/systems/physics"

// Control is one frame of driver input.
type Control struct {
	Throttle  float64 // [-1, 1]
	Steering  float64 // [-1, 1], negative turns toward decreasing heading
	HardBrake bool
}

// Coast is the zero input.
var Coast = Control{}

// State is the kinematic and resource state of one car.
type State struct {
	Speed          float64
	SteeringVisual float64 // degrees, presentation only
	Heading        float64 // radians
	Fuel           float64

	AIControlled bool
	// AIIndex selects the AI's progress slot; -1 for the player.
	AIIndex int
}

// FuelRatio is fuel as a fraction of capacity, for the HUD.
func (s State) FuelRatio(t Tuning) float64 {
	if t.MaxFuel <= 0 {
		return 0
	}
	return s.Fuel / t.MaxFuel
}

// Situation is what a ControlSource may look at when deciding.
type Situation struct {
	Position       physics.Vec2
	Heading        float64
	Speed          float64
	NextCheckpoint int

	// FuelRatio is 1 for cars that do not use fuel.
	FuelRatio    float64
	InRefuelZone bool
}

// ControlSource produces the Control for one car each frame.
type ControlSource interface {
	Control(s Situation) Control
}

// ControlFunc adapts a function to ControlSource.
type ControlFunc func(s Situation) Control

func (f ControlFunc) Control(s Situation) Control { return f(s) }

// Vehicle binds a car's state to its physics body and the source of its input.
type Vehicle struct {
	Body   physics.BodyID
	State  State
	Source ControlSource
}

// NewPlayer starts a player car with a full tank.
func NewPlayer(body physics.BodyID, heading float64, t Tuning, src ControlSource) Vehicle {
	return Vehicle{
		Body:   body,
		State:  State{Heading: heading, Fuel: t.MaxFuel, AIIndex: -1},
		Source: src,
	}
}

// NewAI starts an AI car bound to progress slot index.
func NewAI(body physics.BodyID, heading float64, index int, src ControlSource) Vehicle {
	return Vehicle{
		Body:   body,
		State:  State{Heading: heading, AIControlled: true, AIIndex: index},
		Source: src,
	}
}

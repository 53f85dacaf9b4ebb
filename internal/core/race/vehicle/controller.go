package vehicle

import (
	"math"

	"github.com/zeusync/circuit/internal/core/systems/physics"
)

const degToRad = math.Pi / 180

// Frame carries the per-tick context of an update.
type Frame struct {
	Dt float64 // seconds since the previous tick
	// InRefuelZone is evaluated by the caller against the car's position.
	InRefuelZone bool
}

// Motion is what the controller asks the physics collaborator to apply.
type Motion struct {
	Rotation float64
	Velocity physics.Vec2
}

type Controller struct {
	tuning Tuning
}

func NewController(t Tuning) *Controller {
	return &Controller{tuning: t}
}

func (c *Controller) Tuning() Tuning { return c.tuning }

// Step advances st by one frame of input and returns the body motion. It is
// total: every input is clamped and no branch can fail.
func (c *Controller) Step(st *State, in Control, f Frame) Motion {
	t := c.tuning
	throttle := clamp(in.Throttle, -1, 1)
	steering := clamp(in.Steering, -1, 1)
	requested := throttle != 0

	if in.HardBrake {
		throttle = 0
	}
	if !st.AIControlled && throttle != 0 && st.Fuel <= 0 {
		throttle = 0
	}

	switch {
	case throttle > 0:
		st.Speed = math.Min(st.Speed+t.Acceleration, t.MaxSpeed)
	case throttle < 0:
		st.Speed = math.Max(st.Speed-t.Acceleration, -t.MaxSpeed)
	default:
		decel := t.Braking
		if in.HardBrake && t.HardBraking > 0 {
			decel = t.HardBraking
		}
		st.Speed = towardZero(st.Speed, decel)
	}

	if !st.AIControlled {
		switch {
		case throttle != 0:
			st.Fuel = math.Max(st.Fuel-t.FuelDrainRate*f.Dt, 0)
		case !requested && f.InRefuelZone && math.Abs(st.Speed) < t.StopThreshold:
			st.Fuel = math.Min(st.Fuel+t.FuelRegenRate*f.Dt, t.MaxFuel)
		}
	}

	st.Heading = physics.NormalizeAngle(st.Heading + steering*t.TurnRateDeg*degToRad*math.Abs(st.Speed))

	if steering != 0 {
		st.SteeringVisual = clamp(st.SteeringVisual+steering*t.SteerVisualSpeed, -t.MaxSteerVisualDeg, t.MaxSteerVisualDeg)
	} else {
		st.SteeringVisual *= t.SteerVisualDecay
	}

	return Motion{
		Rotation: st.Heading,
		Velocity: physics.FromAngle(st.Heading).Scale(st.Speed * t.MoveFactor),
	}
}

// Drive runs Step for v and writes the result to the world: one transform
// write and one velocity write. The body keeps its integrated position; only
// the rotation is overridden by the heading.
func (c *Controller) Drive(w physics.World, v *Vehicle, in Control, f Frame) Motion {
	pos, _ := w.Transform(v.Body)
	m := c.Step(&v.State, in, f)
	w.SetTransform(v.Body, pos, m.Rotation)
	w.SetLinearVelocity(v.Body, m.Velocity)
	return m
}

func towardZero(v, step float64) float64 {
	if v > 0 {
		return math.Max(v-step, 0)
	}
	if v < 0 {
		return math.Min(v+step, 0)
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

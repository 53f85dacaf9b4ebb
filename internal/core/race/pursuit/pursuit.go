// Package pursuit drives AI cars toward their next checkpoint with a
// bang-bang steering law and an occasional erratic brake.
package pursuit

import (
	"math/rand/v2"

	"github.com/zeusync/circuit/internal/core/race/track"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
	"github.com/zeusync/circuit/internal/core/systems/physics"
)

type Config struct {
	// ErraticChance is the per-frame probability of a panic brake.
	ErraticChance   float64 `yaml:"erratic_chance"`
	ErraticThrottle float64 `yaml:"erratic_throttle"`
	// DeadZone is the heading error in radians tolerated without steering.
	DeadZone       float64 `yaml:"dead_zone"`
	SteerMagnitude float64 `yaml:"steer_magnitude"`
}

func DefaultConfig() Config {
	return Config{
		ErraticChance:   0.01,
		ErraticThrottle: -1,
		DeadZone:        0.08,
		SteerMagnitude:  0.6,
	}
}

// Pilot is a vehicle.ControlSource for one AI car. It owns its random source
// so that two pilots with the same seed make the same decisions.
type Pilot struct {
	cfg   Config
	track *track.Track
	rng   *rand.Rand
}

var _ vehicle.ControlSource = (*Pilot)(nil)

func NewPilot(cfg Config, tr *track.Track, rng *rand.Rand) *Pilot {
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	return &Pilot{cfg: cfg, track: tr, rng: rng}
}

// Control aims at the center of the next checkpoint. A missing track or an
// out-of-range index yields full throttle straight ahead.
func (p *Pilot) Control(s vehicle.Situation) vehicle.Control {
	throttle := 1.0
	if p.cfg.ErraticChance > 0 && p.rng.Float64() < p.cfg.ErraticChance {
		throttle = p.cfg.ErraticThrottle
	}

	if p.track == nil || p.track.Len() == 0 {
		return vehicle.Control{Throttle: 1}
	}
	zone, ok := p.track.Zone(s.NextCheckpoint)
	if !ok {
		return vehicle.Control{Throttle: 1}
	}

	return vehicle.Control{
		Throttle: throttle,
		Steering: Steer(s.Position, s.Heading, zone.Area.Center, p.cfg.DeadZone, p.cfg.SteerMagnitude),
	}
}

// Steer returns ±magnitude toward target, or 0 inside the dead zone.
func Steer(pos physics.Vec2, heading float64, target physics.Vec2, deadZone, magnitude float64) float64 {
	diff := HeadingError(pos, heading, target)
	switch {
	case diff > deadZone:
		return magnitude
	case diff < -deadZone:
		return -magnitude
	default:
		return 0
	}
}

// HeadingError is the signed angle in (-π, π] from heading to the bearing of
// target.
func HeadingError(pos physics.Vec2, heading float64, target physics.Vec2) float64 {
	if pos == target {
		return 0
	}
	return physics.NormalizeAngle(physics.Bearing(pos, target) - heading)
}

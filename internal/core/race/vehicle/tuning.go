package vehicle

import (
	"errors"
	"fmt"
)

var ErrInvalidTuning = errors.New("invalid vehicle tuning")

// Tuning holds every numeric constant of the motion model. Speeds are in
// engine velocity units, per-frame steps are applied once per tick and the
// fuel rates are per second.
type Tuning struct {
	Acceleration float64 `yaml:"acceleration"`
	Braking      float64 `yaml:"braking"`
	HardBraking  float64 `yaml:"hard_braking"`
	MaxSpeed     float64 `yaml:"max_speed"`
	MoveFactor   float64 `yaml:"move_factor"`
	// TurnRateDeg is the heading change in degrees per frame at speed 1.
	TurnRateDeg float64 `yaml:"turn_rate_deg"`

	MaxSteerVisualDeg float64 `yaml:"max_steer_visual_deg"`
	SteerVisualSpeed  float64 `yaml:"steer_visual_speed"`
	SteerVisualDecay  float64 `yaml:"steer_visual_decay"`

	MaxFuel       float64 `yaml:"max_fuel"`
	FuelDrainRate float64 `yaml:"fuel_drain_rate"`
	FuelRegenRate float64 `yaml:"fuel_regen_rate"`
	StopThreshold float64 `yaml:"stop_threshold"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Acceleration:      0.005,
		Braking:           0.05,
		HardBraking:       0.1,
		MaxSpeed:          0.5,
		MoveFactor:        4,
		TurnRateDeg:       2,
		MaxSteerVisualDeg: 15,
		SteerVisualSpeed:  3,
		SteerVisualDecay:  0.85,
		MaxFuel:           100,
		FuelDrainRate:     5,
		FuelRegenRate:     25,
		StopThreshold:     0.01,
	}
}

// Validate reports every out-of-range constant at once.
func (t Tuning) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidTuning, name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidTuning, name, v))
		}
	}

	positive("acceleration", t.Acceleration)
	positive("braking", t.Braking)
	positive("max_speed", t.MaxSpeed)
	positive("move_factor", t.MoveFactor)
	nonNegative("turn_rate_deg", t.TurnRateDeg)
	nonNegative("hard_braking", t.HardBraking)
	nonNegative("max_steer_visual_deg", t.MaxSteerVisualDeg)
	nonNegative("steer_visual_speed", t.SteerVisualSpeed)
	positive("max_fuel", t.MaxFuel)
	nonNegative("fuel_drain_rate", t.FuelDrainRate)
	nonNegative("fuel_regen_rate", t.FuelRegenRate)
	nonNegative("stop_threshold", t.StopThreshold)
	if t.SteerVisualDecay < 0 || t.SteerVisualDecay >= 1 {
		errs = append(errs, fmt.Errorf("%w: steer_visual_decay must be in [0,1), got %v", ErrInvalidTuning, t.SteerVisualDecay))
	}
	if t.HardBraking > 0 && t.HardBraking < t.Braking {
		errs = append(errs, fmt.Errorf("%w: hard_braking (%v) below braking (%v)", ErrInvalidTuning, t.HardBraking, t.Braking))
	}
	return errors.Join(errs...)
}

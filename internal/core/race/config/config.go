// Package config loads race definitions: the circuit layout, the grid and
// every tunable constant of a race.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/circuit/internal/core/race/pursuit"
	"github.com/zeusync/circuit/internal/core/race/track"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
	"github.com/zeusync/circuit/internal/core/systems/physics"
	"github.com/zeusync/circuit/internal/core/systems/physics/arcade"
)

var (
	ErrNoActors         = errors.New("race has no actors")
	ErrInvalidLapTarget = errors.New("lap target must be positive")
	ErrInvalidGeometry  = errors.New("invalid geometry")
)

// Point is a position or a size in world pixels.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Vec() physics.Vec2 { return physics.V(p.X, p.Y) }

// Box is a rectangle given by its center and its full size.
type Box struct {
	Center Point `yaml:"center"`
	Size   Point `yaml:"size"`
}

func (b Box) Rect() physics.Rect { return physics.RectFromSize(b.Center.Vec(), b.Size.Vec()) }

// Spawn is a starting grid slot.
type Spawn struct {
	Position Point `yaml:"position"`
	// HeadingDeg is the initial heading, 0 pointing along +X.
	HeadingDeg float64 `yaml:"heading_deg"`
}

func (s Spawn) Heading() float64 { return physics.NormalizeAngle(s.HeadingDeg * math.Pi / 180) }

// Definition is a complete race: track, grid and tunables.
type Definition struct {
	Name        string        `yaml:"name"`
	LapTarget   int           `yaml:"lap_target"`
	SettleDelay time.Duration `yaml:"settle_delay"`

	Checkpoints []Box `yaml:"checkpoints"`
	RefuelZones []Box `yaml:"refuel_zones"`
	CarSize     Point `yaml:"car_size"`

	// Player is optional; a nil player makes an AI-only race.
	Player *Spawn  `yaml:"player"`
	AI     []Spawn `yaml:"ai"`

	Tuning  vehicle.Tuning `yaml:"tuning"`
	Pursuit pursuit.Config `yaml:"pursuit"`
	Physics arcade.Config  `yaml:"physics"`
}

// Default is the stock circuit: three checkpoints, one player and one AI car
// side by side at the screen center.
func Default() Definition {
	checkpoint := Point{X: 80, Y: 40}
	return Definition{
		Name:        "montmelo",
		LapTarget:   3,
		SettleDelay: 3 * time.Second,
		Checkpoints: []Box{
			{Center: Point{X: 300, Y: 300}, Size: checkpoint},
			{Center: Point{X: 800, Y: 300}, Size: checkpoint},
			{Center: Point{X: 800, Y: 600}, Size: checkpoint},
		},
		RefuelZones: []Box{
			{Center: Point{X: 640, Y: 360}, Size: Point{X: 40, Y: 720}},
		},
		CarSize: Point{X: 90, Y: 40},
		Player:  &Spawn{Position: Point{X: 640, Y: 360}},
		AI:      []Spawn{{Position: Point{X: 760, Y: 360}}},
		Tuning:  vehicle.DefaultTuning(),
		Pursuit: pursuit.DefaultConfig(),
		Physics: arcade.DefaultConfig(),
	}
}

// LoadYAML decodes a definition on top of Default, so a file only needs the
// fields it changes. The result is validated.
func LoadYAML(r io.Reader) (Definition, error) {
	def := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return Definition{}, fmt.Errorf("decode race definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func LoadFile(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("open race definition: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadYAML(f)
}

// Actors is the number of cars on the grid.
func (d Definition) Actors() int {
	n := len(d.AI)
	if d.Player != nil {
		n++
	}
	return n
}

// Track builds the checkpoint layout.
func (d Definition) Track() (*track.Track, error) {
	areas := make([]physics.Rect, len(d.Checkpoints))
	for i, b := range d.Checkpoints {
		areas[i] = b.Rect()
	}
	return track.New(areas...)
}

// Validate reports every problem at once, joined.
func (d Definition) Validate() error {
	var errs []error
	if len(d.Checkpoints) == 0 {
		errs = append(errs, track.ErrEmptyTrack)
	}
	if d.Actors() == 0 {
		errs = append(errs, ErrNoActors)
	}
	if d.LapTarget <= 0 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidLapTarget, d.LapTarget))
	}
	if d.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: settle_delay must not be negative", ErrInvalidGeometry))
	}
	if d.CarSize.X <= 0 || d.CarSize.Y <= 0 {
		errs = append(errs, fmt.Errorf("%w: car_size must be positive", ErrInvalidGeometry))
	}
	for i, b := range d.Checkpoints {
		if b.Size.X <= 0 || b.Size.Y <= 0 {
			errs = append(errs, fmt.Errorf("%w: checkpoint %d has empty size", ErrInvalidGeometry, i))
		}
	}
	for i, b := range d.RefuelZones {
		if b.Size.X <= 0 || b.Size.Y <= 0 {
			errs = append(errs, fmt.Errorf("%w: refuel zone %d has empty size", ErrInvalidGeometry, i))
		}
	}
	if d.Physics.VelocityScale <= 0 {
		errs = append(errs, fmt.Errorf("%w: physics.velocity_scale must be positive", ErrInvalidGeometry))
	}
	if err := d.Tuning.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c := d.Pursuit.ErraticChance; c < 0 || c > 1 {
		errs = append(errs, fmt.Errorf("%w: pursuit.erratic_chance must be in [0,1], got %v", vehicle.ErrInvalidTuning, c))
	}
	if d.Pursuit.DeadZone < 0 {
		errs = append(errs, fmt.Errorf("%w: pursuit.dead_zone must not be negative", vehicle.ErrInvalidTuning))
	}
	if d.Pursuit.SteerMagnitude <= 0 {
		errs = append(errs, fmt.Errorf("%w: pursuit.steer_magnitude must be positive", vehicle.ErrInvalidTuning))
	}
	return errors.Join(errs...)
}

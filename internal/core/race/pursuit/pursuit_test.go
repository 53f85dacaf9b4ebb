package pursuit

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/circuit/internal/core/race/track"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
	"github.com/zeusync/circuit/internal/core/systems/physics"
)

func testTrack(t *testing.T) *track.Track {
	t.Helper()
	tr, err := track.New(
		physics.RectFromSize(physics.V(100, 0), physics.V(10, 10)),
		physics.RectFromSize(physics.V(0, 100), physics.V(10, 10)),
		physics.RectFromSize(physics.V(-100, 0), physics.V(10, 10)),
	)
	require.NoError(t, err)
	return tr
}

func calm() Config {
	cfg := DefaultConfig()
	cfg.ErraticChance = 0
	return cfg
}

func TestSteerTowardTarget(t *testing.T) {
	p := NewPilot(calm(), testTrack(t), nil)

	ahead := p.Control(vehicle.Situation{Heading: 0, NextCheckpoint: 0})
	assert.Equal(t, vehicle.Control{Throttle: 1}, ahead)

	left := p.Control(vehicle.Situation{Heading: 0, NextCheckpoint: 1})
	assert.Equal(t, 0.6, left.Steering, "target at +90° steers positive")

	right := p.Control(vehicle.Situation{Heading: math.Pi / 2, NextCheckpoint: 0})
	assert.Equal(t, -0.6, right.Steering)
}

func TestDeadZone(t *testing.T) {
	target := physics.V(100, 0)
	assert.Zero(t, Steer(physics.V(0, 0), 0.079, target, 0.08, 0.6))
	assert.Zero(t, Steer(physics.V(0, 0), -0.079, target, 0.08, 0.6))
	assert.Equal(t, -0.6, Steer(physics.V(0, 0), 0.081, target, 0.08, 0.6))
	assert.Equal(t, 0.6, Steer(physics.V(0, 0), -0.081, target, 0.08, 0.6))
}

func TestTargetBehindEngagesFullLock(t *testing.T) {
	p := NewPilot(calm(), testTrack(t), nil)
	// zone 2 sits at (-100, 0): exactly behind a car facing +x
	out := p.Control(vehicle.Situation{Position: physics.V(0, 0), Heading: 0, NextCheckpoint: 2})
	assert.Equal(t, 0.6, math.Abs(out.Steering))

	out = p.Control(vehicle.Situation{Position: physics.V(0, 0), Heading: 1e-9, NextCheckpoint: 2})
	assert.Equal(t, 0.6, math.Abs(out.Steering))
}

func TestHeadingErrorRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 5000; i++ {
		pos := physics.V(rng.Float64()*200-100, rng.Float64()*200-100)
		target := physics.V(rng.Float64()*200-100, rng.Float64()*200-100)
		heading := rng.Float64()*20 - 10
		d := HeadingError(pos, heading, target)
		require.Greater(t, d, -math.Pi)
		require.LessOrEqual(t, d, math.Pi)
	}
}

func TestMissingTargetGoesStraight(t *testing.T) {
	p := NewPilot(DefaultConfig(), nil, nil)
	assert.Equal(t, vehicle.Control{Throttle: 1}, p.Control(vehicle.Situation{NextCheckpoint: 3}))
}

func TestOutOfRangeIndexGoesStraight(t *testing.T) {
	p := NewPilot(calm(), testTrack(t), nil)
	for _, next := range []int{99, -4, 3} {
		got := p.Control(vehicle.Situation{Heading: math.Pi / 2, NextCheckpoint: next})
		assert.Equal(t, vehicle.Control{Throttle: 1}, got, "next checkpoint %d", next)
	}

	// in range still steers
	got := p.Control(vehicle.Situation{Heading: math.Pi / 2, NextCheckpoint: 0})
	assert.NotZero(t, got.Steering)
}

func TestErraticBrakeIsDiscreteAndSeeded(t *testing.T) {
	tr := testTrack(t)
	run := func(seed uint64) []float64 {
		p := NewPilot(DefaultConfig(), tr, rand.New(rand.NewPCG(seed, seed)))
		out := make([]float64, 10_000)
		for i := range out {
			out[i] = p.Control(vehicle.Situation{NextCheckpoint: 0}).Throttle
		}
		return out
	}

	a := run(42)
	assert.Equal(t, a, run(42), "same seed, same decisions")

	brakes := 0
	for _, th := range a {
		require.True(t, th == 1 || th == -1, "throttle is either full or erratic, got %v", th)
		if th == -1 {
			brakes++
		}
	}
	// 1% of 10k frames
	assert.InDelta(t, 100, brakes, 50)
}

func TestAlwaysErratic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ErraticChance = 1
	cfg.ErraticThrottle = -0.8
	p := NewPilot(cfg, testTrack(t), rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, -0.8, p.Control(vehicle.Situation{}).Throttle)
}

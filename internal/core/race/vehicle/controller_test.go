package vehicle

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/circuit/internal/core/systems/physics"
	"github.com/zeusync/circuit/internal/core/systems/physics/arcade"
)

const frame = 1.0 / 60

func player(t Tuning) State {
	return State{Fuel: t.MaxFuel, AIIndex: -1}
}

func TestThrottleAcceleratesAndClamps(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	st := player(tun)

	c.Step(&st, Control{Throttle: 1}, Frame{Dt: frame})
	assert.InDelta(t, tun.Acceleration, st.Speed, 1e-12)

	for i := 0; i < 1000; i++ {
		c.Step(&st, Control{Throttle: 1}, Frame{Dt: frame})
	}
	assert.Equal(t, tun.MaxSpeed, st.Speed)

	for i := 0; i < 1000; i++ {
		c.Step(&st, Control{Throttle: -1}, Frame{Dt: frame})
	}
	assert.Equal(t, -tun.MaxSpeed, st.Speed)
}

func TestCoastingDecaysWithoutOvershoot(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)

	st := State{AIControlled: true, Speed: 0.12}
	c.Step(&st, Coast, Frame{Dt: frame})
	assert.InDelta(t, 0.07, st.Speed, 1e-12)
	c.Step(&st, Coast, Frame{Dt: frame})
	c.Step(&st, Coast, Frame{Dt: frame})
	assert.Zero(t, st.Speed)

	st.Speed = -0.03
	c.Step(&st, Coast, Frame{Dt: frame})
	assert.Zero(t, st.Speed)
}

func TestHardBrakeOverridesThrottle(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	st := State{AIControlled: true, Speed: 0.4}

	c.Step(&st, Control{Throttle: 1, HardBrake: true}, Frame{Dt: frame})
	assert.InDelta(t, 0.4-tun.HardBraking, st.Speed, 1e-12)
}

func TestSpeedStaysBoundedForAnyInput(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	rng := rand.New(rand.NewPCG(1, 2))
	st := player(tun)

	for i := 0; i < 20_000; i++ {
		in := Control{
			Throttle:  rng.Float64()*4 - 2,
			Steering:  rng.Float64()*4 - 2,
			HardBrake: rng.IntN(10) == 0,
		}
		c.Step(&st, in, Frame{Dt: frame, InRefuelZone: rng.IntN(3) == 0})
		require.LessOrEqual(t, math.Abs(st.Speed), tun.MaxSpeed)
		require.GreaterOrEqual(t, st.Fuel, 0.0)
		require.LessOrEqual(t, st.Fuel, tun.MaxFuel)
		require.LessOrEqual(t, math.Abs(st.SteeringVisual), tun.MaxSteerVisualDeg)
	}
}

func TestFuelDrainsWithTime(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	st := player(tun)

	prev := st.Fuel
	for i := 0; i < 10; i++ {
		c.Step(&st, Control{Throttle: 1}, Frame{Dt: frame})
		require.Less(t, st.Fuel, prev)
		prev = st.Fuel
	}
	assert.InDelta(t, tun.MaxFuel-10*tun.FuelDrainRate*frame, st.Fuel, 1e-9)

	// the same wall time in fewer, longer frames drains the same amount
	st2 := player(tun)
	c.Step(&st2, Control{Throttle: 1}, Frame{Dt: 10 * frame})
	assert.InDelta(t, st.Fuel, st2.Fuel, 1e-9)
}

func TestEmptyTankCannotAccelerate(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	st := State{Speed: 0.3, Fuel: 0, AIIndex: -1}

	prev := st.Speed
	for i := 0; i < 20; i++ {
		c.Step(&st, Control{Throttle: 1}, Frame{Dt: frame})
		require.LessOrEqual(t, st.Speed, prev)
		prev = st.Speed
	}
	assert.Zero(t, st.Speed)
	assert.Zero(t, st.Fuel)
}

func TestAINeverUsesFuel(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	st := State{AIControlled: true}

	for i := 0; i < 50; i++ {
		c.Step(&st, Control{Throttle: 1}, Frame{Dt: frame})
	}
	assert.Zero(t, st.Fuel)
	assert.InDelta(t, 50*tun.Acceleration, st.Speed, 1e-9)
}

func TestRefuelOnlyWhenStoppedInZone(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)

	st := State{Fuel: 10, AIIndex: -1}
	c.Step(&st, Coast, Frame{Dt: 1, InRefuelZone: true})
	assert.InDelta(t, 10+tun.FuelRegenRate, st.Fuel, 1e-9)

	st = State{Fuel: 10, AIIndex: -1}
	c.Step(&st, Coast, Frame{Dt: 1})
	assert.Equal(t, 10.0, st.Fuel, "outside the zone")

	st = State{Fuel: 10, Speed: 0.3, AIIndex: -1}
	c.Step(&st, Coast, Frame{Dt: 1, InRefuelZone: true})
	assert.Equal(t, 10.0, st.Fuel, "still rolling")

	st = State{Fuel: 0, AIIndex: -1}
	c.Step(&st, Control{Throttle: 1}, Frame{Dt: 1, InRefuelZone: true})
	assert.Zero(t, st.Fuel, "throttle requested")

	st = State{Fuel: tun.MaxFuel - 1, AIIndex: -1}
	c.Step(&st, Coast, Frame{Dt: 10, InRefuelZone: true})
	assert.Equal(t, tun.MaxFuel, st.Fuel)
}

func TestTurningScalesWithSpeed(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)

	parked := State{AIControlled: true}
	c.Step(&parked, Control{Steering: 1}, Frame{Dt: frame})
	assert.Zero(t, parked.Heading, "a stationary car cannot turn")

	moving := State{AIControlled: true, Speed: 0.5}
	c.Step(&moving, Control{Throttle: 1, Steering: -1}, Frame{Dt: frame})
	assert.InDelta(t, -tun.TurnRateDeg*degToRad*0.5, moving.Heading, 1e-12)
}

func TestSteeringVisualIsCosmetic(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)

	a := State{AIControlled: true, Speed: 0.3}
	b := a
	b.SteeringVisual = 12

	ma := c.Step(&a, Control{Throttle: 1}, Frame{Dt: frame})
	mb := c.Step(&b, Control{Throttle: 1}, Frame{Dt: frame})
	assert.Equal(t, ma, mb)
	assert.InDelta(t, 12*tun.SteerVisualDecay, b.SteeringVisual, 1e-12)

	c.Step(&a, Control{Steering: 1}, Frame{Dt: frame})
	assert.Equal(t, tun.SteerVisualSpeed, a.SteeringVisual)
}

func TestMotionFollowsHeading(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	st := State{AIControlled: true, Heading: math.Pi / 2, Speed: 0.2 - tun.Acceleration}

	m := c.Step(&st, Control{Throttle: 1}, Frame{Dt: frame})
	assert.InDelta(t, math.Pi/2, m.Rotation, 1e-12)
	assert.InDelta(t, 0, m.Velocity.X, 1e-9)
	assert.InDelta(t, 0.2*tun.MoveFactor, m.Velocity.Y, 1e-9)
}

func TestDriveWritesBody(t *testing.T) {
	tun := DefaultTuning()
	c := NewController(tun)
	w := arcade.New(arcade.Config{VelocityScale: 1})
	body := w.CreateDynamicBody(physics.V(10, 20), physics.V(90, 40))

	v := NewAI(body, 0.3, 0, nil)
	v.State.Speed = 0.5
	c.Drive(w, &v, Control{Throttle: 1}, Frame{Dt: frame})

	pos, rot := w.Transform(body)
	assert.Equal(t, physics.V(10, 20), pos)
	assert.InDelta(t, 0.3, rot, 1e-12)
	assert.InDelta(t, 0.5*tun.MoveFactor, w.Velocity(body).Len(), 1e-9)
}

func TestNaNInputIsIgnored(t *testing.T) {
	c := NewController(DefaultTuning())
	st := State{AIControlled: true, Speed: 0.2}
	c.Step(&st, Control{Throttle: math.NaN(), Steering: math.NaN()}, Frame{Dt: frame})
	assert.False(t, math.IsNaN(st.Heading))
	assert.False(t, math.IsNaN(st.Speed))
}

func TestTuningValidate(t *testing.T) {
	require.NoError(t, DefaultTuning().Validate())

	bad := DefaultTuning()
	bad.MaxSpeed = 0
	bad.SteerVisualDecay = 1.5
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTuning)
	assert.Contains(t, err.Error(), "max_speed")
	assert.Contains(t, err.Error(), "steer_visual_decay")
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/circuit/internal/core/race/track"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
	"github.com/zeusync/circuit/internal/core/systems/physics"
)

func TestDefaultIsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	assert.Equal(t, 2, d.Actors())

	tr, err := d.Track()
	require.NoError(t, err)
	require.Equal(t, 3, tr.Len())
	z, _ := tr.Zone(1)
	assert.Equal(t, physics.V(800, 300), z.Area.Center)
	assert.Equal(t, physics.V(40, 20), z.Area.Half)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	src := `
name: oval
lap_target: 5
settle_delay: 1500ms
checkpoints:
  - center: {x: 100, y: 100}
    size: {x: 50, y: 50}
  - center: {x: 400, y: 100}
    size: {x: 50, y: 50}
player: null
ai:
  - position: {x: 10, y: 10}
    heading_deg: 90
  - position: {x: 10, y: 60}
tuning:
  max_speed: 0.8
pursuit:
  erratic_chance: 0
`
	d, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "oval", d.Name)
	assert.Equal(t, 5, d.LapTarget)
	assert.Equal(t, 1500*time.Millisecond, d.SettleDelay)
	assert.Len(t, d.Checkpoints, 2)
	assert.Nil(t, d.Player)
	assert.Equal(t, 2, d.Actors())
	assert.InDelta(t, 1.5707963, d.AI[0].Heading(), 1e-6)

	// untouched fields keep their defaults
	assert.Equal(t, 0.8, d.Tuning.MaxSpeed)
	assert.Equal(t, vehicle.DefaultTuning().Acceleration, d.Tuning.Acceleration)
	assert.Zero(t, d.Pursuit.ErraticChance)
	assert.Equal(t, 0.6, d.Pursuit.SteerMagnitude)
	assert.Equal(t, 50.0, d.Physics.VelocityScale)
}

func TestLoadYAMLEmptyIsDefault(t *testing.T) {
	d, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), d)
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("laps: 3\n"))
	assert.Error(t, err)
}

func TestValidateJoinsErrors(t *testing.T) {
	d := Default()
	d.Checkpoints = nil
	d.Player = nil
	d.AI = nil
	d.LapTarget = 0
	d.Tuning.MaxSpeed = -1

	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, track.ErrEmptyTrack)
	assert.ErrorIs(t, err, ErrNoActors)
	assert.ErrorIs(t, err, ErrInvalidLapTarget)
	assert.ErrorIs(t, err, vehicle.ErrInvalidTuning)
	assert.Contains(t, err.Error(), "max_speed")

	_, err = LoadYAML(strings.NewReader("lap_target: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidLapTarget)
}

func TestValidateGeometry(t *testing.T) {
	d := Default()
	d.CarSize = Point{}
	d.RefuelZones = []Box{{Center: Point{X: 1, Y: 1}}}
	err := d.Validate()
	assert.ErrorIs(t, err, ErrInvalidGeometry)
	assert.Contains(t, err.Error(), "refuel zone 0")
}

func TestValidatePursuit(t *testing.T) {
	for _, mag := range []float64{0, -0.5} {
		d := Default()
		d.Pursuit.SteerMagnitude = mag
		err := d.Validate()
		assert.ErrorIs(t, err, vehicle.ErrInvalidTuning)
		assert.Contains(t, err.Error(), "pursuit.steer_magnitude")
	}

	d := Default()
	d.Pursuit.DeadZone = -1
	assert.ErrorContains(t, d.Validate(), "pursuit.dead_zone")

	_, err := LoadYAML(strings.NewReader("pursuit:\n  steer_magnitude: 0\n"))
	assert.ErrorIs(t, err, vehicle.ErrInvalidTuning)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lap_target: 1\n"), 0o600))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, d.LapTarget)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSampleRaceFileLoads(t *testing.T) {
	d, err := LoadFile(filepath.Join("..", "..", "..", "..", "configs", "montmelo.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Checkpoints, d.Checkpoints)
}

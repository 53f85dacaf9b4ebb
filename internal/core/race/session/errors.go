package session

import (
	"errors"

	"github.com/zeusync/circuit/internal/core/race/config"
	"github.com/zeusync/circuit/internal/core/race/track"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
)

var (
	// ErrSessionOver is returned by Loop.Tick once the settle delay after the
	// finish has elapsed. The loop should be torn down or restarted.
	ErrSessionOver = errors.New("session over")

	ErrEmptyTrack       = track.ErrEmptyTrack
	ErrNoActors         = config.ErrNoActors
	ErrInvalidLapTarget = config.ErrInvalidLapTarget
	ErrInvalidTuning    = vehicle.ErrInvalidTuning
)

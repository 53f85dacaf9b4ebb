package session

import (
	"time"

	"github.com/zeusync/circuit/internal/core/race/progress"
)

// Event types published on the session bus.
const (
	EventCheckpointPassed = "race.checkpoint_passed"
	EventLapCompleted     = "race.lap_completed"
	EventFinished         = "race.finished"
)

// CheckpointPassed is the payload of EventCheckpointPassed. It is also sent
// for the checkpoint that closes a lap, before the EventLapCompleted.
type CheckpointPassed struct {
	Session  string
	Actor    progress.ActorID
	Zone     int
	Progress progress.RaceProgress
}

// LapCompleted is the payload of EventLapCompleted.
type LapCompleted struct {
	Session string
	Actor   progress.ActorID
	Player  bool
	Lap     int
	LapTime time.Duration
	BestLap time.Duration
}

// RaceFinished is the payload of EventFinished.
type RaceFinished struct {
	Session   string
	Race      string
	Winner    progress.ActorID
	PlayerWon bool
	Elapsed   time.Duration
	Standings []Standing
}

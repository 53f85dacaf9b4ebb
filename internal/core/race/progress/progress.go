// Package progress implements the per-actor checkpoint and lap state machine.
package progress

import (
	"errors"
	"time"

	"github.com/zeusync/circuit/internal/core/clock"
	"github.com/zeusync/circuit/internal/core/observability/log"
	"github.com/zeusync/circuit/internal/core/race/track"
)

var (
	ErrNoTrack      = errors.New("tracker requires a track")
	ErrNoActors     = errors.New("tracker requires at least one actor")
	ErrUnknownActor = errors.New("unknown actor")
)

// ActorID indexes an actor in a session. The player is conventionally 0.
type ActorID int

// RaceProgress is one actor's position in the race.
type RaceProgress struct {
	Actor          ActorID
	NextCheckpoint int
	Laps           int
	// CheckpointsPassed counts every accepted checkpoint over the race.
	CheckpointsPassed int

	LapStartedAt time.Time
	// LastLap and BestLap are zero until the first lap completes.
	LastLap time.Duration
	BestLap time.Duration
}

// CurrentLap is the running time of the lap in progress.
func (p RaceProgress) CurrentLap(now time.Time) time.Duration {
	if p.LapStartedAt.IsZero() || now.Before(p.LapStartedAt) {
		return 0
	}
	return now.Sub(p.LapStartedAt)
}

type Outcome uint8

const (
	// Ignored means the zone was not the expected one.
	Ignored Outcome = iota
	Advanced
	LapCompleted
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case LapCompleted:
		return "lap_completed"
	default:
		return "ignored"
	}
}

// Result describes what a single checkpoint hit did.
type Result struct {
	Outcome  Outcome
	Zone     int
	Progress RaceProgress
}

// Tracker owns every actor's RaceProgress. It is single-threaded like the tick
// that drives it.
type Tracker struct {
	track   *track.Track
	records []RaceProgress
	clock   clock.Clock
	logger  log.Log
}

// NewTracker starts every actor at checkpoint 0 with its lap clock running.
func NewTracker(tr *track.Track, actors int, clk clock.Clock, logger log.Log) (*Tracker, error) {
	if tr == nil {
		return nil, ErrNoTrack
	}
	if tr.Len() == 0 {
		return nil, track.ErrEmptyTrack
	}
	if actors <= 0 {
		return nil, ErrNoActors
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = log.Nop()
	}

	now := clk.Now()
	records := make([]RaceProgress, actors)
	for i := range records {
		records[i] = RaceProgress{Actor: ActorID(i), LapStartedAt: now}
	}
	return &Tracker{track: tr, records: records, clock: clk, logger: logger}, nil
}

func (t *Tracker) Len() int { return len(t.records) }

// Progress returns a copy of the actor's record.
func (t *Tracker) Progress(id ActorID) (RaceProgress, bool) {
	if id < 0 || int(id) >= len(t.records) {
		return RaceProgress{}, false
	}
	p := t.records[id]
	return p, true
}

// All returns copies of every record ordered by actor id.
func (t *Tracker) All() []RaceProgress {
	out := make([]RaceProgress, len(t.records))
	copy(out, t.records)
	return out
}

// Hit applies a collision between the actor's car and zone. Only the expected
// zone advances progress; every other zone, including ones already passed
// this lap, is ignored.
func (t *Tracker) Hit(id ActorID, zone int) (Result, error) {
	if id < 0 || int(id) >= len(t.records) {
		return Result{}, ErrUnknownActor
	}
	p := &t.records[id]

	if p.NextCheckpoint < 0 || p.NextCheckpoint >= t.track.Len() {
		t.logger.Warn("next checkpoint out of range, resetting",
			log.Int("actor", int(id)),
			log.Int("next_checkpoint", p.NextCheckpoint),
			log.Int("zones", t.track.Len()),
		)
		p.NextCheckpoint = 0
	}

	if zone != p.NextCheckpoint {
		return Result{Outcome: Ignored, Zone: zone, Progress: *p}, nil
	}

	p.NextCheckpoint = t.track.Next(zone)
	p.CheckpointsPassed++
	if p.NextCheckpoint != 0 {
		return Result{Outcome: Advanced, Zone: zone, Progress: *p}, nil
	}

	now := t.clock.Now()
	p.Laps++
	p.LastLap = now.Sub(p.LapStartedAt)
	if p.BestLap == 0 || p.LastLap < p.BestLap {
		p.BestLap = p.LastLap
	}
	p.LapStartedAt = now

	return Result{Outcome: LapCompleted, Zone: zone, Progress: *p}, nil
}

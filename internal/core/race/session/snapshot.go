package session

import (
	"time"

	"github.com/zeusync/circuit/internal/core/race/progress"
	"github.com/zeusync/circuit/internal/core/systems/physics"
)

// Wheel is the front wheel sprite to draw.
type Wheel uint8

const (
	WheelCenter Wheel = iota
	WheelLeft
	WheelRight
)

// wheelThreshold is the steering input beyond which the wheels turn.
const wheelThreshold = 0.1

// ActorView is the read-only presentation state of one car.
type ActorView struct {
	ID     progress.ActorID
	Name   string
	Player bool
	Rank   int

	Position       physics.Vec2
	Heading        float64
	Speed          float64
	SteeringVisual float64
	Wheel          Wheel

	Laps              int
	NextCheckpoint    int
	CheckpointsPassed int
	// FuelPercent is in [0, 100]; HasFuel is false for AI cars.
	FuelPercent float64
	HasFuel     bool

	CurrentLap time.Duration
	LastLap    time.Duration
	BestLap    time.Duration
}

// Snapshot is everything a HUD needs for one frame.
type Snapshot struct {
	Session     string
	Race        string
	Tick        uint64
	State       State
	LapTarget   int
	Checkpoints int
	Elapsed     time.Duration

	Winner    progress.ActorID
	HasWinner bool
	PlayerWon bool

	// Actors is in actor id order; Standings holds the race order.
	Actors    []ActorView
	Standings []Standing
}

func (s *Session) Snapshot() Snapshot {
	now := s.clock.Now()
	standings := s.Standings()
	rank := make(map[progress.ActorID]int, len(standings))
	for _, st := range standings {
		rank[st.Actor] = st.Rank
	}

	views := make([]ActorView, len(s.actors))
	for i, a := range s.actors {
		p, _ := s.tracker.Progress(a.ID)
		pos, _ := s.world.Transform(a.Vehicle.Body)
		st := a.Vehicle.State

		current := p.CurrentLap(now)
		if s.state == Finished {
			current = p.CurrentLap(s.finishedAt)
		}
		v := ActorView{
			ID:                a.ID,
			Name:              a.Name,
			Player:            a.Player(),
			Rank:              rank[a.ID],
			Position:          pos,
			Heading:           st.Heading,
			Speed:             st.Speed,
			SteeringVisual:    st.SteeringVisual,
			Wheel:             wheel(s.controls[i].Steering),
			Laps:              p.Laps,
			NextCheckpoint:    p.NextCheckpoint,
			CheckpointsPassed: p.CheckpointsPassed,
			CurrentLap:        current,
			LastLap:           p.LastLap,
			BestLap:           p.BestLap,
		}
		if a.Player() {
			v.HasFuel = true
			v.FuelPercent = st.FuelRatio(s.def.Tuning) * 100
		}
		views[i] = v
	}

	winner, done := s.Winner()
	return Snapshot{
		Session:     s.id,
		Race:        s.def.Name,
		Tick:        s.ticks,
		State:       s.state,
		LapTarget:   s.def.LapTarget,
		Checkpoints: s.track.Len(),
		Elapsed:     s.Elapsed(),
		Winner:      winner,
		HasWinner:   done,
		PlayerWon:   s.PlayerWon(),
		Actors:      views,
		Standings:   standings,
	}
}

func wheel(steering float64) Wheel {
	switch {
	case steering < -wheelThreshold:
		return WheelLeft
	case steering > wheelThreshold:
		return WheelRight
	default:
		return WheelCenter
	}
}

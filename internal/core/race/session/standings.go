package session

import (
	"time"

	"github.com/zeusync/circuit/internal/core/race/progress"
	"github.com/zeusync/circuit/internal/core/systems/physics"
	"github.com/zeusync/circuit/pkg/sequence"
)

// Standing is one actor's place in the race order.
type Standing struct {
	Rank              int
	Actor             progress.ActorID
	Name              string
	Player            bool
	Laps              int
	NextCheckpoint    int
	CheckpointsPassed int
	// Distance is from the car to the center of its next checkpoint.
	Distance float64
	BestLap  time.Duration
}

// ahead orders by laps, then checkpoint within the lap, then distance to the
// next checkpoint. Equal actors keep id order.
func ahead(a, b Standing) bool {
	if a.Laps != b.Laps {
		return a.Laps > b.Laps
	}
	if a.NextCheckpoint != b.NextCheckpoint {
		return a.NextCheckpoint > b.NextCheckpoint
	}
	return a.Distance < b.Distance
}

// Standings ranks every actor, leader first, ranks starting at 1.
func (s *Session) Standings() []Standing {
	rows := make([]Standing, 0, len(s.actors))
	for _, a := range s.actors {
		p, _ := s.tracker.Progress(a.ID)
		pos, _ := s.world.Transform(a.Vehicle.Body)
		var dist float64
		if z, ok := s.track.Zone(p.NextCheckpoint); ok {
			dist = physics.Distance2(pos, z.Area.Center)
		}
		rows = append(rows, Standing{
			Actor:             a.ID,
			Name:              a.Name,
			Player:            a.Player(),
			Laps:              p.Laps,
			NextCheckpoint:    p.NextCheckpoint,
			CheckpointsPassed: p.CheckpointsPassed,
			Distance:          dist,
			BestLap:           p.BestLap,
		})
	}

	ranked := sequence.From(rows).Sort(ahead).Collect()
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

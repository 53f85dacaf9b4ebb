package runner

import (
	"time"

	"github.com/zeusync/circuit/pkg/sequence"
)

// Summary aggregates a batch of outcomes.
type Summary struct {
	Races      int
	Finished   int
	Abandoned  int
	PlayerWins int
	// Wins counts finished races per winner name.
	Wins       map[string]int
	FastestLap time.Duration
	FastestBy  string
}

func Summarize(outcomes []Outcome) Summary {
	all := sequence.From(outcomes)
	finished := all.Filter(func(o Outcome) bool { return o.Finished })

	s := Summary{
		Races:      len(outcomes),
		Finished:   finished.Count(),
		PlayerWins: finished.Filter(func(o Outcome) bool { return o.PlayerWon }).Count(),
		Wins:       make(map[string]int),
	}
	s.Abandoned = s.Races - s.Finished
	for name, won := range sequence.GroupBy(finished, func(o Outcome) string { return o.Winner }) {
		s.Wins[name] = len(won)
	}

	for _, o := range outcomes {
		for _, lap := range o.Laps {
			if s.FastestLap == 0 || lap.LapTime < s.FastestLap {
				s.FastestLap = lap.LapTime
				s.FastestBy = o.ActorName(int(lap.Actor))
			}
		}
	}
	return s
}

// Package track holds the checkpoint layout of a circuit.
package track

import (
	"errors"

	"github.com/zeusync/circuit/internal/core/systems/physics"
)

var ErrEmptyTrack = errors.New("track has no checkpoints")

// Zone is one rectangular checkpoint. Its index is its position in the track.
type Zone struct {
	Index int
	Area  physics.Rect
}

// Track is an ordered, cyclic and immutable list of zones. The successor of
// the last zone is zone 0; re-entering zone 0 from the last zone is a lap.
type Track struct {
	zones []Zone
}

// New copies areas into a Track, assigning indices in order.
func New(areas ...physics.Rect) (*Track, error) {
	if len(areas) == 0 {
		return nil, ErrEmptyTrack
	}
	zones := make([]Zone, len(areas))
	for i, a := range areas {
		zones[i] = Zone{Index: i, Area: a}
	}
	return &Track{zones: zones}, nil
}

func (t *Track) Len() int { return len(t.zones) }

// Zone returns the zone at i, or false when i is out of range.
func (t *Track) Zone(i int) (Zone, bool) {
	if i < 0 || i >= len(t.zones) {
		return Zone{}, false
	}
	return t.zones[i], true
}

// Next is the index that follows i on the lap.
func (t *Track) Next(i int) int {
	return (i + 1) % len(t.zones)
}

// Zones returns a copy of the layout.
func (t *Track) Zones() []Zone {
	out := make([]Zone, len(t.zones))
	copy(out, t.zones)
	return out
}

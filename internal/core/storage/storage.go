// Package storage defines how finished races are persisted.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidResult = errors.New("invalid race result")

// RaceResult is one finished race.
type RaceResult struct {
	ID         uint   `gorm:"primaryKey"`
	Session    string `gorm:"size:36;uniqueIndex"`
	Race       string `gorm:"size:64;index"`
	Seed       int64
	Winner     string `gorm:"size:32"`
	PlayerWon  bool
	LapTarget  int
	Ticks      int64
	Elapsed    time.Duration
	FinishedAt time.Time
	Laps       []LapRecord `gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE"`
}

// LapRecord is one completed lap of one actor.
type LapRecord struct {
	ID       uint   `gorm:"primaryKey"`
	ResultID uint   `gorm:"index"`
	Race     string `gorm:"size:64;index:idx_race_duration,priority:1"`
	Session  string `gorm:"size:36"`
	Actor    string `gorm:"size:32"`
	Player   bool
	Lap      int
	Duration time.Duration `gorm:"index:idx_race_duration,priority:2"`
}

// WinCount is a row of the wins leaderboard.
type WinCount struct {
	Winner string
	Wins   int64
}

// ResultStore persists race results. Implementations are safe for
// concurrent use.
type ResultStore interface {
	Save(ctx context.Context, r *RaceResult) error
	// BestLaps returns the fastest laps of race, fastest first.
	BestLaps(ctx context.Context, race string, limit int) ([]LapRecord, error)
	// Wins counts wins per actor name for race, most wins first.
	Wins(ctx context.Context, race string) ([]WinCount, error)
	// Results loads every stored race of race with its laps, oldest first.
	Results(ctx context.Context, race string) ([]RaceResult, error)
	Close() error
}

// Validate checks the fields every store relies on.
func (r *RaceResult) Validate() error {
	if r == nil {
		return ErrInvalidResult
	}
	var errs []error
	if r.Session == "" {
		errs = append(errs, errors.New("session is required"))
	}
	if r.Race == "" {
		errs = append(errs, errors.New("race is required"))
	}
	if r.Winner == "" {
		errs = append(errs, errors.New("winner is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return errors.Join(ErrInvalidResult, err)
	}
	return nil
}

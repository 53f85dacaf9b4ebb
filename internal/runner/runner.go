// Package runner plays batches of headless races. Every race gets its own
// manual clock, event bus and seed, so races are independent and may run in
// parallel.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/circuit/internal/core/clock"
	"github.com/zeusync/circuit/internal/core/events/bus"
	"github.com/zeusync/circuit/internal/core/observability/log"
	"github.com/zeusync/circuit/internal/core/observability/metrics"
	"github.com/zeusync/circuit/internal/core/race/config"
	"github.com/zeusync/circuit/internal/core/race/session"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
	"github.com/zeusync/circuit/internal/core/storage"
	"github.com/zeusync/circuit/pkg/concurrent"
	"github.com/zeusync/circuit/pkg/sequence"
)

var ErrInvalidConfig = errors.New("invalid runner config")

// Epoch is the simulated wall time at which every race starts.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type Config struct {
	Definition   config.Definition
	Sessions     int
	Workers      int
	Seed         uint64
	TickInterval time.Duration
	MaxTicks     int
	Autopilot    bool
	// Player builds a fresh player source for each race and takes
	// precedence over Autopilot.
	Player func() (vehicle.ControlSource, error)
}

func (c Config) validate() error {
	var errs []error
	if err := c.Definition.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Sessions < 1 {
		errs = append(errs, fmt.Errorf("sessions must be at least 1, got %d", c.Sessions))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	if c.MaxTicks < 1 {
		errs = append(errs, fmt.Errorf("max ticks must be at least 1, got %d", c.MaxTicks))
	}
	if err := errors.Join(errs...); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}

// Outcome is what one race left behind. Finished is false when the race
// hit the tick limit first.
type Outcome struct {
	Session   string
	Seed      uint64
	Ticks     uint64
	Finished  bool
	Winner    string
	PlayerWon bool
	Elapsed   time.Duration
	Laps      []session.LapCompleted
	Standings []session.Standing
	names     []string
}

// ActorName resolves an actor id of this race.
func (o Outcome) ActorName(id int) string {
	if id < 0 || id >= len(o.names) {
		return ""
	}
	return o.names[id]
}

type Runner struct {
	cfg      Config
	logger   log.Log
	recorder *metrics.Recorder
	store    storage.ResultStore
	now      func() time.Time
}

// New checks cfg. The recorder and the store are optional.
func New(cfg Config, logger log.Log, recorder *metrics.Recorder, store storage.ResultStore) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Runner{cfg: cfg, logger: logger, recorder: recorder, store: store, now: time.Now}, nil
}

// Run plays cfg.Sessions races with seeds Seed, Seed+1, ... Outcomes are in
// seed order. The first failing race cancels the others.
func (r *Runner) Run(ctx context.Context) ([]Outcome, error) {
	outcomes := make([]Outcome, r.cfg.Sessions)
	err := concurrent.Concurrent(ctx, sequence.Range(0, r.cfg.Sessions), r.cfg.Workers, func(ctx context.Context, i int) error {
		o, err := r.RunOne(ctx, r.cfg.Seed+uint64(i))
		outcomes[i] = o
		return err
	})
	return outcomes, err
}

// RunOne plays a single race until it is over or the tick limit is hit.
// Cancellation is checked between ticks.
func (r *Runner) RunOne(ctx context.Context, seed uint64) (Outcome, error) {
	clk := clock.NewManual(Epoch)
	b := bus.New()
	if r.recorder != nil {
		b.AddObserver(r.recorder)
	}

	out := Outcome{Seed: seed}
	if _, err := b.Subscribe(session.EventLapCompleted, func(e bus.Event) error {
		if lap, ok := e.Data().(session.LapCompleted); ok {
			out.Laps = append(out.Laps, lap)
		}
		return nil
	}); err != nil {
		return out, fmt.Errorf("subscribe laps: %w", err)
	}

	var player vehicle.ControlSource
	if r.cfg.Player != nil {
		var err error
		if player, err = r.cfg.Player(); err != nil {
			return out, fmt.Errorf("player input: %w", err)
		}
	}

	loop, err := session.NewLoop(r.cfg.Definition, session.Options{
		Seed:      seed,
		Clock:     clk,
		Logger:    r.logger,
		Bus:       b,
		Player:    player,
		Autopilot: r.cfg.Autopilot,
	})
	if err != nil {
		return out, err
	}
	s := loop.Session()
	out.Session = s.ID()
	ctx = log.ContextWithSession(ctx, out.Session)
	logger := r.logger.WithContext(ctx)

	dt := r.cfg.TickInterval.Seconds()
	for ticks := 0; ticks < r.cfg.MaxTicks && !loop.Done(); ticks++ {
		if err = ctx.Err(); err != nil {
			break
		}
		clk.Advance(r.cfg.TickInterval)
		if err = loop.Tick(dt); err != nil {
			break
		}
	}

	out.Ticks = s.Ticks()
	out.Elapsed = s.Elapsed()
	out.Standings = s.Standings()
	out.names = sequence.ToArray(sequence.From(s.Actors()), func(a session.Actor) string { return a.Name })
	if r.recorder != nil {
		r.recorder.Ticks(ctx, r.cfg.Definition.Name, int64(out.Ticks))
	}
	if err != nil {
		return out, err
	}

	winner, finished := s.Winner()
	if !finished {
		logger.Warn("race abandoned",
			log.Uint64("ticks", out.Ticks),
			log.Int("max_ticks", r.cfg.MaxTicks),
		)
		return out, nil
	}
	out.Finished = true
	out.Winner = out.ActorName(int(winner))
	out.PlayerWon = s.PlayerWon()

	if r.store != nil {
		if err = r.store.Save(ctx, r.result(out)); err != nil {
			logger.Error("saving result failed", log.Error(err))
			return out, err
		}
	}
	return out, nil
}

func (r *Runner) result(o Outcome) *storage.RaceResult {
	res := &storage.RaceResult{
		Session:    o.Session,
		Race:       r.cfg.Definition.Name,
		Seed:       int64(o.Seed),
		Winner:     o.Winner,
		PlayerWon:  o.PlayerWon,
		LapTarget:  r.cfg.Definition.LapTarget,
		Ticks:      int64(o.Ticks),
		Elapsed:    o.Elapsed,
		FinishedAt: r.now().UTC(),
	}
	for _, lap := range o.Laps {
		res.Laps = append(res.Laps, storage.LapRecord{
			Actor:    o.ActorName(int(lap.Actor)),
			Player:   lap.Player,
			Lap:      lap.Lap,
			Duration: lap.LapTime,
		})
	}
	return res
}

// Package session runs races: it owns the track, the cars, their progress
// records and the win condition, and steps them through a phased tick.
package session

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/circuit/internal/core/clock"
	"github.com/zeusync/circuit/internal/core/events/bus"
	"github.com/zeusync/circuit/internal/core/input"
	"github.com/zeusync/circuit/internal/core/observability/log"
	"github.com/zeusync/circuit/internal/core/race/config"
	"github.com/zeusync/circuit/internal/core/race/progress"
	"github.com/zeusync/circuit/internal/core/race/pursuit"
	"github.com/zeusync/circuit/internal/core/race/track"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
	"github.com/zeusync/circuit/internal/core/systems/physics"
	"github.com/zeusync/circuit/internal/core/systems/physics/arcade"
)

// State is the race phase. There is no pause.
type State uint8

const (
	Running State = iota
	Finished
)

func (s State) String() string {
	if s == Finished {
		return "finished"
	}
	return "running"
}

// Options configures the collaborators of a session. Every field is optional.
type Options struct {
	// ID names the session in logs and events; a fresh UUID when empty.
	ID string
	// Seed drives every AI random source of the race.
	Seed   uint64
	Clock  clock.Clock
	Logger log.Log
	Bus    bus.EventBus

	// Player drives the player car. When nil the car coasts, unless
	// Autopilot is set.
	Player    vehicle.ControlSource
	Autopilot bool

	// NewWorld builds the physics collaborator. Defaults to the arcade world.
	NewWorld func(config.Definition) physics.World
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.System{}
	}
	if o.Logger == nil {
		o.Logger = log.Nop()
	}
	if o.Bus == nil {
		o.Bus = bus.New()
	}
	if o.NewWorld == nil {
		o.NewWorld = func(def config.Definition) physics.World { return arcade.New(def.Physics) }
	}
	return o
}

// Actor is one car on the grid.
type Actor struct {
	ID      progress.ActorID
	Name    string
	Vehicle vehicle.Vehicle
}

func (a Actor) Player() bool { return !a.Vehicle.State.AIControlled }

// Session is a single race from the grid to the finish. It is not safe for
// concurrent use; one goroutine drives it through a Loop.
type Session struct {
	id  string
	def config.Definition

	world      physics.World
	track      *track.Track
	refuel     []physics.Rect
	controller *vehicle.Controller
	tracker    *progress.Tracker

	actors     []Actor
	actorBody  map[physics.BodyID]progress.ActorID
	zoneBody   map[physics.BodyID]int
	controls   []vehicle.Control
	inRefuel   []bool
	ticks      uint64
	startedAt  time.Time
	finishedAt time.Time
	state      State
	winner     progress.ActorID

	clock  clock.Clock
	logger log.Log
	bus    bus.EventBus
}

// New validates def and places every car and checkpoint in a fresh world.
func New(def config.Definition, opts Options) (*Session, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	opts = opts.withDefaults()

	tr, err := def.Track()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	s := &Session{
		id:         id,
		def:        def,
		world:      opts.NewWorld(def),
		track:      tr,
		controller: vehicle.NewController(def.Tuning),
		actorBody:  make(map[physics.BodyID]progress.ActorID),
		zoneBody:   make(map[physics.BodyID]int),
		clock:      opts.Clock,
		logger:     opts.Logger.With(log.String("session", id), log.String("race", def.Name)),
		bus:        opts.Bus,
	}
	for _, b := range def.RefuelZones {
		s.refuel = append(s.refuel, b.Rect())
	}

	// Cars are created before the sensors so their bodies sort first.
	carSize := def.CarSize.Vec()
	if def.Player != nil {
		body := s.spawn(*def.Player, carSize)
		src := opts.Player
		if src == nil && opts.Autopilot {
			cfg := def.Pursuit
			cfg.ErraticChance = 0
			src = input.NewAutopilot(pursuit.NewPilot(cfg, tr, nil))
		}
		if src == nil {
			src = vehicle.ControlFunc(func(vehicle.Situation) vehicle.Control { return vehicle.Coast })
		}
		s.addActor("player", vehicle.NewPlayer(body, def.Player.Heading(), def.Tuning, src))
	}
	for i, sp := range def.AI {
		body := s.spawn(sp, carSize)
		pilot := pursuit.NewPilot(def.Pursuit, tr, aiRand(opts.Seed, i))
		s.addActor(fmt.Sprintf("ai-%d", i+1), vehicle.NewAI(body, sp.Heading(), i, pilot))
	}
	for _, z := range tr.Zones() {
		body := s.world.CreateSensor(z.Area.Center, z.Area.Half.Scale(2))
		s.zoneBody[body] = z.Index
	}

	s.tracker, err = progress.NewTracker(tr, len(s.actors), s.clock, s.logger)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s.controls = make([]vehicle.Control, len(s.actors))
	s.inRefuel = make([]bool, len(s.actors))
	s.startedAt = s.clock.Now()

	s.logger.Info("race started",
		log.Int("actors", len(s.actors)),
		log.Int("checkpoints", tr.Len()),
		log.Int("lap_target", def.LapTarget),
		log.Uint64("seed", opts.Seed),
	)
	return s, nil
}

func (s *Session) spawn(sp config.Spawn, size physics.Vec2) physics.BodyID {
	pos := sp.Position.Vec()
	body := s.world.CreateDynamicBody(pos, size)
	s.world.SetTransform(body, pos, sp.Heading())
	return body
}

func (s *Session) addActor(name string, v vehicle.Vehicle) {
	id := progress.ActorID(len(s.actors))
	s.actors = append(s.actors, Actor{ID: id, Name: name, Vehicle: v})
	s.actorBody[v.Body] = id
}

// aiRand gives AI i its own generator, derived from the session seed so that
// adding a car does not change the decisions of the others.
func aiRand(seed uint64, i int) *rand.Rand {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(i))
	h := xxhash.Sum64(buf[:])
	return rand.New(rand.NewPCG(h, h^0x9e3779b97f4a7c15))
}

func (s *Session) ID() string                    { return s.id }
func (s *Session) Definition() config.Definition { return s.def }
func (s *Session) World() physics.World          { return s.world }
func (s *Session) Track() *track.Track           { return s.track }
func (s *Session) State() State                  { return s.state }
func (s *Session) Ticks() uint64                 { return s.ticks }
func (s *Session) Progress(id progress.ActorID) (progress.RaceProgress, bool) {
	return s.tracker.Progress(id)
}

// Actors returns copies of the cars in actor id order.
func (s *Session) Actors() []Actor {
	out := make([]Actor, len(s.actors))
	copy(out, s.actors)
	return out
}

// Winner is the first actor to reach the lap target.
func (s *Session) Winner() (progress.ActorID, bool) {
	return s.winner, s.state == Finished
}

func (s *Session) PlayerWon() bool {
	return s.state == Finished && s.actors[s.winner].Player()
}

// Elapsed is the race time so far, frozen at the finish.
func (s *Session) Elapsed() time.Duration {
	if s.state == Finished {
		return s.finishedAt.Sub(s.startedAt)
	}
	return s.clock.Now().Sub(s.startedAt)
}

// SettleElapsed reports whether the post-finish delay has run out.
func (s *Session) SettleElapsed() bool {
	return s.state == Finished && s.clock.Now().Sub(s.finishedAt) >= s.def.SettleDelay
}

func (s *Session) situation(i int) vehicle.Situation {
	a := &s.actors[i]
	pos, _ := s.world.Transform(a.Vehicle.Body)
	p, _ := s.tracker.Progress(a.ID)
	st := a.Vehicle.State

	fuel := 1.0
	if !st.AIControlled {
		fuel = st.FuelRatio(s.def.Tuning)
	}
	return vehicle.Situation{
		Position:       pos,
		Heading:        st.Heading,
		Speed:          st.Speed,
		NextCheckpoint: p.NextCheckpoint,
		FuelRatio:      fuel,
		InRefuelZone:   s.inRefuelZone(pos),
	}
}

func (s *Session) inRefuelZone(p physics.Vec2) bool {
	for _, r := range s.refuel {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// gatherInput asks every control source for this tick's input. Once the race
// is over the cars coast and sources are no longer consulted.
func (s *Session) gatherInput() {
	for i := range s.actors {
		sit := s.situation(i)
		s.inRefuel[i] = sit.InRefuelZone
		if s.state == Finished {
			s.controls[i] = vehicle.Coast
			continue
		}
		s.controls[i] = s.actors[i].Vehicle.Source.Control(sit)
	}
}

func (s *Session) applyMotion(dt float64) {
	for i := range s.actors {
		s.controller.Drive(s.world, &s.actors[i].Vehicle, s.controls[i], vehicle.Frame{
			Dt:           dt,
			InRefuelZone: s.inRefuel[i],
		})
	}
}

// resolve maps a collision pair to the car and checkpoint involved, in
// either order.
func (s *Session) resolve(a, b physics.BodyID) (progress.ActorID, int, bool) {
	if actor, ok := s.actorBody[a]; ok {
		if zone, ok := s.zoneBody[b]; ok {
			return actor, zone, true
		}
	}
	if actor, ok := s.actorBody[b]; ok {
		if zone, ok := s.zoneBody[a]; ok {
			return actor, zone, true
		}
	}
	return 0, 0, false
}

// contact applies one queued collision. Nothing changes after the finish.
func (s *Session) contact(a, b physics.BodyID) {
	if s.state == Finished {
		return
	}
	actor, zone, ok := s.resolve(a, b)
	if !ok {
		return
	}
	res, err := s.tracker.Hit(actor, zone)
	if err != nil {
		s.logger.Warn("checkpoint hit rejected", log.Int("actor", int(actor)), log.Error(err))
		return
	}
	if res.Outcome == progress.Ignored {
		return
	}

	now := s.clock.Now()
	s.publish(bus.NewEvent(EventCheckpointPassed, s.id, now, CheckpointPassed{
		Session:  s.id,
		Actor:    actor,
		Zone:     zone,
		Progress: res.Progress,
	}))
	if res.Outcome != progress.LapCompleted {
		return
	}

	a0 := s.actors[actor]
	s.logger.Info("lap completed",
		log.String("actor", a0.Name),
		log.Int("lap", res.Progress.Laps),
		log.Duration("lap_time", res.Progress.LastLap),
		log.Duration("best_lap", res.Progress.BestLap),
	)
	s.publish(bus.NewEvent(EventLapCompleted, s.id, now, LapCompleted{
		Session: s.id,
		Actor:   actor,
		Player:  a0.Player(),
		Lap:     res.Progress.Laps,
		LapTime: res.Progress.LastLap,
		BestLap: res.Progress.BestLap,
	}))

	if res.Progress.Laps >= s.def.LapTarget {
		s.finish(actor, now)
	}
}

func (s *Session) finish(winner progress.ActorID, now time.Time) {
	s.state = Finished
	s.winner = winner
	s.finishedAt = now

	standings := s.Standings()
	s.logger.Info("race finished",
		log.String("winner", s.actors[winner].Name),
		log.Bool("player_won", s.PlayerWon()),
		log.Duration("elapsed", s.Elapsed()),
		log.Uint64("ticks", s.ticks),
	)
	s.publish(bus.NewEvent(EventFinished, s.id, now, RaceFinished{
		Session:   s.id,
		Race:      s.def.Name,
		Winner:    winner,
		PlayerWon: s.PlayerWon(),
		Elapsed:   s.Elapsed(),
		Standings: standings,
	}))
}

func (s *Session) publish(e bus.Event) {
	if err := s.bus.Publish(e); err != nil {
		s.logger.Warn("event handler failed", log.String("event", e.Type()), log.Error(err))
	}
}

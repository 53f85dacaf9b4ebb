// Package arcade is a small kinematic implementation of physics.World. Bodies
// move by their linear velocity, never collide physically and only report
// begin-contact pairs, which is all the race core consumes.
package arcade

import "github.com/zeusync/circuit/internal/core/systems/physics"

var _ physics.World = (*World)(nil)

type body struct {
	id       physics.BodyID
	kind     physics.BodyKind
	pos      physics.Vec2
	half     physics.Vec2
	rotation float64
	vel      physics.Vec2
}

func (b *body) obb() physics.OBB {
	return physics.OBB{Center: b.pos, Half: b.half, Rotation: b.rotation}
}

type pairKey struct{ a, b physics.BodyID }

func makePair(a, b physics.BodyID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Config tunes the integrator.
type Config struct {
	// VelocityScale converts velocity units into world units per second, the
	// way a meters-based engine renders into pixels.
	VelocityScale float64 `yaml:"velocity_scale"`
}

func DefaultConfig() Config {
	return Config{VelocityScale: 50}
}

// World is not safe for concurrent use; one session drives one World.
type World struct {
	cfg      Config
	bodies   []*body
	touching map[pairKey]struct{}
	handlers []physics.CollisionHandler
}

func New(cfg Config) *World {
	if cfg.VelocityScale <= 0 {
		cfg.VelocityScale = 1
	}
	return &World{cfg: cfg, touching: make(map[pairKey]struct{})}
}

func (w *World) add(kind physics.BodyKind, pos, size physics.Vec2) physics.BodyID {
	id := physics.BodyID(len(w.bodies) + 1)
	w.bodies = append(w.bodies, &body{id: id, kind: kind, pos: pos, half: size.Scale(0.5)})
	return id
}

func (w *World) CreateDynamicBody(pos, size physics.Vec2) physics.BodyID {
	return w.add(physics.KindDynamic, pos, size)
}

func (w *World) CreateSensor(pos, size physics.Vec2) physics.BodyID {
	return w.add(physics.KindSensor, pos, size)
}

func (w *World) get(id physics.BodyID) *body {
	if id == 0 || int(id) > len(w.bodies) {
		return nil
	}
	return w.bodies[id-1]
}

func (w *World) Transform(id physics.BodyID) (physics.Vec2, float64) {
	b := w.get(id)
	if b == nil {
		return physics.Vec2{}, 0
	}
	return b.pos, b.rotation
}

func (w *World) SetTransform(id physics.BodyID, pos physics.Vec2, rotation float64) {
	if b := w.get(id); b != nil && b.kind == physics.KindDynamic {
		b.pos, b.rotation = pos, rotation
	}
}

func (w *World) SetLinearVelocity(id physics.BodyID, v physics.Vec2) {
	if b := w.get(id); b != nil && b.kind == physics.KindDynamic {
		b.vel = v
	}
}

// Velocity returns the last velocity written for id.
func (w *World) Velocity(id physics.BodyID) physics.Vec2 {
	if b := w.get(id); b != nil {
		return b.vel
	}
	return physics.Vec2{}
}

func (w *World) OnCollisionBegin(h physics.CollisionHandler) {
	if h != nil {
		w.handlers = append(w.handlers, h)
	}
}

// Step moves every dynamic body and then emits begin pairs in ascending id
// order, so runs are reproducible.
func (w *World) Step(dt float64) {
	for _, b := range w.bodies {
		if b.kind == physics.KindDynamic {
			b.pos = b.pos.Add(b.vel.Scale(dt * w.cfg.VelocityScale))
		}
	}

	now := make(map[pairKey]struct{}, len(w.touching))
	var begun []pairKey
	for i, a := range w.bodies {
		for _, b := range w.bodies[i+1:] {
			if a.kind == physics.KindSensor && b.kind == physics.KindSensor {
				continue
			}
			if !a.obb().Overlaps(b.obb()) {
				continue
			}
			key := makePair(a.id, b.id)
			now[key] = struct{}{}
			if _, was := w.touching[key]; !was {
				begun = append(begun, key)
			}
		}
	}
	w.touching = now

	for _, p := range begun {
		for _, h := range w.handlers {
			h(p.a, p.b)
		}
	}
}

package physics

// BodyID identifies a body inside a World. Zero is never a valid id.
type BodyID uint32

// BodyKind separates simulated cars from trigger zones.
type BodyKind uint8

const (
	KindDynamic BodyKind = iota + 1
	KindSensor
)

// CollisionHandler receives collision-begin pairs. Implementations must not
// write body state from inside the callback.
type CollisionHandler func(a, b BodyID)

// World is the rigid-body collaborator the race core drives. Positions are in
// world units, rotations in radians.
type World interface {
	// CreateDynamicBody adds a movable rectangle centered at pos.
	CreateDynamicBody(pos, size Vec2) BodyID
	// CreateSensor adds a static trigger rectangle centered at pos.
	CreateSensor(pos, size Vec2) BodyID

	Transform(id BodyID) (pos Vec2, rotation float64)
	SetTransform(id BodyID, pos Vec2, rotation float64)
	SetLinearVelocity(id BodyID, v Vec2)

	// Step integrates dt seconds and reports every pair that started touching
	// during the step.
	Step(dt float64)
	OnCollisionBegin(h CollisionHandler)
}

package physics

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct{ X, Y float64 }

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }

// FromAngle returns the unit vector for a heading in radians.
func FromAngle(rad float64) Vec2 { return Vec2{math.Cos(rad), math.Sin(rad)} }

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Bearing is the angle of the vector from a to b.
func Bearing(a, b Vec2) float64 { return math.Atan2(b.Y-a.Y, b.X-a.X) }

// NormalizeAngle folds rad into (-π, π].
func NormalizeAngle(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad <= -math.Pi {
		rad += 2 * math.Pi
	} else if rad > math.Pi {
		rad -= 2 * math.Pi
	}
	return rad
}

// Rect is an axis-aligned rectangle given by its center and half extents.
type Rect struct {
	Center Vec2
	Half   Vec2
}

// RectFromSize builds a Rect from a center and a full width/height.
func RectFromSize(center, size Vec2) Rect {
	return Rect{Center: center, Half: size.Scale(0.5)}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return math.Abs(p.X-r.Center.X) <= r.Half.X && math.Abs(p.Y-r.Center.Y) <= r.Half.Y
}

// OBB is a rectangle rotated around its center.
type OBB struct {
	Center   Vec2
	Half     Vec2
	Rotation float64
}

func (o OBB) axes() (Vec2, Vec2) {
	u := FromAngle(o.Rotation)
	return u, Vec2{-u.Y, u.X}
}

// projectRadius is the half length of o's shadow on axis.
func (o OBB) projectRadius(axis Vec2) float64 {
	u, w := o.axes()
	return o.Half.X*math.Abs(u.Dot(axis)) + o.Half.Y*math.Abs(w.Dot(axis))
}

// Overlaps tests two oriented boxes with the separating axis theorem.
func (o OBB) Overlaps(other OBB) bool {
	u1, w1 := o.axes()
	u2, w2 := other.axes()
	d := other.Center.Sub(o.Center)
	for _, axis := range [4]Vec2{u1, w1, u2, w2} {
		if math.Abs(d.Dot(axis)) > o.projectRadius(axis)+other.projectRadius(axis) {
			return false
		}
	}
	return true
}

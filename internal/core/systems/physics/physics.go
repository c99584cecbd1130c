package physics

import "math"

// Vec3 is a 3D vector in arena units (uu). Z is up.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Common directions.
var (
	Zero = Vec3{}
	Up   = Vec3{Z: 1}
)

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3        { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3        { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3   { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64     { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) LengthSquared() float64 { return v.Dot(v) }
func (v Vec3) Length() float64        { return math.Sqrt(v.LengthSquared()) }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Dist returns the Euclidean distance between two points.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Length() }

// DistSquared avoids the square root when only comparisons are needed.
func (v Vec3) DistSquared(o Vec3) float64 { return v.Sub(o).LengthSquared() }

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flatten drops the vertical component.
func (v Vec3) Flatten() Vec3 { return Vec3{X: v.X, Y: v.Y} }

func (v Vec3) WithZ(z float64) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: z} }

// Angle returns the unsigned angle between two vectors in radians, in [0, π].
// A zero-length operand yields 0.
func (v Vec3) Angle(o Vec3) float64 {
	d := v.Length() * o.Length()
	if d == 0 {
		return 0
	}
	return math.Acos(Clamp(v.Dot(o)/d, -1, 1))
}

// Rotate90 rotates the flattened vector a quarter turn counter-clockwise around Z.
func (v Vec3) Rotate90() Vec3 { return Vec3{X: -v.Y, Y: v.X} }

// ProjToLineSegment returns the point on segment [a, b] closest to v.
func (v Vec3) ProjToLineSegment(a, b Vec3) Vec3 {
	ab := b.Sub(a)
	lenSq := ab.LengthSquared()
	if lenSq == 0 {
		return a
	}
	t := Clamp(v.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Scale(t))
}

// IsFinite reports whether every component is a finite number.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Lerp interpolates from a (t=0) to b (t=1).
func Lerp(t float64, a, b Vec3) Vec3 { return a.Add(b.Sub(a).Scale(t)) }

// LerpF interpolates scalars.
func LerpF(t, a, b float64) float64 { return a + (b-a)*t }

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

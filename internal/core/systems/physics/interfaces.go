package physics

import "math"

// Orientation is an orthonormal frame describing where a body points.
// Only Forward is required by the planners; Right and Up are carried for
// controllers that need them.
type Orientation struct {
	Forward Vec3 `json:"forward" yaml:"forward"`
	Right   Vec3 `json:"right" yaml:"right"`
	Up      Vec3 `json:"up" yaml:"up"`
}

// FromEuler builds a frame from pitch, yaw and roll in radians.
func FromEuler(pitch, yaw, roll float64) Orientation {
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cr, sr := math.Cos(roll), math.Sin(roll)
	return Orientation{
		Forward: Vec3{X: cp * cy, Y: cp * sy, Z: sp},
		Right:   Vec3{X: cy*sp*sr - cr*sy, Y: sy*sp*sr + cr*cy, Z: -cp * sr},
		Up:      Vec3{X: -cr*cy*sp - sr*sy, Y: -cr*sy*sp + sr*cy, Z: cp * cr},
	}
}

// Facing returns a level frame whose forward axis points along dir.
func Facing(dir Vec3) Orientation {
	f := dir.Flatten().Normalize()
	if f == (Vec3{}) {
		f = Vec3{X: 1}
	}
	return FromEuler(0, math.Atan2(f.Y, f.X), 0)
}

// Local expresses a world-space vector in this frame.
func (o Orientation) Local(v Vec3) Vec3 {
	return Vec3{X: o.Forward.Dot(v), Y: o.Right.Dot(v), Z: o.Up.Dot(v)}
}

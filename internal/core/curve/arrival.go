package curve

import (
	"math"

	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

// DefaultArrivalLimit bounds how far ArrivalMidpoint may place its point.
const DefaultArrivalLimit = 1700.0

// ArrivalMidpoint returns the point on the line through to along dir that is
// equally far from from and to, measured on the ground plane. Steering at it
// every tick traces a circular arc that arrives at to heading along dir. The
// offset along dir is clamped to ±limit.
func ArrivalMidpoint(from, to, dir physics.Vec3, limit float64) physics.Vec3 {
	d := dir.Flatten().Normalize()
	delta := to.Sub(from).Flatten()
	num := delta.LengthSquared()
	den := 2 * delta.Dot(d)

	var t float64
	switch {
	case num == 0:
		t = 0
	case den == 0:
		t = -limit
	default:
		t = physics.Clamp(-num/den, -limit, limit)
	}
	if math.IsNaN(t) {
		t = 0
	}
	return to.Add(d.Scale(t))
}

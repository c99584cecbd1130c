// Package curve builds smooth followable paths through waypoints. The curve
// blends a Catmull-Rom basis, which passes through its control points, with
// a uniform B-spline basis, which does not but never ripples.
package curve

import (
	"errors"
	"math"

	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

// ErrTooFewPoints is returned when a curve is built from fewer than two points.
var ErrTooFewPoints = errors.New("curve: at least two control points are required")

const (
	// DefaultSamples is the chord count Length uses when asked for zero.
	DefaultSamples = 32

	inverseIterations = 12
	inverseShrink     = 0.6
	catmullRomShare   = 0.5
)

// Curve is a blended cubic through an ordered list of control points. The
// first control point is where following starts. A Curve caches its length
// and last inverse lookup, so it belongs to a single follower.
type Curve struct {
	points []physics.Vec3
	knots  []physics.Vec3

	length        float64
	lengthSamples int
	lastParam     float64
}

// New builds a curve through points.
func New(points []physics.Vec3) (*Curve, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	c := &Curve{points: append([]physics.Vec3(nil), points...)}
	c.knots = make([]physics.Vec3, 0, len(points)+2)
	c.knots = append(c.knots, points[0])
	c.knots = append(c.knots, points...)
	c.knots = append(c.knots, points[len(points)-1])
	return c, nil
}

// ControlPoints returns a copy of the control points.
func (c *Curve) ControlPoints() []physics.Vec3 {
	return append([]physics.Vec3(nil), c.points...)
}

// Segments is the number of cubic pieces.
func (c *Curve) Segments() int { return len(c.points) - 1 }

// End returns the last control point.
func (c *Curve) End() physics.Vec3 { return c.points[len(c.points)-1] }

// Eval maps t in [0, 1] to a point. t is clamped; Eval(0) and Eval(1) are
// exactly the first and last control points.
func (c *Curve) Eval(t float64) physics.Vec3 {
	if !(t > 0) {
		return c.knots[0]
	}
	if t >= 1 {
		return c.knots[len(c.knots)-1]
	}
	s := float64(c.Segments())
	seg := int(t * s)
	if seg >= c.Segments() {
		seg = c.Segments() - 1
	}
	return c.evalSegment(seg, t*s-float64(seg))
}

func (c *Curve) evalSegment(seg int, u float64) physics.Vec3 {
	u2 := u * u
	u3 := u2 * u

	// Catmull-Rom
	r0 := 0.5 * (-u + 2*u2 - u3)
	r1 := 0.5 * (2 - 5*u2 + 3*u3)
	r2 := 0.5 * (u + 4*u2 - 3*u3)
	r3 := 0.5 * (-u2 + u3)

	// uniform B-spline
	b0 := (1 - 3*u + 3*u2 - u3) / 6
	b1 := (4 - 6*u2 + 3*u3) / 6
	b2 := (1 + 3*u + 3*u2 - 3*u3) / 6
	b3 := u3 / 6

	const k = catmullRomShare
	w0 := k*r0 + (1-k)*b0
	w1 := k*r1 + (1-k)*b1
	w2 := k*r2 + (1-k)*b2
	w3 := k*r3 + (1-k)*b3

	p := c.knots[seg : seg+4]
	return p[0].Scale(w0).Add(p[1].Scale(w1)).Add(p[2].Scale(w2)).Add(p[3].Scale(w3))
}

// Length approximates arc length by summing samples uniform chords. The
// result is cached and only recomputed when more samples are requested.
func (c *Curve) Length(samples int) float64 {
	if samples <= 0 {
		samples = DefaultSamples
	}
	if samples <= c.lengthSamples {
		return c.length
	}
	sum := 0.0
	prev := c.Eval(0)
	for i := 1; i <= samples; i++ {
		next := c.Eval(float64(i) / float64(samples))
		sum += prev.Dist(next)
		prev = next
	}
	c.length, c.lengthSamples = sum, samples
	return sum
}

// LinearLength is the length of the control polygon.
func (c *Curve) LinearLength() float64 {
	sum := 0.0
	for i := 1; i < len(c.points); i++ {
		sum += c.points[i-1].Dist(c.points[i])
	}
	return sum
}

// ParamAtDistance converts an arc distance from the start into a curve
// parameter, assuming uniform speed along the curve.
func (c *Curve) ParamAtDistance(dist float64) float64 {
	l := c.Length(DefaultSamples)
	if l <= 0 {
		return 1
	}
	return physics.Clamp(dist/l, 0, 1)
}

// InverseEval returns the parameter of the curve point nearest p, assuming
// p lies close to the curve. The nearest control point brackets the answer
// to one segment either side; a fixed number of chord projections then
// narrow the bracket. There is no convergence test.
func (c *Curve) InverseEval(p physics.Vec3) float64 {
	s := float64(c.Segments())
	t := 0.0
	best := c.points[0].Dist(p)
	for i := 1; i < len(c.points); i++ {
		if d := c.points[i].Dist(p); d < best {
			best = d
			t = float64(i) / s
		}
	}

	low := math.Max(t-1/s, 0)
	high := math.Min(t+1/s, 1)
	for range inverseIterations {
		a, b := c.Eval(low), c.Eval(high)
		chord := b.Sub(a)
		frac := 0.0
		if l2 := chord.LengthSquared(); l2 > 0 {
			frac = physics.Clamp(p.Sub(a).Dot(chord)/l2, 0, 1)
		}
		mid := physics.LerpF(frac, low, high)
		low = physics.LerpF(inverseShrink, low, mid)
		high = physics.LerpF(inverseShrink, mid, high)
	}
	c.lastParam = (low + high) / 2
	return c.lastParam
}

// LastParam returns the result of the most recent InverseEval.
func (c *Curve) LastParam() float64 { return c.lastParam }

// Sample returns n+1 evenly spaced points along the curve.
func (c *Curve) Sample(n int) []physics.Vec3 {
	if n < 1 {
		n = 1
	}
	out := make([]physics.Vec3, n+1)
	for i := range out {
		out[i] = c.Eval(float64(i) / float64(n))
	}
	return out
}

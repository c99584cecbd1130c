package prediction

import (
	"math"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

const (
	// BallRadius is the resting height of the ball's centre above the floor.
	BallRadius = 92.75
	// Gravity is the default vertical acceleration in uu/s².
	Gravity = -650.0

	// rollThreshold is the impact speed below which the ball stops bouncing.
	rollThreshold = 60.0
)

// Stationary builds a trajectory holding the ball still at pos from now until
// now+horizon. It is the fallback when no prediction arrived this tick.
func Stationary(pos physics.Vec3, now, horizon, rate float64) *Trajectory {
	if rate <= 0 {
		rate = DefaultRate
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	n := int(horizon*rate) + 1
	slices := make([]Slice, n)
	for i := range slices {
		slices[i] = Slice{Time: now + float64(i)/rate, Position: pos}
	}
	return &Trajectory{rate: rate, slices: slices, arena: field.StandardArena()}
}

// BallisticOptions tunes Ballistic.
type BallisticOptions struct {
	Rate        float64
	Horizon     float64
	Gravity     float64
	Restitution float64 // fraction of normal speed kept on a bounce
	Friction    float64 // fraction of tangential speed kept on a floor bounce
	Arena       field.Arena
}

// DefaultBallisticOptions mirrors the stock predictor's sampling.
func DefaultBallisticOptions() BallisticOptions {
	return BallisticOptions{
		Rate:        DefaultRate,
		Horizon:     DefaultHorizon,
		Gravity:     Gravity,
		Restitution: 0.6,
		Friction:    0.9,
		Arena:       field.StandardArena(),
	}
}

// Ballistic integrates a simple gravity-and-bounce model. It stands in for
// the external predictor in tools and tests; it does not model spin, drag,
// curved walls or the goal mouths.
func Ballistic(pos, vel physics.Vec3, now float64, opts BallisticOptions) *Trajectory {
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.Horizon <= 0 {
		opts.Horizon = DefaultHorizon
	}
	dt := 1 / opts.Rate
	n := int(opts.Horizon*opts.Rate) + 1
	halfW := opts.Arena.Width/2 - BallRadius
	ceiling := opts.Arena.Height - BallRadius

	slices := make([]Slice, n)
	for i := range slices {
		slices[i] = Slice{Time: now + float64(i)*dt, Position: pos, Velocity: vel}

		vel.Z += opts.Gravity * dt
		pos = pos.Add(vel.Scale(dt))

		if pos.Z < BallRadius {
			pos.Z = BallRadius
			switch {
			case vel.Z > -rollThreshold:
				// Settled: roll along the floor.
				vel.Z = 0
			default:
				vel.Z = -vel.Z * opts.Restitution
				vel.X *= opts.Friction
				vel.Y *= opts.Friction
			}
		}
		if opts.Arena.Height > 0 && pos.Z > ceiling {
			pos.Z = ceiling
			vel.Z = -math.Abs(vel.Z) * opts.Restitution
		}
		if opts.Arena.Width > 0 && math.Abs(pos.X) > halfW {
			pos.X = math.Copysign(halfW, pos.X)
			vel.X = -vel.X * opts.Restitution
		}
	}
	return &Trajectory{rate: opts.Rate, slices: slices, arena: opts.Arena}
}

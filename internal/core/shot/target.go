package shot

import (
	"fmt"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/prediction"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
	"github.com/zeusync/strikeplan/internal/core/world"
)

// AimTarget is an opening to strike the ball through, given by its two
// corners as seen by the shooter.
type AimTarget struct {
	Left  physics.Vec3 `json:"left" yaml:"left"`
	Right physics.Vec3 `json:"right" yaml:"right"`
}

// Center returns the midpoint of the opening.
func (a AimTarget) Center() physics.Vec3 { return physics.Lerp(0.5, a.Left, a.Right) }

// Width returns the horizontal span of the opening.
func (a AimTarget) Width() float64 { return a.Left.Flatten().Dist(a.Right.Flatten()) }

// GoalTarget returns the opening of goal g.
func GoalTarget(g field.Goal) AimTarget {
	left, right := g.Posts()
	return AimTarget{Left: left, Right: right}
}

// Kind tags a Generator variant.
type Kind uint8

const (
	KindStatic Kind = iota
	KindClearGoal
	KindForward
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindClearGoal:
		return "clear_goal"
	case KindForward:
		return "forward"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

const (
	clearDepth     = 369.0
	clearHalfWidth = 555.0
	clearLift      = 200.0 // above the goal crossbar

	forwardDepth     = 1000.0
	forwardHalfWidth = 800.0
)

// Generator produces an AimTarget for a car and a candidate ball slice.
// It is a tagged variant: Kind selects the behaviour from a fixed table and
// the remaining fields parameterise it.
type Generator struct {
	Kind Kind
	// Fixed is the opening returned by KindStatic.
	Fixed AimTarget
	// Goal is the goal being cleared away from by KindClearGoal.
	Goal field.Goal
}

// Static returns a generator that always aims through t.
func Static(t AimTarget) Generator { return Generator{Kind: KindStatic, Fixed: t} }

// ClearGoal returns a generator that aims away from our own goal, blending
// the car's approach direction with the goal-to-ball direction.
func ClearGoal(own field.Goal) Generator { return Generator{Kind: KindClearGoal, Goal: own} }

// Forward returns a generator that aims straight along the car-to-ball line.
func Forward() Generator { return Generator{Kind: KindForward} }

type targetFunc func(g Generator, c world.Car, s prediction.Slice) (AimTarget, bool)

var dispatch = [...]targetFunc{
	KindStatic:    staticTarget,
	KindClearGoal: clearGoalTarget,
	KindForward:   forwardTarget,
}

// Target evaluates the generator. ok is false when the variant is unknown
// or the geometry is degenerate.
func (g Generator) Target(c world.Car, s prediction.Slice) (AimTarget, bool) {
	if int(g.Kind) >= len(dispatch) {
		return AimTarget{}, false
	}
	return dispatch[g.Kind](g, c, s)
}

func staticTarget(g Generator, _ world.Car, _ prediction.Slice) (AimTarget, bool) {
	return g.Fixed, true
}

func clearGoalTarget(g Generator, c world.Car, s prediction.Slice) (AimTarget, bool) {
	carToBall := s.Position.Sub(c.Position).Normalize()
	goalToBall := s.Position.Sub(g.Goal.Location).Normalize()
	dir := carToBall.Add(goalToBall).Flatten().Normalize()
	if dir == physics.Zero {
		return AimTarget{}, false
	}
	return opening(s.Position, dir, clearDepth, clearHalfWidth, g.Goal.Height+clearLift), true
}

func forwardTarget(_ Generator, c world.Car, s prediction.Slice) (AimTarget, bool) {
	dir := s.Position.Sub(c.Position).Flatten().Normalize()
	if dir == physics.Zero {
		return AimTarget{}, false
	}
	return opening(s.Position, dir, forwardDepth, forwardHalfWidth, field.StandardArena().GoalHeight+clearLift), true
}

// opening builds a target depth uu past the ball along dir, spanning
// halfWidth to either side and height tall.
func opening(ball, dir physics.Vec3, depth, halfWidth, height float64) AimTarget {
	perp := dir.Rotate90()
	center := ball.Add(dir.Scale(depth))
	left := center.Add(perp.Scale(halfWidth))
	right := center.Sub(perp.Scale(halfWidth))
	return AimTarget{Left: left.WithZ(height), Right: right.WithZ(0)}
}

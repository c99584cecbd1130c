package shot

import (
	"github.com/zeusync/strikeplan/internal/core/prediction"
	"github.com/zeusync/strikeplan/internal/core/world"
)

// Checker decides whether a clean strike through t is plausible for car c
// meeting the ball at slice s.
type Checker interface {
	Check(c world.Car, s prediction.Slice, t AimTarget) bool
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(c world.Car, s prediction.Slice, t AimTarget) bool

func (f CheckerFunc) Check(c world.Car, s prediction.Slice, t AimTarget) bool { return f(c, s, t) }

// GroundShot accepts strikes a grounded car can make without jumping far:
// the ball is low enough, the opening is wide enough and the car does not
// have to turn back on its approach to hit toward the target.
type GroundShot struct {
	MaxHeight        float64 `json:"max_height" yaml:"max_height"`
	MaxApproachAngle float64 `json:"max_approach_angle" yaml:"max_approach_angle"` // radians
	MinOpening       float64 `json:"min_opening" yaml:"min_opening"`
}

func DefaultGroundShot() GroundShot {
	return GroundShot{MaxHeight: 220, MaxApproachAngle: 1.9, MinOpening: 100}
}

func (g GroundShot) Check(c world.Car, s prediction.Slice, t AimTarget) bool {
	if s.Position.Z > g.MaxHeight {
		return false
	}
	if t.Width() < g.MinOpening {
		return false
	}
	approach := s.Position.Sub(c.Position).Flatten()
	strike := t.Center().Sub(s.Position).Flatten()
	if approach.LengthSquared() == 0 {
		return true
	}
	return approach.Angle(strike) <= g.MaxApproachAngle
}

type all []Checker

// All accepts only when every checker accepts. With no checkers it accepts
// everything.
func All(checkers ...Checker) Checker { return all(checkers) }

func (a all) Check(c world.Car, s prediction.Slice, t AimTarget) bool {
	for _, ch := range a {
		if !ch.Check(c, s, t) {
			return false
		}
	}
	return true
}

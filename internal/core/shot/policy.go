package shot

import (
	"github.com/zeusync/strikeplan/internal/core/eta"
	"github.com/zeusync/strikeplan/internal/core/world"
)

// Verdict explains a Policy decision.
type Verdict uint8

const (
	Keep Verdict = iota
	TooFar
	Beaten
)

func (v Verdict) String() string {
	switch v {
	case TooFar:
		return "too_far"
	case Beaten:
		return "beaten"
	default:
		return "keep"
	}
}

func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// Policy decides whether a found shot is worth contesting.
type Policy struct {
	MaxDistance    float64 `json:"max_shot_distance" yaml:"max_shot_distance"`
	TeammateMargin float64 `json:"teammate_margin" yaml:"teammate_margin"`
	OpponentMargin float64 `json:"opponent_margin" yaml:"opponent_margin"`
	DefenderRadius float64 `json:"defender_radius" yaml:"defender_radius"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxDistance:    5000,
		TeammateMargin: 0.5,
		OpponentMargin: 0.06,
		DefenderRadius: 1000,
	}
}

// Contest applies the policy to shot for the controlled car of w. A shot is
// abandoned when it is too far away, or when the fastest other car arrives
// at least a margin before the slice. An opponent only counts when none of
// our cars is covering our goal.
func (p Policy) Contest(w *world.World, shot Shot, nearest eta.Nearest) Verdict {
	me, ok := w.Self()
	if !ok {
		return Keep
	}
	if shot.Slice.Position.Dist(me.Position) >= p.MaxDistance {
		return TooFar
	}
	if !nearest.HasCar || nearest.Car.Car.Index == me.Index {
		return Keep
	}

	rival := nearest.Car
	enemy := rival.Car.Team != me.Team
	if enemy && p.defended(w) {
		return Keep
	}
	margin := p.TeammateMargin
	if enemy {
		margin = p.OpponentMargin
	}
	if w.Time+rival.ETA <= shot.Slice.Time-margin {
		return Beaten
	}
	return Keep
}

func (p Policy) defended(w *world.World) bool {
	goal := w.OwnGoal().Location
	for _, c := range w.Allies() {
		if c.Position.Dist(goal) < p.DefenderRadius {
			return true
		}
	}
	return false
}

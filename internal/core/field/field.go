// Package field holds the static arena configuration: goal geometry, team
// sides, the playable volume and the waypoint network threaded through the
// resource pads. Everything here is constant for a match.
package field

import (
	"fmt"
	"math"
	"strings"

	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

// Team identifies a side of the match.
type Team int

const (
	Blue   Team = 0
	Orange Team = 1
)

// Side returns the sign of the Y coordinate of the team's own goal.
func (t Team) Side() float64 {
	if t == Blue {
		return -1
	}
	return 1
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Blue {
		return Orange
	}
	return Blue
}

func (t Team) String() string {
	if t == Blue {
		return "blue"
	}
	return "orange"
}

func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText accepts the team name or its number.
func (t *Team) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "blue", "0":
		*t = Blue
	case "orange", "1":
		*t = Orange
	default:
		return fmt.Errorf("unknown team %q", b)
	}
	return nil
}

// Goal is the scoring opening on one end line.
type Goal struct {
	Team     Team         `json:"team"`
	Location physics.Vec3 `json:"location"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
}

// Posts returns the bottom-left and top-right corners of the opening, as seen
// by someone shooting into it from the field.
func (g Goal) Posts() (physics.Vec3, physics.Vec3) {
	// Facing a goal at +Y from the field, left is -X.
	s := g.Team.Side()
	half := g.Width / 2
	left := physics.V(g.Location.X-s*half, g.Location.Y, 0)
	right := physics.V(g.Location.X+s*half, g.Location.Y, g.Height)
	return left, right
}

// Arena describes the fixed geometry of the pitch in uu.
type Arena struct {
	Length          float64 `json:"length" yaml:"length"`
	Width           float64 `json:"width" yaml:"width"`
	Height          float64 `json:"height" yaml:"height"`
	GoalWidth       float64 `json:"goal_width" yaml:"goal_width"`
	GoalHeight      float64 `json:"goal_height" yaml:"goal_height"`
	OutOfPlayMargin float64 `json:"out_of_play_margin" yaml:"out_of_play_margin"`
}

// StandardArena returns the soccar pitch dimensions.
func StandardArena() Arena {
	return Arena{
		Length:          10240,
		Width:           8192,
		Height:          2044,
		GoalWidth:       1786,
		GoalHeight:      642.775,
		OutOfPlayMargin: 130,
	}
}

// GoalLineY is the absolute Y coordinate of both goal lines.
func (a Arena) GoalLineY() float64 { return a.Length / 2 }

// PlayLimitY is the absolute Y past which the ball is treated as out of play.
func (a Arena) PlayLimitY() float64 { return a.GoalLineY() + a.OutOfPlayMargin }

// OwnGoal returns the goal the team defends.
func (a Arena) OwnGoal(t Team) Goal {
	return Goal{
		Team:     t,
		Location: physics.V(0, t.Side()*a.GoalLineY(), 0),
		Width:    a.GoalWidth,
		Height:   a.GoalHeight,
	}
}

// OpponentGoal returns the goal the team attacks.
func (a Arena) OpponentGoal(t Team) Goal { return a.OwnGoal(t.Opponent()) }

// OutOfPlay reports whether p has crossed either goal line by more than the margin.
func (a Arena) OutOfPlay(p physics.Vec3) bool { return math.Abs(p.Y) > a.PlayLimitY() }

// Scoring reports whether p lies past the goal line the team attacks by more than the margin.
func (a Arena) Scoring(p physics.Vec3, t Team) bool {
	return p.Y*t.Opponent().Side() > a.PlayLimitY()
}

// OnSide reports whether p is in the team's own half.
func (a Arena) OnSide(p physics.Vec3, t Team) bool { return p.Y*t.Side() > 0 }

// Field bundles the arena geometry with its waypoint network.
type Field struct {
	Arena   Arena
	Network *Network
}

// Standard returns the stock soccar field with the 34 pad network.
func Standard() Field {
	return Field{Arena: StandardArena(), Network: StandardNetwork()}
}

// Package follow drives a car along a planned curve. It is a small state
// machine: Update takes the previous State and this tick's input and returns
// the next State plus the steering Command for the low-level controller.
package follow

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/strikeplan/internal/core/curve"
	"github.com/zeusync/strikeplan/internal/core/route"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
	"github.com/zeusync/strikeplan/internal/core/world"
)

var ErrInvalidConfig = errors.New("follow: invalid configuration")

// Phase is the state of one following action.
type Phase uint8

const (
	// Searching has no usable curve; the next Update plans one.
	Searching Phase = iota
	// Committed is steering along a curve.
	Committed
	// Finished has arrived or left the path.
	Finished
)

func (p Phase) String() string {
	switch p {
	case Committed:
		return "committed"
	case Finished:
		return "finished"
	default:
		return "searching"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Reason says why a follow finished.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonArrived
	ReasonDeparted
	ReasonNoCar
)

func (r Reason) String() string {
	switch r {
	case ReasonArrived:
		return "arrived"
	case ReasonDeparted:
		return "departed"
	case ReasonNoCar:
		return "no_car"
	default:
		return "none"
	}
}

func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

type Config struct {
	// Lookahead is the arc distance ahead of the nearest curve point that
	// becomes the steering target.
	Lookahead float64 `json:"lookahead" yaml:"lookahead"`
	// DepartTolerance ends the follow once the car is further than this from
	// the curve.
	DepartTolerance float64 `json:"depart_tolerance" yaml:"depart_tolerance"`
	// ArriveRadius ends the follow once the car is this close to the end.
	ArriveRadius float64 `json:"arrive_radius" yaml:"arrive_radius"`

	MinSpeed          float64 `json:"min_speed" yaml:"min_speed"`
	OpponentHalfBonus float64 `json:"opponent_half_bonus" yaml:"opponent_half_bonus"`
	BallOurHalfBonus  float64 `json:"ball_our_half_bonus" yaml:"ball_our_half_bonus"`
	// BoostAbove keeps boosting while the tank holds more than this.
	BoostAbove float64 `json:"boost_above" yaml:"boost_above"`

	// ReplanTicks forces a fresh route after this many committed ticks.
	ReplanTicks   int `json:"replan_ticks" yaml:"replan_ticks"`
	LengthSamples int `json:"length_samples" yaml:"length_samples"`
}

func DefaultConfig() Config {
	return Config{
		Lookahead:         400,
		DepartTolerance:   180,
		ArriveRadius:      100,
		MinSpeed:          1700,
		OpponentHalfBonus: 200,
		BallOurHalfBonus:  200,
		BoostAbove:        80,
		ReplanTicks:       20,
		LengthSamples:     curve.DefaultSamples,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Lookahead <= 0:
		return fmt.Errorf("%w: lookahead must be positive", ErrInvalidConfig)
	case c.DepartTolerance <= 0 || c.ArriveRadius <= 0:
		return fmt.Errorf("%w: depart tolerance and arrive radius must be positive", ErrInvalidConfig)
	case c.MinSpeed < 0:
		return fmt.Errorf("%w: min speed must not be negative", ErrInvalidConfig)
	case c.ReplanTicks < 1:
		return fmt.Errorf("%w: replan_ticks must be at least 1", ErrInvalidConfig)
	case c.LengthSamples < 1:
		return fmt.Errorf("%w: length_samples must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// State is everything a following action carries between ticks. The zero
// value is Searching with no destination.
type State struct {
	Phase       Phase
	Reason      Reason
	Destination physics.Vec3
	Route       route.Route
	Curve       *curve.Curve
	// Ticks counts Updates since the curve was planned.
	Ticks int
	// Param is the curve parameter nearest the car on the last Update.
	Param float64
}

// Input is one tick of data for Update.
type Input struct {
	World       *world.World
	Destination physics.Vec3
	// Via, when set, replaces the planned route with the explicit path
	// car, Via..., Destination. It is rebuilt every tick.
	Via []physics.Vec3
	// Direct drives straight at Destination without consulting the planner.
	Direct bool
}

// Command is the output for the low-level controller.
type Command struct {
	Target   physics.Vec3 `json:"target"`
	MinSpeed float64      `json:"min_speed"`
	Boost    bool         `json:"boost"`
	// Idle is set when there is nothing to drive to.
	Idle bool `json:"idle,omitempty"`
}

// Follower owns the route planner used to (re)build curves. Like the
// planner it is owned by a single agent.
type Follower struct {
	cfg     Config
	planner *route.Planner
}

func New(cfg Config, planner *route.Planner) (*Follower, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if planner == nil {
		return nil, fmt.Errorf("%w: nil planner", ErrInvalidConfig)
	}
	return &Follower{cfg: cfg, planner: planner}, nil
}

func (f *Follower) Config() Config { return f.cfg }

// Update advances s by one tick.
func (f *Follower) Update(s State, in Input) (State, Command) {
	if in.World == nil {
		return State{Phase: Finished, Reason: ReasonNoCar}, Command{Idle: true}
	}
	me, ok := in.World.Self()
	if !ok || !me.Position.IsFinite() {
		return State{Phase: Finished, Reason: ReasonNoCar}, Command{Idle: true}
	}

	moved := in.Destination.Dist(s.Destination) > f.cfg.ArriveRadius
	switch s.Phase {
	case Finished:
		if !moved && me.Position.Dist(in.Destination) <= f.cfg.ArriveRadius {
			return s, Command{Target: in.Destination, Idle: true}
		}
		s = f.plan(in)
	case Committed:
		if moved || s.Ticks >= f.cfg.ReplanTicks || s.Curve == nil || len(in.Via) > 0 {
			s = f.plan(in)
		}
	default:
		s = f.plan(in)
	}
	if s.Curve == nil {
		return s, Command{Target: in.Destination, MinSpeed: f.minSpeed(in.World, me)}
	}
	return f.steer(s, in.World, me)
}

func (f *Follower) plan(in Input) State {
	var r route.Route
	if len(in.Via) > 0 || in.Direct {
		me, _ := in.World.Self()
		r = explicit(me.Position, in.Via, in.Destination)
	} else {
		r = f.planner.Plan(route.QueryFor(in.World, in.Destination))
	}
	c, err := curve.New(r.Points)
	if err != nil {
		return State{Phase: Searching, Destination: in.Destination, Route: r}
	}
	return State{Phase: Committed, Destination: in.Destination, Route: r, Curve: c}
}

func explicit(start physics.Vec3, via []physics.Vec3, dest physics.Vec3) route.Route {
	points := make([]physics.Vec3, 0, len(via)+2)
	points = append(points, start)
	points = append(points, via...)
	points = append(points, dest)
	var cost float64
	for i := 1; i < len(points); i++ {
		cost += points[i-1].Dist(points[i])
	}
	return route.Route{Points: points, Cost: cost}
}

func (f *Follower) steer(s State, w *world.World, me world.Car) (State, Command) {
	c := s.Curve
	u := c.InverseEval(me.Position)
	s.Param = u
	s.Ticks++

	// The nearest point is taken on the chord around u so the endpoints
	// count as part of the path.
	du := 0.5 / float64(c.Segments())
	nearest := me.Position.ProjToLineSegment(c.Eval(u-du), c.Eval(u+du))

	ahead := 1.0
	if l := c.Length(f.cfg.LengthSamples); l > 0 {
		ahead = math.Min(u+f.cfg.Lookahead/l, 1)
	}
	minSpeed := f.minSpeed(w, me)
	cmd := Command{
		Target:   c.Eval(ahead),
		MinSpeed: minSpeed,
		Boost:    me.ForwardSpeed() < minSpeed || me.Boost > f.cfg.BoostAbove,
	}

	switch {
	case me.Position.Dist(c.End()) < f.cfg.ArriveRadius:
		s.Phase, s.Reason = Finished, ReasonArrived
	case me.Position.Dist(nearest) > f.cfg.DepartTolerance:
		s.Phase, s.Reason = Finished, ReasonDeparted
	default:
		s.Phase, s.Reason = Committed, ReasonNone
	}
	return s, cmd
}

// minSpeed raises the floor speed when the car is deep or the ball is
// threatening our goal.
func (f *Follower) minSpeed(w *world.World, me world.Car) float64 {
	side := w.Team().Side()
	v := f.cfg.MinSpeed
	if me.Position.Y*side < 0 {
		v += f.cfg.OpponentHalfBonus
	}
	if w.Ball.Position.Y*side > 0 {
		v += f.cfg.BallOurHalfBonus
	}
	return v
}

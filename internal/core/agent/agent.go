// Package agent runs one car's decision step. Each tick it searches the
// ball prediction for a shot worth contesting and, when there is none,
// picks a positional destination and drives there through the pad network.
package agent

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/zeusync/strikeplan/internal/core/curve"
	"github.com/zeusync/strikeplan/internal/core/eta"
	"github.com/zeusync/strikeplan/internal/core/events/bus"
	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/follow"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
	"github.com/zeusync/strikeplan/internal/core/prediction"
	"github.com/zeusync/strikeplan/internal/core/shot"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
	"github.com/zeusync/strikeplan/internal/core/world"
	"github.com/zeusync/strikeplan/pkg/sequence"
)

// Components are the planners an Agent drives. Bus is optional.
type Components struct {
	Estimator *eta.Estimator
	Searcher  *shot.Searcher
	Checker   shot.Checker
	Policy    shot.Policy
	Follower  *follow.Follower
	Bus       *bus.Bus[Decision]
}

// Agent owns the per-car state carried between ticks: the follow state,
// the planner hint inside its follower and the decision history. It is
// not safe for concurrent use; run one Agent per car.
type Agent struct {
	cfg Config
	log log.Log
	c   Components

	tick    uint64
	state   follow.State
	nav     navigation
	history *sequence.Ring[Decision]

	lastFingerprint uint64
	last            *Decision
}

// navigation is the destination the agent is currently committed to.
type navigation struct {
	active bool
	dest   physics.Vec3
	reason string
	direct bool
}

func New(cfg Config, c Components, logger log.Log) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c.Estimator == nil || c.Searcher == nil || c.Follower == nil {
		return nil, fmt.Errorf("%w: estimator, searcher and follower are required", ErrInvalidConfig)
	}
	if c.Checker == nil {
		c.Checker = shot.All()
	}
	return &Agent{
		cfg:     cfg,
		log:     log.OrNop(logger).With(log.String("component", "agent")),
		c:       c,
		history: sequence.NewRing[Decision](cfg.HistorySize),
	}, nil
}

// Step decides what to do this tick. It never panics and never returns an
// error: faults inside the tick become a degraded idle decision.
func (a *Agent) Step(ctx context.Context, w *world.World) (d Decision) {
	a.tick++
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("tick computation failed, idling",
				log.Uint64("tick", a.tick),
				log.String("fault", fmt.Sprint(r)),
			)
			a.state = follow.State{}
			a.nav = navigation{}
			a.last = nil
			fault := a.idle(w, ReasonFault, fmt.Sprint(r))
			fault.Degraded = true
			d = a.finish(fault)
		}
	}()

	if err := ctx.Err(); err != nil {
		return a.finish(a.idle(w, ReasonFault, err.Error()))
	}
	if w == nil {
		return a.finish(a.idle(w, ReasonFault, "no world snapshot"))
	}

	fp := w.Fingerprint()
	if a.last != nil && fp == a.lastFingerprint {
		d = *a.last
		d.Tick = a.tick
		d.Cached = true
		return a.finish(d)
	}

	d = a.decide(w)
	kept := d
	a.last, a.lastFingerprint = &kept, fp
	return a.finish(d)
}

// History returns the recorded decisions, oldest first.
func (a *Agent) History() []Decision { return a.history.Items() }

// Reset forgets all carried state, as at kickoff.
func (a *Agent) Reset() {
	a.state = follow.State{}
	a.nav = navigation{}
	a.last = nil
	a.history.Reset()
}

func (a *Agent) decide(w *world.World) Decision {
	me, ok := w.Self()
	if !ok {
		return a.idle(w, ReasonNoCar, "")
	}

	tr, degraded := w.BallTrajectory(a.cfg.StaleAfter)
	if degraded {
		a.log.Warn("ball prediction missing or stale, holding the ball still",
			log.Float64("time", w.Time),
			log.Int("slices", w.Trajectory.Len()),
			log.Float64("prediction_start", w.Trajectory.Start()),
		)
	}

	nearest := a.c.Estimator.NearestByETA(w, tr)
	d := Decision{
		ID:         uuid.New(),
		Tick:       a.tick,
		Time:       w.Time,
		NearestCar: -1,
		Certain:    nearest.Certain,
		Degraded:   degraded,
	}
	if nearest.HasCar {
		d.NearestCar = nearest.Car.Car.Index
	}

	found, ok := a.findShot(w, me, tr)
	if ok {
		verdict := a.c.Policy.Contest(w, found, nearest)
		d.Candidate = &Candidate{Shot: found, Verdict: verdict}
		if verdict == shot.Keep {
			return a.shoot(w, me, found, d)
		}
	}
	return a.navigate(w, me, d)
}

// findShot searches with the goal generators first and the forward
// generator second. The goal list starts with clearing when the ball is in
// our half.
func (a *Agent) findShot(w *world.World, me world.Car, tr *prediction.Trajectory) (shot.Shot, bool) {
	their := shot.Static(shot.GoalTarget(w.OpponentGoal()))
	goals := []shot.Generator{their}
	if w.Arena().OnSide(w.Ball.Position, w.Team()) {
		goals = []shot.Generator{shot.ClearGoal(w.OwnGoal()), their}
	}
	if s, ok := a.c.Searcher.Find(me, w.Time, tr, a.c.Checker, goals); ok {
		return s, true
	}
	return a.c.Searcher.Find(me, w.Time, tr, a.c.Checker, []shot.Generator{shot.Forward()})
}

func (a *Agent) shoot(w *world.World, me world.Car, s shot.Shot, d Decision) Decision {
	strike := s.Target.Center().Sub(s.Slice.Position)
	mid := curve.ArrivalMidpoint(me.Position, s.Slice.Position, strike, a.cfg.ArrivalLimit)

	a.nav = navigation{}
	d.Kind, d.Reason = KindShoot, ReasonShot
	d.Shot = &s
	d.Destination = s.Slice.Position
	return a.drive(d, follow.Input{World: w, Destination: s.Slice.Position, Via: []physics.Vec3{mid}})
}

// navigate keeps driving to the current destination until the follower
// finishes, then picks a new one.
func (a *Agent) navigate(w *world.World, me world.Car, d Decision) Decision {
	if !a.nav.active || a.state.Phase != follow.Committed {
		dest, reason, direct := a.destination(w, me)
		a.nav = navigation{active: true, dest: dest, reason: reason, direct: direct}
		a.state = follow.State{}
	}
	d.Kind, d.Reason = KindNavigate, a.nav.reason
	d.Destination = a.nav.dest
	return a.drive(d, follow.Input{World: w, Destination: a.nav.dest, Direct: a.nav.direct})
}

func (a *Agent) destination(w *world.World, me world.Car) (dest physics.Vec3, reason string, direct bool) {
	side := w.Team().Side()
	ourGoal := w.OwnGoal().Location
	ball := w.Ball.Position
	shadow := physics.Lerp(a.cfg.ShadowBlend, ball, ourGoal)
	// Positive Y*side is toward our goal.
	behindShadow := (me.Position.Y-shadow.Y)*side >= 0
	retreatBase := ourGoal.Scale(a.cfg.RetreatDepth)

	switch {
	case ball.Y*-side >= a.cfg.FarBall:
		if me.Boost <= a.cfg.LowBoost {
			if pad, ok := a.boostPad(w, me); ok {
				return pad, ReasonBoostPad, false
			}
		}
		return shadow, ReasonShadow, false
	case !behindShadow:
		return retreatBase.Add(physics.V(0.6*me.Position.X, 0, 0)), ReasonRetreat, me.Boost >= a.cfg.SpareBoost
	case me.Boost <= a.cfg.SpareBoost:
		return retreatBase.Sub(physics.V(0.8*me.Position.X, 0, 0)), ReasonDefendBoost, false
	default:
		return shadow, ReasonShadow, false
	}
}

// boostPad returns the nearest active large pad between the car and our goal.
func (a *Agent) boostPad(w *world.World, me world.Car) (physics.Vec3, bool) {
	side := w.Team().Side()
	best, found := math.Inf(1), false
	var at physics.Vec3
	for _, n := range w.Network().Nodes() {
		if n.Kind != field.PadMajor || !w.PadActive(n.Pad) {
			continue
		}
		if (n.Location.Y-me.Position.Y)*side < 0 {
			continue
		}
		if d := me.Position.Dist(n.Location); d < best {
			best, at, found = d, n.Location, true
		}
	}
	return at, found
}

func (a *Agent) drive(d Decision, in follow.Input) Decision {
	st, cmd := a.c.Follower.Update(a.state, in)
	a.state = st
	if st.Phase == follow.Finished {
		a.nav = navigation{}
	}

	d.Route = st.Route
	if math.IsInf(d.Route.Cost, 0) || math.IsNaN(d.Route.Cost) {
		d.Route.Cost = -1
	}
	if st.Curve != nil {
		d.Curve = st.Curve.Sample(a.cfg.CurveSamples)
	}
	d.Phase = st.Phase
	d.Command = cmd
	return d
}

func (a *Agent) idle(w *world.World, reason, fault string) Decision {
	d := Decision{
		ID:         uuid.New(),
		Tick:       a.tick,
		Kind:       KindIdle,
		Reason:     reason,
		NearestCar: -1,
		Phase:      follow.Finished,
		Command:    follow.Command{Idle: true},
		Fault:      fault,
	}
	if w != nil {
		d.Time = w.Time
	}
	return d
}

// finish records d and publishes it. Subscriber failures are logged and
// never reach the caller.
func (a *Agent) finish(d Decision) Decision {
	a.history.Push(d)
	a.log.Debug("decision",
		log.String("id", d.ID.String()),
		log.Uint64("tick", d.Tick),
		log.String("kind", d.Kind.String()),
		log.String("reason", d.Reason),
		log.Vec("target", d.Command.Target),
		log.Bool("cached", d.Cached),
	)
	if a.c.Bus != nil {
		a.publish(d)
	}
	return d
}

func (a *Agent) publish(d Decision) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("decision subscriber panicked", log.String("fault", fmt.Sprint(r)))
		}
	}()
	if err := a.c.Bus.Publish(TopicDecision, d); err != nil {
		a.log.Warn("decision subscriber failed", log.Error(err))
	}
}

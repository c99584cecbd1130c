// Package world holds the explicit per-tick snapshot every planner reads.
// Nothing here is global; a World value is built once per tick and passed
// down by the caller.
package world

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/prediction"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

var stockNetwork = sync.OnceValue(field.StandardNetwork)

// Car is the observed state of one vehicle.
type Car struct {
	Index       int                 `json:"index" yaml:"index"`
	Team        field.Team          `json:"team" yaml:"team"`
	Position    physics.Vec3        `json:"position" yaml:"position"`
	Velocity    physics.Vec3        `json:"velocity" yaml:"velocity"`
	Orientation physics.Orientation `json:"orientation" yaml:"orientation"`
	Boost       float64             `json:"boost" yaml:"boost"`
	Demolished  bool                `json:"demolished,omitempty" yaml:"demolished,omitempty"`
	Airborne    bool                `json:"airborne,omitempty" yaml:"airborne,omitempty"`
}

// Forward returns the car's nose direction. A car with no orientation set
// is assumed to face along its velocity, or +Y when standing still.
func (c Car) Forward() physics.Vec3 {
	if f := c.Orientation.Forward; f.LengthSquared() > 0 {
		return f
	}
	if c.Velocity.LengthSquared() > 1 {
		return c.Velocity.Normalize()
	}
	return physics.V(0, 1, 0)
}

// ForwardSpeed is the velocity component along the nose.
func (c Car) ForwardSpeed() float64 { return c.Forward().Dot(c.Velocity) }

// Alive reports whether the car is on the field.
func (c Car) Alive() bool { return !c.Demolished }

// Ball is the observed ball state.
type Ball struct {
	Position physics.Vec3 `json:"position" yaml:"position"`
	Velocity physics.Vec3 `json:"velocity" yaml:"velocity"`
}

// Pad is the activation state of one resource pad.
type Pad struct {
	Index  int     `json:"index" yaml:"index"`
	Active bool    `json:"active" yaml:"active"`
	Timer  float64 `json:"timer,omitempty" yaml:"timer,omitempty"` // seconds until active again
}

// World is one tick's snapshot. Me indexes Cars.
type World struct {
	Time       float64                `json:"time" yaml:"time"`
	Me         int                    `json:"me" yaml:"me"`
	Cars       []Car                  `json:"cars" yaml:"cars"`
	Ball       Ball                   `json:"ball" yaml:"ball"`
	Pads       []Pad                  `json:"pads,omitempty" yaml:"pads,omitempty"`
	Trajectory *prediction.Trajectory `json:"-" yaml:"-"`
	Field      field.Field            `json:"-" yaml:"-"`
}

// Self returns the controlled car.
func (w *World) Self() (Car, bool) {
	if w.Me < 0 || w.Me >= len(w.Cars) {
		return Car{}, false
	}
	return w.Cars[w.Me], true
}

// Team returns the controlled car's team.
func (w *World) Team() field.Team {
	me, _ := w.Self()
	return me.Team
}

func (w *World) filter(keep func(Car) bool) []Car {
	out := make([]Car, 0, len(w.Cars))
	for _, c := range w.Cars {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Allies returns the living cars on our team, including us.
func (w *World) Allies() []Car {
	team := w.Team()
	return w.filter(func(c Car) bool { return c.Alive() && c.Team == team })
}

// AlliesNotMe returns the living teammates.
func (w *World) AlliesNotMe() []Car {
	team := w.Team()
	return w.filter(func(c Car) bool { return c.Alive() && c.Team == team && c.Index != w.Me })
}

// Opponents returns the living cars of the other team.
func (w *World) Opponents() []Car {
	team := w.Team()
	return w.filter(func(c Car) bool { return c.Alive() && c.Team != team })
}

// Living returns every car that is not demolished.
func (w *World) Living() []Car {
	return w.filter(Car.Alive)
}

// Arena returns the field geometry, falling back to the stock pitch.
func (w *World) Arena() field.Arena {
	if w.Field.Arena.Length == 0 {
		return field.StandardArena()
	}
	return w.Field.Arena
}

// Network returns the waypoint network, falling back to the stock layout.
func (w *World) Network() *field.Network {
	if w.Field.Network == nil {
		return stockNetwork()
	}
	return w.Field.Network
}

// OwnGoal returns the goal the controlled car defends.
func (w *World) OwnGoal() field.Goal { return w.Arena().OwnGoal(w.Team()) }

// OpponentGoal returns the goal the controlled car attacks.
func (w *World) OpponentGoal() field.Goal { return w.Arena().OpponentGoal(w.Team()) }

// PadActive reports whether pad i is currently available. Pads without
// reported state count as active.
func (w *World) PadActive(i int) bool {
	for _, p := range w.Pads {
		if p.Index == i {
			return p.Active
		}
	}
	return true
}

// BallTrajectory returns the tick's prediction. When it is missing, empty or
// its first slice is older than staleAfter seconds, a stationary trajectory
// at the last known ball position is returned instead and degraded is true.
func (w *World) BallTrajectory(staleAfter float64) (tr *prediction.Trajectory, degraded bool) {
	t := w.Trajectory
	if t.Len() > 0 && (staleAfter <= 0 || w.Time-t.Start() <= staleAfter) {
		return t.WithArena(w.Arena()), false
	}
	rate := t.Rate()
	if rate <= 0 {
		rate = prediction.DefaultRate
	}
	return prediction.Stationary(w.Ball.Position, w.Time, prediction.DefaultHorizon, rate).WithArena(w.Arena()), true
}

// Fingerprint hashes everything a decision depends on. Equal fingerprints
// mean the planners would see identical input.
func (w *World) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	vec := func(v physics.Vec3) {
		put(v.X)
		put(v.Y)
		put(v.Z)
	}
	flag := func(b bool) {
		if b {
			put(1)
		} else {
			put(0)
		}
	}

	put(w.Time)
	put(float64(w.Me))
	for _, c := range w.Cars {
		put(float64(c.Index))
		put(float64(c.Team))
		vec(c.Position)
		vec(c.Velocity)
		vec(c.Orientation.Forward)
		put(c.Boost)
		flag(c.Demolished)
		flag(c.Airborne)
	}
	vec(w.Ball.Position)
	vec(w.Ball.Velocity)
	for _, p := range w.Pads {
		put(float64(p.Index))
		flag(p.Active)
		put(p.Timer)
	}
	binary.LittleEndian.PutUint64(buf[:], w.Trajectory.Fingerprint())
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

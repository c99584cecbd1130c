// Package prediction exposes the predicted future of the ball as an
// immutable, fixed-rate sequence of slices.
package prediction

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

const (
	// DefaultRate is the sample rate of the stock predictor in slices per second.
	DefaultRate = 60.0
	// DefaultHorizon is how far ahead the stock predictor looks, in seconds.
	DefaultHorizon = 6.0
	// DefaultStep is the coarse stride used by Find.
	DefaultStep = 6
)

var (
	ErrBadRate   = errors.New("prediction: sample rate must be positive")
	ErrUnordered = errors.New("prediction: slices are not time ordered")
)

// Slice is one sampled future state of the ball.
type Slice struct {
	Time     float64      `json:"time" yaml:"time"`
	Position physics.Vec3 `json:"position" yaml:"position"`
	Velocity physics.Vec3 `json:"velocity" yaml:"velocity"`
}

// Trajectory is a read-only view over one tick's prediction. It is safe to
// share between readers; nothing mutates it after construction.
type Trajectory struct {
	rate   float64
	slices []Slice
	arena  field.Arena
}

// New copies slices into a trajectory sampled at rate slices per second.
func New(slices []Slice, rate float64) (*Trajectory, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, ErrBadRate
	}
	for i := 1; i < len(slices); i++ {
		if slices[i].Time < slices[i-1].Time {
			return nil, fmt.Errorf("%w: slice %d at %.4f precedes slice %d at %.4f",
				ErrUnordered, i, slices[i].Time, i-1, slices[i-1].Time)
		}
	}
	cp := make([]Slice, len(slices))
	copy(cp, slices)
	return &Trajectory{rate: rate, slices: cp, arena: field.StandardArena()}, nil
}

// WithArena returns a view of the same slices that judges the playable volume
// against a.
func (t *Trajectory) WithArena(a field.Arena) *Trajectory {
	if t == nil {
		return nil
	}
	return &Trajectory{rate: t.rate, slices: t.slices, arena: a}
}

// Len returns the number of slices. A nil trajectory is empty.
func (t *Trajectory) Len() int {
	if t == nil {
		return 0
	}
	return len(t.slices)
}

// Rate returns the sample rate in slices per second.
func (t *Trajectory) Rate() float64 {
	if t == nil {
		return 0
	}
	return t.rate
}

// Start returns the time of the first slice.
func (t *Trajectory) Start() float64 {
	if t.Len() == 0 {
		return 0
	}
	return t.slices[0].Time
}

// End returns the time of the last slice.
func (t *Trajectory) End() float64 {
	if t.Len() == 0 {
		return 0
	}
	return t.slices[len(t.slices)-1].Time
}

// AtIndex returns slice i clamped to the valid range. ok is false only for an
// empty trajectory.
func (t *Trajectory) AtIndex(i int) (Slice, bool) {
	n := t.Len()
	if n == 0 {
		return Slice{}, false
	}
	if i < 0 {
		i = 0
	} else if i >= n {
		i = n - 1
	}
	return t.slices[i], true
}

// IndexAt converts an absolute time into a slice index, clamped to the horizon.
func (t *Trajectory) IndexAt(at float64) int {
	n := t.Len()
	if n == 0 {
		return 0
	}
	f := math.Floor((at-t.slices[0].Time)*t.rate + 1e-9)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= float64(n-1) {
		return n - 1
	}
	return int(f)
}

// AtTime returns the slice at absolute time at. Times outside the horizon
// return the boundary slice.
func (t *Trajectory) AtTime(at float64) (Slice, bool) {
	return t.AtIndex(t.IndexAt(at))
}

// InTime returns the slice delta seconds after the first slice.
func (t *Trajectory) InTime(delta float64) (Slice, bool) {
	return t.AtTime(t.Start() + delta)
}

// OutOfPlay reports whether s is past either goal line by more than the
// arena's margin.
func (t *Trajectory) OutOfPlay(s Slice) bool { return t.arena.OutOfPlay(s.Position) }

// Find returns the earliest slice satisfying pred, checking every step-th
// slice and backtracking linearly over the skipped window once a coarse
// sample matches. The scan stops for good at the first slice that has left
// the playable volume.
//
// This is an approximation: pred is assumed to stay true once it becomes
// true. A match that flips back to false before the next coarse sample can
// be missed entirely.
func (t *Trajectory) Find(pred func(Slice) bool, step int) (Slice, bool) {
	i, ok := t.FindIndex(pred, step)
	if !ok {
		return Slice{}, false
	}
	return t.slices[i], true
}

// FindIndex is Find returning the slice index.
func (t *Trajectory) FindIndex(pred func(Slice) bool, step int) (int, bool) {
	n := t.Len()
	if n == 0 || pred == nil {
		return 0, false
	}
	if step < 1 {
		step = 1
	}
	prev := -1
	for i := step; ; i += step {
		if i > n-1 {
			i = n - 1
		}
		coarse := t.slices[i]
		if t.OutOfPlay(coarse) || pred(coarse) {
			// Refine over the window skipped since the previous coarse sample.
			for j := prev + 1; j <= i; j++ {
				if t.OutOfPlay(t.slices[j]) {
					return 0, false
				}
				if pred(t.slices[j]) {
					return j, true
				}
			}
		}
		if i == n-1 {
			return 0, false
		}
		prev = i
	}
}

// FindGoal returns the first slice in which the ball has crossed the goal
// line that team attacks by more than the arena's margin.
func (t *Trajectory) FindGoal(team field.Team, step int) (Slice, bool) {
	n := t.Len()
	if n == 0 {
		return Slice{}, false
	}
	if step < 1 {
		step = 1
	}
	scored := func(s Slice) bool { return t.arena.Scoring(s.Position, team) }
	prev := -1
	for i := step; ; i += step {
		if i > n-1 {
			i = n - 1
		}
		if scored(t.slices[i]) {
			for j := prev + 1; j <= i; j++ {
				if scored(t.slices[j]) {
					return t.slices[j], true
				}
			}
		}
		if i == n-1 {
			return Slice{}, false
		}
		prev = i
	}
}

// Slices returns a copy of the underlying slices.
func (t *Trajectory) Slices() []Slice {
	cp := make([]Slice, t.Len())
	if t != nil {
		copy(cp, t.slices)
	}
	return cp
}

// Fingerprint hashes the sampled states. Two trajectories with the same
// fingerprint describe the same prediction.
func (t *Trajectory) Fingerprint() uint64 {
	d := xxhash.New()
	if t == nil {
		return d.Sum64()
	}
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	put(t.rate)
	for _, s := range t.slices {
		put(s.Time)
		put(s.Position.X)
		put(s.Position.Y)
		put(s.Position.Z)
		put(s.Velocity.X)
		put(s.Velocity.Y)
		put(s.Velocity.Z)
	}
	return d.Sum64()
}

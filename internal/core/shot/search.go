// Package shot finds the earliest ball slice a car can reach and strike
// through an opening, and layers the contest policy on top.
package shot

import (
	"github.com/zeusync/strikeplan/internal/core/eta"
	"github.com/zeusync/strikeplan/internal/core/prediction"
	"github.com/zeusync/strikeplan/internal/core/world"
)

// Shot is a planned interception.
type Shot struct {
	Target    AimTarget        `json:"target"`
	Slice     prediction.Slice `json:"slice"`
	ETA       float64          `json:"eta"`
	Generator Kind             `json:"generator"`
}

// Searcher scans a trajectory for the earliest feasible shot.
type Searcher struct {
	est  *eta.Estimator
	step int
}

func NewSearcher(est *eta.Estimator, step int) *Searcher {
	if step < 1 {
		step = prediction.DefaultStep
	}
	return &Searcher{est: est, step: step}
}

// Find returns the earliest slice that car c, starting at time now, reaches
// in time and that at least one generator, tried in order, can aim through
// with check's approval. The scan inherits Trajectory.Find's coarse stride
// and stops once the ball leaves play. It does not judge contests or
// distance; see Policy.
func (s *Searcher) Find(c world.Car, now float64, tr *prediction.Trajectory, check Checker, gens []Generator) (Shot, bool) {
	if len(gens) == 0 {
		return Shot{}, false
	}
	if check == nil {
		check = All()
	}
	slice, ok := tr.Find(func(sl prediction.Slice) bool {
		_, ok := s.evaluate(c, now, sl, check, gens)
		return ok
	}, s.step)
	if !ok {
		return Shot{}, false
	}
	return s.evaluate(c, now, slice, check, gens)
}

func (s *Searcher) evaluate(c world.Car, now float64, sl prediction.Slice, check Checker, gens []Generator) (Shot, bool) {
	arrival := s.est.Estimate(c, sl.Position)
	if now+arrival > sl.Time {
		return Shot{}, false
	}
	for _, g := range gens {
		t, ok := g.Target(c, sl)
		if ok && check.Check(c, sl, t) {
			return Shot{Target: t, Slice: sl, ETA: arrival, Generator: g.Kind}, true
		}
	}
	return Shot{}, false
}

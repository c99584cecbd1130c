package eta

import (
	"slices"

	"github.com/zeusync/strikeplan/internal/core/prediction"
	"github.com/zeusync/strikeplan/internal/core/world"
)

// roughSpeed converts distance into the first-pass ETA used to pick which
// predicted ball position each car is measured against.
const roughSpeed = 2100.0

// Ranked is a car and its ETA to the ball.
type Ranked struct {
	Car world.Car
	ETA float64
}

// Nearest summarises which cars reach the ball first.
type Nearest struct {
	Ranking []Ranked // every living car, fastest first
	Car     Ranked
	Ally    Ranked
	Enemy   Ranked

	HasCar, HasAlly, HasEnemy bool

	// Certain is true when the fastest car leads the runner-up by more than
	// 0.1s plus five percent of its own ETA.
	Certain bool
}

// NearestByETA ranks the living cars of w by their ETA to the ball. Each car
// is measured against the predicted ball position at its rough arrival time.
func (e *Estimator) NearestByETA(w *world.World, tr *prediction.Trajectory) Nearest {
	var n Nearest
	team := w.Team()
	for _, c := range w.Living() {
		target := w.Ball.Position
		rough := c.Position.Dist(w.Ball.Position) / roughSpeed
		if s, ok := tr.InTime(rough); ok {
			target = s.Position
		}
		n.Ranking = append(n.Ranking, Ranked{Car: c, ETA: e.Estimate(c, target)})
	}
	slices.SortStableFunc(n.Ranking, func(a, b Ranked) int {
		switch {
		case a.ETA < b.ETA:
			return -1
		case a.ETA > b.ETA:
			return 1
		}
		return 0
	})

	for _, r := range n.Ranking {
		if !n.HasCar {
			n.Car, n.HasCar = r, true
		}
		if r.Car.Team == team && !n.HasAlly {
			n.Ally, n.HasAlly = r, true
		}
		if r.Car.Team != team && !n.HasEnemy {
			n.Enemy, n.HasEnemy = r, true
		}
	}

	switch len(n.Ranking) {
	case 0:
	case 1:
		n.Certain = true
	default:
		lead := n.Ranking[0].ETA
		n.Certain = n.Ranking[1].ETA-lead > 0.1+lead/20
	}
	return n
}

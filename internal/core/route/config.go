package route

import (
	"errors"
	"fmt"
	"math"
)

// ErrInadmissible is returned for configurations that could make an edge
// cheaper than its straight-line length, which would break the A* heuristic.
var ErrInadmissible = errors.New("route: configuration breaks heuristic admissibility")

// Repulsion is a soft obstacle. Its penalty is Strength*(Reference/d)^4 for
// an obstacle d uu from an edge.
type Repulsion struct {
	Strength  float64 `json:"strength" yaml:"strength"`
	Reference float64 `json:"reference" yaml:"reference"`
}

// Penalty returns the cost added to an edge passing d uu from the obstacle.
// d is clamped to minDist so the penalty stays finite.
func (r Repulsion) Penalty(d, minDist float64) float64 {
	if r.Strength <= 0 || r.Reference <= 0 {
		return 0
	}
	d = math.Max(d, minDist)
	q := r.Reference / d
	q *= q
	return r.Strength * q * q
}

type Config struct {
	// Near and Far bound the distance of nodes reachable from the start.
	Near float64 `json:"near" yaml:"near"`
	Far  float64 `json:"far" yaml:"far"`
	// ConeScale sets how far a node must be before it may sit behind the
	// car: a node at angle a off the nose needs distance > ConeScale*min(a*0.99, 1).
	ConeScale float64 `json:"cone_scale" yaml:"cone_scale"`
	// DirectEdge lets the start connect straight to the destination.
	DirectEdge bool `json:"direct_edge" yaml:"direct_edge"`

	NoPadMultiplier    float64 `json:"no_pad_multiplier" yaml:"no_pad_multiplier"`
	MinorPadMultiplier float64 `json:"minor_pad_multiplier" yaml:"minor_pad_multiplier"`
	MajorPadMultiplier float64 `json:"major_pad_multiplier" yaml:"major_pad_multiplier"`

	Ball          Repulsion `json:"ball" yaml:"ball"`
	Allies        Repulsion `json:"allies" yaml:"allies"`
	AllyLookahead float64   `json:"ally_lookahead" yaml:"ally_lookahead"` // seconds
	MinDistance   float64   `json:"min_obstacle_distance" yaml:"min_obstacle_distance"`
}

func DefaultConfig() Config {
	return Config{
		Near:               0,
		Far:                2000,
		ConeScale:          700,
		DirectEdge:         true,
		NoPadMultiplier:    1.5,
		MinorPadMultiplier: 1.15,
		MajorPadMultiplier: 1.0,
		Ball:               Repulsion{Strength: 600, Reference: 1000},
		Allies:             Repulsion{Strength: 160, Reference: 1000},
		AllyLookahead:      0.1,
		MinDistance:        50,
	}
}

// WithoutObstacles returns a copy with every repulsion switched off.
func (c Config) WithoutObstacles() Config {
	c.Ball.Strength = 0
	c.Allies.Strength = 0
	return c
}

// Validate reports configurations that would let an edge cost less than
// its Euclidean length or that describe an empty start band.
func (c Config) Validate() error {
	for name, m := range map[string]float64{
		"no_pad_multiplier":    c.NoPadMultiplier,
		"minor_pad_multiplier": c.MinorPadMultiplier,
		"major_pad_multiplier": c.MajorPadMultiplier,
	} {
		if !(m >= 1) {
			return fmt.Errorf("%w: %s is %v, must be >= 1", ErrInadmissible, name, m)
		}
	}
	if c.Ball.Strength < 0 || c.Allies.Strength < 0 {
		return fmt.Errorf("%w: repulsion strength must not be negative", ErrInadmissible)
	}
	if c.Near < 0 || c.Far < c.Near {
		return fmt.Errorf("route: start band [%v, %v] is empty", c.Near, c.Far)
	}
	if c.MinDistance <= 0 && (c.Ball.Strength > 0 || c.Allies.Strength > 0) {
		return fmt.Errorf("route: min_obstacle_distance must be positive")
	}
	return nil
}

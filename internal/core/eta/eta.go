// Package eta estimates how long a car needs to reach a point. Estimates
// are deliberately conservative: callers compare two cars' ETAs to decide
// who contests the ball, and an optimistic guess makes us chase shots we
// cannot win.
package eta

import (
	"errors"
	"math"

	"github.com/zeusync/strikeplan/internal/core/systems/physics"
	"github.com/zeusync/strikeplan/internal/core/world"
)

// Config holds the vehicle model. Speeds are uu/s, accelerations uu/s².
type Config struct {
	MaxSpeed          float64 `json:"max_speed" yaml:"max_speed"`
	BoostlessSpeed    float64 `json:"boostless_speed" yaml:"boostless_speed"`
	Acceleration      float64 `json:"acceleration" yaml:"acceleration"`
	BoostAcceleration float64 `json:"boost_acceleration" yaml:"boost_acceleration"`
	BrakeDeceleration float64 `json:"brake_deceleration" yaml:"brake_deceleration"`
	BoostPerSecond    float64 `json:"boost_per_second" yaml:"boost_per_second"`
	MinTurnSpeed      float64 `json:"min_turn_speed" yaml:"min_turn_speed"`
}

func DefaultConfig() Config {
	return Config{
		MaxSpeed:          2300,
		BoostlessSpeed:    1410,
		Acceleration:      1000,
		BoostAcceleration: 991.667,
		BrakeDeceleration: 3500,
		BoostPerSecond:    33.3,
		MinTurnSpeed:      500,
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("eta: invalid vehicle model")

// Validate rejects models that would divide by zero or never move.
func (c Config) Validate() error {
	if !(c.MaxSpeed > 0) || !(c.BoostlessSpeed > 0) || !(c.Acceleration > 0) || !(c.MinTurnSpeed > 0) {
		return ErrInvalidConfig
	}
	if c.BoostlessSpeed > c.MaxSpeed || c.BoostAcceleration < 0 || c.BrakeDeceleration <= 0 || c.BoostPerSecond <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Estimator is a pure function of its Config; the zero value is not usable,
// build one with New.
type Estimator struct {
	cfg Config
}

func New(cfg Config) *Estimator {
	return &Estimator{cfg: cfg}
}

func (e *Estimator) Config() Config { return e.cfg }

// Estimate returns the seconds car c needs to reach target. It never fails
// and is never below the straight-line distance over top speed. A target
// that is not a finite point is unreachable.
func (e *Estimator) Estimate(c world.Car, target physics.Vec3) float64 {
	delta := target.Sub(c.Position)
	dist := delta.Length()
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return math.Inf(1)
	}
	floor := dist / e.cfg.MaxSpeed
	if dist < 1e-6 {
		return 0
	}
	dir := delta.Scale(1 / dist)

	// A second of boost is enough to lift top speed from boostless to max.
	boostSeconds := physics.Clamp(c.Boost/e.cfg.BoostPerSecond, 0, 1)
	vmax := physics.LerpF(boostSeconds, e.cfg.BoostlessSpeed, e.cfg.MaxSpeed)
	accel := e.cfg.Acceleration + e.cfg.BoostAcceleration*boostSeconds

	total := 0.0
	v0 := c.Velocity.Dot(dir)
	if v0 < 0 {
		// Stop first; the distance rolled away has to be covered again.
		tb := -v0 / e.cfg.BrakeDeceleration
		total += tb
		dist += v0 * v0 / (2 * e.cfg.BrakeDeceleration)
		v0 = 0
	}
	if v0 > vmax {
		vmax = v0
	}

	total += straightTime(v0, vmax, accel, dist)
	total += e.turnTime(c, dir)

	if math.IsNaN(total) || math.IsInf(total, 0) {
		return floor
	}
	return math.Max(total, floor)
}

// straightTime is the constant-acceleration time to cover dist starting at
// v0 and capped at vmax.
func straightTime(v0, vmax, accel, dist float64) float64 {
	if accel <= 0 {
		return dist / math.Max(v0, 1)
	}
	ta := (vmax - v0) / accel
	sa := v0*ta + 0.5*accel*ta*ta
	if sa >= dist {
		return (-v0 + math.Sqrt(v0*v0+2*accel*dist)) / accel
	}
	return ta + (dist-sa)/vmax
}

func (e *Estimator) turnTime(c world.Car, dir physics.Vec3) float64 {
	fwd := c.Forward().Flatten()
	flat := dir.Flatten()
	if fwd.LengthSquared() == 0 || flat.LengthSquared() == 0 {
		return 0
	}
	angle := fwd.Angle(flat)
	v := math.Max(c.Velocity.Length(), e.cfg.MinTurnSpeed)
	return angle / (v * Curvature(v))
}

var curvatureTable = [...][2]float64{
	{0, 0.0069},
	{500, 0.00398},
	{1000, 0.00235},
	{1500, 0.001375},
	{1750, 0.0011},
	{2300, 0.00088},
}

// Curvature returns the tightest turning curvature (1/radius) available at
// forward speed v.
func Curvature(v float64) float64 {
	v = math.Abs(v)
	last := len(curvatureTable) - 1
	if v >= curvatureTable[last][0] {
		return curvatureTable[last][1]
	}
	for i := 1; i <= last; i++ {
		hi := curvatureTable[i]
		if v <= hi[0] {
			lo := curvatureTable[i-1]
			t := (v - lo[0]) / (hi[0] - lo[0])
			return physics.LerpF(t, lo[1], hi[1])
		}
	}
	return curvatureTable[last][1]
}

package agent

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("agent: invalid configuration")

type Config struct {
	// StaleAfter is how old, in seconds, the first predicted slice may be
	// before the prediction is replaced by a stationary ball.
	StaleAfter  float64 `json:"stale_after" yaml:"stale_after"`
	HistorySize int     `json:"history_size" yaml:"history_size"`

	// ShadowBlend places the shadow position between the ball (0) and our
	// goal (1).
	ShadowBlend float64 `json:"shadow_blend" yaml:"shadow_blend"`
	// RetreatDepth scales our goal location to get the retreat point.
	RetreatDepth float64 `json:"retreat_depth" yaml:"retreat_depth"`
	// FarBall is the distance past midfield at which the ball no longer
	// threatens our goal.
	FarBall float64 `json:"far_ball" yaml:"far_ball"`
	// LowBoost sends the car to a large pad when the ball is far away.
	LowBoost float64 `json:"low_boost" yaml:"low_boost"`
	// SpareBoost is the tank level above which retreats drive straight.
	SpareBoost float64 `json:"spare_boost" yaml:"spare_boost"`

	ArrivalLimit float64 `json:"arrival_limit" yaml:"arrival_limit"`
	// CurveSamples is how many curve points each decision records.
	CurveSamples int `json:"curve_samples" yaml:"curve_samples"`
}

func DefaultConfig() Config {
	return Config{
		StaleAfter:   0.25,
		HistorySize:  120,
		ShadowBlend:  0.35,
		RetreatDepth: 0.83,
		FarBall:      3000,
		LowBoost:     20,
		SpareBoost:   50,
		ArrivalLimit: 1700,
		CurveSamples: 16,
	}
}

func (c Config) Validate() error {
	switch {
	case c.StaleAfter < 0:
		return fmt.Errorf("%w: stale_after must not be negative", ErrInvalidConfig)
	case c.HistorySize < 1:
		return fmt.Errorf("%w: history_size must be at least 1", ErrInvalidConfig)
	case c.ShadowBlend < 0 || c.ShadowBlend > 1:
		return fmt.Errorf("%w: shadow_blend must be within [0, 1]", ErrInvalidConfig)
	case c.RetreatDepth < 0 || c.RetreatDepth > 1:
		return fmt.Errorf("%w: retreat_depth must be within [0, 1]", ErrInvalidConfig)
	case c.ArrivalLimit <= 0:
		return fmt.Errorf("%w: arrival_limit must be positive", ErrInvalidConfig)
	case c.CurveSamples < 2:
		return fmt.Errorf("%w: curve_samples must be at least 2", ErrInvalidConfig)
	}
	return nil
}

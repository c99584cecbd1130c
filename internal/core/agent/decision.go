package agent

import (
	"github.com/google/uuid"

	"github.com/zeusync/strikeplan/internal/core/follow"
	"github.com/zeusync/strikeplan/internal/core/route"
	"github.com/zeusync/strikeplan/internal/core/shot"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

// TopicDecision is the bus topic every decision is published on.
const TopicDecision = "decision"

// Kind is what the car was told to do.
type Kind uint8

const (
	KindIdle Kind = iota
	KindShoot
	KindNavigate
)

func (k Kind) String() string {
	switch k {
	case KindShoot:
		return "shoot"
	case KindNavigate:
		return "navigate"
	default:
		return "idle"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Navigation destinations, recorded as Decision.Reason.
const (
	ReasonShot        = "shot"
	ReasonShadow      = "shadow"
	ReasonRetreat     = "retreat"
	ReasonDefendBoost = "defend_boost"
	ReasonBoostPad    = "boost_pad"
	ReasonNoCar       = "no_car"
	ReasonFault       = "fault"
)

// Candidate is the shot the search found and what the contest policy said.
type Candidate struct {
	Shot    shot.Shot    `json:"shot"`
	Verdict shot.Verdict `json:"verdict"`
}

// Decision is the outcome of one tick.
type Decision struct {
	ID     uuid.UUID `json:"id"`
	Tick   uint64    `json:"tick"`
	Time   float64   `json:"time"`
	Kind   Kind      `json:"kind"`
	Reason string    `json:"reason"`

	Destination physics.Vec3 `json:"destination"`
	Shot        *shot.Shot   `json:"shot,omitempty"`
	Candidate   *Candidate   `json:"candidate,omitempty"`

	Route   route.Route    `json:"route"`
	Curve   []physics.Vec3 `json:"curve,omitempty"`
	Phase   follow.Phase   `json:"phase"`
	Command follow.Command `json:"command"`

	// NearestCar is the index of the car first to the ball, or -1.
	NearestCar int  `json:"nearest_car"`
	Certain    bool `json:"certain"`

	// Degraded is set when the tick ran on a stationary-ball fallback or
	// recovered from a fault.
	Degraded bool   `json:"degraded,omitempty"`
	Cached   bool   `json:"cached,omitempty"`
	Fault    string `json:"fault,omitempty"`
}

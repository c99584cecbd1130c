package injector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strikeplan/internal/config"
	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/events/bus"
	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
	"github.com/zeusync/strikeplan/internal/core/world"
)

func TestInitializeAgent(t *testing.T) {
	cfg := config.Default()
	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)

	b := ProvideBus()
	var published int
	b.Subscribe(agent.TopicDecision, func(bus.Event[agent.Decision]) error {
		published++
		return nil
	})

	a, err := InitializeAgent(cfg, logger, b)
	require.NoError(t, err)

	w := &world.World{
		Cars: []world.Car{{Team: field.Orange, Position: physics.V(0, 3000, 17), Orientation: physics.Facing(physics.V(0, -1, 0))}},
		Ball: world.Ball{Position: physics.V(0, 0, 93)},
	}
	d := a.Step(context.Background(), w)
	assert.NotEqual(t, agent.KindIdle, d.Kind)
	assert.Equal(t, 1, published)
}

func TestInitializeAgentRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Follow.ReplanTicks = 0
	_, err := InitializeAgent(cfg, log.Nop(), nil)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Log.Level = "shouting"
	_, err = InitializeLogger(cfg)
	assert.Error(t, err)
}

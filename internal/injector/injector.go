//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/strikeplan/internal/config"
	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/events/bus"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
)

func InitializeLogger(cfg config.Config) (*log.Logger, error) {
	wire.Build(ProvideLogger)
	return nil, nil
}

func InitializeAgent(cfg config.Config, logger log.Log, b *bus.Bus[agent.Decision]) (*agent.Agent, error) {
	wire.Build(AgentSet)
	return nil, nil
}

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/strikeplan/internal/config"
	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/eta"
	"github.com/zeusync/strikeplan/internal/core/events/bus"
	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/follow"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
	"github.com/zeusync/strikeplan/internal/core/route"
	"github.com/zeusync/strikeplan/internal/core/shot"
)

// AgentSet builds one agent with its own planner state. The logger and the
// decision bus are shared between agents.
var AgentSet = wire.NewSet(
	ProvideField,
	ProvideEstimator,
	ProvideSearcher,
	ProvidePlanner,
	ProvideFollower,
	ProvideComponents,
	ProvideAgent,
)

func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	return log.New(cfg.Log)
}

func ProvideBus() *bus.Bus[agent.Decision] {
	return bus.New[agent.Decision]()
}

func ProvideField(cfg config.Config) (field.Field, error) {
	return cfg.BuildField()
}

func ProvideEstimator(cfg config.Config) *eta.Estimator {
	return eta.New(cfg.ETA)
}

func ProvideSearcher(cfg config.Config, est *eta.Estimator) *shot.Searcher {
	return shot.NewSearcher(est, cfg.Shot.Step)
}

func ProvidePlanner(cfg config.Config, f field.Field) (*route.Planner, error) {
	return route.NewPlanner(cfg.Route, f.Network)
}

func ProvideFollower(cfg config.Config, p *route.Planner) (*follow.Follower, error) {
	return follow.New(cfg.Follow, p)
}

func ProvideComponents(cfg config.Config, est *eta.Estimator, s *shot.Searcher, f *follow.Follower, b *bus.Bus[agent.Decision]) agent.Components {
	return agent.Components{
		Estimator: est,
		Searcher:  s,
		Checker:   cfg.Shot.Ground,
		Policy:    cfg.Shot.Policy,
		Follower:  f,
		Bus:       b,
	}
}

func ProvideAgent(cfg config.Config, c agent.Components, logger log.Log) (*agent.Agent, error) {
	return agent.New(cfg.Agent, c, logger)
}

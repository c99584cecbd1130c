package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/strikeplan/internal/config"
	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/events/bus"
	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
	"github.com/zeusync/strikeplan/internal/core/prediction"
	"github.com/zeusync/strikeplan/internal/core/world"
	"github.com/zeusync/strikeplan/internal/injector"
)

// Scenario is one recorded or hand-written situation replayed through a
// fresh agent.
type Scenario struct {
	Name string `yaml:"name"`
	// Ticks is how many decisions to take. Between ticks the clock advances
	// by Step seconds, the ball follows its prediction and the cars coast.
	Ticks      int         `yaml:"ticks"`
	Step       float64     `yaml:"step"`
	World      world.World `yaml:"world"`
	Prediction Prediction  `yaml:"prediction"`
}

// Prediction selects how the ball trajectory handed to the agent is built.
type Prediction struct {
	// Model is ballistic (default), stationary or none. With none the agent
	// gets no prediction and holds the ball still itself.
	Model       string  `yaml:"model"`
	Rate        float64 `yaml:"rate"`
	Horizon     float64 `yaml:"horizon"`
	Gravity     float64 `yaml:"gravity"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
}

// Result is one output line.
type Result struct {
	Scenario string         `json:"scenario"`
	Decision agent.Decision `json:"decision"`
}

// open returns a reader for path, decompressing .zst files.
func open(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return fh, nil
	}
	dec, err := zstd.NewReader(fh)
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("zstd %s: %w", path, err)
	}
	return readCloser{Reader: dec, close: func() error {
		dec.Close()
		return fh.Close()
	}}, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

func LoadScenario(path string) (Scenario, error) {
	r, err := open(path)
	if err != nil {
		return Scenario{}, err
	}
	defer r.Close()

	s, err := DecodeScenario(r)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		base := strings.TrimSuffix(filepath.Base(path), ".zst")
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return s, nil
}

func DecodeScenario(r io.Reader) (Scenario, error) {
	var s Scenario
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if s.Ticks <= 0 {
		s.Ticks = 1
	}
	if s.Step <= 0 {
		s.Step = 1 / prediction.DefaultRate
	}
	switch s.Prediction.Model {
	case "":
		s.Prediction.Model = "ballistic"
	case "ballistic", "stationary", "none":
	default:
		return Scenario{}, fmt.Errorf("unknown prediction model %q", s.Prediction.Model)
	}
	if len(s.World.Cars) == 0 {
		return Scenario{}, fmt.Errorf("scenario has no cars")
	}
	return s, nil
}

func (p Prediction) build(w *world.World) *prediction.Trajectory {
	switch p.Model {
	case "none":
		return nil
	case "stationary":
		return prediction.Stationary(w.Ball.Position, w.Time, p.Horizon, p.Rate).WithArena(w.Arena())
	}
	opts := prediction.DefaultBallisticOptions()
	opts.Arena = w.Arena()
	if p.Rate > 0 {
		opts.Rate = p.Rate
	}
	if p.Horizon > 0 {
		opts.Horizon = p.Horizon
	}
	if p.Gravity != 0 {
		opts.Gravity = p.Gravity
	}
	if p.Restitution > 0 {
		opts.Restitution = p.Restitution
	}
	if p.Friction > 0 {
		opts.Friction = p.Friction
	}
	return prediction.Ballistic(w.Ball.Position, w.Ball.Velocity, w.Time, opts)
}

// Run replays s through a new agent. The agent is private to this call, so
// several scenarios may run concurrently against the same logger and bus.
func Run(ctx context.Context, s Scenario, cfg config.Config, f field.Field, logger log.Log, b *bus.Bus[agent.Decision]) ([]Result, error) {
	a, err := injector.InitializeAgent(cfg, logger, b)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	w := s.World
	w.Cars = slices.Clone(s.World.Cars)
	w.Field = f
	out := make([]Result, 0, s.Ticks)
	for range s.Ticks {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		w.Trajectory = s.Prediction.build(&w)
		snap := w
		out = append(out, Result{Scenario: s.Name, Decision: a.Step(ctx, &snap)})
		w = advance(w, s.Step)
	}
	return out, nil
}

// advance moves w forward by dt. The ball follows the trajectory when it
// covers the new time; otherwise it and the cars keep their velocity.
func advance(w world.World, dt float64) world.World {
	w.Time += dt
	if sl, ok := w.Trajectory.AtTime(w.Time); ok && w.Time <= w.Trajectory.End() {
		w.Ball.Position, w.Ball.Velocity = sl.Position, sl.Velocity
	} else {
		w.Ball.Position = w.Ball.Position.Add(w.Ball.Velocity.Scale(dt))
	}
	cars := make([]world.Car, len(w.Cars))
	for i, c := range w.Cars {
		if !c.Demolished {
			c.Position = c.Position.Add(c.Velocity.Scale(dt))
		}
		cars[i] = c
	}
	w.Cars = cars
	return w
}

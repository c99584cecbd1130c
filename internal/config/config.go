// Package config loads every planner tunable from a single YAML document.
// Sections that are omitted keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/eta"
	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/follow"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
	"github.com/zeusync/strikeplan/internal/core/route"
	"github.com/zeusync/strikeplan/internal/core/shot"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Log    log.Config    `json:"log" yaml:"log"`
	ETA    eta.Config    `json:"eta" yaml:"eta"`
	Shot   Shot          `json:"shot" yaml:"shot"`
	Route  route.Config  `json:"route" yaml:"route"`
	Follow follow.Config `json:"follow" yaml:"follow"`
	Agent  agent.Config  `json:"agent" yaml:"agent"`
	Field  Field         `json:"field" yaml:"field"`
	Server Server        `json:"server" yaml:"server"`
}

// Shot tunes the interception search and the caller-side contest policy.
type Shot struct {
	// Step is the coarse stride of the trajectory scan, in slices.
	Step   int             `json:"step" yaml:"step"`
	Ground shot.GroundShot `json:"ground" yaml:"ground"`
	Policy shot.Policy     `json:"policy" yaml:"policy"`
}

// Field overrides the stock arena. Path names a separate field file; inline
// sections apply on top of it.
type Field struct {
	Path         string `json:"path,omitempty" yaml:"path,omitempty"`
	field.Config `yaml:",inline"`
}

// Server configures the websocket debug stream.
type Server struct {
	Addr string `json:"addr" yaml:"addr"`
	Path string `json:"path" yaml:"path"`
}

func Default() Config {
	return Config{
		Log: log.DefaultConfig(),
		ETA: eta.DefaultConfig(),
		Shot: Shot{
			Step:   6,
			Ground: shot.DefaultGroundShot(),
			Policy: shot.DefaultPolicy(),
		},
		Route:  route.DefaultConfig(),
		Follow: follow.DefaultConfig(),
		Agent:  agent.DefaultConfig(),
		Server: Server{Addr: ":8089", Path: "/debug"},
	}
}

// LoadYAML decodes r over the defaults and validates the result. An empty
// document yields the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads path. An empty path yields the defaults.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return LoadYAML(fh)
}

// Validate checks every section. Errors wrap ErrInvalid and name the section.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log: %w", ErrInvalid, err)
	}
	checks := []struct {
		section string
		err     error
	}{
		{"eta", c.ETA.Validate()},
		{"shot", c.Shot.validate()},
		{"route", c.Route.Validate()},
		{"follow", c.Follow.Validate()},
		{"agent", c.Agent.Validate()},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, ch.section, ch.err)
		}
	}
	return nil
}

func (s Shot) validate() error {
	switch {
	case s.Step < 1:
		return errors.New("step must be at least 1")
	case s.Ground.MaxApproachAngle < 0 || s.Ground.MinOpening < 0:
		return errors.New("ground checker limits must not be negative")
	case s.Policy.MaxDistance <= 0:
		return errors.New("max_shot_distance must be positive")
	case s.Policy.TeammateMargin < 0 || s.Policy.OpponentMargin < 0:
		return errors.New("contest margins must not be negative")
	}
	return nil
}

// BuildField resolves the field section: the file at Path first, then the
// inline overrides.
func (c Config) BuildField() (field.Field, error) {
	f, err := field.LoadFile(c.Field.Path)
	if err != nil {
		return field.Field{}, fmt.Errorf("load field: %w", err)
	}
	if c.Field.Arena != nil || c.Field.Network != nil {
		inline, err := c.Field.Config.Build()
		if err != nil {
			return field.Field{}, fmt.Errorf("%w: field: %w", ErrInvalid, err)
		}
		if c.Field.Arena != nil {
			f.Arena = inline.Arena
		}
		if c.Field.Network != nil {
			f.Network = inline.Network
		}
	}
	return f, nil
}

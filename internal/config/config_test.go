package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/route"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestPartialDocumentKeepsDefaults(t *testing.T) {
	doc := `
log:
  level: debug
route:
  far: 2500
follow:
  lookahead: 300
agent:
  history_size: 10
shot:
  policy:
    opponent_margin: 0.1
`
	cfg, err := LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2500.0, cfg.Route.Far)
	assert.Equal(t, route.DefaultConfig().ConeScale, cfg.Route.ConeScale)
	assert.Equal(t, 300.0, cfg.Follow.Lookahead)
	assert.Equal(t, 180.0, cfg.Follow.DepartTolerance)
	assert.Equal(t, 10, cfg.Agent.HistorySize)
	assert.Equal(t, 0.1, cfg.Shot.Policy.OpponentMargin)
	assert.Equal(t, 5000.0, cfg.Shot.Policy.MaxDistance)
	assert.Equal(t, 6, cfg.Shot.Step)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"inadmissible multiplier": "route:\n  no_pad_multiplier: 0.5\n",
		"empty start band":        "route:\n  near: 3000\n  far: 100\n",
		"negative repulsion":      "route:\n  ball:\n    strength: -1\n",
		"zero step":               "shot:\n  step: 0\n",
		"bad level":               "log:\n  level: chatty\n",
		"no speed":                "eta:\n  max_speed: 0\n",
		"single curve sample":     "agent:\n  curve_samples: 1\n",
		"zero replan":             "follow:\n  replan_ticks: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := LoadYAML(strings.NewReader("route: [1, 2"))
	assert.Error(t, err)
}

func TestBuildField(t *testing.T) {
	f, err := Default().BuildField()
	require.NoError(t, err)
	assert.Equal(t, field.StandardArena(), f.Arena)
	assert.Equal(t, 34, f.Network.Len())

	doc := `
field:
  arena:
    length: 8000
    width: 6000
    height: 2000
    goal_width: 1500
    goal_height: 600
    out_of_play_margin: 100
  network:
    nodes:
      - location: {x: 0, y: 0, z: 0}
        pad: 0
        kind: major
      - location: {x: 1000, y: 0, z: 0}
    edges: [[0, 1]]
`
	cfg, err := LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	f, err = cfg.BuildField()
	require.NoError(t, err)
	assert.Equal(t, 4000.0, f.Arena.GoalLineY())
	assert.Equal(t, 2, f.Network.Len())
	assert.Equal(t, field.PadMajor, f.Network.Node(0).Kind)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	fieldPath := filepath.Join(dir, "field.yaml")
	require.NoError(t, os.WriteFile(fieldPath, []byte("arena:\n  length: 9000\n  width: 7000\n  goal_width: 1600\n"), 0o600))

	cfgPath := filepath.Join(dir, "planner.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("field:\n  path: "+fieldPath+"\nserver:\n  addr: 127.0.0.1:0\n"), 0o600))

	cfg, err := LoadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", cfg.Server.Addr)
	assert.Equal(t, "/debug", cfg.Server.Path)

	f, err := cfg.BuildField()
	require.NoError(t, err)
	assert.Equal(t, 4500.0, f.Arena.GoalLineY())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

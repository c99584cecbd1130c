package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strikeplan/internal/config"
	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

const kickoff = `
name: kickoff
ticks: 3
world:
  me: 0
  cars:
    - index: 0
      team: blue
      position: {x: 0, y: -2000, z: 17}
      orientation:
        forward: {x: 0, y: 1, z: 0}
      boost: 50
    - index: 1
      team: orange
      position: {x: 0, y: 5000, z: 17}
      orientation:
        forward: {x: 0, y: -1, z: 0}
  ball:
    position: {x: 0, y: 0, z: 92.75}
prediction:
  model: stationary
`

func TestDecodeScenario(t *testing.T) {
	s, err := DecodeScenario(strings.NewReader(kickoff))
	require.NoError(t, err)
	assert.Equal(t, "kickoff", s.Name)
	assert.Equal(t, 3, s.Ticks)
	assert.InDelta(t, 1.0/60, s.Step, 1e-12)
	assert.Equal(t, field.Orange, s.World.Cars[1].Team)

	_, err = DecodeScenario(strings.NewReader("world:\n  cars: []\n"))
	assert.Error(t, err)
	_, err = DecodeScenario(strings.NewReader(kickoff + "  rate: 120\n  model: magic\n"))
	assert.Error(t, err)
}

func TestRunReplaysTicks(t *testing.T) {
	s, err := DecodeScenario(strings.NewReader(kickoff))
	require.NoError(t, err)

	results, err := Run(context.Background(), s, config.Default(), field.Standard(), log.Nop(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, "kickoff", r.Scenario)
		assert.Equal(t, uint64(i+1), r.Decision.Tick)
		assert.Equal(t, agent.KindShoot, r.Decision.Kind)
	}
	assert.Greater(t, results[2].Decision.Time, results[0].Decision.Time)
}

func TestLoadCompressedScenarioAndWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kickoff_copy.yaml.zst")
	fh, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(fh)
	require.NoError(t, err)
	_, err = enc.Write([]byte(strings.Replace(kickoff, "name: kickoff\n", "", 1)))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, fh.Close())

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "kickoff_copy", s.Name)

	results, err := replay(context.Background(), []Scenario{s, s}, config.Default(), field.Standard(), log.Nop(), nil, 2)
	require.NoError(t, err)
	require.Len(t, results, 6)

	out := filepath.Join(dir, "decisions.jsonl.zst")
	require.NoError(t, write(out, results))

	rf, err := os.Open(out)
	require.NoError(t, err)
	defer rf.Close()
	dec, err := zstd.NewReader(rf)
	require.NoError(t, err)
	defer dec.Close()

	lines := 0
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var line struct {
			Scenario string `json:"scenario"`
			Decision struct {
				Kind string `json:"kind"`
			} `json:"decision"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		assert.Equal(t, "kickoff_copy", line.Scenario)
		assert.Equal(t, "shoot", line.Decision.Kind)
		lines++
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, 6, lines)
}

func TestAdvanceCoastsBodies(t *testing.T) {
	s, err := DecodeScenario(strings.NewReader(kickoff))
	require.NoError(t, err)
	w := s.World
	w.Cars[0].Velocity = physics.V(0, 600, 0)
	w.Ball.Velocity = physics.V(120, 0, 0)

	next := advance(w, 0.5)
	assert.Equal(t, 0.5, next.Time)
	assert.Equal(t, physics.V(0, -1700, 17), next.Cars[0].Position)
	assert.Equal(t, physics.V(60, 0, 92.75), next.Ball.Position)
	assert.Equal(t, physics.V(0, -2000, 17), w.Cars[0].Position, "the input snapshot is untouched")
}

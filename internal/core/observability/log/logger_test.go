package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestFieldsReachZap(t *testing.T) {
	l, logs := observed()
	l.With(String("decision", "abc")).Info("tick",
		Int("slice", 42),
		Float64("eta", 1.25),
		Bool("degraded", true),
		Vec("target", physics.V(1, 2, 3)),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "tick", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["decision"])
	assert.Equal(t, int64(42), ctx["slice"])
	assert.Equal(t, 1.25, ctx["eta"])
	assert.Equal(t, true, ctx["degraded"])
	assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0, "z": 3.0}, ctx["target"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestSetLevelFilters(t *testing.T) {
	l, logs := observed()
	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.With(Int("k", 1)).Info("dropped by child too")
	assert.Equal(t, 1, logs.Len())
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"": LevelInfo, "DEBUG": LevelDebug, "warning": LevelWarn, "error": LevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewAndNop(t *testing.T) {
	l, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, l.GetLevel())

	_, err = New(Config{Level: "verbose"})
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		OrNop(nil).Error("discarded", Any("k", struct{}{}))
	})
}

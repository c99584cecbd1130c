package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

// line builds n slices at 60 Hz with the ball moving along +X.
func line(n int) []Slice {
	s := make([]Slice, n)
	for i := range s {
		s[i] = Slice{
			Time:     10 + float64(i)/DefaultRate,
			Position: physics.V(float64(i)*10, 0, BallRadius),
			Velocity: physics.V(600, 0, 0),
		}
	}
	return s
}

func linearFirst(slices []Slice, pred func(Slice) bool) (int, bool) {
	for i, s := range slices {
		if pred(s) {
			return i, true
		}
	}
	return 0, false
}

func TestNewValidates(t *testing.T) {
	_, err := New(line(3), 0)
	assert.ErrorIs(t, err, ErrBadRate)

	s := line(3)
	s[2].Time = 0
	_, err = New(s, DefaultRate)
	assert.ErrorIs(t, err, ErrUnordered)

	tr, err := New(line(3), DefaultRate)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())
}

func TestAtTimeClamps(t *testing.T) {
	tr, err := New(line(360), DefaultRate)
	require.NoError(t, err)

	s, ok := tr.AtTime(0)
	require.True(t, ok)
	assert.Equal(t, 10.0, s.Time)

	s, _ = tr.AtTime(1e6)
	assert.Equal(t, tr.End(), s.Time)

	s, _ = tr.AtTime(11)
	assert.InDelta(t, 11.0, s.Time, 1e-9)

	s, _ = tr.InTime(0.5)
	assert.InDelta(t, 10.5, s.Time, 1e-9)

	var empty *Trajectory
	_, ok = empty.AtTime(1)
	assert.False(t, ok)
}

func TestFindMatchesLinearScan(t *testing.T) {
	slices := line(360)
	tr, err := New(slices, DefaultRate)
	require.NoError(t, err)

	for lo := 1; lo < 40; lo++ {
		for _, width := range []int{1, 2, 5, 13} {
			hi := lo + width
			pred := func(s Slice) bool {
				i := int(s.Position.X / 10)
				return i >= lo && i < hi
			}
			want, _ := linearFirst(slices, pred)
			for _, step := range []int{1, 3, DefaultStep, 11} {
				got, ok := tr.FindIndex(pred, step)
				if ok {
					assert.GreaterOrEqual(t, got, want, "lo=%d width=%d step=%d", lo, width, step)
				}
				if width >= step {
					require.True(t, ok, "lo=%d width=%d step=%d", lo, width, step)
					assert.Equal(t, want, got)
				}
			}
		}
	}
}

func TestFindLastWindow(t *testing.T) {
	tr, err := New(line(10), DefaultRate)
	require.NoError(t, err)
	s, ok := tr.Find(func(s Slice) bool { return s.Position.X >= 90 }, 4)
	require.True(t, ok)
	assert.Equal(t, 90.0, s.Position.X)
}

func TestFindStopsOutOfPlay(t *testing.T) {
	slices := make([]Slice, 120)
	for i := range slices {
		slices[i] = Slice{Time: float64(i) / DefaultRate, Position: physics.V(0, 5000+float64(i)*5, BallRadius)}
	}
	tr, err := New(slices, DefaultRate)
	require.NoError(t, err)

	// y crosses 5250 at index 51; a predicate only true later is never reached.
	_, ok := tr.Find(func(s Slice) bool { return s.Time > 1.5 }, DefaultStep)
	assert.False(t, ok)

	s, ok := tr.Find(func(s Slice) bool { return s.Position.Y > 5100 }, DefaultStep)
	require.True(t, ok)
	assert.InDelta(t, 5105.0, s.Position.Y, 1e-9)
}

func TestFindGoal(t *testing.T) {
	slices := make([]Slice, 120)
	for i := range slices {
		slices[i] = Slice{Time: float64(i) / DefaultRate, Position: physics.V(0, 5000+float64(i)*5, BallRadius)}
	}
	tr, err := New(slices, DefaultRate)
	require.NoError(t, err)

	s, ok := tr.FindGoal(field.Blue, DefaultStep)
	require.True(t, ok)
	assert.InDelta(t, 5255.0, s.Position.Y, 1e-9)

	_, ok = tr.FindGoal(field.Orange, DefaultStep)
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	a, _ := New(line(30), DefaultRate)
	b, _ := New(line(30), DefaultRate)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	s := line(30)
	s[7].Position.Z += 1
	c, _ := New(s, DefaultRate)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestStationary(t *testing.T) {
	ball := physics.V(100, 200, BallRadius)
	tr := Stationary(ball, 3, 2, 60)
	require.Equal(t, 121, tr.Len())
	assert.Equal(t, 3.0, tr.Start())
	assert.InDelta(t, 5.0, tr.End(), 1e-9)
	s, _ := tr.InTime(1.2)
	assert.Equal(t, ball, s.Position)
	assert.Equal(t, physics.Zero, s.Velocity)
}

func TestBallisticBounces(t *testing.T) {
	tr := Ballistic(physics.V(0, 0, 500), physics.V(0, 300, 0), 0, DefaultBallisticOptions())
	require.Equal(t, 361, tr.Len())
	for _, s := range tr.Slices() {
		assert.GreaterOrEqual(t, s.Position.Z, BallRadius)
	}
	end, _ := tr.AtIndex(tr.Len() - 1)
	assert.Greater(t, end.Position.Y, 0.0)
	assert.Less(t, end.Position.Y, 300*DefaultHorizon)
}

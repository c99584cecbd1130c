package route

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
	"github.com/zeusync/strikeplan/internal/core/world"
)

func pad(i int) *int { return &i }

// fork is two mirrored major pads between the origin and (0, 2000).
func fork(t *testing.T) *field.Network {
	t.Helper()
	n, err := field.NewNetwork(field.NetworkSpec{
		Nodes: []field.NodeSpec{
			{Location: physics.V(-500, 1000, 0), Pad: pad(0), Kind: "major"},
			{Location: physics.V(500, 1000, 0), Pad: pad(1), Kind: "major"},
		},
	})
	require.NoError(t, err)
	return n
}

func forkQuery() Query {
	return Query{
		Start:       physics.Zero,
		Forward:     physics.V(0, 1, 0),
		Destination: physics.V(0, 2000, 0),
		Ball:        physics.V(0, -5000, 0),
	}
}

func planner(t *testing.T, cfg Config, net *field.Network) *Planner {
	t.Helper()
	p, err := NewPlanner(cfg, net)
	require.NoError(t, err)
	return p
}

func randomQuery(r *rand.Rand) Query {
	at := func() physics.Vec3 { return physics.V(r.Float64()*8000-4000, r.Float64()*10000-5000, 17) }
	angle := r.Float64() * 2 * math.Pi
	q := Query{
		Start:       at(),
		Forward:     physics.V(math.Cos(angle), math.Sin(angle), 0),
		Destination: at(),
		Ball:        at(),
	}
	for range 2 {
		q.Allies = append(q.Allies, Obstacle{Position: at(), Velocity: physics.V(r.Float64()*1000, r.Float64()*1000, 0)})
	}
	return q
}

func TestPlanCostMatchesDijkstra(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for _, cfg := range []Config{DefaultConfig().WithoutObstacles(), DefaultConfig()} {
		p := planner(t, cfg, nil)
		for i := range 300 {
			q := randomQuery(r)
			route := p.Plan(q)
			require.False(t, route.Fallback)
			assert.InDelta(t, p.ShortestCost(q), route.Cost, 1e-6, "query %d", i)
			assert.Equal(t, q.Start, route.Points[0])
			assert.Equal(t, q.Destination, route.Points[len(route.Points)-1])
			assert.Len(t, route.Points, len(route.Nodes)+2)
		}
	}
}

func TestPlanCostIsAtLeastStraightLine(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	p := planner(t, DefaultConfig(), nil)
	for range 100 {
		q := randomQuery(r)
		route := p.Plan(q)
		assert.GreaterOrEqual(t, route.Cost, q.Start.Dist(q.Destination)-1e-9)
	}
}

func TestPlanFarStartFallsBack(t *testing.T) {
	q := Query{
		Start:       physics.V(20000, 20000, 17),
		Forward:     physics.V(1, 0, 0),
		Destination: physics.V(0, -4000, 17),
		Ball:        physics.V(0, 0, 93),
	}

	route := planner(t, DefaultConfig(), nil).Plan(q)
	assert.Equal(t, []physics.Vec3{q.Start, q.Destination}, route.Points)
	assert.Empty(t, route.Nodes)

	cfg := DefaultConfig()
	cfg.DirectEdge = false
	route = planner(t, cfg, nil).Plan(q)
	assert.True(t, route.Fallback)
	assert.Equal(t, []physics.Vec3{q.Start, q.Destination}, route.Points)
}

func TestStartCone(t *testing.T) {
	net, err := field.NewNetwork(field.NetworkSpec{
		Nodes: []field.NodeSpec{
			{Location: physics.V(0, 300, 0), Pad: pad(0), Kind: "major"},
			{Location: physics.V(0, 600, 0), Pad: pad(1), Kind: "major"},
		},
		Edges: [][2]int{{0, 1}},
	})
	require.NoError(t, err)
	cfg := DefaultConfig().WithoutObstacles()
	cfg.DirectEdge = false
	p := planner(t, cfg, net)

	q := Query{Start: physics.Zero, Forward: physics.V(0, -1, 0), Destination: physics.V(0, 3000, 0)}
	route := p.Plan(q)
	assert.True(t, route.Fallback, "both nodes are too close to reach by turning around")
	assert.Equal(t, []physics.Vec3{q.Start, q.Destination}, route.Points)
	assert.True(t, math.IsInf(p.ShortestCost(q), 1))

	q.Forward = physics.V(0, 1, 0)
	route = p.Plan(q)
	assert.False(t, route.Fallback)
	assert.GreaterOrEqual(t, len(route.Points), 3)
	assert.InDelta(t, 4200.0, route.Cost, 1e-9)
}

func TestHintBreaksTies(t *testing.T) {
	p := planner(t, DefaultConfig(), fork(t))
	q := forkQuery()

	first := p.Plan(q)
	require.Len(t, first.Nodes, 1)
	assert.Equal(t, first.Nodes[0], p.Hint())
	again := p.Plan(q)
	assert.Equal(t, first.Nodes, again.Nodes, "a tie keeps the previous choice")

	p.hint = 1
	assert.Equal(t, []int{1}, p.Plan(q).Nodes)
	p.hint = 0
	assert.Equal(t, []int{0}, p.Plan(q).Nodes)
	assert.InDelta(t, first.Cost, p.Plan(q).Cost, 1e-9)

	p.Reset()
	assert.Equal(t, -1, p.Hint())
}

func TestRepulsion(t *testing.T) {
	p := planner(t, DefaultConfig(), fork(t))

	q := forkQuery()
	q.Ball = physics.V(-500, 1000, 93)
	assert.Equal(t, []int{1}, p.Plan(q).Nodes, "steer clear of the ball")

	p.Reset()
	q = forkQuery()
	q.Allies = []Obstacle{{Position: physics.V(450, 950, 17), Velocity: physics.V(500, 500, 0)}}
	assert.Equal(t, []int{0}, p.Plan(q).Nodes, "steer clear of a teammate")
}

func TestInactivePadsCostLikeBareNodes(t *testing.T) {
	net, err := field.NewNetwork(field.NetworkSpec{
		Nodes: []field.NodeSpec{
			{Location: physics.V(-500, 1000, 0), Pad: pad(0), Kind: "major"},
			{Location: physics.V(500, 1000, 0), Pad: pad(1), Kind: "minor"},
		},
	})
	require.NoError(t, err)
	p := planner(t, DefaultConfig(), net)

	q := forkQuery()
	assert.Equal(t, []int{0}, p.Plan(q).Nodes)

	q.PadActive = func(i int) bool { return i != 0 }
	assert.Equal(t, []int{1}, p.Plan(q).Nodes)
}

func TestPlanRejectsNonFinite(t *testing.T) {
	p := planner(t, DefaultConfig(), nil)
	q := forkQuery()
	q.Start = physics.V(math.NaN(), 0, 0)
	route := p.Plan(q)
	assert.True(t, route.Fallback)
	assert.Len(t, route.Points, 2)
}

func TestRepulsionPenalty(t *testing.T) {
	r := Repulsion{Strength: 600, Reference: 1000}
	assert.InDelta(t, 600.0, r.Penalty(1000, 50), 1e-9)
	assert.InDelta(t, 9600.0, r.Penalty(500, 50), 1e-9)
	assert.Equal(t, r.Penalty(50, 50), r.Penalty(0, 50))
	assert.Zero(t, Repulsion{}.Penalty(10, 50))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MinorPadMultiplier = 0.9
	assert.ErrorIs(t, cfg.Validate(), ErrInadmissible)

	cfg = DefaultConfig()
	cfg.Ball.Strength = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInadmissible)

	cfg = DefaultConfig()
	cfg.Near = 3000
	assert.Error(t, cfg.Validate())

	_, err := NewPlanner(Config{}, nil)
	assert.ErrorIs(t, err, ErrInadmissible)
}

func TestQueryFor(t *testing.T) {
	w := &world.World{
		Me: 0,
		Cars: []world.Car{
			{Index: 0, Position: physics.V(1, 2, 17), Orientation: physics.Facing(physics.V(1, 0, 0))},
			{Index: 1, Position: physics.V(100, 200, 17), Velocity: physics.V(10, 0, 0)},
			{Index: 2, Team: field.Orange, Position: physics.V(0, 3000, 17)},
		},
		Ball: world.Ball{Position: physics.V(0, 0, 93)},
		Pads: []world.Pad{{Index: 3, Active: false}},
	}
	q := QueryFor(w, physics.V(0, -4000, 0))
	assert.Equal(t, physics.V(1, 2, 17), q.Start)
	require.Len(t, q.Allies, 1)
	assert.Equal(t, physics.V(100, 200, 17), q.Allies[0].Position)
	assert.False(t, q.PadActive(3))
	assert.True(t, q.PadActive(4))
}

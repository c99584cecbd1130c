// Package route plans drives through the resource pad network. A query adds
// two virtual nodes, the car and its destination, to the static waypoint
// graph and runs A* over edge costs that favour pads and steer around the
// ball and teammates.
package route

import (
	"math"
	"slices"

	"github.com/zeusync/strikeplan/internal/core/field"
	"github.com/zeusync/strikeplan/internal/core/systems/physics"
	"github.com/zeusync/strikeplan/internal/core/world"
	"github.com/zeusync/strikeplan/pkg/generic"
	"github.com/zeusync/strikeplan/pkg/sequence"
)

// Obstacle is a moving body to keep clear of.
type Obstacle struct {
	Position physics.Vec3
	Velocity physics.Vec3
}

// Query is one planning request.
type Query struct {
	Start       physics.Vec3
	Forward     physics.Vec3
	Destination physics.Vec3
	Ball        physics.Vec3
	Allies      []Obstacle
	// PadActive reports pad availability; nil treats every pad as active.
	// Inactive pads are costed like bare nodes.
	PadActive func(pad int) bool
}

// QueryFor builds the query for the controlled car of w driving to dest.
func QueryFor(w *world.World, dest physics.Vec3) Query {
	me, _ := w.Self()
	q := Query{
		Start:       me.Position,
		Forward:     me.Forward(),
		Destination: dest,
		Ball:        w.Ball.Position,
		PadActive:   w.PadActive,
	}
	for _, a := range w.AlliesNotMe() {
		q.Allies = append(q.Allies, Obstacle{Position: a.Position, Velocity: a.Velocity})
	}
	return q
}

// Route is an ordered drive from the start to the destination.
type Route struct {
	Points []physics.Vec3 `json:"points"`
	Nodes  []int          `json:"nodes"` // fixed network nodes visited, in order
	Cost   float64        `json:"cost"`
	// Fallback is set when the search could not reach the destination and
	// Points is the direct two-point drive.
	Fallback bool `json:"fallback,omitempty"`
}

// Planner runs route queries against one network. It remembers the first
// hop of its previous route and prefers it when two candidates tie; it is
// not safe for concurrent use.
type Planner struct {
	cfg  Config
	net  *field.Network
	hint int
}

func NewPlanner(cfg Config, net *field.Network) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if net == nil {
		net = field.StandardNetwork()
	}
	return &Planner{cfg: cfg, net: net, hint: -1}, nil
}

func (p *Planner) Config() Config { return p.cfg }

// entry is a queue element. g is the path cost at push time; an entry whose
// g exceeds the node's best known cost when popped is stale.
type entry struct {
	node int
	g    float64
}

type search struct {
	cost  []float64
	from  []int
	first []int
	pq    *sequence.PriorityQueue[entry]
}

var searches = generic.NewPool(
	func() *search { return &search{pq: sequence.NewPriorityQueue[entry](64)} },
	func(s *search) { s.pq.Reset() },
)

func (s *search) prepare(n int) {
	s.cost = slices.Grow(s.cost[:0], n)[:n]
	s.from = slices.Grow(s.from[:0], n)[:n]
	s.first = slices.Grow(s.first[:0], n)[:n]
	for i := range n {
		s.cost[i] = math.Inf(1)
		s.from[i] = -1
		s.first[i] = -1
	}
}

// graph is the per-query view of the network plus the two virtual nodes.
type graph struct {
	p     *Planner
	q     Query
	start int
	end   int
	nbuf  []int
}

func (p *Planner) graph(q Query) *graph {
	n := p.net.Len()
	return &graph{p: p, q: q, start: n, end: n + 1}
}

func (g *graph) size() int { return g.end + 1 }

func (g *graph) location(i int) physics.Vec3 {
	switch i {
	case g.start:
		return g.q.Start
	case g.end:
		return g.q.Destination
	default:
		return g.p.net.Node(i).Location
	}
}

// neighbors lists the successors of u. Every fixed node connects to the
// destination; the start connects to the fixed nodes inside its band and
// forward cone.
func (g *graph) neighbors(u int) []int {
	g.nbuf = g.nbuf[:0]
	switch u {
	case g.end:
		return g.nbuf
	case g.start:
		cfg := g.p.cfg
		for i := range g.p.net.Len() {
			loc := g.p.net.Node(i).Location
			d := g.q.Start.Dist(loc)
			if d < cfg.Near || d > cfg.Far {
				continue
			}
			angle := g.q.Forward.Angle(loc.Sub(g.q.Start))
			if cfg.ConeScale*physics.Clamp(angle*0.99, 0, 1) < d {
				g.nbuf = append(g.nbuf, i)
			}
		}
		if cfg.DirectEdge {
			g.nbuf = append(g.nbuf, g.end)
		}
	default:
		g.nbuf = append(g.nbuf, g.p.net.Node(u).Neighbors...)
		g.nbuf = append(g.nbuf, g.end)
	}
	return g.nbuf
}

func (g *graph) multiplier(v int) float64 {
	cfg := g.p.cfg
	if v == g.end || v == g.start {
		return cfg.NoPadMultiplier
	}
	node := g.p.net.Node(v)
	if !node.HasPad() || (g.q.PadActive != nil && !g.q.PadActive(node.Pad)) {
		return cfg.NoPadMultiplier
	}
	switch node.Kind {
	case field.PadMajor:
		return cfg.MajorPadMultiplier
	case field.PadMinor:
		return cfg.MinorPadMultiplier
	default:
		return cfg.NoPadMultiplier
	}
}

// edgeCost is the scaled length of u-v plus obstacle penalties. It is never
// below the Euclidean length, which keeps the straight-line heuristic
// admissible.
func (g *graph) edgeCost(u, v int) float64 {
	cfg := g.p.cfg
	a, b := g.location(u), g.location(v)
	c := a.Dist(b) * g.multiplier(v)

	if cfg.Ball.Strength > 0 {
		proj := g.q.Ball.ProjToLineSegment(a, b)
		c += cfg.Ball.Penalty(g.q.Ball.Dist(proj), cfg.MinDistance)
	}
	if cfg.Allies.Strength > 0 {
		for _, ally := range g.q.Allies {
			soon := ally.Position.Add(ally.Velocity.Scale(cfg.AllyLookahead))
			proj := soon.ProjToLineSegment(a, b)
			c += cfg.Allies.Penalty(soon.Dist(proj), cfg.MinDistance)
		}
	}
	if math.IsNaN(c) {
		return math.Inf(1)
	}
	return c
}

func (g *graph) heuristic(v int) float64 { return g.location(v).Dist(g.q.Destination) }

// Plan returns the cheapest route for q. It never fails: when the
// destination cannot be reached through the graph the direct drive is
// returned with Fallback set.
func (p *Planner) Plan(q Query) Route {
	if !q.Start.IsFinite() || !q.Destination.IsFinite() {
		p.hint = -1
		return Route{Points: []physics.Vec3{q.Start, q.Destination}, Cost: math.Inf(1), Fallback: true}
	}
	g := p.graph(q)
	s := searches.Get()
	defer searches.Put(s)
	s.prepare(g.size())

	s.cost[g.start] = 0
	s.pq.Enqueue(entry{node: g.start}, g.heuristic(g.start))

	for !s.pq.IsEmpty() {
		e, _, _ := s.pq.Dequeue()
		u := e.node
		if e.g > s.cost[u] {
			continue // stale: u was reached more cheaply after this push
		}
		if u == g.end {
			r := p.reconstruct(g, s)
			p.remember(r)
			return r
		}
		for _, v := range g.neighbors(u) {
			ng := s.cost[u] + g.edgeCost(u, v)
			if !(ng < s.cost[v]) {
				continue
			}
			s.cost[v] = ng
			s.from[v] = u
			if u == g.start {
				s.first[v] = v
			} else {
				s.first[v] = s.first[u]
			}
			tie := 1
			if s.first[v] == p.hint {
				tie = 0
			}
			s.pq.EnqueueTie(entry{node: v, g: ng}, ng+g.heuristic(v), tie)
		}
	}

	p.hint = -1
	return Route{
		Points:   []physics.Vec3{q.Start, q.Destination},
		Cost:     q.Start.Dist(q.Destination) * p.cfg.NoPadMultiplier,
		Fallback: true,
	}
}

func (p *Planner) reconstruct(g *graph, s *search) Route {
	var nodes []int
	for v := s.from[g.end]; v != g.start && v >= 0; v = s.from[v] {
		nodes = append(nodes, v)
	}
	slices.Reverse(nodes)

	points := make([]physics.Vec3, 0, len(nodes)+2)
	points = append(points, g.q.Start)
	for _, v := range nodes {
		points = append(points, p.net.Node(v).Location)
	}
	points = append(points, g.q.Destination)
	return Route{Points: points, Nodes: nodes, Cost: s.cost[g.end]}
}

func (p *Planner) remember(r Route) {
	if len(r.Nodes) > 0 {
		p.hint = r.Nodes[0]
	} else {
		p.hint = p.net.Len() + 1
	}
}

// Hint returns the first hop the planner currently prefers on ties, or -1.
func (p *Planner) Hint() int { return p.hint }

// Reset forgets the previous route.
func (p *Planner) Reset() { p.hint = -1 }

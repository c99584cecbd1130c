package route

import "math"

// ShortestCost runs an exhaustive Dijkstra search over the same graph and
// edge costs Plan uses and returns the cheapest cost from the start to the
// destination, or +Inf when it is unreachable. It exists to check Plan and
// is too slow for per-tick use.
func (p *Planner) ShortestCost(q Query) float64 {
	if !q.Start.IsFinite() || !q.Destination.IsFinite() {
		return math.Inf(1)
	}
	g := p.graph(q)
	s := searches.Get()
	defer searches.Put(s)
	s.prepare(g.size())

	done := make([]bool, g.size())
	s.cost[g.start] = 0
	s.pq.Enqueue(entry{node: g.start}, 0)
	for !s.pq.IsEmpty() {
		e, _, _ := s.pq.Dequeue()
		u := e.node
		if done[u] {
			continue
		}
		done[u] = true
		for _, v := range g.neighbors(u) {
			if ng := s.cost[u] + g.edgeCost(u, v); ng < s.cost[v] {
				s.cost[v] = ng
				s.pq.Enqueue(entry{node: v, g: ng}, ng)
			}
		}
	}
	return s.cost[g.end]
}

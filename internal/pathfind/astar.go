// Package pathfind finds shortest routes through a navigation graph with A*.
package pathfind

import (
	"container/heap"
	"fmt"
	"math"

	"indoornav/internal/domain"
)

// DefaultIterationFactor bounds a search to this many node selections per graph node
const DefaultIterationFactor = 10

// Status is the outcome of a search
type Status string

const (
	StatusFound           Status = "found"
	StatusNotFound        Status = "not_found"
	StatusIterationCap    Status = "iteration_cap"
	StatusInvalidEndpoint Status = "invalid_endpoint"
)

// Result is the outcome of Find. A missing route is a normal result, not an error.
type Result struct {
	Status     Status       `json:"status"`
	Route      domain.Route `json:"route"`
	Iterations int          `json:"iterations"`
	Expanded   int          `json:"expanded"`
}

// Found reports whether a route was produced
func (r Result) Found() bool { return r.Status == StatusFound }

// Option configures a search
type Option func(*config)

type config struct {
	factor   int
	maxIter  int
	reporter domain.Reporter
}

// WithIterationFactor caps the search at factor times the node count
func WithIterationFactor(factor int) Option {
	return func(c *config) { c.factor = factor }
}

// WithMaxIterations caps the search at an absolute number of node selections.
// It overrides the iteration factor.
func WithMaxIterations(n int) Option {
	return func(c *config) { c.maxIter = n }
}

// WithReporter reports failed searches as diagnostics
func WithReporter(r domain.Reporter) Option {
	return func(c *config) { c.reporter = r }
}

// Find returns the minimum-weight route from start to goal.
//
// Only start and goal may be rooms; every other room is skipped. An edge
// between two known, different floors is only followed when one end is a
// vertical-transit node. The Euclidean heuristic keeps the result optimal as
// long as every edge weighs at least the distance between its endpoints.
//
// Find never mutates g, so concurrent searches on one graph are safe.
func Find(g *domain.Graph, start, goal string, opts ...Option) Result {
	cfg := config{factor: DefaultIterationFactor}
	for _, opt := range opts {
		opt(&cfg)
	}

	startNode, okS := g.Node(start)
	goalNode, okG := g.Node(goal)
	if !okS || !okG {
		return Result{Status: StatusInvalidEndpoint}
	}
	if start == goal {
		return Result{Status: StatusFound, Route: domain.Route{NodeIDs: []string{start}}}
	}

	if cfg.factor <= 0 {
		cfg.factor = DefaultIterationFactor
	}
	limit := cfg.maxIter
	if limit <= 0 {
		limit = cfg.factor * g.Len()
	}

	h := func(n *domain.Node) float64 {
		return math.Hypot(n.X-goalNode.X, n.Y-goalNode.Y)
	}

	gScore := map[string]float64{start: 0}
	cameFrom := make(map[string]string)
	closed := make(map[string]bool)

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{node: startNode, f: h(startNode), h: h(startNode)})

	res := Result{Status: StatusNotFound}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.node
		if closed[current.ID] {
			continue
		}
		if res.Iterations >= limit {
			res.Status = StatusIterationCap
			break
		}
		res.Iterations++

		if current.ID == goal {
			ids := reconstructPath(cameFrom, goal)
			res.Status = StatusFound
			res.Route = domain.Route{NodeIDs: ids, Distance: gScore[goal]}
			return res
		}
		closed[current.ID] = true
		res.Expanded++

		for _, e := range current.Edges {
			if closed[e.To] {
				continue
			}
			neighbor, ok := g.Node(e.To)
			if !ok || !passable(current, neighbor, start, goal) {
				continue
			}
			tentative := gScore[current.ID] + e.Weight
			if old, seen := gScore[e.To]; seen && tentative >= old {
				continue
			}
			cameFrom[e.To] = current.ID
			gScore[e.To] = tentative
			hn := h(neighbor)
			heap.Push(pq, &pqItem{node: neighbor, f: tentative + hn, h: hn})
		}
	}

	d := domain.Diagnostic{
		Code:     domain.CodeRouteNotFound,
		Severity: domain.SeverityInfo,
		NodeID:   start,
		OtherID:  goal,
		Message:  "no legal route between nodes",
	}
	if res.Status == StatusIterationCap {
		d.Code = domain.CodeIterationCap
		d.Severity = domain.SeverityWarning
		d.Message = fmt.Sprintf("search stopped after %d iterations", res.Iterations)
	}
	cfg.reporter.Report(d)
	return res
}

// passable applies the room rule and the floor-legality rule to one step
func passable(from, to *domain.Node, start, goal string) bool {
	if to.IsRoom() && to.ID != start && to.ID != goal {
		return false
	}
	return domain.FloorChangeAllowed(from, to)
}

// Distance returns the total edge weight along ids
func Distance(g *domain.Graph, ids []string) (float64, error) {
	return g.RouteWeight(ids)
}

func reconstructPath(cameFrom map[string]string, current string) []string {
	path := []string{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqItem struct {
	node *domain.Node
	f    float64
	h    float64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

// Less orders by f, then by distance to goal, then by id so that equal-cost
// routes come out the same every time
func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.node.ID < b.node.ID
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*pqItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

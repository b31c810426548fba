// Package graphtest builds small graphs for tests: the fixed scenarios used
// across packages and seeded random graphs for property checks.
package graphtest

import (
	"fmt"
	"math"
	"math/rand"

	"indoornav/internal/domain"
)

// Spec describes one node for Build
type Spec struct {
	ID    string
	Kind  domain.NodeKind
	X, Y  float64
	Floor domain.FloorID // empty leaves the floor unresolved
}

// Build creates a graph from node specs and id pairs, weighting each edge by
// Euclidean distance. It panics on an illegal edge so broken fixtures fail loudly.
func Build(nodes []Spec, edges [][2]string) *domain.Graph {
	g := domain.NewGraph()
	for _, s := range nodes {
		n := domain.NewNode(s.ID, s.Kind, s.X, s.Y)
		if s.Floor != "" {
			n.SetFloor(s.Floor)
			n.Seeded = true
		}
		g.AddNode(n)
	}
	for _, e := range edges {
		a, _ := g.Node(e[0])
		b, _ := g.Node(e[1])
		if a == nil || b == nil {
			panic(fmt.Sprintf("graphtest: unknown node in edge %v", e))
		}
		if err := g.Connect(e[0], e[1], domain.EuclideanWeight(a, b)); err != nil {
			panic(fmt.Sprintf("graphtest: %v", err))
		}
	}
	return g
}

// Corridor is room_A (G) - waypoint_1 (G) - room_B (G), each hop weighing 5
func Corridor() *domain.Graph {
	return Build([]Spec{
		{ID: "room_A", Kind: domain.NodeKindRoom, X: 0, Y: 0, Floor: "G"},
		{ID: "waypoint_1", Kind: domain.NodeKindWaypoint, X: 5, Y: 0, Floor: "G"},
		{ID: "room_B", Kind: domain.NodeKindRoom, X: 10, Y: 0, Floor: "G"},
	}, [][2]string{{"room_A", "waypoint_1"}, {"waypoint_1", "room_B"}})
}

// TwoFloors is room_A - waypoint_1 - stair_X_G on G joined to
// stair_X_1 - waypoint_2 - room_B on floor 1
func TwoFloors() *domain.Graph {
	return Build([]Spec{
		{ID: "room_A", Kind: domain.NodeKindRoom, X: 0, Y: 0, Floor: "G"},
		{ID: "waypoint_1", Kind: domain.NodeKindWaypoint, X: 10, Y: 0, Floor: "G"},
		{ID: "stair_X_G", Kind: domain.NodeKindVerticalTransit, X: 20, Y: 0, Floor: "G"},
		{ID: "stair_X_1", Kind: domain.NodeKindVerticalTransit, X: 20, Y: 2, Floor: "1"},
		{ID: "waypoint_2", Kind: domain.NodeKindWaypoint, X: 10, Y: 2, Floor: "1"},
		{ID: "room_B", Kind: domain.NodeKindRoom, X: 0, Y: 2, Floor: "1"},
	}, [][2]string{
		{"room_A", "waypoint_1"},
		{"waypoint_1", "stair_X_G"},
		{"stair_X_G", "stair_X_1"},
		{"stair_X_1", "waypoint_2"},
		{"waypoint_2", "room_B"},
	})
}

// Floors used by Random
var Floors = []domain.FloorID{"G", "1"}

// Random builds a connected-or-not graph of 2..maxNodes nodes from seed.
//
// Kinds, floors and edges are random, but every edge is legal: no room-room
// edges, and floors differ across an edge only when one end is vertical
// transit. Some nodes keep an unresolved floor. Edge weights are at least the
// Euclidean distance so the A* heuristic stays admissible.
func Random(seed int64, maxNodes int) *domain.Graph {
	r := rand.New(rand.NewSource(seed))
	if maxNodes < 2 {
		maxNodes = 2
	}
	n := 2 + r.Intn(maxNodes-1)
	g := domain.NewGraph()
	for i := 0; i < n; i++ {
		kind := domain.NodeKindWaypoint
		switch k := r.Intn(4); {
		case k == 0:
			kind = domain.NodeKindRoom
		case k == 1:
			kind = domain.NodeKindVerticalTransit
		}
		node := domain.NewNode(fmt.Sprintf("n%02d", i), kind, float64(r.Intn(50)), float64(r.Intn(50)))
		if r.Intn(10) > 0 {
			node.SetFloor(Floors[r.Intn(len(Floors))])
			node.Seeded = true
		}
		g.AddNode(node)
	}

	nodes := g.Nodes()
	density := 0.2 + r.Float64()*0.4
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.Float64() > density {
				continue
			}
			a, b := nodes[i], nodes[j]
			if a.IsRoom() && b.IsRoom() {
				continue
			}
			if !domain.FloorChangeAllowed(a, b) {
				continue
			}
			w := domain.EuclideanWeight(a, b) * (1 + r.Float64()*0.5)
			_ = g.Connect(a.ID, b.ID, w)
		}
	}
	return g
}

// RandomEndpoints picks two distinct node ids, preferring rooms
func RandomEndpoints(g *domain.Graph, seed int64) (string, string) {
	r := rand.New(rand.NewSource(seed))
	pool := g.Rooms()
	if len(pool) < 2 {
		pool = g.Nodes()
	}
	i := r.Intn(len(pool))
	j := r.Intn(len(pool) - 1)
	if j >= i {
		j++
	}
	return pool[i].ID, pool[j].ID
}

// BruteForce returns the minimum route weight from start to goal over every
// simple path that obeys the room and floor rules, or +Inf if none exists.
func BruteForce(g *domain.Graph, start, goal string) float64 {
	best := math.Inf(1)
	visited := map[string]bool{start: true}
	var walk func(id string, cost float64)
	walk = func(id string, cost float64) {
		if cost >= best {
			return
		}
		if id == goal {
			best = cost
			return
		}
		cur, _ := g.Node(id)
		for _, e := range cur.Edges {
			if visited[e.To] {
				continue
			}
			next, ok := g.Node(e.To)
			if !ok {
				continue
			}
			if next.IsRoom() && e.To != goal {
				continue
			}
			if !domain.FloorChangeAllowed(cur, next) {
				continue
			}
			visited[e.To] = true
			walk(e.To, cost+e.Weight)
			visited[e.To] = false
		}
	}
	walk(start, 0)
	return best
}

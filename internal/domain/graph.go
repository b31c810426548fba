package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Graph is the building navigation graph.
//
// A Graph is mutated only while it is being built and resolved. Once handed to
// searches it must be treated as read-only; rebuilds produce a new Graph.
type Graph struct {
	ID      string    `json:"id"`
	BuiltAt time.Time `json:"built_at"`

	nodes map[string]*Node
	order []string // insertion order for deterministic iteration
	edges int
}

// NewGraph creates an empty graph with a fresh version id
func NewGraph() *Graph {
	return &Graph{
		ID:      uuid.NewString(),
		BuiltAt: time.Now(),
		nodes:   make(map[string]*Node),
	}
}

// AddNode inserts a node. It returns false if a node with the same id exists.
func (g *Graph) AddNode(n *Node) bool {
	if _, exists := g.nodes[n.ID]; exists {
		return false
	}
	if n.Edges == nil {
		n.Edges = make([]Edge, 0, 4)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return true
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns nodes in insertion order
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesOfKind returns nodes of the given kind in insertion order
func (g *Graph) NodesOfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Rooms returns all room nodes
func (g *Graph) Rooms() []*Node {
	return g.NodesOfKind(NodeKindRoom)
}

// HasEdge reports whether a and b are connected
func (g *Graph) HasEdge(a, b string) bool {
	n, ok := g.nodes[a]
	if !ok {
		return false
	}
	_, ok = n.EdgeTo(b)
	return ok
}

// Connect inserts an undirected edge between a and b with weight w.
// Both adjacency lists are updated so the graph stays symmetric.
func (g *Graph) Connect(a, b string, w float64) error {
	na, okA := g.nodes[a]
	nb, okB := g.nodes[b]
	switch {
	case !okA || !okB:
		return &ConnectError{From: a, To: b, Reason: RejectUnknownNode}
	case a == b:
		return &ConnectError{From: a, To: b, Reason: RejectSelfLoop}
	case w < 0 || math.IsNaN(w) || math.IsInf(w, 0):
		return &ConnectError{From: a, To: b, Reason: RejectBadWeight}
	case na.IsRoom() && nb.IsRoom():
		return &ConnectError{From: a, To: b, Reason: RejectRoomToRoom}
	}
	if _, dup := na.EdgeTo(b); dup {
		return &ConnectError{From: a, To: b, Reason: RejectDuplicate}
	}
	na.Edges = append(na.Edges, Edge{To: b, Weight: w})
	nb.Edges = append(nb.Edges, Edge{To: a, Weight: w})
	g.edges++
	return nil
}

// RouteWeight sums the edge weights along ids.
// It returns an error if two consecutive ids are not connected.
func (g *Graph) RouteWeight(ids []string) (float64, error) {
	total := 0.0
	for i := 0; i+1 < len(ids); i++ {
		n, ok := g.nodes[ids[i]]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrNodeNotFound, ids[i])
		}
		e, ok := n.EdgeTo(ids[i+1])
		if !ok {
			return 0, fmt.Errorf("no edge %s-%s", ids[i], ids[i+1])
		}
		total += e.Weight
	}
	return total, nil
}

// Violation describes a broken graph invariant
type Violation struct {
	Code    DiagnosticCode `json:"code"`
	From    string         `json:"from"`
	To      string         `json:"to"`
	Message string         `json:"message"`
}

// Validate checks edge symmetry, the room adjacency rule and floor legality.
// It returns every violation found, ordered by node insertion order.
func (g *Graph) Validate() []Violation {
	var out []Violation
	seen := make(map[string]bool)
	for _, id := range g.order {
		n := g.nodes[id]
		for _, e := range n.Edges {
			other, ok := g.nodes[e.To]
			if !ok {
				out = append(out, Violation{Code: CodeDanglingConnection, From: id, To: e.To,
					Message: "edge points at an unknown node"})
				continue
			}
			back, ok := other.EdgeTo(id)
			if !ok || back.Weight != e.Weight {
				out = append(out, Violation{Code: CodeAsymmetricEdge, From: id, To: e.To,
					Message: "edge has no matching reverse edge"})
			}
			key := EdgeKey(id, e.To)
			if seen[key] {
				continue
			}
			seen[key] = true
			if n.IsRoom() && other.IsRoom() {
				out = append(out, Violation{Code: CodeRoomToRoom, From: id, To: e.To,
					Message: "rooms must connect through a waypoint"})
			}
			if !FloorChangeAllowed(n, other) {
				fa, _ := n.FloorValue()
				fb, _ := other.FloorValue()
				out = append(out, Violation{Code: CodeFloorConflict, From: id, To: e.To,
					Message: fmt.Sprintf("floor %s to %s without vertical transit", fa, fb)})
			}
		}
	}
	return out
}

// Floors returns the distinct resolved floors present in the graph, ordered by o
func (g *Graph) Floors(o FloorOrder) []FloorID {
	set := make(map[FloorID]bool)
	for _, n := range g.nodes {
		if f, ok := n.FloorValue(); ok {
			set[f] = true
		}
	}
	out := make([]FloorID, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return o.Less(out[i], out[j]) })
	return out
}

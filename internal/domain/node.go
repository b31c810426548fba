package domain

import "strings"

// NodeKind represents the role a node plays in routing
type NodeKind string

const (
	NodeKindWaypoint        NodeKind = "waypoint"         // Pure routing point, never a destination
	NodeKindRoom            NodeKind = "room"             // Named, selectable destination
	NodeKindVerticalTransit NodeKind = "vertical_transit" // Stair or lift landing
)

// ParseNodeKind converts a string to a NodeKind.
// The authoring tokens used by hand-written floor data (nav_path, nav_room,
// nav_stair, nav_lift) are accepted as aliases.
func ParseNodeKind(s string) (NodeKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "waypoint", "nav_path", "path", "junction":
		return NodeKindWaypoint, true
	case "room", "nav_room":
		return NodeKindRoom, true
	case "vertical_transit", "stair", "lift", "nav_stair", "nav_lift":
		return NodeKindVerticalTransit, true
	default:
		return "", false
	}
}

// Valid reports whether k is one of the known kinds
func (k NodeKind) Valid() bool {
	switch k {
	case NodeKindWaypoint, NodeKindRoom, NodeKindVerticalTransit:
		return true
	}
	return false
}

// FloorID identifies a floor ("G", "1", "2", ...)
type FloorID string

// Node is a routing point in the building graph
type Node struct {
	ID    string   `json:"id"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Kind  NodeKind `json:"kind"`
	Label string   `json:"label,omitempty"`

	// Floor is nil until resolved
	Floor *FloorID `json:"floor"`

	// Seeded marks a floor that came from explicit metadata rather than propagation.
	// Seeded floors are authoritative and never overwritten.
	Seeded bool `json:"seeded,omitempty"`

	Edges []Edge `json:"edges"`
}

// NewNode creates a new node with an unresolved floor
func NewNode(id string, kind NodeKind, x, y float64) *Node {
	return &Node{
		ID:    id,
		X:     x,
		Y:     y,
		Kind:  kind,
		Edges: make([]Edge, 0, 4),
	}
}

// IsRoom reports whether the node is a selectable destination
func (n *Node) IsRoom() bool { return n.Kind == NodeKindRoom }

// IsVerticalTransit reports whether the node is a stair or lift landing
func (n *Node) IsVerticalTransit() bool { return n.Kind == NodeKindVerticalTransit }

// FloorKnown reports whether the node's floor has been resolved
func (n *Node) FloorKnown() bool { return n.Floor != nil }

// FloorValue returns the resolved floor and whether it is known
func (n *Node) FloorValue() (FloorID, bool) {
	if n.Floor == nil {
		return "", false
	}
	return *n.Floor, true
}

// SetFloor assigns a floor to the node
func (n *Node) SetFloor(f FloorID) {
	n.Floor = &f
}

// Point returns the node's coordinates
func (n *Node) Point() Point {
	return Point{X: n.X, Y: n.Y}
}

// EdgeTo returns the edge to the given neighbor, if any
func (n *Node) EdgeTo(id string) (Edge, bool) {
	for _, e := range n.Edges {
		if e.To == id {
			return e, true
		}
	}
	return Edge{}, false
}

// SameFloor reports whether two nodes are on the same known floor.
// The second result is false when either floor is unresolved.
func SameFloor(a, b *Node) (same bool, known bool) {
	fa, okA := a.FloorValue()
	fb, okB := b.FloorValue()
	if !okA || !okB {
		return false, false
	}
	return fa == fb, true
}

// FloorChangeAllowed reports whether moving between a and b is legal with respect
// to floors: either the floors match, one is unknown, or one end is a
// vertical-transit node.
func FloorChangeAllowed(a, b *Node) bool {
	same, known := SameFloor(a, b)
	if !known || same {
		return true
	}
	return a.IsVerticalTransit() || b.IsVerticalTransit()
}

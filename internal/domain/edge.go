package domain

import (
	"fmt"
	"math"
)

// Edge is one direction of an undirected, weighted connection
type Edge struct {
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// RejectReason explains why a connection was not inserted
type RejectReason string

const (
	RejectNone        RejectReason = ""
	RejectUnknownNode RejectReason = "unknown_node"
	RejectSelfLoop    RejectReason = "self_loop"
	RejectDuplicate   RejectReason = "duplicate"
	RejectRoomToRoom  RejectReason = "room_to_room"
	RejectBadWeight   RejectReason = "bad_weight"
)

// ConnectError is returned by Graph.Connect when a connection is refused
type ConnectError struct {
	From   string
	To     string
	Reason RejectReason
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s-%s: %s", e.From, e.To, e.Reason)
}

// EuclideanWeight returns the straight-line distance between two nodes.
// Coincident nodes get weight 1 so that zero-length hops still cost something.
func EuclideanWeight(a, b *Node) float64 {
	d := math.Hypot(b.X-a.X, b.Y-a.Y)
	if d == 0 {
		return 1
	}
	return d
}

// EdgeKey returns an order-independent key for an undirected edge
func EdgeKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

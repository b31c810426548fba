// Package segment splits a route into per-floor runs so each floor can be drawn
// on its own map.
package segment

import (
	"fmt"

	"indoornav/internal/domain"
)

// Window is how far the floor of an unresolved node is looked for, first ahead
// along the route and then behind
const Window = 3

// Split groups the route's nodes into maximal same-floor segments and records
// a transition at every floor change made through a vertical-transit node.
//
// A node with no resolved floor borrows one from the nearest node within
// Window ahead of it, then within Window behind it, and otherwise keeps the
// floor of the node before it. Every route node lands in exactly one segment.
func Split(g *domain.Graph, route domain.Route) ([]domain.PathSegment, []domain.Transition, error) {
	ids := route.NodeIDs
	nodes := make([]*domain.Node, len(ids))
	for i, id := range ids {
		n, ok := g.Node(id)
		if !ok {
			return nil, nil, fmt.Errorf("split route: %w: %s", domain.ErrNodeNotFound, id)
		}
		nodes[i] = n
	}
	if len(nodes) == 0 {
		return nil, nil, nil
	}

	floors := effectiveFloors(nodes)

	var segments []domain.PathSegment
	var transitions []domain.Transition
	cur := domain.PathSegment{Floor: floors[0]}

	for i, n := range nodes {
		if i > 0 && floors[i] != floors[i-1] {
			segments = append(segments, cur)
			prev := nodes[i-1]
			if prev.IsVerticalTransit() || n.IsVerticalTransit() {
				via := prev
				if !prev.IsVerticalTransit() {
					via = n
				}
				transitions = append(transitions, domain.Transition{
					FromFloor: floors[i-1],
					ToFloor:   floors[i],
					Via:       via.ID,
					To:        n.ID,
				})
			}
			cur = domain.PathSegment{Floor: floors[i]}
		}
		cur.NodeIDs = append(cur.NodeIDs, n.ID)
		cur.Points = append(cur.Points, n.Point())
	}
	segments = append(segments, cur)

	return segments, transitions, nil
}

// effectiveFloors returns the floor used for each node when segmenting
func effectiveFloors(nodes []*domain.Node) []domain.FloorID {
	out := make([]domain.FloorID, len(nodes))
	var last domain.FloorID
	for i, n := range nodes {
		if f, ok := n.FloorValue(); ok {
			out[i] = f
			last = f
			continue
		}
		if f, ok := borrowFloor(nodes, i); ok {
			out[i] = f
		} else {
			out[i] = last
		}
		last = out[i]
	}
	return out
}

func borrowFloor(nodes []*domain.Node, i int) (domain.FloorID, bool) {
	for j := i + 1; j < len(nodes) && j <= i+Window; j++ {
		if f, ok := nodes[j].FloorValue(); ok {
			return f, true
		}
	}
	for j := i - 1; j >= 0 && j >= i-Window; j-- {
		if f, ok := nodes[j].FloorValue(); ok {
			return f, true
		}
	}
	return "", false
}

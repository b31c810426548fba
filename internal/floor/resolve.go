// Package floor assigns floors to graph nodes that were not given one
// explicitly.
package floor

import (
	"cmp"
	"fmt"
	"slices"

	"indoornav/internal/domain"
)

// Stats summarises one resolution pass
type Stats struct {
	Seeds      int `json:"seeds"`
	FromSuffix int `json:"from_suffix"`
	Propagated int `json:"propagated"`
	Unresolved int `json:"unresolved"`
	Conflicts  int `json:"conflicts"`
}

// Resolve fills in missing floors by breadth-first propagation from every node
// whose floor is already known.
//
// Sources are visited lowest floor first, so a node equidistant from two floors
// takes the lower one. Floors never propagate across an edge joining two
// vertical-transit nodes, and known floors are never overwritten, so running
// Resolve again on its own output changes nothing. Nodes no source can reach
// keep a nil floor and are reported.
func Resolve(g *domain.Graph, order domain.FloorOrder, r domain.Reporter) Stats {
	var st Stats
	if len(order) == 0 {
		order = domain.DefaultFloorOrder
	}

	st.FromSuffix = seedFromSuffix(g, order)

	var sources []*domain.Node
	for _, n := range g.Nodes() {
		if n.FloorKnown() {
			sources = append(sources, n)
		}
	}
	st.Seeds = len(sources)

	slices.SortStableFunc(sources, func(a, b *domain.Node) int {
		fa, _ := a.FloorValue()
		fb, _ := b.FloorValue()
		if c := cmp.Compare(order.Rank(fa), order.Rank(fb)); c != 0 {
			return c
		}
		if c := cmp.Compare(fa, fb); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	queue := make([]*domain.Node, 0, g.Len())
	queue = append(queue, sources...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		f, _ := cur.FloorValue()

		for _, e := range cur.Edges {
			next, ok := g.Node(e.To)
			if !ok || next.FloorKnown() {
				continue
			}
			if cur.IsVerticalTransit() && next.IsVerticalTransit() {
				continue
			}
			next.SetFloor(f)
			st.Propagated++
			queue = append(queue, next)
		}
	}

	for _, n := range g.Nodes() {
		if !n.FloorKnown() {
			st.Unresolved++
			r.Report(domain.Diagnostic{
				Code:     domain.CodeUnresolvedFloor,
				Severity: domain.SeverityWarning,
				NodeID:   n.ID,
				Message:  "no floor could be inferred for node",
			})
		}
	}

	for _, v := range g.Validate() {
		if v.Code != domain.CodeFloorConflict {
			continue
		}
		st.Conflicts++
		r.Report(domain.Diagnostic{
			Code:     domain.CodeFloorConflict,
			Severity: domain.SeverityError,
			NodeID:   v.From,
			OtherID:  v.To,
			Message:  v.Message,
		})
	}

	return st
}

// seedFromSuffix is the last-resort fallback for legacy data that encodes a
// vertical-transit node's floor in its id (e.g. "nav_stair_1_G"). It only touches
// vertical-transit nodes with no explicit floor. An id ending in a bare stair
// index ("nav_stair_1") is seeded onto that floor whatever its neighbours say.
func seedFromSuffix(g *domain.Graph, order domain.FloorOrder) int {
	n := 0
	for _, node := range g.NodesOfKind(domain.NodeKindVerticalTransit) {
		if node.FloorKnown() {
			continue
		}
		if f, ok := domain.SuffixFloor(node.ID, order); ok {
			node.SetFloor(f)
			node.Seeded = true
			n++
		}
	}
	return n
}

// String renders the stats for log lines
func (s Stats) String() string {
	return fmt.Sprintf("seeds=%d suffix=%d propagated=%d unresolved=%d conflicts=%d",
		s.Seeds, s.FromSuffix, s.Propagated, s.Unresolved, s.Conflicts)
}

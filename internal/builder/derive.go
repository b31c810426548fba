package builder

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"indoornav/internal/domain"
	"indoornav/internal/geometry"
)

// Params bounds proximity linking in image-derived graphs
type Params struct {
	// MaxConnectionDistance is the furthest two waypoints may be and still be linked
	MaxConnectionDistance float64 `yaml:"max_connection_distance" json:"max_connection_distance" validate:"gt=0"`
	// MaxNeighbors is how many of the nearest waypoints each waypoint tries first
	MaxNeighbors int `yaml:"max_neighbors" json:"max_neighbors" validate:"gte=1"`
	// FallbackCandidates is how many further waypoints are tried when all nearest are walled off
	FallbackCandidates int `yaml:"fallback_candidates" json:"fallback_candidates" validate:"gte=0"`
	// RoomLinks is how many of the nearest waypoints a room tries to link to
	RoomLinks int `yaml:"room_links" json:"room_links" validate:"gte=1"`
	// RoomFallbackDistance bounds the search for a room whose nearest waypoints are all walled off
	RoomFallbackDistance float64 `yaml:"room_fallback_distance" json:"room_fallback_distance" validate:"gte=0"`
	// SampleInterval is the spacing used when testing edges against walls
	SampleInterval float64 `yaml:"sample_interval" json:"sample_interval" validate:"gt=0"`
}

// DefaultParams returns the linking bounds used for hand-annotated floor plans
func DefaultParams() Params {
	return Params{
		MaxConnectionDistance: 200,
		MaxNeighbors:          3,
		FallbackCandidates:    2,
		RoomLinks:             5,
		RoomFallbackDistance:  400,
		SampleInterval:        geometry.DefaultSampleInterval,
	}
}

// Validate checks the parameter bounds
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	return nil
}

type candidate struct {
	node *domain.Node
	dist float64
}

// Derive builds a graph from markers scanned out of floor plans.
//
// Explicit connections are inserted first. Then, per floor, every waypoint or
// vertical-transit marker is linked to its nearest peers within
// MaxConnectionDistance, and every room to its nearest peers, skipping any link
// that crosses a wall. Markers on different floors are never linked by
// proximity; inter-floor links must be explicit.
func Derive(markers []NodeDef, walls []geometry.Segment, explicit []ConnectionDef, p Params, opts ...Option) (*domain.Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("derive params: %w", err)
	}
	opts = append(opts, WithWalls(walls), WithSampleInterval(p.SampleInterval))
	o := newOptions(opts)

	g, err := addNodes(markers, o)
	if err != nil {
		return nil, err
	}

	for i := range explicit {
		def := &explicit[i]
		if err := def.Validate(); err != nil {
			o.reporter.Report(domain.Diagnostic{
				Code: domain.CodeInvalidDefinition, Severity: domain.SeverityWarning,
				NodeID: def.From, OtherID: def.To, Message: err.Error(),
			})
			continue
		}
		if !g.HasEdge(def.From, def.To) {
			connect(g, def.From, def.To, o)
		}
	}

	d := &deriver{g: g, p: p, o: o}
	for _, group := range groupByFloor(g) {
		d.linkPaths(group)
		d.linkRooms(group)
	}

	reportIsolated(g, o.reporter)

	o.logger.Debug("graph derived",
		slog.String("graph", g.ID),
		slog.Int("nodes", g.Len()),
		slog.Int("edges", g.EdgeCount()),
		slog.Int("walls", o.walls.Len()),
	)
	return g, nil
}

type deriver struct {
	g *domain.Graph
	p Params
	o *options
}

// link adds an edge unless it already exists. It reports whether the two nodes
// are connected afterwards.
func (d *deriver) link(a, b *domain.Node) bool {
	if d.g.HasEdge(a.ID, b.ID) {
		return true
	}
	return connect(d.g, a.ID, b.ID, d.o)
}

func (d *deriver) linkPaths(group []*domain.Node) {
	var paths []*domain.Node
	for _, n := range group {
		if !n.IsRoom() {
			paths = append(paths, n)
		}
	}
	for _, n := range paths {
		near := nearest(n, paths, d.p.MaxConnectionDistance)
		connected := 0
		for i := 0; i < len(near) && i < d.p.MaxNeighbors; i++ {
			if d.link(n, near[i].node) {
				connected++
			}
		}
		if connected > 0 {
			continue
		}
		end := min(len(near), d.p.MaxNeighbors+d.p.FallbackCandidates)
		for i := d.p.MaxNeighbors; i < end; i++ {
			if d.link(n, near[i].node) {
				d.o.logger.Debug("fallback link", slog.String("from", n.ID), slog.String("to", near[i].node.ID))
				break
			}
		}
	}
}

func (d *deriver) linkRooms(group []*domain.Node) {
	var paths, rooms []*domain.Node
	for _, n := range group {
		if n.IsRoom() {
			rooms = append(rooms, n)
		} else {
			paths = append(paths, n)
		}
	}
	if len(paths) == 0 {
		return
	}
	for _, r := range rooms {
		near := nearest(r, paths, d.p.RoomFallbackDistance)
		all := nearest(r, paths, -1)
		connected := 0
		for i := 0; i < len(all) && i < d.p.RoomLinks; i++ {
			if d.link(r, all[i].node) {
				connected++
			}
		}
		if connected > 0 {
			continue
		}
		for i := d.p.RoomLinks; i < len(near); i++ {
			if d.link(r, near[i].node) {
				d.o.logger.Debug("fallback room link", slog.String("room", r.ID), slog.String("to", near[i].node.ID))
				break
			}
		}
	}
}

// nearest returns the nodes other than n within limit, closest first.
// A negative limit means unbounded.
func nearest(n *domain.Node, pool []*domain.Node, limit float64) []candidate {
	out := make([]candidate, 0, len(pool))
	for _, o := range pool {
		if o.ID == n.ID {
			continue
		}
		dist := geometry.Distance(point(n), point(o))
		if limit >= 0 && dist > limit {
			continue
		}
		out = append(out, candidate{node: o, dist: dist})
	}
	slices.SortFunc(out, func(a, b candidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.node.ID, b.node.ID)
	})
	return out
}

// groupByFloor partitions nodes by their explicit floor, preserving order.
// Nodes without a floor form their own group.
func groupByFloor(g *domain.Graph) [][]*domain.Node {
	index := make(map[domain.FloorID]int)
	var groups [][]*domain.Node
	for _, n := range g.Nodes() {
		f, _ := n.FloorValue()
		i, ok := index[f]
		if !ok {
			i = len(groups)
			index[f] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], n)
	}
	return groups
}

package builder

import (
	"errors"
	"fmt"
	"log/slog"

	"indoornav/internal/domain"
	"indoornav/internal/geometry"
)

// Option configures a build
type Option func(*options)

type options struct {
	reporter   domain.Reporter
	logger     *slog.Logger
	walls      *geometry.Walls
	floorWalls map[domain.FloorID]*geometry.Walls
	interval   float64
}

// WithReporter delivers construction diagnostics to r
func WithReporter(r domain.Reporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithLogger sets the logger used for the build summary
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWalls rejects any connection whose straight line crosses one of the walls
func WithWalls(walls []geometry.Segment) Option {
	return func(o *options) { o.walls = geometry.NewWalls(walls) }
}

// WithFloorWalls adds walls that only apply to connections between two nodes
// on floor f. Plans of different storeys share a coordinate space, so their
// walls must not prune each other's edges.
func WithFloorWalls(f domain.FloorID, walls []geometry.Segment) Option {
	return func(o *options) {
		if o.floorWalls == nil {
			o.floorWalls = make(map[domain.FloorID]*geometry.Walls)
		}
		o.floorWalls[f] = geometry.NewWalls(walls)
	}
}

// WithSampleInterval sets the spacing used when testing edges against walls
func WithSampleInterval(v float64) Option {
	return func(o *options) { o.interval = v }
}

func newOptions(opts []Option) *options {
	o := &options{interval: geometry.DefaultSampleInterval}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Build constructs a graph from node and connection definitions.
//
// Bad input never aborts the build: invalid or duplicate node definitions,
// dangling connections, self loops, duplicate edges, room-to-room links,
// floor changes away from vertical transit and wall-crossing links are
// reported and skipped. An error is returned only when no usable node remains.
// Floors are seeded from explicit definitions but not propagated; see package
// floor.
func Build(nodes []NodeDef, conns []ConnectionDef, opts ...Option) (*domain.Graph, error) {
	o := newOptions(opts)
	g, err := addNodes(nodes, o)
	if err != nil {
		return nil, err
	}

	accepted := 0
	for i := range conns {
		def := &conns[i]
		if err := def.Validate(); err != nil {
			o.reporter.Report(domain.Diagnostic{
				Code:     domain.CodeInvalidDefinition,
				Severity: domain.SeverityWarning,
				NodeID:   def.From,
				OtherID:  def.To,
				Message:  err.Error(),
			})
			continue
		}
		if connect(g, def.From, def.To, o) {
			accepted++
		}
	}

	reportIsolated(g, o.reporter)

	o.logger.Debug("graph built",
		slog.String("graph", g.ID),
		slog.Int("nodes", g.Len()),
		slog.Int("edges", g.EdgeCount()),
		slog.Int("connections", len(conns)),
		slog.Int("accepted", accepted),
	)
	return g, nil
}

// addNodes validates and inserts node definitions; the first of two equal ids wins
func addNodes(nodes []NodeDef, o *options) (*domain.Graph, error) {
	g := domain.NewGraph()
	for i := range nodes {
		def := &nodes[i]
		if err := def.Validate(); err != nil {
			o.reporter.Report(domain.Diagnostic{
				Code:     domain.CodeInvalidDefinition,
				Severity: domain.SeverityWarning,
				NodeID:   def.ID,
				Message:  err.Error(),
			})
			continue
		}
		if !g.AddNode(def.Node()) {
			o.reporter.Report(domain.Diagnostic{
				Code:     domain.CodeDuplicateNode,
				Severity: domain.SeverityWarning,
				NodeID:   def.ID,
				Message:  "duplicate node id, first definition kept",
			})
		}
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("%w: no usable nodes in %d definitions", domain.ErrInvalidDefinition, len(nodes))
	}
	return g, nil
}

// connect inserts a Euclidean-weighted edge, reporting why it was refused
func connect(g *domain.Graph, from, to string, o *options) bool {
	a, okA := g.Node(from)
	b, okB := g.Node(to)
	if okA && okB && from != to && o.crossesWall(a, b) {
		o.reporter.Report(domain.Diagnostic{
			Code:     domain.CodeWallCrossing,
			Severity: domain.SeverityInfo,
			NodeID:   from,
			OtherID:  to,
			Message:  "connection crosses a wall",
		})
		return false
	}

	if okA && okB && from != to && !domain.FloorChangeAllowed(a, b) {
		o.reporter.Report(domain.Diagnostic{
			Code:     domain.CodeFloorConflict,
			Severity: domain.SeverityWarning,
			NodeID:   from,
			OtherID:  to,
			Message:  "connection changes floor without vertical transit",
		})
		return false
	}

	var w float64
	if okA && okB {
		w = domain.EuclideanWeight(a, b)
	}
	err := g.Connect(from, to, w)
	if err == nil {
		return true
	}

	var ce *domain.ConnectError
	if !errors.As(err, &ce) {
		o.reporter.Report(domain.Diagnostic{
			Code: domain.CodeInvalidDefinition, Severity: domain.SeverityWarning,
			NodeID: from, OtherID: to, Message: err.Error(),
		})
		return false
	}
	d := domain.Diagnostic{NodeID: from, OtherID: to, Severity: domain.SeverityWarning}
	switch ce.Reason {
	case domain.RejectUnknownNode:
		d.Code = domain.CodeDanglingConnection
		d.Message = "connection references an undefined node"
	case domain.RejectSelfLoop:
		d.Code = domain.CodeSelfLoop
		d.Message = "connection joins a node to itself"
	case domain.RejectDuplicate:
		d.Code = domain.CodeDuplicateEdge
		d.Severity = domain.SeverityInfo
		d.Message = "duplicate connection skipped"
	case domain.RejectRoomToRoom:
		d.Code = domain.CodeRoomToRoom
		d.Message = "rooms must connect through a waypoint"
	default:
		d.Code = domain.CodeInvalidDefinition
		d.Message = err.Error()
	}
	o.reporter.Report(d)
	return false
}

func (o *options) crossesWall(a, b *domain.Node) bool {
	if o.walls.Len() > 0 && o.walls.Crosses(point(a), point(b), o.interval) {
		return true
	}
	fa, okA := a.FloorValue()
	fb, okB := b.FloorValue()
	if !okA || !okB || fa != fb {
		return false
	}
	w := o.floorWalls[fa]
	return w.Len() > 0 && w.Crosses(point(a), point(b), o.interval)
}

func reportIsolated(g *domain.Graph, r domain.Reporter) {
	for _, n := range g.Nodes() {
		if len(n.Edges) == 0 {
			r.Report(domain.Diagnostic{
				Code:     domain.CodeIsolatedNode,
				Severity: domain.SeverityWarning,
				NodeID:   n.ID,
				Message:  "node has no connections",
			})
		}
	}
}

func point(n *domain.Node) geometry.Point {
	return geometry.Point{n.X, n.Y}
}

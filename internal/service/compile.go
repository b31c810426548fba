package service

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"indoornav/internal/builder"
	"indoornav/internal/catalog"
	"indoornav/internal/codec"
	"indoornav/internal/domain"
	"indoornav/internal/floor"
	"indoornav/internal/loader"
)

// Snapshot is one immutable, searchable version of the building
type Snapshot struct {
	Graph       *domain.Graph
	Catalog     *catalog.Catalog
	Floors      []domain.FloorInfo
	Order       domain.FloorOrder
	Stats       floor.Stats
	Diagnostics []domain.Diagnostic
	Source      string
	// Files are the definition and floor plan paths the snapshot was built from
	Files []string
}

// GraphID returns the version id of the snapshot's graph
func (s *Snapshot) GraphID() string { return s.Graph.ID }

// Compile turns a loaded source into a snapshot: build or derive the graph,
// resolve floors, check invariants and assemble the room directory.
//
// Definitions with floor plans are derived, so that scanned markers get
// proximity links; plan walls only prune links on their own floor.
// Definitions without plans are built from their explicit connections alone.
func Compile(src *loader.Source, opts Options, r domain.Reporter, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var collected domain.Collector
	r = domain.Tee(collected.Reporter(), r)

	doc := src.Doc
	order := opts.Order
	if len(order) == 0 {
		order = doc.Order()
	}
	if len(order) == 0 {
		order = domain.DefaultFloorOrder
	}

	nodes := append([]builder.NodeDef(nil), doc.Nodes...)
	conns := append([]builder.ConnectionDef(nil), doc.Connections...)
	rooms := append([]catalog.Entry(nil), doc.Rooms...)
	bopts := []builder.Option{builder.WithReporter(r), builder.WithLogger(logger)}
	for _, p := range src.Plans {
		nodes = append(nodes, p.Markers...)
		conns = append(conns, p.Edges...)
		rooms = append(rooms, p.Rooms...)
		bopts = append(bopts, builder.WithFloorWalls(p.Floor, p.Walls))
	}

	var (
		g   *domain.Graph
		err error
	)
	if len(src.Plans) > 0 {
		g, err = builder.Derive(nodes, nil, conns, opts.Params, bopts...)
	} else {
		g, err = builder.Build(nodes, conns, bopts...)
	}
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	stats := floor.Resolve(g, order, r)

	// floor conflicts were already reported by the resolver
	for _, v := range g.Validate() {
		if v.Code == domain.CodeFloorConflict {
			continue
		}
		r.Report(domain.Diagnostic{
			Code:     v.Code,
			Severity: domain.SeverityError,
			NodeID:   v.From,
			OtherID:  v.To,
			Message:  v.Message,
		})
	}

	cat := catalog.New(knownRooms(g, rooms, r)).Merge(catalog.FromGraph(g))

	return &Snapshot{
		Graph:       g,
		Catalog:     cat,
		Floors:      floorInfo(doc.Floors, g, order),
		Order:       order,
		Stats:       stats,
		Diagnostics: collected.All(),
		Source:      src.Path,
		Files:       src.Files(),
	}, nil
}

// knownRooms drops directory entries that do not name a room node
func knownRooms(g *domain.Graph, entries []catalog.Entry, r domain.Reporter) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		n, ok := g.Node(e.RoomID)
		if !ok || !n.IsRoom() {
			r.Report(domain.Diagnostic{
				Code:     domain.CodeInvalidDefinition,
				Severity: domain.SeverityWarning,
				NodeID:   e.RoomID,
				Message:  fmt.Sprintf("room %q does not name a room node", e.Name),
			})
			continue
		}
		if e.Floor == "" {
			e.Floor, _ = n.FloorValue()
		}
		out = append(out, e)
	}
	return out
}

// floorInfo lists the authored floors, or failing that the floors the graph
// resolved to, ranked by order
func floorInfo(docs []codec.FloorDoc, g *domain.Graph, order domain.FloorOrder) []domain.FloorInfo {
	var out []domain.FloorInfo
	if len(docs) > 0 {
		for _, f := range docs {
			out = append(out, domain.FloorInfo{ID: f.ID, Rank: order.Rank(f.ID), Name: f.Name, Map: f.Map})
		}
	} else {
		for _, f := range g.Floors(order) {
			out = append(out, domain.FloorInfo{ID: f, Rank: order.Rank(f)})
		}
	}
	slices.SortStableFunc(out, func(a, b domain.FloorInfo) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

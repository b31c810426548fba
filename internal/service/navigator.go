package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"indoornav/internal/builder"
	"indoornav/internal/catalog"
	"indoornav/internal/domain"
	"indoornav/internal/floorplan"
	"indoornav/internal/loader"
	"indoornav/internal/pathfind"
	"indoornav/internal/repository"
	"indoornav/internal/segment"
)

// ErrNoRepository is returned for build history queries on a navigator without storage
var ErrNoRepository = errors.New("no repository configured")

// Options configures how a Navigator builds and searches
type Options struct {
	// Definition is the building definition file
	Definition string
	// Order overrides the floor order found in the definition
	Order domain.FloorOrder
	// Params bounds proximity linking for definitions with floor plans
	Params builder.Params
	// Plan configures floor plan scanning
	Plan floorplan.Options
	// IterationFactor bounds searches to this many selections per node
	IterationFactor int
	// MaxIterations, when positive, bounds searches absolutely and overrides IterationFactor
	MaxIterations int
	// KeepBuilds is how many build records are retained; 0 keeps all
	KeepBuilds int
}

// Recorder receives routing and rebuild measurements
type Recorder interface {
	RecordRoute(status string, duration time.Duration, iterations int)
	RecordRebuild(ok bool, nodes, edges int)
	RecordDiagnostic(code string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRoute(string, time.Duration, int) {}
func (nopRecorder) RecordRebuild(bool, int, int)           {}
func (nopRecorder) RecordDiagnostic(string)                {}

// RouteResponse is the answer to a route request
type RouteResponse struct {
	ID          string               `json:"id"`
	GraphID     string               `json:"graph_id"`
	From        catalog.Entry        `json:"from"`
	To          catalog.Entry        `json:"to"`
	Status      pathfind.Status      `json:"status"`
	Route       []string             `json:"route"`
	Distance    float64              `json:"distance"`
	Iterations  int                  `json:"iterations"`
	Segments    []domain.PathSegment `json:"segments"`
	Transitions []domain.Transition  `json:"transitions"`
}

// Found reports whether the response carries a route
func (r *RouteResponse) Found() bool { return r.Status == pathfind.StatusFound }

// Navigator serves routes from the current snapshot and replaces it on rebuild.
//
// Searches load the snapshot pointer once and never block on a rebuild; a
// rebuild compiles a complete new snapshot before swapping it in.
type Navigator struct {
	opts     Options
	repo     repository.Repository
	eventBus *EventBus
	recorder Recorder
	logger   *slog.Logger

	current   atomic.Pointer[Snapshot]
	rebuildMu sync.Mutex
	lastErr   atomic.Pointer[error]
}

// NavigatorOption configures optional Navigator collaborators
type NavigatorOption func(*Navigator)

// WithRepository persists the catalog, floors and build history on every rebuild
func WithRepository(repo repository.Repository) NavigatorOption {
	return func(n *Navigator) { n.repo = repo }
}

// WithEventBus publishes rebuild and routing events
func WithEventBus(bus *EventBus) NavigatorOption {
	return func(n *Navigator) { n.eventBus = bus }
}

// WithRecorder records metrics
func WithRecorder(r Recorder) NavigatorOption {
	return func(n *Navigator) { n.recorder = r }
}

// WithLogger sets the navigator's logger
func WithLogger(l *slog.Logger) NavigatorOption {
	return func(n *Navigator) { n.logger = l }
}

// NewNavigator creates a navigator with no graph. Call Rebuild before routing.
func NewNavigator(opts Options, options ...NavigatorOption) *Navigator {
	if opts.IterationFactor <= 0 {
		opts.IterationFactor = pathfind.DefaultIterationFactor
	}
	n := &Navigator{
		opts:     opts,
		recorder: nopRecorder{},
	}
	for _, o := range options {
		o(n)
	}
	if n.logger == nil {
		n.logger = slog.New(slog.DiscardHandler)
	}
	n.logger = n.logger.With(slog.String("component", "navigator"))
	return n
}

// Snapshot returns the current snapshot, or nil before the first build
func (n *Navigator) Snapshot() *Snapshot {
	return n.current.Load()
}

// Files returns the source files of the current snapshot, or just the
// definition before the first successful build
func (n *Navigator) Files() []string {
	if snap := n.current.Load(); snap != nil {
		return snap.Files
	}
	if n.opts.Definition == "" {
		return nil
	}
	return []string{n.opts.Definition}
}

// LastError returns the error of the most recent failed rebuild, or nil if the
// most recent rebuild succeeded
func (n *Navigator) LastError() error {
	if p := n.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Rebuild reloads the definition and its floor plans, compiles a new snapshot,
// persists it and swaps it in. On failure the previous snapshot stays active.
func (n *Navigator) Rebuild(ctx context.Context) (*Snapshot, error) {
	n.rebuildMu.Lock()
	defer n.rebuildMu.Unlock()

	start := time.Now()
	snap, err := n.rebuild(ctx)
	if err != nil {
		n.lastErr.Store(&err)
		n.recorder.RecordRebuild(false, 0, 0)
		n.logger.Error("rebuild failed", slog.String("definition", n.opts.Definition), slog.Any("error", err))
		n.eventBus.Publish(Event{
			Type:    EventRebuildFailed,
			Payload: map[string]string{"definition": n.opts.Definition, "error": err.Error()},
		})
		return nil, err
	}

	n.lastErr.Store(nil)
	n.recorder.RecordRebuild(true, snap.Graph.Len(), snap.Graph.EdgeCount())
	n.logger.Info("graph rebuilt",
		slog.String("graph", snap.GraphID()),
		slog.Int("nodes", snap.Graph.Len()),
		slog.Int("edges", snap.Graph.EdgeCount()),
		slog.Int("rooms", snap.Catalog.Len()),
		slog.Int("diagnostics", len(snap.Diagnostics)),
		slog.String("floors", snap.Stats.String()),
		slog.Duration("took", time.Since(start)),
	)
	n.eventBus.Publish(Event{
		Type: EventGraphRebuilt,
		Payload: map[string]any{
			"graph_id":    snap.GraphID(),
			"nodes":       snap.Graph.Len(),
			"edges":       snap.Graph.EdgeCount(),
			"rooms":       snap.Catalog.Len(),
			"diagnostics": len(snap.Diagnostics),
		},
	})
	return snap, nil
}

func (n *Navigator) rebuild(ctx context.Context) (*Snapshot, error) {
	if n.opts.Definition == "" {
		return nil, fmt.Errorf("no building definition configured")
	}
	src, err := loader.Load(n.opts.Definition, n.opts.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to load building: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := func(d domain.Diagnostic) { n.recorder.RecordDiagnostic(string(d.Code)) }
	snap, err := Compile(src, n.opts, domain.Tee(report, domain.LogReporter(n.logger)), n.logger)
	if err != nil {
		return nil, err
	}

	if err := n.persist(ctx, src, snap); err != nil {
		return nil, err
	}

	n.current.Store(snap)
	return snap, nil
}

func (n *Navigator) persist(ctx context.Context, src *loader.Source, snap *Snapshot) error {
	if n.repo == nil {
		return nil
	}
	if err := n.repo.ReplaceCatalog(ctx, snap.Catalog.Entries()); err != nil {
		return fmt.Errorf("failed to store catalog: %w", err)
	}
	if err := n.repo.SaveFloors(ctx, snap.Floors); err != nil {
		return fmt.Errorf("failed to store floors: %w", err)
	}

	doc, err := json.Marshal(src.Doc)
	if err != nil {
		return fmt.Errorf("failed to encode definition: %w", err)
	}
	rec := &domain.BuildRecord{
		GraphID:     snap.GraphID(),
		BuiltAt:     snap.Graph.BuiltAt,
		Source:      src.Path,
		Nodes:       snap.Graph.Len(),
		Edges:       snap.Graph.EdgeCount(),
		Unresolved:  snap.Stats.Unresolved,
		Diagnostics: snap.Diagnostics,
		Document:    doc,
	}
	if err := n.repo.SaveBuild(ctx, rec); err != nil {
		return fmt.Errorf("failed to store build: %w", err)
	}
	if n.opts.KeepBuilds > 0 {
		removed, err := n.repo.PruneBuilds(ctx, n.opts.KeepBuilds)
		if err != nil {
			return fmt.Errorf("failed to prune builds: %w", err)
		}
		if removed > 0 {
			n.logger.Debug("pruned build history", slog.Int64("removed", removed))
		}
	}
	return nil
}

// RouteOption narrows how a route request names its rooms
type RouteOption func(*routeQuery)

type routeQuery struct {
	fromFloor, toFloor domain.FloorID
}

// FromFloor looks the start room up on one floor only
func FromFloor(f domain.FloorID) RouteOption {
	return func(q *routeQuery) { q.fromFloor = f }
}

// ToFloor looks the destination room up on one floor only
func ToFloor(f domain.FloorID) RouteOption {
	return func(q *routeQuery) { q.toFloor = f }
}

// Route finds the shortest route between two rooms named by display name or
// room id. A search that finds nothing is not an error; the response status
// says why. Errors are returned for unknown rooms or when no graph is built.
func (n *Navigator) Route(ctx context.Context, from, to string, opts ...RouteOption) (*RouteResponse, error) {
	snap := n.current.Load()
	if snap == nil {
		return nil, domain.ErrNoGraph
	}
	var q routeQuery
	for _, o := range opts {
		o(&q)
	}
	src, err := snap.Catalog.Resolve(q.fromFloor, from)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	dst, err := snap.Catalog.Resolve(q.toFloor, to)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	findOpts := []pathfind.Option{
		pathfind.WithIterationFactor(n.opts.IterationFactor),
		pathfind.WithReporter(func(d domain.Diagnostic) { n.recorder.RecordDiagnostic(string(d.Code)) }),
	}
	if n.opts.MaxIterations > 0 {
		findOpts = append(findOpts, pathfind.WithMaxIterations(n.opts.MaxIterations))
	}
	start := time.Now()
	res := pathfind.Find(snap.Graph, src.RoomID, dst.RoomID, findOpts...)
	n.recorder.RecordRoute(string(res.Status), time.Since(start), res.Iterations)

	resp := &RouteResponse{
		ID:         uuid.NewString(),
		GraphID:    snap.GraphID(),
		From:       src,
		To:         dst,
		Status:     res.Status,
		Iterations: res.Iterations,
	}
	if !res.Found() {
		n.logger.Info("no route",
			slog.String("from", src.RoomID),
			slog.String("to", dst.RoomID),
			slog.String("status", string(res.Status)),
			slog.Int("iterations", res.Iterations),
		)
		n.eventBus.Publish(Event{
			Type: EventRouteNotFound,
			Payload: map[string]string{
				"route_id": resp.ID,
				"from":     src.RoomID,
				"to":       dst.RoomID,
				"status":   string(res.Status),
			},
		})
		return resp, nil
	}

	segments, transitions, err := segment.Split(snap.Graph, res.Route)
	if err != nil {
		return nil, err
	}
	resp.Route = res.Route.NodeIDs
	resp.Distance = res.Route.Distance
	resp.Segments = segments
	resp.Transitions = transitions
	return resp, nil
}

// Rooms returns the room directory, optionally limited to one floor. Before the
// first build it falls back to the directory stored by the previous run.
func (n *Navigator) Rooms(ctx context.Context, floor domain.FloorID) ([]catalog.Entry, error) {
	if snap := n.current.Load(); snap != nil {
		if floor == "" {
			return snap.Catalog.Entries(), nil
		}
		return snap.Catalog.Floor(floor), nil
	}
	if n.repo == nil {
		return nil, domain.ErrNoGraph
	}
	return n.repo.ListRooms(ctx, floor)
}

// NearestRoom returns the directory entry of the room closest to (x, y) in
// floor-plan units. An empty floor searches every floor.
func (n *Navigator) NearestRoom(ctx context.Context, floor domain.FloorID, x, y float64) (catalog.Entry, error) {
	snap := n.current.Load()
	if snap == nil {
		return catalog.Entry{}, domain.ErrNoGraph
	}
	id, ok := catalog.NearestRoom(snap.Graph, floor, x, y)
	if !ok {
		return catalog.Entry{}, fmt.Errorf("%w: none on floor %q", domain.ErrRoomNotFound, floor)
	}
	e, ok := snap.Catalog.ByRoom(id)
	if !ok {
		return catalog.Entry{}, fmt.Errorf("%w: %s is not in the directory", domain.ErrRoomNotFound, id)
	}
	return e, nil
}

// Floors returns the building's floors, falling back to storage before the first build
func (n *Navigator) Floors(ctx context.Context) ([]domain.FloorInfo, error) {
	if snap := n.current.Load(); snap != nil {
		return snap.Floors, nil
	}
	if n.repo == nil {
		return nil, domain.ErrNoGraph
	}
	return n.repo.ListFloors(ctx)
}

// Builds returns the recorded build history, newest first
func (n *Navigator) Builds(ctx context.Context, limit int) ([]domain.BuildRecord, error) {
	if n.repo == nil {
		return nil, ErrNoRepository
	}
	return n.repo.ListBuilds(ctx, limit)
}

// LatestBuild returns the newest recorded build including its definition, or nil
func (n *Navigator) LatestBuild(ctx context.Context) (*domain.BuildRecord, error) {
	if n.repo == nil {
		return nil, ErrNoRepository
	}
	return n.repo.LatestBuild(ctx)
}

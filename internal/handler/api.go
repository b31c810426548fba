package handler

import (
	"net/http"
	"strconv"
	"time"

	"indoornav/internal/catalog"
	"indoornav/internal/domain"
	"indoornav/internal/floor"
	"indoornav/internal/service"
)

// GetRoute finds a route between two rooms given by ?from= and ?to=.
// A search that finds nothing still answers 200; the body's status says why.
func (h *NavHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		h.writeError(w, "Invalid route request", "from and to are required", http.StatusBadRequest)
		return
	}

	// ?floor= qualifies both rooms; from_floor and to_floor override it per side
	q := r.URL.Query()
	fromFloor, toFloor := q.Get("floor"), q.Get("floor")
	if f := q.Get("from_floor"); f != "" {
		fromFloor = f
	}
	if f := q.Get("to_floor"); f != "" {
		toFloor = f
	}

	resp, err := h.nav.Route(r.Context(), from, to,
		service.FromFloor(domain.FloorID(fromFloor)), service.ToFloor(domain.FloorID(toFloor)))
	if err != nil {
		h.fail(w, r, "Failed to find route", err)
		return
	}

	h.writeJSON(w, resp, http.StatusOK)
}

// ListRooms returns the room directory, optionally filtered by ?floor=
func (h *NavHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.nav.Rooms(r.Context(), domain.FloorID(r.URL.Query().Get("floor")))
	if err != nil {
		h.fail(w, r, "Failed to list rooms", err)
		return
	}
	if rooms == nil {
		rooms = []catalog.Entry{}
	}

	h.writeJSON(w, rooms, http.StatusOK)
}

// NearestRoom returns the room closest to ?x=&y=, optionally limited to ?floor=
func (h *NavHandler) NearestRoom(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		h.writeError(w, "Invalid nearest room request", "x and y must be numbers", http.StatusBadRequest)
		return
	}

	room, err := h.nav.NearestRoom(r.Context(), domain.FloorID(q.Get("floor")), x, y)
	if err != nil {
		h.fail(w, r, "Failed to find nearest room", err)
		return
	}

	h.writeJSON(w, room, http.StatusOK)
}

// ListFloors returns the building's floors from the ground up
func (h *NavHandler) ListFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := h.nav.Floors(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list floors", err)
		return
	}
	if floors == nil {
		floors = []domain.FloorInfo{}
	}

	h.writeJSON(w, floors, http.StatusOK)
}

// GraphView is the active graph as served to map renderers
type GraphView struct {
	ID      string             `json:"id"`
	BuiltAt time.Time          `json:"built_at"`
	Nodes   []*domain.Node     `json:"nodes"`
	Edges   int                `json:"edges"`
	Floors  []domain.FloorInfo `json:"floors"`
}

// GetGraph returns the active graph, optionally limited to one ?floor=
func (h *NavHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap := h.nav.Snapshot()
	if snap == nil {
		h.fail(w, r, "No graph", domain.ErrNoGraph)
		return
	}

	want := domain.FloorID(r.URL.Query().Get("floor"))
	nodes := make([]*domain.Node, 0, snap.Graph.Len())
	for _, n := range snap.Graph.Nodes() {
		if want != "" {
			if f, ok := n.FloorValue(); !ok || f != want {
				continue
			}
		}
		nodes = append(nodes, n)
	}

	h.writeJSON(w, GraphView{
		ID:      snap.GraphID(),
		BuiltAt: snap.Graph.BuiltAt,
		Nodes:   nodes,
		Edges:   snap.Graph.EdgeCount(),
		Floors:  snap.Floors,
	}, http.StatusOK)
}

// DiagnosticsReport describes how the active graph was built
type DiagnosticsReport struct {
	GraphID     string              `json:"graph_id,omitempty"`
	Source      string              `json:"source,omitempty"`
	Floors      floor.Stats         `json:"floors"`
	Counts      map[string]int      `json:"counts"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
	LastError   string              `json:"last_error,omitempty"`
}

// GetDiagnostics returns the diagnostics of the active graph and the last rebuild error
func (h *NavHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	report := DiagnosticsReport{
		Counts:      map[string]int{},
		Diagnostics: []domain.Diagnostic{},
	}
	if err := h.nav.LastError(); err != nil {
		report.LastError = err.Error()
	}
	if snap := h.nav.Snapshot(); snap != nil {
		report.GraphID = snap.GraphID()
		report.Source = snap.Source
		report.Floors = snap.Stats
		if code := r.URL.Query().Get("code"); code != "" {
			for _, d := range snap.Diagnostics {
				if string(d.Code) == code {
					report.Diagnostics = append(report.Diagnostics, d)
				}
			}
		} else {
			report.Diagnostics = append(report.Diagnostics, snap.Diagnostics...)
		}
		for _, d := range snap.Diagnostics {
			report.Counts[string(d.Code)]++
		}
	}

	h.writeJSON(w, report, http.StatusOK)
}

// RebuildResponse summarises a forced rebuild
type RebuildResponse struct {
	GraphID     string `json:"graph_id"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	Rooms       int    `json:"rooms"`
	Diagnostics int    `json:"diagnostics"`
}

// Rebuild reloads the building definition and swaps in the new graph
func (h *NavHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	snap, err := h.nav.Rebuild(r.Context())
	if err != nil {
		h.writeError(w, "Rebuild failed", err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.writeJSON(w, RebuildResponse{
		GraphID:     snap.GraphID(),
		Nodes:       snap.Graph.Len(),
		Edges:       snap.Graph.EdgeCount(),
		Rooms:       snap.Catalog.Len(),
		Diagnostics: len(snap.Diagnostics),
	}, http.StatusOK)
}

// ListBuilds returns the build history, newest first, limited by ?limit= (default 20)
func (h *NavHandler) ListBuilds(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	builds, err := h.nav.Builds(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "Failed to list builds", err)
		return
	}
	if builds == nil {
		builds = []domain.BuildRecord{}
	}

	h.writeJSON(w, builds, http.StatusOK)
}

// LatestBuild returns the newest build record including its definition
func (h *NavHandler) LatestBuild(w http.ResponseWriter, r *http.Request) {
	rec, err := h.nav.LatestBuild(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to get build", err)
		return
	}
	if rec == nil {
		h.writeError(w, "Not found", "no build recorded", http.StatusNotFound)
		return
	}

	h.writeJSON(w, rec, http.StatusOK)
}

// Health reports whether a graph is being served
func (h *NavHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.nav.Snapshot()
	if snap == nil {
		h.writeJSON(w, map[string]string{"status": "starting"}, http.StatusServiceUnavailable)
		return
	}
	h.writeJSON(w, map[string]any{
		"status": "ok",
		"graph":  snap.GraphID(),
		"nodes":  snap.Graph.Len(),
	}, http.StatusOK)
}

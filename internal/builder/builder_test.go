package builder

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indoornav/internal/domain"
	"indoornav/internal/geometry"
	"indoornav/internal/pathfind"
)

func TestBuildCorridor(t *testing.T) {
	g, err := Build([]NodeDef{
		{ID: "room_A", X: 0, Y: 0, Kind: "room", Floor: "G"},
		{ID: "waypoint_1", X: 5, Y: 0, Kind: "waypoint", Floor: "G"},
		{ID: "room_B", X: 10, Y: 0, Kind: "nav_room", Floor: "G"},
	}, []ConnectionDef{
		{From: "room_A", To: "waypoint_1"},
		{From: "waypoint_1", To: "room_B"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.EdgeCount())

	a, _ := g.Node("room_A")
	e, ok := a.EdgeTo("waypoint_1")
	require.True(t, ok)
	assert.InDelta(t, 5, e.Weight, 1e-9)
	assert.True(t, a.Seeded)
	assert.Empty(t, g.Validate())
}

func TestBuildSkipsDanglingConnections(t *testing.T) {
	var c domain.Collector
	g, err := Build([]NodeDef{
		{ID: "room_A", X: 0, Y: 0, Kind: "room"},
		{ID: "wp_1", X: 3, Y: 4, Kind: "waypoint"},
		{ID: "room_B", X: 6, Y: 8, Kind: "room"},
	}, []ConnectionDef{
		{From: "room_A", To: "wp_1"},
		{From: "wp_1", To: "ghost"},
		{From: "wp_1", To: "room_B"},
	}, WithReporter(c.Reporter()))

	require.NoError(t, err)
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.HasEdge("room_A", "wp_1"))
	assert.True(t, g.HasEdge("wp_1", "room_B"))
	assert.Equal(t, 1, c.Count(domain.CodeDanglingConnection))

	res := pathfind.Find(g, "room_A", "room_B")
	assert.True(t, res.Found())
	assert.InDelta(t, 10, res.Route.Distance, 1e-9)
}

func TestBuildRejections(t *testing.T) {
	nodes := []NodeDef{
		{ID: "room_A", X: 0, Y: 0, Kind: "room", Floor: "G"},
		{ID: "room_B", X: 1, Y: 0, Kind: "room", Floor: "G"},
		{ID: "wp_G", X: 0, Y: 1, Kind: "waypoint", Floor: "G"},
		{ID: "wp_1", X: 0, Y: 2, Kind: "waypoint", Floor: "1"},
		{ID: "stair_G", X: 2, Y: 1, Kind: "stair", Floor: "G"},
	}

	tests := []struct {
		name string
		conn ConnectionDef
		code domain.DiagnosticCode
	}{
		{"room to room", ConnectionDef{From: "room_A", To: "room_B"}, domain.CodeRoomToRoom},
		{"self loop", ConnectionDef{From: "wp_G", To: "wp_G"}, domain.CodeSelfLoop},
		{"unknown endpoint", ConnectionDef{From: "ghost", To: "wp_G"}, domain.CodeDanglingConnection},
		{"floor change off stairs", ConnectionDef{From: "wp_G", To: "wp_1"}, domain.CodeFloorConflict},
		{"missing id", ConnectionDef{From: "wp_G"}, domain.CodeInvalidDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c domain.Collector
			g, err := Build(nodes, []ConnectionDef{tt.conn}, WithReporter(c.Reporter()))
			require.NoError(t, err)
			assert.Zero(t, g.EdgeCount())
			assert.Equal(t, 1, c.Count(tt.code))
		})
	}

	t.Run("stair may change floor", func(t *testing.T) {
		g, err := Build(nodes, []ConnectionDef{{From: "stair_G", To: "wp_1"}})
		require.NoError(t, err)
		assert.True(t, g.HasEdge("wp_1", "stair_G"))
	})
}

func TestBuildDuplicates(t *testing.T) {
	var c domain.Collector
	g, err := Build([]NodeDef{
		{ID: "wp_1", X: 0, Y: 0, Kind: "waypoint"},
		{ID: "wp_1", X: 9, Y: 9, Kind: "room"},
		{ID: "wp_2", X: 1, Y: 0, Kind: "waypoint"},
	}, []ConnectionDef{
		{From: "wp_1", To: "wp_2"},
		{From: "wp_2", To: "wp_1"},
	}, WithReporter(c.Reporter()))
	require.NoError(t, err)

	n, _ := g.Node("wp_1")
	assert.Equal(t, domain.NodeKindWaypoint, n.Kind, "first definition wins")
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1, c.Count(domain.CodeDuplicateNode))
	assert.Equal(t, 1, c.Count(domain.CodeDuplicateEdge))
}

func TestBuildInvalidNodes(t *testing.T) {
	var c domain.Collector
	g, err := Build([]NodeDef{
		{ID: "", X: 0, Y: 0, Kind: "waypoint"},
		{ID: "wp_bad", X: math.NaN(), Y: 0, Kind: "waypoint"},
		{ID: "wp_kind", X: 0, Y: 0, Kind: "escalator"},
		{ID: "wp_ok", X: 0, Y: 0, Kind: "waypoint"},
	}, nil, WithReporter(c.Reporter()))
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 3, c.Count(domain.CodeInvalidDefinition))
	assert.Equal(t, 1, c.Count(domain.CodeIsolatedNode))

	_, err = Build([]NodeDef{{ID: "x", Kind: "bogus"}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
}

func TestBuildWalls(t *testing.T) {
	var c domain.Collector
	wall := geometry.Seg(5, -5, 5, 5)
	g, err := Build([]NodeDef{
		{ID: "wp_a", X: 0, Y: 0, Kind: "waypoint"},
		{ID: "wp_b", X: 10, Y: 0, Kind: "waypoint"},
		{ID: "wp_c", X: 5, Y: 10, Kind: "waypoint"},
	}, []ConnectionDef{
		{From: "wp_a", To: "wp_b"},
		{From: "wp_a", To: "wp_c"},
		{From: "wp_c", To: "wp_b"},
	}, WithWalls([]geometry.Segment{wall}), WithReporter(c.Reporter()))
	require.NoError(t, err)

	assert.False(t, g.HasEdge("wp_a", "wp_b"))
	assert.True(t, g.HasEdge("wp_a", "wp_c"))
	assert.True(t, g.HasEdge("wp_c", "wp_b"))
	assert.Equal(t, 1, c.Count(domain.CodeWallCrossing))
}

func TestBuildFloorWalls(t *testing.T) {
	nodes := []NodeDef{
		{ID: "g_a", X: 0, Y: 0, Kind: "waypoint", Floor: "G"},
		{ID: "g_b", X: 10, Y: 0, Kind: "waypoint", Floor: "G"},
		{ID: "u_a", X: 0, Y: 0.5, Kind: "waypoint", Floor: "1"},
		{ID: "u_b", X: 10, Y: 0.5, Kind: "waypoint", Floor: "1"},
	}
	conns := []ConnectionDef{{From: "g_a", To: "g_b"}, {From: "u_a", To: "u_b"}}

	g, err := Build(nodes, conns, WithFloorWalls("G", []geometry.Segment{geometry.Seg(5, -5, 5, 5)}))
	require.NoError(t, err)
	assert.False(t, g.HasEdge("g_a", "g_b"))
	assert.True(t, g.HasEdge("u_a", "u_b"), "ground floor walls do not apply upstairs")
}

// wallPlan has a wall standing between wp_a and wp_b, with wp_c reachable from both
func wallPlan() ([]NodeDef, []geometry.Segment) {
	return []NodeDef{
			{ID: "room_A", X: 0, Y: 0, Kind: "room"},
			{ID: "wp_a", X: 5, Y: 0, Kind: "waypoint"},
			{ID: "wp_b", X: 15, Y: 0, Kind: "waypoint"},
			{ID: "wp_c", X: 10, Y: 10, Kind: "waypoint"},
			{ID: "room_B", X: 20, Y: 0, Kind: "room"},
		}, []geometry.Segment{
			geometry.Seg(10, -5, 10, 5),
		}
}

func TestDeriveWallPruning(t *testing.T) {
	markers, walls := wallPlan()
	var c domain.Collector

	g, err := Derive(markers, walls, nil, DefaultParams(), WithReporter(c.Reporter()))
	require.NoError(t, err)

	assert.False(t, g.HasEdge("wp_a", "wp_b"), "wp_a and wp_b are 10 apart but walled off")
	assert.True(t, g.HasEdge("wp_a", "wp_c"))
	assert.True(t, g.HasEdge("wp_c", "wp_b"))
	assert.Positive(t, c.Count(domain.CodeWallCrossing))
	assert.Empty(t, g.Validate())

	blocked := geometry.NewWalls(walls)
	for _, n := range g.Nodes() {
		for _, e := range n.Edges {
			other, _ := g.Node(e.To)
			assert.False(t, blocked.Crosses(point(n), point(other), geometry.DefaultSampleInterval),
				"edge %s-%s crosses a wall", n.ID, e.To)
		}
	}

	res := pathfind.Find(g, "room_A", "room_B")
	require.True(t, res.Found())
	assert.Contains(t, res.Route.NodeIDs, "wp_c")
	assert.Greater(t, res.Route.Distance, 20.0)
}

func TestDeriveFallback(t *testing.T) {
	// wp_0's three nearest peers are all behind the wall; the fourth is not
	walls := []geometry.Segment{geometry.Seg(5, -10, 5, 10)}
	markers := []NodeDef{
		{ID: "wp_0", X: 0, Y: 0, Kind: "waypoint"},
		{ID: "wp_1", X: 6, Y: 0, Kind: "waypoint"},
		{ID: "wp_2", X: 7, Y: 0, Kind: "waypoint"},
		{ID: "wp_3", X: 8, Y: 0, Kind: "waypoint"},
		{ID: "wp_4", X: 0, Y: 30, Kind: "waypoint"},
	}

	g, err := Derive(markers, walls, nil, DefaultParams())
	require.NoError(t, err)
	assert.True(t, g.HasEdge("wp_0", "wp_4"))
	assert.False(t, g.HasEdge("wp_0", "wp_1"))
}

func TestDeriveFloorsStayApart(t *testing.T) {
	markers := []NodeDef{
		{ID: "wp_G", X: 0, Y: 0, Kind: "waypoint", Floor: "G"},
		{ID: "stair_G", X: 5, Y: 0, Kind: "stair", Floor: "G"},
		{ID: "wp_1", X: 0, Y: 1, Kind: "waypoint", Floor: "1"},
		{ID: "stair_1", X: 5, Y: 1, Kind: "stair", Floor: "1"},
	}

	g, err := Derive(markers, nil, nil, DefaultParams())
	require.NoError(t, err)
	assert.False(t, g.HasEdge("wp_G", "wp_1"))
	assert.False(t, g.HasEdge("stair_G", "stair_1"))

	g, err = Derive(markers, nil, []ConnectionDef{{From: "stair_G", To: "stair_1"}}, DefaultParams())
	require.NoError(t, err)
	assert.True(t, g.HasEdge("stair_G", "stair_1"))
	assert.True(t, pathfind.Find(g, "wp_G", "wp_1").Found())
}

func TestDeriveRejectsBadParams(t *testing.T) {
	markers, walls := wallPlan()
	p := DefaultParams()
	p.MaxNeighbors = 0
	_, err := Derive(markers, walls, nil, p)
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
}

// genDefs draws node and connection definitions, including dangling ids,
// room pairs and cross-floor pairs the builder has to refuse
func genDefs(seed int64) ([]NodeDef, []ConnectionDef) {
	kinds := []string{"room", "waypoint", "waypoint", "stair"}
	floors := []string{"", "G", "1"}
	s := uint64(seed)
	next := func(n int) int {
		s = s*6364136223846793005 + 1442695040888963407
		return int((s >> 33) % uint64(n))
	}
	count := 2 + next(14)
	nodes := make([]NodeDef, count)
	for i := range nodes {
		nodes[i] = NodeDef{
			ID:    fmt.Sprintf("n%02d", i),
			X:     float64(next(100)),
			Y:     float64(next(100)),
			Kind:  kinds[next(len(kinds))],
			Floor: floors[next(len(floors))],
		}
	}
	conns := make([]ConnectionDef, 3*count)
	for i := range conns {
		conns[i] = ConnectionDef{
			From: fmt.Sprintf("n%02d", next(count+2)),
			To:   fmt.Sprintf("n%02d", next(count+2)),
		}
	}
	return nodes, conns
}

func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("built graphs satisfy every structural invariant", prop.ForAll(
		func(seed int64) bool {
			nodes, conns := genDefs(seed)
			g, err := Build(nodes, conns)
			if err != nil {
				return false
			}
			return len(g.Validate()) == 0
		},
		gen.Int64(),
	))

	properties.Property("derived graphs satisfy every structural invariant", prop.ForAll(
		func(seed int64) bool {
			nodes, conns := genDefs(seed)
			walls := []geometry.Segment{geometry.Seg(50, 0, 50, 60)}
			g, err := Derive(nodes, walls, conns, DefaultParams())
			if err != nil {
				return false
			}
			for _, n := range g.Nodes() {
				seen := make(map[string]bool)
				for _, e := range n.Edges {
					if seen[e.To] || e.To == n.ID {
						return false
					}
					seen[e.To] = true
				}
			}
			return len(g.Validate()) == 0
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

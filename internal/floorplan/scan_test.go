package floorplan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indoornav/internal/builder"
	"indoornav/internal/domain"
	"indoornav/internal/geometry"
	"indoornav/internal/pathfind"
)

const groundPlan = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100">
  <path id="building_outline" d="M 0 0 H 200 V 100 H 0 Z" fill="none"/>
  <path class="wall" d="M 100 0 V 40"/>
  <circle id="nav_room_A" cx="20" cy="20" r="2" data-name="Lab A"/>
  <circle id="nav_path_1" cx="50" cy="20" r="2"/>
  <circle id="nav_path_2" cx="50" cy="70" r="2"/>
  <circle id="nav_path_3" cx="150" cy="70" r="2"/>
  <circle id="nav_path_4" cx="150" cy="20" r="2"/>
  <circle id="nav_room_B" cx="180" cy="20" r="2"/>
  <circle id="nav_room_B" cx="1" cy="1" r="2"/>
  <rect id="nav_stair_1_G" x="95" y="80" width="10" height="10"/>
  <circle class="nav-node" data-id="lift_east" data-type="lift" cx="190" cy="90" r="1"/>
  <line class="nav-edge" data-from="nav_stair_1_G" data-to="nav_stair_1_1" x1="0" y1="0" x2="1" y2="1"/>
  <g id="room_A">
    <rect x="5" y="5" width="30" height="30"/>
    <text x="10" y="20">Lab <tspan>A</tspan></text>
  </g>
  <g id="office_PascaSiswazah" data-node="nav_room_B">
    <title>Graduate Office</title>
  </g>
</svg>`

func TestScanMarkers(t *testing.T) {
	plan, err := Scan(strings.NewReader(groundPlan), "G", Options{})
	require.NoError(t, err)

	assert.Equal(t, domain.FloorID("G"), plan.Floor)
	assert.InDelta(t, 200, plan.Bound.Right(), 1e-9)

	byID := make(map[string]builder.NodeDef)
	for _, m := range plan.Markers {
		byID[m.ID] = m
	}
	require.Len(t, plan.Markers, 8, "duplicate marker ids are dropped")

	a := byID["nav_room_A"]
	assert.Equal(t, "room", a.Kind)
	assert.Equal(t, "Lab A", a.Label)
	assert.Equal(t, "G", a.Floor)
	assert.InDelta(t, 20, a.X, 1e-9)

	b := byID["nav_room_B"]
	assert.InDelta(t, 180, b.X, 1e-9, "first marker with an id wins")

	stair := byID["nav_stair_1_G"]
	assert.Equal(t, string(domain.NodeKindVerticalTransit), stair.Kind)
	assert.InDelta(t, 100, stair.X, 1e-9)
	assert.InDelta(t, 85, stair.Y, 1e-9)

	lift, ok := byID["lift_east"]
	require.True(t, ok)
	assert.Equal(t, string(domain.NodeKindVerticalTransit), lift.Kind)

	assert.Equal(t, []builder.ConnectionDef{{From: "nav_stair_1_G", To: "nav_stair_1_1"}}, plan.Edges)
	assert.Len(t, plan.Walls, 5)
}

func TestScanRooms(t *testing.T) {
	plan, err := Scan(strings.NewReader(groundPlan), "G", Options{})
	require.NoError(t, err)
	require.Len(t, plan.Rooms, 2)

	assert.Equal(t, "Lab A", plan.Rooms[0].Name)
	assert.Equal(t, "nav_room_A", plan.Rooms[0].RoomID)
	assert.Equal(t, "Graduate Office", plan.Rooms[1].Name)
	assert.Equal(t, "nav_room_B", plan.Rooms[1].RoomID)
}

func TestScanDeriveRoute(t *testing.T) {
	plan, err := Scan(strings.NewReader(groundPlan), "G", Options{})
	require.NoError(t, err)

	var c domain.Collector
	g, err := builder.Derive(plan.Markers, plan.Walls, plan.Edges, builder.DefaultParams(), builder.WithReporter(c.Reporter()))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count(domain.CodeDanglingConnection))
	assert.False(t, g.HasEdge("nav_path_1", "nav_path_4"), "the partition wall separates them")

	res := pathfind.Find(g, "nav_room_A", "nav_room_B")
	require.True(t, res.Found())
	ids := res.Route.NodeIDs
	walls := geometry.NewWalls(plan.Walls)
	for i := 1; i < len(ids); i++ {
		a, _ := g.Node(ids[i-1])
		b, _ := g.Node(ids[i])
		assert.False(t, walls.Crosses(geometry.Point{a.X, a.Y}, geometry.Point{b.X, b.Y},
			geometry.DefaultSampleInterval), "%s-%s crosses a wall", a.ID, b.ID)
	}
}

func TestScanGuessesOutline(t *testing.T) {
	const svg = `<svg viewBox="0 0 100 100">
  <path d="M 0 0 H 100 V 100 H 0 Z" fill="#fff"/>
  <path d="M 10 10 H 90 V 90 H 10 Z"/>
  <path d="M 40 40 h 5 v 5 h -5 Z"/>
</svg>`
	plan, err := Scan(strings.NewReader(svg), "1", Options{})
	require.NoError(t, err)
	require.Len(t, plan.Walls, 4)
	assert.Equal(t, geometry.Seg(10, 10, 90, 10), plan.Walls[0])
}

func TestScanStairObstacles(t *testing.T) {
	const svg = `<svg viewBox="0 0 300 300">
  <polygon id="outline" points="0,0 300,0 300,300 0,300"/>
  <circle id="nav_room_X" cx="20" cy="20" r="3"/>
  <g id="stair_2">
    <path d="M 60 60 h 20 v 20 h -20 Z"/>
    <path d="M 15 15 h 12 v 12 h -12 Z"/>
    <path d="M 150 150 h 5 v 5 h -5 Z"/>
  </g>
</svg>`
	plan, err := Scan(strings.NewReader(svg), "2", Options{})
	require.NoError(t, err)
	assert.Len(t, plan.Walls, 8, "outline plus one stair obstacle")
}

func TestScanErrors(t *testing.T) {
	_, err := Scan(strings.NewReader(`<html><body/></html>`), "G", Options{})
	assert.Error(t, err)

	_, err = Scan(strings.NewReader(`<<svg>`), "G", Options{})
	assert.Error(t, err)

	_, err = ScanFile(filepath.Join(t.TempDir(), "missing.svg"), "G", Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ground.svg")
	require.NoError(t, os.WriteFile(path, []byte(groundPlan), 0o644))

	plan, err := ScanFile(path, "G", Options{CurveSteps: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, plan.Markers)
}

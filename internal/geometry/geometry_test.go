package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Segment
		want bool
	}{
		{"crossing", Seg(0, 0, 10, 10), Seg(0, 10, 10, 0), true},
		{"disjoint", Seg(0, 0, 1, 0), Seg(5, 5, 6, 6), false},
		{"parallel", Seg(0, 0, 10, 0), Seg(0, 1, 10, 1), false},
		{"collinear overlap is parallel", Seg(0, 0, 10, 0), Seg(5, 0, 15, 0), false},
		{"touching endpoint", Seg(0, 0, 5, 0), Seg(5, -5, 5, 5), true},
		{"just short of wall", Seg(0, 0, 4, 0), Seg(5, -5, 5, 5), false},
		{"within tolerance", Seg(0, 0, 4.99, 0), Seg(5, -5, 5, 5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersects(tt.a, tt.b))
			assert.Equal(t, tt.want, Intersects(tt.b, tt.a))
		})
	}
}

func TestWallsCrosses(t *testing.T) {
	wall := []Segment{Seg(50, 0, 50, 40)}
	walls := NewWalls(wall)

	assert.True(t, walls.Crosses(Point{0, 20}, Point{100, 20}, DefaultSampleInterval))
	assert.False(t, walls.Crosses(Point{0, 60}, Point{100, 60}, DefaultSampleInterval), "passes below the wall")
	assert.False(t, walls.Crosses(Point{0, 20}, Point{40, 20}, DefaultSampleInterval), "stops before the wall")
	assert.True(t, walls.Crosses(Point{0, 20}, Point{100, 20}, 0), "zero interval falls back to default")

	var empty *Walls
	assert.False(t, empty.Crosses(Point{0, 0}, Point{1, 1}, 5))
	assert.False(t, NewWalls(nil).Crosses(Point{0, 0}, Point{1, 1}, 5))
}

func TestParsePathData(t *testing.T) {
	t.Run("closed rectangle", func(t *testing.T) {
		segs := ParsePathData("M0 0 H10 V10 H0 Z", 0)
		require.Len(t, segs, 4)
		assert.Equal(t, Seg(0, 0, 10, 0), segs[0])
		assert.Equal(t, Seg(0, 10, 0, 0), segs[3])
	})

	t.Run("relative with implicit lineto", func(t *testing.T) {
		segs := ParsePathData("m10,10 5,0 0,5 l-5,0z", 0)
		require.Len(t, segs, 4)
		assert.Equal(t, Seg(10, 10, 15, 10), segs[0])
		assert.Equal(t, Seg(15, 10, 15, 15), segs[1])
		assert.Equal(t, Seg(15, 15, 10, 15), segs[2])
		assert.Equal(t, Seg(10, 15, 10, 10), segs[3])
	})

	t.Run("compact numbers", func(t *testing.T) {
		segs := ParsePathData("M-1.5-2L.5.5 1e1,0", 0)
		require.Len(t, segs, 2)
		assert.Equal(t, Seg(-1.5, -2, 0.5, 0.5), segs[0])
		assert.Equal(t, Seg(0.5, 0.5, 10, 0), segs[1])
	})

	t.Run("cubic curve is flattened", func(t *testing.T) {
		segs := ParsePathData("M0 0 C0 10 10 10 10 0", 4)
		require.Len(t, segs, 4)
		assert.Equal(t, Point{0, 0}, segs[0].A)
		assert.InDelta(t, 10, segs[3].B.X(), 1e-9)
		assert.InDelta(t, 0, segs[3].B.Y(), 1e-9)
		assert.InDelta(t, 7.5, segs[1].B.Y(), 1e-9, "curve midpoint")
	})

	t.Run("smooth and quadratic curves", func(t *testing.T) {
		segs := ParsePathData("M0 0 C0 10 10 10 10 0 S20 -10 20 0 Q25 10 30 0 T40 0", DefaultCurveSteps)
		assert.Len(t, segs, 4*DefaultCurveSteps)
		last := segs[len(segs)-1].B
		assert.InDelta(t, 40, last.X(), 1e-9)
		assert.InDelta(t, 0, last.Y(), 1e-9)
	})

	t.Run("arcs move without segments", func(t *testing.T) {
		segs := ParsePathData("M0 0 A5 5 0 0 1 10 0 L10 10", 0)
		require.Len(t, segs, 1)
		assert.Equal(t, Seg(10, 0, 10, 10), segs[0])
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ParsePathData("", 0))
	})
}

func TestParsePoints(t *testing.T) {
	segs := ParsePoints("0,0 10,0 10,10", true)
	require.Len(t, segs, 3)
	assert.Equal(t, Seg(10, 10, 0, 0), segs[2])

	open := ParsePoints("0,0 10,0 10,10", false)
	assert.Len(t, open, 2)

	assert.Nil(t, ParsePoints("5,5", true))
}

func TestNearest(t *testing.T) {
	pts := []Point{{10, 10}, {1, 1}, {5, 5}}
	assert.Equal(t, 1, Nearest(Point{0, 0}, pts))
	assert.Equal(t, -1, Nearest(Point{0, 0}, nil))
	assert.InDelta(t, 5, Distance(Point{0, 0}, Point{3, 4}), 1e-12)
}

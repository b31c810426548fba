// Package geometry provides the planar primitives used to keep navigation edges
// out of walls: segments, intersection tests and SVG path flattening.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a planar coordinate in floor-plan user space
type Point = orb.Point

const (
	// DefaultSampleInterval is the spacing used when sampling an edge against walls
	DefaultSampleInterval = 5.0
	// MinSamples is the minimum number of sub-segments an edge is split into
	MinSamples = 5

	parallelEpsilon = 0.0001
	paramLow        = -0.01
	paramHigh       = 1.01
)

// Segment is a straight line between two points
type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Seg is shorthand for building a segment from coordinates
func Seg(x1, y1, x2, y2 float64) Segment {
	return Segment{A: Point{x1, y1}, B: Point{x2, y2}}
}

// Length returns the segment length
func (s Segment) Length() float64 {
	return planar.Distance(s.A, s.B)
}

// Bound returns the axis-aligned bounding box of the segment
func (s Segment) Bound() orb.Bound {
	return s.A.Bound().Extend(s.B)
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return planar.Distance(a, b)
}

// Intersects reports whether two segments intersect.
// The parametric range is padded slightly so that edges grazing a wall end
// are treated as crossing. Parallel segments never intersect.
func Intersects(s1, s2 Segment) bool {
	x1, y1 := s1.A.X(), s1.A.Y()
	x2, y2 := s1.B.X(), s1.B.Y()
	x3, y3 := s2.A.X(), s2.A.Y()
	x4, y4 := s2.B.X(), s2.B.Y()

	denom := (y4-y3)*(x2-x1) - (x4-x3)*(y2-y1)
	if math.Abs(denom) < parallelEpsilon {
		return false
	}

	ua := ((x4-x3)*(y1-y3) - (y4-y3)*(x1-x3)) / denom
	ub := ((x2-x1)*(y1-y3) - (y2-y1)*(x1-x3)) / denom

	return ua >= paramLow && ua <= paramHigh && ub >= paramLow && ub <= paramHigh
}

// looseBound is the bounding box of everything Intersects can report for s
func (s Segment) looseBound() orb.Bound {
	return s.Bound().Pad((paramHigh-1)*s.Length() + parallelEpsilon)
}

// Walls is a set of wall segments with cached bounding boxes
type Walls struct {
	segs   []Segment
	bounds []orb.Bound
	bound  orb.Bound
}

// NewWalls indexes the given segments
func NewWalls(segs []Segment) *Walls {
	w := &Walls{segs: segs, bounds: make([]orb.Bound, len(segs))}
	for i, s := range segs {
		w.bounds[i] = s.looseBound()
		if i == 0 {
			w.bound = w.bounds[i]
			continue
		}
		w.bound = w.bound.Union(w.bounds[i])
	}
	return w
}

// Len returns the number of wall segments
func (w *Walls) Len() int {
	if w == nil {
		return 0
	}
	return len(w.segs)
}

// Segments returns the wall segments
func (w *Walls) Segments() []Segment {
	if w == nil {
		return nil
	}
	return w.segs
}

// Crosses reports whether the straight edge a-b crosses any wall.
//
// The edge is split into max(MinSamples, ceil(length/interval)) sub-segments and
// each one is tested against every wall whose bounding box it touches.
func (w *Walls) Crosses(a, b Point, interval float64) bool {
	if w.Len() == 0 {
		return false
	}
	edge := Segment{A: a, B: b}
	if !w.bound.Intersects(edge.looseBound()) {
		return false
	}
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	dx, dy := b.X()-a.X(), b.Y()-a.Y()
	n := int(math.Ceil(edge.Length() / interval))
	if n < MinSamples {
		n = MinSamples
	}

	prev := a
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		next := Point{a.X() + dx*t, a.Y() + dy*t}
		sub := Segment{A: prev, B: next}
		sb := sub.looseBound()
		for j, wall := range w.segs {
			if !sb.Intersects(w.bounds[j]) {
				continue
			}
			if Intersects(sub, wall) {
				return true
			}
		}
		prev = next
	}
	return false
}

// Nearest returns the index of the point in pts closest to p, or -1 if pts is empty
func Nearest(p Point, pts []Point) int {
	best := -1
	bestDist := math.Inf(1)
	for i, q := range pts {
		if d := planar.Distance(p, q); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

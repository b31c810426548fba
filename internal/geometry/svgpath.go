package geometry

import (
	"strconv"
	"unicode"
)

// DefaultCurveSteps is the number of line segments used per bezier curve
const DefaultCurveSteps = 10

// ParsePathData flattens an SVG path "d" attribute into line segments.
//
// Supported commands are M, L, H, V, C, S, Q, T and Z in absolute and relative
// form, including implicit repeats. Curves are approximated with curveSteps
// segments each. Arc commands are consumed but produce no segments.
func ParsePathData(d string, curveSteps int) []Segment {
	if curveSteps <= 0 {
		curveSteps = DefaultCurveSteps
	}
	p := &pathParser{steps: curveSteps}
	for _, c := range tokenizePath(d) {
		p.apply(c)
	}
	return p.out
}

type pathCommand struct {
	op   byte
	args []float64
}

type pathParser struct {
	steps int
	out   []Segment

	cur, start Point
	ctrl       Point // last control point, for S and T reflection
	last       byte  // previous command, upper-cased
}

func (p *pathParser) line(to Point) {
	p.out = append(p.out, Segment{A: p.cur, B: to})
	p.cur = to
}

func (p *pathParser) abs(rel bool, x, y float64) Point {
	if rel {
		return Point{p.cur.X() + x, p.cur.Y() + y}
	}
	return Point{x, y}
}

// reflect returns the control point mirrored around the current point, or the
// current point itself when the previous command was not of the given family.
func (p *pathParser) reflect(family ...byte) Point {
	for _, f := range family {
		if p.last == f {
			return Point{2*p.cur.X() - p.ctrl.X(), 2*p.cur.Y() - p.ctrl.Y()}
		}
	}
	return p.cur
}

func (p *pathParser) apply(c pathCommand) {
	rel := c.op >= 'a' && c.op <= 'z'
	op := byte(unicode.ToUpper(rune(c.op)))
	a := c.args

	switch op {
	case 'M':
		if len(a) < 2 {
			return
		}
		p.cur = p.abs(rel, a[0], a[1])
		p.start = p.cur
		for i := 2; i+1 < len(a); i += 2 {
			p.line(p.abs(rel, a[i], a[i+1]))
		}
	case 'L':
		for i := 0; i+1 < len(a); i += 2 {
			p.line(p.abs(rel, a[i], a[i+1]))
		}
	case 'H':
		for _, x := range a {
			if rel {
				x += p.cur.X()
			}
			p.line(Point{x, p.cur.Y()})
		}
	case 'V':
		for _, y := range a {
			if rel {
				y += p.cur.Y()
			}
			p.line(Point{p.cur.X(), y})
		}
	case 'C':
		for i := 0; i+5 < len(a); i += 6 {
			c1 := p.abs(rel, a[i], a[i+1])
			c2 := p.abs(rel, a[i+2], a[i+3])
			end := p.abs(rel, a[i+4], a[i+5])
			p.cubic(c1, c2, end)
			p.last = 'C'
		}
	case 'S':
		for i := 0; i+3 < len(a); i += 4 {
			c1 := p.reflect('C', 'S')
			c2 := p.abs(rel, a[i], a[i+1])
			end := p.abs(rel, a[i+2], a[i+3])
			p.cubic(c1, c2, end)
			p.last = 'S'
		}
	case 'Q':
		for i := 0; i+3 < len(a); i += 4 {
			c1 := p.abs(rel, a[i], a[i+1])
			end := p.abs(rel, a[i+2], a[i+3])
			p.quad(c1, end)
			p.last = 'Q'
		}
	case 'T':
		for i := 0; i+1 < len(a); i += 2 {
			c1 := p.reflect('Q', 'T')
			end := p.abs(rel, a[i], a[i+1])
			p.quad(c1, end)
			p.last = 'T'
		}
	case 'A':
		// rx ry rotation large-arc sweep x y; only the end point is tracked
		for i := 0; i+6 < len(a); i += 7 {
			p.cur = p.abs(rel, a[i+5], a[i+6])
		}
	case 'Z':
		if p.cur != p.start {
			p.line(p.start)
		}
		p.cur = p.start
	}
	p.last = op
}

func (p *pathParser) cubic(c1, c2, end Point) {
	p0 := p.cur
	for i := 1; i <= p.steps; i++ {
		t := float64(i) / float64(p.steps)
		u := 1 - t
		x := u*u*u*p0.X() + 3*u*u*t*c1.X() + 3*u*t*t*c2.X() + t*t*t*end.X()
		y := u*u*u*p0.Y() + 3*u*u*t*c1.Y() + 3*u*t*t*c2.Y() + t*t*t*end.Y()
		p.line(Point{x, y})
	}
	p.cur = end
	p.ctrl = c2
}

func (p *pathParser) quad(c1, end Point) {
	p0 := p.cur
	for i := 1; i <= p.steps; i++ {
		t := float64(i) / float64(p.steps)
		u := 1 - t
		x := u*u*p0.X() + 2*u*t*c1.X() + t*t*end.X()
		y := u*u*p0.Y() + 2*u*t*c1.Y() + t*t*end.Y()
		p.line(Point{x, y})
	}
	p.cur = end
	p.ctrl = c1
}

func isPathOp(r byte) bool {
	switch r {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

func tokenizePath(d string) []pathCommand {
	var cmds []pathCommand
	var cur *pathCommand
	s := &numScanner{src: d}
	for s.pos < len(d) {
		ch := d[s.pos]
		if isPathOp(ch) {
			cmds = append(cmds, pathCommand{op: ch})
			cur = &cmds[len(cmds)-1]
			s.pos++
			continue
		}
		before := s.pos
		v, ok := s.next()
		if !ok {
			if s.pos == before {
				s.pos++
			}
			continue
		}
		if cur != nil {
			cur.args = append(cur.args, v)
		}
	}
	return cmds
}

// ParseNumbers extracts every number from an attribute such as "points" or a
// path "d" string, ignoring letters and separators.
func ParseNumbers(s string) []float64 {
	var out []float64
	sc := &numScanner{src: s}
	for sc.pos < len(s) {
		before := sc.pos
		if v, ok := sc.next(); ok {
			out = append(out, v)
			continue
		}
		if sc.pos == before {
			sc.pos++
		}
	}
	return out
}

// ParsePoints converts a polygon/polyline "points" attribute into segments.
// When closed is true the last point is joined back to the first.
func ParsePoints(points string, closed bool) []Segment {
	nums := ParseNumbers(points)
	var pts []Point
	for i := 0; i+1 < len(nums); i += 2 {
		pts = append(pts, Point{nums[i], nums[i+1]})
	}
	if len(pts) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, Segment{A: pts[i], B: pts[i+1]})
	}
	if closed && pts[len(pts)-1] != pts[0] {
		segs = append(segs, Segment{A: pts[len(pts)-1], B: pts[0]})
	}
	return segs
}

// numScanner reads SVG number tokens: optional sign, digits, one decimal point
// and an optional exponent. "0.5.5" scans as 0.5 then .5.
type numScanner struct {
	src string
	pos int
}

func (s *numScanner) next() (float64, bool) {
	src := s.src
	i := s.pos
	for i < len(src) && (src[i] == ' ' || src[i] == ',' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	start := i
	if i < len(src) && (src[i] == '-' || src[i] == '+') {
		i++
	}
	digits := 0
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
		digits++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		s.pos = start
		return 0, false
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '-' || src[j] == '+') {
			j++
		}
		k := j
		for k < len(src) && src[k] >= '0' && src[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	v, err := strconv.ParseFloat(src[start:i], 64)
	if err != nil {
		s.pos = start
		return 0, false
	}
	s.pos = i
	return v, true
}

// Package floorplan reads navigation markers, walls and room labels out of an
// annotated SVG floor plan.
//
// Marker conventions:
//
//	id="nav_room_*"              room node
//	id="nav_path_*"              waypoint node
//	id="nav_stair_*", "nav_lift_*" vertical-transit node
//	class="nav-node"             node; kind from data-type, id from id or data-id
//	class="nav-edge"             explicit connection via data-from / data-to
//	<g id="room_*"> etc.         room label group; name from data-name, label path,
//	                             <text>, <title> or the id itself
//
// Walls come from paths, polygons and polylines whose id, class or data-type
// mentions "outline" or "wall". Transforms are not applied.
package floorplan

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"

	"indoornav/internal/builder"
	"indoornav/internal/catalog"
	"indoornav/internal/domain"
	"indoornav/internal/geometry"
)

const (
	// obstacleWallLimit is the wall count below which stair outlines are added as obstacles
	obstacleWallLimit = 50
	// doorwayRadius keeps obstacle outlines near a room marker out of the wall set
	doorwayRadius = 30
	// minObstacleSize is the smallest obstacle outline, in both dimensions
	minObstacleSize = 10
	// outlineAreaRatio excludes a background rectangle when guessing the outline
	outlineAreaRatio = 0.95
)

var roomGroupPrefixes = []string{"room_", "office_", "toilet_", "surau_", "cafe_", "stair_"}

// Options tunes scanning
type Options struct {
	// CurveSteps is the number of segments per bezier curve in wall outlines
	CurveSteps int
}

// Plan is everything extracted from one floor plan
type Plan struct {
	Floor   domain.FloorID
	Markers []builder.NodeDef
	Walls   []geometry.Segment
	Edges   []builder.ConnectionDef
	Rooms   []catalog.Entry
	Bound   orb.Bound
}

// ScanFile opens and scans an SVG file
func ScanFile(path string, floor domain.FloorID, opts Options) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open floor plan: %w", err)
	}
	defer f.Close()
	return Scan(f, floor, opts)
}

// Scan parses an SVG document
func Scan(r io.Reader, floor domain.FloorID, opts Options) (*Plan, error) {
	if opts.CurveSteps <= 0 {
		opts.CurveSteps = geometry.DefaultCurveSteps
	}
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse floor plan: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("failed to parse floor plan: root element is not <svg>")
	}

	s := &scanner{opts: opts, plan: &Plan{Floor: floor}, seen: make(map[string]bool)}
	s.plan.Bound = viewBox(root)

	all := root.FindElements("//*")
	for _, el := range all {
		s.marker(el)
	}
	for _, el := range all {
		s.edge(el)
		s.wall(el)
	}
	if len(s.plan.Walls) == 0 {
		s.guessOutline(all)
	}
	s.obstacles(all)
	for _, el := range all {
		s.room(el)
	}
	return s.plan, nil
}

type scanner struct {
	opts Options
	plan *Plan
	seen map[string]bool
}

func (s *scanner) marker(el *etree.Element) {
	id := el.SelectAttrValue("id", "")
	kind, ok := kindFromID(id)
	if !ok {
		if !hasClass(el, "nav-node") {
			return
		}
		if id == "" {
			id = el.SelectAttrValue("data-id", "")
		}
		if k, parsed := domain.ParseNodeKind(el.SelectAttrValue("data-type", "")); parsed {
			kind = k
		} else if k, fromID := kindFromID(id); fromID {
			kind = k
		} else {
			kind = domain.NodeKindWaypoint
		}
	}
	if id == "" || s.seen[id] {
		return
	}
	b, ok := s.bound(el)
	if !ok {
		return
	}
	c := b.Center()
	if c.X() == 0 && c.Y() == 0 {
		return
	}
	s.seen[id] = true
	s.plan.Markers = append(s.plan.Markers, builder.NodeDef{
		ID:    id,
		X:     c.X(),
		Y:     c.Y(),
		Kind:  string(kind),
		Floor: string(s.plan.Floor),
		Label: el.SelectAttrValue("data-name", ""),
	})
}

func (s *scanner) edge(el *etree.Element) {
	if !hasClass(el, "nav-edge") {
		return
	}
	from := el.SelectAttrValue("data-from", "")
	to := el.SelectAttrValue("data-to", "")
	if from == "" || to == "" {
		return
	}
	s.plan.Edges = append(s.plan.Edges, builder.ConnectionDef{From: from, To: to})
}

func (s *scanner) wall(el *etree.Element) {
	if !isWallLike(el) {
		return
	}
	switch el.Tag {
	case "path":
		s.plan.Walls = append(s.plan.Walls, geometry.ParsePathData(el.SelectAttrValue("d", ""), s.opts.CurveSteps)...)
	case "polygon":
		s.plan.Walls = append(s.plan.Walls, geometry.ParsePoints(el.SelectAttrValue("points", ""), true)...)
	case "polyline":
		s.plan.Walls = append(s.plan.Walls, geometry.ParsePoints(el.SelectAttrValue("points", ""), false)...)
	}
}

// guessOutline falls back to the largest path that is not a full-page background
func (s *scanner) guessOutline(all []*etree.Element) {
	page := area(s.plan.Bound)
	var best []geometry.Segment
	bestArea := 0.0
	for _, el := range all {
		if el.Tag != "path" {
			continue
		}
		segs := geometry.ParsePathData(el.SelectAttrValue("d", ""), s.opts.CurveSteps)
		a := area(segmentsBound(segs))
		if a > bestArea && (page == 0 || a < page*outlineAreaRatio) {
			best, bestArea = segs, a
		}
	}
	s.plan.Walls = append(s.plan.Walls, best...)
}

// obstacles adds stair outlines as walls when the outline alone is sparse.
// Outlines close to a room marker are treated as doorways and skipped.
func (s *scanner) obstacles(all []*etree.Element) {
	if len(s.plan.Walls) >= obstacleWallLimit {
		return
	}
	var rooms []geometry.Point
	for _, m := range s.plan.Markers {
		if k, _ := domain.ParseNodeKind(m.Kind); k == domain.NodeKindRoom {
			rooms = append(rooms, geometry.Point{m.X, m.Y})
		}
	}
	if len(rooms) == 0 {
		return
	}
	for _, g := range all {
		if g.Tag != "g" || !strings.HasPrefix(g.SelectAttrValue("id", ""), "stair_") {
			continue
		}
		for _, p := range g.FindElements(".//path") {
			segs := geometry.ParsePathData(p.SelectAttrValue("d", ""), s.opts.CurveSteps)
			b := segmentsBound(segs)
			if b.Right()-b.Left() < minObstacleSize || b.Top()-b.Bottom() < minObstacleSize {
				continue
			}
			if i := geometry.Nearest(b.Center(), rooms); i >= 0 && geometry.Distance(b.Center(), rooms[i]) < doorwayRadius {
				continue
			}
			s.plan.Walls = append(s.plan.Walls, segs...)
		}
	}
}

func (s *scanner) room(el *etree.Element) {
	if el.Tag != "g" {
		return
	}
	gid := el.SelectAttrValue("id", "")
	if !hasAnyPrefix(gid, roomGroupPrefixes) {
		return
	}
	nodeID := el.SelectAttrValue("data-node", "")
	if nodeID == "" {
		b, ok := s.bound(el)
		if !ok {
			return
		}
		nodeID = s.nearestRoomMarker(b.Center())
	}
	if nodeID == "" {
		return
	}
	s.plan.Rooms = append(s.plan.Rooms, catalog.Entry{
		Floor:  s.plan.Floor,
		Name:   roomName(el),
		RoomID: nodeID,
	})
}

func (s *scanner) nearestRoomMarker(c geometry.Point) string {
	var ids []string
	var pts []geometry.Point
	for _, m := range s.plan.Markers {
		if k, _ := domain.ParseNodeKind(m.Kind); k == domain.NodeKindRoom {
			ids = append(ids, m.ID)
			pts = append(pts, geometry.Point{m.X, m.Y})
		}
	}
	if i := geometry.Nearest(c, pts); i >= 0 {
		return ids[i]
	}
	return ""
}

// roomName picks the first available label for a room group
func roomName(g *etree.Element) string {
	if n := strings.TrimSpace(g.SelectAttrValue("data-name", "")); n != "" {
		return n
	}
	for _, p := range g.FindElements(".//path[@id]") {
		pid := p.SelectAttrValue("id", "")
		if strings.Contains(pid, "_shape") || strings.HasPrefix(pid, "room_") || strings.HasPrefix(pid, "office_") {
			continue
		}
		if n := strings.TrimSpace(strings.ReplaceAll(pid, "_", " ")); n != "" {
			return n
		}
	}
	if t := g.FindElement(".//text"); t != nil {
		if n := strings.TrimSpace(textContent(t)); n != "" {
			return n
		}
	}
	if t := g.FindElement(".//title"); t != nil {
		if n := strings.TrimSpace(t.Text()); n != "" {
			return n
		}
	}
	return catalog.DisplayName(g.SelectAttrValue("id", ""))
}

func textContent(el *etree.Element) string {
	var b strings.Builder
	b.WriteString(el.Text())
	for _, c := range el.ChildElements() {
		b.WriteString(textContent(c))
		b.WriteString(c.Tail())
	}
	return b.String()
}

// bound returns the bounding box of an element's geometry
func (s *scanner) bound(el *etree.Element) (orb.Bound, bool) {
	num := func(name string) float64 {
		v, _ := strconv.ParseFloat(strings.TrimSpace(el.SelectAttrValue(name, "0")), 64)
		return v
	}
	switch el.Tag {
	case "circle":
		cx, cy, r := num("cx"), num("cy"), num("r")
		return orb.Bound{Min: orb.Point{cx - r, cy - r}, Max: orb.Point{cx + r, cy + r}}, true
	case "ellipse":
		cx, cy, rx, ry := num("cx"), num("cy"), num("rx"), num("ry")
		return orb.Bound{Min: orb.Point{cx - rx, cy - ry}, Max: orb.Point{cx + rx, cy + ry}}, true
	case "rect", "image", "use":
		x, y := num("x"), num("y")
		return orb.Bound{Min: orb.Point{x, y}, Max: orb.Point{x + num("width"), y + num("height")}}, true
	case "line":
		return geometry.Seg(num("x1"), num("y1"), num("x2"), num("y2")).Bound(), true
	case "polygon", "polyline":
		segs := geometry.ParsePoints(el.SelectAttrValue("points", ""), false)
		if len(segs) == 0 {
			return orb.Bound{}, false
		}
		return segmentsBound(segs), true
	case "path":
		segs := geometry.ParsePathData(el.SelectAttrValue("d", ""), s.opts.CurveSteps)
		if len(segs) > 0 {
			return segmentsBound(segs), true
		}
		nums := geometry.ParseNumbers(el.SelectAttrValue("d", ""))
		if len(nums) < 2 {
			return orb.Bound{}, false
		}
		b := orb.Point{nums[0], nums[1]}.Bound()
		for i := 2; i+1 < len(nums); i += 2 {
			b = b.Extend(orb.Point{nums[i], nums[i+1]})
		}
		return b, true
	}

	var b orb.Bound
	found := false
	for _, c := range el.ChildElements() {
		cb, ok := s.bound(c)
		if !ok {
			continue
		}
		if !found {
			b, found = cb, true
			continue
		}
		b = b.Union(cb)
	}
	return b, found
}

func segmentsBound(segs []geometry.Segment) orb.Bound {
	if len(segs) == 0 {
		return orb.Bound{}
	}
	b := segs[0].Bound()
	for _, sg := range segs[1:] {
		b = b.Union(sg.Bound())
	}
	return b
}

func area(b orb.Bound) float64 {
	return (b.Right() - b.Left()) * (b.Top() - b.Bottom())
}

func viewBox(root *etree.Element) orb.Bound {
	nums := geometry.ParseNumbers(root.SelectAttrValue("viewBox", ""))
	if len(nums) == 4 {
		return orb.Bound{Min: orb.Point{nums[0], nums[1]}, Max: orb.Point{nums[0] + nums[2], nums[1] + nums[3]}}
	}
	w := geometry.ParseNumbers(root.SelectAttrValue("width", ""))
	h := geometry.ParseNumbers(root.SelectAttrValue("height", ""))
	if len(w) > 0 && len(h) > 0 {
		return orb.Bound{Max: orb.Point{w[0], h[0]}}
	}
	return orb.Bound{}
}

func kindFromID(id string) (domain.NodeKind, bool) {
	switch {
	case strings.HasPrefix(id, "nav_room_"):
		return domain.NodeKindRoom, true
	case strings.HasPrefix(id, "nav_path_"):
		return domain.NodeKindWaypoint, true
	case strings.HasPrefix(id, "nav_stair_"), strings.HasPrefix(id, "nav_lift_"):
		return domain.NodeKindVerticalTransit, true
	}
	return "", false
}

func isWallLike(el *etree.Element) bool {
	if el.Tag != "path" && el.Tag != "polygon" && el.Tag != "polyline" {
		return false
	}
	for _, attr := range []string{"id", "class", "data-type"} {
		v := strings.ToLower(el.SelectAttrValue(attr, ""))
		if strings.Contains(v, "outline") || strings.Contains(v, "wall") {
			return true
		}
	}
	return false
}

func hasClass(el *etree.Element, class string) bool {
	for _, c := range strings.Fields(el.SelectAttrValue("class", "")) {
		if c == class {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Package catalog maps human-readable room names to graph node ids.
package catalog

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"indoornav/internal/domain"
)

// Entry binds a display name on a floor to a room node
type Entry struct {
	Floor  domain.FloorID `json:"floor" yaml:"floor"`
	Name   string         `json:"name" yaml:"name"`
	RoomID string         `json:"room_id" yaml:"room_id"`
}

// Catalog is an immutable room directory keyed by floor and display name.
// Display names are unique within a floor; a name repeated on the same floor
// gets a " (n)" suffix in insertion order.
type Catalog struct {
	entries []Entry
	byName  map[nameKey]int
	byRoom  map[string]int
	sorted  []int // entry indexes by name, then insertion order
}

type nameKey struct {
	floor domain.FloorID
	name  string
}

// New builds a catalog. Entries without a room id are dropped, and a room id
// listed twice keeps its first entry.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		byName: make(map[nameKey]int, len(entries)),
		byRoom: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.RoomID == "" {
			continue
		}
		if _, dup := c.byRoom[e.RoomID]; dup {
			continue
		}
		base := strings.TrimSpace(e.Name)
		if base == "" {
			base = DisplayName(e.RoomID)
		}
		name := base
		for i := 2; ; i++ {
			if _, taken := c.byName[nameKey{e.Floor, name}]; !taken {
				break
			}
			name = fmt.Sprintf("%s (%d)", base, i)
		}
		e.Name = name
		c.byName[nameKey{e.Floor, name}] = len(c.entries)
		c.byRoom[e.RoomID] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	c.sorted = make([]int, len(c.entries))
	for i := range c.sorted {
		c.sorted[i] = i
	}
	sort.SliceStable(c.sorted, func(i, j int) bool {
		return lessName(c.entries[c.sorted[i]].Name, c.entries[c.sorted[j]].Name)
	})
	return c
}

// FromGraph builds a catalog from the room nodes of g, naming each by its label
// or, failing that, by its id
func FromGraph(g *domain.Graph) *Catalog {
	var entries []Entry
	for _, n := range g.Rooms() {
		f, _ := n.FloorValue()
		entries = append(entries, Entry{Floor: f, Name: n.Label, RoomID: n.ID})
	}
	return New(entries)
}

// Merge returns a catalog holding c's entries followed by any entries of other
// whose room is not yet listed
func (c *Catalog) Merge(other *Catalog) *Catalog {
	all := append(c.Entries(), other.Entries()...)
	return New(all)
}

// Len returns the number of entries
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of all entries in insertion order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Floor returns the entries on one floor, sorted by name
func (c *Catalog) Floor(f domain.FloorID) []Entry {
	var out []Entry
	for _, i := range c.sorted {
		if e := c.entries[i]; e.Floor == f {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds an entry by floor and exact display name
func (c *Catalog) Lookup(floor domain.FloorID, name string) (Entry, bool) {
	i, ok := c.byName[nameKey{floor, name}]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ByRoom finds the entry for a room node id
func (c *Catalog) ByRoom(id string) (Entry, bool) {
	i, ok := c.byRoom[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Resolve turns free-form user input into a catalog entry. An empty floor
// searches every floor. It tries, in order: exact display name,
// case-insensitive display name, case-insensitive substring of a display name,
// case-insensitive room id, and finally "room_" plus the upper-cased input as a
// room id. When a step matches on several floors the alphabetically first
// name wins, then the entry listed first.
func (c *Catalog) Resolve(floor domain.FloorID, input string) (Entry, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Entry{}, fmt.Errorf("%w: empty name", domain.ErrRoomNotFound)
	}
	if floor != "" {
		if e, ok := c.Lookup(floor, input); ok {
			return e, nil
		}
	}

	lower := strings.ToLower(input)
	matchers := []func(Entry) bool{
		func(e Entry) bool { return e.Name == input },
		func(e Entry) bool { return strings.ToLower(e.Name) == lower },
		func(e Entry) bool { return strings.Contains(strings.ToLower(e.Name), lower) },
		func(e Entry) bool { return strings.ToLower(e.RoomID) == lower },
		func(e Entry) bool { return e.RoomID == "room_"+strings.ToUpper(input) },
	}
	for _, match := range matchers {
		for _, i := range c.sorted {
			e := c.entries[i]
			if floor != "" && e.Floor != floor {
				continue
			}
			if match(e) {
				return e, nil
			}
		}
	}
	if floor != "" {
		return Entry{}, fmt.Errorf("%w: %q on floor %s", domain.ErrRoomNotFound, input, floor)
	}
	return Entry{}, fmt.Errorf("%w: %q", domain.ErrRoomNotFound, input)
}

var (
	roomPrefix  = regexp.MustCompile(`(?i)^(nav_room_|room_|office_|toilet_|surau_|cafe_|stair_)`)
	lowerUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	extraSpaces = regexp.MustCompile(`\s+`)
)

// DisplayName derives a readable name from a room id,
// e.g. "office_PascaSiswazah" -> "Pasca Siswazah", "room_BK_36" -> "BK 36".
func DisplayName(id string) string {
	name := roomPrefix.ReplaceAllString(id, "")
	name = lowerUpper.ReplaceAllString(name, "$1 $2")
	name = strings.ReplaceAll(name, "_", " ")
	name = extraSpaces.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return id
	}
	return name
}

// NearestRoom returns the room node closest to (x, y). When floor is non-empty
// only rooms on that floor are considered.
func NearestRoom(g *domain.Graph, floor domain.FloorID, x, y float64) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	for _, n := range g.Rooms() {
		if floor != "" {
			if f, ok := n.FloorValue(); !ok || f != floor {
				continue
			}
		}
		if d := math.Hypot(n.X-x, n.Y-y); d < bestDist {
			bestDist = d
			best = n.ID
		}
	}
	return best, best != ""
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

package domain

import "strings"

// DefaultFloorOrder is used when the building definition does not list floors
var DefaultFloorOrder = FloorOrder{"G", "1", "2"}

// FloorOrder lists floors from the ground up.
// Floors not in the list rank after all listed floors, then lexically.
type FloorOrder []FloorID

// Rank returns the position of f, or len(o) if f is not listed
func (o FloorOrder) Rank(f FloorID) int {
	for i, v := range o {
		if v == f {
			return i
		}
	}
	return len(o)
}

// Less reports whether a sorts before b
func (o FloorOrder) Less(a, b FloorID) bool {
	ra, rb := o.Rank(a), o.Rank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// Contains reports whether f is listed
func (o FloorOrder) Contains(f FloorID) bool {
	return o.Rank(f) < len(o)
}

// SuffixFloor infers a floor from a trailing "_<floor>" in a node id, e.g.
// "nav_stair_1_G" -> "G". It only matches floors listed in o and prefers the
// longest matching suffix.
//
// This is a fallback for legacy data that encodes floors in ids. Explicit floor
// metadata always takes precedence. The suffix cannot tell a floor from a
// stair index: a ground-floor "nav_stair_1" reads as floor "1", so transit
// nodes named that way need an explicit floor.
func SuffixFloor(id string, o FloorOrder) (FloorID, bool) {
	var best FloorID
	found := false
	for _, f := range o {
		if f == "" {
			continue
		}
		if strings.HasSuffix(id, "_"+string(f)) && len(f) >= len(best) {
			best = f
			found = true
		}
	}
	return best, found
}

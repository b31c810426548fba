package domain

import "errors"

var (
	// ErrNodeNotFound is returned when a node id is not in the graph
	ErrNodeNotFound = errors.New("node not found")
	// ErrRoomNotFound is returned when a room name or id cannot be resolved
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidDefinition is returned for malformed node or connection definitions
	ErrInvalidDefinition = errors.New("invalid definition")
	// ErrNoGraph is returned when no graph has been built yet
	ErrNoGraph = errors.New("graph not built")
)

// Route is an ordered node sequence from a start room to an end room.
// Consecutive ids are always joined by a graph edge.
type Route struct {
	NodeIDs  []string `json:"node_ids"`
	Distance float64  `json:"distance"`
}

// PathSegment is a maximal run of route nodes on one floor
type PathSegment struct {
	Floor   FloorID  `json:"floor"`
	NodeIDs []string `json:"node_ids"`
	Points  []Point  `json:"points"`
}

// Transition records a floor change along a route.
// Via is the vertical-transit node the traveller leaves from and To is the
// vertical-transit node they arrive at.
type Transition struct {
	FromFloor FloorID `json:"from_floor"`
	ToFloor   FloorID `json:"to_floor"`
	Via       string  `json:"via"`
	To        string  `json:"to"`
}

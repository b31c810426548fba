package domain

import (
	"encoding/json"
	"time"
)

// FloorInfo describes one floor of the building as served to clients
type FloorInfo struct {
	ID   FloorID `json:"id"`
	Rank int     `json:"rank"`
	Name string  `json:"name,omitempty"`
	Map  string  `json:"map,omitempty"`
}

// BuildRecord summarises one graph build for persistence and auditing
type BuildRecord struct {
	GraphID     string          `json:"graph_id"`
	BuiltAt     time.Time       `json:"built_at"`
	Source      string          `json:"source"`
	Nodes       int             `json:"nodes"`
	Edges       int             `json:"edges"`
	Unresolved  int             `json:"unresolved"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
}

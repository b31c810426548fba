// Package service implements the navigation server's business logic.
//
// # Navigator
//
// Navigator owns the active Snapshot: the resolved graph, the room directory
// and the floor list. Rebuild loads the building definition and its floor
// plans, compiles a new snapshot, stores the directory and a build record, and
// swaps the snapshot in atomically. Route requests read whichever snapshot is
// current and never wait for a rebuild.
//
// Compile is the pure part of a rebuild and is shared with the offline
// navcheck tool.
//
// # Event System
//
// The navigator publishes events via EventBus for real-time updates to
// connected clients via Server-Sent Events (SSE): graph_rebuilt,
// rebuild_failed and route_not_found.
package service

// Package domain defines the core types for indoor multi-floor navigation.
//
// This package contains the graph model that every other package operates on,
// plus the immutable value objects produced by a navigation request.
//
// # Core Types
//
// Node is a point in a building: a corridor waypoint, a selectable room, or a
// vertical-transit point (stair or lift landing). Only vertical-transit nodes may
// join nodes on different floors.
//
// Edge is one half of an undirected, weighted connection. Graph keeps both halves
// in sync so that edges are always symmetric.
//
// Graph is the adjacency structure built once per building definition and then
// treated as read-only by searches.
//
// # Route Types
//
// Route is the ordered node sequence returned by a search. PathSegment and
// Transition are derived from a Route so that each floor can be drawn on its own.
//
// # Diagnostics
//
// Construction, floor resolution and search report non-fatal problems as
// Diagnostic values through a Reporter callback instead of a shared console.
//
// # Coordinates
//
// X and Y are plain floating-point numbers in the floor-plan's user space
// (typically SVG pixels). No transform is applied here; presentation layers map
// them to screen space.
package domain

// Package handler implements the HTTP API of the navigation server.
//
// # Routes
//
//	GET  /api/route?from=&to=        shortest route between two rooms; floor,
//	                                 from_floor and to_floor narrow the lookup
//	GET  /api/rooms[?floor=]         room directory
//	GET  /api/rooms/nearest?x=&y=    room closest to a map point[, &floor=]
//	GET  /api/floors                 floors from the ground up
//	GET  /api/graph[?floor=]         active graph for map rendering
//	GET  /api/graph/diagnostics      build diagnostics and last rebuild error
//	POST /api/graph/rebuild          reload the building definition
//	GET  /api/graph/builds[?limit=]  build history
//	GET  /api/graph/builds/latest    newest build with its definition
//	GET  /healthz                    readiness
//	GET  /metrics                    Prometheus metrics
//	GET  /events                     Server-Sent Events
//
// # Response Format
//
// Success responses return JSON data. Error responses return JSON with an
// {error, details} structure. Unknown rooms answer 404 and requests made
// before the first graph build answer 503. A route search that finds nothing
// is not an error: it answers 200 with status not_found or iteration_cap.
package handler

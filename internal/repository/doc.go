// Package repository defines the data access interfaces for the navigation server.
//
// The graph itself is rebuilt from the building definition on every start and
// is never read back from storage. What is persisted is what clients and
// operators look at between rebuilds:
//
//   - the room directory, so room search works before the first build finishes
//   - the floor list with its map assets
//   - a history of builds with their diagnostics and the resolved graph
//
// # SQLite Implementation
//
// The sqlite subpackage implements Repository on modernc.org/sqlite in WAL
// mode. Catalog and floor writes replace the whole set in one transaction.
//
// # Testing
//
// The sqlite repository is tested with in-memory databases.
package repository

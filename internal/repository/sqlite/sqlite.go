package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"indoornav/internal/catalog"
	"indoornav/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dbPath, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS floors (
		id TEXT PRIMARY KEY,
		rank INTEGER NOT NULL,
		name TEXT,
		map_asset TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rooms (
		room_id TEXT PRIMARY KEY,
		floor TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS builds (
		graph_id TEXT PRIMARY KEY,
		built_at DATETIME NOT NULL,
		source TEXT NOT NULL,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		unresolved INTEGER NOT NULL DEFAULT 0,
		diagnostics JSON,
		document JSON
	);

	DROP INDEX IF EXISTS idx_rooms_name;
	CREATE INDEX IF NOT EXISTS idx_rooms_floor ON rooms(floor);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_rooms_floor_name ON rooms(floor, name);
	CREATE INDEX IF NOT EXISTS idx_builds_built_at ON builds(built_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ReplaceCatalog swaps the stored room directory for entries
func (r *Repository) ReplaceCatalog(ctx context.Context, entries []catalog.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
		return fmt.Errorf("failed to clear rooms: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rooms (room_id, floor, name, position, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.RoomID, string(e.Floor), e.Name, i); err != nil {
			return fmt.Errorf("failed to insert room %s: %w", e.RoomID, err)
		}
	}

	return tx.Commit()
}

// ListRooms returns the stored room directory in catalog order.
// An empty floor lists every floor.
func (r *Repository) ListRooms(ctx context.Context, floor domain.FloorID) ([]catalog.Entry, error) {
	query := `SELECT room_id, floor, name FROM rooms`
	var args []any
	if floor != "" {
		query += ` WHERE floor = ?`
		args = append(args, string(floor))
	}
	query += ` ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var e catalog.Entry
		var f string
		if err := rows.Scan(&e.RoomID, &f, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		e.Floor = domain.FloorID(f)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return entries, nil
}

// SaveFloors replaces the stored floor list
func (r *Repository) SaveFloors(ctx context.Context, floors []domain.FloorInfo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM floors`); err != nil {
		return fmt.Errorf("failed to clear floors: %w", err)
	}
	for _, f := range floors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO floors (id, rank, name, map_asset, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, string(f.ID), f.Rank, stringToNull(f.Name), stringToNull(f.Map))
		if err != nil {
			return fmt.Errorf("failed to insert floor %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// ListFloors returns the stored floors ordered by rank
func (r *Repository) ListFloors(ctx context.Context) ([]domain.FloorInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, rank, name, map_asset FROM floors ORDER BY rank, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query floors: %w", err)
	}
	defer rows.Close()

	var floors []domain.FloorInfo
	for rows.Next() {
		var (
			id          string
			rank        int
			name, asset sql.NullString
		)
		if err := rows.Scan(&id, &rank, &name, &asset); err != nil {
			return nil, fmt.Errorf("failed to scan floor: %w", err)
		}
		floors = append(floors, domain.FloorInfo{
			ID:   domain.FloorID(id),
			Rank: rank,
			Name: nullToString(name),
			Map:  nullToString(asset),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating floors: %w", err)
	}
	return floors, nil
}

// SaveBuild records a completed graph build
func (r *Repository) SaveBuild(ctx context.Context, rec *domain.BuildRecord) error {
	diags, err := marshalToNull(rec.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}
	doc := sql.NullString{}
	if len(rec.Document) > 0 {
		doc = sql.NullString{String: string(rec.Document), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO builds (graph_id, built_at, source, node_count, edge_count, unresolved, diagnostics, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(graph_id) DO UPDATE SET
			built_at = excluded.built_at,
			source = excluded.source,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			unresolved = excluded.unresolved,
			diagnostics = excluded.diagnostics,
			document = excluded.document
	`, rec.GraphID, rec.BuiltAt.UTC(), rec.Source, rec.Nodes, rec.Edges, rec.Unresolved, diags, doc)
	if err != nil {
		return fmt.Errorf("failed to save build: %w", err)
	}
	return nil
}

// LatestBuild returns the most recent build, or nil if none is stored
func (r *Repository) LatestBuild(ctx context.Context) (*domain.BuildRecord, error) {
	builds, err := r.queryBuilds(ctx, true, 1)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, nil
	}
	return &builds[0], nil
}

// ListBuilds returns up to limit builds, newest first, without their documents
func (r *Repository) ListBuilds(ctx context.Context, limit int) ([]domain.BuildRecord, error) {
	return r.queryBuilds(ctx, false, limit)
}

func (r *Repository) queryBuilds(ctx context.Context, withDocument bool, limit int) ([]domain.BuildRecord, error) {
	docCol := "NULL"
	if withDocument {
		docCol = "document"
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT graph_id, built_at, source, node_count, edge_count, unresolved, diagnostics, `+docCol+`
		FROM builds
		ORDER BY built_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var out []domain.BuildRecord
	for rows.Next() {
		row := buildRow{}
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating builds: %w", err)
	}
	return out, nil
}

// PruneBuilds deletes all but the newest keep builds and returns how many were removed
func (r *Repository) PruneBuilds(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM builds WHERE graph_id NOT IN (
			SELECT graph_id FROM builds ORDER BY built_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune builds: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

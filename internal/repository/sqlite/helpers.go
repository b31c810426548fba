package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"

	"indoornav/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals interface to nullable JSON string.
// Returns empty NullString for nil values and empty slices or maps.
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.Len() == 0 {
			return sql.NullString{}, nil
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return sql.NullString{}, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Build Row Scanner
// ============================================================================
//
// Column order must match between the SELECT in queryBuilds and scanArgs.

// buildRow holds all columns from a builds query for scanning
type buildRow struct {
	GraphID         string
	BuiltAt         sql.NullTime
	Source          string
	NodeCount       int
	EdgeCount       int
	Unresolved      int
	DiagnosticsJSON sql.NullString
	DocumentJSON    sql.NullString
}

// scanArgs returns pointers for rows.Scan
func (r *buildRow) scanArgs() []any {
	return []any{
		&r.GraphID,
		&r.BuiltAt,
		&r.Source,
		&r.NodeCount,
		&r.EdgeCount,
		&r.Unresolved,
		&r.DiagnosticsJSON,
		&r.DocumentJSON,
	}
}

// toDomain converts the row into a BuildRecord
func (r *buildRow) toDomain() (*domain.BuildRecord, error) {
	rec := &domain.BuildRecord{
		GraphID:    r.GraphID,
		Source:     r.Source,
		Nodes:      r.NodeCount,
		Edges:      r.EdgeCount,
		Unresolved: r.Unresolved,
	}
	if r.BuiltAt.Valid {
		rec.BuiltAt = r.BuiltAt.Time
	}
	if err := unmarshalJSONField(r.DiagnosticsJSON, &rec.Diagnostics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagnostics for build %s: %w", r.GraphID, err)
	}
	if r.DocumentJSON.Valid && r.DocumentJSON.String != "" {
		rec.Document = json.RawMessage(r.DocumentJSON.String)
	}
	return rec, nil
}

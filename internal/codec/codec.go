// Package codec reads and writes building definition documents.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"indoornav/internal/builder"
	"indoornav/internal/catalog"
	"indoornav/internal/domain"
)

// BuildingDoc is a complete authored building: floors, routing nodes,
// connections between them and the room directory.
type BuildingDoc struct {
	Name        string                  `yaml:"name,omitempty" json:"name,omitempty"`
	Floors      []FloorDoc              `yaml:"floors,omitempty" json:"floors,omitempty"`
	Nodes       []builder.NodeDef       `yaml:"nodes" json:"nodes"`
	Connections []builder.ConnectionDef `yaml:"connections" json:"connections"`
	Rooms       []catalog.Entry         `yaml:"rooms,omitempty" json:"rooms,omitempty"`
}

// FloorDoc describes one floor. Map is the asset the rendering layer draws;
// Plan is an optional annotated SVG to derive markers and walls from.
type FloorDoc struct {
	ID   domain.FloorID `yaml:"id" json:"id"`
	Name string         `yaml:"name,omitempty" json:"name,omitempty"`
	Map  string         `yaml:"map,omitempty" json:"map,omitempty"`
	Plan string         `yaml:"plan,omitempty" json:"plan,omitempty"`
}

// Order returns the floor ids in document order, or nil when none are listed
func (d *BuildingDoc) Order() domain.FloorOrder {
	if len(d.Floors) == 0 {
		return nil
	}
	out := make(domain.FloorOrder, 0, len(d.Floors))
	for _, f := range d.Floors {
		out = append(out, f.ID)
	}
	return out
}

// Importer parses building documents
type Importer interface {
	Parse(r io.Reader) (*BuildingDoc, error)
	Format() string
}

// Exporter writes building documents
type Exporter interface {
	Export(doc *BuildingDoc, w io.Writer) error
	Format() string
}

// Codec both reads and writes one format
type Codec interface {
	Importer
	Exporter
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLCodec(), nil
	case ".json":
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported definition format %q", filepath.Ext(path))
	}
}

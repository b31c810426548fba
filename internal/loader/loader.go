// Package loader reads a building definition and the floor plans it refers to.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"indoornav/internal/codec"
	"indoornav/internal/floorplan"
)

// Source is everything a graph is built from
type Source struct {
	Path  string
	Doc   *codec.BuildingDoc
	Plans []*floorplan.Plan
}

// Files returns the definition path followed by every plan path, for watching
func (s *Source) Files() []string {
	out := []string{s.Path}
	for _, f := range s.Doc.Floors {
		if f.Plan != "" {
			out = append(out, s.resolve(f.Plan))
		}
	}
	return out
}

func (s *Source) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(s.Path), p)
}

// LoadFile reads a building definition, picking the codec from the extension
func LoadFile(path string) (*codec.BuildingDoc, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	doc, err := c.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadPlans scans every floor plan listed in doc. Relative plan paths are
// resolved against the directory of the definition file.
func LoadPlans(path string, doc *codec.BuildingDoc, opts floorplan.Options) ([]*floorplan.Plan, error) {
	s := &Source{Path: path, Doc: doc}
	var plans []*floorplan.Plan
	for _, f := range doc.Floors {
		if f.Plan == "" {
			continue
		}
		p, err := floorplan.ScanFile(s.resolve(f.Plan), f.ID, opts)
		if err != nil {
			return nil, fmt.Errorf("floor %s: %w", f.ID, err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Load reads the definition at path and all of its floor plans
func Load(path string, opts floorplan.Options) (*Source, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	plans, err := LoadPlans(path, doc, opts)
	if err != nil {
		return nil, err
	}
	return &Source{Path: path, Doc: doc, Plans: plans}, nil
}

package loader

import (
	"os"
	"path/filepath"
	"testing"

	"indoornav/internal/floorplan"
)

const definition = `
floors:
  - id: G
    plan: plans/ground.svg
  - id: "1"
nodes:
  - {id: stair_G, x: 10, y: 10, type: stair, floor: G}
  - {id: stair_1, x: 10, y: 10, type: stair, floor: "1"}
connections:
  - [stair_G, stair_1]
`

const plan = `<svg viewBox="0 0 100 100">
  <circle id="nav_room_A" cx="20" cy="20" r="2"/>
  <circle id="nav_path_1" cx="40" cy="20" r="2"/>
</svg>`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "plans"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plans", "ground.svg"), []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "building.yaml")
	if err := os.WriteFile(path, []byte(definition), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFixture(t)

	src, err := Load(path, floorplan.Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(src.Doc.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(src.Doc.Nodes))
	}
	if len(src.Plans) != 1 {
		t.Fatalf("len(Plans) = %d, want 1", len(src.Plans))
	}
	if src.Plans[0].Floor != "G" || len(src.Plans[0].Markers) != 2 {
		t.Errorf("Plans[0] = %+v", src.Plans[0])
	}

	files := src.Files()
	want := []string{path, filepath.Join(filepath.Dir(path), "plans", "ground.svg")}
	if len(files) != len(want) {
		t.Fatalf("Files() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Files()[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		data string
	}{
		{"missing file", filepath.Join(dir, "absent.yaml"), ""},
		{"unknown extension", filepath.Join(dir, "building.toml"), "x = 1"},
		{"bad yaml", filepath.Join(dir, "bad.yaml"), "nodes: [\n"},
		{"missing plan", filepath.Join(dir, "noplan.yaml"), "floors:\n  - {id: G, plan: nowhere.svg}\nnodes: []\nconnections: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.data != "" {
				if err := os.WriteFile(tt.path, []byte(tt.data), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := Load(tt.path, floorplan.Options{}); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

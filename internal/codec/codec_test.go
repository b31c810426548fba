package codec

import (
	"bytes"
	"strings"
	"testing"

	"indoornav/internal/builder"
	"indoornav/internal/domain"
)

const sampleYAML = `
name: Faculty Building
floors:
  - id: G
    map: /maps/ground.svg
  - id: "1"
    map: /maps/level1.svg
    plan: plans/level1.svg
nodes:
  - {id: room_A, x: 0, y: 0, type: nav_room, floor: G, label: Lab A}
  - {id: waypoint_1, x: 5, y: 0, type: waypoint}
  - {id: room_B, x: 10, y: 0, type: room}
connections:
  - [room_A, waypoint_1]
  - {from: waypoint_1, to: room_B}
rooms:
  - {floor: G, name: Lab A, room_id: room_A}
`

func TestYAMLParse(t *testing.T) {
	doc, err := NewYAMLCodec().Parse(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Name != "Faculty Building" {
		t.Errorf("Name = %q", doc.Name)
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(doc.Nodes))
	}
	if doc.Nodes[0].Kind != "nav_room" || doc.Nodes[0].Floor != "G" || doc.Nodes[0].Label != "Lab A" {
		t.Errorf("Nodes[0] = %+v", doc.Nodes[0])
	}

	want := []builder.ConnectionDef{{From: "room_A", To: "waypoint_1"}, {From: "waypoint_1", To: "room_B"}}
	if len(doc.Connections) != len(want) {
		t.Fatalf("len(Connections) = %d, want %d", len(doc.Connections), len(want))
	}
	for i, c := range want {
		if doc.Connections[i] != c {
			t.Errorf("Connections[%d] = %+v, want %+v", i, doc.Connections[i], c)
		}
	}

	order := doc.Order()
	if len(order) != 2 || order[0] != "G" || order[1] != domain.FloorID("1") {
		t.Errorf("Order() = %v", order)
	}
	if doc.Floors[1].Plan != "plans/level1.svg" {
		t.Errorf("Floors[1].Plan = %q", doc.Floors[1].Plan)
	}
	if len(doc.Rooms) != 1 || doc.Rooms[0].RoomID != "room_A" {
		t.Errorf("Rooms = %+v", doc.Rooms)
	}
}

func TestYAMLParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short pair", "nodes: []\nconnections:\n  - [a]\n"},
		{"scalar connection", "nodes: []\nconnections:\n  - a\n"},
		{"unknown field", "nodes: []\nconnections: []\nwalls: []\n"},
		{"not yaml", "nodes: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewYAMLCodec().Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("Parse() expected error")
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	doc, err := NewYAMLCodec().Parse(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	for _, c := range []Codec{NewYAMLCodec(), NewJSONCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := c.Export(doc, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			back, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(back.Nodes) != len(doc.Nodes) || len(back.Connections) != len(doc.Connections) {
				t.Errorf("round trip lost data: %+v", back)
			}
			if back.Connections[0] != doc.Connections[0] {
				t.Errorf("Connections[0] = %+v", back.Connections[0])
			}
		})
	}
}

func TestJSONPairs(t *testing.T) {
	input := `{"nodes":[{"id":"a","x":1,"y":2,"type":"waypoint"}],"connections":[["a","b"],{"from":"b","to":"c"}]}`
	doc, err := NewJSONCodec().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Connections) != 2 || doc.Connections[0].To != "b" || doc.Connections[1].From != "b" {
		t.Errorf("Connections = %+v", doc.Connections)
	}

	if _, err := NewJSONCodec().Parse(strings.NewReader(`{"connections":[["a","b","c"]]}`)); err == nil {
		t.Error("Parse() expected error for a three-id connection")
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		format  string
		wantErr bool
	}{
		{"building.yaml", "yaml", false},
		{"building.YML", "yaml", false},
		{"/srv/building.json", "json", false},
		{"building.xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, err := ForPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Format() != tt.format {
				t.Errorf("Format() = %q, want %q", c.Format(), tt.format)
			}
		})
	}
}

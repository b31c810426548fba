package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"indoornav/internal/builder"
	"indoornav/internal/catalog"
)

// JSONCodec handles JSON building definitions
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

type jsonDoc struct {
	Name        string            `json:"name"`
	Floors      []FloorDoc        `json:"floors"`
	Nodes       []builder.NodeDef `json:"nodes"`
	Connections []jsonConnection  `json:"connections"`
	Rooms       []catalog.Entry   `json:"rooms"`
}

type jsonConnection builder.ConnectionDef

func (c *jsonConnection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []string
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("connection needs exactly two node ids, got %d", len(pair))
		}
		c.From, c.To = pair[0], pair[1]
		return nil
	}
	var def builder.ConnectionDef
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*c = jsonConnection(def)
	return nil
}

// Parse imports a building definition from JSON
func (c *JSONCodec) Parse(r io.Reader) (*BuildingDoc, error) {
	var jd jsonDoc
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&jd); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	doc := BuildingDoc{
		Name:        jd.Name,
		Floors:      jd.Floors,
		Nodes:       jd.Nodes,
		Rooms:       jd.Rooms,
		Connections: make([]builder.ConnectionDef, 0, len(jd.Connections)),
	}
	for _, conn := range jd.Connections {
		doc.Connections = append(doc.Connections, builder.ConnectionDef(conn))
	}
	return &doc, nil
}

// Export writes a building definition as JSON
func (c *JSONCodec) Export(doc *BuildingDoc, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

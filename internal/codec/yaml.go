package codec

import (
	"fmt"
	"io"

	"indoornav/internal/builder"
	"indoornav/internal/catalog"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML building definitions
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlDoc mirrors BuildingDoc but accepts connections either as
// {from, to} mappings or as two-element sequences
type yamlDoc struct {
	Name        string            `yaml:"name,omitempty"`
	Floors      []FloorDoc        `yaml:"floors,omitempty"`
	Nodes       []builder.NodeDef `yaml:"nodes"`
	Connections []yamlConnection  `yaml:"connections"`
	Rooms       []catalog.Entry   `yaml:"rooms,omitempty"`
}

type yamlConnection builder.ConnectionDef

func (c *yamlConnection) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var pair []string
		if err := value.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: connection needs exactly two node ids, got %d", value.Line, len(pair))
		}
		c.From, c.To = pair[0], pair[1]
		return nil
	case yaml.MappingNode:
		var def builder.ConnectionDef
		if err := value.Decode(&def); err != nil {
			return err
		}
		*c = yamlConnection(def)
		return nil
	default:
		return fmt.Errorf("line %d: connection must be a pair or a mapping", value.Line)
	}
}

// Parse imports a building definition from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*BuildingDoc, error) {
	var yd yamlDoc
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&yd); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	doc := BuildingDoc{
		Name:        yd.Name,
		Floors:      yd.Floors,
		Nodes:       yd.Nodes,
		Rooms:       yd.Rooms,
		Connections: make([]builder.ConnectionDef, 0, len(yd.Connections)),
	}
	for _, conn := range yd.Connections {
		doc.Connections = append(doc.Connections, builder.ConnectionDef(conn))
	}
	return &doc, nil
}

// Export writes a building definition as YAML
func (c *YAMLCodec) Export(doc *BuildingDoc, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

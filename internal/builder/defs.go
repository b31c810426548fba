// Package builder constructs navigation graphs from declarative node and
// connection definitions or from markers scanned out of a floor plan.
package builder

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"indoornav/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("nodekind", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseNodeKind(fl.Field().String())
		return ok
	})
}

// NodeDef is one authored node
type NodeDef struct {
	ID    string  `yaml:"id" json:"id" validate:"required,max=128"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Kind  string  `yaml:"type" json:"type" validate:"required,nodekind"`
	Floor string  `yaml:"floor,omitempty" json:"floor,omitempty" validate:"omitempty,max=16"`
	Label string  `yaml:"label,omitempty" json:"label,omitempty" validate:"omitempty,max=256"`
}

// ConnectionDef is an unordered pair of node ids
type ConnectionDef struct {
	From string `yaml:"from" json:"from" validate:"required"`
	To   string `yaml:"to" json:"to" validate:"required"`
}

// Validate checks a node definition's fields
func (d *NodeDef) Validate() error {
	if err := validate.Struct(d); err != nil {
		return formatValidationError(err)
	}
	if math.IsNaN(d.X) || math.IsNaN(d.Y) || math.IsInf(d.X, 0) || math.IsInf(d.Y, 0) {
		return fmt.Errorf("%w: node %s has non-finite coordinates", domain.ErrInvalidDefinition, d.ID)
	}
	return nil
}

// Validate checks a connection definition's fields
func (d *ConnectionDef) Validate() error {
	if err := validate.Struct(d); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Node converts the definition into a graph node. Kind must already be valid.
func (d *NodeDef) Node() *domain.Node {
	kind, _ := domain.ParseNodeKind(d.Kind)
	n := domain.NewNode(d.ID, kind, d.X, d.Y)
	n.Label = d.Label
	if d.Floor != "" {
		n.SetFloor(domain.FloorID(d.Floor))
		n.Seeded = true
	}
	return n
}

// formatValidationError converts validator errors into a single wrapped error
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, err)
	}
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidDefinition, e.Field())
		case "nodekind":
			return fmt.Errorf("%w: %s: unknown node type %q", domain.ErrInvalidDefinition, e.Field(), e.Value())
		case "max":
			return fmt.Errorf("%w: %s must not exceed %s", domain.ErrInvalidDefinition, e.Field(), e.Param())
		default:
			return fmt.Errorf("%w: %s failed %s", domain.ErrInvalidDefinition, e.Field(), e.Tag())
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, err)
}

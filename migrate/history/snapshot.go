package history

import (
	"fmt"

	"github.com/satishbabariya/schema-forge/dsl/parser"
	"github.com/satishbabariya/schema-forge/dsl/printer"
	"github.com/satishbabariya/schema-forge/schema"
)

// SerializeSchema renders def as canonical source for the snapshot column.
func SerializeSchema(def *schema.SchemaDefinition) string {
	if def == nil {
		return ""
	}
	return printer.Print(*def)
}

// DeserializeSchema parses a snapshot; an empty snapshot yields nil.
func DeserializeSchema(src string) (*schema.SchemaDefinition, error) {
	if src == "" {
		return nil, nil
	}
	defs, diags := parser.Parse(src)
	if err := diags.ToResult(); err != nil {
		return nil, fmt.Errorf("failed to deserialize schema: %w", err)
	}
	if len(defs) != 1 {
		return nil, fmt.Errorf("failed to deserialize schema: snapshot holds %d schemas", len(defs))
	}
	return &defs[0], nil
}

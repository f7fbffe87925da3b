// Package jsonschema exports schema definitions as JSON Schema 2020-12
// documents and validates entity bodies against them.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/satishbabariya/schema-forge/schema"
)

// Draft is the dialect every exported document declares.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// IDProperty is the storage id every entity may carry.
const IDProperty = "id"

// Document builds one document holding every definition under $defs,
// keyed by schema name.
func Document(defs []schema.SchemaDefinition) map[string]any {
	all := make(map[string]any, len(defs))
	for _, def := range defs {
		all[string(def.Name)] = EntitySchema(def)
	}
	return map[string]any{
		"$schema": Draft,
		"$defs":   all,
	}
}

// Export renders Document as indented JSON. Keys are sorted, so the
// output is stable for a given batch.
func Export(defs []schema.SchemaDefinition) ([]byte, error) {
	out, err := json.MarshalIndent(Document(defs), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return append(out, '\n'), nil
}

// EntitySchema is the object schema of one entity. Unknown properties
// are rejected; relations hold target ids.
func EntitySchema(def schema.SchemaDefinition) map[string]any {
	s := object(def.Fields)
	s["title"] = string(def.Name)
	s["description"] = fmt.Sprintf("%s entity, version %d", def.Name, def.Version)
	s["properties"].(map[string]any)[IDProperty] = map[string]any{"type": "string"}
	return s
}

func object(fields []schema.FieldDefinition) map[string]any {
	props := make(map[string]any, len(fields))
	var required []string
	for _, f := range fields {
		prop := typeSchema(f.Type)
		if f.Modifiers.Default != nil {
			prop["default"] = defaultJSON(f.Modifiers.Default)
		}
		props[string(f.Name)] = prop
		if f.Modifiers.Required {
			required = append(required, string(f.Name))
		}
	}
	s := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		sort.Strings(required)
		s["required"] = required
	}
	return s
}

func typeSchema(t schema.FieldType) map[string]any {
	switch t := t.(type) {
	case schema.Text:
		return lengthBounds(map[string]any{"type": "string"}, t.Min, t.Max)
	case schema.RichText:
		return lengthBounds(map[string]any{"type": "string"}, t.Min, t.Max)
	case schema.Integer:
		s := map[string]any{"type": "integer"}
		if t.Min != nil {
			s["minimum"] = *t.Min
		}
		if t.Max != nil {
			s["maximum"] = *t.Max
		}
		return s
	case schema.Float:
		return map[string]any{"type": "number"}
	case schema.Boolean:
		return map[string]any{"type": "boolean"}
	case schema.DateTime:
		return map[string]any{"type": "string", "format": "date-time"}
	case schema.Enum:
		variants := make([]any, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = v
		}
		return map[string]any{"type": "string", "enum": variants}
	case schema.JSON:
		return map[string]any{}
	case schema.Relation:
		id := map[string]any{"type": "string", "description": "id of a " + string(t.Target)}
		if t.Cardinality == schema.Many {
			return map[string]any{"type": "array", "items": id, "uniqueItems": true}
		}
		return id
	case schema.Array:
		return map[string]any{"type": "array", "items": typeSchema(t.Element)}
	case schema.Composite:
		return object(t.Fields)
	}
	return map[string]any{}
}

func lengthBounds(s map[string]any, lo, hi *int) map[string]any {
	if lo != nil {
		s["minLength"] = *lo
	}
	if hi != nil {
		s["maxLength"] = *hi
	}
	return s
}

func defaultJSON(v schema.DefaultValue) any {
	switch v := v.(type) {
	case schema.StringDefault:
		return string(v)
	case schema.IntegerDefault:
		return int64(v)
	case schema.FloatDefault:
		return json.Number(v)
	case schema.BooleanDefault:
		return bool(v)
	}
	return nil
}

// Compile resolves the entity schema of def for validation.
func Compile(def schema.SchemaDefinition) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(EntitySchema(def))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema for validation: %w", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into jsonschema.Schema: %w", err)
	}
	resolved, err := s.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve JSON schema for %s: %w", def.Name, err)
	}
	return resolved, nil
}

// ValidateEntity checks a decoded request body against def.
func ValidateEntity(def schema.SchemaDefinition, body map[string]any) error {
	resolved, err := Compile(def)
	if err != nil {
		return err
	}
	if err := resolved.Validate(body); err != nil {
		return fmt.Errorf("%s entity is invalid: %w", def.Name, err)
	}
	return nil
}

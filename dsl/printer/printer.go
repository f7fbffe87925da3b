// Package printer renders schema definitions back to canonical DSL text.
package printer

import (
	"strconv"
	"strings"

	"github.com/satishbabariya/schema-forge/schema"
)

const indentUnit = "    "

// Renderer renders schema definitions to a string.
type Renderer struct {
	builder strings.Builder
}

// NewRenderer creates a new renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Print renders a single definition. Parsing the result yields a value
// structurally equal to def.
func Print(def schema.SchemaDefinition) string {
	return NewRenderer().Render(def)
}

// PrintAll renders definitions separated by blank lines.
func PrintAll(defs []schema.SchemaDefinition) string {
	return NewRenderer().RenderAll(defs)
}

// Render renders one definition.
func (r *Renderer) Render(def schema.SchemaDefinition) string {
	r.builder.Reset()
	r.renderSchema(def)
	return r.builder.String()
}

// RenderAll renders definitions separated by blank lines.
func (r *Renderer) RenderAll(defs []schema.SchemaDefinition) string {
	r.builder.Reset()
	for i, def := range defs {
		if i > 0 {
			r.builder.WriteString("\n")
		}
		r.renderSchema(def)
	}
	return r.builder.String()
}

func (r *Renderer) renderSchema(def schema.SchemaDefinition) {
	if def.Version != schema.DefaultVersion && def.Version != 0 {
		r.builder.WriteString("@version(")
		r.builder.WriteString(strconv.FormatUint(uint64(def.Version), 10))
		r.builder.WriteString(")\n")
	}
	if def.DisplayField != "" {
		r.builder.WriteString("@display(")
		r.builder.WriteString(schema.Quote(string(def.DisplayField)))
		r.builder.WriteString(")\n")
	}

	r.builder.WriteString("schema ")
	r.builder.WriteString(string(def.Name))
	r.builder.WriteString(" {\n")
	r.renderFields(def.Fields, 1)
	r.builder.WriteString("}\n")
}

func (r *Renderer) renderFields(fields []schema.FieldDefinition, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, field := range fields {
		r.builder.WriteString(indent)
		r.renderField(field, depth)
		r.builder.WriteString("\n")
	}
}

func (r *Renderer) renderField(field schema.FieldDefinition, depth int) {
	r.builder.WriteString(string(field.Name))
	r.builder.WriteString(": ")
	r.renderType(field.Type, depth)
	r.renderModifiers(field.Modifiers)
}

func (r *Renderer) renderType(t schema.FieldType, depth int) {
	switch t := t.(type) {
	case schema.Composite:
		r.builder.WriteString("composite {\n")
		r.renderFields(t.Fields, depth+1)
		r.builder.WriteString(strings.Repeat(indentUnit, depth))
		r.builder.WriteString("}")
	case schema.Array:
		r.renderType(t.Element, depth)
		r.builder.WriteString("[]")
	default:
		// Scalar and relation types render as their own DSL notation.
		r.builder.WriteString(t.String())
	}
}

// renderModifiers writes modifiers in the canonical order required,
// indexed, default.
func (r *Renderer) renderModifiers(mods schema.Modifiers) {
	if mods.Required {
		r.builder.WriteString(" required")
	}
	if mods.Indexed {
		r.builder.WriteString(" indexed")
	}
	if mods.Default != nil {
		r.builder.WriteString(" default(")
		r.builder.WriteString(mods.Default.String())
		r.builder.WriteString(")")
	}
}

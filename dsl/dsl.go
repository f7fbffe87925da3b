// Package dsl is the entry point to the schema language: parsing,
// canonical printing and formatting of schema source.
package dsl

import (
	"github.com/satishbabariya/schema-forge/dsl/diagnostics"
	"github.com/satishbabariya/schema-forge/dsl/parser"
	"github.com/satishbabariya/schema-forge/dsl/printer"
	"github.com/satishbabariya/schema-forge/schema"
	"github.com/satishbabariya/schema-forge/schema/validation"
)

// Parse parses schema source. On any syntax error the definitions are nil
// and the diagnostics hold every LexError and ParseError found.
func Parse(src string) ([]schema.SchemaDefinition, diagnostics.Diagnostics) {
	return parser.Parse(src)
}

// Print renders a definition as canonical source.
func Print(def schema.SchemaDefinition) string {
	return printer.Print(def)
}

// PrintAll renders definitions as canonical source separated by blank lines.
func PrintAll(defs []schema.SchemaDefinition) string {
	return printer.PrintAll(defs)
}

// Format reformats src into its canonical form.
func Format(src string) (string, diagnostics.Diagnostics) {
	defs, diags := parser.Parse(src)
	if diags.HasErrors() {
		return "", diags
	}
	return printer.PrintAll(defs), diags
}

// Check parses src and validates the resulting batch. Semantic violations
// are only reported when the source is syntactically valid.
func Check(src string) ([]schema.SchemaDefinition, diagnostics.Diagnostics, []validation.ValidationError) {
	defs, diags := parser.Parse(src)
	if diags.HasErrors() {
		return nil, diags, nil
	}
	return defs, diags, validation.ValidateBatch(defs)
}

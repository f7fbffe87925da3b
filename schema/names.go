// Package schema defines the entity model produced by the DSL parser and
// consumed by the validator, the diff engine and the query resolver.
package schema

import (
	"fmt"
	"regexp"
)

var (
	schemaNamePattern = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	fieldNamePattern  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// SchemaName is a PascalCase schema identifier.
type SchemaName string

// FieldName is a snake_case field identifier.
type FieldName string

// IsValidSchemaName reports whether s is PascalCase.
func IsValidSchemaName(s string) bool {
	return schemaNamePattern.MatchString(s)
}

// IsValidFieldName reports whether s is snake_case.
func IsValidFieldName(s string) bool {
	return fieldNamePattern.MatchString(s)
}

// ParseSchemaName checks s and returns it as a SchemaName.
func ParseSchemaName(s string) (SchemaName, error) {
	if !IsValidSchemaName(s) {
		return "", fmt.Errorf("invalid schema name %q: must be PascalCase", s)
	}
	return SchemaName(s), nil
}

// ParseFieldName checks s and returns it as a FieldName.
func ParseFieldName(s string) (FieldName, error) {
	if !IsValidFieldName(s) {
		return "", fmt.Errorf("invalid field name %q: must be snake_case", s)
	}
	return FieldName(s), nil
}

func (n SchemaName) String() string { return string(n) }

func (n FieldName) String() string { return string(n) }

// Package validation checks the semantic rules a parsed schema must satisfy
// beyond syntax. All violations are collected; validation never stops at
// the first one.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/schema-forge/schema"
)

// RuleID is the machine-readable identifier of a validation rule.
type RuleID string

const (
	RuleInvalidSchemaName     RuleID = "invalid-schema-name"
	RuleInvalidFieldName      RuleID = "invalid-field-name"
	RuleInvalidVersion        RuleID = "invalid-version"
	RuleDuplicateSchema       RuleID = "duplicate-schema"
	RuleDuplicateField        RuleID = "duplicate-field"
	RuleMissingType           RuleID = "missing-type"
	RuleEmptyEnum             RuleID = "empty-enum"
	RuleDuplicateEnumVariant  RuleID = "duplicate-enum-variant"
	RuleInvalidBounds         RuleID = "invalid-bounds"
	RuleInvalidDefault        RuleID = "invalid-default"
	RuleUnknownRelationTarget RuleID = "unknown-relation-target"
	RuleUnknownDisplayField   RuleID = "unknown-display-field"
	RuleNestedArray           RuleID = "nested-array"
)

// ValidationError is one rule violation. FieldPath is the dotted path of the
// offending field inside Schema, empty for schema-level violations.
type ValidationError struct {
	RuleID    RuleID            `json:"rule_id"`
	Schema    schema.SchemaName `json:"schema"`
	FieldPath string            `json:"field_path,omitempty"`
	Message   string            `json:"message"`
}

// Location renders the schema and field path, e.g. "Contact.address.city".
func (e ValidationError) Location() string {
	if e.FieldPath == "" {
		return string(e.Schema)
	}
	return string(e.Schema) + "." + e.FieldPath
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s [%s]", e.Location(), e.Message, e.RuleID)
}

// Errors joins violations into a single error, or returns nil for none.
func Errors(violations []ValidationError) error {
	if len(violations) == 0 {
		return nil
	}
	errs := make([]error, len(violations))
	for i, v := range violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}

// ByRule filters violations by rule.
func ByRule(violations []ValidationError, rule RuleID) []ValidationError {
	var out []ValidationError
	for _, v := range violations {
		if v.RuleID == rule {
			out = append(out, v)
		}
	}
	return out
}

func joinPath(prefix []string, name schema.FieldName) string {
	if len(prefix) == 0 {
		return string(name)
	}
	return strings.Join(prefix, ".") + "." + string(name)
}

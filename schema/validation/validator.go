package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/satishbabariya/schema-forge/schema"
)

// Validator implements the semantic schema rules.
type Validator struct{}

// NewValidator creates a new schema validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSchema validates one schema in isolation. Relation targets are not
// checked since they can only be resolved against a batch.
func ValidateSchema(def schema.SchemaDefinition) []ValidationError {
	return NewValidator().ValidateSchema(def)
}

// ValidateBatch validates a set of schemas, including cross-schema rules.
func ValidateBatch(batch []schema.SchemaDefinition) []ValidationError {
	return NewValidator().ValidateBatch(batch)
}

// ValidateSchema validates one schema in isolation.
func (v *Validator) ValidateSchema(def schema.SchemaDefinition) []ValidationError {
	c := &collector{schema: def.Name}
	v.checkSchema(c, def, nil)
	return c.errs
}

// ValidateBatch validates every schema of the batch and checks that schema
// names are unique and relation targets exist.
func (v *Validator) ValidateBatch(batch []schema.SchemaDefinition) []ValidationError {
	known := make(map[schema.SchemaName]bool, len(batch))
	var errs []ValidationError

	for _, def := range batch {
		if known[def.Name] {
			errs = append(errs, ValidationError{
				RuleID:  RuleDuplicateSchema,
				Schema:  def.Name,
				Message: fmt.Sprintf("schema '%s' is defined more than once", def.Name),
			})
		}
		known[def.Name] = true
	}

	for _, def := range batch {
		c := &collector{schema: def.Name}
		v.checkSchema(c, def, known)
		errs = append(errs, c.errs...)
	}
	return errs
}

type collector struct {
	schema schema.SchemaName
	errs   []ValidationError
}

func (c *collector) add(rule RuleID, path string, format string, args ...any) {
	c.errs = append(c.errs, ValidationError{
		RuleID:    rule,
		Schema:    c.schema,
		FieldPath: path,
		Message:   fmt.Sprintf(format, args...),
	})
}

// checkSchema runs every rule over def. A nil known map skips the relation
// target check.
func (v *Validator) checkSchema(c *collector, def schema.SchemaDefinition, known map[schema.SchemaName]bool) {
	if !schema.IsValidSchemaName(string(def.Name)) {
		c.add(RuleInvalidSchemaName, "", "schema name '%s' must be PascalCase", def.Name)
	}
	if def.Version == 0 {
		c.add(RuleInvalidVersion, "", "schema version must be a positive integer")
	}
	if def.DisplayField != "" {
		if _, ok := def.Field(def.DisplayField); !ok {
			c.add(RuleUnknownDisplayField, string(def.DisplayField),
				"display field '%s' is not a top-level field of '%s'", def.DisplayField, def.Name)
		}
	}
	v.checkFields(c, def.Fields, nil, known)
}

func (v *Validator) checkFields(c *collector, fields []schema.FieldDefinition, prefix []string, known map[schema.SchemaName]bool) {
	seen := make(map[schema.FieldName]bool, len(fields))
	for _, field := range fields {
		path := joinPath(prefix, field.Name)

		if !schema.IsValidFieldName(string(field.Name)) {
			c.add(RuleInvalidFieldName, path, "field name '%s' must be snake_case", field.Name)
		}
		if seen[field.Name] {
			c.add(RuleDuplicateField, path, "field '%s' is declared more than once", field.Name)
		}
		seen[field.Name] = true

		if field.Type == nil {
			c.add(RuleMissingType, path, "field '%s' has no type", field.Name)
			continue
		}
		v.checkType(c, field.Type, path, append(prefix, string(field.Name)), known)
		if field.Modifiers.Default != nil {
			if msg := defaultProblem(field.Type, field.Modifiers.Default); msg != "" {
				c.add(RuleInvalidDefault, path, "%s", msg)
			}
		}
	}
}

func (v *Validator) checkType(c *collector, t schema.FieldType, path string, scope []string, known map[schema.SchemaName]bool) {
	switch t := t.(type) {
	case schema.Text:
		checkLengthBounds(c, path, t.Min, t.Max)
	case schema.RichText:
		checkLengthBounds(c, path, t.Min, t.Max)
	case schema.Integer:
		if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
			c.add(RuleInvalidBounds, path, "min %d is greater than max %d", *t.Min, *t.Max)
		}
	case schema.Float:
		if t.Precision != nil && *t.Precision < 0 {
			c.add(RuleInvalidBounds, path, "precision %d must not be negative", *t.Precision)
		}
	case schema.Enum:
		if len(t.Variants) == 0 {
			c.add(RuleEmptyEnum, path, "enum must declare at least one variant")
		}
		seen := make(map[string]bool, len(t.Variants))
		for _, variant := range t.Variants {
			if seen[variant] {
				c.add(RuleDuplicateEnumVariant, path, "enum variant %q is declared more than once", variant)
			}
			seen[variant] = true
		}
	case schema.Relation:
		if !schema.IsValidSchemaName(string(t.Target)) {
			c.add(RuleInvalidSchemaName, path, "relation target '%s' must be PascalCase", t.Target)
		} else if known != nil && !known[t.Target] {
			c.add(RuleUnknownRelationTarget, path, "relation target '%s' is not defined", t.Target)
		}
	case schema.Array:
		if t.Element == nil {
			c.add(RuleMissingType, path, "array has no element type")
			return
		}
		if _, nested := t.Element.(schema.Array); nested {
			c.add(RuleNestedArray, path, "arrays cannot contain arrays")
		}
		v.checkType(c, t.Element, path, scope, known)
	case schema.Composite:
		v.checkFields(c, t.Fields, scope, known)
	case schema.Boolean, schema.DateTime, schema.JSON:
	}
}

func checkLengthBounds(c *collector, path string, min, max *int) {
	if min != nil && *min < 0 {
		c.add(RuleInvalidBounds, path, "min length %d must not be negative", *min)
	}
	if max != nil && *max < 0 {
		c.add(RuleInvalidBounds, path, "max length %d must not be negative", *max)
	}
	if min != nil && max != nil && *min > *max {
		c.add(RuleInvalidBounds, path, "min %d is greater than max %d", *min, *max)
	}
}

// defaultProblem describes why value is not a legal default for t, or
// returns "" when it is.
func defaultProblem(t schema.FieldType, value schema.DefaultValue) string {
	switch t := t.(type) {
	case schema.Text:
		return stringDefaultProblem(value, t.Min, t.Max)
	case schema.RichText:
		return stringDefaultProblem(value, t.Min, t.Max)
	case schema.Integer:
		n, ok := value.(schema.IntegerDefault)
		if !ok {
			return fmt.Sprintf("default %s is not an integer literal", value)
		}
		if t.Min != nil && int64(n) < *t.Min {
			return fmt.Sprintf("default %d is below min %d", n, *t.Min)
		}
		if t.Max != nil && int64(n) > *t.Max {
			return fmt.Sprintf("default %d is above max %d", n, *t.Max)
		}
	case schema.Float:
		switch d := value.(type) {
		case schema.IntegerDefault:
		case schema.FloatDefault:
			if _, err := strconv.ParseFloat(string(d), 64); err != nil {
				return fmt.Sprintf("default %s is not a valid float", d)
			}
		default:
			return fmt.Sprintf("default %s is not a numeric literal", value)
		}
	case schema.Boolean:
		if _, ok := value.(schema.BooleanDefault); !ok {
			return fmt.Sprintf("default %s is not a boolean literal", value)
		}
	case schema.DateTime:
		s, ok := value.(schema.StringDefault)
		if !ok {
			return fmt.Sprintf("default %s is not a string literal", value)
		}
		if _, err := time.Parse(time.RFC3339, string(s)); err != nil {
			return fmt.Sprintf("default %s is not an RFC 3339 timestamp", value)
		}
	case schema.Enum:
		s, ok := value.(schema.StringDefault)
		if !ok {
			return fmt.Sprintf("default %s is not a string literal", value)
		}
		for _, variant := range t.Variants {
			if variant == string(s) {
				return ""
			}
		}
		return fmt.Sprintf("default %s is not one of the enum variants", value)
	case schema.JSON:
		s, ok := value.(schema.StringDefault)
		if !ok || !json.Valid([]byte(s)) {
			return fmt.Sprintf("default %s is not a string holding a JSON document", value)
		}
	case schema.Relation, schema.Array, schema.Composite:
		return fmt.Sprintf("%s fields cannot have a default", t.Kind())
	}
	return ""
}

func stringDefaultProblem(value schema.DefaultValue, min, max *int) string {
	s, ok := value.(schema.StringDefault)
	if !ok {
		return fmt.Sprintf("default %s is not a string literal", value)
	}
	n := utf8.RuneCountInString(string(s))
	if min != nil && n < *min {
		return fmt.Sprintf("default is shorter than min length %d", *min)
	}
	if max != nil && n > *max {
		return fmt.Sprintf("default is longer than max length %d", *max)
	}
	return ""
}

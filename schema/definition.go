package schema

import (
	"strconv"
	"strings"
)

// DefaultValue is the literal carried by a default(...) modifier.
// The variants are StringDefault, IntegerDefault, FloatDefault and
// BooleanDefault; all are comparable with ==.
type DefaultValue interface {
	// String renders the value as a DSL literal.
	String() string
	defaultValue()
}

type StringDefault string

type IntegerDefault int64

// FloatDefault keeps the literal text so printing reproduces the source.
type FloatDefault string

type BooleanDefault bool

func (StringDefault) defaultValue()  {}
func (IntegerDefault) defaultValue() {}
func (FloatDefault) defaultValue()   {}
func (BooleanDefault) defaultValue() {}

func (v StringDefault) String() string  { return Quote(string(v)) }
func (v IntegerDefault) String() string { return strconv.FormatInt(int64(v), 10) }
func (v FloatDefault) String() string   { return string(v) }
func (v BooleanDefault) String() string { return strconv.FormatBool(bool(v)) }

// Modifiers is the modifier set of a field. The canonical textual order is
// required, indexed, default.
type Modifiers struct {
	Required bool
	Indexed  bool
	Default  DefaultValue
}

// HasDefault reports whether a default is set.
func (m Modifiers) HasDefault() bool {
	return m.Default != nil
}

// Equal reports whether both sets carry the same modifiers.
func (m Modifiers) Equal(o Modifiers) bool {
	return m.Required == o.Required && m.Indexed == o.Indexed && m.Default == o.Default
}

// FieldDefinition is a named, typed field.
type FieldDefinition struct {
	Name      FieldName
	Type      FieldType
	Modifiers Modifiers
}

// Equal reports structural equality.
func (f FieldDefinition) Equal(o FieldDefinition) bool {
	if f.Name != o.Name || !f.Modifiers.Equal(o.Modifiers) {
		return false
	}
	if f.Type == nil || o.Type == nil {
		return f.Type == nil && o.Type == nil
	}
	return f.Type.Equal(o.Type)
}

// IsRelation reports whether the field references another schema.
func (f FieldDefinition) IsRelation() bool {
	_, ok := f.Type.(Relation)
	return ok
}

// SchemaDefinition is one versioned schema. Values are never mutated after
// construction; a changed schema is a new value with a higher Version.
type SchemaDefinition struct {
	Name    SchemaName
	Version uint32
	// DisplayField is empty when no @display annotation is present.
	DisplayField FieldName
	Fields       []FieldDefinition
}

// DefaultVersion is the version of a schema without a @version annotation.
const DefaultVersion uint32 = 1

// Field looks up a top-level field by name.
func (s SchemaDefinition) Field(name FieldName) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldNames returns the top-level field names in declaration order.
func (s SchemaDefinition) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = string(f.Name)
	}
	return names
}

// Equal reports structural equality: name, version, display field and the
// ordered field list.
func (s SchemaDefinition) Equal(o SchemaDefinition) bool {
	if s.Name != o.Name || s.Version != o.Version || s.DisplayField != o.DisplayField {
		return false
	}
	if len(s.Fields) != len(o.Fields) {
		return false
	}
	for i := range s.Fields {
		if !s.Fields[i].Equal(o.Fields[i]) {
			return false
		}
	}
	return true
}

// Lookup finds a schema by name in a batch.
func Lookup(batch []SchemaDefinition, name SchemaName) (SchemaDefinition, bool) {
	for _, s := range batch {
		if s.Name == name {
			return s, true
		}
	}
	return SchemaDefinition{}, false
}

// Quote renders s as a DSL string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

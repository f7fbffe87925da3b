package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a FieldType variant.
type Kind int

const (
	KindText Kind = iota
	KindRichText
	KindInteger
	KindFloat
	KindBoolean
	KindDateTime
	KindEnum
	KindJSON
	KindRelation
	KindArray
	KindComposite
)

var kindNames = [...]string{
	KindText:      "text",
	KindRichText:  "richtext",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBoolean:   "boolean",
	KindDateTime:  "datetime",
	KindEnum:      "enum",
	KindJSON:      "json",
	KindRelation:  "relation",
	KindArray:     "array",
	KindComposite: "composite",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsScalar reports whether values of this kind are single primitive values.
func (k Kind) IsScalar() bool {
	switch k {
	case KindText, KindRichText, KindInteger, KindFloat, KindBoolean, KindDateTime, KindEnum:
		return true
	}
	return false
}

// IsTextual reports whether values of this kind are strings.
func (k Kind) IsTextual() bool {
	return k == KindText || k == KindRichText || k == KindEnum
}

// Cardinality is the multiplicity of a relation.
type Cardinality int

const (
	One Cardinality = iota
	Many
)

func (c Cardinality) String() string {
	if c == Many {
		return "many"
	}
	return "one"
}

// FieldType is the closed set of field types. The concrete variants are
// Text, RichText, Integer, Float, Boolean, DateTime, Enum, JSON, Relation,
// Array and Composite; consumers switch over them exhaustively.
type FieldType interface {
	Kind() Kind
	// Equal reports structural equality with another type.
	Equal(other FieldType) bool
	String() string
	fieldType()
}

// Text is a plain string with optional length bounds.
type Text struct {
	Min *int
	Max *int
}

// RichText is formatted text with optional length bounds.
type RichText struct {
	Min *int
	Max *int
}

// Integer is a signed 64-bit integer with optional value bounds.
type Integer struct {
	Min *int64
	Max *int64
}

// Float is a floating point number with an optional decimal precision.
type Float struct {
	Precision *int
}

type Boolean struct{}

type DateTime struct{}

// Enum is one of a fixed, ordered list of string variants.
type Enum struct {
	Variants []string
}

type JSON struct{}

// Relation references another schema by name.
type Relation struct {
	Target      SchemaName
	Cardinality Cardinality
}

// Array is a list of Element values. Element is never itself an Array.
type Array struct {
	Element FieldType
}

// Composite is an inline group of named fields.
type Composite struct {
	Fields []FieldDefinition
}

func (Text) Kind() Kind      { return KindText }
func (RichText) Kind() Kind  { return KindRichText }
func (Integer) Kind() Kind   { return KindInteger }
func (Float) Kind() Kind     { return KindFloat }
func (Boolean) Kind() Kind   { return KindBoolean }
func (DateTime) Kind() Kind  { return KindDateTime }
func (Enum) Kind() Kind      { return KindEnum }
func (JSON) Kind() Kind      { return KindJSON }
func (Relation) Kind() Kind  { return KindRelation }
func (Array) Kind() Kind     { return KindArray }
func (Composite) Kind() Kind { return KindComposite }

func (Text) fieldType()      {}
func (RichText) fieldType()  {}
func (Integer) fieldType()   {}
func (Float) fieldType()     {}
func (Boolean) fieldType()   {}
func (DateTime) fieldType()  {}
func (Enum) fieldType()      {}
func (JSON) fieldType()      {}
func (Relation) fieldType()  {}
func (Array) fieldType()     {}
func (Composite) fieldType() {}

func (t Text) Equal(other FieldType) bool {
	o, ok := other.(Text)
	return ok && ptrEqual(t.Min, o.Min) && ptrEqual(t.Max, o.Max)
}

func (t RichText) Equal(other FieldType) bool {
	o, ok := other.(RichText)
	return ok && ptrEqual(t.Min, o.Min) && ptrEqual(t.Max, o.Max)
}

func (t Integer) Equal(other FieldType) bool {
	o, ok := other.(Integer)
	return ok && ptrEqual(t.Min, o.Min) && ptrEqual(t.Max, o.Max)
}

func (t Float) Equal(other FieldType) bool {
	o, ok := other.(Float)
	return ok && ptrEqual(t.Precision, o.Precision)
}

func (Boolean) Equal(other FieldType) bool {
	_, ok := other.(Boolean)
	return ok
}

func (DateTime) Equal(other FieldType) bool {
	_, ok := other.(DateTime)
	return ok
}

func (t Enum) Equal(other FieldType) bool {
	o, ok := other.(Enum)
	if !ok || len(t.Variants) != len(o.Variants) {
		return false
	}
	for i := range t.Variants {
		if t.Variants[i] != o.Variants[i] {
			return false
		}
	}
	return true
}

func (JSON) Equal(other FieldType) bool {
	_, ok := other.(JSON)
	return ok
}

func (t Relation) Equal(other FieldType) bool {
	o, ok := other.(Relation)
	return ok && t == o
}

func (t Array) Equal(other FieldType) bool {
	o, ok := other.(Array)
	if !ok {
		return false
	}
	if t.Element == nil || o.Element == nil {
		return t.Element == nil && o.Element == nil
	}
	return t.Element.Equal(o.Element)
}

func (t Composite) Equal(other FieldType) bool {
	o, ok := other.(Composite)
	if !ok || len(t.Fields) != len(o.Fields) {
		return false
	}
	for i := range t.Fields {
		if !t.Fields[i].Equal(o.Fields[i]) {
			return false
		}
	}
	return true
}

func (t Text) String() string     { return "text" + lengthParams(t.Min, t.Max) }
func (t RichText) String() string { return "richtext" + lengthParams(t.Min, t.Max) }

func (t Integer) String() string {
	var params []string
	if t.Min != nil {
		params = append(params, "min: "+strconv.FormatInt(*t.Min, 10))
	}
	if t.Max != nil {
		params = append(params, "max: "+strconv.FormatInt(*t.Max, 10))
	}
	return "integer" + joinParams(params)
}

func (t Float) String() string {
	if t.Precision == nil {
		return "float"
	}
	return fmt.Sprintf("float(precision: %d)", *t.Precision)
}

func (Boolean) String() string  { return "boolean" }
func (DateTime) String() string { return "datetime" }
func (JSON) String() string     { return "json" }

func (t Enum) String() string {
	quoted := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		quoted[i] = Quote(v)
	}
	return "enum(" + strings.Join(quoted, ", ") + ")"
}

func (t Relation) String() string {
	if t.Cardinality == Many {
		return "-> " + string(t.Target) + "[]"
	}
	return "-> " + string(t.Target)
}

func (t Array) String() string {
	if t.Element == nil {
		return "[]"
	}
	return t.Element.String() + "[]"
}

func (t Composite) String() string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = string(f.Name)
	}
	return "composite {" + strings.Join(names, ", ") + "}"
}

// ElementKind returns the kind of t, looking through one level of Array.
func ElementKind(t FieldType) Kind {
	if a, ok := t.(Array); ok && a.Element != nil {
		return a.Element.Kind()
	}
	return t.Kind()
}

// Ptr returns a pointer to v. It keeps optional bounds terse in literals.
func Ptr[T any](v T) *T {
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func lengthParams(min, max *int) string {
	var params []string
	if min != nil {
		params = append(params, "min: "+strconv.Itoa(*min))
	}
	if max != nil {
		params = append(params, "max: "+strconv.Itoa(*max))
	}
	return joinParams(params)
}

func joinParams(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "(" + strings.Join(params, ", ") + ")"
}

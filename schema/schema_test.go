package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	for _, ok := range []string{"Contact", "A", "HttpLog2"} {
		assert.True(t, IsValidSchemaName(ok), ok)
	}
	for _, bad := range []string{"", "contact", "Http_Log", "2Fast"} {
		assert.False(t, IsValidSchemaName(bad), bad)
	}
	for _, ok := range []string{"name", "last_contacted", "a1_"} {
		assert.True(t, IsValidFieldName(ok), ok)
	}
	for _, bad := range []string{"", "Name", "firstName", "_x", "1a"} {
		assert.False(t, IsValidFieldName(bad), bad)
	}

	name, err := ParseSchemaName("Deal")
	require.NoError(t, err)
	assert.Equal(t, SchemaName("Deal"), name)
	_, err = ParseFieldName("Deal")
	assert.Error(t, err)
}

func TestFieldTypeEquality(t *testing.T) {
	tests := []struct {
		name  string
		a, b  FieldType
		equal bool
	}{
		{"bounds equal by value", Text{Max: Ptr(5)}, Text{Max: Ptr(5)}, true},
		{"bounds differ", Text{Max: Ptr(5)}, Text{Max: Ptr(6)}, false},
		{"bound missing", Integer{Min: Ptr[int64](1)}, Integer{}, false},
		{"text vs richtext", Text{}, RichText{}, false},
		{"enum order matters", Enum{Variants: []string{"a", "b"}}, Enum{Variants: []string{"b", "a"}}, false},
		{"relation cardinality", Relation{Target: "A"}, Relation{Target: "A", Cardinality: Many}, false},
		{"array element", Array{Element: Integer{}}, Array{Element: Integer{}}, true},
		{"empty composites", Composite{}, Composite{Fields: []FieldDefinition{}}, true},
		{
			"composite members",
			Composite{Fields: []FieldDefinition{{Name: "a", Type: Boolean{}}}},
			Composite{Fields: []FieldDefinition{{Name: "a", Type: Boolean{}, Modifiers: Modifiers{Required: true}}}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestFieldTypeString(t *testing.T) {
	assert.Equal(t, "text(min: 1, max: 5)", Text{Min: Ptr(1), Max: Ptr(5)}.String())
	assert.Equal(t, "integer", Integer{}.String())
	assert.Equal(t, "float(precision: 2)", Float{Precision: Ptr(2)}.String())
	assert.Equal(t, `enum("a", "b")`, Enum{Variants: []string{"a", "b"}}.String())
	assert.Equal(t, "-> Deal[]", Relation{Target: "Deal", Cardinality: Many}.String())
	assert.Equal(t, "boolean[]", Array{Element: Boolean{}}.String())
}

func TestSchemaDefinitionHelpers(t *testing.T) {
	def := SchemaDefinition{Name: "Contact", Version: 1, Fields: []FieldDefinition{
		{Name: "name", Type: Text{}},
		{Name: "company", Type: Relation{Target: "Company"}},
	}}

	f, ok := def.Field("company")
	require.True(t, ok)
	assert.True(t, f.IsRelation())
	_, ok = def.Field("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"name", "company"}, def.FieldNames())

	found, ok := Lookup([]SchemaDefinition{def}, "Contact")
	require.True(t, ok)
	assert.True(t, found.Equal(def))

	bumped := def
	bumped.Version = 2
	assert.False(t, bumped.Equal(def))
}

func TestDefaultValues(t *testing.T) {
	assert.Equal(t, `"a\"b"`, StringDefault(`a"b`).String())
	assert.Equal(t, "-3", IntegerDefault(-3).String())
	assert.Equal(t, "1.50", FloatDefault("1.50").String())
	assert.Equal(t, "true", BooleanDefault(true).String())

	var a, b DefaultValue = StringDefault("x"), StringDefault("x")
	assert.True(t, a == b)
	assert.True(t, Modifiers{Default: a}.Equal(Modifiers{Default: b}))
	assert.False(t, Modifiers{Default: IntegerDefault(1)}.Equal(Modifiers{Default: FloatDefault("1")}))
}

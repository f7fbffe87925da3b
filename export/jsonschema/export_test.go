package jsonschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schema-forge/dsl/parser"
	"github.com/satishbabariya/schema-forge/schema"
)

const src = `
@version(3)
schema Contact {
    name: text(min: 1, max: 20) required
    bio: richtext
    age: integer(min: 0, max: 150)
    score: float default(0.5)
    active: boolean default(true)
    born: datetime
    stage: enum("lead", "customer") default("lead")
    meta: json
    tags: text[]
    company: -> Company
    deals: -> Deal[]
    address: composite {
        city: text required
        zip: text
    }
}

schema Company {
    name: text
}

schema Deal {
    title: text
}
`

func parse(t *testing.T) []schema.SchemaDefinition {
	t.Helper()
	defs, diags := parser.Parse(src)
	require.False(t, diags.HasErrors(), diags.ToPrettyString("crm.schema", src))
	return defs
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestExportDocument(t *testing.T) {
	out, err := Export(parse(t))
	require.NoError(t, err)

	doc := decode(t, string(out))
	assert.Equal(t, Draft, doc["$schema"])
	defs := doc["$defs"].(map[string]any)
	assert.Len(t, defs, 3)

	contact := defs["Contact"].(map[string]any)
	assert.Equal(t, "Contact", contact["title"])
	assert.Equal(t, "Contact entity, version 3", contact["description"])
	assert.Equal(t, false, contact["additionalProperties"])
	assert.Equal(t, []any{"name"}, contact["required"])

	props := contact["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string"}, props["id"])
	assert.Equal(t, map[string]any{"type": "string", "minLength": 1.0, "maxLength": 20.0}, props["name"])
	assert.Equal(t, map[string]any{"type": "integer", "minimum": 0.0, "maximum": 150.0}, props["age"])
	assert.Equal(t, map[string]any{"type": "number", "default": 0.5}, props["score"])
	assert.Equal(t, map[string]any{"type": "boolean", "default": true}, props["active"])
	assert.Equal(t, map[string]any{"type": "string", "format": "date-time"}, props["born"])
	assert.Equal(t, map[string]any{"type": "string", "enum": []any{"lead", "customer"}, "default": "lead"}, props["stage"])
	assert.Equal(t, map[string]any{}, props["meta"])
	assert.Equal(t, map[string]any{"type": "array", "items": map[string]any{"type": "string"}}, props["tags"])
	assert.Equal(t, map[string]any{"type": "string", "description": "id of a Company"}, props["company"])
	assert.Equal(t, map[string]any{
		"type":        "array",
		"uniqueItems": true,
		"items":       map[string]any{"type": "string", "description": "id of a Deal"},
	}, props["deals"])

	address := props["address"].(map[string]any)
	assert.Equal(t, "object", address["type"])
	assert.Equal(t, []any{"city"}, address["required"])
}

func TestExportIsStable(t *testing.T) {
	a, err := Export(parse(t))
	require.NoError(t, err)
	b, err := Export(parse(t))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestValidateEntityAccepts(t *testing.T) {
	contact := parse(t)[0]
	body := decode(t, `{
		"id": "c-1",
		"name": "Ada",
		"age": 36,
		"score": 1.25,
		"stage": "customer",
		"meta": {"anything": [1, 2]},
		"tags": ["vip"],
		"company": "co-1",
		"deals": ["d-1", "d-2"],
		"address": {"city": "London"}
	}`)
	assert.NoError(t, ValidateEntity(contact, body))
	assert.NoError(t, ValidateEntity(contact, decode(t, `{"name": "Bob"}`)))
}

func TestValidateEntityRejects(t *testing.T) {
	contact := parse(t)[0]
	tests := []struct {
		name string
		body string
	}{
		{"missing required", `{}`},
		{"too long", `{"name": "abcdefghijklmnopqrstuvwxyz"}`},
		{"too short", `{"name": ""}`},
		{"wrong type", `{"name": "Ada", "age": "old"}`},
		{"fractional integer", `{"name": "Ada", "age": 1.5}`},
		{"out of range", `{"name": "Ada", "age": 200}`},
		{"unknown variant", `{"name": "Ada", "stage": "churned"}`},
		{"unknown property", `{"name": "Ada", "nickname": "A"}`},
		{"relation not an id", `{"name": "Ada", "company": {"id": "co-1"}}`},
		{"duplicate ids", `{"name": "Ada", "deals": ["d-1", "d-1"]}`},
		{"composite member missing", `{"name": "Ada", "address": {"zip": "N1"}}`},
		{"array element type", `{"name": "Ada", "tags": [1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntity(contact, decode(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Contact entity is invalid")
		})
	}
}

func TestCompile(t *testing.T) {
	for _, def := range parse(t) {
		resolved, err := Compile(def)
		require.NoError(t, err, def.Name)
		assert.NotNil(t, resolved)
	}
}

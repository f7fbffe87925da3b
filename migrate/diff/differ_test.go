package diff

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schema-forge/dsl/parser"
	"github.com/satishbabariya/schema-forge/internal/schematest"
	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/schema"
)

func mustParse(t *testing.T, src string) schema.SchemaDefinition {
	t.Helper()
	defs, diags := parser.Parse(src)
	require.False(t, diags.HasErrors(), diags.ToPrettyString("test.schema", src))
	require.Len(t, defs, 1)
	return defs[0]
}

func texts(p *plan.MigrationPlan) []string {
	var out []string
	for _, s := range p.Steps() {
		out = append(out, s.String())
	}
	return out
}

func TestDiffAddField(t *testing.T) {
	old := mustParse(t, `schema Contact { name: text required }`)
	next := mustParse(t, `schema Contact { name: text required phone: text }`)

	p := Diff(old, next)

	require.Equal(t, 1, p.Len())
	step, ok := p.Steps()[0].(plan.AddField)
	require.True(t, ok)
	assert.Equal(t, schema.FieldName("phone"), step.Field.Name)
	assert.Equal(t, plan.Safe, step.Safety())
	assert.True(t, p.IsSafe())
}

func TestDiffRemoveFieldIsDestructive(t *testing.T) {
	old := mustParse(t, `schema Contact { name: text required email: text required }`)
	next := mustParse(t, `schema Contact { name: text required }`)

	p := Diff(old, next)

	require.Equal(t, 1, p.Len())
	step, ok := p.Steps()[0].(plan.RemoveField)
	require.True(t, ok)
	assert.Equal(t, schema.FieldName("email"), step.Field.Name)
	assert.True(t, p.HasDestructiveSteps())
}

func TestDiffTypeWidening(t *testing.T) {
	old := mustParse(t, `schema Price { amount: integer }`)
	next := mustParse(t, `schema Price { amount: float }`)

	p := Diff(old, next)

	require.Equal(t, 1, p.Len())
	step, ok := p.Steps()[0].(plan.ChangeType)
	require.True(t, ok)
	assert.Equal(t, plan.IntegerToFloat, step.Transform)
	assert.Equal(t, plan.RequiresConfirmation, p.OverallSafety())
}

func TestTransformFor(t *testing.T) {
	tests := []struct {
		name     string
		from, to schema.FieldType
		want     plan.Transform
	}{
		{"integer to float", schema.Integer{}, schema.Float{}, plan.IntegerToFloat},
		{"float to integer", schema.Float{}, schema.Integer{}, plan.SetNull},
		{"integer to text", schema.Integer{}, schema.Text{}, plan.ToString},
		{"boolean to richtext", schema.Boolean{}, schema.RichText{}, plan.ToString},
		{"enum to text", schema.Enum{Variants: []string{"a"}}, schema.Text{}, plan.ToString},
		{"text to integer", schema.Text{}, schema.Integer{}, plan.SetNull},
		{"text to enum", schema.Text{}, schema.Enum{Variants: []string{"a"}}, plan.SetNull},
		{"json to text", schema.JSON{}, schema.Text{}, plan.SetNull},
		{"narrower text", schema.Text{Max: schema.Ptr(10)}, schema.Text{Max: schema.Ptr(5)}, plan.Identity},
		{"array element widening", schema.Array{Element: schema.Integer{}}, schema.Array{Element: schema.Float{}}, plan.IntegerToFloat},
		{"array to scalar", schema.Array{Element: schema.Text{}}, schema.Text{}, plan.SetNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransformFor(tt.from, tt.to))
		})
	}
}

func TestDiffModifiers(t *testing.T) {
	old := mustParse(t, `schema Contact {
    email: text indexed
    stage: text default("new")
    score: integer required
}`)
	next := mustParse(t, `schema Contact {
    email: text required
    stage: text default("won")
    score: integer
}`)

	p := Diff(old, next)

	assert.Equal(t, []string{
		"REMOVE INDEX on 'email'",
		"ADD REQUIRED on 'email'",
		`SET DEFAULT on 'stage' to "won"`,
		"REMOVE REQUIRED on 'score'",
	}, texts(p))
}

func TestDiffNewFieldModifiers(t *testing.T) {
	old := mustParse(t, `schema Contact { name: text }`)
	next := mustParse(t, `schema Contact {
    name: text
    email: text required indexed
    stage: text required default("new")
}`)

	p := Diff(old, next)

	assert.Equal(t, []string{
		"ADD field 'email'",
		"ADD field 'stage'",
		"ADD REQUIRED on 'email'",
		"ADD INDEX on 'email'",
	}, texts(p))
	assert.Equal(t, plan.RequiresConfirmation, p.OverallSafety())
}

func TestDiffRelations(t *testing.T) {
	old := mustParse(t, `schema Contact {
    company: -> Company
    owner: -> User
    notes: text
}`)
	next := mustParse(t, `schema Contact {
    company: -> Company[]
    notes: -> Note[]
    deals: -> Deal[]
}`)

	p := Diff(old, next)

	assert.Equal(t, []string{
		"REMOVE RELATION 'owner'",
		"REMOVE RELATION 'company'",
		"REMOVE field 'notes'",
		"ADD RELATION 'company' -> Company (many)",
		"ADD RELATION 'notes' -> Note (many)",
		"ADD RELATION 'deals' -> Deal (many)",
	}, texts(p))
	for _, s := range p.Steps() {
		assert.NotEqual(t, plan.KindChangeType, s.Kind())
	}
}

func TestDiffIgnoresFieldOrderAndAnnotations(t *testing.T) {
	old := mustParse(t, `schema Contact { name: text email: text }`)
	next := mustParse(t, `@version(2) @display("email") schema Contact { email: text name: text }`)

	p := Diff(old, next)

	assert.True(t, p.IsEmpty())
	assert.Equal(t, uint32(1), p.FromVersion())
	assert.Equal(t, uint32(2), p.ToVersion())
}

func TestCreateAndDrop(t *testing.T) {
	def := mustParse(t, `schema Deal {
    title: text required
    stage: text indexed
    company: -> Company
}`)

	created := NewDiffer().Diff(nil, &def)
	assert.Equal(t, []string{"CREATE schema 'Deal' with 3 fields"}, texts(created))
	assert.True(t, created.IsSafe())

	dropped := NewDiffer().Diff(&def, nil)
	assert.Equal(t, []string{
		"REMOVE INDEX on 'stage'",
		"REMOVE RELATION 'company'",
		"DROP schema 'Deal'",
	}, texts(dropped))
	for _, s := range dropped.Steps() {
		assert.NotEqual(t, plan.KindRemoveField, s.Kind())
	}
}

func TestDiffDifferentNames(t *testing.T) {
	old := mustParse(t, `schema Lead { name: text }`)
	next := mustParse(t, `schema Contact { name: text }`)

	p := Diff(old, next)

	assert.Equal(t, []string{
		"CREATE schema 'Contact' with 1 fields",
		"DROP schema 'Lead'",
	}, texts(p))
}

func TestDiffWithRenames(t *testing.T) {
	old := mustParse(t, `schema Contact { mail: text phone: text }`)
	next := mustParse(t, `schema Contact { email: text indexed phone: text }`)

	p, err := DiffWithRenames(old, next, Renames{"mail": "email"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"RENAME field 'mail' to 'email'",
		"ADD INDEX on 'email'",
	}, texts(p))

	withoutHint := Diff(old, next)
	assert.Equal(t, []string{
		"REMOVE field 'mail'",
		"ADD field 'email'",
		"ADD INDEX on 'email'",
	}, texts(withoutHint))
}

func TestDiffWithInvalidRenames(t *testing.T) {
	old := mustParse(t, `schema Contact { mail: text phone: text }`)
	next := mustParse(t, `schema Contact { email: text phone: text }`)

	tests := map[string]Renames{
		"unknown old field": {"fax": "email"},
		"unknown new field": {"mail": "e_mail"},
		"old field kept":    {"phone": "email"},
		"target existed":    {"mail": "phone"},
	}
	for name, renames := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DiffWithRenames(old, next, renames)
			assert.ErrorIs(t, err, ErrInvalidRename)
		})
	}
}

func TestDiffBatch(t *testing.T) {
	prev, diags := parser.Parse(`
schema Contact { name: text }
schema Lead { name: text }
schema Company { name: text }
`)
	require.False(t, diags.HasErrors())
	next, diags := parser.Parse(`
schema Deal { title: text }
schema Contact { name: text phone: text }
schema Company { name: text }
`)
	require.False(t, diags.HasErrors())

	plans := DiffBatch(prev, next)

	require.Len(t, plans, 3)
	assert.Equal(t, schema.SchemaName("Contact"), plans[0].SchemaName())
	assert.Equal(t, schema.SchemaName("Deal"), plans[1].SchemaName())
	assert.Equal(t, schema.SchemaName("Lead"), plans[2].SchemaName())
	assert.Equal(t, []string{"DROP schema 'Lead'"}, texts(plans[2]))
}

func sameFields(a, b schema.SchemaDefinition) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for _, f := range a.Fields {
		g, ok := b.Field(f.Name)
		if !ok || !f.Equal(g) {
			return false
		}
	}
	return true
}

func TestDiffProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("diff(s, s) is empty", prop.ForAll(
		func(def schema.SchemaDefinition) bool {
			return Diff(def, def).IsEmpty()
		},
		schematest.GenSchema("Contact"),
	))

	properties.Property("a plan is empty exactly when the fields are unchanged", prop.ForAll(
		func(pair [2]schema.SchemaDefinition) bool {
			return Diff(pair[0], pair[1]).IsEmpty() == sameFields(pair[0], pair[1])
		},
		schematest.GenSchemaPair("Contact"),
	))

	properties.Property("steps are ordered by phase", prop.ForAll(
		func(pair [2]schema.SchemaDefinition) bool {
			steps := Diff(pair[0], pair[1]).Steps()
			for i := 1; i < len(steps); i++ {
				if Phase(steps[i-1].Kind()) > Phase(steps[i].Kind()) {
					return false
				}
			}
			return true
		},
		schematest.GenSchemaPair("Contact"),
	))

	properties.Property("every step targets a field of either version", prop.ForAll(
		func(pair [2]schema.SchemaDefinition) bool {
			for _, s := range Diff(pair[0], pair[1]).Steps() {
				name := s.Target()
				_, inOld := pair[0].Field(name)
				_, inNew := pair[1].Field(name)
				if !inOld && !inNew {
					return false
				}
			}
			return true
		},
		schematest.GenSchemaPair("Contact"),
	))

	properties.Property("removed fields are destructive", prop.ForAll(
		func(pair [2]schema.SchemaDefinition) bool {
			removed := false
			for _, f := range pair[0].Fields {
				if _, ok := pair[1].Field(f.Name); !ok {
					removed = true
				}
			}
			return !removed || Diff(pair[0], pair[1]).HasDestructiveSteps()
		},
		schematest.GenSchemaPair("Contact"),
	))

	properties.TestingRun(t)
}

// Package schematest provides random schema generators for property tests.
package schematest

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"github.com/satishbabariya/schema-forge/schema"
)

// RelationTargets are the schema names random relations point to.
var RelationTargets = []schema.SchemaName{"Company", "Contact", "Deal"}

const stringAlphabet = "abcxyz ABC_019-\"\\\n\té"

// GenSchema generates parser-producible schema definitions named name.
func GenSchema(name schema.SchemaName) gopter.Gen {
	return gen.Int64().Map(func(seed int64) schema.SchemaDefinition {
		return RandomSchema(rand.New(rand.NewSource(seed)), name)
	})
}

// GenSchemaPair generates an old definition and a mutated successor.
func GenSchemaPair(name schema.SchemaName) gopter.Gen {
	return gen.Int64().Map(func(seed int64) [2]schema.SchemaDefinition {
		r := rand.New(rand.NewSource(seed))
		old := RandomSchema(r, name)
		return [2]schema.SchemaDefinition{old, Mutate(r, old)}
	})
}

// RandomSchema builds a random definition with unique field names.
func RandomSchema(r *rand.Rand, name schema.SchemaName) schema.SchemaDefinition {
	def := schema.SchemaDefinition{
		Name:    name,
		Version: uint32(1 + r.Intn(4)),
		Fields:  randomFields(r, r.Intn(7), 0),
	}
	if len(def.Fields) > 0 && r.Intn(3) == 0 {
		def.DisplayField = def.Fields[r.Intn(len(def.Fields))].Name
	}
	return def
}

// Mutate returns a successor of def with fields removed, added, retyped
// or given different modifiers.
func Mutate(r *rand.Rand, def schema.SchemaDefinition) schema.SchemaDefinition {
	next := schema.SchemaDefinition{Name: def.Name, Version: def.Version + 1}
	used := make(map[schema.FieldName]bool)
	for _, f := range def.Fields {
		switch r.Intn(5) {
		case 0:
			continue
		case 1:
			f.Type = randomType(r, 1)
			f.Modifiers = randomModifiers(r, f.Type)
		case 2:
			f.Modifiers = randomModifiers(r, f.Type)
		}
		used[f.Name] = true
		next.Fields = append(next.Fields, f)
	}
	for _, f := range randomFields(r, r.Intn(3), 1) {
		if used[f.Name] {
			continue
		}
		used[f.Name] = true
		next.Fields = append(next.Fields, f)
	}
	if next.Fields == nil {
		next.Fields = []schema.FieldDefinition{}
	}
	return next
}

func randomFields(r *rand.Rand, n int, depth int) []schema.FieldDefinition {
	fields := make([]schema.FieldDefinition, 0, n)
	used := make(map[schema.FieldName]bool)
	for len(fields) < n {
		name := randomFieldName(r)
		if used[name] {
			continue
		}
		used[name] = true
		t := randomType(r, depth)
		fields = append(fields, schema.FieldDefinition{
			Name:      name,
			Type:      t,
			Modifiers: randomModifiers(r, t),
		})
	}
	return fields
}

func randomFieldName(r *rand.Rand) schema.FieldName {
	const head = "abcdefghijklmnopqrstuvwxyz"
	const tail = "abcdefghijklmnopqrstuvwxyz0123456789_"
	var b strings.Builder
	b.WriteByte(head[r.Intn(len(head))])
	for i := r.Intn(8); i > 0; i-- {
		b.WriteByte(tail[r.Intn(len(tail))])
	}
	return schema.FieldName(b.String())
}

func randomString(r *rand.Rand) string {
	alphabet := []rune(stringAlphabet)
	n := r.Intn(6)
	out := make([]rune, n)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}

func optionalInt(r *rand.Rand, lo, hi int) *int {
	if r.Intn(2) == 0 {
		return nil
	}
	return schema.Ptr(lo + r.Intn(hi-lo+1))
}

func optionalInt64(r *rand.Rand) *int64 {
	if r.Intn(2) == 0 {
		return nil
	}
	return schema.Ptr(r.Int63n(2000) - 1000)
}

func randomPrimitive(r *rand.Rand) schema.FieldType {
	switch r.Intn(8) {
	case 0:
		return schema.Text{Min: optionalInt(r, 0, 10), Max: optionalInt(r, 10, 500)}
	case 1:
		return schema.RichText{Min: optionalInt(r, 0, 10), Max: optionalInt(r, 10, 500)}
	case 2:
		return schema.Integer{Min: optionalInt64(r), Max: optionalInt64(r)}
	case 3:
		return schema.Float{Precision: optionalInt(r, 0, 6)}
	case 4:
		return schema.Boolean{}
	case 5:
		return schema.DateTime{}
	case 6:
		variants := make([]string, 1+r.Intn(4))
		for i := range variants {
			variants[i] = randomString(r)
		}
		return schema.Enum{Variants: variants}
	default:
		return schema.JSON{}
	}
}

func randomType(r *rand.Rand, depth int) schema.FieldType {
	switch r.Intn(6) {
	case 0:
		return schema.Array{Element: randomPrimitive(r)}
	case 1:
		card := schema.One
		if r.Intn(2) == 0 {
			card = schema.Many
		}
		return schema.Relation{Target: RelationTargets[r.Intn(len(RelationTargets))], Cardinality: card}
	case 2:
		if depth < 2 {
			return schema.Composite{Fields: randomFields(r, r.Intn(4), depth+1)}
		}
	}
	return randomPrimitive(r)
}

func randomModifiers(r *rand.Rand, t schema.FieldType) schema.Modifiers {
	mods := schema.Modifiers{
		Required: r.Intn(3) == 0,
		Indexed:  r.Intn(4) == 0,
	}
	if r.Intn(3) == 0 {
		mods.Default = randomDefault(r, t)
	}
	return mods
}

func randomDefault(r *rand.Rand, t schema.FieldType) schema.DefaultValue {
	switch t := t.(type) {
	case schema.Integer:
		return schema.IntegerDefault(r.Int63n(200) - 100)
	case schema.Float:
		return schema.FloatDefault(fmt.Sprintf("%d.%d", r.Intn(100)-50, r.Intn(100)))
	case schema.Boolean:
		return schema.BooleanDefault(r.Intn(2) == 0)
	case schema.Enum:
		return schema.StringDefault(t.Variants[r.Intn(len(t.Variants))])
	case schema.Text, schema.RichText:
		return schema.StringDefault(randomString(r))
	}
	return nil
}

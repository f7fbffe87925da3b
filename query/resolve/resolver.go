// Package resolve walks field paths over a batch of schemas and checks
// filters and queries against the resolved field types.
package resolve

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/satishbabariya/schema-forge/query/filter"
	"github.com/satishbabariya/schema-forge/schema"
)

const maxSuggestions = 3

// Hop is one relation traversal along a path.
type Hop struct {
	Field  schema.FieldName
	From   schema.SchemaName
	Target schema.SchemaName
}

// Resolution is the outcome of resolving a path.
type Resolution struct {
	// Field is the terminal field; for composite members it is the member.
	Field schema.FieldDefinition
	// Schema owns the terminal field, after following every hop.
	Schema schema.SchemaName
	// Hops are the relations traversed, in path order.
	Hops []Hop
	// Members are the composite members walked after the last hop.
	Members []schema.FieldName
}

// Type is the resolved field type.
func (r Resolution) Type() schema.FieldType {
	return r.Field.Type
}

// Resolve walks path starting at root. Every non-terminal segment must be a
// single-valued relation, or a composite whose members the following
// segments address. The batch is only read.
func Resolve(batch []schema.SchemaDefinition, root schema.SchemaName, path filter.FieldPath) (Resolution, error) {
	if path.IsEmpty() {
		return Resolution{}, &PathError{Path: path, Reason: ReasonEmptyPath}
	}
	def, ok := schema.Lookup(batch, root)
	if !ok {
		return Resolution{}, &PathError{Path: path, Segment: string(root), Reason: ReasonUnknownSchema}
	}

	res := Resolution{Schema: def.Name}
	scope := def.Fields
	inComposite := false
	segments := path.Segments()
	for i, seg := range segments {
		field, ok := findField(scope, seg)
		if !ok {
			return Resolution{}, &PathError{
				Path:         path,
				SegmentIndex: i,
				Segment:      seg,
				Reason:       ReasonUnknownField,
				Suggestions:  suggest(seg, scope),
			}
		}
		if inComposite {
			res.Members = append(res.Members, field.Name)
		}
		if i == len(segments)-1 {
			res.Field = field
			return res, nil
		}

		switch t := field.Type.(type) {
		case schema.Relation:
			if t.Cardinality == schema.Many {
				return Resolution{}, &PathError{Path: path, SegmentIndex: i, Segment: seg, Reason: ReasonManyRelation}
			}
			target, ok := schema.Lookup(batch, t.Target)
			if !ok {
				return Resolution{}, &PathError{Path: path, SegmentIndex: i, Segment: seg, Reason: ReasonUnknownSchema}
			}
			res.Hops = append(res.Hops, Hop{Field: field.Name, From: res.Schema, Target: target.Name})
			res.Schema = target.Name
			res.Members = nil
			scope = target.Fields
			inComposite = false
		case schema.Composite:
			if !inComposite {
				res.Members = []schema.FieldName{field.Name}
			}
			scope = t.Fields
			inComposite = true
		default:
			reason := ReasonNotARelation
			if inComposite {
				reason = ReasonNotComposite
			}
			return Resolution{}, &PathError{Path: path, SegmentIndex: i, Segment: seg, Reason: reason}
		}
	}
	panic("unreachable")
}

func findField(scope []schema.FieldDefinition, name string) (schema.FieldDefinition, bool) {
	for _, f := range scope {
		if string(f.Name) == name {
			return f, true
		}
	}
	return schema.FieldDefinition{}, false
}

type fieldNames []schema.FieldDefinition

func (f fieldNames) String(i int) string { return string(f[i].Name) }
func (f fieldNames) Len() int            { return len(f) }

func suggest(seg string, scope []schema.FieldDefinition) []string {
	matches := fuzzy.FindFrom(seg, fieldNames(scope))
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	var out []string
	for _, m := range matches {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

package resolve

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/satishbabariya/schema-forge/query/filter"
	"github.com/satishbabariya/schema-forge/schema"
)

// ValidateFilter resolves every leaf path of f against root and checks each
// literal against the resolved type. All problems are reported, joined in
// leaf order. A nil filter is valid.
func ValidateFilter(batch []schema.SchemaDefinition, root schema.SchemaName, f filter.Filter) error {
	var errs []error
	filter.Walk(f, func(n filter.Filter) bool {
		if err := checkNode(batch, root, n); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

// ValidateQuery checks paging bounds, the filter and every sort clause.
func ValidateQuery(batch []schema.SchemaDefinition, q filter.Query) error {
	var errs []error
	if err := q.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, ok := schema.Lookup(batch, q.Schema); !ok {
		errs = append(errs, &PathError{Segment: string(q.Schema), Reason: ReasonUnknownSchema})
		return errors.Join(errs...)
	}
	if err := ValidateFilter(batch, q.Schema, q.Filter); err != nil {
		errs = append(errs, err)
	}
	for _, s := range q.Sort {
		res, err := Resolve(batch, q.Schema, s.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !res.Type().Kind().IsScalar() {
			errs = append(errs, &FilterError{
				Expr:    fmt.Sprintf("ORDER BY %s %s", s.Path, s.Direction),
				Path:    s.Path,
				Problem: ProblemUnsortable,
				Message: fmt.Sprintf("cannot sort by %s", res.Type()),
			})
		}
	}
	return errors.Join(errs...)
}

func checkNode(batch []schema.SchemaDefinition, root schema.SchemaName, n filter.Filter) error {
	switch n := n.(type) {
	case filter.Not:
		if n.Filter == nil {
			return &FilterError{Expr: "NOT", Problem: ProblemMissingChild, Message: "NOT needs exactly one filter"}
		}
		return nil
	case filter.And, filter.Or:
		return nil
	}

	path, _ := filter.PathOf(n)
	res, err := Resolve(batch, root, path)
	if err != nil {
		return err
	}
	t := res.Type()
	if rel, ok := t.(schema.Relation); ok && rel.Cardinality == schema.Many {
		return &PathError{
			Path:         path,
			SegmentIndex: path.Depth() - 1,
			Segment:      path.Leaf(),
			Reason:       ReasonManyRelation,
		}
	}
	fail := func(p FilterProblem, format string, args ...any) error {
		return &FilterError{Expr: n.String(), Path: path, Problem: p, Message: fmt.Sprintf(format, args...)}
	}

	// Array leaves test element membership: CONTAINS and IN take element
	// literals, and only null compares with the whole array.
	arr, isArray := t.(schema.Array)

	switch n := n.(type) {
	case filter.Comparison:
		if n.Op.IsOrdering() && !isOrdered(t) {
			return fail(ProblemUnordered, "%s values have no order", t.Kind())
		}
		return checkValue(t, n.Value, fail)
	case filter.Contains:
		if isArray {
			return checkValue(arr.Element, filter.Text(n.Value), fail)
		}
		if !t.Kind().IsTextual() {
			return fail(ProblemTextOperator, "text operator on %s field", t.Kind())
		}
	case filter.StartsWith:
		if !t.Kind().IsTextual() {
			return fail(ProblemTextOperator, "text operator on %s field", t.Kind())
		}
	case filter.In:
		if len(n.Values) == 0 {
			return fail(ProblemEmptyIn, "IN needs at least one value")
		}
		elem := t
		if isArray {
			elem = arr.Element
		}
		for _, v := range n.Values {
			if _, null := v.(filter.Null); null && isArray {
				return fail(ProblemTypeMismatch, "array elements are never null")
			}
			if err := checkValue(elem, v, fail); err != nil {
				return err
			}
		}
	}
	return nil
}

func isOrdered(t schema.FieldType) bool {
	switch t.Kind() {
	case schema.KindText, schema.KindRichText, schema.KindInteger, schema.KindFloat, schema.KindDateTime:
		return true
	}
	return false
}

func checkValue(t schema.FieldType, v filter.Value, fail func(FilterProblem, string, ...any) error) error {
	if _, ok := v.(filter.Null); ok {
		return nil
	}
	mismatch := func() error {
		return fail(ProblemTypeMismatch, "%s field compared with %s value", t.Kind(), v.TypeName())
	}

	switch t := t.(type) {
	case schema.Text, schema.RichText:
		if _, ok := v.(filter.Text); !ok {
			return mismatch()
		}
	case schema.Enum:
		s, ok := v.(filter.Text)
		if !ok {
			return mismatch()
		}
		if !slices.Contains(t.Variants, string(s)) {
			return fail(ProblemUnknownVariant, "%s is not one of %s", s, t)
		}
	case schema.Integer:
		if _, ok := v.(filter.Integer); !ok {
			return mismatch()
		}
	case schema.Float:
		switch v.(type) {
		case filter.Float, filter.Integer:
		default:
			return mismatch()
		}
	case schema.Boolean:
		if _, ok := v.(filter.Boolean); !ok {
			return mismatch()
		}
	case schema.DateTime:
		switch v := v.(type) {
		case filter.DateTime:
		case filter.Text:
			if _, err := time.Parse(time.RFC3339, string(v)); err != nil {
				return fail(ProblemTypeMismatch, "%s is not an RFC 3339 timestamp", v)
			}
		default:
			return mismatch()
		}
	case schema.Relation:
		if _, ok := v.(filter.Text); !ok {
			return fail(ProblemTypeMismatch, "relation compared with %s value, want an entity id", v.TypeName())
		}
	case schema.JSON:
		switch v.(type) {
		case filter.Text, filter.Integer, filter.Float, filter.Boolean:
		default:
			return mismatch()
		}
	default:
		return mismatch()
	}
	return nil
}

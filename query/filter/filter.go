package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
)

var opSymbols = [...]string{"=", "!=", ">", ">=", "<", "<="}

func (o Op) String() string {
	if int(o) < 0 || int(o) >= len(opSymbols) {
		return "?"
	}
	return opSymbols[o]
}

// IsOrdering reports whether the operator needs an ordered type.
func (o Op) IsOrdering() bool {
	return o == OpGt || o == OpGte || o == OpLt || o == OpLte
}

// Filter is a boolean expression tree. The variants are Comparison,
// Contains, StartsWith, In, And, Or and Not. Trees are explicit, so there
// is no operator precedence.
type Filter interface {
	String() string
	filter()
}

// Comparison compares a field with a literal.
type Comparison struct {
	Path  FieldPath
	Op    Op
	Value Value
}

// Contains matches text fields containing a substring, and array fields
// holding the value as an element.
type Contains struct {
	Path  FieldPath
	Value string
}

// StartsWith matches text fields with a prefix.
type StartsWith struct {
	Path  FieldPath
	Value string
}

// In matches fields equal to any of the values. On an array field it
// matches arrays holding any of them.
type In struct {
	Path   FieldPath
	Values []Value
}

type And struct {
	Filters []Filter
}

type Or struct {
	Filters []Filter
}

// Not negates exactly one filter.
type Not struct {
	Filter Filter
}

func Eq(path FieldPath, v Value) Filter  { return Comparison{Path: path, Op: OpEq, Value: v} }
func Ne(path FieldPath, v Value) Filter  { return Comparison{Path: path, Op: OpNe, Value: v} }
func Gt(path FieldPath, v Value) Filter  { return Comparison{Path: path, Op: OpGt, Value: v} }
func Gte(path FieldPath, v Value) Filter { return Comparison{Path: path, Op: OpGte, Value: v} }
func Lt(path FieldPath, v Value) Filter  { return Comparison{Path: path, Op: OpLt, Value: v} }
func Lte(path FieldPath, v Value) Filter { return Comparison{Path: path, Op: OpLte, Value: v} }

func ContainsText(path FieldPath, s string) Filter { return Contains{Path: path, Value: s} }

func HasPrefix(path FieldPath, s string) Filter { return StartsWith{Path: path, Value: s} }

func OneOf(path FieldPath, values ...Value) Filter { return In{Path: path, Values: values} }

func AllOf(filters ...Filter) Filter { return And{Filters: filters} }

func AnyOf(filters ...Filter) Filter { return Or{Filters: filters} }

func Negate(f Filter) Filter { return Not{Filter: f} }

func (f Comparison) String() string {
	return fmt.Sprintf("%s %s %s", f.Path, f.Op, f.Value)
}

func (f Contains) String() string {
	return fmt.Sprintf("%s CONTAINS %s", f.Path, strconv.Quote(f.Value))
}

func (f StartsWith) String() string {
	return fmt.Sprintf("%s STARTS WITH %s", f.Path, strconv.Quote(f.Value))
}

func (f In) String() string {
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s IN [%s]", f.Path, strings.Join(parts, ", "))
}

func (f And) String() string { return joinFilters(f.Filters, " AND ") }
func (f Or) String() string  { return joinFilters(f.Filters, " OR ") }
func (f Not) String() string { return fmt.Sprintf("NOT (%s)", f.Filter) }

func joinFilters(filters []Filter, sep string) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (Comparison) filter() {}
func (Contains) filter()   {}
func (StartsWith) filter() {}
func (In) filter()         {}
func (And) filter()        {}
func (Or) filter()         {}
func (Not) filter()        {}

// PathOf returns the path of a leaf filter; ok is false for combinators.
func PathOf(f Filter) (path FieldPath, ok bool) {
	switch f := f.(type) {
	case Comparison:
		return f.Path, true
	case Contains:
		return f.Path, true
	case StartsWith:
		return f.Path, true
	case In:
		return f.Path, true
	}
	return FieldPath{}, false
}

// Walk calls fn for f and every filter below it, depth first. Returning
// false from fn skips the children of that node.
func Walk(f Filter, fn func(Filter) bool) {
	if f == nil || !fn(f) {
		return
	}
	switch f := f.(type) {
	case And:
		for _, c := range f.Filters {
			Walk(c, fn)
		}
	case Or:
		for _, c := range f.Filters {
			Walk(c, fn)
		}
	case Not:
		Walk(f.Filter, fn)
	}
}

// Paths lists the paths of every leaf in source order.
func Paths(f Filter) []FieldPath {
	var out []FieldPath
	Walk(f, func(n Filter) bool {
		if p, ok := PathOf(n); ok {
			out = append(out, p)
		}
		return true
	})
	return out
}

package resolve

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/schema-forge/query/filter"
)

// Reason classifies a path resolution failure.
type Reason string

const (
	ReasonEmptyPath     Reason = "empty_path"
	ReasonUnknownSchema Reason = "unknown_schema"
	ReasonUnknownField  Reason = "unknown_field"
	ReasonNotARelation  Reason = "not_a_relation"
	ReasonManyRelation  Reason = "many_relation"
	ReasonNotComposite  Reason = "not_composite"
)

var reasonText = map[Reason]string{
	ReasonEmptyPath:     "path is empty",
	ReasonUnknownSchema: "unknown schema",
	ReasonUnknownField:  "unknown field",
	ReasonNotARelation:  "field is not a relation and cannot be traversed",
	ReasonManyRelation:  "relation has cardinality many and is not single-valued",
	ReasonNotComposite:  "composite member is not a composite and cannot be traversed",
}

// PathError reports the segment at which resolution failed.
type PathError struct {
	Path         filter.FieldPath
	SegmentIndex int
	Segment      string
	Reason       Reason
	// Suggestions holds close field names when Reason is ReasonUnknownField.
	Suggestions []string
}

func (e *PathError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot resolve '%s' at segment %d", e.Path, e.SegmentIndex)
	if e.Segment != "" {
		fmt.Fprintf(&b, " ('%s')", e.Segment)
	}
	fmt.Fprintf(&b, ": %s", reasonText[e.Reason])
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, "; did you mean %s?", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

// FilterProblem classifies a leaf that resolved but cannot be evaluated.
type FilterProblem string

const (
	ProblemTypeMismatch   FilterProblem = "type_mismatch"
	ProblemEmptyIn        FilterProblem = "empty_in"
	ProblemTextOperator   FilterProblem = "text_operator"
	ProblemUnordered      FilterProblem = "unordered_type"
	ProblemUnknownVariant FilterProblem = "unknown_variant"
	ProblemMissingChild   FilterProblem = "missing_child"
	ProblemUnsortable     FilterProblem = "unsortable"
)

// FilterError reports a filter leaf or sort clause that does not fit the
// resolved field type.
type FilterError struct {
	// Expr is the textual form of the offending leaf.
	Expr    string
	Path    filter.FieldPath
	Problem FilterProblem
	Message string
}

func (e *FilterError) Error() string {
	if e.Path.IsEmpty() {
		return fmt.Sprintf("%s: %s [%s]", e.Expr, e.Message, e.Problem)
	}
	return fmt.Sprintf("%s: %s: %s [%s]", e.Expr, e.Path, e.Message, e.Problem)
}

package diff

import (
	"slices"

	"github.com/satishbabariya/schema-forge/migrate/plan"
)

// phase ranks step kinds. Creation comes first, then renames, then removal
// of dependent artifacts before the fields and schemas they hang off,
// then additions, type changes, modifiers, and finally new indexes once
// the columns they cover are in their final shape.
var phase = map[plan.StepKind]int{
	plan.KindCreateSchema:   0,
	plan.KindRenameField:    1,
	plan.KindRemoveIndex:    2,
	plan.KindRemoveRelation: 2,
	plan.KindRemoveField:    3,
	plan.KindDropSchema:     4,
	plan.KindAddField:       5,
	plan.KindAddRelation:    5,
	plan.KindChangeType:     6,
	plan.KindAddRequired:    7,
	plan.KindRemoveRequired: 7,
	plan.KindSetDefault:     7,
	plan.KindRemoveDefault:  7,
	plan.KindAddIndex:       8,
}

// Phase returns the ordering rank of a step kind.
func Phase(kind plan.StepKind) int {
	return phase[kind]
}

// orderSteps sorts steps by phase. Steps in the same phase keep the order
// they were collected in, which follows field declaration order.
func orderSteps(steps []plan.Step) []plan.Step {
	ordered := slices.Clone(steps)
	slices.SortStableFunc(ordered, func(a, b plan.Step) int {
		return phase[a.Kind()] - phase[b.Kind()]
	})
	return ordered
}

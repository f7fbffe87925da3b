package diff

import (
	"slices"
	"strings"

	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/schema"
)

// DiffBatch pairs schemas by name across two batches and diffs each pair.
// Schemas only in next are created, schemas only in prev are dropped, and
// unchanged schemas produce no plan. Plans are sorted by schema name.
func DiffBatch(prev, next []schema.SchemaDefinition) []*plan.MigrationPlan {
	names := make(map[schema.SchemaName]bool, len(prev)+len(next))
	for _, s := range prev {
		names[s.Name] = true
	}
	for _, s := range next {
		names[s.Name] = true
	}
	sorted := make([]schema.SchemaName, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	slices.SortFunc(sorted, func(a, b schema.SchemaName) int {
		return strings.Compare(string(a), string(b))
	})

	d := NewDiffer()
	var plans []*plan.MigrationPlan
	for _, name := range sorted {
		var before, after *schema.SchemaDefinition
		if s, ok := schema.Lookup(prev, name); ok {
			before = &s
		}
		if s, ok := schema.Lookup(next, name); ok {
			after = &s
		}
		p := d.Diff(before, after)
		if p.IsEmpty() {
			continue
		}
		plans = append(plans, p)
	}
	return plans
}

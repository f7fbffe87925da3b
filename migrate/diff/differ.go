// Package diff compares two versions of a schema and produces an ordered,
// safety-classified migration plan. Diffing never fails for two schemas of
// the same name; every structural difference maps to some step.
package diff

import (
	"errors"
	"fmt"

	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/schema"
)

// ErrInvalidRename is returned by DiffWithRenames for a hint that does not
// map an old-only field onto a new-only field.
var ErrInvalidRename = errors.New("invalid rename hint")

// Renames maps old field names to their new names.
type Renames map[schema.FieldName]schema.FieldName

// Differ compares schema versions.
type Differ struct {
	renames Renames
}

// NewDiffer creates a differ without rename hints.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff compares two versions of the same schema.
func Diff(old, next schema.SchemaDefinition) *plan.MigrationPlan {
	return (&Differ{}).diff(old, next)
}

// DiffWithRenames compares two versions, emitting RenameField for each
// hint instead of a remove and an add.
func DiffWithRenames(old, next schema.SchemaDefinition, renames Renames) (*plan.MigrationPlan, error) {
	d := &Differ{renames: renames}
	if err := d.checkRenames(old, next); err != nil {
		return nil, err
	}
	return d.diff(old, next), nil
}

// Create is the plan for a schema that did not exist before.
func Create(def schema.SchemaDefinition) *plan.MigrationPlan {
	return plan.New(def.Name, 0, def.Version, []plan.Step{plan.CreateSchema{Schema: def}})
}

// Drop is the plan for a schema that no longer exists. Indexes and
// relations are removed before the schema itself; fields are not removed
// one by one.
func Drop(def schema.SchemaDefinition) *plan.MigrationPlan {
	c := newCollector()
	for _, f := range def.Fields {
		c.dependentRemovals(f)
	}
	c.add(plan.DropSchema{Name: def.Name})
	return plan.New(def.Name, def.Version, 0, c.ordered())
}

// Diff compares old and new. Schemas with different names are treated as a
// drop of old followed by a create of new.
func (d *Differ) Diff(old, next *schema.SchemaDefinition) *plan.MigrationPlan {
	switch {
	case old == nil && next == nil:
		return plan.New("", 0, 0, nil)
	case old == nil:
		return Create(*next)
	case next == nil:
		return Drop(*old)
	}
	return d.diff(*old, *next)
}

func (d *Differ) diff(old, next schema.SchemaDefinition) *plan.MigrationPlan {
	if old.Name != next.Name {
		steps := append(Drop(old).Steps(), plan.CreateSchema{Schema: next})
		return plan.New(next.Name, old.Version, next.Version, orderSteps(steps))
	}

	oldFields := make(map[schema.FieldName]schema.FieldDefinition, len(old.Fields))
	for _, f := range old.Fields {
		oldFields[d.renamed(f.Name)] = f
	}
	newFields := make(map[schema.FieldName]bool, len(next.Fields))
	for _, f := range next.Fields {
		newFields[f.Name] = true
	}

	c := newCollector()
	for _, f := range old.Fields {
		if to, ok := d.renames[f.Name]; ok && newFields[to] {
			c.add(plan.RenameField{From: f.Name, To: to})
		}
	}
	for _, f := range old.Fields {
		if !newFields[d.renamed(f.Name)] {
			c.removeField(f)
		}
	}
	for _, f := range next.Fields {
		prev, ok := oldFields[f.Name]
		if !ok {
			c.addField(f)
			continue
		}
		prev.Name = f.Name
		c.compareField(prev, f)
	}
	return plan.New(next.Name, old.Version, next.Version, c.ordered())
}

func (d *Differ) renamed(name schema.FieldName) schema.FieldName {
	if to, ok := d.renames[name]; ok {
		return to
	}
	return name
}

func (d *Differ) checkRenames(old, next schema.SchemaDefinition) error {
	targets := make(map[schema.FieldName]schema.FieldName, len(d.renames))
	for from, to := range d.renames {
		if _, ok := old.Field(from); !ok {
			return fmt.Errorf("%w: '%s' is not a field of the old %s", ErrInvalidRename, from, old.Name)
		}
		if _, ok := next.Field(to); !ok {
			return fmt.Errorf("%w: '%s' is not a field of the new %s", ErrInvalidRename, to, next.Name)
		}
		if _, ok := next.Field(from); ok {
			return fmt.Errorf("%w: '%s' still exists in the new %s", ErrInvalidRename, from, next.Name)
		}
		if _, ok := old.Field(to); ok {
			return fmt.Errorf("%w: '%s' already exists in the old %s", ErrInvalidRename, to, old.Name)
		}
		if prev, dup := targets[to]; dup {
			return fmt.Errorf("%w: '%s' and '%s' both renamed to '%s'", ErrInvalidRename, prev, from, to)
		}
		targets[to] = from
	}
	return nil
}

// collector accumulates steps in field order before phase ordering.
type collector struct {
	steps []plan.Step
}

func newCollector() *collector {
	return &collector{}
}

func (c *collector) add(s plan.Step) {
	c.steps = append(c.steps, s)
}

func (c *collector) ordered() []plan.Step {
	return orderSteps(c.steps)
}

func (c *collector) addField(f schema.FieldDefinition) {
	if rel, ok := f.Type.(schema.Relation); ok {
		c.add(plan.AddRelation{Name: f.Name, TargetSchema: rel.Target, Cardinality: rel.Cardinality})
	} else {
		c.add(plan.AddField{Field: f})
	}
	if f.Modifiers.Required && !f.Modifiers.HasDefault() {
		c.add(plan.AddRequired{Name: f.Name})
	}
	if f.Modifiers.Indexed {
		c.add(plan.AddIndex{Name: f.Name})
	}
}

func (c *collector) removeField(f schema.FieldDefinition) {
	if f.Modifiers.Indexed {
		c.add(plan.RemoveIndex{Name: f.Name})
	}
	if rel, ok := f.Type.(schema.Relation); ok {
		c.add(plan.RemoveRelation{Name: f.Name, TargetSchema: rel.Target, Cardinality: rel.Cardinality})
		return
	}
	c.add(plan.RemoveField{Field: f})
}

func (c *collector) dependentRemovals(f schema.FieldDefinition) {
	if f.Modifiers.Indexed {
		c.add(plan.RemoveIndex{Name: f.Name})
	}
	if rel, ok := f.Type.(schema.Relation); ok {
		c.add(plan.RemoveRelation{Name: f.Name, TargetSchema: rel.Target, Cardinality: rel.Cardinality})
	}
}

// compareField diffs two definitions of the same (possibly renamed) field.
func (c *collector) compareField(old, next schema.FieldDefinition) {
	if old.Equal(next) {
		return
	}
	if old.IsRelation() != next.IsRelation() {
		c.removeField(old)
		c.addField(next)
		return
	}
	if !old.Type.Equal(next.Type) {
		if rel, ok := next.Type.(schema.Relation); ok {
			prev := old.Type.(schema.Relation)
			c.add(plan.RemoveRelation{Name: old.Name, TargetSchema: prev.Target, Cardinality: prev.Cardinality})
			c.add(plan.AddRelation{Name: next.Name, TargetSchema: rel.Target, Cardinality: rel.Cardinality})
		} else {
			c.add(plan.ChangeType{
				Name:      next.Name,
				From:      old.Type,
				To:        next.Type,
				Transform: TransformFor(old.Type, next.Type),
			})
		}
	}
	c.compareModifiers(next.Name, old.Modifiers, next.Modifiers)
}

func (c *collector) compareModifiers(name schema.FieldName, old, next schema.Modifiers) {
	switch {
	case !old.Required && next.Required:
		c.add(plan.AddRequired{Name: name})
	case old.Required && !next.Required:
		c.add(plan.RemoveRequired{Name: name})
	}
	switch {
	case next.HasDefault() && old.Default != next.Default:
		c.add(plan.SetDefault{Name: name, Value: next.Default})
	case old.HasDefault() && !next.HasDefault():
		c.add(plan.RemoveDefault{Name: name})
	}
	switch {
	case !old.Indexed && next.Indexed:
		c.add(plan.AddIndex{Name: name})
	case old.Indexed && !next.Indexed:
		c.add(plan.RemoveIndex{Name: name})
	}
}

// TransformFor picks the value conversion for a type change: integer to
// float widens, any scalar to a textual type renders as a string, a change
// of constraints within one kind keeps values, anything else nulls them.
func TransformFor(from, to schema.FieldType) plan.Transform {
	if from.Kind() == to.Kind() {
		fa, okFrom := from.(schema.Array)
		ta, okTo := to.(schema.Array)
		if okFrom && okTo {
			return TransformFor(fa.Element, ta.Element)
		}
		return plan.Identity
	}
	switch {
	case from.Kind() == schema.KindInteger && to.Kind() == schema.KindFloat:
		return plan.IntegerToFloat
	case from.Kind().IsScalar() && (to.Kind() == schema.KindText || to.Kind() == schema.KindRichText):
		return plan.ToString
	}
	return plan.SetNull
}

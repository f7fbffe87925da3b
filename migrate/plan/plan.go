package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/satishbabariya/schema-forge/dsl/printer"
	"github.com/satishbabariya/schema-forge/schema"
)

// planNamespace scopes plan IDs so equal plans always get equal IDs.
var planNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/satishbabariya/schema-forge/migration-plan"))

// MigrationPlan is an ordered list of steps transforming one version of a
// schema into another. Plans are never mutated after construction.
type MigrationPlan struct {
	id          uuid.UUID
	schemaName  schema.SchemaName
	fromVersion uint32
	toVersion   uint32
	steps       []Step
}

// New creates a plan. FromVersion is 0 when the schema is being created and
// toVersion is 0 when it is being dropped.
func New(name schema.SchemaName, fromVersion, toVersion uint32, steps []Step) *MigrationPlan {
	p := &MigrationPlan{
		schemaName:  name,
		fromVersion: fromVersion,
		toVersion:   toVersion,
		steps:       append([]Step(nil), steps...),
	}
	p.id = uuid.NewSHA1(planNamespace, []byte(p.fingerprint()))
	return p
}

// ID is derived from the plan contents; equal plans have equal IDs.
func (p *MigrationPlan) ID() uuid.UUID { return p.id }

func (p *MigrationPlan) SchemaName() schema.SchemaName { return p.schemaName }

func (p *MigrationPlan) FromVersion() uint32 { return p.fromVersion }

func (p *MigrationPlan) ToVersion() uint32 { return p.toVersion }

// Steps returns a copy of the ordered steps.
func (p *MigrationPlan) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

func (p *MigrationPlan) Len() int { return len(p.steps) }

func (p *MigrationPlan) IsEmpty() bool { return len(p.steps) == 0 }

// OverallSafety is the most severe safety of any step; Safe for an empty plan.
func (p *MigrationPlan) OverallSafety() Safety {
	worst := Safe
	for _, s := range p.steps {
		worst = worst.Worst(s.Safety())
	}
	return worst
}

// IsSafe reports whether every step is Safe.
func (p *MigrationPlan) IsSafe() bool {
	return p.OverallSafety() == Safe
}

// HasDestructiveSteps reports whether any step drops data.
func (p *MigrationPlan) HasDestructiveSteps() bool {
	for _, s := range p.steps {
		if s.Safety() == Destructive {
			return true
		}
	}
	return false
}

// CountBySafety returns the number of steps per safety class.
func (p *MigrationPlan) CountBySafety() map[Safety]int {
	counts := make(map[Safety]int, 3)
	for _, s := range p.steps {
		counts[s.Safety()]++
	}
	return counts
}

// String renders the plan:
//
//	Migration plan for 'Contact' (2 steps, destructive)
//	  1. ADD field 'phone' [safe]
//	  2. REMOVE field 'fax' [destructive]
func (p *MigrationPlan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Migration plan for '%s' (%d steps, %s)", p.schemaName, len(p.steps), p.OverallSafety())
	for i, s := range p.steps {
		fmt.Fprintf(&b, "\n  %d. %s [%s]", i+1, s, s.Safety())
	}
	return b.String()
}

// Markdown renders the plan as a markdown table for terminal display.
func (p *MigrationPlan) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Migration plan for `%s`\n\n", p.schemaName)
	fmt.Fprintf(&b, "Version %d → %d, overall safety: **%s**\n\n", p.fromVersion, p.toVersion, p.OverallSafety())
	if len(p.steps) == 0 {
		b.WriteString("_No changes._\n")
		return b.String()
	}
	b.WriteString("| # | Step | Safety |\n|---|------|--------|\n")
	for i, s := range p.steps {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, strings.ReplaceAll(s.String(), "|", `\|`), s.Safety())
	}
	return b.String()
}

// fingerprint covers every step payload, so plans that differ in any
// created or removed definition get different IDs.
func (p *MigrationPlan) fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d", p.schemaName, p.fromVersion, p.toVersion)
	for _, s := range p.steps {
		b.WriteString("\n")
		b.WriteString(string(s.Kind()))
		b.WriteString(" ")
		b.WriteString(s.String())
		switch s := s.(type) {
		case CreateSchema:
			b.WriteString("\n")
			b.WriteString(printer.Print(s.Schema))
		case AddField:
			b.WriteString(" ")
			b.WriteString(p.fieldSource(s.Field))
		case RemoveField:
			b.WriteString(" ")
			b.WriteString(p.fieldSource(s.Field))
		case RemoveRelation:
			fmt.Fprintf(&b, " -> %s (%s)", s.TargetSchema, s.Cardinality)
		}
	}
	return b.String()
}

func (p *MigrationPlan) fieldSource(f schema.FieldDefinition) string {
	return printer.Print(schema.SchemaDefinition{Name: p.schemaName, Fields: []schema.FieldDefinition{f}})
}

// Package sqlgen compiles migration plans into DDL for PostgreSQL, MySQL
// and SQLite. Each schema maps to one table keyed by a text id; scalar
// fields map to columns, composite, array and json fields to JSON columns,
// single-valued relations to <field>_id columns and many-valued relations
// to join tables.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/schema-forge/internal/debug"
	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/schema"
)

// Generator compiles plan steps to statements for one dialect.
type Generator struct {
	dialect Dialect
}

// NewGenerator creates a generator for d.
func NewGenerator(d Dialect) *Generator {
	return &Generator{dialect: d}
}

// NewMigrationGenerator creates a generator for a provider name.
func NewMigrationGenerator(provider string) (*Generator, error) {
	d, err := ParseDialect(provider)
	if err != nil {
		return nil, err
	}
	return NewGenerator(d), nil
}

// Dialect returns the generator's dialect.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// Generate compiles every step of p. Prev and next are the schema versions
// the plan was diffed from; either may be nil when the plan creates or
// drops the schema.
func (g *Generator) Generate(p *plan.MigrationPlan, prev, next *schema.SchemaDefinition) ([]string, error) {
	c := &stepContext{
		g:       g,
		owner:   p.SchemaName(),
		table:   TableName(p.SchemaName()),
		prev:    prev,
		next:    next,
		renamed: make(map[schema.FieldName]schema.FieldName),
	}
	var out []string
	for i, step := range p.Steps() {
		stmts, err := c.compile(step)
		if err != nil {
			return nil, fmt.Errorf("%s: step %d (%s): %w", g.dialect.Name(), i+1, step, err)
		}
		out = append(out, stmts...)
	}
	debug.Debug("Generated migration SQL", "schema", p.SchemaName(), "dialect", g.dialect.Name(), "statements", len(out))
	return out, nil
}

// Script joins statements into one executable script.
func Script(stmts []string) string {
	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, ";\n") + ";\n"
}

// CreateTable renders the statements creating def from scratch.
func (g *Generator) CreateTable(def schema.SchemaDefinition) []string {
	d := g.dialect
	table := TableName(def.Name)
	cols := []string{fmt.Sprintf("%s %s PRIMARY KEY", d.QuoteIdent(IDColumn), d.IDType())}
	var extra []string
	for _, f := range def.Fields {
		if IsManyRelation(f) {
			extra = append(extra, g.createJoinTable(def.Name, f.Name))
		} else {
			cols = append(cols, columnDef(d, g.column(f, f.Modifiers.Required)))
		}
		if f.Modifiers.Indexed {
			extra = append(extra, g.createIndex(def.Name, f))
		}
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (\n    %s\n)", d.QuoteIdent(table), strings.Join(cols, ",\n    "))
	return append([]string{stmt}, extra...)
}

func (g *Generator) column(f schema.FieldDefinition, notNull bool) Column {
	col := Column{Name: ColumnName(f), Type: g.dialect.ColumnType(f.Type), NotNull: notNull}
	if f.Modifiers.HasDefault() {
		col.Default = g.literal(f.Modifiers.Default)
	}
	return col
}

func (g *Generator) literal(v schema.DefaultValue) string {
	switch v := v.(type) {
	case schema.StringDefault:
		return g.dialect.QuoteString(string(v))
	case schema.BooleanDefault:
		return g.dialect.BooleanLiteral(bool(v))
	}
	return v.String()
}

func (g *Generator) createJoinTable(owner schema.SchemaName, field schema.FieldName) string {
	d := g.dialect
	return fmt.Sprintf("CREATE TABLE %s (\n    %s %s NOT NULL,\n    %s %s NOT NULL,\n    PRIMARY KEY (%s, %s)\n)",
		d.QuoteIdent(JoinTableName(owner, field)),
		d.QuoteIdent(SourceColumn), d.IDType(),
		d.QuoteIdent(TargetColumn), d.IDType(),
		d.QuoteIdent(SourceColumn), d.QuoteIdent(TargetColumn))
}

func (g *Generator) createIndex(owner schema.SchemaName, f schema.FieldDefinition) string {
	table, column := indexTarget(owner, f)
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		g.dialect.QuoteIdent(IndexName(owner, f.Name)), g.dialect.QuoteIdent(table), g.dialect.QuoteIdent(column))
}

// indexTarget is the table and column an index on f covers; for a
// many-valued relation that is the join table's target column.
func indexTarget(owner schema.SchemaName, f schema.FieldDefinition) (table, column string) {
	if IsManyRelation(f) {
		return JoinTableName(owner, f.Name), TargetColumn
	}
	return TableName(owner), ColumnName(f)
}

// stepContext carries what compiling one plan needs to look up fields.
type stepContext struct {
	g     *Generator
	owner schema.SchemaName
	table string
	prev  *schema.SchemaDefinition
	next  *schema.SchemaDefinition
	// renamed maps new names to the old names seen in RenameField steps.
	renamed map[schema.FieldName]schema.FieldName
}

func (c *stepContext) nextField(name schema.FieldName) (schema.FieldDefinition, error) {
	if c.next != nil {
		if f, ok := c.next.Field(name); ok {
			return f, nil
		}
	}
	return schema.FieldDefinition{}, fmt.Errorf("field '%s' not found in the new %s", name, c.owner)
}

func (c *stepContext) prevField(name schema.FieldName) (schema.FieldDefinition, error) {
	if c.prev != nil {
		old := name
		if from, ok := c.renamed[name]; ok {
			old = from
		}
		if f, ok := c.prev.Field(old); ok {
			f.Name = name
			return f, nil
		}
	}
	return schema.FieldDefinition{}, fmt.Errorf("field '%s' not found in the old %s", name, c.owner)
}

func (c *stepContext) compile(step plan.Step) ([]string, error) {
	g, d := c.g, c.g.dialect
	table := d.QuoteIdent(c.table)

	switch s := step.(type) {
	case plan.CreateSchema:
		return g.CreateTable(s.Schema), nil

	case plan.DropSchema:
		return []string{"DROP TABLE " + table}, nil

	case plan.AddField:
		col := g.column(s.Field, s.Field.Modifiers.Required && s.Field.Modifiers.HasDefault())
		return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnDef(d, col))}, nil

	case plan.RemoveField:
		return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, d.QuoteIdent(ColumnName(s.Field)))}, nil

	case plan.RenameField:
		return c.rename(s)

	case plan.ChangeType:
		f, err := c.nextField(s.Name)
		if err != nil {
			return nil, err
		}
		return d.AlterType(c.table, g.column(f, f.Modifiers.Required), s.Transform)

	case plan.AddRequired, plan.RemoveRequired:
		f, err := c.nextField(step.Target())
		if err != nil {
			return nil, err
		}
		return d.AlterNullability(c.table, g.column(f, step.Kind() == plan.KindAddRequired))

	case plan.SetDefault:
		f, err := c.nextField(s.Name)
		if err != nil {
			return nil, err
		}
		return d.SetDefault(c.table, ColumnName(f), g.literal(s.Value))

	case plan.RemoveDefault:
		f, err := c.nextField(s.Name)
		if err != nil {
			return nil, err
		}
		return d.DropDefault(c.table, ColumnName(f))

	case plan.AddIndex:
		f, err := c.nextField(s.Name)
		if err != nil {
			return nil, err
		}
		return []string{g.createIndex(c.owner, f)}, nil

	case plan.RemoveIndex:
		f, err := c.prevField(s.Name)
		if err != nil {
			return nil, err
		}
		idxTable, _ := indexTarget(c.owner, f)
		return []string{d.DropIndex(idxTable, IndexName(c.owner, f.Name))}, nil

	case plan.AddRelation:
		if s.Cardinality == schema.Many {
			return []string{g.createJoinTable(c.owner, s.Name)}, nil
		}
		f := schema.FieldDefinition{Name: s.Name, Type: schema.Relation{Target: s.TargetSchema}}
		return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnDef(d, g.column(f, false)))}, nil

	case plan.RemoveRelation:
		if s.Cardinality == schema.Many {
			return []string{"DROP TABLE " + d.QuoteIdent(JoinTableName(c.owner, s.Name))}, nil
		}
		f := schema.FieldDefinition{Name: s.Name, Type: schema.Relation{Target: s.TargetSchema}}
		return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, d.QuoteIdent(ColumnName(f)))}, nil
	}
	return nil, fmt.Errorf("unknown step %T", step)
}

// rename moves the column, join table and index of a field to its new name.
func (c *stepContext) rename(s plan.RenameField) ([]string, error) {
	g, d := c.g, c.g.dialect
	c.renamed[s.To] = s.From
	old, err := c.prevField(s.To)
	if err != nil {
		return nil, err
	}
	old.Name = s.From
	moved := old
	moved.Name = s.To

	var stmts []string
	if old.Modifiers.Indexed {
		idxTable, _ := indexTarget(c.owner, old)
		stmts = append(stmts, d.DropIndex(idxTable, IndexName(c.owner, old.Name)))
	}
	if IsManyRelation(old) {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
			d.QuoteIdent(JoinTableName(c.owner, old.Name)), d.QuoteIdent(JoinTableName(c.owner, moved.Name))))
	} else {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
			d.QuoteIdent(c.table), d.QuoteIdent(ColumnName(old)), d.QuoteIdent(ColumnName(moved))))
	}
	if old.Modifiers.Indexed {
		stmts = append(stmts, g.createIndex(c.owner, moved))
	}
	return stmts, nil
}

package sqlgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/schema"
)

// ErrUnsupported marks a step the dialect cannot express with ALTER TABLE.
var ErrUnsupported = errors.New("not supported by this dialect")

// ErrUnknownProvider is returned by ParseDialect.
var ErrUnknownProvider = errors.New("unknown provider")

// Column is a rendered column definition.
type Column struct {
	Name    string
	Type    string
	NotNull bool
	// Default is a rendered SQL literal; empty for none.
	Default string
}

// Dialect holds the SQL differences between storage engines.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	QuoteString(s string) string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder(n int) string
	BooleanLiteral(b bool) string
	ColumnType(t schema.FieldType) string
	IDType() string

	AlterType(table string, col Column, transform plan.Transform) ([]string, error)
	AlterNullability(table string, col Column) ([]string, error)
	SetDefault(table, column, literal string) ([]string, error)
	DropDefault(table, column string) ([]string, error)
	DropIndex(table, index string) string

	// JSONPath extracts a nested member of a JSON column as text.
	JSONPath(column string, members []string) string
	// JSONDocument reads a JSON column, or a nested member of one, as a
	// JSON value rather than text.
	JSONDocument(column string, members []string) string
	// UnboundedLimit is the LIMIT value meaning no limit, for queries with
	// only an offset.
	UnboundedLimit() string
}

// ParseDialect returns the dialect for a provider name.
func ParseDialect(provider string) (Dialect, error) {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return NewPostgres(), nil
	case "mysql":
		return NewMySQL(), nil
	case "sqlite", "sqlite3":
		return NewSQLite(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// Postgres targets PostgreSQL.
type Postgres struct{}

func NewPostgres() *Postgres { return &Postgres{} }

func (*Postgres) Name() string                  { return "postgres" }
func (*Postgres) QuoteIdent(name string) string { return pq.QuoteIdentifier(name) }
func (*Postgres) QuoteString(s string) string   { return pq.QuoteLiteral(s) }
func (*Postgres) Placeholder(n int) string      { return "$" + strconv.Itoa(n) }
func (*Postgres) IDType() string                { return "TEXT" }
func (*Postgres) UnboundedLimit() string        { return "ALL" }

func (*Postgres) BooleanLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (*Postgres) ColumnType(t schema.FieldType) string {
	switch t := t.(type) {
	case schema.Text:
		if t.Max != nil {
			return fmt.Sprintf("VARCHAR(%d)", *t.Max)
		}
		return "TEXT"
	case schema.RichText, schema.Enum, schema.Relation:
		return "TEXT"
	case schema.Integer:
		return "BIGINT"
	case schema.Float:
		if t.Precision != nil {
			return fmt.Sprintf("NUMERIC(38, %d)", *t.Precision)
		}
		return "DOUBLE PRECISION"
	case schema.Boolean:
		return "BOOLEAN"
	case schema.DateTime:
		return "TIMESTAMPTZ"
	}
	return "JSONB"
}

func (d *Postgres) AlterType(table string, col Column, transform plan.Transform) ([]string, error) {
	using := d.QuoteIdent(col.Name) + "::" + col.Type
	if transform == plan.SetNull {
		using = "NULL::" + col.Type
	}
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s",
		d.QuoteIdent(table), d.QuoteIdent(col.Name), col.Type, using)}, nil
}

func (d *Postgres) AlterNullability(table string, col Column) ([]string, error) {
	action := "DROP NOT NULL"
	if col.NotNull {
		action = "SET NOT NULL"
	}
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(col.Name), action)}, nil
}

func (d *Postgres) SetDefault(table, column, literal string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", d.QuoteIdent(table), d.QuoteIdent(column), literal)}, nil
}

func (d *Postgres) DropDefault(table, column string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", d.QuoteIdent(table), d.QuoteIdent(column))}, nil
}

func (d *Postgres) DropIndex(_, index string) string {
	return "DROP INDEX " + d.QuoteIdent(index)
}

func (d *Postgres) JSONPath(column string, members []string) string {
	var b strings.Builder
	b.WriteString(column)
	for i, m := range members {
		if i == len(members)-1 {
			b.WriteString("->>")
		} else {
			b.WriteString("->")
		}
		b.WriteString(d.QuoteString(m))
	}
	return b.String()
}

func (d *Postgres) JSONDocument(column string, members []string) string {
	var b strings.Builder
	b.WriteString(column)
	for _, m := range members {
		b.WriteString("->")
		b.WriteString(d.QuoteString(m))
	}
	return b.String()
}

// MySQL targets MySQL 8.
type MySQL struct{}

func NewMySQL() *MySQL { return &MySQL{} }

var mysqlString = strings.NewReplacer(`\`, `\\`, `'`, `''`)

func (*MySQL) Name() string { return "mysql" }

func (*MySQL) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (*MySQL) QuoteString(s string) string { return "'" + mysqlString.Replace(s) + "'" }
func (*MySQL) Placeholder(int) string      { return "?" }
func (*MySQL) IDType() string              { return "VARCHAR(64)" }
func (*MySQL) UnboundedLimit() string      { return "18446744073709551615" }

func (*MySQL) BooleanLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (*MySQL) ColumnType(t schema.FieldType) string {
	switch t := t.(type) {
	case schema.Text:
		if t.Max != nil {
			return fmt.Sprintf("VARCHAR(%d)", *t.Max)
		}
		return "VARCHAR(255)"
	case schema.RichText:
		return "LONGTEXT"
	case schema.Enum:
		return "VARCHAR(255)"
	case schema.Relation:
		return "VARCHAR(64)"
	case schema.Integer:
		return "BIGINT"
	case schema.Float:
		if t.Precision != nil {
			return fmt.Sprintf("DECIMAL(38, %d)", *t.Precision)
		}
		return "DOUBLE"
	case schema.Boolean:
		return "BOOLEAN"
	case schema.DateTime:
		return "DATETIME(6)"
	}
	return "JSON"
}

func (d *MySQL) AlterType(table string, col Column, transform plan.Transform) ([]string, error) {
	var stmts []string
	if transform == plan.SetNull {
		stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = NULL", d.QuoteIdent(table), d.QuoteIdent(col.Name)))
	}
	return append(stmts, d.modify(table, col)), nil
}

func (d *MySQL) AlterNullability(table string, col Column) ([]string, error) {
	return []string{d.modify(table, col)}, nil
}

func (d *MySQL) modify(table string, col Column) string {
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", d.QuoteIdent(table), columnDef(d, col))
}

func (d *MySQL) SetDefault(table, column, literal string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", d.QuoteIdent(table), d.QuoteIdent(column), literal)}, nil
}

func (d *MySQL) DropDefault(table, column string) ([]string, error) {
	return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", d.QuoteIdent(table), d.QuoteIdent(column))}, nil
}

func (d *MySQL) DropIndex(table, index string) string {
	return fmt.Sprintf("DROP INDEX %s ON %s", d.QuoteIdent(index), d.QuoteIdent(table))
}

func (d *MySQL) JSONPath(column string, members []string) string {
	return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, %s))", column, d.QuoteString(jsonPointer(members)))
}

func (d *MySQL) JSONDocument(column string, members []string) string {
	if len(members) == 0 {
		return column
	}
	return fmt.Sprintf("JSON_EXTRACT(%s, %s)", column, d.QuoteString(jsonPointer(members)))
}

// SQLite targets SQLite 3.38 or newer. Its ALTER TABLE cannot change a
// column's type, nullability or default.
type SQLite struct{}

func NewSQLite() *SQLite { return &SQLite{} }

var sqliteString = strings.NewReplacer(`'`, `''`)

func (*SQLite) Name() string                  { return "sqlite" }
func (*SQLite) QuoteIdent(name string) string { return pq.QuoteIdentifier(name) }
func (*SQLite) QuoteString(s string) string   { return "'" + sqliteString.Replace(s) + "'" }
func (*SQLite) Placeholder(int) string        { return "?" }
func (*SQLite) IDType() string                { return "TEXT" }
func (*SQLite) UnboundedLimit() string        { return "-1" }

func (*SQLite) BooleanLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (*SQLite) ColumnType(t schema.FieldType) string {
	switch t.(type) {
	case schema.Integer, schema.Boolean:
		return "INTEGER"
	case schema.Float:
		return "REAL"
	}
	return "TEXT"
}

func (*SQLite) AlterType(string, Column, plan.Transform) ([]string, error) {
	return nil, ErrUnsupported
}

func (*SQLite) AlterNullability(string, Column) ([]string, error) {
	return nil, ErrUnsupported
}

func (*SQLite) SetDefault(string, string, string) ([]string, error) {
	return nil, ErrUnsupported
}

func (*SQLite) DropDefault(string, string) ([]string, error) {
	return nil, ErrUnsupported
}

func (d *SQLite) DropIndex(_, index string) string {
	return "DROP INDEX " + d.QuoteIdent(index)
}

func (d *SQLite) JSONPath(column string, members []string) string {
	return fmt.Sprintf("json_extract(%s, %s)", column, d.QuoteString(jsonPointer(members)))
}

func (d *SQLite) JSONDocument(column string, members []string) string {
	if len(members) == 0 {
		return column
	}
	return fmt.Sprintf("%s -> %s", column, d.QuoteString(jsonPointer(members)))
}

func jsonPointer(members []string) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, m := range members {
		b.WriteByte('.')
		b.WriteString(m)
	}
	return b.String()
}

func columnDef(d Dialect, col Column) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdent(col.Name))
	b.WriteByte(' ')
	b.WriteString(col.Type)
	if col.NotNull {
		b.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(col.Default)
	}
	return b.String()
}

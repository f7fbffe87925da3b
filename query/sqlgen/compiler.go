// Package sqlgen compiles validated queries into parameterised SELECT
// statements over the tables laid out by the migration generator.
package sqlgen

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/satishbabariya/schema-forge/internal/debug"
	migratesql "github.com/satishbabariya/schema-forge/migrate/sqlgen"
	"github.com/satishbabariya/schema-forge/query/filter"
	"github.com/satishbabariya/schema-forge/query/resolve"
	"github.com/satishbabariya/schema-forge/schema"
)

// likeEscape escapes LIKE wildcards; it is portable across the dialects,
// unlike a backslash.
const likeEscape = '!'

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Statement is SQL with its bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Compiler turns queries over a schema batch into SQL for one dialect.
type Compiler struct {
	dialect migratesql.Dialect
	batch   []schema.SchemaDefinition
	cache   *StatementCache
}

// NewCompiler creates a compiler. The batch is only read.
func NewCompiler(d migratesql.Dialect, batch []schema.SchemaDefinition) *Compiler {
	return &Compiler{dialect: d, batch: batch}
}

// WithCache makes the compiler reuse statements for repeated queries.
func (c *Compiler) WithCache(cache *StatementCache) *Compiler {
	c.cache = cache
	return c
}

// Select compiles q into a SELECT returning the root table's columns.
func (c *Compiler) Select(q filter.Query) (*Statement, error) {
	return c.cached("select", q, c.compileSelect)
}

// Count compiles q into a SELECT COUNT(*) ignoring sort and paging.
func (c *Compiler) Count(q filter.Query) (*Statement, error) {
	q.Sort, q.Limit, q.Offset = nil, nil, nil
	return c.cached("count", q, c.compileCount)
}

func (c *Compiler) cached(kind string, q filter.Query, compile func(filter.Query) (*Statement, error)) (*Statement, error) {
	if c.cache == nil {
		return compile(q)
	}
	key := cacheKey(c.dialect.Name(), kind, q)
	if st, ok := c.cache.Get(key); ok {
		return st, nil
	}
	st, err := compile(q)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, st)
	return st, nil
}

// cacheKey identifies a query. Value types are part of the key because
// Integer(1) and Float(1) render alike but bind differently.
func cacheKey(dialect, kind string, q filter.Query) string {
	var b strings.Builder
	b.WriteString(dialect + "|" + kind + "|" + q.String())
	filter.Walk(q.Filter, func(f filter.Filter) bool {
		switch f := f.(type) {
		case filter.Comparison:
			if f.Value != nil {
				b.WriteString("|" + f.Value.TypeName())
			}
		case filter.In:
			for _, v := range f.Values {
				if v != nil {
					b.WriteString("|" + v.TypeName())
				}
			}
		}
		return true
	})
	return b.String()
}

func (c *Compiler) compileSelect(q filter.Query) (*Statement, error) {
	if err := resolve.ValidateQuery(c.batch, q); err != nil {
		return nil, err
	}
	b := c.newBuilder(q.Schema)
	where, err := b.filter(q.Filter)
	if err != nil {
		return nil, err
	}
	var order []string
	for _, s := range q.Sort {
		expr, err := b.column(s.Path)
		if err != nil {
			return nil, err
		}
		order = append(order, expr+" "+s.Direction.String())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s.* FROM %s", rootAlias, b.from())
	if where != "" {
		sb.WriteString(" WHERE " + where)
	}
	if len(order) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(order, ", "))
	}
	switch {
	case q.Limit != nil:
		sb.WriteString(" LIMIT " + b.bind(*q.Limit))
	case q.Offset != nil:
		sb.WriteString(" LIMIT " + c.dialect.UnboundedLimit())
	}
	if q.Offset != nil {
		sb.WriteString(" OFFSET " + b.bind(*q.Offset))
	}

	st := &Statement{SQL: sb.String(), Args: b.args}
	debug.Debug("Compiled query", "query", q.String(), "sql", st.SQL, "args", len(st.Args))
	return st, nil
}

func (c *Compiler) compileCount(q filter.Query) (*Statement, error) {
	if err := resolve.ValidateQuery(c.batch, q); err != nil {
		return nil, err
	}
	b := c.newBuilder(q.Schema)
	where, err := b.filter(q.Filter)
	if err != nil {
		return nil, err
	}
	query := "SELECT COUNT(*) FROM " + b.from()
	if where != "" {
		query += " WHERE " + where
	}
	return &Statement{SQL: query, Args: b.args}, nil
}

const rootAlias = "t0"

type builder struct {
	c     *Compiler
	root  schema.SchemaName
	joins []string
	// aliases maps a dotted relation prefix to its table alias.
	aliases map[string]string
	args    []any
}

func (c *Compiler) newBuilder(root schema.SchemaName) *builder {
	return &builder{c: c, root: root, aliases: map[string]string{"": rootAlias}}
}

func (b *builder) from() string {
	d := b.c.dialect
	s := d.QuoteIdent(migratesql.TableName(b.root)) + " AS " + rootAlias
	if len(b.joins) > 0 {
		s += " " + strings.Join(b.joins, " ")
	}
	return s
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.c.dialect.Placeholder(len(b.args))
}

// alias joins every hop of a resolution and returns the alias of the table
// owning the terminal field.
func (b *builder) alias(hops []resolve.Hop) string {
	d := b.c.dialect
	prev := rootAlias
	key := ""
	for _, h := range hops {
		if key != "" {
			key += "."
		}
		key += string(h.Field)
		a, ok := b.aliases[key]
		if !ok {
			a = fmt.Sprintf("t%d", len(b.aliases))
			b.aliases[key] = a
			fk := migratesql.ColumnName(schema.FieldDefinition{Name: h.Field, Type: schema.Relation{Target: h.Target}})
			b.joins = append(b.joins, fmt.Sprintf("LEFT JOIN %s AS %s ON %s.%s = %s.%s",
				d.QuoteIdent(migratesql.TableName(h.Target)), a,
				a, d.QuoteIdent(migratesql.IDColumn),
				prev, d.QuoteIdent(fk)))
		}
		prev = a
	}
	return prev
}

// operand is a resolved path with its relation hops joined.
type operand struct {
	res    resolve.Resolution
	column string
	// members are the composite members below column.
	members []string
}

func (b *builder) operand(path filter.FieldPath) (operand, error) {
	res, err := resolve.Resolve(b.c.batch, b.root, path)
	if err != nil {
		return operand{}, err
	}
	d := b.c.dialect
	alias := b.alias(res.Hops)
	if len(res.Members) == 0 {
		return operand{res: res, column: alias + "." + d.QuoteIdent(migratesql.ColumnName(res.Field))}, nil
	}
	o := operand{res: res, column: alias + "." + d.QuoteIdent(string(res.Members[0]))}
	for _, m := range res.Members[1:] {
		o.members = append(o.members, string(m))
	}
	return o, nil
}

// scalar renders the expression reading o as a plain SQL value.
func (b *builder) scalar(o operand) string {
	if len(o.members) == 0 {
		return o.column
	}
	return b.castJSON(b.c.dialect.JSONPath(o.column, o.members), o.res.Type())
}

// document renders the expression reading o as a JSON value.
func (b *builder) document(o operand) string {
	return b.c.dialect.JSONDocument(o.column, o.members)
}

// column renders the expression reading path.
func (b *builder) column(path filter.FieldPath) (string, error) {
	o, err := b.operand(path)
	if err != nil {
		return "", err
	}
	return b.scalar(o), nil
}

// castJSON converts extracted JSON text back to the member's type where
// the dialect compares text and numbers differently.
func (b *builder) castJSON(expr string, t schema.FieldType) string {
	if _, ok := b.c.dialect.(*migratesql.Postgres); !ok {
		return expr
	}
	switch t.Kind() {
	case schema.KindInteger:
		return "(" + expr + ")::bigint"
	case schema.KindFloat:
		return "(" + expr + ")::double precision"
	case schema.KindBoolean:
		return "(" + expr + ")::boolean"
	case schema.KindDateTime:
		return "(" + expr + ")::timestamptz"
	}
	return expr
}

func (b *builder) filter(f filter.Filter) (string, error) {
	switch f := f.(type) {
	case nil:
		return "", nil
	case filter.And:
		return b.combine(f.Filters, " AND ", "1 = 1")
	case filter.Or:
		return b.combine(f.Filters, " OR ", "1 = 0")
	case filter.Not:
		inner, err := b.filter(f.Filter)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case filter.Comparison:
		o, err := b.operand(f.Path)
		if err != nil {
			return "", err
		}
		expr := b.scalar(o)
		if _, isNull := f.Value.(filter.Null); isNull {
			switch f.Op {
			case filter.OpEq:
				return expr + " IS NULL", nil
			case filter.OpNe:
				return expr + " IS NOT NULL", nil
			}
		}
		if o.res.Type().Kind() == schema.KindJSON {
			return b.jsonCompare(b.document(o), f.Op, f.Value)
		}
		return fmt.Sprintf("%s %s %s", expr, f.Op, b.bind(b.arg(f.Value))), nil
	case filter.Contains:
		o, err := b.operand(f.Path)
		if err != nil {
			return "", err
		}
		if o.res.Type().Kind() == schema.KindArray {
			return b.holds(b.document(o), filter.Text(f.Value))
		}
		return b.like(b.scalar(o), "%"+likeReplacer.Replace(f.Value)+"%"), nil
	case filter.StartsWith:
		expr, err := b.column(f.Path)
		if err != nil {
			return "", err
		}
		return b.like(expr, likeReplacer.Replace(f.Value)+"%"), nil
	case filter.In:
		return b.in(f)
	}
	return "", fmt.Errorf("unknown filter %T", f)
}

func (b *builder) in(f filter.In) (string, error) {
	o, err := b.operand(f.Path)
	if err != nil {
		return "", err
	}

	var match func(v filter.Value) (string, error)
	switch o.res.Type().Kind() {
	case schema.KindArray:
		match = func(v filter.Value) (string, error) { return b.holds(b.document(o), v) }
	case schema.KindJSON:
		match = func(v filter.Value) (string, error) { return b.jsonCompare(b.document(o), filter.OpEq, v) }
	default:
		expr := b.scalar(o)
		ph := make([]string, len(f.Values))
		for i, v := range f.Values {
			ph[i] = b.bind(b.arg(v))
		}
		return fmt.Sprintf("%s IN (%s)", expr, strings.Join(ph, ", ")), nil
	}

	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		if parts[i], err = match(v); err != nil {
			return "", err
		}
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

// jsonCompare compares a JSON document with a scalar literal encoded as JSON.
func (b *builder) jsonCompare(doc string, op filter.Op, v filter.Value) (string, error) {
	raw, err := jsonArg(b.arg(v))
	if err != nil {
		return "", err
	}
	ph := b.bind(raw)
	switch b.c.dialect.(type) {
	case *migratesql.Postgres:
		return fmt.Sprintf("%s %s %s::jsonb", doc, op, ph), nil
	case *migratesql.MySQL:
		return fmt.Sprintf("%s %s CAST(%s AS JSON)", doc, op, ph), nil
	}
	return fmt.Sprintf("json(%s) %s json(%s)", doc, op, ph), nil
}

// holds tests whether a JSON array document has v as an element.
func (b *builder) holds(doc string, v filter.Value) (string, error) {
	switch b.c.dialect.(type) {
	case *migratesql.Postgres:
		raw, err := jsonArg([]any{b.arg(v)})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s @> %s::jsonb", doc, b.bind(raw)), nil
	case *migratesql.MySQL:
		raw, err := jsonArg(b.arg(v))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("JSON_CONTAINS(%s, %s)", doc, b.bind(raw)), nil
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value = %s)", doc, b.bind(b.arg(v))), nil
}

func jsonArg(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cannot encode %v as JSON: %w", v, err)
	}
	return string(raw), nil
}

func (b *builder) combine(filters []filter.Filter, sep, empty string) (string, error) {
	if len(filters) == 0 {
		return empty, nil
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		s, err := b.filter(f)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *builder) like(expr, pattern string) string {
	return fmt.Sprintf("%s LIKE %s ESCAPE '%c'", expr, b.bind(pattern), likeEscape)
}

// arg converts a literal to a driver argument. SQLite stores timestamps
// as RFC 3339 text.
func (b *builder) arg(v filter.Value) any {
	if dt, ok := v.(filter.DateTime); ok {
		if _, sqlite := b.c.dialect.(*migratesql.SQLite); sqlite {
			return time.Time(dt).UTC().Format(time.RFC3339Nano)
		}
	}
	return v.Native()
}

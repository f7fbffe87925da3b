package sqlgen

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schema-forge/dsl/parser"
	migratesql "github.com/satishbabariya/schema-forge/migrate/sqlgen"
	"github.com/satishbabariya/schema-forge/query/filter"
	"github.com/satishbabariya/schema-forge/query/resolve"
	"github.com/satishbabariya/schema-forge/schema"
)

const crm = `
schema Contact {
    name: text required
    score: integer
    active: boolean
    created_at: datetime
    tags: text[]
    meta: json
    company: -> Company
    deals: -> Deal[]
    address: composite {
        city: text
        geo: composite {
            lat: float
        }
    }
}

schema Company {
    name: text
    industry: enum("fintech", "saas")
    owner: -> Contact
}

schema Deal {
    title: text
}
`

func batch(t *testing.T) []schema.SchemaDefinition {
	t.Helper()
	defs, diags := parser.Parse(crm)
	require.False(t, diags.HasErrors(), diags.ToPrettyString("crm.schema", crm))
	return defs
}

func TestSelectPostgresJoinsRelations(t *testing.T) {
	c := NewCompiler(migratesql.NewPostgres(), batch(t))
	q := filter.NewQuery("Contact").
		Where(filter.AllOf(
			filter.Eq(filter.MustPath("company.industry"), filter.Text("saas")),
			filter.Gt(filter.MustPath("score"), filter.Integer(5)),
		)).
		OrderBy(filter.MustPath("name"), filter.Desc).
		WithLimit(10).
		WithOffset(20)

	st, err := c.Select(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT t0.* FROM "contact" AS t0 `+
		`LEFT JOIN "company" AS t1 ON t1."id" = t0."company_id" `+
		`WHERE (t1."industry" = $1 AND t0."score" > $2) `+
		`ORDER BY t0."name" DESC LIMIT $3 OFFSET $4`, st.SQL)
	assert.Equal(t, []any{"saas", int64(5), 10, 20}, st.Args)
}

func TestSharedJoinPrefixes(t *testing.T) {
	c := NewCompiler(migratesql.NewPostgres(), batch(t))
	q := filter.NewQuery("Contact").Where(filter.AnyOf(
		filter.Eq(filter.MustPath("company.name"), filter.Text("Acme")),
		filter.Eq(filter.MustPath("company.owner.name"), filter.Text("Ada")),
	))

	st, err := c.Count(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "contact" AS t0 `+
		`LEFT JOIN "company" AS t1 ON t1."id" = t0."company_id" `+
		`LEFT JOIN "contact" AS t2 ON t2."id" = t1."owner_id" `+
		`WHERE (t1."name" = $1 OR t2."name" = $2)`, st.SQL)
	assert.Equal(t, []any{"Acme", "Ada"}, st.Args)
}

func TestSelectMySQLOperators(t *testing.T) {
	c := NewCompiler(migratesql.NewMySQL(), batch(t))
	q := filter.NewQuery("Contact").
		Where(filter.AllOf(
			filter.Eq(filter.MustPath("company"), filter.Null{}),
			filter.Ne(filter.MustPath("created_at"), filter.Null{}),
			filter.ContainsText(filter.MustPath("name"), "50%_off!"),
			filter.HasPrefix(filter.MustPath("name"), "A"),
			filter.Negate(filter.OneOf(filter.MustPath("score"), filter.Integer(1), filter.Integer(2))),
			filter.AllOf(),
			filter.AnyOf(),
		)).
		WithOffset(5)

	st, err := c.Select(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT t0.* FROM `contact` AS t0 WHERE ("+
		"t0.`company_id` IS NULL AND "+
		"t0.`created_at` IS NOT NULL AND "+
		"t0.`name` LIKE ? ESCAPE '!' AND "+
		"t0.`name` LIKE ? ESCAPE '!' AND "+
		"NOT (t0.`score` IN (?, ?)) AND "+
		"1 = 1 AND "+
		"1 = 0) LIMIT 18446744073709551615 OFFSET ?", st.SQL)
	assert.Equal(t, []any{"%50!%!_off!!%", "A%", int64(1), int64(2), 5}, st.Args)
}

func TestCompositeMembers(t *testing.T) {
	b := batch(t)

	st, err := NewCompiler(migratesql.NewPostgres(), b).Select(filter.NewQuery("Contact").
		Where(filter.Gt(filter.MustPath("address.geo.lat"), filter.Float(1.5))))
	require.NoError(t, err)
	assert.Equal(t, `SELECT t0.* FROM "contact" AS t0 WHERE (t0."address"->'geo'->>'lat')::double precision > $1`, st.SQL)

	st, err = NewCompiler(migratesql.NewSQLite(), b).Select(filter.NewQuery("Contact").
		Where(filter.Eq(filter.MustPath("address.city"), filter.Text("Oslo"))))
	require.NoError(t, err)
	assert.Equal(t, `SELECT t0.* FROM "contact" AS t0 WHERE json_extract(t0."address", '$.city') = ?`, st.SQL)
}

func TestArrayAndJSONLeaves(t *testing.T) {
	b := batch(t)
	q := filter.NewQuery("Contact").Where(filter.AllOf(
		filter.ContainsText(filter.MustPath("tags"), "go"),
		filter.OneOf(filter.MustPath("tags"), filter.Text("a"), filter.Text("b")),
		filter.Eq(filter.MustPath("meta"), filter.Text("vip")),
		filter.Ne(filter.MustPath("meta"), filter.Null{}),
	))

	st, err := NewCompiler(migratesql.NewPostgres(), b).Select(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT t0.* FROM "contact" AS t0 WHERE (`+
		`t0."tags" @> $1::jsonb AND `+
		`(t0."tags" @> $2::jsonb OR t0."tags" @> $3::jsonb) AND `+
		`t0."meta" = $4::jsonb AND `+
		`t0."meta" IS NOT NULL)`, st.SQL)
	assert.Equal(t, []any{`["go"]`, `["a"]`, `["b"]`, `"vip"`}, st.Args)

	st, err = NewCompiler(migratesql.NewMySQL(), b).Select(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT t0.* FROM `contact` AS t0 WHERE ("+
		"JSON_CONTAINS(t0.`tags`, ?) AND "+
		"(JSON_CONTAINS(t0.`tags`, ?) OR JSON_CONTAINS(t0.`tags`, ?)) AND "+
		"t0.`meta` = CAST(? AS JSON) AND "+
		"t0.`meta` IS NOT NULL)", st.SQL)
	assert.Equal(t, []any{`"go"`, `"a"`, `"b"`, `"vip"`}, st.Args)

	st, err = NewCompiler(migratesql.NewSQLite(), b).Select(filter.NewQuery("Contact").
		Where(filter.ContainsText(filter.MustPath("tags"), "go")))
	require.NoError(t, err)
	assert.Equal(t, `SELECT t0.* FROM "contact" AS t0 WHERE `+
		`EXISTS (SELECT 1 FROM json_each(t0."tags") WHERE json_each.value = ?)`, st.SQL)
	assert.Equal(t, []any{"go"}, st.Args)
}

func TestDateTimeArguments(t *testing.T) {
	b := batch(t)
	when := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q := filter.NewQuery("Contact").Where(filter.Gte(filter.MustPath("created_at"), filter.DateTime(when)))

	st, err := NewCompiler(migratesql.NewSQLite(), b).Select(q)
	require.NoError(t, err)
	assert.Equal(t, []any{"2025-01-01T00:00:00Z"}, st.Args)

	st, err = NewCompiler(migratesql.NewPostgres(), b).Select(q)
	require.NoError(t, err)
	assert.Equal(t, []any{when}, st.Args)
}

func TestSelectRejectsInvalidQueries(t *testing.T) {
	c := NewCompiler(migratesql.NewPostgres(), batch(t))

	_, err := c.Select(filter.NewQuery("Contact").Where(filter.Eq(filter.MustPath("company.missing"), filter.Text("x"))))
	var pe *resolve.PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, resolve.ReasonUnknownField, pe.Reason)
	assert.Equal(t, 1, pe.SegmentIndex)

	_, err = c.Select(filter.NewQuery("Contact").Where(filter.Eq(filter.MustPath("score"), filter.Text("ten"))))
	var fe *resolve.FilterError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, resolve.ProblemTypeMismatch, fe.Problem)

	_, err = c.Select(filter.NewQuery("Contact").WithLimit(0))
	assert.ErrorIs(t, err, filter.ErrInvalidLimit)

	_, err = c.Count(filter.NewQuery("Nobody"))
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, resolve.ReasonUnknownSchema, pe.Reason)
}

func TestCountIgnoresPaging(t *testing.T) {
	c := NewCompiler(migratesql.NewSQLite(), batch(t))
	st, err := c.Count(filter.NewQuery("Deal").OrderBy(filter.MustPath("title"), filter.Asc).WithLimit(3))
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "deal" AS t0`, st.SQL)
	assert.Empty(t, st.Args)
}

func seed(t *testing.T, defs []schema.SchemaDefinition) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	g := migratesql.NewGenerator(migratesql.NewSQLite())
	for _, def := range defs {
		for _, stmt := range g.CreateTable(def) {
			_, err := db.Exec(stmt)
			require.NoError(t, err, stmt)
		}
	}
	for _, stmt := range []string{
		`INSERT INTO "company" ("id", "name", "industry", "owner_id") VALUES
			('co-1', 'Acme', 'saas', 'c-2'),
			('co-2', 'Globex', 'fintech', NULL)`,
		`INSERT INTO "contact" ("id", "name", "score", "active", "created_at", "tags", "meta", "company_id", "address") VALUES
			('c-1', 'Ada', 10, 1, '2024-01-01T00:00:00Z', '["go","rust"]', '"vip"', 'co-1', '{"city":"Oslo","geo":{"lat":59.9}}'),
			('c-2', 'Bob', 3, 0, '2025-06-01T00:00:00Z', '["rust"]', '7', 'co-2', '{"city":"Rome","geo":{"lat":41.9}}'),
			('c-3', '50% Club', NULL, 1, NULL, '[]', NULL, NULL, NULL)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func ids(t *testing.T, db *sql.DB, st *Statement) []string {
	t.Helper()
	rows, err := db.Query(st.SQL, st.Args...)
	require.NoError(t, err, st.SQL)
	defer rows.Close()
	cols, err := rows.Columns()
	require.NoError(t, err)

	var out []string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, vals[0].String)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestExecuteOnSQLite(t *testing.T) {
	defs := batch(t)
	db := seed(t, defs)
	c := NewCompiler(migratesql.NewSQLite(), defs)
	contacts := filter.NewQuery("Contact")

	tests := []struct {
		name string
		q    filter.Query
		want []string
	}{
		{"relation", contacts.Where(filter.Eq(filter.MustPath("company.industry"), filter.Text("saas"))), []string{"c-1"}},
		{"two hops", contacts.Where(filter.Eq(filter.MustPath("company.owner.name"), filter.Text("Bob"))), []string{"c-1"}},
		{"composite", contacts.Where(filter.Gt(filter.MustPath("address.geo.lat"), filter.Float(50))), []string{"c-1"}},
		{"escaped wildcard", contacts.Where(filter.ContainsText(filter.MustPath("name"), "%")), []string{"c-3"}},
		{"null relation", contacts.Where(filter.Eq(filter.MustPath("company"), filter.Null{})), []string{"c-3"}},
		{"datetime", contacts.Where(filter.Gte(filter.MustPath("created_at"),
			filter.DateTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))), []string{"c-2"}},
		{"boolean sorted", contacts.Where(filter.Eq(filter.MustPath("active"), filter.Boolean(true))).
			OrderBy(filter.MustPath("name"), filter.Asc), []string{"c-3", "c-1"}},
		{"page", contacts.OrderBy(filter.MustPath("score"), filter.Desc).WithLimit(1).WithOffset(1), []string{"c-2"}},
		{"offset only", contacts.OrderBy(filter.MustPath("name"), filter.Asc).WithOffset(2), []string{"c-2"}},
		{"array element", contacts.Where(filter.ContainsText(filter.MustPath("tags"), "go")), []string{"c-1"}},
		{"array any of", contacts.Where(filter.OneOf(filter.MustPath("tags"), filter.Text("go"), filter.Text("rust"))).
			OrderBy(filter.MustPath("name"), filter.Asc), []string{"c-1", "c-2"}},
		{"json text", contacts.Where(filter.Eq(filter.MustPath("meta"), filter.Text("vip"))), []string{"c-1"}},
		{"json number", contacts.Where(filter.OneOf(filter.MustPath("meta"), filter.Integer(7), filter.Boolean(true))), []string{"c-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := c.Select(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(t, db, st))
		})
	}

	st, err := c.Count(contacts.Where(filter.AnyOf(
		filter.Eq(filter.MustPath("score"), filter.Integer(10)),
		filter.Eq(filter.MustPath("score"), filter.Integer(3)),
	)))
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow(st.SQL, st.Args...).Scan(&n))
	assert.Equal(t, 2, n)
}

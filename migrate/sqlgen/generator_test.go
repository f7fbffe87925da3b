package sqlgen

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schema-forge/dsl/parser"
	"github.com/satishbabariya/schema-forge/migrate/diff"
	"github.com/satishbabariya/schema-forge/schema"
)

func mustParse(t *testing.T, src string) schema.SchemaDefinition {
	t.Helper()
	defs, diags := parser.Parse(src)
	require.False(t, diags.HasErrors(), diags.ToPrettyString("test.schema", src))
	require.Len(t, defs, 1)
	return defs[0]
}

func TestParseDialect(t *testing.T) {
	for provider, want := range map[string]string{
		"postgresql": "postgres",
		"postgres":   "postgres",
		"mysql":      "mysql",
		"sqlite":     "sqlite",
		"SQLite3":    "sqlite",
	} {
		d, err := ParseDialect(provider)
		require.NoError(t, err)
		assert.Equal(t, want, d.Name())
	}

	_, err := ParseDialect("mongodb")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "deal_stage", TableName("DealStage"))
	assert.Equal(t, "contact", TableName("Contact"))
	assert.Equal(t, "company_id", ColumnName(schema.FieldDefinition{Name: "company", Type: schema.Relation{Target: "Company"}}))
	assert.Equal(t, "name", ColumnName(schema.FieldDefinition{Name: "name", Type: schema.Text{}}))
	assert.Equal(t, "contact_deals", JoinTableName("Contact", "deals"))
	assert.Equal(t, "idx_contact_email", IndexName("Contact", "email"))
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"deal stage"`, NewPostgres().QuoteIdent("deal stage"))
	assert.Equal(t, "`a``b`", NewMySQL().QuoteIdent("a`b"))
	assert.Equal(t, `'it''s'`, NewSQLite().QuoteString("it's"))
	assert.Equal(t, `'a\\b'`, NewMySQL().QuoteString(`a\b`))
	assert.Equal(t, "$3", NewPostgres().Placeholder(3))
	assert.Equal(t, "?", NewMySQL().Placeholder(3))
}

func TestCreateTablePostgres(t *testing.T) {
	def := mustParse(t, `schema DealStage {
    title: text(max: 80) required indexed
    amount: float default(0.5)
    active: boolean default(true)
    company: -> Company
    contacts: -> Contact[]
    details: composite {
        note: text
    }
}`)

	stmts := NewGenerator(NewPostgres()).CreateTable(def)

	require.Len(t, stmts, 3)
	assert.Equal(t, `CREATE TABLE "deal_stage" (
    "id" TEXT PRIMARY KEY,
    "title" VARCHAR(80) NOT NULL,
    "amount" DOUBLE PRECISION DEFAULT 0.5,
    "active" BOOLEAN DEFAULT TRUE,
    "company_id" TEXT,
    "details" JSONB
)`, stmts[0])
	assert.Equal(t, `CREATE INDEX "idx_deal_stage_title" ON "deal_stage" ("title")`, stmts[1])
	assert.Equal(t, `CREATE TABLE "deal_stage_contacts" (
    "source_id" TEXT NOT NULL,
    "target_id" TEXT NOT NULL,
    PRIMARY KEY ("source_id", "target_id")
)`, stmts[2])
}

func evolution(t *testing.T) (schema.SchemaDefinition, schema.SchemaDefinition) {
	old := mustParse(t, `schema Contact {
    name: text
    score: integer
    email: text indexed
}`)
	next := mustParse(t, `schema Contact {
    name: text required
    score: float
    phone: text default("n/a")
}`)
	return old, next
}

func TestGeneratePostgres(t *testing.T) {
	old, next := evolution(t)

	stmts, err := NewGenerator(NewPostgres()).Generate(diff.Diff(old, next), &old, &next)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`DROP INDEX "idx_contact_email"`,
		`ALTER TABLE "contact" DROP COLUMN "email"`,
		`ALTER TABLE "contact" ADD COLUMN "phone" TEXT DEFAULT 'n/a'`,
		`ALTER TABLE "contact" ALTER COLUMN "score" TYPE DOUBLE PRECISION USING "score"::DOUBLE PRECISION`,
		`ALTER TABLE "contact" ALTER COLUMN "name" SET NOT NULL`,
	}, stmts)
}

func TestGenerateMySQL(t *testing.T) {
	old, next := evolution(t)

	stmts, err := NewGenerator(NewMySQL()).Generate(diff.Diff(old, next), &old, &next)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DROP INDEX `idx_contact_email` ON `contact`",
		"ALTER TABLE `contact` DROP COLUMN `email`",
		"ALTER TABLE `contact` ADD COLUMN `phone` VARCHAR(255) DEFAULT 'n/a'",
		"ALTER TABLE `contact` MODIFY COLUMN `score` DOUBLE",
		"ALTER TABLE `contact` MODIFY COLUMN `name` VARCHAR(255) NOT NULL",
	}, stmts)
}

func TestGenerateSQLiteUnsupported(t *testing.T) {
	old, next := evolution(t)

	_, err := NewGenerator(NewSQLite()).Generate(diff.Diff(old, next), &old, &next)

	require.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "sqlite: step 4 (CHANGE TYPE of 'score' from integer to float via integer_to_float)")
}

func TestGenerateSetNullAndDefaults(t *testing.T) {
	old := mustParse(t, `schema Deal {
    amount: float
    stage: text default("new")
    note: text
}`)
	next := mustParse(t, `schema Deal {
    amount: integer
    stage: text
    note: text default("-")
}`)

	stmts, err := NewGenerator(NewMySQL()).Generate(diff.Diff(old, next), &old, &next)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"UPDATE `deal` SET `amount` = NULL",
		"ALTER TABLE `deal` MODIFY COLUMN `amount` BIGINT",
		"ALTER TABLE `deal` ALTER COLUMN `stage` DROP DEFAULT",
		"ALTER TABLE `deal` ALTER COLUMN `note` SET DEFAULT '-'",
	}, stmts)
}

func TestGenerateRenameMovesIndex(t *testing.T) {
	old := mustParse(t, `schema Contact {
    mail: text indexed
    tags: -> Tag[]
}`)
	next := mustParse(t, `schema Contact {
    email: text indexed
    labels: -> Tag[]
}`)
	p, err := diff.DiffWithRenames(old, next, diff.Renames{"mail": "email", "tags": "labels"})
	require.NoError(t, err)

	stmts, err := NewGenerator(NewPostgres()).Generate(p, &old, &next)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`DROP INDEX "idx_contact_mail"`,
		`ALTER TABLE "contact" RENAME COLUMN "mail" TO "email"`,
		`CREATE INDEX "idx_contact_email" ON "contact" ("email")`,
		`ALTER TABLE "contact_tags" RENAME TO "contact_labels"`,
	}, stmts)
}

func TestScript(t *testing.T) {
	assert.Equal(t, "", Script(nil))
	assert.Equal(t, "DROP TABLE \"a\";\nDROP TABLE \"b\";\n", Script([]string{`DROP TABLE "a"`, `DROP TABLE "b"`}))
}

func exec(t *testing.T, db *sql.DB, stmts []string) {
	t.Helper()
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
}

func columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	require.NoError(t, err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		out = append(out, name)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	g := NewGenerator(NewSQLite())
	v1 := mustParse(t, `schema Contact {
    name: text required default("anon")
    email: text indexed
    fax: text
}`)
	v2 := mustParse(t, `@version(2)
schema Contact {
    name: text required default("anon")
    mail: text indexed
    company: -> Company
    deals: -> Deal[]
    active: boolean default(true)
}`)

	create, err := g.Generate(diff.NewDiffer().Diff(nil, &v1), nil, &v1)
	require.NoError(t, err)
	exec(t, db, create)
	assert.Equal(t, []string{"id", "name", "email", "fax"}, columns(t, db, "contact"))

	p, err := diff.DiffWithRenames(v1, v2, diff.Renames{"email": "mail"})
	require.NoError(t, err)
	upgrade, err := g.Generate(p, &v1, &v2)
	require.NoError(t, err)
	exec(t, db, upgrade)

	assert.Equal(t, []string{"id", "name", "mail", "company_id", "active"}, columns(t, db, "contact"))
	assert.Equal(t, []string{"source_id", "target_id"}, columns(t, db, "contact_deals"))

	_, err = db.Exec(`INSERT INTO "contact" ("id") VALUES ('c-1')`)
	require.NoError(t, err)
	var name string
	var active bool
	require.NoError(t, db.QueryRow(`SELECT "name", "active" FROM "contact" WHERE "id" = 'c-1'`).Scan(&name, &active))
	assert.Equal(t, "anon", name)
	assert.True(t, active)

	var idx string
	require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'contact' AND name LIKE 'idx_%'`).Scan(&idx))
	assert.Equal(t, "idx_contact_mail", idx)

	drop, err := g.Generate(diff.NewDiffer().Diff(&v2, nil), &v2, nil)
	require.NoError(t, err)
	exec(t, db, drop)
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&count))
	assert.Zero(t, count)
}

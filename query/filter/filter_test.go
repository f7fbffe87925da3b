package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	p, err := ParsePath("company.industry")
	require.NoError(t, err)

	assert.Equal(t, []string{"company", "industry"}, p.Segments())
	assert.Equal(t, 2, p.Depth())
	assert.False(t, p.IsSimple())
	assert.Equal(t, "company", p.Root())
	assert.Equal(t, "industry", p.Leaf())
	assert.Equal(t, "company.industry", p.String())
	assert.True(t, p.Equal(MustPath("company.industry")))
	assert.True(t, MustPath("name").IsSimple())
}

func TestParsePathErrors(t *testing.T) {
	_, err := ParsePath("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	for _, s := range []string{".", "company.", ".name", "a..b"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParsePath(s)
			assert.ErrorIs(t, err, ErrEmptySegment)
		})
	}

	_, err = NewPath()
	assert.ErrorIs(t, err, ErrEmptyPath)
	assert.Panics(t, func() { MustPath("") })
}

func TestPathSegmentsAreCopied(t *testing.T) {
	segments := []string{"company", "name"}
	p, err := NewPath(segments...)
	require.NoError(t, err)

	segments[0] = "owner"
	p.Segments()[1] = "title"
	assert.Equal(t, "company.name", p.String())
}

func TestFilterString(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"eq", Eq(MustPath("name"), Text("Ada")), `name = "Ada"`},
		{"ne", Ne(MustPath("score"), Integer(3)), "score != 3"},
		{"gt", Gt(MustPath("ratio"), Float(0.5)), "ratio > 0.5"},
		{"gte", Gte(MustPath("created_at"), DateTime(when)), "created_at >= 2024-05-01T12:00:00Z"},
		{"lt", Lt(MustPath("score"), Integer(-1)), "score < -1"},
		{"lte", Lte(MustPath("active"), Boolean(true)), "active <= true"},
		{"null", Eq(MustPath("email"), Null{}), "email = null"},
		{"contains", ContainsText(MustPath("name"), "da"), `name CONTAINS "da"`},
		{"starts with", HasPrefix(MustPath("company.name"), "Ac"), `company.name STARTS WITH "Ac"`},
		{"in", OneOf(MustPath("stage"), Text("new"), Text("won")), `stage IN ["new", "won"]`},
		{"and", AllOf(Eq(MustPath("a"), Integer(1)), Eq(MustPath("b"), Integer(2))), "(a = 1 AND b = 2)"},
		{"or", AnyOf(Eq(MustPath("a"), Integer(1)), Eq(MustPath("b"), Integer(2))), "(a = 1 OR b = 2)"},
		{"not", Negate(Eq(MustPath("a"), Integer(1))), "NOT (a = 1)"},
		{
			"nested",
			AllOf(Negate(AnyOf(Eq(MustPath("a"), Integer(1)), Gt(MustPath("b"), Integer(2)))), Eq(MustPath("c"), Boolean(false))),
			"(NOT ((a = 1 OR b > 2)) AND c = false)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.String())
		})
	}
}

func TestPaths(t *testing.T) {
	f := AllOf(
		Eq(MustPath("name"), Text("Ada")),
		Negate(AnyOf(HasPrefix(MustPath("company.name"), "A"), OneOf(MustPath("stage"), Text("won")))),
	)

	var got []string
	for _, p := range Paths(f) {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"name", "company.name", "stage"}, got)
	assert.Empty(t, Paths(nil))
}

func TestQueryString(t *testing.T) {
	q := NewQuery("Contact").
		Where(Eq(MustPath("company.industry"), Text("saas"))).
		OrderBy(MustPath("name"), Asc).
		OrderBy(MustPath("score"), Desc).
		WithLimit(10).
		WithOffset(20)

	assert.Equal(t, `SELECT * FROM Contact WHERE company.industry = "saas" ORDER BY name ASC, score DESC LIMIT 10 OFFSET 20`, q.String())
	assert.Equal(t, "SELECT * FROM Contact", NewQuery("Contact").String())
}

func TestQueryBuilderDoesNotAlias(t *testing.T) {
	base := NewQuery("Contact").OrderBy(MustPath("name"), Asc)
	a := base.OrderBy(MustPath("score"), Desc)
	b := base.OrderBy(MustPath("email"), Asc)

	assert.Len(t, base.Sort, 1)
	assert.Equal(t, "score", a.Sort[1].Path.String())
	assert.Equal(t, "email", b.Sort[1].Path.String())
}

func TestQueryValidate(t *testing.T) {
	assert.NoError(t, NewQuery("Contact").Validate())
	assert.NoError(t, NewQuery("Contact").WithLimit(1).WithOffset(0).Validate())
	assert.ErrorIs(t, NewQuery("Contact").WithLimit(0).Validate(), ErrInvalidLimit)
	assert.ErrorIs(t, NewQuery("Contact").WithOffset(-1).Validate(), ErrInvalidOffset)
}

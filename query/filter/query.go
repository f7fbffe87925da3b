package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/schema-forge/schema"
)

// ErrInvalidLimit is returned by Validate for a zero or negative limit.
var ErrInvalidLimit = errors.New("limit must be greater than zero")

// ErrInvalidOffset is returned by Validate for a negative offset.
var ErrInvalidOffset = errors.New("offset must not be negative")

// Direction is a sort order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// SortClause orders results by one path.
type SortClause struct {
	Path      FieldPath
	Direction Direction
}

// Query selects entities of one schema. A nil Filter matches everything;
// nil Limit and Offset mean unbounded and zero.
type Query struct {
	Schema schema.SchemaName
	Filter Filter
	Sort   []SortClause
	Limit  *int
	Offset *int
}

// NewQuery starts a query over the named schema.
func NewQuery(name schema.SchemaName) Query {
	return Query{Schema: name}
}

// Where returns a copy of q with the filter set.
func (q Query) Where(f Filter) Query {
	q.Filter = f
	return q
}

// OrderBy returns a copy of q with one more sort clause.
func (q Query) OrderBy(path FieldPath, dir Direction) Query {
	q.Sort = append(append([]SortClause(nil), q.Sort...), SortClause{Path: path, Direction: dir})
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = &n
	return q
}

func (q Query) WithOffset(n int) Query {
	q.Offset = &n
	return q
}

// Validate checks the paging bounds.
func (q Query) Validate() error {
	if q.Limit != nil && *q.Limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, *q.Limit)
	}
	if q.Offset != nil && *q.Offset < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, *q.Offset)
	}
	return nil
}

// String renders the query in a SQL-like notation:
//
//	SELECT * FROM Contact WHERE name = "Ada" ORDER BY name ASC LIMIT 10 OFFSET 20
func (q Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", q.Schema)
	if q.Filter != nil {
		fmt.Fprintf(&b, " WHERE %s", q.Filter)
	}
	for i, s := range q.Sort {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", s.Path, s.Direction)
	}
	if q.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *q.Limit)
	}
	if q.Offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *q.Offset)
	}
	return b.String()
}

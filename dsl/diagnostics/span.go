// Package diagnostics provides source positions and the syntax errors
// reported while lexing and parsing schema source.
package diagnostics

import "fmt"

// Pos is a location in schema source. Offset is a byte offset; Line and
// Column are 1-based.
type Pos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open byte range [Start, End) in schema source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewSpan creates a new span.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Contains checks if the given offset is inside the span (boundaries included).
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Overlaps checks if the given span overlaps with the current span.
func (s Span) Overlaps(other Span) bool {
	return s.Contains(other.Start) || s.Contains(other.End)
}

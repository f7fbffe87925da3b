package diagnostics

import (
	"fmt"
	"strconv"
)

// Error is a syntax error tied to a location in the source text.
type Error interface {
	error
	Position() Pos
	Span() Span
}

// LexError reports a character the lexer does not recognise. Char is
// utf8.RuneError for a byte that is not valid UTF-8.
type LexError struct {
	Pos  Pos
	Char rune
	// Width is the byte length of the character in the source.
	Width int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: unexpected character %s", e.Pos, strconv.QuoteRune(e.Char))
}

func (e *LexError) Position() Pos { return e.Pos }

func (e *LexError) Span() Span {
	n := e.Width
	if n < 1 {
		n = 1
	}
	return NewSpan(e.Pos.Offset, e.Pos.Offset+n)
}

// ParseError reports a token that does not fit the grammar.
type ParseError struct {
	Pos      Pos
	Expected string
	Found    string
	// Length is the byte length of the offending token, used for highlighting.
	Length int
}

// NewParseError creates a ParseError at pos.
func NewParseError(pos Pos, expected, found string, length int) *ParseError {
	return &ParseError{Pos: pos, Expected: expected, Found: found, Length: length}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

func (e *ParseError) Position() Pos { return e.Pos }

func (e *ParseError) Span() Span {
	n := e.Length
	if n < 1 {
		n = 1
	}
	return NewSpan(e.Pos.Offset, e.Pos.Offset+n)
}

package diagnostics

import (
	"bytes"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	lexErr := &LexError{Pos: Pos{Offset: 4, Line: 1, Column: 5}, Char: '$', Width: 1}
	assert.Equal(t, "1:5: unexpected character '$'", lexErr.Error())
	assert.Equal(t, NewSpan(4, 5), lexErr.Span())

	wide := &LexError{Pos: Pos{Offset: 2}, Char: '€', Width: 3}
	assert.Equal(t, NewSpan(2, 5), wide.Span())
	invalid := &LexError{Pos: Pos{Offset: 2}, Char: utf8.RuneError, Width: 1}
	assert.Equal(t, NewSpan(2, 3), invalid.Span())

	parseErr := NewParseError(Pos{Offset: 7, Line: 2, Column: 3}, "':'", "'text'", 4)
	assert.Equal(t, "2:3: expected ':', found 'text'", parseErr.Error())
	assert.Equal(t, NewSpan(7, 11), parseErr.Span())
}

func TestDiagnosticsCollection(t *testing.T) {
	d := NewDiagnostics()
	assert.False(t, d.HasErrors())
	assert.NoError(t, d.ToResult())

	d.PushError(&LexError{Pos: Pos{Line: 1, Column: 1}, Char: '#'})
	d.PushError(NewParseError(Pos{Line: 1, Column: 2}, "schema", "'x'", 1))

	require.True(t, d.HasErrors())
	assert.Len(t, d.Errors(), 2)
	assert.Len(t, d.LexErrors(), 1)
	assert.Len(t, d.ParseErrors(), 1)

	err := d.ToResult()
	require.Error(t, err)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "2 syntax errors")
}

func TestPrettyPrint(t *testing.T) {
	color.NoColor = true
	src := "schema Contact {\n    Name: text\n}\n"
	var buf bytes.Buffer

	err := PrettyPrint(&buf, "contact.schema", src, NewSpan(21, 25), "bad field name", ErrorColorer{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "error: bad field name")
	assert.Contains(t, out, "contact.schema:2:5")
	assert.Contains(t, out, " 2 |     Name: text")
	assert.Contains(t, out, "    ^^^^")
}

func TestPrettyPrintSpanPastEnd(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	err := PrettyPrint(&buf, "x.schema", "schema", NewSpan(6, 9), "unexpected end of input", ErrorColorer{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "x.schema:1:7")
}

package lexer

import (
	"strings"
	"unicode/utf8"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"github.com/satishbabariya/schema-forge/dsl/diagnostics"
)

// Definition is the rule table for schema source. Rules are tried in order;
// the trailing Invalid rule catches any character nothing else accepts so
// lexing never stops early.
var Definition = plexer.MustSimple([]plexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"`},
	{Name: "Float", Pattern: `-?[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Punct", Pattern: `[{}()\[\]:,@]`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Invalid", Pattern: `.`},
})

var (
	symbols = Definition.Symbols()

	ruleComment      = symbols["Comment"]
	ruleBlockComment = symbols["BlockComment"]
	ruleWhitespace   = symbols["Whitespace"]
	ruleString       = symbols["String"]
	ruleFloat        = symbols["Float"]
	ruleInt          = symbols["Int"]
	ruleArrow        = symbols["Arrow"]
	rulePunct        = symbols["Punct"]
	ruleIdent        = symbols["Ident"]
	ruleInvalid      = symbols["Invalid"]
)

var punctuation = map[string]TokenType{
	"{": TokenLBrace,
	"}": TokenRBrace,
	"(": TokenLParen,
	")": TokenRParen,
	"[": TokenLBracket,
	"]": TokenRBracket,
	":": TokenColon,
	",": TokenComma,
	"@": TokenAt,
}

// Tokenize lexes src. The returned slice always ends with a TokenEOF token.
// Unrecognised characters are reported in source order and skipped.
func Tokenize(src string) ([]Token, []*diagnostics.LexError) {
	var (
		tokens []Token
		errs   []*diagnostics.LexError
	)

	lex, err := Definition.LexString("", src)
	if err != nil {
		errs = append(errs, lexError(diagnostics.Pos{Line: 1, Column: 1}, src))
		return append(tokens, Token{Type: TokenEOF, Pos: endPos(src)}), errs
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			pos := endPos(src)
			if perr, ok := err.(interface{ Position() plexer.Position }); ok {
				pos = toPos(perr.Position())
			}
			errs = append(errs, lexError(pos, src[min(pos.Offset, len(src)):]))
			break
		}
		if tok.EOF() {
			break
		}

		pos := toPos(tok.Pos)
		switch tok.Type {
		case ruleComment, ruleBlockComment, ruleWhitespace:
			continue
		case ruleInvalid:
			errs = append(errs, lexError(pos, tok.Value))
			continue
		}

		t := Token{Raw: tok.Value, Value: tok.Value, Pos: pos}
		switch tok.Type {
		case ruleString:
			t.Type = TokenString
			t.Value = unescape(tok.Value[1 : len(tok.Value)-1])
		case ruleFloat:
			t.Type = TokenFloat
		case ruleInt:
			t.Type = TokenInt
		case ruleArrow:
			t.Type = TokenArrow
		case rulePunct:
			t.Type = punctuation[tok.Value]
		case ruleIdent:
			t.Type = TokenIdentifier
			if kw, ok := keywords[tok.Value]; ok {
				t.Type = kw
			}
		}
		tokens = append(tokens, t)
	}

	return append(tokens, Token{Type: TokenEOF, Pos: endPos(src)}), errs
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func toPos(p plexer.Position) diagnostics.Pos {
	return diagnostics.Pos{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func endPos(src string) diagnostics.Pos {
	line := strings.Count(src, "\n") + 1
	col := len(src) - (strings.LastIndexByte(src, '\n') + 1) + 1
	return diagnostics.Pos{Offset: len(src), Line: line, Column: col}
}

// lexError reports the first character of rest, which starts at pos.
func lexError(pos diagnostics.Pos, rest string) *diagnostics.LexError {
	r, width := utf8.DecodeRuneInString(rest)
	return &diagnostics.LexError{Pos: pos, Char: r, Width: width}
}

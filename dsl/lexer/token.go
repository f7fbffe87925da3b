// Package lexer turns schema source text into a token stream.
package lexer

import (
	"fmt"

	"github.com/satishbabariya/schema-forge/dsl/diagnostics"
)

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota

	// Literals
	TokenIdentifier
	TokenString
	TokenInt
	TokenFloat

	// Symbols
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenColon
	TokenComma
	TokenArrow
	TokenAt

	// Keywords
	TokenSchema
	TokenText
	TokenRichText
	TokenInteger
	TokenFloatKeyword
	TokenBoolean
	TokenDateTime
	TokenEnum
	TokenJSON
	TokenComposite
	TokenRequired
	TokenIndexed
	TokenDefault
	TokenTrue
	TokenFalse
)

var keywords = map[string]TokenType{
	"schema":    TokenSchema,
	"text":      TokenText,
	"richtext":  TokenRichText,
	"integer":   TokenInteger,
	"float":     TokenFloatKeyword,
	"boolean":   TokenBoolean,
	"datetime":  TokenDateTime,
	"enum":      TokenEnum,
	"json":      TokenJSON,
	"composite": TokenComposite,
	"required":  TokenRequired,
	"indexed":   TokenIndexed,
	"default":   TokenDefault,
	"true":      TokenTrue,
	"false":     TokenFalse,
}

var symbolNames = map[TokenType]string{
	TokenEOF:      "end of input",
	TokenLBrace:   "'{'",
	TokenRBrace:   "'}'",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenColon:    "':'",
	TokenComma:    "','",
	TokenArrow:    "'->'",
	TokenAt:       "'@'",
}

// String names the token type as it appears in error messages.
func (t TokenType) String() string {
	if name, ok := symbolNames[t]; ok {
		return name
	}
	switch t {
	case TokenIdentifier:
		return "identifier"
	case TokenString:
		return "string literal"
	case TokenInt:
		return "integer literal"
	case TokenFloat:
		return "float literal"
	}
	for word, kw := range keywords {
		if kw == t {
			return "'" + word + "'"
		}
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TokenSchema
}

// Token represents a lexical token.
type Token struct {
	Type TokenType
	// Raw is the token exactly as written in the source.
	Raw string
	// Value is the decoded value: the unescaped contents of a string
	// literal, otherwise the same as Raw.
	Value string
	Pos   diagnostics.Pos
}

// Describe renders the token for a "found ..." error message.
func (t Token) Describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return "string " + t.Raw
	}
	return "'" + t.Raw + "'"
}

// Len returns the byte length of the token in the source.
func (t Token) Len() int {
	return len(t.Raw)
}

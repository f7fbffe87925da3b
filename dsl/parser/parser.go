// Package parser implements the recursive-descent parser for schema source.
//
// Grammar:
//
//	program     = { schema_def } ;
//	schema_def  = { annotation } "schema" PascalIdent "{" { field_def } "}" ;
//	field_def   = snake_ident ":" field_type { modifier } ;
//	field_type  = primitive ["[]"] | "->" PascalIdent ["[]"] | "composite" "{" {field_def} "}" ;
//	modifier    = "required" | "indexed" | "default" "(" value ")" ;
//	annotation  = "@version" "(" int ")" | "@display" "(" string ")" ;
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/schema-forge/dsl/diagnostics"
	"github.com/satishbabariya/schema-forge/dsl/lexer"
	"github.com/satishbabariya/schema-forge/schema"
)

// Parser parses a token stream into schema definitions.
type Parser struct {
	tokens      []lexer.Token
	pos         int
	depth       int
	diagnostics *diagnostics.Diagnostics
}

// NewParser creates a new parser for the given tokens. The token slice must
// end with a TokenEOF token, as produced by lexer.Tokenize.
func NewParser(tokens []lexer.Token, diags *diagnostics.Diagnostics) *Parser {
	return &Parser{
		tokens:      tokens,
		diagnostics: diags,
	}
}

// Parse lexes and parses src. When any lexer or parser error is reported
// the returned definitions are nil and the diagnostics carry every error in
// source order, lexer errors first.
func Parse(src string) ([]schema.SchemaDefinition, diagnostics.Diagnostics) {
	diags := diagnostics.NewDiagnostics()
	tokens, lexErrs := lexer.Tokenize(src)
	for _, err := range lexErrs {
		diags.PushError(err)
	}

	defs := NewParser(tokens, &diags).ParseProgram()
	if diags.HasErrors() {
		return nil, diags
	}
	return defs, diags
}

// ParseProgram parses schema definitions until the end of input. A syntax
// error abandons the current definition; parsing resumes at the next
// top-level annotation or schema keyword.
func (p *Parser) ParseProgram() []schema.SchemaDefinition {
	defs := make([]schema.SchemaDefinition, 0)
	for !p.isAtEnd() {
		def, err := p.parseSchemaDef()
		if err != nil {
			var diag diagnostics.Error
			if errors.As(err, &diag) {
				p.diagnostics.PushError(diag)
			}
			p.synchronize()
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.depth == 0 && (p.check(lexer.TokenSchema) || p.check(lexer.TokenAt)) {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseSchemaDef() (schema.SchemaDefinition, error) {
	def := schema.SchemaDefinition{Version: schema.DefaultVersion}
	var seenVersion, seenDisplay bool

	for p.check(lexer.TokenAt) {
		p.advance()
		nameTok := p.current()
		if nameTok.Type != lexer.TokenIdentifier {
			return def, p.errorAt(nameTok, "annotation name")
		}

		switch nameTok.Value {
		case "version":
			if seenVersion {
				return def, diagnostics.NewParseError(nameTok.Pos, "at most one @version annotation", "duplicate @version", nameTok.Len())
			}
			seenVersion = true
			p.advance()
			version, err := p.parseVersionArgument()
			if err != nil {
				return def, err
			}
			def.Version = version
		case "display":
			if seenDisplay {
				return def, diagnostics.NewParseError(nameTok.Pos, "at most one @display annotation", "duplicate @display", nameTok.Len())
			}
			seenDisplay = true
			p.advance()
			field, err := p.parseDisplayArgument()
			if err != nil {
				return def, err
			}
			def.DisplayField = field
		default:
			return def, p.errorAt(nameTok, "annotation name (version or display)")
		}
	}

	if _, err := p.expect(lexer.TokenSchema); err != nil {
		return def, err
	}

	nameTok, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return def, err
	}
	if !schema.IsValidSchemaName(nameTok.Value) {
		return def, p.errorAt(nameTok, "PascalCase schema name")
	}
	def.Name = schema.SchemaName(nameTok.Value)

	fields, err := p.parseFieldBlock()
	if err != nil {
		return def, err
	}
	def.Fields = fields
	return def, nil
}

func (p *Parser) parseVersionArgument() (uint32, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return 0, err
	}
	tok, err := p.expect(lexer.TokenInt)
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.ParseUint(tok.Raw, 10, 32)
	if convErr != nil || v == 0 {
		return 0, p.errorAt(tok, "positive integer version")
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (p *Parser) parseDisplayArgument() (schema.FieldName, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return "", err
	}
	tok, err := p.expect(lexer.TokenString)
	if err != nil {
		return "", err
	}
	if !schema.IsValidFieldName(tok.Value) {
		return "", p.errorAt(tok, "snake_case field name")
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return "", err
	}
	return schema.FieldName(tok.Value), nil
}

// parseFieldBlock parses "{" { field_def } "}".
func (p *Parser) parseFieldBlock() ([]schema.FieldDefinition, error) {
	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	fields := make([]schema.FieldDefinition, 0)
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		field, err := p.parseFieldDef()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *Parser) parseFieldDef() (schema.FieldDefinition, error) {
	var field schema.FieldDefinition

	// Keywords double as field names, so "default: text" is accepted.
	nameTok := p.current()
	if nameTok.Type != lexer.TokenIdentifier && !nameTok.Type.IsKeyword() {
		return field, p.errorAt(nameTok, "field name")
	}
	if !schema.IsValidFieldName(nameTok.Value) {
		return field, p.errorAt(nameTok, "snake_case field name")
	}
	p.advance()
	field.Name = schema.FieldName(nameTok.Value)

	if _, err := p.expect(lexer.TokenColon); err != nil {
		return field, err
	}

	typ, err := p.parseFieldType()
	if err != nil {
		return field, err
	}
	field.Type = typ

	mods, err := p.parseModifiers()
	if err != nil {
		return field, err
	}
	field.Modifiers = mods
	return field, nil
}

func (p *Parser) parseFieldType() (schema.FieldType, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.TokenArrow:
		p.advance()
		return p.parseRelation()
	case lexer.TokenComposite:
		p.advance()
		fields, err := p.parseFieldBlock()
		if err != nil {
			return nil, err
		}
		return schema.Composite{Fields: fields}, nil
	}

	prim, err := p.parsePrimitive()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TokenLBracket) {
		p.advance()
		if _, err := p.expect(lexer.TokenRBracket); err != nil {
			return nil, err
		}
		return schema.Array{Element: prim}, nil
	}
	return prim, nil
}

func (p *Parser) parseRelation() (schema.FieldType, error) {
	targetTok, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if !schema.IsValidSchemaName(targetTok.Value) {
		return nil, p.errorAt(targetTok, "PascalCase schema name")
	}
	rel := schema.Relation{Target: schema.SchemaName(targetTok.Value), Cardinality: schema.One}
	if p.check(lexer.TokenLBracket) {
		p.advance()
		if _, err := p.expect(lexer.TokenRBracket); err != nil {
			return nil, err
		}
		rel.Cardinality = schema.Many
	}
	return rel, nil
}

func (p *Parser) parsePrimitive() (schema.FieldType, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.TokenText, lexer.TokenRichText:
		p.advance()
		params, err := p.parseParams("min", "max")
		if err != nil {
			return nil, err
		}
		min, err := p.intParam(params, "min")
		if err != nil {
			return nil, err
		}
		max, err := p.intParam(params, "max")
		if err != nil {
			return nil, err
		}
		if tok.Type == lexer.TokenRichText {
			return schema.RichText{Min: min, Max: max}, nil
		}
		return schema.Text{Min: min, Max: max}, nil

	case lexer.TokenInteger:
		p.advance()
		params, err := p.parseParams("min", "max")
		if err != nil {
			return nil, err
		}
		min, err := p.int64Param(params, "min")
		if err != nil {
			return nil, err
		}
		max, err := p.int64Param(params, "max")
		if err != nil {
			return nil, err
		}
		return schema.Integer{Min: min, Max: max}, nil

	case lexer.TokenFloatKeyword:
		p.advance()
		params, err := p.parseParams("precision")
		if err != nil {
			return nil, err
		}
		precision, err := p.intParam(params, "precision")
		if err != nil {
			return nil, err
		}
		return schema.Float{Precision: precision}, nil

	case lexer.TokenBoolean:
		p.advance()
		return schema.Boolean{}, nil
	case lexer.TokenDateTime:
		p.advance()
		return schema.DateTime{}, nil
	case lexer.TokenJSON:
		p.advance()
		return schema.JSON{}, nil
	case lexer.TokenEnum:
		p.advance()
		return p.parseEnumVariants()
	}
	return nil, p.errorAt(tok, "field type")
}

func (p *Parser) parseEnumVariants() (schema.FieldType, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	variants := make([]string, 0)
	for !p.check(lexer.TokenRParen) {
		tok, err := p.expect(lexer.TokenString)
		if err != nil {
			return nil, err
		}
		variants = append(variants, tok.Value)
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return schema.Enum{Variants: variants}, nil
}

// parseParams parses an optional "(" name ":" int { "," name ":" int } ")"
// list restricted to the allowed names.
func (p *Parser) parseParams(allowed ...string) (map[string]lexer.Token, error) {
	params := make(map[string]lexer.Token)
	if !p.check(lexer.TokenLParen) {
		return params, nil
	}
	p.advance()

	for !p.check(lexer.TokenRParen) {
		nameTok := p.current()
		if !contains(allowed, nameTok.Value) || (nameTok.Type != lexer.TokenIdentifier) {
			return nil, p.errorAt(nameTok, "parameter "+strings.Join(allowed, " or "))
		}
		if _, dup := params[nameTok.Value]; dup {
			return nil, diagnostics.NewParseError(nameTok.Pos, "each parameter at most once", "duplicate '"+nameTok.Value+"'", nameTok.Len())
		}
		p.advance()
		if _, err := p.expect(lexer.TokenColon); err != nil {
			return nil, err
		}
		valueTok, err := p.expect(lexer.TokenInt)
		if err != nil {
			return nil, err
		}
		params[nameTok.Value] = valueTok
		if !p.check(lexer.TokenComma) {
			break
		}
		p.advance()
	}

	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) intParam(params map[string]lexer.Token, name string) (*int, error) {
	tok, ok := params[name]
	if !ok {
		return nil, nil
	}
	v, err := strconv.Atoi(tok.Raw)
	if err != nil {
		return nil, p.errorAt(tok, "integer in range")
	}
	return &v, nil
}

func (p *Parser) int64Param(params map[string]lexer.Token, name string) (*int64, error) {
	tok, ok := params[name]
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseInt(tok.Raw, 10, 64)
	if err != nil {
		return nil, p.errorAt(tok, "64-bit integer")
	}
	return &v, nil
}

func (p *Parser) parseModifiers() (schema.Modifiers, error) {
	var mods schema.Modifiers
	for {
		tok := p.current()
		// A keyword followed by ':' starts the next field, not a modifier.
		if tok.Type.IsKeyword() && p.peek().Type == lexer.TokenColon {
			return mods, nil
		}
		switch tok.Type {
		case lexer.TokenRequired:
			if mods.Required {
				return mods, p.duplicateModifier(tok)
			}
			p.advance()
			mods.Required = true
		case lexer.TokenIndexed:
			if mods.Indexed {
				return mods, p.duplicateModifier(tok)
			}
			p.advance()
			mods.Indexed = true
		case lexer.TokenDefault:
			if mods.Default != nil {
				return mods, p.duplicateModifier(tok)
			}
			p.advance()
			value, err := p.parseDefault()
			if err != nil {
				return mods, err
			}
			mods.Default = value
		default:
			return mods, nil
		}
	}
}

func (p *Parser) parseDefault() (schema.DefaultValue, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}

	tok := p.current()
	var value schema.DefaultValue
	switch tok.Type {
	case lexer.TokenString:
		value = schema.StringDefault(tok.Value)
	case lexer.TokenInt:
		n, err := strconv.ParseInt(tok.Raw, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, "64-bit integer")
		}
		value = schema.IntegerDefault(n)
	case lexer.TokenFloat:
		value = schema.FloatDefault(tok.Raw)
	case lexer.TokenTrue:
		value = schema.BooleanDefault(true)
	case lexer.TokenFalse:
		value = schema.BooleanDefault(false)
	default:
		return nil, p.errorAt(tok, "literal value")
	}
	p.advance()

	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return value, nil
}

func (p *Parser) duplicateModifier(tok lexer.Token) error {
	return diagnostics.NewParseError(tok.Pos, "each modifier at most once", fmt.Sprintf("duplicate '%s'", tok.Raw), tok.Len())
}

// Helper methods

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.isAtEnd() {
		return tok
	}
	switch tok.Type {
	case lexer.TokenLBrace:
		p.depth++
	case lexer.TokenRBrace:
		if p.depth > 0 {
			p.depth--
		}
	}
	p.pos++
	return tok
}

func (p *Parser) isAtEnd() bool {
	return p.current().Type == lexer.TokenEOF
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.current().Type == tokenType
}

func (p *Parser) expect(tokenType lexer.TokenType) (lexer.Token, error) {
	if p.check(tokenType) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorAt(p.current(), tokenType.String())
}

func (p *Parser) errorAt(tok lexer.Token, expected string) *diagnostics.ParseError {
	return diagnostics.NewParseError(tok.Pos, expected, tok.Describe(), tok.Len())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

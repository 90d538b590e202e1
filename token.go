package qimport

import "fmt"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenString
	TokenNumber
	TokenTemplate
	TokenRegex
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "eof"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenTemplate:
		return "template"
	case TokenRegex:
		return "regex"
	case TokenPunct:
		return "punctuator"
	default:
		return "unknown"
	}
}

type Position struct {
	Offset int
	Line   int
	Col    int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type Token struct {
	Kind    TokenKind
	Literal string
	// Value is the decoded content for string tokens, otherwise empty.
	Value string
	Pos   Position
	// End is the byte offset just past the token.
	End int
}

func (t Token) isIdent(name string) bool {
	return t.Kind == TokenIdent && t.Literal == name
}

func (t Token) isPunct(literal string) bool {
	return t.Kind == TokenPunct && t.Literal == literal
}

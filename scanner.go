package qimport

import (
	"strings"
)

/**
 * The scanner is not a full ECMAScript lexer. It produces a token stream that
 * is exact about the things the declaration parser depends on: comments,
 * string literals, template literals (including nested substitutions), regex
 * literals and bracket punctuators. Everything in between is passed through
 * as coarse identifier, number and operator tokens.
 */
type scanner struct {
	file string
	src  []byte
	pos  int
	line int
	col  int
	// prev is the last significant token, used to decide whether a slash
	// starts a regex literal or a division operator.
	prev Token
}

func newScanner(file string, src []byte) *scanner {
	return &scanner{
		file: file,
		src:  src,
		pos:  0,
		line: 1,
		col:  1,
	}
}

func (s *scanner) scanAll() ([]Token, error) {
	tokens := make([]Token, 0, 64)
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

func (s *scanner) next() (Token, error) {
	if err := s.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}

	start := s.position()
	if s.pos >= len(s.src) {
		return Token{Kind: TokenEOF, Pos: start, End: s.pos}, nil
	}

	c := s.src[s.pos]

	var tok Token
	var err error
	switch {
	case isIdentStart(c):
		tok = s.scanIdent(start)
	case c >= '0' && c <= '9':
		tok = s.scanNumber(start)
	case c == '\'' || c == '"':
		tok, err = s.scanString(start)
	case c == '`':
		tok, err = s.scanTemplate(start)
	case c == '/':
		if s.regexAllowed() {
			tok, err = s.scanRegex(start)
		} else {
			tok = s.scanOperator(start)
		}
	case c == '.' && s.pos+1 < len(s.src) && s.src[s.pos+1] >= '0' && s.src[s.pos+1] <= '9':
		tok = s.scanNumber(start)
	case strings.IndexByte("{}()[],;", c) >= 0:
		s.advance()
		tok = Token{Kind: TokenPunct, Literal: string(c), Pos: start, End: s.pos}
	default:
		tok = s.scanOperator(start)
	}
	if err != nil {
		return Token{}, err
	}

	s.prev = tok
	return tok, nil
}

func (s *scanner) position() Position {
	return Position{Offset: s.pos, Line: s.line, Col: s.col}
}

func (s *scanner) advance() {
	if s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

func (s *scanner) skipSpaceAndComments() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			s.advance()
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance()
			}
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			opening := s.position()
			s.advance()
			s.advance()
			closed := false
			for s.pos < len(s.src) {
				if s.src[s.pos] == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				return &SyntaxError{File: s.file, Pos: opening, Msg: "unterminated block comment"}
			}
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) scanIdent(start Position) Token {
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.advance()
	}
	return Token{
		Kind:    TokenIdent,
		Literal: string(s.src[start.Offset:s.pos]),
		Pos:     start,
		End:     s.pos,
	}
}

func (s *scanner) scanNumber(start Position) Token {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isIdentPart(c) || c == '.' {
			s.advance()
			continue
		}
		// Exponent sign, as in 1e+10.
		if (c == '+' || c == '-') && s.pos > start.Offset {
			p := s.src[s.pos-1]
			if p == 'e' || p == 'E' {
				s.advance()
				continue
			}
		}
		break
	}
	return Token{
		Kind:    TokenNumber,
		Literal: string(s.src[start.Offset:s.pos]),
		Pos:     start,
		End:     s.pos,
	}
}

func (s *scanner) scanString(start Position) (Token, error) {
	quote := s.src[s.pos]
	s.advance()

	var value strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == quote {
			s.advance()
			return Token{
				Kind:    TokenString,
				Literal: string(s.src[start.Offset:s.pos]),
				Value:   value.String(),
				Pos:     start,
				End:     s.pos,
			}, nil
		}
		if c == '\n' {
			break
		}
		if c == '\\' {
			s.advance()
			if s.pos >= len(s.src) {
				break
			}
			value.WriteByte(unescape(s.src[s.pos]))
			s.advance()
			continue
		}
		value.WriteByte(c)
		s.advance()
	}
	return Token{}, &SyntaxError{File: s.file, Pos: start, Msg: "unterminated string literal"}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case '0':
		return 0
	default:
		return c
	}
}

func (s *scanner) scanTemplate(start Position) (Token, error) {
	s.advance() // opening backtick

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '`':
			s.advance()
			return Token{
				Kind:    TokenTemplate,
				Literal: string(s.src[start.Offset:s.pos]),
				Pos:     start,
				End:     s.pos,
			}, nil
		case c == '\\':
			s.advance()
			s.advance()
		case c == '$' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '{':
			s.advance()
			s.advance()
			if err := s.skipSubstitution(); err != nil {
				return Token{}, err
			}
		default:
			s.advance()
		}
	}
	return Token{}, &SyntaxError{File: s.file, Pos: start, Msg: "unterminated template literal"}
}

// skipSubstitution consumes a ${...} template substitution body up to and
// including the matching closing brace. Nested strings, templates and
// comments are handled through the regular token scan.
func (s *scanner) skipSubstitution() error {
	depth := 1
	for depth > 0 {
		tok, err := s.next()
		if err != nil {
			return err
		}
		switch {
		case tok.Kind == TokenEOF:
			return &SyntaxError{File: s.file, Pos: tok.Pos, Msg: "unterminated template substitution"}
		case tok.isPunct("{"):
			depth++
		case tok.isPunct("}"):
			depth--
		}
	}
	return nil
}

func (s *scanner) scanRegex(start Position) (Token, error) {
	s.advance() // opening slash

	inClass := false
	closed := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' {
			break
		}
		if c == '\\' {
			s.advance()
			s.advance()
			continue
		}
		if c == '[' {
			inClass = true
		} else if c == ']' {
			inClass = false
		} else if c == '/' && !inClass {
			s.advance()
			closed = true
			break
		}
		s.advance()
	}
	if !closed {
		return Token{}, &SyntaxError{File: s.file, Pos: start, Msg: "unterminated regex literal"}
	}

	// Flags
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.advance()
	}
	return Token{
		Kind:    TokenRegex,
		Literal: string(s.src[start.Offset:s.pos]),
		Pos:     start,
		End:     s.pos,
	}, nil
}

func (s *scanner) scanOperator(start Position) Token {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		// A slash never joins an operator run; it has to go through the
		// regex disambiguation on the next call.
		if c == '/' && s.pos > start.Offset {
			break
		}
		if strings.IndexByte("+-*/%=<>!&|^~?:.", c) < 0 {
			break
		}
		s.advance()
	}
	if s.pos == start.Offset {
		// Unknown byte, consume it so the scan cannot stall.
		s.advance()
	}
	return Token{
		Kind:    TokenPunct,
		Literal: string(s.src[start.Offset:s.pos]),
		Pos:     start,
		End:     s.pos,
	}
}

func (s *scanner) regexAllowed() bool {
	switch s.prev.Kind {
	case TokenIdent:
		switch s.prev.Literal {
		case "return", "typeof", "instanceof", "in", "of", "new", "delete",
			"void", "case", "do", "else", "yield", "await":
			return true
		}
		return false
	case TokenNumber, TokenString, TokenTemplate, TokenRegex:
		return false
	case TokenPunct:
		switch s.prev.Literal {
		case ")", "]":
			return false
		}
		return true
	default:
		// Start of input.
		return true
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

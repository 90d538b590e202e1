package qimport

import (
	"fmt"
	"strings"
)

/**
 * The declaration parser walks the token stream and picks up every top-level
 * import/export declaration plus the names of every top-level binding. The
 * single point where the grammar diverges from stock ESM is a named import
 * clause followed by `as`:
 *
 *   import { name1, name2 } as Identifier from "module-specifier";
 *
 * Everything else must parse exactly the way a standard module would.
 */
type declParser struct {
	file string
	src  []byte
	toks []Token
	pos  int
}

// Parse scans and parses a single module source.
func Parse(file string, src []byte) (*ModuleSource, error) {
	toks, err := newScanner(file, src).scanAll()
	if err != nil {
		return nil, err
	}
	p := &declParser{file: file, src: src, toks: toks}
	return p.parse()
}

func (p *declParser) parse() (*ModuleSource, error) {
	mod := &ModuleSource{File: p.file, Source: p.src}

	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			return mod, nil
		}
		if tok.Kind == TokenPunct {
			switch tok.Literal {
			case "{", "(", "[":
				depth++
			case "}", ")", "]":
				if depth > 0 {
					depth--
				}
			}
			p.advance()
			continue
		}
		if depth > 0 || tok.Kind != TokenIdent {
			p.advance()
			continue
		}

		switch tok.Literal {
		case "import":
			next := p.peekAt(1)
			// Dynamic import and import.meta are expressions, not
			// declarations.
			if next.isPunct("(") || (next.Kind == TokenPunct && strings.HasPrefix(next.Literal, ".")) {
				p.advance()
				continue
			}
			decl, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			mod.Imports = append(mod.Imports, decl)
			mod.Bindings = append(mod.Bindings, decl.Bindings()...)
		case "export":
			decl, err := p.parseExport(mod)
			if err != nil {
				return nil, err
			}
			mod.Exports = append(mod.Exports, decl)
		case "const", "let", "var":
			p.parseVarStatement(mod)
		case "function":
			p.parseNamedDecl(mod, BindingFunction)
		case "class":
			p.parseNamedDecl(mod, BindingClass)
		case "async":
			if p.peekAt(1).isIdent("function") {
				p.advance()
				p.parseNamedDecl(mod, BindingFunction)
			} else {
				p.advance()
			}
		default:
			p.advance()
		}
	}
}

func (p *declParser) peek() Token {
	return p.peekAt(0)
}

func (p *declParser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF token
	}
	return p.toks[p.pos+offset]
}

func (p *declParser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *declParser) expectIdentName(what string) (Token, error) {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		return Token{}, p.syntaxError(tok, fmt.Sprintf("expected %s, found %q", what, tok.Literal))
	}
	return p.advance(), nil
}

func (p *declParser) expectPunct(literal string) (Token, error) {
	tok := p.peek()
	if !tok.isPunct(literal) {
		return Token{}, p.syntaxError(tok, fmt.Sprintf("expected %q, found %q", literal, tok.Literal))
	}
	return p.advance(), nil
}

func (p *declParser) syntaxError(tok Token, msg string) error {
	if tok.Kind == TokenEOF {
		msg = strings.Replace(msg, `found ""`, "found end of file", 1)
	}
	return &SyntaxError{File: p.file, Pos: tok.Pos, Msg: msg}
}

func (p *declParser) parseImport() (*ImportDecl, error) {
	importTok := p.advance()
	decl := &ImportDecl{Pos: importTok.Pos, Start: importTok.Pos.Offset}

	tok := p.peek()

	// Side-effect import: import "specifier";
	if tok.Kind == TokenString {
		p.advance()
		decl.SideEffect = true
		decl.Specifier = tok.Value
		decl.SpecifierPos = tok.Pos
		decl.End = p.consumeSemi(tok.End)
		return decl, nil
	}

	// Default binding.
	if tok.Kind == TokenIdent && tok.Literal != "from" {
		p.advance()
		decl.Default = tok.Literal
		decl.DefaultPos = tok.Pos
		if p.peek().isPunct(",") {
			p.advance()
		}
		tok = p.peek()
	}

	switch {
	case tok.isPunct("*"):
		p.advance()
		if _, err := p.expectKeyword("as"); err != nil {
			return nil, err
		}
		name, err := p.expectIdentName("namespace identifier")
		if err != nil {
			return nil, err
		}
		decl.Namespace = name.Literal
	case tok.isPunct("{"):
		specs, err := p.parseImportSpecs()
		if err != nil {
			return nil, err
		}
		if p.peek().isIdent("as") {
			// The qualified form proposed here: the clause as a whole is
			// bound to a single identifier.
			p.advance()
			ident, err := p.expectIdentName("qualified identifier")
			if err != nil {
				return nil, err
			}
			decl.Qualified = &QualifiedClause{
				Names:    specs,
				Ident:    ident.Literal,
				IdentPos: ident.Pos,
			}
		} else {
			decl.Named = specs
		}
	case decl.Default != "":
		// import Default from "m"; nothing else to parse.
	default:
		return nil, p.syntaxError(tok, fmt.Sprintf("unexpected %q in import declaration", tok.Literal))
	}

	if _, err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	specTok := p.peek()
	if specTok.Kind != TokenString {
		return nil, p.syntaxError(specTok, "expected module specifier string")
	}
	p.advance()
	decl.Specifier = specTok.Value
	decl.SpecifierPos = specTok.Pos
	decl.End = p.consumeSemi(specTok.End)
	return decl, nil
}

func (p *declParser) expectKeyword(name string) (Token, error) {
	tok := p.peek()
	if !tok.isIdent(name) {
		return Token{}, p.syntaxError(tok, fmt.Sprintf("expected %q, found %q", name, tok.Literal))
	}
	return p.advance(), nil
}

func (p *declParser) consumeSemi(end int) int {
	if tok := p.peek(); tok.isPunct(";") {
		p.advance()
		return tok.End
	}
	return end
}

func (p *declParser) parseImportSpecs() ([]ImportSpec, error) {
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var specs []ImportSpec
	for {
		tok := p.peek()
		if tok.isPunct("}") {
			p.advance()
			return specs, nil
		}
		name, err := p.expectIdentName("import name")
		if err != nil {
			return nil, err
		}
		spec := ImportSpec{Name: name.Literal, Alias: name.Literal, Pos: name.Pos}
		if p.peek().isIdent("as") {
			p.advance()
			alias, err := p.expectIdentName("import alias")
			if err != nil {
				return nil, err
			}
			spec.Alias = alias.Literal
		}
		specs = append(specs, spec)

		tok = p.peek()
		switch {
		case tok.isPunct(","):
			p.advance()
		case tok.isPunct("}"):
			// Closing brace handled on the next loop round.
		default:
			return nil, p.syntaxError(tok, fmt.Sprintf("expected \",\" or \"}\" in import clause, found %q", tok.Literal))
		}
	}
}

func (p *declParser) parseExport(mod *ModuleSource) (*ExportDecl, error) {
	exportTok := p.advance()
	decl := &ExportDecl{Pos: exportTok.Pos, Start: exportTok.Pos.Offset}

	tok := p.peek()
	switch {
	case tok.isPunct("*"):
		p.advance()
		decl.All = true
		if p.peek().isIdent("as") {
			p.advance()
			alias, err := p.expectIdentName("export namespace alias")
			if err != nil {
				return nil, err
			}
			decl.AllAlias = alias.Literal
		}
		if _, err := p.expectKeyword("from"); err != nil {
			return nil, err
		}
		specTok := p.peek()
		if specTok.Kind != TokenString {
			return nil, p.syntaxError(specTok, "expected module specifier string")
		}
		p.advance()
		decl.From = specTok.Value
		decl.FromPos = specTok.Pos
		decl.End = p.consumeSemi(specTok.End)

	case tok.isPunct("{"):
		specs, err := p.parseExportSpecs()
		if err != nil {
			return nil, err
		}
		decl.Names = specs
		end := p.toks[p.pos-1].End
		if p.peek().isIdent("from") {
			p.advance()
			specTok := p.peek()
			if specTok.Kind != TokenString {
				return nil, p.syntaxError(specTok, "expected module specifier string")
			}
			p.advance()
			decl.From = specTok.Value
			decl.FromPos = specTok.Pos
			end = specTok.End
		}
		decl.End = p.consumeSemi(end)

	case tok.isIdent("default"):
		p.advance()
		decl.Default = true
		decl.DefaultEnd = tok.End
		decl.End = tok.End
		// The defaulted expression is left to the main loop; a named
		// function or class declaration still registers its binding there.

	case tok.isIdent("const") || tok.isIdent("let") || tok.isIdent("var"):
		decl.HasDecl = true
		decl.DeclKind = bindingKindFor(tok.Literal)
		decl.End = exportTok.End
		before := len(mod.Bindings)
		p.parseVarStatement(mod)
		for _, b := range mod.Bindings[before:] {
			decl.Names = append(decl.Names, ExportSpec{Local: b.Name, Exported: b.Name, Pos: b.Pos})
		}

	case tok.isIdent("function") || tok.isIdent("class") || tok.isIdent("async"):
		decl.HasDecl = true
		decl.DeclKind = BindingFunction
		if tok.isIdent("class") {
			decl.DeclKind = BindingClass
		}
		decl.End = exportTok.End
		// The declaration itself is parsed by the main loop; peek ahead for
		// the exported name without consuming it.
		name := p.peekDeclaredName()
		if name == "" {
			return nil, p.syntaxError(tok, "exported declaration must have a name")
		}
		decl.Names = append(decl.Names, ExportSpec{Local: name, Exported: name, Pos: tok.Pos})

	default:
		return nil, p.syntaxError(tok, fmt.Sprintf("unexpected %q in export declaration", tok.Literal))
	}

	return decl, nil
}

func (p *declParser) peekDeclaredName() string {
	for i := 0; i < 4; i++ {
		tok := p.peekAt(i)
		if tok.Kind == TokenIdent {
			switch tok.Literal {
			case "async", "function", "class":
				continue
			default:
				return tok.Literal
			}
		}
		if tok.isPunct("*") {
			// Generator star.
			continue
		}
		return ""
	}
	return ""
}

func (p *declParser) parseExportSpecs() ([]ExportSpec, error) {
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var specs []ExportSpec
	for {
		tok := p.peek()
		if tok.isPunct("}") {
			p.advance()
			return specs, nil
		}
		name, err := p.expectIdentName("export name")
		if err != nil {
			return nil, err
		}
		spec := ExportSpec{Local: name.Literal, Exported: name.Literal, Pos: name.Pos}
		if p.peek().isIdent("as") {
			p.advance()
			alias, err := p.expectIdentName("export alias")
			if err != nil {
				return nil, err
			}
			spec.Exported = alias.Literal
		}
		specs = append(specs, spec)

		tok = p.peek()
		switch {
		case tok.isPunct(","):
			p.advance()
		case tok.isPunct("}"):
		default:
			return nil, p.syntaxError(tok, fmt.Sprintf("expected \",\" or \"}\" in export clause, found %q", tok.Literal))
		}
	}
}

func bindingKindFor(keyword string) BindingKind {
	switch keyword {
	case "const":
		return BindingConst
	case "let":
		return BindingLet
	case "var":
		return BindingVar
	case "function":
		return BindingFunction
	case "class":
		return BindingClass
	default:
		return BindingVar
	}
}

// parseVarStatement records the names bound by a top-level const/let/var
// statement. Initializer expressions are skipped with balanced-bracket
// tracking; the statement ends at a top-level semicolon or at the start of
// the next declaration keyword.
func (p *declParser) parseVarStatement(mod *ModuleSource) {
	kindTok := p.advance()
	kind := bindingKindFor(kindTok.Literal)

	expectName := true
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			return
		}
		if depth == 0 && expectName {
			switch {
			case tok.Kind == TokenIdent:
				mod.Bindings = append(mod.Bindings, Binding{Name: tok.Literal, Kind: kind, Pos: tok.Pos})
				p.advance()
				expectName = false
				continue
			case tok.isPunct("{") || tok.isPunct("["):
				p.parsePatternBindings(mod, kind)
				expectName = false
				continue
			}
		}
		if tok.Kind == TokenPunct {
			switch tok.Literal {
			case "{", "(", "[":
				depth++
			case "}", ")", "]":
				if depth == 0 {
					return
				}
				depth--
			case ";":
				if depth == 0 {
					p.advance()
					return
				}
			case ",":
				if depth == 0 {
					expectName = true
				}
			}
			p.advance()
			continue
		}
		if depth == 0 && tok.Kind == TokenIdent && !expectName {
			switch tok.Literal {
			case "const", "let", "var", "function", "class", "import", "export":
				// Next statement started without a semicolon.
				return
			}
		}
		p.advance()
	}
}

// parsePatternBindings collects the identifiers bound by a destructuring
// pattern. Object keys and default-value expressions are skipped.
func (p *declParser) parsePatternBindings(mod *ModuleSource, kind BindingKind) {
	open := p.advance() // { or [
	closing := "}"
	if open.Literal == "[" {
		closing = "]"
	}

	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			return
		}
		switch {
		case tok.isPunct(closing):
			p.advance()
			return
		case tok.isPunct("{") || tok.isPunct("["):
			p.parsePatternBindings(mod, kind)
		case tok.Kind == TokenIdent:
			p.advance()
			if p.peek().isPunct(":") {
				// Object key; the binding is the value side.
				p.advance()
				continue
			}
			mod.Bindings = append(mod.Bindings, Binding{Name: tok.Literal, Kind: kind, Pos: tok.Pos})
			if strings.HasPrefix(p.peek().Literal, "=") && p.peek().Kind == TokenPunct {
				p.skipDefaultValue(closing)
			}
		case tok.Kind == TokenPunct && strings.HasPrefix(tok.Literal, "="):
			p.skipDefaultValue(closing)
		default:
			p.advance()
		}
	}
}

// skipDefaultValue consumes a pattern default (`= expr`) up to the next
// comma or the pattern's closing bracket.
func (p *declParser) skipDefaultValue(closing string) {
	p.advance() // =
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			return
		}
		if tok.Kind == TokenPunct {
			switch tok.Literal {
			case "{", "(", "[":
				depth++
			case "}", ")", "]":
				if depth == 0 {
					return
				}
				depth--
			case ",":
				if depth == 0 {
					return
				}
			}
		}
		p.advance()
	}
}

func (p *declParser) parseNamedDecl(mod *ModuleSource, kind BindingKind) {
	p.advance() // function or class
	if p.peek().isPunct("*") {
		p.advance()
	}
	if tok := p.peek(); tok.Kind == TokenIdent {
		mod.Bindings = append(mod.Bindings, Binding{Name: tok.Literal, Kind: kind, Pos: tok.Pos})
		p.advance()
	}
}

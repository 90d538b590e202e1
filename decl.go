package qimport

type BindingKind int

const (
	BindingImport BindingKind = iota
	BindingConst
	BindingLet
	BindingVar
	BindingFunction
	BindingClass
)

func (k BindingKind) String() string {
	switch k {
	case BindingImport:
		return "import"
	case BindingConst:
		return "const"
	case BindingLet:
		return "let"
	case BindingVar:
		return "var"
	case BindingFunction:
		return "function"
	case BindingClass:
		return "class"
	default:
		return "unknown"
	}
}

// Binding is a top-level name introduced by a module.
type Binding struct {
	Name string
	Kind BindingKind
	Pos  Position
}

// ImportSpec is a single entry of a named or qualified import clause.
// For `{ fmap }` Name and Alias are both "fmap"; for `{ fmap as map }`
// Name is "fmap" and Alias is "map".
type ImportSpec struct {
	Name  string
	Alias string
	Pos   Position
}

// QualifiedClause is the proposed `{ name1, name2 } as Identifier` form.
// Identifier becomes an object whose properties are exactly the listed
// names, each mapped to the matching named export of the target module.
type QualifiedClause struct {
	Names    []ImportSpec
	Ident    string
	IdentPos Position
}

type ImportDecl struct {
	Specifier    string
	SpecifierPos Position

	// At most one of the clause fields below is filled per parsed clause;
	// Default may combine with Named, Namespace or Qualified.
	Default    string
	DefaultPos Position
	Namespace  string
	Named      []ImportSpec
	Qualified  *QualifiedClause
	SideEffect bool

	Pos Position
	// Start and End delimit the declaration in the source, including the
	// trailing semicolon when present.
	Start int
	End   int
}

// Bindings returns every top-level name the import introduces.
func (d *ImportDecl) Bindings() []Binding {
	var out []Binding
	if d.Default != "" {
		out = append(out, Binding{Name: d.Default, Kind: BindingImport, Pos: d.DefaultPos})
	}
	if d.Namespace != "" {
		out = append(out, Binding{Name: d.Namespace, Kind: BindingImport, Pos: d.Pos})
	}
	for _, spec := range d.Named {
		out = append(out, Binding{Name: spec.Alias, Kind: BindingImport, Pos: spec.Pos})
	}
	if d.Qualified != nil {
		out = append(out, Binding{Name: d.Qualified.Ident, Kind: BindingImport, Pos: d.Qualified.IdentPos})
	}
	return out
}

// ExportSpec maps a local name to its exported name.
type ExportSpec struct {
	Local    string
	Exported string
	Pos      Position
}

type ExportDecl struct {
	// Names lists explicit export entries, either from an export list or
	// from an exported declaration (`export const x = ...`).
	Names []ExportSpec
	// From is the specifier of a re-export, empty otherwise.
	From    string
	FromPos Position
	// All marks `export * from "m"`, AllAlias the `export * as ns` variant.
	All      bool
	AllAlias string
	// Default marks `export default ...`.
	Default bool
	// DeclKind is set when the export wraps a declaration, so the local
	// binding still counts for conflict checks.
	DeclKind BindingKind
	HasDecl  bool
	// DefaultEnd is the offset just past the `default` keyword, for lowering.
	DefaultEnd int

	Pos        Position
	Start, End int
}

// ModuleSource is one parsed source file.
type ModuleSource struct {
	File    string
	Source  []byte
	Imports []*ImportDecl
	Exports []*ExportDecl
	// Bindings collects every top-level binding, imports included, in
	// source order.
	Bindings []Binding
}

// QualifiedImports returns the import declarations carrying a qualified
// clause, in source order.
func (m *ModuleSource) QualifiedImports() []*ImportDecl {
	var out []*ImportDecl
	for _, decl := range m.Imports {
		if decl.Qualified != nil {
			out = append(out, decl)
		}
	}
	return out
}

// ExportedNames returns the locally determinable export names, excluding
// wildcard re-exports which need resolution to enumerate.
func (m *ModuleSource) ExportedNames() []string {
	var out []string
	for _, decl := range m.Exports {
		if decl.Default {
			out = append(out, "default")
			continue
		}
		if decl.All {
			if decl.AllAlias != "" {
				out = append(out, decl.AllAlias)
			}
			continue
		}
		for _, spec := range decl.Names {
			out = append(out, spec.Exported)
		}
	}
	return out
}

package qimport

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-errors/errors"
	uuid "github.com/satori/go.uuid"
)

type Strategy int

const (
	// StrategyNamespace desugars a qualified import into a hygienic
	// namespace import plus a frozen projection object.
	StrategyNamespace Strategy = iota
	// StrategyNamed desugars into aliased named imports plus the same
	// projection object.
	StrategyNamed
)

func (s Strategy) String() string {
	switch s {
	case StrategyNamespace:
		return "namespace"
	case StrategyNamed:
		return "named"
	default:
		return "unknown"
	}
}

func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "namespace", "":
		return StrategyNamespace, nil
	case "named":
		return StrategyNamed, nil
	default:
		return 0, errors.Errorf("unknown rewrite strategy %q", name)
	}
}

// NameGenerator produces hygienic identifiers for synthesized bindings.
type NameGenerator func(prefix string) (string, error)

func randomIdentifier(prefix string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.New(err)
	}
	return fmt.Sprintf("__%s_%s", prefix, strings.Replace(id.String(), "-", "", -1)), nil
}

type Rewriter struct {
	strategy Strategy
	freeze   bool
	names    NameGenerator
}

func NewRewriter(strategy Strategy, freeze bool) *Rewriter {
	return &Rewriter{
		strategy: strategy,
		freeze:   freeze,
		names:    randomIdentifier,
	}
}

// Rewrite desugars every qualified import of the module into standard
// ES-module syntax. All other source bytes pass through untouched; a module
// without qualified imports comes back byte-identical. The replacement for a
// single-line declaration stays on one line, so line numbers of everything
// below it hold.
func (rw *Rewriter) Rewrite(mod *ModuleSource) ([]byte, bool, error) {
	qualified := mod.QualifiedImports()
	if len(qualified) == 0 {
		return mod.Source, false, nil
	}

	var out bytes.Buffer
	last := 0
	for _, decl := range qualified {
		if decl.Start < last {
			return nil, false, errors.Errorf("overlapping import declarations at offset %d", decl.Start)
		}
		out.Write(mod.Source[last:decl.Start])

		replacement, err := rw.synthesize(decl)
		if err != nil {
			return nil, false, err
		}
		out.WriteString(replacement)
		last = decl.End
	}
	out.Write(mod.Source[last:])
	return out.Bytes(), true, nil
}

func (rw *Rewriter) synthesize(decl *ImportDecl) (string, error) {
	q := decl.Qualified

	var imported string
	projection := make([]string, 0, len(q.Names))

	switch rw.strategy {
	case StrategyNamespace:
		ns, err := rw.names("ns")
		if err != nil {
			return "", err
		}
		imported = fmt.Sprintf("import * as %s from %q;", ns, decl.Specifier)
		for _, spec := range q.Names {
			projection = append(projection, fmt.Sprintf("%s: %s.%s", spec.Alias, ns, spec.Name))
		}
	case StrategyNamed:
		group, err := rw.names("q")
		if err != nil {
			return "", err
		}
		specs := make([]string, 0, len(q.Names))
		for _, spec := range q.Names {
			local := fmt.Sprintf("%s$%s", group, spec.Alias)
			specs = append(specs, fmt.Sprintf("%s as %s", spec.Name, local))
			projection = append(projection, fmt.Sprintf("%s: %s", spec.Alias, local))
		}
		imported = fmt.Sprintf("import { %s } from %q;", strings.Join(specs, ", "), decl.Specifier)
	default:
		return "", errors.Errorf("unknown rewrite strategy %d", rw.strategy)
	}

	object := fmt.Sprintf("{ %s }", strings.Join(projection, ", "))
	if rw.freeze {
		object = fmt.Sprintf("Object.freeze(%s)", object)
	}

	if decl.Default != "" {
		// A combined default binding keeps its own import declaration.
		imported = fmt.Sprintf("import %s from %q; %s", decl.Default, decl.Specifier, imported)
	}

	return fmt.Sprintf("%s const %s = %s;", imported, q.Ident, object), nil
}

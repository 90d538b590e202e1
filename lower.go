package qimport

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-errors/errors"
)

const (
	exportsIdent = "__qimport_exports"
	requireIdent = "__qimport_require"
)

type splice struct {
	start, end int
	text       string
}

// lowerModule turns a (desugared) module into a plain script of the shape
//
//	(function(__qimport_exports, __qimport_require) { "use strict"; ... })
//
// Import declarations become require-backed var bindings in place, export
// declarations are stripped and replayed as assignments onto the exports
// object at the end of the body.
func lowerModule(mod *ModuleSource) (string, error) {
	var splices []splice
	var epilogue []string

	for _, decl := range mod.Imports {
		splices = append(splices, splice{
			start: decl.Start,
			end:   decl.End,
			text:  lowerImport(decl),
		})
	}

	for _, decl := range mod.Exports {
		switch {
		case decl.Default:
			splices = append(splices, splice{
				start: decl.Start,
				end:   decl.DefaultEnd,
				text:  fmt.Sprintf("%s[\"default\"] =", exportsIdent),
			})
		case decl.HasDecl:
			// Strip only the `export` keyword, the declaration itself stays.
			splices = append(splices, splice{start: decl.Start, end: decl.End})
			for _, spec := range decl.Names {
				epilogue = append(epilogue, fmt.Sprintf("%s.%s = %s;", exportsIdent, spec.Exported, spec.Local))
			}
		case decl.All && decl.AllAlias != "":
			splices = append(splices, splice{start: decl.Start, end: decl.End})
			epilogue = append(epilogue, fmt.Sprintf("%s.%s = %s(%q);", exportsIdent, decl.AllAlias, requireIdent, decl.From))
		case decl.All:
			splices = append(splices, splice{start: decl.Start, end: decl.End})
			epilogue = append(epilogue, fmt.Sprintf(
				"(function(src) { for (var key in src) { if (key !== \"default\") %s[key] = src[key]; } })(%s(%q));",
				exportsIdent, requireIdent, decl.From))
		case decl.From != "":
			splices = append(splices, splice{start: decl.Start, end: decl.End})
			for _, spec := range decl.Names {
				epilogue = append(epilogue, fmt.Sprintf("%s.%s = %s(%q).%s;",
					exportsIdent, spec.Exported, requireIdent, decl.From, spec.Local))
			}
		default:
			splices = append(splices, splice{start: decl.Start, end: decl.End})
			for _, spec := range decl.Names {
				epilogue = append(epilogue, fmt.Sprintf("%s.%s = %s;", exportsIdent, spec.Exported, spec.Local))
			}
		}
	}

	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	var body bytes.Buffer
	last := 0
	for _, s := range splices {
		if s.start < last {
			return "", errors.Errorf("overlapping declarations at offset %d in %s", s.start, mod.File)
		}
		body.Write(mod.Source[last:s.start])
		body.WriteString(s.text)
		last = s.end
	}
	body.Write(mod.Source[last:])

	var script bytes.Buffer
	fmt.Fprintf(&script, "(function(%s, %s) { \"use strict\";\n", exportsIdent, requireIdent)
	script.Write(body.Bytes())
	script.WriteString("\n")
	script.WriteString(strings.Join(epilogue, "\n"))
	script.WriteString("\n})")
	return script.String(), nil
}

func lowerImport(decl *ImportDecl) string {
	requireCall := fmt.Sprintf("%s(%q)", requireIdent, decl.Specifier)

	if decl.SideEffect {
		return requireCall + ";"
	}

	var parts []string
	if decl.Default != "" {
		parts = append(parts, fmt.Sprintf("var %s = %s[\"default\"];", decl.Default, requireCall))
	}
	if decl.Namespace != "" {
		parts = append(parts, fmt.Sprintf("var %s = %s;", decl.Namespace, requireCall))
	}
	for _, spec := range decl.Named {
		parts = append(parts, fmt.Sprintf("var %s = %s.%s;", spec.Alias, requireCall, spec.Name))
	}
	if decl.Qualified != nil {
		// Loaded sources run through the transformer first, so a qualified
		// clause should not survive to this point; lower it the obvious way
		// regardless.
		ns := fmt.Sprintf("var __qimport_q = %s;", requireCall)
		fields := make([]string, 0, len(decl.Qualified.Names))
		for _, spec := range decl.Qualified.Names {
			fields = append(fields, fmt.Sprintf("%s: __qimport_q.%s", spec.Alias, spec.Name))
		}
		parts = append(parts, ns, fmt.Sprintf("var %s = Object.freeze({ %s });", decl.Qualified.Ident, strings.Join(fields, ", ")))
	}
	return strings.Join(parts, " ")
}

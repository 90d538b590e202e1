package qimport

import (
	"fmt"
	"path"
	"sort"

	"github.com/go-errors/errors"
)

/**
 * Validator checks the qualified imports of a module:
 *
 *  - the bound identifier must not collide with any other top-level binding,
 *  - a name must not appear twice inside one qualified clause,
 *  - every requested name must exist on the target module's export list,
 *    wherever the specifier is statically resolvable.
 *
 * Unresolvable specifiers produce an informational finding only; bare
 * specifiers legitimately point outside the project tree.
 */
type Validator struct {
	resolver *Resolver
	scanner  *ExportScanner
	// checkNamedImports extends export-existence checking to standard named
	// import clauses, not only qualified ones.
	checkNamedImports bool
}

func NewValidator(resolver *Resolver) *Validator {
	return &Validator{
		resolver: resolver,
		scanner:  NewExportScanner(resolver),
	}
}

// Validate returns all findings for the module, ordered by source position.
func (v *Validator) Validate(mod *ModuleSource) []*Finding {
	var findings []*Finding
	findings = append(findings, v.checkConflicts(mod)...)
	findings = append(findings, v.checkExports(mod)...)
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Pos.Offset < findings[j].Pos.Offset
	})
	return findings
}

func (v *Validator) checkConflicts(mod *ModuleSource) []*Finding {
	var findings []*Finding

	seen := make(map[string]Position)
	for _, binding := range mod.Bindings {
		prev, dup := seen[binding.Name]
		if !dup {
			seen[binding.Name] = binding.Pos
			continue
		}
		// Only qualified identifiers are this tool's business; plain
		// redeclarations are the engine's to reject.
		if !v.isQualifiedIdent(mod, binding) && !v.isQualifiedIdent(mod, Binding{Name: binding.Name, Pos: prev}) {
			continue
		}
		related := prev
		findings = append(findings, &Finding{
			Kind:       FindingBindingConflict,
			File:       mod.File,
			Pos:        binding.Pos,
			Msg:        fmt.Sprintf("identifier %q is already bound at top level", binding.Name),
			RelatedPos: &related,
		})
	}

	for _, decl := range mod.QualifiedImports() {
		names := make(map[string]Position)
		for _, spec := range decl.Qualified.Names {
			if prev, dup := names[spec.Alias]; dup {
				related := prev
				findings = append(findings, &Finding{
					Kind:       FindingDuplicateName,
					File:       mod.File,
					Pos:        spec.Pos,
					Msg:        fmt.Sprintf("name %q listed twice in qualified import", spec.Alias),
					RelatedPos: &related,
				})
				continue
			}
			names[spec.Alias] = spec.Pos
		}
	}
	return findings
}

func (v *Validator) isQualifiedIdent(mod *ModuleSource, binding Binding) bool {
	for _, decl := range mod.QualifiedImports() {
		q := decl.Qualified
		if q.Ident == binding.Name && q.IdentPos == binding.Pos {
			return true
		}
	}
	return false
}

func (v *Validator) checkExports(mod *ModuleSource) []*Finding {
	var findings []*Finding
	fromDir := path.Dir(mod.File)

	for _, decl := range mod.Imports {
		var specs []ImportSpec
		if decl.Qualified != nil {
			specs = decl.Qualified.Names
		} else if v.checkNamedImports && len(decl.Named) > 0 {
			specs = decl.Named
		} else {
			continue
		}

		target, err := v.resolver.Resolve(decl.Specifier, fromDir)
		if err != nil {
			if errors.Is(err, ErrUnresolvable) {
				findings = append(findings, &Finding{
					Kind: FindingUnresolvable,
					File: mod.File,
					Pos:  decl.SpecifierPos,
					Msg:  fmt.Sprintf("specifier %q is not statically resolvable, skipping export check", decl.Specifier),
				})
				continue
			}
			findings = append(findings, &Finding{
				Kind: FindingMissingExport,
				File: mod.File,
				Pos:  decl.SpecifierPos,
				Msg:  err.Error(),
			})
			continue
		}

		for _, spec := range specs {
			ok, err := v.scanner.Has(target, spec.Name)
			if err != nil {
				findings = append(findings, &Finding{
					Kind: FindingMissingExport,
					File: mod.File,
					Pos:  spec.Pos,
					Msg:  err.Error(),
				})
				break
			}
			if !ok {
				findings = append(findings, &Finding{
					Kind: FindingMissingExport,
					File: mod.File,
					Pos:  spec.Pos,
					Msg:  fmt.Sprintf("module %q has no export named %q", decl.Specifier, spec.Name),
				})
			}
		}
	}
	return findings
}

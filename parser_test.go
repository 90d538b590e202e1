package qimport

import "testing"

func parse(t *testing.T, src string) *ModuleSource {
	t.Helper()
	mod, err := Parse("test.js", []byte(src))
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}
	return mod
}

func TestParseQualifiedImport(t *testing.T) {
	mod := parse(t, `import { fmap, pure } as Functor from "./functor.js";`)

	if len(mod.Imports) != 1 {
		t.Fatalf("\nwanted:\n1 import\ngot:\n%d", len(mod.Imports))
	}
	decl := mod.Imports[0]
	if decl.Qualified == nil {
		t.Fatalf("qualified clause not recognized")
	}
	if decl.Qualified.Ident != "Functor" {
		t.Fatalf("\nwanted:\nFunctor\ngot:\n%q", decl.Qualified.Ident)
	}
	if len(decl.Qualified.Names) != 2 || decl.Qualified.Names[0].Name != "fmap" || decl.Qualified.Names[1].Name != "pure" {
		t.Fatalf("unexpected qualified names: %+v", decl.Qualified.Names)
	}
	if decl.Specifier != "./functor.js" {
		t.Fatalf("\nwanted:\n./functor.js\ngot:\n%q", decl.Specifier)
	}
	if decl.Start != 0 || decl.End != len(`import { fmap, pure } as Functor from "./functor.js";`) {
		t.Fatalf("declaration range wrong: %d..%d", decl.Start, decl.End)
	}
}

func TestParseQualifiedImportWithAlias(t *testing.T) {
	mod := parse(t, `import { find as locate } as Lodash from "./lodash.js";`)

	q := mod.Imports[0].Qualified
	if q == nil {
		t.Fatalf("qualified clause not recognized")
	}
	if q.Names[0].Name != "find" || q.Names[0].Alias != "locate" {
		t.Fatalf("alias not parsed: %+v", q.Names[0])
	}
}

func TestParseStandardImportForms(t *testing.T) {
	mod := parse(t, `import "./side.js";
import def from "./a.js";
import * as ns from "./b.js";
import { x, y as z } from "./c.js";
import d, { w } from "./d.js";`)

	if len(mod.Imports) != 5 {
		t.Fatalf("\nwanted:\n5 imports\ngot:\n%d", len(mod.Imports))
	}
	if !mod.Imports[0].SideEffect {
		t.Fatalf("side-effect import not recognized")
	}
	if mod.Imports[1].Default != "def" {
		t.Fatalf("default import not recognized: %+v", mod.Imports[1])
	}
	if mod.Imports[2].Namespace != "ns" {
		t.Fatalf("namespace import not recognized: %+v", mod.Imports[2])
	}
	named := mod.Imports[3].Named
	if len(named) != 2 || named[1].Name != "y" || named[1].Alias != "z" {
		t.Fatalf("named specs wrong: %+v", named)
	}
	if mod.Imports[4].Default != "d" || len(mod.Imports[4].Named) != 1 {
		t.Fatalf("combined default+named import wrong: %+v", mod.Imports[4])
	}
	for _, decl := range mod.Imports {
		if decl.Qualified != nil {
			t.Fatalf("standard import misparsed as qualified: %+v", decl)
		}
	}
}

func TestParseSkipsDynamicImportAndImportMeta(t *testing.T) {
	mod := parse(t, `const m = import("./x.js");
const u = import.meta.url;`)

	if len(mod.Imports) != 0 {
		t.Fatalf("\nwanted:\n0 imports\ngot:\n%d", len(mod.Imports))
	}
}

func TestParseIgnoresNestedCode(t *testing.T) {
	mod := parse(t, `function load() {
	const x = { fmap: 1 };
	return x;
}`)

	if len(mod.Imports) != 0 || len(mod.Exports) != 0 {
		t.Fatalf("nested code produced declarations")
	}
	if len(mod.Bindings) != 1 || mod.Bindings[0].Name != "load" {
		t.Fatalf("\nwanted:\nbinding load\ngot:\n%+v", mod.Bindings)
	}
}

func TestParseExportForms(t *testing.T) {
	mod := parse(t, `export const a = 1, b = 2;
export function fn() {}
export class Klass {}
export { a as alias };
export { c } from "./c.js";
export * from "./d.js";
export * as ns from "./e.js";
export default fn;`)

	names := mod.ExportedNames()
	want := map[string]bool{
		"a": true, "b": true, "fn": true, "Klass": true,
		"alias": true, "c": true, "ns": true, "default": true,
	}
	for _, name := range names {
		if !want[name] {
			t.Fatalf("unexpected export %q in %v", name, names)
		}
		delete(want, name)
	}
	// `export * from` is only enumerable through resolution.
	if len(want) != 0 {
		t.Fatalf("missing exports: %v", want)
	}
}

func TestParseTopLevelBindings(t *testing.T) {
	mod := parse(t, `import { a } as Q from "./q.js";
const { x, y: renamed = 1 } = obj;
let [first, , second] = arr;
var plain = 2;
async function worker() {}
class Thing {}`)

	got := make(map[string]BindingKind)
	for _, b := range mod.Bindings {
		got[b.Name] = b.Kind
	}

	wanted := map[string]BindingKind{
		"Q":       BindingImport,
		"x":       BindingConst,
		"renamed": BindingConst,
		"first":   BindingLet,
		"second":  BindingLet,
		"plain":   BindingVar,
		"worker":  BindingFunction,
		"Thing":   BindingClass,
	}
	for name, kind := range wanted {
		if got[name] != kind {
			t.Fatalf("\nwanted:\n%s as %s\ngot:\n%s (all: %v)", name, kind, got[name], got)
		}
	}
	if _, ok := got["obj"]; ok {
		t.Fatalf("initializer identifier recorded as binding")
	}
	if _, ok := got["y"]; ok {
		t.Fatalf("object pattern key recorded as binding")
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"missing from":      `import { a } as X "./x.js";`,
		"missing specifier": `import { a } as X from;`,
		"missing ident":     `import { a } as from "./x.js";`,
		"bad clause":        `import { a, , b } from "./x.js";`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("test.js", []byte(src))
			if err == nil {
				t.Fatalf("\nwanted:\nsyntax error\ngot:\nnil")
			}
			if _, ok := err.(*SyntaxError); !ok {
				t.Fatalf("\nwanted:\n*SyntaxError\ngot:\n%T", err)
			}
		})
	}
}

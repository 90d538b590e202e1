package qimport

import (
	"strings"
	"testing"
)

func validate(t *testing.T, files map[string]string, entry string) []*Finding {
	t.Helper()
	fs := testFs(t, files)
	resolver := NewResolver(fs)
	v := NewValidator(resolver)

	data, err := resolver.LoadSource(entry)
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}
	mod, err := Parse(entry, data)
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}
	return v.Validate(mod)
}

func findingsOfKind(findings []*Finding, kind FindingKind) []*Finding {
	var out []*Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestValidateMissingExport(t *testing.T) {
	findings := validate(t, map[string]string{
		"/src/functor.js": `export const fmap = 1;`,
		"/src/main.js":    `import { fmap, missing } as Functor from "./functor.js";`,
	}, "/src/main.js")

	missing := findingsOfKind(findings, FindingMissingExport)
	if len(missing) != 1 {
		t.Fatalf("\nwanted:\n1 missing-export finding\ngot:\n%v", findings)
	}
	if !strings.Contains(missing[0].Msg, `"missing"`) {
		t.Fatalf("finding does not name the missing export: %s", missing[0])
	}
}

func TestValidateBindingConflict(t *testing.T) {
	findings := validate(t, map[string]string{
		"/src/functor.js": `export const fmap = 1;`,
		"/src/main.js": `const Functor = 1;
import { fmap } as Functor from "./functor.js";`,
	}, "/src/main.js")

	conflicts := findingsOfKind(findings, FindingBindingConflict)
	if len(conflicts) != 1 {
		t.Fatalf("\nwanted:\n1 binding-conflict finding\ngot:\n%v", findings)
	}
	if conflicts[0].RelatedPos == nil {
		t.Fatalf("conflict finding lacks the previous position")
	}
}

func TestValidateQualifiedAgainstQualified(t *testing.T) {
	findings := validate(t, map[string]string{
		"/src/a.js":    `export const x = 1;`,
		"/src/b.js":    `export const x = 2;`,
		"/src/main.js": `import { x } as Q from "./a.js";
import { x } as Q from "./b.js";`,
	}, "/src/main.js")

	if len(findingsOfKind(findings, FindingBindingConflict)) != 1 {
		t.Fatalf("\nwanted:\n1 binding-conflict finding\ngot:\n%v", findings)
	}
}

func TestValidateDistinctQualifiedNamespaces(t *testing.T) {
	// Same-named exports from different specifiers must not collide.
	findings := validate(t, map[string]string{
		"/src/lodash.js":   `export const find = 1;`,
		"/src/bluebird.js": `export const find = 2;`,
		"/src/main.js": `import { find } as Lodash from "./lodash.js";
import { find } as Bluebird from "./bluebird.js";`,
	}, "/src/main.js")

	for _, f := range findings {
		if f.Kind.Fatal() {
			t.Fatalf("unexpected fatal finding: %s", f)
		}
	}
}

func TestValidateDuplicateNameInClause(t *testing.T) {
	findings := validate(t, map[string]string{
		"/src/m.js":    `export const a = 1;`,
		"/src/main.js": `import { a, a } as Q from "./m.js";`,
	}, "/src/main.js")

	if len(findingsOfKind(findings, FindingDuplicateName)) != 1 {
		t.Fatalf("\nwanted:\n1 duplicate-name finding\ngot:\n%v", findings)
	}
}

func TestValidateUnresolvableSpecifier(t *testing.T) {
	findings := validate(t, map[string]string{
		"/src/main.js": `import { find } as Lodash from "lodash";`,
	}, "/src/main.js")

	unresolvable := findingsOfKind(findings, FindingUnresolvable)
	if len(unresolvable) != 1 {
		t.Fatalf("\nwanted:\n1 unresolvable finding\ngot:\n%v", findings)
	}
	if unresolvable[0].Kind.Fatal() {
		t.Fatalf("unresolvable finding must not be fatal")
	}
	for _, f := range findings {
		if f.Kind == FindingMissingExport {
			t.Fatalf("export check ran against unresolvable specifier: %s", f)
		}
	}
}

func TestValidateFindingsOrderedBySourcePosition(t *testing.T) {
	// The missing-export finding on line 1 precedes the conflict on line 3 in
	// the source, and must do so in the result as well.
	findings := validate(t, map[string]string{
		"/src/m.js": `export const a = 1;`,
		"/src/main.js": `import { phantom } as P from "./m.js";
const Q = 1;
import { a } as Q from "./m.js";`,
	}, "/src/main.js")

	if len(findings) < 2 {
		t.Fatalf("\nwanted:\nat least 2 findings\ngot:\n%v", findings)
	}
	for i := 1; i < len(findings); i++ {
		if findings[i].Pos.Offset < findings[i-1].Pos.Offset {
			t.Fatalf("findings out of source order:\n%s\n%s", findings[i-1], findings[i])
		}
	}
	if findings[0].Kind != FindingMissingExport {
		t.Fatalf("\nwanted:\nmissing-export finding first\ngot:\n%s", findings[0])
	}
}

func TestValidateNamedImportsOptIn(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/src/m.js":    `export const real = 1;`,
		"/src/main.js": `import { phantom } from "./m.js";`,
	})
	v := NewValidator(NewResolver(fs))

	data, _ := NewResolver(fs).LoadSource("/src/main.js")
	mod, err := Parse("/src/main.js", data)
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}

	if findings := v.Validate(mod); len(findingsOfKind(findings, FindingMissingExport)) != 0 {
		t.Fatalf("named imports checked without opt-in: %v", findings)
	}

	v.checkNamedImports = true
	if findings := v.Validate(mod); len(findingsOfKind(findings, FindingMissingExport)) != 1 {
		t.Fatalf("\nwanted:\n1 missing-export finding\ngot:\n%v", v.Validate(mod))
	}
}

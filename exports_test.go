package qimport

import (
	"reflect"
	"testing"
)

func TestExportScannerDirect(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/src/mod.js": `export const a = 1;
export function fn() {}
export { a as alias };
export default fn;`,
	})
	scanner := NewExportScanner(NewResolver(fs))

	names, err := scanner.Exports("/src/mod.js")
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}
	wanted := []string{"a", "alias", "default", "fn"}
	if !reflect.DeepEqual(names, wanted) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", wanted, names)
	}
}

func TestExportScannerReexportChain(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/src/base.js":   `export const deep = 1; export default 2;`,
		"/src/middle.js": `export * from "./base.js"; export const mid = 3;`,
		"/src/top.js":    `export { mid as renamed } from "./middle.js"; export * from "./middle.js";`,
	})
	scanner := NewExportScanner(NewResolver(fs))

	names, err := scanner.Exports("/src/top.js")
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}
	wanted := []string{"deep", "mid", "renamed"}
	if !reflect.DeepEqual(names, wanted) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", wanted, names)
	}
}

func TestExportScannerCycle(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/src/a.js": `export const a = 1; export * from "./b.js";`,
		"/src/b.js": `export const b = 2; export * from "./a.js";`,
	})
	scanner := NewExportScanner(NewResolver(fs))

	names, err := scanner.Exports("/src/a.js")
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}
	wanted := []string{"a", "b"}
	if !reflect.DeepEqual(names, wanted) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", wanted, names)
	}
}

func TestExportScannerHas(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/src/mod.js": `export const present = 1;`,
	})
	scanner := NewExportScanner(NewResolver(fs))

	ok, err := scanner.Has("/src/mod.js", "present")
	if err != nil || !ok {
		t.Fatalf("\nwanted:\ntrue, nil\ngot:\n%v, %v", ok, err)
	}
	ok, err = scanner.Has("/src/mod.js", "absent")
	if err != nil || ok {
		t.Fatalf("\nwanted:\nfalse, nil\ngot:\n%v, %v", ok, err)
	}
}

func TestExportScannerSkipsUnresolvableWildcard(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/src/mod.js": `export * from "external-pkg"; export const own = 1;`,
	})
	scanner := NewExportScanner(NewResolver(fs))

	names, err := scanner.Exports("/src/mod.js")
	if err != nil {
		t.Fatalf("\nwanted:\nno error\ngot:\n%v", err)
	}
	wanted := []string{"own"}
	if !reflect.DeepEqual(names, wanted) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", wanted, names)
	}
}

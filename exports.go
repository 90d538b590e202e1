package qimport

import (
	"path"
	"sort"

	"github.com/apex/log"
	"github.com/go-errors/errors"
)

// reexportDepthLimit caps re-export chains; anything deeper is almost
// certainly a pathological graph.
const reexportDepthLimit = 50

/**
 * ExportScanner statically enumerates the named exports of a module,
 * following `export ... from` re-export chains across the filesystem.
 */
type ExportScanner struct {
	resolver *Resolver
}

func NewExportScanner(resolver *Resolver) *ExportScanner {
	return &ExportScanner{resolver: resolver}
}

// Exports returns the sorted export names of the module at filename.
func (es *ExportScanner) Exports(filename string) ([]string, error) {
	names, err := es.collect(filename, make(map[string]bool), 0)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Has reports whether the module at filename exports the given name.
func (es *ExportScanner) Has(filename, name string) (bool, error) {
	names, err := es.collect(filename, make(map[string]bool), 0)
	if err != nil {
		return false, err
	}
	return names[name], nil
}

func (es *ExportScanner) collect(filename string, visited map[string]bool, depth int) (map[string]bool, error) {
	if depth > reexportDepthLimit {
		return nil, errors.Errorf("re-export chain at %s exceeds depth limit %d", filename, reexportDepthLimit)
	}
	if visited[filename] {
		// Cycle; the names of this module are already being merged by a
		// caller further up.
		return map[string]bool{}, nil
	}
	visited[filename] = true

	source, err := es.resolver.LoadSource(filename)
	if err != nil {
		return nil, err
	}
	mod, err := Parse(filename, source)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool)
	for _, name := range mod.ExportedNames() {
		names[name] = true
	}

	for _, decl := range mod.Exports {
		if decl.From == "" || !decl.All || decl.AllAlias != "" {
			continue
		}
		target, err := es.resolver.Resolve(decl.From, path.Dir(filename))
		if err != nil {
			if errors.Is(err, ErrUnresolvable) {
				log.Debugf("skipping wildcard re-export of %q in %s: unresolvable", decl.From, filename)
				continue
			}
			return nil, err
		}
		merged, err := es.collect(target, visited, depth+1)
		if err != nil {
			return nil, err
		}
		for name := range merged {
			// `export *` never forwards the default export. On a name
			// clash the last writer wins.
			if name == "default" {
				continue
			}
			if names[name] {
				log.Debugf("ambiguous re-exported name %q in %s", name, filename)
			}
			names[name] = true
		}
	}
	return names, nil
}

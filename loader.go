package qimport

import (
	"path"

	"github.com/apex/log"
	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"
	"github.com/go-errors/errors"
)

/**
 * Loader executes a graph of modules on an embedded engine, desugaring
 * qualified imports through the transformer first. Each module is lowered to
 * a plain script wrapped in a function taking the module's exports object
 * and a require callback; importing the same file twice yields the same
 * exports object, so bindings keep their identity across importers.
 *
 * Imports are resolved at the point of the (lowered) declaration, not
 * hoisted, and cyclic graphs are rejected.
 */
type Loader struct {
	transformer *Transformer
	resolver    *Resolver
	vm          *goja.Runtime
	modules     map[string]*loadedModule
	loading     map[string]bool
}

type loadedModule struct {
	file    string
	exports *goja.Object
}

func NewLoader(transformer *Transformer) *Loader {
	return &Loader{
		transformer: transformer,
		resolver:    transformer.Resolver(),
		vm:          goja.New(),
		modules:     make(map[string]*loadedModule),
		loading:     make(map[string]bool),
	}
}

// Require resolves a specifier the way an import declaration inside fromDir
// would and evaluates the target module.
func (l *Loader) Require(specifier, fromDir string) (*goja.Object, error) {
	target, err := l.resolver.Resolve(specifier, fromDir)
	if err != nil {
		return nil, err
	}
	return l.Load(target)
}

// Load evaluates the module at the given path and returns its frozen
// exports object. Repeated loads return the cached object.
func (l *Loader) Load(file string) (*goja.Object, error) {
	if module, ok := l.modules[file]; ok {
		return module.exports, nil
	}
	if l.loading[file] {
		return nil, errors.Errorf("import cycle detected at %s", file)
	}
	l.loading[file] = true
	defer delete(l.loading, file)

	result, err := l.transformer.TransformFile(file)
	if err != nil {
		return nil, err
	}

	mod, err := Parse(file, result.Output)
	if err != nil {
		return nil, err
	}

	lowered, err := lowerModule(mod)
	if err != nil {
		return nil, err
	}
	log.Debugf("lowered %s to %d bytes", file, len(lowered))

	prog, err := compileScript(file, []byte(lowered))
	if err != nil {
		return nil, err
	}

	value, err := l.vm.RunProgram(prog)
	if err != nil {
		return nil, errors.New(err)
	}
	var initializer goja.Callable
	if err := l.vm.ExportTo(value, &initializer); err != nil {
		return nil, errors.New(err)
	}

	exports := l.vm.NewObject()
	fromDir := path.Dir(file)
	require := func(call goja.FunctionCall) goja.Value {
		dependency, err := l.Require(call.Argument(0).String(), fromDir)
		if err != nil {
			panic(l.vm.NewGoError(err))
		}
		return dependency
	}

	if _, err := initializer(goja.Undefined(), exports, l.vm.ToValue(require)); err != nil {
		return nil, errors.New(err)
	}

	if err := freezeObject(l.vm, exports); err != nil {
		return nil, err
	}

	l.modules[file] = &loadedModule{file: file, exports: exports}
	return exports, nil
}

func compileScript(filename string, source []byte) (*goja.Program, error) {
	ast, err := parser.ParseFile(nil, filename, source, 0)
	if err != nil {
		return nil, errors.New(err)
	}
	prog, err := goja.CompileAST(ast, true)
	if err != nil {
		return nil, errors.New(err)
	}
	return prog, nil
}

func freezeObject(vm *goja.Runtime, value goja.Value) error {
	object := vm.Get("Object").ToObject(vm)

	var freeze goja.Callable
	if err := vm.ExportTo(object.Get("freeze"), &freeze); err != nil {
		return errors.New(err)
	}
	if _, err := freeze(object, value); err != nil {
		return errors.New(err)
	}
	return nil
}

package qimport

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/go-errors/errors"
	"github.com/spf13/afero"
)

type Transformer struct {
	fs         afero.Fs
	resolver   *Resolver
	validator  *Validator
	rewriter   *Rewriter
	cache      *rewriteCache
	cacheDir   string
	strategy   Strategy
	freeze     bool
	strict     bool
	extensions []string
	outputDir  string
	names      NameGenerator
}

type Option func(*Transformer) error

// WithFs sets the filesystem everything is read from and written to. The
// default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(t *Transformer) error {
		if fs == nil {
			return errors.Errorf("nil filesystem")
		}
		t.fs = fs
		return nil
	}
}

func WithStrategy(strategy Strategy) Option {
	return func(t *Transformer) error {
		t.strategy = strategy
		return nil
	}
}

// WithoutFreeze leaves the synthesized projection object mutable instead of
// wrapping it in Object.freeze.
func WithoutFreeze() Option {
	return func(t *Transformer) error {
		t.freeze = false
		return nil
	}
}

// WithStrictValidation makes any fatal finding abort the rewrite. The
// default logs findings and proceeds.
func WithStrictValidation() Option {
	return func(t *Transformer) error {
		t.strict = true
		return nil
	}
}

// WithNamedImportChecks extends export-existence validation to standard
// named imports, not only qualified clauses.
func WithNamedImportChecks() Option {
	return func(t *Transformer) error {
		t.validator.checkNamedImports = true
		return nil
	}
}

// WithExtensions sets the file extensions a tree transform picks up.
func WithExtensions(extensions ...string) Option {
	return func(t *Transformer) error {
		if len(extensions) == 0 {
			return errors.Errorf("no extensions given")
		}
		t.extensions = extensions
		return nil
	}
}

// WithCacheDir enables the rewrite cache under the given directory.
func WithCacheDir(dir string) Option {
	return func(t *Transformer) error {
		t.cacheDir = dir
		return nil
	}
}

// WithOutputDir mirrors rewritten trees below dir instead of writing files
// in place.
func WithOutputDir(dir string) Option {
	return func(t *Transformer) error {
		t.outputDir = dir
		return nil
	}
}

// WithNameGenerator overrides hygienic identifier generation.
func WithNameGenerator(names NameGenerator) Option {
	return func(t *Transformer) error {
		if names == nil {
			return errors.Errorf("nil name generator")
		}
		t.names = names
		return nil
	}
}

func New(opts ...Option) (*Transformer, error) {
	t := &Transformer{
		fs:         afero.NewOsFs(),
		strategy:   StrategyNamespace,
		freeze:     true,
		extensions: []string{".js", ".mjs"},
	}
	t.resolver = NewResolver(t.fs)
	t.validator = NewValidator(t.resolver)

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	// Options may have replaced the filesystem; rebuild the pieces that
	// captured it, keeping validator flags.
	checkNamed := t.validator.checkNamedImports
	t.resolver = NewResolver(t.fs)
	t.validator = NewValidator(t.resolver)
	t.validator.checkNamedImports = checkNamed

	t.rewriter = NewRewriter(t.strategy, t.freeze)
	if t.names != nil {
		t.rewriter.names = t.names
	}
	if t.cacheDir != "" {
		t.cache = newRewriteCache(t.fs, t.cacheDir)
	}
	return t, nil
}

func (t *Transformer) Resolver() *Resolver {
	return t.resolver
}

type Result struct {
	File      string
	Output    []byte
	Changed   bool
	FromCache bool
	Findings  []*Finding
}

// TransformSource desugars one module given as bytes. In strict mode fatal
// findings abort with a *ValidationError; otherwise findings are logged and
// the rewrite proceeds.
func (t *Transformer) TransformSource(file string, source []byte) (*Result, error) {
	mod, err := Parse(file, source)
	if err != nil {
		return nil, err
	}

	findings := t.validator.Validate(mod)
	result := &Result{File: file, Findings: findings}

	if t.strict {
		var fatal []*Finding
		for _, finding := range findings {
			if finding.Kind.Fatal() {
				fatal = append(fatal, finding)
			}
		}
		if len(fatal) > 0 {
			return result, &ValidationError{Findings: fatal}
		}
	} else {
		for _, finding := range findings {
			if finding.Kind.Fatal() {
				log.Warnf("%s", finding)
			} else {
				log.Debugf("%s", finding)
			}
		}
	}

	output, changed, err := t.rewriter.Rewrite(mod)
	if err != nil {
		return nil, err
	}
	result.Output = output
	result.Changed = changed
	return result, nil
}

// TransformFile desugars the module at path, consulting the rewrite cache
// when one is configured.
func (t *Transformer) TransformFile(file string) (*Result, error) {
	source, err := t.resolver.LoadSource(file)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if output := t.cache.lookup(file, source); output != nil {
			log.Debugf("cache hit for %s", file)
			return &Result{
				File:      file,
				Output:    output,
				Changed:   !bytes.Equal(output, source),
				FromCache: true,
			}, nil
		}
	}

	result, err := t.TransformSource(file, source)
	if err != nil {
		return result, err
	}

	if t.cache != nil {
		if err := t.cache.store(file, source, result.Output); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type TreeResult struct {
	Results   []*Result
	Rewritten int
}

// Findings returns every finding across the tree in file walk order.
func (r *TreeResult) Findings() []*Finding {
	var out []*Finding
	for _, result := range r.Results {
		out = append(out, result.Findings...)
	}
	return out
}

// TransformTree walks root and desugars every matching file, writing
// changed files back, either in place or mirrored below the configured
// output directory.
func (t *Transformer) TransformTree(root string) (*TreeResult, error) {
	tree := &TreeResult{}

	err := afero.Walk(t.fs, root, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if t.cacheDir != "" && file == t.cacheDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !t.matchesExtension(file) {
			return nil
		}
		if t.cacheDir != "" && strings.HasPrefix(file, t.cacheDir+"/") {
			return nil
		}

		log.Debugf("transforming %s", file)
		result, err := t.TransformFile(file)
		if err != nil {
			return err
		}
		tree.Results = append(tree.Results, result)

		if !result.Changed {
			return nil
		}
		tree.Rewritten++
		return t.writeOutput(root, file, result.Output)
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func (t *Transformer) writeOutput(root, file string, output []byte) error {
	target := file
	if t.outputDir != "" {
		rel := strings.TrimPrefix(file, root)
		target = path.Join(t.outputDir, rel)
		if err := t.fs.MkdirAll(path.Dir(target), os.ModePerm); err != nil {
			return errors.New(err)
		}
	}
	if err := afero.WriteFile(t.fs, target, output, os.ModePerm); err != nil {
		return errors.New(err)
	}
	return nil
}

func (t *Transformer) matchesExtension(file string) bool {
	for _, ext := range t.extensions {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return false
}

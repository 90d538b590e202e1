package qimport

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"path"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/afero"
)

// ErrUnresolvable marks a specifier the resolver has no authority over,
// typically a bare package specifier. Callers are expected to skip static
// validation for these rather than fail.
var ErrUnresolvable = errors.Errorf("unresolvable module specifier")

var resolveCandidates = []string{
	"",
	".js",
	".mjs",
	"/index.js",
	"/index.mjs",
	".js.gz",
	".js.bz2",
}

type Resolver struct {
	fs afero.Fs
}

func NewResolver(fs afero.Fs) *Resolver {
	return &Resolver{fs: fs}
}

// Resolve maps a module specifier, as written in an import declaration of a
// file inside fromDir, to a concrete file on the filesystem. Only relative
// and absolute path specifiers are resolvable.
func (r *Resolver) Resolve(specifier, fromDir string) (string, error) {
	if !isPathSpecifier(specifier) {
		return "", errors.WrapPrefix(ErrUnresolvable, specifier, 0)
	}

	filename := specifier
	if !strings.HasPrefix(specifier, "/") {
		filename = path.Join(fromDir, specifier)
	}
	filename = path.Clean(filename)

	for _, suffix := range resolveCandidates {
		if suffix == "" && path.Ext(filename) == "" {
			continue
		}
		candidate := filename + suffix
		if ok, _ := afero.Exists(r.fs, candidate); ok {
			if dir, _ := afero.IsDir(r.fs, candidate); !dir {
				return candidate, nil
			}
		}
	}
	return "", errors.Errorf("cannot resolve %q from %s", specifier, fromDir)
}

// LoadSource reads a resolved module file, transparently decompressing
// gzip and bzip2 compressed sources.
func (r *Resolver) LoadSource(filename string) ([]byte, error) {
	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		return nil, errors.New(err)
	}
	if strings.HasSuffix(filename, ".gz") {
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.New(err)
		}
		return io.ReadAll(reader)
	}
	if strings.HasSuffix(filename, ".bz2") {
		return io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
	}
	return data, nil
}

func isPathSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/")
}

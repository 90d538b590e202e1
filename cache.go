package qimport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path"

	"github.com/go-errors/errors"
	"github.com/spf13/afero"
)

const cacheManifestFile = "cache.json"

type cacheEntry struct {
	OriginalFile string `json:"originalFile"`
	CacheFile    string `json:"cacheFile"`
	Checksum     string `json:"checksum"`
}

/**
 * rewriteCache keeps the desugared output of previously processed files,
 * keyed by a checksum of the original source. The manifest lives as JSON
 * next to the cached files so a tree rewrite can skip everything that has
 * not changed since the last run.
 */
type rewriteCache struct {
	fs      afero.Fs
	dir     string
	entries []cacheEntry
}

func newRewriteCache(fs afero.Fs, dir string) *rewriteCache {
	var entries []cacheEntry

	manifest := path.Join(dir, cacheManifestFile)
	if data, err := afero.ReadFile(fs, manifest); err == nil {
		json.Unmarshal(data, &entries)
	}
	if entries == nil {
		entries = make([]cacheEntry, 0)
	}

	return &rewriteCache{
		fs:      fs,
		dir:     dir,
		entries: entries,
	}
}

// lookup returns the cached output for the file if its checksum still
// matches, or nil.
func (c *rewriteCache) lookup(originalFile string, source []byte) []byte {
	entry := c.find(originalFile)
	if entry == nil || entry.Checksum != hash(source) {
		return nil
	}
	data, err := afero.ReadFile(c.fs, entry.CacheFile)
	if err != nil {
		return nil
	}
	return data
}

func (c *rewriteCache) store(originalFile string, source, output []byte) error {
	if err := c.fs.MkdirAll(c.dir, os.ModePerm); err != nil {
		return errors.New(err)
	}

	cacheFile := path.Join(c.dir, hash([]byte(originalFile)))
	if err := afero.WriteFile(c.fs, cacheFile, output, os.ModePerm); err != nil {
		return errors.New(err)
	}

	c.remove(originalFile)
	c.entries = append(c.entries, cacheEntry{
		OriginalFile: originalFile,
		CacheFile:    cacheFile,
		Checksum:     hash(source),
	})
	return c.writeManifest()
}

func (c *rewriteCache) find(originalFile string) *cacheEntry {
	for i := range c.entries {
		if c.entries[i].OriginalFile == originalFile {
			return &c.entries[i]
		}
	}
	return nil
}

func (c *rewriteCache) remove(originalFile string) {
	for i, entry := range c.entries {
		if entry.OriginalFile == originalFile {
			c.fs.Remove(entry.CacheFile)
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

func (c *rewriteCache) writeManifest() error {
	manifest := path.Join(c.dir, cacheManifestFile)
	data, err := json.Marshal(c.entries)
	if err != nil {
		return errors.New(err)
	}
	if err := afero.WriteFile(c.fs, manifest, data, os.ModePerm); err != nil {
		return errors.New(err)
	}
	return nil
}

func hash(value []byte) string {
	hasher := sha256.New()
	hasher.Write(value)
	return hex.EncodeToString(hasher.Sum(nil))
}

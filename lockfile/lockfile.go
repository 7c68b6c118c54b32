// Package lockfile implements xckit.lock, which records an MD5 checksum of
// the source text each translation was made from. Comparing the checksums
// with the current catalog shows translations whose source has changed
// since they were written.
//
// The lock file is stored in the project root next to .xckit.yaml.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "xckit.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the xckit.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // catalog -> entry key -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if lf.Version > Version {
		return nil, fmt.Errorf("%s: unsupported version %d", path, lf.Version)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// CatalogKey builds the lock file key of a catalog: its path relative to
// root, with forward slashes. Paths outside root are kept absolute.
func CatalogKey(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// EntryKey builds the key of one translated string inside a catalog.
// Format: "key|language|kind".
func EntryKey(key, language, kind string) string {
	return key + "|" + language + "|" + kind
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Drifted reports whether entry was recorded with a different source.
// Unrecorded entries are not drifted.
func (lf *LockFile) Drifted(catalog, entry, source string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old, ok := lf.Checksums[catalog][entry]
	return ok && old != Hash(source)
}

// Update records the source a string was translated from.
func (lf *LockFile) Update(catalog, entry, source string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[catalog] == nil {
		lf.Checksums[catalog] = make(map[string]string)
	}
	lf.Checksums[catalog][entry] = Hash(source)
}

// Clean removes entries of catalog that are not in current.
func (lf *LockFile) Clean(catalog string, current []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[catalog]
	if existing == nil {
		return
	}

	valid := make(map[string]bool, len(current))
	for _, k := range current {
		valid[k] = true
	}

	for k := range existing {
		if !valid[k] {
			delete(existing, k)
		}
	}
	if len(existing) == 0 {
		delete(lf.Checksums, catalog)
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of catalogs and total entries in the lock file.
func (lf *LockFile) Stats() (catalogs, entries int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	catalogs = len(lf.Checksums)
	for _, m := range lf.Checksums {
		entries += len(m)
	}
	return
}

// Catalogs returns the sorted catalog keys.
func (lf *LockFile) Catalogs() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	catalogs := make([]string, 0, len(lf.Checksums))
	for c := range lf.Checksums {
		catalogs = append(catalogs, c)
	}
	sort.Strings(catalogs)
	return catalogs
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	catalogs, entries := lf.Stats()
	if catalogs == 0 {
		return "empty"
	}

	var parts []string
	for _, c := range lf.Catalogs() {
		lf.mu.Lock()
		n := len(lf.Checksums[c])
		lf.mu.Unlock()
		parts = append(parts, fmt.Sprintf("%s: %d entries", c, n))
	}
	return fmt.Sprintf("%d catalogs, %d entries (%s)", catalogs, entries, strings.Join(parts, ", "))
}

// Package finder locates string catalogs on disk.
package finder

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// Ext is the string catalog file extension.
	Ext = ".xcstrings"
	// OutputExt is the extension of catalogs written next to their input
	// when the input is not overwritten.
	OutputExt = ".loc" + Ext
)

// Find returns the catalogs at path. A catalog file is returned as is; a
// directory is searched recursively, skipping hidden entries and generated
// outputs. A missing path yields no catalogs.
func Find(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(path, Ext) {
			return []string{path}, nil
		}
		return nil, nil
	}

	var found []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isCatalog(d.Name()) {
			return nil
		}
		found = append(found, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// FindAll runs Find on every path and returns the deduplicated union, in
// the order found.
func FindAll(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var all []string
	for _, p := range paths {
		found, err := Find(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				all = append(all, f)
			}
		}
	}
	return all, nil
}

// OutputPath returns where the catalog at path is written: path itself when
// overwriting, otherwise a sibling with the .loc.xcstrings extension.
func OutputPath(path string, overwrite bool) string {
	if overwrite || strings.HasSuffix(path, OutputExt) {
		return path
	}
	return strings.TrimSuffix(path, Ext) + OutputExt
}

func isCatalog(name string) bool {
	return strings.HasSuffix(name, Ext) && !strings.HasSuffix(name, OutputExt)
}

// Package fs provides file system adapters for walking, matching, and hashing source files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkDirs yields every directory under root, root included, skipping VCS
// metadata, node_modules and any nested directory whose name matches one of
// ignores. Unreadable directories are skipped.
func (w *Walker) WalkDirs(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Unreadable directories are not watched.
			}
			if !d.IsDir() {
				return nil
			}
			if skip, action := w.shouldSkip(path != root, d, ignores); skip {
				return action
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// SkipDir reports whether a directory with the given base name is never walked.
func SkipDir(name string) bool {
	return skippedDirs[name]
}

// shouldSkip reports whether the entry is excluded. The returned action is
// filepath.SkipDir for directories and nil for files.
func (w *Walker) shouldSkip(nested bool, d fs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()

	if d.IsDir() && nested && skippedDirs[name] {
		return true, filepath.SkipDir
	}

	if !Ignored(name, ignores) {
		return false, nil
	}
	if d.IsDir() {
		if !nested {
			return false, nil
		}
		return true, filepath.SkipDir
	}
	return true, nil
}

// Ignored reports whether a base name matches one of the ignore patterns.
func Ignored(name string, ignores []string) bool {
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}

package fs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolver expands doublestar source globs relative to a project root.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveSources returns the sorted, de-duplicated absolute paths of all files
// under root matching one of patterns. Files inside a skipped directory are
// never returned. A pattern matching nothing is not an error.
func (r *Resolver) ResolveSources(root string, patterns []string) ([]string, error) {
	if err := ValidatePatterns(patterns); err != nil {
		return nil, err
	}

	fsys := os.DirFS(root)
	unique := make(map[string]struct{})

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceScanFailed.Error()), "pattern", pattern)
		}
		for _, match := range matches {
			if inSkippedDir(match) {
				continue
			}
			unique[filepath.Join(root, filepath.FromSlash(match))] = struct{}{}
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	slices.Sort(result)

	return result, nil
}

// Matches reports whether path, absolute or relative to root, is a source
// file selected by one of patterns.
func (r *Resolver) Matches(root string, patterns []string, path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(root, path)
		if err != nil {
			return false
		}
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") || inSkippedDir(rel) {
		return false
	}

	for _, pattern := range patterns {
		if doublestar.MatchUnvalidated(pattern, rel) {
			return true
		}
	}
	return false
}

// ValidatePatterns rejects malformed globs.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return zerr.With(zerr.Wrap(doublestar.ErrBadPattern, domain.ErrInvalidPattern.Error()), "pattern", pattern)
		}
	}
	return nil
}

// inSkippedDir reports whether a slash-separated relative path crosses a skipped directory.
func inSkippedDir(rel string) bool {
	segments := strings.Split(rel, "/")
	for _, segment := range segments[:len(segments)-1] {
		if skippedDirs[segment] {
			return true
		}
	}
	return false
}

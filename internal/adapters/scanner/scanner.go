// Package scanner discovers the external modules application sources import.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	dfs "go.trai.ch/dyndll/internal/adapters/fs"
	"go.trai.ch/dyndll/internal/adapters/jsparse"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.SourceScanner = (*Scanner)(nil)

// Scanner implements ports.SourceScanner over tree-sitter import extraction
// and node_modules resolution.
type Scanner struct {
	resolver *dfs.Resolver
	hasher   *dfs.Hasher
	logger   ports.Logger
	cache    *ImportCache
}

// New creates a Scanner.
func New(resolver *dfs.Resolver, hasher *dfs.Hasher, logger ports.Logger) *Scanner {
	return &Scanner{
		resolver: resolver,
		hasher:   hasher,
		logger:   logger,
		cache:    NewImportCache(),
	}
}

// Walk scans every file under root matching one of patterns.
func (s *Scanner) Walk(ctx context.Context, root string, patterns []string) ([]domain.ModuleReference, error) {
	files, err := s.resolver.ResolveSources(root, patterns)
	if err != nil {
		return nil, err
	}
	return s.ScanFiles(ctx, root, files)
}

// ScanFiles scans only the given files. Missing files are dropped from the
// import cache and skipped. Files that fail to parse and specifiers that
// cannot be resolved are logged and skipped.
func (s *Scanner) ScanFiles(ctx context.Context, root string, files []string) ([]domain.ModuleReference, error) {
	perFile := make([][]domain.ModuleReference, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, file := range files {
		if !filepath.IsAbs(file) {
			file = filepath.Join(root, file)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perFile[i] = s.scanFile(root, file)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSourceScanFailed.Error())
	}

	var refs []domain.ModuleReference
	for _, fileRefs := range perFile {
		refs = append(refs, fileRefs...)
	}
	return refs, nil
}

// Forget drops cached imports for paths, typically after they were removed.
func (s *Scanner) Forget(paths []string) {
	s.cache.Invalidate(paths)
}

func (s *Scanner) scanFile(root, file string) []domain.ModuleReference {
	specs, err := s.imports(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.cache.Invalidate([]string{file})
			return nil
		}
		s.logger.Warn(fmt.Sprintf("skipping %s: %v", relative(root, file), err))
		return nil
	}

	seen := make(map[string]bool, len(specs))
	refs := make([]domain.ModuleReference, 0, len(specs))

	for _, spec := range specs {
		key := ModuleKey(spec)
		if !IsBare(key) || seen[key] {
			continue
		}
		seen[key] = true

		info, err := Resolve(key, file)
		if err != nil {
			s.logger.Warn(fmt.Sprintf("%s: %s (imported from %s)", domain.ErrModuleUnresolved, key, relative(root, file)))
			continue
		}
		refs = append(refs, domain.ModuleReference{Key: key, Origin: file, Info: info})
	}
	return refs
}

// imports returns the specifiers of file, parsing it only when its content
// changed since the last scan.
func (s *Scanner) imports(file string) ([]string, error) {
	content, err := os.ReadFile(file) //nolint:gosec // Path comes from the configured source globs
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", file)
	}

	hash := s.hasher.HashBytes(content)
	if specs, ok := s.cache.Get(file, hash); ok {
		return specs, nil
	}

	imports, err := jsparse.ExtractImports(file, content)
	if err != nil {
		return nil, err
	}
	specs := make([]string, 0, len(imports))
	for _, imp := range imports {
		specs = append(specs, imp.Specifier)
	}

	s.cache.Put(file, hash, specs)
	return specs, nil
}

func relative(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

package ports

import (
	"context"

	"go.trai.ch/dyndll/internal/core/domain"
)

// SourceScanner discovers the external module references of application sources.
//
//go:generate mockgen -source=scanner.go -destination=mocks/mock_scanner.go -package=mocks
type SourceScanner interface {
	// Walk scans every file under root matching one of the glob patterns.
	Walk(ctx context.Context, root string, patterns []string) ([]domain.ModuleReference, error)

	// ScanFiles scans only the given files.
	ScanFiles(ctx context.Context, root string, files []string) ([]domain.ModuleReference, error)

	// Forget drops any cached state for the given files.
	Forget(paths []string)
}

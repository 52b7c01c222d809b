package ports

import (
	"context"

	"go.trai.ch/dyndll/internal/core/domain"
)

// BuildHistory records settled builds.
//
//go:generate mockgen -source=history.go -destination=mocks/mock_history.go -package=mocks
type BuildHistory interface {
	// Record stores one settled build.
	Record(ctx context.Context, rec domain.BuildRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.BuildRecord, error)

	// Close releases the underlying storage.
	Close() error
}

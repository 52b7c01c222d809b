// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/dyndll/internal/core/domain"
)

// Bundler defines the interface of the external bundling engine.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Bundle produces the artifact described by req into req.OutputDir.
	//
	// It is invoked exactly once per build. A failed bundle returns an error
	// wrapping domain.ErrBundlerFailed that carries the engine's diagnostics.
	Bundle(ctx context.Context, req domain.BundleRequest) error
}

type outputKey struct{}

// WithOutput returns a context whose bundler output is also copied to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// OutputFrom returns the writer attached with WithOutput, or io.Discard.
func OutputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return io.Discard
}

package ports

import "go.trai.ch/dyndll/internal/core/domain"

// StubRenderer produces the source of the expose stub for one module.
//
//go:generate mockgen -source=stub_renderer.go -destination=mocks/mock_stub_renderer.go -package=mocks
type StubRenderer interface {
	// Render returns the stub kind and source re-exporting key.
	Render(key string, info domain.ModuleInfo) (domain.ExposeKind, []byte, error)
}

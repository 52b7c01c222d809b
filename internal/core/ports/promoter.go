package ports

import "go.trai.ch/dyndll/internal/core/domain"

// Promoter owns the staging and published output directories.
//
//go:generate mockgen -source=promoter.go -destination=mocks/mock_promoter.go -package=mocks
type Promoter interface {
	// Prepare empties any staging state left behind by an aborted build.
	Prepare() error

	// PendingDir returns the directory a build writes its artifact into.
	PendingDir() string

	// Promote writes meta into staging and atomically replaces the published build with it.
	Promote(meta domain.Metadata) error

	// Current returns the metadata of the published build, if any.
	Current() (domain.Metadata, bool)
}

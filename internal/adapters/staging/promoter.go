// Package staging publishes finished builds by swapping directories.
package staging

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/zerr"
)

// previousDirName holds the replaced build for the duration of a swap.
const previousDirName = "previous"

// Promoter implements ports.Promoter over a domain.Layout.
type Promoter struct {
	layout domain.Layout

	// beforeSwap runs after the metadata marker is written and before the
	// published directory is touched.
	beforeSwap func() error
}

// NewPromoter creates a Promoter for layout.
func NewPromoter(layout domain.Layout) *Promoter {
	return &Promoter{layout: layout}
}

// Recover republishes the build moved aside by a swap that never finished.
// It does nothing while the published directory holds readable metadata.
func (p *Promoter) Recover() (bool, error) {
	if _, ok := p.Current(); ok {
		return false, nil
	}
	previous := p.previousDir()
	if _, err := ReadMetadata(filepath.Join(previous, domain.MetadataFileName)); err != nil {
		return false, nil
	}

	current := p.layout.CurrentDir()
	if err := os.RemoveAll(current); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrPromoteFailed.Error()), "dir", current)
	}
	if err := os.Rename(previous, current); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrPromoteFailed.Error()), "dir", previous)
	}
	return true, nil
}

// Prepare restores an interrupted swap, discards staging and stub
// directories left by an aborted build and recreates an empty staging
// directory.
func (p *Promoter) Prepare() error {
	if _, err := p.Recover(); err != nil {
		return err
	}
	for _, dir := range []string{p.layout.PendingDir(), p.layout.DepsDir(), p.previousDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStagingFailed.Error()), "dir", dir)
		}
	}
	if err := os.MkdirAll(p.layout.PendingDir(), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStagingFailed.Error())
	}
	return nil
}

// PendingDir returns the staging directory.
func (p *Promoter) PendingDir() string {
	return p.layout.PendingDir()
}

// Promote marks the staged build complete and replaces the published build.
//
// The metadata file is written last into staging. The published directory
// is moved aside, staging is renamed into its place, and the old build is
// removed. A failed rename restores the old build.
func (p *Promoter) Promote(meta domain.Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrMetadataWriteFailed.Error())
	}
	if err := os.WriteFile(p.layout.PendingMetadataFile(), data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrMetadataWriteFailed.Error())
	}

	if p.beforeSwap != nil {
		if err := p.beforeSwap(); err != nil {
			return zerr.Wrap(err, domain.ErrPromoteFailed.Error())
		}
	}

	current := p.layout.CurrentDir()
	previous := p.previousDir()
	if err := os.RemoveAll(previous); err != nil {
		return zerr.Wrap(err, domain.ErrPromoteFailed.Error())
	}

	hadCurrent := true
	if err := os.Rename(current, previous); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return zerr.Wrap(err, domain.ErrPromoteFailed.Error())
		}
		hadCurrent = false
	}

	if err := os.Rename(p.layout.PendingDir(), current); err != nil {
		if hadCurrent {
			_ = os.Rename(previous, current)
		}
		return zerr.Wrap(err, domain.ErrPromoteFailed.Error())
	}

	if hadCurrent {
		if err := os.RemoveAll(previous); err != nil {
			return zerr.Wrap(err, domain.ErrPromoteFailed.Error())
		}
	}
	return nil
}

// Current returns the metadata of the published build. A published
// directory without a readable metadata file counts as absent.
func (p *Promoter) Current() (domain.Metadata, bool) {
	meta, err := ReadMetadata(p.layout.CurrentMetadataFile())
	if err != nil {
		return domain.Metadata{}, false
	}
	return meta, true
}

// ReadMetadata decodes a metadata file.
func ReadMetadata(path string) (domain.Metadata, error) {
	//nolint:gosec // Path comes from the configured output root
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Metadata{}, zerr.Wrap(err, domain.ErrMetadataReadFailed.Error())
	}
	var meta domain.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.Metadata{}, zerr.With(zerr.Wrap(err, domain.ErrMetadataReadFailed.Error()), "path", path)
	}
	return meta, nil
}

// Clean removes every directory and file the build pipeline writes.
func (p *Promoter) Clean() error {
	for _, path := range []string{
		p.layout.CurrentDir(),
		p.layout.PendingDir(),
		p.layout.DepsDir(),
		p.previousDir(),
		p.layout.CacheFile(),
	} {
		if err := os.RemoveAll(path); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", path)
		}
	}
	return nil
}

func (p *Promoter) previousDir() string {
	return filepath.Join(p.layout.Root, previousDirName)
}

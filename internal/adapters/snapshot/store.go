// Package snapshot persists the collector's module snapshot.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
)

//go:embed schema.json
var schemaJSON []byte

// Store implements ports.SnapshotStore using one JSON file per cache.
type Store struct {
	schema *gojsonschema.Schema
	logger ports.Logger
}

// NewStore creates a Store. Unreadable caches are reported to logger.
func NewStore(logger ports.Logger) (*Store, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrSnapshotInvalid.Error())
	}
	return &Store{schema: schema, logger: logger}, nil
}

// Load returns the snapshot stored at path, or an empty snapshot when the
// file is absent, unreadable or invalid.
func (s *Store) Load(path string) domain.ModuleSnapshot {
	snap, err := s.read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && s.logger != nil {
			s.logger.Warn(fmt.Sprintf("ignoring module cache %s: %v", path, err))
		}
		return domain.EmptySnapshot()
	}
	return snap
}

func (s *Store) read(path string) (domain.ModuleSnapshot, error) {
	//nolint:gosec // Path comes from the configured output root
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ModuleSnapshot{}, zerr.Wrap(err, domain.ErrSnapshotReadFailed.Error())
	}

	if err := s.validate(data); err != nil {
		return domain.ModuleSnapshot{}, err
	}

	var snap domain.ModuleSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.ModuleSnapshot{}, zerr.Wrap(err, domain.ErrSnapshotInvalid.Error())
	}
	return snap, nil
}

func (s *Store) validate(data []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return zerr.Wrap(err, domain.ErrSnapshotInvalid.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return zerr.With(domain.ErrSnapshotInvalid, "details", strings.Join(details, "; "))
}

// Save writes snapshot to path through a temporary file in the same
// directory, so a reader never sees a partially written cache.
func (s *Store) Save(path string, snapshot domain.ModuleSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic replaces path with data using a rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}
	return nil
}

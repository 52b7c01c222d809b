package ports

import "go.trai.ch/dyndll/internal/core/domain"

// SnapshotStore persists the collector's module snapshot between runs.
//
//go:generate mockgen -source=snapshot_store.go -destination=mocks/mock_snapshot_store.go -package=mocks
type SnapshotStore interface {
	// Load reads the snapshot stored at path.
	// A missing, unreadable or invalid file yields an empty snapshot.
	Load(path string) domain.ModuleSnapshot

	// Save writes the snapshot to path atomically.
	Save(path string, snapshot domain.ModuleSnapshot) error
}

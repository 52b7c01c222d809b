package domain

import "path/filepath"

const (
	// RootDirName is the default name of the output root directory.
	RootDirName = ".dyndll"

	// CurrentDirName is the directory readers are served from.
	CurrentDirName = "current"

	// PendingDirName is the staging directory a build writes into.
	PendingDirName = "pending"

	// DepsDirName holds the generated expose stubs and the entry file.
	DepsDirName = "deps"

	// CacheFileName is the persisted collector snapshot.
	CacheFileName = "DLL_DEPS_CACHE.json"

	// MetadataFileName is the success marker written into a build's output.
	MetadataFileName = "_metadata.json"

	// EntryFileName is the aggregator entry that imports every expose stub.
	EntryFileName = "index.js"

	// ManifestFileName describes a bundle request to the bundling engine.
	ManifestFileName = "manifest.json"

	// HistoryFileName is the build history database.
	HistoryFileName = "history.db"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "dyndll.yaml"

	// DefaultName is the default remote container name.
	DefaultName = "_dynamic_dll"

	// DefaultFilename is the default remote entry file name.
	DefaultFilename = "remoteEntry.js"

	// DefaultPublicPath is the default URL prefix the artifact is served under.
	DefaultPublicPath = "/_dynamic_dll/"

	// ExposeFilePrefix prefixes every generated expose stub file name.
	ExposeFilePrefix = "_dynamic-dll-va_"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// Layout resolves the on-disk locations under an output root.
type Layout struct {
	Root string
}

// NewLayout returns a Layout rooted at root, or at RootDirName when root is empty.
func NewLayout(root string) Layout {
	if root == "" {
		root = RootDirName
	}
	return Layout{Root: root}
}

// CurrentDir returns the published artifact directory.
func (l Layout) CurrentDir() string {
	return filepath.Join(l.Root, CurrentDirName)
}

// PendingDir returns the staging directory.
func (l Layout) PendingDir() string {
	return filepath.Join(l.Root, PendingDirName)
}

// DepsDir returns the directory holding generated stub sources.
func (l Layout) DepsDir() string {
	return filepath.Join(l.Root, DepsDirName)
}

// CacheFile returns the path of the persisted collector snapshot.
func (l Layout) CacheFile() string {
	return filepath.Join(l.Root, CacheFileName)
}

// CurrentMetadataFile returns the metadata path of the published build.
func (l Layout) CurrentMetadataFile() string {
	return filepath.Join(l.CurrentDir(), MetadataFileName)
}

// PendingMetadataFile returns the metadata path inside the staging directory.
func (l Layout) PendingMetadataFile() string {
	return filepath.Join(l.PendingDir(), MetadataFileName)
}

// EntryFile returns the path of the aggregator entry.
func (l Layout) EntryFile() string {
	return filepath.Join(l.DepsDir(), EntryFileName)
}

// ManifestFile returns the path of the bundle manifest.
func (l Layout) ManifestFile() string {
	return filepath.Join(l.DepsDir(), ManifestFileName)
}

// HistoryFile returns the path of the build history database.
func (l Layout) HistoryFile() string {
	return filepath.Join(l.Root, HistoryFileName)
}

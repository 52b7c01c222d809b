package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidModuleReference is returned when a module reference is missing its key or resolved path.
	ErrInvalidModuleReference = zerr.New("invalid module reference")

	// ErrModuleUnresolved is returned when a bare import cannot be resolved to a file.
	ErrModuleUnresolved = zerr.New("module could not be resolved")

	// ErrInvalidPattern is returned when an include or exclude pattern is not a valid regular expression.
	ErrInvalidPattern = zerr.New("invalid module pattern")

	// ErrBuildFailed is returned when a build does not produce a published artifact.
	ErrBuildFailed = zerr.New("build failed")

	// ErrBundlerFailed is returned when the bundling engine exits unsuccessfully.
	ErrBundlerFailed = zerr.New("bundler reported failure")

	// ErrBundlerNotConfigured is returned when no bundler command is configured.
	ErrBundlerNotConfigured = zerr.New("no bundler command configured")

	// ErrBundlerNotFound is returned when the bundler executable cannot be found.
	ErrBundlerNotFound = zerr.New("bundler executable not found")

	// ErrExposeNameCollision is returned when two module keys map to the same stub file.
	ErrExposeNameCollision = zerr.New("module keys share an expose stub file")

	// ErrStubWriteFailed is returned when an expose stub or the entry file cannot be written.
	ErrStubWriteFailed = zerr.New("failed to write expose stub")

	// ErrManifestWriteFailed is returned when the bundle manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write bundle manifest")

	// ErrHashComputationFailed is returned when a build hash cannot be computed.
	ErrHashComputationFailed = zerr.New("failed to compute build hash")

	// ErrSnapshotReadFailed is returned when the snapshot cache file cannot be read.
	ErrSnapshotReadFailed = zerr.New("failed to read snapshot cache")

	// ErrSnapshotInvalid is returned when the snapshot cache file does not match its schema.
	ErrSnapshotInvalid = zerr.New("snapshot cache is invalid")

	// ErrSnapshotWriteFailed is returned when the snapshot cache file cannot be written.
	ErrSnapshotWriteFailed = zerr.New("failed to write snapshot cache")

	// ErrMetadataReadFailed is returned when the published metadata cannot be read.
	ErrMetadataReadFailed = zerr.New("failed to read build metadata")

	// ErrMetadataWriteFailed is returned when the build metadata cannot be written.
	ErrMetadataWriteFailed = zerr.New("failed to write build metadata")

	// ErrStagingFailed is returned when the staging directory cannot be prepared.
	ErrStagingFailed = zerr.New("failed to prepare staging directory")

	// ErrPromoteFailed is returned when the staged build cannot replace the published one.
	ErrPromoteFailed = zerr.New("failed to promote staged build")

	// ErrArtifactNotFound is returned when a requested file does not exist in the published build.
	ErrArtifactNotFound = zerr.New("artifact not found")

	// ErrOutsidePublicPath is returned when a request path does not start with the public path.
	ErrOutsidePublicPath = zerr.New("path is outside the public path")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidDebounce is returned when the configured debounce window is not a positive duration.
	ErrInvalidDebounce = zerr.New("invalid debounce window")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrSourceScanFailed is returned when application sources cannot be enumerated.
	ErrSourceScanFailed = zerr.New("failed to scan sources")

	// ErrSourceParseFailed is returned when a source file cannot be parsed.
	ErrSourceParseFailed = zerr.New("failed to parse source file")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrHistoryOpenFailed is returned when the build history database cannot be opened.
	ErrHistoryOpenFailed = zerr.New("failed to open build history")

	// ErrHistoryWriteFailed is returned when a build record cannot be stored.
	ErrHistoryWriteFailed = zerr.New("failed to record build")

	// ErrHistoryReadFailed is returned when build records cannot be listed.
	ErrHistoryReadFailed = zerr.New("failed to read build history")

	// ErrWatcherFailed is returned when the file watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start file watcher")

	// ErrCleanFailed is returned when the output root cannot be cleaned.
	ErrCleanFailed = zerr.New("failed to clean output")
)

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// DigestLength is the number of hex characters kept from a build digest.
const DigestLength = 8

// Digest returns the truncated hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:DigestLength]
}

// Metadata is the persisted record of a published build.
type Metadata struct {
	// InputHash covers everything that shapes the build request except the module list.
	InputHash string
	// OutputHash identifies the produced artifact and doubles as a cache-busting token.
	OutputHash string
	// Snapshot is the module set the artifact was built from.
	Snapshot ModuleSnapshot
}

type metadataJSON struct {
	Hash      string                `json:"hash"`
	BuildHash string                `json:"buildHash"`
	DLL       map[string]ModuleInfo `json:"dll"`
	Shared    SharedConfig          `json:"shared"`
}

// MarshalJSON encodes the metadata as {hash, buildHash, dll, shared}.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataJSON{
		Hash:      m.InputHash,
		BuildHash: m.OutputHash,
		DLL:       m.Snapshot.Modules(),
		Shared:    m.Snapshot.Shared(),
	})
}

// UnmarshalJSON decodes metadata written by MarshalJSON.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw metadataJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.InputHash = raw.Hash
	m.OutputHash = raw.BuildHash
	m.Snapshot = NewModuleSnapshot(raw.DLL, raw.Shared)
	return nil
}

// BuildRequest pairs a frozen snapshot with the options in effect when it was taken.
type BuildRequest struct {
	Snapshot ModuleSnapshot
	// Force bypasses the input-hash short circuit.
	Force bool
}

// ExposeKind selects the shape of a generated stub.
type ExposeKind int

const (
	// ExposeESM re-exports an ES module including its default export.
	ExposeESM ExposeKind = iota
	// ExposeCommonJS wraps a CommonJS module whose exports object is the default.
	ExposeCommonJS
	// ExposeBuiltin wraps a runtime builtin such as "fs" or "node:path".
	ExposeBuiltin
	// ExposeStyle imports a stylesheet for its side effects.
	ExposeStyle
	// ExposeAsset re-exports a non-script file's default export.
	ExposeAsset
)

// String returns the lowercase kind name.
func (k ExposeKind) String() string {
	switch k {
	case ExposeESM:
		return "esm"
	case ExposeCommonJS:
		return "cjs"
	case ExposeBuiltin:
		return "builtin"
	case ExposeStyle:
		return "style"
	case ExposeAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// Expose is one generated stub addressed by the bundler under a stable name.
type Expose struct {
	// Key is the module key being re-exported.
	Key string
	// Name is the expose name, "./" followed by the key.
	Name string
	// FileName is the stub's base name.
	FileName string
	// Path is the absolute path of the stub on disk.
	Path string
	// Kind is the stub shape.
	Kind ExposeKind
}

// ExposeName returns the expose name of a module key.
func ExposeName(key string) string {
	return "./" + key
}

var exposeReplacer = strings.NewReplacer("/", "_", ":", "_")

// ExposeFileName returns the stub file name of a module key.
func ExposeFileName(key string) string {
	return ExposeFilePrefix + exposeReplacer.Replace(key) + ".js"
}

// BundleRequest is everything the bundling engine needs for one build.
type BundleRequest struct {
	Name       string            `json:"name"`
	Filename   string            `json:"filename"`
	Entry      string            `json:"entry"`
	OutputDir  string            `json:"outputDir"`
	PublicPath string            `json:"publicPath"`
	Exposes    map[string]string `json:"exposes"`
	Shared     SharedConfig      `json:"shared"`
	Config     map[string]any    `json:"config"`

	// ManifestPath is where this request was written for the engine to read.
	ManifestPath string `json:"-"`
}

// BuildStatus is the outcome of a settled build.
type BuildStatus string

const (
	// BuildStatusBuilt means a new artifact was published.
	BuildStatusBuilt BuildStatus = "built"
	// BuildStatusSkipped means the published artifact was already current.
	BuildStatusSkipped BuildStatus = "skipped"
	// BuildStatusFailed means the build failed and the previous artifact is still served.
	BuildStatusFailed BuildStatus = "failed"
)

// BuildRecord is one entry of the build history.
type BuildRecord struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Status     BuildStatus
	InputHash  string
	OutputHash string
	Modules    int
	Forced     bool
	Diagnostic string
}

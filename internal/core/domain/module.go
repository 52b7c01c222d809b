package domain

import (
	"encoding/json"
	"iter"
	"maps"
	"reflect"
	"slices"
)

// ModuleInfo identifies the physical location and version of an external module.
type ModuleInfo struct {
	// ResolvedPath is the file the module key resolved to.
	// Builtin modules resolve to their own key.
	ResolvedPath string `json:"libraryPath"`
	// Version is the package version token, nil when none can be resolved.
	Version *string `json:"version"`
}

// NewModuleInfo creates a ModuleInfo. An empty version is stored as absent.
func NewModuleInfo(resolvedPath, version string) ModuleInfo {
	info := ModuleInfo{ResolvedPath: resolvedPath}
	if version != "" {
		v := version
		info.Version = &v
	}
	return info
}

// VersionString returns the version or an empty string when absent.
func (m ModuleInfo) VersionString() string {
	if m.Version == nil {
		return ""
	}
	return *m.Version
}

// Equal reports whether both the resolved path and the version match.
func (m ModuleInfo) Equal(other ModuleInfo) bool {
	if m.ResolvedPath != other.ResolvedPath {
		return false
	}
	if (m.Version == nil) != (other.Version == nil) {
		return false
	}
	return m.Version == nil || *m.Version == *other.Version
}

// SharedConfig is the opaque build-sharing configuration.
// It is compared by deep equality, never by individual keys.
type SharedConfig map[string]any

// NormalizeShared round-trips a shared config through JSON so that values
// decoded from YAML and from JSON compare equal (e.g. int vs float64).
// A nil or unencodable config normalizes to an empty one.
func NormalizeShared(shared map[string]any) SharedConfig {
	if len(shared) == 0 {
		return SharedConfig{}
	}
	data, err := json.Marshal(shared)
	if err != nil {
		return SharedConfig{}
	}
	var out SharedConfig
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return SharedConfig{}
	}
	return out
}

// Equal reports deep structural equality. Nil and empty configs are equal.
func (s SharedConfig) Equal(other SharedConfig) bool {
	if len(s) == 0 && len(other) == 0 {
		return true
	}
	return reflect.DeepEqual(s, other)
}

// ModuleSnapshot is an immutable, key-ordered mapping of module keys to
// ModuleInfo plus the shared config in effect when it was taken.
type ModuleSnapshot struct {
	modules map[string]ModuleInfo
	shared  SharedConfig
}

// NewModuleSnapshot copies modules and shared into a new snapshot.
func NewModuleSnapshot(modules map[string]ModuleInfo, shared SharedConfig) ModuleSnapshot {
	return ModuleSnapshot{
		modules: maps.Clone(modules),
		shared:  NormalizeShared(shared),
	}
}

// EmptySnapshot returns a snapshot with no modules and an empty shared config.
func EmptySnapshot() ModuleSnapshot {
	return ModuleSnapshot{shared: SharedConfig{}}
}

// Len returns the number of modules in the snapshot.
func (s ModuleSnapshot) Len() int {
	return len(s.modules)
}

// Get returns the info stored for key.
func (s ModuleSnapshot) Get(key string) (ModuleInfo, bool) {
	info, ok := s.modules[key]
	return info, ok
}

// Keys returns the module keys in ascending order.
func (s ModuleSnapshot) Keys() []string {
	return slices.Sorted(maps.Keys(s.modules))
}

// All iterates modules in key order.
func (s ModuleSnapshot) All() iter.Seq2[string, ModuleInfo] {
	return func(yield func(string, ModuleInfo) bool) {
		for _, key := range s.Keys() {
			if !yield(key, s.modules[key]) {
				return
			}
		}
	}
}

// Modules returns a copy of the module mapping.
func (s ModuleSnapshot) Modules() map[string]ModuleInfo {
	out := make(map[string]ModuleInfo, len(s.modules))
	maps.Copy(out, s.modules)
	return out
}

// Shared returns a copy of the shared config.
func (s ModuleSnapshot) Shared() SharedConfig {
	return NormalizeShared(s.shared)
}

// ModulesEqual reports whether both snapshots hold the same keys with equal info.
func (s ModuleSnapshot) ModulesEqual(other ModuleSnapshot) bool {
	return maps.EqualFunc(s.modules, other.modules, ModuleInfo.Equal)
}

// SharedEqual reports whether both snapshots carry deeply equal shared configs.
func (s ModuleSnapshot) SharedEqual(other ModuleSnapshot) bool {
	return s.shared.Equal(other.shared)
}

// Equal reports whether modules and shared config are both equal.
func (s ModuleSnapshot) Equal(other ModuleSnapshot) bool {
	return s.ModulesEqual(other) && s.SharedEqual(other)
}

// snapshotJSON is the persisted shape of a snapshot.
type snapshotJSON struct {
	Modules map[string]ModuleInfo `json:"modules"`
	Shared  SharedConfig          `json:"shared"`
}

// MarshalJSON encodes the snapshot with modules sorted by key.
func (s ModuleSnapshot) MarshalJSON() ([]byte, error) {
	modules := s.modules
	if modules == nil {
		modules = map[string]ModuleInfo{}
	}
	shared := s.shared
	if shared == nil {
		shared = SharedConfig{}
	}
	return json.Marshal(snapshotJSON{Modules: modules, Shared: shared})
}

// UnmarshalJSON decodes a snapshot previously written by MarshalJSON.
func (s *ModuleSnapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewModuleSnapshot(raw.Modules, raw.Shared)
	return nil
}

// ModuleReference is one module resolution event reported by the
// module-graph instrumentation.
type ModuleReference struct {
	// Key is the import identifier as written in source (e.g. "react/jsx-runtime").
	Key string
	// Origin is the file doing the importing.
	Origin string
	// Info is where the key resolved to.
	Info ModuleInfo
}

// Package collector accumulates the external modules referenced by the application.
package collector

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
)

// nodeModulesDir is the directory segment that marks the external-dependency tree.
const nodeModulesDir = "node_modules"

// Options configures a Collector.
type Options struct {
	// Include patterns force collection of matching module keys.
	Include []string
	// Exclude patterns prevent collection of matching module keys unless included.
	Exclude []string
	// Shared is the shared config in effect for this process.
	Shared domain.SharedConfig
	// Name is the remote container name used for request rewrites.
	Name string
	// CacheFile is where snapshots are persisted.
	CacheFile string
	Store     ports.SnapshotStore
	Logger    ports.Logger
}

// Collector owns the in-memory module mapping. It is safe for concurrent use.
type Collector struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
	name    string

	store     ports.SnapshotStore
	logger    ports.Logger
	cacheFile string

	mu       sync.Mutex
	modules  map[string]domain.ModuleInfo
	requests map[string]string
	shared   domain.SharedConfig
	pending  bool

	persistMu sync.Mutex
	seq       uint64
	savedSeq  uint64
	persists  sync.WaitGroup
}

// New creates an empty Collector.
func New(opts Options) (*Collector, error) {
	include, err := compilePatterns(opts.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(opts.Exclude)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = domain.DefaultName
	}

	return &Collector{
		include:   include,
		exclude:   exclude,
		name:      name,
		store:     opts.Store,
		logger:    opts.Logger,
		cacheFile: opts.CacheFile,
		modules:   make(map[string]domain.ModuleInfo),
		requests:  make(map[string]string),
		shared:    domain.NormalizeShared(opts.Shared),
	}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidPattern.Error()), "pattern", p)
		}
		out = append(out, re)
	}
	return out, nil
}

// Restore seeds the mapping from a persisted snapshot.
// Modules that are now excluded are dropped, and a shared config that differs
// from the configured one marks the collector dirty.
func (c *Collector) Restore(snapshot domain.ModuleSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, info := range snapshot.All() {
		if c.excluded(key) {
			c.pending = true
			continue
		}
		c.modules[key] = info
		c.requests[key] = c.remoteRequest(key)
	}

	if !snapshot.Shared().Equal(c.shared) {
		c.pending = true
	}
}

// ShouldCollect reports whether a reference to key from origin, resolved to
// resolvedPath, belongs in the external mapping.
func (c *Collector) ShouldCollect(key, origin, resolvedPath string) bool {
	if strings.HasPrefix(key, ".") {
		return false
	}
	if InNodeModules(origin) {
		return false
	}
	if matchAny(c.include, key) {
		return true
	}
	if matchAny(c.exclude, key) {
		return false
	}
	return InNodeModules(resolvedPath)
}

// Add inserts or updates key. The pending flag is set only when key is new or
// its resolved path or version changed.
func (c *Collector) Add(key string, info domain.ModuleInfo) error {
	if key == "" {
		return zerr.With(domain.ErrInvalidModuleReference, "reason", "empty module key")
	}
	if info.ResolvedPath == "" {
		return zerr.With(domain.ErrInvalidModuleReference, "module", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.modules[key]; ok && existing.Equal(info) {
		return nil
	}
	c.modules[key] = info
	c.requests[key] = c.remoteRequest(key)
	c.pending = true
	return nil
}

// Collect applies ShouldCollect and then Add to one resolution event.
// It reports whether the reference was collected.
func (c *Collector) Collect(ref domain.ModuleReference) (bool, error) {
	if !c.ShouldCollect(ref.Key, ref.Origin, ref.Info.ResolvedPath) {
		return false, nil
	}
	if err := c.Add(ref.Key, ref.Info); err != nil {
		return false, err
	}
	return true, nil
}

// HasPendingChange reports whether the mapping changed since the last snapshot.
func (c *Collector) HasPendingChange() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Len returns the number of collected modules.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.modules)
}

// RemoteRequest returns the remote request that replaces imports of key.
func (c *Collector) RemoteRequest(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.requests[key]
	return req, ok
}

// TakeSnapshot freezes the mapping, clears the pending flag and persists the
// snapshot in the background. Persist failures are logged, never returned.
func (c *Collector) TakeSnapshot() domain.ModuleSnapshot {
	c.mu.Lock()
	snapshot := domain.NewModuleSnapshot(c.modules, c.shared)
	c.pending = false
	c.mu.Unlock()

	if c.store == nil || c.cacheFile == "" {
		return snapshot
	}

	c.persistMu.Lock()
	c.seq++
	seq := c.seq
	c.persistMu.Unlock()

	c.persists.Go(func() {
		c.persist(seq, snapshot)
	})
	return snapshot
}

// persist writes snapshot unless a newer one has already been written.
func (c *Collector) persist(seq uint64, snapshot domain.ModuleSnapshot) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if seq < c.savedSeq {
		return
	}
	if err := c.store.Save(c.cacheFile, snapshot); err != nil {
		if c.logger != nil {
			c.logger.Warn(fmt.Sprintf("could not persist module cache: %v", err))
		}
		return
	}
	c.savedSeq = seq
}

// Flush blocks until every scheduled persist has finished.
func (c *Collector) Flush() {
	c.persists.Wait()
}

func (c *Collector) excluded(key string) bool {
	return !matchAny(c.include, key) && matchAny(c.exclude, key)
}

func (c *Collector) remoteRequest(key string) string {
	return c.name + "/" + key
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	return slices.ContainsFunc(patterns, func(re *regexp.Regexp) bool {
		return re.MatchString(s)
	})
}

// InNodeModules reports whether path has a node_modules segment.
func InNodeModules(path string) bool {
	if path == "" {
		return false
	}
	return slices.Contains(strings.Split(filepath.ToSlash(path), "/"), nodeModulesDir)
}

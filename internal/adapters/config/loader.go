// Package config loads the dyndll.yaml project configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"

	dfs "go.trai.ch/dyndll/internal/adapters/fs"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load reads the configuration for the project containing cwd. Without a
// dyndll.yaml the project root is cwd and defaults apply.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	cfg := domain.DefaultConfig(root)
	configPath := filepath.Join(root, domain.ConfigFileName)
	if !l.exists(configPath) {
		return cfg, nil
	}

	var file Dyndllfile
	if err := l.readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	if err := apply(cfg, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	if len(cfg.Bundler.Command) == 0 && l.Logger != nil {
		l.Logger.Warn(fmt.Sprintf("%s has no bundler.command; builds will fail until one is set", domain.ConfigFileName))
	}
	return cfg, nil
}

// DiscoverRoot walks up from cwd to the nearest directory holding a
// dyndll.yaml. It returns cwd when there is none.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	for dir := abs; ; {
		if l.exists(filepath.Join(dir, domain.ConfigFileName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

func (l *Loader) exists(path string) bool {
	info, err := l.FS.Stat(path)
	return err == nil && !info.IsDir()
}

// readAndUnmarshalYAML reads a YAML file and decodes it into target,
// rejecting unknown keys. An empty file decodes to the zero value.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Dyndllfile) error {
	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

// apply overlays the file onto the defaults and validates the result.
func apply(cfg *domain.Config, file *Dyndllfile) error {
	if file.Root != "" {
		cfg.OutputRoot = resolveRoot(cfg.ProjectRoot, file.Root)
	}
	if file.Name != "" {
		cfg.Name = file.Name
	}
	if file.Filename != "" {
		cfg.Filename = file.Filename
	}
	if file.PublicPath != "" {
		cfg.PublicPath = file.PublicPath
	}
	if len(file.Sources) > 0 {
		cfg.Sources = file.Sources
	}
	if file.Listen != "" {
		cfg.Listen = file.Listen
	}
	cfg.Include = file.Include
	cfg.Exclude = file.Exclude
	cfg.Shared = domain.NormalizeShared(file.Shared)
	cfg.Force = file.Force
	cfg.Bundler = domain.BundlerConfig{
		Command: file.Bundler.Command,
		Env:     file.Bundler.Env,
		Config:  file.Bundler.Config,
	}

	if file.Debounce != "" {
		d, err := time.ParseDuration(file.Debounce)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidDebounce.Error()), "debounce", file.Debounce)
		}
		if d < 0 {
			return zerr.With(domain.ErrInvalidDebounce, "debounce", file.Debounce)
		}
		cfg.Debounce = d
	}

	if err := dfs.ValidatePatterns(cfg.Sources); err != nil {
		return err
	}
	return validateRegexps(append(append([]string(nil), cfg.Include...), cfg.Exclude...))
}

func validateRegexps(patterns []string) error {
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidPattern.Error()), "pattern", p)
		}
	}
	return nil
}

// resolveRoot resolves a configured output root against the project root.
func resolveRoot(projectRoot, configuredRoot string) string {
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(projectRoot, configuredRoot))
}


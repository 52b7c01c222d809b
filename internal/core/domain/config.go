package domain

import (
	"path/filepath"
	"time"
)

const (
	// DefaultDebounce is the quiet window between the last change and a build request.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultListen is the default address of the artifact server.
	DefaultListen = "127.0.0.1:8765"
)

// DefaultSources returns the glob patterns scanned when none are configured.
func DefaultSources() []string {
	return []string{"src/**/*.{js,jsx,ts,tsx,mjs,cjs,mts,cts}"}
}

// BundlerConfig describes how the external bundling engine is invoked.
type BundlerConfig struct {
	// Command is the program and arguments to run.
	Command []string
	// Env holds extra environment variables for the command.
	Env map[string]string
	// Config is the externally supplied build configuration. It feeds the input hash.
	Config map[string]any
}

// Config is the resolved project configuration.
type Config struct {
	// ProjectRoot is the absolute directory holding the configuration file.
	ProjectRoot string
	// OutputRoot is the absolute output root directory.
	OutputRoot string

	Name       string
	Filename   string
	PublicPath string

	// Sources are doublestar globs relative to ProjectRoot.
	Sources []string
	// Include and Exclude are regular expressions over module keys.
	Include []string
	Exclude []string

	Shared   SharedConfig
	Debounce time.Duration
	Listen   string
	Bundler  BundlerConfig

	// Force bypasses the input-hash short circuit for every build.
	Force bool
}

// Layout returns the on-disk layout under the output root.
func (c *Config) Layout() Layout {
	return NewLayout(c.OutputRoot)
}

// DefaultConfig returns the configuration used when no project file exists.
func DefaultConfig(projectRoot string) *Config {
	return &Config{
		ProjectRoot: projectRoot,
		OutputRoot:  filepath.Join(projectRoot, RootDirName),
		Name:        DefaultName,
		Filename:    DefaultFilename,
		PublicPath:  DefaultPublicPath,
		Sources:     DefaultSources(),
		Shared:      SharedConfig{},
		Debounce:    DefaultDebounce,
		Listen:      DefaultListen,
	}
}

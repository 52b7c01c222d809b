package bundler

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
)

// Environment variables describing the bundle request to the engine.
const (
	EnvManifest   = "DYNDLL_MANIFEST"
	EnvEntry      = "DYNDLL_ENTRY"
	EnvOutputDir  = "DYNDLL_OUTPUT_DIR"
	EnvName       = "DYNDLL_NAME"
	EnvFilename   = "DYNDLL_FILENAME"
	EnvPublicPath = "DYNDLL_PUBLIC_PATH"
)

// maxDiagnostic bounds how much engine output is kept for a failure report.
const maxDiagnostic = 16 << 10

// Bundler implements ports.Bundler by running the configured command once
// per build.
type Bundler struct {
	executor *Executor
	config   domain.BundlerConfig
	dir      string
}

// New creates a Bundler that runs config.Command inside projectRoot.
func New(executor *Executor, config domain.BundlerConfig, projectRoot string) *Bundler {
	return &Bundler{
		executor: executor,
		config:   config,
		dir:      projectRoot,
	}
}

// Bundle runs the engine and reports its trailing output on failure.
func (b *Bundler) Bundle(ctx context.Context, req domain.BundleRequest) error {
	if len(b.config.Command) == 0 {
		return domain.ErrBundlerNotConfigured
	}

	env := make(map[string]string, len(b.config.Env)+6)
	for k, v := range b.config.Env {
		env[k] = v
	}
	env[EnvManifest] = req.ManifestPath
	env[EnvEntry] = req.Entry
	env[EnvOutputDir] = req.OutputDir
	env[EnvName] = req.Name
	env[EnvFilename] = req.Filename
	env[EnvPublicPath] = req.PublicPath

	var toolPath string
	if b.dir != "" {
		toolPath = filepath.Join(b.dir, "node_modules", ".bin")
	}

	out := &tailBuffer{limit: maxDiagnostic}
	err := b.executor.Execute(ctx, Command{
		Args:     b.config.Command,
		Env:      env,
		ToolPath: toolPath,
		Dir:      b.dir,
	}, io.MultiWriter(out, ports.OutputFrom(ctx)))
	if err == nil {
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return zerr.With(zerr.Wrap(err, domain.ErrBundlerNotFound.Error()), "command", b.config.Command[0])
	}

	diagnostic := out.String()
	if diagnostic == "" {
		diagnostic = err.Error()
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return zerr.With(zerr.Wrap(zerr.New(diagnostic), domain.ErrBundlerFailed.Error()), "exit_code", exitCode)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
	// cut is set once the head of the output was dropped.
	cut bool
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
		t.cut = true
	}
	return len(p), nil
}

// String returns the captured output with terminal line endings normalized.
func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf := t.buf
	if t.cut {
		// The dropped head may have ended inside a multi-byte character.
		for len(buf) > 0 && !utf8.RuneStart(buf[0]) {
			buf = buf[1:]
		}
	}
	s := strings.ReplaceAll(string(buf), "\r\n", "\n")
	return strings.TrimSpace(s)
}

// Package bundler runs the external bundling engine as a child process.
package bundler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
)

// Command describes one invocation of an external program.
type Command struct {
	// Args is the program followed by its arguments.
	Args []string
	// Env overrides the inherited environment.
	Env map[string]string
	// ToolPath is prepended to PATH, e.g. the project's node_modules/.bin.
	ToolPath string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// Process represents a running command.
type Process interface {
	Wait() error
}

type ptyProcess struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()

	// The copy loop ends once the child closes its side of the terminal.
	<-p.ioDone
	return err
}

type pipeProcess struct {
	cmd  *exec.Cmd
	logs []*logWriter
}

func (p *pipeProcess) Wait() error {
	err := p.cmd.Wait()
	for _, l := range p.logs {
		_ = l.Close()
	}
	return err
}

// Executor starts external programs and streams their output to the logger.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Start launches the command in a PTY so tools keep their colored output,
// falling back to plain pipes where no terminal can be allocated.
// Output is written to out and logged line by line.
func (e *Executor) Start(ctx context.Context, command Command, out io.Writer) (Process, error) {
	if len(command.Args) == 0 {
		return nil, nil
	}

	env := resolveEnvironment(os.Environ(), command.ToolPath, command.Env)

	stdoutLog := &logWriter{logger: e.logger, level: levelInfo}
	proc, err := startPTY(ctx, command, env, io.MultiWriter(stdoutLog, out), stdoutLog)
	if err == nil {
		return proc, nil
	}

	stderrLog := &logWriter{logger: e.logger, level: levelWarn}
	cmd := newCmd(ctx, command, env)
	cmd.Stdout = io.MultiWriter(stdoutLog, out)
	cmd.Stderr = io.MultiWriter(stderrLog, out)
	if err := cmd.Start(); err != nil {
		return nil, zerr.Wrap(err, "failed to start command")
	}
	return &pipeProcess{cmd: cmd, logs: []*logWriter{stdoutLog, stderrLog}}, nil
}

func newCmd(ctx context.Context, command Command, env []string) *exec.Cmd {
	name := command.Args[0]

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, command.Args[1:]...) //nolint:gosec // user provided command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Dir = command.Dir
	cmd.Env = env
	return cmd
}

func startPTY(ctx context.Context, command Command, env []string, out io.Writer, log *logWriter) (Process, error) {
	cmd := newCmd(ctx, command, env)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		defer func() { _ = log.Close() }()

		// The PTY merges stdout and stderr.
		_, _ = io.Copy(out, ptmx)
	}()

	return &ptyProcess{
		cmd:    cmd,
		ioDone: ioDone,
	}, nil
}

// Execute runs the command and waits for it to complete.
func (e *Executor) Execute(ctx context.Context, command Command, out io.Writer) error {
	proc, err := e.Start(ctx, command, out)
	if err != nil {
		return err
	}
	if proc == nil {
		return nil
	}

	if err := proc.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}
	return nil
}

const (
	levelInfo = "info"
	levelWarn = "warn"
)

type logWriter struct {
	logger ports.Logger
	level  string

	mu  sync.Mutex
	buf []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	if w.logger == nil {
		return
	}
	// PTYs may introduce \r.
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}

	if w.level == levelInfo {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}

// allowListedEnvVars are the system environment variables the bundler
// inherits. Everything else must be configured explicitly.
var allowListedEnvVars = map[string]struct{}{
	"HOME":         {},
	"TERM":         {},
	"USER":         {},
	"PATH":         {},
	"TMPDIR":       {},
	"NODE_OPTIONS": {},
}

// resolveEnvironment merges the allow-listed system environment, the tool
// path and the configured overrides, in increasing priority.
func resolveEnvironment(sysEnv []string, toolPath string, overrides map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)

	if toolPath != "" {
		if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
			envMap["PATH"] = toolPath + string(os.PathListSeparator) + sysPath
		} else {
			envMap["PATH"] = toolPath
		}
	}

	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env rather than the current process environment.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

// Package app implements the application layer for dyndll.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/dyndll/internal/adapters/bundler"
	dfs "go.trai.ch/dyndll/internal/adapters/fs"
	"go.trai.ch/dyndll/internal/adapters/history"
	"go.trai.ch/dyndll/internal/adapters/server"
	"go.trai.ch/dyndll/internal/adapters/staging"
	"go.trai.ch/dyndll/internal/adapters/watcher"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/dyndll/internal/ui/output"
	"go.trai.ch/dyndll/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second

	// DefaultHistoryLimit is the number of records listed by History by default.
	DefaultHistoryLimit = 20
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	scanner      ports.SourceScanner
	store        ports.SnapshotStore
	stubs        ports.StubRenderer
	executor     *bundler.Executor
	walker       *dfs.Walker
	resolver     *dfs.Resolver

	openHistory func(path string) (ports.BuildHistory, error)
	newWatcher  func(ignores []string) (ports.Watcher, error)
	listener    net.Listener
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	scanner ports.SourceScanner,
	store ports.SnapshotStore,
	stubs ports.StubRenderer,
	executor *bundler.Executor,
	walker *dfs.Walker,
	resolver *dfs.Resolver,
) *App {
	a := &App{
		configLoader: loader,
		logger:       log,
		scanner:      scanner,
		store:        store,
		stubs:        stubs,
		executor:     executor,
		walker:       walker,
		resolver:     resolver,
	}
	a.openHistory = func(path string) (ports.BuildHistory, error) {
		return history.Open(path)
	}
	a.newWatcher = func(ignores []string) (ports.Watcher, error) {
		return watcher.New(a.walker, ignores, a.logger)
	}
	return a
}

// WithListener makes Serve accept connections on l instead of listening on
// the configured address. This is primarily used for testing.
func (a *App) WithListener(l net.Listener) *App {
	a.listener = l
	return a
}

// WithWatcherFactory replaces the source watcher. This is primarily used for testing.
func (a *App) WithWatcherFactory(fn func(ignores []string) (ports.Watcher, error)) *App {
	a.newWatcher = fn
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	Force bool
}

// Build scans the sources once and builds the artifact.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	s, err := a.open(ctx, opts.Force)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if err := s.discover(ctx, nil); err != nil {
		return err
	}
	return s.scheduler.Request(ctx, s.request())
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	Force bool
	// Listen overrides the configured server address.
	Listen string
}

// Serve keeps the artifact current while serving it over HTTP until ctx is done.
//
//nolint:cyclop // orchestration function
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	s, err := a.open(ctx, opts.Force)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if err := s.discover(ctx, nil); err != nil {
		return err
	}

	ignores := []string{filepath.Base(s.cfg.OutputRoot)}
	w, err := a.newWatcher(ignores)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, s.cfg.ProjectRoot); err != nil {
		_ = w.Stop()
		return err
	}

	listener := a.listener
	if listener == nil {
		addr := opts.Listen
		if addr == "" {
			addr = s.cfg.Listen
		}
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			_ = w.Stop()
			return zerr.With(zerr.Wrap(err, "failed to listen"), "address", addr)
		}
	}

	srv := server.New(server.Options{
		Dir:        s.layout.CurrentDir(),
		PublicPath: s.cfg.PublicPath,
		Gate:       s.scheduler,
		Logger:     a.logger,
	})
	httpServer := &http.Server{
		Handler:           srv.Middleware(http.NotFoundHandler()),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	gate := s.newGate(ctx)
	rescans := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		if err := s.discover(ctx, paths); err != nil && ctx.Err() == nil {
			a.logger.Error(err)
		}
		if s.collector.HasPendingChange() {
			gate.Signal()
		}
	})

	a.logger.Info(fmt.Sprintf("serving %s on http://%s%s", s.cfg.Name, listener.Addr(), server.NormalizePublicPath(s.cfg.PublicPath)))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.scheduler.Request(gctx, s.request()); err != nil {
			a.logger.Error(err)
		}
		return nil
	})

	g.Go(func() error {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.Wrap(err, "artifact server stopped")
		}
		return nil
	})

	g.Go(func() error {
		for event := range w.Events() {
			rescans.Add(event.Path)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		_ = w.Stop()
		rescans.Flush()
		// Builds already started run to completion before the session closes.
		gate.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Clean removes the published artifact, the staging state and the module cache.
func (a *App) Clean(_ context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("removing build output in %s...", cfg.OutputRoot))
	if err := staging.NewPromoter(cfg.Layout()).Clean(); err != nil {
		return err
	}
	a.logger.Info("removed build output")
	return nil
}

// History writes the most recent builds to w, newest first.
func (a *App) History(ctx context.Context, limit int, w io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	if _, err := os.Stat(cfg.Layout().HistoryFile()); errors.Is(err, os.ErrNotExist) {
		_, err = fmt.Fprintln(w, "no builds recorded yet")
		return err
	}

	hist, err := a.openHistory(cfg.Layout().HistoryFile())
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()

	records, err := hist.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err = fmt.Fprintln(w, "no builds recorded yet")
		return err
	}

	out := output.New(w)
	for _, rec := range records {
		if _, err := fmt.Fprintln(w, formatRecord(out, rec)); err != nil {
			return err
		}
	}
	return nil
}

func formatRecord(out *termenv.Output, rec domain.BuildRecord) string {
	var icon string
	var color termenv.Color
	switch rec.Status {
	case domain.BuildStatusBuilt:
		icon, color = style.Check, termenv.RGBColor(string(style.Green))
	case domain.BuildStatusSkipped:
		icon, color = style.Tilde, termenv.RGBColor(string(style.Slate))
	default:
		icon, color = style.Cross, termenv.RGBColor(string(style.Red))
	}

	line := fmt.Sprintf("%s %s  %-7s  %3d modules  %8s",
		icon,
		rec.StartedAt.Local().Format(time.DateTime),
		rec.Status,
		rec.Modules,
		rec.Duration.Round(time.Millisecond),
	)
	if rec.OutputHash != "" {
		line += "  " + rec.OutputHash
	}
	if rec.Forced {
		line += "  (forced)"
	}
	line = output.Paint(out, line, color)
	if rec.Diagnostic != "" {
		line += "\n    " + rec.Diagnostic
	}
	return line
}

func (a *App) loadConfig() (*domain.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}
	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

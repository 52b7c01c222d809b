package app

import (
	"context"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/dyndll/internal/adapters/bundler"
	"go.trai.ch/dyndll/internal/adapters/staging"
	"go.trai.ch/dyndll/internal/adapters/telemetry"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/dyndll/internal/engine/builder"
	"go.trai.ch/dyndll/internal/engine/collector"
	"go.trai.ch/dyndll/internal/engine/debounce"
	"go.trai.ch/dyndll/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// session is the build pipeline of one command invocation.
type session struct {
	app    *App
	cfg    *domain.Config
	layout domain.Layout
	force  bool

	collector *collector.Collector
	scheduler *scheduler.Scheduler
	history   ports.BuildHistory
	provider  *sdktrace.TracerProvider
}

func (a *App) open(_ context.Context, force bool) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	layout := cfg.Layout()

	if err := os.MkdirAll(layout.Root, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStagingFailed.Error()), "path", layout.Root)
	}

	promoter := staging.NewPromoter(layout)
	recovered, err := promoter.Recover()
	if err != nil {
		return nil, err
	}
	if recovered {
		a.logger.Warn("restored the published build after an interrupted promotion")
	}

	col, err := collector.New(collector.Options{
		Include:   cfg.Include,
		Exclude:   cfg.Exclude,
		Shared:    cfg.Shared,
		Name:      cfg.Name,
		CacheFile: layout.CacheFile(),
		Store:     a.store,
		Logger:    a.logger,
	})
	if err != nil {
		return nil, err
	}
	col.Restore(a.store.Load(layout.CacheFile()))

	hist, err := a.openHistory(layout.HistoryFile())
	if err != nil {
		a.logger.Warn("build history is disabled: " + err.Error())
		hist = nil
	}

	provider := telemetry.Setup(a.logger)
	b := builder.New(builder.Options{
		Name:          cfg.Name,
		Filename:      cfg.Filename,
		PublicPath:    cfg.PublicPath,
		Layout:        layout,
		BundlerConfig: cfg.Bundler.Config,
		Force:         cfg.Force,
	},
		col,
		promoter,
		a.stubs,
		bundler.New(a.executor, cfg.Bundler, cfg.ProjectRoot),
		telemetry.NewOTelTracer("dyndll"),
	)

	return &session{
		app:       a,
		cfg:       cfg,
		layout:    layout,
		force:     force || cfg.Force,
		collector: col,
		scheduler: scheduler.New(newRecorder(b, hist, a.logger), a.logger),
		history:   hist,
		provider:  provider,
	}, nil
}

// discover feeds the references of the given source files, or of every
// configured source when files is nil, into the collector.
func (s *session) discover(ctx context.Context, files []string) error {
	var refs []domain.ModuleReference
	var err error
	if files == nil {
		refs, err = s.app.scanner.Walk(ctx, s.cfg.ProjectRoot, s.cfg.Sources)
	} else {
		s.app.scanner.Forget(files)
		sources := make([]string, 0, len(files))
		for _, f := range files {
			if s.app.resolver.Matches(s.cfg.ProjectRoot, s.cfg.Sources, f) {
				sources = append(sources, f)
			}
		}
		if len(sources) == 0 {
			return nil
		}
		refs, err = s.app.scanner.ScanFiles(ctx, s.cfg.ProjectRoot, sources)
	}
	if err != nil {
		return err
	}

	for _, ref := range refs {
		if _, err := s.collector.Collect(ref); err != nil {
			s.app.logger.Error(err)
		}
	}
	return nil
}

// request freezes the collected modules into a build request.
func (s *session) request() domain.BuildRequest {
	return domain.BuildRequest{
		Snapshot: s.collector.TakeSnapshot(),
		Force:    s.force,
	}
}

// newGate returns a gate that requests a build once module discovery goes quiet.
func (s *session) newGate(ctx context.Context) *debounce.Gate {
	return debounce.NewGate(s.cfg.Debounce, func() {
		if err := s.scheduler.Request(ctx, s.request()); err != nil {
			s.app.logger.Error(err)
		}
	})
}

// close waits for pending cache writes and releases the session's resources.
func (s *session) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.collector.Flush()
	_ = s.provider.Shutdown(ctx)
	if s.history != nil {
		_ = s.history.Close()
	}
}

// Package scheduler runs builds one at a time and coalesces requests that
// arrive while a build is in flight.
package scheduler

import (
	"context"
	"sync"

	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
)

// Scheduler is a single-flight build coordinator.
type Scheduler struct {
	builder ports.ArtifactBuilder
	logger  ports.Logger

	mu        sync.Mutex
	building  bool
	pending   *domain.BuildRequest
	callbacks []func()
}

// New creates an idle Scheduler.
func New(builder ports.ArtifactBuilder, logger ports.Logger) *Scheduler {
	return &Scheduler{
		builder: builder,
		logger:  logger,
	}
}

// Request builds req, or queues it when a build is already running.
//
// A queued request replaces any request queued before it and is built by the
// goroutine that owns the running build as soon as that build settles. The
// owning goroutine keeps building until nothing is queued.
//
// Request returns the error of the build of req itself, or nil when req was
// queued. Errors of follow-up builds are logged.
func (s *Scheduler) Request(ctx context.Context, req domain.BuildRequest) error {
	s.mu.Lock()
	if s.building {
		s.pending = &req
		s.mu.Unlock()
		return nil
	}
	s.building = true
	s.mu.Unlock()

	// A started build is never cancelled.
	ctx = context.WithoutCancel(ctx)

	var first error
	for round := 0; ; round++ {
		_, err := s.builder.Build(ctx, req)
		if round == 0 {
			first = err
		} else if err != nil && s.logger != nil {
			s.logger.Error(err)
		}

		next, callbacks := s.settle()
		for _, fn := range callbacks {
			fn()
		}
		if next == nil {
			return first
		}
		req = *next
	}
}

// settle drains the callbacks and takes the queued request in one critical
// section. building stays true when a queued request is taken.
func (s *Scheduler) settle() (*domain.BuildRequest, []func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	callbacks := s.callbacks
	s.callbacks = nil

	next := s.pending
	s.pending = nil
	if next == nil {
		s.building = false
	}
	return next, callbacks
}

// OnBuildComplete calls fn once the running build settles, whether it
// succeeded or failed. When no build is running fn is called immediately.
// Callbacks run in registration order.
func (s *Scheduler) OnBuildComplete(fn func()) {
	s.mu.Lock()
	if s.building {
		s.callbacks = append(s.callbacks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// Wait blocks until the running build settles or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	s.OnBuildComplete(func() { close(done) })

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Building reports whether a build is running.
func (s *Scheduler) Building() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.building
}

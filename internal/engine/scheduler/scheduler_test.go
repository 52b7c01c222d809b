package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports/mocks"
	"go.trai.ch/dyndll/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

// gatedBuilder blocks each build of a module key until its gate is closed.
type gatedBuilder struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	errs  map[string]error
	built []string
}

func newGatedBuilder(keys ...string) *gatedBuilder {
	b := &gatedBuilder{
		gates: make(map[string]chan struct{}),
		errs:  make(map[string]error),
	}
	for _, k := range keys {
		b.gates[k] = make(chan struct{})
	}
	return b
}

func (b *gatedBuilder) Build(_ context.Context, req domain.BuildRequest) (*domain.Metadata, error) {
	key := req.Snapshot.Keys()[0]

	b.mu.Lock()
	b.built = append(b.built, key)
	gate := b.gates[key]
	err := b.errs[key]
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &domain.Metadata{OutputHash: key}, nil
}

func (b *gatedBuilder) release(key string) {
	close(b.gates[key])
}

func (b *gatedBuilder) builds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.built...)
}

func request(key string) domain.BuildRequest {
	return domain.BuildRequest{
		Snapshot: domain.NewModuleSnapshot(map[string]domain.ModuleInfo{
			key: domain.NewModuleInfo("/node_modules/"+key+"/index.js", "1.0.0"),
		}, nil),
	}
}

func TestScheduler_IdleRequestBuildsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	builder := mocks.NewMockArtifactBuilder(ctrl)

	builder.EXPECT().Build(gomock.Any(), gomock.Any()).Return(&domain.Metadata{OutputHash: "abcd1234"}, nil)

	s := scheduler.New(builder, nil)
	require.NoError(t, s.Request(context.Background(), request("react")))
	assert.False(t, s.Building())
}

func TestScheduler_CoalescesToLatest(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := newGatedBuilder("a")
		s := scheduler.New(b, nil)

		errCh := make(chan error, 1)
		go func() { errCh <- s.Request(context.Background(), request("a")) }()
		synctest.Wait()
		require.True(t, s.Building())

		for _, key := range []string{"s1", "s2", "s3", "s4"} {
			require.NoError(t, s.Request(context.Background(), request(key)))
		}

		b.release("a")
		require.NoError(t, <-errCh)

		assert.Equal(t, []string{"a", "s4"}, b.builds())
		assert.False(t, s.Building())
	})
}

func TestScheduler_PendingServicedWithoutNewSignal(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := newGatedBuilder("a", "b")
		s := scheduler.New(b, nil)

		go func() { _ = s.Request(context.Background(), request("a")) }()
		synctest.Wait()
		require.NoError(t, s.Request(context.Background(), request("b")))

		b.release("a")
		synctest.Wait()
		assert.Equal(t, []string{"a", "b"}, b.builds())
		assert.True(t, s.Building(), "follow-up build starts automatically")

		b.release("b")
		synctest.Wait()
		assert.False(t, s.Building())
	})
}

func TestScheduler_CompletionOrdering(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := newGatedBuilder("a", "b")
		s := scheduler.New(b, nil)

		var mu sync.Mutex
		var calls []string
		record := func(name string) func() {
			return func() {
				mu.Lock()
				defer mu.Unlock()
				calls = append(calls, name)
			}
		}
		snapshot := func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), calls...)
		}

		go func() { _ = s.Request(context.Background(), request("a")) }()
		synctest.Wait()

		s.OnBuildComplete(record("first"))
		s.OnBuildComplete(record("second"))
		require.NoError(t, s.Request(context.Background(), request("b")))
		s.OnBuildComplete(record("third"))

		b.release("a")
		synctest.Wait()
		assert.Equal(t, []string{"first", "second", "third"}, snapshot())

		// Registered while the follow-up build runs.
		s.OnBuildComplete(record("fourth"))
		assert.Equal(t, []string{"first", "second", "third"}, snapshot())

		b.release("b")
		synctest.Wait()
		assert.Equal(t, []string{"first", "second", "third", "fourth"}, snapshot())

		// Idle: invoked synchronously.
		s.OnBuildComplete(record("fifth"))
		assert.Equal(t, []string{"first", "second", "third", "fourth", "fifth"}, snapshot())
	})
}

func TestScheduler_FailureStillSettles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)

		b := newGatedBuilder("a")
		b.errs["a"] = errors.New("bundler exploded")
		b.errs["b"] = errors.New("still broken")
		s := scheduler.New(b, logger)

		logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
			assert.EqualError(t, err, "still broken")
		})

		errCh := make(chan error, 1)
		go func() { errCh <- s.Request(context.Background(), request("a")) }()
		synctest.Wait()

		var settled bool
		s.OnBuildComplete(func() { settled = true })
		require.NoError(t, s.Request(context.Background(), request("b")))

		b.release("a")
		err := <-errCh
		require.EqualError(t, err, "bundler exploded")

		assert.True(t, settled)
		assert.Equal(t, []string{"a", "b"}, b.builds())
		assert.False(t, s.Building())
	})
}

func TestScheduler_Wait(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := newGatedBuilder("a")
		s := scheduler.New(b, nil)

		require.NoError(t, s.Wait(context.Background()), "idle scheduler returns immediately")

		go func() { _ = s.Request(context.Background(), request("a")) }()
		synctest.Wait()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, s.Wait(ctx), context.Canceled)

		waitErr := make(chan error, 1)
		go func() { waitErr <- s.Wait(context.Background()) }()
		synctest.Wait()

		b.release("a")
		require.NoError(t, <-waitErr)
	})
}

func TestScheduler_CancelledCallerDoesNotAbortBuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	builder := mocks.NewMockArtifactBuilder(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder.EXPECT().Build(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.BuildRequest) (*domain.Metadata, error) {
			assert.NoError(t, ctx.Err())
			return nil, nil
		})

	s := scheduler.New(builder, nil)
	require.NoError(t, s.Request(ctx, request("react")))
}

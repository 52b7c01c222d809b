package debounce_test

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dyndll/internal/engine/debounce"
)

func TestGate_SingleSignal(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var fired atomic.Int32
		g := debounce.NewGate(500*time.Millisecond, func() { fired.Add(1) })

		state, _ := g.State()
		assert.Equal(t, debounce.Idle, state)

		start := time.Now()
		g.Signal()

		state, deadline := g.State()
		assert.Equal(t, debounce.Armed, state)
		assert.Equal(t, start.Add(500*time.Millisecond), deadline)

		time.Sleep(499 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(0), fired.Load())

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(1), fired.Load())

		state, _ = g.State()
		assert.Equal(t, debounce.Idle, state)
	})
}

func TestGate_BurstCoalescedFromLastSignal(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var fired atomic.Int32
		var firedAt time.Time
		g := debounce.NewGate(500*time.Millisecond, func() {
			fired.Add(1)
			firedAt = time.Now()
		})

		start := time.Now()
		for range 10 {
			g.Signal()
			time.Sleep(100 * time.Millisecond)
		}
		// Last signal at start+900ms.
		time.Sleep(time.Second)
		synctest.Wait()

		require.Equal(t, int32(1), fired.Load())
		assert.Equal(t, start.Add(1400*time.Millisecond), firedAt)
	})
}

func TestGate_SeparateWindowsFireSeparately(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var fired atomic.Int32
		g := debounce.NewGate(100*time.Millisecond, func() { fired.Add(1) })

		g.Signal()
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		g.Signal()
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, int32(2), fired.Load())
	})
}

func TestGate_StopCancelsPendingEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var fired atomic.Int32
		g := debounce.NewGate(500*time.Millisecond, func() { fired.Add(1) })

		g.Signal()
		time.Sleep(200 * time.Millisecond)
		g.Stop()

		state, _ := g.State()
		assert.Equal(t, debounce.Idle, state)

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(0), fired.Load())

		g.Signal()
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(0), fired.Load(), "signals after Stop are ignored")
	})
}

func TestGate_StopWaitsForRunningCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		release := make(chan struct{})
		var finished atomic.Bool
		g := debounce.NewGate(10*time.Millisecond, func() {
			<-release
			finished.Store(true)
		})

		g.Signal()
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()

		var stopped atomic.Bool
		go func() {
			g.Stop()
			stopped.Store(true)
		}()
		synctest.Wait()
		assert.False(t, stopped.Load(), "Stop returned while the build request was running")

		close(release)
		synctest.Wait()
		assert.True(t, finished.Load())
		assert.True(t, stopped.Load())
	})
}

func TestGate_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		g := debounce.NewGate(10*time.Millisecond, nil)
		g.Signal()
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()

		state, _ := g.State()
		assert.Equal(t, debounce.Idle, state)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", debounce.Idle.String())
	assert.Equal(t, "armed", debounce.Armed.String())
}

package job

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() Manager {
	return NewManager(WithWorkers(2), WithQueueSize(16), WithIdleTimeout(50*time.Millisecond))
}

// drainUntil drains m until want completions have been delivered or the deadline passes.
func drainUntil(t *testing.T, m Manager, want int) int {
	t.Helper()
	got := 0
	deadline := time.Now().Add(2 * time.Second)
	for got < want && time.Now().Before(deadline) {
		got += m.Drain()
		time.Sleep(time.Millisecond)
	}
	return got
}

func TestSubmitAndDrain(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	var results []any
	for i := range 4 {
		require.NoError(t, m.Submit("square", func() (any, error) {
			return i * i, nil
		}, func(result any, err error) {
			assert.NoError(t, err)
			results = append(results, result)
		}))
	}

	assert.Equal(t, 4, drainUntil(t, m, 4))
	assert.ElementsMatch(t, []any{0, 1, 4, 9}, results)
	assert.Equal(t, 0, m.Pending())
}

func TestCallbacksRunOnlyInDrain(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	var called atomic.Bool
	require.NoError(t, m.Submit("work", func() (any, error) { return nil, nil }, func(any, error) {
		called.Store(true)
	}))

	// Let the worker finish without draining.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, called.Load())
	assert.Equal(t, 1, m.Pending())

	assert.Equal(t, 1, drainUntil(t, m, 1))
	assert.True(t, called.Load())
}

func TestJobErrorsAndPanics(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	boom := errors.New("boom")
	var errs []error
	collect := func(_ any, err error) { errs = append(errs, err) }

	require.NoError(t, m.Submit("fails", func() (any, error) { return nil, boom }, collect))
	require.NoError(t, m.Submit("panics", func() (any, error) { panic("worker blew up") }, collect))

	assert.Equal(t, 2, drainUntil(t, m, 2))
	require.Len(t, errs, 2)

	var sawBoom, sawPanic bool
	for _, err := range errs {
		if errors.Is(err, boom) {
			sawBoom = true
		} else if err != nil && assert.Contains(t, err.Error(), "worker blew up") {
			sawPanic = true
		}
	}
	assert.True(t, sawBoom)
	assert.True(t, sawPanic)
}

func TestSubmitValidation(t *testing.T) {
	m := newTestManager()

	assert.ErrorIs(t, m.Submit("nil", nil, nil), ErrNilJob)

	m.Close()
	m.Close()
	assert.ErrorIs(t, m.Submit("late", func() (any, error) { return nil, nil }, nil), ErrClosed)
	assert.Equal(t, 0, m.Pending())
}

func TestCloseWaitsForInflight(t *testing.T) {
	m := newTestManager()

	var finished atomic.Bool
	require.NoError(t, m.Submit("slow", func() (any, error) {
		time.Sleep(30 * time.Millisecond)
		finished.Store(true)
		return nil, nil
	}, nil))

	m.Close()
	assert.True(t, finished.Load())
	assert.Equal(t, 0, m.Drain(), "completions are dropped on close")
}

func TestSubmitDoesNotBlockWhenPoolQueueIsFull(t *testing.T) {
	m := NewManager(WithWorkers(1), WithQueueSize(1))
	defer m.Close()

	release := make(chan struct{})
	var results []any
	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for i := range 10 {
			assert.NoError(t, m.Submit("blocked", func() (any, error) {
				<-release
				return i, nil
			}, func(result any, err error) {
				results = append(results, result)
			}))
		}
	}()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		close(release)
		t.Fatal("Submit blocked on a full pool queue")
	}
	assert.Equal(t, 10, m.Pending())

	close(release)
	assert.Equal(t, 10, drainUntil(t, m, 10))
	assert.ElementsMatch(t, []any{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, results)
	assert.Equal(t, 0, m.Pending())
}

func TestCloseWaitsForBacklog(t *testing.T) {
	m := NewManager(WithWorkers(1), WithQueueSize(1))

	var ran atomic.Int32
	for range 5 {
		require.NoError(t, m.Submit("queued", func() (any, error) {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
			return nil, nil
		}, nil))
	}

	m.Close()
	assert.Equal(t, int32(5), ran.Load())
}

func TestCloseStopsPoolWorkers(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 20 {
		m := NewManager(WithWorkers(4), WithQueueSize(2))
		require.NoError(t, m.Submit("work", func() (any, error) { return nil, nil }, nil))
		m.Close()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 10*time.Millisecond, "pool workers outlived Close")
}

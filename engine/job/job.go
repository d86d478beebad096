package job

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// ErrClosed is returned by Submit after the manager has been closed.
var ErrClosed = errors.New("job manager closed")

// ErrNilJob is returned by Submit when no work function is given.
var ErrNilJob = errors.New("job function is nil")

// Func is blocking work run on a pool worker.
type Func func() (any, error)

// DoneFunc receives a job's result on the goroutine that calls Drain.
type DoneFunc func(result any, err error)

// Manager runs blocking jobs off the frame goroutine and hands their results back to it.
// Submit and Pending are safe for concurrent use; Drain must be called from the frame goroutine.
// Submit never blocks: jobs beyond the pool's queue capacity wait in a local backlog
// and are fed to the pool as earlier jobs finish.
type Manager interface {
	// Submit queues fn for the worker pool without blocking. onDone, if non-nil, is invoked by a later Drain.
	//
	// Parameters:
	//   - name: job name used in logs
	//   - fn: the work to run
	//   - onDone: completion callback run on the draining goroutine
	//
	// Returns:
	//   - error: ErrClosed or ErrNilJob
	Submit(name string, fn Func, onDone DoneFunc) error

	// Drain invokes the callbacks of every job completed so far, in completion order.
	//
	// Returns:
	//   - int: the number of completions delivered
	Drain() int

	// Pending returns the number of jobs submitted but not yet drained.
	//
	// Returns:
	//   - int: in-flight plus completed-but-undrained jobs
	Pending() int

	// Close rejects new jobs, blocks until submitted jobs finish and stops the pool workers.
	// Undrained completions are dropped. Safe to call multiple times.
	Close()
}

// completion is a finished job waiting to be drained.
type completion struct {
	name   string
	result any
	err    error
	onDone DoneFunc
}

// queued is a submitted job not yet handed to the pool.
type queued struct {
	id     int
	name   string
	fn     Func
	onDone DoneFunc
}

// manager implements the Manager interface.
type manager struct {
	mu      sync.Mutex
	closed  bool
	nextID  int
	pending int
	done    []completion

	// backlog holds jobs waiting for pool capacity; inPool counts jobs handed to the pool
	// and not yet finished, kept <= queueSize so SubmitTask never blocks.
	backlog []queued
	inPool  int

	inflight  sync.WaitGroup
	closeOnce sync.Once

	pool        worker.DynamicWorkerPool
	workers     int
	queueSize   int
	idleTimeout time.Duration

	logger *zap.Logger
}

var _ Manager = &manager{}

// NewManager creates a job manager backed by a dynamic worker pool.
//
// Parameters:
//   - options: functional options for pool sizing and logging
//
// Returns:
//   - Manager: the new job manager
func NewManager(options ...ManagerBuilderOption) Manager {
	m := &manager{
		workers:     max(runtime.NumCPU()-1, 1),
		queueSize:   64,
		idleTimeout: time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.pool = worker.NewDynamicWorkerPool(m.workers, m.queueSize, m.idleTimeout)
	return m
}

func (m *manager) Submit(name string, fn Func, onDone DoneFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilJob, name)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrClosed, name)
	}
	id := m.nextID
	m.nextID++
	m.pending++
	m.inflight.Add(1)
	m.backlog = append(m.backlog, queued{id: id, name: name, fn: fn, onDone: onDone})
	m.mu.Unlock()

	m.logger.Debug("job submitted", zap.String("job", name), zap.Int("id", id))
	m.dispatch()
	return nil
}

// dispatch moves backlog jobs into the pool while it has queue capacity.
func (m *manager) dispatch() {
	m.mu.Lock()
	n := min(m.queueSize-m.inPool, len(m.backlog))
	if n <= 0 {
		m.mu.Unlock()
		return
	}
	ready := make([]queued, n)
	copy(ready, m.backlog)
	m.backlog = m.backlog[n:]
	m.inPool += n
	m.mu.Unlock()

	for _, q := range ready {
		m.pool.SubmitTask(worker.Task{
			ID: q.id,
			Do: func() (any, error) {
				return m.execute(q)
			},
		})
	}
}

// execute runs one job on a pool worker, records its completion and refills the pool.
func (m *manager) execute(q queued) (any, error) {
	defer m.inflight.Done()
	result, err := m.run(q.name, q.fn)

	m.mu.Lock()
	m.done = append(m.done, completion{name: q.name, result: result, err: err, onDone: q.onDone})
	m.inPool--
	m.mu.Unlock()

	m.dispatch()
	return result, err
}

// run executes fn, converting a panic into an error so the worker survives.
func (m *manager) run(name string, fn Func) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %q panicked: %v", name, r)
		}
	}()
	return fn()
}

func (m *manager) Drain() int {
	m.dispatch()

	m.mu.Lock()
	ready := m.done
	m.done = nil
	m.pending -= len(ready)
	m.mu.Unlock()

	for _, c := range ready {
		if c.err != nil {
			m.logger.Warn("job failed", zap.String("job", c.name), zap.Error(c.err))
		}
		if c.onDone != nil {
			c.onDone(c.result, c.err)
		}
	}
	return len(ready)
}

func (m *manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		m.inflight.Wait()
		m.stopWorkers()

		m.mu.Lock()
		dropped := len(m.done)
		m.done = nil
		m.pending = 0
		m.mu.Unlock()

		m.logger.Debug("job manager closed", zap.Int("dropped", dropped))
	})
}

// stopWorkers ends every pool worker goroutine. The pool's Stop signals workers by id over a
// shared channel that any worker may receive from, so each worker is also handed one task that
// exits its goroutine. Must only run once no jobs are in the pool.
func (m *manager) stopWorkers() {
	for i := range m.workers {
		m.pool.SubmitTask(worker.Task{
			ID: -1 - i,
			Do: func() (any, error) {
				runtime.Goexit()
				return nil, nil
			},
		})
	}
	m.pool.Stop()
}

package task

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-host/engine/clock"
	"go.uber.org/zap"
)

// Stepper runs every scheduled task once, synchronously, to completion.
// The frame pump consults one Stepper per simulation tick and one per render frame.
type Stepper interface {
	// Step runs each ready task once in order.
	//
	// Returns:
	//   - error: the first task failure, which aborts the remainder of the step
	Step() error
}

// Manager owns an ordered set of tasks and steps them on demand.
// A Manager is not safe for concurrent use; it is confined to the goroutine driving the host.
type Manager interface {
	Stepper

	// Name returns the manager's name, used in logs and errors.
	//
	// Returns:
	//   - string: the manager name
	Name() string

	// Add registers a task. Tasks added while the manager is stepping first run on the next step.
	//
	// Parameters:
	//   - name: unique task name
	//   - fn: the task body
	//   - options: sort and delay options
	//
	// Returns:
	//   - *Task: the registered task
	//   - error: ErrNilTask, ErrDuplicateTask or ErrNoClock
	Add(name string, fn TaskFunc, options ...TaskOption) (*Task, error)

	// Remove unregisters a task by name. A task removed mid-step does not run later in that step.
	//
	// Parameters:
	//   - name: the task name
	//
	// Returns:
	//   - bool: true if a task was removed
	Remove(name string) bool

	// RemoveAll unregisters every task.
	RemoveAll()

	// Has reports whether a task with the given name is registered.
	//
	// Parameters:
	//   - name: the task name
	//
	// Returns:
	//   - bool: true if registered
	Has(name string) bool

	// Len returns the number of registered tasks.
	//
	// Returns:
	//   - int: the task count
	Len() int

	// Names returns the registered task names in execution order.
	//
	// Returns:
	//   - []string: a copy of the ordered names
	Names() []string
}

// manager implements the Manager interface.
type manager struct {
	name   string
	tasks  []*Task
	byName map[string]*Task

	stepping bool
	run      []*Task // reused per Step to snapshot the task list

	clk    clock.Reader
	logger *zap.Logger
}

var _ Manager = &manager{}

// NewManager creates an empty task manager.
//
// Parameters:
//   - name: the manager name, e.g. "sim" or "frame"
//   - options: functional options for clock and logger
//
// Returns:
//   - Manager: the new manager
func NewManager(name string, options ...ManagerBuilderOption) Manager {
	m := &manager{
		name:   name,
		byName: make(map[string]*Task),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("task_manager", name))
	return m
}

func (m *manager) Name() string {
	return m.name
}

func (m *manager) Add(name string, fn TaskFunc, options ...TaskOption) (*Task, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrNilTask, name)
	}
	if _, ok := m.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateTask, name, m.name)
	}

	t := &Task{name: name, fn: fn, clk: m.clk}
	for _, opt := range options {
		opt(t)
	}
	if t.delay > 0 {
		if m.clk == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoClock, name)
		}
		t.addedAt = m.clk.FrameTime()
	}

	// Insert after every task with sort <= t.sort to keep registration order among equals.
	i := sort.Search(len(m.tasks), func(i int) bool {
		return m.tasks[i].sort > t.sort
	})
	m.tasks = append(m.tasks, nil)
	copy(m.tasks[i+1:], m.tasks[i:])
	m.tasks[i] = t
	m.byName[name] = t

	m.logger.Debug("task added", zap.String("task", name), zap.Int("sort", t.sort), zap.Float64("delay", t.delay))
	return t, nil
}

func (m *manager) Remove(name string) bool {
	t, ok := m.byName[name]
	if !ok {
		return false
	}
	m.detach(t)
	m.logger.Debug("task removed", zap.String("task", name))
	return true
}

func (m *manager) RemoveAll() {
	for _, t := range m.tasks {
		t.removed = true
	}
	m.tasks = nil
	m.byName = make(map[string]*Task)
}

func (m *manager) Has(name string) bool {
	_, ok := m.byName[name]
	return ok
}

func (m *manager) Len() int {
	return len(m.tasks)
}

func (m *manager) Names() []string {
	names := make([]string, len(m.tasks))
	for i, t := range m.tasks {
		names[i] = t.name
	}
	return names
}

func (m *manager) Step() error {
	if m.stepping {
		return fmt.Errorf("%w: %s", ErrReentrantStep, m.name)
	}
	m.stepping = true
	defer func() { m.stepping = false }()

	m.run = append(m.run[:0], m.tasks...)
	defer clear(m.run)

	for _, t := range m.run {
		if t.removed || !t.ready() {
			continue
		}

		status, err := m.invoke(t)
		if err != nil {
			m.logger.Error("task failed", zap.String("task", t.name), zap.Error(err))
			return err
		}
		if status == StatusDone && !t.removed {
			m.detach(t)
			m.logger.Debug("task done", zap.String("task", t.name), zap.Uint64("count", t.count))
		}
	}
	return nil
}

// invoke runs a single task, converting a panic into ErrTaskPanic.
func (m *manager) invoke(t *Task) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = StatusDone
			err = fmt.Errorf("%w: task %q in %s: %v", ErrTaskPanic, t.name, m.name, r)
		}
	}()

	if !t.started {
		t.started = true
		if t.clk != nil {
			t.startTime = t.clk.FrameTime()
		}
	}
	t.count++

	status, err = t.fn(t)
	if err != nil {
		return status, fmt.Errorf("%w: task %q in %s: %w", ErrTaskFailed, t.name, m.name, err)
	}
	return status, nil
}

// detach removes t from the ordered list and the name index.
func (m *manager) detach(t *Task) {
	t.removed = true
	delete(m.byName, t.name)
	for i, cur := range m.tasks {
		if cur == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

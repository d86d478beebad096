package task

import "github.com/Carmen-Shannon/oxy-host/engine/clock"

// Status is returned by a TaskFunc to tell its manager whether to keep it scheduled.
type Status int

const (
	// StatusCont keeps the task scheduled for the next step.
	StatusCont Status = iota

	// StatusDone removes the task after the current invocation.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusCont:
		return "cont"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// TaskFunc is the body of a task. It runs synchronously on the goroutine stepping the manager.
type TaskFunc func(t *Task) (Status, error)

// Task is a unit of work registered with a Manager.
type Task struct {
	name string
	sort int
	fn   TaskFunc

	delay   float64
	addedAt float64

	started   bool
	startTime float64
	count     uint64
	removed   bool

	clk clock.Reader
}

// Name returns the task's unique name within its manager.
func (t *Task) Name() string {
	return t.name
}

// Sort returns the task's sort value. Lower values run first.
func (t *Task) Sort() int {
	return t.sort
}

// Count returns how many times the task has been invoked, including the current invocation.
func (t *Task) Count() uint64 {
	return t.count
}

// Time returns the clock time in seconds elapsed since the task's first invocation.
// Always 0 when the owning manager has no clock.
func (t *Task) Time() float64 {
	if t.clk == nil || !t.started {
		return 0
	}
	return t.clk.FrameTime() - t.startTime
}

// Clock returns the clock the task was scheduled against, or nil.
func (t *Task) Clock() clock.Reader {
	return t.clk
}

// ready reports whether the task's delay has elapsed.
func (t *Task) ready() bool {
	if t.delay <= 0 || t.clk == nil {
		return true
	}
	return t.clk.FrameTime() >= t.addedAt+t.delay
}

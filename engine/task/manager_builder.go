package task

import (
	"github.com/Carmen-Shannon/oxy-host/engine/clock"
	"go.uber.org/zap"
)

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(*manager)

// WithManagerClock sets the clock tasks read for delays and elapsed time.
//
// Parameters:
//   - c: the clock reader shared with the host
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithManagerClock(c clock.Reader) ManagerBuilderOption {
	return func(m *manager) {
		m.clk = c
	}
}

// WithManagerLogger sets the logger used for task lifecycle and failures.
//
// Parameters:
//   - logger: the zap logger (nil keeps the no-op default)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithManagerLogger(logger *zap.Logger) ManagerBuilderOption {
	return func(m *manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// TaskOption configures a task when it is added.
type TaskOption func(*Task)

// WithSort sets the task's sort value. Tasks run in ascending sort order,
// and in registration order among equal sorts.
func WithSort(sort int) TaskOption {
	return func(t *Task) {
		t.sort = sort
	}
}

// WithDelay defers the task's first invocation until the manager clock has
// advanced by at least seconds from the moment it was added.
func WithDelay(seconds float64) TaskOption {
	return func(t *Task) {
		t.delay = seconds
	}
}

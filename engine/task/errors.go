package task

import "errors"

var (
	// ErrNilTask is returned when adding a task without a function.
	ErrNilTask = errors.New("task function is nil")

	// ErrDuplicateTask is returned when adding a task whose name is already registered.
	ErrDuplicateTask = errors.New("task already registered")

	// ErrNoClock is returned when a delayed task is added to a manager without a clock.
	ErrNoClock = errors.New("delayed task requires a manager clock")

	// ErrTaskFailed wraps an error returned by a task.
	ErrTaskFailed = errors.New("task failed")

	// ErrTaskPanic wraps a panic recovered from a task.
	ErrTaskPanic = errors.New("task panicked")

	// ErrReentrantStep is returned when Step is called from inside a task of the same manager.
	ErrReentrantStep = errors.New("manager is already stepping")
)

package job

import (
	"time"

	"go.uber.org/zap"
)

// ManagerBuilderOption is a functional option for configuring a job Manager.
type ManagerBuilderOption func(*manager)

// WithWorkers sets the maximum number of pool workers. Values < 1 are ignored.
//
// Parameters:
//   - n: worker count (default NumCPU-1, at least 1)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithWorkers(n int) ManagerBuilderOption {
	return func(m *manager) {
		if n >= 1 {
			m.workers = n
		}
	}
}

// WithQueueSize sets how many jobs may sit in the pool at once; the rest wait in the backlog.
// Values < 1 are ignored.
//
// Parameters:
//   - n: queue capacity (default 64)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithQueueSize(n int) ManagerBuilderOption {
	return func(m *manager) {
		if n >= 1 {
			m.queueSize = n
		}
	}
}

// WithIdleTimeout sets the idle timeout handed to the worker pool.
//
// Parameters:
//   - d: idle timeout (default 1s)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) ManagerBuilderOption {
	return func(m *manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// WithLogger sets the logger for job lifecycle events.
//
// Parameters:
//   - logger: the zap logger (nil keeps the no-op default)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) ManagerBuilderOption {
	return func(m *manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

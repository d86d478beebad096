package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-host/engine/clock"
	"github.com/Carmen-Shannon/oxy-host/engine/job"
	"github.com/Carmen-Shannon/oxy-host/engine/task"
	"github.com/Carmen-Shannon/oxy-host/engine/window"
	"go.uber.org/zap"
)

// HostBuilderOption is a functional option for configuring a Host.
// Use the With* functions to create options that are applied directly to the host instance.
type HostBuilderOption func(*host)

// WithTickRate sets the simulation tick rate in ticks per second.
// Non-positive values make NewHost fail with ErrConfig.
//
// Parameters:
//   - rate: target ticks per second (default 60)
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithTickRate(rate float64) HostBuilderOption {
	return func(h *host) {
		h.tickRate = rate
	}
}

// WithTimeSource sets the wall clock the host reads each frame.
// Ignored when WithClock is also given.
//
// Parameters:
//   - source: the wall clock source
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithTimeSource(source clock.TimeSource) HostBuilderOption {
	return func(h *host) {
		h.source = source
	}
}

// WithClock sets the clock publish surface, for sharing one clock between hosts and tools.
// NewHost re-bases the clock's real time to 0.
//
// Parameters:
//   - c: the clock
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithClock(c clock.Clock) HostBuilderOption {
	return func(h *host) {
		h.clk = c
	}
}

// WithSimTaskManager sets the manager stepped once per simulation tick.
//
// Parameters:
//   - m: the tick-bound task manager
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithSimTaskManager(m task.Manager) HostBuilderOption {
	return func(h *host) {
		h.simTasks = m
	}
}

// WithFrameTaskManager sets the manager stepped once per render frame.
//
// Parameters:
//   - m: the render-bound task manager
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithFrameTaskManager(m task.Manager) HostBuilderOption {
	return func(h *host) {
		h.frameTasks = m
	}
}

// WithJobManager sets the background job manager.
//
// Parameters:
//   - m: the job manager
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithJobManager(m job.Manager) HostBuilderOption {
	return func(h *host) {
		h.jobs = m
	}
}

// WithLogger sets the structured logger shared with the default collaborators.
//
// Parameters:
//   - logger: the zap logger (nil keeps the no-op default)
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) HostBuilderOption {
	return func(h *host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithProfiling(enabled bool) HostBuilderOption {
	return func(h *host) {
		h.profilingEnabled = enabled
	}
}

// WithStepping makes Run execute a single frame and return, for tools that drive frames manually.
//
// Parameters:
//   - stepping: true to run one frame per Run call
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithStepping(stepping bool) HostBuilderOption {
	return func(h *host) {
		h.stepping = stepping
	}
}

// WithFixedSimulationStep routes SimulationTasks to the fixed-step manager instead of the frame manager.
//
// Parameters:
//   - enabled: true to run simulation work at the fixed tick rate
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithFixedSimulationStep(enabled bool) HostBuilderOption {
	return func(h *host) {
		h.fixedSimulationStep = enabled
	}
}

// WithFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithFrameLimit(fps float64) HostBuilderOption {
	return func(h *host) {
		if fps <= 0 {
			h.frameLimit = 0
			return
		}
		h.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window polled at the start of every frame.
// Its platform timer becomes the default time source.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithWindow(w window.Window) HostBuilderOption {
	return func(h *host) {
		h.window = w
	}
}

// WithPreFrameHook sets a function run after the clock advances and before the frame pump.
//
// Parameters:
//   - fn: the hook; a returned error makes the frame fatal
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithPreFrameHook(fn HookFunc) HostBuilderOption {
	return func(h *host) {
		h.preFrame = fn
	}
}

// WithPostFrameHook sets a function run after the render step and before the frame counter advances.
//
// Parameters:
//   - fn: the hook; a returned error makes the frame fatal
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithPostFrameHook(fn HookFunc) HostBuilderOption {
	return func(h *host) {
		h.postFrame = fn
	}
}

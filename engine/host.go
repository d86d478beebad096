package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-host/engine/clock"
	"github.com/Carmen-Shannon/oxy-host/engine/job"
	"github.com/Carmen-Shannon/oxy-host/engine/profiler"
	"github.com/Carmen-Shannon/oxy-host/engine/pump"
	"github.com/Carmen-Shannon/oxy-host/engine/task"
	"github.com/Carmen-Shannon/oxy-host/engine/window"
	"go.uber.org/zap"
)

// JobsTaskName is the frame-bound task that delivers finished job results.
const JobsTaskName = "jobs"

// JobsTaskSort runs job completions before default-sorted frame tasks, so results are visible to them in the same frame.
const JobsTaskSort = -100

// HookFunc runs once per frame around the frame pump.
type HookFunc func(h Host) error

// host implements the Host interface.
// All state is confined to the goroutine calling Run or Step.
type host struct {
	clk    clock.Clock
	source clock.TimeSource
	pump   *pump.FramePump

	simTasks   task.Manager
	frameTasks task.Manager
	jobs       job.Manager

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	logger *zap.Logger

	tickRate            float64
	fixedSimulationStep bool
	stepping            bool
	frameLimit          time.Duration

	frameCount uint64
	frameTime  float64
	deltaTime  float64

	preFrame     HookFunc
	postFrame    HookFunc
	onResetClock []func(delta float64)

	running       bool
	stopRequested atomic.Bool
	destroyed     bool
	destroyOnce   sync.Once
}

// Host is the application base that owns the frame loop.
// It advances its clock once per frame, runs the fixed-step simulation tasks through the frame pump
// and then the per-frame tasks. Collaborators are injected through HostBuilderOptions.
type Host interface {
	// Clock returns the read-only view of the shared clock.
	//
	// Returns:
	//   - clock.Reader: tick time during simulation tasks, frame time otherwise
	Clock() clock.Reader

	// SimTasks returns the task manager stepped once per simulation tick.
	//
	// Returns:
	//   - task.Manager: the tick-bound manager
	SimTasks() task.Manager

	// FrameTasks returns the task manager stepped once per render frame.
	//
	// Returns:
	//   - task.Manager: the render-bound manager
	FrameTasks() task.Manager

	// SimulationTasks returns the manager that built-in simulation work should be added to:
	// SimTasks when fixed simulation step is enabled, FrameTasks otherwise.
	//
	// Returns:
	//   - task.Manager: the manager for simulation work
	SimulationTasks() task.Manager

	// Jobs returns the background job manager.
	//
	// Returns:
	//   - job.Manager: the job manager
	Jobs() job.Manager

	// Window returns the window polled each frame, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window or nil
	Window() window.Window

	// SetTickRate sets the number of simulation ticks per second.
	//
	// Parameters:
	//   - rate: ticks per second, must be positive
	//
	// Returns:
	//   - error: pump.ErrInvalidTickRate if rate is not positive
	SetTickRate(rate float64) error

	// TickRate returns the number of simulation ticks per second.
	TickRate() float64

	// TicksToTime returns the simulation time of a tick number.
	TicksToTime(ticks int64) float64

	// TimeToTicks returns the nearest tick number for a simulation time.
	TimeToTicks(t float64) int64

	// IsFinalTick reports whether the running simulation tick is the last one of this frame.
	IsFinalTick() bool

	// TickCount returns the number of simulation ticks run since the host was created.
	TickCount() uint64

	// FrameCount returns the number of frames completed.
	FrameCount() uint64

	// Alpha returns the interpolation factor between the last two simulation states.
	Alpha() float64

	// PumpState returns a snapshot of the frame pump's accumulator and counters.
	PumpState() pump.State

	// OnResetClock registers a callback invoked by Run when it re-bases the clock.
	//
	// Parameters:
	//   - callback: receives the time delta that was skipped, in seconds
	OnResetClock(callback func(delta float64))

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Step runs exactly one frame.
	//
	// Parameters:
	//   - ctx: a cancelled context stops before the frame starts
	//
	// Returns:
	//   - FrameResult: Continue, Stop, or Fatal with the error that ended the frame
	Step(ctx context.Context) FrameResult

	// Run re-bases the clock and runs frames until the host is stopped, the window closes,
	// ctx is cancelled or a frame fails. In stepping mode it runs a single frame.
	//
	// Parameters:
	//   - ctx: cancelling ctx stops the loop after the current frame
	//
	// Returns:
	//   - error: nil on a clean stop, the fatal frame error otherwise
	Run(ctx context.Context) error

	// Running reports whether Run is executing.
	Running() bool

	// Stop asks the loop to exit once the current frame completes. Safe to call from tasks.
	// The request is consumed by the next frame that returns FrameStop.
	Stop()

	// Destroy stops the host, removes all tasks, closes the job manager and the window.
	// Safe to call multiple times; subsequent calls are no-ops.
	//
	// Returns:
	//   - error: error from closing the window
	Destroy() error
}

var _ Host = &host{}

// NewHost creates a new Host with the provided options.
// Missing collaborators get defaults: a monotonic (or window) time source, "sim" and "frame"
// task managers bound to the host clock, a job manager and a no-op logger.
// The clock is re-based so that its real time reads 0 at creation, matching simulation time.
//
// Parameters:
//   - options: functional options for host configuration
//
// Returns:
//   - Host: the newly created host
//   - error: an ErrConfig error if the configuration is invalid
func NewHost(options ...HostBuilderOption) (Host, error) {
	h := &host{
		tickRate: pump.DefaultTickRate,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(h)
	}

	if h.clk == nil {
		if h.source == nil {
			if h.window != nil {
				h.source = h.window.TimeSource()
			} else {
				h.source = clock.NewMonotonicSource()
			}
		}
		h.clk = clock.NewClock(h.source)
	}
	if h.simTasks == nil {
		h.simTasks = task.NewManager("sim", task.WithManagerClock(h.clk), task.WithManagerLogger(h.logger))
	}
	if h.frameTasks == nil {
		h.frameTasks = task.NewManager("frame", task.WithManagerClock(h.clk), task.WithManagerLogger(h.logger))
	}
	if h.jobs == nil {
		h.jobs = job.NewManager(job.WithLogger(h.logger))
	}
	h.profiler = profiler.NewProfiler(profiler.WithLogger(h.logger))

	p, err := pump.NewFramePump(pump.Config{TicksPerSec: h.tickRate}, h.simTasks, h.frameTasks, h.clk)
	if err != nil {
		return nil, wrapConfig(err)
	}
	h.pump = p

	if _, err := h.frameTasks.Add(JobsTaskName, h.drainJobs, task.WithSort(JobsTaskSort)); err != nil {
		return nil, wrapConfig(err)
	}

	// Real time and simulation time share one origin: the moment the host is created.
	h.clk.SetRealTime(0)
	h.frameTime = 0
	h.clk.Publish(clock.Snapshot{})

	h.logger.Debug("host created",
		zap.Float64("tick_rate", h.tickRate),
		zap.Bool("fixed_simulation_step", h.fixedSimulationStep),
		zap.Bool("stepping", h.stepping),
		zap.Bool("window", h.window != nil))
	return h, nil
}

func (h *host) Clock() clock.Reader {
	return h.clk
}

func (h *host) SimTasks() task.Manager {
	return h.simTasks
}

func (h *host) FrameTasks() task.Manager {
	return h.frameTasks
}

func (h *host) SimulationTasks() task.Manager {
	if h.fixedSimulationStep {
		return h.simTasks
	}
	return h.frameTasks
}

func (h *host) Jobs() job.Manager {
	return h.jobs
}

func (h *host) Window() window.Window {
	return h.window
}

func (h *host) SetTickRate(rate float64) error {
	if err := h.pump.SetTickRate(rate); err != nil {
		return err
	}
	h.tickRate = rate
	h.logger.Info("tick rate changed", zap.Float64("tick_rate", rate), zap.Uint64("tick_count", h.pump.TickCount()))
	return nil
}

func (h *host) TickRate() float64 {
	return h.pump.TickRate()
}

func (h *host) TicksToTime(ticks int64) float64 {
	return h.pump.TicksToTime(ticks)
}

func (h *host) TimeToTicks(t float64) int64 {
	return h.pump.TimeToTicks(t)
}

func (h *host) IsFinalTick() bool {
	return h.pump.IsFinalTick()
}

func (h *host) TickCount() uint64 {
	return h.pump.TickCount()
}

func (h *host) FrameCount() uint64 {
	return h.frameCount
}

func (h *host) Alpha() float64 {
	return h.pump.Alpha()
}

func (h *host) PumpState() pump.State {
	return h.pump.State()
}

func (h *host) OnResetClock(callback func(delta float64)) {
	if callback != nil {
		h.onResetClock = append(h.onResetClock, callback)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (h *host) EnableProfiler() {
	h.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (h *host) DisableProfiler() {
	h.profilingEnabled = false
}

func (h *host) Step(ctx context.Context) FrameResult {
	if h.destroyed {
		return frameStop()
	}
	if ctx.Err() != nil {
		return frameStop()
	}
	if h.window != nil && !h.window.Poll() {
		h.logger.Info("window closed")
		return frameStop()
	}

	// Manually advance the clock.
	now := h.clk.RealTime()
	h.deltaTime = now - h.frameTime
	h.frameTime = now
	h.clk.Publish(clock.Snapshot{FrameTime: h.frameTime, Dt: h.deltaTime, FrameCount: h.frameCount})

	if h.preFrame != nil {
		if err := h.preFrame(h); err != nil {
			return frameFatal(fmt.Errorf("pre-frame hook: %w", err))
		}
	}

	if err := h.pump.RunFrame(h.deltaTime, h.frameCount); err != nil {
		return frameFatal(err)
	}
	// The next delta is measured from simulation time, which keeps it locked to real time.
	h.frameTime = h.clk.FrameTime()

	if h.postFrame != nil {
		if err := h.postFrame(h); err != nil {
			return frameFatal(fmt.Errorf("post-frame hook: %w", err))
		}
	}

	h.frameCount++

	if h.profilingEnabled {
		h.profiler.Tick(h.pump.TotalTicksThisFrame())
	}

	if h.stopRequested.Swap(false) {
		return frameStop()
	}
	return frameContinue()
}

func (h *host) Run(ctx context.Context) error {
	if h.destroyed {
		return ErrDestroyed
	}
	if h.running {
		return ErrAlreadyRunning
	}
	h.running = true
	h.stopRequested.Store(false)
	defer func() { h.running = false }()

	h.resetClock()

	if h.stepping {
		return h.Step(ctx).Err
	}

	h.logger.Info("host running", zap.Float64("tick_rate", h.pump.TickRate()))
	for {
		frameStart := time.Now()

		result := h.Step(ctx)
		switch result.Status {
		case FrameStop:
			h.logger.Info("host stopped",
				zap.Uint64("frame_count", h.frameCount),
				zap.Uint64("tick_count", h.pump.TickCount()))
			return nil
		case FrameFatal:
			h.logger.Error("frame failed", zap.Uint64("frame_count", h.frameCount), zap.Error(result.Err))
			return result.Err
		}

		if h.frameLimit > 0 {
			if remaining := h.frameLimit - time.Since(frameStart); remaining > 0 {
				if !sleepContext(ctx, remaining) {
					return nil
				}
			}
		}
	}
}

func (h *host) Running() bool {
	return h.running
}

func (h *host) Stop() {
	h.stopRequested.Store(true)
}

func (h *host) Destroy() error {
	var err error
	h.destroyOnce.Do(func() {
		h.Stop()
		h.simTasks.RemoveAll()
		h.frameTasks.RemoveAll()
		h.jobs.Close()
		if h.window != nil {
			err = h.window.Close()
		}
		h.destroyed = true
		h.logger.Debug("host destroyed")
	})
	return err
}

// resetClock re-bases real time to the published frame time so that time spent before Run,
// or paused between Runs, is not fed to the frame pump as one enormous delta.
func (h *host) resetClock() {
	t := h.clk.FrameTime()
	h.frameTime = t
	delta := t - h.clk.RealTime()
	h.clk.SetRealTime(t)
	for _, cb := range h.onResetClock {
		cb(delta)
	}
}

// drainJobs is the frame-bound task delivering finished job results.
func (h *host) drainJobs(*task.Task) (task.Status, error) {
	h.jobs.Drain()
	return task.StatusCont, nil
}

// sleepContext waits for d or until ctx is done. Returns false if ctx ended the wait.
func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

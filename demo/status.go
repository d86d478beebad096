package demo

import (
	"math"

	"github.com/Carmen-Shannon/oxy-host/engine"
	"github.com/Carmen-Shannon/oxy-host/engine/input"
	"github.com/Carmen-Shannon/oxy-host/engine/renderer"
	"github.com/Carmen-Shannon/oxy-host/engine/task"
	"go.uber.org/zap"
)

// ColorSetter receives the colour derived from the interpolated oscillator position.
// renderer.Presenter satisfies it.
type ColorSetter interface {
	SetClearColor(c renderer.Color)
}

// StatusTask returns a frame-bound task that maps the interpolated position to a clear colour
// and logs the host counters every interval seconds of frame time.
//
// Parameters:
//   - h: the host to report on
//   - o: the oscillator to render
//   - out: the colour consumer, nil when running headless
//   - logger: the logger for status lines
//   - interval: seconds of frame time between status lines (non-positive means 1)
//
// Returns:
//   - task.TaskFunc: the task body
func StatusTask(h engine.Host, o *Oscillator, out ColorSetter, logger *zap.Logger, interval float64) task.TaskFunc {
	if interval <= 0 {
		interval = 1
	}
	next := interval
	fixed := FixedStep(h)
	return func(*task.Task) (task.Status, error) {
		alpha := 1.0
		if fixed {
			alpha = h.Alpha()
		}
		pos := o.Interpolated(alpha)
		if out != nil {
			out.SetClearColor(PositionColor(pos))
		}

		if now := h.Clock().FrameTime(); now >= next {
			committed, commits := o.Committed()
			logger.Info("status",
				zap.Uint64("frame", h.FrameCount()),
				zap.Uint64("ticks", h.TickCount()),
				zap.Float64("tick_rate", h.TickRate()),
				zap.Float64("alpha", alpha),
				zap.Float64("position", pos),
				zap.Float64("committed_position", committed.Pos),
				zap.Uint64("commits", commits),
				zap.Float64("energy", o.Energy()))
			for next <= now {
				next += interval
			}
		}
		return task.StatusCont, nil
	}
}

// PositionColor maps a position in [-1, 1] onto a blue to red gradient.
func PositionColor(pos float64) renderer.Color {
	v := math.Max(-1, math.Min(1, pos))
	f := (v + 1) / 2
	return renderer.Color{R: f, G: 0.1, B: 1 - f, A: 1}
}

// KeyHandler returns a key-down callback: digit keys set the tick rate to 10 times the digit
// (0 means 100), R resets the oscillator, P toggles the profiler and Escape stops the host.
//
// Parameters:
//   - h: the host to control
//   - o: the oscillator to reset
//   - logger: logs rejected tick rates
//
// Returns:
//   - func(uint32): the callback for window.SetKeyDownCallback
func KeyHandler(h engine.Host, o *Oscillator, logger *zap.Logger) func(keyCode uint32) {
	profiling := false
	return func(keyCode uint32) {
		if d, ok := input.Digit(keyCode); ok {
			rate := float64(d * 10)
			if d == 0 {
				rate = 100
			}
			if err := h.SetTickRate(rate); err != nil {
				logger.Warn("tick rate rejected", zap.Float64("tick_rate", rate), zap.Error(err))
			}
			return
		}
		switch keyCode {
		case input.KeyR:
			o.Reset()
		case input.KeyP:
			profiling = !profiling
			if profiling {
				h.EnableProfiler()
			} else {
				h.DisableProfiler()
			}
		case input.KeyEsc:
			h.Stop()
		}
	}
}

// Package pump converts a free-running wall clock into a deterministic sequence of
// fixed-size simulation ticks followed by one variable-size render step per frame.
//
// Each call to RunFrame adds the frame's real delta to an accumulator, runs as many whole
// ticks as the accumulator holds on the tick-bound Stepper, then runs the render-bound
// Stepper once. The unconsumed remainder carries into the next frame.
package pump

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-host/engine/clock"
	"github.com/Carmen-Shannon/oxy-host/engine/task"
)

// DefaultTickRate is the simulation rate in ticks per second used when none is configured.
const DefaultTickRate = 60.0

// State is a value snapshot of the pump's accumulator and counters.
type State struct {
	TicksPerSec     float64
	IntervalPerTick float64

	Remainder     float64
	PrevRemainder float64

	TickCount             uint64
	TotalTicksThisFrame   int
	CurrentTicksThisFrame int
	CurrentFrameTick      int
}

// FramePump runs the tick phase and render phase of each frame.
// It is not safe for concurrent use; all calls must come from the goroutine driving the frames.
type FramePump struct {
	ticksPerSec     float64
	intervalPerTick float64

	remainder     float64
	prevRemainder float64

	tickCount             uint64
	totalTicksThisFrame   int
	currentTicksThisFrame int
	currentFrameTick      int

	sim   task.Stepper
	frame task.Stepper
	clk   clock.Clock
}

// NewFramePump creates a pump stepping sim once per tick and frame once per frame,
// publishing tick and frame times on clk.
//
// Parameters:
//   - cfg: the tick rate configuration, validated here
//   - sim: the tick-bound scheduler
//   - frame: the render-bound scheduler
//   - clk: the clock publish surface
//
// Returns:
//   - *FramePump: the new pump with zeroed counters
//   - error: ErrInvalidTickRate or ErrMissingCollaborator
func NewFramePump(cfg Config, sim, frame task.Stepper, clk clock.Clock) (*FramePump, error) {
	if sim == nil || frame == nil || clk == nil {
		return nil, ErrMissingCollaborator
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &FramePump{
		sim:   sim,
		frame: frame,
		clk:   clk,
	}
	p.setRate(cfg.TicksPerSec)
	return p, nil
}

// SetTickRate changes the number of simulation ticks per second.
// Ticks already counted are kept; only subsequent ticks use the new interval.
func (p *FramePump) SetTickRate(rate float64) error {
	if err := validateRate(rate); err != nil {
		return err
	}
	p.setRate(rate)
	return nil
}

func (p *FramePump) setRate(rate float64) {
	p.ticksPerSec = rate
	p.intervalPerTick = 1.0 / rate
}

// TickRate returns the configured ticks per second.
func (p *FramePump) TickRate() float64 {
	return p.ticksPerSec
}

// IntervalPerTick returns the duration of one tick in seconds.
func (p *FramePump) IntervalPerTick() float64 {
	return p.intervalPerTick
}

// TicksToTime returns the simulation time of a tick number.
func (p *FramePump) TicksToTime(ticks int64) float64 {
	return p.intervalPerTick * float64(ticks)
}

// TimeToTicks returns the tick number nearest to a simulation time, rounding half up.
func (p *FramePump) TimeToTicks(t float64) int64 {
	return int64(math.Floor(0.5 + t/p.intervalPerTick))
}

// IsFinalTick reports whether the tick currently running is the last one of this frame.
// It is false for a frame that runs no ticks.
func (p *FramePump) IsFinalTick() bool {
	return p.currentTicksThisFrame == p.totalTicksThisFrame
}

// RunFrame advances the accumulator by deltaTime, runs the resulting ticks and then the
// render step. frameCount is the render frame number published during the render step.
// A scheduler error ends the frame immediately and is returned wrapped in ErrTickStep or ErrRenderStep.
func (p *FramePump) RunFrame(deltaTime float64, frameCount uint64) error {
	p.prevRemainder = max(p.remainder, 0)

	p.remainder += deltaTime

	numTicks := 0
	if p.remainder >= p.intervalPerTick {
		numTicks = int(math.Floor(p.remainder / p.intervalPerTick))
		// The quotient can round up to the next integer; keep the remainder non-negative.
		if float64(numTicks)*p.intervalPerTick > p.remainder {
			numTicks--
		}
		p.remainder -= float64(numTicks) * p.intervalPerTick
	}

	p.totalTicksThisFrame = numTicks
	p.currentFrameTick = 0
	p.currentTicksThisFrame = 1

	for range numTicks {
		p.clk.Publish(clock.Snapshot{
			FrameTime:  p.intervalPerTick * float64(p.tickCount),
			Dt:         p.intervalPerTick,
			FrameCount: p.tickCount,
		})

		if err := p.sim.Step(); err != nil {
			return fmt.Errorf("%w %d (frame tick %d of %d): %w",
				ErrTickStep, p.tickCount, p.currentFrameTick, numTicks, err)
		}

		p.tickCount++
		p.currentFrameTick++
		p.currentTicksThisFrame++
	}

	p.clk.Publish(clock.Snapshot{
		FrameTime:  float64(p.tickCount)*p.intervalPerTick + p.remainder,
		Dt:         deltaTime,
		FrameCount: frameCount,
	})

	if err := p.frame.Step(); err != nil {
		return fmt.Errorf("%w %d: %w", ErrRenderStep, frameCount, err)
	}
	return nil
}

// Alpha returns how far the accumulator has progressed toward the next tick, in [0, 1].
// Render code uses it to interpolate between the previous and current simulation states.
func (p *FramePump) Alpha() float64 {
	a := p.remainder / p.intervalPerTick
	return min(max(a, 0), 1)
}

// TickCount returns the total number of ticks run. It never decreases.
func (p *FramePump) TickCount() uint64 {
	return p.tickCount
}

// Remainder returns the unconsumed simulation time in seconds.
func (p *FramePump) Remainder() float64 {
	return p.remainder
}

// PrevRemainder returns the previous frame's remainder, clamped to be non-negative.
func (p *FramePump) PrevRemainder() float64 {
	return p.prevRemainder
}

// TotalTicksThisFrame returns the number of ticks scheduled for the current frame.
func (p *FramePump) TotalTicksThisFrame() int {
	return p.totalTicksThisFrame
}

// CurrentTicksThisFrame returns the 1-based number of the tick currently running.
func (p *FramePump) CurrentTicksThisFrame() int {
	return p.currentTicksThisFrame
}

// CurrentFrameTick returns the 0-based index of the tick currently running within the frame.
func (p *FramePump) CurrentFrameTick() int {
	return p.currentFrameTick
}

// State returns a snapshot of the accumulator and counters.
func (p *FramePump) State() State {
	return State{
		TicksPerSec:           p.ticksPerSec,
		IntervalPerTick:       p.intervalPerTick,
		Remainder:             p.remainder,
		PrevRemainder:         p.prevRemainder,
		TickCount:             p.tickCount,
		TotalTicksThisFrame:   p.totalTicksThisFrame,
		CurrentTicksThisFrame: p.currentTicksThisFrame,
		CurrentFrameTick:      p.currentFrameTick,
	}
}

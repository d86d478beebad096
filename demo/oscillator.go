// Package demo contains the workload the oxy-host binary runs: a damped spring integrated
// at the fixed tick rate and rendered with interpolation every frame.
package demo

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-host/engine"
	"github.com/Carmen-Shannon/oxy-host/engine/task"
)

// State is the position and velocity of the oscillator.
type State struct {
	Pos float64
	Vel float64
}

// Oscillator integrates a damped spring with semi-implicit Euler, one step per simulation tick.
type Oscillator struct {
	mu sync.Mutex

	stiffness float64
	damping   float64
	initial   State

	prev      State
	cur       State
	committed State
	commits   uint64
}

// NewOscillator creates an oscillator released from rest at pos.
//
// Parameters:
//   - pos: the initial displacement
//   - stiffness: spring constant per unit mass
//   - damping: velocity damping per unit mass
//
// Returns:
//   - *Oscillator: the oscillator
func NewOscillator(pos, stiffness, damping float64) *Oscillator {
	s := State{Pos: pos}
	return &Oscillator{
		stiffness: stiffness,
		damping:   damping,
		initial:   s,
		prev:      s,
		cur:       s,
		committed: s,
	}
}

// Integrate advances the oscillator by dt seconds.
func (o *Oscillator) Integrate(dt float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prev = o.cur
	acc := -o.stiffness*o.cur.Pos - o.damping*o.cur.Vel
	o.cur.Vel += acc * dt
	o.cur.Pos += o.cur.Vel * dt
}

// Commit publishes the current state to frame-side readers.
func (o *Oscillator) Commit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.committed = o.cur
	o.commits++
}

// Reset returns the oscillator to its initial state.
func (o *Oscillator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prev, o.cur, o.committed = o.initial, o.initial, o.initial
}

// Current returns the state after the most recent tick.
func (o *Oscillator) Current() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cur
}

// Committed returns the state published by the last Commit and the number of commits so far.
func (o *Oscillator) Committed() (State, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.committed, o.commits
}

// Interpolated blends the previous and current tick states.
//
// Parameters:
//   - alpha: 0 for the previous tick, 1 for the current one
//
// Returns:
//   - float64: the interpolated position
func (o *Oscillator) Interpolated(alpha float64) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.prev.Pos + (o.cur.Pos-o.prev.Pos)*alpha
}

// Energy returns the mechanical energy per unit mass of the current state.
func (o *Oscillator) Energy() float64 {
	s := o.Current()
	return 0.5*s.Vel*s.Vel + 0.5*o.stiffness*s.Pos*s.Pos
}

// Task returns the task that integrates the oscillator with the published Dt.
// Added to h.SimulationTasks it runs per tick and commits on the last tick of each frame
// when the host uses a fixed simulation step, or per frame and commits every frame otherwise.
//
// Parameters:
//   - h: the host whose clock and tick counters drive the integration
//
// Returns:
//   - task.TaskFunc: the task body
func (o *Oscillator) Task(h engine.Host) task.TaskFunc {
	fixed := FixedStep(h)
	return func(*task.Task) (task.Status, error) {
		dt := h.Clock().Dt()
		if dt <= 0 || math.IsNaN(dt) {
			return task.StatusCont, nil
		}
		o.Integrate(dt)
		if !fixed || h.IsFinalTick() {
			o.Commit()
		}
		return task.StatusCont, nil
	}
}

// FixedStep reports whether simulation work on h runs at the fixed tick rate.
func FixedStep(h engine.Host) bool {
	return h.SimulationTasks() == h.SimTasks()
}

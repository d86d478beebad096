package demo

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-host/engine"
	"github.com/Carmen-Shannon/oxy-host/engine/clock"
	"github.com/Carmen-Shannon/oxy-host/engine/input"
	"github.com/Carmen-Shannon/oxy-host/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newHost(t *testing.T, rate float64, fixed bool) (engine.Host, *clock.MockSource) {
	t.Helper()
	src := clock.NewMockSource(0)
	h, err := engine.NewHost(engine.WithTickRate(rate), engine.WithTimeSource(src), engine.WithFixedSimulationStep(fixed))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Destroy() })
	return h, src
}

type colorRecorder struct {
	colors []renderer.Color
}

func (c *colorRecorder) SetClearColor(col renderer.Color) {
	c.colors = append(c.colors, col)
}

func TestOscillatorIntegrate(t *testing.T) {
	o := NewOscillator(1, 1, 0)
	o.Integrate(0.1)

	s := o.Current()
	assert.InDelta(t, -0.1, s.Vel, 1e-12)
	assert.InDelta(t, 0.99, s.Pos, 1e-12)
	assert.InDelta(t, 1.0, o.Interpolated(0), 1e-12)
	assert.InDelta(t, 0.99, o.Interpolated(1), 1e-12)
	assert.InDelta(t, 0.995, o.Interpolated(0.5), 1e-12)

	committed, commits := o.Committed()
	assert.Equal(t, State{Pos: 1}, committed)
	assert.Equal(t, uint64(0), commits)

	o.Reset()
	assert.Equal(t, State{Pos: 1}, o.Current())
}

func TestOscillatorEnergyDecaysWithDamping(t *testing.T) {
	o := NewOscillator(1, 4, 0.5)
	start := o.Energy()
	for i := 0; i < 600; i++ {
		o.Integrate(1.0 / 60)
	}
	assert.Less(t, o.Energy(), start)
}

func TestOscillatorTaskCommitsOnFinalTick(t *testing.T) {
	h, src := newHost(t, 4, true)
	require.True(t, FixedStep(h))
	o := NewOscillator(1, 1, 0)
	_, err := h.SimulationTasks().Add("oscillator", o.Task(h))
	require.NoError(t, err)

	src.Set(0.75)
	require.Equal(t, engine.FrameContinue, h.Step(context.Background()).Status)

	committed, commits := o.Committed()
	assert.Equal(t, uint64(1), commits, "three ticks commit once")
	assert.Equal(t, o.Current(), committed)

	// A frame shorter than the tick interval runs no ticks and commits nothing.
	src.Set(0.8)
	require.Equal(t, engine.FrameContinue, h.Step(context.Background()).Status)
	_, commits = o.Committed()
	assert.Equal(t, uint64(1), commits)
}

func TestOscillatorTaskVariableStep(t *testing.T) {
	h, src := newHost(t, 4, false)
	require.False(t, FixedStep(h))
	o := NewOscillator(1, 1, 0)
	_, err := h.SimulationTasks().Add("oscillator", o.Task(h))
	require.NoError(t, err)

	// The first frame has a zero delta and does not integrate.
	h.Step(context.Background())
	src.Set(0.1)
	h.Step(context.Background())

	committed, commits := o.Committed()
	assert.Equal(t, uint64(1), commits)
	assert.InDelta(t, 0.99, committed.Pos, 1e-12)
}

func TestStatusTask(t *testing.T) {
	h, src := newHost(t, 4, true)
	o := NewOscillator(1, 1, 0)
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &colorRecorder{}

	_, err := h.SimTasks().Add("oscillator", o.Task(h))
	require.NoError(t, err)
	_, err = h.FrameTasks().Add("status", StatusTask(h, o, rec, zap.New(core), 0.5))
	require.NoError(t, err)

	src.Set(0.75)
	h.Step(context.Background())
	src.Set(0.8)
	h.Step(context.Background())

	assert.Len(t, rec.colors, 2)
	entries := logs.FilterMessage("status").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(3), entries[0].ContextMap()["ticks"])
}

func TestPositionColor(t *testing.T) {
	assert.Equal(t, renderer.Color{R: 0, G: 0.1, B: 1, A: 1}, PositionColor(-5))
	assert.Equal(t, renderer.Color{R: 1, G: 0.1, B: 0, A: 1}, PositionColor(2))
	assert.Equal(t, renderer.Color{R: 0.5, G: 0.1, B: 0.5, A: 1}, PositionColor(0))
}

func TestKeyHandler(t *testing.T) {
	h, _ := newHost(t, 60, true)
	o := NewOscillator(1, 1, 0)
	keys := KeyHandler(h, o, zap.NewNop())

	keys(input.Key0 + 3)
	assert.Equal(t, 30.0, h.TickRate())
	keys(input.Key0)
	assert.Equal(t, 100.0, h.TickRate())

	o.Integrate(0.1)
	keys(input.KeyR)
	assert.Equal(t, State{Pos: 1}, o.Current())

	keys(input.KeyP)
	keys(input.KeyP)

	keys(input.KeyEsc)
	assert.Equal(t, engine.FrameStop, h.Step(context.Background()).Status)
}

package pump

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-host/engine/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepFunc adapts a function to task.Stepper.
type stepFunc func() error

func (f stepFunc) Step() error { return f() }

// harness wires a pump to recording schedulers.
type harness struct {
	pump *FramePump
	clk  clock.Clock

	simSnaps   []clock.Snapshot
	finalTicks []bool
	frameSnaps []clock.Snapshot
	frameFinal []bool

	simErr func(tick uint64) error
}

func newHarness(t *testing.T, rate float64) *harness {
	t.Helper()
	h := &harness{clk: clock.NewClock(clock.NewMockSource(0))}

	sim := stepFunc(func() error {
		h.simSnaps = append(h.simSnaps, h.clk.Snapshot())
		h.finalTicks = append(h.finalTicks, h.pump.IsFinalTick())
		if h.simErr != nil {
			return h.simErr(h.pump.TickCount())
		}
		return nil
	})
	frame := stepFunc(func() error {
		h.frameSnaps = append(h.frameSnaps, h.clk.Snapshot())
		h.frameFinal = append(h.frameFinal, h.pump.IsFinalTick())
		return nil
	})

	p, err := NewFramePump(Config{TicksPerSec: rate}, sim, frame, h.clk)
	require.NoError(t, err)
	h.pump = p
	return h
}

func TestNewFramePumpValidation(t *testing.T) {
	c := clock.NewClock(nil)
	ok := stepFunc(func() error { return nil })

	for _, rate := range []float64{0, -1} {
		_, err := NewFramePump(Config{TicksPerSec: rate}, ok, ok, c)
		assert.ErrorIs(t, err, ErrInvalidTickRate, "rate %v", rate)
	}

	_, err := NewFramePump(DefaultConfig(), nil, ok, c)
	assert.ErrorIs(t, err, ErrMissingCollaborator)
	_, err = NewFramePump(DefaultConfig(), ok, ok, nil)
	assert.ErrorIs(t, err, ErrMissingCollaborator)

	p, err := NewFramePump(DefaultConfig(), ok, ok, c)
	require.NoError(t, err)
	assert.Equal(t, DefaultTickRate, p.TickRate())
	assert.InDelta(t, 1.0/60, p.IntervalPerTick(), 1e-15)
}

func TestRunFrameThreeTicks(t *testing.T) {
	h := newHarness(t, 10)

	require.NoError(t, h.pump.RunFrame(0.35, 0))

	assert.Equal(t, 3, h.pump.TotalTicksThisFrame())
	assert.Equal(t, uint64(3), h.pump.TickCount())
	assert.InDelta(t, 0.05, h.pump.Remainder(), 1e-9)
	assert.Equal(t, 0.0, h.pump.PrevRemainder())

	require.Len(t, h.simSnaps, 3)
	for i, snap := range h.simSnaps {
		assert.InDelta(t, 0.1*float64(i), snap.FrameTime, 1e-12, "tick %d frame time", i)
		assert.Equal(t, 0.1, snap.Dt)
		assert.Equal(t, uint64(i), snap.FrameCount)
	}

	require.Len(t, h.frameSnaps, 1)
	assert.InDelta(t, 0.35, h.frameSnaps[0].FrameTime, 1e-9)
	assert.Equal(t, 0.35, h.frameSnaps[0].Dt, "render step sees the real delta")
	assert.Equal(t, uint64(0), h.frameSnaps[0].FrameCount)
}

func TestRunFrameZeroDelta(t *testing.T) {
	h := newHarness(t, 60)

	for i := range 100 {
		require.NoError(t, h.pump.RunFrame(0, uint64(i)))
		assert.Equal(t, 0, h.pump.TotalTicksThisFrame())
	}

	assert.Equal(t, uint64(0), h.pump.TickCount())
	assert.Empty(t, h.simSnaps)
	assert.Len(t, h.frameSnaps, 100)
	assert.Equal(t, uint64(99), h.frameSnaps[99].FrameCount)
}

func TestIsFinalTick(t *testing.T) {
	h := newHarness(t, 4)

	require.NoError(t, h.pump.RunFrame(0.75, 0))
	assert.Equal(t, []bool{false, false, true}, h.finalTicks)

	// A frame without ticks never reports a final tick.
	require.NoError(t, h.pump.RunFrame(0.125, 1))
	assert.Equal(t, 0, h.pump.TotalTicksThisFrame())
	assert.False(t, h.pump.IsFinalTick())

	// Outside the tick phase the counter has moved past the total.
	assert.Equal(t, []bool{false, false}, h.frameFinal)
}

func TestFrameCountersDuringTicks(t *testing.T) {
	h := newHarness(t, 4)
	var frameTicks, current []int
	h.pump.sim = stepFunc(func() error {
		frameTicks = append(frameTicks, h.pump.CurrentFrameTick())
		current = append(current, h.pump.CurrentTicksThisFrame())
		return nil
	})

	require.NoError(t, h.pump.RunFrame(0.5, 0))
	assert.Equal(t, []int{0, 1}, frameTicks)
	assert.Equal(t, []int{1, 2}, current)
	assert.Equal(t, 2, h.pump.CurrentFrameTick())
	assert.Equal(t, 3, h.pump.CurrentTicksThisFrame())
}

func TestRemainderInvariantAndTickSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, rate := range []float64{10, 30, 60, 144} {
		h := newHarness(t, rate)
		interval := h.pump.IntervalPerTick()

		var sum uint64
		for i := range 2000 {
			dt := rng.Float64() * 0.1
			require.NoError(t, h.pump.RunFrame(dt, uint64(i)))
			sum += uint64(h.pump.TotalTicksThisFrame())

			r := h.pump.Remainder()
			assert.GreaterOrEqual(t, r, 0.0, "rate %v frame %d", rate, i)
			assert.Less(t, r, interval, "rate %v frame %d", rate, i)
			assert.GreaterOrEqual(t, h.pump.PrevRemainder(), 0.0)
		}
		assert.Equal(t, sum, h.pump.TickCount(), "rate %v", rate)
		assert.Equal(t, sum, uint64(len(h.simSnaps)))
	}
}

func TestTickTimeConversions(t *testing.T) {
	h := newHarness(t, 4)
	p := h.pump

	assert.Equal(t, 0.0, p.TicksToTime(0))
	assert.Equal(t, 2.5, p.TicksToTime(10))
	assert.Equal(t, -0.25, p.TicksToTime(-1))

	tests := []struct {
		time  float64
		ticks int64
	}{
		{0, 0},
		{0.1, 0},
		{0.125, 1},
		{0.25, 1},
		{0.3, 1},
		{0.375, 2},
		{-0.125, 0},
		{-0.2, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ticks, p.TimeToTicks(tt.time), "time %v", tt.time)
	}
}

func TestTickTimeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, rate := range []float64{1, 20, 60, 128} {
		h := newHarness(t, rate)
		half := h.pump.IntervalPerTick() / 2
		for range 1000 {
			tm := rng.Float64() * 1000
			got := h.pump.TicksToTime(h.pump.TimeToTicks(tm))
			assert.InDelta(t, tm, got, half+1e-9, "rate %v time %v", rate, tm)
		}
	}
}

func TestSetTickRateMidRun(t *testing.T) {
	h := newHarness(t, 4)

	require.NoError(t, h.pump.RunFrame(0.625, 0))
	assert.Equal(t, uint64(2), h.pump.TickCount())
	assert.Equal(t, 0.125, h.pump.Remainder())

	require.NoError(t, h.pump.SetTickRate(8))
	assert.Equal(t, uint64(2), h.pump.TickCount(), "existing ticks are kept")
	assert.Equal(t, 0.125, h.pump.IntervalPerTick())

	require.NoError(t, h.pump.RunFrame(0.25, 1))
	assert.Equal(t, 3, h.pump.TotalTicksThisFrame())
	assert.Equal(t, uint64(5), h.pump.TickCount())
	assert.Equal(t, 0.0, h.pump.Remainder())
	assert.Equal(t, 0.125, h.simSnaps[len(h.simSnaps)-1].Dt)
}

func TestSetTickRateRejectsInvalid(t *testing.T) {
	h := newHarness(t, 30)

	for _, rate := range []float64{0, -60} {
		err := h.pump.SetTickRate(rate)
		assert.ErrorIs(t, err, ErrInvalidTickRate)
	}
	assert.Equal(t, 30.0, h.pump.TickRate(), "a rejected rate leaves the pump unchanged")
}

func TestNegativeDelta(t *testing.T) {
	h := newHarness(t, 4)

	require.NoError(t, h.pump.RunFrame(0.375, 0))
	assert.Equal(t, 0.125, h.pump.Remainder())

	require.NoError(t, h.pump.RunFrame(-0.5, 1))
	assert.Equal(t, 0, h.pump.TotalTicksThisFrame())
	assert.Equal(t, -0.375, h.pump.Remainder())
	assert.Equal(t, 0.125, h.pump.PrevRemainder())
	assert.Equal(t, uint64(1), h.pump.TickCount())

	require.NoError(t, h.pump.RunFrame(0.5, 2))
	assert.Equal(t, 0.0, h.pump.PrevRemainder(), "negative remainders are clamped when saved")
	assert.Equal(t, 0, h.pump.TotalTicksThisFrame())
	assert.Equal(t, 0.125, h.pump.Remainder())
}

func TestSchedulerErrors(t *testing.T) {
	boom := errors.New("boom")

	h := newHarness(t, 4)
	h.simErr = func(tick uint64) error {
		if tick == 1 {
			return boom
		}
		return nil
	}
	err := h.pump.RunFrame(0.75, 0)
	assert.ErrorIs(t, err, ErrTickStep)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), h.pump.TickCount())
	assert.Empty(t, h.frameSnaps, "render step does not run after a failed tick")

	h2 := newHarness(t, 4)
	h2.pump.frame = stepFunc(func() error { return boom })
	err = h2.pump.RunFrame(0.25, 3)
	assert.ErrorIs(t, err, ErrRenderStep)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), h2.pump.TickCount())
}

func TestAlphaAndState(t *testing.T) {
	h := newHarness(t, 4)

	require.NoError(t, h.pump.RunFrame(0.375, 0))
	assert.Equal(t, 0.5, h.pump.Alpha())

	require.NoError(t, h.pump.RunFrame(-1, 1))
	assert.Equal(t, 0.0, h.pump.Alpha(), "alpha is clamped")

	assert.Equal(t, State{
		TicksPerSec:           4,
		IntervalPerTick:       0.25,
		Remainder:             -0.875,
		PrevRemainder:         0.125,
		TickCount:             1,
		TotalTicksThisFrame:   0,
		CurrentTicksThisFrame: 1,
		CurrentFrameTick:      0,
	}, h.pump.State())
}

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicSource(t *testing.T) {
	src := NewMonotonicSource()

	t1 := src.RealTime()
	time.Sleep(10 * time.Millisecond)
	t2 := src.RealTime()

	assert.GreaterOrEqual(t, t2-t1, 0.01)
}

func TestMockSource(t *testing.T) {
	src := NewMockSource(5)
	assert.Equal(t, 5.0, src.RealTime())

	src.Advance(0.25)
	src.Advance(0.25)
	assert.InDelta(t, 5.5, src.RealTime(), 1e-12)

	src.Set(1)
	assert.Equal(t, 1.0, src.RealTime(), "Set may move the clock backward")
}

func TestClockPublish(t *testing.T) {
	c := NewClock(NewMockSource(0))
	assert.Equal(t, Snapshot{}, c.Snapshot())

	c.Publish(Snapshot{FrameTime: 1.5, Dt: 0.1, FrameCount: 7})
	assert.Equal(t, 1.5, c.FrameTime())
	assert.Equal(t, 0.1, c.Dt())
	assert.Equal(t, uint64(7), c.FrameCount())
	assert.Equal(t, Snapshot{FrameTime: 1.5, Dt: 0.1, FrameCount: 7}, c.Snapshot())
}

func TestClockSetRealTime(t *testing.T) {
	src := NewMockSource(100)
	c := NewClock(src)
	assert.Equal(t, 100.0, c.RealTime())

	c.SetRealTime(3)
	assert.InDelta(t, 3.0, c.RealTime(), 1e-12)

	src.Advance(2)
	assert.InDelta(t, 5.0, c.RealTime(), 1e-12, "offset persists as the source advances")
}

func TestClockNilSource(t *testing.T) {
	c := NewClock(nil)
	assert.GreaterOrEqual(t, c.RealTime(), 0.0)
}

package clock

// Snapshot is the value published on the clock for one simulation tick or render frame.
type Snapshot struct {
	// FrameTime is the time in seconds at the start of the tick or frame.
	FrameTime float64

	// Dt is the duration in seconds covered by the tick or frame.
	Dt float64

	// FrameCount is the tick number during a simulation tick and the render frame
	// number during a render frame.
	FrameCount uint64
}

// Reader is the read-only view of the clock handed to tasks and other consumers.
// Values are only meaningful while the consumer is being invoked by the host.
type Reader interface {
	// FrameTime returns the published frame time in seconds.
	//
	// Returns:
	//   - float64: the frame time of the current tick or render frame
	FrameTime() float64

	// Dt returns the published delta time in seconds.
	//
	// Returns:
	//   - float64: the fixed tick interval during a tick, the real frame delta otherwise
	Dt() float64

	// FrameCount returns the published frame counter.
	//
	// Returns:
	//   - uint64: the tick count during a tick, the render frame count otherwise
	FrameCount() uint64

	// Snapshot returns all published values at once.
	//
	// Returns:
	//   - Snapshot: the currently published values
	Snapshot() Snapshot

	// RealTime returns the current wall clock time in seconds.
	//
	// Returns:
	//   - float64: monotonic real time, offset by any SetRealTime calls
	RealTime() float64
}

// Clock is the single publish surface shared by the host and its consumers.
// Only the host and frame pump call Publish; everything else should hold a Reader.
type Clock interface {
	Reader

	// Publish replaces the published frame time, delta and frame count.
	//
	// Parameters:
	//   - s: the values to publish
	Publish(s Snapshot)

	// SetRealTime re-bases the wall clock so that RealTime returns t from now on.
	// Used when resuming after a long pause so the next frame delta stays small.
	//
	// Parameters:
	//   - t: the real time in seconds to report
	SetRealTime(t float64)
}

// frameClock implements Clock on top of a TimeSource.
type frameClock struct {
	source TimeSource
	offset float64
	snap   Snapshot
}

var _ Clock = &frameClock{}

// NewClock creates a Clock reading wall time from the given source.
// A nil source falls back to a monotonic source started now.
//
// Parameters:
//   - source: the wall clock source
//
// Returns:
//   - Clock: the new clock with a zero snapshot
func NewClock(source TimeSource) Clock {
	if source == nil {
		source = NewMonotonicSource()
	}
	return &frameClock{source: source}
}

func (c *frameClock) FrameTime() float64 {
	return c.snap.FrameTime
}

func (c *frameClock) Dt() float64 {
	return c.snap.Dt
}

func (c *frameClock) FrameCount() uint64 {
	return c.snap.FrameCount
}

func (c *frameClock) Snapshot() Snapshot {
	return c.snap
}

func (c *frameClock) RealTime() float64 {
	return c.source.RealTime() + c.offset
}

func (c *frameClock) Publish(s Snapshot) {
	c.snap = s
}

func (c *frameClock) SetRealTime(t float64) {
	c.offset = t - c.source.RealTime()
}

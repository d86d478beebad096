package clock

import (
	"sync"
	"time"
)

// TimeSource provides monotonic wall clock time in seconds.
type TimeSource interface {
	// RealTime returns seconds elapsed since an arbitrary fixed origin.
	RealTime() float64
}

// MonotonicSource reads the Go runtime's monotonic clock.
type MonotonicSource struct {
	start time.Time
}

// NewMonotonicSource creates a source whose origin is the moment of the call.
func NewMonotonicSource() *MonotonicSource {
	return &MonotonicSource{start: time.Now()}
}

// RealTime returns seconds elapsed since the source was created.
func (s *MonotonicSource) RealTime() float64 {
	return time.Since(s.start).Seconds()
}

// MockSource is a manually driven TimeSource for tests and replays.
type MockSource struct {
	mu  sync.RWMutex
	now float64
}

// NewMockSource creates a mock source reading start.
func NewMockSource(start float64) *MockSource {
	return &MockSource{now: start}
}

// RealTime returns the current mocked time.
func (m *MockSource) RealTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set sets the current mocked time. Setting an earlier time simulates a clock going backward.
func (m *MockSource) Set(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the mocked time forward by d seconds.
func (m *MockSource) Advance(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Stats is one reporting interval's worth of measurements.
type Stats struct {
	FPS        float64
	TicksPerS  float64
	HeapMB     float64
	AllocRateM float64
	GCCount    uint32
	LastPause  time.Duration
	MaxPause   time.Duration
	SysMB      float64
}

// Profiler tracks render frame rate, simulation tick rate and memory statistics.
// Logs a summary once per update interval.
type Profiler struct {
	frameCount     int
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	now    func() time.Time
	logger *zap.Logger
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options for interval, logger and time source
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         zap.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per render frame with the number of simulation ticks that frame ran.
// Logs statistics when the update interval has elapsed.
//
// Parameters:
//   - ticks: simulation ticks run during the frame
//
// Returns:
//   - bool: true if stats were logged this call
func (p *Profiler) Tick(ticks int) bool {
	p.frameCount++
	p.tickCount += ticks
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)

	s := Stats{
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		TicksPerS: float64(p.tickCount) / elapsed.Seconds(),
		HeapMB:    float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:     float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:   p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateM = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	if gcCount := p.memStats.NumGC; gcCount > 0 {
		s.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > s.MaxPause {
				s.MaxPause = pause
			}
		}
	}

	p.logger.Info("profiler",
		zap.Float64("fps", s.FPS),
		zap.Float64("ticks_per_sec", s.TicksPerS),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb_s", s.AllocRateM),
		zap.Uint32("gc_count", s.GCCount),
		zap.Duration("gc_last_pause", s.LastPause),
		zap.Duration("gc_max_pause", s.MaxPause),
		zap.Float64("sys_mb", s.SysMB))

	p.last = s
	p.frameCount = 0
	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics from the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}

package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-envmat/common"
)

// FrameStats is the work one frame reports to the profiler.
type FrameStats struct {
	Draws           uint64
	Tiles           uint64
	PixelsEvaluated uint64
	PixelsDiscarded uint64
	PixelsWritten   uint64
}

// Profiler aggregates per-frame throughput and memory statistics and logs them
// at a fixed interval.
type Profiler struct {
	logger         common.Logger
	updateInterval time.Duration
	now            func() time.Time

	frameCount  int
	window      FrameStats
	lastTime    time.Time
	memStats    runtime.MemStats
	lastGCCount uint32
}

// ProfilerOption configures a Profiler in NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are logged. Non-positive values are ignored.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger stats are written to.
func WithLogger(l common.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = common.LoggerOrNop(l)
	}
}

func withClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a Profiler logging once per second to a "[Profiler]" logger.
//
// Parameters:
//   - opts: a variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         common.NewDefaultLogger("Profiler", false),
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one finished frame. When the interval has elapsed it logs frame
// rate, pixel throughput, discard ratio and heap usage, then starts a new window.
//
// Parameters:
//   - stats: the work done by the frame
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(stats FrameStats) bool {
	p.frameCount++
	p.window.Draws += stats.Draws
	p.window.Tiles += stats.Tiles
	p.window.PixelsEvaluated += stats.PixelsEvaluated
	p.window.PixelsDiscarded += stats.PixelsDiscarded
	p.window.PixelsWritten += stats.PixelsWritten

	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	secs := elapsed.Seconds()
	runtime.ReadMemStats(&p.memStats)
	var discardPct float64
	if p.window.PixelsEvaluated > 0 {
		discardPct = 100 * float64(p.window.PixelsDiscarded) / float64(p.window.PixelsEvaluated)
	}

	p.logger.Infof("FPS: %.2f | Draws: %d | Tiles: %d | Eval: %.2f Mpx/s | Discard: %.1f%% | Written: %d | Heap: %.2f MB | GC: %d",
		float64(p.frameCount)/secs,
		p.window.Draws,
		p.window.Tiles,
		float64(p.window.PixelsEvaluated)/secs/1e6,
		discardPct,
		p.window.PixelsWritten,
		float64(p.memStats.Alloc)/1024/1024,
		p.memStats.NumGC-p.lastGCCount,
	)

	p.frameCount = 0
	p.window = FrameStats{}
	p.lastTime = current
	p.lastGCCount = p.memStats.NumGC
	return true
}

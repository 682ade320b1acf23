package profiler

import (
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	common.Logger
	lines []string
}

func (r *recordingLogger) Infof(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func TestTickLogsOncePerInterval(t *testing.T) {
	clock := time.Unix(0, 0)
	log := &recordingLogger{Logger: common.NewNopLogger()}
	p := NewProfiler(WithLogger(log), WithInterval(time.Second), withClock(func() time.Time { return clock }))

	frame := FrameStats{Draws: 2, Tiles: 4, PixelsEvaluated: 500_000, PixelsDiscarded: 125_000, PixelsWritten: 375_000}

	clock = clock.Add(400 * time.Millisecond)
	assert.False(t, p.Tick(frame))
	clock = clock.Add(600 * time.Millisecond)
	require.True(t, p.Tick(frame))

	require.Len(t, log.lines, 1)
	line := log.lines[0]
	assert.Contains(t, line, "FPS: 2.00")
	assert.Contains(t, line, "Draws: 4")
	assert.Contains(t, line, "Eval: 1.00 Mpx/s")
	assert.Contains(t, line, "Discard: 25.0%")
	assert.Contains(t, line, "Written: 750000")

	// window resets
	clock = clock.Add(time.Second)
	require.True(t, p.Tick(FrameStats{}))
	assert.Contains(t, log.lines[1], "Discard: 0.0%")
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithLogger(nil))
	assert.Equal(t, time.Second, p.updateInterval)
}

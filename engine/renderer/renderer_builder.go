package renderer

import (
	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/profiler"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipelines pre-registers pipelines under their own keys.
//
// Parameters:
//   - pipelines: the pipelines to cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipelines option to a renderer
func WithPipelines(pipelines ...pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		for _, p := range pipelines {
			r.pipelineCache[p.PipelineKey()] = p
		}
	}
}

// WithWorkers sets the maximum number of tile workers. Values below one are ignored;
// the default is one less than the number of CPUs.
//
// Parameters:
//   - n: the maximum worker count
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker option to a renderer
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.workers = n
		}
	}
}

// WithTileSize sets the tile edge length in pixels. Values below one are ignored.
//
// Parameters:
//   - size: the tile edge in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the tile size option to a renderer
func WithTileSize(size int) RendererBuilderOption {
	return func(r *renderer) {
		if size >= 1 {
			r.tileSize = size
		}
	}
}

// WithLogger sets the logger for pipeline registration and per-draw debug output.
//
// Parameters:
//   - l: the logger, nil for none
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(l common.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = common.LoggerOrNop(l)
	}
}

// WithProfiler reports every finished frame to p.
//
// Parameters:
//   - p: the profiler to tick from EndFrame
//
// Returns:
//   - RendererBuilderOption: a function that applies the profiler option to a renderer
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.profiler = p
	}
}

package renderer

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/profiler"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTileSize is the edge length in pixels of the square tiles a draw is split into.
const DefaultTileSize = 32

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	workers  int
	tileSize int
	logger   common.Logger
	profiler *profiler.Profiler

	frameStart Stats
}

// Renderer is the high-level drawing API. It caches pipelines by key and
// composites material draws into a single color target:
//
//	BeginFrame -> DrawCall... -> EndFrame
type Renderer interface {
	// Pipeline retrieves the cached Pipeline for a key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the cached pipeline or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: pipelines keyed by PipelineKey
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines prepares each pipeline on the backend and caches it by key.
	// Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: the first backend registration failure
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reallocates the color target. Its contents are cleared.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Size returns the color target dimensions.
	Size() (width, height int)

	// BeginFrame fills the color target with a clear color.
	//
	// Parameters:
	//   - clearColor: the straight-alpha clear color, clamped to [0, 1]
	BeginFrame(clearColor mgl32.Vec4)

	// DrawCall evaluates a pipeline's material over the covered fragments and
	// combines surviving pixels into the color target. bindGroups is indexed by
	// bind group: 0 for the lightmap provider, 1 for the material provider.
	// Discarded pixels leave the target untouched. When ctx is cancelled the
	// remaining tiles are skipped and ctx.Err() is returned.
	//
	// Parameters:
	//   - ctx: cancels the remaining tiles
	//   - pipelineKey: the key of a registered pipeline
	//   - fragments: interpolants matching the color target size
	//   - bindGroups: providers indexed by bind group
	//
	// Returns:
	//   - error: ErrUnknownPipeline, ErrFragmentsMismatch, ErrMissingBindGroup,
	//     a provider validation error, or ctx.Err()
	DrawCall(ctx context.Context, pipelineKey string, fragments *Fragments, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame quantizes the color target to 8-bit straight alpha and reports
	// the frame to the profiler, if any.
	//
	// Returns:
	//   - *image.NRGBA: the finished frame
	EndFrame() *image.NRGBA

	// Stats returns the work counters accumulated since creation.
	Stats() Stats

	// Close stops the tile workers, releases the color target and forgets registered pipelines.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with a color target of the given size.
//
// Parameters:
//   - backendType: the backend to use (BackendTypeCPU)
//   - width: the color target width in pixels
//   - height: the color target height in pixels
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(backendType RendererBackendType, width, height int, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		workers:       max(runtime.NumCPU()-1, 1),
		tileSize:      DefaultTileSize,
		logger:        common.NewNopLogger(),
	}

	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeCPU:
		fallthrough
	default:
		r.backend = newCPURendererBackend(r.workers, r.tileSize, r.logger)
	}
	r.backend.Configure(width, height)

	// pipelines supplied through options still need their backend state
	for key, p := range r.pipelineCache {
		if err := r.backend.RegisterPipeline(p); err != nil {
			r.logger.Errorf("dropping pipeline %q: %v", key, err)
			delete(r.pipelineCache, key)
		}
	}
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, v := range r.pipelineCache {
		out[k] = v
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.Configure(width, height)
}

func (r *renderer) Size() (int, int) {
	return r.backend.Size()
}

func (r *renderer) BeginFrame(clearColor mgl32.Vec4) {
	r.mu.Lock()
	r.frameStart = r.backend.Stats()
	r.mu.Unlock()
	r.backend.BeginFrame(clearColor)
}

func (r *renderer) DrawCall(ctx context.Context, pipelineKey string, fragments *Fragments, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownPipeline, pipelineKey)
	}
	return r.backend.DrawCall(ctx, p, fragments, bindGroups)
}

func (r *renderer) EndFrame() *image.NRGBA {
	img := r.backend.EndFrame()
	if r.profiler != nil {
		r.mu.Lock()
		start := r.frameStart
		r.mu.Unlock()
		now := r.backend.Stats()
		r.profiler.Tick(profiler.FrameStats{
			Draws:           now.Draws - start.Draws,
			Tiles:           now.Tiles - start.Tiles,
			PixelsEvaluated: now.PixelsEvaluated - start.PixelsEvaluated,
			PixelsDiscarded: now.PixelsDiscarded - start.PixelsDiscarded,
			PixelsWritten:   now.PixelsWritten - start.PixelsWritten,
		})
	}
	return img
}

func (r *renderer) Stats() Stats {
	return r.backend.Stats()
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelineCache = make(map[string]pipeline.Pipeline)
	r.backend.Close()
}

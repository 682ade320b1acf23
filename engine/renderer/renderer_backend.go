package renderer

import (
	"context"
	"errors"
	"image"

	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeCPU evaluates materials per pixel on a tiled worker pool.
	BackendTypeCPU RendererBackendType = iota
)

var (
	// ErrUnknownPipeline is returned when a draw names a pipeline that was never registered.
	ErrUnknownPipeline = errors.New("unknown pipeline")

	// ErrFragmentsMismatch is returned when a fragment buffer does not match the color target.
	ErrFragmentsMismatch = errors.New("fragments do not match the color target")

	// ErrMissingBindGroup is returned when a draw lacks a provider for a group its shader declares.
	ErrMissingBindGroup = errors.New("missing bind group")
)

// Stats counts the work done since the renderer was created.
type Stats struct {
	Frames          uint64
	Draws           uint64
	Tiles           uint64
	PixelsEvaluated uint64
	PixelsDiscarded uint64
	PixelsWritten   uint64
}

// RendererBackend is the contract between the Renderer front end and a concrete backend.
type RendererBackend interface {
	// RegisterPipeline prepares per-pipeline state, such as the binding plan derived
	// from the fragment shader's declarations.
	RegisterPipeline(p pipeline.Pipeline) error

	// Configure resizes the color target and clears it.
	Configure(width, height int)

	// Size returns the color target dimensions.
	Size() (width, height int)

	// BeginFrame clears the color target.
	BeginFrame(clearColor mgl32.Vec4)

	// DrawCall evaluates the pipeline's material for every covered fragment.
	DrawCall(ctx context.Context, p pipeline.Pipeline, fragments *Fragments, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame quantizes the color target.
	EndFrame() *image.NRGBA

	// Stats returns a snapshot of the work counters.
	Stats() Stats

	// Close stops the worker lanes and releases the color target.
	Close()
}

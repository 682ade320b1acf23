package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex shader for this pipeline.
//
// Parameters:
//   - s: the vertex shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex shader
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment shader for this pipeline. Its declarations
// decide which bindings the renderer reads material resources from.
//
// Parameters:
//   - s: the fragment shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment shader
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithMaterialType selects the evaluator run for each fragment.
//
// Parameters:
//   - t: the material type
//
// Returns:
//   - PipelineBuilderOption: a function that sets the material type
func WithMaterialType(t material.Type) PipelineBuilderOption {
	return func(p *pipeline) {
		p.materialType = t
	}
}

// WithBlendEnabled toggles blending against the color target.
//
// Parameters:
//   - enabled: true to blend, false to replace
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend toggle
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendState sets the blend equation. A nil state is ignored.
//
// Parameters:
//   - state: the color and alpha blend components
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		if state != nil {
			p.blendState = state
		}
	}
}

// WithWriteMask restricts the channels draws may modify.
//
// Parameters:
//   - mask: the channel mask
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = mask
	}
}

// AdditiveBlendState sums fragment and target colors.
func AdditiveBlendState() *wgpu.BlendState {
	add := wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	}
	return &wgpu.BlendState{Color: add, Alpha: add}
}

// NewSimpleTexturePipeline builds the pipeline for simple textured materials.
// Its output is added onto the color target.
//
// Parameters:
//   - opts: options applied after the defaults
//
// Returns:
//   - Pipeline: the pipeline keyed "simple_texture"
//   - error: an error if the embedded shaders fail to parse
func NewSimpleTexturePipeline(opts ...PipelineBuilderOption) (Pipeline, error) {
	return newBuiltin(shader.BuiltinSimpleTexture, material.TypeSimpleTexture,
		append([]PipelineBuilderOption{WithBlendEnabled(true), WithBlendState(AdditiveBlendState())}, opts...)...)
}

// NewShaderEnvironmentPipeline builds the pipeline for multi-layer environment
// materials. Surviving fragments replace the color target.
//
// Parameters:
//   - opts: options applied after the defaults
//
// Returns:
//   - Pipeline: the pipeline keyed "shader_environment"
//   - error: an error if the embedded shaders fail to parse
func NewShaderEnvironmentPipeline(opts ...PipelineBuilderOption) (Pipeline, error) {
	return newBuiltin(shader.BuiltinShaderEnvironment, material.TypeShaderEnvironment, opts...)
}

// NewSolidColorPipeline builds the pipeline for flat-colored boxes such as
// split-screen dividers. Its color replaces the target, alpha included.
//
// Parameters:
//   - opts: options applied after the defaults
//
// Returns:
//   - Pipeline: the pipeline keyed "solid_color"
//   - error: an error if the embedded shaders fail to parse
func NewSolidColorPipeline(opts ...PipelineBuilderOption) (Pipeline, error) {
	return newBuiltin(shader.BuiltinSolidColor, material.TypeSolidColor, opts...)
}

// NewBuiltinPipelines returns one pipeline per material type.
func NewBuiltinPipelines() ([]Pipeline, error) {
	var pipes []Pipeline
	for _, build := range []func(...PipelineBuilderOption) (Pipeline, error){
		NewSimpleTexturePipeline,
		NewShaderEnvironmentPipeline,
		NewSolidColorPipeline,
	} {
		p, err := build()
		if err != nil {
			return nil, err
		}
		pipes = append(pipes, p)
	}
	return pipes, nil
}

func newBuiltin(name string, t material.Type, opts ...PipelineBuilderOption) (Pipeline, error) {
	vs, err := shader.NewBuiltinShader(name, shader.ShaderTypeVertex)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", name, err)
	}
	fs, err := shader.NewBuiltinShader(name, shader.ShaderTypeFragment)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", name, err)
	}
	base := []PipelineBuilderOption{WithVertexShader(vs), WithFragmentShader(fs), WithMaterialType(t)}
	return NewPipeline(name, append(base, opts...)...), nil
}

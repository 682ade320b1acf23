package pipeline

import (
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey  string
	materialType material.Type

	vertexShader, fragmentShader shader.Shader

	blendEnabled bool
	blendState   *wgpu.BlendState
	writeMask    wgpu.ColorWriteMask
}

// Pipeline pairs a vertex and fragment shader with the material type they
// evaluate and the fixed-function state used to combine fragment output
// with the color target.
type Pipeline interface {
	// PipelineKey returns the key materials use to select this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// MaterialType returns the evaluator this pipeline runs per fragment.
	//
	// Returns:
	//   - material.Type: TypeSimpleTexture, TypeShaderEnvironment or TypeSolidColor
	MaterialType() material.Type

	// Shader returns the shader bound to a stage, or nil.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage's shader or nil if unset
	Shader(shaderType shader.ShaderType) shader.Shader

	// BlendEnabled reports whether fragment output is blended with the target
	// instead of replacing it.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// BlendState returns the blend equation used when blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the color and alpha blend components
	BlendState() *wgpu.BlendState

	// WriteMask returns the channels of the target that draws may modify.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the channel mask
	WriteMask() wgpu.ColorWriteMask

	// Combine merges a fragment's color into the value already in the target,
	// applying the blend state and write mask. The result is clamped to [0, 1]
	// like a unorm color attachment.
	//
	// Parameters:
	//   - src: the fragment color
	//   - dst: the current target color
	//
	// Returns:
	//   - mgl32.Vec4: the new target color
	Combine(src, dst mgl32.Vec4) mgl32.Vec4
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline with blending disabled and every channel writable.
// The default blend state, used once blending is enabled, is straight alpha.
//
// Parameters:
//   - pipelineKey: the key materials use to select this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		materialType: material.TypeShaderEnvironment,
		writeMask:    wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) MaterialType() material.Type {
	return p.materialType
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) Combine(src, dst mgl32.Vec4) mgl32.Vec4 {
	out := src
	if p.blendEnabled && p.blendState != nil {
		out = blend(p.blendState, src, dst)
	}
	return applyWriteMask(p.writeMask, out, dst)
}

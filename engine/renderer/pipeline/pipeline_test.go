package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec4InDelta(t *testing.T, want, got mgl32.Vec4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "channel %d of %v", i, got)
	}
}

func TestBuiltinPipelines(t *testing.T) {
	pipes, err := NewBuiltinPipelines()
	require.NoError(t, err)
	require.Len(t, pipes, 3)

	simple, env, solid := pipes[0], pipes[1], pipes[2]
	assert.Equal(t, "simple_texture", simple.PipelineKey())
	assert.Equal(t, material.TypeSimpleTexture, simple.MaterialType())
	assert.True(t, simple.BlendEnabled())
	assert.Equal(t, AdditiveBlendState(), simple.BlendState())

	assert.Equal(t, "shader_environment", env.PipelineKey())
	assert.Equal(t, material.TypeShaderEnvironment, env.MaterialType())
	assert.False(t, env.BlendEnabled())

	assert.Equal(t, "solid_color", solid.PipelineKey())
	assert.Equal(t, material.TypeSolidColor, solid.MaterialType())
	assert.False(t, solid.BlendEnabled())

	for _, p := range pipes {
		assert.Equal(t, "vs_main", p.Shader(shader.ShaderTypeVertex).EntryPoint())
		assert.Equal(t, "fs_main", p.Shader(shader.ShaderTypeFragment).EntryPoint())
		assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	}
	assert.Nil(t, env.Shader(shader.ShaderType(9)))
}

func TestCombine(t *testing.T) {
	src := mgl32.Vec4{0.6, 0.2, 0.4, 0.5}
	dst := mgl32.Vec4{0.5, 0.5, 0.5, 1}

	tests := []struct {
		name string
		opts []PipelineBuilderOption
		want mgl32.Vec4
	}{
		{"replace", nil, src},
		{
			"additive saturates",
			[]PipelineBuilderOption{WithBlendEnabled(true), WithBlendState(AdditiveBlendState())},
			mgl32.Vec4{1, 0.7, 0.9, 1},
		},
		{
			"straight alpha",
			[]PipelineBuilderOption{WithBlendEnabled(true)},
			mgl32.Vec4{0.55, 0.35, 0.45, 1},
		},
		{
			"blend state without enable",
			[]PipelineBuilderOption{WithBlendState(AdditiveBlendState())},
			src,
		},
		{
			"write mask keeps masked channels",
			[]PipelineBuilderOption{WithWriteMask(wgpu.ColorWriteMaskRed | wgpu.ColorWriteMaskAlpha)},
			mgl32.Vec4{0.6, 0.5, 0.5, 0.5},
		},
		{
			"reverse subtract",
			[]PipelineBuilderOption{WithBlendEnabled(true), WithBlendState(&wgpu.BlendState{
				Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationReverseSubtract},
				Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
			})},
			mgl32.Vec4{0, 0.3, 0.1, 1},
		},
		{
			"min max",
			[]PipelineBuilderOption{WithBlendEnabled(true), WithBlendState(&wgpu.BlendState{
				Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorZero, Operation: wgpu.BlendOperationMin},
				Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorZero, Operation: wgpu.BlendOperationMax},
			})},
			mgl32.Vec4{0.5, 0.2, 0.4, 1},
		},
		{
			"multiply by destination",
			[]PipelineBuilderOption{WithBlendEnabled(true), WithBlendState(&wgpu.BlendState{
				Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorDst, DstFactor: wgpu.BlendFactorZero, Operation: wgpu.BlendOperationAdd},
				Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
			})},
			mgl32.Vec4{0.3, 0.1, 0.2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline("test", tt.opts...)
			assertVec4InDelta(t, tt.want, p.Combine(src, dst))
		})
	}
}

func TestCombineClampsToTarget(t *testing.T) {
	p := NewPipeline("test")
	got := p.Combine(mgl32.Vec4{1.5, -0.25, 0.5, 2}, mgl32.Vec4{})
	assert.Equal(t, mgl32.Vec4{1, 0, 0.5, 1}, got)
}

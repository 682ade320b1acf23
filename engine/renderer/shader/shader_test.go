package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEnvironmentFragmentLayout(t *testing.T) {
	fs, err := NewBuiltinShader(BuiltinShaderEnvironment, ShaderTypeFragment)
	require.NoError(t, err)

	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Empty(t, fs.VertexLayouts())
	assert.Contains(t, fs.Source(), "@group(1) @binding(6) var<uniform> params: EnvironmentParams;")
	assert.Contains(t, fs.Source(), "fn blend_with_mode")

	lightmap := fs.BindGroupLayoutDescriptor(0)
	require.Len(t, lightmap.Entries, 2)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, lightmap.Entries[0].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, lightmap.Entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, lightmap.Entries[1].Texture.ViewDimension)

	mat := fs.BindGroupLayoutDescriptor(1)
	require.Len(t, mat.Entries, 7)
	for i, e := range mat.Entries {
		assert.Equal(t, uint32(i), e.Binding)
		assert.Equal(t, wgpu.ShaderStageFragment, e.Visibility)
	}
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, mat.Entries[0].Sampler.Type)
	for _, e := range mat.Entries[1:6] {
		assert.Equal(t, wgpu.TextureSampleTypeFloat, e.Texture.SampleType)
	}
	params := mat.Entries[6]
	assert.Equal(t, wgpu.BufferBindingTypeUniform, params.Buffer.Type)
	assert.Equal(t, uint64(28), params.Buffer.MinBindingSize)

	assert.Equal(t, "params", fs.BindGroupVarName(1, 6))
	b, ok := fs.BindGroupFromVarName(1, "bump_map")
	assert.True(t, ok)
	assert.Equal(t, 5, b)
	_, ok = fs.BindGroupFromVarName(1, "normal_map")
	assert.False(t, ok)
}

func TestBuiltinSlots(t *testing.T) {
	env, err := NewBuiltinShader(BuiltinShaderEnvironment, ShaderTypeFragment)
	require.NoError(t, err)
	simple, err := NewBuiltinShader(BuiltinSimpleTexture, ShaderTypeFragment)
	require.NoError(t, err)

	assert.Equal(t, map[AnnotationArg]Slot{
		AnnotationArgMaterialSampler:    {1, 0},
		AnnotationArgBaseMap:            {1, 1},
		AnnotationArgPrimaryDetailMap:   {1, 2},
		AnnotationArgSecondaryDetailMap: {1, 3},
		AnnotationArgMicroDetailMap:     {1, 4},
		AnnotationArgBumpMap:            {1, 5},
	}, env.ProviderSlots(AnnotationArgMaterial))

	want := map[AnnotationArg]Slot{
		AnnotationArgLightmapSampler: {0, 0},
		AnnotationArgLightmapTexture: {0, 1},
	}
	assert.Equal(t, want, env.ProviderSlots(AnnotationArgLightmap))
	assert.Equal(t, want, simple.ProviderSlots(AnnotationArgLightmap))

	slot, ok := env.StructSlot(AnnotationArgEnvironmentParams)
	assert.True(t, ok)
	assert.Equal(t, Slot{1, 6}, slot)

	_, ok = simple.StructSlot(AnnotationArgEnvironmentParams)
	assert.False(t, ok)
	assert.Len(t, simple.BindGroupLayoutDescriptor(1).Entries, 2)
}

func TestBuiltinSolidColorSlots(t *testing.T) {
	fs, err := NewBuiltinShader(BuiltinSolidColor, ShaderTypeFragment)
	require.NoError(t, err)

	assert.Empty(t, fs.ProviderSlots(AnnotationArgMaterial))
	assert.Empty(t, fs.ProviderSlots(AnnotationArgLightmap))

	slot, ok := fs.StructSlot(AnnotationArgSolidColor)
	require.True(t, ok)
	assert.Equal(t, Slot{1, 0}, slot)

	entries := fs.BindGroupLayoutDescriptor(1).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.Equal(t, uint64(16), entries[0].Buffer.MinBindingSize)
	assert.Empty(t, fs.BindGroupLayoutDescriptor(0).Entries)
}

func TestBuiltinVertexLayout(t *testing.T) {
	for _, name := range BuiltinNames() {
		vs, err := NewBuiltinShader(name, ShaderTypeVertex)
		require.NoError(t, err, name)
		assert.Equal(t, "vs_main", vs.EntryPoint())
		assert.Equal(t, name, vs.Key())
		assert.Equal(t, name, vs.Module().Label)

		require.Len(t, vs.VertexLayouts(), 1, name)
		layout := vs.VertexLayout(0)[0]
		assert.Equal(t, uint64(28), layout.ArrayStride)
		assert.Equal(t, []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 20, ShaderLocation: 2},
		}, layout.Attributes)
	}
}

func TestNewBuiltinShaderUnknown(t *testing.T) {
	_, err := NewBuiltinShader("shader_model", ShaderTypeFragment)
	assert.ErrorIs(t, err, ErrUnknownBuiltin)
}

func TestNewShaderFromSourceErrors(t *testing.T) {
	_, err := NewShaderFromSource("bad", ShaderTypeFragment, "//@oxy:include lights\n")
	assert.ErrorIs(t, err, ErrUnknownAnnotationArg)

	_, err = NewShaderFromSource("bad", ShaderTypeFragment, "//@oxy:group 1 x storage_uniform p environment_params\n")
	assert.ErrorIs(t, err, ErrMalformedAnnotation)

	_, err = NewShaderFromSource("bad", ShaderTypeFragment, "//@oxy:group 0 0 storage_uniform p blend\n")
	assert.ErrorIs(t, err, ErrUnknownAnnotationArg, "helper blocks cannot be bound")

	assert.Panics(t, func() { NewShader("empty", ShaderTypeFragment, "") })
}

func TestStorageStructMinBindingSize(t *testing.T) {
	src := `
struct Tint {
    color: vec3<f32>,
    strength: f32,
    /* nested /* block */ comment */
    stops: array<vec4<f32>, 2>,
};
@group(2) @binding(3) var<storage, read> tint: Tint; // trailing
`
	s, err := NewShaderFromSource("tint", ShaderTypeFragment, src)
	require.NoError(t, err)

	entries := s.BindGroupLayoutDescriptor(2).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(3), entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[0].Buffer.Type)
	assert.Equal(t, uint64(48), entries[0].Buffer.MinBindingSize)
	assert.Empty(t, s.EntryPoint())
}

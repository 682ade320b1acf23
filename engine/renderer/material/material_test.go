package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("bare"))

	assert.Equal(t, "bare", m.Name())
	assert.Equal(t, TypeShaderEnvironment, m.Type())
	assert.Equal(t, "shader_environment", m.PipelineKey())
	assert.Equal(t, DefaultEnvironmentParams(), m.Params())
	assert.Equal(t, common.DefaultSampler(), m.Sampler())
	assert.Nil(t, m.BindGroupProvider())

	assert.False(t, m.HasTexture(RoleBaseMap))
	assert.Same(t, texture.DefaultBaseTexture(), m.Texture(RoleBaseMap))
	assert.Same(t, texture.DefaultBumpTexture(), m.Texture(RoleBumpMap))
	assert.Same(t, texture.DefaultDetailTexture(), m.Texture(RoleMicroDetailMap))
}

func TestMaterialOptions(t *testing.T) {
	base := texture.NewSolidTexture("base", mgl32.Vec4{1, 0, 0, 1})
	s := common.DefaultSampler()
	s.AddressModeU = wgpu.AddressModeClampToEdge
	params := DefaultEnvironmentParams()
	params.MicroDetailMapScale = 16
	provider := bind_group_provider.NewBindGroupProvider("material")

	m := NewMaterial(
		WithType(TypeSimpleTexture),
		WithTexture(RoleBaseMap, base),
		WithTexture(RoleBumpMap, nil),
		WithSampler(s),
		WithParams(params),
		WithPipelineKey("custom"),
		WithBindGroupProvider(provider),
	)

	assert.Equal(t, TypeSimpleTexture, m.Type())
	assert.True(t, m.HasTexture(RoleBaseMap))
	assert.False(t, m.HasTexture(RoleBumpMap))
	assert.Equal(t, base, m.Texture(RoleBaseMap))
	assert.Equal(t, s, m.Layers().Base.Sampler)
	assert.Equal(t, float32(16), m.Params().MicroDetailMapScale)
	assert.Equal(t, "custom", m.PipelineKey())
	assert.Equal(t, provider, m.BindGroupProvider())

	m.SetPipelineKey("other")
	assert.Equal(t, "other", m.PipelineKey())
	assert.NotEqual(t, m.ID(), NewMaterial().ID())
}

func TestMaterialEvaluateDispatchesOnType(t *testing.T) {
	base := texture.NewSolidTexture("base", mgl32.Vec4{1, 1, 1, 0})
	lightmap := texture.NewLayer(texture.NewSolidTexture("lightmap", mgl32.Vec4{1, 1, 1, 1}))
	params := DefaultEnvironmentParams()
	params.Flags = FlagAlphaTested

	simple := NewMaterial(WithType(TypeSimpleTexture), WithTexture(RoleBaseMap, base), WithParams(params))
	c, ok := simple.Evaluate(lightmap, center)
	require.True(t, ok, "simple materials never discard")
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, c)

	env := NewMaterial(WithTexture(RoleBaseMap, base), WithParams(params))
	_, ok = env.Evaluate(lightmap, center)
	assert.False(t, ok, "cutout on a transparent base")
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{
		"simple_texture":     TypeSimpleTexture,
		"Simple":             TypeSimpleTexture,
		"shader_environment": TypeShaderEnvironment,
		"":                   TypeShaderEnvironment,
		"solid_color":        TypeSolidColor,
		"solid":              TypeSolidColor,
	} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseType("shader_model")
	assert.ErrorIs(t, err, ErrUnknownMaterialType)
	assert.Equal(t, "material_type(9)", Type(9).String())
}

func TestTypeRoles(t *testing.T) {
	assert.Equal(t, []TextureRole{RoleBaseMap}, TypeSimpleTexture.Roles())
	assert.Len(t, TypeShaderEnvironment.Roles(), 5)
	assert.Empty(t, TypeSolidColor.Roles())
}

func TestSolidColorMaterial(t *testing.T) {
	lightmap := texture.NewLayer(texture.NewSolidTexture("lightmap", mgl32.Vec4{0.1, 0.1, 0.1, 1}))

	m := NewMaterial(WithType(TypeSolidColor), WithSolidColor(mgl32.Vec4{0.2, 0.4, 0.6, 0.5}))
	assert.Equal(t, "solid_color", m.PipelineKey())
	c, ok := m.Evaluate(lightmap, center)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{0.2, 0.4, 0.6, 0.5}, c, "unlit, alpha kept")

	assert.Equal(t, DefaultSolidColor(), NewMaterial().SolidColor())
}

package material

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Type selects the shading model of a material.
type Type uint8

const (
	// TypeSimpleTexture is a single base map modulated by the lightmap.
	TypeSimpleTexture Type = iota
	// TypeShaderEnvironment is the multi-layer base/detail/bump model with an optional cutout test.
	TypeShaderEnvironment
	// TypeSolidColor is a flat color from a uniform, unlit and untextured. Used for overlay boxes.
	TypeSolidColor
)

func (t Type) String() string {
	switch t {
	case TypeSimpleTexture:
		return "simple_texture"
	case TypeShaderEnvironment:
		return "shader_environment"
	case TypeSolidColor:
		return "solid_color"
	default:
		return fmt.Sprintf("material_type(%d)", uint8(t))
	}
}

// Roles returns the texture roles a material of this type samples.
func (t Type) Roles() []TextureRole {
	switch t {
	case TypeSimpleTexture:
		return []TextureRole{RoleBaseMap}
	case TypeSolidColor:
		return nil
	default:
		return []TextureRole{RoleBaseMap, RolePrimaryDetailMap, RoleSecondaryDetailMap, RoleMicroDetailMap, RoleBumpMap}
	}
}

// ParseType parses a material type name. An empty name is a shader_environment material.
//
// Parameters:
//   - s: the type name
//
// Returns:
//   - Type: the parsed type
//   - error: an error wrapping ErrUnknownMaterialType
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple_texture", "simple":
		return TypeSimpleTexture, nil
	case "shader_environment", "environment", "":
		return TypeShaderEnvironment, nil
	case "solid_color", "solid":
		return TypeSolidColor, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMaterialType, s)
	}
}

// TextureRole names one texture slot of a material. The names match the roles declared by the
// material bind group in the built-in shaders.
type TextureRole string

const (
	RoleBaseMap            TextureRole = "base_map"
	RolePrimaryDetailMap   TextureRole = "primary_detail_map"
	RoleSecondaryDetailMap TextureRole = "secondary_detail_map"
	RoleMicroDetailMap     TextureRole = "micro_detail_map"
	RoleBumpMap            TextureRole = "bump_map"
)

// Fallback returns the texture substituted when a material has nothing bound for the role.
func (r TextureRole) Fallback() texture.Texture {
	switch r {
	case RoleBaseMap:
		return texture.DefaultBaseTexture()
	case RoleBumpMap:
		return texture.DefaultBumpTexture()
	default:
		return texture.DefaultDetailTexture()
	}
}

// material is the implementation of the Material interface.
type material struct {
	id                uuid.UUID
	name              string
	materialType      Type
	textures          map[TextureRole]texture.Texture
	sampler           common.SamplerStagingData
	params            GPUEnvironmentParams
	color             GPUSolidColor
	layers            EnvironmentLayers
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material is a compiled surface description: its shading model, the textures bound to each
// role, the sampler shared by those textures and, for shader_environment materials, the
// parameter block. A solid_color material carries only its color.
//
// Surface properties are fixed at construction and read-only through this interface, so a
// Material may be evaluated from any number of goroutines. The pipeline key and bind group
// provider are mutable so the Loader can attach them after construction.
type Material interface {
	// ID retrieves the unique asset id assigned at creation.
	//
	// Returns:
	//   - uuid.UUID: the material id
	ID() uuid.UUID

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Type retrieves the shading model.
	//
	// Returns:
	//   - Type: the material type
	Type() Type

	// Texture retrieves the texture bound to a role, or the role's fallback when none is bound.
	//
	// Parameters:
	//   - role: the texture role
	//
	// Returns:
	//   - texture.Texture: the bound or fallback texture
	Texture(role TextureRole) texture.Texture

	// HasTexture reports whether a texture was explicitly bound to a role.
	//
	// Parameters:
	//   - role: the texture role
	//
	// Returns:
	//   - bool: true if a texture is bound
	HasTexture(role TextureRole) bool

	// Sampler retrieves the sampler shared by the material's textures.
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler description
	Sampler() common.SamplerStagingData

	// Params retrieves the parameter block. Simple materials return the defaults.
	//
	// Returns:
	//   - GPUEnvironmentParams: the parameter block
	Params() GPUEnvironmentParams

	// SolidColor retrieves the color block of a solid_color material. Other types return the default.
	//
	// Returns:
	//   - GPUSolidColor: the color block
	SolidColor() GPUSolidColor

	// Layers retrieves the material's textures paired with its sampler, fallbacks included.
	//
	// Returns:
	//   - EnvironmentLayers: the sampling layers
	Layers() EnvironmentLayers

	// Evaluate shades one pixel with the evaluator of the material's type.
	//
	// Parameters:
	//   - lightmap: the lightmap layer
	//   - px: the pixel coordinates
	//
	// Returns:
	//   - mgl32.Vec4: the opaque pixel color
	//   - bool: false when the pixel is discarded
	Evaluate(lightmap texture.Layer, px PixelContext) (mgl32.Vec4, bool)

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding the staged resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet bound
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing the staged resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Without options the material is an untextured shader_environment material with default
// parameters, keyed to the pipeline named after its type.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		id:           uuid.New(),
		materialType: TypeShaderEnvironment,
		textures:     make(map[TextureRole]texture.Texture),
		sampler:      common.DefaultSampler(),
		params:       DefaultEnvironmentParams(),
		color:        DefaultSolidColor(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.pipelineKey = common.Coalesce(m.pipelineKey, m.materialType.String())
	m.layers = EnvironmentLayers{
		Base:            m.layer(RoleBaseMap),
		PrimaryDetail:   m.layer(RolePrimaryDetailMap),
		SecondaryDetail: m.layer(RoleSecondaryDetailMap),
		MicroDetail:     m.layer(RoleMicroDetailMap),
		Bump:            m.layer(RoleBumpMap),
	}
	return m
}

func (m *material) layer(role TextureRole) texture.Layer {
	return texture.Layer{Texture: m.Texture(role), Sampler: m.sampler}
}

func (m *material) ID() uuid.UUID {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Type() Type {
	return m.materialType
}

func (m *material) Texture(role TextureRole) texture.Texture {
	if tex := m.textures[role]; tex != nil {
		return tex
	}
	return role.Fallback()
}

func (m *material) HasTexture(role TextureRole) bool {
	return m.textures[role] != nil
}

func (m *material) Sampler() common.SamplerStagingData {
	return m.sampler
}

func (m *material) Params() GPUEnvironmentParams {
	return m.params
}

func (m *material) SolidColor() GPUSolidColor {
	return m.color
}

func (m *material) Layers() EnvironmentLayers {
	return m.layers
}

func (m *material) Evaluate(lightmap texture.Layer, px PixelContext) (mgl32.Vec4, bool) {
	switch m.materialType {
	case TypeSimpleTexture:
		return EvaluateSimple(m.layers.Base, lightmap, px), true
	case TypeSolidColor:
		return EvaluateSolid(m.color), true
	default:
		return EvaluateEnvironment(m.layers, m.params, lightmap, px)
	}
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}

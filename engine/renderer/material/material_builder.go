package material

import (
	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithType is an option builder that sets the shading model of the material.
//
// Parameters:
//   - t: the material type
//
// Returns:
//   - MaterialBuilderOption: a function that applies the type option to a material
func WithType(t Type) MaterialBuilderOption {
	return func(m *material) {
		m.materialType = t
	}
}

// WithTexture is an option builder that binds a texture to a role. A nil texture leaves the role
// unbound so that the role's fallback is used.
//
// Parameters:
//   - role: the texture role
//   - tex: the texture to bind
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(role TextureRole, tex texture.Texture) MaterialBuilderOption {
	return func(m *material) {
		if tex == nil {
			delete(m.textures, role)
			return
		}
		m.textures[role] = tex
	}
}

// WithSampler is an option builder that sets the sampler shared by the material's textures.
//
// Parameters:
//   - s: the sampler description
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler option to a material
func WithSampler(s common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.sampler = s
	}
}

// WithParams is an option builder that sets the parameter block of a shader_environment material.
//
// Parameters:
//   - params: the parameter block
//
// Returns:
//   - MaterialBuilderOption: a function that applies the parameter option to a material
func WithParams(params GPUEnvironmentParams) MaterialBuilderOption {
	return func(m *material) {
		m.params = params
	}
}

// WithSolidColor is an option builder that sets the color of a solid_color material.
//
// Parameters:
//   - c: the RGBA color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithSolidColor(c mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.color = GPUSolidColor{Color: c}
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key for the material.
//
// Parameters:
//   - key: the pipeline key to associate with the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithBindGroupProvider is an option builder that sets the bind group provider for the material.
//
// Parameters:
//   - provider: the bind group provider containing the staged resources for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the bind group provider option to a material
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.bindGroupProvider = provider
	}
}

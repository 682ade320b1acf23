package bind_group_provider

import (
	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
)

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithTexture stages a texture for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this texture
//   - tex: the texture to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that stages the texture for the specified binding
func WithTexture(binding int, tex texture.Texture) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textures[binding] = tex
	}
}

// WithSampler stages a sampler description for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this sampler
//   - s: the sampler description
//
// Returns:
//   - BindGroupProviderOption: a function that stages the sampler for the specified binding
func WithSampler(binding int, s common.SamplerStagingData) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
	}
}

// WithBuffer stages buffer contents for a specific binding index. The data is copied.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - data: the buffer contents
//
// Returns:
//   - BindGroupProviderOption: a function that stages the buffer for the specified binding
func WithBuffer(binding int, data []byte) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = append([]byte(nil), data...)
	}
}

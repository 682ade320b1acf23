package bind_group_provider

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrMissingResource is returned by Validate when a layout entry has no staged resource of its kind.
	ErrMissingResource = errors.New("missing bind group resource")

	// ErrWriteOutOfRange is returned by Write when the data does not fit the staged buffer.
	ErrWriteOutOfRange = errors.New("buffer write out of range")
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	mu sync.RWMutex

	// label is a debug label added for convenience.
	label string

	// textures holds the staged textures, keyed by binding index.
	textures map[int]texture.Texture
	// samplers holds the staged sampler descriptions, keyed by binding index.
	samplers map[int]common.SamplerStagingData
	// buffers holds the staged buffer contents, keyed by binding index.
	buffers map[int][]byte
}

// BindGroupProvider holds the resources of one bind group, staged on the CPU and keyed by binding index.
// Materials and the lightmap each describe their bindings through a provider; the CPU renderer reads
// textures, samplers and the parameter block from it, and a GPU host can upload the same contents.
//
// Usage pattern:
//  1. The loader creates a provider and stages resources at the bindings a shader declares
//  2. The owner stores the provider via SetBindGroupProvider()
//  3. Validate checks the provider against the shader's bind group layout
//  4. Uniform updates go through Write
//  5. Draw calls read the staged resources by binding
//
// A provider is safe for concurrent use.
type BindGroupProvider interface {
	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Texture returns the texture staged at a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - texture.Texture: the texture or nil
	Texture(binding int) texture.Texture

	// Textures returns a copy of all staged textures, keyed by binding index.
	//
	// Returns:
	//   - map[int]texture.Texture: the staged textures
	Textures() map[int]texture.Texture

	// Sampler returns the sampler description staged at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler description
	//   - bool: false if no sampler is staged at the binding
	Sampler(binding int) (common.SamplerStagingData, bool)

	// Samplers returns a copy of all staged samplers, keyed by binding index.
	//
	// Returns:
	//   - map[int]common.SamplerStagingData: the staged samplers
	Samplers() map[int]common.SamplerStagingData

	// Buffer returns a copy of the buffer contents staged at a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - []byte: the buffer contents or nil
	Buffer(binding int) []byte

	// Buffers returns a copy of all staged buffers, keyed by binding index.
	//
	// Returns:
	//   - map[int][]byte: the staged buffers
	Buffers() map[int][]byte

	// Layer pairs the texture and sampler staged at two bindings into a sampling layer.
	// A missing texture yields a nil texture (which samples as transparent black) and a
	// missing sampler yields common.DefaultSampler.
	//
	// Parameters:
	//   - textureBinding: the binding of the texture
	//   - samplerBinding: the binding of the sampler
	//
	// Returns:
	//   - texture.Layer: the layer
	Layer(textureBinding, samplerBinding int) texture.Layer

	// SetTexture stages a texture at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture
	SetTexture(binding int, tex texture.Texture)

	// SetSampler stages a sampler description at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler description
	SetSampler(binding int, s common.SamplerStagingData)

	// SetBuffer stages buffer contents at a binding, replacing any previous buffer. The data is copied.
	//
	// Parameters:
	//   - binding: the binding index
	//   - data: the buffer contents
	SetBuffer(binding int, data []byte)

	// Write copies w.Data into the buffer staged at w.Binding starting at w.Offset.
	//
	// Parameters:
	//   - w: the write to apply; w.Provider is ignored
	//
	// Returns:
	//   - error: ErrMissingResource if no buffer is staged, ErrWriteOutOfRange if the data does not fit
	Write(w BufferWrite) error

	// Validate checks that every entry of layout has a staged resource of the matching kind and that
	// staged buffers are at least MinBindingSize bytes long.
	//
	// Parameters:
	//   - layout: the bind group layout the provider will be bound against
	//
	// Returns:
	//   - error: an error wrapping ErrMissingResource listing every problem found, or nil
	Validate(layout wgpu.BindGroupLayoutDescriptor) error

	// Release drops every staged resource.
	Release()
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:    label,
		textures: make(map[int]texture.Texture),
		samplers: make(map[int]common.SamplerStagingData),
		buffers:  make(map[int][]byte),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Texture(binding int) texture.Texture {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.textures[binding]
}

func (p *bindGroupProvider) Textures() map[int]texture.Texture {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.textures)
}

func (p *bindGroupProvider) Sampler(binding int) (common.SamplerStagingData, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.samplers[binding]
	return s, ok
}

func (p *bindGroupProvider) Samplers() map[int]common.SamplerStagingData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.samplers)
}

func (p *bindGroupProvider) Buffer(binding int) []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	buf, ok := p.buffers[binding]
	if !ok {
		return nil
	}
	return append([]byte(nil), buf...)
}

func (p *bindGroupProvider) Buffers() map[int][]byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[int][]byte, len(p.buffers))
	for binding, buf := range p.buffers {
		out[binding] = append([]byte(nil), buf...)
	}
	return out
}

func (p *bindGroupProvider) Layer(textureBinding, samplerBinding int) texture.Layer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.samplers[samplerBinding]
	if !ok {
		s = common.DefaultSampler()
	}
	return texture.Layer{Texture: p.textures[textureBinding], Sampler: s}
}

func (p *bindGroupProvider) SetTexture(binding int, tex texture.Texture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textures[binding] = tex
}

func (p *bindGroupProvider) SetSampler(binding int, s common.SamplerStagingData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetBuffer(binding int, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers[binding] = append([]byte(nil), data...)
}

func (p *bindGroupProvider) Write(w BufferWrite) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf, ok := p.buffers[w.Binding]
	if !ok {
		return fmt.Errorf("%s: binding %d has no buffer: %w", p.label, w.Binding, ErrMissingResource)
	}
	end := w.Offset + uint64(len(w.Data))
	if end > uint64(len(buf)) {
		return fmt.Errorf("%s: binding %d: writing %d bytes at offset %d into %d bytes: %w",
			p.label, w.Binding, len(w.Data), w.Offset, len(buf), ErrWriteOutOfRange)
	}
	copy(buf[w.Offset:end], w.Data)
	return nil
}

func (p *bindGroupProvider) Validate(layout wgpu.BindGroupLayoutDescriptor) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var errs []error
	for _, entry := range layout.Entries {
		binding := int(entry.Binding)
		switch {
		case entry.Buffer.Type != wgpu.BufferBindingTypeUndefined:
			buf, ok := p.buffers[binding]
			if !ok {
				errs = append(errs, fmt.Errorf("binding %d: no buffer staged", binding))
			} else if uint64(len(buf)) < entry.Buffer.MinBindingSize {
				errs = append(errs, fmt.Errorf("binding %d: buffer holds %d bytes, layout needs %d",
					binding, len(buf), entry.Buffer.MinBindingSize))
			}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			if _, ok := p.samplers[binding]; !ok {
				errs = append(errs, fmt.Errorf("binding %d: no sampler staged", binding))
			}
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			if p.textures[binding] == nil {
				errs = append(errs, fmt.Errorf("binding %d: no texture staged", binding))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", p.label, ErrMissingResource, errors.Join(errs...))
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.textures)
	clear(p.samplers)
	clear(p.buffers)
}

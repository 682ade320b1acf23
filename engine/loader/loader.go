package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// LoaderBackendType identifies the material definition format backend to use.
type LoaderBackendType int

const (
	// BackendTypeYAML selects the YAML material definition backend.
	BackendTypeYAML LoaderBackendType = iota
)

var (
	// ErrAlreadyExists is returned when a texture or material is added under a path that is already cached.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotLoaded is returned when an operation names a texture or material that is not cached.
	ErrNotLoaded = errors.New("not loaded")

	// ErrUnsupportedFormat is returned for definition files whose extension has no backend.
	ErrUnsupportedFormat = errors.New("unsupported material definition format")
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	textureCache  map[string]texture.Texture
	materialCache map[string]material.Material
	lightmap      texture.Texture

	backend         loaderBackend
	logger          common.Logger
	validateOptions *material.ValidateOptions
}

// Loader is the asset library of textures and materials. Assets are cached by path;
// adding a path twice is an error while loading a cached path returns the cached asset.
// It also stages materials and the current lightmap into bind group providers laid out
// the way a fragment shader declares them.
type Loader interface {
	// AddTexture caches a texture under a path.
	//
	// Parameters:
	//   - path: the cache key
	//   - tex: the texture
	//
	// Returns:
	//   - error: an error wrapping ErrAlreadyExists if the path is cached
	AddTexture(path string, tex texture.Texture) error

	// LoadTexture decodes an image file, or parses a procedural texture string, and caches
	// the result. A cached path is returned as is.
	//
	// Parameters:
	//   - path: the image path or procedural texture string
	//
	// Returns:
	//   - texture.Texture: the cached texture
	//   - error: error if the file cannot be decoded
	LoadTexture(path string) (texture.Texture, error)

	// Texture retrieves a cached texture, or nil.
	Texture(path string) texture.Texture

	// Textures returns a copy of the texture cache.
	Textures() map[string]texture.Texture

	// AddMaterial builds a material from a definition, validates it and caches it under a path.
	// Texture references resolve through the texture cache and then the filesystem; references
	// that cannot be resolved fall back to the role's default texture with a warning.
	// Warnings are logged; error-level issues reject the material.
	//
	// Parameters:
	//   - path: the cache key and material name
	//   - def: the material definition
	//
	// Returns:
	//   - material.Material: the cached material
	//   - error: ErrAlreadyExists, a malformed definition, or material.ErrInvalidMaterial
	AddMaterial(path string, def MaterialDefinition) (material.Material, error)

	// LoadMaterialFile decodes a definition file and adds the material under its path.
	// Relative texture paths are resolved against the file's directory. A cached path is
	// returned as is.
	//
	// Parameters:
	//   - path: the definition file path (.yaml or .yml)
	//
	// Returns:
	//   - material.Material: the cached material
	//   - error: error if the file cannot be read, decoded or validated
	LoadMaterialFile(path string) (material.Material, error)

	// LoadMaterialReader decodes a definition from a reader and adds it under name.
	// Relative texture paths are resolved against the working directory.
	//
	// Parameters:
	//   - name: the cache key and material name
	//   - r: the reader providing the definition
	//
	// Returns:
	//   - material.Material: the cached material
	//   - error: error if the definition cannot be decoded or validated
	LoadMaterialReader(name string, r io.Reader) (material.Material, error)

	// Material retrieves a cached material, or nil.
	Material(path string) material.Material

	// Materials returns a copy of the material cache.
	Materials() map[string]material.Material

	// SetCurrentLightmap selects a cached texture as the lightmap staged by BindLightmap.
	//
	// Parameters:
	//   - path: the cache key of the lightmap texture
	//
	// Returns:
	//   - error: an error wrapping ErrNotLoaded if the texture is not cached
	SetCurrentLightmap(path string) error

	// CurrentLightmap returns the selected lightmap, or the opaque white default.
	CurrentLightmap() texture.Texture

	// Reset empties both caches and clears the current lightmap. Bind group providers
	// attached to cached materials are released.
	Reset()

	// BindMaterial stages a material's textures, sampler and parameter block into a new
	// provider at the bindings the fragment shader declares for the material provider.
	// Declared bindings the material cannot fill get fallback resources. The provider is
	// attached to the material and returned.
	//
	// Parameters:
	//   - mat: the material to stage
	//   - fragmentShader: the shader whose declarations and layouts drive the staging
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the staged provider, nil if the shader
	//     declares no material provider
	//   - error: error if the staged provider does not satisfy the layout
	BindMaterial(mat material.Material, fragmentShader shader.Shader) (bind_group_provider.BindGroupProvider, error)

	// BindLightmap stages the current lightmap into a new provider at the bindings the
	// fragment shader declares for the lightmap provider.
	//
	// Parameters:
	//   - fragmentShader: the shader whose declarations and layouts drive the staging
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the staged provider, nil if the shader
	//     declares no lightmap provider
	//   - error: error if the staged provider does not satisfy the layout
	BindLightmap(fragmentShader shader.Shader) (bind_group_provider.BindGroupProvider, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the definition format backend (BackendTypeYAML)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:            sync.RWMutex{},
		textureCache:  make(map[string]texture.Texture),
		materialCache: make(map[string]material.Material),
		logger:        common.NewNopLogger(),
	}

	switch backendType {
	case BackendTypeYAML:
		l.backend = newYAMLLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) AddTexture(path string, tex texture.Texture) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.textureCache[path]; ok {
		return fmt.Errorf("texture %q: %w", path, ErrAlreadyExists)
	}
	l.textureCache[path] = tex
	return nil
}

func (l *loader) LoadTexture(path string) (texture.Texture, error) {
	l.mu.RLock()
	if cached, ok := l.textureCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	var tex texture.Texture
	var err error
	if texture.IsProcedural(path) {
		tex, err = texture.ParseProcedural(path)
	} else {
		tex, err = texture.LoadTexture(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load texture %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// another caller may have loaded the same path meanwhile
	if cached, ok := l.textureCache[path]; ok {
		return cached, nil
	}
	l.textureCache[path] = tex
	return tex, nil
}

func (l *loader) Texture(path string) texture.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textureCache[path]
}

func (l *loader) Textures() map[string]texture.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]texture.Texture, len(l.textureCache))
	for k, v := range l.textureCache {
		result[k] = v
	}
	return result
}

func (l *loader) AddMaterial(path string, def MaterialDefinition) (material.Material, error) {
	return l.addMaterial(path, def, "")
}

func (l *loader) LoadMaterialFile(path string) (material.Material, error) {
	l.mu.RLock()
	if cached, ok := l.materialCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open material %s: %w", path, err)
	}
	defer f.Close()

	def, err := backend.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load material %s: %w", path, err)
	}
	return l.addMaterial(path, *def, filepath.Dir(path))
}

func (l *loader) LoadMaterialReader(name string, r io.Reader) (material.Material, error) {
	l.mu.RLock()
	if cached, ok := l.materialCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	def, err := l.backend.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load material from reader %q: %w", name, err)
	}
	return l.addMaterial(name, *def, "")
}

func (l *loader) Material(path string) material.Material {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.materialCache[path]
}

func (l *loader) Materials() map[string]material.Material {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]material.Material, len(l.materialCache))
	for k, v := range l.materialCache {
		result[k] = v
	}
	return result
}

func (l *loader) SetCurrentLightmap(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	tex, ok := l.textureCache[path]
	if !ok {
		return fmt.Errorf("lightmap %q: %w", path, ErrNotLoaded)
	}
	l.lightmap = tex
	return nil
}

func (l *loader) CurrentLightmap() texture.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.lightmap == nil {
		return texture.DefaultLightmapTexture()
	}
	return l.lightmap
}

func (l *loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, mat := range l.materialCache {
		if p := mat.BindGroupProvider(); p != nil {
			p.Release()
		}
	}
	l.textureCache = make(map[string]texture.Texture)
	l.materialCache = make(map[string]material.Material)
	l.lightmap = nil
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only YAML is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if l.backend == nil {
			return newYAMLLoaderBackend(), nil
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// addMaterial converts a definition into a Material, validates it and caches it.
//
// Parameters:
//   - path: the cache key and material name
//   - def: the definition
//   - baseDir: the directory relative texture paths are resolved against, empty for none
//
// Returns:
//   - material.Material: the cached material
//   - error: error if the definition is malformed or the material fails validation
func (l *loader) addMaterial(path string, def MaterialDefinition, baseDir string) (material.Material, error) {
	l.mu.RLock()
	_, exists := l.materialCache[path]
	l.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("material %q: %w", path, ErrAlreadyExists)
	}

	matType, err := material.ParseType(def.Type)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", path, err)
	}
	sampler, err := def.Sampler.Staging()
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", path, err)
	}

	opts := []material.MaterialBuilderOption{
		material.WithName(path),
		material.WithType(matType),
		material.WithSampler(sampler),
		material.WithParams(def.Params()),
		material.WithPipelineKey(def.PipelineKey),
	}
	switch {
	case matType == material.TypeSolidColor:
		c, err := def.SolidColor()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", path, err)
		}
		opts = append(opts, material.WithSolidColor(c))
	case len(def.Color) > 0:
		l.logger.Warnf("material %q: color is ignored by %s materials", path, matType)
	}
	textures := def.Textures()
	for _, role := range matType.Roles() {
		tex, err := l.resolveTexture(path, role, textures[role], baseDir)
		if err != nil {
			return nil, err
		}
		if tex != nil {
			opts = append(opts, material.WithTexture(role, tex))
		}
	}
	for role, ref := range textures {
		if ref != "" && !containsRole(matType.Roles(), role) {
			l.logger.Warnf("material %q: %s is ignored by %s materials", path, role, matType)
		}
	}

	mat := material.NewMaterial(opts...)
	issues, err := material.ValidateStrict(mat, l.validateOptions)
	for _, issue := range issues {
		if issue.Level == material.IssueWarning {
			l.logger.Warnf("%s", issue)
		}
	}
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.materialCache[path]; ok {
		return nil, fmt.Errorf("material %q: %w", path, ErrAlreadyExists)
	}
	l.materialCache[path] = mat
	return mat, nil
}

// resolveTexture finds the texture a definition references for a role. Procedural strings
// are parsed, cached paths are reused and other paths are loaded from disk. A path that
// cannot be loaded resolves to nil so the role keeps its default texture.
func (l *loader) resolveTexture(materialPath string, role material.TextureRole, ref, baseDir string) (texture.Texture, error) {
	if ref == "" {
		return nil, nil
	}
	if texture.IsProcedural(ref) {
		tex, err := l.LoadTexture(ref)
		if err != nil {
			return nil, fmt.Errorf("material %q %s: %w", materialPath, role, err)
		}
		return tex, nil
	}

	if tex := l.Texture(ref); tex != nil {
		return tex, nil
	}
	path := ref
	if baseDir != "" && !filepath.IsAbs(ref) {
		path = filepath.Join(baseDir, ref)
	}
	tex, err := l.LoadTexture(path)
	if err != nil {
		l.logger.Warnf("material %q: %s %q not found, using default texture: %v", materialPath, role, ref, err)
		return nil, nil
	}
	return tex, nil
}

func containsRole(roles []material.TextureRole, role material.TextureRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (l *loader) BindMaterial(mat material.Material, fragmentShader shader.Shader) (bind_group_provider.BindGroupProvider, error) {
	slots := fragmentShader.ProviderSlots(shader.AnnotationArgMaterial)
	group, ok := providerGroup(slots)
	colorSlot, hasColor := fragmentShader.StructSlot(shader.AnnotationArgSolidColor)
	if !ok && hasColor {
		group, ok = colorSlot.Group, true
	}
	if !ok {
		// No material provider declared in this shader; nothing to stage.
		return nil, nil
	}

	provider := bind_group_provider.NewBindGroupProvider(mat.Name() + "_material")
	for role, slot := range slots {
		if role == shader.AnnotationArgMaterialSampler {
			provider.SetSampler(slot.Binding, mat.Sampler())
			continue
		}
		provider.SetTexture(slot.Binding, mat.Texture(material.TextureRole(role)))
	}
	if slot, ok := fragmentShader.StructSlot(shader.AnnotationArgEnvironmentParams); ok && slot.Group == group {
		params := mat.Params()
		provider.SetBuffer(slot.Binding, params.Marshal())
	}
	if hasColor && colorSlot.Group == group {
		c := mat.SolidColor()
		provider.SetBuffer(colorSlot.Binding, c.Marshal())
	}

	layout := fragmentShader.BindGroupLayoutDescriptor(group)
	l.fillFallbacks(provider, layout, texture.DefaultBaseTexture())
	if err := provider.Validate(layout); err != nil {
		return nil, fmt.Errorf("failed to bind material %q: %w", mat.Name(), err)
	}

	mat.SetBindGroupProvider(provider)
	return provider, nil
}

func (l *loader) BindLightmap(fragmentShader shader.Shader) (bind_group_provider.BindGroupProvider, error) {
	slots := fragmentShader.ProviderSlots(shader.AnnotationArgLightmap)
	group, ok := providerGroup(slots)
	if !ok {
		return nil, nil
	}

	provider := bind_group_provider.NewBindGroupProvider("lightmap")
	if slot, ok := slots[shader.AnnotationArgLightmapSampler]; ok {
		provider.SetSampler(slot.Binding, common.DefaultSampler())
	}
	if slot, ok := slots[shader.AnnotationArgLightmapTexture]; ok {
		provider.SetTexture(slot.Binding, l.CurrentLightmap())
	}

	layout := fragmentShader.BindGroupLayoutDescriptor(group)
	l.fillFallbacks(provider, layout, texture.DefaultLightmapTexture())
	if err := provider.Validate(layout); err != nil {
		return nil, fmt.Errorf("failed to bind lightmap: %w", err)
	}
	return provider, nil
}

// fillFallbacks stages placeholders for texture and sampler bindings of a layout that
// nothing was staged for, e.g. a custom shader declaring a binding without a role.
func (l *loader) fillFallbacks(provider bind_group_provider.BindGroupProvider, layout wgpu.BindGroupLayoutDescriptor, fallback texture.Texture) {
	for _, entry := range layout.Entries {
		binding := int(entry.Binding)
		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		if isTexture && provider.Texture(binding) == nil {
			l.logger.Debugf("%s: binding %d has no texture, using %s", provider.Label(), binding, fallback.Name())
			provider.SetTexture(binding, fallback)
		}
		if isSampler {
			if _, ok := provider.Sampler(binding); !ok {
				provider.SetSampler(binding, common.DefaultSampler())
			}
		}
	}
}

// providerGroup returns the bind group the provider slots live in.
func providerGroup(slots map[shader.AnnotationArg]shader.Slot) (int, bool) {
	group := -1
	for _, slot := range slots {
		if group < 0 || slot.Group < group {
			group = slot.Group
		}
	}
	return group, group >= 0
}

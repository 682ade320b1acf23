package shader

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/simple_texture.wgsl assets/shader_environment.wgsl assets/solid_color.wgsl
var builtinAssets embed.FS

// Builtin shader names, one per material type. Each asset holds both stages.
const (
	BuiltinSimpleTexture     = "simple_texture"
	BuiltinShaderEnvironment = "shader_environment"
	BuiltinSolidColor        = "solid_color"
)

// ErrUnknownBuiltin is returned by NewBuiltinShader for names without an embedded asset.
var ErrUnknownBuiltin = errors.New("unknown builtin shader")

// ShaderType identifies the pipeline stage a shader is parsed for.
type ShaderType int

const (
	// ShaderTypeVertex parses vertex buffer layouts and the @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment parses the @fragment entry point.
	ShaderTypeFragment
)

func (t ShaderType) visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageNone
	}
}

// Slot addresses one binding inside one bind group.
type Slot struct {
	Group   int
	Binding int
}

type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed and parsed WGSL stage. It exposes the bind group
// layouts, vertex layouts and @oxy: declarations that the loader and renderer
// use to stage material resources without matching variable names.
type Shader interface {
	// Key returns the shader's identifier.
	Key() string

	// Source returns the WGSL after annotation expansion.
	Source() string

	// ShaderType returns the stage this shader was parsed for.
	ShaderType() ShaderType

	// EntryPoint returns the entry function for the shader's stage, or "" if absent.
	EntryPoint() string

	// BindGroupLayoutDescriptor returns the layout of one bind group, or an empty
	// descriptor when the group is not declared.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: entries sorted by binding
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every declared bind group layout.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable at a binding, or "".
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName returns the binding index of a WGSL variable in a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index, -1 when absent
	//   - bool: whether the variable was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayout returns one parsed vertex buffer layout, or nil.
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts returns every parsed vertex buffer layout. Only vertex shaders carry any.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// Module returns the shader module descriptor for GPU backends.
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the group and provider annotations in source order.
	Declarations() []Annotation

	// ProviderSlots maps each binding role of a provider identity to its slot.
	//
	// Parameters:
	//   - identity: the provider identity, e.g. AnnotationArgMaterial
	//
	// Returns:
	//   - map[AnnotationArg]Slot: slots keyed by binding role; empty if the provider is unused
	ProviderSlots(identity AnnotationArg) map[AnnotationArg]Slot

	// StructSlot returns the slot of the generated binding for a registered struct type.
	//
	// Parameters:
	//   - structType: the struct argument, e.g. AnnotationArgEnvironmentParams
	//
	// Returns:
	//   - Slot: the binding's slot
	//   - bool: whether any @oxy:group annotation binds that type
	StructSlot(structType AnnotationArg) (Slot, bool)
}

var _ Shader = &shader{}

// NewShader reads, pre-processes and parses a WGSL file. It panics when the file
// cannot be read or its annotations are malformed; use NewShaderFromSource to
// handle those errors.
//
// Parameters:
//   - key: the shader identifier
//   - shaderType: the stage to parse for
//   - sourcePath: path of the WGSL file
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s has no source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := NewShaderFromSource(key, shaderType, string(data))
	if err != nil {
		panic(fmt.Sprintf("shader: %q: %v", sourcePath, err))
	}
	return s
}

// NewShaderFromSource pre-processes and parses WGSL held in memory.
//
// Parameters:
//   - key: the shader identifier
//   - shaderType: the stage to parse for
//   - source: raw WGSL with optional @oxy: annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an annotation error from the pre-processor
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(),
	}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

// NewBuiltinShader parses one stage of an embedded material shader.
//
// Parameters:
//   - name: BuiltinSimpleTexture, BuiltinShaderEnvironment or BuiltinSolidColor
//   - shaderType: the stage to parse for
//
// Returns:
//   - Shader: the parsed shader keyed by name
//   - error: ErrUnknownBuiltin for other names
func NewBuiltinShader(name string, shaderType ShaderType) (Shader, error) {
	if !slices.Contains(BuiltinNames(), name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}
	data, err := builtinAssets.ReadFile("assets/" + name + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownBuiltin, name, err)
	}
	return NewShaderFromSource(name, shaderType, string(data))
}

// BuiltinNames lists the embedded material shaders.
func BuiltinNames() []string {
	return []string{BuiltinSimpleTexture, BuiltinShaderEnvironment, BuiltinSolidColor}
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) ProviderSlots(identity AnnotationArg) map[AnnotationArg]Slot {
	slots := make(map[AnnotationArg]Slot)
	for _, d := range s.Declarations() {
		if d.Type != AnnotationTypeProvider || d.Args[0] != identity || d.Role() == "" {
			continue
		}
		slots[d.Role()] = Slot{Group: *d.Group, Binding: *d.Binding}
	}
	return slots
}

func (s *shader) StructSlot(structType AnnotationArg) (Slot, bool) {
	for _, d := range s.Declarations() {
		if d.StructType() == structType {
			return Slot{Group: *d.Group, Binding: *d.Binding}, true
		}
	}
	return Slot{}, false
}

// parseSource expands annotations and extracts the stage's metadata.
func (s *shader) parseSource(raw string) error {
	src, err := s.pp.Process(raw)
	if err != nil {
		return err
	}
	s.source = src
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	s.vertexLayouts = make(map[int][]wgpu.VertexBufferLayout)
	if s.shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(s.source)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, s.shaderType.visibility())
	return nil
}

package loader

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type warnLogger struct {
	common.Logger
	warnings []string
}

func (w *warnLogger) Warnf(format string, args ...any) {
	w.warnings = append(w.warnings, fmt.Sprintf(format, args...))
}

func newWarnLogger() *warnLogger {
	return &warnLogger{Logger: common.NewNopLogger()}
}

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAddTextureRejectsDuplicates(t *testing.T) {
	l := NewLoader(BackendTypeYAML)
	tex := texture.NewSolidTexture("white", mgl32.Vec4{1, 1, 1, 1})

	require.NoError(t, l.AddTexture("white", tex))
	err := l.AddTexture("white", tex)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Same(t, tex, l.Texture("white"))
	assert.Len(t, l.Textures(), 1)
}

func TestLoadTextureCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.png")
	writePNG(t, path, color.NRGBA{R: 255, A: 255})

	l := NewLoader(BackendTypeYAML)
	first, err := l.LoadTexture(path)
	require.NoError(t, err)
	second, err := l.LoadTexture(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, first.Width())

	proc, err := l.LoadTexture("#(argb,4,4,1)color(0,1,0,1)")
	require.NoError(t, err)
	assert.Equal(t, 4, proc.Width())
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, proc.At(1, 1))

	_, err = l.LoadTexture(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestLoadMaterialFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "base.png"), color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	writePNG(t, filepath.Join(dir, "bump.png"), color.NRGBA{R: 128, G: 128, B: 255, A: 255})
	writeFile(t, filepath.Join(dir, "wall.yaml"), `
type: shader_environment
base_map: base.png
secondary_detail_map: "#(argb,8,8,3)color(0.5,0.5,0.5,1)"
bump_map: bump.png
bump_map_scale: 2
primary_detail_map_scale: 4
micro_detail_map_scale: 16
detail_map_function: double-biased add
micro_detail_map_function: 1
alpha_tested: true
sampler:
  address_mode: clamp
  filter: nearest
`)

	log := newWarnLogger()
	l := NewLoader(BackendTypeYAML, WithLogger(log))
	path := filepath.Join(dir, "wall.yaml")
	mat, err := l.LoadMaterialFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, mat.Name())
	assert.Equal(t, material.TypeShaderEnvironment, mat.Type())
	assert.Equal(t, material.TypeShaderEnvironment.String(), mat.PipelineKey())

	params := mat.Params()
	assert.Equal(t, float32(2), params.BumpMapScale)
	assert.Equal(t, float32(4), params.PrimaryDetailMapScale)
	assert.Equal(t, float32(1), params.SecondaryDetailMapScale)
	assert.Equal(t, float32(16), params.MicroDetailMapScale)
	assert.Equal(t, material.BlendDoubleBiasedAdd, params.DetailMapFunction)
	assert.Equal(t, material.BlendMultiply, params.MicroDetailMapFunction)
	assert.True(t, params.AlphaTested())

	assert.True(t, mat.HasTexture(material.RoleBaseMap))
	assert.True(t, mat.HasTexture(material.RoleSecondaryDetailMap))
	assert.True(t, mat.HasTexture(material.RoleBumpMap))
	assert.False(t, mat.HasTexture(material.RolePrimaryDetailMap))
	assert.Equal(t, wgpu.AddressModeClampToEdge, mat.Sampler().AddressModeU)
	assert.Equal(t, wgpu.FilterModeNearest, mat.Sampler().MagFilter)

	// the two detail maps left unbound are reported
	assert.Len(t, log.warnings, 2)

	again, err := l.LoadMaterialFile(path)
	require.NoError(t, err)
	assert.Same(t, mat, again)
	assert.NotNil(t, l.Texture(filepath.Join(dir, "base.png")))
}

func TestAddMaterialMissingTextureFallsBack(t *testing.T) {
	log := newWarnLogger()
	l := NewLoader(BackendTypeYAML, WithLogger(log),
		WithValidateOptions(&material.ValidateOptions{DisableMissingTextureCheck: true}))

	def := DefaultMaterialDefinition()
	def.BaseMap = filepath.Join(t.TempDir(), "nope.png")
	mat, err := l.AddMaterial("missing", def)
	require.NoError(t, err)

	assert.False(t, mat.HasTexture(material.RoleBaseMap))
	assert.Same(t, texture.DefaultBaseTexture(), mat.Texture(material.RoleBaseMap))
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "base_map")
}

func TestAddMaterialUsesCachedTextures(t *testing.T) {
	base := texture.NewSolidTexture("cached", mgl32.Vec4{0, 0, 1, 1})
	l := NewLoader(BackendTypeYAML, WithTexture("textures/base.png", base))

	def := DefaultMaterialDefinition()
	def.Type = "simple_texture"
	def.BaseMap = "textures/base.png"
	mat, err := l.AddMaterial("simple", def)
	require.NoError(t, err)
	assert.Same(t, base, mat.Texture(material.RoleBaseMap))
	assert.Equal(t, material.TypeSimpleTexture, mat.Type())

	_, err = l.AddMaterial("simple", def)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAddMaterialValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*MaterialDefinition)
		opts    *material.ValidateOptions
		wantErr error
	}{
		{
			name:   "defaults",
			modify: func(*MaterialDefinition) {},
		},
		{
			name:    "zero scale",
			modify:  func(d *MaterialDefinition) { d.MicroDetailMapScale = 0 },
			wantErr: material.ErrInvalidMaterial,
		},
		{
			name:   "unknown blend code is a warning",
			modify: func(d *MaterialDefinition) { d.DetailMapFunction = 7 },
		},
		{
			name:    "unknown blend code with strict modes",
			modify:  func(d *MaterialDefinition) { d.DetailMapFunction = 7 },
			opts:    &material.ValidateOptions{StrictBlendModes: true},
			wantErr: material.ErrInvalidMaterial,
		},
		{
			name:    "unknown type",
			modify:  func(d *MaterialDefinition) { d.Type = "vertex_lit" },
			wantErr: material.ErrUnknownMaterialType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(BackendTypeYAML, WithValidateOptions(tt.opts))
			def := DefaultMaterialDefinition()
			tt.modify(&def)

			mat, err := l.AddMaterial("m", def)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, mat)
				assert.Nil(t, l.Material("m"))
				return
			}
			require.NoError(t, err)
			assert.Same(t, mat, l.Material("m"))
		})
	}
}

func TestLoadMaterialFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "unknown_key.yaml"), "type: shader_environment\nshininess: 3\n")
	writeFile(t, filepath.Join(dir, "bad_function.yaml"), "detail_map_function: overlay\n")
	writeFile(t, filepath.Join(dir, "empty.yml"), "")
	writeFile(t, filepath.Join(dir, "material.json"), "{}")

	l := NewLoader(BackendTypeYAML)

	_, err := l.LoadMaterialFile(filepath.Join(dir, "unknown_key.yaml"))
	assert.ErrorContains(t, err, "shininess")

	_, err = l.LoadMaterialFile(filepath.Join(dir, "bad_function.yaml"))
	assert.ErrorIs(t, err, material.ErrUnknownBlendMode)

	_, err = l.LoadMaterialFile(filepath.Join(dir, "empty.yml"))
	assert.Error(t, err)

	_, err = l.LoadMaterialFile(filepath.Join(dir, "material.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.LoadMaterialFile(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Empty(t, l.Materials())
}

func TestLoadMaterialReader(t *testing.T) {
	l := NewLoader(BackendTypeYAML)
	mat, err := l.LoadMaterialReader("inline", strings.NewReader(`
type: simple_texture
base_map: "#(argb,1,1,1)color(1,0,0,1)"
`))
	require.NoError(t, err)
	assert.Equal(t, material.TypeSimpleTexture, mat.Type())
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, mat.Texture(material.RoleBaseMap).At(0, 0))
}

func TestLoadSolidColorMaterial(t *testing.T) {
	warn := newWarnLogger()
	l := NewLoader(BackendTypeYAML, WithLogger(warn))

	mat, err := l.LoadMaterialReader("divider", strings.NewReader(`
type: solid_color
color: [0, 0.5, 1]
`))
	require.NoError(t, err)
	assert.Equal(t, material.TypeSolidColor, mat.Type())
	assert.Equal(t, shader.BuiltinSolidColor, mat.PipelineKey())
	assert.Equal(t, mgl32.Vec4{0, 0.5, 1, 1}, mat.SolidColor().Color)
	assert.Empty(t, warn.warnings)

	_, err = l.LoadMaterialReader("short", strings.NewReader("type: solid_color\ncolor: [1, 0]\n"))
	assert.ErrorContains(t, err, "3 or 4 channels")

	_, err = l.LoadMaterialReader("tinted", strings.NewReader("type: simple_texture\ncolor: [1, 0, 0, 1]\n"))
	require.NoError(t, err)
	require.Len(t, warn.warnings, 2)
	assert.Contains(t, warn.warnings[0], "color is ignored by simple_texture materials")
}

func TestCurrentLightmap(t *testing.T) {
	l := NewLoader(BackendTypeYAML)
	assert.Same(t, texture.DefaultLightmapTexture(), l.CurrentLightmap())

	err := l.SetCurrentLightmap("lightmaps/room.png")
	assert.ErrorIs(t, err, ErrNotLoaded)

	lm := texture.NewSolidTexture("room", mgl32.Vec4{0.5, 0.5, 0.5, 1})
	require.NoError(t, l.AddTexture("lightmaps/room.png", lm))
	require.NoError(t, l.SetCurrentLightmap("lightmaps/room.png"))
	assert.Same(t, lm, l.CurrentLightmap())

	l.Reset()
	assert.Same(t, texture.DefaultLightmapTexture(), l.CurrentLightmap())
	assert.Empty(t, l.Textures())
}

func TestBindMaterialEnvironment(t *testing.T) {
	fs, err := shader.NewBuiltinShader(shader.BuiltinShaderEnvironment, shader.ShaderTypeFragment)
	require.NoError(t, err)

	base := texture.NewSolidTexture("base", mgl32.Vec4{1, 0, 0, 1})
	l := NewLoader(BackendTypeYAML, WithTexture("base", base))
	def := DefaultMaterialDefinition()
	def.BaseMap = "base"
	def.PrimaryDetailMapScale = 8
	mat, err := l.AddMaterial("env", def)
	require.NoError(t, err)

	provider, err := l.BindMaterial(mat, fs)
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.Same(t, provider, mat.BindGroupProvider())
	assert.Same(t, base, provider.Texture(1))
	assert.Same(t, texture.DefaultDetailTexture(), provider.Texture(2))
	assert.Same(t, texture.DefaultBumpTexture(), provider.Texture(5))
	_, ok := provider.Sampler(0)
	assert.True(t, ok)

	params := mat.Params()
	assert.Equal(t, params.Marshal(), provider.Buffer(6))
	assert.NoError(t, provider.Validate(fs.BindGroupLayoutDescriptor(1)))
}

func TestBindMaterialSimpleShaderIgnoresParams(t *testing.T) {
	fs, err := shader.NewBuiltinShader(shader.BuiltinSimpleTexture, shader.ShaderTypeFragment)
	require.NoError(t, err)

	l := NewLoader(BackendTypeYAML)
	mat, err := l.AddMaterial("plain", DefaultMaterialDefinition())
	require.NoError(t, err)

	provider, err := l.BindMaterial(mat, fs)
	require.NoError(t, err)
	assert.Len(t, provider.Textures(), 1)
	assert.Empty(t, provider.Buffers())
}

func TestBindMaterialSolidColor(t *testing.T) {
	fs, err := shader.NewBuiltinShader(shader.BuiltinSolidColor, shader.ShaderTypeFragment)
	require.NoError(t, err)

	l := NewLoader(BackendTypeYAML)
	def := DefaultMaterialDefinition()
	def.Type = "solid_color"
	def.Color = []float32{0.25, 0.5, 0.75, 0.5}
	mat, err := l.AddMaterial("box", def)
	require.NoError(t, err)

	provider, err := l.BindMaterial(mat, fs)
	require.NoError(t, err)
	require.NotNil(t, provider)
	c := mat.SolidColor()
	assert.Equal(t, c.Marshal(), provider.Buffer(0))
	assert.Empty(t, provider.Textures())
	assert.Same(t, provider, mat.BindGroupProvider())

	lightmap, err := l.BindLightmap(fs)
	assert.NoError(t, err)
	assert.Nil(t, lightmap, "solid colors are unlit")
}

func TestBindLightmap(t *testing.T) {
	fs, err := shader.NewBuiltinShader(shader.BuiltinShaderEnvironment, shader.ShaderTypeFragment)
	require.NoError(t, err)

	lm := texture.NewSolidTexture("lm", mgl32.Vec4{0.25, 0.25, 0.25, 1})
	l := NewLoader(BackendTypeYAML, WithTexture("lm", lm))
	require.NoError(t, l.SetCurrentLightmap("lm"))

	provider, err := l.BindLightmap(fs)
	require.NoError(t, err)
	assert.Same(t, lm, provider.Texture(1))
	assert.NoError(t, provider.Validate(fs.BindGroupLayoutDescriptor(0)))
}

func TestBindWithoutProviderDeclarations(t *testing.T) {
	fs, err := shader.NewShaderFromSource("bare", shader.ShaderTypeFragment, `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`)
	require.NoError(t, err)

	l := NewLoader(BackendTypeYAML)
	mat, err := l.AddMaterial("m", DefaultMaterialDefinition())
	require.NoError(t, err)

	provider, err := l.BindMaterial(mat, fs)
	assert.NoError(t, err)
	assert.Nil(t, provider)

	provider, err = l.BindLightmap(fs)
	assert.NoError(t, err)
	assert.Nil(t, provider)
}

func TestBlendFunctionYAML(t *testing.T) {
	tests := []struct {
		in      string
		want    material.BlendMode
		wantErr bool
	}{
		{in: "f: multiply", want: material.BlendMultiply},
		{in: "f: Double Biased Multiply", want: material.BlendDoubleBiasedMultiply},
		{in: "f: 2", want: material.BlendDoubleBiasedAdd},
		{in: "f: 9", want: 9},
		{in: "f: screen", wantErr: true},
		{in: "f: [1, 2]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out struct {
				F BlendFunction `yaml:"f"`
			}
			err := yaml.Unmarshal([]byte(tt.in), &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, material.BlendMode(out.F))
		})
	}

	encoded, err := yaml.Marshal(map[string]BlendFunction{"a": BlendFunction(material.BlendMultiply), "b": 9})
	require.NoError(t, err)
	assert.Equal(t, "a: multiply\nb: 9\n", string(encoded))
}

func TestSamplerDefinitionStaging(t *testing.T) {
	tests := []struct {
		name    string
		def     *SamplerDefinition
		wantU   wgpu.AddressMode
		wantV   wgpu.AddressMode
		filter  wgpu.FilterMode
		wantErr bool
	}{
		{name: "nil", def: nil, wantU: wgpu.AddressModeRepeat, wantV: wgpu.AddressModeRepeat, filter: wgpu.FilterModeLinear},
		{name: "mirror", def: &SamplerDefinition{AddressMode: "mirror"}, wantU: wgpu.AddressModeMirrorRepeat, wantV: wgpu.AddressModeMirrorRepeat, filter: wgpu.FilterModeLinear},
		{name: "per axis", def: &SamplerDefinition{AddressMode: "repeat", AddressModeV: "clamp", Filter: "Nearest"}, wantU: wgpu.AddressModeRepeat, wantV: wgpu.AddressModeClampToEdge, filter: wgpu.FilterModeNearest},
		{name: "bad mode", def: &SamplerDefinition{AddressModeU: "wrap"}, wantErr: true},
		{name: "bad filter", def: &SamplerDefinition{Filter: "cubic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.def.Staging()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantU, s.AddressModeU)
			assert.Equal(t, tt.wantV, s.AddressModeV)
			assert.Equal(t, tt.filter, s.MagFilter)
			assert.Equal(t, tt.filter, s.MinFilter)
		})
	}
}

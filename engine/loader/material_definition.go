package loader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// MaterialDefinition is the declarative form of a material as stored in a definition file.
// Texture fields hold either a path, resolved relative to the definition file, or a
// procedural texture string such as "#(argb,8,8,3)color(0.5,0.5,0.5,1)". Empty texture
// fields leave the role unbound so the role's default texture is used.
//
// Start from DefaultMaterialDefinition; a zero scale is rejected by validation.
type MaterialDefinition struct {
	Type        string `yaml:"type"`
	PipelineKey string `yaml:"pipeline,omitempty"`

	BaseMap            string `yaml:"base_map,omitempty"`
	PrimaryDetailMap   string `yaml:"primary_detail_map,omitempty"`
	SecondaryDetailMap string `yaml:"secondary_detail_map,omitempty"`
	MicroDetailMap     string `yaml:"micro_detail_map,omitempty"`
	BumpMap            string `yaml:"bump_map,omitempty"`

	BumpMapScale            float32 `yaml:"bump_map_scale"`
	PrimaryDetailMapScale   float32 `yaml:"primary_detail_map_scale"`
	SecondaryDetailMapScale float32 `yaml:"secondary_detail_map_scale"`
	MicroDetailMapScale     float32 `yaml:"micro_detail_map_scale"`

	DetailMapFunction      BlendFunction `yaml:"detail_map_function"`
	MicroDetailMapFunction BlendFunction `yaml:"micro_detail_map_function"`

	AlphaTested bool `yaml:"alpha_tested"`
	// Flags carries raw flag bits, OR-ed with AlphaTested.
	Flags uint32 `yaml:"flags,omitempty"`

	// Color is the RGB or RGBA color of a solid_color material; alpha defaults to 1.
	Color []float32 `yaml:"color,omitempty,flow"`

	Sampler *SamplerDefinition `yaml:"sampler,omitempty"`
}

// DefaultMaterialDefinition returns an untextured shader_environment definition with
// unit scales and double-biased multiply for both detail functions.
func DefaultMaterialDefinition() MaterialDefinition {
	return MaterialDefinition{
		Type:                    material.TypeShaderEnvironment.String(),
		BumpMapScale:            1,
		PrimaryDetailMapScale:   1,
		SecondaryDetailMapScale: 1,
		MicroDetailMapScale:     1,
		DetailMapFunction:       BlendFunction(material.BlendDoubleBiasedMultiply),
		MicroDetailMapFunction:  BlendFunction(material.BlendDoubleBiasedMultiply),
	}
}

// Params converts the scalar fields into the material parameter block.
func (d *MaterialDefinition) Params() material.GPUEnvironmentParams {
	flags := d.Flags
	if d.AlphaTested {
		flags |= material.FlagAlphaTested
	}
	return material.GPUEnvironmentParams{
		BumpMapScale:            d.BumpMapScale,
		PrimaryDetailMapScale:   d.PrimaryDetailMapScale,
		SecondaryDetailMapScale: d.SecondaryDetailMapScale,
		MicroDetailMapScale:     d.MicroDetailMapScale,
		DetailMapFunction:       material.BlendMode(d.DetailMapFunction),
		MicroDetailMapFunction:  material.BlendMode(d.MicroDetailMapFunction),
		Flags:                   flags,
	}
}

// SolidColor returns the color of a solid_color definition, opaque white when unset.
//
// Returns:
//   - mgl32.Vec4: the RGBA color
//   - error: an error if the color does not have three or four channels
func (d *MaterialDefinition) SolidColor() (mgl32.Vec4, error) {
	switch len(d.Color) {
	case 0:
		return material.DefaultSolidColor().Color, nil
	case 3:
		return mgl32.Vec4{d.Color[0], d.Color[1], d.Color[2], 1}, nil
	case 4:
		return mgl32.Vec4{d.Color[0], d.Color[1], d.Color[2], d.Color[3]}, nil
	default:
		return mgl32.Vec4{}, fmt.Errorf("color needs 3 or 4 channels, got %d", len(d.Color))
	}
}

// Textures returns the texture reference of every role, empty when unbound.
func (d *MaterialDefinition) Textures() map[material.TextureRole]string {
	return map[material.TextureRole]string{
		material.RoleBaseMap:            d.BaseMap,
		material.RolePrimaryDetailMap:   d.PrimaryDetailMap,
		material.RoleSecondaryDetailMap: d.SecondaryDetailMap,
		material.RoleMicroDetailMap:     d.MicroDetailMap,
		material.RoleBumpMap:            d.BumpMap,
	}
}

// BlendFunction is a blend mode as written in a definition file: a mode name or its numeric code.
type BlendFunction material.BlendMode

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *BlendFunction) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: blend function must be a name or an integer code", value.Line)
	}
	mode, err := material.ParseBlendMode(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = BlendFunction(mode)
	return nil
}

// MarshalYAML implements yaml.Marshaler. Unrecognized codes are written as integers.
func (f BlendFunction) MarshalYAML() (any, error) {
	mode := material.BlendMode(f)
	if mode.Valid() {
		return mode.String(), nil
	}
	return uint32(mode), nil
}

// SamplerDefinition overrides the default repeat/linear sampler of a material.
// AddressModeU and AddressModeV take precedence over AddressMode.
type SamplerDefinition struct {
	AddressMode  string `yaml:"address_mode,omitempty"`
	AddressModeU string `yaml:"address_mode_u,omitempty"`
	AddressModeV string `yaml:"address_mode_v,omitempty"`
	Filter       string `yaml:"filter,omitempty"`
}

var addressModes = map[string]wgpu.AddressMode{
	"repeat":        wgpu.AddressModeRepeat,
	"clamp":         wgpu.AddressModeClampToEdge,
	"clamp_to_edge": wgpu.AddressModeClampToEdge,
	"mirror":        wgpu.AddressModeMirrorRepeat,
	"mirror_repeat": wgpu.AddressModeMirrorRepeat,
}

var filterModes = map[string]wgpu.FilterMode{
	"linear":  wgpu.FilterModeLinear,
	"nearest": wgpu.FilterModeNearest,
}

// Staging converts the definition into a sampler description. A nil definition is the default sampler.
//
// Returns:
//   - common.SamplerStagingData: the sampler
//   - error: an error naming the first unrecognized mode
func (s *SamplerDefinition) Staging() (common.SamplerStagingData, error) {
	out := common.DefaultSampler()
	if s == nil {
		return out, nil
	}

	lookup := func(field, name string, fallback wgpu.AddressMode) (wgpu.AddressMode, error) {
		if name == "" {
			return fallback, nil
		}
		mode, ok := addressModes[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("sampler %s: unknown address mode %q", field, name)
		}
		return mode, nil
	}

	all, err := lookup("address_mode", s.AddressMode, wgpu.AddressModeRepeat)
	if err != nil {
		return out, err
	}
	if out.AddressModeU, err = lookup("address_mode_u", s.AddressModeU, all); err != nil {
		return out, err
	}
	if out.AddressModeV, err = lookup("address_mode_v", s.AddressModeV, all); err != nil {
		return out, err
	}
	out.AddressModeW = all

	if s.Filter != "" {
		filter, ok := filterModes[strings.ToLower(s.Filter)]
		if !ok {
			return out, fmt.Errorf("sampler filter: unknown filter %q", s.Filter)
		}
		out.MagFilter, out.MinFilter = filter, filter
	}
	return out, nil
}

package material

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUEnvironmentParamsSource is the canonical WGSL definition of the EnvironmentParams struct.
// Matches GPUEnvironmentParams layout exactly (28 bytes, uniform aligned).
//
//go:embed assets/environment_params.wgsl
var GPUEnvironmentParamsSource string

// FlagAlphaTested enables the cutout test of the environment evaluator.
const FlagAlphaTested uint32 = 1 << 0

// flagsKnown is the set of flag bits with a defined meaning. Other bits are carried but ignored.
const flagsKnown = FlagAlphaTested

// GPUEnvironmentParams is the per-material parameter block of a shader_environment material.
// Matches the WGSL EnvironmentParams struct layout exactly (see GPUEnvironmentParamsSource).
// The binary layout is an asset compatibility surface: field order, widths and the flag bits must not change.
// Size: 28 bytes.
type GPUEnvironmentParams struct {
	BumpMapScale            float32   // offset 0
	PrimaryDetailMapScale   float32   // offset 4
	SecondaryDetailMapScale float32   // offset 8
	MicroDetailMapScale     float32   // offset 12
	DetailMapFunction       BlendMode // offset 16: applied to the primary and secondary detail maps
	MicroDetailMapFunction  BlendMode // offset 20: applied to the micro detail map
	Flags                   uint32    // offset 24: bit 0 = alpha tested
}

// DefaultEnvironmentParams returns unit scales, double-biased multiply for both functions and no flags.
//
// Returns:
//   - GPUEnvironmentParams: the default parameter block
func DefaultEnvironmentParams() GPUEnvironmentParams {
	return GPUEnvironmentParams{
		BumpMapScale:            1,
		PrimaryDetailMapScale:   1,
		SecondaryDetailMapScale: 1,
		MicroDetailMapScale:     1,
		DetailMapFunction:       BlendDoubleBiasedMultiply,
		MicroDetailMapFunction:  BlendDoubleBiasedMultiply,
	}
}

// Size returns the size of the GPUEnvironmentParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUEnvironmentParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// AlphaTested reports whether the cutout test is enabled.
func (g *GPUEnvironmentParams) AlphaTested() bool {
	return g.Flags&FlagAlphaTested != 0
}

// Marshal serializes the GPUEnvironmentParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 28-byte little-endian buffer ready for GPU upload.
func (g *GPUEnvironmentParams) Marshal() []byte {
	buf := make([]byte, 28)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.BumpMapScale))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.PrimaryDetailMapScale))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.SecondaryDetailMapScale))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.MicroDetailMapScale))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(g.DetailMapFunction))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(g.MicroDetailMapFunction))
	binary.LittleEndian.PutUint32(buf[24:28], g.Flags)
	return buf
}

// UnmarshalGPUEnvironmentParams decodes a parameter block written by Marshal.
// Bytes past the first 28 are ignored so a padded uniform buffer decodes as well.
//
// Parameters:
//   - buf: the little-endian encoded block
//
// Returns:
//   - GPUEnvironmentParams: the decoded block
//   - error: an error wrapping ErrShortParamsBuffer if buf holds fewer than 28 bytes
func UnmarshalGPUEnvironmentParams(buf []byte) (GPUEnvironmentParams, error) {
	var g GPUEnvironmentParams
	if len(buf) < g.Size() {
		return g, fmt.Errorf("%w: got %d bytes, need %d", ErrShortParamsBuffer, len(buf), g.Size())
	}
	g.BumpMapScale = math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
	g.PrimaryDetailMapScale = math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
	g.SecondaryDetailMapScale = math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12]))
	g.MicroDetailMapScale = math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16]))
	g.DetailMapFunction = BlendMode(binary.LittleEndian.Uint32(buf[16:20]))
	g.MicroDetailMapFunction = BlendMode(binary.LittleEndian.Uint32(buf[20:24]))
	g.Flags = binary.LittleEndian.Uint32(buf[24:28])
	return g, nil
}

// GPUSolidColorSource is the WGSL definition of the SolidColor struct bound by solid_color shaders.
//
//go:embed assets/solid_color.wgsl
var GPUSolidColorSource string

// GPUSolidColor is the uniform block of a solid_color material.
// Matches the WGSL SolidColor struct layout exactly (see GPUSolidColorSource).
// Size: 16 bytes.
type GPUSolidColor struct {
	Color mgl32.Vec4 // offset 0: straight RGBA
}

// DefaultSolidColor returns opaque white.
func DefaultSolidColor() GPUSolidColor {
	return GPUSolidColor{Color: mgl32.Vec4{1, 1, 1, 1}}
}

func (g *GPUSolidColor) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the color into a 16-byte little-endian buffer.
func (g *GPUSolidColor) Marshal() []byte {
	buf := make([]byte, 16)
	for i, c := range g.Color {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
	return buf
}

// UnmarshalGPUSolidColor decodes a color block written by Marshal. Trailing bytes are ignored.
//
// Parameters:
//   - buf: the little-endian encoded block
//
// Returns:
//   - GPUSolidColor: the decoded block
//   - error: an error wrapping ErrShortParamsBuffer if buf holds fewer than 16 bytes
func UnmarshalGPUSolidColor(buf []byte) (GPUSolidColor, error) {
	var g GPUSolidColor
	if len(buf) < g.Size() {
		return g, fmt.Errorf("%w: got %d bytes, need %d", ErrShortParamsBuffer, len(buf), g.Size())
	}
	for i := range g.Color {
		g.Color[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return g, nil
}

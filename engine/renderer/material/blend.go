package material

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/go-gl/mathgl/mgl32"
)

// BlendSource is the WGSL twin of Blend, injected into shaders with "//@oxy:include blend".
//
//go:embed assets/blend.wgsl
var BlendSource string

// BlendMode selects how a detail layer is combined with the color beneath it.
// The numeric codes are part of the material asset format.
type BlendMode uint32

const (
	// BlendDoubleBiasedMultiply scales the product by two so that a mid-gray layer leaves the color unchanged.
	BlendDoubleBiasedMultiply BlendMode = 0
	// BlendMultiply is plain per-channel multiplication.
	BlendMultiply BlendMode = 1
	// BlendDoubleBiasedAdd adds the layer re-centered around 0.5, lightening above and darkening below mid-gray.
	BlendDoubleBiasedAdd BlendMode = 2
)

var blendModeNames = map[BlendMode]string{
	BlendDoubleBiasedMultiply: "double_biased_multiply",
	BlendMultiply:             "multiply",
	BlendDoubleBiasedAdd:      "double_biased_add",
}

// Valid reports whether m is one of the recognized blend codes.
func (m BlendMode) Valid() bool {
	_, ok := blendModeNames[m]
	return ok
}

func (m BlendMode) String() string {
	if name, ok := blendModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("blend_mode(%d)", uint32(m))
}

// ParseBlendMode accepts either a mode name ("multiply", "double-biased add", ...) or its numeric code.
// Numeric codes are not range checked so unrecognized values can still be loaded and reported by Validate.
//
// Parameters:
//   - s: the name or code
//
// Returns:
//   - BlendMode: the parsed mode
//   - error: an error wrapping ErrUnknownBlendMode if s is neither a known name nor an integer
func ParseBlendMode(s string) (BlendMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for mode, name := range blendModeNames {
		if key == name {
			return mode, nil
		}
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBlendMode, s)
	}
	return BlendMode(n), nil
}

// Apply computes the pre-mix combination of color and layer.
// Alpha takes part in the arithmetic like any other channel; Blend discards it afterwards.
// An unrecognized mode yields transparent black.
//
// Parameters:
//   - color: the color beneath the layer
//   - layer: the sampled layer color
//
// Returns:
//   - mgl32.Vec4: the combined color
func (m BlendMode) Apply(color, layer mgl32.Vec4) mgl32.Vec4 {
	switch m {
	case BlendDoubleBiasedMultiply:
		return common.Mul4(color, layer).Mul(2)
	case BlendMultiply:
		return common.Mul4(color, layer)
	case BlendDoubleBiasedAdd:
		return color.Add(layer.Mul(2)).Sub(mgl32.Vec4{1, 1, 1, 1})
	default:
		return mgl32.Vec4{}
	}
}

// Blend combines layer onto color with the given mode and mixes the opaque result back
// over color by layer.a * alpha. A layer with zero alpha therefore leaves color untouched.
// An unrecognized mode returns transparent black without mixing. No clamping is applied.
//
// Parameters:
//   - color: the color beneath the layer
//   - layer: the sampled layer color, its alpha acting as a blend-strength mask
//   - mode: the blend mode
//   - alpha: an additional opacity factor
//
// Returns:
//   - mgl32.Vec4: the blended color
func Blend(color, layer mgl32.Vec4, mode BlendMode, alpha float32) mgl32.Vec4 {
	if !mode.Valid() {
		return mgl32.Vec4{}
	}
	blended := mode.Apply(color, layer)
	blended[3] = 1
	return common.Lerp4(color, blended, layer[3]*alpha)
}

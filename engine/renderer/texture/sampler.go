package texture

import (
	"math"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Layer is a texture bound together with the sampler that reads it.
// It is the unit an evaluator samples: one image, one addressing/filtering policy.
type Layer struct {
	Texture Texture
	Sampler common.SamplerStagingData
}

// NewLayer pairs a texture with the default repeat/linear sampler.
//
// Parameters:
//   - tex: the texture to sample
//
// Returns:
//   - Layer: the layer
func NewLayer(tex Texture) Layer {
	return Layer{Texture: tex, Sampler: common.DefaultSampler()}
}

// Sample reads the layer at a texture coordinate.
//
// Parameters:
//   - uv: the texture coordinate, (0, 0) at the top-left corner of the image
//
// Returns:
//   - mgl32.Vec4: the filtered RGBA value
func (l Layer) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	return Sample(l.Texture, l.Sampler, uv)
}

// Sample filters tex at uv the way a GPU sampler without mipmaps does: texel centers sit
// at half-integer positions, out-of-range coordinates follow the per-axis address mode,
// and the magnification filter selects nearest or bilinear filtering.
// A nil texture samples as transparent black.
//
// Parameters:
//   - tex: the texture to read
//   - s: the sampler description
//   - uv: the texture coordinate
//
// Returns:
//   - mgl32.Vec4: the filtered RGBA value
func Sample(tex Texture, s common.SamplerStagingData, uv mgl32.Vec2) mgl32.Vec4 {
	if tex == nil {
		return mgl32.Vec4{}
	}
	w, h := tex.Width(), tex.Height()
	u := finiteOrZero(uv[0]) * float32(w)
	v := finiteOrZero(uv[1]) * float32(h)

	if s.MagFilter == wgpu.FilterModeNearest {
		x, _ := texel(s.AddressModeU, u, w)
		y, _ := texel(s.AddressModeV, v, h)
		return tex.At(address(s.AddressModeU, x, w), address(s.AddressModeV, y, h))
	}

	x0, fx := texel(s.AddressModeU, u-0.5, w)
	y0, fy := texel(s.AddressModeV, v-0.5, h)

	xa := address(s.AddressModeU, x0, w)
	xb := address(s.AddressModeU, x0+1, w)
	ya := address(s.AddressModeV, y0, h)
	yb := address(s.AddressModeV, y0+1, h)

	top := common.Lerp4(tex.At(xa, ya), tex.At(xb, ya), fx)
	bottom := common.Lerp4(tex.At(xa, yb), tex.At(xb, yb), fx)
	return common.Lerp4(top, bottom, fy)
}

// address maps an integer texel index onto [0, n) according to the address mode.
func address(mode wgpu.AddressMode, i, n int) int {
	switch mode {
	case wgpu.AddressModeClampToEdge:
		return min(max(i, 0), n-1)
	case wgpu.AddressModeMirrorRepeat:
		period := 2 * n
		m := ((i % period) + period) % period
		if m >= n {
			m = period - 1 - m
		}
		return m
	default:
		return ((i % n) + n) % n
	}
}

// texel splits a texel-space coordinate into an integer index and the fraction past it.
// The coordinate is first reduced in float space to an equivalent one within a
// period of the address mode, so the index always fits an int.
func texel(mode wgpu.AddressMode, v float32, n int) (int, float32) {
	f := float64(v)
	switch mode {
	case wgpu.AddressModeClampToEdge:
		f = min(max(f, -1), float64(n))
	default:
		period := float64(n)
		if mode == wgpu.AddressModeMirrorRepeat {
			period *= 2
		}
		f = math.Mod(f, period)
		if f < 0 {
			f += period
		}
		if f >= period {
			f = 0
		}
	}
	i := math.Floor(f)
	return int(i), float32(f - i)
}

func finiteOrZero(v float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return v
}

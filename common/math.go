package common

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Lerp4 linearly interpolates between two RGBA values, matching the WGSL mix builtin.
// The factor is not clamped; t = 0 returns a and t = 1 returns b exactly.
//
// Parameters:
//   - a: the start value
//   - b: the end value
//   - t: the interpolation factor
//
// Returns:
//   - mgl32.Vec4: a * (1 - t) + b * t
func Lerp4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	s := 1 - t
	return mgl32.Vec4{
		a[0]*s + b[0]*t,
		a[1]*s + b[1]*t,
		a[2]*s + b[2]*t,
		a[3]*s + b[3]*t,
	}
}

// Mul4 multiplies two RGBA values component-wise.
//
// Parameters:
//   - a: the left operand
//   - b: the right operand
//
// Returns:
//   - mgl32.Vec4: the component-wise product
func Mul4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// Clamp01 clamps a scalar to the [0, 1] range. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Saturate4 clamps every channel of an RGBA value to the [0, 1] range.
//
// Parameters:
//   - c: the color to clamp
//
// Returns:
//   - mgl32.Vec4: the clamped color
func Saturate4(c mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{Clamp01(c[0]), Clamp01(c[1]), Clamp01(c[2]), Clamp01(c[3])}
}

// NRGBAToVec4 converts an 8-bit straight-alpha color to normalized RGBA.
func NRGBAToVec4(n color.NRGBA) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(n.R) / 255,
		float32(n.G) / 255,
		float32(n.B) / 255,
		float32(n.A) / 255,
	}
}

// Vec4ToNRGBA quantizes a normalized RGBA value to 8 bits per channel, clamping
// out-of-range channels and rounding to the nearest representable value.
//
// Parameters:
//   - c: the normalized color
//
// Returns:
//   - color.NRGBA: the quantized color
func Vec4ToNRGBA(c mgl32.Vec4) color.NRGBA {
	q := func(v float32) uint8 {
		return uint8(Clamp01(v)*255 + 0.5)
	}
	return color.NRGBA{R: q(c[0]), G: q(c[1]), B: q(c[2]), A: q(c[3])}
}

package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Fragments holds the interpolated vertex outputs for every pixel of a draw:
// the material UV, the lightmap UV and whether the pixel is covered at all.
// It is the hand-off from whatever rasterized the geometry to the material evaluators.
type Fragments struct {
	Width, Height int

	UV         []mgl32.Vec2
	LightmapUV []mgl32.Vec2

	// Coverage marks covered pixels. A nil slice covers every pixel.
	Coverage []bool
}

// NewFragments allocates an uncovered fragment buffer.
//
// Parameters:
//   - width: buffer width in pixels
//   - height: buffer height in pixels
//
// Returns:
//   - *Fragments: a buffer with zero UVs and no coverage
func NewFragments(width, height int) *Fragments {
	n := max(width, 0) * max(height, 0)
	return &Fragments{
		Width:      width,
		Height:     height,
		UV:         make([]mgl32.Vec2, n),
		LightmapUV: make([]mgl32.Vec2, n),
		Coverage:   make([]bool, n),
	}
}

// NewPlaneFragments covers the whole buffer with a screen-aligned quad whose
// UVs are sampled at pixel centers.
//
// Parameters:
//   - width: buffer width in pixels
//   - height: buffer height in pixels
//   - uvRepeat: how many times the material UV range [0, 1] spans the quad
//   - lightmapRepeat: the same for the lightmap UV
//
// Returns:
//   - *Fragments: the fully covered buffer
func NewPlaneFragments(width, height int, uvRepeat, lightmapRepeat float32) *Fragments {
	f := NewFragments(width, height)
	f.Coverage = nil
	for y := range height {
		v := (float32(y) + 0.5) / float32(height)
		for x := range width {
			u := (float32(x) + 0.5) / float32(width)
			i := y*width + x
			f.UV[i] = mgl32.Vec2{u * uvRepeat, v * uvRepeat}
			f.LightmapUV[i] = mgl32.Vec2{u * lightmapRepeat, v * lightmapRepeat}
		}
	}
	return f
}

// Set covers a pixel with the given interpolants.
func (f *Fragments) Set(x, y int, uv, lightmapUV mgl32.Vec2) {
	i := y*f.Width + x
	f.UV[i] = uv
	f.LightmapUV[i] = lightmapUV
	if f.Coverage != nil {
		f.Coverage[i] = true
	}
}

// Covered reports whether the pixel takes part in the draw.
func (f *Fragments) Covered(x, y int) bool {
	return f.Coverage == nil || f.Coverage[y*f.Width+x]
}

// At returns the evaluator input for a pixel.
func (f *Fragments) At(x, y int) material.PixelContext {
	i := y*f.Width + x
	return material.PixelContext{UV: f.UV[i], LightmapUV: f.LightmapUV[i]}
}

func (f *Fragments) check(width, height int) error {
	if f == nil {
		return fmt.Errorf("%w: no fragments", ErrFragmentsMismatch)
	}
	if f.Width != width || f.Height != height {
		return fmt.Errorf("%w: fragments are %dx%d, target is %dx%d", ErrFragmentsMismatch, f.Width, f.Height, width, height)
	}
	n := width * height
	if len(f.UV) != n || len(f.LightmapUV) != n || (f.Coverage != nil && len(f.Coverage) != n) {
		return fmt.Errorf("%w: buffers do not hold %d pixels", ErrFragmentsMismatch, n)
	}
	return nil
}

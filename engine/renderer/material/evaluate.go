package material

import (
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// PixelContext holds the interpolated coordinates of one pixel.
type PixelContext struct {
	UV         mgl32.Vec2 // base and detail coordinates
	LightmapUV mgl32.Vec2
}

// EnvironmentLayers are the five material layers of a shader_environment material.
type EnvironmentLayers struct {
	Base            texture.Layer
	PrimaryDetail   texture.Layer
	SecondaryDetail texture.Layer
	MicroDetail     texture.Layer
	Bump            texture.Layer
}

// EvaluateSimple shades a simple_texture pixel: the base color modulated by the lightmap, fully opaque.
//
// Parameters:
//   - base: the base color layer
//   - lightmap: the lightmap layer
//   - px: the pixel coordinates
//
// Returns:
//   - mgl32.Vec4: the opaque pixel color
func EvaluateSimple(base, lightmap texture.Layer, px PixelContext) mgl32.Vec4 {
	c := base.Sample(px.UV)
	l := lightmap.Sample(px.LightmapUV)
	return mgl32.Vec4{c[0] * l[0], c[1] * l[1], c[2] * l[2], 1}
}

// EvaluateSolid shades a solid_color pixel: the color as given, alpha included, with no lighting.
func EvaluateSolid(c GPUSolidColor) mgl32.Vec4 {
	return c.Color
}

// DetailWeights splits detail coverage between the primary and secondary detail maps.
// The two weights always sum to one.
//
// Parameters:
//   - baseAlpha: the alpha of the base map sample
//
// Returns:
//   - primary: the opacity applied to the primary detail map
//   - secondary: the opacity applied to the secondary detail map
func DetailWeights(baseAlpha float32) (primary, secondary float32) {
	return baseAlpha, 1 - baseAlpha
}

// Discards reports whether an alpha-tested material culls a pixel with the given base and bump alphas.
func (g *GPUEnvironmentParams) Discards(baseAlpha, bumpAlpha float32) bool {
	return g.AlphaTested() && (baseAlpha <= 0 || bumpAlpha <= 0)
}

// EvaluateEnvironment shades a shader_environment pixel.
//
// The base map is sampled at px.UV and the bump map at px.UV scaled by the bump scale. When the
// material is alpha tested and either alpha is not positive the pixel is discarded. Otherwise the
// detail maps, each sampled at its own scale, are folded onto the base color in order: primary
// weighted by base alpha, secondary weighted by its complement, then micro weighted by its own
// alpha. The result is modulated by the lightmap and made opaque.
//
// Parameters:
//   - layers: the material layers
//   - params: the material parameter block
//   - lightmap: the lightmap layer
//   - px: the pixel coordinates
//
// Returns:
//   - mgl32.Vec4: the opaque pixel color, zero when discarded
//   - bool: false when the pixel is discarded and nothing must be written
func EvaluateEnvironment(layers EnvironmentLayers, params GPUEnvironmentParams, lightmap texture.Layer, px PixelContext) (mgl32.Vec4, bool) {
	base := layers.Base.Sample(px.UV)
	bump := layers.Bump.Sample(px.UV.Mul(params.BumpMapScale))
	if params.Discards(base[3], bump[3]) {
		return mgl32.Vec4{}, false
	}

	primary := layers.PrimaryDetail.Sample(px.UV.Mul(params.PrimaryDetailMapScale))
	secondary := layers.SecondaryDetail.Sample(px.UV.Mul(params.SecondaryDetailMapScale))
	micro := layers.MicroDetail.Sample(px.UV.Mul(params.MicroDetailMapScale))
	light := lightmap.Sample(px.LightmapUV)

	primaryWeight, secondaryWeight := DetailWeights(base[3])
	scratch := Blend(base, primary, params.DetailMapFunction, primaryWeight)
	scratch = Blend(scratch, secondary, params.DetailMapFunction, secondaryWeight)
	scratch = Blend(scratch, micro, params.MicroDetailMapFunction, micro[3])

	return mgl32.Vec4{scratch[0] * light[0], scratch[1] * light[1], scratch[2] * light[2], 1}, true
}

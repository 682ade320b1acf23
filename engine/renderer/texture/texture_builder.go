package texture

import (
	"image"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/go-gl/mathgl/mgl32"
)

// textureBuilder collects pixel sources before a texture is created.
type textureBuilder struct {
	name string
	img  *image.NRGBA
	err  error
}

// TextureBuilderOption is a function that configures a texture during construction.
type TextureBuilderOption func(*textureBuilder)

// WithName sets the identifier of the texture.
//
// Parameters:
//   - name: the texture name
//
// Returns:
//   - TextureBuilderOption: a function that applies the name
func WithName(name string) TextureBuilderOption {
	return func(b *textureBuilder) {
		b.name = name
	}
}

// WithImage uses an in-memory image as the pixel source.
//
// Parameters:
//   - img: the source image, converted to NRGBA when needed
//
// Returns:
//   - TextureBuilderOption: a function that applies the image
func WithImage(img image.Image) TextureBuilderOption {
	return func(b *textureBuilder) {
		if img == nil {
			return
		}
		b.img = common.ToNRGBA(img)
	}
}

// WithSolidColor fills a width x height texture with one color.
//
// Parameters:
//   - c: the RGBA color in [0, 1]
//   - width: the width in pixels
//   - height: the height in pixels
//
// Returns:
//   - TextureBuilderOption: a function that applies the fill
func WithSolidColor(c mgl32.Vec4, width, height int) TextureBuilderOption {
	return func(b *textureBuilder) {
		if width <= 0 || height <= 0 {
			return
		}
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		px := common.Vec4ToNRGBA(c)
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = px.R
			img.Pix[i+1] = px.G
			img.Pix[i+2] = px.B
			img.Pix[i+3] = px.A
		}
		b.img = img
	}
}

// WithImportedTexture decodes an imported texture as the pixel source.
// Decode failures are reported by NewTexture.
//
// Parameters:
//   - imported: the texture reference to decode
//
// Returns:
//   - TextureBuilderOption: a function that applies the decoded image
func WithImportedTexture(imported *common.ImportedTexture) TextureBuilderOption {
	return func(b *textureBuilder) {
		img, err := imported.Decode()
		if err != nil {
			b.err = err
			return
		}
		b.img = img
	}
}

package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	// ErrEmptyTexture is returned when a texture would have zero width or height.
	ErrEmptyTexture = errors.New("texture has no pixels")

	// ErrInvalidProcedural is returned when a procedural texture expression cannot be parsed.
	ErrInvalidProcedural = errors.New("invalid procedural texture")
)

// texture is the implementation of the Texture interface.
// Pixels are stored twice: the NRGBA source for export and a normalized float copy for sampling.
type texture struct {
	id     uuid.UUID
	name   string
	img    *image.NRGBA
	texels []mgl32.Vec4
}

// Texture is a decoded, read-only 2D image that material layers sample from.
// A Texture is safe for concurrent reads from any number of goroutines.
type Texture interface {
	// ID returns the unique asset id assigned at creation.
	//
	// Returns:
	//   - uuid.UUID: the texture id
	ID() uuid.UUID

	// Name returns the texture's identifier, typically the path it was loaded from.
	//
	// Returns:
	//   - string: the texture name
	Name() string

	// Width returns the width of the texture in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height returns the height of the texture in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int

	// At returns the normalized straight-alpha texel at integer coordinates.
	// Coordinates must be within [0, Width) x [0, Height).
	//
	// Parameters:
	//   - x: the column
	//   - y: the row, 0 at the top of the image
	//
	// Returns:
	//   - mgl32.Vec4: the texel as RGBA in [0, 1]
	At(x, y int) mgl32.Vec4

	// Image returns the underlying NRGBA image. Callers must not modify it.
	//
	// Returns:
	//   - *image.NRGBA: the source image
	Image() *image.NRGBA

	// Staging returns the pixels in the RGBA8 layout a GPU host uploads.
	//
	// Returns:
	//   - common.TextureStagingData: the staged pixel data
	Staging() common.TextureStagingData
}

var _ Texture = &texture{}

// NewTexture creates a Texture configured with the provided options.
// One of WithImage, WithSolidColor or WithImportedTexture must supply the pixels.
//
// Parameters:
//   - options: variadic list of TextureBuilderOption functions
//
// Returns:
//   - Texture: the new texture
//   - error: ErrEmptyTexture if no pixels were supplied, or a decode error
func NewTexture(options ...TextureBuilderOption) (Texture, error) {
	b := &textureBuilder{}
	for _, opt := range options {
		opt(b)
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.img == nil || b.img.Rect.Empty() {
		return nil, fmt.Errorf("texture %q: %w", b.name, ErrEmptyTexture)
	}

	t := &texture{
		id:   uuid.New(),
		name: b.name,
		img:  b.img,
	}
	t.texels = normalize(t.img)
	return t, nil
}

// NewTextureFromImage wraps any image as a Texture, converting it to NRGBA when needed.
//
// Parameters:
//   - name: the texture identifier
//   - img: the source image
//
// Returns:
//   - Texture: the new texture
//   - error: ErrEmptyTexture if img has no pixels
func NewTextureFromImage(name string, img image.Image) (Texture, error) {
	return NewTexture(WithName(name), WithImage(img))
}

// NewSolidTexture creates a 1x1 texture holding a single normalized color.
//
// Parameters:
//   - name: the texture identifier
//   - c: the RGBA color in [0, 1]
//
// Returns:
//   - Texture: the new texture
func NewSolidTexture(name string, c mgl32.Vec4) Texture {
	t, _ := NewTexture(WithName(name), WithSolidColor(c, 1, 1))
	return t
}

// LoadTexture decodes an image file from disk into a Texture named after its path.
//
// Parameters:
//   - path: the image file path (PNG, JPEG, BMP, TIFF or WebP)
//
// Returns:
//   - Texture: the decoded texture
//   - error: error if the file cannot be read or decoded
func LoadTexture(path string) (Texture, error) {
	return NewTexture(WithName(path), WithImportedTexture(&common.ImportedTexture{Name: path, Path: path}))
}

func (t *texture) ID() uuid.UUID {
	return t.id
}

func (t *texture) Name() string {
	return t.name
}

func (t *texture) Width() int {
	return t.img.Rect.Dx()
}

func (t *texture) Height() int {
	return t.img.Rect.Dy()
}

func (t *texture) At(x, y int) mgl32.Vec4 {
	return t.texels[y*t.img.Rect.Dx()+x]
}

func (t *texture) Image() *image.NRGBA {
	return t.img
}

func (t *texture) Staging() common.TextureStagingData {
	// NRGBA already stores straight-alpha RGBA8 rows; only the stride may differ.
	w, h := t.Width(), t.Height()
	pixels := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		off := y * t.img.Stride
		pixels = append(pixels, t.img.Pix[off:off+w*4]...)
	}
	return common.TextureStagingData{
		Pixels: pixels,
		Width:  uint32(w),
		Height: uint32(h),
	}
}

func normalize(img *image.NRGBA) []mgl32.Vec4 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	texels := make([]mgl32.Vec4, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
			texels[y*w+x] = common.NRGBAToVec4(color.NRGBA{
				R: img.Pix[off],
				G: img.Pix[off+1],
				B: img.Pix[off+2],
				A: img.Pix[off+3],
			})
		}
	}
	return texels
}

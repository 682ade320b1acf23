// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending upload to a GPU host.
// The CPU renderer never needs it; it is the hand-off format for external consumers of a bind group.
type TextureStagingData struct {
	// Pixels is the straight-alpha RGBA8 pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData describes how a texture binding is sampled.
// The CPU sampler honours the address modes and the filters; the LOD and anisotropy fields
// are carried for GPU hosts since textures here have a single mip level.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// DefaultSampler returns the repeat/linear sampler with no mipmapping that every material
// binding uses unless its definition overrides it.
//
// Returns:
//   - SamplerStagingData: the default sampler description
func DefaultSampler() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   0,
		MaxAnisotropy: 1,
	}
}

// ImportedTexture references image data on disk or in memory before it is decoded.
// For embedded data the Data field holds the raw encoded bytes; otherwise Path is read.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "base_map").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw encoded image bytes for embedded textures.
	Data []byte

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int

	// SamplerData overrides the default sampler when non-nil.
	SamplerData *SamplerStagingData
}

// Decode decodes the texture into straight-alpha NRGBA pixels.
// PNG, JPEG, BMP, TIFF and WebP are supported.
//
// Returns:
//   - *image.NRGBA: the decoded image with bounds starting at (0, 0)
//   - error: error if the source is missing or decoding fails
func (t *ImportedTexture) Decode() (*image.NRGBA, error) {
	if t == nil {
		return nil, errors.New("texture is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(t.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image %q: %w", t.Name, err)
		}
	case t.Path != "":
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return nil, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	default:
		return nil, errors.New("texture has neither data nor path")
	}

	nrgba := ToNRGBA(img)
	t.Width = nrgba.Rect.Dx()
	t.Height = nrgba.Rect.Dy()
	return nrgba, nil
}

// ToNRGBA converts any image into a zero-origin *image.NRGBA, returning img itself
// when it already has that form.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - *image.NRGBA: the converted image
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(dst, dst.Rect, img, bounds.Min, xdraw.Src)
	return dst
}

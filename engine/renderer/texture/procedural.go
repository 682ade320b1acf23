package texture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// maxProceduralSize bounds the width and height of a procedural texture.
const maxProceduralSize = 4096

// ProceduralSpec is a parsed procedural texture expression of the form
// "#(argb,W,H,MIP)color(r,g,b,a[,tag])".
type ProceduralSpec struct {
	Format string
	Width  int
	Height int
	Mip    int
	Color  mgl32.Vec4
	Tag    string
}

// IsProcedural reports whether raw is a procedural texture expression rather than a path.
func IsProcedural(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "#(")
}

// ParseProceduralSpec parses a procedural texture expression.
// Only the color function is supported; channel values outside [0, 1] are rejected.
//
// Parameters:
//   - raw: the expression
//
// Returns:
//   - ProceduralSpec: the parsed expression
//   - error: an error wrapping ErrInvalidProcedural describing the first problem found
func ParseProceduralSpec(raw string) (ProceduralSpec, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "#(") {
		return ProceduralSpec{}, fmt.Errorf("%w: %q does not start with #(", ErrInvalidProcedural, raw)
	}

	closeIdx := strings.Index(raw, ")")
	if closeIdx < 0 {
		return ProceduralSpec{}, fmt.Errorf("%w: %q has an unterminated header", ErrInvalidProcedural, raw)
	}
	head := splitArgs(raw[2:closeIdx])
	if len(head) != 4 {
		return ProceduralSpec{}, fmt.Errorf("%w: header needs format,width,height,mip, got %d fields", ErrInvalidProcedural, len(head))
	}

	spec := ProceduralSpec{Format: strings.ToLower(head[0])}
	if spec.Format != "argb" && spec.Format != "rgba" {
		return ProceduralSpec{}, fmt.Errorf("%w: unsupported format %q", ErrInvalidProcedural, head[0])
	}
	dims := []*int{&spec.Width, &spec.Height, &spec.Mip}
	for i, dst := range dims {
		n, err := strconv.Atoi(head[i+1])
		if err != nil {
			return ProceduralSpec{}, fmt.Errorf("%w: header field %d: %v", ErrInvalidProcedural, i+1, err)
		}
		*dst = n
	}
	if spec.Width <= 0 || spec.Height <= 0 || spec.Width > maxProceduralSize || spec.Height > maxProceduralSize {
		return ProceduralSpec{}, fmt.Errorf("%w: size %dx%d out of range", ErrInvalidProcedural, spec.Width, spec.Height)
	}

	body := strings.TrimSpace(raw[closeIdx+1:])
	open := strings.Index(body, "(")
	end := strings.LastIndex(body, ")")
	if open <= 0 || end <= open {
		return ProceduralSpec{}, fmt.Errorf("%w: missing function call after header", ErrInvalidProcedural)
	}
	if fn := strings.ToLower(strings.TrimSpace(body[:open])); fn != "color" {
		return ProceduralSpec{}, fmt.Errorf("%w: unsupported function %q", ErrInvalidProcedural, fn)
	}

	args := splitArgs(body[open+1 : end])
	if len(args) != 4 && len(args) != 5 {
		return ProceduralSpec{}, fmt.Errorf("%w: color takes 4 or 5 arguments, got %d", ErrInvalidProcedural, len(args))
	}
	for i := 0; i < 4; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return ProceduralSpec{}, fmt.Errorf("%w: color argument %d: %v", ErrInvalidProcedural, i, err)
		}
		if f < 0 || f > 1 {
			return ProceduralSpec{}, fmt.Errorf("%w: color argument %d = %g outside [0, 1]", ErrInvalidProcedural, i, f)
		}
		spec.Color[i] = float32(f)
	}
	if len(args) == 5 {
		spec.Tag = args[4]
	}
	return spec, nil
}

// ParseProcedural parses a procedural texture expression and builds the texture it describes.
// The color arguments are always in r,g,b,a order regardless of the declared format.
//
// Parameters:
//   - raw: the expression, e.g. "#(argb,8,8,3)color(0.5,0.5,0.5,1,co)"
//
// Returns:
//   - Texture: a solid texture of the declared size, named after raw
//   - error: an error wrapping ErrInvalidProcedural
func ParseProcedural(raw string) (Texture, error) {
	spec, err := ParseProceduralSpec(raw)
	if err != nil {
		return nil, err
	}
	return NewTexture(WithName(strings.TrimSpace(raw)), WithSolidColor(spec.Color, spec.Width, spec.Height))
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

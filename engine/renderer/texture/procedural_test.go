package texture

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProceduralSpec(t *testing.T) {
	spec, err := ParseProceduralSpec(" #(argb,8,4,3)color(1,0,0,1,co) ")
	require.NoError(t, err)

	assert.Equal(t, "argb", spec.Format)
	assert.Equal(t, 8, spec.Width)
	assert.Equal(t, 4, spec.Height)
	assert.Equal(t, 3, spec.Mip)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, spec.Color)
	assert.Equal(t, "co", spec.Tag)
}

func TestParseProceduralSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"path", "textures/base.png"},
		{"unterminated header", "#(argb,8,8,3"},
		{"short header", "#(argb,8,8)color(1,1,1,1)"},
		{"bad format", "#(xyz,8,8,3)color(1,1,1,1)"},
		{"bad width", "#(argb,w,8,3)color(1,1,1,1)"},
		{"zero size", "#(argb,0,8,3)color(1,1,1,1)"},
		{"huge size", "#(argb,100000,8,3)color(1,1,1,1)"},
		{"no function", "#(argb,8,8,3)"},
		{"unknown function", "#(argb,8,8,3)fresnel(1,1)"},
		{"too few args", "#(argb,8,8,3)color(1,1,1)"},
		{"non numeric", "#(argb,8,8,3)color(1,x,1,1)"},
		{"out of range", "#(argb,8,8,3)color(1,1,2,1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProceduralSpec(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidProcedural)
		})
	}
}

func TestParseProcedural(t *testing.T) {
	assert.True(t, IsProcedural("#(argb,8,8,3)color(0,0,1,1)"))
	assert.False(t, IsProcedural("base.png"))

	tex, err := ParseProcedural("#(argb,2,3,0)color(0,0,1,1)")
	require.NoError(t, err)
	assert.Equal(t, 2, tex.Width())
	assert.Equal(t, 3, tex.Height())
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, tex.At(1, 2))
}

package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWritesPreview(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "red.yaml")
	require.NoError(t, os.WriteFile(def, []byte(`
type: shader_environment
base_map: "#(argb,4,4,1)color(1,0,0,1)"
`), 0o644))

	cfg := config{
		material:       def,
		lightmap:       "#(argb,1,1,1)color(0.5,0.5,0.5,1)",
		width:          16,
		height:         8,
		uvRepeat:       2,
		lightmapRepeat: 1,
		out:            filepath.Join(dir, "out.png"),
		workers:        2,
		tile:           4,
		scale:          2,
	}
	require.NoError(t, run(context.Background(), cfg, common.NewNopLogger()))

	f, err := os.Open(cfg.out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
	r, g, b, a := img.At(5, 5).RGBA()
	assert.InDelta(t, 0x8080, r, 0x101)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	err := run(context.Background(), config{material: filepath.Join(dir, "absent.yaml"), width: 4, height: 4, out: out}, common.NewNopLogger())
	assert.Error(t, err)

	err = run(context.Background(), config{material: "x.yaml", width: 0, height: 4, out: out}, common.NewNopLogger())
	assert.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

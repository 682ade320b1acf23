// Command envmat-preview renders a material definition onto a full-screen plane and writes a PNG.
//
//	envmat-preview -material assets/wall.yaml -lightmap assets/room_lm.png -out wall.png
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"runtime"

	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/loader"
	"github.com/Carmen-Shannon/oxy-envmat/engine/profiler"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
)

type config struct {
	material       string
	lightmap       string
	width, height  int
	uvRepeat       float64
	lightmapRepeat float64
	out            string
	workers        int
	tile           int
	scale          int
	strict         bool
	debug          bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.material, "material", "", "material definition file (.yaml)")
	flag.StringVar(&cfg.lightmap, "lightmap", "", "lightmap image or procedural texture; opaque white when empty")
	flag.IntVar(&cfg.width, "width", 512, "output width in pixels")
	flag.IntVar(&cfg.height, "height", 512, "output height in pixels")
	flag.Float64Var(&cfg.uvRepeat, "uv-repeat", 1, "material UV tiling across the plane")
	flag.Float64Var(&cfg.lightmapRepeat, "lightmap-repeat", 1, "lightmap UV tiling across the plane")
	flag.StringVar(&cfg.out, "out", "preview.png", "output PNG path")
	flag.IntVar(&cfg.workers, "workers", max(runtime.NumCPU()-1, 1), "tile workers")
	flag.IntVar(&cfg.tile, "tile", renderer.DefaultTileSize, "tile edge in pixels")
	flag.IntVar(&cfg.scale, "scale", 1, "nearest-neighbor upscale factor applied to the output")
	flag.BoolVar(&cfg.strict, "strict", false, "reject materials with unrecognized blend codes")
	flag.BoolVar(&cfg.debug, "debug", false, "enable debug logging")
	flag.Parse()

	logger := common.NewDefaultLogger("Preview", cfg.debug)
	if cfg.material == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := 0
	if err := run(ctx, cfg, logger); err != nil {
		logger.Errorf("%v", err)
		code = 1
	}
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config, logger common.Logger) error {
	if cfg.width <= 0 || cfg.height <= 0 {
		return fmt.Errorf("invalid size %dx%d", cfg.width, cfg.height)
	}

	lib := loader.NewLoader(loader.BackendTypeYAML,
		loader.WithLogger(logger),
		loader.WithValidateOptions(&material.ValidateOptions{StrictBlendModes: cfg.strict}),
	)
	mat, err := lib.LoadMaterialFile(cfg.material)
	if err != nil {
		return err
	}
	if cfg.lightmap != "" {
		if _, err := lib.LoadTexture(cfg.lightmap); err != nil {
			return err
		}
		if err := lib.SetCurrentLightmap(cfg.lightmap); err != nil {
			return err
		}
	}

	pipelines, err := pipeline.NewBuiltinPipelines()
	if err != nil {
		return err
	}
	opts := []renderer.RendererBuilderOption{
		renderer.WithWorkers(cfg.workers),
		renderer.WithTileSize(cfg.tile),
		renderer.WithLogger(logger),
		renderer.WithPipelines(pipelines...),
	}
	if cfg.debug {
		opts = append(opts, renderer.WithProfiler(profiler.NewProfiler(profiler.WithLogger(logger))))
	}
	r := renderer.NewRenderer(renderer.BackendTypeCPU, cfg.width, cfg.height, opts...)
	defer r.Close()

	p := r.Pipeline(mat.PipelineKey())
	if p == nil {
		return fmt.Errorf("%w: %q", renderer.ErrUnknownPipeline, mat.PipelineKey())
	}
	fs := p.Shader(shader.ShaderTypeFragment)
	lightmapGroup, err := lib.BindLightmap(fs)
	if err != nil {
		return err
	}
	materialGroup, err := lib.BindMaterial(mat, fs)
	if err != nil {
		return err
	}

	frags := renderer.NewPlaneFragments(cfg.width, cfg.height, float32(cfg.uvRepeat), float32(cfg.lightmapRepeat))
	r.BeginFrame(mgl32.Vec4{0, 0, 0, 1})
	if err := r.DrawCall(ctx, mat.PipelineKey(), frags, []bind_group_provider.BindGroupProvider{lightmapGroup, materialGroup}); err != nil {
		return err
	}
	var img image.Image = r.EndFrame()

	if cfg.scale > 1 {
		b := img.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*cfg.scale, b.Dy()*cfg.scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}

	if err := writePNG(cfg.out, img); err != nil {
		return err
	}

	stats := r.Stats()
	logger.Infof("wrote %s (%dx%d): %d pixels evaluated, %d discarded, %d tiles",
		cfg.out, img.Bounds().Dx(), img.Bounds().Dy(), stats.PixelsEvaluated, stats.PixelsDiscarded, stats.Tiles)
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

package renderer

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-envmat/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// laneQueueSize bounds each lane's task queue. A draw submits one task per lane.
const laneQueueSize = 4

// bindingPlan records where a pipeline's fragment shader expects each resource.
type bindingPlan struct {
	layouts  map[int]wgpu.BindGroupLayoutDescriptor
	lightmap map[shader.AnnotationArg]shader.Slot
	material map[shader.AnnotationArg]shader.Slot
	params   *shader.Slot
	color    *shader.Slot
}

// cpuRendererBackend renders into a float color target. Draws are split into
// square tiles that the lanes claim one at a time; each tile is owned by one lane.
// Every lane is a single-worker pool so Close can stop each worker by id.
type cpuRendererBackend struct {
	mu sync.Mutex

	width, height int
	target        []mgl32.Vec4
	tileSize      int

	lanes  []worker.DynamicWorkerPool
	plans  map[string]*bindingPlan
	logger common.Logger

	frames, draws, tiles          atomic.Uint64
	evaluated, discarded, written atomic.Uint64
}

var _ RendererBackend = &cpuRendererBackend{}

func newCPURendererBackend(workers, tileSize int, logger common.Logger) *cpuRendererBackend {
	lanes := make([]worker.DynamicWorkerPool, max(workers, 1))
	for i := range lanes {
		lanes[i] = worker.NewDynamicWorkerPool(1, laneQueueSize, time.Second)
	}
	return &cpuRendererBackend{
		tileSize: tileSize,
		lanes:    lanes,
		plans:    make(map[string]*bindingPlan),
		logger:   logger,
	}
}

func (b *cpuRendererBackend) RegisterPipeline(p pipeline.Pipeline) error {
	fs := p.Shader(shader.ShaderTypeFragment)
	if fs == nil {
		return fmt.Errorf("pipeline %q has no fragment shader", p.PipelineKey())
	}
	plan := &bindingPlan{
		layouts:  fs.BindGroupLayoutDescriptors(),
		lightmap: fs.ProviderSlots(shader.AnnotationArgLightmap),
		material: fs.ProviderSlots(shader.AnnotationArgMaterial),
	}
	if slot, ok := fs.StructSlot(shader.AnnotationArgEnvironmentParams); ok {
		plan.params = &slot
	}
	if slot, ok := fs.StructSlot(shader.AnnotationArgSolidColor); ok {
		plan.color = &slot
	}
	switch p.MaterialType() {
	case material.TypeSolidColor:
		if plan.color == nil {
			return fmt.Errorf("pipeline %q: fragment shader declares no solid_color binding", p.PipelineKey())
		}
	default:
		if _, ok := plan.material[shader.AnnotationArgBaseMap]; !ok {
			return fmt.Errorf("pipeline %q: fragment shader declares no base_map binding", p.PipelineKey())
		}
	}

	b.mu.Lock()
	b.plans[p.PipelineKey()] = plan
	b.mu.Unlock()
	b.logger.Debugf("registered pipeline %q (%s, %d bind groups)", p.PipelineKey(), p.MaterialType(), len(plan.layouts))
	return nil
}

func (b *cpuRendererBackend) Configure(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = max(width, 0), max(height, 0)
	b.target = make([]mgl32.Vec4, b.width*b.height)
}

func (b *cpuRendererBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *cpuRendererBackend) BeginFrame(clearColor mgl32.Vec4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	clearColor = common.Saturate4(clearColor)
	for i := range b.target {
		b.target[i] = clearColor
	}
}

func (b *cpuRendererBackend) DrawCall(ctx context.Context, p pipeline.Pipeline, fragments *Fragments, bindGroups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	plan, ok := b.plans[p.PipelineKey()]
	if !ok {
		return fmt.Errorf("%w: %q was not registered with the backend", ErrUnknownPipeline, p.PipelineKey())
	}
	if err := fragments.check(b.width, b.height); err != nil {
		return err
	}
	eval, err := b.evaluator(p, plan, bindGroups)
	if err != nil {
		return fmt.Errorf("draw %q: %w", p.PipelineKey(), err)
	}

	var rects []image.Rectangle
	for y0 := 0; y0 < b.height; y0 += b.tileSize {
		for x0 := 0; x0 < b.width; x0 += b.tileSize {
			rects = append(rects, image.Rect(x0, y0, min(x0+b.tileSize, b.width), min(y0+b.tileSize, b.height)))
		}
	}

	var evaluated, discarded, written, tiles atomic.Uint64
	var next atomic.Int64
	var wg sync.WaitGroup
	for id, lane := range b.lanes {
		wg.Add(1)
		lane.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for {
					n := int(next.Add(1) - 1)
					if n >= len(rects) || ctx.Err() != nil {
						return nil, ctx.Err()
					}
					rect := rects[n]
					var e, d, w uint64
					for y := rect.Min.Y; y < rect.Max.Y; y++ {
						for x := rect.Min.X; x < rect.Max.X; x++ {
							if !fragments.Covered(x, y) {
								continue
							}
							e++
							c, keep := eval(fragments.At(x, y))
							if !keep {
								d++
								continue
							}
							i := y*b.width + x
							b.target[i] = p.Combine(c, b.target[i])
							w++
						}
					}
					evaluated.Add(e)
					discarded.Add(d)
					written.Add(w)
					tiles.Add(1)
				}
			},
		})
	}
	wg.Wait()

	b.draws.Add(1)
	b.tiles.Add(tiles.Load())
	b.evaluated.Add(evaluated.Load())
	b.discarded.Add(discarded.Load())
	b.written.Add(written.Load())
	b.logger.Debugf("draw %q: %d/%d tiles, %d evaluated, %d discarded", p.PipelineKey(), tiles.Load(), len(rects), evaluated.Load(), discarded.Load())

	return ctx.Err()
}

// evaluator resolves the draw's resources once and returns the per-pixel function.
func (b *cpuRendererBackend) evaluator(p pipeline.Pipeline, plan *bindingPlan, groups []bind_group_provider.BindGroupProvider) (func(material.PixelContext) (mgl32.Vec4, bool), error) {
	for g, layout := range plan.layouts {
		if g >= len(groups) || groups[g] == nil {
			return nil, fmt.Errorf("%w: group %d", ErrMissingBindGroup, g)
		}
		if err := groups[g].Validate(layout); err != nil {
			return nil, err
		}
	}

	lightmap := texture.NewLayer(texture.DefaultLightmapTexture())
	if tex, ok := plan.lightmap[shader.AnnotationArgLightmapTexture]; ok {
		lightmap = layerAt(groups, tex, plan.lightmap[shader.AnnotationArgLightmapSampler])
	}
	smp := plan.material[shader.AnnotationArgMaterialSampler]
	layer := func(role material.TextureRole) texture.Layer {
		slot, ok := plan.material[shader.AnnotationArg(role)]
		if !ok {
			return texture.NewLayer(role.Fallback())
		}
		return layerAt(groups, slot, smp)
	}

	switch p.MaterialType() {
	case material.TypeSimpleTexture:
		base := layer(material.RoleBaseMap)
		return func(px material.PixelContext) (mgl32.Vec4, bool) {
			return material.EvaluateSimple(base, lightmap, px), true
		}, nil
	case material.TypeShaderEnvironment:
		params := material.DefaultEnvironmentParams()
		if plan.params != nil {
			var err error
			params, err = material.UnmarshalGPUEnvironmentParams(groups[plan.params.Group].Buffer(plan.params.Binding))
			if err != nil {
				return nil, err
			}
		}
		layers := material.EnvironmentLayers{
			Base:            layer(material.RoleBaseMap),
			PrimaryDetail:   layer(material.RolePrimaryDetailMap),
			SecondaryDetail: layer(material.RoleSecondaryDetailMap),
			MicroDetail:     layer(material.RoleMicroDetailMap),
			Bump:            layer(material.RoleBumpMap),
		}
		return func(px material.PixelContext) (mgl32.Vec4, bool) {
			return material.EvaluateEnvironment(layers, params, lightmap, px)
		}, nil
	case material.TypeSolidColor:
		c, err := material.UnmarshalGPUSolidColor(groups[plan.color.Group].Buffer(plan.color.Binding))
		if err != nil {
			return nil, err
		}
		return func(material.PixelContext) (mgl32.Vec4, bool) {
			return material.EvaluateSolid(c), true
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", material.ErrUnknownMaterialType, p.MaterialType())
	}
}

func layerAt(groups []bind_group_provider.BindGroupProvider, tex, smp shader.Slot) texture.Layer {
	l := groups[tex.Group].Layer(tex.Binding, -1)
	if smp.Group < len(groups) && groups[smp.Group] != nil {
		if s, ok := groups[smp.Group].Sampler(smp.Binding); ok {
			l.Sampler = s
		}
	}
	return l
}

func (b *cpuRendererBackend) EndFrame() *image.NRGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := range b.height {
		for x := range b.width {
			img.SetNRGBA(x, y, common.Vec4ToNRGBA(b.target[y*b.width+x]))
		}
	}
	b.frames.Add(1)
	return img
}

func (b *cpuRendererBackend) Stats() Stats {
	return Stats{
		Frames:          b.frames.Load(),
		Draws:           b.draws.Load(),
		Tiles:           b.tiles.Load(),
		PixelsEvaluated: b.evaluated.Load(),
		PixelsDiscarded: b.discarded.Load(),
		PixelsWritten:   b.written.Load(),
	}
}

func (b *cpuRendererBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, lane := range b.lanes {
		lane.Stop()
	}
	b.lanes = nil
	b.target = nil
	b.width, b.height = 0, 0
	b.plans = make(map[string]*bindingPlan)
}

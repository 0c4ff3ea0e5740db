// Package renderer turns a scene into an image by splitting it into tiles
// that are rendered in parallel and merged into a single ImageBlock.
package renderer

import (
	"context"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-tiled-renderer/pkg/core"
	"github.com/df07/go-tiled-renderer/pkg/log"
)

var logger = log.New("renderer")

// Options configures the tiled scheduler
type Options struct {
	Workers   int       // Parallel workers; zero selects runtime.NumCPU()
	BlockSize int       // Tile edge length in pixels; zero selects DefaultBlockSize
	Traversal Traversal // Order in which tiles are issued

	// Progress, if set, is called after each merged tile with the number of
	// merged tiles and the total. Calls are serialized.
	Progress func(done, total int)
}

// DefaultOptions returns options using every CPU and 32 pixel spiral tiles
func DefaultOptions() Options {
	return Options{
		Workers:   runtime.NumCPU(),
		BlockSize: DefaultBlockSize,
		Traversal: TraversalSpiral,
	}
}

func (o Options) normalized() (Options, error) {
	if o.BlockSize < 0 {
		return o, ErrInvalidBlockSize
	}
	if o.BlockSize == 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o, nil
}

// CustomRenderer is implemented by integrators that need to own the render
// loop, e.g. to run several passes. Render receives the preprocessed scene and
// the empty result block; it may call RenderTiles for its final pass.
type CustomRenderer interface {
	Render(ctx context.Context, scene core.Scene, result *ImageBlock, opts Options) (Stats, error)
}

// Render preprocesses the scene and renders it into a new full-image block.
// Rendering stops early with ctx.Err() when ctx is cancelled.
func Render(ctx context.Context, scene core.Scene, opts Options) (*ImageBlock, Stats, error) {
	start := time.Now()

	camera := scene.GetCamera()
	if camera == nil {
		return nil, Stats{}, ErrNoCamera
	}
	integrator := scene.GetIntegrator()
	if integrator == nil {
		return nil, Stats{}, ErrNoIntegrator
	}
	if scene.GetSampler() == nil {
		return nil, Stats{}, ErrNoSampler
	}
	opts, err := opts.normalized()
	if err != nil {
		return nil, Stats{}, err
	}

	if p, ok := integrator.(core.Preprocessor); ok {
		logger.Infof("Preprocessing %T", integrator)
		if err := p.Preprocess(scene); err != nil {
			return nil, Stats{}, errors.Wrap(err, "preprocess")
		}
	}

	size := camera.OutputSize()
	result := NewImageBlock(image.Rectangle{Max: size}, camera.ReconstructionFilter())

	var stats Stats
	if cr, ok := integrator.(CustomRenderer); ok {
		logger.Infof("Integrator %T renders with its own loop", integrator)
		stats, err = cr.Render(ctx, scene, result, opts)
	} else {
		stats, err = RenderTiles(ctx, scene, result, opts)
	}
	stats.Elapsed = time.Since(start)
	if err != nil {
		return nil, stats, err
	}

	if stats.InvalidSamples > 0 {
		logger.Warningf("Integrator computed %d invalid radiance values; they were discarded", stats.InvalidSamples)
	}
	logger.Noticef("Rendered %dx%d in %v (%.0f samples/s)", size.X, size.Y,
		stats.Elapsed.Round(time.Millisecond), stats.SamplesPerSecond())
	return result, stats, nil
}

// RenderTiles runs the default tiled scheduler, estimating every pixel of the
// camera's image with the scene's integrator and merging into result.
// The output is identical for any number of workers.
func RenderTiles(ctx context.Context, scene core.Scene, result *ImageBlock, opts Options) (Stats, error) {
	opts, err := opts.normalized()
	if err != nil {
		return Stats{}, err
	}

	camera := scene.GetCamera()
	filter := camera.ReconstructionFilter()
	size := camera.OutputSize()
	generator := NewBlockGenerator(size, opts.BlockSize, opts.Traversal)
	total := generator.BlockCount()
	workers := min(opts.Workers, max(total, 1))

	logger.Infof("Rendering %d blocks of %dpx with %d workers (%v)", total, opts.BlockSize, workers, opts.Traversal)

	pool := sync.Pool{
		New: func() any {
			return NewImageBlock(image.Rect(0, 0, opts.BlockSize, opts.BlockSize), filter)
		},
	}
	merger := newOrderedMerger(result,
		func(b *ImageBlock) { pool.Put(b) },
		func(done int) {
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
			logger.Debugf("Merged block %d/%d", done, total)
		})

	workerStats := make([]WorkerStats, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		ws := &workerStats[w]
		ws.Worker = w
		g.Go(func() error {
			sampler := scene.GetSampler().Clone()
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				tile, ok := generator.Next()
				if !ok {
					return nil
				}

				tileStart := time.Now()
				block := pool.Get().(*ImageBlock)
				block.Reset(tile.Bounds)
				ws.Samples += renderTile(scene, sampler, tile, block)
				ws.Blocks++
				ws.Busy += time.Since(tileStart)

				merger.submit(tile.Index, block)
			}
		})
	}

	err = g.Wait()

	stats := Stats{
		Blocks:         total,
		Unissued:       generator.Remaining(),
		Pixels:         size.X * size.Y,
		InvalidSamples: result.InvalidSamples(),
		Workers:        workerStats,
	}
	for _, ws := range workerStats {
		stats.Samples += ws.Samples
	}
	if err != nil {
		logger.Warningf("Render stopped with %d of %d blocks merged, %d never started: %v",
			merger.mergedCount(), total, stats.Unissued, err)
		return stats, err
	}
	return stats, nil
}

// renderTile estimates every pixel of a tile into block. The sampler is
// reseeded from the tile so the result does not depend on the worker.
func renderTile(scene core.Scene, sampler core.Sampler, tile Tile, block *ImageBlock) int64 {
	camera := scene.GetCamera()
	integrator := scene.GetIntegrator()
	sampler.Prepare(tile.Bounds)

	var samples int64
	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			for i := 0; i < sampler.SampleCount(); i++ {
				pixelSample := core.NewVec2(float64(x), float64(y)).Add(sampler.Next2D())
				apertureSample := sampler.Next2D()

				ray, weight := camera.SampleRay(pixelSample, apertureSample)
				value := weight.MultiplyVec(integrator.Li(scene, sampler, ray))
				block.Put(pixelSample, value)
				samples++
			}
		}
	}
	return samples
}

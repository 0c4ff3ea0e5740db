package renderer

import (
	"context"
	"image"
	"math"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// mockScene is an empty scene with a configurable camera, integrator and sampler
type mockScene struct {
	camera     core.Camera
	integrator core.Integrator
	sampler    core.Sampler
}

func (s *mockScene) GetCamera() core.Camera                          { return s.camera }
func (s *mockScene) GetIntegrator() core.Integrator                  { return s.integrator }
func (s *mockScene) GetSampler() core.Sampler                        { return s.sampler }
func (s *mockScene) GetEmitters() []core.Emitter                     { return nil }
func (s *mockScene) GetEmitter(core.EmitterID) core.Emitter          { return nil }
func (s *mockScene) RayIntersect(core.Ray) (core.Intersection, bool) { return core.Intersection{}, false }
func (s *mockScene) RayIntersectAny(core.Ray) bool                   { return false }

// noisyIntegrator returns a direction-dependent value plus sampler noise
type noisyIntegrator struct {
	calls atomic.Int64
}

func (i *noisyIntegrator) Li(_ core.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	i.calls.Add(1)
	d := ray.Direction
	return core.NewVec3(math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)).Add(core.Splat(sampler.Next1D()))
}

type constantIntegrator struct {
	value core.Vec3
}

func (i constantIntegrator) Li(core.Scene, core.Sampler, core.Ray) core.Vec3 {
	return i.value
}

func newMockScene(t *testing.T, width, height int, integrator core.Integrator) *mockScene {
	t.Helper()
	config := DefaultCameraConfig()
	config.Width, config.Height = width, height
	camera, err := NewPerspectiveCamera(config, nil)
	require.NoError(t, err)
	return &mockScene{
		camera:     camera,
		integrator: integrator,
		sampler:    core.NewIndependentSampler(4, 1),
	}
}

func TestRenderReproducibleAcrossWorkerCounts(t *testing.T) {
	var reference *Bitmap
	for _, workers := range []int{1, 2, 5, 16} {
		scene := newMockScene(t, 45, 31, &noisyIntegrator{})
		result, stats, err := Render(context.Background(), scene, Options{Workers: workers, BlockSize: 8})
		require.NoError(t, err)
		assert.Equal(t, int64(45*31*4), stats.Samples)
		assert.Equal(t, 6*4, stats.Blocks)

		bitmap := result.ToBitmap()
		if reference == nil {
			reference = bitmap
			continue
		}
		assert.Equal(t, reference.Pix, bitmap.Pix, "workers=%d", workers)
	}
}

func TestRenderConstantRadiance(t *testing.T) {
	value := core.NewVec3(0.25, 0.5, 2)
	scene := newMockScene(t, 20, 12, constantIntegrator{value: value})

	result, stats, err := Render(context.Background(), scene, Options{Workers: 3, BlockSize: 5, Traversal: TraversalScanline})
	require.NoError(t, err)
	assert.Equal(t, 20*12, stats.Pixels)
	assert.InDelta(t, 4, stats.AverageSamples(), 1e-12)
	assert.LessOrEqual(t, len(stats.Workers), 3)

	bitmap := result.ToBitmap()
	assert.Equal(t, 20, bitmap.Width)
	for _, c := range bitmap.Pix {
		assert.InDelta(t, value.X, c.X, 1e-12)
		assert.InDelta(t, value.Y, c.Y, 1e-12)
		assert.InDelta(t, value.Z, c.Z, 1e-12)
	}
}

func TestRenderDiscardsInvalidSamples(t *testing.T) {
	scene := newMockScene(t, 8, 8, constantIntegrator{value: core.NewVec3(math.NaN(), 1, 1)})
	result, stats, err := Render(context.Background(), scene, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(8*8*4), stats.InvalidSamples)
	for _, c := range result.ToBitmap().Pix {
		assert.Equal(t, core.Vec3{}, c)
	}
}

func TestRenderProgress(t *testing.T) {
	scene := newMockScene(t, 40, 40, constantIntegrator{value: core.Splat(1)})

	var calls []int
	total := 0
	_, _, err := Render(context.Background(), scene, Options{
		Workers:   4,
		BlockSize: 10,
		Progress: func(done, n int) {
			calls = append(calls, done)
			total = n
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 16, total)
	require.Len(t, calls, 16)
	for i, done := range calls {
		assert.Equal(t, i+1, done)
	}
}

func TestRenderCancellation(t *testing.T) {
	scene := newMockScene(t, 64, 64, &noisyIntegrator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Render(ctx, scene, Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)

	// Cancelling mid-render stops before every block is rendered
	integrator := &noisyIntegrator{}
	scene = newMockScene(t, 64, 64, integrator)
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	_, stats, err := Render(ctx, scene, Options{
		Workers:   1,
		BlockSize: 8,
		Progress: func(done, _ int) {
			if done == 2 {
				cancel()
			}
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, integrator.calls.Load(), int64(64*64*4))
	assert.Equal(t, 64, stats.Blocks)
	assert.Equal(t, 62, stats.Unissued)
}

// twoPassIntegrator owns its render loop
type twoPassIntegrator struct {
	constantIntegrator
	preprocessed int
	rendered     int
	bounds       image.Rectangle
}

func (i *twoPassIntegrator) Preprocess(core.Scene) error {
	i.preprocessed++
	return nil
}

func (i *twoPassIntegrator) Render(ctx context.Context, scene core.Scene, result *ImageBlock, opts Options) (Stats, error) {
	i.rendered++
	i.bounds = result.Bounds()
	return RenderTiles(ctx, scene, result, opts)
}

func TestRenderUsesCustomRenderer(t *testing.T) {
	integrator := &twoPassIntegrator{constantIntegrator: constantIntegrator{value: core.Splat(3)}}
	scene := newMockScene(t, 16, 16, integrator)

	result, stats, err := Render(context.Background(), scene, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, integrator.preprocessed)
	assert.Equal(t, 1, integrator.rendered)
	assert.Equal(t, image.Rect(0, 0, 16, 16), integrator.bounds)
	assert.Equal(t, int64(16*16*4), stats.Samples)
	assert.InDelta(t, 3, result.ToBitmap().At(7, 7).X, 1e-12)
}

type failingPreprocess struct {
	constantIntegrator
}

func (failingPreprocess) Preprocess(core.Scene) error {
	return errors.New("photon budget exceeded")
}

func TestRenderErrors(t *testing.T) {
	scene := newMockScene(t, 8, 8, constantIntegrator{})
	scene.camera = nil
	_, _, err := Render(context.Background(), scene, Options{})
	assert.ErrorIs(t, err, ErrNoCamera)

	scene = newMockScene(t, 8, 8, nil)
	_, _, err = Render(context.Background(), scene, Options{})
	assert.ErrorIs(t, err, ErrNoIntegrator)

	scene = newMockScene(t, 8, 8, constantIntegrator{})
	scene.sampler = nil
	_, _, err = Render(context.Background(), scene, Options{})
	assert.ErrorIs(t, err, ErrNoSampler)

	scene = newMockScene(t, 8, 8, constantIntegrator{})
	_, _, err = Render(context.Background(), scene, Options{BlockSize: -4})
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	scene = newMockScene(t, 8, 8, failingPreprocess{})
	_, _, err = Render(context.Background(), scene, Options{})
	assert.ErrorContains(t, err, "photon budget exceeded")
}

func TestOrderedMergerHoldsEarlyTiles(t *testing.T) {
	result := NewImageBlock(image.Rect(0, 0, 4, 4), nil)
	var released []*ImageBlock
	merger := newOrderedMerger(result, func(b *ImageBlock) { released = append(released, b) }, nil)

	second := NewImageBlock(image.Rect(2, 0, 4, 4), nil)
	merger.submit(1, second)
	assert.Equal(t, 1, merger.held())
	assert.Equal(t, 0, merger.mergedCount())
	assert.Empty(t, released)

	first := NewImageBlock(image.Rect(0, 0, 2, 4), nil)
	merger.submit(0, first)
	assert.Equal(t, 0, merger.held())
	assert.Equal(t, 2, merger.mergedCount())
	assert.Equal(t, []*ImageBlock{first, second}, released)
}

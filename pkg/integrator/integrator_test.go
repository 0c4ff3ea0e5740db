package integrator_test

import (
	"context"
	"image"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-tiled-renderer/pkg/core"
	"github.com/df07/go-tiled-renderer/pkg/geometry"
	"github.com/df07/go-tiled-renderer/pkg/integrator"
	"github.com/df07/go-tiled-renderer/pkg/lights"
	"github.com/df07/go-tiled-renderer/pkg/material"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
	"github.com/df07/go-tiled-renderer/pkg/scene"
)

const lightRadiance = 4.0

func newTestScene(t *testing.T, i core.Integrator) *scene.Scene {
	t.Helper()
	camera, err := renderer.NewPerspectiveCamera(renderer.CameraConfig{
		Width:  4,
		Height: 4,
		Origin: core.NewVec3(0, 0.5, 5),
		Target: core.NewVec3(0, 0.5, 0),
		Up:     core.NewVec3(0, 1, 0),
		FOV:    20,
	}, nil)
	require.NoError(t, err)

	s := scene.New()
	s.Camera = camera
	s.Integrator = i
	s.Sampler = core.NewIndependentSampler(1, 7)
	return s
}

// newMirrorScene places a mirror sphere at the origin under a downward
// facing area light, optionally with a diffuse occluder in between
func newMirrorScene(t *testing.T, i core.Integrator, occluded bool) *scene.Scene {
	t.Helper()
	s := newTestScene(t, i)
	s.AddShape(geometry.NewSphere(core.Vec3{}, 1, &material.Mirror{}))

	light := geometry.NewQuad(core.NewVec3(-1, 3, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), &material.Diffuse{})
	s.AddAreaLight(light, core.Splat(lightRadiance))

	if occluded {
		s.AddShape(geometry.NewQuad(core.NewVec3(-2, 2, -2), core.NewVec3(4, 0, 0), core.NewVec3(0, 0, 4),
			&material.Diffuse{Albedo: core.Splat(0.5)}))
	}
	require.NoError(t, s.Preprocess())
	return s
}

// mirrorRay hits the sphere where the normal is (0, 1, 1)/√2, so the
// reflection points straight up at the light
func mirrorRay() core.Ray {
	return core.NewRay(core.NewVec3(0, math.Sqrt2/2, 5), core.NewVec3(0, 0, -1))
}

func TestMirrorSphereUnderAreaLight(t *testing.T) {
	for name, i := range map[string]core.Integrator{
		"whitted":  &integrator.Whitted{MaxDepth: 10},
		"path_mis": &integrator.PathMIS{RRDepth: 3},
	} {
		t.Run(name, func(t *testing.T) {
			s := newMirrorScene(t, i, false)
			sampler := s.GetSampler().Clone()
			sampler.Prepare(image.Rect(0, 0, 1, 1))
			for k := 0; k < 16; k++ {
				assert.Equal(t, core.Splat(lightRadiance), i.Li(s, sampler, mirrorRay()))
			}

			occluded := newMirrorScene(t, i, true)
			for k := 0; k < 16; k++ {
				assert.Equal(t, core.Vec3{}, i.Li(occluded, sampler, mirrorRay()))
			}
		})
	}
}

func TestWhittedDepthLimit(t *testing.T) {
	w := &integrator.Whitted{MaxDepth: 1}
	s := newMirrorScene(t, w, false)
	assert.Equal(t, core.Vec3{}, w.Li(s, s.GetSampler().Clone(), mirrorRay()))
}

func TestMissReturnsZero(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1))
	for _, i := range []core.Integrator{
		&integrator.Normals{},
		&integrator.Whitted{MaxDepth: 10},
		&integrator.PathMIS{RRDepth: 3},
	} {
		s := newMirrorScene(t, i, false)
		assert.Equal(t, core.Vec3{}, i.Li(s, s.GetSampler().Clone(), ray), "%T", i)
	}
}

// newPointLitFloor places a point light of power 4π one unit above a large
// diffuse floor, so the irradiance directly below the light is exactly 1
func newPointLitFloor(t *testing.T, i core.Integrator, albedo float64) *scene.Scene {
	t.Helper()
	s := newTestScene(t, i)
	s.AddShape(geometry.NewQuad(core.NewVec3(-10, 0, -10), core.NewVec3(0, 0, 20), core.NewVec3(20, 0, 0),
		&material.Diffuse{Albedo: core.Splat(albedo)}))
	s.AddEmitter(lights.NewPointLight(core.NewVec3(0, 1, 0), core.Splat(4*math.Pi)))
	require.NoError(t, s.Preprocess())
	return s
}

func TestDirectLightingFromPointLight(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0))
	expected := 0.5 / math.Pi

	for _, i := range []core.Integrator{
		&integrator.Whitted{MaxDepth: 10},
		&integrator.PathMIS{RRDepth: 3},
	} {
		s := newPointLitFloor(t, i, 0.5)
		sampler := s.GetSampler().Clone()
		for k := 0; k < 8; k++ {
			li := i.Li(s, sampler, ray)
			assert.InDelta(t, expected, li.X, 1e-12, "%T", i)
			assert.InDelta(t, expected, li.Z, 1e-12, "%T", i)
		}
	}
}

func TestNormals(t *testing.T) {
	n := &integrator.Normals{}
	s := newPointLitFloor(t, n, 0.5)
	li := n.Li(s, s.GetSampler(), core.NewRay(core.NewVec3(1, 1, 1), core.NewVec3(0, -1, 0)))
	assert.Equal(t, core.NewVec3(0, 1, 0), li)
}

func TestPathMISConverges(t *testing.T) {
	// Against a diffuse floor under an area light both strategies are used;
	// the MIS estimate must match the direct-only Whitted estimate on average
	build := func(i core.Integrator) *scene.Scene {
		s := newTestScene(t, i)
		s.AddShape(geometry.NewQuad(core.NewVec3(-10, 0, -10), core.NewVec3(0, 0, 20), core.NewVec3(20, 0, 0),
			&material.Diffuse{Albedo: core.Splat(0.5)}))
		light := geometry.NewQuad(core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), &material.Diffuse{})
		s.AddAreaLight(light, core.Splat(lightRadiance))
		require.NoError(t, s.Preprocess())
		return s
	}

	ray := core.NewRay(core.NewVec3(0.3, 1, 0.2), core.NewVec3(0, -1, 0))
	estimate := func(i core.Integrator) float64 {
		s := build(i)
		sampler := core.NewIndependentSampler(1, 42)
		const n = 20000
		sum := 0.0
		for k := 0; k < n; k++ {
			sum += i.Li(s, sampler, ray).X
		}
		return sum / n
	}

	whitted := estimate(&integrator.Whitted{MaxDepth: 10})
	// Light bounced back by the floor is absorbed by the black light quad,
	// so both integrators see the same direct illumination only
	pathMIS := estimate(&integrator.PathMIS{MaxDepth: 2, RRDepth: 3})
	require.Greater(t, whitted, 0.0)
	assert.InEpsilon(t, whitted, pathMIS, 0.03)
}

func TestPhotonMapperPointLight(t *testing.T) {
	pm := &integrator.PhotonMapper{PhotonCount: 200000, PhotonRadius: 0.15}
	s := newPointLitFloor(t, pm, 0.5)
	require.NoError(t, pm.Preprocess(s))

	result := renderer.NewImageBlock(image.Rect(0, 0, 4, 4), nil)
	stats, err := pm.Render(context.Background(), s, result, renderer.Options{Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 16, stats.Pixels)

	ray := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0))
	li := pm.Li(s, s.GetSampler().Clone(), ray)
	assert.InEpsilon(t, 0.5/math.Pi, li.X, 0.12)
	assert.Equal(t, li.X, li.Y)
}

func TestPhotonMapperIsIndependentOfWorkers(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0.2, 2, 0.1), core.NewVec3(0, -1, 0))
	var reference core.Vec3
	for _, workers := range []int{1, 3} {
		pm := &integrator.PhotonMapper{PhotonCount: 10000, PhotonRadius: 0.3}
		s := newPointLitFloor(t, pm, 0.5)
		require.NoError(t, pm.Preprocess(s))
		_, err := pm.Render(context.Background(), s, renderer.NewImageBlock(image.Rect(0, 0, 4, 4), nil),
			renderer.Options{Workers: workers})
		require.NoError(t, err)

		li := pm.Li(s, s.GetSampler().Clone(), ray)
		if workers == 1 {
			reference = li
			require.False(t, li.IsZero())
			continue
		}
		assert.Equal(t, reference, li)
	}
}

func TestPhotonMapperMirror(t *testing.T) {
	tests := []struct {
		name     string
		occluded bool
		expected core.Vec3
	}{
		{"visible light", false, core.Splat(lightRadiance)},
		{"occluded light", true, core.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := &integrator.PhotonMapper{PhotonCount: 20000, PhotonRadius: 0.2}
			s := newMirrorScene(t, pm, tt.occluded)
			require.NoError(t, pm.Preprocess(s))
			_, err := pm.Render(context.Background(), s, renderer.NewImageBlock(image.Rect(0, 0, 4, 4), nil),
				renderer.Options{Workers: 2})
			require.NoError(t, err)

			sampler := s.GetSampler().Clone()
			sampler.Prepare(image.Rect(0, 0, 1, 1))
			for k := 0; k < 256; k++ {
				assert.Equal(t, tt.expected, pm.Li(s, sampler, mirrorRay()))
			}
		})
	}
}

func TestPhotonMapperRadius(t *testing.T) {
	pm := &integrator.PhotonMapper{PhotonCount: 10}
	s := newPointLitFloor(t, pm, 0.5)
	require.NoError(t, pm.Preprocess(s), "radius is derived from the scene bounds")

	mock := &unboundedScene{Scene: s}
	assert.Error(t, pm.Preprocess(mock))
}

func TestPhotonMapperCancelled(t *testing.T) {
	pm := &integrator.PhotonMapper{PhotonCount: 100000, PhotonRadius: 0.1}
	s := newPointLitFloor(t, pm, 0.5)
	require.NoError(t, pm.Preprocess(s))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pm.Render(ctx, s, renderer.NewImageBlock(image.Rect(0, 0, 4, 4), nil), renderer.Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPhotonMapperThroughRenderDriver(t *testing.T) {
	pm := &integrator.PhotonMapper{PhotonCount: 20000}
	s, err := scene.NewCornellBox(8, 8, pm, core.NewIndependentSampler(2, 1))
	require.NoError(t, err)

	result, stats, err := renderer.Render(context.Background(), s, renderer.Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.InvalidSamples)
	assert.Greater(t, result.ToBitmap().AverageLuminance(), 0.0)
}

// unboundedScene hides the bounding box of the wrapped scene
type unboundedScene struct {
	core.Scene
}

func TestFactory(t *testing.T) {
	empty := core.NewPropertyList(nil)
	for kind, expected := range map[string]interface{}{
		"normals":      &integrator.Normals{},
		"whitted":      &integrator.Whitted{},
		"path_mis":     &integrator.PathMIS{},
		"photonmapper": &integrator.PhotonMapper{},
	} {
		i, err := integrator.New(kind, empty)
		require.NoError(t, err, kind)
		assert.IsType(t, expected, i)
	}

	pm, err := integrator.New("photonmapper", core.NewPropertyList(nil))
	require.NoError(t, err)
	assert.Equal(t, 100000, pm.(*integrator.PhotonMapper).PhotonCount)

	_, err = integrator.New("bdpt", empty)
	assert.ErrorContains(t, err, "bdpt")

	for kind, props := range map[string]map[string]interface{}{
		"whitted":      {"maxDepth": 0},
		"path_mis":     {"rrDepth": -1},
		"photonmapper": {"photonCount": 0},
	} {
		_, err := integrator.New(kind, core.NewPropertyList(props))
		assert.Error(t, err, kind)
	}
	_, err = integrator.New("photonmapper", core.NewPropertyList(map[string]interface{}{"photonRadius": -1.0}))
	assert.Error(t, err)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func TestConstructorErrorsCarryStack(t *testing.T) {
	props := func(values map[string]interface{}) core.PropertyList {
		return core.NewPropertyList(values)
	}
	for name, build := range map[string]func() error{
		"whitted": func() error {
			_, err := integrator.NewWhitted(props(map[string]interface{}{"maxDepth": 0}))
			return err
		},
		"path_mis": func() error {
			_, err := integrator.NewPathMIS(props(map[string]interface{}{"maxDepth": -1}))
			return err
		},
		"photonmapper": func() error {
			_, err := integrator.NewPhotonMapper(props(map[string]interface{}{"photonRadius": -1.0}))
			return err
		},
	} {
		err := build()
		require.Error(t, err, name)
		assert.Implements(t, (*stackTracer)(nil), err, name)
	}
}

// Package scene holds the scene graph consumed by the renderer and loads it
// from YAML or TOML scene descriptions.
package scene

import (
	"fmt"
	"strings"

	"github.com/df07/go-tiled-renderer/pkg/core"
	"github.com/df07/go-tiled-renderer/pkg/geometry"
	"github.com/df07/go-tiled-renderer/pkg/lights"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

// DefaultSampleCount is used when a scene does not configure a sampler
const DefaultSampleCount = 1

// Scene contains all the elements needed for rendering. It implements
// core.Scene once Preprocess has succeeded and is read-only from then on.
type Scene struct {
	Camera     core.Camera
	Integrator core.Integrator
	Sampler    core.Sampler
	Shapes     []core.Shape
	Emitters   *lights.Registry

	bvh    *core.BVH
	bounds core.AABB
}

// New creates an empty scene
func New() *Scene {
	return &Scene{Emitters: lights.NewRegistry()}
}

// AddShape adds a shape to the scene
func (s *Scene) AddShape(shape core.Shape) {
	s.Shapes = append(s.Shapes, shape)
	s.bvh = nil
}

// AddEmitter registers a light that is not attached to geometry
func (s *Scene) AddEmitter(e core.Emitter) core.EmitterID {
	return s.Emitters.Add(e)
}

// AddAreaLight turns shape into an area light and adds it to the scene
func (s *Scene) AddAreaLight(shape geometry.Surface, radiance core.Vec3) core.EmitterID {
	id := s.Emitters.Add(lights.NewAreaLight(shape, radiance))
	shape.SetEmitter(id)
	s.AddShape(shape)
	return id
}

// Preprocess validates the scene, fills in the default sampler and builds
// the acceleration structure
func (s *Scene) Preprocess() error {
	if s.Camera == nil {
		return renderer.ErrNoCamera
	}
	if s.Integrator == nil {
		return renderer.ErrNoIntegrator
	}
	if s.Sampler == nil {
		s.Sampler = core.NewIndependentSampler(DefaultSampleCount, 0)
	}

	s.bvh = core.NewBVH(s.Shapes)
	if s.bvh.Root != nil {
		s.bounds = s.bvh.Root.BoundingBox
	}
	return nil
}

func (s *Scene) GetCamera() core.Camera {
	return s.Camera
}

func (s *Scene) GetIntegrator() core.Integrator {
	return s.Integrator
}

func (s *Scene) GetSampler() core.Sampler {
	return s.Sampler
}

func (s *Scene) GetEmitters() []core.Emitter {
	return s.Emitters.All()
}

func (s *Scene) GetEmitter(id core.EmitterID) core.Emitter {
	return s.Emitters.Get(id)
}

// SampleEmitterUniform picks an emitter with equal probability
func (s *Scene) SampleEmitterUniform(u float64) (core.EmitterID, float64) {
	return s.Emitters.SampleUniform(u)
}

// SampleEmitterPower picks an emitter in proportion to its emitted power
func (s *Scene) SampleEmitterPower(u float64) (core.EmitterID, float64) {
	return s.Emitters.SamplePower(u)
}

// RayIntersect returns the nearest hit; it finds nothing before Preprocess
func (s *Scene) RayIntersect(ray core.Ray) (core.Intersection, bool) {
	if s.bvh == nil {
		return core.Intersection{}, false
	}
	return s.bvh.Hit(ray)
}

// RayIntersectAny is the shadow ray query
func (s *Scene) RayIntersectAny(ray core.Ray) bool {
	if s.bvh == nil {
		return false
	}
	return s.bvh.HitAny(ray)
}

// BoundingBox returns the bounds of all shapes, valid after Preprocess
func (s *Scene) BoundingBox() core.AABB {
	return s.bounds
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}

func (s *Scene) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scene[\n")
	fmt.Fprintf(&b, "  integrator = %v,\n", s.Integrator)
	fmt.Fprintf(&b, "  sampler = %v,\n", s.Sampler)
	fmt.Fprintf(&b, "  camera = %v,\n", s.Camera)
	fmt.Fprintf(&b, "  shapes = %d,\n", len(s.Shapes))
	fmt.Fprintf(&b, "  emitters = %v\n", s.Emitters)
	b.WriteString("]")
	return b.String()
}

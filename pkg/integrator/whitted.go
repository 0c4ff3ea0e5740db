package integrator

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Whitted traces delta BSDFs recursively and estimates direct lighting at the
// first non-delta hit with a single emitter sample
type Whitted struct {
	MaxDepth int
}

// NewWhitted reads "maxDepth" (default 10)
func NewWhitted(props core.PropertyList) (*Whitted, error) {
	maxDepth, err := props.Int("maxDepth", 10)
	if err != nil {
		return nil, err
	}
	if maxDepth < 1 {
		return nil, errors.Errorf("maxDepth must be at least 1, got %d", maxDepth)
	}
	return &Whitted{MaxDepth: maxDepth}, nil
}

// Li returns the radiance arriving along ray
func (w *Whitted) Li(scene core.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	return w.li(scene, sampler, ray, 0)
}

func (w *Whitted) li(scene core.Scene, sampler core.Sampler, ray core.Ray, depth int) core.Vec3 {
	its, ok := scene.RayIntersect(ray)
	if !ok {
		return core.Vec3{}
	}

	var result core.Vec3
	if e, id := hitEmitter(scene, its); e != nil {
		le, _ := emitted(e, id, ray, its)
		result = result.Add(le)
	}

	bsdf := its.Shape.GetBSDF()
	if bsdf == nil {
		return result
	}
	wi := its.ShFrame.ToLocal(ray.Direction.Negate())

	if bsdf.IsDelta() {
		if depth+1 >= w.MaxDepth {
			return result
		}
		rec := core.NewBSDFQueryRecord(wi)
		weight, ok := bsdf.Sample(&rec, sampler)
		if !ok {
			return result
		}
		next := core.NewRay(its.P, its.ShFrame.ToWorld(rec.Wo))
		return result.Add(weight.MultiplyVec(w.li(scene, sampler, next, depth+1)))
	}

	if direct, ok := sampleEmitter(scene, sampler, its, bsdf, wi); ok {
		result = result.Add(direct.contribution)
	}
	return result
}

func (w *Whitted) String() string {
	return fmt.Sprintf("Whitted[maxDepth=%d]", w.MaxDepth)
}

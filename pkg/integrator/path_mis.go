package integrator

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// PathMIS is a unidirectional path tracer that combines emitter sampling and
// BSDF sampling at every non-delta vertex with the balance heuristic
type PathMIS struct {
	MaxDepth int // Maximum path length; zero means unbounded
	RRDepth  int // Bounces before Russian roulette starts
}

// NewPathMIS reads "maxDepth" (default 0, unbounded) and "rrDepth" (default 3)
func NewPathMIS(props core.PropertyList) (*PathMIS, error) {
	maxDepth, err := props.Int("maxDepth", 0)
	if err != nil {
		return nil, err
	}
	rrDepth, err := props.Int("rrDepth", 3)
	if err != nil {
		return nil, err
	}
	if maxDepth < 0 || rrDepth < 0 {
		return nil, errors.Errorf("maxDepth and rrDepth must be non-negative (maxDepth=%d, rrDepth=%d)", maxDepth, rrDepth)
	}
	return &PathMIS{MaxDepth: maxDepth, RRDepth: rrDepth}, nil
}

// Li returns the radiance arriving along ray
func (pt *PathMIS) Li(scene core.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	var result core.Vec3
	throughput := core.Splat(1)

	// Density of the BSDF sample that produced ray; delta samples and camera
	// rays count emitted radiance with full weight
	bsdfPdf := 0.0
	specular := true
	eta := 1.0

	for depth := 0; pt.MaxDepth == 0 || depth < pt.MaxDepth; depth++ {
		its, ok := scene.RayIntersect(ray)
		if !ok {
			break
		}

		if e, id := hitEmitter(scene, its); e != nil {
			le, rec := emitted(e, id, ray, its)
			weight := 1.0
			if !specular {
				lightPdf := e.Pdf(&rec) * pt.selectionProbability(scene)
				weight = core.BalanceHeuristic(bsdfPdf, false, lightPdf, false)
			}
			result = result.Add(throughput.MultiplyVec(le).Multiply(weight))
		}

		bsdf := its.Shape.GetBSDF()
		if bsdf == nil {
			break
		}
		wi := its.ShFrame.ToLocal(ray.Direction.Negate())

		if !bsdf.IsDelta() {
			result = result.Add(throughput.MultiplyVec(pt.directLighting(scene, sampler, its, bsdf, wi)))
		}

		rec := core.NewBSDFQueryRecord(wi)
		weight, ok := bsdf.Sample(&rec, sampler)
		if !ok {
			break
		}
		throughput = throughput.MultiplyVec(weight)
		eta *= rec.Eta
		specular = rec.Measure == core.MeasureDiscrete
		if !specular {
			bsdfPdf = bsdf.Pdf(&rec)
		}

		if depth+1 >= pt.RRDepth {
			survival := pt.survivalProbability(throughput, eta)
			if sampler.Next1D() >= survival {
				break
			}
			throughput = throughput.Multiply(1 / survival)
		}

		ray = core.NewRay(its.P, its.ShFrame.ToWorld(rec.Wo))
	}
	return result
}

// directLighting samples one emitter and weights the sample against the
// BSDF strategy; delta emitters are only reachable by emitter sampling
func (pt *PathMIS) directLighting(scene core.Scene, sampler core.Sampler, its core.Intersection, bsdf core.BSDF, wi core.Vec3) core.Vec3 {
	direct, ok := sampleEmitter(scene, sampler, its, bsdf, wi)
	if !ok {
		return core.Vec3{}
	}
	weight := core.BalanceHeuristic(direct.lightPdf, direct.delta, direct.bsdfPdf, false)
	return direct.contribution.Multiply(weight)
}

func (pt *PathMIS) selectionProbability(scene core.Scene) float64 {
	if n := len(scene.GetEmitters()); n > 0 {
		return 1 / float64(n)
	}
	return 0
}

// survivalProbability follows the throughput with the radiance scaling of
// refraction removed and stays below one so paths always terminate
func (pt *PathMIS) survivalProbability(throughput core.Vec3, eta float64) float64 {
	return math.Min(throughput.MaxComponent()/(eta*eta), 0.99)
}

func (pt *PathMIS) String() string {
	return fmt.Sprintf("PathMIS[maxDepth=%d, rrDepth=%d]", pt.MaxDepth, pt.RRDepth)
}

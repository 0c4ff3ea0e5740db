// Package integrator implements the light transport algorithms that
// estimate the radiance arriving along camera rays.
package integrator

import (
	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
	"github.com/df07/go-tiled-renderer/pkg/log"
)

var logger = log.New("integrator")

// New builds the integrator registered under kind from its scene properties
func New(kind string, props core.PropertyList) (core.Integrator, error) {
	var (
		integrator core.Integrator
		err        error
	)
	switch kind {
	case "normals":
		integrator = &Normals{}
	case "whitted":
		integrator, err = NewWhitted(props)
	case "path_mis":
		integrator, err = NewPathMIS(props)
	case "photonmapper":
		integrator, err = NewPhotonMapper(props)
	default:
		return nil, errors.Errorf("unknown integrator type %q", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "integrator %q", kind)
	}
	return integrator, nil
}

// Normals visualizes the absolute shading normal of the first hit
type Normals struct{}

func (n *Normals) Li(scene core.Scene, _ core.Sampler, ray core.Ray) core.Vec3 {
	its, ok := scene.RayIntersect(ray)
	if !ok {
		return core.Vec3{}
	}
	normal := its.ShFrame.N
	return core.NewVec3(abs(normal.X), abs(normal.Y), abs(normal.Z))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// hitEmitter returns the emitter attached to the intersected shape, if any
func hitEmitter(scene core.Scene, its core.Intersection) (core.Emitter, core.EmitterID) {
	id := its.Shape.GetEmitter()
	if id == core.NoEmitter {
		return nil, core.NoEmitter
	}
	return scene.GetEmitter(id), id
}

// emitted returns the radiance leaving an emitting hit towards the ray origin,
// along with the query record that describes it
func emitted(e core.Emitter, id core.EmitterID, ray core.Ray, its core.Intersection) (core.Vec3, core.EmitterQueryRecord) {
	rec := core.NewEmitterQueryRecordPoints(ray.Origin, its.P, its.ShFrame.N)
	rec.Emitter = id
	return e.Eval(&rec), rec
}

// uniformSampledScene is implemented by scenes that select emitters through
// their own registry
type uniformSampledScene interface {
	SampleEmitterUniform(u float64) (core.EmitterID, float64)
}

// pickEmitter selects one of the scene's emitters uniformly and returns it
// with its selection probability
func pickEmitter(scene core.Scene, u float64) (core.Emitter, float64) {
	if us, ok := scene.(uniformSampledScene); ok {
		id, prob := us.SampleEmitterUniform(u)
		return scene.GetEmitter(id), prob
	}
	emitters := scene.GetEmitters()
	n := len(emitters)
	if n == 0 {
		return nil, 0
	}
	i := min(int(u*float64(n)), n-1)
	return emitters[i], 1 / float64(n)
}

// directLight is the result of sampling an emitter from a shading point
type directLight struct {
	contribution core.Vec3 // f · L · cos / (pdf · selection), unweighted
	lightPdf     float64   // Solid angle density including the selection probability
	bsdfPdf      float64   // Density of the same direction under BSDF sampling
	delta        bool      // The emitter is a delta light
}

// sampleEmitter draws one emitter sample for a non-delta BSDF and tests its
// visibility. It returns false when the sample carries no energy.
func sampleEmitter(scene core.Scene, sampler core.Sampler, its core.Intersection, bsdf core.BSDF, wi core.Vec3) (directLight, bool) {
	emitter, selection := pickEmitter(scene, sampler.Next1D())
	if emitter == nil {
		return directLight{}, false
	}

	erec := core.NewEmitterQueryRecord(its.P)
	value := emitter.Sample(&erec, sampler)
	if erec.Pdf <= 0 || value.IsZero() {
		return directLight{}, false
	}
	if scene.RayIntersectAny(erec.ShadowRay()) {
		return directLight{}, false
	}

	brec := core.NewBSDFQueryRecordPair(wi, its.ShFrame.ToLocal(erec.Wi), core.MeasureSolidAngle)
	f := bsdf.Eval(&brec)
	cos := core.CosTheta(brec.Wo)
	if cos <= 0 || f.IsZero() {
		return directLight{}, false
	}

	return directLight{
		contribution: f.MultiplyVec(value).Multiply(cos / selection),
		lightPdf:     erec.Pdf * selection,
		bsdfPdf:      bsdf.Pdf(&brec),
		delta:        emitter.IsDelta(),
	}, true
}

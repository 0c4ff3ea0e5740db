package core

import "image"

// Sampler produces the random numbers consumed by one worker.
// Implementations are not safe for concurrent use; clone one per worker.
type Sampler interface {
	Next1D() float64
	Next2D() Vec2

	// SampleCount is the number of samples taken per pixel
	SampleCount() int

	// Clone returns an independent sampler with the same configuration
	Clone() Sampler

	// Prepare reseeds the stream deterministically from the tile bounds
	Prepare(tile image.Rectangle)
}

// BSDF models how a surface scatters light. All directions are given in
// the local shading frame.
type BSDF interface {
	// IsDelta reports whether scattering is a sum of delta distributions
	IsDelta() bool

	// Eval returns the BSDF value for rec.Wi and rec.Wo (zero for delta models)
	Eval(rec *BSDFQueryRecord) Vec3

	// Pdf returns the continuous sampling density of rec.Wo (zero for delta models)
	Pdf(rec *BSDFQueryRecord) float64

	// Sample draws rec.Wo and returns the sampling weight f·cos/pdf.
	// It returns false and a zero weight when no direction could be produced.
	Sample(rec *BSDFQueryRecord, sampler Sampler) (Vec3, bool)
}

// Emitter is a light source
type Emitter interface {
	// IsDelta reports whether the light has zero-measure support
	IsDelta() bool

	// Radiance returns the emitted radiance constant
	Radiance() Vec3

	// Eval returns the radiance arriving at rec.Ref from rec.P
	Eval(rec *EmitterQueryRecord) Vec3

	// Sample fills P, Wi, N, Dist, Pdf and Emitter for rec.Ref and returns
	// Eval(rec)/Pdf, or zero when the sample carries no energy
	Sample(rec *EmitterQueryRecord, sampler Sampler) Vec3

	// Pdf returns the solid angle density of rec.P as seen from rec.Ref
	Pdf(rec *EmitterQueryRecord) float64
}

// PhotonEmitter is implemented by emitters usable by photon-based integrators
type PhotonEmitter interface {
	ShootPhoton(sampler Sampler) PhotonRay
}

// ShootPhoton emits a photon from e, or returns a failed PhotonRay when the
// emitter does not support photon emission
func ShootPhoton(e Emitter, sampler Sampler) PhotonRay {
	if pe, ok := e.(PhotonEmitter); ok {
		return pe.ShootPhoton(sampler)
	}
	return PhotonRay{}
}

// Integrator estimates the radiance arriving along a camera ray.
// Li must only draw randomness from the supplied sampler.
type Integrator interface {
	Li(scene Scene, sampler Sampler, ray Ray) Vec3
}

// Preprocessor is implemented by objects needing one-time setup before rendering
type Preprocessor interface {
	Preprocess(scene Scene) error
}

// ReconstructionFilter spreads a sample over nearby pixels
type ReconstructionFilter interface {
	Radius() float64
	Eval(x float64) float64
}

// Camera generates primary rays
type Camera interface {
	OutputSize() image.Point
	ReconstructionFilter() ReconstructionFilter

	// SampleRay maps a pixel-space position and an aperture sample to a ray
	// and returns the importance weight of that ray
	SampleRay(pixelSample, apertureSample Vec2) (Ray, Vec3)
}

// Intersection describes the nearest hit along a ray
type Intersection struct {
	T        float64
	P        Vec3
	UV       Vec2
	GeoFrame Frame
	ShFrame  Frame
	Shape    Shape
}

// Shape is a piece of geometry with an attached BSDF and optional emitter
type Shape interface {
	// Hit returns the intersection of ray with the shape inside the ray's interval
	Hit(ray Ray) (Intersection, bool)
	BoundingBox() AABB
	GetBSDF() BSDF
	GetEmitter() EmitterID
}

// AreaSampler is implemented by shapes that area lights can be attached to
type AreaSampler interface {
	SurfaceArea() float64

	// SamplePosition picks a point uniformly by area and returns it with its
	// outward normal and area density
	SamplePosition(sample Vec2) (p, n Vec3, pdf float64)
}

// Scene is the read-only view of a scene shared by all rendering workers
type Scene interface {
	GetCamera() Camera
	GetIntegrator() Integrator
	GetSampler() Sampler
	GetEmitters() []Emitter
	GetEmitter(id EmitterID) Emitter

	// RayIntersect finds the nearest hit inside the ray's interval
	RayIntersect(ray Ray) (Intersection, bool)

	// RayIntersectAny reports whether anything is hit inside the ray's interval
	RayIntersectAny(ray Ray) bool
}

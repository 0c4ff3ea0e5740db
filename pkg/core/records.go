package core

// Measure tells how a sampled direction's density should be interpreted
type Measure int

const (
	MeasureUnknown Measure = iota
	MeasureSolidAngle
	MeasureDiscrete
)

func (m Measure) String() string {
	switch m {
	case MeasureSolidAngle:
		return "solid-angle"
	case MeasureDiscrete:
		return "discrete"
	default:
		return "unknown"
	}
}

// BSDFQueryRecord carries the directions of one scattering event,
// both expressed in the local shading frame.
type BSDFQueryRecord struct {
	Wi      Vec3    // Incident direction, pointing away from the surface
	Wo      Vec3    // Outgoing direction, set by a successful Sample
	Measure Measure // Measure of Wo
	Eta     float64 // Relative index of refraction along Wo
}

// NewBSDFQueryRecord creates a record for sampling an outgoing direction
func NewBSDFQueryRecord(wi Vec3) BSDFQueryRecord {
	return BSDFQueryRecord{Wi: wi, Measure: MeasureUnknown, Eta: 1}
}

// NewBSDFQueryRecordPair creates a record for evaluating a known pair of directions
func NewBSDFQueryRecordPair(wi, wo Vec3, measure Measure) BSDFQueryRecord {
	return BSDFQueryRecord{Wi: wi, Wo: wo, Measure: measure, Eta: 1}
}

// EmitterID is a handle into the scene's emitter registry
type EmitterID int

// NoEmitter marks shapes and records that are not associated with a light
const NoEmitter EmitterID = -1

// EmitterQueryRecord is exchanged between a shading point and a light.
// Ref is the only input; everything else is produced by the emitter.
type EmitterQueryRecord struct {
	Ref     Vec3      // Shading point
	P       Vec3      // Point on the light
	Wi      Vec3      // Unit direction from Ref towards P
	N       Vec3      // Light surface normal at P
	Dist    float64   // Distance between Ref and P
	Pdf     float64   // Solid angle density, or probability mass for delta lights
	Emitter EmitterID // Emitter that produced the sample
}

// NewEmitterQueryRecord creates a record with only the shading point set
func NewEmitterQueryRecord(ref Vec3) EmitterQueryRecord {
	return EmitterQueryRecord{Ref: ref, Emitter: NoEmitter}
}

// NewEmitterQueryRecordPoints creates a record for a known light point, e.g.
// one found by tracing a BSDF-sampled ray
func NewEmitterQueryRecordPoints(ref, p, n Vec3) EmitterQueryRecord {
	rec := EmitterQueryRecord{Ref: ref, Emitter: NoEmitter}
	rec.SetPoint(p, n)
	return rec
}

// SetPoint updates P and N and recomputes Wi and Dist from Ref
func (r *EmitterQueryRecord) SetPoint(p, n Vec3) {
	r.P = p
	r.N = n
	d := p.Subtract(r.Ref)
	r.Dist = d.Length()
	r.Wi = d.Normalize()
}

// ShadowRay returns the visibility segment between Ref and P, excluding
// both endpoints by Epsilon
func (r EmitterQueryRecord) ShadowRay() Ray {
	return Ray{
		Origin:    r.Ref,
		Direction: r.Wi,
		TMin:      Epsilon,
		TMax:      r.Dist - Epsilon,
	}
}

// PhotonRay is a ray leaving a light carrying flux
type PhotonRay struct {
	Ray     Ray
	Flux    Vec3
	Success bool
}

// NewPhotonRay creates a successfully emitted photon
func NewPhotonRay(ray Ray, flux Vec3) PhotonRay {
	return PhotonRay{Ray: ray, Flux: flux, Success: true}
}

// Package lights implements the emitters a scene can contain.
package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// AreaLight emits constant radiance from the front side of a shape
type AreaLight struct {
	Shape        core.AreaSampler
	EmitRadiance core.Vec3
	id           core.EmitterID
}

// NewAreaLight attaches a light of the given radiance to shape
func NewAreaLight(shape core.AreaSampler, radiance core.Vec3) *AreaLight {
	return &AreaLight{Shape: shape, EmitRadiance: radiance, id: core.NoEmitter}
}

// ID returns the registry handle, or core.NoEmitter before registration
func (l *AreaLight) ID() core.EmitterID {
	return l.id
}

func (l *AreaLight) setID(id core.EmitterID) {
	l.id = id
}

// IsDelta is false
func (l *AreaLight) IsDelta() bool {
	return false
}

// Radiance returns the emitted radiance
func (l *AreaLight) Radiance() core.Vec3 {
	return l.EmitRadiance
}

// TotalPower returns the emitted flux L·π·A
func (l *AreaLight) TotalPower() core.Vec3 {
	return l.EmitRadiance.Multiply(math.Pi * l.Shape.SurfaceArea())
}

// Eval returns the radiance leaving rec.P towards rec.Ref. Only the side the
// normal points to emits.
func (l *AreaLight) Eval(rec *core.EmitterQueryRecord) core.Vec3 {
	if rec.Dist <= 0 || rec.N.Dot(rec.Wi) >= 0 {
		return core.Vec3{}
	}
	return l.EmitRadiance
}

// Sample picks a point uniformly by area and returns Eval/Pdf
func (l *AreaLight) Sample(rec *core.EmitterQueryRecord, sampler core.Sampler) core.Vec3 {
	p, n, _ := l.Shape.SamplePosition(sampler.Next2D())
	rec.SetPoint(p, n)
	rec.Emitter = l.id

	rec.Pdf = l.Pdf(rec)
	if rec.Pdf <= 0 {
		return core.Vec3{}
	}
	return l.Eval(rec).Multiply(1 / rec.Pdf)
}

// Pdf converts the uniform area density to solid angle: d²/(|cos θ|·A)
func (l *AreaLight) Pdf(rec *core.EmitterQueryRecord) float64 {
	cosTheta := math.Abs(rec.N.Dot(rec.Wi))
	area := l.Shape.SurfaceArea()
	if rec.Dist <= 0 || cosTheta < 1e-8 || area <= 0 {
		return 0
	}
	return rec.Dist * rec.Dist / (cosTheta * area)
}

// ShootPhoton leaves the light from a uniform position in a cosine-weighted
// direction, so every photon carries the same flux L·π·A
func (l *AreaLight) ShootPhoton(sampler core.Sampler) core.PhotonRay {
	p, n, _ := l.Shape.SamplePosition(sampler.Next2D())
	dir := core.NewFrame(n).ToWorld(core.SampleCosineHemisphere(sampler.Next2D()))
	if dir.Dot(n) <= 0 {
		return core.PhotonRay{}
	}
	return core.NewPhotonRay(core.NewRay(p, dir), l.TotalPower())
}

func (l *AreaLight) String() string {
	return fmt.Sprintf("AreaLight[radiance=%v, area=%g]", l.EmitRadiance, l.Shape.SurfaceArea())
}

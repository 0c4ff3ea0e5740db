package material

import (
	"fmt"
	"math"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Diffuse is an ideal Lambertian reflector
type Diffuse struct {
	Albedo core.Vec3
}

// NewDiffuse reads the "albedo" color (default 0.5 gray)
func NewDiffuse(props core.PropertyList) (*Diffuse, error) {
	albedo, err := props.Vec3("albedo", core.Splat(0.5))
	if err != nil {
		return nil, err
	}
	return &Diffuse{Albedo: albedo}, nil
}

// IsDelta is false: diffuse scattering has a continuous density
func (d *Diffuse) IsDelta() bool {
	return false
}

func sameHemisphere(rec *core.BSDFQueryRecord) bool {
	return rec.Measure == core.MeasureSolidAngle &&
		core.CosTheta(rec.Wi) > 0 && core.CosTheta(rec.Wo) > 0
}

// Eval returns albedo/π for directions above the surface
func (d *Diffuse) Eval(rec *core.BSDFQueryRecord) core.Vec3 {
	if !sameHemisphere(rec) {
		return core.Vec3{}
	}
	return d.Albedo.Multiply(1 / math.Pi)
}

// Pdf returns the cosine-weighted hemisphere density
func (d *Diffuse) Pdf(rec *core.BSDFQueryRecord) float64 {
	if !sameHemisphere(rec) {
		return 0
	}
	return core.CosineHemispherePdf(rec.Wo)
}

// Sample draws a cosine-weighted direction; the weight reduces to the albedo
func (d *Diffuse) Sample(rec *core.BSDFQueryRecord, sampler core.Sampler) (core.Vec3, bool) {
	if core.CosTheta(rec.Wi) <= 0 {
		return core.Vec3{}, false
	}

	rec.Wo = core.SampleCosineHemisphere(sampler.Next2D())
	rec.Measure = core.MeasureSolidAngle
	rec.Eta = 1

	return d.Albedo, true
}

func (d *Diffuse) String() string {
	return fmt.Sprintf("Diffuse[albedo=%v]", d.Albedo)
}

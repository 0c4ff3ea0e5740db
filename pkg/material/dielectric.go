package material

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Dielectric is a smooth interface between two transparent media, e.g. glass and air
type Dielectric struct {
	IntIOR float64 // Index of refraction on the side the normal points away from
	ExtIOR float64 // Index of refraction on the side the normal points into
}

// NewDielectric reads "intIOR" (default BK7 glass) and "extIOR" (default air)
func NewDielectric(props core.PropertyList) (*Dielectric, error) {
	intIOR, err := props.Float("intIOR", 1.5046)
	if err != nil {
		return nil, err
	}
	extIOR, err := props.Float("extIOR", 1.000277)
	if err != nil {
		return nil, err
	}
	if intIOR <= 0 || extIOR <= 0 {
		return nil, errors.Errorf("dielectric: indices of refraction must be positive (int=%g, ext=%g)", intIOR, extIOR)
	}
	return &Dielectric{IntIOR: intIOR, ExtIOR: extIOR}, nil
}

// IsDelta is always true
func (d *Dielectric) IsDelta() bool {
	return true
}

// Eval is zero for a smooth interface
func (d *Dielectric) Eval(*core.BSDFQueryRecord) core.Vec3 {
	return core.Vec3{}
}

// Pdf is zero for a smooth interface
func (d *Dielectric) Pdf(*core.BSDFQueryRecord) float64 {
	return 0
}

// Sample chooses between reflection and refraction with probability given by
// the Fresnel reflectance, so both branches carry unit throughput apart from
// the radiance scaling across the interface.
func (d *Dielectric) Sample(rec *core.BSDFQueryRecord, sampler core.Sampler) (core.Vec3, bool) {
	cosThetaI := core.CosTheta(rec.Wi)
	reflectance := Fresnel(cosThetaI, d.ExtIOR, d.IntIOR)

	if sampler.Next1D() < reflectance {
		rec.Wo = core.Reflect(rec.Wi)
		rec.Measure = core.MeasureDiscrete
		rec.Eta = 1
		return core.Splat(1), true
	}

	etaI, etaT := d.ExtIOR, d.IntIOR
	sign := 1.0
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		sign = -1
		cosThetaI = -cosThetaI
	}
	eta := etaI / etaT

	sinThetaTSqr := eta * eta * (1 - cosThetaI*cosThetaI)
	if sinThetaTSqr > 1 {
		// Total internal reflection always takes the branch above
		return core.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sinThetaTSqr)

	rec.Wo = core.NewVec3(-eta*rec.Wi.X, -eta*rec.Wi.Y, -sign*cosThetaT)
	rec.Measure = core.MeasureDiscrete
	rec.Eta = eta

	return core.Splat(eta * eta), true
}

func (d *Dielectric) String() string {
	return fmt.Sprintf("Dielectric[intIOR=%g, extIOR=%g]", d.IntIOR, d.ExtIOR)
}

// Fresnel returns the unpolarized Fresnel reflectance of a smooth interface.
// cosThetaI is measured against the normal pointing into the exterior medium;
// negative values mean the ray arrives from inside.
func Fresnel(cosThetaI, extIOR, intIOR float64) float64 {
	etaI, etaT := extIOR, intIOR
	if etaI == etaT {
		return 0
	}
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}

	eta := etaI / etaT
	sinThetaTSqr := eta * eta * (1 - cosThetaI*cosThetaI)
	if sinThetaTSqr > 1 {
		return 1
	}
	cosThetaT := math.Sqrt(1 - sinThetaTSqr)

	rs := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	rp := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	return (rs*rs + rp*rp) / 2
}

package material

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Phong is a mixture of a diffuse base and an energy-normalized Phong lobe
type Phong struct {
	Kd       core.Vec3
	Ks       core.Vec3
	Exponent float64

	specularProb float64
}

// NewPhong reads "kd" (default 0.5), "ks" (default 0.2) and "exponent" (default 20)
func NewPhong(props core.PropertyList) (*Phong, error) {
	kd, err := props.Vec3("kd", core.Splat(0.5))
	if err != nil {
		return nil, err
	}
	ks, err := props.Vec3("ks", core.Splat(0.2))
	if err != nil {
		return nil, err
	}
	exponent, err := props.Float("exponent", 20)
	if err != nil {
		return nil, err
	}
	if exponent < 0 {
		return nil, errors.Errorf("phong: exponent must be non-negative, got %g", exponent)
	}
	if !kd.IsValid() || !ks.IsValid() {
		return nil, errors.New("phong: kd and ks must be non-negative")
	}

	p := &Phong{Kd: kd, Ks: ks, Exponent: exponent}
	total := kd.MaxComponent() + ks.MaxComponent()
	if total > 0 {
		p.specularProb = ks.MaxComponent() / total
	}
	return p, nil
}

// IsDelta is false
func (p *Phong) IsDelta() bool {
	return false
}

// Eval returns kd/π plus the normalized lobe ks·(n+2)/(2π)·cos^n α
func (p *Phong) Eval(rec *core.BSDFQueryRecord) core.Vec3 {
	if !sameHemisphere(rec) {
		return core.Vec3{}
	}

	result := p.Kd.Multiply(1 / math.Pi)
	if cosAlpha := core.Reflect(rec.Wi).Dot(rec.Wo); cosAlpha > 0 {
		norm := (p.Exponent + 2) / (2 * math.Pi)
		result = result.Add(p.Ks.Multiply(norm * math.Pow(cosAlpha, p.Exponent)))
	}
	return result
}

// Pdf mixes the lobe density and the cosine density by the lobe selection probability
func (p *Phong) Pdf(rec *core.BSDFQueryRecord) float64 {
	if !sameHemisphere(rec) {
		return 0
	}
	cosAlpha := core.Reflect(rec.Wi).Dot(rec.Wo)
	return p.specularProb*core.PhongLobePdf(cosAlpha, p.Exponent) +
		(1-p.specularProb)*core.CosineHemispherePdf(rec.Wo)
}

// Sample picks a lobe, draws a direction from it and returns Eval·cos/Pdf
func (p *Phong) Sample(rec *core.BSDFQueryRecord, sampler core.Sampler) (core.Vec3, bool) {
	if core.CosTheta(rec.Wi) <= 0 {
		return core.Vec3{}, false
	}

	var wo core.Vec3
	if sampler.Next1D() < p.specularProb {
		lobe := core.NewFrame(core.Reflect(rec.Wi))
		wo = lobe.ToWorld(core.SamplePhongLobe(sampler.Next2D(), p.Exponent))
	} else {
		wo = core.SampleCosineHemisphere(sampler.Next2D())
	}
	if core.CosTheta(wo) <= 0 {
		return core.Vec3{}, false
	}

	query := core.NewBSDFQueryRecordPair(rec.Wi, wo, core.MeasureSolidAngle)
	pdf := p.Pdf(&query)
	if pdf <= 0 {
		return core.Vec3{}, false
	}

	rec.Wo = wo
	rec.Measure = core.MeasureSolidAngle
	rec.Eta = 1

	return p.Eval(&query).Multiply(core.CosTheta(wo) / pdf), true
}

func (p *Phong) String() string {
	return fmt.Sprintf("Phong[kd=%v, ks=%v, exponent=%g]", p.Kd, p.Ks, p.Exponent)
}

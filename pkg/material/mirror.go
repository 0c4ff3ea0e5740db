package material

import "github.com/df07/go-tiled-renderer/pkg/core"

// Mirror is an ideal, perfectly reflective mirror
type Mirror struct{}

// NewMirror creates a mirror. It takes no parameters.
func NewMirror(core.PropertyList) (*Mirror, error) {
	return &Mirror{}, nil
}

// IsDelta is always true: a mirror reflects into a single direction
func (m *Mirror) IsDelta() bool {
	return true
}

// Eval is zero; discrete BSDFs only contribute through Sample
func (m *Mirror) Eval(*core.BSDFQueryRecord) core.Vec3 {
	return core.Vec3{}
}

// Pdf is zero; discrete BSDFs have no continuous density
func (m *Mirror) Pdf(*core.BSDFQueryRecord) float64 {
	return 0
}

// Sample reflects Wi about the shading normal
func (m *Mirror) Sample(rec *core.BSDFQueryRecord, _ core.Sampler) (core.Vec3, bool) {
	if core.CosTheta(rec.Wi) <= 0 {
		return core.Vec3{}, false
	}

	rec.Wo = core.Reflect(rec.Wi)
	rec.Measure = core.MeasureDiscrete
	rec.Eta = 1

	return core.Splat(1), true
}

func (m *Mirror) String() string {
	return "Mirror[]"
}

package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// PointLight radiates power uniformly in all directions from a single point
type PointLight struct {
	Position core.Vec3
	Power    core.Vec3
	id       core.EmitterID
}

// NewPointLight creates a point light of the given total power
func NewPointLight(position, power core.Vec3) *PointLight {
	return &PointLight{Position: position, Power: power, id: core.NoEmitter}
}

// ID returns the registry handle, or core.NoEmitter before registration
func (l *PointLight) ID() core.EmitterID {
	return l.id
}

func (l *PointLight) setID(id core.EmitterID) {
	l.id = id
}

// TotalPower returns the emitted flux
func (l *PointLight) TotalPower() core.Vec3 {
	return l.Power
}

// IsDelta is always true
func (l *PointLight) IsDelta() bool {
	return true
}

// Radiance returns the radiant intensity Φ/4π
func (l *PointLight) Radiance() core.Vec3 {
	return l.Power.Multiply(1 / (4 * math.Pi))
}

// Eval returns the irradiance-style term Φ/(4πd²) arriving at rec.Ref
func (l *PointLight) Eval(rec *core.EmitterQueryRecord) core.Vec3 {
	if rec.Dist <= 0 || rec.P != l.Position {
		return core.Vec3{}
	}
	return l.Radiance().Multiply(1 / (rec.Dist * rec.Dist))
}

// Sample always selects the light position. Pdf is set to 1, the
// probability mass of that choice.
func (l *PointLight) Sample(rec *core.EmitterQueryRecord, _ core.Sampler) core.Vec3 {
	rec.SetPoint(l.Position, core.Vec3{})
	rec.Emitter = l.id
	if rec.Dist <= 0 {
		rec.Pdf = 0
		return core.Vec3{}
	}
	rec.Pdf = 1
	return l.Eval(rec)
}

// Pdf is 1 for records produced by Sample and 0 for anything else, since no
// continuous sampling strategy can hit a point
func (l *PointLight) Pdf(rec *core.EmitterQueryRecord) float64 {
	if rec.Emitter != l.id || rec.P != l.Position || rec.Dist <= 0 {
		return 0
	}
	return 1
}

// ShootPhoton emits a photon in a uniformly random direction carrying the full power
func (l *PointLight) ShootPhoton(sampler core.Sampler) core.PhotonRay {
	dir := core.SampleUniformSphere(sampler.Next2D())
	return core.NewPhotonRay(core.NewRay(l.Position, dir), l.Power)
}

func (l *PointLight) String() string {
	return fmt.Sprintf("PointLight[position=%v, power=%v]", l.Position, l.Power)
}

// Package geometry provides the shapes a scene is built from.
package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Surface is a shape that supports area sampling and can carry a BSDF and a light
type Surface interface {
	core.Shape
	core.AreaSampler
	SetBSDF(bsdf core.BSDF)
	SetEmitter(id core.EmitterID)
}

// surface holds what every shape has attached to it
type surface struct {
	bsdf    core.BSDF
	emitter core.EmitterID
}

func newSurface(bsdf core.BSDF) surface {
	return surface{bsdf: bsdf, emitter: core.NoEmitter}
}

func (s *surface) GetBSDF() core.BSDF {
	return s.bsdf
}

func (s *surface) GetEmitter() core.EmitterID {
	return s.emitter
}

func (s *surface) SetBSDF(bsdf core.BSDF) {
	s.bsdf = bsdf
}

func (s *surface) SetEmitter(id core.EmitterID) {
	s.emitter = id
}

// New builds the shape registered under kind. The BSDF and emitter are
// attached afterwards by the scene loader.
func New(kind string, props core.PropertyList) (Surface, error) {
	switch kind {
	case "sphere":
		center, err := props.Vec3("center", core.Vec3{})
		if err != nil {
			return nil, errors.Wrap(err, "sphere")
		}
		radius, err := props.Float("radius", 1)
		if err != nil {
			return nil, errors.Wrap(err, "sphere")
		}
		if radius <= 0 {
			return nil, errors.Errorf("sphere: radius must be positive, got %g", radius)
		}
		return NewSphere(center, radius, nil), nil

	case "quad":
		corner, err := props.Vec3("corner", core.NewVec3(-1, -1, 0))
		if err != nil {
			return nil, errors.Wrap(err, "quad")
		}
		u, err := props.Vec3("u", core.NewVec3(2, 0, 0))
		if err != nil {
			return nil, errors.Wrap(err, "quad")
		}
		v, err := props.Vec3("v", core.NewVec3(0, 2, 0))
		if err != nil {
			return nil, errors.Wrap(err, "quad")
		}
		if u.Cross(v).LengthSquared() == 0 {
			return nil, errors.Errorf("quad: edges u=%v and v=%v are parallel", u, v)
		}
		return NewQuad(corner, u, v, nil), nil

	default:
		return nil, errors.Errorf("unknown shape type %q", kind)
	}
}

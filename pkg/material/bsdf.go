// Package material implements the BSDF models a surface can carry.
package material

import (
	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// New builds the BSDF registered under kind from its scene properties
func New(kind string, props core.PropertyList) (core.BSDF, error) {
	var (
		bsdf core.BSDF
		err  error
	)
	switch kind {
	case "mirror":
		bsdf, err = NewMirror(props)
	case "dielectric":
		bsdf, err = NewDielectric(props)
	case "diffuse":
		bsdf, err = NewDiffuse(props)
	case "phong":
		bsdf, err = NewPhong(props)
	default:
		return nil, errors.Errorf("unknown bsdf type %q", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "bsdf %q", kind)
	}
	return bsdf, nil
}

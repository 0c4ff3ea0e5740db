package renderer

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// GaussianFilter is a truncated Gaussian shifted to reach zero at its radius
type GaussianFilter struct {
	radius float64
	stddev float64
}

// NewGaussianFilter creates a Gaussian filter
func NewGaussianFilter(radius, stddev float64) *GaussianFilter {
	return &GaussianFilter{radius: radius, stddev: stddev}
}

func (f *GaussianFilter) Radius() float64 {
	return f.radius
}

func (f *GaussianFilter) Eval(x float64) float64 {
	alpha := -1 / (2 * f.stddev * f.stddev)
	return math.Max(0, math.Exp(alpha*x*x)-math.Exp(alpha*f.radius*f.radius))
}

func (f *GaussianFilter) String() string {
	return fmt.Sprintf("GaussianFilter[radius=%g, stddev=%g]", f.radius, f.stddev)
}

// BoxFilter weights every sample inside its radius equally
type BoxFilter struct {
	radius float64
}

// NewBoxFilter creates a box filter; a radius of 0.5 covers exactly one pixel
func NewBoxFilter(radius float64) *BoxFilter {
	return &BoxFilter{radius: radius}
}

func (f *BoxFilter) Radius() float64 {
	return f.radius
}

func (f *BoxFilter) Eval(x float64) float64 {
	if math.Abs(x) > f.radius {
		return 0
	}
	return 1
}

func (f *BoxFilter) String() string {
	return fmt.Sprintf("BoxFilter[radius=%g]", f.radius)
}

// TentFilter falls off linearly to zero at its radius
type TentFilter struct {
	radius float64
}

// NewTentFilter creates a tent filter
func NewTentFilter(radius float64) *TentFilter {
	return &TentFilter{radius: radius}
}

func (f *TentFilter) Radius() float64 {
	return f.radius
}

func (f *TentFilter) Eval(x float64) float64 {
	return math.Max(0, 1-math.Abs(x)/f.radius)
}

func (f *TentFilter) String() string {
	return fmt.Sprintf("TentFilter[radius=%g]", f.radius)
}

// MitchellFilter is the Mitchell-Netravali cubic with parameters B and C
type MitchellFilter struct {
	radius float64
	b, c   float64
}

// NewMitchellFilter creates a Mitchell-Netravali filter
func NewMitchellFilter(radius, b, c float64) *MitchellFilter {
	return &MitchellFilter{radius: radius, b: b, c: c}
}

func (f *MitchellFilter) Radius() float64 {
	return f.radius
}

func (f *MitchellFilter) Eval(x float64) float64 {
	x = math.Abs(2 * x / f.radius)
	x2, x3 := x*x, x*x*x
	b, c := f.b, f.c

	var result float64
	switch {
	case x < 1:
		result = (12-9*b-6*c)*x3 + (-18+12*b+6*c)*x2 + (6 - 2*b)
	case x < 2:
		result = (-b-6*c)*x3 + (6*b+30*c)*x2 + (-12*b-48*c)*x + (8*b + 24*c)
	}
	return result / 6
}

func (f *MitchellFilter) String() string {
	return fmt.Sprintf("MitchellFilter[radius=%g, B=%g, C=%g]", f.radius, f.b, f.c)
}

// DefaultFilter is the filter used when a camera does not name one
func DefaultFilter() core.ReconstructionFilter {
	return NewGaussianFilter(2, 0.5)
}

// NewFilter builds the reconstruction filter registered under kind
func NewFilter(kind string, props core.PropertyList) (core.ReconstructionFilter, error) {
	var (
		filter core.ReconstructionFilter
		radius float64
		err    error
	)
	switch kind {
	case "gaussian":
		var stddev float64
		if radius, err = props.Float("radius", 2); err != nil {
			break
		}
		if stddev, err = props.Float("stddev", 0.5); err != nil {
			break
		}
		if stddev <= 0 {
			err = errors.Errorf("stddev must be positive, got %g", stddev)
			break
		}
		filter = NewGaussianFilter(radius, stddev)
	case "box":
		if radius, err = props.Float("radius", 0.5); err == nil {
			filter = NewBoxFilter(radius)
		}
	case "tent":
		if radius, err = props.Float("radius", 1); err == nil {
			filter = NewTentFilter(radius)
		}
	case "mitchell":
		var b, c float64
		if radius, err = props.Float("radius", 2); err != nil {
			break
		}
		if b, err = props.Float("B", 1.0/3); err != nil {
			break
		}
		if c, err = props.Float("C", 1.0/3); err != nil {
			break
		}
		filter = NewMitchellFilter(radius, b, c)
	default:
		return nil, errors.Errorf("unknown filter type %q", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "filter %q", kind)
	}
	if radius <= 0 {
		return nil, errors.Errorf("filter %q: radius must be positive, got %g", kind, radius)
	}
	return filter, nil
}

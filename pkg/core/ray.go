package core

import "math"

// Epsilon is the ray offset used to avoid self-intersection
const Epsilon = 1e-4

// Ray is a half-line restricted to the parametric interval [TMin, TMax].
// Direction is always unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a ray over [Epsilon, +Inf) with a normalized direction
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction.Normalize(),
		TMin:      Epsilon,
		TMax:      math.Inf(1),
	}
}

// NewRaySegment creates a ray restricted to [tMin, tMax]
func NewRaySegment(origin, direction Vec3, tMin, tMax float64) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction.Normalize(),
		TMin:      tMin,
		TMax:      tMax,
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Contains reports whether t lies inside the ray's interval
func (r Ray) Contains(t float64) bool {
	return t >= r.TMin && t <= r.TMax
}

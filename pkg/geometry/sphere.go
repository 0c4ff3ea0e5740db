package geometry

import (
	"math"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	surface
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, bsdf core.BSDF) *Sphere {
	return &Sphere{
		surface: newSurface(bsdf),
		Center:  center,
		Radius:  radius,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray) (core.Intersection, bool) {
	// Quadratic equation coefficients: at² + bt + c = 0
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return core.Intersection{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first
	root := (-halfB - sqrtD) / a
	if !ray.Contains(root) {
		root = (-halfB + sqrtD) / a
		if !ray.Contains(root) {
			return core.Intersection{}, false
		}
	}

	p := ray.At(root)
	n := p.Subtract(s.Center).Multiply(1.0 / s.Radius)
	frame := core.NewFrame(n)

	return core.Intersection{
		T:        root,
		P:        p,
		UV:       sphericalUV(n),
		GeoFrame: frame,
		ShFrame:  frame,
		Shape:    s,
	}, true
}

// sphericalUV maps a unit direction to (φ/2π, θ/π)
func sphericalUV(n core.Vec3) core.Vec2 {
	phi := math.Atan2(n.Y, n.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(math.Max(-1, math.Min(1, n.Z)))
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.Splat(s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}

// SurfaceArea returns 4πr²
func (s *Sphere) SurfaceArea() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// SamplePosition picks a point uniformly on the sphere
func (s *Sphere) SamplePosition(sample core.Vec2) (core.Vec3, core.Vec3, float64) {
	n := core.SampleUniformSphere(sample)
	return s.Center.Add(n.Multiply(s.Radius)), n, 1 / s.SurfaceArea()
}

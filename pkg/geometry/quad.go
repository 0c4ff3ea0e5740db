package geometry

import (
	"math"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	surface
	Corner core.Vec3 // One corner of the quad
	U      core.Vec3 // First edge vector
	V      core.Vec3 // Second edge vector
	Normal core.Vec3 // Unit normal along U × V
	D      float64   // Plane equation constant: n·x = d
	W      core.Vec3 // Cached n / (n·(U × V)) for the edge coordinates
	area   float64
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, bsdf core.BSDF) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		surface: newSurface(bsdf),
		Corner:  corner,
		U:       u,
		V:       v,
		Normal:  normal,
		D:       normal.Dot(corner),
		W:       normal.Multiply(1.0 / normal.Dot(cross)),
		area:    cross.Length(),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray) (core.Intersection, bool) {
	denominator := ray.Direction.Dot(q.Normal)

	// Parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return core.Intersection{}, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if !ray.Contains(t) {
		return core.Intersection{}, false
	}

	p := ray.At(t)
	hitVector := p.Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return core.Intersection{}, false
	}

	frame := core.NewFrame(q.Normal)
	return core.Intersection{
		T:        t,
		P:        p,
		UV:       core.NewVec2(alpha, beta),
		GeoFrame: frame,
		ShFrame:  frame,
		Shape:    q,
	}, true
}

// BoundingBox returns the quad's bounds, padded so it never has zero thickness
func (q *Quad) BoundingBox() core.AABB {
	corners := []core.Vec3{
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	}
	box := core.NewAABB(corners[0], corners[0])
	for _, c := range corners[1:] {
		box = box.Union(core.NewAABB(c, c))
	}
	pad := core.Splat(core.Epsilon)
	return core.NewAABB(box.Min.Subtract(pad), box.Max.Add(pad))
}

// SurfaceArea returns |U × V|
func (q *Quad) SurfaceArea() float64 {
	return q.area
}

// SamplePosition picks a point uniformly on the quad
func (q *Quad) SamplePosition(sample core.Vec2) (core.Vec3, core.Vec3, float64) {
	p := q.Corner.Add(q.U.Multiply(sample.X)).Add(q.V.Multiply(sample.Y))
	return p, q.Normal, 1 / q.area
}

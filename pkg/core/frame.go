package core

import "math"

// Frame is an orthonormal basis whose N axis is the surface normal.
// In local coordinates the normal is (0, 0, 1).
type Frame struct {
	S, T, N Vec3
}

// NewFrame builds a shading frame around a unit normal
func NewFrame(n Vec3) Frame {
	// Duff et al. 2017, branchless ONB
	sign := math.Copysign(1, n.Z)
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a
	return Frame{
		S: NewVec3(1+sign*n.X*n.X*a, sign*b, -sign*n.X),
		T: NewVec3(b, sign+n.Y*n.Y*a, -n.Y),
		N: n,
	}
}

// ToLocal expresses a world-space vector in this frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.S), v.Dot(f.T), v.Dot(f.N)}
}

// ToWorld converts a local vector back to world space
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}

// CosTheta returns the cosine of the angle between a local vector and the normal
func CosTheta(v Vec3) float64 {
	return v.Z
}

// Reflect mirrors a local direction about the normal
func Reflect(v Vec3) Vec3 {
	return Vec3{-v.X, -v.Y, v.Z}
}

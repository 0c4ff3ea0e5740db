package core

import (
	"image"
	"math"
	"math/rand/v2"
)

// IndependentSampler draws independent uniform samples from a PCG stream
type IndependentSampler struct {
	seed        uint64
	sampleCount int
	random      *rand.Rand
}

// NewIndependentSampler creates a sampler taking sampleCount samples per pixel
func NewIndependentSampler(sampleCount int, seed uint64) *IndependentSampler {
	return &IndependentSampler{
		seed:        seed,
		sampleCount: max(1, sampleCount),
		random:      rand.New(rand.NewPCG(seed, 0)),
	}
}

// Next1D returns a random float64 in [0, 1)
func (s *IndependentSampler) Next1D() float64 {
	return s.random.Float64()
}

// Next2D returns two random float64 values in [0, 1)
func (s *IndependentSampler) Next2D() Vec2 {
	return NewVec2(s.random.Float64(), s.random.Float64())
}

// SampleCount returns the number of samples per pixel
func (s *IndependentSampler) SampleCount() int {
	return s.sampleCount
}

// Clone returns a sampler with the same seed and sample count but its own state
func (s *IndependentSampler) Clone() Sampler {
	return NewIndependentSampler(s.sampleCount, s.seed)
}

// Prepare reseeds the stream from the tile's top-left corner
func (s *IndependentSampler) Prepare(tile image.Rectangle) {
	stream := uint64(uint32(tile.Min.X))<<32 | uint64(uint32(tile.Min.Y))
	s.random = rand.New(rand.NewPCG(s.seed, stream))
}

// SampleCosineHemisphere maps a square sample to a cosine-weighted direction
// around the local +Z axis
func SampleCosineHemisphere(sample Vec2) Vec3 {
	d := SampleConcentricDisk(sample)
	z := math.Sqrt(math.Max(0, 1-d.X*d.X-d.Y*d.Y))
	return NewVec3(d.X, d.Y, z)
}

// CosineHemispherePdf is the density of SampleCosineHemisphere
func CosineHemispherePdf(v Vec3) float64 {
	if v.Z <= 0 {
		return 0
	}
	return v.Z / math.Pi
}

// SampleUniformSphere generates a uniform direction on the unit sphere
func SampleUniformSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformSpherePdf is the density of SampleUniformSphere
func UniformSpherePdf() float64 {
	return 1.0 / (4.0 * math.Pi)
}

// SampleConcentricDisk maps a square sample to the unit disk (Shirley-Chiu)
func SampleConcentricDisk(sample Vec2) Vec2 {
	u := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if u.X == 0 && u.Y == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(u.X) > math.Abs(u.Y) {
		r = u.X
		theta = math.Pi / 4 * (u.Y / u.X)
	} else {
		r = u.Y
		theta = math.Pi/2 - math.Pi/4*(u.X/u.Y)
	}
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// SamplePhongLobe samples cos^exponent around the local +Z axis
func SamplePhongLobe(sample Vec2, exponent float64) Vec3 {
	cosTheta := math.Pow(sample.X, 1.0/(exponent+1))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sample.Y
	return NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// PhongLobePdf is the density of SamplePhongLobe for a lobe-local cosine
func PhongLobePdf(cosAlpha, exponent float64) float64 {
	if cosAlpha <= 0 {
		return 0
	}
	return (exponent + 1) / (2 * math.Pi) * math.Pow(cosAlpha, exponent)
}

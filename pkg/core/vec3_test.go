package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalize()
	assert.InDelta(t, 1.0, v.Length(), 1e-12)
	assert.InDelta(t, 0.6, v.X, 1e-12)

	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector must not produce NaN")
}

func TestVec3IsValid(t *testing.T) {
	tests := []struct {
		name  string
		value Vec3
		valid bool
	}{
		{"zero", Vec3{}, true},
		{"positive", NewVec3(1, 2, 3), true},
		{"negative", NewVec3(1, -2, 3), false},
		{"nan", NewVec3(math.NaN(), 0, 0), false},
		{"inf", NewVec3(0, math.Inf(1), 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.value.IsValid())
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(1, 0, 0),
		NewVec3(1, 2, 3).Normalize(),
		NewVec3(-0.3, 0.9, -0.1).Normalize(),
	}
	v := NewVec3(0.2, -0.7, 0.4)

	for _, n := range normals {
		f := NewFrame(n)
		assert.InDelta(t, 0, f.S.Dot(f.T), 1e-12)
		assert.InDelta(t, 0, f.S.Dot(f.N), 1e-12)
		assert.InDelta(t, 0, f.T.Dot(f.N), 1e-12)
		assert.InDelta(t, 1, f.S.Length(), 1e-12)
		assert.InDelta(t, 1, f.T.Length(), 1e-12)

		local := f.ToLocal(n)
		assert.InDelta(t, 1, CosTheta(local), 1e-12)

		back := f.ToWorld(f.ToLocal(v))
		assert.InDelta(t, v.X, back.X, 1e-12)
		assert.InDelta(t, v.Y, back.Y, 1e-12)
		assert.InDelta(t, v.Z, back.Z, 1e-12)
	}
}

func TestRayConstruction(t *testing.T) {
	r := NewRay(NewVec3(1, 1, 1), NewVec3(0, 0, -5))
	assert.InDelta(t, 1, r.Direction.Length(), 1e-12)
	assert.Equal(t, Epsilon, r.TMin)
	assert.True(t, math.IsInf(r.TMax, 1))
	assert.Equal(t, NewVec3(1, 1, -1), r.At(2))
	assert.False(t, r.Contains(0))
}

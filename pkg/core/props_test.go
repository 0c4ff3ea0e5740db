package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyListLookups(t *testing.T) {
	props := NewPropertyList(map[string]interface{}{
		"radius":  1.5,
		"samples": int64(16),
		"albedo":  []interface{}{0.5, 1, int64(0)},
		"gray":    0.25,
		"name":    "mirror",
		"visible": true,
	})

	f, err := props.Float("radius", 0)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	n, err := props.Int("samples", 1)
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	c, err := props.Vec3("albedo", Vec3{})
	require.NoError(t, err)
	assert.Equal(t, NewVec3(0.5, 1, 0), c)

	g, err := props.Vec3("gray", Vec3{})
	require.NoError(t, err)
	assert.Equal(t, Splat(0.25), g)

	s, err := props.String("name", "")
	require.NoError(t, err)
	assert.Equal(t, "mirror", s)

	b, err := props.Bool("visible", false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := props.Float("missing", 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, d)

	assert.Equal(t, []string{"albedo", "gray", "name", "radius", "samples", "visible"}, props.Names())
}

func TestPropertyListTypeErrors(t *testing.T) {
	props := NewPropertyList(map[string]interface{}{
		"radius": "big",
		"count":  2.5,
		"color":  []interface{}{1, 2},
	})

	_, err := props.Float("radius", 0)
	assert.Error(t, err)
	_, err = props.Int("count", 0)
	assert.Error(t, err)
	_, err = props.Vec3("color", Vec3{})
	assert.Error(t, err)
	_, err = props.Bool("radius", false)
	assert.Error(t, err)
}

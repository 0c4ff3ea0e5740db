package scene

import (
	"github.com/df07/go-tiled-renderer/pkg/core"
	"github.com/df07/go-tiled-renderer/pkg/geometry"
	"github.com/df07/go-tiled-renderer/pkg/material"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

// CornellBoxSize is the edge length of the box
const CornellBoxSize = 555.0

// NewCornellBox creates the classic Cornell box with a ceiling area light, a
// mirror sphere and a glass sphere. Every wall faces into the box.
func NewCornellBox(width, height int, integrator core.Integrator, sampler core.Sampler) (*Scene, error) {
	camera, err := renderer.NewPerspectiveCamera(renderer.CameraConfig{
		Width:  width,
		Height: height,
		Origin: core.NewVec3(278, 278, -800), // Outside the open side, looking in
		Target: core.NewVec3(278, 278, 0),
		Up:     core.NewVec3(0, 1, 0),
		FOV:    40,
	}, renderer.DefaultFilter())
	if err != nil {
		return nil, err
	}

	s := New()
	s.Camera = camera
	s.Integrator = integrator
	s.Sampler = sampler

	white := &material.Diffuse{Albedo: core.NewVec3(0.73, 0.73, 0.73)}
	red := &material.Diffuse{Albedo: core.NewVec3(0.65, 0.05, 0.05)}
	green := &material.Diffuse{Albedo: core.NewVec3(0.12, 0.45, 0.15)}

	size := CornellBoxSize
	x := core.NewVec3(size, 0, 0)
	y := core.NewVec3(0, size, 0)
	z := core.NewVec3(0, 0, size)

	// Floor, ceiling, back, left and right
	s.AddShape(geometry.NewQuad(core.Vec3{}, z, x, white))
	s.AddShape(geometry.NewQuad(y, x, z, white))
	s.AddShape(geometry.NewQuad(z, y, x, white))
	s.AddShape(geometry.NewQuad(core.Vec3{}, y, z, red))
	s.AddShape(geometry.NewQuad(x, z, y, green))

	// Ceiling light, slightly below the ceiling and facing down
	lightSize := 130.0
	offset := (size - lightSize) / 2
	light := geometry.NewQuad(
		core.NewVec3(offset, size-1, offset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		&material.Diffuse{Albedo: core.Vec3{}},
	)
	s.AddAreaLight(light, core.NewVec3(15, 15, 15))

	s.AddShape(geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, &material.Mirror{}))
	s.AddShape(geometry.NewSphere(core.NewVec3(370, 90, 351), 90, &material.Dielectric{IntIOR: 1.5, ExtIOR: 1}))

	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	return s, nil
}

package renderer

import (
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// CameraConfig describes a perspective camera
type CameraConfig struct {
	Width          int
	Height         int
	Origin         core.Vec3
	Target         core.Vec3
	Up             core.Vec3
	FOV            float64 // Horizontal field of view in degrees
	ApertureRadius float64 // Zero for a pinhole camera
	FocalDistance  float64 // Distance to the plane in focus
}

// DefaultCameraConfig returns a 1280×720 pinhole camera looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Width:         1280,
		Height:        720,
		Origin:        core.Vec3{},
		Target:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		FOV:           30,
		FocalDistance: 10,
	}
}

// PerspectiveCamera generates rays through a virtual image plane, with
// optional thin lens depth of field
type PerspectiveCamera struct {
	config CameraConfig
	filter core.ReconstructionFilter

	forward    core.Vec3
	right      core.Vec3
	up         core.Vec3
	halfWidth  float64
	halfHeight float64
}

// NewPerspectiveCamera creates a camera; a nil filter selects DefaultFilter
func NewPerspectiveCamera(config CameraConfig, filter core.ReconstructionFilter) (*PerspectiveCamera, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, errors.Errorf("camera: invalid output size %dx%d", config.Width, config.Height)
	}
	if config.FOV <= 0 || config.FOV >= 180 {
		return nil, errors.Errorf("camera: field of view must be in (0, 180), got %g", config.FOV)
	}
	if config.ApertureRadius < 0 || (config.ApertureRadius > 0 && config.FocalDistance <= 0) {
		return nil, errors.New("camera: thin lens needs a non-negative aperture and a positive focal distance")
	}

	forward := config.Target.Subtract(config.Origin).Normalize()
	right := forward.Cross(config.Up).Normalize()
	if forward.IsZero() || right.IsZero() {
		return nil, errors.New("camera: origin, target and up do not define a view")
	}
	if filter == nil {
		filter = DefaultFilter()
	}

	halfWidth := math.Tan(config.FOV * math.Pi / 360)
	return &PerspectiveCamera{
		config:     config,
		filter:     filter,
		forward:    forward,
		right:      right,
		up:         right.Cross(forward),
		halfWidth:  halfWidth,
		halfHeight: halfWidth * float64(config.Height) / float64(config.Width),
	}, nil
}

// NewPerspectiveCameraFromProps reads a camera from scene properties
func NewPerspectiveCameraFromProps(props core.PropertyList, filter core.ReconstructionFilter) (*PerspectiveCamera, error) {
	config := DefaultCameraConfig()
	var err error
	if config.Width, err = props.Int("width", config.Width); err != nil {
		return nil, err
	}
	if config.Height, err = props.Int("height", config.Height); err != nil {
		return nil, err
	}
	if config.Origin, err = props.Vec3("origin", config.Origin); err != nil {
		return nil, err
	}
	if config.Target, err = props.Vec3("target", config.Target); err != nil {
		return nil, err
	}
	if config.Up, err = props.Vec3("up", config.Up); err != nil {
		return nil, err
	}
	if config.FOV, err = props.Float("fov", config.FOV); err != nil {
		return nil, err
	}
	if config.ApertureRadius, err = props.Float("apertureRadius", config.ApertureRadius); err != nil {
		return nil, err
	}
	if config.FocalDistance, err = props.Float("focalDistance", config.FocalDistance); err != nil {
		return nil, err
	}
	return NewPerspectiveCamera(config, filter)
}

// OutputSize returns the image size in pixels
func (c *PerspectiveCamera) OutputSize() image.Point {
	return image.Pt(c.config.Width, c.config.Height)
}

// ReconstructionFilter returns the filter samples are splatted with
func (c *PerspectiveCamera) ReconstructionFilter() core.ReconstructionFilter {
	return c.filter
}

// SampleRay maps a position on the image plane (in pixels, origin at the
// top-left corner) and a lens sample to a primary ray. The importance
// weight is always one.
func (c *PerspectiveCamera) SampleRay(pixelSample, apertureSample core.Vec2) (core.Ray, core.Vec3) {
	u := 2*pixelSample.X/float64(c.config.Width) - 1
	v := 1 - 2*pixelSample.Y/float64(c.config.Height)

	dir := c.forward.
		Add(c.right.Multiply(u * c.halfWidth)).
		Add(c.up.Multiply(v * c.halfHeight))

	if c.config.ApertureRadius <= 0 {
		return core.NewRay(c.config.Origin, dir), core.Splat(1)
	}

	// Every ray through the lens meets the pinhole ray on the focal plane
	focus := c.config.Origin.Add(dir.Multiply(c.config.FocalDistance))
	lens := core.SampleConcentricDisk(apertureSample)
	origin := c.config.Origin.
		Add(c.right.Multiply(lens.X * c.config.ApertureRadius)).
		Add(c.up.Multiply(lens.Y * c.config.ApertureRadius))

	return core.NewRay(origin, focus.Subtract(origin)), core.Splat(1)
}

func (c *PerspectiveCamera) String() string {
	return fmt.Sprintf("PerspectiveCamera[%dx%d, origin=%v, target=%v, fov=%g, filter=%v]",
		c.config.Width, c.config.Height, c.config.Origin, c.config.Target, c.config.FOV, c.filter)
}

package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-tiled-renderer/pkg/core"
	"github.com/df07/go-tiled-renderer/pkg/geometry"
	"github.com/df07/go-tiled-renderer/pkg/integrator"
	"github.com/df07/go-tiled-renderer/pkg/lights"
	"github.com/df07/go-tiled-renderer/pkg/log"
	"github.com/df07/go-tiled-renderer/pkg/material"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

var logger = log.New("scene")

// Format is the encoding of a scene description
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unsupported scene file extension %q", filepath.Ext(path))
	}
}

// LoadFile reads, builds and preprocesses the scene stored at path
func LoadFile(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	s, err := Load(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return s, nil
}

// Load decodes a scene description and builds the scene from it.
//
// A description is a tree of objects. Each object has a "type" key selecting
// the implementation and carries its parameters alongside; nested objects
// ("bsdf", "emitter", "filter") configure the object that contains them:
//
//	integrator: {type: path_mis, rrDepth: 5}
//	sampler:    {type: independent, sampleCount: 64}
//	camera:     {type: perspective, width: 640, height: 480, filter: {type: tent}}
//	shapes:
//	  - {type: sphere, radius: 1, bsdf: {type: mirror}}
//	  - {type: quad, emitter: {type: area, radiance: 10}}
//	emitters:
//	  - {type: point, position: [0, 5, 0], power: 100}
func Load(data []byte, format Format) (*Scene, error) {
	var desc map[string]interface{}
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &desc)
	default:
		err = yaml.Unmarshal(data, &desc)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %v", format)
	}
	return Build(desc)
}

// Build creates and preprocesses a scene from a decoded description
func Build(desc map[string]interface{}) (*Scene, error) {
	s := New()

	for _, key := range core.NewPropertyList(desc).Names() {
		switch key {
		case "integrator", "sampler", "camera", "shapes", "emitters":
		default:
			logger.Warningf("Ignoring unknown scene entry %q", key)
		}
	}

	if v, ok := desc["integrator"]; ok {
		obj, err := decodeObject("integrator", v)
		if err != nil {
			return nil, err
		}
		if s.Integrator, err = integrator.New(obj.kind, obj.props); err != nil {
			return nil, err
		}
	}

	if v, ok := desc["sampler"]; ok {
		obj, err := decodeObject("sampler", v)
		if err != nil {
			return nil, err
		}
		if s.Sampler, err = newSampler(obj); err != nil {
			return nil, err
		}
	}

	if v, ok := desc["camera"]; ok {
		obj, err := decodeObject("camera", v)
		if err != nil {
			return nil, err
		}
		if s.Camera, err = newCamera(obj); err != nil {
			return nil, err
		}
	}

	shapes, err := decodeList("shapes", desc["shapes"])
	if err != nil {
		return nil, err
	}
	for i, obj := range shapes {
		if err := s.addShape(obj); err != nil {
			return nil, errors.Wrapf(err, "shapes[%d]", i)
		}
	}

	emitters, err := decodeList("emitters", desc["emitters"])
	if err != nil {
		return nil, err
	}
	for i, obj := range emitters {
		e, err := lights.New(obj.kind, obj.props, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "emitters[%d]", i)
		}
		s.AddEmitter(e)
	}

	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	logger.Infof("Loaded scene with %d shapes and %d emitters", len(s.Shapes), s.Emitters.Len())
	logger.Debugf("%v", s)
	return s, nil
}

func (s *Scene) addShape(obj object) error {
	shape, err := geometry.New(obj.kind, obj.props)
	if err != nil {
		return err
	}

	if child, ok := obj.children["bsdf"]; ok {
		bsdf, err := material.New(child.kind, child.props)
		if err != nil {
			return err
		}
		shape.SetBSDF(bsdf)
	} else {
		shape.SetBSDF(&material.Diffuse{Albedo: core.Splat(0.5)})
	}

	if child, ok := obj.children["emitter"]; ok {
		e, err := lights.New(child.kind, child.props, shape)
		if err != nil {
			return err
		}
		shape.SetEmitter(s.Emitters.Add(e))
	}

	s.AddShape(shape)
	return nil
}

func newSampler(obj object) (core.Sampler, error) {
	if obj.kind != "independent" {
		return nil, errors.Errorf("unknown sampler type %q", obj.kind)
	}
	count, err := obj.props.Int("sampleCount", DefaultSampleCount)
	if err != nil {
		return nil, errors.Wrap(err, "sampler")
	}
	seed, err := obj.props.Int("seed", 0)
	if err != nil {
		return nil, errors.Wrap(err, "sampler")
	}
	if count <= 0 || seed < 0 {
		return nil, errors.Errorf("sampler: sampleCount must be positive and seed non-negative (sampleCount=%d, seed=%d)", count, seed)
	}
	return core.NewIndependentSampler(count, uint64(seed)), nil
}

func newCamera(obj object) (core.Camera, error) {
	if obj.kind != "perspective" {
		return nil, errors.Errorf("unknown camera type %q", obj.kind)
	}
	filter := renderer.DefaultFilter()
	if child, ok := obj.children["filter"]; ok {
		var err error
		if filter, err = renderer.NewFilter(child.kind, child.props); err != nil {
			return nil, errors.Wrap(err, "camera")
		}
	}
	camera, err := renderer.NewPerspectiveCameraFromProps(obj.props, filter)
	if err != nil {
		return nil, errors.Wrap(err, "camera")
	}
	return camera, nil
}

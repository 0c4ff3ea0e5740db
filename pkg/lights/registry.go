package lights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// PowerEmitter is implemented by emitters that know their total emitted flux
type PowerEmitter interface {
	TotalPower() core.Vec3
}

type identifiable interface {
	setID(id core.EmitterID)
}

// Registry owns the scene's emitters. EmitterIDs are indices into it and
// stay valid for the registry's lifetime.
type Registry struct {
	emitters []core.Emitter
	powerCDF []float64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers an emitter and returns its handle
func (r *Registry) Add(e core.Emitter) core.EmitterID {
	id := core.EmitterID(len(r.emitters))
	r.emitters = append(r.emitters, e)
	if ie, ok := e.(identifiable); ok {
		ie.setID(id)
	}
	r.powerCDF = r.buildPowerCDF()
	return id
}

// Get returns the emitter for id, or nil when id is not registered
func (r *Registry) Get(id core.EmitterID) core.Emitter {
	if id < 0 || int(id) >= len(r.emitters) {
		return nil
	}
	return r.emitters[id]
}

// All returns the registered emitters in registration order
func (r *Registry) All() []core.Emitter {
	return r.emitters
}

// Len returns the number of registered emitters
func (r *Registry) Len() int {
	return len(r.emitters)
}

// SampleUniform picks an emitter with equal probability and returns it with
// its selection probability
func (r *Registry) SampleUniform(u float64) (core.EmitterID, float64) {
	n := len(r.emitters)
	if n == 0 {
		return core.NoEmitter, 0
	}
	i := int(u * float64(n))
	if i >= n {
		i = n - 1
	}
	return core.EmitterID(i), 1 / float64(n)
}

// SamplePower picks an emitter proportionally to its emitted power.
// Emitters without a known power get the mean weight; if all weights are
// zero the choice is uniform.
func (r *Registry) SamplePower(u float64) (core.EmitterID, float64) {
	n := len(r.emitters)
	if n == 0 {
		return core.NoEmitter, 0
	}
	cdf := r.powerCDF

	i := sort.Search(n, func(i int) bool { return u < cdf[i] })
	if i >= n {
		i = n - 1
	}
	prev := 0.0
	if i > 0 {
		prev = cdf[i-1]
	}
	return core.EmitterID(i), cdf[i] - prev
}

// buildPowerCDF runs on every Add so sampling never writes to the registry
func (r *Registry) buildPowerCDF() []float64 {
	n := len(r.emitters)
	weights := make([]float64, n)
	known, total := 0, 0.0
	for i, e := range r.emitters {
		if pe, ok := e.(PowerEmitter); ok {
			weights[i] = pe.TotalPower().Luminance()
			known++
			total += weights[i]
		} else {
			weights[i] = -1
		}
	}
	mean := 1.0
	if known > 0 && total > 0 {
		mean = total / float64(known)
	}
	total = 0
	for i := range weights {
		if weights[i] < 0 {
			weights[i] = mean
		}
		total += weights[i]
	}

	cdf := make([]float64, n)
	sum := 0.0
	for i, w := range weights {
		if total > 0 {
			sum += w / total
		} else {
			sum += 1 / float64(n)
		}
		cdf[i] = sum
	}
	cdf[n-1] = 1
	return cdf
}

func (r *Registry) String() string {
	if len(r.emitters) == 0 {
		return "Registry{no emitters}"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Registry{%d emitters:", len(r.emitters))
	for i, e := range r.emitters {
		fmt.Fprintf(&b, "\n  [%d] %v", i, e)
	}
	b.WriteString("}")
	return b.String()
}

// New builds the emitter registered under kind. Area lights need the shape
// they are attached to; point lights ignore it.
func New(kind string, props core.PropertyList, shape core.AreaSampler) (core.Emitter, error) {
	switch kind {
	case "area":
		if shape == nil {
			return nil, errors.New("area light must be attached to a shape")
		}
		radiance, err := props.Vec3("radiance", core.Splat(1))
		if err != nil {
			return nil, errors.Wrap(err, "area light")
		}
		if !radiance.IsValid() {
			return nil, errors.Errorf("area light: invalid radiance %v", radiance)
		}
		return NewAreaLight(shape, radiance), nil

	case "point":
		position, err := props.Vec3("position", core.Vec3{})
		if err != nil {
			return nil, errors.Wrap(err, "point light")
		}
		power, err := props.Vec3("power", core.Splat(1))
		if err != nil {
			return nil, errors.Wrap(err, "point light")
		}
		if !power.IsValid() {
			return nil, errors.Errorf("point light: invalid power %v", power)
		}
		return NewPointLight(position, power), nil

	default:
		return nil, errors.Errorf("unknown emitter type %q", kind)
	}
}

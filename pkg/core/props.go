package core

import (
	"fmt"
	"sort"
)

// PropertyList holds the named parameters an object is configured from.
// Values come from decoded scene files: numbers, strings, booleans and
// numeric lists for points and colors.
type PropertyList struct {
	values map[string]interface{}
}

// NewPropertyList wraps a decoded parameter map
func NewPropertyList(values map[string]interface{}) PropertyList {
	if values == nil {
		values = map[string]interface{}{}
	}
	return PropertyList{values: values}
}

// Set stores a value, overwriting any previous one
func (p PropertyList) Set(name string, value interface{}) {
	p.values[name] = value
}

// Names returns the sorted property names
func (p PropertyList) Names() []string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Float returns a numeric property or def when it is absent
func (p PropertyList) Float(name string, def float64) (float64, error) {
	v, ok := p.values[name]
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("property %q: expected a number, got %T", name, v)
	}
	return f, nil
}

// Int returns an integer property or def when it is absent
func (p PropertyList) Int(name string, def int) (int, error) {
	v, ok := p.values[name]
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("property %q: expected an integer, got %v", name, v)
	}
	return int(f), nil
}

// Bool returns a boolean property or def when it is absent
func (p PropertyList) Bool(name string, def bool) (bool, error) {
	v, ok := p.values[name]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("property %q: expected a boolean, got %T", name, v)
	}
	return b, nil
}

// String returns a string property or def when it is absent
func (p PropertyList) String(name string, def string) (string, error) {
	v, ok := p.values[name]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %q: expected a string, got %T", name, v)
	}
	return s, nil
}

// Vec3 returns a point, vector or color property. A single number is
// accepted for colors and expands to a gray value.
func (p PropertyList) Vec3(name string, def Vec3) (Vec3, error) {
	v, ok := p.values[name]
	if !ok {
		return def, nil
	}
	if f, ok := toFloat(v); ok {
		return Splat(f), nil
	}
	list, ok := v.([]interface{})
	if !ok || len(list) != 3 {
		return Vec3{}, fmt.Errorf("property %q: expected a list of 3 numbers, got %v", name, v)
	}
	var c [3]float64
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok {
			return Vec3{}, fmt.Errorf("property %q: element %d is not a number", name, i)
		}
		c[i] = f
	}
	return NewVec3(c[0], c[1], c[2]), nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

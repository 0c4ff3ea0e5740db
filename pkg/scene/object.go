package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-tiled-renderer/pkg/core"
)

// object is one node of a scene description
type object struct {
	kind     string
	props    core.PropertyList
	children map[string]object
}

// nestedObjects are the keys whose values configure a child object
var nestedObjects = map[string]bool{
	"bsdf":    true,
	"emitter": true,
	"filter":  true,
}

func decodeObject(name string, v interface{}) (object, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return object{}, errors.Errorf("%s: expected an object, got %T", name, v)
	}
	kind, ok := m["type"].(string)
	if !ok || kind == "" {
		return object{}, errors.Errorf("%s: missing \"type\"", name)
	}

	obj := object{kind: kind, props: core.NewPropertyList(nil), children: map[string]object{}}
	for key, value := range m {
		switch {
		case key == "type":
		case nestedObjects[key]:
			child, err := decodeObject(name+"."+key, value)
			if err != nil {
				return object{}, err
			}
			obj.children[key] = child
		default:
			obj.props.Set(key, value)
		}
	}
	return obj, nil
}

func decodeList(name string, v interface{}) ([]object, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("%s: expected a list, got %T", name, v)
	}
	objects := make([]object, 0, len(items))
	for _, item := range items {
		obj, err := decodeObject(name, item)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

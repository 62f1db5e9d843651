// Package scene decodes viewer object graphs from JSON.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrUnsupportedType is returned when an object carries no drawable
// geometry.
var ErrUnsupportedType = errors.New("scene: unsupported object type")

// childKeys are the properties that hold nested objects.
var childKeys = []string{"elements", "@elements", "children"}

// Object is one decoded object and its nested children.
type Object struct {
	ID          string
	SpeckleType string
	Raw         map[string]any
	Children    []*Object
}

// Decode reads a single root object. The root may also be a bare array of
// objects, which is wrapped in a synthetic collection.
func Decode(r io.Reader) (*Object, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	switch t := v.(type) {
	case map[string]any:
		return build(t, "root"), nil
	case []any:
		return build(map[string]any{"id": "root", "speckle_type": "Collection", "elements": t}, "root"), nil
	default:
		return nil, fmt.Errorf("decode scene: root is %T, want object", v)
	}
}

// DecodeFile decodes the scene stored at path.
func DecodeFile(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func build(raw map[string]any, fallbackID string) *Object {
	o := &Object{Raw: raw}
	o.ID, _ = raw["id"].(string)
	if o.ID == "" {
		o.ID = fallbackID
	}
	o.SpeckleType, _ = raw["speckle_type"].(string)
	for _, key := range childKeys {
		list, ok := raw[key].([]any)
		if !ok {
			continue
		}
		for i, item := range list {
			child, ok := item.(map[string]any)
			if !ok {
				continue
			}
			o.Children = append(o.Children, build(child, o.ID+"/"+key+"/"+strconv.Itoa(i)))
		}
	}
	return o
}

// Walk visits o and its descendants depth first with their parent. It
// stops when fn returns false.
func (o *Object) Walk(fn func(obj, parent *Object) bool) {
	o.walk(nil, fn)
}

func (o *Object) walk(parent *Object, fn func(obj, parent *Object) bool) bool {
	if !fn(o, parent) {
		return false
	}
	for _, c := range o.Children {
		if !c.walk(o, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of objects in the graph.
func (o *Object) Count() int {
	n := 0
	o.Walk(func(*Object, *Object) bool { n++; return true })
	return n
}

// lua/json.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"encoding/json"
	"fmt"
	gomath "math"
	"strconv"

	"github.com/iancoleman/orderedmap"
)

// MarshalJSON encodes the document as a JSON object whose members follow
// binding order. Tables become objects with their entries in insertion
// order; integer keys are written as decimal strings.
func (d *Document) MarshalJSON() ([]byte, error) {
	om := orderedmap.New()
	for _, b := range d.bindings {
		v, err := jsonValue(b.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name, err)
		}
		om.Set(b.Name, v)
	}
	return json.Marshal(om)
}

func (t *Table) MarshalJSON() ([]byte, error) {
	v, err := jsonValue(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func jsonValue(v Value) (any, error) {
	switch v := v.(type) {
	case nil, Nil:
		return nil, nil
	case Bool:
		return bool(v), nil
	case Number:
		if gomath.IsNaN(float64(v)) || gomath.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnrepresentable, float64(v))
		}
		return float64(v), nil
	case String:
		return string(v), nil
	case *Table:
		om := orderedmap.New()
		for _, e := range v.entries {
			jv, err := jsonValue(e.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Key, err)
			}
			if s, ok := e.Key.AsString(); ok {
				om.Set(s, jv)
			} else {
				om.Set(strconv.Itoa(e.Key.num), jv)
			}
		}
		return om, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnrepresentable, v)
	}
}

// lua/value.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package lua reads and writes the subset of Lua used by DCS mission
// files: a sequence of top-level "name = value" bindings whose values
// are booleans, numbers, strings, or nested table constructors.
package lua

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"
)

// Value is one of Nil, Bool, Number, String, or *Table.
type Value interface {
	luaValue()
}

type Nil struct{}

type Bool bool

type Number float64

type String string

func (Nil) luaValue()    {}
func (Bool) luaValue()   {}
func (Number) luaValue() {}
func (String) luaValue() {}
func (*Table) luaValue() {}

// TypeName returns the Lua type name of v.
func TypeName(v Value) string {
	switch v := v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *Table:
		if v == nil {
			return "nil"
		}
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func mismatch(want string, v Value) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, want, TypeName(v))
}

func AsTable(v Value) (*Table, error) {
	if t, ok := v.(*Table); ok && t != nil {
		return t, nil
	}
	return nil, mismatch("table", v)
}

func AsString(v Value) (string, error) {
	if s, ok := v.(String); ok {
		return string(s), nil
	}
	return "", mismatch("string", v)
}

func AsNumber(v Value) (float64, error) {
	if n, ok := v.(Number); ok {
		return float64(n), nil
	}
	return 0, mismatch("number", v)
}

func AsBool(v Value) (bool, error) {
	if b, ok := v.(Bool); ok {
		return bool(b), nil
	}
	return false, mismatch("boolean", v)
}

// AsInt is the lenient integer accessor: it accepts a Number or a String
// holding a number (e.g. "12" or "3.5"), truncating toward zero. It fails
// only when v has no finite numeric interpretation that fits in an int.
func AsInt(v Value) (int, error) {
	var f float64
	switch v := v.(type) {
	case Number:
		f = float64(v)
	case String:
		s := strings.TrimSpace(string(v))
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		pf, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, mismatch("integer", v)
		}
		f = pf
	default:
		return 0, mismatch("integer", v)
	}
	if f = gomath.Trunc(f); gomath.IsNaN(f) || gomath.Abs(f) >= 1<<53 {
		return 0, mismatch("integer", v)
	}
	return int(f), nil
}

func isIntegral(f float64) bool {
	return !gomath.IsInf(f, 0) && f == gomath.Trunc(f) && gomath.Abs(f) < 1<<53
}

// CloneValue returns a copy of v that shares no tables with v.
func CloneValue(v Value) Value {
	if t, ok := v.(*Table); ok && t != nil {
		return t.Clone()
	}
	return v
}

// Equal reports whether a and b are structurally identical: same
// variants, same scalar values and, for tables, the same keys holding
// equal values in the same order.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nil, Nil:
		switch b.(type) {
		case nil, Nil:
			return true
		}
		return false
	case *Table:
		bt, ok := b.(*Table)
		if !ok || a.Len() != bt.Len() {
			return false
		}
		for i, e := range a.entries {
			f := bt.entries[i]
			if e.Key != f.Key || !Equal(e.Value, f.Value) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// lua/document.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"fmt"
	"iter"
)

type Binding struct {
	Name  string
	Value Value
}

// Document is the ordered set of top-level bindings of a parsed file.
type Document struct {
	bindings []Binding
	index    map[string]int
}

func NewDocument() *Document {
	return &Document{index: make(map[string]int)}
}

func (d *Document) Len() int {
	return len(d.bindings)
}

func (d *Document) Names() []string {
	names := make([]string, len(d.bindings))
	for i, b := range d.bindings {
		names[i] = b.Name
	}
	return names
}

func (d *Document) Get(name string) (Value, bool) {
	if i, ok := d.index[name]; ok {
		return d.bindings[i].Value, true
	}
	return nil, false
}

func (d *Document) Lookup(name string) (Value, error) {
	if v, ok := d.Get(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: binding %q", ErrKeyNotFound, name)
}

// Table returns the table bound to name.
func (d *Document) Table(name string) (*Table, error) {
	v, err := d.Lookup(name)
	if err != nil {
		return nil, err
	}
	t, err := AsTable(v)
	if err != nil {
		return nil, fmt.Errorf("binding %q: %w", name, err)
	}
	return t, nil
}

// Set binds name to v. Rebinding an existing name replaces its value
// but keeps its position.
func (d *Document) Set(name string, v Value) {
	if i, ok := d.index[name]; ok {
		d.bindings[i].Value = v
		return
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	d.index[name] = len(d.bindings)
	d.bindings = append(d.bindings, Binding{Name: name, Value: v})
}

func (d *Document) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, b := range d.bindings {
			if !yield(b.Name, b.Value) {
				return
			}
		}
	}
}

// EqualDocuments reports whether a and b have the same bindings, in the
// same order, with structurally equal values.
func EqualDocuments(a, b *Document) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, ba := range a.bindings {
		bb := b.bindings[i]
		if ba.Name != bb.Name || !Equal(ba.Value, bb.Value) {
			return false
		}
	}
	return true
}

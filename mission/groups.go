// mission/groups.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/ilominar/viperops2miz/lua"
)

const (
	KindPlane      = "plane"
	KindHelicopter = "helicopter"
	KindVehicle    = "vehicle"
	KindShip       = "ship"
	KindStatic     = "static"
)

var allKinds = []string{KindPlane, KindHelicopter, KindVehicle, KindShip, KindStatic}

// groupRef locates a group table within coalition/<side>/country/<n>/<kind>/group.
type groupRef struct {
	Name    string
	Side    string
	Kind    string
	Country int
	// List is the group list holding Group; clones are added to it.
	List  *lua.Table
	Group *lua.Table
}

// groups returns the named groups of the given kinds on side, in
// document order. A side or country without a given kind has no groups
// of that kind; groups without a name are skipped.
func (m *Mission) groups(side string, kinds ...string) ([]groupRef, error) {
	countries, err := m.root.TableAt("coalition/" + side + "/country")
	if errors.Is(err, lua.ErrKeyNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, missingField(side, err)
	}

	var refs []groupRef
	for ck, cv := range countries.All() {
		country, err := lua.AsTable(cv)
		if err != nil {
			return nil, missingField(fmt.Sprintf("%s country %s", side, ck), err)
		}
		cn, _ := ck.AsInt()

		for _, kind := range kinds {
			list, err := country.TableAt(kind + "/group")
			if errors.Is(err, lua.ErrKeyNotFound) {
				continue
			} else if err != nil {
				return nil, missingField(fmt.Sprintf("%s country %s", side, ck), err)
			}

			for _, gv := range list.All() {
				g, err := lua.AsTable(gv)
				if err != nil {
					continue
				}
				name, err := g.StringField("name")
				if err != nil || name == "" {
					m.lg.Debugf("%s/%s: skipping group without a name", side, kind)
					continue
				}
				refs = append(refs, groupRef{
					Name:    name,
					Side:    side,
					Kind:    kind,
					Country: cn,
					List:    list,
					Group:   g,
				})
			}
		}
	}
	return refs, nil
}

// templateIndex maps group names to the groups they were found in.
// When several groups share a name, the last one found is used.
type templateIndex struct {
	byName map[string]groupRef
	all    []groupRef
}

func newTemplateIndex(refs []groupRef) *templateIndex {
	ti := &templateIndex{byName: make(map[string]groupRef, len(refs)), all: refs}
	for _, ref := range refs {
		ti.byName[ref.Name] = ref
	}
	return ti
}

func (ti *templateIndex) Lookup(name string) (groupRef, bool) {
	ref, ok := ti.byName[name]
	return ref, ok
}

func (ti *templateIndex) Names() iter.Seq[string] {
	return maps.Keys(ti.byName)
}

// Matching returns the templates of the given kind accepted by match,
// in document order.
func (ti *templateIndex) Matching(kind string, match func(string) bool) []groupRef {
	var refs []groupRef
	for _, ref := range ti.all {
		if ref.Kind == kind && match(ref.Name) {
			refs = append(refs, ref)
		}
	}
	return refs
}

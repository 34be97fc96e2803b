// mission/mission.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ilominar/viperops2miz/geo"
	"github.com/ilominar/viperops2miz/log"
	"github.com/ilominar/viperops2miz/lua"
)

// Mission wraps a parsed mission document and tracks its transformation.
type Mission struct {
	doc     *lua.Document
	root    *lua.Table
	theater string
	opts    Options
	lg      *log.Logger

	groupIDs idCounter[int]
	unitIDs  idCounter[int]

	state   TransformState
	err     error
	changes []Change
	source  *geo.Catalog
}

// ChangeKind identifies what kind of edit a Change records.
type ChangeKind int

const (
	ReferencePointMoved ChangeKind = iota
	GroupCloned
	RouteRewritten
)

func (k ChangeKind) String() string {
	switch k {
	case ReferencePointMoved:
		return "reference point"
	case GroupCloned:
		return "clone"
	case RouteRewritten:
		return "route"
	default:
		return "unknown"
	}
}

// Change describes a single edit made by the engine.
type Change struct {
	Kind ChangeKind
	// Group is the name of the group that was created or edited; for
	// ReferencePointMoved it is the side.
	Group string
	// Source is the catalog entry that caused the change.
	Source string
	// Count is the number of waypoints written for RouteRewritten and
	// the number of units for GroupCloned.
	Count int
}

// New wraps doc, which must have a "mission" binding holding a table.
func New(doc *lua.Document, opts Options, lg *log.Logger) (*Mission, error) {
	root, err := doc.Table("mission")
	if err != nil {
		return nil, missingField("mission", err)
	}
	// A missing theater is reported when the engine needs it.
	theater, _ := root.StringField("theatre")

	opts = opts.withDefaults()
	return &Mission{
		doc:      doc,
		root:     root,
		theater:  theater,
		opts:     opts,
		lg:       lg,
		groupIDs: idCounter[int]{next: opts.GroupIDBase},
		unitIDs:  idCounter[int]{next: opts.UnitIDBase},
	}, nil
}

// Parse parses the text of a mission archive member and wraps it.
func Parse(text []byte, opts Options, lg *log.Logger) (*Mission, error) {
	doc, err := lua.Parse(text)
	if err != nil {
		return nil, err
	}
	return New(doc, opts, lg)
}

// Marshal serializes the mission. It fails with ErrMissionUnusable if a
// transformation was attempted and failed partway through.
func (m *Mission) Marshal() ([]byte, error) {
	if m.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissionUnusable, m.err)
	}
	return lua.Marshal(m.doc)
}

func (m *Mission) Theater() string         { return m.theater }
func (m *Mission) Document() *lua.Document { return m.doc }
func (m *Mission) State() TransformState   { return m.state }
func (m *Mission) Options() Options        { return m.opts }
func (m *Mission) Changes() []Change       { return slices.Clone(m.changes) }
func (m *Mission) NextGroupID() int        { return m.groupIDs.Peek() }
func (m *Mission) NextUnitID() int         { return m.unitIDs.Peek() }

// Source returns the copy of the catalog the mission was transformed
// with, or nil if Apply has not been given one. It must not be modified.
func (m *Mission) Source() *geo.Catalog { return m.source }

// Err returns the error that made the mission unusable, if any.
func (m *Mission) Err() error { return m.err }

func (m *Mission) recordChange(c Change) {
	m.changes = append(m.changes, c)
}

// GroupCount summarizes the groups of one kind on one side.
type GroupCount struct {
	Side   string
	Kind   string
	Groups int
	Units  int
}

// Stats counts groups and units per side and kind, sorted by side and
// then kind.
func (m *Mission) Stats() []GroupCount {
	coalitions, err := m.root.TableField("coalition")
	if err != nil {
		return nil
	}

	counts := make(map[[2]string]*GroupCount)
	for sk, sv := range coalitions.All() {
		side, ok := sk.AsString()
		if !ok {
			continue
		}
		if _, err := lua.AsTable(sv); err != nil {
			continue
		}
		refs, err := m.groups(side, allKinds...)
		if err != nil {
			m.lg.Debugf("%s: %v", side, err)
		}
		for _, ref := range refs {
			c, ok := counts[[2]string{side, ref.Kind}]
			if !ok {
				c = &GroupCount{Side: side, Kind: ref.Kind}
				counts[[2]string{side, ref.Kind}] = c
			}
			c.Groups++
			if units, err := ref.Group.TableField("units"); err == nil {
				c.Units += units.Len()
			}
		}
	}

	var stats []GroupCount
	for _, c := range counts {
		stats = append(stats, *c)
	}
	slices.SortFunc(stats, func(a, b GroupCount) int {
		if c := strings.Compare(a.Side, b.Side); c != 0 {
			return c
		}
		return strings.Compare(a.Kind, b.Kind)
	})
	return stats
}

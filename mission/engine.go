// mission/engine.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ilominar/viperops2miz/geo"
	"github.com/ilominar/viperops2miz/log"
	"github.com/ilominar/viperops2miz/lua"
	"github.com/ilominar/viperops2miz/math"
	"github.com/ilominar/viperops2miz/util"

	"github.com/davecgh/go-spew/spew"
)

// dependentMarker separates an entity name from the suffix of the static
// groups that are placed along with it, e.g. "SA-10 Site SG-1".
const dependentMarker = " SG-"

var changeDumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}

// Engine applies a geography catalog to mission templates.
type Engine struct {
	Transform math.Transformer
	Log       *log.Logger
}

// Apply edits m so that it reflects cat:
//
//   - the own side's reference point is moved to the catalog's bullseye,
//   - every enemy vehicle or static template whose name matches a catalog
//     radar, SAM or marker is cloned at that entity's position,
//   - every own-side plane or helicopter group whose name matches a
//     catalog route has its steerpoints replaced by the route's waypoints.
//
// A mission is transformed at most once; later calls do nothing. If Apply
// fails the mission is left partially edited and can no longer be
// marshaled.
func (e *Engine) Apply(m *Mission, cat *geo.Catalog) error {
	if !m.advance() {
		e.Log.Debug("mission already transformed")
		return nil
	}
	if cat == nil {
		return nil
	}
	// Work from a private copy so later edits to cat do not change what
	// the mission records as its source.
	cat = cat.Clone()
	m.source = cat

	err := e.moveReferencePoint(m, cat)
	if err == nil {
		err = e.cloneEntities(m, cat)
	}
	if err == nil {
		err = e.rewriteRoutes(m, cat)
	}
	if err != nil {
		m.err = err
		e.Log.Error("mission transformation failed", slog.Any("error", err))
		return err
	}

	e.Log.Info("mission transformed", slog.String("theater", m.theater), slog.Int("changes", len(m.changes)),
		slog.Int("next_group_id", m.groupIDs.Peek()), slog.Int("next_unit_id", m.unitIDs.Peek()))
	if e.Log != nil {
		e.Log.Debug("changes", slog.String("dump", changeDumper.Sdump(m.changes)))
	}
	return nil
}

func (e *Engine) toPlanar(m *Mission, p geo.Point) (math.Point2XZ, error) {
	xz, err := e.Transform.ToPlanar(m.theater, p.LatLong())
	if err != nil {
		return math.Point2XZ{}, fmt.Errorf("%q: %w", p.Name, err)
	}
	return xz, nil
}

func (e *Engine) moveReferencePoint(m *Mission, cat *geo.Catalog) error {
	if cat.Bullseye == nil {
		return nil
	}

	pos, err := e.toPlanar(m, *cat.Bullseye)
	if err != nil {
		return err
	}
	be, err := m.root.TableAt("coalition/" + m.opts.OwnSide + "/bullseye")
	if err != nil {
		return missingField(m.opts.OwnSide+" bullseye", err)
	}
	be.SetField("x", lua.Number(pos.X()))
	be.SetField("y", lua.Number(pos.Z()))

	e.Log.Debugf("%s bullseye moved to %.1f, %.1f", m.opts.OwnSide, pos.X(), pos.Z())
	m.recordChange(Change{Kind: ReferencePointMoved, Group: m.opts.OwnSide, Source: cat.Bullseye.Name})
	return nil
}

func (e *Engine) cloneEntities(m *Mission, cat *geo.Catalog) error {
	refs, err := m.groups(m.opts.EnemySide, KindVehicle, KindStatic)
	if err != nil {
		return err
	}
	// Clones are added to the same group lists but are not templates
	// themselves; the index is built once, before anything is cloned.
	idx := newTemplateIndex(refs)

	for _, ent := range cat.Entities() {
		tpl, ok := idx.Lookup(ent.Name)
		if !ok {
			e.logNearMisses(ent.Name, idx)
			continue
		}

		anchor, err := e.toPlanar(m, ent)
		if err != nil {
			return err
		}
		delta, err := e.cloneGroup(m, tpl, anchor, ent)
		if err != nil {
			return err
		}

		prefix := ent.Name + dependentMarker
		deps := idx.Matching(KindStatic, func(name string) bool { return strings.HasPrefix(name, prefix) })
		for _, dep := range deps {
			origin, err := groupAnchor(dep)
			if err != nil {
				return err
			}
			if _, err := e.cloneGroup(m, dep, math.Add2XZ(origin, delta), ent); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) logNearMisses(name string, idx *templateIndex) {
	if e.Log == nil {
		return
	}
	d1, d2 := util.SelectInTwoEdits(name, idx.Names(), nil, nil)
	if len(d1)+len(d2) == 0 {
		e.Log.Debugf("%q: no matching template", name)
		return
	}
	near := append(d1, d2...)
	slices.Sort(near)
	e.Log.Debugf("%q: no matching template; did you mean %s?", name, strings.Join(near, ", "))
}

func groupAnchor(ref groupRef) (math.Point2XZ, error) {
	x, err := ref.Group.NumberField("x")
	if err != nil {
		return math.Point2XZ{}, missingField(fmt.Sprintf("group %q", ref.Name), err)
	}
	y, err := ref.Group.NumberField("y")
	if err != nil {
		return math.Point2XZ{}, missingField(fmt.Sprintf("group %q", ref.Name), err)
	}
	return math.Point2XZ{x, y}, nil
}

// cloneGroup adds a copy of the template group tpl to its group list,
// anchored at anchor. The clone's single route point is at anchor at the
// altitude of ent. It returns the offset from the template's anchor to
// the clone's.
func (e *Engine) cloneGroup(m *Mission, tpl groupRef, anchor math.Point2XZ, ent geo.Point) (math.Point2XZ, error) {
	what := fmt.Sprintf("group %q", tpl.Name)

	origin, err := groupAnchor(tpl)
	if err != nil {
		return math.Point2XZ{}, err
	}
	delta := math.Sub2XZ(anchor, origin)
	if e.Log != nil {
		if from, err := e.Transform.ToLatLong(m.theater, origin); err == nil {
			e.Log.Debugf("%q: moving %.1f km from %s to %s", tpl.Name, math.Distance2XZ(origin, anchor)/1000,
				from.DDString(), ent.LatLong().DDString())
		}
	}

	g := tpl.Group.Clone()
	route, err := g.TableField("route")
	if err != nil {
		return math.Point2XZ{}, missingField(what, err)
	}
	points, err := route.TableField("points")
	if err != nil {
		return math.Point2XZ{}, missingField(what, err)
	}
	first, err := points.TableIndex(1)
	if err != nil {
		return math.Point2XZ{}, missingField(what, err)
	}
	units, err := g.TableField("units")
	if err != nil {
		return math.Point2XZ{}, missingField(what, err)
	}

	gid := m.groupIDs.Allocate()
	name := fmt.Sprintf("%s#%s.%d", tpl.Name, m.opts.Tag, gid)
	g.SetField("name", lua.String(name))
	g.SetField("groupId", lua.Number(gid))
	g.SetField("x", lua.Number(anchor.X()))
	g.SetField("y", lua.Number(anchor.Z()))

	first.SetField("x", lua.Number(anchor.X()))
	first.SetField("y", lua.Number(anchor.Z()))
	first.SetField("alt", lua.Number(ent.Alt))
	collapsed := lua.NewTable()
	collapsed.Set(lua.IntKey(1), first)
	route.SetField("points", collapsed)

	if tpl.Kind == KindVehicle {
		g.SetField("lateActivation", lua.Bool(false))
		route.SetField("spans", lua.NewTable())
	}

	for uk, uv := range units.All() {
		u, err := lua.AsTable(uv)
		if err != nil {
			return math.Point2XZ{}, missingField(fmt.Sprintf("%s unit %s", what, uk), err)
		}
		uname, err := u.StringField("name")
		if err != nil {
			return math.Point2XZ{}, missingField(fmt.Sprintf("%s unit %s", what, uk), err)
		}
		ux, err := u.NumberField("x")
		if err != nil {
			return math.Point2XZ{}, missingField(fmt.Sprintf("%s unit %q", what, uname), err)
		}
		uy, err := u.NumberField("y")
		if err != nil {
			return math.Point2XZ{}, missingField(fmt.Sprintf("%s unit %q", what, uname), err)
		}

		uid := m.unitIDs.Allocate()
		u.SetField("name", lua.String(fmt.Sprintf("%s#%s.%d", uname, m.opts.Tag, uid)))
		u.SetField("unitId", lua.Number(uid))
		u.SetField("x", lua.Number(ux+delta.X()))
		u.SetField("y", lua.Number(uy+delta.Z()))
	}

	slot := tpl.List.Append(g)
	e.Log.Debugf("%s/%s: cloned %q as %q in slot %d", tpl.Side, tpl.Kind, tpl.Name, name, slot)
	m.recordChange(Change{Kind: GroupCloned, Group: name, Source: ent.Name, Count: units.Len()})

	return delta, nil
}

func (e *Engine) rewriteRoutes(m *Mission, cat *geo.Catalog) error {
	if len(cat.Routes) == 0 {
		return nil
	}
	refs, err := m.groups(m.opts.OwnSide, KindPlane, KindHelicopter)
	if err != nil {
		return err
	}
	idx := newTemplateIndex(refs)

	for _, rt := range cat.Routes {
		ref, ok := idx.Lookup(rt.Name)
		if !ok {
			e.logNearMisses(rt.Name, idx)
			continue
		}

		what := fmt.Sprintf("group %q", ref.Name)
		points, err := ref.Group.TableAt("route/points")
		if err != nil {
			return missingField(what, err)
		}
		// The first point is the group's start (typically its airfield)
		// and is kept as-is.
		if _, err := points.TableIndex(1); err != nil {
			return missingField(what, err)
		}

		for i, wp := range rt.Waypoints {
			pos, err := e.toPlanar(m, wp)
			if err != nil {
				return err
			}
			points.Set(lua.IntKey(i+2), newWaypoint(wp.Name, wp.Alt, pos.X(), pos.Z()))
		}

		e.Log.Debugf("%s: wrote %d steerpoints", ref.Name, len(rt.Waypoints))
		m.recordChange(Change{Kind: RouteRewritten, Group: ref.Name, Source: rt.Name, Count: len(rt.Waypoints)})
	}
	return nil
}

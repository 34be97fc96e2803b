// mission/engine_test.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/ilominar/viperops2miz/geo"
	"github.com/ilominar/viperops2miz/log"
	"github.com/ilominar/viperops2miz/lua"
	"github.com/ilominar/viperops2miz/math"

	"github.com/davecgh/go-spew/spew"
)

func TestReferencePointScenario(t *testing.T) {
	text := `
mission = {
    ["theatre"] = "Caucasus",
    ["coalition"] = {
        ["blue"] = { ["bullseye"] = { ["x"] = 0, ["y"] = 0 } },
        ["red"] = {
            ["country"] = {
                [1] = {
                    ["static"] = {
                        ["group"] = {
                            [1] = {
                                ["name"] = "Depot",
                                ["x"] = 50,
                                ["y"] = 60,
                                ["route"] = { ["points"] = { [1] = { ["x"] = 50, ["y"] = 60 } } },
                                ["units"] = { [1] = { ["name"] = "Depot-1", ["x"] = 50, ["y"] = 60 } },
                            },
                        },
                    },
                },
            },
        },
    },
}`
	m := parseTestMission(t, text)

	src := &geo.Source{Placemarks: []geo.Placemark{{Name: geo.LabelBullseye, Points: []string{"30.0,50.0,0"}}}}
	cat, err := geo.Build(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tt, err := math.NewTheaterTransformer(0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := m.Stats()
	e := &Engine{Transform: tt}
	if err := e.Apply(m, cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, err := tt.ToPlanar("Caucasus", math.Point2LL{30, 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	be, err := m.root.TableAt("coalition/blue/bullseye")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x, y := number(t, be, "x"), number(t, be, "y"); x != want.X() || y != want.Z() {
		t.Errorf("expected bullseye at %v, got %v, %v", want, x, y)
	}

	after := m.Stats()
	if spew.Sdump(before) != spew.Sdump(after) {
		t.Errorf("groups were added: %s", spew.Sdump(after))
	}
	if m.NextGroupID() != DefaultIDBase {
		t.Errorf("group identifiers were allocated")
	}
}

func TestRouteScenario(t *testing.T) {
	m := parseTestMission(t, testMission)
	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, testCatalog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points, err := groupList(t, m, "blue", KindPlane).TableAt("1/route/points")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points.Len() != 3 {
		t.Fatalf("expected 3 points, got %s", spew.Sdump(points.Keys()))
	}
	for i, k := range points.Keys() {
		if n, ok := k.AsInt(); !ok || n != i+1 {
			t.Errorf("expected key %d, got %s", i+1, k)
		}
	}

	start, _ := points.TableIndex(1)
	if str(t, start, "name") != "Kutaisi" || str(t, start, "type") != "TakeOffParking" {
		t.Errorf("start point changed: %s", spew.Sdump(start))
	}

	tests := []struct {
		key       int
		name      string
		x, y, alt float64
	}{
		{key: 2, name: "SP1", x: 43000, y: 42000, alt: 6000},
		{key: 3, name: "IP", x: 43500, y: 42500, alt: 7000},
	}
	for _, tt := range tests {
		pt, err := points.TableIndex(tt.key)
		if err != nil {
			t.Fatalf("point %d: %v", tt.key, err)
		}
		if got := str(t, pt, "name"); got != tt.name {
			t.Errorf("point %d: expected name %q, got %q", tt.key, tt.name, got)
		}
		if x, y, alt := number(t, pt, "x"), number(t, pt, "y"), number(t, pt, "alt"); x != tt.x || y != tt.y || alt != tt.alt {
			t.Errorf("point %d: expected %v/%v/%v, got %v/%v/%v", tt.key, tt.x, tt.y, tt.alt, x, y, alt)
		}
		if got := number(t, pt, "speed"); got != 138.88888888889 {
			t.Errorf("point %d: expected default speed, got %v", tt.key, got)
		}
		if got := str(t, pt, "alt_type"); got != "BARO" {
			t.Errorf("point %d: expected BARO, got %q", tt.key, got)
		}
		if id, err := pt.TableAt("task"); err != nil || str(t, id, "id") != "ComboTask" {
			t.Errorf("point %d: missing default task: %v", tt.key, err)
		}
	}
}

func TestRouteOverwrite(t *testing.T) {
	m := parseTestMission(t, testMission)
	cat := &geo.Catalog{Routes: []geo.Route{{
		Name:      "Viper2",
		Waypoints: []geo.Point{{Name: "", Lat: 44, Lon: 40, Alt: 3000}},
	}}}
	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points, err := groupList(t, m, "blue", KindPlane).TableAt("2/route/points")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", points.Len())
	}
	pt, _ := points.TableIndex(2)
	if pt.Has(lua.StringKey("name")) {
		t.Errorf("unlabeled waypoint has a name: %s", spew.Sdump(pt))
	}
	if x := number(t, pt, "x"); x != 44000 {
		t.Errorf("expected x 44000, got %v", x)
	}
	extra, _ := points.TableIndex(3)
	if str(t, extra, "name") != "extra" || number(t, extra, "x") != 9 {
		t.Errorf("point beyond the route was modified: %s", spew.Sdump(extra))
	}

	changes := m.Changes()
	if len(changes) != 1 || changes[0].Kind != RouteRewritten || changes[0].Group != "Viper2" || changes[0].Count != 1 {
		t.Errorf("unexpected changes %s", spew.Sdump(changes))
	}
}

func TestCloneEntity(t *testing.T) {
	m := parseTestMission(t, testMission)
	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, testCatalog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vehicles := groupList(t, m, "red", KindVehicle)
	if n := vehicles.MaxIntKey(); n != 4 {
		t.Fatalf("expected the clone in slot 4, got max key %d", n)
	}
	if vehicles.Has(lua.IntKey(2)) {
		t.Errorf("gap in the sparse group list was filled")
	}
	g, _ := vehicles.TableIndex(4)

	if got := str(t, g, "name"); got != "SA-10 Site#V2M.5000" {
		t.Errorf("expected name \"SA-10 Site#V2M.5000\", got %q", got)
	}
	if got := number(t, g, "groupId"); got != 5000 {
		t.Errorf("expected groupId 5000, got %v", got)
	}
	if x, y := number(t, g, "x"), number(t, g, "y"); x != 42000 || y != 41000 {
		t.Errorf("expected anchor 42000, 41000, got %v, %v", x, y)
	}
	if late, err := g.BoolField("lateActivation"); err != nil || late {
		t.Errorf("expected lateActivation false, got %v %v", late, err)
	}

	route, _ := g.TableField("route")
	if spans, err := route.TableField("spans"); err != nil || spans.Len() != 0 {
		t.Errorf("expected empty spans, got %v", err)
	}
	points, _ := route.TableField("points")
	if points.Len() != 1 {
		t.Errorf("expected a single route point, got %d", points.Len())
	}
	first, _ := points.TableIndex(1)
	if x, y, alt := number(t, first, "x"), number(t, first, "y"), number(t, first, "alt"); x != 42000 || y != 41000 || alt != 150 {
		t.Errorf("unexpected first point %v/%v/%v", x, y, alt)
	}
	if str(t, first, "type") != "Turning Point" {
		t.Errorf("first point lost its fields: %s", spew.Sdump(first))
	}

	units, _ := g.TableField("units")
	wantUnits := []struct {
		name string
		id   float64
		x, y float64
	}{
		{name: "SA-10 SR#V2M.5000", id: 5000, x: 42000, y: 41000},
		{name: "SA-10 LN#V2M.5001", id: 5001, x: 42010, y: 40990},
	}
	for i, want := range wantUnits {
		u, err := units.TableIndex(i + 1)
		if err != nil {
			t.Fatalf("unit %d: %v", i+1, err)
		}
		if got := str(t, u, "name"); got != want.name {
			t.Errorf("unit %d: expected %q, got %q", i+1, want.name, got)
		}
		if got := number(t, u, "unitId"); got != want.id {
			t.Errorf("unit %d: expected id %v, got %v", i+1, want.id, got)
		}
		if x, y := number(t, u, "x"), number(t, u, "y"); x != want.x || y != want.y {
			t.Errorf("unit %d: expected %v, %v, got %v, %v", i+1, want.x, want.y, x, y)
		}
	}

	// Dependent static group, offset like the primary.
	statics := groupList(t, m, "red", KindStatic)
	dep, err := statics.TableIndex(3)
	if err != nil {
		t.Fatalf("dependent group not cloned: %v", err)
	}
	if got := str(t, dep, "name"); got != "SA-10 Site SG-1#V2M.5001" {
		t.Errorf("unexpected dependent name %q", got)
	}
	if x, y := number(t, dep, "x"), number(t, dep, "y"); x != 42100 || y != 41100 {
		t.Errorf("expected dependent anchor 42100, 41100, got %v, %v", x, y)
	}
	depRoute, _ := dep.TableField("route")
	if depRoute.Has(lua.StringKey("spans")) || dep.Has(lua.StringKey("lateActivation")) {
		t.Errorf("static clone has vehicle fields: %s", spew.Sdump(dep))
	}
	du, _ := dep.TableAt("units/1")
	if got := str(t, du, "name"); got != "Fuel Truck#V2M.5002" {
		t.Errorf("unexpected dependent unit name %q", got)
	}
	if x, y := number(t, du, "x"), number(t, du, "y"); x != 42100 || y != 41100 {
		t.Errorf("unexpected dependent unit position %v, %v", x, y)
	}

	if m.NextGroupID() != 5002 || m.NextUnitID() != 5003 {
		t.Errorf("unexpected counters %d/%d", m.NextGroupID(), m.NextUnitID())
	}
}

func TestCloneIsolation(t *testing.T) {
	m := parseTestMission(t, testMission)
	orig := parseTestMission(t, testMission)

	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, testCatalog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, kind := range []string{KindVehicle, KindStatic} {
		list := groupList(t, m, "red", kind)
		origList := groupList(t, orig, "red", kind)
		for k, v := range origList.All() {
			got, ok := list.Get(k)
			if !ok || !lua.Equal(got, v) {
				t.Errorf("%s template %s was modified", kind, k)
			}
		}
	}
}

func TestIdentifierUniqueness(t *testing.T) {
	m := parseTestMission(t, testMission)
	cat := &geo.Catalog{
		Radars:  []geo.Point{{Name: "EWR North", Lat: 44, Lon: 44}, {Name: "EWR North", Lat: 44.5, Lon: 44.5}},
		SAMs:    []geo.Point{{Name: "SA-10 Site", Lat: 42, Lon: 41}, {Name: "SA-10 Site", Lat: 42.2, Lon: 41.2}},
		Markers: []geo.Point{{Name: "Depot", Lat: 41, Lon: 41}, {Name: "Unknown", Lat: 41, Lon: 41}},
	}
	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	groupIDs := make(map[int]bool)
	unitIDs := make(map[int]bool)
	clones := 0
	for _, kind := range []string{KindVehicle, KindStatic} {
		for _, gv := range groupList(t, m, "red", kind).All() {
			g, _ := lua.AsTable(gv)
			if !strings.Contains(str(t, g, "name"), "#V2M.") {
				continue
			}
			clones++
			id, err := g.IntField("groupId")
			if err != nil || id < DefaultIDBase || groupIDs[id] {
				t.Errorf("bad group id %d (%v)", id, err)
			}
			groupIDs[id] = true

			units, _ := g.TableField("units")
			for _, uv := range units.All() {
				u, _ := lua.AsTable(uv)
				uid, err := u.IntField("unitId")
				if err != nil || uid < DefaultIDBase || unitIDs[uid] {
					t.Errorf("bad unit id %d (%v)", uid, err)
				}
				unitIDs[uid] = true
			}
		}
	}
	// Two radars, two SAMs each with a dependent, and the depot.
	if clones != 7 {
		t.Errorf("expected 7 clones, got %d", clones)
	}
	if len(unitIDs) != 2+2*2+2*1+1 {
		t.Errorf("expected 9 cloned units, got %d", len(unitIDs))
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	m := parseTestMission(t, testMission)
	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, testCatalog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := m.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := m.Stats()

	if err := e.Apply(m, testCatalog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("second application changed the mission")
	}
	if spew.Sdump(stats) != spew.Sdump(m.Stats()) {
		t.Errorf("group counts changed: %s", spew.Sdump(m.Stats()))
	}
	if m.State() != Transformed {
		t.Errorf("expected transformed, got %s", m.State())
	}
}

func TestMissingFirstWaypoint(t *testing.T) {
	text := strings.Replace(testMission,
		`[1] = { ["name"] = "Kutaisi", ["type"] = "TakeOffParking", ["x"] = -100, ["y"] = 200, ["alt"] = 45 },`, "", 1)
	m := parseTestMission(t, text)

	e := &Engine{Transform: fakeTransformer{}}
	err := e.Apply(m, testCatalog())
	if !errors.Is(err, ErrMissingTemplateField) {
		t.Fatalf("expected ErrMissingTemplateField, got %v", err)
	}
	if !strings.Contains(err.Error(), "Falcon1") {
		t.Errorf("error does not name the group: %v", err)
	}
	if _, err := m.Marshal(); !errors.Is(err, ErrMissionUnusable) {
		t.Errorf("expected ErrMissionUnusable, got %v", err)
	}
	if !errors.Is(m.Err(), ErrMissingTemplateField) {
		t.Errorf("expected the failure to be recorded, got %v", m.Err())
	}
}

func TestMissingCloneFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *lua.Table)
	}{
		{
			name: "route point",
			mutate: func(g *lua.Table) {
				points, _ := g.TableAt("route/points")
				points.Delete(lua.IntKey(1))
			},
		},
		{
			name:   "route",
			mutate: func(g *lua.Table) { g.Delete(lua.StringKey("route")) },
		},
		{
			name:   "units",
			mutate: func(g *lua.Table) { g.Delete(lua.StringKey("units")) },
		},
		{
			name: "unit position",
			mutate: func(g *lua.Table) {
				u, _ := g.TableAt("units/1")
				u.Delete(lua.StringKey("y"))
			},
		},
		{
			name: "unit name",
			mutate: func(g *lua.Table) {
				u, _ := g.TableAt("units/1")
				u.SetField("name", lua.Number(7))
			},
		},
		{
			name:   "anchor",
			mutate: func(g *lua.Table) { g.SetField("x", lua.String("west")) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parseTestMission(t, testMission)
			g, err := groupList(t, m, "red", KindVehicle).TableIndex(3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.mutate(g)

			e := &Engine{Transform: fakeTransformer{}}
			cat := &geo.Catalog{Radars: []geo.Point{{Name: "EWR North", Lat: 44, Lon: 44}}}
			if err := e.Apply(m, cat); !errors.Is(err, ErrMissingTemplateField) {
				t.Errorf("expected ErrMissingTemplateField, got %v", err)
			}
			if _, err := m.Marshal(); !errors.Is(err, ErrMissionUnusable) {
				t.Errorf("expected ErrMissionUnusable, got %v", err)
			}
		})
	}
}

func TestUnsupportedTheater(t *testing.T) {
	m := parseTestMission(t, strings.Replace(testMission, `"Caucasus"`, `"Atlantis"`, 1))
	tt, err := math.NewTheaterTransformer(16, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cat := testCatalog()
	cat.Bullseye = &geo.Point{Name: geo.BullseyeName, Lat: 42, Lon: 42}

	e := &Engine{Transform: tt}
	if err := e.Apply(m, cat); !errors.Is(err, math.ErrUnsupportedTheater) {
		t.Fatalf("expected ErrUnsupportedTheater, got %v", err)
	}
	if _, err := m.Marshal(); !errors.Is(err, ErrMissionUnusable) {
		t.Errorf("expected ErrMissionUnusable, got %v", err)
	}
}

func TestUnmatchedEntities(t *testing.T) {
	m := parseTestMission(t, testMission)
	before, err := m.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cat := &geo.Catalog{
		SAMs:   []geo.Point{{Name: "SA-10 Sit", Lat: 42, Lon: 41}},
		Routes: []geo.Route{{Name: "Falcon9", Waypoints: []geo.Point{{Name: "SP1", Lat: 1, Lon: 1}}}},
	}
	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after, err := m.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("unmatched entities changed the mission")
	}
	if len(m.Changes()) != 0 {
		t.Errorf("unexpected changes %s", spew.Sdump(m.Changes()))
	}
}

func TestCustomOptions(t *testing.T) {
	m, err := Parse([]byte(testMission), Options{GroupIDBase: 100, UnitIDBase: 900, Tag: "KML"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := &Engine{Transform: fakeTransformer{}}
	cat := &geo.Catalog{Radars: []geo.Point{{Name: "EWR North", Lat: 44, Lon: 44, Alt: 10}}}
	if err := e.Apply(m, cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := groupList(t, m, "red", KindVehicle).TableIndex(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := str(t, g, "name"); got != "EWR North#KML.100" {
		t.Errorf("unexpected name %q", got)
	}
	u, _ := g.TableAt("units/1")
	if got := str(t, u, "name"); got != "EWR-1#KML.900" {
		t.Errorf("unexpected unit name %q", got)
	}
	// The unit keeps its offset from the group anchor.
	if x, y := number(t, u, "x"), number(t, u, "y"); x != 44005 || y != 44005 {
		t.Errorf("unexpected unit position %v, %v", x, y)
	}
}

func TestApplyKeepsCatalogCopy(t *testing.T) {
	m := parseTestMission(t, testMission)
	if m.Source() != nil {
		t.Errorf("expected no source before Apply")
	}

	cat := testCatalog()
	e := &Engine{Transform: fakeTransformer{}}
	if err := e.Apply(m, cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := m.Source()
	if src == nil || src == cat {
		t.Fatalf("expected a private copy of the catalog, got %p (caller's %p)", src, cat)
	}
	cat.Routes[0].Waypoints[0].Name = "changed"
	cat.SAMs[0].Lat = 0
	if src.Routes[0].Waypoints[0].Name != "SP1" || src.SAMs[0].Lat != 42 {
		t.Errorf("source shares data with the caller's catalog: %s", spew.Sdump(src))
	}
}

func TestCloneLogsDisplacement(t *testing.T) {
	lg := log.New("debug", t.TempDir())
	m, err := Parse([]byte(testMission), Options{}, lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := &Engine{Transform: fakeTransformer{}, Log: lg}
	if err := e.Apply(m, testCatalog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(lg.LogFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"moving", "km from", "to (42.000000, 41.000000)", "mission transformed"} {
		if !strings.Contains(string(b), want) {
			t.Errorf("expected %q in the log:\n%s", want, b)
		}
	}
}

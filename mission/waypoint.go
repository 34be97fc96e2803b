// mission/waypoint.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"github.com/ilominar/viperops2miz/lua"
)

// Fields every steerpoint written into a flight route starts from.
var waypointTemplate = lua.MustParse(`point = {
    ["alt"] = 0,
    ["action"] = "Turning Point",
    ["alt_type"] = "BARO",
    ["speed"] = 138.88888888889,
    ["task"] = {
        ["id"] = "ComboTask",
        ["params"] = {
            ["tasks"] = { },
        },
    },
    ["name"] = "Untitled",
    ["type"] = "Turning Point",
    ["ETA"] = 0,
    ["ETA_locked"] = false,
    ["y"] = 0,
    ["x"] = 0,
    ["speed_locked"] = true,
    ["formation_template"] = "",
}
`)

// newWaypoint returns a fresh steerpoint at the planar position x, z.
// An empty label leaves the point unnamed.
func newWaypoint(label string, alt, x, z float64) *lua.Table {
	tpl, err := waypointTemplate.Table("point")
	if err != nil {
		panic(err)
	}
	pt := tpl.Clone()
	if label == "" {
		pt.Delete(lua.StringKey("name"))
	} else {
		pt.SetField("name", lua.String(label))
	}
	pt.SetField("alt", lua.Number(alt))
	pt.SetField("x", lua.Number(x))
	pt.SetField("y", lua.Number(z))
	return pt
}

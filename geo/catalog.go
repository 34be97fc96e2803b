// geo/catalog.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"

	"github.com/ilominar/viperops2miz/math"

	"github.com/brunoga/deep"
)

// Point is a named geographic position. Altitude is in meters.
type Point struct {
	Name string
	Lat  float64
	Lon  float64
	Alt  float64
}

func (p Point) LatLong() math.Point2LL {
	return math.Point2LL{p.Lon, p.Lat}
}

func (p Point) String() string {
	return fmt.Sprintf("%q %s alt %.0f", p.Name, p.LatLong().DMSString(), p.Alt)
}

type Route struct {
	Name      string
	Waypoints []Point
}

// Catalog holds the entities extracted from a geography source. It is
// not modified after Build returns; accessors hand out copies.
type Catalog struct {
	Bullseye  *Point
	Markers   []Point
	Radars    []Point
	SAMs      []Point
	Airfields []Point
	Routes    []Route
}

// Route returns the named route; the returned waypoints are a copy.
func (c *Catalog) Route(name string) (Route, bool) {
	for _, r := range c.Routes {
		if r.Name == name {
			return deep.MustCopy(r), true
		}
	}
	return Route{}, false
}

// RouteNames returns the route names in ingestion order.
func (c *Catalog) RouteNames() []string {
	names := make([]string, len(c.Routes))
	for i, r := range c.Routes {
		names[i] = r.Name
	}
	return names
}

// Entities returns the radar sites, SAM sites and unassigned markers, in
// that order. These are the entities that can be matched against enemy
// group templates.
func (c *Catalog) Entities() []Point {
	e := make([]Point, 0, len(c.Radars)+len(c.SAMs)+len(c.Markers))
	e = append(e, c.Radars...)
	e = append(e, c.SAMs...)
	e = append(e, c.Markers...)
	return e
}

func (c *Catalog) Clone() *Catalog {
	return deep.MustCopy(c)
}

// Summary returns a short description of the catalog contents.
func (c *Catalog) Summary() string {
	bulls := "no bullseye"
	if c.Bullseye != nil {
		bulls = "bullseye " + c.Bullseye.LatLong().DMSString()
	}
	return fmt.Sprintf("%s, %d markers, %d radars, %d SAMs, %d airfields, %d routes", bulls,
		len(c.Markers), len(c.Radars), len(c.SAMs), len(c.Airfields), len(c.Routes))
}

// math/latlong.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// Valid reports whether p is finite and within the usual latitude and
// longitude ranges.
func (p Point2LL) Valid() bool {
	for _, v := range p {
		if gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return false
		}
	}
	return Abs(p[0]) <= 180 && Abs(p[1]) <= 90
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// DMSString returns the position in degrees minutes, seconds, e.g.
// N039.51.39.243,W075.16.29.511
func (p Point2LL) DMSString() string {
	format := func(v float64) string {
		s := fmt.Sprintf("%03d", int(v))
		v -= gomath.Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= gomath.Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= gomath.Floor(v)
		v *= 1000
		s += fmt.Sprintf(".%03d", int(v))
		return s
	}

	var s string
	if p[1] >= 0 {
		s = "N"
	} else {
		s = "S"
	}
	s += format(Abs(p[1]))

	if p[0] >= 0 {
		s += ",E"
	} else {
		s += ",W"
	}
	s += format(Abs(p[0]))

	return s
}

///////////////////////////////////////////////////////////////////////////
// Point2XZ

// Point2XZ is a point in a theater's planar frame, in meters. Following
// the mission file convention, 0 (x) is northing and 1 (z) is easting;
// mission tables store z under the "y" key.
type Point2XZ [2]float64

func (p Point2XZ) X() float64 {
	return p[0]
}

func (p Point2XZ) Z() float64 {
	return p[1]
}

// a+b
func Add2XZ(a, b Point2XZ) Point2XZ {
	return Point2XZ{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2XZ(a, b Point2XZ) Point2XZ {
	return Point2XZ{a[0] - b[0], a[1] - b[1]}
}

// Distance2XZ returns the distance in meters between two planar points.
func Distance2XZ(a, b Point2XZ) float64 {
	d := Sub2XZ(a, b)
	return gomath.Sqrt(Sqr(d[0]) + Sqr(d[1]))
}

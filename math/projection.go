// math/projection.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

// WGS84 ellipsoid
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
)

var (
	e2  = wgs84F * (2 - wgs84F) // first eccentricity squared
	ep2 = e2 / (1 - e2)         // second eccentricity squared
	e4  = e2 * e2
	e6  = e4 * e2

	// Meridian arc series coefficients
	m0 = 1 - e2/4 - 3*e4/64 - 5*e6/256
	m2 = 3*e2/8 + 3*e4/32 + 45*e6/1024
	m4 = 15*e4/256 + 45*e6/1024
	m6 = 35 * e6 / 3072
)

// TransverseMercator holds the projection parameters of one theater.
// The latitude of origin is the equator.
type TransverseMercator struct {
	CentralMeridian float64 `json:"central_meridian"`
	FalseEasting    float64 `json:"false_easting"`
	FalseNorthing   float64 `json:"false_northing"`
	ScaleFactor     float64 `json:"scale_factor"`
}

func (tm TransverseMercator) Validate() error {
	if tm.ScaleFactor <= 0 || gomath.IsNaN(tm.ScaleFactor) {
		return fmt.Errorf("%w: scale factor %v", ErrInvalidProjection, tm.ScaleFactor)
	}
	if Abs(tm.CentralMeridian) > 180 {
		return fmt.Errorf("%w: central meridian %v", ErrInvalidProjection, tm.CentralMeridian)
	}
	return nil
}

// meridianArc returns the distance along the meridian from the equator
// to latitude phi (radians).
func meridianArc(phi float64) float64 {
	return wgs84A * (m0*phi - m2*gomath.Sin(2*phi) + m4*gomath.Sin(4*phi) - m6*gomath.Sin(6*phi))
}

// Forward projects p to the theater's planar frame.
func (tm TransverseMercator) Forward(p Point2LL) Point2XZ {
	phi := Radians(p.Latitude())
	dlam := Radians(p.Longitude() - tm.CentralMeridian)
	k0 := tm.ScaleFactor

	sin, cos := gomath.Sincos(phi)
	tan := gomath.Tan(phi)

	n := wgs84A / gomath.Sqrt(1-e2*sin*sin)
	t := tan * tan
	c := ep2 * cos * cos
	a := cos * dlam
	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	easting := k0 * n * (a + (1-t+c)*a3/6 + (5-18*t+t*t+72*c-58*ep2)*a5/120)
	northing := k0 * (meridianArc(phi) +
		n*tan*(a2/2+(5-t+9*c+4*c*c)*a4/24+(61-58*t+t*t+600*c-330*ep2)*a6/720))

	return Point2XZ{northing + tm.FalseNorthing, easting + tm.FalseEasting}
}

// Inverse maps a planar point back to latitude-longitude.
func (tm TransverseMercator) Inverse(p Point2XZ) Point2LL {
	k0 := tm.ScaleFactor
	x := p.Z() - tm.FalseEasting
	y := p.X() - tm.FalseNorthing

	e1 := (1 - gomath.Sqrt(1-e2)) / (1 + gomath.Sqrt(1-e2))
	mu := y / k0 / (wgs84A * m0)
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*gomath.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*gomath.Sin(4*mu) +
		(151*e1*e1*e1/96)*gomath.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*gomath.Sin(8*mu)

	sin, cos := gomath.Sincos(phi1)
	tan := gomath.Tan(phi1)
	w := 1 - e2*sin*sin

	c1 := ep2 * cos * cos
	t1 := tan * tan
	n1 := wgs84A / gomath.Sqrt(w)
	r1 := wgs84A * (1 - e2) / (w * gomath.Sqrt(w))
	d := x / (n1 * k0)
	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	phi := phi1 - (n1*tan/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d4/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d6/720)
	dlam := (d - (1+2*t1+c1)*d3/6 + (5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d5/120) / cos

	return Point2LL{tm.CentralMeridian + Degrees(dlam), Degrees(phi)}
}

// geo/source.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

// Source is the raw placemark hierarchy that a Catalog is built from.
// Coordinates are kept as the tuple text found in the source so that
// Build can apply its cardinality rules before any parsing.
type Source struct {
	// Placemarks that are direct children of the document.
	Placemarks []Placemark
	Folders    []Folder
}

type Folder struct {
	Name       string
	Placemarks []Placemark
}

type Placemark struct {
	Name string
	// Points holds one "lon,lat[,alt]" tuple per point geometry.
	Points []string
	// Lines holds the whitespace-separated coordinate list of each path
	// geometry.
	Lines []string
}

// Folder labels with special meaning; any other folder defines a route.
const (
	LabelBullseye      = "Bullseye"
	LabelEWRadar       = "EW Radar"
	LabelSAM           = "SAM"
	LabelEnemyAirfield = "Enemy Airfield"
)

// BullseyeName replaces whatever name the reference point had in the
// source.
const BullseyeName = "BULLS"

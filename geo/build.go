// geo/build.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Build structures a Source into a Catalog. Any violation of the
// placemark cardinality rules is reported as ErrIngestionFormat, in
// which case no Catalog is returned.
func Build(src *Source) (*Catalog, error) {
	b := &builder{cat: &Catalog{}, routes: make(map[string]struct{})}

	for _, pm := range src.Placemarks {
		if err := b.placemark(pm); err != nil {
			return nil, err
		}
	}
	for _, f := range src.Folders {
		if err := b.folder(f); err != nil {
			return nil, err
		}
	}
	return b.cat, nil
}

type builder struct {
	cat    *Catalog
	routes map[string]struct{}
}

func ingestionError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIngestionFormat, fmt.Sprintf(format, args...))
}

func (b *builder) setBullseye(tuples []string) error {
	if len(tuples) != 1 {
		return ingestionError("bullseye must have exactly one coordinate, found %d", len(tuples))
	}
	if b.cat.Bullseye != nil {
		return ingestionError("bullseye is defined more than once")
	}
	p, err := parseCoordinate(BullseyeName, tuples[0])
	if err != nil {
		return err
	}
	b.cat.Bullseye = &p
	return nil
}

// placemark handles a placemark that is not in any folder: either the
// reference point or an unassigned marker.
func (b *builder) placemark(pm Placemark) error {
	if pm.Name == LabelBullseye {
		return b.setBullseye(pm.Points)
	}

	if len(pm.Points) != 1 {
		return ingestionError("marker %q must have exactly one coordinate, found %d", pm.Name, len(pm.Points))
	}
	p, err := parseCoordinate(pm.Name, pm.Points[0])
	if err != nil {
		return err
	}
	b.cat.Markers = append(b.cat.Markers, p)
	return nil
}

func (b *builder) folder(f Folder) error {
	switch f.Name {
	case LabelBullseye:
		var tuples []string
		for _, pm := range f.Placemarks {
			tuples = append(tuples, pm.Points...)
		}
		return b.setBullseye(tuples)

	case LabelEWRadar:
		return categoryPoints(f, &b.cat.Radars)

	case LabelSAM:
		return categoryPoints(f, &b.cat.SAMs)

	case LabelEnemyAirfield:
		return categoryPoints(f, &b.cat.Airfields)

	default:
		return b.route(f)
	}
}

// categoryPoints appends an entity for every placemark in f that has a
// point. Placemarks without one are ignored.
func categoryPoints(f Folder, pts *[]Point) error {
	for _, pm := range f.Placemarks {
		switch len(pm.Points) {
		case 0:
		case 1:
			p, err := parseCoordinate(pm.Name, pm.Points[0])
			if err != nil {
				return err
			}
			*pts = append(*pts, p)
		default:
			return ingestionError("%s %q has %d coordinates", f.Name, pm.Name, len(pm.Points))
		}
	}
	return nil
}

type coordKey [3]float64

func (b *builder) route(f Folder) error {
	var path, pathName string
	nlines := 0
	labels := make(map[coordKey]string)

	for _, pm := range f.Placemarks {
		for _, line := range pm.Lines {
			path, pathName = line, pm.Name
			nlines++
		}
		if len(pm.Points) > 1 {
			return ingestionError("route %q label %q has %d coordinates", f.Name, pm.Name, len(pm.Points))
		}
		for _, tuple := range pm.Points {
			p, err := parseCoordinate(pm.Name, tuple)
			if err != nil {
				return err
			}
			labels[coordKey{p.Lon, p.Lat, p.Alt}] = pm.Name
		}
	}
	if nlines != 1 {
		return ingestionError("route folder %q must have exactly one path, found %d", f.Name, nlines)
	}

	name := pathName
	if name == "" {
		name = f.Name
	}
	if _, ok := b.routes[name]; ok {
		return ingestionError("route for %q is defined twice", name)
	}
	b.routes[name] = struct{}{}

	r := Route{Name: name}
	for i, tuple := range strings.Fields(path) {
		p, err := parseCoordinate("", tuple)
		if err != nil {
			return err
		}
		if label, ok := labels[coordKey{p.Lon, p.Lat, p.Alt}]; ok {
			p.Name = label
		} else {
			p.Name = "SP" + strconv.Itoa(i+1)
		}
		r.Waypoints = append(r.Waypoints, p)
	}
	b.cat.Routes = append(b.cat.Routes, r)
	return nil
}

// parseCoordinate parses a "lon,lat[,alt]" tuple. Fields past the
// altitude are ignored and a missing altitude is zero.
func parseCoordinate(name, tuple string) (Point, error) {
	fields := strings.Split(strings.TrimSpace(tuple), ",")
	if len(fields) < 2 {
		return Point{}, ingestionError("%q: coordinate %q needs at least longitude and latitude", name, tuple)
	}

	var v [3]float64
	for i := 0; i < len(fields) && i < 3; i++ {
		field := strings.TrimSpace(fields[i])
		if i == 2 && field == "" {
			break
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Point{}, ingestionError("%q: coordinate %q: %v", name, tuple, err)
		}
		v[i] = f
	}
	p := Point{Name: name, Lon: v[0], Lat: v[1], Alt: v[2]}
	if !p.LatLong().Valid() {
		return Point{}, ingestionError("%q: coordinate %q out of range", name, tuple)
	}
	return p, nil
}

// geo/kml.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Elements are matched by local name so that files with and without the
// KML namespace declaration are handled the same way.
const (
	xpDocument    = "/*[local-name()='kml']/*[local-name()='Document']"
	xpName        = "*[local-name()='name']"
	xpPointCoords = ".//*[local-name()='Point']/*[local-name()='coordinates']"
	xpLineCoords  = ".//*[local-name()='LineString']/*[local-name()='coordinates']"
)

// ParseKML extracts the placemark hierarchy from a KML document: the
// placemarks and folders that are direct children of kml/Document.
// Other elements (styles, nested folders, ...) are ignored.
func ParseKML(r io.Reader) (*Source, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIngestionFormat, err)
	}

	root := xmlquery.FindOne(doc, xpDocument)
	if root == nil {
		return nil, fmt.Errorf("%w: no kml/Document element", ErrIngestionFormat)
	}

	src := &Source{}
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		switch n.Data {
		case "Placemark":
			src.Placemarks = append(src.Placemarks, parsePlacemark(n))
		case "Folder":
			f := Folder{Name: childName(n)}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == xmlquery.ElementNode && c.Data == "Placemark" {
					f.Placemarks = append(f.Placemarks, parsePlacemark(c))
				}
			}
			src.Folders = append(src.Folders, f)
		}
	}
	return src, nil
}

// LoadKML reads and parses the KML file at path.
func LoadKML(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := ParseKML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func childName(n *xmlquery.Node) string {
	if c := xmlquery.FindOne(n, xpName); c != nil {
		return strings.TrimSpace(c.InnerText())
	}
	return ""
}

func parsePlacemark(n *xmlquery.Node) Placemark {
	pm := Placemark{Name: childName(n)}
	for _, c := range xmlquery.Find(n, xpPointCoords) {
		if s := strings.TrimSpace(c.InnerText()); s != "" {
			pm.Points = append(pm.Points, s)
		}
	}
	for _, c := range xmlquery.Find(n, xpLineCoords) {
		if s := strings.TrimSpace(c.InnerText()); s != "" {
			pm.Lines = append(pm.Lines, s)
		}
	}
	return pm
}

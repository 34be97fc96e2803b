// cmd/viperops2miz/run.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilominar/viperops2miz/geo"
	"github.com/ilominar/viperops2miz/log"
	"github.com/ilominar/viperops2miz/lua"
	"github.com/ilominar/viperops2miz/math"
	"github.com/ilominar/viperops2miz/mission"
	"github.com/ilominar/viperops2miz/util"

	"golang.org/x/sync/errgroup"
)

// Job describes a single conversion.
type Job struct {
	MissionPath string
	KMLPath     string
	// OutputPath receives a copy of the mission archive with the mission
	// member replaced. If empty, nothing is written.
	OutputPath string
	Config     Config
	UseCache   bool
}

type Result struct {
	Mission *mission.Mission
	Catalog *geo.Catalog
	Text    []byte
}

// DefaultOutputPath returns <kml base>.miz in the KML file's directory.
// If that names the template archive, <kml base>-v2m.miz is used so the
// template is left untouched.
func DefaultOutputPath(kmlPath, missionPath string) string {
	base := strings.TrimSuffix(kmlPath, filepath.Ext(kmlPath))
	out := base + ".miz"
	if same, err := samePath(out, missionPath); err != nil || same {
		out = base + "-v2m.miz"
	}
	return out
}

func (j Job) Run(lg *log.Logger) (*Result, error) {
	lg = lg.With("mission", filepath.Base(j.MissionPath))

	var text string
	var cat *geo.Catalog

	// The archive and the geography file are independent.
	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		text, err = util.ReadArchiveMember(j.MissionPath, j.Config.Member)
		return err
	})
	eg.Go(func() error {
		var err error
		cat, err = LoadCatalog(j.KMLPath, j.UseCache, j.Config.CatalogCacheBytes, lg)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	lg.Infof("%s: %s", j.KMLPath, cat.Summary())

	m, err := mission.Parse([]byte(text), j.Config.Mission, lg)
	if err != nil {
		if lua.IsUnterminated(err) {
			lg.Warnf("%s: the %q member ends early; the archive may be damaged", j.MissionPath, j.Config.Member)
		}
		return nil, fmt.Errorf("%s: %s: %w", j.MissionPath, j.Config.Member, err)
	}

	tt, err := math.NewTheaterTransformer(j.Config.TransformCacheSize, j.Config.Theaters)
	if err != nil {
		return nil, err
	}
	lg.Debugf("%s: theater %q; supported: %s", j.MissionPath, m.Theater(), strings.Join(tt.TheaterNames(), ", "))
	engine := &mission.Engine{Transform: tt, Log: lg}
	if err := engine.Apply(m, cat); err != nil {
		return nil, fmt.Errorf("%s: %w", j.MissionPath, err)
	}
	lg.Debugf("%d projected points cached", tt.CachedPoints())

	b, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	if j.OutputPath != "" {
		if err := writeArchive(j.MissionPath, j.OutputPath, j.Config.Member, b); err != nil {
			return nil, err
		}
		lg.Infof("%s: wrote transformed mission", j.OutputPath)
	}

	return &Result{Mission: m, Catalog: cat, Text: b}, nil
}

// writeArchive copies the archive at src to dst and replaces member with
// text. A partially written dst is removed.
func writeArchive(src, dst, member string, text []byte) error {
	same, err := samePath(src, dst)
	if err != nil {
		return err
	}
	if !same {
		if err := util.CopyFile(src, dst); err != nil {
			return err
		}
	}
	if err := util.ReplaceArchiveMember(dst, member, string(text)); err != nil {
		if !same {
			os.Remove(dst)
		}
		return err
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	ba, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return aa == ba, nil
}

func catalogCachePath(contents []byte) string {
	return filepath.Join("catalogs", util.HashHex(contents)+".msgpack.zst")
}

// LoadCatalog reads a KML file and builds its catalog. When useCache is
// set, catalogs are cached by the hash of the file's contents.
func LoadCatalog(path string, useCache bool, cacheBytes int64, lg *log.Logger) (*geo.Catalog, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cachePath := catalogCachePath(contents)
	if useCache {
		var cat geo.Catalog
		if t, err := util.CacheRetrieveObject(cachePath, &cat); err == nil {
			lg.Debugf("%s: using catalog cached at %s", path, t)
			return &cat, nil
		}
	}

	src, err := geo.ParseKML(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cat, err := geo.Build(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if useCache {
		if err := util.CacheStoreObject(cachePath, cat); err != nil {
			lg.Warnf("%s: unable to cache catalog: %v", path, err)
		} else if err := util.CacheCullObjects(cacheBytes); err != nil {
			lg.Warnf("unable to cull cache: %v", err)
		}
	}
	return cat, nil
}

// PrintSummary writes a description of what was changed to w.
func PrintSummary(w io.Writer, r *Result) {
	fmt.Fprintf(w, "Catalog: %s\n", r.Catalog.Summary())

	counts := make(map[mission.ChangeKind]int)
	for _, c := range r.Mission.Changes() {
		counts[c.Kind]++
		switch c.Kind {
		case mission.ReferencePointMoved:
			fmt.Fprintf(w, "  %s bullseye moved to %s\n", c.Group, c.Source)
		case mission.GroupCloned:
			fmt.Fprintf(w, "  %q added for %q (%d %s)\n", c.Group, c.Source, c.Count, util.Select(c.Count == 1, "unit", "units"))
		case mission.RouteRewritten:
			fmt.Fprintf(w, "  %q route set to %d steerpoints\n", c.Group, c.Count)
		}
	}
	fmt.Fprintf(w, "%d groups added, %d routes updated\n", counts[mission.GroupCloned], counts[mission.RouteRewritten])

	for _, s := range r.Mission.Stats() {
		fmt.Fprintf(w, "  %-8s %-10s %4d groups %5d units\n", s.Side, s.Kind, s.Groups, s.Units)
	}
}

// cmd/viperops2miz/main.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// viperops2miz places the sites, markers and flight routes drawn in a KML
// file into a DCS mission by cloning the mission's template groups.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ilominar/viperops2miz/log"

	"github.com/apenwarr/fixconsole"
	"github.com/goforj/godump"
)

var (
	missionFile = flag.String("miz", "", "mission archive (.miz) holding the template groups")
	kmlFile     = flag.String("kml", "", "KML file with the bullseye, sites, markers and routes")
	outFile     = flag.String("o", "", "output mission archive (default: <kml base>.miz next to the KML file)")
	member      = flag.String("member", "", "archive member holding the mission table (default: mission)")
	configFile  = flag.String("config", "", "JSON configuration file (default: ViperOps2MIZ/config.json in the user config directory)")
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	dumpCatalog = flag.Bool("dumpcatalog", false, "print the catalog extracted from the KML file and exit")
	jsonOut     = flag.Bool("json", false, "print the transformed mission table as JSON rather than writing an archive")
	noCache     = flag.Bool("nocache", false, "neither use nor update the catalog cache")
)

func main() {
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	if _, err := log.ParseLevel(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	if *kmlFile == "" || (*missionFile == "" && !*dumpCatalog) {
		fmt.Fprintf(os.Stderr, "usage: viperops2miz -miz <mission.miz> -kml <geography.kml> [-o <output.miz>]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := LoadConfig(*configFile, lg)
	if err != nil {
		fail(lg, err)
	}
	if *member != "" {
		cfg.Member = *member
	}
	useCache := !*noCache && !cfg.DisableCatalogCache

	if *dumpCatalog {
		cat, err := LoadCatalog(*kmlFile, useCache, cfg.CatalogCacheBytes, lg)
		if err != nil {
			fail(lg, err)
		}
		godump.Fdump(os.Stdout, cat)
		return
	}

	job := Job{
		MissionPath: *missionFile,
		KMLPath:     *kmlFile,
		Config:      cfg,
		UseCache:    useCache,
	}
	if !*jsonOut {
		job.OutputPath = *outFile
		if job.OutputPath == "" {
			job.OutputPath = DefaultOutputPath(*kmlFile, *missionFile)
		}
	}

	result, err := job.Run(lg)
	if err != nil {
		fail(lg, err)
	}

	if *jsonOut {
		b, err := result.Mission.Document().MarshalJSON()
		if err != nil {
			fail(lg, err)
		}
		os.Stdout.Write(b)
		fmt.Println()
		return
	}

	fmt.Printf("Wrote %s\n", job.OutputPath)
	PrintSummary(os.Stdout, result)
}

func fail(lg *log.Logger, err error) {
	lg.Errorf("%v", err)
	fmt.Fprintf(os.Stderr, "viperops2miz: %v\n", err)
	os.Exit(1)
}

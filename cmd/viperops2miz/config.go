// cmd/viperops2miz/config.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ilominar/viperops2miz/log"
	"github.com/ilominar/viperops2miz/math"
	"github.com/ilominar/viperops2miz/mission"
	"github.com/ilominar/viperops2miz/util"
)

const (
	defaultMember            = "mission"
	defaultCatalogCacheBytes = 64 * 1024 * 1024
)

// Config holds the settings read from config.json. Every field is
// optional.
type Config struct {
	Mission mission.Options `json:"mission"`
	// Theaters adds projections for theaters that are not built in or
	// replaces the built-in parameters.
	Theaters           map[string]math.TransverseMercator `json:"theaters"`
	TransformCacheSize int                                `json:"transform_cache_size"`
	Member             string                             `json:"member"`

	DisableCatalogCache bool  `json:"disable_catalog_cache"`
	CatalogCacheBytes   int64 `json:"catalog_cache_bytes"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "ViperOps2MIZ", "config.json")
}

// LoadConfig reads the configuration at path, or at the default location
// if path is empty. A missing file at the default location is not an
// error.
func LoadConfig(path string, lg *log.Logger) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	var cfg Config
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		lg.Debugf("%s: no configuration file; using defaults", path)
		return cfg.withDefaults(), nil
	} else if err != nil {
		return Config{}, err
	}

	for _, dup := range util.FindDuplicateJSONKeys(contents) {
		lg.Warnf("%s: %q is given more than once in %q; the last value is used", path, dup.Key, dup.Path)
	}

	if err := util.UnmarshalJSONBytes(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	var e util.ErrorLogger
	e.Push(path)
	util.CheckJSON[Config](contents, &e)
	cfg.Validate(&e)
	e.Pop()
	if e.HaveErrors() {
		e.PrintErrors(lg)
		return Config{}, fmt.Errorf("%s: invalid configuration: %w", path, e.Err())
	}

	lg.Infof("%s: loaded configuration", path)
	return cfg.withDefaults(), nil
}

func (c Config) Validate(e *util.ErrorLogger) {
	e.Push("mission")
	c.Mission.Validate(e)
	e.Pop()

	for _, name := range util.SortedMapKeys(c.Theaters) {
		e.Push("theater " + name)
		if err := c.Theaters[name].Validate(); err != nil {
			e.Error(err)
		}
		e.Pop()
	}

	if c.TransformCacheSize < 0 {
		e.ErrorString("transform_cache_size %d must not be negative", c.TransformCacheSize)
	}
	if c.CatalogCacheBytes < 0 {
		e.ErrorString("catalog_cache_bytes %d must not be negative", c.CatalogCacheBytes)
	}
}

func (c Config) withDefaults() Config {
	if c.Member == "" {
		c.Member = defaultMember
	}
	if c.CatalogCacheBytes == 0 {
		c.CatalogCacheBytes = defaultCatalogCacheBytes
	}
	return c
}

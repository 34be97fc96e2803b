// mission/options.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"github.com/ilominar/viperops2miz/util"
)

const (
	DefaultIDBase    = 5000
	DefaultTag       = "V2M"
	DefaultOwnSide   = "blue"
	DefaultEnemySide = "red"
)

// Options control how a Mission is transformed. Zero values select the
// defaults.
type Options struct {
	// First identifiers handed out to cloned groups and units.
	GroupIDBase int `json:"group_id_base"`
	UnitIDBase  int `json:"unit_id_base"`
	// Tag is added to the names of cloned groups and units.
	Tag string `json:"tag"`
	// OwnSide has its reference point and flight routes updated;
	// EnemySide has its ground groups cloned.
	OwnSide   string `json:"own_side"`
	EnemySide string `json:"enemy_side"`
}

func (o Options) withDefaults() Options {
	if o.GroupIDBase == 0 {
		o.GroupIDBase = DefaultIDBase
	}
	if o.UnitIDBase == 0 {
		o.UnitIDBase = DefaultIDBase
	}
	if o.Tag == "" {
		o.Tag = DefaultTag
	}
	if o.OwnSide == "" {
		o.OwnSide = DefaultOwnSide
	}
	if o.EnemySide == "" {
		o.EnemySide = DefaultEnemySide
	}
	return o
}

// Validate reports problems with the options through e.
func (o Options) Validate(e *util.ErrorLogger) {
	if o.GroupIDBase < 0 {
		e.ErrorString("group_id_base %d must be positive", o.GroupIDBase)
	}
	if o.UnitIDBase < 0 {
		e.ErrorString("unit_id_base %d must be positive", o.UnitIDBase)
	}
	o = o.withDefaults()
	if o.OwnSide == o.EnemySide {
		e.ErrorString("own_side and enemy_side are both %q", o.OwnSide)
	}
	for _, side := range []string{o.OwnSide, o.EnemySide} {
		if side != "blue" && side != "red" && side != "neutrals" {
			e.ErrorString("%q: unknown coalition", side)
		}
	}
}

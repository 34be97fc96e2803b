// util/generic.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

// Select returns a if sel is true and b otherwise.
func Select[T any](sel bool, a, b T) T {
	if sel {
		return a
	}
	return b
}

// SortedMapKeys returns the keys of the given map, sorted from low to high.
func SortedMapKeys[K constraints.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

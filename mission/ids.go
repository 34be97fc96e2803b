// mission/ids.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import "golang.org/x/exp/constraints"

// idCounter hands out increasing identifiers; values are never reused.
type idCounter[T constraints.Integer] struct {
	next T
}

func (c *idCounter[T]) Allocate() T {
	id := c.next
	c.next++
	return id
}

// Peek returns the identifier the next Allocate call will return.
func (c *idCounter[T]) Peek() T {
	return c.next
}

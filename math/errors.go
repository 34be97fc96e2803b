// math/errors.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "errors"

var (
	ErrUnsupportedTheater = errors.New("Unsupported theater")
	ErrInvalidProjection  = errors.New("Invalid projection parameters")
	ErrInvalidLatLong     = errors.New("Invalid latitude/longitude")
)

// geo/errors.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import "errors"

var ErrIngestionFormat = errors.New("Incorrectly formatted geography source")

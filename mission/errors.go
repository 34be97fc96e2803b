// mission/errors.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTemplateField = errors.New("Template is missing a required field")
	ErrMissionUnusable      = errors.New("Mission transformation failed; mission cannot be saved")
)

// missingField reports that the group or table described by what lacks
// substructure the transformation needs; err is the underlying lookup
// failure.
func missingField(what string, err error) error {
	return fmt.Errorf("%s: %w (%w)", what, ErrMissingTemplateField, err)
}

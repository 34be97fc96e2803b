// mission/state.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

type TransformState int

const (
	Untransformed TransformState = iota
	Transformed
)

func (s TransformState) String() string {
	switch s {
	case Untransformed:
		return "untransformed"
	case Transformed:
		return "transformed"
	default:
		return "unknown"
	}
}

// advance moves the mission from Untransformed to Transformed. It
// returns false if the transition was already taken.
func (m *Mission) advance() bool {
	if m.state != Untransformed {
		return false
	}
	m.state = Transformed
	return true
}

// lua/errors.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrSyntax          = errors.New("syntax error")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrUnrepresentable = errors.New("value cannot be represented as a table literal")
	ErrUnterminated    = errors.New("unterminated input")
)

// SyntaxError describes malformed table-literal text. Err is either
// ErrSyntax or, when the input ended before the construct it was
// reading was complete, ErrUnterminated.
type SyntaxError struct {
	Line   int // 1-based
	Col    int // 1-based, in bytes
	Offset int
	Near   string
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("line %d, column %d: %s near %q", e.Line, e.Col, e.Msg, e.Near)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

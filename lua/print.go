// lua/print.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"
)

const indentUnit = "    "

// Marshal serializes d: one "name = value" statement per binding, in
// binding order. Tables print one "[key] = value," line per entry in
// insertion order. The output depends only on d's contents and order.
// Binding names must be identifiers other than true, false and nil, and
// integer table keys must be positive.
func Marshal(d *Document) ([]byte, error) {
	var sb strings.Builder
	for _, b := range d.bindings {
		if !isBindingName(b.Name) {
			return nil, fmt.Errorf("%w: binding name %q", ErrUnrepresentable, b.Name)
		}
		sb.WriteString(b.Name)
		sb.WriteString(" = ")
		if err := writeValue(&sb, b.Value, 0); err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name, err)
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

func writeValue(sb *strings.Builder, v Value, depth int) error {
	switch v := v.(type) {
	case nil, Nil:
		sb.WriteString("nil")
	case Bool:
		sb.WriteString(strconv.FormatBool(bool(v)))
	case Number:
		s, err := FormatNumber(float64(v))
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case String:
		sb.WriteString(quote(string(v)))
	case *Table:
		if v.Len() == 0 {
			sb.WriteString("{ }")
			return nil
		}
		sb.WriteString("{\n")
		for _, e := range v.entries {
			if n, ok := e.Key.AsInt(); ok && n < 1 {
				return fmt.Errorf("%w: table key %s", ErrUnrepresentable, e.Key)
			}
			sb.WriteString(strings.Repeat(indentUnit, depth+1))
			sb.WriteString(e.Key.String())
			sb.WriteString(" = ")
			if err := writeValue(sb, e.Value, depth+1); err != nil {
				return fmt.Errorf("%s: %w", e.Key, err)
			}
			sb.WriteString(",\n")
		}
		sb.WriteString(strings.Repeat(indentUnit, depth))
		sb.WriteByte('}')
	default:
		return fmt.Errorf("%w: %T", ErrUnrepresentable, v)
	}
	return nil
}

func isBindingName(s string) bool {
	if s == "" || !isIdentStart(s[0]) || isKeyword(s) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentStart(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// FormatNumber formats f as a numeric literal: integral values have no
// fractional part, other values use the fewest digits that parse back to
// exactly f. Exponent notation is never used.
func FormatNumber(f float64) (string, error) {
	if gomath.IsNaN(f) || gomath.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v", ErrUnrepresentable, f)
	}
	if isIntegral(f) {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// quote returns s as a double-quoted literal using escapes that the
// scanner decodes back to the same bytes.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			if ch < 0x20 || ch == 0x7f {
				// Always three digits so a following digit is not
				// absorbed into the escape.
				fmt.Fprintf(&sb, `\%03d`, ch)
			} else {
				sb.WriteByte(ch)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

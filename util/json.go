// util/json.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// DuplicateJSONKey represents a duplicate key found in JSON.
type DuplicateJSONKey struct {
	Path string // JSON path to the object holding the duplicate (e.g., "theaters.Syria")
	Key  string // The duplicate key name
}

// FindDuplicateJSONKeys returns every object key that appears more than
// once in its object. Scanning stops silently at the first syntax error;
// UnmarshalJSONBytes reports those.
func FindDuplicateJSONKeys(data []byte) []DuplicateJSONKey {
	dec := json.NewDecoder(bytes.NewReader(data))
	var dups []DuplicateJSONKey

	var walk func(path []string) error
	walk = func(path []string) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch tok {
		case json.Delim('{'):
			seen := make(map[string]bool)
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := kt.(string)
				if seen[key] {
					dups = append(dups, DuplicateJSONKey{Path: strings.Join(path, "."), Key: key})
				}
				seen[key] = true

				if err := walk(append(slices.Clip(path), key)); err != nil {
					return err
				}
			}
			_, err = dec.Token() // '}'
			return err

		case json.Delim('['):
			// Array elements report duplicates at the array's path.
			for dec.More() {
				if err := walk(path); err != nil {
					return err
				}
			}
			_, err = dec.Token() // ']'
			return err
		}
		return nil
	}

	_ = walk(nil)
	return dups
}

// UnmarshalJSONBytes unmarshals b into out; syntax and type errors are
// reported with the line and character where they occurred.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	switch jerr := err.(type) {
	case *json.SyntaxError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %w", line, char, jerr)

	case *json.UnmarshalTypeError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s",
			line, char, jerr.Value, jerr.Struct, jerr.Field, jerr.Type.String())

	default:
		return err
	}
}

// CheckJSON reports, via e, object members in contents that do not
// correspond to a field of T; these are usually misspellings that
// json.Unmarshal would otherwise silently ignore.
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	var items any
	if err := UnmarshalJSONBytes(contents, &items); err != nil {
		e.Error(err)
		return
	}
	checkJSONFields(items, reflect.TypeOf((*T)(nil)).Elem(), e)
}

func checkJSONFields(v any, ty reflect.Type, e *ErrorLogger) {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	switch ty.Kind() {
	case reflect.Array, reflect.Slice:
		if items, ok := v.([]any); ok {
			for _, item := range items {
				checkJSONFields(item, ty.Elem(), e)
			}
		}

	case reflect.Map:
		if m, ok := v.(map[string]any); ok {
			for _, k := range slices.Sorted(maps.Keys(m)) {
				e.Push(k)
				checkJSONFields(m[k], ty.Elem(), e)
				e.Pop()
			}
		}

	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return
		}
		fields := make(map[string]reflect.Type)
		for _, f := range reflect.VisibleFields(ty) {
			if jtag, ok := f.Tag.Lookup("json"); ok {
				name, _, _ := strings.Cut(jtag, ",")
				fields[name] = f.Type
			}
		}
		for _, k := range slices.Sorted(maps.Keys(m)) {
			if fty, ok := fields[k]; ok {
				e.Push(k)
				checkJSONFields(m[k], fty, e)
				e.Pop()
			} else {
				e.ErrorString("The entry %q is not an expected JSON object. Is it misspelled?", k)
			}
		}
	}
}

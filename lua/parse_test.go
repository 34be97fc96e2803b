// lua/parse_test.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Value
	}{
		{name: "true", text: "v = true", want: Bool(true)},
		{name: "false", text: "v = false", want: Bool(false)},
		{name: "nil", text: "v = nil", want: Nil{}},
		{name: "integer", text: "v = 5000", want: Number(5000)},
		{name: "negative", text: "v = -12.5", want: Number(-12.5)},
		{name: "plus sign", text: "v = +3", want: Number(3)},
		{name: "leading dot", text: "v = .25", want: Number(0.25)},
		{name: "exponent", text: "v = 1.5e3", want: Number(1500)},
		{name: "negative exponent", text: "v = 25E-2", want: Number(0.25)},
		{name: "double quoted", text: `v = "hello"`, want: String("hello")},
		{name: "single quoted", text: `v = 'it\'s "quoted"'`, want: String(`it's "quoted"`)},
		{name: "adjacent strings", text: `v = 'it''s'`, want: nil},
		{name: "escapes", text: `v = "a\"b\\c\nd\te"`, want: String("a\"b\\c\nd\te")},
		{name: "decimal escape", text: `v = "\0651\0012"`, want: String("A1\x012")},
		{name: "backslash newline", text: "v = \"line1\\\nline2\"", want: String("line1\nline2")},
		{name: "utf8", text: `v = "Ünïcode ✈"`, want: String("Ünïcode ✈")},
		{name: "semicolon", text: "v = 1;", want: Number(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(tt.text)
			if tt.want == nil {
				if err == nil {
					t.Errorf("expected an error, got %s", spew.Sdump(doc))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			v, err := doc.Lookup("v")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Equal(v, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, v)
			}
		})
	}
}

func TestParseDocument(t *testing.T) {
	text := `-- leading comment
mission =
{
    ["theatre"] = "Caucasus",
    ["coalition"] = {
        ["red"] = { }, -- trailing comment
        ["blue"] = {
            [1] = 10,
            [3] = 30;
        },
    },
    --[[ a block
    comment ]]
    ["1"] = "string key",
    plain = true,
} -- end of mission
options = { }
`
	doc, err := ParseString(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if names := doc.Names(); len(names) != 2 || names[0] != "mission" || names[1] != "options" {
		t.Errorf("unexpected bindings %v", names)
	}

	m, err := doc.Table("mission")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantKeys := []Key{StringKey("theatre"), StringKey("coalition"), StringKey("1"), StringKey("plain")}
	if keys := m.Keys(); len(keys) != len(wantKeys) {
		t.Fatalf("expected keys %v, got %v", wantKeys, keys)
	} else {
		for i := range keys {
			if keys[i] != wantKeys[i] {
				t.Errorf("key %d: expected %s, got %s", i, wantKeys[i], keys[i])
			}
		}
	}

	// A quoted numeric key stays a string key.
	if m.Has(IntKey(1)) {
		t.Errorf("quoted key \"1\" was parsed as an integer key")
	}

	blue, err := m.TableAt("coalition/blue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blue.Len() != 2 || blue.Has(IntKey(2)) {
		t.Errorf("sparse keys not preserved: %v", blue.Keys())
	}
	if blue.MaxIntKey() != 3 {
		t.Errorf("expected max key 3, got %d", blue.MaxIntKey())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		unterminated bool
	}{
		{name: "missing value", text: "v =", unterminated: true},
		{name: "missing assign", text: "v", unterminated: true},
		{name: "open table", text: "v = { [1] = 2,", unterminated: true},
		{name: "open table no comma", text: "v = { [1] = 2", unterminated: true},
		{name: "open string", text: `v = "abc`, unterminated: true},
		{name: "open block comment", text: "v = 1 --[[ never closed", unterminated: true},
		{name: "open key", text: "v = { [", unterminated: true},
		{name: "newline in string", text: "v = \"abc\ndef\""},
		{name: "variable reference", text: "v = other"},
		{name: "expression", text: "v = 1 + 2"},
		{name: "positional entry", text: "v = { 1, 2 }"},
		{name: "fractional key", text: "v = { [1.5] = 1 }"},
		{name: "zero key", text: "v = { [0] = 1 }"},
		{name: "table key", text: "v = { [{}] = 1 }"},
		{name: "duplicate key", text: `v = { ["a"] = 1, ["a"] = 2 }`},
		{name: "missing separator", text: "v = { [1] = 1 [2] = 2 }"},
		{name: "keyword binding", text: "true = 1"},
		{name: "bad escape", text: `v = "\q"`},
		{name: "bad number", text: "v = 12abc"},
		{name: "lone minus", text: "v = -"},
		{name: "stray character", text: "v = @"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.text)
			if err == nil {
				t.Fatalf("expected an error")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}
			if tt.unterminated {
				if !errors.Is(err, ErrUnterminated) || errors.Is(err, ErrSyntax) {
					t.Errorf("expected ErrUnterminated, got %v", err)
				}
			} else if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := ParseString("a = 1\nb = {\n  [\"x\"] = @\n}")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if se.Line != 3 || se.Col != 11 {
		t.Errorf("expected line 3 column 11, got line %d column %d", se.Line, se.Col)
	}
	if se.Near != "@" {
		t.Errorf("expected offending token \"@\", got %q", se.Near)
	}
}

func TestRebindingKeepsPosition(t *testing.T) {
	doc, err := ParseString("a = 1 b = 2 a = 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := doc.Names(); len(names) != 2 || names[0] != "a" {
		t.Errorf("unexpected bindings %v", names)
	}
	if v, _ := doc.Get("a"); !Equal(v, Number(3)) {
		t.Errorf("expected a = 3, got %#v", v)
	}
}

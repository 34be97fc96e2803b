// lua/parse.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"errors"
)

// Parse parses a sequence of "name = value" statements, each optionally
// terminated by a semicolon. Values are true, false, nil, numbers,
// quoted strings and table constructors whose entries are written
// [integer] = value, ["string"] = value or name = value.
//
// Errors are *SyntaxError values wrapping ErrSyntax, or ErrUnterminated
// if the text ends in the middle of a construct.
func Parse(text []byte) (*Document, error) {
	p := &parser{s: newScanner(text)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	doc := NewDocument()
	for p.tok.kind != tokEOF {
		if p.tok.kind != tokIdent || isKeyword(p.tok.text) {
			return nil, p.unexpected("binding name")
		}
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(tokAssign); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		doc.Set(name, v)

		if p.tok.kind == tokSemicolon {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func ParseString(text string) (*Document, error) {
	return Parse([]byte(text))
}

// MustParse is like ParseString but panics on error. It is intended for
// initializing package-level templates.
func MustParse(text string) *Document {
	doc, err := ParseString(text)
	if err != nil {
		panic(err)
	}
	return doc
}

type parser struct {
	s   *scanner
	tok token
}

func isKeyword(s string) bool {
	return s == "true" || s == "false" || s == "nil"
}

func (p *parser) advance() error {
	tok, err := p.s.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// unexpected returns an error for the current token, which was not the
// wanted one. Running out of input is reported as ErrUnterminated.
func (p *parser) unexpected(want string) error {
	if p.tok.kind == tokEOF {
		return p.s.errorAt(p.tok.pos, "", ErrUnterminated, "unexpected end of input, expected %s", want)
	}
	return p.s.errorAt(p.tok.pos, p.tok.text, ErrSyntax, "expected %s, got %s", want, p.tok.kind)
}

func (p *parser) expect(k tokenKind) error {
	if p.tok.kind != k {
		return p.unexpected(k.String())
	}
	return p.advance()
}

func (p *parser) value() (Value, error) {
	var v Value
	switch p.tok.kind {
	case tokIdent:
		switch p.tok.text {
		case "true":
			v = Bool(true)
		case "false":
			v = Bool(false)
		case "nil":
			v = Nil{}
		default:
			return nil, p.s.errorAt(p.tok.pos, p.tok.text, ErrSyntax, "variable references are not supported")
		}
	case tokNumber:
		v = Number(p.tok.num)
	case tokString:
		v = String(p.tok.str)
	case tokLBrace:
		return p.table()
	default:
		return nil, p.unexpected("value")
	}
	return v, p.advance()
}

func (p *parser) table() (*Table, error) {
	open := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	t := NewTable()
	for p.tok.kind != tokRBrace {
		keyTok := p.tok
		k, err := p.key()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokAssign); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if !t.insert(k, v) {
			return nil, p.s.errorAt(keyTok.pos, k.String(), ErrSyntax, "duplicate table key")
		}

		switch p.tok.kind {
		case tokComma, tokSemicolon:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRBrace:
		case tokEOF:
			return nil, p.s.errorAt(open.pos, "{", ErrUnterminated, "unfinished table")
		default:
			return nil, p.unexpected("',' or '}'")
		}
	}
	return t, p.advance()
}

func (p *parser) key() (Key, error) {
	switch p.tok.kind {
	case tokLBracket:
		if err := p.advance(); err != nil {
			return Key{}, err
		}
		var k Key
		switch p.tok.kind {
		case tokString:
			k = StringKey(p.tok.str)
		case tokNumber:
			if !isIntegral(p.tok.num) || p.tok.num < 1 {
				return Key{}, p.s.errorAt(p.tok.pos, p.tok.text, ErrSyntax, "table key must be a positive integer or a string")
			}
			k = IntKey(int(p.tok.num))
		default:
			return Key{}, p.unexpected("integer or string key")
		}
		if err := p.advance(); err != nil {
			return Key{}, err
		}
		return k, p.expect(tokRBracket)

	case tokIdent:
		if isKeyword(p.tok.text) {
			return Key{}, p.unexpected("table key")
		}
		k := StringKey(p.tok.text)
		return k, p.advance()

	case tokEOF:
		return Key{}, p.unexpected("table key or '}'")

	default:
		return Key{}, p.unexpected("table key")
	}
}

// IsUnterminated reports whether err was caused by input that ended
// before a construct was complete.
func IsUnterminated(err error) bool {
	return errors.Is(err, ErrUnterminated)
}

// lua/scan.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokAssign    // =
	tokLBrace    // {
	tokRBrace    // }
	tokLBracket  // [
	tokRBracket  // ]
	tokComma     // ,
	tokSemicolon // ;
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokAssign:
		return "'='"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokComma:
		return "','"
	case tokSemicolon:
		return "';'"
	default:
		return "token(" + strconv.Itoa(int(k)) + ")"
	}
}

type position struct {
	offset, line, col int
}

type token struct {
	kind tokenKind
	text string  // source text of the token
	str  string  // decoded value of a string token
	num  float64 // value of a number token
	pos  position
}

// scanner splits table-literal text into tokens. Whitespace, "--" line
// comments and "--[[ ]]" block comments between tokens are skipped.
type scanner struct {
	src []byte
	position
}

func newScanner(src []byte) *scanner {
	return &scanner{src: src, position: position{line: 1, col: 1}}
}

func (s *scanner) peekByte(ahead int) byte {
	if s.offset+ahead < len(s.src) {
		return s.src[s.offset+ahead]
	}
	return 0
}

func (s *scanner) advance() byte {
	ch := s.src[s.offset]
	s.offset++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) errorAt(pos position, near string, err error, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Line:   pos.line,
		Col:    pos.col,
		Offset: pos.offset,
		Near:   near,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	}
}

func (s *scanner) skipSpaceAndComments() error {
	for s.offset < len(s.src) {
		switch ch := s.src[s.offset]; {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v':
			s.advance()
		case ch == '-' && s.peekByte(1) == '-':
			start := s.position
			s.advance()
			s.advance()
			if level, ok := s.longBracket(); ok {
				if !s.skipLongBracket(level) {
					return s.errorAt(start, "--", ErrUnterminated, "unfinished long comment")
				}
			} else {
				for s.offset < len(s.src) && s.src[s.offset] != '\n' {
					s.advance()
				}
			}
		default:
			return nil
		}
	}
	return nil
}

// longBracket checks for an opening long bracket "[[" or "[==[" at the
// current offset, consuming it if present and returning its level.
func (s *scanner) longBracket() (int, bool) {
	if s.peekByte(0) != '[' {
		return 0, false
	}
	level := 1
	for s.peekByte(level) == '=' {
		level++
	}
	if s.peekByte(level) != '[' {
		return 0, false
	}
	for i := 0; i <= level; i++ {
		s.advance()
	}
	return level - 1, true
}

func (s *scanner) skipLongBracket(level int) bool {
	for s.offset < len(s.src) {
		if s.advance() != ']' {
			continue
		}
		n := 0
		for s.peekByte(n) == '=' {
			n++
		}
		if n == level && s.peekByte(n) == ']' {
			for i := 0; i <= n; i++ {
				s.advance()
			}
			return true
		}
	}
	return false
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (s *scanner) next() (token, error) {
	if err := s.skipSpaceAndComments(); err != nil {
		return token{}, err
	}

	start := s.position
	if s.offset >= len(s.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	ch := s.src[s.offset]
	single := func(k tokenKind) (token, error) {
		s.advance()
		return token{kind: k, text: string(ch), pos: start}, nil
	}

	switch {
	case ch == '=':
		return single(tokAssign)
	case ch == '{':
		return single(tokLBrace)
	case ch == '}':
		return single(tokRBrace)
	case ch == '[':
		return single(tokLBracket)
	case ch == ']':
		return single(tokRBracket)
	case ch == ',':
		return single(tokComma)
	case ch == ';':
		return single(tokSemicolon)
	case ch == '"' || ch == '\'':
		return s.scanString()
	case isIdentStart(ch):
		for s.offset < len(s.src) && (isIdentStart(s.src[s.offset]) || isDigit(s.src[s.offset])) {
			s.advance()
		}
		return token{kind: tokIdent, text: string(s.src[start.offset:s.offset]), pos: start}, nil
	case isDigit(ch) || ch == '.' || ch == '-' || ch == '+':
		return s.scanNumber()
	default:
		return token{}, s.errorAt(start, string(ch), ErrSyntax, "unexpected character")
	}
}

// scanNumber reads an optionally signed decimal number with optional
// fraction and exponent.
func (s *scanner) scanNumber() (token, error) {
	start := s.position
	digits := func() int {
		n := 0
		for s.offset < len(s.src) && isDigit(s.src[s.offset]) {
			s.advance()
			n++
		}
		return n
	}

	if c := s.peekByte(0); c == '-' || c == '+' {
		s.advance()
	}
	n := digits()
	if s.peekByte(0) == '.' {
		s.advance()
		n += digits()
	}
	if n == 0 {
		return token{}, s.errorAt(start, string(s.src[start.offset:s.offset]), ErrSyntax, "malformed number")
	}
	if c := s.peekByte(0); c == 'e' || c == 'E' {
		s.advance()
		if c := s.peekByte(0); c == '-' || c == '+' {
			s.advance()
		}
		if digits() == 0 {
			return token{}, s.errorAt(start, string(s.src[start.offset:s.offset]), ErrSyntax, "malformed number")
		}
	}
	if c := s.peekByte(0); isIdentStart(c) || c == '.' {
		s.advance()
		return token{}, s.errorAt(start, string(s.src[start.offset:s.offset]), ErrSyntax, "malformed number")
	}

	text := string(s.src[start.offset:s.offset])
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, s.errorAt(start, text, ErrSyntax, "malformed number")
	}
	return token{kind: tokNumber, text: text, num: f, pos: start}, nil
}

// scanString reads a quoted string, decoding its escape sequences.
func (s *scanner) scanString() (token, error) {
	start := s.position
	quoteCh := s.advance()
	var buf []byte

	for {
		if s.offset >= len(s.src) {
			return token{}, s.errorAt(start, string(s.src[start.offset:]), ErrUnterminated, "unfinished string")
		}
		ch := s.advance()
		switch ch {
		case quoteCh:
			return token{kind: tokString, text: string(s.src[start.offset:s.offset]), str: string(buf), pos: start}, nil
		case '\n':
			return token{}, s.errorAt(start, string(s.src[start.offset:s.offset-1]), ErrSyntax, "unfinished string")
		case '\\':
			if s.offset >= len(s.src) {
				return token{}, s.errorAt(start, string(s.src[start.offset:]), ErrUnterminated, "unfinished string")
			}
			escPos := s.position
			esc := s.advance()
			switch esc {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'a':
				buf = append(buf, '\a')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case 'v':
				buf = append(buf, '\v')
			case '\\', '"', '\'':
				buf = append(buf, esc)
			case '\n':
				// A backslash followed by a line break is a line break;
				// DCS writes multi-line strings this way.
				buf = append(buf, '\n')
			case '\r':
				if s.peekByte(0) == '\n' {
					s.advance()
				}
				buf = append(buf, '\n')
			default:
				if !isDigit(esc) {
					return token{}, s.errorAt(escPos, "\\"+string(esc), ErrSyntax, "invalid escape sequence")
				}
				v := int(esc - '0')
				for i := 0; i < 2 && isDigit(s.peekByte(0)); i++ {
					v = 10*v + int(s.advance()-'0')
				}
				if v > 255 {
					return token{}, s.errorAt(escPos, string(s.src[escPos.offset-1:s.offset]), ErrSyntax, "decimal escape too large")
				}
				buf = append(buf, byte(v))
			}
		default:
			buf = append(buf, ch)
		}
	}
}

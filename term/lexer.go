// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/lexer.go
// Summary: Small token scanner for Gateway parameter strings.
// Usage: Gateway SET/PIPE handlers walk key=value lists with it; quoted
//        strings keep their content, backslash escapes included.

package term

import (
	"strconv"
	"strings"
)

// TokenType classifies one Gateway parameter token.
type TokenType int

const (
	TokEOF TokenType = iota
	TokIdent
	TokString
	TokNumber
	TokEquals
	TokSemicolon
	TokComma
	TokUnknown
)

// Token is one lexeme. Text holds the unescaped content for strings and the
// raw spelling otherwise; Num is populated for TokNumber.
type Token struct {
	Type TokenType
	Text string
	Num  int
}

// Is reports whether the token is an identifier spelled exactly s.
func (t Token) Is(s string) bool { return t.Type == TokIdent && t.Text == s }

// Lexer scans a parameter string left to right.
type Lexer struct {
	src string
	pos int
}

// NewLexer starts a scan over src.
func NewLexer(src string) *Lexer { return &Lexer{src: src} }

// Rest returns the unscanned tail of the input.
func (l *Lexer) Rest() string {
	if l.pos >= len(l.src) {
		return ""
	}
	return l.src[l.pos:]
}

// Segment consumes raw text up to the next top-level semicolon, which is
// also consumed. Quotes shield embedded semicolons.
func (l *Lexer) Segment() string {
	start := l.pos
	var quote byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if quote != 0 {
			if c == '\\' && l.pos+1 < len(l.src) {
				l.pos++
			} else if c == quote {
				quote = 0
			}
			l.pos++
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			l.pos++
			continue
		}
		if c == ';' {
			seg := l.src[start:l.pos]
			l.pos++
			return strings.TrimSpace(seg)
		}
		l.pos++
	}
	return strings.TrimSpace(l.src[start:])
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '#'
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

// Next returns the following token, TokEOF at the end of input.
func (l *Lexer) Next() Token {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{Type: TokEOF}
	}

	c := l.src[l.pos]
	switch c {
	case '=':
		l.pos++
		return Token{Type: TokEquals, Text: "="}
	case ';':
		l.pos++
		return Token{Type: TokSemicolon, Text: ";"}
	case ',':
		l.pos++
		return Token{Type: TokComma, Text: ","}
	case '"', '\'':
		return l.scanString(c)
	}

	if isDigitByte(c) || c == '-' && l.pos+1 < len(l.src) && isDigitByte(l.src[l.pos+1]) {
		return l.scanNumber()
	}
	if isIdentByte(c) {
		start := l.pos
		for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
			l.pos++
		}
		return Token{Type: TokIdent, Text: l.src[start:l.pos]}
	}

	l.pos++
	return Token{Type: TokUnknown, Text: string(c)}
}

func (l *Lexer) scanString(quote byte) Token {
	l.pos++
	var out []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			next := l.src[l.pos+1]
			switch next {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'e':
				out = append(out, 0x1b)
			default:
				out = append(out, next)
			}
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			break
		}
		out = append(out, c)
		l.pos++
	}
	return Token{Type: TokString, Text: string(out)}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	base := 10
	if l.pos+1 < len(l.src) && l.src[l.pos] == '0' &&
		(l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
		base = 16
		l.pos += 2
	}
	digits := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if base == 16 && isHexByte(c) || base == 10 && isDigitByte(c) {
			l.pos++
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	n, err := strconv.ParseInt(l.src[digits:l.pos], base, 64)
	if err != nil {
		return Token{Type: TokNumber, Text: text}
	}
	if text[0] == '-' {
		n = -n
	}
	return Token{Type: TokNumber, Text: text, Num: int(n)}
}

func isHexByte(c byte) bool {
	return isDigitByte(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// splitFields breaks s on top-level semicolons, honoring quotes, into at
// most n parts; the final part keeps its remaining semicolons intact.
func splitFields(s string, n int) []string {
	var out []string
	start := 0
	var quote byte
	for i := 0; i < len(s) && len(out) < n-1; i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case ';':
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

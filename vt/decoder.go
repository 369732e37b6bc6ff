// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/decoder.go
// Summary: Streaming UTF-8 decoder feeding the printable path of the parser.
// Usage: Feed returns zero or more runes per input byte; invalid input yields
//        U+FFFD without losing the byte that follows.

package vt

import "unicode/utf8"

// utf8Decoder assembles multi-byte UTF-8 sequences one input byte at a time.
type utf8Decoder struct {
	acc   rune
	need  int
	count int
	min   rune
}

// Feed consumes one byte. It returns the decoded rune and true when a rune
// completed, or false while a sequence is still pending. A second return of
// true with replay set means b must be fed again after the returned rune.
func (d *utf8Decoder) Feed(b byte) (r rune, ok bool, replay bool) {
	if d.need == 0 {
		switch {
		case b < 0x80:
			return rune(b), true, false
		case b&0xE0 == 0xC0:
			d.acc = rune(b & 0x1F)
			d.need = 1
			d.min = 0x80
		case b&0xF0 == 0xE0:
			d.acc = rune(b & 0x0F)
			d.need = 2
			d.min = 0x800
		case b&0xF8 == 0xF0:
			d.acc = rune(b & 0x07)
			d.need = 3
			d.min = 0x10000
		default:
			return utf8.RuneError, true, false
		}
		d.count = 0
		return 0, false, false
	}
	if b&0xC0 != 0x80 {
		// Truncated sequence; emit the replacement and replay the byte.
		d.need = 0
		return utf8.RuneError, true, true
	}
	d.acc = d.acc<<6 | rune(b&0x3F)
	d.count++
	if d.count < d.need {
		return 0, false, false
	}
	d.need = 0
	r = d.acc
	if r < d.min || r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		return utf8.RuneError, true, false
	}
	return r, true, false
}

// Pending reports whether a partial sequence is buffered.
func (d *utf8Decoder) Pending() bool { return d.need != 0 }

// Reset abandons any partial sequence.
func (d *utf8Decoder) Reset() { d.need = 0 }

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/charset.go
// Summary: Character-set designation (G0-G3), GL/GR mapping and translation.
// Usage: The decoder routes non-UTF-8 bytes through the active tables.

package vt

// Charset identifies one designable character set.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetDECSpecial
	CharsetUK
	CharsetDECSupplemental
	CharsetUTF8
	CharsetLatin1
	CharsetCP437
	CharsetSoftFont
)

// CharsetState tracks the four designated sets, the GL/GR mappings and the
// single-shift flags.
type CharsetState struct {
	G  [4]Charset
	GL int // slot index mapped into 0x21-0x7E
	GR int // slot index mapped into 0xA1-0xFE
	SS int // 0 = none, 2 = SS2 pending, 3 = SS3 pending
}

// defaultCharsetState powers on with UTF-8 in GL so multi-byte input decodes
// directly. The National/DEC tables engage only once the host designates one
// (SCS) or shifts to G1.
func defaultCharsetState() CharsetState {
	return CharsetState{
		G:  [4]Charset{CharsetUTF8, CharsetDECSpecial, CharsetASCII, CharsetASCII},
		GL: 0,
		GR: 1,
	}
}

// UsesUTF8 reports whether the GL slot currently selects UTF-8 so the decoder
// should treat high bytes as continuation bytes.
func (cs *CharsetState) UsesUTF8() bool {
	return cs.G[cs.GL] == CharsetUTF8
}

// decSpecialGraphics maps 0x5F-0x7E of the DEC Special Graphics set.
var decSpecialGraphics = [32]rune{
	' ', '◆', '▒', '␉', '␌', '␍', '␊', '°',
	'±', '␤', '␋', '┘', '┐', '┌', '└', '┼',
	'⎺', '⎻', '─', '⎼', '⎽', '├', '┤', '┴',
	'┬', '│', '≤', '≥', 'π', '≠', '£', '·',
}

// cp437High maps 0x80-0xFF of IBM code page 437 to Unicode.
var cp437High = [128]rune{
	0x00C7, 0x00FC, 0x00E9, 0x00E2, 0x00E4, 0x00E0, 0x00E5, 0x00E7,
	0x00EA, 0x00EB, 0x00E8, 0x00EF, 0x00EE, 0x00EC, 0x00C4, 0x00C5,
	0x00C9, 0x00E6, 0x00C6, 0x00F4, 0x00F6, 0x00F2, 0x00FB, 0x00F9,
	0x00FF, 0x00D6, 0x00DC, 0x00A2, 0x00A3, 0x00A5, 0x20A7, 0x0192,
	0x00E1, 0x00ED, 0x00F3, 0x00FA, 0x00F1, 0x00D1, 0x00AA, 0x00BA,
	0x00BF, 0x2310, 0x00AC, 0x00BD, 0x00BC, 0x00A1, 0x00AB, 0x00BB,
	0x2591, 0x2592, 0x2593, 0x2502, 0x2524, 0x2561, 0x2562, 0x2556,
	0x2555, 0x2563, 0x2551, 0x2557, 0x255D, 0x255C, 0x255B, 0x2510,
	0x2514, 0x2534, 0x252C, 0x251C, 0x2500, 0x253C, 0x255E, 0x255F,
	0x255A, 0x2554, 0x2569, 0x2566, 0x2560, 0x2550, 0x256C, 0x2567,
	0x2568, 0x2564, 0x2565, 0x2559, 0x2558, 0x2552, 0x2553, 0x256B,
	0x256A, 0x2518, 0x250C, 0x2588, 0x2584, 0x258C, 0x2590, 0x2580,
	0x03B1, 0x00DF, 0x0393, 0x03C0, 0x03A3, 0x03C3, 0x00B5, 0x03C4,
	0x03A6, 0x0398, 0x03A9, 0x03B4, 0x221E, 0x03C6, 0x03B5, 0x2229,
	0x2261, 0x00B1, 0x2265, 0x2264, 0x2320, 0x2321, 0x00F7, 0x2248,
	0x00B0, 0x2219, 0x00B7, 0x221A, 0x207F, 0x00B2, 0x25A0, 0x00A0,
}

// decSupplemental maps 0xA0-0xFF of the DEC Multinational supplemental set.
// It tracks Latin-1 except for a handful of slots.
func decSupplemental(b byte) rune {
	switch b {
	case 0xA8:
		return '¤' // currency sign where Latin-1 has diaeresis
	case 0xD7:
		return 'Œ' // OE ligature
	case 0xDD:
		return 'Ÿ' // Y with diaeresis
	case 0xF7:
		return 'œ' // oe ligature
	case 0xFD:
		return 'ÿ'
	default:
		return rune(b)
	}
}

// translateByte maps a single byte through the given charset. The soft-font
// set maps into a private-use window so the renderer can address the DECDLD
// glyph bank directly.
func translateByte(cs Charset, b byte) rune {
	switch cs {
	case CharsetASCII, CharsetUTF8:
		return rune(b)
	case CharsetUK:
		if b == '#' {
			return '£'
		}
		return rune(b)
	case CharsetDECSpecial:
		if b >= 0x5F && b <= 0x7E {
			return decSpecialGraphics[b-0x5F]
		}
		return rune(b)
	case CharsetDECSupplemental:
		if b >= 0xA0 {
			return decSupplemental(b)
		}
		return rune(b)
	case CharsetLatin1:
		return rune(b)
	case CharsetCP437:
		if b >= 0x80 {
			return cp437High[b-0x80]
		}
		return rune(b)
	case CharsetSoftFont:
		if b >= 0x20 && b < 0x80 {
			return softFontBase + rune(b-0x20)
		}
		return rune(b)
	}
	return rune(b)
}

// Translate maps an input byte through the active GL/GR tables, consuming a
// pending single shift.
func (cs *CharsetState) Translate(b byte) rune {
	slot := cs.GL
	if cs.SS == 2 {
		slot = 2
		cs.SS = 0
	} else if cs.SS == 3 {
		slot = 3
		cs.SS = 0
	} else if b >= 0xA0 {
		slot = cs.GR
	}
	return translateByte(cs.G[slot], b)
}

// designCharset resolves a final byte from an ESC ( ) * + sequence into a
// charset, reporting false for designators the core does not know.
func designCharset(final byte) (Charset, bool) {
	switch final {
	case 'B':
		return CharsetASCII, true
	case 'A':
		return CharsetUK, true
	case '0':
		return CharsetDECSpecial, true
	case '1':
		return CharsetASCII, true
	case '2':
		return CharsetDECSpecial, true
	case '<':
		return CharsetDECSupplemental, true
	case '%': // ESC % G selects UTF-8; handled by the parser before this point
		return CharsetUTF8, true
	case ' ':
		return CharsetSoftFont, true
	}
	return CharsetASCII, false
}

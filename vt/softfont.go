// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/softfont.go
// Summary: DECDLD downloadable character sets and DECUDK user-defined keys.
//          Soft-font glyphs map into a private-use rune window so the grid
//          stores them like any other character.

package vt

import (
	"fmt"
	"strconv"
	"strings"
)

// softFontBase is where soft-font glyph slots live in the private use area.
const softFontBase rune = 0xF000

// softFontGlyphs is the 94 printable positions a DECDLD set can fill.
const softFontGlyphs = 94

// SoftFontGlyph is one downloaded glyph as a column-major sixel bitmap.
type SoftFontGlyph struct {
	Columns [][]byte
	Defined bool
}

// SoftFont is a downloaded character set.
type SoftFont struct {
	Name      string
	CellW     int
	CellH     int
	EraseMode int
	Glyphs    [softFontGlyphs]SoftFontGlyph
}

// GlyphFor returns the glyph backing a private-use rune written through the
// soft-font charset, if it was defined.
func (f *SoftFont) GlyphFor(r rune) (*SoftFontGlyph, bool) {
	if f == nil || r < softFontBase || r >= softFontBase+softFontGlyphs {
		return nil, false
	}
	g := &f.Glyphs[r-softFontBase]
	if !g.Defined {
		return nil, false
	}
	return g, true
}

// loadSoftFont implements DECDLD. Parameters: Pfn;Pcn;Pe;Pcmw;Pss;Pt;Pcmh;Pcss
// then the Dscs name and sixel glyph data separated by ';'.
func (s *Session) loadSoftFont(params *Params, data []byte) {
	startChar := params.GetRaw(1)
	erase := params.GetRaw(2)
	cellW := params.GetRaw(3)
	cellH := params.GetRaw(6)
	if cellW == 0 {
		cellW = 8
	}
	if cellH == 0 {
		cellH = 16
	}

	// The name ends at the first sixel data byte (?-~ after any digits/
	// intermediates that form the Dscs).
	body := string(data)
	name := ""
	if i := strings.IndexFunc(body, func(r rune) bool { return r >= '?' && r <= '~' }); i > 0 {
		name = body[:i]
		body = body[i:]
	}

	if s.SoftFont == nil || erase == 2 {
		s.SoftFont = &SoftFont{Name: name, CellW: cellW, CellH: cellH, EraseMode: erase}
	}
	font := s.SoftFont
	font.Name = name

	glyphs := strings.Split(body, ";")
	for gi, glyph := range glyphs {
		slot := startChar - 1 + gi
		if slot < 0 || slot >= softFontGlyphs {
			s.report(LevelWarning, SourceExecutor, fmt.Sprintf("DECDLD: glyph slot %d out of range", slot))
			continue
		}
		font.Glyphs[slot] = decodeSoftGlyph(glyph)
	}
	s.report(LevelInfo, SourceExecutor, fmt.Sprintf("DECDLD: loaded %d glyphs into %q", len(glyphs), name))
}

// decodeSoftGlyph expands sixel-coded columns. '/' separates the upper and
// lower sixel bands; band bytes carry 6 pixels each in bits 0-5.
func decodeSoftGlyph(data string) SoftFontGlyph {
	var g SoftFontGlyph
	for _, band := range strings.Split(data, "/") {
		var cols []byte
		for i := 0; i < len(band); i++ {
			b := band[i]
			if b < '?' || b > '~' {
				continue
			}
			cols = append(cols, b-'?')
		}
		g.Columns = append(g.Columns, cols)
	}
	g.Defined = len(g.Columns) > 0
	return g
}

// defineUDK implements DECUDK: Pc;Pl | key/hex;key/hex. Programs the
// shifted-function-key strings.
func (s *Session) defineUDK(params *Params, data []byte) {
	clear := params.GetRaw(0)
	if clear == 0 && s.udk != nil {
		s.udk = nil
	}
	if s.udk == nil {
		s.udk = make(map[int][]byte)
	}
	for _, def := range strings.Split(string(data), ";") {
		keyStr, hexStr, found := strings.Cut(def, "/")
		if !found {
			continue
		}
		key, err := strconv.Atoi(keyStr)
		if err != nil {
			s.report(LevelWarning, SourceExecutor, fmt.Sprintf("DECUDK: bad key selector %q", keyStr))
			continue
		}
		decoded, ok := decodeHexPairs(hexStr)
		if !ok {
			s.report(LevelWarning, SourceExecutor, fmt.Sprintf("DECUDK: bad hex payload for key %d", key))
			continue
		}
		s.udk[key] = decoded
	}
}

// UDK looks up the programmed string for a shifted function key.
func (s *Session) UDK(key int) ([]byte, bool) {
	v, ok := s.udk[key]
	return v, ok
}

func decodeHexPairs(h string) ([]byte, bool) {
	if len(h)%2 != 0 {
		return nil, false
	}
	out := make([]byte, 0, len(h)/2)
	for i := 0; i < len(h); i += 2 {
		hi, ok1 := hexNibble(h[i])
		lo, ok2 := hexNibble(h[i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out = append(out, hi<<4|lo)
	}
	return out, true
}

func hexNibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

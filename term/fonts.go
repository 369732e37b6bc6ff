// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/fonts.go
// Summary: Banner font registry: built-in bitmap fonts plus per-glyph
//          column metrics for kerned rendering.
// Usage: Gateway PIPE BANNER picks a font by name; SET FONT changes the
//        registry default; GET FONTS lists what is loadable.

package term

import (
	"sort"
	"strings"
)

// BannerFont is a fixed-cell bitmap font. Each glyph is Height row bytes,
// most significant bit leftmost.
type BannerFont struct {
	Name          string
	Width, Height int
	glyphs        map[rune][]byte
}

// Glyph returns the row bitmap for r. Lowercase letters fold to uppercase
// when the font carries no lowercase forms.
func (f *BannerFont) Glyph(r rune) ([]byte, bool) {
	if g, ok := f.glyphs[r]; ok {
		return g, true
	}
	if r >= 'a' && r <= 'z' {
		if g, ok := f.glyphs[r-32]; ok {
			return g, true
		}
	}
	return nil, false
}

// Metrics reports the inked column extent of r for kerned advance. A glyph
// with no set pixels reports ok=false.
func (f *BannerFont) Metrics(r rune) (begin, end int, ok bool) {
	g, found := f.Glyph(r)
	if !found {
		return 0, 0, false
	}
	begin, end = f.Width, -1
	for _, row := range g {
		for x := 0; x < f.Width; x++ {
			if row>>(f.Width-1-x)&1 == 1 {
				if x < begin {
					begin = x
				}
				if x > end {
					end = x
				}
			}
		}
	}
	if end < begin {
		return 0, 0, false
	}
	return begin, end, true
}

// FontRegistry holds the loadable banner fonts and the current default.
type FontRegistry struct {
	fonts   map[string]*BannerFont
	current string
}

// NewFontRegistry builds a registry with the built-in fonts installed.
func NewFontRegistry() *FontRegistry {
	r := &FontRegistry{fonts: map[string]*BannerFont{}}
	r.Register(system8)
	r.Register(doubled(system8, "system16"))
	r.current = system8.Name
	return r
}

// Register adds or replaces a font. Lookup is case-insensitive.
func (r *FontRegistry) Register(f *BannerFont) {
	r.fonts[strings.ToLower(f.Name)] = f
}

// Get returns the named font, or the current default for an empty name.
func (r *FontRegistry) Get(name string) (*BannerFont, bool) {
	if name == "" {
		name = r.current
	}
	f, ok := r.fonts[strings.ToLower(name)]
	return f, ok
}

// SetCurrent changes the default font; unknown names are rejected.
func (r *FontRegistry) SetCurrent(name string) bool {
	if _, ok := r.fonts[strings.ToLower(name)]; !ok {
		return false
	}
	r.current = strings.ToLower(name)
	return true
}

// Current returns the default font name.
func (r *FontRegistry) Current() string { return r.current }

// Names lists registered fonts sorted by name.
func (r *FontRegistry) Names() []string {
	out := make([]string, 0, len(r.fonts))
	for _, f := range r.fonts {
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}

// doubled derives a font twice as tall by repeating each row.
func doubled(src *BannerFont, name string) *BannerFont {
	f := &BannerFont{Name: name, Width: src.Width, Height: src.Height * 2,
		glyphs: make(map[rune][]byte, len(src.glyphs))}
	for r, g := range src.glyphs {
		rows := make([]byte, 0, len(g)*2)
		for _, b := range g {
			rows = append(rows, b, b)
		}
		f.glyphs[r] = rows
	}
	return f
}

// system8 is an 8x8 uppercase bitmap font in the PC hardware style.
var system8 = &BannerFont{
	Name:   "system8",
	Width:  8,
	Height: 8,
	glyphs: map[rune][]byte{
		' ':  {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		'!':  {0x18, 0x18, 0x18, 0x18, 0x18, 0x00, 0x18, 0x00},
		'"':  {0x6C, 0x6C, 0x48, 0x00, 0x00, 0x00, 0x00, 0x00},
		'#':  {0x6C, 0xFE, 0x6C, 0x6C, 0x6C, 0xFE, 0x6C, 0x00},
		'$':  {0x18, 0x3E, 0x60, 0x3C, 0x06, 0x7C, 0x18, 0x00},
		'%':  {0x62, 0x66, 0x0C, 0x18, 0x30, 0x66, 0x46, 0x00},
		'&':  {0x38, 0x6C, 0x38, 0x76, 0xDC, 0xCC, 0x76, 0x00},
		'\'': {0x18, 0x18, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00},
		'(':  {0x0C, 0x18, 0x30, 0x30, 0x30, 0x18, 0x0C, 0x00},
		')':  {0x30, 0x18, 0x0C, 0x0C, 0x0C, 0x18, 0x30, 0x00},
		'*':  {0x00, 0x66, 0x3C, 0xFF, 0x3C, 0x66, 0x00, 0x00},
		'+':  {0x00, 0x18, 0x18, 0x7E, 0x18, 0x18, 0x00, 0x00},
		',':  {0x00, 0x00, 0x00, 0x00, 0x00, 0x18, 0x18, 0x30},
		'-':  {0x00, 0x00, 0x00, 0x7E, 0x00, 0x00, 0x00, 0x00},
		'.':  {0x00, 0x00, 0x00, 0x00, 0x00, 0x18, 0x18, 0x00},
		'/':  {0x06, 0x0C, 0x18, 0x30, 0x60, 0xC0, 0x80, 0x00},
		'0':  {0x7C, 0xC6, 0xCE, 0xD6, 0xE6, 0xC6, 0x7C, 0x00},
		'1':  {0x18, 0x38, 0x18, 0x18, 0x18, 0x18, 0x7E, 0x00},
		'2':  {0x7C, 0xC6, 0x06, 0x1C, 0x70, 0xC6, 0xFE, 0x00},
		'3':  {0x7C, 0xC6, 0x06, 0x3C, 0x06, 0xC6, 0x7C, 0x00},
		'4':  {0x1C, 0x3C, 0x6C, 0xCC, 0xFE, 0x0C, 0x1E, 0x00},
		'5':  {0xFE, 0xC0, 0xFC, 0x06, 0x06, 0xC6, 0x7C, 0x00},
		'6':  {0x38, 0x60, 0xC0, 0xFC, 0xC6, 0xC6, 0x7C, 0x00},
		'7':  {0xFE, 0xC6, 0x0C, 0x18, 0x30, 0x30, 0x30, 0x00},
		'8':  {0x7C, 0xC6, 0xC6, 0x7C, 0xC6, 0xC6, 0x7C, 0x00},
		'9':  {0x7C, 0xC6, 0xC6, 0x7E, 0x06, 0x0C, 0x78, 0x00},
		':':  {0x00, 0x18, 0x18, 0x00, 0x00, 0x18, 0x18, 0x00},
		';':  {0x00, 0x18, 0x18, 0x00, 0x00, 0x18, 0x18, 0x30},
		'<':  {0x0C, 0x18, 0x30, 0x60, 0x30, 0x18, 0x0C, 0x00},
		'=':  {0x00, 0x00, 0x7E, 0x00, 0x7E, 0x00, 0x00, 0x00},
		'>':  {0x30, 0x18, 0x0C, 0x06, 0x0C, 0x18, 0x30, 0x00},
		'?':  {0x7C, 0xC6, 0x0C, 0x18, 0x18, 0x00, 0x18, 0x00},
		'@':  {0x7C, 0xC6, 0xDE, 0xDE, 0xDC, 0xC0, 0x7C, 0x00},
		'A':  {0x38, 0x6C, 0xC6, 0xC6, 0xFE, 0xC6, 0xC6, 0x00},
		'B':  {0xFC, 0x66, 0x66, 0x7C, 0x66, 0x66, 0xFC, 0x00},
		'C':  {0x3C, 0x66, 0xC0, 0xC0, 0xC0, 0x66, 0x3C, 0x00},
		'D':  {0xF8, 0x6C, 0x66, 0x66, 0x66, 0x6C, 0xF8, 0x00},
		'E':  {0xFE, 0x62, 0x68, 0x78, 0x68, 0x62, 0xFE, 0x00},
		'F':  {0xFE, 0x62, 0x68, 0x78, 0x68, 0x60, 0xF0, 0x00},
		'G':  {0x3C, 0x66, 0xC0, 0xC0, 0xCE, 0x66, 0x3E, 0x00},
		'H':  {0xC6, 0xC6, 0xC6, 0xFE, 0xC6, 0xC6, 0xC6, 0x00},
		'I':  {0x3C, 0x18, 0x18, 0x18, 0x18, 0x18, 0x3C, 0x00},
		'J':  {0x1E, 0x0C, 0x0C, 0x0C, 0xCC, 0xCC, 0x78, 0x00},
		'K':  {0xE6, 0x66, 0x6C, 0x78, 0x6C, 0x66, 0xE6, 0x00},
		'L':  {0xF0, 0x60, 0x60, 0x60, 0x62, 0x66, 0xFE, 0x00},
		'M':  {0xC6, 0xEE, 0xFE, 0xFE, 0xD6, 0xC6, 0xC6, 0x00},
		'N':  {0xC6, 0xE6, 0xF6, 0xDE, 0xCE, 0xC6, 0xC6, 0x00},
		'O':  {0x7C, 0xC6, 0xC6, 0xC6, 0xC6, 0xC6, 0x7C, 0x00},
		'P':  {0xFC, 0x66, 0x66, 0x7C, 0x60, 0x60, 0xF0, 0x00},
		'Q':  {0x7C, 0xC6, 0xC6, 0xC6, 0xC6, 0xCE, 0x7C, 0x0E},
		'R':  {0xFC, 0x66, 0x66, 0x7C, 0x6C, 0x66, 0xE6, 0x00},
		'S':  {0x3C, 0x66, 0x30, 0x18, 0x0C, 0x66, 0x3C, 0x00},
		'T':  {0x7E, 0x7E, 0x5A, 0x18, 0x18, 0x18, 0x3C, 0x00},
		'U':  {0xC6, 0xC6, 0xC6, 0xC6, 0xC6, 0xC6, 0x7C, 0x00},
		'V':  {0xC6, 0xC6, 0xC6, 0xC6, 0xC6, 0x6C, 0x38, 0x00},
		'W':  {0xC6, 0xC6, 0xC6, 0xD6, 0xFE, 0xEE, 0xC6, 0x00},
		'X':  {0xC6, 0x6C, 0x38, 0x38, 0x38, 0x6C, 0xC6, 0x00},
		'Y':  {0x66, 0x66, 0x66, 0x3C, 0x18, 0x18, 0x3C, 0x00},
		'Z':  {0xFE, 0xC6, 0x8C, 0x18, 0x32, 0x66, 0xFE, 0x00},
		'[':  {0x3C, 0x30, 0x30, 0x30, 0x30, 0x30, 0x3C, 0x00},
		'\\': {0xC0, 0x60, 0x30, 0x18, 0x0C, 0x06, 0x02, 0x00},
		']':  {0x3C, 0x0C, 0x0C, 0x0C, 0x0C, 0x0C, 0x3C, 0x00},
		'_':  {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF},
		'|':  {0x18, 0x18, 0x18, 0x18, 0x18, 0x18, 0x18, 0x00},
	},
}

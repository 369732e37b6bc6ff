// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/cell.go
// Summary: Cell, attribute bit-set and extended color types for the grid.
// Usage: Shared by the executor, the grid-op queue and the compositor.

package vt

import "strings"

// Attr is the per-cell attribute bit-set. The SGR numbers that select each bit
// on the wire live in the executor; these are pure state.
type Attr uint32

const (
	AttrBold Attr = 1 << iota
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrBlinkFast
	AttrBlinkSlow
	AttrBlinkBG
	AttrReverse
	AttrConceal
	AttrStrike
	AttrDoubleUnderline
	AttrDoubleHeightTop
	AttrDoubleHeightBottom
	AttrDoubleWidth
	AttrFramed
	AttrEncircled
	AttrSuperscript
	AttrSubscript
	AttrOverline
	AttrSoftHyphen
	AttrProtected // mirror of Cell.Protected for rectangular attribute ops
)

// AttrBlinkAny covers every blink flavor; SGR 25 clears all three.
const AttrBlinkAny = AttrBlinkFast | AttrBlinkSlow | AttrBlinkBG

var attrNames = []struct {
	bit  Attr
	name string
}{
	{AttrBold, "bold"},
	{AttrFaint, "faint"},
	{AttrItalic, "italic"},
	{AttrUnderline, "underline"},
	{AttrBlinkFast, "blink-fast"},
	{AttrBlinkSlow, "blink-slow"},
	{AttrBlinkBG, "blink-bg"},
	{AttrReverse, "reverse"},
	{AttrConceal, "conceal"},
	{AttrStrike, "strike"},
	{AttrDoubleUnderline, "double-underline"},
	{AttrDoubleHeightTop, "dhl-top"},
	{AttrDoubleHeightBottom, "dhl-bottom"},
	{AttrDoubleWidth, "double-width"},
	{AttrFramed, "framed"},
	{AttrEncircled, "encircled"},
	{AttrSuperscript, "superscript"},
	{AttrSubscript, "subscript"},
	{AttrOverline, "overline"},
	{AttrSoftHyphen, "soft-hyphen"},
	{AttrProtected, "protected"},
}

// String returns a human-readable representation of the attribute flags.
func (a Attr) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	for _, n := range attrNames {
		if a&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}

// ColorMode defines how a Color value is interpreted.
type ColorMode uint8

const (
	ColorModeDefaultFG ColorMode = iota // terminal default foreground
	ColorModeDefaultBG                  // terminal default background
	ColorModeIndexed                    // 256-color palette index
	ColorModeRGB                        // 24-bit true color
)

// Color is a tagged color variant: default fg/bg, a palette index, or RGB.
type Color struct {
	Mode    ColorMode
	Index   uint8
	R, G, B uint8
}

var (
	DefaultFG = Color{Mode: ColorModeDefaultFG}
	DefaultBG = Color{Mode: ColorModeDefaultBG}
)

// IndexedColor returns a palette color.
func IndexedColor(n uint8) Color {
	return Color{Mode: ColorModeIndexed, Index: n}
}

// RGBColor returns a 24-bit color.
func RGBColor(r, g, b uint8) Color {
	return Color{Mode: ColorModeRGB, R: r, G: g, B: b}
}

// IsDefault reports whether the color is one of the terminal defaults.
func (c Color) IsDefault() bool {
	return c.Mode == ColorModeDefaultFG || c.Mode == ColorModeDefaultBG
}

// Cell represents a single character cell on the screen.
type Cell struct {
	Rune rune
	Attr Attr
	FG   Color
	BG   Color
	UL   Color // underline color (SGR 58)
	ST   Color // strike color
	// Protected guards the cell against structural operations (DECSCA).
	Protected bool
	Combining []rune
	// WideLeft/WideRight pair up for a two-column glyph. A write that breaks
	// the pair must clear the surviving half.
	WideLeft  bool
	WideRight bool
	Dirty     bool
}

// blankCell returns an erased cell carrying the session's current colors, the
// way DEC erases do (background color sticks, attributes do not).
func blankCell(fg, bg Color) Cell {
	return Cell{Rune: ' ', FG: fg, BG: bg, UL: DefaultFG, ST: DefaultFG, Dirty: true}
}

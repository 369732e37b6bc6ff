// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/palette.go
// Summary: The 256-entry color table plus the dynamic default colors. The
//          first 16 entries follow xterm; ANSI.SYS mode pins them to CGA.

package vt

import (
	"strconv"
	"strings"
)

// RGB is a concrete display color resolved from the palette.
type RGB struct {
	R, G, B uint8
}

// RGB returns the channels; kept as a method so callers read naturally at
// reply-formatting sites.
func (c RGB) RGB() (r, g, b uint8) { return c.R, c.G, c.B }

var (
	defaultForeground = RGB{0xC0, 0xC0, 0xC0}
	defaultBackground = RGB{0x00, 0x00, 0x00}
)

// Palette is the session color state: 256 indexed entries plus the dynamic
// defaults addressable through OSC 10/11/12.
type Palette struct {
	Colors      [256]RGB
	DefaultFG   RGB
	DefaultBG   RGB
	CursorColor RGB
}

// ansi16 is the xterm rendition of the classic 16 colors.
var ansi16 = [16]RGB{
	{0x00, 0x00, 0x00}, {0xCD, 0x00, 0x00}, {0x00, 0xCD, 0x00}, {0xCD, 0xCD, 0x00},
	{0x00, 0x00, 0xEE}, {0xCD, 0x00, 0xCD}, {0x00, 0xCD, 0xCD}, {0xE5, 0xE5, 0xE5},
	{0x7F, 0x7F, 0x7F}, {0xFF, 0x00, 0x00}, {0x00, 0xFF, 0x00}, {0xFF, 0xFF, 0x00},
	{0x5C, 0x5C, 0xFF}, {0xFF, 0x00, 0xFF}, {0x00, 0xFF, 0xFF}, {0xFF, 0xFF, 0xFF},
}

// cga16 is the IBM CGA palette ANSI.SYS rendered against.
var cga16 = [16]RGB{
	{0x00, 0x00, 0x00}, {0xAA, 0x00, 0x00}, {0x00, 0xAA, 0x00}, {0xAA, 0x55, 0x00},
	{0x00, 0x00, 0xAA}, {0xAA, 0x00, 0xAA}, {0x00, 0xAA, 0xAA}, {0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55}, {0xFF, 0x55, 0x55}, {0x55, 0xFF, 0x55}, {0xFF, 0xFF, 0x55},
	{0x55, 0x55, 0xFF}, {0xFF, 0x55, 0xFF}, {0x55, 0xFF, 0xFF}, {0xFF, 0xFF, 0xFF},
}

// DefaultPalette builds the xterm 256-color table.
func DefaultPalette() Palette {
	var p Palette
	copy(p.Colors[:16], ansi16[:])
	// 6x6x6 color cube.
	levels := [6]uint8{0x00, 0x5F, 0x87, 0xAF, 0xD7, 0xFF}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.Colors[i] = RGB{levels[r], levels[g], levels[b]}
				i++
			}
		}
	}
	// 24-step grayscale ramp.
	for g := 0; g < 24; g++ {
		v := uint8(8 + g*10)
		p.Colors[i] = RGB{v, v, v}
		i++
	}
	p.DefaultFG = defaultForeground
	p.DefaultBG = defaultBackground
	p.CursorColor = defaultForeground
	return p
}

// applyCGA pins the low 16 entries to the CGA palette.
func (p *Palette) applyCGA() {
	copy(p.Colors[:16], cga16[:])
}

// Resolve maps a cell color onto a display RGB.
func (p *Palette) Resolve(c Color, isBG bool) RGB {
	switch c.Mode {
	case ColorModeRGB:
		return RGB{c.R, c.G, c.B}
	case ColorModeIndexed:
		return p.Colors[c.Index]
	case ColorModeDefaultBG:
		return p.DefaultBG
	default:
		if isBG {
			return p.DefaultBG
		}
		return p.DefaultFG
	}
}

// ParseColorSpec accepts the X11 "rgb:RR/GG/BB" form (with 1-4 hex digits
// per channel), "#RGB", "#RRGGBB" and the bare "r,g,b" decimal form.
func ParseColorSpec(spec string) (RGB, bool) {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "rgb:") {
		parts := strings.Split(spec[4:], "/")
		if len(parts) != 3 {
			return RGB{}, false
		}
		var out [3]uint8
		for i, part := range parts {
			v, err := strconv.ParseUint(part, 16, 16)
			if err != nil || len(part) == 0 || len(part) > 4 {
				return RGB{}, false
			}
			// Scale to 8 bits per channel width.
			switch len(part) {
			case 1:
				out[i] = uint8(v * 17)
			case 2:
				out[i] = uint8(v)
			case 3:
				out[i] = uint8(v >> 4)
			case 4:
				out[i] = uint8(v >> 8)
			}
		}
		return RGB{out[0], out[1], out[2]}, true
	}
	if strings.HasPrefix(spec, "#") {
		hex := spec[1:]
		switch len(hex) {
		case 3:
			v, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return RGB{}, false
			}
			return RGB{
				uint8(v>>8&0xF) * 17,
				uint8(v>>4&0xF) * 17,
				uint8(v&0xF) * 17,
			}, true
		case 6:
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return RGB{}, false
			}
			return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
		}
		return RGB{}, false
	}
	if strings.Contains(spec, ",") {
		parts := strings.Split(spec, ",")
		if len(parts) != 3 {
			return RGB{}, false
		}
		var out [3]uint8
		for i, part := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || v < 0 || v > 255 {
				return RGB{}, false
			}
			out[i] = uint8(v)
		}
		return RGB{out[0], out[1], out[2]}, true
	}
	return RGB{}, false
}

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec_sgr.go
// Summary: Select Graphic Rendition. Handles the classic attribute set, the
//          extended 38/48/58 color forms in both colon and semicolon syntax,
//          and the ANSI.SYS restricted subset.

package vt

import "fmt"

// applySGR folds the parameter list into the pen.
func (s *Session) applySGR(params *Params) {
	for i := 0; i < params.Len(); i++ {
		n := params.GetRaw(i)
		if s.ansiSys && !ansiSysAllowsSGR(n) {
			continue
		}
		switch n {
		case 0:
			prot := s.pen.Protected
			s.pen = Pen{FG: DefaultFG, BG: DefaultBG}
			s.pen.Protected = prot
		case 1:
			s.pen.Attr |= AttrBold
		case 2:
			s.pen.Attr |= AttrFaint
		case 3:
			s.pen.Attr |= AttrItalic
		case 4:
			if params.HasSubs(i) {
				s.applyUnderlineStyle(params.Sub(i, 0, 1))
			} else {
				s.pen.Attr |= AttrUnderline
			}
		case 5:
			// Fast blink also blinks the background.
			s.pen.Attr |= AttrBlinkFast | AttrBlinkBG
		case 6:
			s.pen.Attr |= AttrBlinkSlow
		case 7:
			s.pen.Attr |= AttrReverse
		case 8:
			s.pen.Attr |= AttrConceal
		case 9:
			s.pen.Attr |= AttrStrike
		case 21:
			s.pen.Attr |= AttrDoubleUnderline
		case 22:
			s.pen.Attr &^= AttrBold | AttrFaint
		case 23:
			s.pen.Attr &^= AttrItalic
		case 24:
			s.pen.Attr &^= AttrUnderline | AttrDoubleUnderline
		case 25:
			s.pen.Attr &^= AttrBlinkAny
		case 27:
			s.pen.Attr &^= AttrReverse
		case 28:
			s.pen.Attr &^= AttrConceal
		case 29:
			s.pen.Attr &^= AttrStrike
		case 38:
			if c, skip, ok := s.extendedColor(params, i); ok {
				s.pen.FG = c
				i += skip
			} else {
				i = params.Len()
			}
		case 39:
			s.pen.FG = DefaultFG
		case 48:
			if c, skip, ok := s.extendedColor(params, i); ok {
				s.pen.BG = c
				i += skip
			} else {
				i = params.Len()
			}
		case 49:
			s.pen.BG = DefaultBG
		case 51:
			s.pen.Attr |= AttrFramed
		case 52:
			s.pen.Attr |= AttrEncircled
		case 53:
			s.pen.Attr |= AttrOverline
		case 54:
			s.pen.Attr &^= AttrFramed | AttrEncircled
		case 55:
			s.pen.Attr &^= AttrOverline
		case 58:
			if c, skip, ok := s.extendedColor(params, i); ok {
				s.pen.UL = c
				i += skip
			} else {
				i = params.Len()
			}
		case 59:
			s.pen.UL = Color{}
		case 73:
			s.pen.Attr |= AttrSuperscript
		case 74:
			s.pen.Attr |= AttrSubscript
		case 75:
			s.pen.Attr &^= AttrSuperscript | AttrSubscript
		default:
			switch {
			case n >= 30 && n <= 37:
				s.pen.FG = IndexedColor(uint8(n - 30))
			case n >= 40 && n <= 47:
				s.pen.BG = IndexedColor(uint8(n - 40))
			case n >= 90 && n <= 97:
				if s.Level >= LevelVT220 {
					s.pen.FG = IndexedColor(uint8(n - 90 + 8))
				}
			case n >= 100 && n <= 107:
				if s.Level >= LevelVT220 {
					s.pen.BG = IndexedColor(uint8(n - 100 + 8))
				}
			default:
				s.report(LevelWarning, SourceExecutor, fmt.Sprintf("Unhandled SGR %d", n))
			}
		}
	}
}

// applyUnderlineStyle handles the colon form 4:n. Every non-zero style maps
// onto the single or double underline bits; the renderer does not distinguish
// curl/dot/dash.
func (s *Session) applyUnderlineStyle(style int) {
	switch style {
	case 0:
		s.pen.Attr &^= AttrUnderline | AttrDoubleUnderline
	case 2:
		s.pen.Attr |= AttrDoubleUnderline
	default:
		s.pen.Attr |= AttrUnderline
	}
}

// extendedColor decodes the 38/48/58 forms. The return skip counts extra
// semicolon parameters consumed; the colon form consumes none.
func (s *Session) extendedColor(params *Params, i int) (c Color, skip int, ok bool) {
	if params.HasSubs(i) {
		switch params.Sub(i, 0, 0) {
		case 5:
			return IndexedColor(uint8(clampInt(params.Sub(i, 1, 0), 0, 255))), 0, true
		case 2:
			// 38:2:r:g:b and the ODA form 38:2:colorspace:r:g:b.
			off := 1
			if params.SubCount(i) >= 5 {
				off = 2
			}
			r := clampInt(params.Sub(i, off, 0), 0, 255)
			g := clampInt(params.Sub(i, off+1, 0), 0, 255)
			b := clampInt(params.Sub(i, off+2, 0), 0, 255)
			return RGBColor(uint8(r), uint8(g), uint8(b)), 0, true
		}
		s.report(LevelWarning, SourceExecutor, "Malformed extended color subparameters")
		return Color{}, 0, false
	}
	switch params.GetRaw(i + 1) {
	case 5:
		if i+2 >= params.Len() {
			return Color{}, 0, false
		}
		return IndexedColor(uint8(clampInt(params.GetRaw(i+2), 0, 255))), 2, true
	case 2:
		if i+4 >= params.Len() {
			return Color{}, 0, false
		}
		r := clampInt(params.GetRaw(i+2), 0, 255)
		g := clampInt(params.GetRaw(i+3), 0, 255)
		b := clampInt(params.GetRaw(i+4), 0, 255)
		return RGBColor(uint8(r), uint8(g), uint8(b)), 4, true
	}
	s.report(LevelWarning, SourceExecutor, "Malformed extended color parameters")
	return Color{}, 0, false
}

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/mouse.go
// Summary: Mouse tracking modes and host-bound event encoding in the X10,
//          UTF-8 and SGR formats.

package vt

import "fmt"

// MouseMode selects which events get reported.
type MouseMode int

const (
	MouseModeOff    MouseMode = iota
	MouseModeNormal           // 1000: press and release
	MouseModeButton           // 1002: plus drag motion
	MouseModeAny              // 1003: all motion
)

// MouseEncoding selects the wire format of reports.
type MouseEncoding int

const (
	MouseEncX10 MouseEncoding = iota
	MouseEncUTF8
	MouseEncSGR
)

// MouseButton numbering matches the xterm encoding before offsets.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseRelease
	MouseWheelUp
	MouseWheelDown
)

func (s *Session) setMouseMode(mode MouseMode, set bool) {
	if set {
		s.Modes.MouseMode = mode
	} else if s.Modes.MouseMode == mode {
		s.Modes.MouseMode = MouseModeOff
	}
}

func (s *Session) setMouseEncoding(enc MouseEncoding, set bool) {
	if set {
		s.Modes.MouseEnc = enc
	} else if s.Modes.MouseEnc == enc {
		s.Modes.MouseEnc = MouseEncX10
	}
}

// EncodeMouse renders one event, or nil when the active mode filters it out.
// Coordinates are zero-based cells.
func (s *Session) EncodeMouse(btn MouseButton, col, row int, motion bool, mod Modifier) []byte {
	switch s.Modes.MouseMode {
	case MouseModeOff:
		return nil
	case MouseModeNormal:
		if motion {
			return nil
		}
	case MouseModeButton:
		if motion && btn == MouseRelease {
			return nil
		}
	}

	code := 0
	release := btn == MouseRelease
	switch btn {
	case MouseLeft:
		code = 0
	case MouseMiddle:
		code = 1
	case MouseRight:
		code = 2
	case MouseRelease:
		code = 3
	case MouseWheelUp:
		code = 64
	case MouseWheelDown:
		code = 65
	}
	if motion {
		code += 32
	}
	if mod&ModShift != 0 {
		code += 4
	}
	if mod&ModAlt != 0 {
		code += 8
	}
	if mod&ModCtrl != 0 {
		code += 16
	}

	switch s.Modes.MouseEnc {
	case MouseEncSGR:
		final := byte('M')
		if release {
			code &^= 3
			final = 'm'
		}
		return []byte(fmt.Sprintf("%s<%d;%d;%d%c", s.csi(), code, col+1, row+1, final))
	case MouseEncUTF8:
		out := []byte(s.csi() + "M")
		out = append(out, utf8MouseCoord(code+32)...)
		out = append(out, utf8MouseCoord(col+33)...)
		return append(out, utf8MouseCoord(row+33)...)
	default:
		// X10 bytes saturate at 223 to stay printable.
		cb := clampInt(code+32, 32, 255)
		cx := clampInt(col+33, 33, 255)
		cy := clampInt(row+33, 33, 255)
		return []byte{0x1B, '[', 'M', byte(cb), byte(cx), byte(cy)}
	}
}

// utf8MouseCoord encodes mode 1005 coordinates as two-byte UTF-8 past 127.
func utf8MouseCoord(v int) []byte {
	if v < 0x80 {
		return []byte{byte(v)}
	}
	if v > 0x7FF {
		v = 0x7FF
	}
	return []byte{byte(0xC0 | v>>6), byte(0x80 | v&0x3F)}
}

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/keys.go
// Summary: Host-bound key encoding: cursor/keypad application modes, modifier
//          parameters, user-defined keys and bracketed paste framing.

package vt

import "fmt"

// Key identifies a non-text key.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPgUp
	KeyPgDn
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyTab
	KeyBacktab
	KeyEnter
	KeyBackspace
	KeyEscape
)

// Modifier bits follow the xterm parameter convention (value = bits + 1).
type Modifier int

const (
	ModShift Modifier = 1 << iota
	ModAlt
	ModCtrl
)

func (m Modifier) param() int { return int(m) + 1 }

// fnKeyCodes maps function keys to their tilde sequence numbers.
var fnKeyCodes = map[Key]int{
	KeyF1: 11, KeyF2: 12, KeyF3: 13, KeyF4: 14, KeyF5: 15,
	KeyF6: 17, KeyF7: 18, KeyF8: 19, KeyF9: 20, KeyF10: 21,
	KeyF11: 23, KeyF12: 24, KeyF13: 25, KeyF14: 26, KeyF15: 28,
	KeyF16: 29, KeyF17: 31, KeyF18: 32, KeyF19: 33, KeyF20: 34,
	KeyInsert: 2, KeyDelete: 3, KeyPgUp: 5, KeyPgDn: 6,
}

// udkSelectors maps shifted function keys to DECUDK selectors.
var udkSelectors = map[Key]int{
	KeyF6: 17, KeyF7: 18, KeyF8: 19, KeyF9: 20, KeyF10: 21,
	KeyF11: 23, KeyF12: 24, KeyF13: 25, KeyF14: 26, KeyF15: 28,
	KeyF16: 29, KeyF17: 31, KeyF18: 32, KeyF19: 33, KeyF20: 34,
}

// EncodeKey produces the byte sequence a key press sends to the host.
func (s *Session) EncodeKey(key Key, mod Modifier) []byte {
	// Shifted function keys fire their DECUDK programs first.
	if mod&ModShift != 0 {
		if sel, ok := udkSelectors[key]; ok {
			if prog, found := s.UDK(sel); found {
				return prog
			}
		}
	}

	switch key {
	case KeyUp, KeyDown, KeyRight, KeyLeft:
		return s.encodeArrow(key, mod)
	case KeyHome, KeyEnd:
		return s.encodeHomeEnd(key, mod)
	case KeyTab:
		return []byte{'\t'}
	case KeyBacktab:
		return []byte(s.csi() + "Z")
	case KeyEnter:
		if s.Modes.NewLine {
			return []byte{'\r', '\n'}
		}
		return []byte{'\r'}
	case KeyBackspace:
		if mod&ModCtrl != 0 {
			return []byte{0x08}
		}
		return []byte{0x7F}
	case KeyEscape:
		return []byte{0x1B}
	case KeyF1, KeyF2, KeyF3, KeyF4:
		if mod == 0 {
			return []byte(fmt.Sprintf("\x1bO%c", 'P'+key-KeyF1))
		}
		return []byte(fmt.Sprintf("%s1;%d%c", s.csi(), mod.param(), 'P'+key-KeyF1))
	}

	if code, ok := fnKeyCodes[key]; ok {
		if mod == 0 {
			return []byte(fmt.Sprintf("%s%d~", s.csi(), code))
		}
		return []byte(fmt.Sprintf("%s%d;%d~", s.csi(), code, mod.param()))
	}
	return nil
}

func (s *Session) encodeArrow(key Key, mod Modifier) []byte {
	final := map[Key]byte{KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D'}[key]
	if mod != 0 {
		return []byte(fmt.Sprintf("%s1;%d%c", s.csi(), mod.param(), final))
	}
	if s.Modes.AppCursor {
		return []byte{0x1B, 'O', final}
	}
	return []byte(s.csi() + string(final))
}

func (s *Session) encodeHomeEnd(key Key, mod Modifier) []byte {
	final := byte('H')
	if key == KeyEnd {
		final = 'F'
	}
	if mod != 0 {
		return []byte(fmt.Sprintf("%s1;%d%c", s.csi(), mod.param(), final))
	}
	if s.Modes.AppCursor {
		return []byte{0x1B, 'O', final}
	}
	return []byte(s.csi() + string(final))
}

// EncodeRune produces the bytes for a plain text key, folding in Alt and
// Ctrl.
func (s *Session) EncodeRune(r rune, mod Modifier) []byte {
	var out []byte
	if mod&ModAlt != 0 {
		out = append(out, 0x1B)
	}
	if mod&ModCtrl != 0 && r >= 0x40 && r < 0x80 {
		return append(out, byte(r)&0x1F)
	}
	if r < 0x80 {
		return append(out, byte(r))
	}
	return append(out, []byte(string(r))...)
}

// EncodePaste wraps pasted text in the bracketed paste markers when the mode
// is active.
func (s *Session) EncodePaste(text []byte) []byte {
	if !s.Modes.BracketPaste {
		return text
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, []byte("\x1b[200~")...)
	out = append(out, text...)
	return append(out, []byte("\x1b[201~")...)
}

// EncodeFocus reports focus transitions when mode 1004 is active.
func (s *Session) EncodeFocus(in bool) []byte {
	if !s.Modes.FocusEvents {
		return nil
	}
	if in {
		return []byte(s.csi() + "I")
	}
	return []byte(s.csi() + "O")
}

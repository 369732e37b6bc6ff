// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/ansisys.go
// Summary: ANSI.SYS compatibility mode: the DOS driver's restricted command
//          set, CGA palette and its peculiar replies (ENQ answers "ANSI.SYS",
//          DA answers nothing).

package vt

// enterANSISys applies the DOS driver personality.
func (s *Session) enterANSISys() {
	s.palette.applyCGA()
	s.Level = LevelVT100
	s.S8C1T = false
	s.charsets = CharsetState{
		G:  [4]Charset{CharsetCP437, CharsetCP437, CharsetCP437, CharsetCP437},
		GL: 0,
		GR: 1,
	}
}

// ansiSysAllowsCSI keeps only the sequences the DOS driver implemented:
// cursor motion, position save/restore, erase, SGR and the wrap mode toggle.
// Prefixed parameters never reach the executor at this level.
func ansiSysAllowsCSI(final byte, params *Params) bool {
	if params.Private != 0 {
		return false
	}
	switch final {
	case 'A', 'B', 'C', 'D', 'H', 'f', 'J', 'K', 'm', 's', 'u', 'n':
		return true
	case 'h', 'l':
		// Only mode 7 (wrap) exists.
		return params.GetRaw(0) == 7
	}
	return false
}

// ansiSysAllowsSGR keeps the classic rendition set.
func ansiSysAllowsSGR(n int) bool {
	switch {
	case n >= 0 && n <= 8:
		return true
	case n >= 30 && n <= 37, n >= 40 && n <= 47:
		return true
	case n == 39 || n == 49:
		return true
	}
	return false
}

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec_cursor.go
// Summary: Cursor positioning commands and character-level edits on the
//          cursor row.

package vt

// moveColumnAbsolute implements CHA/HPA, honoring origin mode.
func (s *Session) moveColumnAbsolute(col int) {
	if s.Modes.Origin {
		col += s.scrollLeft()
		col = clampInt(col, s.scrollLeft(), s.scrollRight())
	} else {
		col = clampInt(col, 0, s.cols-1)
	}
	s.cursor.Col = col
	s.cursor.WrapPending = false
}

// moveRowAbsolute implements VPA.
func (s *Session) moveRowAbsolute(row int) {
	if s.Modes.Origin {
		row += s.scrollTop()
		row = clampInt(row, s.scrollTop(), s.scrollBottom())
	} else {
		row = clampInt(row, 0, s.rows-1)
	}
	s.cursor.Row = row
	s.cursor.WrapPending = false
}

// insertChars implements ICH inside the horizontal margins.
func (s *Session) insertChars(n int) {
	if !s.inHorizontalMargins() {
		return
	}
	right := s.scrollRight()
	if n > right-s.cursor.Col+1 {
		n = right - s.cursor.Col + 1
	}
	s.insertCells(s.cursor.Row, s.cursor.Col, n)
	s.cursor.WrapPending = false
}

// deleteChars implements DCH, pulling the rest of the row left.
func (s *Session) deleteChars(n int) {
	if !s.inHorizontalMargins() {
		return
	}
	s.queue.Flush()
	right := s.scrollRight()
	if n > right-s.cursor.Col+1 {
		n = right - s.cursor.Col + 1
	}
	row := s.row(s.cursor.Row)
	for c := s.cursor.Col; c <= right; c++ {
		if c+n <= right {
			row[c] = row[c+n]
		} else {
			row[c] = s.blank()
		}
	}
	s.MarkDirty(s.cursor.Row)
	s.cursor.WrapPending = false
}

// eraseChars implements ECH. Erasure ignores protection only for DECSED; ECH
// honors DECSCA protection.
func (s *Session) eraseChars(n int) {
	s.queue.Flush()
	row := s.row(s.cursor.Row)
	for c := s.cursor.Col; c < s.cursor.Col+n && c < s.cols; c++ {
		if row[c].Protected {
			continue
		}
		row[c] = s.blank()
	}
	s.MarkDirty(s.cursor.Row)
	s.cursor.WrapPending = false
}

// repeatLast implements REP for the preceding printable.
func (s *Session) repeatLast(n int) {
	if !s.hasPrinted {
		return
	}
	if n > s.cols*s.rows {
		n = s.cols * s.rows
	}
	for i := 0; i < n; i++ {
		s.Print(s.lastPrinted)
	}
}

// tabClear implements TBC.
func (s *Session) tabClear(mode int) {
	switch mode {
	case 0:
		s.clearTab(s.cursor.Col)
	case 3:
		s.clearAllTabs()
	}
}

// setCursorStyle implements DECSCUSR (0-6).
func (s *Session) setCursorStyle(style int) {
	if style < 0 || style > 6 {
		return
	}
	s.cursorStyle = style
	switch style {
	case 0, 1, 3, 5:
		s.Modes.CursorBlink = true
	default:
		s.Modes.CursorBlink = false
	}
}

// CursorStyle exposes the DECSCUSR selection for renderers.
func (s *Session) CursorStyle() int { return s.cursorStyle }

// setProtection implements DECSCA.
func (s *Session) setProtection(v int) {
	switch v {
	case 0, 2:
		s.pen.Protected = false
	case 1:
		s.pen.Protected = true
	}
}

// setAttrChangeExtent implements DECSACE.
func (s *Session) setAttrChangeExtent(v int) {
	switch v {
	case 0, 1:
		s.rectExtent = false
	case 2:
		s.rectExtent = true
	}
}

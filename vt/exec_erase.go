// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec_erase.go
// Summary: ED/EL and their selective variants. Selective erasure (DECSED,
//          DECSEL) skips cells protected by DECSCA; plain erasure clears
//          everything including protection flags.

package vt

// eraseCell wipes one cell; selective erasure leaves protected cells alone.
func (s *Session) eraseCell(row []Cell, c int, selective bool) {
	if selective && row[c].Protected {
		return
	}
	row[c] = s.blank()
}

// eraseLineFrom clears from (row, col) to the end of the line.
func (s *Session) eraseLineFrom(rowIdx, col int, selective bool) {
	s.queue.Flush()
	row := s.row(rowIdx)
	for c := col; c < s.cols; c++ {
		s.eraseCell(row, c, selective)
	}
	s.MarkDirty(rowIdx)
}

// eraseScreenFrom clears from (row, col) to the end of the screen.
func (s *Session) eraseScreenFrom(rowIdx, col int, selective bool) {
	s.eraseLineFrom(rowIdx, col, selective)
	for r := rowIdx + 1; r < s.rows; r++ {
		row := s.row(r)
		for c := 0; c < s.cols; c++ {
			s.eraseCell(row, c, selective)
		}
		s.MarkDirty(r)
	}
}

// eraseInLine implements EL / DECSEL.
func (s *Session) eraseInLine(mode int, selective bool) {
	s.queue.Flush()
	row := s.row(s.cursor.Row)
	switch mode {
	case 0:
		for c := s.cursor.Col; c < s.cols; c++ {
			s.eraseCell(row, c, selective)
		}
	case 1:
		for c := 0; c <= s.cursor.Col && c < s.cols; c++ {
			s.eraseCell(row, c, selective)
		}
	case 2:
		for c := 0; c < s.cols; c++ {
			s.eraseCell(row, c, selective)
		}
	}
	s.MarkDirty(s.cursor.Row)
	s.cursor.WrapPending = false
}

// eraseInDisplay implements ED / DECSED. Mode 3 additionally clears the
// scrollback.
func (s *Session) eraseInDisplay(mode int, selective bool) {
	s.queue.Flush()
	switch mode {
	case 0:
		s.eraseScreenFrom(s.cursor.Row, s.cursor.Col, selective)
	case 1:
		for r := 0; r < s.cursor.Row; r++ {
			row := s.row(r)
			for c := 0; c < s.cols; c++ {
				s.eraseCell(row, c, selective)
			}
			s.MarkDirty(r)
		}
		row := s.row(s.cursor.Row)
		for c := 0; c <= s.cursor.Col && c < s.cols; c++ {
			s.eraseCell(row, c, selective)
		}
		s.MarkDirty(s.cursor.Row)
	case 2:
		for r := 0; r < s.rows; r++ {
			row := s.row(r)
			for c := 0; c < s.cols; c++ {
				s.eraseCell(row, c, selective)
			}
		}
		if s.ansiSys {
			// The DOS driver homes the cursor on a full clear.
			s.cursor.Row, s.cursor.Col = 0, 0
		}
		s.MarkAllDirty()
	case 3:
		s.scrollback = nil
		for r := 0; r < s.rows; r++ {
			row := s.row(r)
			for c := 0; c < s.cols; c++ {
				s.eraseCell(row, c, selective)
			}
		}
		s.MarkAllDirty()
	}
	s.cursor.WrapPending = false
}

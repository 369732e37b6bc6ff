// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec_line.go
// Summary: Line and column insertion/deletion and explicit region scrolls.
//          All of these act only when the cursor is inside the scroll region
//          and refuse to destroy protected cells.

package vt

// lineRegion is the scroll region from the cursor row down.
func (s *Session) lineRegion() Rect {
	return Rect{
		Top:    s.cursor.Row,
		Left:   s.scrollLeft(),
		Bottom: s.scrollBottom(),
		Right:  s.scrollRight(),
	}
}

// insertLines implements IL.
func (s *Session) insertLines(n int) {
	if !s.inScrollRegion() {
		return
	}
	region := s.lineRegion()
	if s.regionHasProtected(region) {
		s.report(LevelInfo, SourceExecutor, "IL suppressed: region contains protected cells")
		return
	}
	s.queue.Push(GridOp{Kind: OpInsertLines, Region: region, Count: n})
	s.carriageReturnToMargin()
}

// deleteLines implements DL.
func (s *Session) deleteLines(n int) {
	if !s.inScrollRegion() {
		return
	}
	region := s.lineRegion()
	if s.regionHasProtected(region) {
		s.report(LevelInfo, SourceExecutor, "DL suppressed: region contains protected cells")
		return
	}
	s.queue.Push(GridOp{Kind: OpDeleteLines, Region: region, Count: n})
	s.carriageReturnToMargin()
}

// scrollUpLines implements SU over the full scroll region.
func (s *Session) scrollUpLines(n int) {
	s.scrollRegionUp(n)
}

// scrollDownLines implements SD.
func (s *Session) scrollDownLines(n int) {
	s.scrollRegionDown(n)
}

// scrollLeftCols implements SL: region content shifts left, blanks enter at
// the right margin.
func (s *Session) scrollLeftCols(n int) {
	s.shiftColumns(n)
}

// scrollRightCols implements SR.
func (s *Session) scrollRightCols(n int) {
	s.shiftColumns(-n)
}

// shiftColumns moves region content left (n > 0) or right (n < 0).
func (s *Session) shiftColumns(n int) {
	s.queue.Flush()
	top, bottom := s.scrollTop(), s.scrollBottom()
	left, right := s.scrollLeft(), s.scrollRight()
	width := right - left + 1
	m := n
	if m < 0 {
		m = -m
	}
	if m > width {
		m = width
	}
	for r := top; r <= bottom; r++ {
		row := s.row(r)
		if n > 0 {
			for c := left; c <= right; c++ {
				if c+m <= right {
					row[c] = row[c+m]
				} else {
					row[c] = s.blank()
				}
			}
		} else {
			for c := right; c >= left; c-- {
				if c-m >= left {
					row[c] = row[c-m]
				} else {
					row[c] = s.blank()
				}
			}
		}
		s.MarkDirty(r)
	}
}

// insertColumns implements DECIC at the cursor column.
func (s *Session) insertColumns(n int) {
	if !s.inScrollRegion() {
		return
	}
	s.queue.Flush()
	top, bottom := s.scrollTop(), s.scrollBottom()
	right := s.scrollRight()
	col := s.cursor.Col
	if n > right-col+1 {
		n = right - col + 1
	}
	for r := top; r <= bottom; r++ {
		row := s.row(r)
		for c := right; c >= col+n; c-- {
			row[c] = row[c-n]
		}
		for c := col; c < col+n; c++ {
			row[c] = s.blank()
		}
		s.MarkDirty(r)
	}
}

// deleteColumns implements DECDC at the cursor column.
func (s *Session) deleteColumns(n int) {
	if !s.inScrollRegion() {
		return
	}
	s.queue.Flush()
	top, bottom := s.scrollTop(), s.scrollBottom()
	right := s.scrollRight()
	col := s.cursor.Col
	if n > right-col+1 {
		n = right - col + 1
	}
	for r := top; r <= bottom; r++ {
		row := s.row(r)
		for c := col; c <= right; c++ {
			if c+n <= right {
				row[c] = row[c+n]
			} else {
				row[c] = s.blank()
			}
		}
		s.MarkDirty(r)
	}
}

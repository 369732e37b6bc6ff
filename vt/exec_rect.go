// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec_rect.go
// Summary: VT420 rectangular area commands: DECCRA, DECFRA, DECERA, DECSERA,
//          DECCARA, DECRARA and the DECRQCRA checksum report.

package vt

import "fmt"

// rectFromParams reads a Pt;Pl;Pb;Pr quad starting at index i, defaulting to
// the full screen and honoring origin mode.
func (s *Session) rectFromParams(params *Params, i int) Rect {
	top := params.Get(i, 1) - 1
	left := params.Get(i+1, 1) - 1
	bottom := params.Get(i+2, s.rows) - 1
	right := params.Get(i+3, s.cols) - 1
	if s.Modes.Origin {
		top += s.scrollTop()
		bottom += s.scrollTop()
		left += s.scrollLeft()
		right += s.scrollLeft()
	}
	return Rect{Top: top, Left: left, Bottom: bottom, Right: right}.Clamp(s.rows, s.cols)
}

// copyRect implements DECCRA. The destination page parameter is ignored;
// overlap is handled by the staged copy in the op application.
func (s *Session) copyRect(params *Params) {
	src := s.rectFromParams(params, 0)
	if src.Empty() {
		return
	}
	dstRow := params.Get(5, 1) - 1
	dstCol := params.Get(6, 1) - 1
	if s.Modes.Origin {
		dstRow += s.scrollTop()
		dstCol += s.scrollLeft()
	}
	s.queue.Push(GridOp{Kind: OpCopyRect, Src: src, Row: dstRow, Col: dstCol})
}

// fillRect implements DECFRA with the given fill character, skipping cells
// DECSCA protects.
func (s *Session) fillRect(params *Params) {
	ch := params.Get(0, 0)
	if ch < 32 || (ch > 126 && ch < 160) || ch > 255 {
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("DECFRA: fill character %d out of range", ch))
		return
	}
	dst := s.rectFromParams(params, 1)
	if dst.Empty() {
		return
	}
	fill := s.blank()
	fill.Rune = rune(ch)
	fill.Attr = s.pen.Attr
	s.queue.Flush()
	for r := dst.Top; r <= dst.Bottom; r++ {
		row := s.row(r)
		for c := dst.Left; c <= dst.Right; c++ {
			if !row[c].Protected {
				row[c] = fill
			}
		}
		s.MarkDirty(r)
	}
}

// eraseRect implements DECERA and, with selective set, DECSERA. Selective
// erasure here clears ONLY the erasable (unprotected) cells.
func (s *Session) eraseRect(params *Params, selective bool) {
	dst := s.rectFromParams(params, 0)
	if dst.Empty() {
		return
	}
	if !selective {
		s.queue.Push(GridOp{Kind: OpFillRect, Dst: dst, Fill: s.blank()})
		return
	}
	s.queue.Flush()
	for r := dst.Top; r <= dst.Bottom; r++ {
		row := s.row(r)
		for c := dst.Left; c <= dst.Right; c++ {
			if !row[c].Protected {
				row[c] = s.blank()
			}
		}
		s.MarkDirty(r)
	}
}

// changeAttrRect implements DECCARA (reverse=false) and DECRARA
// (reverse=true). The trailing parameters are SGR-style attribute selectors
// limited to bold, underline, blink and negative.
func (s *Session) changeAttrRect(params *Params, reverse bool) {
	dst := s.rectFromParams(params, 0)
	if dst.Empty() {
		return
	}
	var set, clear Attr
	all := true
	for i := 4; i < params.Len(); i++ {
		all = false
		switch params.GetRaw(i) {
		case 0:
			clear |= AttrBold | AttrUnderline | AttrBlinkSlow | AttrBlinkFast | AttrReverse
		case 1:
			set |= AttrBold
		case 4:
			set |= AttrUnderline
		case 5:
			set |= AttrBlinkFast | AttrBlinkBG
		case 6:
			set |= AttrBlinkSlow
		case 7:
			set |= AttrReverse
		case 22:
			clear |= AttrBold
		case 24:
			clear |= AttrUnderline
		case 25:
			clear |= AttrBlinkSlow | AttrBlinkFast | AttrBlinkBG
		case 27:
			clear |= AttrReverse
		}
	}
	if all {
		clear = AttrBold | AttrUnderline | AttrBlinkSlow | AttrBlinkFast | AttrReverse
	}
	for _, span := range s.attrSpans(dst) {
		if reverse {
			// DECRARA toggles the selected attributes.
			s.queue.Push(GridOp{Kind: OpSetAttrRect, Dst: span, Set: set | clear, Reverse: true})
		} else {
			s.queue.Push(GridOp{Kind: OpSetAttrRect, Dst: span, Set: set, Clear: clear})
		}
	}
}

// attrSpans expands the target area per DECSACE: rectangle extent yields the
// rect itself, stream extent runs from (top,left) to (bottom,right) across
// full rows in between.
func (s *Session) attrSpans(dst Rect) []Rect {
	if s.rectExtent || dst.Top == dst.Bottom {
		return []Rect{dst}
	}
	spans := []Rect{{Top: dst.Top, Left: dst.Left, Bottom: dst.Top, Right: s.cols - 1}}
	if dst.Bottom > dst.Top+1 {
		spans = append(spans, Rect{Top: dst.Top + 1, Left: 0, Bottom: dst.Bottom - 1, Right: s.cols - 1})
	}
	spans = append(spans, Rect{Top: dst.Bottom, Left: 0, Bottom: dst.Bottom, Right: dst.Right})
	return spans
}

// checksumRect implements DECRQCRA. The checksum is the negated 16-bit sum of
// each cell's character and attribute contribution, matching what DEC
// hardware reported for verification.
func (s *Session) checksumRect(params *Params) {
	id := params.GetRaw(0)
	// Parameter 1 is the page number; only page 1 exists.
	dst := s.rectFromParams(params, 2)
	s.queue.Flush()
	var sum uint16
	for r := dst.Top; r <= dst.Bottom; r++ {
		row := s.row(r)
		for c := dst.Left; c <= dst.Right; c++ {
			cell := row[c]
			ch := cell.Rune
			if ch == 0 {
				ch = ' '
			}
			v := uint16(ch & 0xFF)
			if cell.Attr&AttrBold != 0 {
				v += 0x80
			}
			if cell.Attr&AttrUnderline != 0 {
				v += 0x10
			}
			if cell.Attr&(AttrBlinkSlow|AttrBlinkFast) != 0 {
				v += 0x40
			}
			if cell.Attr&AttrReverse != 0 {
				v += 0x20
			}
			sum += v
		}
	}
	sum = -sum
	s.replyf("%s%d!~%04X%s", s.dcsIntro(), id, sum, s.st())
}

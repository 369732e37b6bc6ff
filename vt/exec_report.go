// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec_report.go
// Summary: Device attribute and status reports: DA1/DA2/DA3, DSR, DECXCPR,
//          DECREQTPARM, DECRQPSR and the XTWINOPS subset the core answers.

package vt

import (
	"fmt"
	"strings"
)

// Primary DA advertises the VT420 feature set: 132 columns, selective erase,
// user-defined keys, national replacement charsets, technical characters,
// ANSI color, rectangular editing.
func (s *Session) sendPrimaryDA() {
	if s.ansiSys {
		// ANSI.SYS never answers DA.
		return
	}
	switch {
	case s.Level <= LevelVT100:
		s.replyf("%s?1;2c", s.csi())
	case s.Level == LevelVT220:
		s.replyf("%s?62;1;2;6;9;15;22c", s.csi())
	case s.Level == LevelVT320:
		s.replyf("%s?63;1;2;6;9;15;22c", s.csi())
	default:
		s.replyf("%s?64;1;2;6;9;15;21;22;28c", s.csi())
	}
}

func (s *Session) deviceAttributes(params *Params) {
	switch params.Private {
	case 0, '?':
		if params.GetRaw(0) == 0 {
			s.sendPrimaryDA()
		}
	case '>':
		// Secondary DA: type 41 (VT420) with a fixed firmware revision.
		s.replyf("%s>41;10;0c", s.csi())
	case '=':
		// Tertiary DA: unit id report.
		s.replyf("%s!|00000000%s", s.dcsIntro(), s.st())
	}
}

func (s *Session) deviceStatusReport(params *Params) {
	private := params.Private == '?'
	switch params.GetRaw(0) {
	case 5:
		s.replyf("%s0n", s.csi())
	case 6:
		row := s.cursor.Row
		col := s.cursor.Col
		if s.Modes.Origin {
			row -= s.scrollTop()
			col -= s.scrollLeft()
		}
		if private {
			// DECXCPR includes the page.
			s.replyf("%s?%d;%d;1R", s.csi(), row+1, col+1)
		} else {
			s.replyf("%s%d;%dR", s.csi(), row+1, col+1)
		}
	case 15:
		s.replyf("%s?13n", s.csi()) // no printer
	case 25:
		s.replyf("%s?21n", s.csi()) // UDKs locked
	case 26:
		s.replyf("%s?27;1;0;0n", s.csi()) // North American keyboard
	case 75:
		s.replyf("%s?70n", s.csi()) // data integrity OK
	default:
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("Unhandled DSR %d", params.GetRaw(0)))
	}
}

// reportTerminalParams implements DECREQTPARM with fixed line settings.
func (s *Session) reportTerminalParams(params *Params) {
	sol := params.GetRaw(0)
	if sol > 1 {
		return
	}
	s.replyf("%s%d;1;1;128;128;1;0x", s.csi(), sol+2)
}

// presentationStateReport implements DECRQPSR: 1 requests the cursor
// information report, 2 the tab stop report.
func (s *Session) presentationStateReport(params *Params) {
	switch params.GetRaw(0) {
	case 1:
		s.sendCursorInformationReport()
	case 2:
		s.sendTabStopReport()
	default:
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("Unhandled DECRQPSR %d", params.GetRaw(0)))
	}
}

func (s *Session) sendCursorInformationReport() {
	var rend byte = 0x40
	if s.pen.Attr&AttrBold != 0 {
		rend |= 1
	}
	if s.pen.Attr&AttrUnderline != 0 {
		rend |= 2
	}
	if s.pen.Attr&AttrBlinkAny != 0 {
		rend |= 4
	}
	if s.pen.Attr&AttrReverse != 0 {
		rend |= 8
	}
	var attr byte = 0x40
	if s.pen.Protected {
		attr |= 1
	}
	var flags byte = 0x40
	if s.Modes.Origin {
		flags |= 1
	}
	if s.cursor.WrapPending {
		flags |= 8
	}
	s.replyf("%s1$u%d;%d;1;%c;%c;%c;%d;%d;%c;%s%s",
		s.dcsIntro(),
		s.cursor.Row+1, s.cursor.Col+1,
		rend, attr, flags,
		s.charsets.GL, s.charsets.GR,
		byte(0x40), "BBBB",
		s.st())
}

func (s *Session) sendTabStopReport() {
	var stops []string
	for c, set := range s.tabstops {
		if set {
			stops = append(stops, fmt.Sprintf("%d", c+1))
		}
	}
	s.replyf("%s2$u%s%s", s.dcsIntro(), strings.Join(stops, "/"), s.st())
}

// windowOps answers the XTWINOPS subset that makes sense for a cell-based
// core: resize, size reports and the title stack.
func (s *Session) windowOps(params *Params) {
	switch params.GetRaw(0) {
	case 8:
		rows := params.Get(1, s.rows)
		cols := params.Get(2, s.cols)
		if s.onResizeRequest != nil {
			s.onResizeRequest(rows, cols)
		} else {
			s.Resize(rows, cols)
		}
	case 14:
		// Pixel size assumes a nominal 8x16 cell.
		s.replyf("%s4;%d;%dt", s.csi(), s.rows*16, s.cols*8)
	case 18:
		s.replyf("%s8;%d;%dt", s.csi(), s.rows, s.cols)
	case 19:
		s.replyf("%s9;%d;%dt", s.csi(), s.rows, s.cols)
	case 20:
		s.replyf("\x1b]L%s\x1b\\", s.IconName)
	case 21:
		s.replyf("\x1b]l%s\x1b\\", s.Title)
	case 22:
		s.pushTitle(params.GetRaw(1))
	case 23:
		s.popTitle(params.GetRaw(1))
	default:
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("Unhandled window op %d", params.GetRaw(0)))
	}
}

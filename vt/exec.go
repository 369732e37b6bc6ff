// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec.go
// Summary: CSI dispatch. Routes a finished control sequence to the session
//          method that implements it.
// Usage: Called by the parser on CSI final bytes.

package vt

import "fmt"

// SetResizeRequestHandler routes CSI 8 t style resize requests through the
// given callback instead of resizing the session directly. The terminal layer
// uses this to push the request through its pane tree.
func (s *Session) SetResizeRequestHandler(fn func(rows, cols int)) {
	s.onResizeRequest = fn
}

func (s *Session) executeCSI(final byte, params *Params) {
	if s.ansiSys && !ansiSysAllowsCSI(final, params) {
		s.report(LevelDebug, SourceExecutor, fmt.Sprintf("ANSI.SYS: dropped CSI %c", final))
		return
	}

	inter := byte(0)
	if len(params.Inter) > 0 {
		inter = params.Inter[len(params.Inter)-1]
	}

	switch inter {
	case 0:
		s.executePlainCSI(final, params)
	case ' ':
		s.executeSpaceCSI(final, params)
	case '$':
		s.executeDollarCSI(final, params)
	case '\'':
		s.executeQuoteCSI(final, params)
	case '"':
		s.executeDQuoteCSI(final, params)
	case '!':
		if final == 'p' {
			s.SoftReset()
			return
		}
		s.unhandledCSI(final, params)
	case '*':
		s.executeStarCSI(final, params)
	default:
		s.unhandledCSI(final, params)
	}
}

func (s *Session) executePlainCSI(final byte, params *Params) {
	switch final {
	case '@':
		s.insertChars(params.Get(0, 1))
	case 'A':
		s.moveCursorRelative(-params.Get(0, 1), 0)
	case 'B':
		s.moveCursorRelative(params.Get(0, 1), 0)
	case 'C':
		s.moveCursorRelative(0, params.Get(0, 1))
	case 'D':
		s.moveCursorRelative(0, -params.Get(0, 1))
	case 'E':
		s.moveCursorRelative(params.Get(0, 1), 0)
		s.carriageReturnToMargin()
	case 'F':
		s.moveCursorRelative(-params.Get(0, 1), 0)
		s.carriageReturnToMargin()
	case 'G':
		s.moveColumnAbsolute(params.Get(0, 1) - 1)
	case 'H', 'f':
		s.moveCursorAbsolute(params.Get(0, 1)-1, params.Get(1, 1)-1)
	case 'I':
		for i := params.Get(0, 1); i > 0; i-- {
			s.Tab()
		}
	case 'J':
		s.eraseInDisplay(params.GetRaw(0), params.Private == '?')
	case 'K':
		s.eraseInLine(params.GetRaw(0), params.Private == '?')
	case 'L':
		s.insertLines(params.Get(0, 1))
	case 'M':
		s.deleteLines(params.Get(0, 1))
	case 'P':
		s.deleteChars(params.Get(0, 1))
	case 'S':
		s.scrollUpLines(params.Get(0, 1))
	case 'T':
		s.scrollDownLines(params.Get(0, 1))
	case 'X':
		s.eraseChars(params.Get(0, 1))
	case 'Z':
		for i := params.Get(0, 1); i > 0; i-- {
			s.BackTab()
		}
	case '`':
		s.moveColumnAbsolute(params.Get(0, 1) - 1)
	case 'a':
		s.moveCursorRelative(0, params.Get(0, 1))
	case 'b':
		s.repeatLast(params.Get(0, 1))
	case 'c':
		s.deviceAttributes(params)
	case 'd':
		s.moveRowAbsolute(params.Get(0, 1) - 1)
	case 'e':
		s.moveCursorRelative(params.Get(0, 1), 0)
	case 'g':
		s.tabClear(params.GetRaw(0))
	case 'h':
		s.setModes(params, true)
	case 'i':
		// Media copy has no printer attached.
	case 'l':
		s.setModes(params, false)
	case 'm':
		if params.Private == '>' {
			return // XTMODKEYS, not implemented
		}
		s.applySGR(params)
	case 'n':
		s.deviceStatusReport(params)
	case 'r':
		if params.Private == '?' {
			return // XTRESTORE, not implemented
		}
		top := params.Get(0, 1) - 1
		bottom := params.Get(1, s.rows) - 1
		s.setVerticalMargins(top, bottom)
	case 's':
		if params.Private == '?' {
			return // XTSAVE, not implemented
		}
		if s.Modes.LeftRight {
			left := params.Get(0, 1) - 1
			right := params.Get(1, s.cols) - 1
			s.setHorizontalMargins(left, right)
			return
		}
		s.SaveCursor()
	case 't':
		s.windowOps(params)
	case 'u':
		s.RestoreCursor()
	case 'x':
		s.reportTerminalParams(params)
	default:
		s.unhandledCSI(final, params)
	}
}

func (s *Session) executeSpaceCSI(final byte, params *Params) {
	switch final {
	case '@': // SL
		s.scrollLeftCols(params.Get(0, 1))
	case 'A': // SR
		s.scrollRightCols(params.Get(0, 1))
	case 'q':
		s.setCursorStyle(params.GetRaw(0))
	default:
		s.unhandledCSI(final, params)
	}
}

func (s *Session) executeDollarCSI(final byte, params *Params) {
	switch final {
	case 'p':
		s.requestMode(params, params.Private == '?')
	case 'r':
		s.changeAttrRect(params, false)
	case 't':
		s.changeAttrRect(params, true)
	case 'v':
		s.copyRect(params)
	case 'x':
		s.fillRect(params)
	case 'z':
		s.eraseRect(params, false)
	case '{':
		s.eraseRect(params, true)
	case 'w':
		s.presentationStateReport(params)
	default:
		s.unhandledCSI(final, params)
	}
}

func (s *Session) executeQuoteCSI(final byte, params *Params) {
	switch final {
	case '}':
		s.insertColumns(params.Get(0, 1))
	case '~':
		s.deleteColumns(params.Get(0, 1))
	default:
		s.unhandledCSI(final, params)
	}
}

func (s *Session) executeDQuoteCSI(final byte, params *Params) {
	switch final {
	case 'q':
		s.setProtection(params.GetRaw(0))
	case 'p':
		s.setConformanceLevel(params)
	default:
		s.unhandledCSI(final, params)
	}
}

func (s *Session) executeStarCSI(final byte, params *Params) {
	switch final {
	case 'x':
		s.setAttrChangeExtent(params.GetRaw(0))
	case 'y':
		s.checksumRect(params)
	default:
		s.unhandledCSI(final, params)
	}
}

func (s *Session) unhandledCSI(final byte, params *Params) {
	pfx := ""
	if params.Private != 0 {
		pfx = string(params.Private)
	}
	s.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled CSI %s%s%c", pfx, string(params.Inter), final))
}

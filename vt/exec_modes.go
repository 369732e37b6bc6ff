// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/exec_modes.go
// Summary: SM/RM, DECSET/DECRST, DECRQM and DECSCL.

package vt

import "fmt"

func (s *Session) setModes(params *Params, set bool) {
	private := params.Private == '?'
	for i := 0; i < params.Len(); i++ {
		mode := params.GetRaw(i)
		if private {
			s.setPrivateMode(mode, set)
		} else {
			s.setANSIMode(mode, set)
		}
	}
}

func (s *Session) setANSIMode(mode int, set bool) {
	switch mode {
	case 4:
		s.Modes.Insert = set
	case 12:
		s.Modes.SendReceive = set
	case 20:
		s.Modes.NewLine = set
	case 2:
		// KAM locks the keyboard on real hardware; nothing to lock here.
	case 7:
		if s.ansiSys {
			s.Modes.AutoWrap = set
		}
	default:
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("Unhandled ANSI mode %d", mode))
	}
}

func (s *Session) setPrivateMode(mode int, set bool) {
	switch mode {
	case 1:
		s.Modes.AppCursor = set
	case 2:
		if !set {
			// DECANM reset enters VT52 emulation.
			if s.vt52Hook != nil {
				s.vt52Hook()
			}
		}
	case 3:
		s.setColumnMode(set)
	case 5:
		if s.Modes.ReverseVideo != set {
			s.Modes.ReverseVideo = set
			s.MarkAllDirty()
		}
	case 6:
		s.Modes.Origin = set
		s.moveCursorAbsolute(0, 0)
	case 7:
		s.Modes.AutoWrap = set
		if !set {
			s.cursor.WrapPending = false
		}
	case 8:
		// Auto-repeat is a keyboard property.
	case 12:
		s.Modes.CursorBlink = set
	case 25:
		s.Modes.CursorVisible = set
	case 38:
		if s.tekHook != nil {
			s.tekHook(set)
		}
	case 40:
		s.Modes.Allow132 = set
	case 45:
		s.Modes.ReverseWrap = set
	case 69:
		s.Modes.LeftRight = set
		if !set {
			s.marginLeft, s.marginRight = 0, s.cols-1
		}
	case 95:
		s.Modes.NoClearOnCol = set
	case 1000:
		s.setMouseMode(MouseModeNormal, set)
	case 1002:
		s.setMouseMode(MouseModeButton, set)
	case 1003:
		s.setMouseMode(MouseModeAny, set)
	case 1004:
		s.Modes.FocusEvents = set
	case 1005:
		s.setMouseEncoding(MouseEncUTF8, set)
	case 1006:
		s.setMouseEncoding(MouseEncSGR, set)
	case 1047:
		if set {
			s.EnterAltScreen(true, false)
		} else {
			s.ExitAltScreen(false)
		}
	case 1048:
		if set {
			s.SaveCursor()
		} else {
			s.RestoreCursor()
		}
	case 1049:
		if set {
			s.EnterAltScreen(true, true)
		} else {
			s.ExitAltScreen(true)
		}
	case 2004:
		s.Modes.BracketPaste = set
	default:
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("Unhandled DEC private mode %d", mode))
	}
}

// setColumnMode implements DECCOLM: switch between 80 and 132 columns,
// clearing the screen and homing unless DECNCSM is set. Ignored unless mode
// 40 allows it.
func (s *Session) setColumnMode(wide bool) {
	if !s.Modes.Allow132 {
		return
	}
	s.Modes.Column132 = wide
	cols := 80
	if wide {
		cols = 132
	}
	s.Resize(s.rows, cols)
	s.marginTop, s.marginBottom = 0, s.rows-1
	s.marginLeft, s.marginRight = 0, s.cols-1
	if !s.Modes.NoClearOnCol {
		s.eraseInDisplay(2, false)
		s.moveCursorAbsolute(0, 0)
	}
}

// modeState answers DECRQM: 1 set, 2 reset, 3 permanently set, 4 permanently
// reset, 0 unrecognized.
func (s *Session) privateModeState(mode int) int {
	boolState := func(v bool) int {
		if v {
			return 1
		}
		return 2
	}
	switch mode {
	case 1:
		return boolState(s.Modes.AppCursor)
	case 2:
		return 1 // DECANM: currently ANSI
	case 3:
		return boolState(s.Modes.Column132)
	case 5:
		return boolState(s.Modes.ReverseVideo)
	case 6:
		return boolState(s.Modes.Origin)
	case 7:
		return boolState(s.Modes.AutoWrap)
	case 12:
		return boolState(s.Modes.CursorBlink)
	case 25:
		return boolState(s.Modes.CursorVisible)
	case 40:
		return boolState(s.Modes.Allow132)
	case 45:
		return boolState(s.Modes.ReverseWrap)
	case 69:
		return boolState(s.Modes.LeftRight)
	case 95:
		return boolState(s.Modes.NoClearOnCol)
	case 1000:
		return boolState(s.Modes.MouseMode == MouseModeNormal)
	case 1002:
		return boolState(s.Modes.MouseMode == MouseModeButton)
	case 1003:
		return boolState(s.Modes.MouseMode == MouseModeAny)
	case 1004:
		return boolState(s.Modes.FocusEvents)
	case 1006:
		return boolState(s.Modes.MouseEnc == MouseEncSGR)
	case 1047, 1049:
		return boolState(s.Modes.AltScreen)
	case 2004:
		return boolState(s.Modes.BracketPaste)
	}
	return 0
}

func (s *Session) ansiModeState(mode int) int {
	switch mode {
	case 4:
		if s.Modes.Insert {
			return 1
		}
		return 2
	case 20:
		if s.Modes.NewLine {
			return 1
		}
		return 2
	}
	return 0
}

// requestMode implements DECRQM for both mode spaces.
func (s *Session) requestMode(params *Params, private bool) {
	mode := params.GetRaw(0)
	if private {
		s.replyf("%s?%d;%d$y", s.csi(), mode, s.privateModeState(mode))
		return
	}
	s.replyf("%s%d;%d$y", s.csi(), mode, s.ansiModeState(mode))
}

// setConformanceLevel implements DECSCL.
func (s *Session) setConformanceLevel(params *Params) {
	level := params.GetRaw(0)
	switch {
	case level >= 61 && level <= 64:
		s.Level = ConformanceLevel(level - 60)
	default:
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("DECSCL: unknown level %d", level))
		return
	}
	if s.Level >= LevelVT220 {
		// Second parameter: 0/2 = 8-bit controls, 1 = 7-bit.
		s.S8C1T = params.GetRaw(1) != 1
	} else {
		s.S8C1T = false
	}
	s.SoftReset()
}

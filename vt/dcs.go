// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/dcs.go
// Summary: DCS dispatch: DECRQSS, DECUDK, DECDLD soft fonts, Sixel and ReGIS
//          payload routing, and the gateway escape hatch.

package vt

import "fmt"

func (p *Parser) dispatchDCS() {
	s := p.session
	inter := byte(0)
	if len(p.dcsInters) > 0 {
		inter = p.dcsInters[len(p.dcsInters)-1]
	}

	switch {
	case p.dcsFinal == 'G' && len(p.dcsBuf) >= 4 && string(p.dcsBuf[:4]) == "ATE;":
		if p.OnGateway != nil {
			payload := append([]byte("GATE;"), p.dcsBuf[4:]...)
			if p.OnGateway(payload) {
				return
			}
		}
		p.report(LevelWarning, SourceGateway, "Gateway string with no handler installed")
	case p.dcsFinal == 'q' && inter == '$':
		s.requestStatusString(string(p.dcsBuf))
	case p.dcsFinal == 'q':
		s.handleSixel(&p.dcsParams, p.dcsBuf)
	case p.dcsFinal == 'p':
		s.handleRegis(&p.dcsParams, p.dcsBuf)
	case p.dcsFinal == '{':
		s.loadSoftFont(&p.dcsParams, p.dcsBuf)
	case p.dcsFinal == '|':
		s.defineUDK(&p.dcsParams, p.dcsBuf)
	case p.dcsFinal == '+' || (p.dcsFinal == 'q' && inter == '+'):
		// XTGETTCAP, not supported.
		p.report(LevelDebug, SourceParser, "Ignored termcap query")
	default:
		p.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled DCS final %c", p.dcsFinal))
	}
}

// requestStatusString implements DECRQSS. Replies use the DCS 1$r (valid) or
// DCS 0$r (invalid) framing.
func (s *Session) requestStatusString(what string) {
	valid := func(body string) {
		s.replyf("%s1$r%s%s", s.dcsIntro(), body, s.st())
	}
	switch what {
	case "m":
		valid(s.pen.sgrString() + "m")
	case "r":
		valid(fmt.Sprintf("%d;%dr", s.marginTop+1, s.marginBottom+1))
	case "s":
		valid(fmt.Sprintf("%d;%ds", s.scrollLeft()+1, s.scrollRight()+1))
	case "\"q":
		v := 0
		if s.pen.Protected {
			v = 1
		}
		valid(fmt.Sprintf("%d\"q", v))
	case "\"p":
		valid(fmt.Sprintf("%d;%d\"p", int(s.Level)+60, boolTo(s.S8C1T, 2, 1)))
	case " q":
		valid(fmt.Sprintf("%d q", s.cursorStyle))
	default:
		s.replyf("%s0$r%s", s.dcsIntro(), s.st())
	}
}

func boolTo(v bool, t, f int) int {
	if v {
		return t
	}
	return f
}

// sgrString rebuilds the SGR parameter list that reproduces the pen.
func (p Pen) sgrString() string {
	out := "0"
	add := func(s string) { out += ";" + s }
	if p.Attr&AttrBold != 0 {
		add("1")
	}
	if p.Attr&AttrFaint != 0 {
		add("2")
	}
	if p.Attr&AttrItalic != 0 {
		add("3")
	}
	if p.Attr&AttrUnderline != 0 {
		add("4")
	}
	if p.Attr&AttrBlinkFast != 0 {
		add("5")
	}
	if p.Attr&AttrBlinkSlow != 0 {
		add("6")
	}
	if p.Attr&AttrReverse != 0 {
		add("7")
	}
	if p.Attr&AttrConceal != 0 {
		add("8")
	}
	if p.Attr&AttrStrike != 0 {
		add("9")
	}
	if p.Attr&AttrDoubleUnderline != 0 {
		add("21")
	}
	if p.Attr&AttrFramed != 0 {
		add("51")
	}
	if p.Attr&AttrEncircled != 0 {
		add("52")
	}
	if p.Attr&AttrOverline != 0 {
		add("53")
	}
	if p.Attr&AttrSuperscript != 0 {
		add("73")
	}
	if p.Attr&AttrSubscript != 0 {
		add("74")
	}
	switch p.FG.Mode {
	case ColorModeIndexed:
		if p.FG.Index < 8 {
			add(fmt.Sprintf("%d", 30+p.FG.Index))
		} else if p.FG.Index < 16 {
			add(fmt.Sprintf("%d", 90+p.FG.Index-8))
		} else {
			add(fmt.Sprintf("38:5:%d", p.FG.Index))
		}
	case ColorModeRGB:
		add(fmt.Sprintf("38:2:%d:%d:%d", p.FG.R, p.FG.G, p.FG.B))
	}
	switch p.BG.Mode {
	case ColorModeIndexed:
		if p.BG.Index < 8 {
			add(fmt.Sprintf("%d", 40+p.BG.Index))
		} else if p.BG.Index < 16 {
			add(fmt.Sprintf("%d", 100+p.BG.Index-8))
		} else {
			add(fmt.Sprintf("48:5:%d", p.BG.Index))
		}
	case ColorModeRGB:
		add(fmt.Sprintf("48:2:%d:%d:%d", p.BG.R, p.BG.G, p.BG.B))
	}
	switch p.UL.Mode {
	case ColorModeIndexed:
		add(fmt.Sprintf("58:5:%d", p.UL.Index))
	case ColorModeRGB:
		add(fmt.Sprintf("58:2:%d:%d:%d", p.UL.R, p.UL.G, p.UL.B))
	}
	return out
}

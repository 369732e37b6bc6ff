// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/parser.go
// Summary: Escape-sequence state machine covering C0/C1, CSI, DCS, OSC,
//          APC/SOS/PM strings, nF sequences and VT52 mode.
// Usage: Feed host output through Parse; the parser drives its Session.

package vt

import "fmt"

type parseState int

const (
	stateGround parseState = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateDCSEntry
	stateDCSParam
	stateDCSIntermediate
	stateDCSPassthrough
	stateDCSIgnore
	stateOSCString
	stateAPCString
	stateSOSPMString
	stateVT52Escape
	stateVT52Row
	stateVT52Col
)

// String-type buffers are capped so a runaway DCS or OSC cannot grow without
// bound. Graphics payloads get the large cap.
const (
	maxOSCLen    = 4096
	maxDCSLen    = 64 << 20
	maxAPCLen    = 64 << 20
	maxEscInters = 2
)

// Parser turns a byte stream into session mutations.
type Parser struct {
	session *Session
	state   parseState

	params Params
	inters []byte

	oscBuf  []byte
	dcsBuf  []byte
	apcBuf  []byte
	strSkip bool

	dcsFinal  byte
	dcsInters []byte
	dcsParams Params

	utf8 utf8Decoder

	vt52      bool
	vt52Saved ConformanceLevel
	vt52Row   int

	tek *TekIngester

	// OnGateway receives the full payload of a DCS GATE string and reports
	// whether it was consumed. The terminal layer installs this.
	OnGateway func(payload []byte) bool

	// OnTitle fires when OSC 0/1/2 changes the title or icon name.
	OnTitle func()

	report Reporter
}

// NewParser binds a parser to its session.
func NewParser(s *Session) *Parser {
	p := &Parser{
		session: s,
		report:  s.report,
	}
	s.vt52Hook = p.EnterVT52
	s.tekHook = func(enable bool) {
		if enable {
			if p.tek == nil {
				p.tek = NewTekIngester(s)
			}
			p.tek.Enter()
		} else if p.tek != nil {
			p.tek.Exit()
		}
	}
	return p
}

// Session returns the driven session.
func (p *Parser) Session() *Session { return p.session }

// Parse consumes a chunk of host output.
func (p *Parser) Parse(data []byte) {
	for i := 0; i < len(data); i++ {
		p.step(data[i])
	}
}

func (p *Parser) step(b byte) {
	// Tek mode swallows everything until its exit sequence.
	if p.tek != nil && p.tek.Active() {
		if p.tek.Feed(b) {
			p.session.MarkAllDirty()
		}
		return
	}

	if p.vt52 {
		p.stepVT52(b)
		return
	}

	// CAN and SUB abort any sequence from any state.
	if b == 0x18 || b == 0x1A {
		if p.state != stateGround {
			p.toGround()
		}
		if b == 0x1A {
			p.session.Print(0xFFFD)
		}
		return
	}

	switch p.state {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateEscapeIntermediate:
		p.stepEscapeIntermediate(b)
	case stateCSIEntry, stateCSIParam, stateCSIIntermediate:
		p.stepCSI(b)
	case stateCSIIgnore:
		if b >= 0x40 && b <= 0x7E {
			p.toGround()
		} else if b < 0x20 {
			p.execC0(b)
		}
	case stateDCSEntry, stateDCSParam, stateDCSIntermediate:
		p.stepDCSHeader(b)
	case stateDCSPassthrough:
		p.stepDCSPassthrough(b)
	case stateDCSIgnore:
		if b == 0x1B {
			p.state = stateEscape
			p.resetSeq()
		} else if b == 0x9C {
			p.toGround()
		}
	case stateOSCString:
		p.stepOSC(b)
	case stateAPCString:
		p.stepAPC(b)
	case stateSOSPMString:
		p.stepSOSPM(b)
	}
}

func (p *Parser) toGround() {
	p.state = stateGround
	p.resetSeq()
}

func (p *Parser) resetSeq() {
	p.params.Reset()
	p.inters = p.inters[:0]
	p.oscBuf = p.oscBuf[:0]
	p.dcsBuf = p.dcsBuf[:0]
	p.apcBuf = p.apcBuf[:0]
	p.strSkip = false
}

// --- ground ---

func (p *Parser) stepGround(b byte) {
	if b < 0x20 || b == 0x7F {
		p.execC0(b)
		return
	}
	if b >= 0x80 && b <= 0x9F && !p.session.charsets.UsesUTF8() {
		p.execC1(b)
		return
	}
	if p.session.charsets.UsesUTF8() {
		r, ok, replay := p.utf8.Feed(b)
		if !ok {
			return
		}
		if r < 0x80 {
			p.printTranslated(byte(r))
		} else {
			p.session.Print(r)
		}
		if replay {
			p.step(b)
		}
		return
	}
	p.printTranslated(b)
}

// printTranslated routes a single byte through the GL/GR tables.
func (p *Parser) printTranslated(b byte) {
	p.session.Print(p.session.charsets.Translate(b))
}

// --- C0 / C1 ---

func (p *Parser) execC0(b byte) {
	s := p.session
	switch b {
	case 0x00: // NUL, ignored
	case 0x05: // ENQ
		if s.ansiSys {
			s.reply([]byte("ANSI.SYS"))
		} else {
			s.reply([]byte(s.answerback))
		}
	case 0x07: // BEL
		s.report(LevelDebug, SourceExecutor, "BEL")
	case 0x08:
		s.Backspace()
	case 0x09:
		s.Tab()
	case 0x0A, 0x0B, 0x0C:
		s.LineFeed()
	case 0x0D:
		s.CarriageReturn()
	case 0x0E: // SO: GL <- G1
		s.charsets.GL = 1
	case 0x0F: // SI: GL <- G0
		s.charsets.GL = 0
	case 0x11: // XON
	case 0x13: // XOFF
	case 0x1B:
		p.state = stateEscape
		p.resetSeq()
	case 0x7F: // DEL, ignored
	default:
		p.report(LevelDebug, SourceParser, fmt.Sprintf("Unhandled C0 control 0x%02X", b))
	}
}

// execC1 maps an 8-bit C1 control onto its escape equivalent.
func (p *Parser) execC1(b byte) {
	s := p.session
	switch b {
	case 0x84: // IND
		s.Index()
	case 0x85: // NEL
		s.Index()
		s.carriageReturnToMargin()
	case 0x88: // HTS
		s.setTab(s.cursor.Col)
	case 0x8D: // RI
		s.ReverseIndex()
	case 0x8E: // SS2
		s.charsets.SS = 2
	case 0x8F: // SS3
		s.charsets.SS = 3
	case 0x90: // DCS
		p.state = stateDCSEntry
		p.resetSeq()
		p.dcsParams.Reset()
		p.dcsInters = p.dcsInters[:0]
	case 0x98: // SOS
		p.state = stateSOSPMString
		p.resetSeq()
	case 0x9B: // CSI
		p.state = stateCSIEntry
		p.resetSeq()
	case 0x9C: // ST, stray
	case 0x9D: // OSC
		p.state = stateOSCString
		p.resetSeq()
	case 0x9E: // PM
		p.state = stateSOSPMString
		p.resetSeq()
	case 0x9F: // APC
		p.state = stateAPCString
		p.resetSeq()
	default:
		p.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled C1 control 0x%02X", b))
	}
}

// --- escape ---

func (p *Parser) stepEscape(b byte) {
	s := p.session
	if b < 0x20 {
		p.execC0(b)
		return
	}
	if b >= 0x20 && b <= 0x2F {
		p.inters = append(p.inters, b)
		p.state = stateEscapeIntermediate
		return
	}
	switch b {
	case '[':
		p.state = stateCSIEntry
	case 'P':
		p.state = stateDCSEntry
		p.dcsParams.Reset()
		p.dcsInters = p.dcsInters[:0]
	case ']':
		p.state = stateOSCString
	case '_':
		p.state = stateAPCString
	case 'X', '^':
		p.state = stateSOSPMString
	case 'D':
		s.Index()
		p.toGround()
	case 'E':
		s.Index()
		s.carriageReturnToMargin()
		p.toGround()
	case 'H':
		s.setTab(s.cursor.Col)
		p.toGround()
	case 'M':
		s.ReverseIndex()
		p.toGround()
	case 'N':
		s.charsets.SS = 2
		p.toGround()
	case 'O':
		s.charsets.SS = 3
		p.toGround()
	case 'Z': // DECID
		p.session.sendPrimaryDA()
		p.toGround()
	case '6': // DECBI
		if s.cursor.Col == s.scrollLeft() {
			s.scrollRightCols(1)
		} else {
			s.moveCursorRelative(0, -1)
		}
		p.toGround()
	case '7':
		s.SaveCursor()
		p.toGround()
	case '8':
		s.RestoreCursor()
		p.toGround()
	case '9': // DECFI
		if s.cursor.Col == s.scrollRight() {
			s.scrollLeftCols(1)
		} else {
			s.moveCursorRelative(0, 1)
		}
		p.toGround()
	case '=':
		s.Modes.AppKeypad = true
		p.toGround()
	case '>':
		s.Modes.AppKeypad = false
		p.toGround()
	case 'c':
		s.HardReset()
		p.toGround()
	case '\\': // ST, stray
		p.toGround()
	case 'l', 'm': // memory lock/unlock, ignored
		p.toGround()
	default:
		p.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled ESC %c", b))
		p.toGround()
	}
}

func (p *Parser) stepEscapeIntermediate(b byte) {
	if b < 0x20 {
		p.execC0(b)
		return
	}
	if b >= 0x20 && b <= 0x2F {
		if len(p.inters) < maxEscInters {
			p.inters = append(p.inters, b)
		}
		return
	}
	p.dispatchEsc(b)
	p.toGround()
}

// dispatchEsc handles nF sequences that carried intermediates.
func (p *Parser) dispatchEsc(final byte) {
	s := p.session
	if len(p.inters) == 0 {
		return
	}
	switch p.inters[0] {
	case '(', ')', '*', '+', '-', '.', '/':
		slot := charsetSlot(p.inters[0])
		if cs, ok := designCharset(final); ok {
			s.charsets.G[slot] = cs
		} else {
			p.report(LevelWarning, SourceParser, fmt.Sprintf("Unknown charset designator ESC %c %c", p.inters[0], final))
		}
	case '#':
		switch final {
		case '3', '4', '5', '6':
			// Double-height/width line attributes render as plain lines.
			p.report(LevelDebug, SourceParser, fmt.Sprintf("Line attribute ESC # %c treated as single width", final))
		case '8':
			s.AlignmentFill()
		default:
			p.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled ESC # %c", final))
		}
	case ' ':
		switch final {
		case 'F':
			s.S8C1T = false
		case 'G':
			if s.Level >= LevelVT220 {
				s.S8C1T = true
			}
		default:
			p.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled ESC SP %c", final))
		}
	case '%':
		switch final {
		case 'G':
			s.charsets.G[s.charsets.GL] = CharsetUTF8
		case '@':
			s.charsets.G[s.charsets.GL] = CharsetASCII
		}
	default:
		p.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled ESC %s %c", string(p.inters), final))
	}
}

func charsetSlot(inter byte) int {
	switch inter {
	case '(':
		return 0
	case ')', '-':
		return 1
	case '*', '.':
		return 2
	case '+', '/':
		return 3
	}
	return 0
}

// --- CSI ---

func (p *Parser) stepCSI(b byte) {
	switch {
	case b < 0x20:
		p.execC0(b)
	case b >= 0x30 && b <= 0x39:
		if p.state == stateCSIIntermediate {
			p.state = stateCSIIgnore
			return
		}
		p.params.Digit(b)
		p.state = stateCSIParam
	case b == ';' || b == ':':
		if p.state == stateCSIIntermediate {
			p.state = stateCSIIgnore
			return
		}
		p.params.Separator(b)
		p.state = stateCSIParam
	case b == '?' || b == '>' || b == '=' || b == '<':
		if p.state != stateCSIEntry {
			p.state = stateCSIIgnore
			return
		}
		p.params.Private = b
		p.state = stateCSIParam
	case b >= 0x20 && b <= 0x2F:
		p.params.Inter = append(p.params.Inter, b)
		p.state = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7E:
		p.params.Finish()
		p.session.executeCSI(b, &p.params)
		p.toGround()
	default:
		p.state = stateCSIIgnore
	}
}

// --- DCS ---

func (p *Parser) stepDCSHeader(b byte) {
	switch {
	case b >= 0x30 && b <= 0x39:
		p.dcsParams.Digit(b)
		p.state = stateDCSParam
	case b == ';' || b == ':':
		p.dcsParams.Separator(b)
		p.state = stateDCSParam
	case b == '?' || b == '>' || b == '=':
		if p.state != stateDCSEntry {
			p.state = stateDCSIgnore
			return
		}
		p.dcsParams.Private = b
		p.state = stateDCSParam
	case b >= 0x20 && b <= 0x2F:
		p.dcsInters = append(p.dcsInters, b)
		p.state = stateDCSIntermediate
	case b >= 0x40 && b <= 0x7E:
		p.dcsParams.Finish()
		p.dcsFinal = b
		p.dcsBuf = p.dcsBuf[:0]
		p.state = stateDCSPassthrough
	case b < 0x20:
		// C0 inside a DCS header is swallowed.
	default:
		p.state = stateDCSIgnore
	}
}

func (p *Parser) stepDCSPassthrough(b byte) {
	if b == 0x1B {
		p.strSkip = true
		return
	}
	if p.strSkip {
		p.strSkip = false
		if b == '\\' {
			p.dispatchDCS()
			p.toGround()
			return
		}
		// ESC that did not begin ST aborts the string and re-enters escape.
		p.dispatchDCS()
		p.state = stateEscape
		p.resetSeq()
		p.stepEscape(b)
		return
	}
	if b == 0x9C {
		p.dispatchDCS()
		p.toGround()
		return
	}
	if len(p.dcsBuf) < maxDCSLen {
		p.dcsBuf = append(p.dcsBuf, b)
	} else if len(p.dcsBuf) == maxDCSLen {
		p.report(LevelError, SourceParser, "DCS payload exceeds cap, truncating")
		p.dcsBuf = append(p.dcsBuf, 0) // poison so the cap message fires once
	}
}

// --- OSC ---

func (p *Parser) stepOSC(b byte) {
	if b == 0x07 || b == 0x9C {
		p.session.executeOSC(p.oscBuf)
		p.notifyTitle()
		p.toGround()
		return
	}
	if b == 0x1B {
		p.strSkip = true
		return
	}
	if p.strSkip {
		p.strSkip = false
		if b == '\\' {
			p.session.executeOSC(p.oscBuf)
			p.notifyTitle()
			p.toGround()
			return
		}
		p.state = stateEscape
		p.resetSeq()
		p.stepEscape(b)
		return
	}
	if len(p.oscBuf) < maxOSCLen {
		p.oscBuf = append(p.oscBuf, b)
	}
}

func (p *Parser) notifyTitle() {
	if p.OnTitle != nil {
		p.OnTitle()
	}
}

// --- APC / SOS / PM ---

func (p *Parser) stepAPC(b byte) {
	if b == 0x1B {
		p.strSkip = true
		return
	}
	if p.strSkip {
		p.strSkip = false
		if b == '\\' {
			p.dispatchAPC()
			p.toGround()
			return
		}
		p.state = stateEscape
		p.resetSeq()
		p.stepEscape(b)
		return
	}
	if b == 0x9C {
		p.dispatchAPC()
		p.toGround()
		return
	}
	if len(p.apcBuf) < maxAPCLen {
		p.apcBuf = append(p.apcBuf, b)
	}
}

func (p *Parser) dispatchAPC() {
	if len(p.apcBuf) > 0 && p.apcBuf[0] == 'G' {
		p.session.handleKittyGraphics(p.apcBuf[1:])
		return
	}
	p.report(LevelDebug, SourceParser, "Ignored APC string")
}

func (p *Parser) stepSOSPM(b byte) {
	if b == 0x1B {
		p.strSkip = true
		return
	}
	if p.strSkip {
		p.strSkip = false
		if b == '\\' {
			p.toGround()
			return
		}
		p.state = stateEscape
		p.resetSeq()
		p.stepEscape(b)
		return
	}
	if b == 0x9C {
		p.toGround()
	}
}

// --- VT52 ---

// EnterVT52 drops into VT52 emulation (DECANM reset). The only way back is
// ESC <.
func (p *Parser) EnterVT52() {
	p.vt52 = true
	p.vt52Saved = p.session.Level
	p.session.Level = LevelVT100
	p.state = stateGround
}

// InVT52 reports whether VT52 emulation is active.
func (p *Parser) InVT52() bool { return p.vt52 }

func (p *Parser) stepVT52(b byte) {
	s := p.session
	switch p.state {
	case stateVT52Row:
		p.vt52Row = int(b) - 0x20
		p.state = stateVT52Col
		return
	case stateVT52Col:
		col := int(b) - 0x20
		s.moveCursorAbsolute(p.vt52Row, col)
		p.state = stateGround
		return
	case stateVT52Escape:
		p.stepVT52Escape(b)
		return
	}
	if b == 0x1B {
		p.state = stateVT52Escape
		return
	}
	if b < 0x20 || b == 0x7F {
		p.execC0(b)
		return
	}
	p.printTranslated(b)
}

func (p *Parser) stepVT52Escape(b byte) {
	s := p.session
	p.state = stateGround
	switch b {
	case 'A':
		s.moveCursorRelative(-1, 0)
	case 'B':
		s.moveCursorRelative(1, 0)
	case 'C':
		s.moveCursorRelative(0, 1)
	case 'D':
		s.moveCursorRelative(0, -1)
	case 'F':
		s.charsets.G[0] = CharsetDECSpecial
	case 'G':
		s.charsets.G[0] = CharsetASCII
	case 'H':
		s.moveCursorAbsolute(0, 0)
	case 'I':
		s.ReverseIndex()
	case 'J':
		s.eraseScreenFrom(s.cursor.Row, s.cursor.Col, false)
	case 'K':
		s.eraseLineFrom(s.cursor.Row, s.cursor.Col, false)
	case 'Y':
		p.state = stateVT52Row
	case 'Z':
		s.reply([]byte("\x1b/Z"))
	case '=':
		s.Modes.AppKeypad = true
	case '>':
		s.Modes.AppKeypad = false
	case '<':
		p.vt52 = false
		s.Level = p.vt52Saved
	default:
		p.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled VT52 ESC %c", b))
	}
}

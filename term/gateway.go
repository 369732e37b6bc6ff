// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/gateway.go
// Summary: Gateway control channel: DCS GATE;<class>;<id>;<command>;<params>
//          with KTERM-class SET/GET/RESET/PIPE/INIT handled internally and
//          other classes delegated to a user callback.
// Usage: Each session's parser hands GATE payloads here; replies go back as
//        DCS GATE;KTERM;<id>;REPORT;KEY=VAL ST on the issuing session.

package term

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/framegrace/texelcore/vt"
)

// GatewayCallback receives Gateway sequences whose class is not KTERM.
type GatewayCallback func(class, id, command, params string)

// defaultResizeThrottle is the minimum interval between Gateway-driven
// resizes.
const defaultResizeThrottle = 100 * time.Millisecond

// Gateway routes the control channel for one terminal.
type Gateway struct {
	term *Terminal

	// Session targets. -1 means "the issuing session".
	target      int
	sixelTarget int
	regisTarget int
	tekTarget   int
	kittyTarget int

	minResizeInterval time.Duration
	lastResize        time.Time
}

func newGateway(t *Terminal) *Gateway {
	return &Gateway{
		term:              t,
		target:            -1,
		sixelTarget:       -1,
		regisTarget:       -1,
		tekTarget:         -1,
		kittyTarget:       -1,
		minResizeInterval: defaultResizeThrottle,
	}
}

// Target resolves the session index commands apply to.
func (g *Gateway) Target(issuing int) int {
	if g.target >= 0 && g.target < MaxSessions {
		return g.target
	}
	return issuing
}

// GraphicsTarget reports the bound session for a graphics kind ("SIXEL",
// "REGIS", "TEKTRONIX", "KITTY"), or -1 when unbound.
func (g *Gateway) GraphicsTarget(kind string) int {
	switch kind {
	case "SIXEL":
		return g.sixelTarget
	case "REGIS":
		return g.regisTarget
	case "TEKTRONIX":
		return g.tekTarget
	case "KITTY":
		return g.kittyTarget
	}
	return -1
}

func (g *Gateway) warnf(format string, args ...any) {
	g.term.report(vt.LevelWarning, vt.SourceGateway, fmt.Sprintf(format, args...))
}

// reply emits a REPORT on the issuing session's outbound path.
func (g *Gateway) reply(issuing int, id, body string) {
	inst := g.term.ensureSession(issuing)
	if inst == nil {
		return
	}
	inst.Session.Respond(fmt.Sprintf("\x1bPGATE;KTERM;%s;REPORT;%s\x1b\\", id, body))
}

// Dispatch handles one GATE payload from the session at issuing. Returns
// true when the sequence was consumed (always, including delegation).
func (g *Gateway) Dispatch(issuing int, payload string) bool {
	fields := splitFields(payload, 5)
	if len(fields) < 4 || fields[0] != "GATE" {
		g.warnf("malformed gateway sequence %q", truncate(payload, 64))
		return true
	}
	class := strings.TrimSpace(fields[1])
	id := strings.TrimSpace(fields[2])
	command := strings.TrimSpace(fields[3])
	params := ""
	if len(fields) == 5 {
		params = fields[4]
	}

	if class != "KTERM" {
		if g.term.gatewayCallback != nil {
			g.term.gatewayCallback(class, id, command, params)
		} else {
			g.term.report(vt.LevelInfo, vt.SourceGateway,
				fmt.Sprintf("unhandled gateway class %q", class))
		}
		return true
	}

	switch command {
	case "SET":
		g.handleSet(issuing, params)
	case "GET":
		g.handleGet(issuing, id, params)
	case "RESET":
		g.handleReset(issuing, params)
	case "PIPE":
		g.handlePipe(issuing, params)
	case "INIT":
		g.handleInit(issuing, params)
	default:
		g.warnf("unknown gateway command %q", command)
	}
	return true
}

// targetInstance binds (if needed) and returns the target slot.
func (g *Gateway) targetInstance(issuing int) *Instance {
	return g.term.ensureSession(g.Target(issuing))
}

// --- SET ---

func (g *Gateway) handleSet(issuing int, params string) {
	parts := splitFields(params, 2)
	key := strings.TrimSpace(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = parts[1]
	}

	switch key {
	case "SESSION":
		g.setTargetIndex(&g.target, rest)
	case "SIXEL_SESSION":
		g.setTargetIndex(&g.sixelTarget, rest)
	case "REGIS_SESSION":
		g.setTargetIndex(&g.regisTarget, rest)
	case "TEKTRONIX_SESSION":
		g.setTargetIndex(&g.tekTarget, rest)
	case "KITTY_SESSION":
		g.setTargetIndex(&g.kittyTarget, rest)
	case "ATTR":
		g.setAttr(issuing, rest)
	case "GRID":
		g.setGrid(issuing, rest)
	case "CONCEAL":
		if n, ok := atoiTrim(rest); ok {
			g.targetInstance(issuing).Session.SetConcealRune(rune(n))
		}
	case "BLINK":
		g.setBlink(issuing, rest)
	case "LEVEL":
		g.setLevel(issuing, rest)
	case "DEBUG":
		g.term.debug = isTruthy(rest)
	case "OUTPUT":
		g.targetInstance(issuing).OutputEnabled = isTruthy(rest)
	case "FONT":
		name := strings.TrimSpace(rest)
		if !g.term.fonts.SetCurrent(name) {
			g.warnf("unknown font %q", name)
		}
	case "WIDTH":
		if n, ok := atoiTrim(rest); ok {
			g.requestResize(g.term.rows, n)
		}
	case "HEIGHT":
		if n, ok := atoiTrim(rest); ok {
			g.requestResize(n, g.term.cols)
		}
	case "SIZE":
		wh := splitFields(rest, 2)
		if len(wh) == 2 {
			w, ok1 := atoiTrim(wh[0])
			h, ok2 := atoiTrim(wh[1])
			if ok1 && ok2 {
				g.requestResize(h, w)
			}
		}
	default:
		g.warnf("unknown SET key %q", key)
	}
}

// setTargetIndex applies the documented contract: out-of-range indices are
// ignored with a warning rather than resetting the target.
func (g *Gateway) setTargetIndex(slot *int, rest string) {
	n, ok := atoiTrim(rest)
	if !ok {
		g.warnf("session target wants a number, got %q", strings.TrimSpace(rest))
		return
	}
	if n < 0 || n >= MaxSessions {
		g.warnf("session target %d out of range [0,%d), ignored", n, MaxSessions)
		return
	}
	*slot = n
}

func (g *Gateway) setAttr(issuing int, rest string) {
	inst := g.targetInstance(issuing)
	if inst == nil {
		return
	}
	pen := inst.Session.PenRef()
	for _, pair := range splitFields(rest, 64) {
		key, val, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "BOLD":
			setAttrBit(pen, vt.AttrBold, val)
		case "DIM":
			setAttrBit(pen, vt.AttrFaint, val)
		case "ITALIC":
			setAttrBit(pen, vt.AttrItalic, val)
		case "UNDERLINE":
			setAttrBit(pen, vt.AttrUnderline, val)
		case "BLINK":
			setAttrBit(pen, vt.AttrBlinkSlow, val)
		case "REVERSE":
			setAttrBit(pen, vt.AttrReverse, val)
		case "HIDDEN":
			setAttrBit(pen, vt.AttrConceal, val)
		case "STRIKE":
			setAttrBit(pen, vt.AttrStrike, val)
		case "FG":
			if c, ok := parseAttrColor(val); ok {
				pen.FG = c
			}
		case "BG":
			if c, ok := parseAttrColor(val); ok {
				pen.BG = c
			}
		case "UL":
			if c, ok := parseAttrColor(val); ok {
				pen.UL = c
			}
		case "ST":
			if c, ok := parseAttrColor(val); ok {
				pen.ST = c
			}
		default:
			g.warnf("unknown ATTR key %q", key)
		}
	}
}

func setAttrBit(pen *vt.Pen, bit vt.Attr, val string) {
	if isTruthy(val) {
		pen.Attr |= bit
	} else {
		pen.Attr &^= bit
	}
}

// parseAttrColor accepts a palette index, hex forms and r,g,b triples.
func parseAttrColor(val string) (vt.Color, bool) {
	if n, ok := atoiTrim(val); ok && !strings.Contains(val, ",") {
		return vt.IndexedColor(uint8(n)), true
	}
	if rgb, ok := vt.ParseColorSpec(val); ok {
		return vt.RGBColor(rgb.R, rgb.G, rgb.B), true
	}
	return vt.Color{}, false
}

func (g *Gateway) setGrid(issuing int, rest string) {
	inst := g.targetInstance(issuing)
	if inst == nil {
		return
	}
	for _, pair := range splitFields(rest, 16) {
		token := strings.TrimSpace(pair)
		switch token {
		case "ON":
			inst.GridEnabled = true
			continue
		case "OFF":
			inst.GridEnabled = false
			continue
		}
		key, val, found := strings.Cut(token, "=")
		if !found {
			continue
		}
		n, ok := atoiTrim(val)
		if !ok {
			continue
		}
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		switch strings.TrimSpace(key) {
		case "R":
			inst.GridColor.R = uint8(n)
		case "G":
			inst.GridColor.G = uint8(n)
		case "B":
			inst.GridColor.B = uint8(n)
		case "A":
			// Alpha is accepted for compatibility; cells have no alpha.
		}
	}
}

func (g *Gateway) setBlink(issuing int, rest string) {
	s := g.targetInstance(issuing).Session
	for _, pair := range splitFields(rest, 8) {
		key, val, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		n, ok := atoiTrim(val)
		if !ok || n <= 0 {
			continue
		}
		switch strings.TrimSpace(key) {
		case "FAST":
			s.Blink.Fast = n
		case "SLOW":
			s.Blink.Slow = n
		case "BG":
			s.Blink.Background = n
		}
	}
}

func (g *Gateway) setLevel(issuing int, rest string) {
	s := g.targetInstance(issuing).Session
	val := strings.TrimSpace(rest)
	switch strings.ToUpper(val) {
	case "VT100":
		s.SetLevel(vt.LevelVT100)
	case "VT220":
		s.SetLevel(vt.LevelVT220)
	case "VT320":
		s.SetLevel(vt.LevelVT320)
	case "VT420", "XTERM":
		s.SetLevel(vt.LevelVT420)
	case "ANSISYS", "ANSI_SYS":
		s.EnterANSISysLevel()
	default:
		if n, ok := atoiTrim(val); ok {
			s.SetLevel(vt.ConformanceLevel(n))
		} else {
			g.warnf("unknown LEVEL %q", val)
		}
	}
}

// requestResize clamps and throttles Gateway-driven resizes.
func (g *Gateway) requestResize(rows, cols int) {
	now := time.Now()
	if !g.lastResize.IsZero() && now.Sub(g.lastResize) < g.minResizeInterval {
		g.warnf("resize throttled (min interval %v)", g.minResizeInterval)
		return
	}
	g.lastResize = now
	g.term.Resize(rows, cols)
}

// --- GET ---

func (g *Gateway) handleGet(issuing int, id, params string) {
	key := strings.TrimSpace(splitFields(params, 2)[0])
	s := g.targetInstance(issuing).Session

	switch key {
	case "LEVEL":
		g.reply(issuing, id, fmt.Sprintf("LEVEL=%d", int(s.Level)))
	case "VERSION":
		g.reply(issuing, id, "VERSION="+Version)
	case "SIZE":
		rows, cols := g.term.Size()
		g.reply(issuing, id, fmt.Sprintf("SIZE=%dx%d", cols, rows))
	case "OUTPUT":
		v := 0
		if g.targetInstance(issuing).OutputEnabled {
			v = 1
		}
		g.reply(issuing, id, fmt.Sprintf("OUTPUT=%d", v))
	case "FONTS":
		g.reply(issuing, id, "FONTS="+strings.Join(g.term.fonts.Names(), ","))
	case "CONCEAL":
		g.reply(issuing, id, fmt.Sprintf("CONCEAL=%d", s.ConcealRune()))
	case "BLINK":
		g.reply(issuing, id, fmt.Sprintf("BLINK=%d,%d,%d", s.Blink.Fast, s.Blink.Slow, s.Blink.Background))
	case "UNDERLINE_COLOR":
		g.reply(issuing, id, "UNDERLINE_COLOR="+formatAttrColor(s.PenRef().UL))
	case "STRIKE_COLOR":
		g.reply(issuing, id, "STRIKE_COLOR="+formatAttrColor(s.PenRef().ST))
	default:
		g.warnf("unknown GET key %q", key)
	}
}

func formatAttrColor(c vt.Color) string {
	switch c.Mode {
	case vt.ColorModeRGB:
		return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
	case vt.ColorModeIndexed:
		return strconv.Itoa(int(c.Index))
	}
	return "DEFAULT"
}

// --- RESET ---

func (g *Gateway) handleReset(issuing int, params string) {
	parts := splitFields(params, 2)
	key := strings.TrimSpace(parts[0])
	s := g.targetInstance(issuing).Session

	switch key {
	case "ATTR":
		*s.PenRef() = vt.Pen{FG: vt.DefaultFG, BG: vt.DefaultBG}
	case "BLINK":
		s.Blink = vt.BlinkRates{Fast: 255, Slow: 500, Background: 500}
	case "SESSION":
		g.target = -1
	case "SIXEL_SESSION":
		g.sixelTarget = -1
	case "REGIS_SESSION":
		g.regisTarget = -1
	case "TEKTRONIX_SESSION":
		g.tekTarget = -1
	case "KITTY_SESSION":
		g.kittyTarget = -1
	case "KITTY", "SIXEL":
		for _, imgID := range s.Images.IDs() {
			if imgID != vt.RegisSurfaceID && imgID != vt.TekSurfaceID {
				s.Images.Delete(imgID)
			}
		}
	case "REGIS":
		s.Images.Delete(vt.RegisSurfaceID)
		for k := range g.term.regisMacros {
			delete(g.term.regisMacros, k)
		}
	case "TEK", "TEKTRONIX":
		s.Images.Delete(vt.TekSurfaceID)
	case "GRAPHICS", "ALL_GRAPHICS":
		s.Images.Clear()
		for k := range g.term.regisMacros {
			delete(g.term.regisMacros, k)
		}
	case "TABS":
		default8 := false
		if len(parts) == 2 {
			default8 = strings.TrimSpace(parts[1]) == "DEFAULT8"
		}
		s.ResetTabStops(default8)
	default:
		g.warnf("unknown RESET domain %q", key)
	}
}

// --- PIPE ---

func (g *Gateway) handlePipe(issuing int, params string) {
	parts := splitFields(params, 2)
	channel := strings.TrimSpace(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = parts[1]
	}

	switch channel {
	case "VT":
		g.pipeVT(issuing, rest)
	case "BANNER":
		g.pipeBanner(issuing, rest)
	default:
		g.warnf("unknown PIPE channel %q", channel)
	}
}

func (g *Gateway) pipeVT(issuing int, rest string) {
	parts := splitFields(rest, 2)
	if len(parts) != 2 {
		g.warnf("PIPE VT wants <encoding>;<payload>")
		return
	}
	encoding := strings.ToUpper(strings.TrimSpace(parts[0]))
	payload := parts[1]

	var decoded []byte
	switch encoding {
	case "RAW":
		decoded = []byte(payload)
	case "HEX":
		decoded = decodeHexStream(payload)
	case "B64":
		decoded = decodeBase64Stream(payload)
	default:
		g.warnf("unknown PIPE VT encoding %q", encoding)
		return
	}
	if inst := g.targetInstance(issuing); inst != nil {
		inst.Engine.Feed(decoded)
	}
}

func (g *Gateway) pipeBanner(issuing int, rest string) {
	inst := g.targetInstance(issuing)
	if inst == nil {
		return
	}
	opts := ParseBannerOptions(rest)

	var font *BannerFont
	if strings.EqualFold(opts.Font, "SOFT") && inst.Session.SoftFont != nil {
		font = softBannerFont(inst.Session.SoftFont)
	} else {
		var ok bool
		font, ok = g.term.fonts.Get(opts.Font)
		if !ok {
			g.warnf("unknown banner font %q", opts.Font)
			font, _ = g.term.fonts.Get("")
		}
	}
	_, cols := inst.Session.Size()
	if banner := RenderBanner(font, opts, cols); len(banner) > 0 {
		inst.Engine.Feed(banner)
	}
}

// softBannerFont wraps the session's DECDLD glyph bank as a banner font.
func softBannerFont(sf *vt.SoftFont) *BannerFont {
	w := sf.CellW
	if w > 8 {
		w = 8
	}
	f := &BannerFont{Name: "soft", Width: w, Height: sf.CellH, glyphs: map[rune][]byte{}}
	f.glyphs[' '] = make([]byte, sf.CellH)
	for i := range sf.Glyphs {
		glyph, ok := sf.GlyphFor(0xF000 + rune(i))
		if !ok {
			continue
		}
		rows := make([]byte, sf.CellH)
		for y := 0; y < sf.CellH; y++ {
			band := y / 6
			if band >= len(glyph.Columns) {
				break
			}
			for x := 0; x < w && x < len(glyph.Columns[band]); x++ {
				if glyph.Columns[band][x]>>(y%6)&1 == 1 {
					rows[y] |= 1 << (w - 1 - x)
				}
			}
		}
		f.glyphs[rune('!'+i)] = rows
	}
	return f
}

// --- INIT ---

// handleInit binds the issuing session as a graphics target, per the
// INIT;<KIND>_SESSION form.
func (g *Gateway) handleInit(issuing int, params string) {
	key := strings.TrimSpace(splitFields(params, 2)[0])
	switch key {
	case "SIXEL_SESSION":
		g.sixelTarget = issuing
	case "REGIS_SESSION":
		g.regisTarget = issuing
	case "TEKTRONIX_SESSION":
		g.tekTarget = issuing
	case "KITTY_SESSION":
		g.kittyTarget = issuing
	default:
		g.warnf("unknown INIT target %q", key)
		return
	}
	// Binding also primes the subsystem with a clean slate.
	g.term.ensureSession(issuing)
}

// --- decoding helpers ---

// decodeHexStream pairs up hex digits and skips everything else, matching
// the forgiving wire behavior of the channel.
func decodeHexStream(in string) []byte {
	var digits []byte
	for i := 0; i < len(in); i++ {
		if _, ok := hexVal(in[i]); ok {
			digits = append(digits, in[i])
		}
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		hi, _ := hexVal(digits[i])
		lo, _ := hexVal(digits[i+1])
		out = append(out, hi<<4|lo)
	}
	return out
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// decodeBase64Stream strips whitespace and decodes, tolerating absent
// padding.
func decodeBase64Stream(in string) []byte {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, in)
	clean = strings.TrimRight(clean, "=")
	out, err := base64.RawStdEncoding.DecodeString(clean)
	if err != nil {
		return nil
	}
	return out
}

func atoiTrim(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

func isTruthy(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "ON", "TRUE", "YES":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

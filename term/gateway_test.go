// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/gateway_test.go
// Summary: Gateway dispatcher tests: SET/GET/RESET/PIPE/INIT routing,
//          target selection and the resize throttle.

package term

import (
	"strings"
	"testing"
	"time"

	"github.com/framegrace/texelcore/vt"
)

// testTerm builds a terminal that captures per-session output and warnings.
type testTerm struct {
	*Terminal
	out   map[int]string
	warns []string
}

func newTestTerm(t *testing.T, opts ...Option) *testTerm {
	t.Helper()
	tt := &testTerm{out: map[int]string{}}
	base := []Option{
		WithReporter(func(level vt.ReportLevel, source vt.ReportSource, msg string) {
			if level == vt.LevelWarning {
				tt.warns = append(tt.warns, msg)
			}
		}),
		WithOutput(func(idx int, p []byte) { tt.out[idx] += string(p) }),
	}
	tt.Terminal = NewTerminal(24, 80, append(base, opts...)...)
	return tt
}

func (tt *testTerm) gate(idx int, seq string) {
	tt.FeedSession(idx, []byte("\x1bPGATE;"+seq+"\x1b\\"))
	tt.Drain()
}

func TestGatewaySetSessionThenAttr(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;0;SET;SESSION;1")
	tt.gate(0, "KTERM;0;SET;ATTR;BG=1")

	s1 := tt.Session(1)
	if s1 == nil {
		t.Fatal("session 1 should be bound by targeting")
	}
	if got := s1.PenRef().BG; got != vt.IndexedColor(1) {
		t.Errorf("session 1 bg = %+v", got)
	}
	if got := tt.Session(0).PenRef().BG; got != vt.DefaultBG {
		t.Errorf("session 0 bg changed: %+v", got)
	}
}

func TestGatewaySessionOutOfRange(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;0;SET;SESSION;99999")
	if len(tt.warns) == 0 {
		t.Error("out-of-range target should warn")
	}
	// Target stays at the issuing session.
	tt.gate(0, "KTERM;0;SET;ATTR;BOLD=1")
	if tt.Session(0).PenRef().Attr&vt.AttrBold == 0 {
		t.Error("attr should apply to the issuing session")
	}
}

func TestGatewayAttrColors(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;0;SET;ATTR;UL=10,20,30;FG=5;HIDDEN=1")
	pen := tt.Session(0).PenRef()
	if pen.UL != vt.RGBColor(10, 20, 30) {
		t.Errorf("ul = %+v", pen.UL)
	}
	if pen.FG != vt.IndexedColor(5) {
		t.Errorf("fg = %+v", pen.FG)
	}
	if pen.Attr&vt.AttrConceal == 0 {
		t.Error("HIDDEN should set conceal")
	}
	tt.gate(0, "KTERM;0;RESET;ATTR")
	if pen.Attr != 0 || pen.FG != vt.DefaultFG {
		t.Errorf("reset pen = %+v", *pen)
	}
}

func TestGatewayGetReports(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;7;GET;VERSION")
	want := "\x1bPGATE;KTERM;7;REPORT;VERSION=" + Version + "\x1b\\"
	if tt.out[0] != want {
		t.Errorf("version report = %q, want %q", tt.out[0], want)
	}

	tt.out[0] = ""
	tt.gate(0, "KTERM;2;GET;SIZE")
	if tt.out[0] != "\x1bPGATE;KTERM;2;REPORT;SIZE=80x24\x1b\\" {
		t.Errorf("size report = %q", tt.out[0])
	}

	tt.out[0] = ""
	tt.gate(0, "KTERM;1;GET;FONTS")
	if !strings.Contains(tt.out[0], "FONTS=system16,system8") {
		t.Errorf("fonts report = %q", tt.out[0])
	}

	tt.out[0] = ""
	tt.gate(0, "KTERM;1;GET;UNDERLINE_COLOR")
	if !strings.Contains(tt.out[0], "UNDERLINE_COLOR=DEFAULT") {
		t.Errorf("ul report = %q", tt.out[0])
	}
}

func TestGatewayResizeAndThrottle(t *testing.T) {
	tt := newTestTerm(t, WithResizeThrottle(time.Hour))
	tt.gate(0, "KTERM;0;SET;WIDTH;100")
	if _, cols := tt.Size(); cols != 100 {
		t.Fatalf("cols = %d, want 100", cols)
	}
	tt.gate(0, "KTERM;0;SET;WIDTH;120")
	if _, cols := tt.Size(); cols != 100 {
		t.Error("second resize inside the window should be throttled")
	}
	if len(tt.warns) == 0 {
		t.Error("throttled resize should warn")
	}
}

func TestGatewayResizeClamp(t *testing.T) {
	tt := newTestTerm(t, WithResizeThrottle(0))
	tt.gate(0, "KTERM;0;SET;SIZE;5000;5000")
	rows, cols := tt.Size()
	if rows != vt.MaxDim || cols != vt.MaxDim {
		t.Errorf("size = %dx%d, want clamped to %d", cols, rows, vt.MaxDim)
	}
}

func TestGatewayPipeVT(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;0;PIPE;VT;HEX;414243")
	tt.Drain()
	if got := rowText(tt.Session(0), 0); got != "ABC" {
		t.Errorf("HEX pipe row = %q", got)
	}

	tt.gate(0, "KTERM;0;PIPE;VT;B64;IERFRg==")
	tt.Drain()
	if got := rowText(tt.Session(0), 0); got != "ABC DEF" {
		t.Errorf("B64 pipe row = %q", got)
	}

	tt.gate(0, "KTERM;0;PIPE;VT;RAW;!")
	tt.Drain()
	if got := rowText(tt.Session(0), 0); got != "ABC DEF!" {
		t.Errorf("RAW pipe row = %q", got)
	}
}

func TestGatewayInitBindsIssuer(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;0;SET;SESSION;1")
	tt.gate(0, "KTERM;0;INIT;KITTY_SESSION")
	if got := tt.Gateway().GraphicsTarget("KITTY"); got != 0 {
		t.Errorf("kitty target = %d, want issuing session 0", got)
	}
	tt.gate(0, "KTERM;0;RESET;KITTY_SESSION")
	if got := tt.Gateway().GraphicsTarget("KITTY"); got != -1 {
		t.Errorf("kitty target after reset = %d", got)
	}
}

func TestGatewayResetTabs(t *testing.T) {
	tt := newTestTerm(t)
	s := tt.Session(0)

	tt.gate(0, "KTERM;0;RESET;TABS")
	tt.FeedSession(0, []byte("\t"))
	tt.Drain()
	if got := s.CursorPos().Col; got != 79 {
		t.Errorf("tab with no stops lands at %d, want 79", got)
	}

	tt.FeedSession(0, []byte("\r"))
	tt.gate(0, "KTERM;0;RESET;TABS;DEFAULT8")
	tt.FeedSession(0, []byte("\t"))
	tt.Drain()
	if got := s.CursorPos().Col; got != 8 {
		t.Errorf("tab after DEFAULT8 lands at %d, want 8", got)
	}
}

func TestGatewayBlinkAndConceal(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;0;SET;BLINK;FAST=100;SLOW=900")
	s := tt.Session(0)
	if s.Blink.Fast != 100 || s.Blink.Slow != 900 || s.Blink.Background != 500 {
		t.Errorf("blink = %+v", s.Blink)
	}
	tt.gate(0, "KTERM;0;RESET;BLINK")
	if s.Blink != (vt.BlinkRates{Fast: 255, Slow: 500, Background: 500}) {
		t.Errorf("blink after reset = %+v", s.Blink)
	}

	tt.gate(0, "KTERM;0;SET;CONCEAL;42")
	if s.ConcealRune() != '*' {
		t.Errorf("conceal = %q", s.ConcealRune())
	}
}

func TestGatewayUserCallback(t *testing.T) {
	var gotClass, gotID, gotCmd, gotParams string
	tt := newTestTerm(t, WithGatewayCallback(func(class, id, command, params string) {
		gotClass, gotID, gotCmd, gotParams = class, id, command, params
	}))
	tt.gate(0, "MAT;1;SET;COLOR;RED")
	if gotClass != "MAT" || gotID != "1" || gotCmd != "SET" || gotParams != "COLOR;RED" {
		t.Errorf("callback got %q %q %q %q", gotClass, gotID, gotCmd, gotParams)
	}
}

func TestGatewayOutputToggle(t *testing.T) {
	tt := newTestTerm(t)
	tt.gate(0, "KTERM;0;SET;OUTPUT;OFF")
	tt.FeedSession(0, []byte("\x1b[5n")) // DSR ready
	tt.Drain()
	if tt.out[0] != "" {
		t.Errorf("output disabled but got %q", tt.out[0])
	}
	tt.gate(0, "KTERM;0;SET;OUTPUT;ON")
	tt.FeedSession(0, []byte("\x1b[5n"))
	tt.Drain()
	if tt.out[0] != "\x1b[0n" {
		t.Errorf("output re-enabled, got %q", tt.out[0])
	}
}

func rowText(s *vt.Session, row int) string {
	cells := s.Row(row)
	end := len(cells)
	for end > 0 && cells[end-1].Rune == ' ' {
		end--
	}
	var b strings.Builder
	for _, c := range cells[:end] {
		b.WriteRune(c.Rune)
	}
	return b.String()
}

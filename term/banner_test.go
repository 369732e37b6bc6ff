// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/banner_test.go
// Summary: Lexer, banner option parsing and block-art rendering tests.

package term

import (
	"strings"
	"testing"

	"github.com/framegrace/texelcore/vt"
)

func TestLexerTokens(t *testing.T) {
	lx := NewLexer(`FONT=system8;"hi there";-12;0x1F,X`)
	want := []Token{
		{Type: TokIdent, Text: "FONT"},
		{Type: TokEquals, Text: "="},
		{Type: TokIdent, Text: "system8"},
		{Type: TokSemicolon, Text: ";"},
		{Type: TokString, Text: "hi there"},
		{Type: TokSemicolon, Text: ";"},
		{Type: TokNumber, Text: "-12", Num: -12},
		{Type: TokSemicolon, Text: ";"},
		{Type: TokNumber, Text: "0x1F", Num: 31},
		{Type: TokComma, Text: ","},
		{Type: TokIdent, Text: "X"},
		{Type: TokEOF},
	}
	for i, w := range want {
		if got := lx.Next(); got != w {
			t.Fatalf("token %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	tok := NewLexer(`"a\n\t\e\"b"`).Next()
	if tok.Type != TokString || tok.Text != "a\n\t\x1b\"b" {
		t.Errorf("got %+v", tok)
	}
}

func TestLexerSegment(t *testing.T) {
	lx := NewLexer(`255,0,0|0,0,255;TEXT=AB`)
	if got := lx.Segment(); got != "255,0,0|0,0,255" {
		t.Errorf("segment = %q", got)
	}
	if tok := lx.Next(); !tok.Is("TEXT") {
		t.Errorf("after segment, next = %+v", tok)
	}
}

func TestLexerSegmentQuoted(t *testing.T) {
	lx := NewLexer(`"a;b";rest`)
	if got := lx.Segment(); got != `"a;b"` {
		t.Errorf("segment = %q", got)
	}
	if got := lx.Rest(); got != "rest" {
		t.Errorf("rest = %q", got)
	}
}

func TestSplitFields(t *testing.T) {
	got := splitFields(`GATE;KTERM;0;PIPE;VT;RAW;a;b`, 5)
	want := []string{"GATE", "KTERM", "0", "PIPE", "VT;RAW;a;b"}
	if len(got) != len(want) {
		t.Fatalf("got %d fields: %v", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitFieldsQuoted(t *testing.T) {
	got := splitFields(`TEXT="a;b";FONT=f`, 3)
	if len(got) != 2 || got[0] != `TEXT="a;b"` || got[1] != "FONT=f" {
		t.Errorf("got %v", got)
	}
}

func TestParseBannerOptionsKeys(t *testing.T) {
	o := ParseBannerOptions(`TEXT="HI THERE";FONT=system16;ALIGN=CENTER;MODE=KERNED`)
	if o.Text != "HI THERE" {
		t.Errorf("text = %q", o.Text)
	}
	if o.Font != "system16" {
		t.Errorf("font = %q", o.Font)
	}
	if o.Align != AlignCenter {
		t.Errorf("align = %v", o.Align)
	}
	if !o.Kerned {
		t.Error("kerned not set")
	}
}

func TestParseBannerOptionsGradient(t *testing.T) {
	o := ParseBannerOptions(`GRADIENT=255,0,0|#00f;TEXT=AB`)
	if !o.Gradient {
		t.Fatal("gradient not set")
	}
	if o.From != (vt.RGB{R: 255}) || o.To != (vt.RGB{B: 255}) {
		t.Errorf("from %+v to %+v", o.From, o.To)
	}
	if o.Text != "AB" {
		t.Errorf("text = %q", o.Text)
	}
}

func TestParseBannerOptionsLegacy(t *testing.T) {
	o := ParseBannerOptions("KERNED;HELLO")
	if !o.Kerned || o.Text != "HELLO" {
		t.Errorf("got %+v", o)
	}
	o = ParseBannerOptions("FIXED;HI;THERE")
	if o.Kerned || o.Text != "HI;THERE" {
		t.Errorf("got %+v", o)
	}
}

func TestParseBannerOptionsPositional(t *testing.T) {
	if o := ParseBannerOptions(`"Hello World"`); o.Text != "Hello World" {
		t.Errorf("text = %q", o.Text)
	}
}

func TestRenderBannerFixed(t *testing.T) {
	fonts := NewFontRegistry()
	f, _ := fonts.Get("system8")
	out := string(RenderBanner(f, BannerOptions{Text: "I"}, 80))
	lines := strings.Split(out, "\r\n")
	if len(lines) != 9 || lines[8] != "" {
		t.Fatalf("expected 8 CRLF-terminated rows, got %d", len(lines)-1)
	}
	if lines[0] != "  ████  " {
		t.Errorf("row 0 = %q", lines[0])
	}
	if lines[1] != "   ██   " {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestRenderBannerKerned(t *testing.T) {
	fonts := NewFontRegistry()
	f, _ := fonts.Get("system8")
	out := string(RenderBanner(f, BannerOptions{Text: "I", Kerned: true}, 80))
	lines := strings.Split(out, "\r\n")
	if lines[0] != "████ " {
		t.Errorf("row 0 = %q", lines[0])
	}
	if lines[1] != " ██  " {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestRenderBannerAlign(t *testing.T) {
	fonts := NewFontRegistry()
	f, _ := fonts.Get("system8")
	out := string(RenderBanner(f, BannerOptions{Text: "I", Align: AlignRight}, 10))
	lines := strings.Split(out, "\r\n")
	if lines[0] != "    ████  " {
		t.Errorf("right-aligned row 0 = %q", lines[0])
	}
	out = string(RenderBanner(f, BannerOptions{Text: "I", Align: AlignCenter}, 10))
	if got := strings.Split(out, "\r\n")[0]; got != "   ████  " {
		t.Errorf("centered row 0 = %q", got)
	}
}

func TestRenderBannerGradientEndpoints(t *testing.T) {
	fonts := NewFontRegistry()
	f, _ := fonts.Get("system8")
	o := BannerOptions{
		Text: "AB", Gradient: true,
		From: vt.RGB{R: 255}, To: vt.RGB{B: 255},
	}
	out := string(RenderBanner(f, o, 80))
	first := strings.Split(out, "\r\n")[0]
	if !strings.HasPrefix(first, "\x1b[38;2;255;0;0m") {
		t.Errorf("row does not start with the from color: %q", first)
	}
	if !strings.Contains(first, "\x1b[38;2;0;0;255m") {
		t.Errorf("row lacks the to color: %q", first)
	}
	if !strings.HasSuffix(first, "\x1b[0m") {
		t.Errorf("row not reset-terminated: %q", first)
	}
}

func TestFontRegistryLookup(t *testing.T) {
	fonts := NewFontRegistry()
	if _, ok := fonts.Get("SYSTEM8"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	f16, ok := fonts.Get("system16")
	if !ok || f16.Width != 8 || f16.Height != 16 {
		t.Errorf("system16 = %+v", f16)
	}
	if !fonts.SetCurrent("system16") {
		t.Fatal("SetCurrent failed")
	}
	if f, _ := fonts.Get(""); f.Name != "system16" {
		t.Errorf("current = %q", f.Name)
	}
	if fonts.SetCurrent("nope") {
		t.Error("unknown font accepted")
	}
}

func TestFontMetricsAndFold(t *testing.T) {
	fonts := NewFontRegistry()
	f, _ := fonts.Get("system8")
	begin, end, inked := f.Metrics('I')
	if !inked || begin != 2 || end != 5 {
		t.Errorf("metrics = %d..%d inked=%v", begin, end, inked)
	}
	lower, ok1 := f.Glyph('i')
	upper, ok2 := f.Glyph('I')
	if !ok1 || !ok2 || &lower[0] != &upper[0] {
		t.Error("lowercase should fold to the uppercase glyph")
	}
}

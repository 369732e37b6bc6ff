// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/sgr_test.go
// Summary: SGR attribute and color handling tests.

package vt

import "testing"

func TestBasicAttributes(t *testing.T) {
	tests := []struct {
		name   string
		seq    string
		verify func(*testing.T, *TestHarness)
	}{
		{
			name: "SGR 0 resets attributes and colors",
			seq:  "\x1b[1;4;7m\x1b[31m\x1b[44mX\x1b[0mY",
			verify: func(t *testing.T, h *TestHarness) {
				x := h.Cell(0, 0)
				if x.Attr&AttrBold == 0 || x.Attr&AttrUnderline == 0 || x.Attr&AttrReverse == 0 {
					t.Errorf("X attrs = %v, want bold+underline+reverse", x.Attr)
				}
				y := h.Cell(0, 1)
				if y.Attr != 0 {
					t.Errorf("Y attrs = %v, want none", y.Attr)
				}
				if !y.FG.IsDefault() || !y.BG.IsDefault() {
					t.Errorf("Y colors should be default, got %+v / %+v", y.FG, y.BG)
				}
			},
		},
		{
			name: "SGR 5 sets fast and background blink",
			seq:  "\x1b[5mX",
			verify: func(t *testing.T, h *TestHarness) {
				x := h.Cell(0, 0)
				if x.Attr&AttrBlinkFast == 0 || x.Attr&AttrBlinkBG == 0 {
					t.Errorf("attrs = %v, want fast+bg blink", x.Attr)
				}
				if x.Attr&AttrBlinkSlow != 0 {
					t.Error("slow blink should not be set by SGR 5")
				}
			},
		},
		{
			name: "SGR 6 sets only slow blink",
			seq:  "\x1b[6mX",
			verify: func(t *testing.T, h *TestHarness) {
				x := h.Cell(0, 0)
				if x.Attr&AttrBlinkSlow == 0 {
					t.Error("slow blink should be set")
				}
				if x.Attr&(AttrBlinkFast|AttrBlinkBG) != 0 {
					t.Error("SGR 6 must not set fast or background blink")
				}
			},
		},
		{
			name: "SGR 25 clears every blink",
			seq:  "\x1b[5;6m\x1b[25mX",
			verify: func(t *testing.T, h *TestHarness) {
				if h.Cell(0, 0).Attr&AttrBlinkAny != 0 {
					t.Error("all blink bits should be clear")
				}
			},
		},
		{
			name: "SGR 22 clears bold and faint",
			seq:  "\x1b[1;2m\x1b[22mX",
			verify: func(t *testing.T, h *TestHarness) {
				if h.Cell(0, 0).Attr&(AttrBold|AttrFaint) != 0 {
					t.Error("bold and faint should be clear")
				}
			},
		},
		{
			name: "conceal and strike",
			seq:  "\x1b[8;9mX",
			verify: func(t *testing.T, h *TestHarness) {
				x := h.Cell(0, 0)
				if x.Attr&AttrConceal == 0 || x.Attr&AttrStrike == 0 {
					t.Errorf("attrs = %v, want conceal+strike", x.Attr)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHarness(5, 20)
			h.Send(tt.seq)
			tt.verify(t, h)
		})
	}
}

func TestColorSelection(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		fg   Color
		bg   Color
	}{
		{"classic pair", "\x1b[31;44mX", IndexedColor(1), IndexedColor(4)},
		{"bright foreground", "\x1b[92mX", IndexedColor(10), DefaultBG},
		{"bright background", "\x1b[103mX", DefaultFG, IndexedColor(11)},
		{"256 semicolon form", "\x1b[38;5;123mX", IndexedColor(123), DefaultBG},
		{"256 colon form", "\x1b[38:5:200mX", IndexedColor(200), DefaultBG},
		{"RGB semicolon form", "\x1b[48;2;10;20;30mX", DefaultFG, RGBColor(10, 20, 30)},
		{"RGB colon form", "\x1b[38:2:1:2:3mX", RGBColor(1, 2, 3), DefaultBG},
		{"RGB colon with colorspace", "\x1b[38:2::255:128:0mX", RGBColor(255, 128, 0), DefaultBG},
		{"default fg reset", "\x1b[31m\x1b[39mX", DefaultFG, DefaultBG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHarness(3, 10)
			h.Send(tt.seq)
			cell := h.Cell(0, 0)
			if cell.FG != tt.fg {
				t.Errorf("FG = %+v, want %+v", cell.FG, tt.fg)
			}
			if cell.BG != tt.bg {
				t.Errorf("BG = %+v, want %+v", cell.BG, tt.bg)
			}
		})
	}
}

func TestBrightColorsNeedVT220(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Session.Level = LevelVT100
	h.Send("\x1b[92mX")
	if !h.Cell(0, 0).FG.IsDefault() {
		t.Error("aixterm colors should be ignored at VT100 level")
	}
}

func TestUnderlineColorSGR58(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[4m\x1b[58:2:250:100:50mX")
	cell := h.Cell(0, 0)
	if cell.UL != RGBColor(250, 100, 50) {
		t.Errorf("UL = %+v, want RGB 250,100,50", cell.UL)
	}
	h.Send("\x1b[59mY")
	if h.Cell(0, 1).UL != (Color{}) {
		t.Error("SGR 59 should reset the underline color")
	}
}

func TestDECRQSSPenRoundTrip(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[1;4;38;5;123m")
	h.Send("\x1bP$qm\x1b\\")
	want := "\x1bP1$r0;1;4;38:5:123m\x1b\\"
	if got := h.TakeReplies(); got != want {
		t.Errorf("DECRQSS m = %q, want %q", got, want)
	}
}

func TestDECRQSSExtendedAttrRoundTrip(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[21;51;52;53;73;58:2:10:20:30m")
	h.Send("\x1bP$qm\x1b\\")
	want := "\x1bP1$r0;21;51;52;53;73;58:2:10:20:30m\x1b\\"
	if got := h.TakeReplies(); got != want {
		t.Errorf("DECRQSS m = %q, want %q", got, want)
	}
	h.Send("\x1b[0;74m\x1bP$qm\x1b\\")
	want = "\x1bP1$r0;74m\x1b\\"
	if got := h.TakeReplies(); got != want {
		t.Errorf("DECRQSS m = %q, want %q", got, want)
	}
}

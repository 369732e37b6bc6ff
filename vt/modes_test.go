// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/modes_test.go
// Summary: Mode switching tests: origin, columns, alt screen, margins and
//          mode reporting.

package vt

import (
	"strings"
	"testing"
)

func TestOriginMode(t *testing.T) {
	h := NewTestHarness(10, 20)
	h.Send("\x1b[3;8r\x1b[?6h")
	h.AssertCursor(t, 2, 0) // home is the margin corner
	h.Send("\x1b[1;1H")
	h.AssertCursor(t, 2, 0)
	h.Send("\x1b[100;1H")
	h.AssertCursor(t, 7, 0) // clamped to the bottom margin
	h.Send("\x1b[?6l")
	h.Send("\x1b[1;1H")
	h.AssertCursor(t, 0, 0)
}

func TestDECCOLMResizesAndClears(t *testing.T) {
	h := NewTestHarness(5, 80)
	h.Send("text")
	h.Send("\x1b[?3h")
	_, cols := h.Session.Size()
	if cols != 132 {
		t.Fatalf("cols = %d, want 132", cols)
	}
	h.AssertText(t, 0, "")
	h.AssertCursor(t, 0, 0)
}

func TestDECNCSMPreservesContent(t *testing.T) {
	h := NewTestHarness(5, 80)
	h.Send("\x1b[?95h")
	h.Send("keep")
	h.Send("\x1b[?3h")
	h.AssertText(t, 0, "keep")
}

func TestDECCOLMBlockedWithoutMode40(t *testing.T) {
	h := NewTestHarness(5, 80)
	h.Send("\x1b[?40l\x1b[?3h")
	_, cols := h.Session.Size()
	if cols != 80 {
		t.Errorf("cols = %d, DECCOLM should be ignored", cols)
	}
}

func TestAltScreen1049(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("main\x1b[2;3H")
	h.Send("\x1b[?1049h")
	h.AssertText(t, 0, "")
	h.Send("alt")
	h.Send("\x1b[?1049l")
	h.AssertText(t, 0, "main")
	h.AssertCursor(t, 1, 2)
}

func TestAltScreenNoScrollback(t *testing.T) {
	h := NewTestHarness(2, 10)
	h.Send("\x1b[?1047h")
	h.Send("a\r\nb\r\nc\r\nd")
	if h.Session.ScrollbackLen() != 0 {
		t.Error("alt screen must not feed scrollback")
	}
}

func TestDECLRMMAndDECSLRM(t *testing.T) {
	h := NewTestHarness(5, 20)
	// Without DECLRMM, CSI s saves the cursor.
	h.Send("\x1b[2;4H\x1b[s\x1b[H\x1b[u")
	h.AssertCursor(t, 1, 3)
	// With it, CSI s sets margins.
	h.Send("\x1b[?69h\x1b[5;10s")
	h.AssertCursor(t, 0, 0)
	if l, r := h.Session.scrollLeft(), h.Session.scrollRight(); l != 4 || r != 9 {
		t.Errorf("margins = %d..%d, want 4..9", l, r)
	}
	// Wrap respects both horizontal margins.
	h.Send("\x1b[1;5Habcdefgh")
	h.AssertText(t, 1, "    gh")
}

func TestDECRQMReports(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"DECOM reset", "\x1b[?6$p", "\x1b[?6;2$y"},
		{"DECAWM set", "\x1b[?7$p", "\x1b[?7;1$y"},
		{"IRM reset", "\x1b[4$p", "\x1b[4;2$y"},
		{"unknown", "\x1b[?4242$p", "\x1b[?4242;0$y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHarness(3, 10)
			h.Send(tt.seq)
			if got := h.TakeReplies(); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsertMode(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("abc\x1b[1;1H\x1b[4hX")
	h.AssertText(t, 0, "Xabc")
}

func TestDSRReports(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("\x1b[3;4H\x1b[6n")
	if got := h.TakeReplies(); got != "\x1b[3;4R" {
		t.Errorf("CPR = %q", got)
	}
	h.Send("\x1b[?6n")
	if got := h.TakeReplies(); got != "\x1b[?3;4;1R" {
		t.Errorf("DECXCPR = %q", got)
	}
	h.Send("\x1b[5n")
	if got := h.TakeReplies(); got != "\x1b[0n" {
		t.Errorf("status = %q", got)
	}
}

func TestPrimaryDAPerLevel(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[c")
	if got := h.TakeReplies(); !strings.HasPrefix(got, "\x1b[?64;") {
		t.Errorf("VT420 DA = %q", got)
	}
	h.Send("\x1b[62;1\"p\x1b[c")
	if got := h.TakeReplies(); !strings.HasPrefix(got, "\x1b[?62;") {
		t.Errorf("VT220 DA = %q", got)
	}
}

func TestS8C1TReplies(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b G\x1b[6n")
	if got := h.TakeReplies(); got != "\x9b1;1R" {
		t.Errorf("8-bit CPR = %q", got)
	}
	h.Send("\x1b F\x1b[6n")
	if got := h.TakeReplies(); got != "\x1b[1;1R" {
		t.Errorf("7-bit CPR = %q", got)
	}
}

func TestDECSCLSetsLevel(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[61\"p")
	if h.Session.Level != LevelVT100 {
		t.Errorf("level = %v, want VT100", h.Session.Level)
	}
	h.Send("\x1b[64;1\"p")
	if h.Session.Level != LevelVT420 || h.Session.S8C1T {
		t.Errorf("level = %v s8c1t = %v, want VT420 with 7-bit", h.Session.Level, h.Session.S8C1T)
	}
}

func TestXTWINOPSResize(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("\x1b[8;30;100t")
	rows, cols := h.Session.Size()
	if rows != 30 || cols != 100 {
		t.Errorf("size = %dx%d, want 30x100", rows, cols)
	}
	h.Send("\x1b[18t")
	if got := h.TakeReplies(); got != "\x1b[8;30;100t" {
		t.Errorf("size report = %q", got)
	}
}

func TestResizeClamped(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Session.Resize(0, 99999)
	rows, cols := h.Session.Size()
	if rows != MinDim || cols != MaxDim {
		t.Errorf("size = %dx%d, want %dx%d", rows, cols, MinDim, MaxDim)
	}
}

func TestBracketedPaste(t *testing.T) {
	h := NewTestHarness(3, 10)
	if got := string(h.Session.EncodePaste([]byte("hi"))); got != "hi" {
		t.Errorf("paste without mode = %q", got)
	}
	h.Send("\x1b[?2004h")
	want := "\x1b[200~hi\x1b[201~"
	if got := string(h.Session.EncodePaste([]byte("hi"))); got != want {
		t.Errorf("paste = %q, want %q", got, want)
	}
}

func TestTitleStack(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b]2;first\x1b\\")
	h.Send("\x1b[22;2t")
	h.Send("\x1b]2;second\x07")
	if h.Session.Title != "second" {
		t.Fatalf("title = %q", h.Session.Title)
	}
	h.Send("\x1b[23;2t")
	if h.Session.Title != "first" {
		t.Errorf("popped title = %q, want first", h.Session.Title)
	}
}

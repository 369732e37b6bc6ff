// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/parser_test.go
// Summary: Core parsing and cursor motion tests.

package vt

import "testing"

func TestPrintAndWrap(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("hello")
	h.AssertText(t, 0, "hello")
	h.AssertCursor(t, 0, 5)

	// Fill to the last column: the cursor parks there with wrap pending.
	h.Send("12345")
	h.AssertCursor(t, 0, 9)
	h.Send("X")
	h.AssertCursor(t, 1, 1)
	h.AssertText(t, 1, "X")
}

func TestWrapDisabled(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("\x1b[?7l")
	h.Send("0123456789ABC")
	// Without autowrap the last column keeps being overwritten.
	h.AssertText(t, 0, "012345678C")
	h.AssertCursor(t, 0, 9)
}

func TestCursorMovement(t *testing.T) {
	tests := []struct {
		name     string
		seq      string
		row, col int
	}{
		{"CUP", "\x1b[3;4H", 2, 3},
		{"CUP defaults", "\x1b[5;5H\x1b[H", 0, 0},
		{"CUU clamps", "\x1b[3;1H\x1b[10A", 0, 0},
		{"CUD", "\x1b[2B", 2, 0},
		{"CUF", "\x1b[7C", 0, 7},
		{"CUB clamps", "\x1b[4C\x1b[10D", 0, 0},
		{"CHA", "\x1b[6G", 0, 5},
		{"VPA", "\x1b[4d", 3, 0},
		{"CNL", "\x1b[3;5H\x1b[E", 3, 0},
		{"CPL", "\x1b[3;5H\x1b[F", 1, 0},
		{"HVP", "\x1b[2;2f", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHarness(10, 20)
			h.Send(tt.seq)
			h.AssertCursor(t, tt.row, tt.col)
		})
	}
}

func TestIndexScrollsAtBottomMargin(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("aaa\r\nbbb\r\nccc")
	h.Send("\x1bD") // IND on the last row scrolls
	h.AssertText(t, 0, "bbb")
	h.AssertText(t, 1, "ccc")
	h.AssertText(t, 2, "")
	if h.Session.ScrollbackLen() != 1 {
		t.Errorf("scrollback len = %d, want 1", h.Session.ScrollbackLen())
	}
}

func TestReverseIndexScrollsAtTop(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("aaa\r\nbbb\r\nccc")
	h.Send("\x1b[H\x1bM")
	h.AssertText(t, 0, "")
	h.AssertText(t, 1, "aaa")
	h.AssertText(t, 2, "bbb")
}

func TestScrollRegion(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("1\r\n2\r\n3\r\n4\r\n5")
	h.Send("\x1b[2;4r") // rows 2-4
	h.AssertCursor(t, 0, 0)
	h.Send("\x1b[4;1H\n") // LF at the bottom margin scrolls only the region
	h.AssertText(t, 0, "1")
	h.AssertText(t, 1, "3")
	h.AssertText(t, 2, "4")
	h.AssertText(t, 3, "")
	h.AssertText(t, 4, "5")
}

func TestTabStops(t *testing.T) {
	h := NewTestHarness(3, 40)
	h.Send("\tX")
	h.AssertCursor(t, 0, 9)
	h.Send("\x1b[2;1H")
	h.Send("\x1b[10G\x1bH") // set a stop at column 10
	h.Send("\r\t")
	h.AssertCursor(t, 1, 8)
	h.Send("\t")
	h.AssertCursor(t, 1, 9)
	h.Send("\x1b[3g\r\t") // clear all: tab runs to the right edge
	h.AssertCursor(t, 1, 39)
}

func TestDECALN(t *testing.T) {
	h := NewTestHarness(3, 4)
	h.Send("\x1b[2;3r") // margins reset by DECALN
	h.Send("\x1b#8")
	for r := 0; r < 3; r++ {
		h.AssertText(t, r, "EEEE")
	}
	h.AssertCursor(t, 0, 0)
	top, bottom := h.Session.scrollTop(), h.Session.scrollBottom()
	if top != 0 || bottom != 2 {
		t.Errorf("margins = %d..%d, want 0..2", top, bottom)
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("\x1b[31m\x1b[3;4H\x1b7")
	h.Send("\x1b[0m\x1b[H")
	h.Send("\x1b8")
	h.AssertCursor(t, 2, 3)
	h.Send("X")
	cell := h.Cell(2, 3)
	if cell.FG != IndexedColor(1) {
		t.Errorf("restored pen FG = %+v, want red", cell.FG)
	}
}

func TestCharsetDECSpecial(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b(0qqq\x1b(B")
	h.AssertText(t, 0, "───")
	h.Send("x")
	h.AssertText(t, 0, "───x")
}

func TestCharsetShiftInOut(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b)0") // G1 = line drawing
	h.Send("a\x0eq\x0fa")
	h.AssertText(t, 0, "a─a")
}

func TestUTF8Decoding(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("héllo")
	h.AssertText(t, 0, "héllo")
}

func TestUTF8Invalid(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("a\xC3(b") // truncated sequence, then printable
	h.AssertText(t, 0, "a�(b")
}

func TestWideCharacter(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("你a")
	cell := h.Cell(0, 0)
	if cell.Rune != '你' || !cell.WideLeft {
		t.Errorf("cell 0 = %+v, want wide 你", cell)
	}
	if !h.Cell(0, 1).WideRight {
		t.Error("cell 1 should be the wide spacer")
	}
	if h.Cell(0, 2).Rune != 'a' {
		t.Error("a should land in column 2")
	}
}

func TestCombiningMark(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("éx")
	cell := h.Cell(0, 0)
	if len(cell.Combining) != 1 || cell.Combining[0] != 0x301 {
		t.Errorf("combining = %v, want [0x301]", cell.Combining)
	}
}

func TestREP(t *testing.T) {
	h := NewTestHarness(3, 20)
	h.Send("ab\x1b[3b")
	h.AssertText(t, 0, "abbbb")
}

func TestCANAbortsSequence(t *testing.T) {
	h := NewTestHarness(3, 20)
	h.Send("\x1b[3\x18Ahi")
	h.AssertText(t, 0, "Ahi")
	h.AssertCursor(t, 0, 3)
}

func TestVT52Mode(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("\x1b[?2l") // enter VT52
	if !h.Parser.InVT52() {
		t.Fatal("should be in VT52 mode")
	}
	h.Send("\x1bY")
	h.Send(string(rune(0x20 + 2)))
	h.Send(string(rune(0x20 + 3)))
	h.AssertCursor(t, 2, 3)
	h.Send("\x1bZ")
	if got := h.TakeReplies(); got != "\x1b/Z" {
		t.Errorf("identify reply = %q, want ESC /Z", got)
	}
	h.Send("\x1b<") // back to ANSI
	if h.Parser.InVT52() {
		t.Fatal("should have left VT52 mode")
	}
	h.Send("\x1b[1;1Hok")
	h.AssertText(t, 0, "ok")
}

func TestInsertDeleteLines(t *testing.T) {
	h := NewTestHarness(4, 10)
	h.Send("a\r\nb\r\nc\r\nd")
	h.Send("\x1b[2;1H\x1b[L")
	h.AssertText(t, 1, "")
	h.AssertText(t, 2, "b")
	h.Send("\x1b[M")
	h.AssertText(t, 1, "b")
	h.AssertText(t, 2, "c")
}

func TestInsertDeleteChars(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("abcdef\x1b[1;3H\x1b[2@")
	h.AssertText(t, 0, "ab  cdef")
	h.Send("\x1b[2P")
	h.AssertText(t, 0, "abcdef")
	h.Send("\x1b[2X")
	h.AssertText(t, 0, "ab  ef")
}

func TestEraseDisplay(t *testing.T) {
	h := NewTestHarness(3, 5)
	h.Send("aaaaa\r\nbbbbb\r\nccccc")
	h.Send("\x1b[2;3H\x1b[J")
	h.AssertText(t, 0, "aaaaa")
	h.AssertText(t, 1, "bb")
	h.AssertText(t, 2, "")
}

func TestEraseScrollback(t *testing.T) {
	h := NewTestHarness(2, 5)
	h.Send("a\r\nb\r\nc\r\nd")
	if h.Session.ScrollbackLen() == 0 {
		t.Fatal("expected scrollback rows")
	}
	h.Send("\x1b[3J")
	if h.Session.ScrollbackLen() != 0 {
		t.Errorf("scrollback len = %d after ED 3", h.Session.ScrollbackLen())
	}
}

func TestBackspaceReverseWrap(t *testing.T) {
	h := NewTestHarness(3, 5)
	h.Send("\x1b[?45h")
	h.Send("\x1b[2;1H\x08")
	h.AssertCursor(t, 0, 4)
}

func TestRIS(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("text\x1b[31m\x1b[2;5r")
	h.Send("\x1bc")
	h.AssertText(t, 0, "")
	h.AssertCursor(t, 0, 0)
	h.Send("x")
	if !h.Cell(0, 0).FG.IsDefault() {
		t.Error("pen should be reset after RIS")
	}
}

func TestUnknownSequencesReportWarning(t *testing.T) {
	type rep struct {
		level  ReportLevel
		source ReportSource
	}
	var got []rep
	h := NewTestHarness(3, 10, WithReporter(func(level ReportLevel, source ReportSource, msg string) {
		got = append(got, rep{level, source})
	}))
	h.Send("\x1b[<5y")    // unknown final with a private prefix
	h.Send("\x1b[?9876h") // unknown private mode
	if len(got) != 2 {
		t.Fatalf("reports = %d, want 2", len(got))
	}
	for i, r := range got {
		if r.level != LevelWarning {
			t.Errorf("report %d level = %v, want WARNING", i, r.level)
		}
	}
	if got[0].source != SourceParser {
		t.Errorf("unknown final reported from %v, want the parser", got[0].source)
	}
}

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/rect_test.go
// Summary: Rectangular editing and protection tests.

package vt

import (
	"strings"
	"testing"
)

func TestDECFRA(t *testing.T) {
	h := NewTestHarness(5, 10)
	h.Send("\x1b[42;2;2;4;5$x")
	h.AssertText(t, 0, "")
	h.AssertText(t, 1, " ****")
	h.AssertText(t, 2, " ****")
	h.AssertText(t, 3, " ****")
	h.AssertText(t, 4, "")
}

func TestDECFRASkipsProtected(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[1\"qL\x1b[0\"q") // L under DECSCA guard
	h.Send("\x1b[42;1;1;3;10$x")
	h.AssertText(t, 0, "L*********")
	h.AssertText(t, 1, "**********")
}

func TestDECFRAOutOfRangeChar(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("abc")
	h.Send("\x1b[7;1;1;3;10$x") // BEL is not a fill character
	h.AssertText(t, 0, "abc")
}

func TestDECERA(t *testing.T) {
	h := NewTestHarness(3, 6)
	h.Send("aaaaaa\r\nbbbbbb\r\ncccccc")
	h.Send("\x1b[1;2;2;5$z")
	h.AssertText(t, 0, "a    a")
	h.AssertText(t, 1, "b    b")
	h.AssertText(t, 2, "cccccc")
}

func TestDECSERAErasesOnlyUnprotected(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[1\"qAB\x1b[0\"qCD") // AB protected, CD not
	h.Send("\x1b[1;1;3;10${")
	h.AssertText(t, 0, "AB")
	if !h.Cell(0, 0).Protected {
		t.Error("protected flag should survive selective erase")
	}
}

func TestDECCRAOverlap(t *testing.T) {
	h := NewTestHarness(4, 10)
	h.Send("abcd\r\nefgh")
	// Copy rows 1-2 cols 1-4 onto itself shifted one right.
	h.Send("\x1b[1;1;2;4;1;1;2$v")
	h.AssertText(t, 0, "aabcd")
	h.AssertText(t, 1, "eefgh")
}

func TestDECCARASetsBold(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[2*x") // rectangle extent
	h.Send("hello")
	h.Send("\x1b[1;1;1;3;1$r")
	if h.Cell(0, 0).Attr&AttrBold == 0 || h.Cell(0, 2).Attr&AttrBold == 0 {
		t.Error("cells in the rectangle should be bold")
	}
	if h.Cell(0, 3).Attr&AttrBold != 0 {
		t.Error("cells past the rectangle should be untouched")
	}
}

func TestDECRARAToggles(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[2*x")
	h.Send("\x1b[7mab\x1b[0mcd")
	h.Send("\x1b[1;1;1;4;7$t")
	if h.Cell(0, 0).Attr&AttrReverse != 0 {
		t.Error("reversed cell should toggle off")
	}
	if h.Cell(0, 2).Attr&AttrReverse == 0 {
		t.Error("plain cell should toggle on")
	}
}

func TestDECRQCRAReply(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("ab")
	h.Send("\x1b[5;1;1;1;1;2*y")
	got := h.TakeReplies()
	if !strings.HasPrefix(got, "\x1bP5!~") || !strings.HasSuffix(got, "\x1b\\") {
		t.Fatalf("checksum reply framing wrong: %q", got)
	}
	if len(got) != len("\x1bP5!~XXXX\x1b\\") {
		t.Errorf("checksum should be four hex digits: %q", got)
	}
}

func TestProtectedCellsBlockScroll(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[1\"qP\x1b[0\"q")
	h.Send("\x1b[3;1H")
	before := h.RowText(0)
	h.Send("\n") // would scroll, but the region holds a protected cell
	if h.RowText(0) != before {
		t.Error("scroll should be suppressed while protected cells exist")
	}
}

func TestProtectedCellsBlockInsertLines(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[1\"qP\x1b[0\"q")
	h.Send("\x1b[1;1H\x1b[L")
	h.AssertText(t, 0, "P")
}

func TestECHHonorsProtection(t *testing.T) {
	h := NewTestHarness(3, 10)
	h.Send("\x1b[1\"qA\x1b[0\"qB")
	h.Send("\x1b[1;1H\x1b[2X")
	h.AssertText(t, 0, "A")
}

func TestDECICAndDECDC(t *testing.T) {
	h := NewTestHarness(3, 8)
	h.Send("abcdef")
	h.Send("\x1b[1;3H\x1b[2'}")
	h.AssertText(t, 0, "ab  cdef")
	h.Send("\x1b[2'~")
	h.AssertText(t, 0, "abcdef")
}

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/compositor_test.go
// Summary: Staging matrix and input routing tests over split layouts.

package term

import (
	"testing"

	"github.com/framegrace/texelcore/vt"
)

func TestComposeSplitLayout(t *testing.T) {
	tt := newTestTerm(t)
	tt.Resize(4, 20)
	tt.FeedSession(0, []byte("hi"))
	if _, err := tt.SplitActive(SplitHorizontal, 0.5); err != nil {
		t.Fatal(err)
	}
	tt.FeedSession(1, []byte("x"))

	c := tt.Frame()
	if got := c.Cell(0, 0).Rune; got != 'h' {
		t.Errorf("cell 0,0 = %q", got)
	}
	if got := c.Cell(1, 0).Rune; got != 'i' {
		t.Errorf("cell 1,0 = %q", got)
	}
	if got := c.Cell(10, 0).Rune; got != 'x' {
		t.Errorf("right pane origin = %q", got)
	}
	// Focus moved to the new pane; its cursor sits after the 'x'.
	if !c.CursorVisible || c.CursorX != 11 || c.CursorY != 0 {
		t.Errorf("cursor = %d,%d visible=%v", c.CursorX, c.CursorY, c.CursorVisible)
	}
	if c.FocusedRect != [4]int{10, 0, 10, 4} {
		t.Errorf("focused rect = %v", c.FocusedRect)
	}
}

func TestComposeWideGlyph(t *testing.T) {
	tt := newTestTerm(t)
	tt.FeedSession(0, []byte("世"))
	c := tt.Frame()
	left, right := c.Cell(0, 0), c.Cell(1, 0)
	if left.Rune != '世' || left.Width != 2 {
		t.Errorf("left half = %q width %d", left.Rune, left.Width)
	}
	if right.Width != 0 || right.Rune != 0 {
		t.Errorf("spacer = %q width %d", right.Rune, right.Width)
	}
}

func TestComposeReverseVideo(t *testing.T) {
	tt := newTestTerm(t)
	tt.FeedSession(0, []byte("\x1b[?5hA"))
	c := tt.Frame()
	defaults := vt.DefaultPalette()
	cell := c.Cell(0, 0)
	if cell.FG != defaults.DefaultBG || cell.BG != defaults.DefaultFG {
		t.Errorf("screen reverse not applied: %+v", cell)
	}
}

func TestComposeConceal(t *testing.T) {
	tt := newTestTerm(t)
	tt.Session(0).SetConcealRune('*')
	tt.FeedSession(0, []byte("\x1b[8mX"))
	c := tt.Frame()
	if got := c.Cell(0, 0).Rune; got != '*' {
		t.Errorf("concealed cell = %q", got)
	}
}

func TestComposeGridOverlay(t *testing.T) {
	tt := newTestTerm(t)
	tt.Instance(0).GridEnabled = true
	tt.Instance(0).GridColor = vt.RGB{R: 0x40, G: 0x40, B: 0x40}
	c := tt.Frame()
	if got := c.Cell(8, 4); got.Rune != '·' || got.FG != (vt.RGB{R: 0x40, G: 0x40, B: 0x40}) {
		t.Errorf("grid mark = %q %+v", got.Rune, got.FG)
	}
	tt.FeedSession(0, []byte("A"))
	if got := tt.Frame().Cell(0, 0).Rune; got != 'A' {
		t.Errorf("grid must not cover content, got %q", got)
	}
}

func TestSendMouseRoutesToPane(t *testing.T) {
	tt := newTestTerm(t)
	tt.Resize(4, 20)
	if _, err := tt.SplitActive(SplitHorizontal, 0.5); err != nil {
		t.Fatal(err)
	}
	tt.FeedSession(1, []byte("\x1b[?1000h\x1b[?1006h"))
	tt.Drain()

	tt.SendMouse(vt.MouseLeft, 15, 2, false, 0)
	if got := tt.out[1]; got != "\x1b[<0;6;3M" {
		t.Errorf("mouse report = %q", got)
	}
	if tt.FocusedIndex() != 1 {
		t.Errorf("press should focus the pane, focused = %d", tt.FocusedIndex())
	}
}

func TestSendKeyGoesToFocused(t *testing.T) {
	tt := newTestTerm(t)
	if _, err := tt.SplitActive(SplitVertical, 0.5); err != nil {
		t.Fatal(err)
	}
	tt.SendRune('q', 0)
	if tt.out[1] != "q" {
		t.Errorf("session 1 got %q", tt.out[1])
	}
	if tt.out[0] != "" {
		t.Errorf("session 0 got %q", tt.out[0])
	}

	tt.FocusAt(0, 0)
	tt.SendKey(vt.KeyUp, 0)
	if tt.out[0] != "\x1b[A" {
		t.Errorf("arrow key = %q", tt.out[0])
	}
}

func TestCloseActivePromotesAndRebinds(t *testing.T) {
	tt := newTestTerm(t)
	tt.Resize(10, 40)
	if _, err := tt.SplitActive(SplitHorizontal, 0.5); err != nil {
		t.Fatal(err)
	}
	if tt.Session(1) == nil {
		t.Fatal("split should bind session 1")
	}
	tt.CloseActive()
	if tt.Session(1) != nil {
		t.Error("closed session should be destroyed")
	}
	if r, c := tt.Session(0).Size(); r != 10 || c != 40 {
		t.Errorf("survivor size = %dx%d", c, r)
	}
	if tt.FocusedIndex() != 0 {
		t.Errorf("focused = %d", tt.FocusedIndex())
	}
}

func TestSplitActiveSessionLimit(t *testing.T) {
	tt := newTestTerm(t)
	tt.Resize(64, 200)
	for i := 1; i < MaxSessions; i++ {
		if _, err := tt.SplitActive(SplitVertical, 0.5); err != nil {
			t.Fatalf("split %d: %v", i, err)
		}
	}
	if _, err := tt.SplitActive(SplitVertical, 0.5); err == nil {
		t.Error("ninth session should be refused")
	}
}

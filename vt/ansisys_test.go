// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/ansisys_test.go
// Summary: ANSI.SYS compatibility personality tests.

package vt

import "testing"

func newANSISysHarness(rows, cols int) *TestHarness {
	return NewTestHarness(rows, cols, WithANSISys())
}

func TestANSISysENQ(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Send("\x05")
	if got := h.TakeReplies(); got != "ANSI.SYS" {
		t.Errorf("ENQ reply = %q", got)
	}
}

func TestANSISysEmptyDA(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Send("\x1b[c")
	if got := h.TakeReplies(); got != "" {
		t.Errorf("DA reply = %q, want nothing", got)
	}
}

func TestANSISysDropsModernSequences(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Send("abcdef\x1b[1;3H\x1b[2@") // ICH does not exist in ANSI.SYS
	h.AssertText(t, 0, "abcdef")
	h.Send("\x1b[2;4r") // DECSTBM neither
	if h.Session.scrollBottom() != 4 {
		t.Error("scroll region should be untouched")
	}
}

func TestANSISysAllowsClassicSet(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Send("\x1b[2;3Hhi\x1b[s\x1b[H\x1b[u")
	h.AssertCursor(t, 1, 4)
	h.Send("\x1b[2J")
	h.AssertText(t, 1, "")
}

func TestANSISysIgnoresPrivateModes(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Send("\x1b[?3h")
	if _, cols := h.Session.Size(); cols != 20 {
		t.Errorf("cols = %d, want 20: private modes do not exist in ANSI.SYS", cols)
	}
	h.Send("\x1b[?25l")
	if !h.Session.Modes.CursorVisible {
		t.Error("DECTCEM must be dropped")
	}
}

func TestANSISysClearHomesCursor(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Send("\x1b[3;4H\x1b[2J")
	h.AssertCursor(t, 0, 0)
}

func TestANSISysSGRRestricted(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Send("\x1b[38;5;123mX")
	if !h.Cell(0, 0).FG.IsDefault() {
		t.Error("extended color must be dropped")
	}
	h.Send("\x1b[31mY")
	if h.Cell(0, 1).FG != IndexedColor(1) {
		t.Error("classic color should work")
	}
}

func TestANSISysCGAPalette(t *testing.T) {
	h := newANSISysHarness(5, 20)
	got := h.Session.PaletteRef().Resolve(IndexedColor(3), false)
	if got != (RGB{0xAA, 0x55, 0x00}) {
		t.Errorf("color 3 = %+v, want CGA brown", got)
	}
}

func TestANSISysCP437(t *testing.T) {
	h := newANSISysHarness(5, 20)
	h.Parser.Parse([]byte{0xB0, 0xDB})
	h.AssertText(t, 0, "░█")
}

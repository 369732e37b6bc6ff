// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/keys_test.go
// Summary: Key and mouse encoding tests.

package vt

import (
	"bytes"
	"testing"
)

func TestArrowKeyModes(t *testing.T) {
	h := NewTestHarness(3, 10)
	if got := h.Session.EncodeKey(KeyUp, 0); string(got) != "\x1b[A" {
		t.Errorf("normal up = %q", got)
	}
	h.Send("\x1b[?1h")
	if got := h.Session.EncodeKey(KeyUp, 0); string(got) != "\x1bOA" {
		t.Errorf("application up = %q", got)
	}
	if got := h.Session.EncodeKey(KeyUp, ModCtrl); string(got) != "\x1b[1;5A" {
		t.Errorf("ctrl up = %q", got)
	}
}

func TestFunctionKeys(t *testing.T) {
	h := NewTestHarness(3, 10)
	tests := []struct {
		key  Key
		mod  Modifier
		want string
	}{
		{KeyF1, 0, "\x1bOP"},
		{KeyF1, ModShift, "\x1b[1;2P"},
		{KeyF5, 0, "\x1b[15~"},
		{KeyF12, ModCtrl, "\x1b[24;5~"},
		{KeyDelete, 0, "\x1b[3~"},
		{KeyPgUp, ModAlt, "\x1b[5;3~"},
	}
	for _, tt := range tests {
		if got := h.Session.EncodeKey(tt.key, tt.mod); string(got) != tt.want {
			t.Errorf("key %d mod %d = %q, want %q", tt.key, tt.mod, got, tt.want)
		}
	}
}

func TestEnterNewLineMode(t *testing.T) {
	h := NewTestHarness(3, 10)
	if got := h.Session.EncodeKey(KeyEnter, 0); string(got) != "\r" {
		t.Errorf("enter = %q", got)
	}
	h.Send("\x1b[20h")
	if got := h.Session.EncodeKey(KeyEnter, 0); string(got) != "\r\n" {
		t.Errorf("LNM enter = %q", got)
	}
}

func TestEncodeRuneModifiers(t *testing.T) {
	h := NewTestHarness(3, 10)
	if got := h.Session.EncodeRune('a', ModAlt); string(got) != "\x1ba" {
		t.Errorf("alt-a = %q", got)
	}
	if got := h.Session.EncodeRune('C', ModCtrl); !bytes.Equal(got, []byte{0x03}) {
		t.Errorf("ctrl-C = %v", got)
	}
}

func TestMouseModesFilterEvents(t *testing.T) {
	h := NewTestHarness(10, 20)
	if got := h.Session.EncodeMouse(MouseLeft, 3, 4, false, 0); got != nil {
		t.Fatal("no report with tracking off")
	}
	h.Send("\x1b[?1000h")
	got := h.Session.EncodeMouse(MouseLeft, 3, 4, false, 0)
	want := []byte{0x1B, '[', 'M', 32, 33 + 3, 33 + 4}
	if !bytes.Equal(got, want) {
		t.Errorf("X10 press = %v, want %v", got, want)
	}
	if got := h.Session.EncodeMouse(MouseLeft, 3, 4, true, 0); got != nil {
		t.Error("mode 1000 must not report motion")
	}
	h.Send("\x1b[?1003h")
	if got := h.Session.EncodeMouse(MouseRelease, 3, 4, true, 0); got == nil {
		t.Error("mode 1003 reports all motion")
	}
}

func TestMouseSGREncoding(t *testing.T) {
	h := NewTestHarness(10, 20)
	h.Send("\x1b[?1000h\x1b[?1006h")
	if got := h.Session.EncodeMouse(MouseLeft, 9, 4, false, 0); string(got) != "\x1b[<0;10;5M" {
		t.Errorf("SGR press = %q", got)
	}
	if got := h.Session.EncodeMouse(MouseRelease, 9, 4, false, 0); string(got) != "\x1b[<0;10;5m" {
		t.Errorf("SGR release = %q", got)
	}
	if got := h.Session.EncodeMouse(MouseWheelUp, 0, 0, false, 0); string(got) != "\x1b[<64;1;1M" {
		t.Errorf("SGR wheel = %q", got)
	}
}

func TestFocusReporting(t *testing.T) {
	h := NewTestHarness(3, 10)
	if h.Session.EncodeFocus(true) != nil {
		t.Fatal("no focus events unless enabled")
	}
	h.Send("\x1b[?1004h")
	if got := string(h.Session.EncodeFocus(true)); got != "\x1b[I" {
		t.Errorf("focus in = %q", got)
	}
	if got := string(h.Session.EncodeFocus(false)); got != "\x1b[O" {
		t.Errorf("focus out = %q", got)
	}
}

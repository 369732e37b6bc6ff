// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: display/screen_test.go
// Summary: Projection and input translation tests over a simulation screen.

package display

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelcore/term"
	"github.com/framegrace/texelcore/vt"
)

func newSimScreen(t *testing.T) (*Screen, *term.Terminal, map[int]string, tcell.SimulationScreen) {
	t.Helper()
	out := map[int]string{}
	terminal := term.NewTerminal(6, 20,
		term.WithReporter(func(vt.ReportLevel, vt.ReportSource, string) {}),
		term.WithOutput(func(idx int, p []byte) { out[idx] += string(p) }),
	)
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatal(err)
	}
	sim.SetSize(20, 6)
	s := NewScreenWith(terminal, nil, sim)
	return s, terminal, out, sim
}

func TestDrawProjectsFrame(t *testing.T) {
	s, terminal, _, sim := newSimScreen(t)
	defer s.Close()

	terminal.FeedSession(0, []byte("\x1b[31mAb"))
	s.draw()

	cells, w, _ := sim.GetContents()
	if cells[0].Runes[0] != 'A' || cells[1].Runes[0] != 'b' {
		t.Fatalf("row 0 = %q %q", cells[0].Runes, cells[1].Runes)
	}
	fg, _, _ := cells[0].Style.Decompose()
	if fg != tcell.NewRGBColor(0xCD, 0, 0) {
		t.Errorf("fg = %v", fg)
	}
	if w != 20 {
		t.Errorf("sim width = %d", w)
	}
	x, y, visible := sim.GetCursor()
	if !visible || x != 2 || y != 0 {
		t.Errorf("cursor = %d,%d visible=%v", x, y, visible)
	}
}

func TestKeyTranslation(t *testing.T) {
	s, _, out, _ := newSimScreen(t)
	defer s.Close()

	s.handleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	s.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	s.handleKey(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	if out[0] != "\x1b[Aq\x03" {
		t.Errorf("host-bound bytes = %q", out[0])
	}
}

func TestSplitChordSpawns(t *testing.T) {
	s, terminal, _, _ := newSimScreen(t)
	defer s.Close()

	spawned := -1
	s.Spawn = func(idx int) error { spawned = idx; return nil }
	s.handleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModCtrl))
	if spawned != 1 {
		t.Fatalf("spawned session = %d", spawned)
	}
	if got := len(terminal.Tree().Leaves()); got != 2 {
		t.Errorf("leaves = %d", got)
	}
	if terminal.FocusedIndex() != 1 {
		t.Errorf("focused = %d", terminal.FocusedIndex())
	}
}

func TestMouseTranslation(t *testing.T) {
	s, terminal, out, _ := newSimScreen(t)
	defer s.Close()

	terminal.FeedSession(0, []byte("\x1b[?1002h\x1b[?1006h"))
	terminal.Drain()
	out[0] = ""

	s.handleMouse(tcell.NewEventMouse(3, 1, tcell.Button1, 0))
	s.handleMouse(tcell.NewEventMouse(4, 1, tcell.Button1, 0))
	s.handleMouse(tcell.NewEventMouse(4, 1, tcell.ButtonNone, 0))
	want := "\x1b[<0;4;2M" + "\x1b[<32;5;2M" + "\x1b[<0;5;2m"
	if out[0] != want {
		t.Errorf("mouse reports = %q, want %q", out[0], want)
	}
}

func TestPasteBuffering(t *testing.T) {
	s, terminal, out, _ := newSimScreen(t)
	defer s.Close()

	terminal.FeedSession(0, []byte("\x1b[?2004h"))
	terminal.Drain()

	s.handleEvent(tcell.NewEventPaste(true))
	s.handleKey(tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone))
	s.handleKey(tcell.NewEventKey(tcell.KeyRune, 'i', tcell.ModNone))
	s.handleEvent(tcell.NewEventPaste(false))
	if out[0] != "\x1b[200~hi\x1b[201~" {
		t.Errorf("paste = %q", out[0])
	}
}

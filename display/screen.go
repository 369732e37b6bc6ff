// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: display/screen.go
// Summary: tcell front end: projects the staged frame onto a real terminal
//          and turns tcell input events into emulator keys and mouse reports.
// Usage: main builds a Screen over a term.Terminal and calls Run; Ctrl+Q
//        quits, Ctrl+arrows split, Ctrl+A cycles panes, Ctrl+W closes one.

package display

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelcore/term"
	"github.com/framegrace/texelcore/vt"
)

const (
	keyQuit       = tcell.KeyCtrlQ
	keySwitchPane = tcell.KeyCtrlA
	keyClosePane  = tcell.KeyCtrlW
)

type styleKey struct {
	fg, bg, ul vt.RGB
	attr       vt.Attr
}

// Screen manages the entire host terminal display using tcell as the backend.
type Screen struct {
	terminal    *term.Terminal
	tcellScreen tcell.Screen
	refresh     <-chan bool

	// Spawn starts the host process for a freshly split session slot.
	Spawn func(session int) error

	styleCache map[styleKey]tcell.Style
	quit       chan struct{}
	closeOnce  sync.Once

	lastButtons tcell.ButtonMask
	lastX       int
	lastY       int

	pasting  bool
	pasteBuf []rune
}

// NewScreen initializes tcell and sizes the terminal to the real surface.
func NewScreen(t *term.Terminal, refresh <-chan bool) (*Screen, error) {
	tcellScreen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := tcellScreen.Init(); err != nil {
		return nil, err
	}
	return NewScreenWith(t, refresh, tcellScreen), nil
}

// NewScreenWith wraps an already initialized tcell.Screen; tests run it
// against a simulation screen.
func NewScreenWith(t *term.Terminal, refresh <-chan bool, tcellScreen tcell.Screen) *Screen {
	defStyle := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)
	tcellScreen.SetStyle(defStyle)
	tcellScreen.EnableMouse()
	tcellScreen.EnablePaste()
	tcellScreen.HideCursor()

	w, h := tcellScreen.Size()
	t.Resize(h, w)

	return &Screen{
		terminal:    t,
		tcellScreen: tcellScreen,
		refresh:     refresh,
		styleCache:  make(map[styleKey]tcell.Style),
		quit:        make(chan struct{}),
		lastX:       -1,
		lastY:       -1,
	}
}

// Run starts the main event and rendering loop.
func (s *Screen) Run() error {
	eventChan := make(chan tcell.Event, 10)
	go func() {
		for {
			select {
			case <-s.quit:
				return
			default:
				eventChan <- s.tcellScreen.PollEvent()
			}
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	dirty := true
	for {
		select {
		case ev := <-eventChan:
			s.handleEvent(ev)
			dirty = true
		case <-s.refresh:
			dirty = true
		case <-ticker.C:
			if dirty {
				s.draw()
				dirty = false
			}
		case <-s.quit:
			return nil
		}
	}
}

// draw projects the staged frame cell by cell and places the cursor.
func (s *Screen) draw() {
	frame := s.terminal.Frame()
	cols, rows := frame.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cell := frame.Cell(x, y)
			if cell.Width == 0 {
				continue // covered by the wide rune to its left
			}
			s.tcellScreen.SetContent(x, y, cell.Rune, cell.Combining, s.getStyle(cell))
		}
	}
	if frame.CursorVisible {
		s.tcellScreen.ShowCursor(frame.CursorX, frame.CursorY)
	} else {
		s.tcellScreen.HideCursor()
	}
	s.tcellScreen.Show()
}

func (s *Screen) getStyle(cell term.RenderCell) tcell.Style {
	key := styleKey{fg: cell.FG, bg: cell.BG, ul: cell.UL, attr: cell.Attr}
	if st, ok := s.styleCache[key]; ok {
		return st
	}
	st := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(cell.FG.R), int32(cell.FG.G), int32(cell.FG.B))).
		Background(tcell.NewRGBColor(int32(cell.BG.R), int32(cell.BG.G), int32(cell.BG.B)))
	if cell.Attr&vt.AttrBold != 0 {
		st = st.Bold(true)
	}
	if cell.Attr&vt.AttrFaint != 0 {
		st = st.Dim(true)
	}
	if cell.Attr&vt.AttrItalic != 0 {
		st = st.Italic(true)
	}
	if cell.Attr&vt.AttrUnderline != 0 {
		st = st.Underline(true)
		if cell.UL != cell.FG {
			st = st.Underline(true, tcell.NewRGBColor(int32(cell.UL.R), int32(cell.UL.G), int32(cell.UL.B)))
		}
	}
	if cell.Attr&(vt.AttrBlinkSlow|vt.AttrBlinkFast) != 0 {
		st = st.Blink(true)
	}
	if cell.Attr&vt.AttrReverse != 0 {
		st = st.Reverse(true)
	}
	if cell.Attr&vt.AttrStrike != 0 {
		st = st.StrikeThrough(true)
	}
	s.styleCache[key] = st
	return st
}

// handleEvent processes key, mouse, paste and resize events, including the
// pane control chords.
func (s *Screen) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		s.handleKey(ev)
	case *tcell.EventMouse:
		s.handleMouse(ev)
	case *tcell.EventPaste:
		if ev.Start() {
			s.pasting = true
			s.pasteBuf = s.pasteBuf[:0]
		} else {
			s.pasting = false
			s.terminal.SendPaste([]byte(string(s.pasteBuf)))
		}
	case *tcell.EventResize:
		w, h := ev.Size()
		s.terminal.Resize(h, w)
		s.tcellScreen.Sync()
	}
}

func (s *Screen) handleKey(ev *tcell.EventKey) {
	key := ev.Key()
	mods := translateMods(ev.Modifiers())

	if s.pasting && key == tcell.KeyRune {
		s.pasteBuf = append(s.pasteBuf, ev.Rune())
		return
	}

	switch key {
	case keyQuit:
		s.Close()
		return
	case keyClosePane:
		s.terminal.CloseActive()
		return
	case keySwitchPane:
		s.cycleFocus()
		return
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		// Ctrl + arrows: split toward the arrow.
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			kind := term.SplitVertical
			if key == tcell.KeyLeft || key == tcell.KeyRight {
				kind = term.SplitHorizontal
			}
			if leaf, err := s.terminal.SplitActive(kind, 0.5); err == nil && s.Spawn != nil {
				s.Spawn(leaf.SessionIndex)
			}
			return
		}
	}

	if key == tcell.KeyRune {
		s.terminal.SendRune(ev.Rune(), mods)
		return
	}
	if k, ok := keyTable[key]; ok {
		s.terminal.SendKey(k, mods)
		return
	}
	// tcell reports Ctrl-letter chords as KeyCtrlA..KeyCtrlZ with the rune
	// carrying the letter; the encoder folds it back to the control byte.
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ && ev.Rune() != 0 {
		s.terminal.SendRune(ev.Rune(), mods)
		return
	}
	// Remaining control characters pass through as-is.
	if key > 0 && key < 0x20 {
		s.terminal.SendRune(rune(key), 0)
	}
}

// cycleFocus moves focus to the next leaf in layout order.
func (s *Screen) cycleFocus() {
	leaves := s.terminal.Tree().Leaves()
	if len(leaves) < 2 {
		return
	}
	cur := s.terminal.Tree().Focused()
	for i, leaf := range leaves {
		if leaf == cur {
			next := leaves[(i+1)%len(leaves)]
			s.terminal.FocusAt(next.X, next.Y)
			return
		}
	}
}

func (s *Screen) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	btns := ev.Buttons()
	mods := translateMods(ev.Modifiers())

	if btns&tcell.WheelUp != 0 {
		s.terminal.SendMouse(vt.MouseWheelUp, x, y, false, mods)
	}
	if btns&tcell.WheelDown != 0 {
		s.terminal.SendMouse(vt.MouseWheelDown, x, y, false, mods)
	}
	btns &^= tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight

	pressed := btns &^ s.lastButtons
	released := s.lastButtons &^ btns
	moved := x != s.lastX || y != s.lastY
	s.lastButtons = btns
	s.lastX, s.lastY = x, y

	switch {
	case pressed != 0:
		s.terminal.SendMouse(buttonFor(pressed), x, y, false, mods)
	case released != 0:
		s.terminal.SendMouse(vt.MouseRelease, x, y, false, mods)
	case moved:
		btn := vt.MouseRelease
		if btns != 0 {
			btn = buttonFor(btns)
		}
		s.terminal.SendMouse(btn, x, y, true, mods)
	}
}

func buttonFor(mask tcell.ButtonMask) vt.MouseButton {
	switch {
	case mask&tcell.Button1 != 0:
		return vt.MouseLeft
	case mask&tcell.Button3 != 0:
		return vt.MouseMiddle
	case mask&tcell.Button2 != 0:
		return vt.MouseRight
	}
	return vt.MouseRelease
}

func translateMods(m tcell.ModMask) vt.Modifier {
	var out vt.Modifier
	if m&tcell.ModShift != 0 {
		out |= vt.ModShift
	}
	if m&tcell.ModAlt != 0 {
		out |= vt.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		out |= vt.ModCtrl
	}
	return out
}

var keyTable = map[tcell.Key]vt.Key{
	tcell.KeyUp:         vt.KeyUp,
	tcell.KeyDown:       vt.KeyDown,
	tcell.KeyRight:      vt.KeyRight,
	tcell.KeyLeft:       vt.KeyLeft,
	tcell.KeyHome:       vt.KeyHome,
	tcell.KeyEnd:        vt.KeyEnd,
	tcell.KeyInsert:     vt.KeyInsert,
	tcell.KeyDelete:     vt.KeyDelete,
	tcell.KeyPgUp:       vt.KeyPgUp,
	tcell.KeyPgDn:       vt.KeyPgDn,
	tcell.KeyTab:        vt.KeyTab,
	tcell.KeyBacktab:    vt.KeyBacktab,
	tcell.KeyEnter:      vt.KeyEnter,
	tcell.KeyBackspace:  vt.KeyBackspace,
	tcell.KeyBackspace2: vt.KeyBackspace,
	tcell.KeyEsc:        vt.KeyEscape,
	tcell.KeyF1:         vt.KeyF1,
	tcell.KeyF2:         vt.KeyF2,
	tcell.KeyF3:         vt.KeyF3,
	tcell.KeyF4:         vt.KeyF4,
	tcell.KeyF5:         vt.KeyF5,
	tcell.KeyF6:         vt.KeyF6,
	tcell.KeyF7:         vt.KeyF7,
	tcell.KeyF8:         vt.KeyF8,
	tcell.KeyF9:         vt.KeyF9,
	tcell.KeyF10:        vt.KeyF10,
	tcell.KeyF11:        vt.KeyF11,
	tcell.KeyF12:        vt.KeyF12,
}

// Close shuts down tcell once.
func (s *Screen) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.tcellScreen.Fini()
	})
}

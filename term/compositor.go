// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/compositor.go
// Summary: Builds the renderer-facing staging matrix: every leaf session's
//          visible window copied into its pane rectangle, colors resolved
//          through that session's palette.
// Usage: Terminal.Frame calls Compose once per tick; the display layer
//        reads Cell and the cursor fields.

package term

import "github.com/framegrace/texelcore/vt"

// RenderCell is one staged cell with colors already resolved to RGB. Width
// is 2 for the left half of a wide glyph, 0 for its spacer, 1 otherwise.
type RenderCell struct {
	Rune      rune
	Combining []rune
	Attr      vt.Attr
	FG, BG    vt.RGB
	UL        vt.RGB
	Width     int
}

// Compositor owns the staging matrix. It is written only by the main
// thread, between structural changes.
type Compositor struct {
	cols, rows int
	cells      [][]RenderCell

	CursorX, CursorY int
	CursorVisible    bool
	CursorStyle      int

	// FocusedRect is the focused pane's rectangle, for renderers that
	// decorate the active pane.
	FocusedRect [4]int // x, y, w, h
}

// NewCompositor allocates a staging matrix of the given size.
func NewCompositor(cols, rows int) *Compositor {
	c := &Compositor{}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the matrix.
func (c *Compositor) Resize(cols, rows int) {
	c.cols, c.rows = cols, rows
	c.cells = make([][]RenderCell, rows)
	for i := range c.cells {
		c.cells[i] = make([]RenderCell, cols)
	}
}

// Size returns the matrix dimensions.
func (c *Compositor) Size() (cols, rows int) { return c.cols, c.rows }

// Cell returns the staged cell at x, y.
func (c *Compositor) Cell(x, y int) RenderCell {
	if y < 0 || y >= c.rows || x < 0 || x >= c.cols {
		return RenderCell{Rune: ' ', Width: 1}
	}
	return c.cells[y][x]
}

// Compose rebuilds the matrix from every leaf pane.
func (c *Compositor) Compose(t *Terminal) {
	defaults := vt.DefaultPalette()
	blank := RenderCell{
		Rune:  ' ',
		FG:    defaults.DefaultFG,
		BG:    defaults.DefaultBG,
		Width: 1,
	}
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = blank
		}
	}
	c.CursorVisible = false

	for _, leaf := range t.Tree().Leaves() {
		inst := t.Instance(leaf.SessionIndex)
		if inst == nil {
			continue
		}
		c.composePane(leaf, inst)
	}

	focused := t.Tree().Focused()
	if focused == nil {
		return
	}
	c.FocusedRect = [4]int{focused.X, focused.Y, focused.W, focused.H}
	if s := t.Session(focused.SessionIndex); s != nil && s.Modes.CursorVisible {
		cur := s.CursorPos()
		cx, cy := focused.X+cur.Col, focused.Y+cur.Row
		if cx < c.cols && cy < c.rows {
			c.CursorX, c.CursorY = cx, cy
			c.CursorVisible = true
			c.CursorStyle = s.CursorStyle()
		}
	}
}

func (c *Compositor) composePane(leaf *Pane, inst *Instance) {
	s := inst.Session
	pal := s.PaletteRef()
	srows, scols := s.Size()
	reverse := s.Modes.ReverseVideo

	for py := 0; py < leaf.H && py < srows; py++ {
		gy := leaf.Y + py
		if gy < 0 || gy >= c.rows {
			continue
		}
		row := s.Row(py)
		for px := 0; px < leaf.W && px < scols && px < len(row); px++ {
			gx := leaf.X + px
			if gx < 0 || gx >= c.cols {
				continue
			}
			c.cells[gy][gx] = resolveCell(s, pal, row[px], reverse)
		}
	}

	if inst.GridEnabled {
		c.overlayGrid(leaf, inst.GridColor)
	}
}

func resolveCell(s *vt.Session, pal *vt.Palette, cell vt.Cell, reverse bool) RenderCell {
	out := RenderCell{
		Rune:      cell.Rune,
		Combining: cell.Combining,
		Attr:      cell.Attr,
		FG:        pal.Resolve(cell.FG, false),
		BG:        pal.Resolve(cell.BG, true),
		UL:        pal.Resolve(cell.UL, false),
		Width:     1,
	}
	if reverse {
		out.FG, out.BG = out.BG, out.FG
	}
	if cell.Attr&vt.AttrConceal != 0 {
		out.Rune = s.ConcealRune()
		out.Combining = nil
	}
	switch {
	case cell.WideLeft:
		out.Width = 2
	case cell.WideRight:
		out.Width = 0
		out.Rune = 0
	}
	return out
}

// overlayGrid marks pane-local 8x4 intersections on blank cells, a debug
// aid toggled through Gateway SET GRID.
func (c *Compositor) overlayGrid(leaf *Pane, color vt.RGB) {
	for py := 0; py < leaf.H; py += 4 {
		for px := 0; px < leaf.W; px += 8 {
			gy, gx := leaf.Y+py, leaf.X+px
			if gy >= c.rows || gx >= c.cols {
				continue
			}
			if c.cells[gy][gx].Rune == ' ' {
				c.cells[gy][gx].Rune = '·'
				c.cells[gy][gx].FG = color
			}
		}
	}
}

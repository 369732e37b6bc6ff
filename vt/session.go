// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/session.go
// Summary: Session state: cell grid with scrollback, cursor, margins, modes,
//          charsets and the op queue that batches grid mutations.
// Usage: A Parser drives exactly one Session; the compositor reads rows
//        through Row and VisibleRow.

package vt

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Limits applied to resize requests regardless of origin.
const (
	MinDim = 1
	MaxDim = 2048
)

// DefaultScrollbackMax bounds retained scrolled-off rows.
const DefaultScrollbackMax = 10000

// Cursor is a grid position plus the pending-wrap flag that defers autowrap
// until the next printable.
type Cursor struct {
	Row, Col    int
	WrapPending bool
}

// SavedCursor captures the DECSC snapshot.
type SavedCursor struct {
	Cursor   Cursor
	Pen      Pen
	Charsets CharsetState
	Origin   bool
	Valid    bool
}

// Pen is the current writing attributes applied to stored cells.
type Pen struct {
	Attr      Attr
	FG, BG    Color
	UL, ST    Color
	Protected bool
}

// Modes groups the ANSI and DEC private mode flags the core honors.
type Modes struct {
	Insert        bool // IRM
	NewLine       bool // LNM
	SendReceive   bool // SRM, true means local echo off
	AppCursor     bool // DECCKM
	AppKeypad     bool // DECKPAM
	Origin        bool // DECOM
	AutoWrap      bool // DECAWM
	ReverseWrap   bool // DECXRLM reverse wraparound
	CursorVisible bool // DECTCEM
	Column132     bool // DECCOLM
	Allow132      bool // xterm mode 40
	NoClearOnCol  bool // DECNCSM
	LeftRight     bool // DECLRMM
	ReverseVideo  bool // DECSCNM
	AltScreen     bool
	SavedOnAlt    bool // 1049 saved the cursor on entry
	BracketPaste  bool
	FocusEvents   bool
	MouseMode     MouseMode
	MouseEnc      MouseEncoding
	FlowControl   bool
	CursorBlink   bool
}

// ConformanceLevel selects the emulated terminal generation.
type ConformanceLevel int

const (
	LevelVT100 ConformanceLevel = 1
	LevelVT220 ConformanceLevel = 2
	LevelVT320 ConformanceLevel = 3
	LevelVT420 ConformanceLevel = 4
)

// BlinkRates carries the three blink periods in milliseconds.
type BlinkRates struct {
	Fast, Slow, Background int
}

// Session is one emulated terminal screen. It is not internally locked; the
// owning terminal serializes parser input and frame reads.
type Session struct {
	ID string

	rows, cols int

	// Primary screen rows are a ring so a full-width scroll is a head bump.
	screen     [][]Cell
	screenHead int
	altScreen  [][]Cell

	scrollback    [][]Cell
	scrollbackMax int

	cursor     Cursor
	pen        Pen
	savedMain  SavedCursor
	savedAlt   SavedCursor
	charsets   CharsetState
	tabstops   []bool
	conceal    rune
	answerback string

	marginTop, marginBottom int
	marginLeft, marginRight int

	Modes Modes
	Level ConformanceLevel
	S8C1T bool
	Blink BlinkRates

	Title      string
	IconName   string
	titleStack []string

	palette Palette

	queue    *OpQueue
	dirty    []bool
	allDirty bool

	report Reporter
	output func(p []byte)

	// Graphics and soft font attachments.
	SoftFont *SoftFont
	Images   *ImageStore
	udk      map[int][]byte

	// RegisMacros may be shared across sessions by the owning terminal.
	RegisMacros map[byte]string

	lastPrinted rune
	hasPrinted  bool

	ansiSys bool

	// Hooks the parser installs so mode changes can switch emulation layers.
	vt52Hook func()
	tekHook  func(enable bool)

	onResizeRequest func(rows, cols int)

	// DECSACE extent: false = stream, true = rectangle.
	rectExtent bool

	cursorStyle int
}

// SessionOption configures NewSession.
type SessionOption func(*Session)

// WithReporter installs the error/diagnostic callback.
func WithReporter(r Reporter) SessionOption {
	return func(s *Session) { s.report = r }
}

// WithOutput installs the sink for host-bound reply bytes.
func WithOutput(fn func(p []byte)) SessionOption {
	return func(s *Session) { s.output = fn }
}

// WithScrollback overrides the scrollback row cap.
func WithScrollback(max int) SessionOption {
	return func(s *Session) { s.scrollbackMax = max }
}

// WithANSISys starts the session in ANSI.SYS compatibility mode.
func WithANSISys() SessionOption {
	return func(s *Session) { s.ansiSys = true }
}

// NewSession builds a session of the given size with power-on defaults.
func NewSession(id string, rows, cols int, opts ...SessionOption) *Session {
	rows = clampDim(rows)
	cols = clampDim(cols)
	s := &Session{
		ID:            id,
		rows:          rows,
		cols:          cols,
		scrollbackMax: DefaultScrollbackMax,
		report:        LogReporter,
		output:        func([]byte) {},
		answerback:    "texelcore VT420",
		Level:         LevelVT420,
		Blink:         BlinkRates{Fast: 255, Slow: 500, Background: 500},
		conceal:       ' ',
	}
	for _, o := range opts {
		o(s)
	}
	s.pen = Pen{FG: DefaultFG, BG: DefaultBG}
	s.palette = DefaultPalette()
	s.charsets = defaultCharsetState()
	s.Modes = Modes{AutoWrap: true, CursorVisible: true, Allow132: true, FlowControl: true, CursorBlink: true}
	s.marginBottom = rows - 1
	s.marginRight = cols - 1
	s.screen = makeGrid(rows, cols, s.blank())
	s.altScreen = makeGrid(rows, cols, s.blank())
	s.dirty = make([]bool, rows)
	s.allDirty = true
	s.resetTabs()
	s.Images = NewImageStore(s.report)
	s.queue = newOpQueue(s.applyOp, s.report)
	if s.ansiSys {
		s.enterANSISys()
	}
	return s
}

func clampDim(v int) int {
	if v < MinDim {
		return MinDim
	}
	if v > MaxDim {
		return MaxDim
	}
	return v
}

func makeGrid(rows, cols int, fill Cell) [][]Cell {
	g := make([][]Cell, rows)
	for i := range g {
		g[i] = make([]Cell, cols)
		for j := range g[i] {
			g[i][j] = fill
		}
	}
	return g
}

func (s *Session) blank() Cell {
	return blankCell(s.pen.FG, s.pen.BG)
}

// Size returns the current grid dimensions.
func (s *Session) Size() (rows, cols int) { return s.rows, s.cols }

// Cursor returns a copy of the cursor state.
func (s *Session) CursorPos() Cursor { return s.cursor }

// Palette exposes the active color table.
func (s *Session) PaletteRef() *Palette { return &s.palette }

// PenRef exposes the live writing attributes for the terminal control layer.
func (s *Session) PenRef() *Pen { return &s.pen }

// ConcealRune reports the replacement code point used for concealed cells.
func (s *Session) ConcealRune() rune { return s.conceal }

// SetConcealRune changes the replacement code point for concealed cells.
func (s *Session) SetConcealRune(r rune) {
	if r >= ' ' {
		s.conceal = r
	}
}

// SetLevel switches the conformance level directly, leaving modes and screen
// content alone. Leaving ANSI.SYS restores the standard palette and charsets.
func (s *Session) SetLevel(l ConformanceLevel) {
	if l < LevelVT100 || l > LevelVT420 {
		return
	}
	if s.ansiSys {
		s.ansiSys = false
		s.palette = DefaultPalette()
		s.charsets = defaultCharsetState()
		s.answerback = "texelcore VT420"
	}
	s.Level = l
}

// EnterANSISysLevel drops the session into ANSI.SYS compatibility.
func (s *Session) EnterANSISysLevel() {
	s.ansiSys = true
	s.enterANSISys()
}

// Respond queues host-bound bytes through the session's output sink, the same
// path DA and DSR replies take.
func (s *Session) Respond(msg string) { s.reply([]byte(msg)) }

// ResetTabStops clears every tab stop; default8 reinstalls a stop at every
// eighth column afterwards.
func (s *Session) ResetTabStops(default8 bool) {
	s.clearAllTabs()
	if default8 {
		for i := 8; i < s.cols; i += 8 {
			s.tabstops[i] = true
		}
	}
}

// row returns the live primary-screen row through the ring head. The alt
// screen is flat.
func (s *Session) row(i int) []Cell {
	if s.Modes.AltScreen {
		return s.altScreen[i]
	}
	return s.screen[(s.screenHead+i)%s.rows]
}

// Row returns row i for rendering, flushing pending ops first.
func (s *Session) Row(i int) []Cell {
	s.queue.Flush()
	if i < 0 || i >= s.rows {
		return nil
	}
	return s.row(i)
}

// ScrollbackLen reports retained scrolled-off rows, flushing pending ops
// first so queued scrolls are counted.
func (s *Session) ScrollbackLen() int {
	s.queue.Flush()
	return len(s.scrollback)
}

// ScrollbackRow returns scrollback row i, 0 being the oldest.
func (s *Session) ScrollbackRow(i int) []Cell {
	s.queue.Flush()
	if i < 0 || i >= len(s.scrollback) {
		return nil
	}
	return s.scrollback[i]
}

// VisibleRow maps offset rows of scrollback viewing: offset 0 shows the live
// screen, larger offsets reach back into history.
func (s *Session) VisibleRow(i, offset int) []Cell {
	s.queue.Flush()
	if offset <= 0 {
		return s.Row(i)
	}
	if offset > len(s.scrollback) {
		offset = len(s.scrollback)
	}
	idx := len(s.scrollback) - offset + i
	if idx < len(s.scrollback) {
		return s.scrollback[idx]
	}
	return s.Row(idx - len(s.scrollback))
}

// MarkDirty flags row i for the next frame.
func (s *Session) MarkDirty(i int) {
	if i >= 0 && i < len(s.dirty) {
		s.dirty[i] = true
	}
}

// MarkAllDirty flags the whole screen.
func (s *Session) MarkAllDirty() { s.allDirty = true }

// TakeDirty returns and clears the dirty row set. A nil slice with all=true
// means repaint everything.
func (s *Session) TakeDirty() (rows []int, all bool) {
	s.queue.Flush()
	if s.allDirty {
		s.allDirty = false
		for i := range s.dirty {
			s.dirty[i] = false
		}
		return nil, true
	}
	for i, d := range s.dirty {
		if d {
			rows = append(rows, i)
			s.dirty[i] = false
		}
	}
	return rows, false
}

// reply sends bytes toward the host application.
func (s *Session) reply(p []byte) { s.output(p) }

func (s *Session) replyf(format string, args ...any) {
	s.reply([]byte(fmt.Sprintf(format, args...)))
}

// csi emits the 7-bit or 8-bit CSI introducer per S8C1T.
func (s *Session) csi() string {
	if s.S8C1T {
		return "\x9b"
	}
	return "\x1b["
}

func (s *Session) dcsIntro() string {
	if s.S8C1T {
		return "\x90"
	}
	return "\x1bP"
}

func (s *Session) st() string {
	if s.S8C1T {
		return "\x9c"
	}
	return "\x1b\\"
}

// --- tab stops ---

func (s *Session) resetTabs() {
	s.tabstops = make([]bool, s.cols)
	for i := 8; i < s.cols; i += 8 {
		s.tabstops[i] = true
	}
}

func (s *Session) setTab(col int) {
	if col >= 0 && col < len(s.tabstops) {
		s.tabstops[col] = true
	}
}

func (s *Session) clearTab(col int) {
	if col >= 0 && col < len(s.tabstops) {
		s.tabstops[col] = false
	}
}

func (s *Session) clearAllTabs() {
	for i := range s.tabstops {
		s.tabstops[i] = false
	}
}

func (s *Session) nextTab(from int) int {
	for c := from + 1; c < s.cols; c++ {
		if s.tabstops[c] {
			return c
		}
	}
	return s.cols - 1
}

func (s *Session) prevTab(from int) int {
	for c := from - 1; c > 0; c-- {
		if s.tabstops[c] {
			return c
		}
	}
	return 0
}

// --- margins ---

// scrollTop/Bottom/Left/Right return the active scroll region bounds; the
// horizontal pair collapses to the full width unless DECLRMM is set.
func (s *Session) scrollTop() int    { return s.marginTop }
func (s *Session) scrollBottom() int { return s.marginBottom }

func (s *Session) scrollLeft() int {
	if s.Modes.LeftRight {
		return s.marginLeft
	}
	return 0
}

func (s *Session) scrollRight() int {
	if s.Modes.LeftRight {
		return s.marginRight
	}
	return s.cols - 1
}

// inScrollRegion reports whether the cursor sits inside all active margins.
func (s *Session) inScrollRegion() bool {
	return s.cursor.Row >= s.scrollTop() && s.cursor.Row <= s.scrollBottom() &&
		s.cursor.Col >= s.scrollLeft() && s.cursor.Col <= s.scrollRight()
}

// setVerticalMargins installs DECSTBM bounds, moving the cursor home.
func (s *Session) setVerticalMargins(top, bottom int) {
	if bottom <= top || top < 0 || bottom >= s.rows {
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("DECSTBM: rejected margins %d..%d", top+1, bottom+1))
		return
	}
	s.marginTop, s.marginBottom = top, bottom
	s.moveCursorAbsolute(0, 0)
}

// setHorizontalMargins installs DECSLRM bounds; only honored under DECLRMM.
func (s *Session) setHorizontalMargins(left, right int) {
	if !s.Modes.LeftRight {
		return
	}
	if right <= left || left < 0 || right >= s.cols {
		s.report(LevelWarning, SourceExecutor, fmt.Sprintf("DECSLRM: rejected margins %d..%d", left+1, right+1))
		return
	}
	s.marginLeft, s.marginRight = left, right
	s.moveCursorAbsolute(0, 0)
}

// --- cursor movement ---

// moveCursorAbsolute honors origin mode: coordinates are margin-relative when
// DECOM is set and the cursor cannot leave the margins.
func (s *Session) moveCursorAbsolute(row, col int) {
	if s.Modes.Origin {
		row += s.scrollTop()
		col += s.scrollLeft()
		row = clampInt(row, s.scrollTop(), s.scrollBottom())
		col = clampInt(col, s.scrollLeft(), s.scrollRight())
	} else {
		row = clampInt(row, 0, s.rows-1)
		col = clampInt(col, 0, s.cols-1)
	}
	s.cursor.Row, s.cursor.Col = row, col
	s.cursor.WrapPending = false
}

// moveCursorRelative clamps against the margins when the cursor starts inside
// them, otherwise against the screen edge.
func (s *Session) moveCursorRelative(dr, dc int) {
	top, bottom := 0, s.rows-1
	left, right := 0, s.cols-1
	if s.cursor.Row >= s.scrollTop() && s.cursor.Row <= s.scrollBottom() {
		top, bottom = s.scrollTop(), s.scrollBottom()
	}
	if s.cursor.Col >= s.scrollLeft() && s.cursor.Col <= s.scrollRight() {
		left, right = s.scrollLeft(), s.scrollRight()
	}
	s.cursor.Row = clampInt(s.cursor.Row+dr, top, bottom)
	s.cursor.Col = clampInt(s.cursor.Col+dc, left, right)
	s.cursor.WrapPending = false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- op application ---

// applyOp performs one queued mutation directly on the grid.
func (s *Session) applyOp(op *GridOp) {
	switch op.Kind {
	case OpSetCell:
		if op.Row >= 0 && op.Row < s.rows && op.Col >= 0 && op.Col < s.cols {
			s.row(op.Row)[op.Col] = op.Cell
			s.MarkDirty(op.Row)
		}
	case OpScrollRegion:
		s.applyScroll(op.Region, op.Count)
	case OpCopyRect:
		s.applyCopyRect(op.Src, op.Row, op.Col)
	case OpFillRect:
		s.applyFillRect(op.Dst, op.Fill)
	case OpSetAttrRect:
		s.applyAttrRect(op.Dst, op.Set, op.Clear, op.Reverse)
	case OpInsertLines:
		s.applyScroll(op.Region, -op.Count)
	case OpDeleteLines:
		s.applyScroll(op.Region, op.Count)
	case OpResizeGrid:
		s.applyResize(op.Rows, op.Cols)
	}
}

// applyScroll shifts the region content up (count > 0) or down (count < 0),
// filling vacated rows with blanks. A full-screen upward scroll on the
// primary screen rotates the ring and feeds scrollback.
func (s *Session) applyScroll(region Rect, count int) {
	region = region.Clamp(s.rows, s.cols)
	if region.Empty() || count == 0 {
		return
	}
	height := region.Bottom - region.Top + 1
	n := count
	if n < 0 {
		n = -n
	}
	if n > height {
		n = height
	}
	fullWidth := region.Left == 0 && region.Right == s.cols-1
	fullScreen := fullWidth && region.Top == 0 && region.Bottom == s.rows-1
	if count > 0 && fullScreen && !s.Modes.AltScreen {
		for i := 0; i < n; i++ {
			s.pushScrollback(s.row(0))
			head := s.screenHead
			s.screenHead = (s.screenHead + 1) % s.rows
			fresh := s.screen[head]
			for j := range fresh {
				fresh[j] = s.blank()
			}
		}
		s.MarkAllDirty()
		return
	}
	if count > 0 {
		for r := region.Top; r <= region.Bottom; r++ {
			dst := s.row(r)
			if r+n <= region.Bottom {
				src := s.row(r + n)
				copy(dst[region.Left:region.Right+1], src[region.Left:region.Right+1])
			} else {
				for c := region.Left; c <= region.Right; c++ {
					dst[c] = s.blank()
				}
			}
			s.MarkDirty(r)
		}
	} else {
		for r := region.Bottom; r >= region.Top; r-- {
			dst := s.row(r)
			if r-n >= region.Top {
				src := s.row(r - n)
				copy(dst[region.Left:region.Right+1], src[region.Left:region.Right+1])
			} else {
				for c := region.Left; c <= region.Right; c++ {
					dst[c] = s.blank()
				}
			}
			s.MarkDirty(r)
		}
	}
}

func (s *Session) pushScrollback(row []Cell) {
	if s.scrollbackMax <= 0 || s.Modes.AltScreen {
		return
	}
	saved := make([]Cell, len(row))
	copy(saved, row)
	s.scrollback = append(s.scrollback, saved)
	if len(s.scrollback) > s.scrollbackMax {
		drop := len(s.scrollback) - s.scrollbackMax
		s.scrollback = s.scrollback[drop:]
	}
}

// applyCopyRect moves src so its top-left lands at (dstRow, dstCol), handling
// overlap by staging through a scratch buffer.
func (s *Session) applyCopyRect(src Rect, dstRow, dstCol int) {
	src = src.Clamp(s.rows, s.cols)
	if src.Empty() {
		return
	}
	h := src.Bottom - src.Top + 1
	w := src.Right - src.Left + 1
	tmp := make([]Cell, 0, h*w)
	for r := src.Top; r <= src.Bottom; r++ {
		tmp = append(tmp, s.row(r)[src.Left:src.Right+1]...)
	}
	for r := 0; r < h; r++ {
		dr := dstRow + r
		if dr < 0 || dr >= s.rows {
			continue
		}
		dst := s.row(dr)
		for c := 0; c < w; c++ {
			dc := dstCol + c
			if dc < 0 || dc >= s.cols {
				continue
			}
			dst[dc] = tmp[r*w+c]
		}
		s.MarkDirty(dr)
	}
}

func (s *Session) applyFillRect(dst Rect, fill Cell) {
	dst = dst.Clamp(s.rows, s.cols)
	if dst.Empty() {
		return
	}
	for r := dst.Top; r <= dst.Bottom; r++ {
		row := s.row(r)
		for c := dst.Left; c <= dst.Right; c++ {
			row[c] = fill
		}
		s.MarkDirty(r)
	}
}

func (s *Session) applyAttrRect(dst Rect, set, clear Attr, reverse bool) {
	dst = dst.Clamp(s.rows, s.cols)
	if dst.Empty() {
		return
	}
	for r := dst.Top; r <= dst.Bottom; r++ {
		row := s.row(r)
		for c := dst.Left; c <= dst.Right; c++ {
			if reverse {
				row[c].Attr ^= set
			} else {
				row[c].Attr = (row[c].Attr &^ clear) | set
			}
		}
		s.MarkDirty(r)
	}
}

// applyResize rebuilds both screens at the new size, preserving as much
// content as fits anchored at the top-left, and resets margins.
func (s *Session) applyResize(rows, cols int) {
	rows = clampDim(rows)
	cols = clampDim(cols)
	if rows == s.rows && cols == s.cols {
		return
	}
	newMain := makeGrid(rows, cols, s.blank())
	newAlt := makeGrid(rows, cols, s.blank())
	keep := s.rows
	if rows < keep {
		keep = rows
	}
	keepCols := s.cols
	if cols < keepCols {
		keepCols = cols
	}
	for r := 0; r < keep; r++ {
		copy(newMain[r][:keepCols], s.screen[(s.screenHead+r)%s.rows][:keepCols])
		copy(newAlt[r][:keepCols], s.altScreen[r][:keepCols])
	}
	s.screen = newMain
	s.altScreen = newAlt
	s.screenHead = 0
	s.rows, s.cols = rows, cols
	s.marginTop, s.marginBottom = 0, rows-1
	s.marginLeft, s.marginRight = 0, cols-1
	s.cursor.Row = clampInt(s.cursor.Row, 0, rows-1)
	s.cursor.Col = clampInt(s.cursor.Col, 0, cols-1)
	s.cursor.WrapPending = false
	s.dirty = make([]bool, rows)
	s.resetTabs()
	s.MarkAllDirty()
}

// Resize changes the grid size immediately (the op queue is flushed first so
// pending ops land on the old geometry).
func (s *Session) Resize(rows, cols int) {
	s.queue.Flush()
	s.applyResize(rows, cols)
}

// --- printable path ---

// setCell enqueues a single cell write stamped with the current pen.
func (s *Session) setCell(row, col int, r rune) {
	c := Cell{
		Rune:      r,
		Attr:      s.pen.Attr,
		FG:        s.pen.FG,
		BG:        s.pen.BG,
		UL:        s.pen.UL,
		ST:        s.pen.ST,
		Protected: s.pen.Protected,
	}
	s.queue.Push(GridOp{Kind: OpSetCell, Row: row, Col: col, Cell: c})
}

// Print places one rune at the cursor, honoring deferred autowrap, wide
// glyphs, combining marks and insert mode.
func (s *Session) Print(r rune) {
	width := runewidth.RuneWidth(r)
	if width == 0 {
		s.printCombining(r)
		return
	}
	right := s.scrollRight()
	if s.cursor.Col > right {
		right = s.cols - 1
	}

	if s.cursor.WrapPending {
		if s.Modes.AutoWrap {
			s.carriageReturnToMargin()
			s.LineFeed()
		} else {
			s.cursor.WrapPending = false
		}
	}

	// A wide glyph that cannot fit in the last column wraps early (or
	// overwrites the final cell with a space when autowrap is off).
	if width == 2 && s.cursor.Col == right {
		if s.Modes.AutoWrap {
			s.setCell(s.cursor.Row, s.cursor.Col, ' ')
			s.carriageReturnToMargin()
			s.LineFeed()
		} else {
			width = 1
			r = ' '
		}
	}

	if s.Modes.Insert {
		s.insertCells(s.cursor.Row, s.cursor.Col, width)
	}

	s.setCell(s.cursor.Row, s.cursor.Col, r)
	if width == 2 {
		s.queue.Flush()
		s.row(s.cursor.Row)[s.cursor.Col].WideLeft = true
		if s.cursor.Col+1 <= right {
			half := s.blank()
			half.WideRight = true
			half.Attr = s.pen.Attr
			half.FG, half.BG = s.pen.FG, s.pen.BG
			s.row(s.cursor.Row)[s.cursor.Col+1] = half
		}
	}

	s.lastPrinted = r
	s.hasPrinted = true
	s.MarkDirty(s.cursor.Row)

	if s.cursor.Col+width > right {
		s.cursor.Col = right
		s.cursor.WrapPending = true
	} else {
		s.cursor.Col += width
	}
}

// printCombining appends a zero-width mark to the previously written cell.
func (s *Session) printCombining(r rune) {
	s.queue.Flush()
	col := s.cursor.Col
	if !s.cursor.WrapPending {
		col--
	}
	if col < 0 {
		return
	}
	cell := &s.row(s.cursor.Row)[col]
	if cell.WideRight && col > 0 {
		cell = &s.row(s.cursor.Row)[col-1]
	}
	cell.Combining = append(cell.Combining, r)
	s.MarkDirty(s.cursor.Row)
}

// insertCells shifts the rest of the row right by n inside the margins.
func (s *Session) insertCells(row, col, n int) {
	s.queue.Flush()
	right := s.scrollRight()
	if col > right {
		right = s.cols - 1
	}
	cells := s.row(row)
	for c := right; c >= col+n; c-- {
		cells[c] = cells[c-n]
	}
	for c := col; c < col+n && c <= right; c++ {
		cells[c] = s.blank()
	}
	s.MarkDirty(row)
}

// carriageReturnToMargin moves to the active left margin.
func (s *Session) carriageReturnToMargin() {
	s.cursor.Col = s.scrollLeft()
	s.cursor.WrapPending = false
}

// --- control motions ---

// LineFeed advances one row, scrolling when the cursor sits on the bottom
// margin, and also returns the carriage under LNM.
func (s *Session) LineFeed() {
	s.Index()
	if s.Modes.NewLine {
		s.carriageReturnToMargin()
	}
}

// Index moves down one row, scrolling at the bottom margin.
func (s *Session) Index() {
	s.cursor.WrapPending = false
	if s.cursor.Row == s.scrollBottom() && s.inHorizontalMargins() {
		s.scrollRegionUp(1)
		return
	}
	if s.cursor.Row < s.rows-1 {
		s.cursor.Row++
	}
}

// ReverseIndex moves up one row, scrolling down at the top margin.
func (s *Session) ReverseIndex() {
	s.cursor.WrapPending = false
	if s.cursor.Row == s.scrollTop() && s.inHorizontalMargins() {
		s.scrollRegionDown(1)
		return
	}
	if s.cursor.Row > 0 {
		s.cursor.Row--
	}
}

func (s *Session) inHorizontalMargins() bool {
	return s.cursor.Col >= s.scrollLeft() && s.cursor.Col <= s.scrollRight()
}

// CarriageReturn moves to the left margin (or column 0 when left of it).
func (s *Session) CarriageReturn() {
	if s.cursor.Col < s.scrollLeft() {
		s.cursor.Col = 0
	} else {
		s.cursor.Col = s.scrollLeft()
	}
	s.cursor.WrapPending = false
}

// Backspace moves left one column, reverse-wrapping when DECXRLM and DECAWM
// are both set.
func (s *Session) Backspace() {
	s.cursor.WrapPending = false
	left := s.scrollLeft()
	if s.cursor.Col > left {
		s.cursor.Col--
		return
	}
	if s.Modes.ReverseWrap && s.Modes.AutoWrap && s.cursor.Row > s.scrollTop() {
		s.cursor.Row--
		s.cursor.Col = s.scrollRight()
	}
}

// Tab advances to the next tab stop.
func (s *Session) Tab() {
	s.cursor.Col = s.nextTab(s.cursor.Col)
	s.cursor.WrapPending = false
}

// BackTab moves to the previous tab stop.
func (s *Session) BackTab() {
	s.cursor.Col = s.prevTab(s.cursor.Col)
	s.cursor.WrapPending = false
}

// scrollRegionUp queues an upward scroll of the active region, refusing when
// protected cells would be destroyed.
func (s *Session) scrollRegionUp(n int) {
	region := Rect{Top: s.scrollTop(), Left: s.scrollLeft(), Bottom: s.scrollBottom(), Right: s.scrollRight()}
	if s.regionHasProtected(region) {
		s.report(LevelInfo, SourceExecutor, "scroll suppressed: region contains protected cells")
		return
	}
	s.queue.Push(GridOp{Kind: OpScrollRegion, Region: region, Count: n})
}

func (s *Session) scrollRegionDown(n int) {
	region := Rect{Top: s.scrollTop(), Left: s.scrollLeft(), Bottom: s.scrollBottom(), Right: s.scrollRight()}
	if s.regionHasProtected(region) {
		s.report(LevelInfo, SourceExecutor, "scroll suppressed: region contains protected cells")
		return
	}
	s.queue.Push(GridOp{Kind: OpScrollRegion, Region: region, Count: -n})
}

// regionHasProtected flushes pending ops then scans for protected cells.
func (s *Session) regionHasProtected(region Rect) bool {
	s.queue.Flush()
	region = region.Clamp(s.rows, s.cols)
	for r := region.Top; r <= region.Bottom; r++ {
		row := s.row(r)
		for c := region.Left; c <= region.Right; c++ {
			if row[c].Protected {
				return true
			}
		}
	}
	return false
}

// --- save/restore and screens ---

// SaveCursor records the DECSC snapshot for the active screen.
func (s *Session) SaveCursor() {
	saved := SavedCursor{
		Cursor:   s.cursor,
		Pen:      s.pen,
		Charsets: s.charsets,
		Origin:   s.Modes.Origin,
		Valid:    true,
	}
	if s.Modes.AltScreen {
		s.savedAlt = saved
	} else {
		s.savedMain = saved
	}
}

// RestoreCursor applies the DECRC snapshot, or homes with defaults when no
// save exists.
func (s *Session) RestoreCursor() {
	saved := s.savedMain
	if s.Modes.AltScreen {
		saved = s.savedAlt
	}
	if !saved.Valid {
		s.cursor = Cursor{}
		s.pen = Pen{FG: DefaultFG, BG: DefaultBG}
		s.Modes.Origin = false
		return
	}
	s.cursor = saved.Cursor
	s.pen = saved.Pen
	s.charsets = saved.Charsets
	s.Modes.Origin = saved.Origin
	s.cursor.Row = clampInt(s.cursor.Row, 0, s.rows-1)
	s.cursor.Col = clampInt(s.cursor.Col, 0, s.cols-1)
}

// EnterAltScreen switches to the alternate screen. clear wipes it first,
// save additionally runs DECSC beforehand (mode 1049).
func (s *Session) EnterAltScreen(clear, save bool) {
	if s.Modes.AltScreen {
		return
	}
	if save {
		s.SaveCursor()
		s.Modes.SavedOnAlt = true
	}
	// Queued ops still target the primary grid; land them before the switch.
	s.queue.Flush()
	s.Modes.AltScreen = true
	if clear {
		s.queue.Push(GridOp{Kind: OpFillRect, Dst: Rect{0, 0, s.rows - 1, s.cols - 1}, Fill: s.blank()})
	}
	s.MarkAllDirty()
}

// ExitAltScreen returns to the primary screen, restoring the cursor when the
// entry saved it.
func (s *Session) ExitAltScreen(restore bool) {
	if !s.Modes.AltScreen {
		return
	}
	s.queue.Flush()
	s.Modes.AltScreen = false
	if restore && s.Modes.SavedOnAlt {
		s.RestoreCursor()
		s.Modes.SavedOnAlt = false
	}
	s.MarkAllDirty()
}

// AlignmentFill implements DECALN: fill the screen with E, reset margins and
// home the cursor.
func (s *Session) AlignmentFill() {
	s.marginTop, s.marginBottom = 0, s.rows-1
	s.marginLeft, s.marginRight = 0, s.cols-1
	fill := blankCell(DefaultFG, DefaultBG)
	fill.Rune = 'E'
	s.queue.Push(GridOp{Kind: OpFillRect, Dst: Rect{0, 0, s.rows - 1, s.cols - 1}, Fill: fill})
	s.cursor = Cursor{}
	s.MarkAllDirty()
}

// SoftReset implements DECSTR.
func (s *Session) SoftReset() {
	s.Modes.Insert = false
	s.Modes.Origin = false
	s.Modes.AppCursor = false
	s.Modes.AppKeypad = false
	s.Modes.AutoWrap = true
	s.Modes.CursorVisible = true
	s.Modes.LeftRight = false
	s.marginTop, s.marginBottom = 0, s.rows-1
	s.marginLeft, s.marginRight = 0, s.cols-1
	s.pen = Pen{FG: DefaultFG, BG: DefaultBG}
	s.charsets = defaultCharsetState()
	s.savedMain.Valid = false
	s.savedAlt.Valid = false
	s.cursor.WrapPending = false
}

// HardReset implements RIS: everything back to power-on except the size.
func (s *Session) HardReset() {
	s.queue.Flush()
	s.SoftReset()
	s.Modes = Modes{AutoWrap: true, CursorVisible: true, Allow132: true, FlowControl: true, CursorBlink: true}
	s.cursor = Cursor{}
	s.palette = DefaultPalette()
	s.scrollback = nil
	s.screenHead = 0
	s.resetTabs()
	s.Title = ""
	s.IconName = ""
	s.Level = LevelVT420
	s.S8C1T = false
	s.SoftFont = nil
	if s.Images != nil {
		s.Images.Clear()
	}
	for r := 0; r < s.rows; r++ {
		row := s.row(r)
		for c := range row {
			row[c] = blankCell(DefaultFG, DefaultBG)
		}
	}
	for r := range s.altScreen {
		for c := range s.altScreen[r] {
			s.altScreen[r][c] = blankCell(DefaultFG, DefaultBG)
		}
	}
	if s.ansiSys {
		s.enterANSISys()
	}
	s.MarkAllDirty()
}

// Flush applies all pending grid ops. Callers render after this returns.
func (s *Session) Flush() { s.queue.Flush() }

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/tek.go
// Summary: Tektronix 4010 ingester. Mode 38 routes the byte stream here
//          until ESC ETX (or ESC and a mode reset) leaves Tek emulation.

package vt

// Tek storage tube address space.
const (
	tekWidth  = 1024
	tekHeight = 780
)

// TekSurfaceID reserves a store slot for the Tek surface.
const TekSurfaceID uint32 = 0xFFFFFFFD

type tekMode int

const (
	tekAlpha tekMode = iota
	tekGraph
)

// TekIngester consumes the raw byte stream while Tektronix emulation is
// active and plots vectors onto an image overlay.
type TekIngester struct {
	session *Session
	active  bool
	mode    tekMode
	escape  bool

	hiY, loY, hiX int
	haveHiY       bool
	haveLoY       bool
	penX, penY    int
	penDown       bool

	alphaX, alphaY int
}

// NewTekIngester builds an inactive ingester bound to a session.
func NewTekIngester(s *Session) *TekIngester {
	return &TekIngester{session: s}
}

// Active reports whether the ingester currently owns the byte stream.
func (t *TekIngester) Active() bool { return t.active }

// Enter switches into Tek emulation with a cleared pen.
func (t *TekIngester) Enter() {
	t.active = true
	t.mode = tekAlpha
	t.escape = false
	t.penDown = false
	t.session.report(LevelInfo, SourceGraphics, "Entered Tektronix emulation")
}

// Exit leaves Tek emulation.
func (t *TekIngester) Exit() {
	if !t.active {
		return
	}
	t.active = false
	t.session.report(LevelInfo, SourceGraphics, "Left Tektronix emulation")
}

func (t *TekIngester) surface() *Image {
	img, ok := t.session.Images.Get(TekSurfaceID)
	if !ok {
		var err error
		img, err = NewImage(TekSurfaceID, tekWidth, tekHeight)
		if err != nil {
			return nil
		}
		img.Visible = true
		t.session.Images.Put(img)
	}
	return img
}

// Feed consumes one byte, reporting whether the display changed.
func (t *TekIngester) Feed(b byte) (dirty bool) {
	if t.escape {
		t.escape = false
		switch b {
		case 0x03: // ETX leaves Tek mode
			t.Exit()
		case 0x0C: // FF clears the screen
			if img := t.surface(); img != nil {
				for i := range img.Pixels {
					img.Pixels[i] = 0
				}
			}
			t.alphaX, t.alphaY = 0, 0
			return true
		}
		return false
	}
	switch b {
	case 0x1B:
		t.escape = true
		return false
	case 0x1D: // GS enters graph mode with the pen up
		t.mode = tekGraph
		t.penDown = false
		t.haveHiY, t.haveLoY = false, false
		return false
	case 0x1F: // US returns to alpha mode
		t.mode = tekAlpha
		return false
	case 0x18: // CAN leaves Tek mode
		t.Exit()
		return false
	}
	if t.mode == tekGraph {
		return t.feedVector(b)
	}
	return t.feedAlpha(b)
}

// feedVector accumulates the 4010 coordinate bytes. Tags in bits 5-6 mark
// which component a byte carries.
func (t *TekIngester) feedVector(b byte) bool {
	switch b >> 5 {
	case 1: // 0x20-0x3F: high Y or high X
		if !t.haveHiY || t.haveLoY {
			t.hiY = int(b & 0x1F)
			t.haveHiY = true
			t.haveLoY = false
		} else {
			t.hiX = int(b & 0x1F)
		}
		return false
	case 3: // 0x60-0x7F: low Y
		t.loY = int(b & 0x1F)
		t.haveLoY = true
		return false
	case 2: // 0x40-0x5F: low X terminates the address
		loX := int(b & 0x1F)
		x := t.hiX<<5 | loX
		y := t.hiY<<5 | t.loY
		return t.plot(x, y)
	}
	return false
}

func (t *TekIngester) plot(x, y int) bool {
	img := t.surface()
	if img == nil {
		return false
	}
	// Tek addresses grow upward; the image grows downward.
	px := clampInt(x, 0, tekWidth-1)
	py := clampInt(tekHeight-1-y, 0, tekHeight-1)
	green := RGB{0x33, 0xFF, 0x33}
	if t.penDown {
		st := &regisState{img: img, color: green}
		st.line(t.penX, t.penY, px, py)
	} else {
		img.Set(px, py, green)
	}
	t.penX, t.penY = px, py
	t.penDown = true
	return true
}

// feedAlpha plots printable characters as 7x9 cell advances without glyph
// rendering; the storage tube text path matters far less than vectors.
func (t *TekIngester) feedAlpha(b byte) bool {
	switch b {
	case 0x0D:
		t.alphaX = 0
	case 0x0A:
		t.alphaY += 11
	default:
		if b >= 0x20 && b < 0x7F {
			t.alphaX += 8
			if t.alphaX >= tekWidth {
				t.alphaX = 0
				t.alphaY += 11
			}
		}
	}
	return false
}

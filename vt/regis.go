// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/regis.go
// Summary: ReGIS interpreter: position, vector and circle drawing onto an
//          image overlay, with named macros expanded at parse time.

package vt

import (
	"fmt"
	"strconv"
	"strings"
)

// regisWidth/Height fix the drawing surface at the classic VT340 resolution.
const (
	regisWidth  = 800
	regisHeight = 480
)

const (
	regisMaxMacroDepth = 8
	// regisMaxMacroBytes bounds one recorded macro body; recording stops
	// silently at the cap.
	regisMaxMacroBytes = 4096
)

type regisState struct {
	img    *Image
	x, y   int
	color  RGB
	macros map[byte]string
	report Reporter
}

// handleRegis runs a DCS p payload against the session's ReGIS surface. The
// surface persists across invocations until erased with S(E).
func (s *Session) handleRegis(params *Params, data []byte) {
	_ = params
	img, ok := s.Images.Get(RegisSurfaceID)
	if !ok {
		var err error
		img, err = NewImage(RegisSurfaceID, regisWidth, regisHeight)
		if err != nil {
			s.report(LevelError, SourceGraphics, fmt.Sprintf("ReGIS: %v", err))
			return
		}
		img.Visible = true
		s.Images.Put(img)
	}
	if s.RegisMacros == nil {
		s.RegisMacros = make(map[byte]string)
	}
	st := &regisState{
		img:    img,
		color:  RGB{0xC0, 0xC0, 0xC0},
		macros: s.RegisMacros,
		report: s.report,
	}
	st.run(string(data), 0)
	s.MarkAllDirty()
}

// RegisSurfaceID reserves a store slot for the ReGIS surface.
const RegisSurfaceID uint32 = 0xFFFFFFFE

func (st *regisState) run(src string, depth int) {
	if depth > regisMaxMacroDepth {
		st.report(LevelError, SourceGraphics, "ReGIS: macro recursion limit reached")
		return
	}
	i := 0
	for i < len(src) {
		c := src[i]
		switch c {
		case 'P', 'p':
			i++
			coords, adv := regisCoords(src[i:])
			i += adv
			if len(coords) > 0 {
				st.x, st.y = st.applyCoord(coords[len(coords)-1])
			}
		case 'V', 'v':
			i++
			coords, adv := regisCoords(src[i:])
			i += adv
			for _, co := range coords {
				nx, ny := st.applyCoord(co)
				st.line(st.x, st.y, nx, ny)
				st.x, st.y = nx, ny
			}
		case 'C', 'c':
			i++
			coords, adv := regisCoords(src[i:])
			i += adv
			if len(coords) > 0 {
				cx, cy := st.applyCoord(coords[0])
				dx, dy := cx-st.x, cy-st.y
				st.circle(st.x, st.y, isqrt(dx*dx+dy*dy))
			}
		case 'S', 's':
			i++
			opts, adv := regisOptions(src[i:])
			i += adv
			if strings.Contains(strings.ToUpper(opts), "E") {
				for p := range st.img.Pixels {
					st.img.Pixels[p] = 0
				}
			}
		case 'W', 'w':
			i++
			opts, adv := regisOptions(src[i:])
			i += adv
			st.writingControls(opts)
		case 'T', 't':
			i++
			_, adv := regisOptions(src[i:])
			i += adv
			// Text strings follow in quotes; rasterized text is out of scope
			// for the overlay, a report suffices.
			str, adv2 := regisQuoted(src[i:])
			i += adv2
			if str != "" {
				st.report(LevelDebug, SourceGraphics, fmt.Sprintf("ReGIS: text %q dropped", str))
			}
		case '@':
			i++
			i += st.macro(src[i:], depth)
		case ';', ' ', '\n', '\r', ',':
			i++
		default:
			i++
		}
	}
}

// macro handles @: definitions (@:Xbody@;) and invocations (@X).
func (st *regisState) macro(src string, depth int) int {
	if src == "" {
		return 0
	}
	if src[0] == ':' {
		if len(src) < 2 {
			return len(src)
		}
		name := src[1]
		end := strings.Index(src, "@;")
		if end < 0 {
			st.report(LevelWarning, SourceGraphics, "ReGIS: unterminated macro definition")
			return len(src)
		}
		body := src[2:end]
		if len(body) > regisMaxMacroBytes {
			body = body[:regisMaxMacroBytes]
		}
		st.macros[name] = body
		return end + 2
	}
	if src[0] == '.' {
		// @. clears all macros.
		for k := range st.macros {
			delete(st.macros, k)
		}
		return 1
	}
	name := src[0]
	if body, ok := st.macros[name]; ok {
		st.run(body, depth+1)
	} else {
		st.report(LevelWarning, SourceGraphics, fmt.Sprintf("ReGIS: undefined macro %c", name))
	}
	return 1
}

// writingControls picks the intensity/color out of a W option list.
func (st *regisState) writingControls(opts string) {
	up := strings.ToUpper(opts)
	if i := strings.Index(up, "I("); i >= 0 {
		rest := up[i+2:]
		if j := strings.IndexByte(rest, ')'); j >= 0 {
			st.color = regisIntensity(rest[:j])
		}
	}
}

// regisIntensity maps I() specs: a digit indexes the base colors, a letter
// picks by initial (R, G, B, C, M, Y, W, D).
func regisIntensity(spec string) RGB {
	spec = strings.TrimSpace(spec)
	if n, err := strconv.Atoi(spec); err == nil {
		std := DefaultPalette()
		return std.Colors[clampInt(n, 0, 15)]
	}
	switch {
	case strings.Contains(spec, "R"):
		return RGB{0xFF, 0x00, 0x00}
	case strings.Contains(spec, "G"):
		return RGB{0x00, 0xFF, 0x00}
	case strings.Contains(spec, "B"):
		return RGB{0x00, 0x00, 0xFF}
	case strings.Contains(spec, "C"):
		return RGB{0x00, 0xFF, 0xFF}
	case strings.Contains(spec, "M"):
		return RGB{0xFF, 0x00, 0xFF}
	case strings.Contains(spec, "Y"):
		return RGB{0xFF, 0xFF, 0x00}
	case strings.Contains(spec, "D"):
		return RGB{0x00, 0x00, 0x00}
	}
	return RGB{0xC0, 0xC0, 0xC0}
}

type regisCoord struct {
	x, y       int
	relX, relY bool
}

// applyCoord resolves a possibly-relative coordinate against the pen.
func (st *regisState) applyCoord(c regisCoord) (int, int) {
	x, y := c.x, c.y
	if c.relX {
		x += st.x
	}
	if c.relY {
		y += st.y
	}
	return clampInt(x, 0, regisWidth-1), clampInt(y, 0, regisHeight-1)
}

// regisCoords parses a run of [x,y] bracket groups.
func regisCoords(src string) ([]regisCoord, int) {
	var out []regisCoord
	i := 0
	for i < len(src) {
		if src[i] == ' ' || src[i] == ',' {
			i++
			continue
		}
		if src[i] != '[' {
			break
		}
		end := strings.IndexByte(src[i:], ']')
		if end < 0 {
			break
		}
		body := src[i+1 : i+end]
		i += end + 1
		xs, ys, _ := strings.Cut(body, ",")
		var co regisCoord
		co.x, co.relX = regisValue(xs)
		co.y, co.relY = regisValue(ys)
		out = append(out, co)
	}
	return out, i
}

// regisValue parses one coordinate component; a +/- prefix marks it relative.
func regisValue(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, true
	}
	rel := v[0] == '+' || v[0] == '-'
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true
	}
	return n, rel
}

// regisOptions consumes a parenthesized option group.
func regisOptions(src string) (string, int) {
	i := 0
	for i < len(src) && src[i] == ' ' {
		i++
	}
	if i >= len(src) || src[i] != '(' {
		return "", i
	}
	depth := 0
	start := i + 1
	for ; i < len(src); i++ {
		if src[i] == '(' {
			depth++
		} else if src[i] == ')' {
			depth--
			if depth == 0 {
				return src[start:i], i + 1
			}
		}
	}
	return src[start:], i
}

// regisQuoted consumes a 'text' or "text" literal.
func regisQuoted(src string) (string, int) {
	i := 0
	for i < len(src) && src[i] == ' ' {
		i++
	}
	if i >= len(src) || (src[i] != '\'' && src[i] != '"') {
		return "", i
	}
	quote := src[i]
	end := strings.IndexByte(src[i+1:], quote)
	if end < 0 {
		return src[i+1:], len(src)
	}
	return src[i+1 : i+1+end], i + end + 2
}

// line draws with the integer Bresenham walk.
func (st *regisState) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		st.img.Set(x0, y0, st.color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (st *regisState) circle(cx, cy, r int) {
	if r <= 0 {
		st.img.Set(cx, cy, st.color)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		st.img.Set(cx+x, cy+y, st.color)
		st.img.Set(cx+y, cy+x, st.color)
		st.img.Set(cx-y, cy+x, st.color)
		st.img.Set(cx-x, cy+y, st.color)
		st.img.Set(cx-x, cy-y, st.color)
		st.img.Set(cx-y, cy-x, st.color)
		st.img.Set(cx+y, cy-x, st.color)
		st.img.Set(cx+x, cy-y, st.color)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func isqrt(v int) int {
	if v <= 0 {
		return 0
	}
	r := v
	for r*r > v {
		r = (r + v/r) / 2
	}
	return r
}

// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/sixel.go
// Summary: Sixel decoder. A DCS q payload becomes an image anchored at the
//          cursor cell.

package vt

import "fmt"

// sixelMaxDim bounds a single axis so a malicious raster attribute cannot
// force a huge allocation before the byte cap check.
const sixelMaxDim = 10000

type sixelDecoder struct {
	img     *Image
	palette [256]RGB
	color   int
	x, y    int
	repeat  int
	maxX    int
	report  Reporter
}

// handleSixel decodes a complete sixel payload and places the result at the
// cursor position.
func (s *Session) handleSixel(params *Params, data []byte) {
	_ = params // P1 (aspect) and P2 (background) are accepted and ignored
	dec := &sixelDecoder{report: s.report, repeat: 1}
	dec.defaultPalette()

	w, h := sixelMeasure(data)
	if w <= 0 || h <= 0 {
		s.report(LevelWarning, SourceGraphics, "Sixel: empty payload")
		return
	}
	id := s.Images.nextID
	s.Images.nextID++
	img, err := NewImage(id, w, h)
	if err != nil {
		s.report(LevelError, SourceGraphics, fmt.Sprintf("Sixel: %v", err))
		return
	}
	dec.img = img
	dec.run(data)

	img.Row = s.cursor.Row
	img.Col = s.cursor.Col
	img.Visible = true
	s.Images.Put(img)
	s.MarkAllDirty()

	// The cursor advances past the image like text would.
	cellRows := (h + 15) / 16
	for i := 0; i < cellRows; i++ {
		s.Index()
	}
	s.carriageReturnToMargin()
}

// sixelMeasure walks the payload once to size the image.
func sixelMeasure(data []byte) (w, h int) {
	x, y, maxX, repeat := 0, 0, 0, 1
	i := 0
	for i < len(data) {
		b := data[i]
		switch {
		case b == '"':
			// Raster attributes: Pan;Pad;Ph;Pv.
			i++
			nums, adv := sixelNumbers(data[i:])
			i += adv
			if len(nums) >= 4 && nums[2] > 0 && nums[3] > 0 {
				pw := clampInt(nums[2], 1, sixelMaxDim)
				ph := clampInt(nums[3], 1, sixelMaxDim)
				if pw > maxX {
					maxX = pw
				}
				if y+ph > h {
					h = y + ph
				}
			}
			continue
		case b == '!':
			i++
			nums, adv := sixelNumbers(data[i:])
			i += adv
			repeat = 1
			if len(nums) > 0 {
				repeat = clampInt(nums[0], 1, sixelMaxDim)
			}
			continue
		case b == '#':
			i++
			_, adv := sixelNumbers(data[i:])
			i += adv
			continue
		case b == '$':
			x = 0
			repeat = 1
		case b == '-':
			x = 0
			y += 6
			repeat = 1
		case b >= '?' && b <= '~':
			x += repeat
			if x > maxX {
				maxX = x
			}
			if y+6 > h {
				h = y + 6
			}
			repeat = 1
		}
		i++
	}
	if maxX > sixelMaxDim {
		maxX = sixelMaxDim
	}
	if h > sixelMaxDim {
		h = sixelMaxDim
	}
	return maxX, h
}

func (d *sixelDecoder) run(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		switch {
		case b == '"':
			i++
			_, adv := sixelNumbers(data[i:])
			i += adv
			continue
		case b == '!':
			i++
			nums, adv := sixelNumbers(data[i:])
			i += adv
			d.repeat = 1
			if len(nums) > 0 {
				d.repeat = clampInt(nums[0], 1, sixelMaxDim)
			}
			continue
		case b == '#':
			i++
			nums, adv := sixelNumbers(data[i:])
			i += adv
			d.selectColor(nums)
			continue
		case b == '$':
			d.x = 0
			d.repeat = 1
		case b == '-':
			d.x = 0
			d.y += 6
			d.repeat = 1
		case b >= '?' && b <= '~':
			bits := b - '?'
			for r := 0; r < d.repeat; r++ {
				for bit := 0; bit < 6; bit++ {
					if bits&(1<<bit) != 0 {
						d.img.Set(d.x, d.y+bit, d.palette[d.color])
					}
				}
				d.x++
			}
			d.repeat = 1
		}
		i++
	}
}

// selectColor handles the # introducer: a bare index selects, a full
// definition (index;system;a;b;c) also programs the entry.
func (d *sixelDecoder) selectColor(nums []int) {
	if len(nums) == 0 {
		return
	}
	idx := clampInt(nums[0], 0, 255)
	d.color = idx
	if len(nums) < 5 {
		return
	}
	switch nums[1] {
	case 1:
		// HLS: hue 0-360, lightness and saturation 0-100.
		d.palette[idx] = hlsToRGB(nums[2], nums[3], nums[4])
	case 2:
		// RGB percentages.
		d.palette[idx] = RGB{
			uint8(clampInt(nums[2], 0, 100) * 255 / 100),
			uint8(clampInt(nums[3], 0, 100) * 255 / 100),
			uint8(clampInt(nums[4], 0, 100) * 255 / 100),
		}
	}
}

func (d *sixelDecoder) defaultPalette() {
	std := DefaultPalette()
	for i := 0; i < 16; i++ {
		d.palette[i] = std.Colors[i]
	}
}

// hlsToRGB converts the DEC HLS color system (hue offset 120 degrees from
// the conventional one).
func hlsToRGB(h, l, sat int) RGB {
	hf := float64((h+240)%360) / 360.0
	lf := float64(clampInt(l, 0, 100)) / 100.0
	sf := float64(clampInt(sat, 0, 100)) / 100.0
	if sf == 0 {
		v := uint8(lf * 255)
		return RGB{v, v, v}
	}
	var q float64
	if lf < 0.5 {
		q = lf * (1 + sf)
	} else {
		q = lf + sf - lf*sf
	}
	p := 2*lf - q
	conv := func(t float64) uint8 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(v * 255)
	}
	return RGB{conv(hf + 1.0/3), conv(hf), conv(hf - 1.0/3)}
}

// sixelNumbers reads a semicolon-separated run of decimal numbers, returning
// them and the bytes consumed.
func sixelNumbers(data []byte) ([]int, int) {
	var nums []int
	cur, have := 0, false
	i := 0
	for ; i < len(data); i++ {
		b := data[i]
		if b >= '0' && b <= '9' {
			if cur < 1<<24 {
				cur = cur*10 + int(b-'0')
			}
			have = true
			continue
		}
		if b == ';' {
			nums = append(nums, cur)
			cur, have = 0, false
			continue
		}
		break
	}
	if have {
		nums = append(nums, cur)
	}
	return nums, i
}

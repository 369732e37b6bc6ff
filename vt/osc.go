// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/osc.go
// Summary: Operating system commands: window title, icon name, dynamic
//          palette entries and the default color queries.

package vt

import (
	"fmt"
	"strconv"
	"strings"
)

const maxTitleStack = 10

func (s *Session) executeOSC(data []byte) {
	str := string(data)
	code, rest, found := strings.Cut(str, ";")
	if !found {
		rest = ""
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		s.report(LevelWarning, SourceParser, fmt.Sprintf("Malformed OSC %q", truncateForLog(str)))
		return
	}
	switch n {
	case 0:
		s.Title = rest
		s.IconName = rest
	case 1:
		s.IconName = rest
	case 2:
		s.Title = rest
	case 4:
		s.setPaletteEntries(rest)
	case 10:
		s.dynamicColor(n, rest, &s.palette.DefaultFG)
	case 11:
		s.dynamicColor(n, rest, &s.palette.DefaultBG)
	case 12:
		s.dynamicColor(n, rest, &s.palette.CursorColor)
	case 104:
		s.resetPaletteEntries(rest)
	case 110:
		s.palette.DefaultFG = defaultForeground
		s.MarkAllDirty()
	case 111:
		s.palette.DefaultBG = defaultBackground
		s.MarkAllDirty()
	case 112:
		s.palette.CursorColor = defaultForeground
	default:
		s.report(LevelWarning, SourceParser, fmt.Sprintf("Unhandled OSC %d", n))
	}
}

// setPaletteEntries parses OSC 4 pairs: index;spec[;index;spec...]. A spec of
// "?" queries the current value.
func (s *Session) setPaletteEntries(rest string) {
	parts := strings.Split(rest, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(parts[i])
		if err != nil || idx < 0 || idx > 255 {
			continue
		}
		spec := parts[i+1]
		if spec == "?" {
			r, g, b := s.palette.Colors[idx].RGB()
			s.replyf("\x1b]4;%d;rgb:%04x/%04x/%04x\x1b\\", idx, uint16(r)*257, uint16(g)*257, uint16(b)*257)
			continue
		}
		if rgb, ok := ParseColorSpec(spec); ok {
			s.palette.Colors[idx] = rgb
			s.MarkAllDirty()
		} else {
			s.report(LevelWarning, SourceParser, fmt.Sprintf("OSC 4: bad color spec %q", truncateForLog(spec)))
		}
	}
}

func (s *Session) resetPaletteEntries(rest string) {
	std := DefaultPalette()
	if rest == "" {
		s.palette.Colors = std.Colors
		s.MarkAllDirty()
		return
	}
	for _, part := range strings.Split(rest, ";") {
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 && idx <= 255 {
			s.palette.Colors[idx] = std.Colors[idx]
		}
	}
	s.MarkAllDirty()
}

// dynamicColor handles OSC 10/11/12: "?" queries, otherwise sets.
func (s *Session) dynamicColor(code int, rest string, slot *RGB) {
	if rest == "?" {
		r, g, b := slot.RGB()
		s.replyf("\x1b]%d;rgb:%04x/%04x/%04x\x1b\\", code, uint16(r)*257, uint16(g)*257, uint16(b)*257)
		return
	}
	if rgb, ok := ParseColorSpec(rest); ok {
		*slot = rgb
		s.MarkAllDirty()
	}
}

func (s *Session) pushTitle(which int) {
	if len(s.titleStack) >= maxTitleStack {
		s.titleStack = s.titleStack[1:]
	}
	_ = which
	s.titleStack = append(s.titleStack, s.Title)
}

func (s *Session) popTitle(which int) {
	_ = which
	if len(s.titleStack) == 0 {
		return
	}
	s.Title = s.titleStack[len(s.titleStack)-1]
	s.titleStack = s.titleStack[:len(s.titleStack)-1]
}

func truncateForLog(v string) string {
	if len(v) > 64 {
		return v[:64] + "..."
	}
	return v
}

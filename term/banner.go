// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/banner.go
// Summary: Gateway PIPE BANNER: rasterizes text through a bitmap font into
//          full-block cell art, with alignment and an RGB gradient.
// Usage: The Gateway parses the option string and feeds the rendered bytes
//        into the target session like host output.

package term

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/framegrace/texelcore/vt"
)

// BannerAlign selects horizontal placement on the target width.
type BannerAlign int

const (
	AlignLeft BannerAlign = iota
	AlignCenter
	AlignRight
)

// BannerOptions is the parsed PIPE BANNER parameter set.
type BannerOptions struct {
	Text     string
	Font     string
	Align    BannerAlign
	Kerned   bool
	Gradient bool
	From, To vt.RGB
}

// ParseBannerOptions understands TEXT=, FONT=, ALIGN=, GRADIENT=c1|c2 and
// MODE=KERNED key pairs, bare text, and the legacy leading KERNED/FIXED
// flag followed by the banner text.
func ParseBannerOptions(params string) BannerOptions {
	var o BannerOptions
	lx := NewLexer(params)
	first := true
	for {
		tok := lx.Next()
		if tok.Type == TokEOF {
			return o
		}
		if tok.Type == TokSemicolon {
			continue
		}
		if first && (tok.Is("KERNED") || tok.Is("FIXED")) {
			o.Kerned = tok.Is("KERNED")
			o.Text = strings.TrimPrefix(strings.TrimSpace(lx.Rest()), ";")
			return o
		}
		first = false

		if tok.Type == TokString {
			o.Text = tok.Text
			continue
		}
		if tok.Type != TokIdent {
			continue
		}
		key := tok.Text
		next := lx.Next()
		if next.Type != TokEquals {
			// Positional text.
			o.Text = key
			continue
		}
		switch strings.ToUpper(key) {
		case "TEXT":
			val := lx.Next()
			o.Text = val.Text
		case "FONT":
			val := lx.Next()
			o.Font = val.Text
		case "ALIGN":
			switch strings.ToUpper(lx.Next().Text) {
			case "CENTER":
				o.Align = AlignCenter
			case "RIGHT":
				o.Align = AlignRight
			default:
				o.Align = AlignLeft
			}
		case "MODE":
			if strings.ToUpper(lx.Next().Text) == "KERNED" {
				o.Kerned = true
			}
		case "GRADIENT":
			spec := lx.Segment()
			c1, c2, found := strings.Cut(spec, "|")
			if !found {
				continue
			}
			from, ok1 := vt.ParseColorSpec(strings.TrimSpace(c1))
			to, ok2 := vt.ParseColorSpec(strings.TrimSpace(c2))
			if ok1 && ok2 {
				o.Gradient = true
				o.From, o.To = from, to
			}
		default:
			lx.Segment()
		}
	}
}

// glyphSpan is the rendered column range of one banner character.
type glyphSpan struct {
	rows       []byte
	start, end int // inclusive pixel columns; end < start means skip
	pad        int // trailing blank columns
}

func bannerSpans(f *BannerFont, text string, kerned bool) []glyphSpan {
	spans := make([]glyphSpan, 0, len(text))
	for _, r := range text {
		g, ok := f.Glyph(r)
		if !ok {
			g = make([]byte, f.Height)
		}
		sp := glyphSpan{rows: g, start: 0, end: f.Width - 1}
		if kerned {
			begin, end, inked := f.Metrics(r)
			switch {
			case inked:
				sp.start, sp.end, sp.pad = begin, end, 1
			case r == ' ':
				sp.start, sp.end = 0, f.Width/2
			default:
				sp.start, sp.end = 0, -1
			}
		}
		spans = append(spans, sp)
	}
	return spans
}

func (sp glyphSpan) width() int {
	if sp.end < sp.start {
		return 0
	}
	return sp.end - sp.start + 1 + sp.pad
}

// gradientAt blends the two endpoint colors at position i of n glyphs.
func gradientAt(o BannerOptions, i, n int) vt.RGB {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	from := colorful.Color{R: float64(o.From.R) / 255, G: float64(o.From.G) / 255, B: float64(o.From.B) / 255}
	to := colorful.Color{R: float64(o.To.R) / 255, G: float64(o.To.G) / 255, B: float64(o.To.B) / 255}
	r, g, b := from.BlendRgb(to, t).RGB255()
	return vt.RGB{R: r, G: g, B: b}
}

// RenderBanner produces the escape-laced text lines for the banner,
// terminated with CRLF per glyph row, ready to feed into a session.
func RenderBanner(f *BannerFont, o BannerOptions, cols int) []byte {
	if o.Text == "" {
		return nil
	}
	spans := bannerSpans(f, o.Text, o.Kerned)

	total := 0
	for _, sp := range spans {
		total += sp.width()
	}
	padding := 0
	switch o.Align {
	case AlignCenter:
		padding = (cols - total) / 2
	case AlignRight:
		padding = cols - total
	}
	if padding < 0 {
		padding = 0
	}

	var out strings.Builder
	for y := 0; y < f.Height; y++ {
		out.WriteString(strings.Repeat(" ", padding))
		for i, sp := range spans {
			if o.Gradient {
				c := gradientAt(o, i, len(spans))
				fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
			}
			row := sp.rows[y]
			for x := sp.start; x <= sp.end; x++ {
				if row>>(f.Width-1-x)&1 == 1 {
					out.WriteRune('█')
				} else {
					out.WriteByte(' ')
				}
			}
			for p := 0; p < sp.pad; p++ {
				out.WriteByte(' ')
			}
		}
		if o.Gradient {
			out.WriteString("\x1b[0m")
		}
		out.WriteString("\r\n")
	}
	return []byte(out.String())
}

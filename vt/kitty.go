// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/kitty.go
// Summary: Kitty graphics protocol over APC. Supports chunked uploads of raw
//          RGB/RGBA and PNG payloads, placement, deletion and animation
//          frames, under the store-wide resident byte cap.

package vt

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"strconv"
	"strings"
)

type kittyCommand struct {
	action  byte
	format  int
	id      uint32
	hasID   bool
	more    bool
	quiet   int
	width   int
	height  int
	cols    int
	rowSpan int
	payload []byte
}

// handleKittyGraphics processes one APC G string (already stripped of the
// leading G).
func (s *Session) handleKittyGraphics(data []byte) {
	cmd, err := parseKittyCommand(data)
	if err != nil {
		s.report(LevelWarning, SourceGraphics, fmt.Sprintf("Kitty: %v", err))
		return
	}
	st := s.Images

	switch cmd.action {
	case 't', 'T':
		s.kittyTransmit(cmd, cmd.action == 'T')
	case 'p':
		s.kittyPlace(cmd)
	case 'd':
		if cmd.id != 0 {
			st.Delete(cmd.id)
		} else {
			st.Clear()
		}
		s.MarkAllDirty()
	case 'f':
		s.kittyFrame(cmd)
	case 'q':
		// Query support: answer OK for formats we decode.
		s.kittyReply(cmd, "OK")
	default:
		s.report(LevelDebug, SourceGraphics, fmt.Sprintf("Kitty: unhandled action %c", cmd.action))
	}
}

// kittyTransmit accumulates chunks and installs the payload once the final
// chunk lands. Continuation chunks may omit i=; they extend the transfer
// still in flight. The payload is kept exactly as transmitted; pixel decode
// is a best effort for the overlay and never discards the upload.
func (s *Session) kittyTransmit(cmd *kittyCommand, display bool) {
	st := s.Images
	if !cmd.hasID && st.uploadActive {
		cmd.id = st.uploadID
	}
	up := st.pending[cmd.id]
	if up == nil {
		up = &upload{format: cmd.format, w: cmd.width, h: cmd.height}
		st.pending[cmd.id] = up
	}
	st.uploadID = cmd.id
	st.uploadActive = cmd.more
	if display {
		up.display = true
	}
	if up.failed {
		if !cmd.more {
			st.dropPending(cmd.id)
		}
		return
	}
	if st.resident+len(cmd.payload) > MaxImageBytes {
		up.failed = true
		s.report(LevelError, SourceGraphics, fmt.Sprintf("Kitty: upload %d would pass the %d byte cap", cmd.id, MaxImageBytes))
		s.kittyReply(cmd, "ENOSPC:upload too large")
		if !cmd.more {
			st.dropPending(cmd.id)
		}
		return
	}
	up.data = append(up.data, cmd.payload...)
	st.resident += len(cmd.payload)
	if cmd.more {
		return
	}
	data := up.data
	st.dropPending(cmd.id)

	img := &Image{ID: cmd.id, Width: up.w, Height: up.h, Data: data, Complete: true}
	img.Frames = [][]byte{data}
	if dec, err := decodeKittyImage(cmd.id, up); err == nil {
		img.Pixels = dec.Pixels
		img.Width, img.Height = dec.Width, dec.Height
	} else {
		s.report(LevelDebug, SourceGraphics, fmt.Sprintf("Kitty: keeping raw payload: %v", err))
	}
	if up.display {
		img.Row = s.cursor.Row
		img.Col = s.cursor.Col
		img.Visible = true
		s.MarkAllDirty()
	}
	if !st.Put(img) {
		s.kittyReply(cmd, "ENOSPC:store full")
		return
	}
	s.kittyReply(cmd, "OK")
}

func (s *Session) kittyPlace(cmd *kittyCommand) {
	img, ok := s.Images.Get(cmd.id)
	if !ok {
		s.kittyReply(cmd, "ENOENT:no such image")
		return
	}
	img.Row = s.cursor.Row
	img.Col = s.cursor.Col
	img.Visible = true
	s.MarkAllDirty()
	s.kittyReply(cmd, "OK")
}

// kittyFrame appends an animation frame, as transmitted, to an existing
// image.
func (s *Session) kittyFrame(cmd *kittyCommand) {
	st := s.Images
	img, ok := st.Get(cmd.id)
	if !ok {
		s.kittyReply(cmd, "ENOENT:no such image")
		return
	}
	if st.resident+len(cmd.payload) > MaxImageBytes {
		s.report(LevelError, SourceGraphics, fmt.Sprintf("Kitty: frame for %d would pass the %d byte cap", cmd.id, MaxImageBytes))
		s.kittyReply(cmd, "ENOSPC:frame too large")
		return
	}
	if len(img.Frames) == 0 {
		img.Frames = [][]byte{img.Pixels}
	}
	img.Frames = append(img.Frames, cmd.payload)
	st.resident += len(cmd.payload)
	s.kittyReply(cmd, "OK")
}

func (s *Session) kittyReply(cmd *kittyCommand, msg string) {
	if cmd.quiet >= 2 || (cmd.quiet == 1 && msg == "OK") {
		return
	}
	s.replyf("\x1b_Gi=%d;%s\x1b\\", cmd.id, msg)
}

// decodeKittyImage turns an accumulated upload into pixels.
func decodeKittyImage(id uint32, up *upload) (*Image, error) {
	switch up.format {
	case 100:
		src, _, err := image.Decode(bytes.NewReader(up.data))
		if err != nil {
			return nil, fmt.Errorf("image %d: png decode: %w", id, err)
		}
		bounds := src.Bounds()
		img, err := NewImage(id, bounds.Dx(), bounds.Dy())
		if err != nil {
			return nil, err
		}
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, a := src.At(x, y).RGBA()
				img.Pixels[i] = uint8(r >> 8)
				img.Pixels[i+1] = uint8(g >> 8)
				img.Pixels[i+2] = uint8(b >> 8)
				img.Pixels[i+3] = uint8(a >> 8)
				i += 4
			}
		}
		return img, nil
	case 24, 32:
		bpp := up.format / 8
		if up.w <= 0 || up.h <= 0 {
			return nil, fmt.Errorf("image %d: raw upload needs s= and v=", id)
		}
		if len(up.data) < up.w*up.h*bpp {
			return nil, fmt.Errorf("image %d: short raw payload %d for %dx%d", id, len(up.data), up.w, up.h)
		}
		img, err := NewImage(id, up.w, up.h)
		if err != nil {
			return nil, err
		}
		si, di := 0, 0
		for p := 0; p < up.w*up.h; p++ {
			img.Pixels[di] = up.data[si]
			img.Pixels[di+1] = up.data[si+1]
			img.Pixels[di+2] = up.data[si+2]
			if bpp == 4 {
				img.Pixels[di+3] = up.data[si+3]
			} else {
				img.Pixels[di+3] = 0xFF
			}
			si += bpp
			di += 4
		}
		return img, nil
	}
	return nil, fmt.Errorf("image %d: unsupported format %d", id, up.format)
}

// parseKittyCommand splits "k=v,k=v;base64" and decodes the payload.
func parseKittyCommand(data []byte) (*kittyCommand, error) {
	cmd := &kittyCommand{action: 't', format: 32}
	ctrl, payload, _ := bytes.Cut(data, []byte{';'})
	for _, kv := range strings.Split(string(ctrl), ",") {
		if kv == "" {
			continue
		}
		key, val, found := strings.Cut(kv, "=")
		if !found || len(key) != 1 {
			return nil, fmt.Errorf("malformed control pair %q", kv)
		}
		switch key[0] {
		case 'a':
			if len(val) != 1 {
				return nil, fmt.Errorf("bad action %q", val)
			}
			cmd.action = val[0]
		case 'f':
			cmd.format = atoiDefault(val, 32)
		case 'i', 'I':
			cmd.id = uint32(atoiDefault(val, 0))
			cmd.hasID = true
		case 'm':
			cmd.more = val == "1"
		case 'q':
			cmd.quiet = atoiDefault(val, 0)
		case 's':
			cmd.width = atoiDefault(val, 0)
		case 'v':
			cmd.height = atoiDefault(val, 0)
		case 'c':
			cmd.cols = atoiDefault(val, 0)
		case 'r':
			cmd.rowSpan = atoiDefault(val, 0)
		default:
			// Unrecognized keys are tolerated per the protocol.
		}
	}
	if len(payload) > 0 {
		decoded, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			return nil, fmt.Errorf("payload base64: %w", err)
		}
		cmd.payload = decoded
	}
	return cmd, nil
}

func atoiDefault(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

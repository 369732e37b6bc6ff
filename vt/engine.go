// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/engine.go
// Summary: Glue between the host byte stream and a session: the input ring,
//          software flow control and the drain loop the frame tick calls.
// Usage: The host pump goroutine calls Feed; the terminal frame loop calls
//        Drain then reads rows.

package vt

// DefaultInputRing is sized so a fast producer rides the watermarks rather
// than dropping bytes.
const DefaultInputRing = 1 << 18

// Engine owns one session, its parser and the inbound ring.
type Engine struct {
	Session *Session
	Parser  *Parser

	input *RingBuffer
	flow  *FlowController

	scratch []byte
}

// NewEngine builds the full input path for a session.
func NewEngine(s *Session) *Engine {
	e := &Engine{
		Session: s,
		Parser:  NewParser(s),
		input:   NewRingBuffer(DefaultInputRing),
		scratch: make([]byte, 4096),
	}
	e.flow = NewFlowController(e.input, func(b byte) {
		if s.Modes.FlowControl {
			s.reply([]byte{b})
		}
	})
	return e
}

// Feed accepts host output from the producer goroutine. Bytes past a full
// ring are dropped and counted against the session error callback.
func (e *Engine) Feed(p []byte) {
	n := e.input.Write(p)
	if n < len(p) {
		e.Session.report(LevelError, SourceIO, "input ring overflow, bytes dropped")
	}
	e.flow.Check()
}

// Drain parses everything buffered, from the consumer goroutine.
func (e *Engine) Drain() {
	for {
		n := e.input.Read(e.scratch)
		if n == 0 {
			break
		}
		e.Parser.Parse(e.scratch[:n])
	}
	e.flow.Check()
}

// Buffered reports bytes waiting in the ring.
func (e *Engine) Buffered() int { return e.input.Len() }

// FlowStopped reports whether XOFF is outstanding toward the host.
func (e *Engine) FlowStopped() bool { return e.flow.Stopped() }

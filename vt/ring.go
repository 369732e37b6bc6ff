// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/ring.go
// Summary: Single-producer single-consumer byte ring with XON/XOFF watermarks.
// Usage: The host pump writes into the input ring; the session drains it.

package vt

import "sync/atomic"

// RingBuffer is a lock-free byte queue for exactly one producer goroutine and
// one consumer goroutine. Capacity is rounded up to a power of two so the
// index math reduces to a mask.
type RingBuffer struct {
	buf  []byte
	mask uint64
	head atomic.Uint64 // next read position, owned by the consumer
	tail atomic.Uint64 // next write position, owned by the producer
}

// NewRingBuffer returns a ring holding at least capacity bytes.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &RingBuffer{
		buf:  make([]byte, size),
		mask: uint64(size - 1),
	}
}

// Len reports the number of buffered bytes.
func (r *RingBuffer) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap reports the usable capacity.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// Write appends p to the ring, returning the number of bytes accepted. It
// never blocks; a full ring accepts a short count.
func (r *RingBuffer) Write(p []byte) int {
	head := r.head.Load()
	tail := r.tail.Load()
	free := uint64(len(r.buf)) - (tail - head)
	n := uint64(len(p))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		r.buf[(tail+i)&r.mask] = p[i]
	}
	r.tail.Store(tail + n)
	return int(n)
}

// Read drains up to len(p) bytes into p.
func (r *RingBuffer) Read(p []byte) int {
	head := r.head.Load()
	tail := r.tail.Load()
	n := tail - head
	if n > uint64(len(p)) {
		n = uint64(len(p))
	}
	for i := uint64(0); i < n; i++ {
		p[i] = r.buf[(head+i)&r.mask]
	}
	r.head.Store(head + n)
	return int(n)
}

// ReadByte pops a single byte.
func (r *RingBuffer) ReadByte() (byte, bool) {
	head := r.head.Load()
	if r.tail.Load() == head {
		return 0, false
	}
	b := r.buf[head&r.mask]
	r.head.Store(head + 1)
	return b, true
}

// FlowController tracks ring occupancy against high and low watermarks and
// emits XOFF when the consumer falls behind, XON once it catches up again.
type FlowController struct {
	ring    *RingBuffer
	high    int
	low     int
	stopped bool
	send    func(b byte)
}

// NewFlowController wires software flow control around ring. send delivers
// the control byte toward the host; it may be nil when flow control is
// disabled by mode.
func NewFlowController(ring *RingBuffer, send func(b byte)) *FlowController {
	capacity := ring.Cap()
	return &FlowController{
		ring: ring,
		high: capacity * 3 / 4,
		low:  capacity / 4,
		send: send,
	}
}

// Stopped reports whether an XOFF is outstanding.
func (f *FlowController) Stopped() bool { return f.stopped }

// Check compares occupancy against the watermarks and emits at most one
// control byte per crossing.
func (f *FlowController) Check() {
	n := f.ring.Len()
	if !f.stopped && n >= f.high {
		f.stopped = true
		if f.send != nil {
			f.send(0x13) // XOFF
		}
	} else if f.stopped && n <= f.low {
		f.stopped = false
		if f.send != nil {
			f.send(0x11) // XON
		}
	}
}

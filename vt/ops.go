// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/ops.go
// Summary: Grid operation queue. Cell mutations are batched as ops and
//          flushed onto the grid once per frame or before any read-back.
// Usage: Session methods enqueue; Flush applies in order.

package vt

// OpKind discriminates queued grid operations.
type OpKind uint8

const (
	OpSetCell OpKind = iota
	OpScrollRegion
	OpCopyRect
	OpFillRect
	OpSetAttrRect
	OpInsertLines
	OpDeleteLines
	OpResizeGrid
)

var opKindNames = [...]string{
	"SetCell", "ScrollRegion", "CopyRect", "FillRect",
	"SetAttrRect", "InsertLines", "DeleteLines", "ResizeGrid",
}

func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return "Unknown"
}

// Rect is an inclusive cell rectangle in grid coordinates.
type Rect struct {
	Top, Left, Bottom, Right int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.Bottom < r.Top || r.Right < r.Left }

// Clamp restricts the rectangle to a rows x cols grid.
func (r Rect) Clamp(rows, cols int) Rect {
	if r.Top < 0 {
		r.Top = 0
	}
	if r.Left < 0 {
		r.Left = 0
	}
	if r.Bottom >= rows {
		r.Bottom = rows - 1
	}
	if r.Right >= cols {
		r.Right = cols - 1
	}
	return r
}

// GridOp is one queued mutation. Fields are interpreted per Kind.
type GridOp struct {
	Kind OpKind

	// SetCell
	Row, Col int
	Cell     Cell

	// ScrollRegion / InsertLines / DeleteLines
	Region Rect
	Count  int

	// CopyRect: Src copied so its top-left lands at (Row, Col)
	Src Rect

	// FillRect / SetAttrRect
	Dst     Rect
	Fill    Cell
	Set     Attr
	Clear   Attr
	Reverse bool

	// ResizeGrid
	Rows, Cols int
}

// opQueueMax bounds the queue; beyond it ops apply directly in order.
const opQueueMax = 8192

// OpQueue batches grid mutations between frames.
type OpQueue struct {
	ops     []GridOp
	applier func(op *GridOp)
	report  Reporter
}

func newOpQueue(apply func(op *GridOp), report Reporter) *OpQueue {
	return &OpQueue{
		ops:     make([]GridOp, 0, 256),
		applier: apply,
		report:  report,
	}
}

// Push enqueues op, or applies it immediately when the queue is saturated so
// ordering is preserved.
func (q *OpQueue) Push(op GridOp) {
	if len(q.ops) >= opQueueMax {
		q.Flush()
		q.applier(&op)
		return
	}
	q.ops = append(q.ops, op)
}

// Flush applies every queued op in FIFO order and empties the queue.
func (q *OpQueue) Flush() {
	for i := range q.ops {
		q.applier(&q.ops[i])
	}
	q.ops = q.ops[:0]
}

// Len reports the number of pending ops.
func (q *OpQueue) Len() int { return len(q.ops) }

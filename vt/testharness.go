// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/testharness.go
// Summary: Test harness for session control sequence testing.
// Usage: Used by test files to send sequences and verify grid state.

package vt

import (
	"strings"
	"testing"
)

// TestHarness drives a parser/session pair and captures host-bound replies.
type TestHarness struct {
	Session *Session
	Parser  *Parser
	Replies []byte
}

// NewTestHarness creates a harness with the specified terminal size.
func NewTestHarness(rows, cols int, opts ...SessionOption) *TestHarness {
	h := &TestHarness{}
	all := append([]SessionOption{
		WithReporter(func(ReportLevel, ReportSource, string) {}),
		WithOutput(func(p []byte) { h.Replies = append(h.Replies, p...) }),
	}, opts...)
	h.Session = NewSession("test", rows, cols, all...)
	h.Parser = NewParser(h.Session)
	return h
}

// Send feeds a string through the parser.
func (h *TestHarness) Send(seq string) {
	h.Parser.Parse([]byte(seq))
}

// Cell returns the cell at (row, col) with pending ops applied.
func (h *TestHarness) Cell(row, col int) Cell {
	r := h.Session.Row(row)
	if r == nil || col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// RowText renders a row's runes as a string with trailing blanks trimmed.
func (h *TestHarness) RowText(row int) string {
	r := h.Session.Row(row)
	var b strings.Builder
	for _, c := range r {
		if c.Rune == 0 {
			b.WriteRune(' ')
		} else {
			b.WriteRune(c.Rune)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Cursor returns the cursor position (0-based).
func (h *TestHarness) Cursor() (row, col int) {
	cur := h.Session.CursorPos()
	return cur.Row, cur.Col
}

// TakeReplies returns and clears collected host-bound output.
func (h *TestHarness) TakeReplies() string {
	out := string(h.Replies)
	h.Replies = nil
	return out
}

// AssertCursor fails the test when the cursor is elsewhere.
func (h *TestHarness) AssertCursor(t *testing.T, row, col int) {
	t.Helper()
	r, c := h.Cursor()
	if r != row || c != col {
		t.Errorf("cursor at (%d,%d), want (%d,%d)", r, c, row, col)
	}
}

// AssertText fails the test when the row's visible text differs.
func (h *TestHarness) AssertText(t *testing.T, row int, want string) {
	t.Helper()
	got := h.RowText(row)
	if got != want {
		t.Errorf("row %d = %q, want %q", row, got, want)
	}
}

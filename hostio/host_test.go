// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: hostio/host_test.go
// Summary: Host bookkeeping tests that do not spawn processes.

package hostio

import (
	"testing"

	"github.com/framegrace/texelcore/term"
	"github.com/framegrace/texelcore/vt"
)

func quietTerminal() *term.Terminal {
	return term.NewTerminal(24, 80,
		term.WithReporter(func(vt.ReportLevel, vt.ReportSource, string) {}))
}

func TestStartSessionRange(t *testing.T) {
	h := NewHost(quietTerminal(), "/bin/true")
	defer h.Close()
	if err := h.StartSession(-1); err == nil {
		t.Error("negative slot should be rejected")
	}
	if err := h.StartSession(term.MaxSessions); err == nil {
		t.Error("slot past the table should be rejected")
	}
}

func TestHandleOutputWithoutSession(t *testing.T) {
	h := NewHost(quietTerminal(), "/bin/true")
	defer h.Close()
	// No pty bound yet; output for the slot is dropped, not panicked on.
	h.HandleOutput(0, []byte("late reply"))
	h.HandleResize(0, 80, 24)
	h.StopSession(0)
}

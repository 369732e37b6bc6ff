// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: hostio/host.go
// Summary: Runs one host process per terminal session on a pty and pumps
//          bytes between the process and the emulator.
// Usage: main wires a Host to a term.Terminal: session output goes to the
//        pty, pty reads feed the parser, pane resizes become TIOCSWINSZ.

package hostio

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/creack/pty"

	"github.com/framegrace/texelcore/term"
)

// session is one spawned process and its pty end.
type session struct {
	cmd *exec.Cmd
	pty *os.File
}

// Host spawns and tracks the processes behind a terminal's sessions.
type Host struct {
	mu       sync.Mutex
	terminal *term.Terminal
	command  string
	sessions [term.MaxSessions]*session

	// Refresh receives a tick whenever host bytes were fed to a session,
	// so the display loop knows to redraw.
	Refresh chan bool

	// OnExit, when set, observes a session's process going away.
	OnExit func(session int)

	closed bool
}

// NewHost prepares a host that runs command in every new session.
func NewHost(t *term.Terminal, command string) *Host {
	h := &Host{
		terminal: t,
		command:  command,
		Refresh:  make(chan bool, 1),
	}
	t.SetOutput(h.HandleOutput)
	return h
}

// StartSession spawns the command for the given session slot on a fresh pty.
func (h *Host) StartSession(idx int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < 0 || idx >= term.MaxSessions {
		return fmt.Errorf("hostio: session %d out of range", idx)
	}
	if h.sessions[idx] != nil {
		return nil
	}

	rows, cols := 24, 80
	if s := h.terminal.Session(idx); s != nil {
		rows, cols = s.Size()
	}

	cmd := exec.Command(h.command)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLUMNS="+strconv.Itoa(cols),
		"LINES="+strconv.Itoa(rows),
	)
	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return fmt.Errorf("hostio: start %q: %w", h.command, err)
	}

	sess := &session{cmd: cmd, pty: f}
	h.sessions[idx] = sess
	go h.pump(idx, sess)
	return nil
}

// pump copies pty output into the emulator until the process goes away.
func (h *Host) pump(idx int, sess *session) {
	buf := make([]byte, 4096)
	for {
		n, err := sess.pty.Read(buf)
		if n > 0 {
			h.terminal.FeedSession(idx, buf[:n])
			select {
			case h.Refresh <- true:
			default:
			}
		}
		if err != nil {
			break
		}
	}
	sess.cmd.Wait()

	h.mu.Lock()
	exited := !h.closed && h.sessions[idx] == sess
	if exited {
		h.sessions[idx] = nil
	}
	h.mu.Unlock()
	if exited && h.OnExit != nil {
		h.OnExit(idx)
	}
}

// HandleOutput is the terminal output sink: host-bound bytes from session
// idx go to its pty.
func (h *Host) HandleOutput(idx int, p []byte) {
	h.mu.Lock()
	sess := h.sessions[idx]
	h.mu.Unlock()
	if sess != nil {
		sess.pty.Write(p)
	}
}

// HandleResize propagates pane geometry to the process group.
func (h *Host) HandleResize(idx, cols, rows int) {
	h.mu.Lock()
	sess := h.sessions[idx]
	h.mu.Unlock()
	if sess != nil {
		pty.Setsize(sess.pty, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	}
}

// StopSession kills one session's process and closes its pty.
func (h *Host) StopSession(idx int) {
	h.mu.Lock()
	sess := h.sessions[idx]
	h.sessions[idx] = nil
	h.mu.Unlock()
	stop(sess)
}

// Close tears down every running session.
func (h *Host) Close() {
	h.mu.Lock()
	h.closed = true
	all := h.sessions
	for i := range h.sessions {
		h.sessions[i] = nil
	}
	h.mu.Unlock()
	for _, sess := range all {
		stop(sess)
	}
}

func stop(sess *session) {
	if sess == nil {
		return
	}
	sess.pty.Close()
	if sess.cmd.Process != nil {
		sess.cmd.Process.Kill()
	}
}

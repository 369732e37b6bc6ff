// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/terminal.go
// Summary: The terminal aggregate: the session table, pane tree, Gateway and
//          compositor, glued into one frame-driven surface.
// Usage: Hosts feed bytes per session (or the focused one), call Frame once
//        per tick and hand the staging matrix to a renderer.

package term

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/framegrace/texelcore/vt"
)

// Version is what Gateway GET VERSION reports.
const Version = "1.0.0"

// MaxSessions bounds the session table.
const MaxSessions = 8

// outboundBufMax caps bytes held for a not-yet-registered output sink.
const outboundBufMax = 16384

// Instance is one bound session slot with its engine and terminal-level
// toggles.
type Instance struct {
	Session *vt.Session
	Engine  *vt.Engine

	OutputEnabled bool
	GridEnabled   bool
	GridColor     vt.RGB

	pending []byte
}

// OutputFunc receives host-bound bytes tagged with their session index.
type OutputFunc func(session int, p []byte)

// SessionResizeFunc observes per-session geometry changes from the layout.
type SessionResizeFunc func(session, cols, rows int)

// Option configures NewTerminal.
type Option func(*Terminal)

// WithReporter installs the diagnostic callback shared by all sessions.
func WithReporter(r vt.Reporter) Option {
	return func(t *Terminal) { t.report = r }
}

// WithOutput installs the push-mode outbound sink.
func WithOutput(fn OutputFunc) Option {
	return func(t *Terminal) { t.output = fn }
}

// WithGatewayCallback receives non-KTERM Gateway classes.
func WithGatewayCallback(fn GatewayCallback) Option {
	return func(t *Terminal) { t.gatewayCallback = fn }
}

// WithSessionResize observes leaf geometry changes.
func WithSessionResize(fn SessionResizeFunc) Option {
	return func(t *Terminal) { t.sessionResize = fn }
}

// WithScrollback sets the per-session history cap in rows.
func WithScrollback(rows int) Option {
	return func(t *Terminal) { t.scrollback = rows }
}

// WithANSISys starts session 0 in ANSI.SYS compatibility.
func WithANSISys() Option {
	return func(t *Terminal) { t.ansiSys = true }
}

// WithResizeThrottle overrides the minimum interval between Gateway-driven
// resizes.
func WithResizeThrottle(d time.Duration) Option {
	return func(t *Terminal) { t.gw.minResizeInterval = d }
}

// Terminal multiplexes up to MaxSessions emulator sessions onto one surface.
// Structural changes to the layout take the lock; per-frame reads and parser
// drains run on the owning goroutine without it.
type Terminal struct {
	mu sync.Mutex

	rows, cols int

	sessions [MaxSessions]*Instance
	tree     *Tree
	gw       *Gateway
	fonts    *FontRegistry
	comp     *Compositor

	report          vt.Reporter
	output          OutputFunc
	sessionResize   SessionResizeFunc
	gatewayCallback GatewayCallback

	scrollback int
	ansiSys    bool
	debug      bool

	// ReGIS macros are terminal-scoped: every session shares one bank.
	regisMacros map[byte]string
}

// NewTerminal builds a terminal with one session bound to the root pane.
func NewTerminal(rows, cols int, opts ...Option) *Terminal {
	t := &Terminal{
		rows:        clampTermDim(rows),
		cols:        clampTermDim(cols),
		report:      vt.LogReporter,
		scrollback:  -1,
		regisMacros: make(map[byte]string),
	}
	t.gw = newGateway(t)
	for _, o := range opts {
		o(t)
	}
	t.fonts = NewFontRegistry()
	t.comp = NewCompositor(cols, rows)
	t.tree = NewTree(cols, rows, t.handlePaneResize)
	return t
}

// reporter filters Debug unless Gateway SET DEBUG turned it on.
func (t *Terminal) reporter() vt.Reporter {
	return func(level vt.ReportLevel, source vt.ReportSource, msg string) {
		if level == vt.LevelDebug && !t.debug {
			return
		}
		t.report(level, source, msg)
	}
}

// handlePaneResize binds the session lazily and applies the new geometry.
// The tree invokes it for every affected leaf before more input parses, so
// sessions never see bytes against a stale size.
func (t *Terminal) handlePaneResize(idx, cols, rows int) {
	inst := t.ensureSession(idx)
	if inst == nil {
		return
	}
	r, c := inst.Session.Size()
	if r != rows || c != cols {
		inst.Session.Resize(rows, cols)
	}
	if t.sessionResize != nil {
		t.sessionResize(idx, cols, rows)
	}
}

// ensureSession creates the slot on first bind.
func (t *Terminal) ensureSession(idx int) *Instance {
	if idx < 0 || idx >= MaxSessions {
		return nil
	}
	if t.sessions[idx] != nil {
		return t.sessions[idx]
	}

	inst := &Instance{OutputEnabled: true}
	sOpts := []vt.SessionOption{
		vt.WithReporter(t.reporter()),
		vt.WithOutput(func(p []byte) { t.emit(idx, inst, p) }),
	}
	if t.scrollback >= 0 {
		sOpts = append(sOpts, vt.WithScrollback(t.scrollback))
	}
	if t.ansiSys && idx == 0 {
		sOpts = append(sOpts, vt.WithANSISys())
	}
	s := vt.NewSession(uuid.NewString(), t.rows, t.cols, sOpts...)
	s.RegisMacros = t.regisMacros
	s.SetResizeRequestHandler(func(rows, cols int) { t.Resize(rows, cols) })

	inst.Session = s
	inst.Engine = vt.NewEngine(s)
	inst.Engine.Parser.OnGateway = func(payload []byte) bool {
		return t.gw.Dispatch(idx, string(payload))
	}
	t.sessions[idx] = inst
	return inst
}

// emit pushes session output to the sink, or parks it until one registers.
func (t *Terminal) emit(idx int, inst *Instance, p []byte) {
	if !inst.OutputEnabled {
		return
	}
	if t.output != nil {
		t.output(idx, p)
		return
	}
	if len(inst.pending)+len(p) > outboundBufMax {
		keep := outboundBufMax - len(inst.pending)
		if keep < 0 {
			keep = 0
		}
		p = p[:keep]
		t.report(vt.LevelWarning, vt.SourceIO, "outbound buffer full, reply truncated")
	}
	inst.pending = append(inst.pending, p...)
}

// SetOutput registers the push-mode sink and flushes anything buffered, in
// session order.
func (t *Terminal) SetOutput(fn OutputFunc) {
	t.output = fn
	if fn == nil {
		return
	}
	for i, inst := range t.sessions {
		if inst != nil && len(inst.pending) > 0 {
			fn(i, inst.pending)
			inst.pending = nil
		}
	}
}

// Size returns the surface dimensions.
func (t *Terminal) Size() (rows, cols int) { return t.rows, t.cols }

// Session returns the bound session at idx, nil when unbound.
func (t *Terminal) Session(idx int) *vt.Session {
	if idx < 0 || idx >= MaxSessions || t.sessions[idx] == nil {
		return nil
	}
	return t.sessions[idx].Session
}

// Instance returns the full slot at idx.
func (t *Terminal) Instance(idx int) *Instance {
	if idx < 0 || idx >= MaxSessions {
		return nil
	}
	return t.sessions[idx]
}

// Tree exposes the pane layout.
func (t *Terminal) Tree() *Tree { return t.tree }

// Gateway exposes the dispatcher, mainly to register a class callback.
func (t *Terminal) Gateway() *Gateway { return t.gw }

// Fonts exposes the banner font registry.
func (t *Terminal) Fonts() *FontRegistry { return t.fonts }

// FocusedIndex returns the session index under focus.
func (t *Terminal) FocusedIndex() int {
	if leaf := t.tree.Focused(); leaf != nil {
		return leaf.SessionIndex
	}
	return 0
}

// FocusedSession returns the session under focus.
func (t *Terminal) FocusedSession() *vt.Session {
	return t.Session(t.FocusedIndex())
}

// Feed delivers host bytes to the focused session.
func (t *Terminal) Feed(p []byte) { t.FeedSession(t.FocusedIndex(), p) }

// FeedSession delivers host bytes to one session's inbound ring.
func (t *Terminal) FeedSession(idx int, p []byte) {
	if inst := t.ensureSession(idx); inst != nil {
		inst.Engine.Feed(p)
	}
}

// Drain parses everything buffered across all sessions and flushes their op
// queues.
func (t *Terminal) Drain() {
	for _, inst := range t.sessions {
		if inst != nil {
			inst.Engine.Drain()
			inst.Session.Flush()
		}
	}
}

// Frame drains input and rebuilds the staging matrix for the renderer.
func (t *Terminal) Frame() *Compositor {
	t.Drain()
	t.comp.Compose(t)
	return t.comp
}

// Resize changes the terminal surface. Every affected leaf session receives
// its resize callback before this returns.
func (t *Terminal) Resize(rows, cols int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows = clampTermDim(rows)
	cols = clampTermDim(cols)
	if rows == t.rows && cols == t.cols {
		return
	}
	t.rows, t.cols = rows, cols
	t.comp.Resize(cols, rows)
	t.tree.Resize(cols, rows)
}

func clampTermDim(v int) int {
	if v < vt.MinDim {
		return vt.MinDim
	}
	if v > vt.MaxDim {
		return vt.MaxDim
	}
	return v
}

// SplitActive splits the focused pane, binding a fresh session to the new
// child. Returns the new leaf, or an error when the session table is full.
func (t *Terminal) SplitActive(kind SplitKind, ratio float64) (*Pane, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.freeSlot()
	if idx < 0 {
		return nil, fmt.Errorf("terminal: all %d session slots in use", MaxSessions)
	}
	leaf := t.tree.Split(t.tree.Focused(), kind, ratio, idx)
	if leaf == nil {
		return nil, fmt.Errorf("terminal: focused pane is not splittable")
	}
	return leaf, nil
}

// CloseActive closes the focused pane. The session is destroyed when its
// last pane goes away.
func (t *Terminal) CloseActive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	leaf := t.tree.Focused()
	if leaf == nil || leaf == t.tree.Root() {
		return
	}
	idx := leaf.SessionIndex
	t.tree.Close(leaf)
	if idx >= 0 && t.tree.SessionRefs(idx) == 0 {
		t.sessions[idx] = nil
	}
}

// CloseSession removes every pane showing the session and destroys it. The
// root pane survives even when its session goes away, so callers can detect
// an empty terminal through FocusedSession.
func (t *Terminal) CloseSession(idx int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= MaxSessions {
		return
	}
	for {
		var target *Pane
		for _, leaf := range t.tree.Leaves() {
			if leaf.SessionIndex == idx && leaf != t.tree.Root() {
				target = leaf
				break
			}
		}
		if target == nil {
			break
		}
		t.tree.Close(target)
	}
	t.sessions[idx] = nil
}

// FocusAt moves focus to the pane containing the given surface cell.
func (t *Terminal) FocusAt(x, y int) {
	if leaf := t.tree.LeafAt(x, y); leaf != nil {
		prev := t.FocusedSession()
		t.tree.Focus(leaf)
		next := t.FocusedSession()
		if prev != next {
			t.sendFocusChange(prev, next)
		}
	}
}

func (t *Terminal) sendFocusChange(prev, next *vt.Session) {
	if prev != nil {
		if b := prev.EncodeFocus(false); len(b) > 0 {
			prev.Respond(string(b))
		}
	}
	if next != nil {
		if b := next.EncodeFocus(true); len(b) > 0 {
			next.Respond(string(b))
		}
	}
}

func (t *Terminal) freeSlot() int {
	for i := 0; i < MaxSessions; i++ {
		if t.sessions[i] == nil && t.tree.SessionRefs(i) == 0 {
			return i
		}
	}
	return -1
}

// SendKey encodes a key press for the focused session and emits it host-bound.
func (t *Terminal) SendKey(key vt.Key, mod vt.Modifier) {
	if s := t.FocusedSession(); s != nil {
		if b := s.EncodeKey(key, mod); len(b) > 0 {
			s.Respond(string(b))
		}
	}
}

// SendRune encodes a printable keystroke for the focused session.
func (t *Terminal) SendRune(r rune, mod vt.Modifier) {
	if s := t.FocusedSession(); s != nil {
		if b := s.EncodeRune(r, mod); len(b) > 0 {
			s.Respond(string(b))
		}
	}
}

// SendPaste wraps pasted text in bracketed-paste markers when enabled.
func (t *Terminal) SendPaste(text []byte) {
	if s := t.FocusedSession(); s != nil {
		s.Respond(string(s.EncodePaste(text)))
	}
}

// SendMouse routes a mouse event to the pane under it, in pane-local
// coordinates, and focuses that pane on button press.
func (t *Terminal) SendMouse(btn vt.MouseButton, x, y int, motion bool, mod vt.Modifier) {
	leaf := t.tree.LeafAt(x, y)
	if leaf == nil {
		return
	}
	if !motion && btn != vt.MouseRelease {
		t.FocusAt(x, y)
	}
	s := t.Session(leaf.SessionIndex)
	if s == nil {
		return
	}
	if b := s.EncodeMouse(btn, x-leaf.X, y-leaf.Y, motion, mod); len(b) > 0 {
		s.Respond(string(b))
	}
}

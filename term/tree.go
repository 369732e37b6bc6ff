// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/tree.go
// Summary: Binary pane tree mapping sessions onto the terminal surface.
// Usage: The Terminal owns one Tree; structural changes go through Split,
//        Close and Resize, which recompute geometry and fire the resize
//        callback for every affected leaf.

package term

// SplitKind selects the orientation of an internal node.
type SplitKind int

const (
	// SplitVertical stacks child A above child B.
	SplitVertical SplitKind = iota
	// SplitHorizontal places child A left of child B.
	SplitHorizontal
)

// Ratio bounds for splits. Requests outside the range are clamped, never
// rejected, so a split always succeeds on a leaf.
const (
	minSplitRatio = 0.05
	maxSplitRatio = 0.95
)

// Pane is one node of the layout tree. Internal nodes carry a split kind,
// ratio and two children; leaves carry a session index and their computed
// cell rectangle.
type Pane struct {
	parent         *Pane
	childA, childB *Pane
	split          SplitKind
	ratio          float64

	// SessionIndex is -1 on internal nodes and on unbound leaves.
	SessionIndex int

	X, Y, W, H int
}

// Leaf reports whether the pane holds a session rather than children.
func (p *Pane) Leaf() bool { return p.childA == nil }

// Children returns both children of an internal node, nil for leaves.
func (p *Pane) Children() (a, b *Pane) { return p.childA, p.childB }

// ResizeFunc is invoked for every leaf whose geometry changed, before any
// further host input is processed.
type ResizeFunc func(sessionIndex, cols, rows int)

// Tree manages the pane hierarchy. Structural operations are serialized by
// the owning terminal's lock; the tree itself holds no lock.
type Tree struct {
	root          *Pane
	focused       *Pane
	width, height int
	onResize      ResizeFunc
}

// NewTree builds a tree with a single root leaf bound to session 0.
func NewTree(width, height int, onResize ResizeFunc) *Tree {
	root := &Pane{SessionIndex: 0, W: width, H: height}
	t := &Tree{root: root, focused: root, width: width, height: height, onResize: onResize}
	t.recalculate(root, 0, 0, width, height)
	return t
}

// Root returns the top of the tree.
func (t *Tree) Root() *Pane { return t.root }

// Focused returns the leaf currently holding focus.
func (t *Tree) Focused() *Pane { return t.focused }

// Focus moves focus to the given leaf; internal nodes descend to their
// first leaf.
func (t *Tree) Focus(p *Pane) {
	if p == nil {
		return
	}
	t.focused = firstLeaf(p)
}

func clampRatio(r float64) float64 {
	if r < minSplitRatio {
		return minSplitRatio
	}
	if r > maxSplitRatio {
		return maxSplitRatio
	}
	return r
}

// Split turns the target leaf into an internal node. The existing session
// migrates to child A; child B receives newSession. Returns child B, or nil
// when the target is not a leaf.
func (t *Tree) Split(target *Pane, kind SplitKind, ratio float64, newSession int) *Pane {
	if target == nil || !target.Leaf() {
		return nil
	}

	childA := &Pane{parent: target, SessionIndex: target.SessionIndex}
	childB := &Pane{parent: target, SessionIndex: newSession}

	target.split = kind
	target.ratio = clampRatio(ratio)
	target.childA = childA
	target.childB = childB
	target.SessionIndex = -1

	t.recalculate(t.root, 0, 0, t.width, t.height)
	if t.focused == target {
		t.focused = childB
	}
	return childB
}

// Close removes a leaf. Its sibling replaces the parent, the subtree
// geometry is recomputed and focus lands on a leaf inside the sibling.
// The root leaf cannot be closed.
func (t *Tree) Close(p *Pane) {
	if p == nil || !p.Leaf() || p == t.root {
		return
	}
	parent := p.parent
	sibling := parent.childA
	if sibling == p {
		sibling = parent.childB
	}

	if grand := parent.parent; grand != nil {
		if grand.childA == parent {
			grand.childA = sibling
		} else {
			grand.childB = sibling
		}
		sibling.parent = grand
	} else {
		t.root = sibling
		sibling.parent = nil
	}

	t.recalculate(t.root, 0, 0, t.width, t.height)
	t.focused = firstLeaf(sibling)
}

// Resize recomputes the whole layout for a new surface size.
func (t *Tree) Resize(width, height int) {
	t.width = width
	t.height = height
	t.recalculate(t.root, 0, 0, width, height)
}

// SetRatio adjusts an internal node's split ratio and relayouts.
func (t *Tree) SetRatio(p *Pane, ratio float64) {
	if p == nil || p.Leaf() {
		return
	}
	p.ratio = clampRatio(ratio)
	t.recalculate(t.root, 0, 0, t.width, t.height)
}

// recalculate assigns rectangles depth-first. Child A receives the floor of
// the split, child B the remainder, so the two always tile the parent
// exactly.
func (t *Tree) recalculate(p *Pane, x, y, w, h int) {
	if p == nil {
		return
	}
	p.X, p.Y, p.W, p.H = x, y, w, h

	if p.Leaf() {
		if p.SessionIndex >= 0 && t.onResize != nil {
			t.onResize(p.SessionIndex, w, h)
		}
		return
	}

	if p.split == SplitHorizontal {
		wa := int(float64(w) * p.ratio)
		t.recalculate(p.childA, x, y, wa, h)
		t.recalculate(p.childB, x+wa, y, w-wa, h)
	} else {
		ha := int(float64(h) * p.ratio)
		t.recalculate(p.childA, x, y, w, ha)
		t.recalculate(p.childB, x, y+ha, w, h-ha)
	}
}

// Leaves collects every leaf in depth-first order.
func (t *Tree) Leaves() []*Pane {
	var out []*Pane
	var walk func(p *Pane)
	walk = func(p *Pane) {
		if p == nil {
			return
		}
		if p.Leaf() {
			out = append(out, p)
			return
		}
		walk(p.childA)
		walk(p.childB)
	}
	walk(t.root)
	return out
}

// LeafAt returns the leaf whose rectangle contains the given cell, nil when
// the point is outside the surface.
func (t *Tree) LeafAt(x, y int) *Pane {
	p := t.root
	for p != nil && !p.Leaf() {
		if p.childA.contains(x, y) {
			p = p.childA
		} else {
			p = p.childB
		}
	}
	if p != nil && p.contains(x, y) {
		return p
	}
	return nil
}

// SessionRefs counts leaves bound to the given session index.
func (t *Tree) SessionRefs(idx int) int {
	n := 0
	for _, leaf := range t.Leaves() {
		if leaf.SessionIndex == idx {
			n++
		}
	}
	return n
}

func (p *Pane) contains(x, y int) bool {
	return x >= p.X && x < p.X+p.W && y >= p.Y && y < p.Y+p.H
}

func firstLeaf(p *Pane) *Pane {
	for p != nil && !p.Leaf() {
		p = p.childA
	}
	return p
}

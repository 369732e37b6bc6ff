// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/tree_test.go
// Summary: Pane tree structure and geometry tests.

package term

import "testing"

func collectResizes(calls *[][3]int) ResizeFunc {
	return func(idx, cols, rows int) {
		*calls = append(*calls, [3]int{idx, cols, rows})
	}
}

func TestTreeSplitGeometry(t *testing.T) {
	var calls [][3]int
	tr := NewTree(80, 24, collectResizes(&calls))

	root := tr.Root()
	if !root.Leaf() || root.W != 80 || root.H != 24 {
		t.Fatalf("root = %+v", root)
	}
	if len(calls) != 1 || calls[0] != [3]int{0, 80, 24} {
		t.Fatalf("initial resize calls = %v", calls)
	}

	leaf := tr.Split(root, SplitHorizontal, 0.5, 1)
	if leaf == nil {
		t.Fatal("split returned nil")
	}
	a, b := root.Children()
	if a.W != 40 || b.W != 40 || a.X != 0 || b.X != 40 {
		t.Errorf("horizontal split: a=%+v b=%+v", a, b)
	}
	if a.SessionIndex != 0 || b.SessionIndex != 1 {
		t.Errorf("session migration: a=%d b=%d", a.SessionIndex, b.SessionIndex)
	}
	if tr.Focused() != b {
		t.Error("focus should move to the new child")
	}
}

func TestTreeChildAFloor(t *testing.T) {
	tr := NewTree(81, 24, nil)
	tr.Split(tr.Root(), SplitHorizontal, 0.5, 1)
	a, b := tr.Root().Children()
	// 81 * 0.5 floors to 40; child B takes the remainder.
	if a.W != 40 || b.W != 41 {
		t.Errorf("a.W=%d b.W=%d, want 40/41", a.W, b.W)
	}
	if a.W+b.W != 81 {
		t.Error("children must tile the parent")
	}
}

func TestTreeRatioClamp(t *testing.T) {
	tr := NewTree(100, 100, nil)
	tr.Split(tr.Root(), SplitVertical, 0.001, 1)
	a, _ := tr.Root().Children()
	if a.H != 5 { // clamped to 0.05
		t.Errorf("a.H=%d, want 5", a.H)
	}

	tr2 := NewTree(100, 100, nil)
	tr2.Split(tr2.Root(), SplitVertical, 0.999, 1)
	a2, _ := tr2.Root().Children()
	if a2.H != 95 {
		t.Errorf("a2.H=%d, want 95", a2.H)
	}
}

func TestTreeClosePromotesSibling(t *testing.T) {
	tr := NewTree(80, 24, nil)
	b := tr.Split(tr.Root(), SplitHorizontal, 0.5, 1)
	tr.Close(b)

	root := tr.Root()
	if !root.Leaf() || root.SessionIndex != 0 {
		t.Fatalf("root after close = %+v", root)
	}
	if root.W != 80 || root.H != 24 {
		t.Errorf("promoted sibling keeps full size, got %dx%d", root.W, root.H)
	}
	if tr.Focused() != root {
		t.Error("focus should land inside the sibling")
	}
}

func TestTreeCloseRootIgnored(t *testing.T) {
	tr := NewTree(80, 24, nil)
	tr.Close(tr.Root())
	if tr.Root() == nil {
		t.Fatal("root must survive")
	}
}

func TestTreeDisjointCover(t *testing.T) {
	tr := NewTree(80, 24, nil)
	tr.Split(tr.Root(), SplitHorizontal, 0.3, 1)
	tr.Split(tr.Focused(), SplitVertical, 0.6, 2)
	tr.Focus(tr.Root())
	tr.Split(tr.Focused(), SplitVertical, 0.5, 3)

	covered := make(map[[2]int]int)
	for _, leaf := range tr.Leaves() {
		for y := leaf.Y; y < leaf.Y+leaf.H; y++ {
			for x := leaf.X; x < leaf.X+leaf.W; x++ {
				covered[[2]int{x, y}]++
			}
		}
	}
	if len(covered) != 80*24 {
		t.Errorf("covered %d cells, want %d", len(covered), 80*24)
	}
	for pt, n := range covered {
		if n != 1 {
			t.Fatalf("cell %v covered %d times", pt, n)
		}
	}
}

func TestTreeResizeReachesEveryLeaf(t *testing.T) {
	var calls [][3]int
	tr := NewTree(80, 24, collectResizes(&calls))
	tr.Split(tr.Root(), SplitHorizontal, 0.5, 1)
	calls = nil

	tr.Resize(100, 40)
	seen := map[int]bool{}
	for _, c := range calls {
		seen[c[0]] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("resize calls missed a session: %v", calls)
	}
}

func TestTreeLeafAt(t *testing.T) {
	tr := NewTree(80, 24, nil)
	b := tr.Split(tr.Root(), SplitHorizontal, 0.5, 1)

	if got := tr.LeafAt(0, 0); got == nil || got.SessionIndex != 0 {
		t.Errorf("LeafAt(0,0) = %+v", got)
	}
	if got := tr.LeafAt(79, 23); got != b {
		t.Errorf("LeafAt(79,23) should be the right pane")
	}
	if got := tr.LeafAt(80, 0); got != nil {
		t.Error("points outside the surface must miss")
	}
}

func TestTreeSessionRefs(t *testing.T) {
	tr := NewTree(80, 24, nil)
	tr.Split(tr.Root(), SplitHorizontal, 0.5, 1)
	if tr.SessionRefs(0) != 1 || tr.SessionRefs(1) != 1 || tr.SessionRefs(2) != 0 {
		t.Error("ref counts wrong")
	}
}

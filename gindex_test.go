// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package ssztree

import "testing"

func TestGindexFromDepth(t *testing.T) {
	cases := []struct {
		depth uint
		index uint64
		want  uint64
	}{
		{0, 0, 1},
		{1, 0, 2},
		{1, 1, 3},
		{2, 0, 4},
		{2, 3, 7},
		{3, 5, 13},
	}
	for _, c := range cases {
		got := GindexFromDepth(c.depth, c.index).Uint64()
		if got != c.want {
			t.Errorf("GindexFromDepth(%d,%d) = %d, want %d", c.depth, c.index, got, c.want)
		}
	}
}

func TestGindexLeftRightParent(t *testing.T) {
	g := GindexFromUint64(5) // 0b101
	if !g.Left().Equal(GindexFromUint64(10)) {
		t.Errorf("Left() = %s, want 10", g.Left())
	}
	if !g.Right().Equal(GindexFromUint64(11)) {
		t.Errorf("Right() = %s, want 11", g.Right())
	}
	if !g.Left().Parent().Equal(g) {
		t.Errorf("Left().Parent() = %s, want %s", g.Left().Parent(), g)
	}
}

func TestGindexIsLeftChildAndSibling(t *testing.T) {
	left := GindexFromUint64(4)
	right := GindexFromUint64(5)
	if !left.IsLeftChild() {
		t.Error("4 should be a left child")
	}
	if right.IsLeftChild() {
		t.Error("5 should be a right child")
	}
	if !left.Sibling().Equal(right) {
		t.Errorf("Sibling(4) = %s, want 5", left.Sibling())
	}
	if !right.Sibling().Equal(left) {
		t.Errorf("Sibling(5) = %s, want 4", right.Sibling())
	}
}

func TestGindexDepth(t *testing.T) {
	if RootGindex.Depth() != 0 {
		t.Errorf("root depth = %d, want 0", RootGindex.Depth())
	}
	if GindexFromDepth(5, 17).Depth() != 5 {
		t.Errorf("depth mismatch")
	}
}

func TestSortAsc(t *testing.T) {
	gs := []Gindex{GindexFromUint64(7), GindexFromUint64(3), GindexFromUint64(5)}
	SortAsc(gs)
	want := []uint64{3, 5, 7}
	for i, g := range gs {
		if g.Uint64() != want[i] {
			t.Fatalf("SortAsc produced %v, want ascending %v", gs, want)
		}
	}
}

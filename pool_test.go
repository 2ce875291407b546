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

func TestZeroSubtreeHashLineage(t *testing.T) {
	p := NewPool(DefaultConfig())
	// depth 0 zero subtree is the zero leaf.
	if p.GetRoot(zeroSubtreeAtDepth(0)) != ([32]byte{}) {
		t.Fatal("zero subtree at depth 0 should be the zero leaf")
	}
	// depth 1 zero subtree is H(zero, zero).
	branch := p.CreateBranch(zeroSubtreeAtDepth(0), zeroSubtreeAtDepth(0))
	if p.GetRoot(branch) != p.GetRoot(zeroSubtreeAtDepth(1)) {
		t.Fatal("explicit zero branch should hash identically to the depth-1 sentinel")
	}
}

func TestCreateBranchAndGetNode(t *testing.T) {
	p := NewPool(DefaultConfig())
	leftLeaf := p.CreateLeafFromUint(1)
	rightLeaf := p.CreateLeafFromUint(2)
	root := p.CreateBranch(leftLeaf, rightLeaf)
	p.Ref(root)

	if p.GetNode(root, GindexFromUint64(2)) != leftLeaf {
		t.Error("GetNode(root, 2) should be the left leaf")
	}
	if p.GetNode(root, GindexFromUint64(3)) != rightLeaf {
		t.Error("GetNode(root, 3) should be the right leaf")
	}
	if p.GetNode(root, RootGindex) != root {
		t.Error("GetNode(root, 1) should be root itself")
	}
}

func TestSetNodeSharesUntouchedSiblings(t *testing.T) {
	p := NewPool(DefaultConfig())
	leaves := make([]NodeId, 4)
	for i := range leaves {
		leaves[i] = p.CreateLeafFromUint(uint64(i))
	}
	root := p.FillWithContents(leaves, 2)
	p.Ref(root)

	newLeaf := p.CreateLeafFromUint(99)
	newRoot := p.SetNode(root, GindexFromDepth(2, 1), newLeaf)
	p.Ref(newRoot)

	// index 0 and indices 2,3 are untouched: their nodes must be identical
	// handles in both trees (structural sharing).
	if p.GetNode(root, GindexFromDepth(2, 0)) != p.GetNode(newRoot, GindexFromDepth(2, 0)) {
		t.Error("untouched index 0 should share node identity")
	}
	if p.GetNode(root, GindexFromDepth(2, 3)) != p.GetNode(newRoot, GindexFromDepth(2, 3)) {
		t.Error("untouched index 3 should share node identity")
	}
	if p.GetNode(newRoot, GindexFromDepth(2, 1)) != newLeaf {
		t.Error("index 1 should be the new leaf")
	}
	if p.GetRoot(root) == p.GetRoot(newRoot) {
		t.Error("roots should differ after the mutation")
	}
}

func TestSetNodesGroupedMatchesSequentialSetNode(t *testing.T) {
	p := NewPool(DefaultConfig())
	leaves := make([]NodeId, 8)
	for i := range leaves {
		leaves[i] = p.CreateLeafFromUint(uint64(i))
	}
	root := p.FillWithContents(leaves, 3)
	p.Ref(root)

	gindices := []Gindex{GindexFromDepth(3, 1), GindexFromDepth(3, 4), GindexFromDepth(3, 6)}
	newNodes := []NodeId{p.CreateLeafFromUint(100), p.CreateLeafFromUint(101), p.CreateLeafFromUint(102)}

	grouped := p.SetNodesGrouped(root, gindices, newNodes)
	p.Ref(grouped)

	sequential := root
	for i, g := range gindices {
		seqLeaf := p.CreateLeaf(p.GetRoot(newNodes[i]))
		sequential = p.SetNode(sequential, g, seqLeaf)
		p.Ref(sequential)
	}

	if p.GetRoot(grouped) != p.GetRoot(sequential) {
		t.Fatal("SetNodesGrouped should produce the same root as sequential SetNode calls")
	}
}

func TestRefUnrefClosure(t *testing.T) {
	p := NewPool(DefaultConfig())
	before := p.Stats().LiveNodes

	leaves := make([]NodeId, 4)
	for i := range leaves {
		leaves[i] = p.CreateLeafFromUint(uint64(i))
	}
	root := p.FillWithContents(leaves, 2)
	p.Ref(root)
	if p.Stats().LiveNodes <= before {
		t.Fatal("expected live node count to grow")
	}

	p.Unref(root)
	if p.Stats().LiveNodes != before {
		t.Fatalf("live node count should return to baseline after Unref, got %d want %d", p.Stats().LiveNodes, before)
	}
}

func TestTruncateAfterIndexSharesPrefix(t *testing.T) {
	p := NewPool(DefaultConfig())
	leaves := make([]NodeId, 8)
	for i := range leaves {
		leaves[i] = p.CreateLeafFromUint(uint64(i))
	}
	root := p.FillWithContents(leaves, 3)
	p.Ref(root)

	truncated := p.TruncateAfterIndex(root, 3, 2)
	p.Ref(truncated)

	for i := uint64(0); i <= 2; i++ {
		if p.GetNode(root, GindexFromDepth(3, i)) != p.GetNode(truncated, GindexFromDepth(3, i)) {
			t.Errorf("index %d should share node identity after truncation", i)
		}
	}
	for i := uint64(3); i < 8; i++ {
		if p.GetNode(truncated, GindexFromDepth(3, i)) != zeroSubtreeAtDepth(0) {
			t.Errorf("index %d should be zeroed out after truncation", i)
		}
	}
}

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

import (
	"sort"

	"github.com/holiman/uint256"
)

// Gindex is a generalized index: the bit-encoded path from a tree's root to
// one of its nodes. Root is 1; the left child of gindex g is 2*g, the right
// child is 2*g+1. Gindices for the larger beacon-state subtrees (the
// validator registry, historical summaries) run past 32 bits, so Gindex
// wraps a wide integer rather than a native uint64.
type Gindex struct {
	v uint256.Int
}

// RootGindex is the gindex of a tree's own root.
var RootGindex = GindexFromUint64(1)

// GindexFromUint64 builds a Gindex from a plain uint64, the common case for
// every beacon-state field in production today.
func GindexFromUint64(x uint64) Gindex {
	return Gindex{v: *uint256.NewInt(x)}
}

// GindexFromDepth computes 2^depth + index, the gindex of the index-th node
// at the given depth below some root.
func GindexFromDepth(depth uint, index uint64) Gindex {
	var g uint256.Int
	g.SetOne()
	g.Lsh(&g, depth)
	var idx uint256.Int
	idx.SetUint64(index)
	g.Add(&g, &idx)
	return Gindex{v: g}
}

// Uint64 returns the gindex truncated to 64 bits. Callers addressing real
// beacon-state trees can rely on this never losing precision; it panics if
// the value genuinely does not fit, to surface the truncation rather than
// silently corrupt an address.
func (g Gindex) Uint64() uint64 {
	if !g.v.IsUint64() {
		panic("ssztree: gindex does not fit in 64 bits")
	}
	return g.v.Uint64()
}

// Depth returns the bit-length of the gindex minus one: the number of edges
// from the root to the addressed node.
func (g Gindex) Depth() uint {
	return uint(g.v.BitLen()) - 1
}

// Left returns the gindex of this node's left child (2*g).
func (g Gindex) Left() Gindex {
	var out uint256.Int
	out.Lsh(&g.v, 1)
	return Gindex{v: out}
}

// Right returns the gindex of this node's right child (2*g+1).
func (g Gindex) Right() Gindex {
	var out uint256.Int
	out.Lsh(&g.v, 1)
	out.Or(&out, uint256.NewInt(1))
	return Gindex{v: out}
}

// Parent returns the gindex of this node's parent (g/2), discarding the
// low bit that records which child this was.
func (g Gindex) Parent() Gindex {
	var out uint256.Int
	out.Rsh(&g.v, 1)
	return Gindex{v: out}
}

// IsLeftChild reports whether this gindex addresses the left child of its
// parent (its low bit is zero).
func (g Gindex) IsLeftChild() bool {
	var lowBit uint256.Int
	lowBit.And(&g.v, uint256.NewInt(1))
	return lowBit.IsZero()
}

// Sibling returns the gindex of the node sharing this one's parent.
func (g Gindex) Sibling() Gindex {
	var lowBit uint256.Int
	lowBit.And(&g.v, uint256.NewInt(1))
	var out uint256.Int
	if lowBit.IsZero() {
		out.Add(&g.v, uint256.NewInt(1))
	} else {
		out.Sub(&g.v, uint256.NewInt(1))
	}
	return Gindex{v: out}
}

// Cmp orders two gindices numerically.
func (g Gindex) Cmp(o Gindex) int {
	return g.v.Cmp(&o.v)
}

// Equal reports whether two gindices address the same node.
func (g Gindex) Equal(o Gindex) bool {
	return g.v.Eq(&o.v)
}

// String renders the gindex in decimal, for debug output.
func (g Gindex) String() string {
	return g.v.Dec()
}

// SortAsc sorts gindices ascending in place. The batched commit (pool
// setNodesGrouped, view-store commit) requires this ordering so that two
// dirty siblings at the same subtree merge correctly into one parent
// update instead of clobbering each other.
func SortAsc(gs []Gindex) {
	sort.Slice(gs, func(i, j int) bool {
		return gs[i].Cmp(gs[j]) < 0
	})
}

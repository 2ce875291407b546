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

import "github.com/bits-and-blooms/bitset"

// basicPackedChunks implements §4.C's BasicPackedChunks helper: elements of
// a basic type are packed items_per_chunk-to-a-leaf, so get/set must
// read-modify-write the whole 32-byte chunk.
type basicPackedChunks struct {
	store         *ViewStore
	id            ViewId
	elem          Descriptor
	chunkDepth    uint
	itemsPerChunk int
}

func newBasicPackedChunks(store *ViewStore, id ViewId, elem Descriptor, chunkDepth uint) basicPackedChunks {
	return basicPackedChunks{store: store, id: id, elem: elem, chunkDepth: chunkDepth, itemsPerChunk: elem.ItemsPerChunk()}
}

func (c basicPackedChunks) chunkGindex(index uint64) Gindex {
	return GindexFromDepth(c.chunkDepth, index/uint64(c.itemsPerChunk))
}

// get reads the chunk holding index and decodes the value at its in-chunk
// slot.
func (c basicPackedChunks) get(index uint64) any {
	chunkNode := c.store.GetChildNode(c.id, c.chunkGindex(index))
	chunk := c.store.Pool().GetRoot(chunkNode)
	slot := int(index % uint64(c.itemsPerChunk))
	return c.elem.ToValuePacked(chunk, slot)
}

// set performs a read-modify-write of index's chunk, marking the chunk
// gindex dirty and caching the new leaf.
func (c basicPackedChunks) set(index uint64, value any) {
	g := c.chunkGindex(index)
	chunkNode := c.store.GetChildNode(c.id, g)
	chunk := c.store.Pool().GetRoot(chunkNode)
	slot := int(index % uint64(c.itemsPerChunk))
	c.elem.FromValuePacked(&chunk, slot, value)
	c.store.SetChildNode(c.id, g, c.store.Pool().CreateLeaf(chunk))
}

// getAllInto prefetches the contiguous range of chunks backing
// [0, chunkCount) via GetNodesAtDepth, then decodes every slot, amortizing
// the tree traversal across the whole range instead of paying it once per
// element.
func (c basicPackedChunks) getAllInto(length uint64, out []any) {
	chunkCount := (length + uint64(c.itemsPerChunk) - 1) / uint64(c.itemsPerChunk)
	if chunkCount == 0 {
		return
	}
	root := c.store.Root(c.id)
	nodes := make([]NodeId, chunkCount)
	c.store.Pool().GetNodesAtDepth(root, c.chunkDepth, 0, nodes)

	var i uint64
	for ci, n := range nodes {
		chunk := c.store.Pool().GetRoot(n)
		for s := 0; s < c.itemsPerChunk && i < length; s++ {
			out[i] = c.elem.ToValuePacked(chunk, s)
			i++
		}
		_ = ci
	}
}

// compositeChunks implements §4.C's CompositeChunks helper: each element
// occupies its own subtree at gindex fromDepth(chunk_depth, index).
type compositeChunks struct {
	store      *ViewStore
	id         ViewId
	elem       Descriptor
	chunkDepth uint
}

func newCompositeChunks(store *ViewStore, id ViewId, elem Descriptor, chunkDepth uint) compositeChunks {
	return compositeChunks{store: store, id: id, elem: elem, chunkDepth: chunkDepth}
}

func (c compositeChunks) gindex(index uint64) Gindex {
	return GindexFromDepth(c.chunkDepth, index)
}

// get materializes (or returns the cached) child view over the element
// subtree at index, creating a fresh ViewId via newChild if none is cached
// yet. Per §4.C this speculatively marks the slot dirty even on a pure
// read; see the open question in §9.
func (c compositeChunks) get(index uint64, newChild func(root NodeId) ViewId) ViewId {
	return c.store.GetOrCreateChildView(c.id, c.gindex(index), newChild)
}

// set transfers ownership of childID into the slot, destroying whatever
// was previously cached there.
func (c compositeChunks) set(index uint64, childID ViewId) {
	c.store.SetChildView(c.id, c.gindex(index), childID)
}

// bitArray is the §4.F BitArray helper shared by BitVectorView/BitListView:
// it maps a bit index to its chunk, addresses the bit within the chunk with
// a byte index and mask (readBit/writeBit), and writes the modified chunk
// back as a new leaf. The chunkBitSet/chunkFromBitSet helpers are not used
// by these paths.
type bitArray struct {
	chunkDepth uint
}

func newBitArray(chunkDepth uint) bitArray {
	return bitArray{chunkDepth: chunkDepth}
}

const bitsPerChunk = 256

func (b bitArray) chunkGindex(bitIndex uint64) Gindex {
	return GindexFromDepth(b.chunkDepth, bitIndex/bitsPerChunk)
}

// chunkBitSet decodes a 32-byte chunk into a 256-bit set, little-endian
// within each byte (bit i of byte k is SSZ bit 8*k+i).
func (b bitArray) chunkBitSet(chunk [32]byte) *bitset.BitSet {
	bs := bitset.New(bitsPerChunk)
	for byteIdx, byt := range chunk {
		for bit := 0; bit < 8; bit++ {
			if byt&(1<<uint(bit)) != 0 {
				bs.Set(uint(byteIdx*8 + bit))
			}
		}
	}
	return bs
}

// chunkFromBitSet repacks a 256-bit set into chunk payload bytes.
func (b bitArray) chunkFromBitSet(bs *bitset.BitSet) [32]byte {
	var chunk [32]byte
	for byteIdx := 0; byteIdx < 32; byteIdx++ {
		var byt byte
		for bit := 0; bit < 8; bit++ {
			if bs.Test(uint(byteIdx*8 + bit)) {
				byt |= 1 << uint(bit)
			}
		}
		chunk[byteIdx] = byt
	}
	return chunk
}

// readBit returns the bit at bitIndex within chunk.
func (b bitArray) readBit(chunk [32]byte, bitIndex uint64) bool {
	within := bitIndex % bitsPerChunk
	byt := chunk[within/8]
	return byt&(1<<uint(within%8)) != 0
}

// writeBit returns a copy of chunk with bitIndex set to val.
func (b bitArray) writeBit(chunk [32]byte, bitIndex uint64, val bool) [32]byte {
	within := bitIndex % bitsPerChunk
	byteIdx := within / 8
	mask := byte(1) << uint(within%8)
	if val {
		chunk[byteIdx] |= mask
	} else {
		chunk[byteIdx] &^= mask
	}
	return chunk
}

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

import "github.com/prysmaticlabs/go-bitfield"

// BitVectorType is the §4.F fixed-length KindBitVector descriptor: unlike a
// Vector of bool, its elements pack 256-to-a-chunk (one bit each) rather
// than 32-to-a-chunk (one byte each), so it is its own Kind rather than a
// VectorType specialization. Values are represented as []bool.
type BitVectorType struct {
	length uint64
}

func NewBitVectorType(length uint64) *BitVectorType {
	return &BitVectorType{length: length}
}

func (b *BitVectorType) Kind() Kind         { return KindBitVector }
func (b *BitVectorType) ChunkDepth() uint   { return depthForCount((b.length + bitsPerChunk - 1) / bitsPerChunk) }
func (b *BitVectorType) ChunkCount() uint64 { return uint64(1) << b.ChunkDepth() }
func (b *BitVectorType) FixedSize() int     { return int((b.length + 7) / 8) }
func (b *BitVectorType) Limit() uint64      { return 0 }
func (b *BitVectorType) Fields() []Field    { return nil }
func (b *BitVectorType) Element() Descriptor { return nil }
func (b *BitVectorType) ItemsPerChunk() int { return 0 }

func (b *BitVectorType) FromValue(p *Pool, v any) NodeId {
	bits := v.([]bool)
	return packBits(p, bits, b.ChunkDepth())
}

func (b *BitVectorType) ToValue(p *Pool, root NodeId) any {
	return unpackBits(p, root, b.ChunkDepth(), b.length)
}

func (b *BitVectorType) ToValuePacked([32]byte, int) any     { panic(ErrUnsupportedCompositeType) }
func (b *BitVectorType) FromValuePacked(*[32]byte, int, any) { panic(ErrUnsupportedCompositeType) }

func (b *BitVectorType) SerializeIntoBytes(v any, out []byte) int {
	bits := v.([]bool)
	size := b.FixedSize()
	for i := 0; i < size; i++ {
		out[i] = 0
	}
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return size
}

func (b *BitVectorType) SerializedSize(any) int { return b.FixedSize() }

// BitListType is the §4.F variable-length, limit-bounded KindBitList
// descriptor. Like ListType it mixes a length (here, a bit count rather
// than an element count) into the tree at gindex 3 alongside the bit
// subtree at gindex 2.
type BitListType struct {
	limit uint64
}

func NewBitListType(limit uint64) *BitListType {
	return &BitListType{limit: limit}
}

func (b *BitListType) Kind() Kind          { return KindBitList }
func (b *BitListType) ChunkDepth() uint    { return depthForCount((b.limit + bitsPerChunk - 1) / bitsPerChunk) }
func (b *BitListType) ChunkCount() uint64  { return uint64(1) << b.ChunkDepth() }
func (b *BitListType) FixedSize() int      { return -1 }
func (b *BitListType) Limit() uint64       { return b.limit }
func (b *BitListType) Fields() []Field     { return nil }
func (b *BitListType) Element() Descriptor { return nil }
func (b *BitListType) ItemsPerChunk() int  { return 0 }

func (b *BitListType) FromValue(p *Pool, v any) NodeId {
	bits := v.([]bool)
	bitsRoot := packBits(p, bits, b.ChunkDepth())
	lengthLeaf := p.CreateLeafFromUint(uint64(len(bits)))
	return p.CreateBranch(bitsRoot, lengthLeaf)
}

func (b *BitListType) ToValue(p *Pool, root NodeId) any {
	lengthLeaf := p.GetNode(root, gindexLength)
	h := p.GetRoot(lengthLeaf)
	n := leUint64(h[:8])
	bitsRoot := p.GetNode(root, gindexElemRoot)
	return unpackBits(p, bitsRoot, b.ChunkDepth(), n)
}

func (b *BitListType) ToValuePacked([32]byte, int) any     { panic(ErrUnsupportedCompositeType) }
func (b *BitListType) FromValuePacked(*[32]byte, int, any) { panic(ErrUnsupportedCompositeType) }

// SerializeIntoBytes implements the SSZ bitlist wire encoding: the data
// bits followed by a single sentinel "1" bit marking the true length, the
// whole thing padded out to the next byte boundary. bitfield.Bitlist
// already implements exactly this layout, so this delegates to it rather
// than re-deriving the sentinel-bit arithmetic by hand.
func (b *BitListType) SerializeIntoBytes(v any, out []byte) int {
	bits := v.([]bool)
	bl := bitfield.NewBitlist(uint64(len(bits)))
	for i, bit := range bits {
		if bit {
			bl.SetBitAt(uint64(i), true)
		}
	}
	return copy(out, bl)
}

func (b *BitListType) SerializedSize(v any) int {
	bits := v.([]bool)
	return len(bits)/8 + 1
}

func packBits(p *Pool, bits []bool, chunkDepth uint) NodeId {
	chunkCount := (len(bits) + bitsPerChunk - 1) / bitsPerChunk
	if chunkCount == 0 {
		chunkCount = 1
	}
	leaves := make([]NodeId, chunkCount)
	for c := 0; c < chunkCount; c++ {
		var chunk [32]byte
		for bit := 0; bit < bitsPerChunk; bit++ {
			idx := c*bitsPerChunk + bit
			if idx >= len(bits) {
				break
			}
			if bits[idx] {
				chunk[bit/8] |= 1 << uint(bit%8)
			}
		}
		leaves[c] = p.CreateLeaf(chunk)
	}
	return p.FillWithContents(leaves, chunkDepth)
}

func unpackBits(p *Pool, root NodeId, chunkDepth uint, count uint64) []bool {
	out := make([]bool, count)
	unpackBitsInto(p, root, chunkDepth, count, out)
	return out
}

// unpackBitsInto is unpackBits with the destination slice supplied by the
// caller, so a view's ToBoolArrayInto can avoid the intermediate allocation.
func unpackBitsInto(p *Pool, root NodeId, chunkDepth uint, count uint64, out []bool) {
	var i uint64
	ba := newBitArray(chunkDepth)
	for i < count {
		chunkIdx := i / bitsPerChunk
		chunk := p.GetRoot(p.GetNodeAtDepth(root, chunkDepth, chunkIdx))
		for bit := int(i % bitsPerChunk); bit < bitsPerChunk && i < count; bit++ {
			out[i] = ba.readBit(chunk, uint64(bit))
			i++
		}
	}
}

// BitVectorView is the fixed-length KindBitVector view.
type BitVectorView struct {
	view
	desc *BitVectorType
	bits bitArray
}

func NewBitVectorView(store *ViewStore, root NodeId, desc *BitVectorType) *BitVectorView {
	id := store.CreateView(root)
	return newBitVectorViewFromBase(view{store: store, id: id, desc: desc}, desc)
}

func newBitVectorViewFromBase(base view, desc *BitVectorType) *BitVectorView {
	base.desc = desc
	return &BitVectorView{view: base, desc: desc, bits: newBitArray(desc.ChunkDepth())}
}

func (v *BitVectorView) Length() uint64 { return v.desc.length }

func (v *BitVectorView) checkBounds(index uint64) error {
	if index >= v.desc.length {
		return ErrIndexOutOfBounds
	}
	return nil
}

// Get returns the bit at index.
func (v *BitVectorView) Get(index uint64) (bool, error) {
	if err := v.checkBounds(index); err != nil {
		return false, err
	}
	chunkNode := v.store.GetChildNode(v.id, v.bits.chunkGindex(index))
	chunk := v.store.Pool().GetRoot(chunkNode)
	return v.bits.readBit(chunk, index), nil
}

// Set writes the bit at index via a read-modify-write of its chunk.
func (v *BitVectorView) Set(index uint64, val bool) error {
	if err := v.checkBounds(index); err != nil {
		return err
	}
	g := v.bits.chunkGindex(index)
	chunkNode := v.store.GetChildNode(v.id, g)
	chunk := v.store.Pool().GetRoot(chunkNode)
	chunk = v.bits.writeBit(chunk, index, val)
	v.store.SetChildNode(v.id, g, v.store.Pool().CreateLeaf(chunk))
	return nil
}

// ToBoolArray materializes every bit into a fresh []bool, in the §6 bulk
// reader shape that arrays/lists expose as GetAllInto.
func (v *BitVectorView) ToBoolArray() []bool {
	return unpackBits(v.store.Pool(), v.store.Root(v.id), v.desc.ChunkDepth(), v.desc.length)
}

// ToBoolArrayInto decodes every bit into out, which must have length >= the
// vector's declared length.
func (v *BitVectorView) ToBoolArrayInto(out []bool) {
	unpackBitsInto(v.store.Pool(), v.store.Root(v.id), v.desc.ChunkDepth(), v.desc.length, out)
}

// BitListView is the variable-length, limit-bounded KindBitList view.
type BitListView struct {
	view
	desc *BitListType
	bits bitArray
}

func NewBitListView(store *ViewStore, root NodeId, desc *BitListType) *BitListView {
	id := store.CreateView(root)
	return newBitListViewFromBase(view{store: store, id: id, desc: desc}, desc)
}

func newBitListViewFromBase(base view, desc *BitListType) *BitListView {
	base.desc = desc
	return &BitListView{view: base, desc: desc, bits: newBitArray(desc.ChunkDepth() + 1)}
}

// Length returns the list's current bit count.
func (v *BitListView) Length() uint64 {
	return v.store.ListLength(v.id)
}

func (v *BitListView) checkBounds(index uint64) error {
	if index >= v.Length() {
		return ErrIndexOutOfBounds
	}
	return nil
}

// Get returns the bit at index.
func (v *BitListView) Get(index uint64) (bool, error) {
	if err := v.checkBounds(index); err != nil {
		return false, err
	}
	chunkNode := v.store.GetChildNode(v.id, v.bits.chunkGindex(index))
	chunk := v.store.Pool().GetRoot(chunkNode)
	return v.bits.readBit(chunk, index), nil
}

// Set overwrites the bit already present at index.
func (v *BitListView) Set(index uint64, val bool) error {
	if err := v.checkBounds(index); err != nil {
		return err
	}
	g := v.bits.chunkGindex(index)
	chunkNode := v.store.GetChildNode(v.id, g)
	chunk := v.store.Pool().GetRoot(chunkNode)
	chunk = v.bits.writeBit(chunk, index, val)
	v.store.SetChildNode(v.id, g, v.store.Pool().CreateLeaf(chunk))
	return nil
}

// Push appends val as the new last bit, growing the length by one.
func (v *BitListView) Push(val bool) error {
	n := v.Length()
	if n >= v.desc.Limit() {
		return ErrLengthOverLimit
	}
	g := v.bits.chunkGindex(n)
	chunkNode := v.store.GetChildNode(v.id, g)
	chunk := v.store.Pool().GetRoot(chunkNode)
	chunk = v.bits.writeBit(chunk, n, val)
	v.store.SetChildNode(v.id, g, v.store.Pool().CreateLeaf(chunk))
	v.store.SetListLength(v.id, n+1)
	return nil
}

// ToBitlist materializes the view's current contents as a
// bitfield.Bitlist, in the library's own SSZ-sentinel-terminated byte
// layout; used by callers that want to hand the result to other
// consensus-client code expecting that type.
func (v *BitListView) ToBitlist() bitfield.Bitlist {
	n := v.Length()
	bl := bitfield.NewBitlist(n)
	for i := uint64(0); i < n; i++ {
		bit, _ := v.Get(i)
		if bit {
			bl.SetBitAt(i, true)
		}
	}
	return bl
}

// ToBoolArray materializes every bit into a fresh []bool.
func (v *BitListView) ToBoolArray() []bool {
	return unpackBits(v.store.Pool(), v.store.Root(v.id), v.bits.chunkDepth, v.Length())
}

// ToBoolArrayInto decodes every bit into out, which must have length >= the
// list's current length.
func (v *BitListView) ToBoolArrayInto(out []bool) {
	unpackBitsInto(v.store.Pool(), v.store.Root(v.id), v.bits.chunkDepth, v.Length(), out)
}

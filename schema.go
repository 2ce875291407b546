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
	"encoding/binary"
	"math/bits"
)

// Kind tags the shape of a schema descriptor. The core dispatches view
// construction on Kind rather than on a concrete Go type, the "comptime
// schema dispatch" of §9 reduced to a closed variant set.
type Kind uint8

const (
	KindUint Kind = iota
	KindBool
	KindContainer
	KindVector
	KindList
	KindBitVector
	KindBitList
)

// Field describes one container field: its name, its element descriptor,
// and (for fixed-size fields) its byte offset in the container's
// fixed-size encoding region.
type Field struct {
	Name   string
	Type   Descriptor
	Offset int
}

// Descriptor is the compile-time-shaped contract the core requires of an
// SSZ type. Production systems generate concrete implementations of this
// interface from a schema definition (karalabe/ssz-style codegen, or a
// hand-written equivalent); per §1/§9 the core only specifies the contract,
// not how descriptors come to exist. VectorType/ListType/ContainerType
// below are a direct, hand-built implementation used by this package's own
// tests and by callers too small to warrant codegen.
type Descriptor interface {
	Kind() Kind

	// ChunkDepth is the tree depth at which this value's leaves/subtrees
	// are addressed. ChunkCount is the number of chunks at that depth
	// (always a power of two).
	ChunkDepth() uint
	ChunkCount() uint64

	// FixedSize is the wire size in bytes for a fixed-size type, or -1 for
	// a variable-size type (lists, and containers holding one).
	FixedSize() int

	// Limit is the schema-level maximum element count; only meaningful
	// for KindList.
	Limit() uint64

	// Fields lists a container's fields in declaration order; nil for
	// non-container kinds.
	Fields() []Field

	// Element is the vector/list element descriptor; nil for non-vector,
	// non-list kinds.
	Element() Descriptor

	// ItemsPerChunk is 32/FixedSize for a basic (uint/bool) type: how
	// many packed values share one 32-byte chunk.
	ItemsPerChunk() int

	// FromValue lowers a decoded Go value into a freshly built subtree,
	// returning a refcount-zero root handle.
	FromValue(p *Pool, v any) NodeId
	// ToValue raises the subtree at root back into a decoded Go value.
	ToValue(p *Pool, root NodeId) any

	// ToValuePacked/FromValuePacked address one basic element at the given
	// in-chunk slot (0..ItemsPerChunk()-1).
	ToValuePacked(chunk [32]byte, slot int) any
	FromValuePacked(chunk *[32]byte, slot int, v any)

	// SerializeIntoBytes/SerializedSize implement the SSZ wire format
	// (fixed-offset concatenation for fixed fields, offset-table +
	// variable payload for variable ones).
	SerializeIntoBytes(v any, out []byte) int
	SerializedSize(v any) int
}

func depthForCount(n uint64) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len64(n - 1))
}

// --- basic types ---

// Uint64Type is the KindUint descriptor for a little-endian uint64.
type Uint64Type struct{}

func (Uint64Type) Kind() Kind           { return KindUint }
func (Uint64Type) ChunkDepth() uint     { return 0 }
func (Uint64Type) ChunkCount() uint64   { return 1 }
func (Uint64Type) FixedSize() int       { return 8 }
func (Uint64Type) Limit() uint64        { return 0 }
func (Uint64Type) Fields() []Field      { return nil }
func (Uint64Type) Element() Descriptor  { return nil }
func (Uint64Type) ItemsPerChunk() int   { return 32 / 8 }

func (Uint64Type) FromValue(p *Pool, v any) NodeId {
	return p.CreateLeafFromUint(v.(uint64))
}
func (Uint64Type) ToValue(p *Pool, root NodeId) any {
	h := p.GetRoot(root)
	return binary.LittleEndian.Uint64(h[:8])
}
func (Uint64Type) ToValuePacked(chunk [32]byte, slot int) any {
	off := slot * 8
	return binary.LittleEndian.Uint64(chunk[off : off+8])
}
func (Uint64Type) FromValuePacked(chunk *[32]byte, slot int, v any) {
	off := slot * 8
	binary.LittleEndian.PutUint64(chunk[off:off+8], v.(uint64))
}
func (Uint64Type) SerializeIntoBytes(v any, out []byte) int {
	binary.LittleEndian.PutUint64(out, v.(uint64))
	return 8
}
func (Uint64Type) SerializedSize(any) int { return 8 }

// Uint8Type is the KindUint descriptor for a single byte.
type Uint8Type struct{}

func (Uint8Type) Kind() Kind          { return KindUint }
func (Uint8Type) ChunkDepth() uint    { return 0 }
func (Uint8Type) ChunkCount() uint64  { return 1 }
func (Uint8Type) FixedSize() int      { return 1 }
func (Uint8Type) Limit() uint64       { return 0 }
func (Uint8Type) Fields() []Field     { return nil }
func (Uint8Type) Element() Descriptor { return nil }
func (Uint8Type) ItemsPerChunk() int  { return 32 }

func (Uint8Type) FromValue(p *Pool, v any) NodeId {
	var payload [32]byte
	payload[0] = v.(uint8)
	return p.CreateLeaf(payload)
}
func (Uint8Type) ToValue(p *Pool, root NodeId) any {
	h := p.GetRoot(root)
	return h[0]
}
func (Uint8Type) ToValuePacked(chunk [32]byte, slot int) any {
	return chunk[slot]
}
func (Uint8Type) FromValuePacked(chunk *[32]byte, slot int, v any) {
	chunk[slot] = v.(uint8)
}
func (Uint8Type) SerializeIntoBytes(v any, out []byte) int {
	out[0] = v.(uint8)
	return 1
}
func (Uint8Type) SerializedSize(any) int { return 1 }

// BoolType is the KindBool descriptor; booleans pack 32-per-chunk like
// uint8, with only the low bit meaningful.
type BoolType struct{}

func (BoolType) Kind() Kind          { return KindBool }
func (BoolType) ChunkDepth() uint    { return 0 }
func (BoolType) ChunkCount() uint64  { return 1 }
func (BoolType) FixedSize() int      { return 1 }
func (BoolType) Limit() uint64       { return 0 }
func (BoolType) Fields() []Field     { return nil }
func (BoolType) Element() Descriptor { return nil }
func (BoolType) ItemsPerChunk() int  { return 32 }

func (BoolType) FromValue(p *Pool, v any) NodeId {
	var payload [32]byte
	if v.(bool) {
		payload[0] = 1
	}
	return p.CreateLeaf(payload)
}
func (BoolType) ToValue(p *Pool, root NodeId) any {
	h := p.GetRoot(root)
	return h[0] != 0
}
func (BoolType) ToValuePacked(chunk [32]byte, slot int) any {
	return chunk[slot] != 0
}
func (BoolType) FromValuePacked(chunk *[32]byte, slot int, v any) {
	if v.(bool) {
		chunk[slot] = 1
	} else {
		chunk[slot] = 0
	}
}
func (BoolType) SerializeIntoBytes(v any, out []byte) int {
	if v.(bool) {
		out[0] = 1
	} else {
		out[0] = 0
	}
	return 1
}
func (BoolType) SerializedSize(any) int { return 1 }

// --- composite types ---

// ContainerType is a hand-built KindContainer descriptor over a fixed field
// list. Values are represented as map[string]any keyed by field name.
type ContainerType struct {
	fields     []Field
	chunkDepth uint
	fixedSize  int // -1 if any field is variable-size
}

// NewContainerType computes field offsets (for the fixed-size region) and
// the container's own fixed/variable status from its field list.
func NewContainerType(fields []Field) *ContainerType {
	c := &ContainerType{fields: append([]Field(nil), fields...), chunkDepth: depthForCount(uint64(len(fields)))}
	offset := 0
	fixed := true
	for i := range c.fields {
		c.fields[i].Offset = offset
		fs := c.fields[i].Type.FixedSize()
		if fs < 0 {
			fixed = false
			offset += 4 // offset table entry
		} else {
			offset += fs
		}
	}
	if fixed {
		c.fixedSize = offset
	} else {
		c.fixedSize = -1
	}
	return c
}

func (c *ContainerType) Kind() Kind          { return KindContainer }
func (c *ContainerType) ChunkDepth() uint    { return c.chunkDepth }
func (c *ContainerType) ChunkCount() uint64  { return uint64(1) << c.chunkDepth }
func (c *ContainerType) FixedSize() int      { return c.fixedSize }
func (c *ContainerType) Limit() uint64       { return 0 }
func (c *ContainerType) Fields() []Field     { return c.fields }
func (c *ContainerType) Element() Descriptor { return nil }
func (c *ContainerType) ItemsPerChunk() int  { return 0 }

func (c *ContainerType) FromValue(p *Pool, v any) NodeId {
	values := v.(map[string]any)
	leaves := make([]NodeId, len(c.fields))
	for i, f := range c.fields {
		leaves[i] = f.Type.FromValue(p, values[f.Name])
	}
	return p.FillWithContents(leaves, c.chunkDepth)
}

func (c *ContainerType) ToValue(p *Pool, root NodeId) any {
	out := make(map[string]any, len(c.fields))
	for i, f := range c.fields {
		child := p.GetNodeAtDepth(root, c.chunkDepth, uint64(i))
		out[f.Name] = f.Type.ToValue(p, child)
	}
	return out
}

func (c *ContainerType) ToValuePacked([32]byte, int) any               { panic(ErrUnsupportedCompositeType) }
func (c *ContainerType) FromValuePacked(*[32]byte, int, any)           { panic(ErrUnsupportedCompositeType) }

func (c *ContainerType) SerializeIntoBytes(v any, out []byte) int {
	values := v.(map[string]any)
	fixedEnd := 0
	for _, f := range c.fields {
		if fs := f.Type.FixedSize(); fs >= 0 {
			fixedEnd += fs
		} else {
			fixedEnd += 4
		}
	}
	varOff := fixedEnd
	pos := 0
	for _, f := range c.fields {
		val := values[f.Name]
		if fs := f.Type.FixedSize(); fs >= 0 {
			f.Type.SerializeIntoBytes(val, out[pos:])
			pos += fs
		} else {
			binary.LittleEndian.PutUint32(out[pos:], uint32(varOff))
			pos += 4
			varOff += f.Type.SerializedSize(val)
		}
	}
	pos = fixedEnd
	for _, f := range c.fields {
		if f.Type.FixedSize() < 0 {
			val := values[f.Name]
			n := f.Type.SerializeIntoBytes(val, out[pos:])
			pos += n
		}
	}
	return pos
}

func (c *ContainerType) SerializedSize(v any) int {
	values := v.(map[string]any)
	total := 0
	for _, f := range c.fields {
		if fs := f.Type.FixedSize(); fs >= 0 {
			total += fs
		} else {
			total += 4 + f.Type.SerializedSize(values[f.Name])
		}
	}
	return total
}

// VectorType is a fixed-length KindVector descriptor.
type VectorType struct {
	elem   Descriptor
	length uint64
}

func NewVectorType(elem Descriptor, length uint64) *VectorType {
	return &VectorType{elem: elem, length: length}
}

func (v *VectorType) Kind() Kind         { return KindVector }
func (v *VectorType) Limit() uint64      { return 0 }
func (v *VectorType) Fields() []Field    { return nil }
func (v *VectorType) Element() Descriptor { return v.elem }

func (v *VectorType) ChunkDepth() uint {
	if isBasic(v.elem) {
		itemsPerChunk := uint64(v.elem.ItemsPerChunk())
		return depthForCount((v.length + itemsPerChunk - 1) / itemsPerChunk)
	}
	return depthForCount(v.length)
}

func (v *VectorType) ChunkCount() uint64 { return uint64(1) << v.ChunkDepth() }

func (v *VectorType) FixedSize() int {
	if v.elem.FixedSize() < 0 {
		return -1
	}
	return v.elem.FixedSize() * int(v.length)
}

func (v *VectorType) ItemsPerChunk() int { return 0 }

func (v *VectorType) FromValue(p *Pool, val any) NodeId {
	values := val.([]any)
	if isBasic(v.elem) {
		return fromPackedSlice(p, v.elem, values, v.ChunkDepth())
	}
	leaves := make([]NodeId, len(values))
	for i, e := range values {
		leaves[i] = v.elem.FromValue(p, e)
	}
	return p.FillWithContents(leaves, v.ChunkDepth())
}

func (v *VectorType) ToValue(p *Pool, root NodeId) any {
	if isBasic(v.elem) {
		return toPackedSlice(p, v.elem, root, v.ChunkDepth(), v.length)
	}
	out := make([]any, v.length)
	for i := range out {
		child := p.GetNodeAtDepth(root, v.ChunkDepth(), uint64(i))
		out[i] = v.elem.ToValue(p, child)
	}
	return out
}

func (v *VectorType) ToValuePacked([32]byte, int) any     { panic(ErrUnsupportedCompositeType) }
func (v *VectorType) FromValuePacked(*[32]byte, int, any) { panic(ErrUnsupportedCompositeType) }

func (v *VectorType) SerializeIntoBytes(val any, out []byte) int {
	values := val.([]any)
	pos := 0
	for _, e := range values {
		pos += v.elem.SerializeIntoBytes(e, out[pos:])
	}
	return pos
}

func (v *VectorType) SerializedSize(val any) int {
	values := val.([]any)
	total := 0
	for _, e := range values {
		total += v.elem.SerializedSize(e)
	}
	return total
}

// ListType is a variable-length, limit-bounded KindList descriptor. The
// tree representation mixes the element count into a length leaf at
// gindex 3 alongside the element subtree, per §3/§4.F.
type ListType struct {
	elem  Descriptor
	limit uint64
}

func NewListType(elem Descriptor, limit uint64) *ListType {
	return &ListType{elem: elem, limit: limit}
}

func (l *ListType) Kind() Kind          { return KindList }
func (l *ListType) Limit() uint64       { return l.limit }
func (l *ListType) Fields() []Field     { return nil }
func (l *ListType) Element() Descriptor { return l.elem }
func (l *ListType) FixedSize() int      { return -1 }
func (l *ListType) ItemsPerChunk() int  { return 0 }

// ChunkDepth is the depth of the *element* subtree (the list's own root is
// one level above that, branching into the element subtree and the length
// leaf; see the length branch in ListType.FromValue and ListView's
// ChunkDepth()+1 addressing in list.go).
func (l *ListType) ChunkDepth() uint {
	if isBasic(l.elem) {
		itemsPerChunk := uint64(l.elem.ItemsPerChunk())
		return depthForCount((l.limit + itemsPerChunk - 1) / itemsPerChunk)
	}
	return depthForCount(l.limit)
}

func (l *ListType) ChunkCount() uint64 { return uint64(1) << l.ChunkDepth() }

func (l *ListType) FromValue(p *Pool, val any) NodeId {
	values := val.([]any)
	var elemRoot NodeId
	if isBasic(l.elem) {
		elemRoot = fromPackedSlice(p, l.elem, values, l.ChunkDepth())
	} else {
		leaves := make([]NodeId, len(values))
		for i, e := range values {
			leaves[i] = l.elem.FromValue(p, e)
		}
		elemRoot = p.FillWithContents(leaves, l.ChunkDepth())
	}
	lengthLeaf := p.CreateLeafFromUint(uint64(len(values)))
	return p.CreateBranch(elemRoot, lengthLeaf)
}

func (l *ListType) ToValue(p *Pool, root NodeId) any {
	lengthLeaf := p.GetNode(root, GindexFromUint64(3))
	h := p.GetRoot(lengthLeaf)
	n := binary.LittleEndian.Uint64(h[:8])
	elemRoot := p.GetNode(root, GindexFromUint64(2))
	if isBasic(l.elem) {
		return toPackedSlice(p, l.elem, elemRoot, l.ChunkDepth(), n)
	}
	out := make([]any, n)
	for i := range out {
		child := p.GetNodeAtDepth(elemRoot, l.ChunkDepth(), uint64(i))
		out[i] = l.elem.ToValue(p, child)
	}
	return out
}

func (l *ListType) ToValuePacked([32]byte, int) any     { panic(ErrUnsupportedCompositeType) }
func (l *ListType) FromValuePacked(*[32]byte, int, any) { panic(ErrUnsupportedCompositeType) }

func (l *ListType) SerializeIntoBytes(val any, out []byte) int {
	values := val.([]any)
	pos := 0
	for _, e := range values {
		pos += l.elem.SerializeIntoBytes(e, out[pos:])
	}
	return pos
}

func (l *ListType) SerializedSize(val any) int {
	values := val.([]any)
	total := 0
	for _, e := range values {
		total += l.elem.SerializedSize(e)
	}
	return total
}

func isBasic(d Descriptor) bool {
	return d.Kind() == KindUint || d.Kind() == KindBool
}

func fromPackedSlice(p *Pool, elem Descriptor, values []any, chunkDepth uint) NodeId {
	itemsPerChunk := elem.ItemsPerChunk()
	chunkCount := (len(values) + itemsPerChunk - 1) / itemsPerChunk
	if chunkCount == 0 {
		chunkCount = 1
	}
	leaves := make([]NodeId, chunkCount)
	for c := 0; c < chunkCount; c++ {
		var chunk [32]byte
		for s := 0; s < itemsPerChunk; s++ {
			idx := c*itemsPerChunk + s
			if idx >= len(values) {
				break
			}
			elem.FromValuePacked(&chunk, s, values[idx])
		}
		leaves[c] = p.CreateLeaf(chunk)
	}
	return p.FillWithContents(leaves, chunkDepth)
}

func toPackedSlice(p *Pool, elem Descriptor, root NodeId, chunkDepth uint, count uint64) any {
	itemsPerChunk := elem.ItemsPerChunk()
	out := make([]any, count)
	var i uint64
	for i < count {
		chunkIdx := i / uint64(itemsPerChunk)
		chunk := p.GetRoot(p.GetNodeAtDepth(root, chunkDepth, chunkIdx))
		for s := int(i % uint64(itemsPerChunk)); s < itemsPerChunk && i < count; s++ {
			out[i] = elem.ToValuePacked(chunk, s)
			i++
		}
	}
	return out
}

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

// ListView is the variable-length, limit-bounded KindList view. Per §3/§4.F
// the list's own root branches into the element subtree (gindex 2) and a
// length leaf (gindex 3); element/chunk gindices are therefore addressed
// one level deeper than the bare element-subtree chunk depth, which is why
// the packed/composite helpers below are built with ChunkDepth()+1 rather
// than ChunkDepth().
type ListView struct {
	view
	desc      *ListType
	basic     bool
	packed    basicPackedChunks
	composite compositeChunks
}

var (
	gindexElemRoot = GindexFromUint64(2)
	gindexLength   = GindexFromUint64(3)
)

// NewListView creates a view over root for a list schema.
func NewListView(store *ViewStore, root NodeId, desc *ListType) *ListView {
	id := store.CreateView(root)
	return newListViewFromBase(view{store: store, id: id, desc: desc}, desc)
}

func newListViewFromBase(base view, desc *ListType) *ListView {
	base.desc = desc
	l := &ListView{view: base, desc: desc, basic: isBasic(desc.Element())}
	mixedDepth := desc.ChunkDepth() + 1
	if l.basic {
		l.packed = newBasicPackedChunks(base.store, base.id, desc.Element(), mixedDepth)
	} else {
		l.composite = newCompositeChunks(base.store, base.id, desc.Element(), mixedDepth)
	}
	return l
}

// Length returns the list's current element count.
func (l *ListView) Length() uint64 {
	return l.store.ListLength(l.id)
}

func (l *ListView) checkBounds(index uint64) error {
	if index >= l.Length() {
		return ErrIndexOutOfBounds
	}
	return nil
}

// Get returns the decoded value at index for a basic-element list, or a
// TreeView over the index-th subtree for a composite-element list.
func (l *ListView) Get(index uint64) (any, error) {
	if err := l.checkBounds(index); err != nil {
		return nil, err
	}
	if l.basic {
		return l.packed.get(index), nil
	}
	childID := l.composite.get(index, func(root NodeId) ViewId {
		return l.store.CreateView(root)
	})
	return newViewFor(l.store, childID, l.desc.Element()), nil
}

// Set overwrites the value already present at index; it never changes the
// list's length. Use Push to grow it.
func (l *ListView) Set(index uint64, value any) error {
	if err := l.checkBounds(index); err != nil {
		return err
	}
	if l.basic {
		l.packed.set(index, value)
		return nil
	}
	child, ok := value.(TreeView)
	if !ok {
		return ErrUnsupportedCompositeType
	}
	if child.Store() != l.store {
		return ErrDifferentStore
	}
	l.composite.set(index, child.ViewId())
	return nil
}

// Push appends value as the new last element, growing the length by one.
// It fails with ErrLengthOverLimit if the list is already at its schema
// Limit.
func (l *ListView) Push(value any) error {
	n := l.Length()
	if n >= l.desc.Limit() {
		return ErrLengthOverLimit
	}
	if l.basic {
		l.packed.set(n, value)
	} else {
		child, ok := value.(TreeView)
		if !ok {
			return ErrUnsupportedCompositeType
		}
		if child.Store() != l.store {
			return ErrDifferentStore
		}
		l.composite.set(n, child.ViewId())
	}
	l.store.SetListLength(l.id, n+1)
	return nil
}

// SliceTo returns a new, independent view over the elements [0, index],
// leaving l and its current root untouched. The element subtree is
// Pool.TruncateAfterIndex'd at index's chunk, reusing the zero-subtree
// lineage for whole discarded chunks; for a basic-element list whose
// boundary falls mid-chunk, the unused tail bytes of the last kept chunk
// are additionally zeroed so the result's root matches hashTreeRoot of the
// truncated value, not just its chunk-granularity prefix. index must be a
// valid element index of l.
func (l *ListView) SliceTo(index uint64) (*ListView, error) {
	n := l.Length()
	if index >= n {
		return nil, ErrIndexOutOfBounds
	}
	newLength := index + 1
	pool := l.store.Pool()
	elemDepth := l.desc.ChunkDepth()
	elemRoot := l.store.GetChildNode(l.id, gindexElemRoot)

	newElemRoot := elemRoot
	if newLength < n {
		if l.basic {
			itemsPerChunk := uint64(l.desc.Element().ItemsPerChunk())
			lastChunk := index / itemsPerChunk
			newElemRoot = pool.TruncateAfterIndex(elemRoot, elemDepth, lastChunk)

			slot := index % itemsPerChunk
			if slot+1 < itemsPerChunk {
				elemSize := uint64(l.desc.Element().FixedSize())
				chunkGindex := GindexFromDepth(elemDepth, lastChunk)
				chunk := pool.GetRoot(pool.GetNode(newElemRoot, chunkGindex))
				for b := (slot + 1) * elemSize; b < 32; b++ {
					chunk[b] = 0
				}
				newElemRoot = pool.SetNode(newElemRoot, chunkGindex, pool.CreateLeaf(chunk))
			}
		} else {
			newElemRoot = pool.TruncateAfterIndex(elemRoot, elemDepth, index)
		}
	}

	lengthLeaf := pool.CreateLeafFromUint(newLength)
	newRoot := pool.CreateBranch(newElemRoot, lengthLeaf)
	newID := l.store.CreateView(newRoot)
	return newListViewFromBase(view{store: l.store, id: newID, desc: l.desc}, l.desc), nil
}

// SliceFrom returns a new, independent view over the elements [index,
// length), leaving l and its current root untouched. A chunk-aligned start
// reuses the source's chunk subtrees directly; an unaligned start (only
// possible for a basic, packed element type) shifts the packed bytes down
// across the chunk boundary through freshly built leaves. index may equal
// the list's length, producing an empty result.
func (l *ListView) SliceFrom(index uint64) (*ListView, error) {
	n := l.Length()
	if index > n {
		return nil, ErrIndexOutOfBounds
	}
	newLength := n - index
	pool := l.store.Pool()
	elemDepth := l.desc.ChunkDepth()
	elemRoot := l.store.GetChildNode(l.id, gindexElemRoot)

	var newElemRoot NodeId
	switch {
	case index == 0:
		newElemRoot = elemRoot
	case !l.basic:
		nodes := make([]NodeId, newLength)
		pool.GetNodesAtDepth(elemRoot, elemDepth, index, nodes)
		newElemRoot = pool.FillWithContents(nodes, elemDepth)
	default:
		itemsPerChunk := uint64(l.desc.Element().ItemsPerChunk())
		if index%itemsPerChunk == 0 {
			startChunk := index / itemsPerChunk
			chunkCount := (newLength + itemsPerChunk - 1) / itemsPerChunk
			nodes := make([]NodeId, chunkCount)
			pool.GetNodesAtDepth(elemRoot, elemDepth, startChunk, nodes)
			newElemRoot = pool.FillWithContents(nodes, elemDepth)
		} else {
			elemSize := uint64(l.desc.Element().FixedSize())
			startChunk := index / itemsPerChunk
			srcChunkCount := ((n - startChunk*itemsPerChunk) + itemsPerChunk - 1) / itemsPerChunk
			srcNodes := make([]NodeId, srcChunkCount)
			pool.GetNodesAtDepth(elemRoot, elemDepth, startChunk, srcNodes)

			srcBytes := make([]byte, uint64(len(srcNodes))*32)
			for i, nd := range srcNodes {
				chunk := pool.GetRoot(nd)
				copy(srcBytes[uint64(i)*32:], chunk[:])
			}
			shift := (index % itemsPerChunk) * elemSize
			shifted := srcBytes[shift : shift+newLength*elemSize]

			chunkCount := (newLength + itemsPerChunk - 1) / itemsPerChunk
			leaves := make([]NodeId, chunkCount)
			for i := uint64(0); i < chunkCount; i++ {
				var chunk [32]byte
				start := i * 32
				end := start + 32
				if end > uint64(len(shifted)) {
					end = uint64(len(shifted))
				}
				copy(chunk[:], shifted[start:end])
				leaves[i] = pool.CreateLeaf(chunk)
			}
			newElemRoot = pool.FillWithContents(leaves, elemDepth)
		}
	}

	lengthLeaf := pool.CreateLeafFromUint(newLength)
	newRoot := pool.CreateBranch(newElemRoot, lengthLeaf)
	newID := l.store.CreateView(newRoot)
	return newListViewFromBase(view{store: l.store, id: newID, desc: l.desc}, l.desc), nil
}

// GetAllInto decodes every element of a basic-element list into out, which
// must have length >= the list's current Length. It is not valid for a
// composite-element list.
func (l *ListView) GetAllInto(out []any) error {
	if !l.basic {
		return ErrUnsupportedCompositeType
	}
	l.packed.getAllInto(l.Length(), out)
	return nil
}

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

// ArrayView is the fixed-length KindVector view. It dispatches internally
// on whether the element type is basic (byte-packed chunks) or composite
// (one subtree per element) rather than existing as two separate Go types,
// since both share every operation but get/set.
type ArrayView struct {
	view
	desc    *VectorType
	basic   bool
	packed  basicPackedChunks
	composite compositeChunks
}

// NewArrayView creates a view over root for a vector schema.
func NewArrayView(store *ViewStore, root NodeId, desc *VectorType) *ArrayView {
	id := store.CreateView(root)
	return newArrayViewFromBase(view{store: store, id: id, desc: desc}, desc)
}

func newArrayViewFromBase(base view, desc *VectorType) *ArrayView {
	base.desc = desc
	a := &ArrayView{view: base, desc: desc, basic: isBasic(desc.Element())}
	if a.basic {
		a.packed = newBasicPackedChunks(base.store, base.id, desc.Element(), desc.ChunkDepth())
	} else {
		a.composite = newCompositeChunks(base.store, base.id, desc.Element(), desc.ChunkDepth())
	}
	return a
}

func (a *ArrayView) checkBounds(index uint64) error {
	if index >= a.desc.length {
		return ErrIndexOutOfBounds
	}
	return nil
}

// Get returns the decoded value at index for a basic element vector, or a
// TreeView over the index-th subtree for a composite element vector.
func (a *ArrayView) Get(index uint64) (any, error) {
	if err := a.checkBounds(index); err != nil {
		return nil, err
	}
	if a.basic {
		return a.packed.get(index), nil
	}
	childID := a.composite.get(index, func(root NodeId) ViewId {
		return a.store.CreateView(root)
	})
	return newViewFor(a.store, childID, a.desc.Element()), nil
}

// Set writes index's value: a packed read-modify-write for a basic element,
// or ownership transfer of an incoming TreeView for a composite one.
func (a *ArrayView) Set(index uint64, value any) error {
	if err := a.checkBounds(index); err != nil {
		return err
	}
	if a.basic {
		a.packed.set(index, value)
		return nil
	}
	child, ok := value.(TreeView)
	if !ok {
		return ErrUnsupportedCompositeType
	}
	if child.Store() != a.store {
		return ErrDifferentStore
	}
	a.composite.set(index, child.ViewId())
	return nil
}

// GetAllInto decodes every element of a basic-element vector into out,
// which must have length >= the vector's declared length. It is not valid
// for a composite-element vector.
func (a *ArrayView) GetAllInto(out []any) error {
	if !a.basic {
		return ErrUnsupportedCompositeType
	}
	a.packed.getAllInto(a.desc.length, out)
	return nil
}

// Length returns the vector's fixed, schema-declared element count.
func (a *ArrayView) Length() uint64 { return a.desc.length }

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

// TreeView is the capability set every view family in this package
// implements: init/deinit via the constructors and Deinit, Commit, a
// hash-tree-root, and access to the underlying store handle so a parent
// container/array/list can take ownership of a child view. §9 calls this
// "polymorphism over the capability set {hashTreeRoot, commit, clone,
// get/set}"; Go expresses part of it as this interface rather than a
// comptime duck-typed assertion. Clone is not a method here (cloning goes
// through ViewStore.CloneView), and get/set are defined on each concrete
// view type with its own signature.
type TreeView interface {
	ViewId() ViewId
	Store() *ViewStore
	Descriptor() Descriptor
	GetRoot() NodeId
	Commit() error
	HashTreeRoot() [32]byte
	Deinit()
}

// view is the common embedded state every concrete view type shares: which
// store it lives in, its handle into that store, and the schema descriptor
// that parameterizes its field/index layout.
type view struct {
	store *ViewStore
	id    ViewId
	desc  Descriptor
}

func (v *view) ViewId() ViewId        { return v.id }
func (v *view) Store() *ViewStore     { return v.store }
func (v *view) Descriptor() Descriptor { return v.desc }
func (v *view) GetRoot() NodeId       { return v.store.Root(v.id) }
func (v *view) Commit() error         { return v.store.Commit(v.id) }

func (v *view) HashTreeRoot() [32]byte {
	if err := v.Commit(); err != nil {
		panic(err)
	}
	return v.store.Pool().GetRoot(v.store.Root(v.id))
}

func (v *view) Deinit() {
	v.store.DestroyViewRecursive(v.id)
}

// newViewFor constructs the concrete TreeView wrapper matching desc's kind
// over an already-existing ViewId (typically one returned by
// ViewStore.GetOrCreateChildView). This is the "dynamic dispatch for child
// views from containers" mechanism of §9: callers never type-switch on the
// schema themselves, they call this once and get back the right Go type.
func newViewFor(store *ViewStore, id ViewId, desc Descriptor) TreeView {
	base := view{store: store, id: id, desc: desc}
	switch desc.Kind() {
	case KindContainer:
		return newContainerViewFromBase(base, desc.(*ContainerType))
	case KindVector:
		return newArrayViewFromBase(base, desc.(*VectorType))
	case KindList:
		return newListViewFromBase(base, desc.(*ListType))
	case KindBitVector:
		return newBitVectorViewFromBase(base, desc.(*BitVectorType))
	case KindBitList:
		return newBitListViewFromBase(base, desc.(*BitListType))
	default:
		panic(ErrUnsupportedCompositeType)
	}
}

// createChildView allocates a fresh ViewId over root and wraps it per
// desc's kind; used when a container/array/list materializes a composite
// child for the first time.
func createChildView(store *ViewStore, root NodeId, desc Descriptor) TreeView {
	id := store.CreateView(root)
	return newViewFor(store, id, desc)
}

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

import "fmt"

// ContainerView is the §4.E typed field accessor: field names resolve to a
// compile-time (well, construction-time) index and gindex, so get/set is a
// map lookup plus one pool/store call rather than a schema walk.
type ContainerView struct {
	view
	desc       *ContainerType
	fieldIndex map[string]int
}

// NewContainerView creates a view over root for a container schema,
// refing root in the given store.
func NewContainerView(store *ViewStore, root NodeId, desc *ContainerType) *ContainerView {
	id := store.CreateView(root)
	return newContainerViewFromBase(view{store: store, id: id, desc: desc}, desc)
}

func newContainerViewFromBase(base view, desc *ContainerType) *ContainerView {
	idx := make(map[string]int, len(desc.fields))
	for i, f := range desc.fields {
		idx[f.Name] = i
	}
	base.desc = desc
	return &ContainerView{view: base, desc: desc, fieldIndex: idx}
}

func (c *ContainerView) fieldGindex(i int) Gindex {
	return GindexFromDepth(c.desc.chunkDepth, uint64(i))
}

func (c *ContainerView) mustIndex(name string) int {
	idx, ok := c.fieldIndex[name]
	if !ok {
		panic(fmt.Sprintf("ssztree: container has no field %q", name))
	}
	return idx
}

// Get returns the field's decoded value for a basic field, or a TreeView
// over its subtree for a composite field (container/vector/list/bitvector/
// bitlist), materializing and caching that subview on first access.
func (c *ContainerView) Get(name string) any {
	idx := c.mustIndex(name)
	field := c.desc.fields[idx]
	gindex := c.fieldGindex(idx)
	if isBasic(field.Type) {
		node := c.store.GetChildNode(c.id, gindex)
		return field.Type.ToValue(c.store.Pool(), node)
	}
	childID := c.store.GetOrCreateChildView(c.id, gindex, func(root NodeId) ViewId {
		return c.store.CreateView(root)
	})
	return newViewFor(c.store, childID, field.Type)
}

// Set writes a basic field's value directly as a leaf, or, for a composite
// field, takes ownership of the incoming TreeView: if it is the same
// ViewId already cached at that gindex, it merely marks the slot changed
// (the caller has presumably already mutated the child in place);
// otherwise the new subview replaces (and destroys) whatever was cached,
// per §4.E.
func (c *ContainerView) Set(name string, value any) error {
	idx := c.mustIndex(name)
	field := c.desc.fields[idx]
	gindex := c.fieldGindex(idx)
	if isBasic(field.Type) {
		leaf := field.Type.FromValue(c.store.Pool(), value)
		c.store.SetChildNode(c.id, gindex, leaf)
		return nil
	}
	child, ok := value.(TreeView)
	if !ok {
		return ErrUnsupportedCompositeType
	}
	if child.Store() != c.store {
		return ErrDifferentStore
	}
	if cur, exists := c.store.states[c.id].childrenViews[gindex]; exists && cur == child.ViewId() {
		c.store.MarkChanged(c.id, gindex)
		return nil
	}
	c.store.SetChildView(c.id, gindex, child.ViewId())
	return nil
}

// SerializeIntoBytes encodes the container's current value (after an
// implicit commit) into out using the schema's fixed-offset/variable-
// payload SSZ layout, returning the number of bytes written.
func (c *ContainerView) SerializeIntoBytes(out []byte) (int, error) {
	if err := c.Commit(); err != nil {
		return 0, err
	}
	val := c.desc.ToValue(c.store.Pool(), c.store.Root(c.id))
	return c.desc.SerializeIntoBytes(val, out), nil
}

// SerializedSize returns the exact byte count SerializeIntoBytes would
// write for the container's current value.
func (c *ContainerView) SerializedSize() (int, error) {
	if err := c.Commit(); err != nil {
		return 0, err
	}
	val := c.desc.ToValue(c.store.Pool(), c.store.Root(c.id))
	return c.desc.SerializedSize(val), nil
}

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

// ViewId is an opaque handle into a ViewStore's view table, the mutable
// counterpart to a Pool's NodeId.
type ViewId uint32

// viewState is the per-view bookkeeping described in §4.D: a committed
// root, memoized children (by gindex), materialized child subviews (by
// gindex), the set of dirty gindices since the last commit, and the
// optional list-length memoization.
type viewState struct {
	alive bool

	root NodeId

	childrenNodes map[Gindex]NodeId
	childrenViews map[Gindex]ViewId
	changed       map[Gindex]struct{}

	listLengthCache *uint64
	listLengthDirty bool

	prefetchProgress uint64
}

func newViewState(root NodeId) viewState {
	return viewState{
		alive:         true,
		root:          root,
		childrenNodes: make(map[Gindex]NodeId),
		childrenViews: make(map[Gindex]ViewId),
		changed:       make(map[Gindex]struct{}),
	}
}

// ViewStore centralizes every view's mutable state so a ViewId is a
// trivially copyable handle and the store can recursively tear down a
// subtree of child views on set/clear. A ViewStore is single-threaded; see
// the package's concurrency model.
type ViewStore struct {
	pool   *Pool
	states []viewState
	free   []uint32
}

// NewViewStore creates an empty store backed by pool.
func NewViewStore(pool *Pool) *ViewStore {
	return &ViewStore{pool: pool}
}

// Pool returns the pool this store's views are backed by.
func (s *ViewStore) Pool() *Pool { return s.pool }

func (s *ViewStore) state(id ViewId) *viewState {
	st := &s.states[id]
	if !st.alive {
		panic(ErrFreedHandle)
	}
	return st
}

// CreateView refs root and allocates (or recycles from the free list) a
// ViewState for it, returning a fresh ViewId.
func (s *ViewStore) CreateView(root NodeId) ViewId {
	s.pool.Ref(root)
	st := newViewState(root)
	if len(s.free) > 0 {
		idx := s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
		s.states[idx] = st
		return ViewId(idx)
	}
	s.states = append(s.states, st)
	return ViewId(len(s.states) - 1)
}

// DestroyViewRecursive recursively destroys every child view reachable
// through childrenViews, unrefs any refcount-zero cached child nodes,
// unrefs the view's root, and returns the slot to the free list.
func (s *ViewStore) DestroyViewRecursive(id ViewId) {
	st := s.state(id)
	for _, childID := range st.childrenViews {
		s.DestroyViewRecursive(childID)
	}
	s.clearCache(st)
	s.pool.Unref(st.root)
	st.alive = false
	s.free = append(s.free, uint32(id))
}

// GetChildNode returns the memoized pool.GetNode(state.root, gindex),
// caching the result for subsequent calls.
func (s *ViewStore) GetChildNode(id ViewId, gindex Gindex) NodeId {
	st := s.state(id)
	if n, ok := st.childrenNodes[gindex]; ok {
		return n
	}
	n := s.pool.GetNode(st.root, gindex)
	st.childrenNodes[gindex] = n
	return n
}

// SetChildNode invalidates any cached child view at gindex (destroying it),
// marks gindex dirty, and replaces the cached node, unreffing the previous
// refcount-zero temporary if one was cached there.
func (s *ViewStore) SetChildNode(id ViewId, gindex Gindex, n NodeId) {
	st := s.state(id)
	if childID, ok := st.childrenViews[gindex]; ok {
		delete(st.childrenViews, gindex)
		s.DestroyViewRecursive(childID)
	}
	if prev, ok := st.childrenNodes[gindex]; ok && prev != n && !prev.IsZeroSubtree() && s.pool.slot(prev).refs == 0 {
		s.pool.Unref(prev)
	}
	st.childrenNodes[gindex] = n
	st.changed[gindex] = struct{}{}
	if gindex.Equal(GindexFromUint64(3)) {
		st.listLengthDirty = false
		st.listLengthCache = nil
	}
}

// SetChildView invalidates any cached node at gindex, destroys whatever
// different child view was previously cached there, records the new
// subview mapping, and marks gindex dirty. The parent now owns childID;
// setting the same childID that is already cached at gindex is a no-op
// beyond marking the slot dirty.
func (s *ViewStore) SetChildView(id ViewId, gindex Gindex, childID ViewId) {
	st := s.state(id)
	delete(st.childrenNodes, gindex)
	if prev, ok := st.childrenViews[gindex]; ok && prev != childID {
		s.DestroyViewRecursive(prev)
	}
	st.childrenViews[gindex] = childID
	st.changed[gindex] = struct{}{}
}

// GetOrCreateChildView returns the cached child view at gindex, or creates
// one over the current child node (via newChild, typically a constructor
// closure capturing the child's descriptor). As the open question in §9
// notes, this conservatively marks gindex dirty even for a read-only get:
// the root may be recomputed unnecessarily on commit, but never incorrectly.
func (s *ViewStore) GetOrCreateChildView(id ViewId, gindex Gindex, newChild func(root NodeId) ViewId) ViewId {
	st := s.state(id)
	if childID, ok := st.childrenViews[gindex]; ok {
		return childID
	}
	childRoot := s.GetChildNode(id, gindex)
	childID := newChild(childRoot)
	st.childrenViews[gindex] = childID
	st.changed[gindex] = struct{}{}
	return childID
}

// MarkChanged explicitly flags gindex dirty without changing any cached
// node or view, used when a child view already cached at gindex was
// mutated in place (the container/array "set with the same subview"
// fast path in §4.E).
func (s *ViewStore) MarkChanged(id ViewId, gindex Gindex) {
	st := s.state(id)
	st.changed[gindex] = struct{}{}
}

// Root returns the view's current committed root.
func (s *ViewStore) Root(id ViewId) NodeId {
	return s.state(id).root
}

// Dirty reports whether id has uncommitted changes.
func (s *ViewStore) Dirty(id ViewId) bool {
	return len(s.state(id).changed) > 0
}

// Commit folds the dirty set into a new root: child views dirty since the
// last commit are recursively committed first (their new root becomes the
// slot's node), then pool.SetNodesGrouped applies every dirty gindex in one
// batched pass. A no-op if nothing is dirty. The new root is ref'd, the old
// one unref'd, and the dirty set cleared.
func (s *ViewStore) Commit(id ViewId) error {
	st := s.state(id)
	if len(st.changed) == 0 {
		return nil
	}
	gindices := make([]Gindex, 0, len(st.changed))
	for g := range st.changed {
		gindices = append(gindices, g)
	}
	SortAsc(gindices)

	nodes := make([]NodeId, len(gindices))
	for i, g := range gindices {
		if childID, ok := st.childrenViews[g]; ok {
			if err := s.Commit(childID); err != nil {
				return err
			}
			nodes[i] = s.state(childID).root
			continue
		}
		if n, ok := st.childrenNodes[g]; ok {
			nodes[i] = n
			continue
		}
		return ErrChildNotFound
	}

	newRoot := s.pool.SetNodesGrouped(st.root, gindices, nodes)
	s.pool.Ref(newRoot)
	s.pool.Unref(st.root)
	st.root = newRoot
	st.changed = make(map[Gindex]struct{})
	return nil
}

// ClearCache releases every cached refcount-zero temporary child node,
// clears the dirty set and the list-length/prefetch memoization. Cached
// child views are intentionally left in place: callers decide whether to
// drop those separately.
func (s *ViewStore) ClearCache(id ViewId) {
	s.clearCache(s.state(id))
}

func (s *ViewStore) clearCache(st *viewState) {
	for g, n := range st.childrenNodes {
		if _, dirty := st.changed[g]; dirty && !n.IsZeroSubtree() && s.pool.slot(n).refs == 0 {
			s.pool.Unref(n)
		}
	}
	st.childrenNodes = make(map[Gindex]NodeId)
	st.changed = make(map[Gindex]struct{})
	st.listLengthCache = nil
	st.listLengthDirty = false
	st.prefetchProgress = 0
}

// CloneView creates a new view at id's current root (which must already be
// committed; call Commit first if pending changes should be preserved).
// With transferCache, every childrenNodes/childrenViews entry not in id's
// dirty set at the moment of cloning moves to the clone and id's caches are
// cleared; after that, any ViewId previously obtained from id for such an
// entry belongs to the clone, not to id. Without transferCache the clone
// starts with empty caches and id is untouched.
func (s *ViewStore) CloneView(id ViewId, transferCache bool) ViewId {
	src := s.state(id)
	if len(src.changed) > 0 {
		panic("ssztree: CloneView requires a committed view")
	}
	clone := s.CreateView(src.root)
	src = s.state(id)
	if !transferCache {
		return clone
	}
	dst := s.state(clone)
	for g, n := range src.childrenNodes {
		dst.childrenNodes[g] = n
	}
	for g, v := range src.childrenViews {
		dst.childrenViews[g] = v
	}
	src.childrenNodes = make(map[Gindex]NodeId)
	src.childrenViews = make(map[Gindex]ViewId)
	return clone
}

// ListLength returns the cached list length, computing and caching it from
// the gindex-3 length chunk on first access.
func (s *ViewStore) ListLength(id ViewId) uint64 {
	st := s.state(id)
	if st.listLengthCache != nil {
		return *st.listLengthCache
	}
	lengthNode := s.GetChildNode(id, GindexFromUint64(3))
	h := s.pool.GetRoot(lengthNode)
	n := leUint64(h[:8])
	st.listLengthCache = &n
	return n
}

// SetListLength writes a new length leaf at gindex 3 and sets the length
// cache to n.
func (s *ViewStore) SetListLength(id ViewId, n uint64) {
	s.SetChildNode(id, GindexFromUint64(3), s.pool.CreateLeafFromUint(n))
	st := s.state(id)
	st.listLengthCache = &n
}

func leUint64(b []byte) uint64 {
	var out uint64
	for i := 7; i >= 0; i-- {
		out = out<<8 | uint64(b[i])
	}
	return out
}

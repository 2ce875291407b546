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

	"github.com/prysmaticlabs/gohashtree"
)

// MaxDepth bounds the zero-subtree sentinel lineage: NodeId values
// 0..MaxDepth are reserved to denote the all-zero subtree of that depth, so
// that an empty list or vector never materializes real nodes for its unused
// tail. 64 covers every SSZ chunk depth in use on mainnet and testnets today
// (the deepest is the 2^40-wide validator registry, chunk_depth 40, plus a
// handful of container/list-mixin levels on top).
const MaxDepth = 64

// NodeId is an opaque handle into a Pool's arena. The sentinel range
// 0..MaxDepth denotes the canonical all-zero subtree of that depth; every
// other value is an index into the pool's node table and carries a
// reference count.
type NodeId uint64

// IsZeroSubtree reports whether id is one of the reserved all-zero sentinels.
func (id NodeId) IsZeroSubtree() bool {
	return uint64(id) <= MaxDepth
}

type nodeKind uint8

const (
	nodeKindLeaf nodeKind = iota
	nodeKindBranch
)

type node struct {
	kind nodeKind

	// leaf payload, zero-padded to 32 bytes.
	payload [32]byte

	// branch children.
	left, right NodeId

	// lazily computed, cached on first GetRoot.
	hash     [32]byte
	hashSet  bool

	refs uint32
	// alive is cleared when the slot is freed, so a stale NodeId used before
	// the slot is reused panics in slot(). gen counts how often the slot has
	// been reused; it is not part of NodeId and is not checked, so a stale
	// NodeId whose slot has been reused resolves to the new occupant.
	alive bool
	gen   uint32
}

// Config parameterizes a Pool. It plays the role the teacher's
// precomputed-Lagrange-table TreeConfig plays for KZG commitments: a small
// set of values chosen once and shared by every tree built from this pool.
type Config struct {
	// InitialCapacity preallocates the node arena to avoid early growth
	// reallocations on large beacon-state builds.
	InitialCapacity int
	// PrefetchBatch is stored on the pool (defaulted when <= 0); no pool
	// operation reads it, and GetNodesAtDepth always materializes the whole
	// requested range in one call.
	PrefetchBatch int
}

// DefaultConfig returns the configuration used when a zero-value Config is
// passed to NewPool.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: 1024,
		PrefetchBatch:   8192,
	}
}

// Pool owns a single arena of immutable Merkle nodes (branches and leaves)
// shared by any number of coexisting views. It is not safe for concurrent
// use from more than one goroutine; see the package's concurrency model.
type Pool struct {
	cfg Config

	nodes []node
	free  []uint32 // slot indices below MaxDepth+1 offset, recycled on unref-to-zero

	zeroLeafHash [32]byte
	zeroSubtree  [MaxDepth + 1][32]byte // cached hash of the zero subtree at each depth

	stats PoolStats
}

// PoolStats is a read-only introspection snapshot, primarily for the
// refcount-closure property exercised by tests: after every view referencing
// a pool is destroyed, LiveNodes should return to whatever the caller still
// holds directly.
type PoolStats struct {
	LiveNodes       int
	Leaves          int
	Branches        int
	ZeroSubtreeHits int
}

// NewPool constructs an empty pool and precomputes the zero-subtree hash
// lineage up to MaxDepth, the same "compute the canonical tables once"
// pattern the teacher's GetConfig applies to its Lagrange basis.
func NewPool(cfg Config) *Pool {
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = DefaultConfig().InitialCapacity
	}
	if cfg.PrefetchBatch <= 0 {
		cfg.PrefetchBatch = DefaultConfig().PrefetchBatch
	}
	p := &Pool{
		cfg:   cfg,
		nodes: make([]node, 0, cfg.InitialCapacity),
	}
	p.zeroSubtree[0] = p.zeroLeafHash
	for d := 1; d <= MaxDepth; d++ {
		p.zeroSubtree[d] = hashPair(p.zeroSubtree[d-1], p.zeroSubtree[d-1])
	}
	return p
}

func hashPair(left, right [32]byte) [32]byte {
	var pair [64]byte
	copy(pair[:32], left[:])
	copy(pair[32:], right[:])
	var out [32]byte
	// gohashtree.HashByteSlice expects 64-byte input chunks and writes one
	// 32-byte digest per pair into dst; the pool always passes a single
	// pair, one call per branch hash.
	if err := gohashtree.HashByteSlice(out[:], pair[:]); err != nil {
		panic(err)
	}
	return out
}

// slot resolves a non-sentinel NodeId to its arena index, panicking (debug
// guard) if the handle is out of range or its slot is currently free.
func (p *Pool) slot(id NodeId) *node {
	idx := uint64(id) - (MaxDepth + 1)
	if idx >= uint64(len(p.nodes)) {
		panic(ErrFreedHandle)
	}
	n := &p.nodes[idx]
	if !n.alive {
		panic(ErrFreedHandle)
	}
	return n
}

func (p *Pool) alloc(n node) NodeId {
	n.alive = true
	if len(p.free) > 0 {
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		n.gen = p.nodes[idx].gen + 1
		p.nodes[idx] = n
		p.stats.LiveNodes++
		return NodeId(uint64(idx) + MaxDepth + 1)
	}
	p.nodes = append(p.nodes, n)
	p.stats.LiveNodes++
	return NodeId(uint64(len(p.nodes)-1) + MaxDepth + 1)
}

// CreateLeaf interns a 32-byte payload as a new leaf node. Equal payloads
// may produce distinct handles: the pool does not deduplicate by content,
// only the zero-subtree sentinels are canonicalized.
func (p *Pool) CreateLeaf(payload [32]byte) NodeId {
	id := p.alloc(node{kind: nodeKindLeaf, payload: payload, hash: payload, hashSet: true})
	p.stats.Leaves++
	return id
}

// CreateLeafFromUint encodes u as a little-endian uint64, zero-padded to a
// 32-byte leaf. This is the encoding used for SSZ list-length chunks and for
// packed uint64 basic elements.
func (p *Pool) CreateLeafFromUint(u uint64) NodeId {
	var payload [32]byte
	binary.LittleEndian.PutUint64(payload[:8], u)
	return p.CreateLeaf(payload)
}

// CreateBranch joins two already-ref'd children into a new branch. The
// branch pins both children: as long as the branch is live, its children
// cannot be freed through Unref alone (the branch itself must be unreffed
// first, at which point it propagates an Unref down to both children).
func (p *Pool) CreateBranch(left, right NodeId) NodeId {
	p.ref(left)
	p.ref(right)
	id := p.alloc(node{kind: nodeKindBranch, left: left, right: right})
	p.stats.Branches++
	return id
}

// ref is the internal, unconditional increment used when the pool itself
// takes structural ownership (e.g. a branch's children). Public callers use
// Ref, which is a no-op on sentinels.
func (p *Pool) ref(id NodeId) {
	if id.IsZeroSubtree() {
		return
	}
	p.slot(id).refs++
}

// Ref increments id's reference count. Structural operations return handles
// with a refcount of zero ("ownership not yet granted"); a caller that wants
// to keep a handle alive past the next structural operation must Ref it.
func (p *Pool) Ref(id NodeId) {
	p.ref(id)
}

// Unref decrements id's reference count, freeing it (and recursively
// unreffing its children, if any) when the count reaches zero. A handle
// that was never Ref'd after a structural operation already carries a
// refcount of zero ("ownership not yet granted"); Unref on such a handle
// frees it immediately, which is exactly the behavior a view's clearCache
// wants for its refcount-0 cached temporaries. Unref is a no-op on the
// zero-subtree sentinels.
func (p *Pool) Unref(id NodeId) {
	if id.IsZeroSubtree() {
		return
	}
	n := p.slot(id)
	if n.refs == 0 {
		p.free1(id, n)
		return
	}
	n.refs--
	if n.refs == 0 {
		p.free1(id, n)
	}
}

func (p *Pool) free1(id NodeId, n *node) {
	if n.kind == nodeKindBranch {
		left, right := n.left, n.right
		n.alive = false
		p.stats.LiveNodes--
		p.stats.Branches--
		p.free = append(p.free, uint32(uint64(id)-(MaxDepth+1)))
		p.Unref(left)
		p.Unref(right)
		return
	}
	n.alive = false
	p.stats.LiveNodes--
	p.stats.Leaves--
	p.free = append(p.free, uint32(uint64(id)-(MaxDepth+1)))
}

// GetRoot returns the cached 32-byte hash of id, computing it (and caching
// it) on first access by recursing: a branch's root is H(left.root ||
// right.root), a leaf's root is its payload.
func (p *Pool) GetRoot(id NodeId) [32]byte {
	if id.IsZeroSubtree() {
		return p.zeroSubtree[id]
	}
	n := p.slot(id)
	if n.hashSet {
		return n.hash
	}
	left := p.GetRoot(n.left)
	right := p.GetRoot(n.right)
	n.hash = hashPair(left, right)
	n.hashSet = true
	return n.hash
}

// GetNode navigates from root along the bit path encoded by gindex and
// returns the handle at that position.
func (p *Pool) GetNode(root NodeId, gindex Gindex) NodeId {
	if gindex.Equal(RootGindex) {
		return root
	}
	parentPath := p.pathBits(gindex)
	cur := root
	for _, goRight := range parentPath {
		cur = p.child(cur, goRight)
	}
	return cur
}

// pathBits decodes gindex into a root-to-leaf sequence of left/right steps.
func (p *Pool) pathBits(gindex Gindex) []bool {
	depth := gindex.Depth()
	bits := make([]bool, depth)
	g := gindex
	for i := int(depth) - 1; i >= 0; i-- {
		bits[i] = !g.IsLeftChild()
		g = g.Parent()
	}
	return bits
}

func (p *Pool) child(id NodeId, goRight bool) NodeId {
	if id.IsZeroSubtree() {
		if id == 0 {
			panic(ErrInvalidGindex)
		}
		return id - 1
	}
	n := p.slot(id)
	if n.kind != nodeKindBranch {
		panic(ErrInvalidGindex)
	}
	if goRight {
		return n.right
	}
	return n.left
}

// GetNodeAtDepth is GetNode specialized to a fixed depth and linear index,
// the addressing scheme chunk helpers use.
func (p *Pool) GetNodeAtDepth(root NodeId, depth uint, index uint64) NodeId {
	return p.GetNode(root, GindexFromDepth(depth, index))
}

// GetNodesAtDepth materializes the contiguous range [startIndex,
// startIndex+len(out)) of nodes at depth below root into out. A subtree
// that is the all-zero sentinel at this depth fills its slots with the
// sentinel directly, without traversing into non-existent children.
func (p *Pool) GetNodesAtDepth(root NodeId, depth uint, startIndex uint64, out []NodeId) {
	if root.IsZeroSubtree() {
		for i := range out {
			out[i] = zeroSubtreeAtDepth(depth)
		}
		return
	}
	for i := range out {
		out[i] = p.GetNodeAtDepth(root, depth, startIndex+uint64(i))
	}
}

func zeroSubtreeAtDepth(depth uint) NodeId {
	if depth > MaxDepth {
		panic(ErrInvalidGindex)
	}
	return NodeId(depth)
}

// SetNode produces a new root with the node at gindex replaced by newChild,
// sharing every untouched sibling subtree with the original. The returned
// root (and every newly allocated branch on the path to it) has a refcount
// of zero; the caller must Ref it to keep it alive past the next structural
// operation.
func (p *Pool) SetNode(root NodeId, gindex Gindex, newChild NodeId) NodeId {
	if gindex.Equal(RootGindex) {
		return newChild
	}
	bits := p.pathBits(gindex)
	return p.setAlongPath(root, bits, newChild)
}

func (p *Pool) setAlongPath(id NodeId, bits []bool, newChild NodeId) NodeId {
	if len(bits) == 0 {
		return newChild
	}
	left, right := p.childPair(id)
	if bits[0] {
		newRight := p.setAlongPath(right, bits[1:], newChild)
		return p.CreateBranch(left, newRight)
	}
	newLeft := p.setAlongPath(left, bits[1:], newChild)
	return p.CreateBranch(newLeft, right)
}

func (p *Pool) childPair(id NodeId) (NodeId, NodeId) {
	if id.IsZeroSubtree() {
		if id == 0 {
			panic(ErrInvalidGindex)
		}
		return id - 1, id - 1
	}
	n := p.slot(id)
	if n.kind != nodeKindBranch {
		panic(ErrInvalidGindex)
	}
	return n.left, n.right
}

// SetNodesAtDepth batches SetNode for a set of (index, node) pairs at a
// fixed depth, deferring to SetNodesGrouped for the actual merge.
func (p *Pool) SetNodesAtDepth(root NodeId, depth uint, indices []uint64, nodes []NodeId) NodeId {
	if len(indices) != len(nodes) {
		panic(ErrInvalidSize)
	}
	gindices := make([]Gindex, len(indices))
	for i, idx := range indices {
		gindices[i] = GindexFromDepth(depth, idx)
	}
	return p.SetNodesGrouped(root, gindices, nodes)
}

// SetNodesGrouped applies a batch of node replacements in one pass. gindices
// must already be sorted ascending (SortAsc); siblings that are both dirty
// at the same internal level are merged into a single new branch instead of
// being built twice. The result shares every subtree untouched by the batch
// with the original root.
func (p *Pool) SetNodesGrouped(root NodeId, gindices []Gindex, nodes []NodeId) NodeId {
	if len(gindices) != len(nodes) {
		panic(ErrInvalidSize)
	}
	if len(gindices) == 0 {
		return root
	}
	for i := 1; i < len(gindices); i++ {
		if gindices[i-1].Cmp(gindices[i]) > 0 {
			panic("ssztree: SetNodesGrouped requires ascending gindices")
		}
	}
	return p.setGroup(root, RootGindex, gindices, nodes)
}

// setGroup recursively partitions a sorted batch of (gindex, node) updates
// by which child subtree of id (addressed by idGindex) they fall under,
// rebuilding only the branches that lie on the path to at least one update.
func (p *Pool) setGroup(id NodeId, idGindex Gindex, gindices []Gindex, nodes []NodeId) NodeId {
	if len(gindices) == 1 && gindices[0].Equal(idGindex) {
		return nodes[0]
	}

	left, right := p.childPair(id)
	leftG, rightG := idGindex.Left(), idGindex.Right()

	var leftBatch, rightBatch []Gindex
	var leftNodes, rightNodes []NodeId
	for i, g := range gindices {
		if underGindex(g, leftG) {
			leftBatch = append(leftBatch, g)
			leftNodes = append(leftNodes, nodes[i])
		} else {
			rightBatch = append(rightBatch, g)
			rightNodes = append(rightNodes, nodes[i])
		}
	}

	newLeft, newRight := left, right
	if len(leftBatch) > 0 {
		if len(leftBatch) == 1 && leftBatch[0].Equal(leftG) {
			newLeft = leftNodes[0]
		} else {
			newLeft = p.setGroup(left, leftG, leftBatch, leftNodes)
		}
	}
	if len(rightBatch) > 0 {
		if len(rightBatch) == 1 && rightBatch[0].Equal(rightG) {
			newRight = rightNodes[0]
		} else {
			newRight = p.setGroup(right, rightG, rightBatch, rightNodes)
		}
	}
	return p.CreateBranch(newLeft, newRight)
}

// underGindex reports whether target lies in the subtree rooted at sub
// (sub itself counts).
func underGindex(target, sub Gindex) bool {
	if target.Equal(sub) {
		return true
	}
	if target.Depth() <= sub.Depth() {
		return false
	}
	g := target
	for g.Depth() > sub.Depth() {
		g = g.Parent()
	}
	return g.Equal(sub)
}

// FillWithContents builds a fully packed subtree of the given depth from
// leaves, zero-padding unused slots with the canonical zero-subtree
// lineage so unfilled tails cost no real nodes.
func (p *Pool) FillWithContents(leaves []NodeId, depth uint) NodeId {
	width := uint64(1) << depth
	if uint64(len(leaves)) > width {
		panic(ErrInvalidSize)
	}
	layer := make([]NodeId, width)
	copy(layer, leaves)
	for i := len(leaves); i < len(layer); i++ {
		layer[i] = zeroSubtreeAtDepth(0)
	}
	for d := depth; d > 0; d-- {
		next := make([]NodeId, len(layer)/2)
		for i := range next {
			l, r := layer[2*i], layer[2*i+1]
			if l.IsZeroSubtree() && r.IsZeroSubtree() && l == r {
				next[i] = zeroSubtreeAtDepth(depth - d + 1)
			} else {
				next[i] = p.CreateBranch(l, r)
			}
		}
		layer = next
	}
	return layer[0]
}

// TruncateAfterIndex zeroes out every chunk strictly after lastKeptIndex in
// the subtree of the given depth rooted at root, reusing the zero-subtree
// lineage (rather than allocating real zero leaves) for the truncated tail,
// and sharing every untouched node in [0, lastKeptIndex] with the original.
func (p *Pool) TruncateAfterIndex(root NodeId, depth uint, lastKeptIndex uint64) NodeId {
	return p.truncate(root, depth, lastKeptIndex)
}

func (p *Pool) truncate(id NodeId, depth uint, lastKeptIndex uint64) NodeId {
	width := uint64(1) << depth
	if lastKeptIndex+1 >= width {
		return id
	}
	if depth == 0 {
		return zeroSubtreeAtDepth(0)
	}
	half := width / 2
	left, right := p.childPair(id)
	if lastKeptIndex < half {
		newLeft := p.truncate(left, depth-1, lastKeptIndex)
		return p.CreateBranch(newLeft, zeroSubtreeAtDepth(depth-1))
	}
	newRight := p.truncate(right, depth-1, lastKeptIndex-half)
	return p.CreateBranch(left, newRight)
}

// Stats returns a snapshot of the pool's live-node bookkeeping.
func (p *Pool) Stats() PoolStats {
	return p.stats
}

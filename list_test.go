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

import "testing"

// Scenario 3 — list of uint8 limit 128 hashing.
func TestListUint8Scenario3(t *testing.T) {
	desc := NewListType(Uint8Type{}, 128)
	pool := NewPool(DefaultConfig())

	emptyRoot := desc.FromValue(pool, []any{})
	gotEmpty := hexString(pool.GetRoot(emptyRoot))
	wantEmpty := "28ba1834a3a7b657460ce79fa3a1d909ab8828fd557659d4d0554a9bdbc0ec30"
	if gotEmpty != wantEmpty {
		t.Fatalf("empty list root = %s, want %s", gotEmpty, wantEmpty)
	}

	filledRoot := desc.FromValue(pool, []any{uint8(1), uint8(2), uint8(3), uint8(4)})
	gotFilled := hexString(pool.GetRoot(filledRoot))
	wantFilled := "bac511d1f641d6b8823200bb4b3cced3bd4720701f18571dff35a5d2a40190fa"
	if gotFilled != wantFilled {
		t.Fatalf("[1,2,3,4] list root = %s, want %s", gotFilled, wantFilled)
	}
}

// Scenario 4 — list of uint64 limit 128 hashing.
func TestListUint64Scenario4(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())

	root := desc.FromValue(pool, []any{uint64(100000), uint64(200000), uint64(300000), uint64(400000)})
	got := hexString(pool.GetRoot(root))
	want := "d1daef215502b7746e5ff3e8833e399cb249ab3f81d824be60e174ff5633c1bf"
	if got != want {
		t.Fatalf("list root = %s, want %s", got, want)
	}
}

func TestListViewPushAndGet(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)

	root := desc.FromValue(pool, []any{uint64(1), uint64(2)})
	lv := NewListView(store, root, desc)

	if lv.Length() != 2 {
		t.Fatalf("initial length = %d, want 2", lv.Length())
	}
	if err := lv.Push(uint64(3)); err != nil {
		t.Fatal(err)
	}
	if lv.Length() != 3 {
		t.Fatalf("length after push = %d, want 3", lv.Length())
	}
	v, err := lv.Get(2)
	if err != nil {
		t.Fatal(err)
	}
	if v.(uint64) != 3 {
		t.Fatalf("Get(2) = %v, want 3", v)
	}
	if err := lv.Commit(); err != nil {
		t.Fatal(err)
	}

	refRoot := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3)})
	if lv.HashTreeRoot() != pool.GetRoot(refRoot) {
		t.Fatal("root after push mismatch")
	}
}

func TestListPushAtLimitFails(t *testing.T) {
	desc := NewListType(Uint64Type{}, 2)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, []any{uint64(1), uint64(2)})
	lv := NewListView(store, root, desc)

	if err := lv.Push(uint64(3)); err != ErrLengthOverLimit {
		t.Fatalf("Push at limit err = %v, want ErrLengthOverLimit", err)
	}
}

// Persistent sharing: sliceTo(index) shares every subtree fully contained
// in [0, index] with the original, and the original itself survives
// untouched — SliceTo returns a new view rather than mutating in place.
// SliceTo(3) keeps all four uint64 elements of chunk 0, so that chunk is
// fully contained in the kept range.
func TestListSliceToSharesPrefix(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)

	root := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3), uint64(4), uint64(5)})
	pool.Ref(root)
	lv := NewListView(store, root, desc)

	before := pool.GetNodeAtDepth(store.GetChildNode(lv.ViewId(), gindexElemRoot), desc.ChunkDepth(), 0)

	sliced, err := lv.SliceTo(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := sliced.Commit(); err != nil {
		t.Fatal(err)
	}
	if sliced.Length() != 4 {
		t.Fatalf("length after SliceTo(3) = %d, want 4", sliced.Length())
	}
	if lv.Length() != 5 {
		t.Fatalf("original length after SliceTo(3) = %d, want unchanged 5", lv.Length())
	}

	after := pool.GetNodeAtDepth(store.GetChildNode(sliced.ViewId(), gindexElemRoot), desc.ChunkDepth(), 0)
	if before != after {
		t.Error("chunk 0 should be shared with the pre-truncation tree")
	}

	refRoot := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3), uint64(4)})
	if sliced.HashTreeRoot() != pool.GetRoot(refRoot) {
		t.Fatal("root after SliceTo(3) should equal hashTreeRoot of the first 4 elements")
	}
}

// SliceTo's in-chunk zeroing: a boundary that falls mid-chunk must zero the
// unused tail bytes of the last kept chunk, not merely leave the truncated
// elements' bytes live in an otherwise-shared chunk.
func TestListSliceToZeroesChunkTail(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)

	root := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3), uint64(4), uint64(5)})
	lv := NewListView(store, root, desc)

	sliced, err := lv.SliceTo(2)
	if err != nil {
		t.Fatal(err)
	}
	refRoot := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3)})
	if sliced.HashTreeRoot() != pool.GetRoot(refRoot) {
		t.Fatal("SliceTo(2) root should match hashTreeRoot([1,2,3]), not a whole-chunk truncation")
	}
}

// Boundary law: sliceTo(length-1) must return a view whose root is
// identical to the original's.
func TestListSliceToLengthMinusOneKeepsRoot(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3)})
	lv := NewListView(store, root, desc)

	before := lv.HashTreeRoot()
	sliced, err := lv.SliceTo(2)
	if err != nil {
		t.Fatal(err)
	}
	if sliced.HashTreeRoot() != before {
		t.Fatal("SliceTo(length-1) should return a view with the original's root")
	}
}

// Persistent sharing: sliceFrom(index) reuses the source's chunk subtrees
// for a chunk-aligned start, and the original survives untouched.
func TestListSliceFromSharesSuffix(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)

	root := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3), uint64(4), uint64(5), uint64(6), uint64(7), uint64(8)})
	lv := NewListView(store, root, desc)

	sliced, err := lv.SliceFrom(4)
	if err != nil {
		t.Fatal(err)
	}
	if sliced.Length() != 4 {
		t.Fatalf("length after SliceFrom(4) = %d, want 4", sliced.Length())
	}
	if lv.Length() != 8 {
		t.Fatalf("original length after SliceFrom(4) = %d, want unchanged 8", lv.Length())
	}

	refRoot := desc.FromValue(pool, []any{uint64(5), uint64(6), uint64(7), uint64(8)})
	if sliced.HashTreeRoot() != pool.GetRoot(refRoot) {
		t.Fatal("root after SliceFrom(4) should equal hashTreeRoot of the last 4 elements")
	}
}

// SliceFrom on an unaligned, mid-chunk boundary shifts packed bytes across
// the chunk boundary rather than only reusing whole chunks.
func TestListSliceFromUnalignedStart(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)

	root := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3), uint64(4), uint64(5)})
	lv := NewListView(store, root, desc)

	sliced, err := lv.SliceFrom(3)
	if err != nil {
		t.Fatal(err)
	}
	if sliced.Length() != 2 {
		t.Fatalf("length after SliceFrom(3) = %d, want 2", sliced.Length())
	}
	refRoot := desc.FromValue(pool, []any{uint64(4), uint64(5)})
	if sliced.HashTreeRoot() != pool.GetRoot(refRoot) {
		t.Fatal("root after SliceFrom(3) should equal hashTreeRoot of the last 2 elements")
	}
}

// Boundary law: sliceFrom(0) must return a view whose root is identical to
// the original's.
func TestListSliceFromZeroKeepsRoot(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, []any{uint64(1), uint64(2), uint64(3)})
	lv := NewListView(store, root, desc)

	before := lv.HashTreeRoot()
	sliced, err := lv.SliceFrom(0)
	if err != nil {
		t.Fatal(err)
	}
	if sliced.HashTreeRoot() != before {
		t.Fatal("SliceFrom(0) should return a view with the original's root")
	}
}

func TestListGetAllInto(t *testing.T) {
	desc := NewListType(Uint64Type{}, 128)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, []any{uint64(10), uint64(20), uint64(30)})
	lv := NewListView(store, root, desc)

	out := make([]any, lv.Length())
	if err := lv.GetAllInto(out); err != nil {
		t.Fatal(err)
	}
	want := []uint64{10, 20, 30}
	for i, w := range want {
		if out[i].(uint64) != w {
			t.Errorf("GetAllInto()[%d] = %v, want %d", i, out[i], w)
		}
	}
}

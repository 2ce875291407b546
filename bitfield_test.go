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

func TestBitVectorGetSetRoundTrip(t *testing.T) {
	desc := NewBitVectorType(300) // spans more than one 256-bit chunk
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)

	bits := make([]bool, 300)
	bits[0] = true
	bits[255] = true
	bits[256] = true
	bits[299] = true
	root := desc.FromValue(pool, bits)
	bv := NewBitVectorView(store, root, desc)

	for _, idx := range []uint64{0, 255, 256, 299} {
		got, err := bv.Get(idx)
		if err != nil {
			t.Fatal(err)
		}
		if !got {
			t.Errorf("bit %d should be set", idx)
		}
	}
	got, err := bv.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("bit 1 should be unset")
	}

	if err := bv.Set(1, true); err != nil {
		t.Fatal(err)
	}
	if err := bv.Commit(); err != nil {
		t.Fatal(err)
	}
	bits[1] = true
	refRoot := desc.FromValue(pool, bits)
	if bv.HashTreeRoot() != pool.GetRoot(refRoot) {
		t.Fatal("root after Set(1,true) mismatch")
	}
}

func TestBitVectorBoundsChecked(t *testing.T) {
	desc := NewBitVectorType(8)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, make([]bool, 8))
	bv := NewBitVectorView(store, root, desc)

	if _, err := bv.Get(8); err != ErrIndexOutOfBounds {
		t.Fatalf("Get(8) err = %v, want ErrIndexOutOfBounds", err)
	}
	if err := bv.Set(100, true); err != ErrIndexOutOfBounds {
		t.Fatalf("Set(100,...) err = %v, want ErrIndexOutOfBounds", err)
	}
}

func TestBitVectorSerializeIntoBytes(t *testing.T) {
	desc := NewBitVectorType(12)
	bits := make([]bool, 12)
	bits[0] = true
	bits[9] = true
	out := make([]byte, desc.FixedSize())
	n := desc.SerializeIntoBytes(bits, out)
	if n != 2 {
		t.Fatalf("serialized size = %d, want 2", n)
	}
	if out[0] != 0x01 || out[1] != 0x02 {
		t.Fatalf("serialized bytes = % x, want 01 02", out)
	}
}

func TestBitListPushAndLength(t *testing.T) {
	desc := NewBitListType(2048)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, []bool{true, false, true})
	blv := NewBitListView(store, root, desc)

	if blv.Length() != 3 {
		t.Fatalf("initial length = %d, want 3", blv.Length())
	}
	if err := blv.Push(true); err != nil {
		t.Fatal(err)
	}
	if blv.Length() != 4 {
		t.Fatalf("length after push = %d, want 4", blv.Length())
	}
	got, err := blv.Get(3)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("bit 3 should be set after push")
	}
	if err := blv.Commit(); err != nil {
		t.Fatal(err)
	}

	refRoot := desc.FromValue(pool, []bool{true, false, true, true})
	if blv.HashTreeRoot() != pool.GetRoot(refRoot) {
		t.Fatal("root after push mismatch")
	}
}

func TestBitListPushAtLimitFails(t *testing.T) {
	desc := NewBitListType(2)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, []bool{true, true})
	blv := NewBitListView(store, root, desc)

	if err := blv.Push(false); err != ErrLengthOverLimit {
		t.Fatalf("Push at limit err = %v, want ErrLengthOverLimit", err)
	}
}

func TestBitVectorToBoolArray(t *testing.T) {
	desc := NewBitVectorType(300)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)

	bits := make([]bool, 300)
	bits[0] = true
	bits[255] = true
	bits[256] = true
	bits[299] = true
	root := desc.FromValue(pool, bits)
	bv := NewBitVectorView(store, root, desc)

	got := bv.ToBoolArray()
	if len(got) != 300 {
		t.Fatalf("ToBoolArray length = %d, want 300", len(got))
	}
	for i, want := range bits {
		if got[i] != want {
			t.Fatalf("ToBoolArray()[%d] = %v, want %v", i, got[i], want)
		}
	}

	into := make([]bool, 300)
	bv.ToBoolArrayInto(into)
	for i, want := range bits {
		if into[i] != want {
			t.Fatalf("ToBoolArrayInto()[%d] = %v, want %v", i, into[i], want)
		}
	}
}

func TestBitListToBoolArray(t *testing.T) {
	desc := NewBitListType(2048)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	want := []bool{true, false, true, true, false}
	root := desc.FromValue(pool, want)
	blv := NewBitListView(store, root, desc)

	got := blv.ToBoolArray()
	if len(got) != len(want) {
		t.Fatalf("ToBoolArray length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ToBoolArray()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	into := make([]bool, len(want))
	blv.ToBoolArrayInto(into)
	for i := range want {
		if into[i] != want[i] {
			t.Fatalf("ToBoolArrayInto()[%d] = %v, want %v", i, into[i], want[i])
		}
	}
}

func TestBitListToBitlistRoundTrip(t *testing.T) {
	desc := NewBitListType(64)
	pool := NewPool(DefaultConfig())
	store := NewViewStore(pool)
	root := desc.FromValue(pool, []bool{true, false, false, true, true})
	blv := NewBitListView(store, root, desc)

	bl := blv.ToBitlist()
	if bl.Len() != 5 {
		t.Fatalf("bitlist length = %d, want 5", bl.Len())
	}
	if !bl.BitAt(0) || bl.BitAt(1) || bl.BitAt(2) || !bl.BitAt(3) || !bl.BitAt(4) {
		t.Fatal("bitlist contents mismatch")
	}
}

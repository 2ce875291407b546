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

func TestDepthForCount(t *testing.T) {
	cases := []struct {
		n    uint64
		want uint
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{128, 7},
	}
	for _, c := range cases {
		if got := depthForCount(c.n); got != c.want {
			t.Errorf("depthForCount(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestUint64TypePackedRoundTrip(t *testing.T) {
	var chunk [32]byte
	u := Uint64Type{}
	u.FromValuePacked(&chunk, 2, uint64(0xdeadbeef))
	if got := u.ToValuePacked(chunk, 2); got.(uint64) != 0xdeadbeef {
		t.Fatalf("packed round trip = %#x, want 0xdeadbeef", got)
	}
	if u.ItemsPerChunk() != 4 {
		t.Fatalf("ItemsPerChunk = %d, want 4", u.ItemsPerChunk())
	}
}

func TestUint8TypePackedRoundTrip(t *testing.T) {
	var chunk [32]byte
	u8 := Uint8Type{}
	for i := 0; i < 32; i++ {
		u8.FromValuePacked(&chunk, i, uint8(i+1))
	}
	for i := 0; i < 32; i++ {
		if got := u8.ToValuePacked(chunk, i); got.(uint8) != uint8(i+1) {
			t.Fatalf("slot %d = %v, want %d", i, got, i+1)
		}
	}
}

func TestVectorTypeScenario2FromValue(t *testing.T) {
	desc := NewVectorType(Uint8Type{}, 4)
	pool := NewPool(DefaultConfig())
	root := desc.FromValue(pool, []any{uint8(11), uint8(22), uint8(33), uint8(44)})
	out := make([]byte, desc.FixedSize())
	n := desc.SerializeIntoBytes(desc.ToValue(pool, root), out)
	want := []byte{11, 22, 33, 44}
	if n != len(want) {
		t.Fatalf("serialized size = %d, want %d", n, len(want))
	}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("byte %d = %d, want %d", i, out[i], w)
		}
	}
}

func TestContainerFixedOffsets(t *testing.T) {
	desc := NewContainerType([]Field{
		{Name: "a", Type: Uint64Type{}},
		{Name: "b", Type: Uint8Type{}},
		{Name: "c", Type: Uint64Type{}},
	})
	fields := desc.Fields()
	if fields[0].Offset != 0 || fields[1].Offset != 8 || fields[2].Offset != 9 {
		t.Fatalf("offsets = %d %d %d, want 0 8 9", fields[0].Offset, fields[1].Offset, fields[2].Offset)
	}
	if desc.FixedSize() != 17 {
		t.Fatalf("fixed size = %d, want 17", desc.FixedSize())
	}
}

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

package main

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ssztree"
)

// main repeatedly builds a random validator set, serializes a perturbed
// copy of it, runs DiffLoadValidators against the original, and checks the
// result's hash-tree-root against a from-scratch deserialization of the
// perturbed bytes. It loops forever like the teacher's
// fuzzinsertstemordered, reporting the attempt number and panicking on the
// first mismatch rather than stopping after one pass.
func main() {
	pool := ssztree.NewPool(ssztree.DefaultConfig())
	validatorType := ssztree.NewValidatorType()
	stride := validatorType.FixedSize()
	const count = 2048
	const limit = 1 << 22
	listType := ssztree.NewListType(validatorType, limit)

	for attempt := 0; ; attempt++ {
		fmt.Println("attempt #", attempt)

		values := make([]any, count)
		seedBytes := make([]byte, count*stride)
		for i := range values {
			v := randomValidator()
			values[i] = v
			validatorType.SerializeIntoBytes(v, seedBytes[i*stride:])
		}
		seedListRoot := listType.FromValue(pool, values)
		seedElemRoot := pool.GetNode(seedListRoot, ssztree.GindexFromUint64(2))
		pool.Ref(seedElemRoot)

		newBytes := append([]byte(nil), seedBytes...)
		flipCount := 1 + count/500
		for i := 0; i < flipCount; i++ {
			idx := randIntn(count)
			offset := 48 + randIntn(32) // perturb within withdrawal_credentials
			newBytes[idx*stride+offset] ^= 0xff
		}

		newElemRoot, newCount, modified, err := ssztree.DiffLoadValidators(
			context.Background(), pool, seedElemRoot, listType.ChunkDepth(), listType, count, newBytes)
		if err != nil {
			panic(err)
		}
		fmt.Printf("  %d validators modified\n", len(modified))

		newValues := make([]any, newCount)
		for i := uint64(0); i < newCount; i++ {
			newValues[i] = ssztree.DecodeValidator(validatorType, newBytes[i*uint64(stride):(i+1)*uint64(stride)])
		}
		refRoot := listType.FromValue(pool, newValues)

		gotRoot := pool.SetNode(seedListRoot, ssztree.GindexFromUint64(2), newElemRoot)
		if pool.GetRoot(gotRoot) != pool.GetRoot(refRoot) {
			panic("diff-load root mismatch against from-scratch deserialization")
		}

		pool.Unref(seedListRoot)
		pool.Unref(seedElemRoot)
		pool.Unref(refRoot)
		pool.Unref(gotRoot)
	}
}

func randIntn(n int) int {
	var b [8]byte
	_, _ = rand.Read(b[:])
	var x uint64
	for i := 0; i < 8; i++ {
		x = x<<8 | uint64(b[i])
	}
	return int(x % uint64(n))
}

func randomValidator() map[string]any {
	pubkey := make([]any, 48)
	withdrawal := make([]any, 32)
	for i := range pubkey {
		var b [1]byte
		_, _ = rand.Read(b[:])
		pubkey[i] = b[0]
	}
	for i := range withdrawal {
		var b [1]byte
		_, _ = rand.Read(b[:])
		withdrawal[i] = b[0]
	}
	return map[string]any{
		"pubkey":                       pubkey,
		"withdrawal_credentials":       withdrawal,
		"effective_balance":            uint64(32000000000),
		"slashed":                      false,
		"activation_eligibility_epoch": uint64(0),
		"activation_epoch":             uint64(0),
		"exit_epoch":                   uint64(1<<64 - 1),
		"withdrawable_epoch":           uint64(1<<64 - 1),
	}
}

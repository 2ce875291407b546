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
	"crypto/rand"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/ethereum/go-ssztree"
)

func main() {
	benchmarkInsertInExistingValidatorList()
}

// benchmarkInsertInExistingValidatorList builds a large validators list,
// commits it, then measures how long it takes to push a further batch and
// commit again. This is the structural-sharing counterpart of the
// teacher's "insert into an existing tree" benchmark: instead of timing
// key/value leaf insertion into a verkle trie, it times validator pushes
// into a persistent SSZ list view.
func benchmarkInsertInExistingValidatorList() {
	f, _ := os.Create("cpu.prof")
	g, _ := os.Create("mem.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()
	defer func() { _ = pprof.WriteHeapProfile(g) }()

	const (
		n        = 100_000
		toInsert = 1_000
		limit    = 1 << 22
	)

	pool := ssztree.NewPool(ssztree.DefaultConfig())
	store := ssztree.NewViewStore(pool)
	validatorType := ssztree.NewValidatorType()
	listType := ssztree.NewListType(validatorType, limit)

	for round := 0; round < 4; round++ {
		emptyRoot := listType.FromValue(pool, []any{})
		list := ssztree.NewListView(store, emptyRoot, listType)
		for i := 0; i < n; i++ {
			v := ssztree.NewContainerView(store, validatorType.FromValue(pool, randomValidator()), validatorType)
			if err := list.Push(v); err != nil {
				panic(err)
			}
		}
		if err := list.Commit(); err != nil {
			panic(err)
		}
		fmt.Printf("round %d: built %d-validator list\n", round, n)

		start := time.Now()
		for i := 0; i < toInsert; i++ {
			v := ssztree.NewContainerView(store, validatorType.FromValue(pool, randomValidator()), validatorType)
			if err := list.Push(v); err != nil {
				panic(err)
			}
		}
		if err := list.Commit(); err != nil {
			panic(err)
		}
		elapsed := time.Since(start)
		fmt.Printf("round %d: took %v to push and commit %d more validators\n", round, elapsed, toInsert)

		list.Deinit()
	}
	fmt.Printf("pool stats: %s\n", ssztree.DumpPoolStats(pool.Stats()))
}

func randomValidator() map[string]any {
	pubkey := make([]any, 48)
	withdrawal := make([]any, 32)
	var buf [8]byte
	_, _ = rand.Read(buf[:])
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
		"pubkey":                        pubkey,
		"withdrawal_credentials":        withdrawal,
		"effective_balance":             uint64(32000000000),
		"slashed":                       false,
		"activation_eligibility_epoch":  uint64(0),
		"activation_epoch":              uint64(0),
		"exit_epoch":                    uint64(1<<64 - 1),
		"withdrawable_epoch":            uint64(1<<64 - 1),
	}
}

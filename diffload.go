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
	"bytes"
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// parallelDiffThreshold bounds how small a byte-equality divide-and-conquer
// range has to shrink to before diffModifiedIndices stops handing it to a
// new goroutine and just recurses in place. Below this, the errgroup
// scheduling overhead would dwarf the comparison itself.
const parallelDiffThreshold = 1024

// NewValidatorType builds the §4.G Validator container schema: pubkey and
// withdrawal_credentials are the two fields loadValidatorWithSeedReuse can
// independently reuse from a seed, exactly as named here.
func NewValidatorType() *ContainerType {
	return NewContainerType([]Field{
		{Name: "pubkey", Type: NewVectorType(Uint8Type{}, 48)},
		{Name: "withdrawal_credentials", Type: NewVectorType(Uint8Type{}, 32)},
		{Name: "effective_balance", Type: Uint64Type{}},
		{Name: "slashed", Type: BoolType{}},
		{Name: "activation_eligibility_epoch", Type: Uint64Type{}},
		{Name: "activation_epoch", Type: Uint64Type{}},
		{Name: "exit_epoch", Type: Uint64Type{}},
		{Name: "withdrawable_epoch", Type: Uint64Type{}},
	})
}

// diffModifiedIndices implements §4.G step 3: a divide-and-conquer
// byte-equality recursion over two equal-stride, equal-length record
// ranges. A range that compares equal stops immediately; a single-record
// range that differs records its index; otherwise the range splits in
// half. This is the one place in the package that runs more than one
// goroutine against a shared Pool/ViewStore — and it is safe only because
// it touches neither: it is a pure byte comparison over two already-
// serialized []byte snapshots, with the results merged under a mutex.
func diffModifiedIndices(ctx context.Context, seed, next []byte, stride int, count uint64) ([]uint64, error) {
	if count == 0 {
		return nil, nil
	}
	var (
		modified []uint64
		mu       sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)

	var rec func(lo, hi uint64)
	rec = func(lo, hi uint64) {
		a := seed[lo*uint64(stride) : hi*uint64(stride)]
		b := next[lo*uint64(stride) : hi*uint64(stride)]
		if bytes.Equal(a, b) {
			return
		}
		if hi-lo == 1 {
			mu.Lock()
			modified = append(modified, lo)
			mu.Unlock()
			return
		}
		mid := lo + (hi-lo)/2
		if hi-lo > parallelDiffThreshold {
			g.Go(func() error {
				rec(lo, mid)
				return gctx.Err()
			})
			rec(mid, hi)
			return
		}
		rec(lo, mid)
		rec(mid, hi)
	}
	rec(0, count)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(modified, func(i, j int) bool { return modified[i] < modified[j] })
	return modified, nil
}

// decodeFixedValue decodes a fixed-size field's raw SSZ bytes into the Go
// value representation schema.go's descriptors expect. It covers exactly
// the shapes NewValidatorType uses: the plain basic types, and a Vector of
// Uint8Type for the two byte-string fields.
func decodeFixedValue(d Descriptor, raw []byte) any {
	switch t := d.(type) {
	case Uint64Type:
		var u uint64
		for i := 7; i >= 0; i-- {
			u = u<<8 | uint64(raw[i])
		}
		return u
	case Uint8Type:
		return raw[0]
	case BoolType:
		return raw[0] != 0
	case *VectorType:
		out := make([]any, t.length)
		for i := range out {
			out[i] = raw[i]
		}
		return out
	default:
		panic(ErrUnsupportedCompositeType)
	}
}

// DecodeValidator decodes a raw 121-byte SSZ validator record into the
// map[string]any value shape ContainerType.FromValue expects, for callers
// (tests, the fuzz harness) that need to build a from-scratch reference
// tree out of the same bytes DiffLoadValidators consumed.
func DecodeValidator(desc *ContainerType, raw []byte) map[string]any {
	return decodeFixedContainer(desc, raw)
}

func decodeFixedContainer(desc *ContainerType, raw []byte) map[string]any {
	out := make(map[string]any, len(desc.fields))
	for _, f := range desc.fields {
		fs := f.Type.FixedSize()
		out[f.Name] = decodeFixedValue(f.Type, raw[f.Offset:f.Offset+fs])
	}
	return out
}

// loadValidatorWithSeedReuse implements §4.G step 4: reuse the seed's
// pubkey and/or withdrawal_credentials chunk node when those byte ranges
// are unchanged, rebuild only the fields that actually differ, and fall
// back to a full deserialization when both byte-string fields changed (in
// which case no partial sharing is possible anyway).
func loadValidatorWithSeedReuse(p *Pool, seedRoot NodeId, seedRecord, newRecord []byte, desc *ContainerType) NodeId {
	pubkeySame := bytes.Equal(seedRecord[0:48], newRecord[0:48])
	withdrawalSame := bytes.Equal(seedRecord[48:80], newRecord[48:80])
	if !pubkeySame && !withdrawalSame {
		return desc.FromValue(p, decodeFixedContainer(desc, newRecord))
	}

	values := decodeFixedContainer(desc, newRecord)
	leaves := make([]NodeId, len(desc.fields))
	for i, f := range desc.fields {
		switch {
		case f.Name == "pubkey" && pubkeySame:
			leaves[i] = p.GetNodeAtDepth(seedRoot, desc.chunkDepth, uint64(i))
		case f.Name == "withdrawal_credentials" && withdrawalSame:
			leaves[i] = p.GetNodeAtDepth(seedRoot, desc.chunkDepth, uint64(i))
		default:
			leaves[i] = f.Type.FromValue(p, values[f.Name])
		}
	}
	return p.FillWithContents(leaves, desc.chunkDepth)
}

// DiffLoadValidators implements §4.G end to end: given a seed validators
// list's element subtree and the new state's raw, concatenated
// fixed-stride validator bytes (a List of fixed-size elements serializes
// with no offset table, so this is just stride*index slicing), it produces
// a new element-subtree root sharing every unmodified validator's node
// with the seed, the new element count, and the sorted set of modified
// indices.
func DiffLoadValidators(ctx context.Context, pool *Pool, seedElemRoot NodeId, elemDepth uint, listDesc *ListType, seedCount uint64, newBytes []byte) (NodeId, uint64, []uint64, error) {
	validatorDesc := listDesc.Element().(*ContainerType)
	stride := validatorDesc.FixedSize()
	newCount := uint64(len(newBytes)) / uint64(stride)

	minCount := seedCount
	if newCount < minCount {
		minCount = newCount
	}

	seedBytes := make([]byte, minCount*uint64(stride))
	buf := make([]byte, stride)
	for i := uint64(0); i < minCount; i++ {
		child := pool.GetNodeAtDepth(seedElemRoot, elemDepth, i)
		val := validatorDesc.ToValue(pool, child)
		validatorDesc.SerializeIntoBytes(val, buf)
		copy(seedBytes[i*uint64(stride):], buf)
	}

	modified, err := diffModifiedIndices(ctx, seedBytes, newBytes[:minCount*uint64(stride)], stride, minCount)
	if err != nil {
		return 0, 0, nil, err
	}

	gindices := make([]Gindex, 0, len(modified)+int(newCount-minCount))
	nodes := make([]NodeId, 0, cap(gindices))
	for _, idx := range modified {
		seedChild := pool.GetNodeAtDepth(seedElemRoot, elemDepth, idx)
		newRecord := newBytes[idx*uint64(stride) : (idx+1)*uint64(stride)]
		seedRecord := seedBytes[idx*uint64(stride) : (idx+1)*uint64(stride)]
		gindices = append(gindices, GindexFromDepth(elemDepth, idx))
		nodes = append(nodes, loadValidatorWithSeedReuse(pool, seedChild, seedRecord, newRecord, validatorDesc))
	}
	for idx := minCount; idx < newCount; idx++ {
		newRecord := newBytes[idx*uint64(stride) : (idx+1)*uint64(stride)]
		gindices = append(gindices, GindexFromDepth(elemDepth, idx))
		nodes = append(nodes, validatorDesc.FromValue(pool, decodeFixedContainer(validatorDesc, newRecord)))
	}
	// modified is ascending (diffModifiedIndices sorts it) and every appended index
	// exceeds every modified one, so gindices is already ascending: no
	// SortAsc needed before SetNodesGrouped.

	newElemRoot := seedElemRoot
	switch {
	case newCount == 0:
		newElemRoot = zeroSubtreeAtDepth(elemDepth)
	case newCount < seedCount:
		newElemRoot = pool.TruncateAfterIndex(newElemRoot, elemDepth, newCount-1)
	}
	if len(gindices) > 0 {
		newElemRoot = pool.SetNodesGrouped(newElemRoot, gindices, nodes)
	}
	return newElemRoot, newCount, modified, nil
}

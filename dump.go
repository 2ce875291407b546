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
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// DumpValue renders a decoded view value (the map[string]any/[]any shapes
// ToValue produces) with go-spew, for structural diffs in test failure
// messages instead of a raw %#v dump.
func DumpValue(v any) string {
	return spew.Sdump(v)
}

// DumpPoolStats formats a PoolStats snapshot for debug logging.
func DumpPoolStats(s PoolStats) string {
	return fmt.Sprintf("live=%d leaves=%d branches=%d zero_subtree_hits=%d",
		s.LiveNodes, s.Leaves, s.Branches, s.ZeroSubtreeHits)
}

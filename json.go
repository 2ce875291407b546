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
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Root is a 32-byte hash-tree-root, given its own JSON encoding (an object
// {"root":"0x..."} holding a "0x"-prefixed hex string) so snapshot/fixture
// files stay human-readable rather than a raw byte-array dump.
type Root [32]byte

type rootMarshaller struct {
	Root string `json:"root"`
}

// MarshalJSON renders r as {"root":"0x..."}.
func (r Root) MarshalJSON() ([]byte, error) {
	return json.Marshal(&rootMarshaller{Root: "0x" + hex.EncodeToString(r[:])})
}

// UnmarshalJSON parses the {"root":"0x..."} form produced by MarshalJSON,
// returning ErrInvalidJSON (wrapped with the offending string) if the hex
// payload isn't exactly 32 bytes.
func (r *Root) UnmarshalJSON(data []byte) error {
	var aux rootMarshaller
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	s := aux.Root
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != 64 {
		return fmt.Errorf("%w: root must be 32 bytes, got %d hex chars", ErrInvalidJSON, len(s))
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	copy(r[:], decoded)
	return nil
}

// RootOf wraps a committed view's hash-tree-root for JSON encoding.
func RootOf(v TreeView) Root {
	return Root(v.HashTreeRoot())
}

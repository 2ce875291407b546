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

import "errors"

// Bounds and input violations. Raised synchronously at the call site; no
// state is mutated before the error is returned.
var (
	ErrIndexOutOfBounds = errors.New("ssztree: index out of bounds")
	ErrLengthOverLimit  = errors.New("ssztree: length exceeds schema limit")
	ErrInvalidSize      = errors.New("ssztree: invalid size")
)

// Contract violations. These indicate an internal invariant break rather
// than a caller mistake about bounds.
var (
	ErrDifferentStore          = errors.New("ssztree: subview belongs to a different store")
	ErrChildNotFound           = errors.New("ssztree: commit saw a dirty gindex with no cached node or view")
	ErrUnsupportedCompositeType = errors.New("ssztree: unsupported composite element type")
	ErrMissingChildValue       = errors.New("ssztree: container commit missing a basic child value")
	ErrMissingChildView        = errors.New("ssztree: container commit missing a composite child view")
)

// Parse violations.
var (
	ErrInvalidJSON = errors.New("ssztree: invalid JSON")
)

// Pool-level errors.
var (
	ErrFreedHandle  = errors.New("ssztree: use of a freed node handle")
	ErrInvalidGindex = errors.New("ssztree: invalid generalized index")
)

// File: pool/errors.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
	"github.com/pkg/errors"
)

// zeroBase is the shared non-nil address handed out for zero-length blocks.
var zeroBase byte

func zeroBlock() unsafe.Pointer { return unsafe.Pointer(&zeroBase) }

func isZeroBlock(ptr unsafe.Pointer) bool { return ptr == unsafe.Pointer(&zeroBase) }

func errNegativeSize(op string, size int) error {
	return api.NewError(api.ErrCodeInvalidArgument, "negative block size").
		WithOp(op).
		WithContext("size", size)
}

func errAllocFailed(name string, size int, cause error) error {
	if cause == nil {
		cause = errors.New("null address")
	}
	return api.NewError(api.ErrCodeAllocationFailure, "allocator could not supply block").
		WithOp(name+".Allocate").
		WithContext("size", size).
		WithCause(errors.Wrapf(cause, "%s: %d bytes", name, size))
}

func errUnknownBlock(name string, ptr unsafe.Pointer, size int) error {
	return api.NewError(api.ErrCodeInvalidArgument, "free of unknown block").
		WithOp(name+".Free").
		WithContext("addr", uintptr(ptr)).
		WithContext("size", size)
}

// fill is the portable memset used by Go-side allocators.
func fill(ptr unsafe.Pointer, value byte, length int) {
	if length <= 0 || ptr == nil {
		return
	}
	b := unsafe.Slice((*byte)(ptr), length)
	if value == 0 {
		clear(b)
		return
	}
	for i := range b {
		b[i] = value
	}
}

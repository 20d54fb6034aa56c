//go:build !cgo

// File: pool/libc_nocgo.go
// Author: momentics <momentics@gmail.com>
//
// Stubbed C runtime allocator for builds with CGO disabled.

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
)

const libcSupported = false

// LibcAllocator fails every allocation when CGO is disabled.
type LibcAllocator struct {
	stats counters
}

// NewLibc returns the stub allocator.
func NewLibc() *LibcAllocator {
	return &LibcAllocator{stats: counters{name: NameLibc}}
}

// Allocate always fails: there is no C runtime to call.
func (l *LibcAllocator) Allocate(size int) (unsafe.Pointer, error) {
	if size < 0 {
		return nil, errNegativeSize(NameLibc+".Allocate", size)
	}
	return nil, errAllocFailed(NameLibc, size, api.ErrNotSupported)
}

// Free rejects every pointer; nothing was ever handed out.
func (l *LibcAllocator) Free(ptr unsafe.Pointer, size int) error {
	return errUnknownBlock(NameLibc, ptr, size)
}

// Fill is a no-op.
func (l *LibcAllocator) Fill(unsafe.Pointer, byte, int) {}

// Stats reports allocation counters.
func (l *LibcAllocator) Stats() api.AllocatorStats {
	return l.stats.snapshot()
}

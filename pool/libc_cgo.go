//go:build cgo

// File: pool/libc_cgo.go
// Author: momentics <momentics@gmail.com>
//
// Host C runtime allocator: malloc, free and memset through cgo.

package pool

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"
import (
	"sync"
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
	"github.com/pkg/errors"
)

const libcSupported = true

// LibcAllocator binds the process C runtime allocator.
type LibcAllocator struct {
	mu    sync.Mutex
	live  map[uintptr]int
	stats counters
}

// NewLibc creates an allocator backed by C malloc/free.
func NewLibc() *LibcAllocator {
	return &LibcAllocator{
		live:  make(map[uintptr]int),
		stats: counters{name: NameLibc},
	}
}

// Allocate calls malloc. malloc(0) may legally return NULL, so zero-length
// requests get one byte.
func (l *LibcAllocator) Allocate(size int) (unsafe.Pointer, error) {
	if size < 0 {
		return nil, errNegativeSize(NameLibc+".Allocate", size)
	}
	n := size
	if n == 0 {
		n = 1
	}
	ptr := C.malloc(C.size_t(n))
	if ptr == nil {
		return nil, errAllocFailed(NameLibc, size, errors.New("malloc returned NULL"))
	}
	l.mu.Lock()
	l.live[uintptr(ptr)] = size
	l.mu.Unlock()
	l.stats.onAlloc(size)
	return ptr, nil
}

// Free calls free on a block returned by Allocate.
func (l *LibcAllocator) Free(ptr unsafe.Pointer, size int) error {
	l.mu.Lock()
	n, ok := l.live[uintptr(ptr)]
	if ok && n == size {
		delete(l.live, uintptr(ptr))
	}
	l.mu.Unlock()
	if !ok || n != size {
		return errUnknownBlock(NameLibc, ptr, size)
	}
	C.free(ptr)
	l.stats.onFree(size)
	return nil
}

// Fill calls memset.
func (l *LibcAllocator) Fill(ptr unsafe.Pointer, value byte, length int) {
	if length <= 0 || ptr == nil {
		return
	}
	C.memset(ptr, C.int(value), C.size_t(length))
}

// Stats reports allocation counters.
func (l *LibcAllocator) Stats() api.AllocatorStats {
	return l.stats.snapshot()
}

var (
	_ api.Allocator     = (*LibcAllocator)(nil)
	_ api.StatsProvider = (*LibcAllocator)(nil)
)

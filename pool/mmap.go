// File: pool/mmap.go
// Author: momentics <momentics@gmail.com>
//
// Page-backed allocator. Platform mapping primitives live in mmap_unix.go,
// mmap_windows.go and mmap_stub.go.

package pool

import (
	"sync"
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
)

// MmapAllocator maps a private anonymous region per block, outside the Go heap.
type MmapAllocator struct {
	mu    sync.Mutex
	live  map[uintptr]int
	stats counters
}

// NewMmap creates a page-backed allocator.
func NewMmap() *MmapAllocator {
	return &MmapAllocator{
		live:  make(map[uintptr]int),
		stats: counters{name: NameMmap},
	}
}

// Allocate maps a zeroed region of exactly size bytes.
func (m *MmapAllocator) Allocate(size int) (unsafe.Pointer, error) {
	if size < 0 {
		return nil, errNegativeSize(NameMmap+".Allocate", size)
	}
	if size == 0 {
		m.stats.onAlloc(0)
		return zeroBlock(), nil
	}
	ptr, err := sysMap(size)
	if err != nil || ptr == nil {
		return nil, errAllocFailed(NameMmap, size, err)
	}
	m.mu.Lock()
	m.live[uintptr(ptr)] = size
	m.mu.Unlock()
	m.stats.onAlloc(size)
	return ptr, nil
}

// Free unmaps a region previously returned by Allocate.
func (m *MmapAllocator) Free(ptr unsafe.Pointer, size int) error {
	if isZeroBlock(ptr) && size == 0 {
		m.stats.onFree(0)
		return nil
	}
	m.mu.Lock()
	n, ok := m.live[uintptr(ptr)]
	if ok && n == size {
		delete(m.live, uintptr(ptr))
	}
	m.mu.Unlock()
	if !ok || n != size {
		return errUnknownBlock(NameMmap, ptr, size)
	}
	if err := sysUnmap(ptr, size); err != nil {
		return api.NewError(api.ErrCodeInternal, "unmap failed").
			WithOp(NameMmap+".Free").
			WithContext("size", size).
			WithCause(err)
	}
	m.stats.onFree(size)
	return nil
}

// Fill writes value into the first length bytes at ptr.
func (m *MmapAllocator) Fill(ptr unsafe.Pointer, value byte, length int) {
	fill(ptr, value, length)
}

// Stats reports allocation counters.
func (m *MmapAllocator) Stats() api.AllocatorStats {
	return m.stats.snapshot()
}

var (
	_ api.Allocator     = (*MmapAllocator)(nil)
	_ api.StatsProvider = (*MmapAllocator)(nil)
)

// File: pool/heap.go
// Author: momentics <momentics@gmail.com>
//
// Go-heap allocator. The Go heap does not move objects, so a block's address
// is stable while the allocator keeps it reachable, which it does until Free.
// Native code must not retain the address past Free.

package pool

import (
	"strconv"
	"sync"
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
	"github.com/pkg/errors"
)

// maxHeapBlock stays below the runtime's largest makeslice length.
const maxHeapBlock = 1<<(min(strconv.IntSize, 48)-1) - 1

// HeapAllocator hands out Go heap blocks kept alive until Free.
type HeapAllocator struct {
	mu     sync.Mutex
	blocks map[uintptr][]byte
	limit  int
	stats  counters
}

// NewHeap creates an empty heap allocator whose block limit is the physical
// memory of the host, when the platform reports it.
func NewHeap() *HeapAllocator {
	limit := maxHeapBlock
	if mem := physicalMemory(); mem > 0 && mem < uint64(limit) {
		limit = int(mem)
	}
	return NewHeapLimit(limit)
}

// NewHeapLimit creates a heap allocator that refuses blocks above limit bytes.
// A non-positive limit selects the runtime maximum.
func NewHeapLimit(limit int) *HeapAllocator {
	if limit <= 0 || limit > maxHeapBlock {
		limit = maxHeapBlock
	}
	return &HeapAllocator{
		blocks: make(map[uintptr][]byte),
		limit:  limit,
		stats:  counters{name: NameHeap},
	}
}

// Limit returns the largest block size Allocate will attempt.
func (h *HeapAllocator) Limit() int { return h.limit }

// Allocate returns a zeroed block of exactly size bytes. Requests above the
// block limit fail with an allocation error instead of reaching the runtime.
func (h *HeapAllocator) Allocate(size int) (unsafe.Pointer, error) {
	if size < 0 {
		return nil, errNegativeSize(NameHeap+".Allocate", size)
	}
	if size == 0 {
		h.stats.onAlloc(0)
		return zeroBlock(), nil
	}
	if size > h.limit {
		return nil, errAllocFailed(NameHeap, size,
			errors.Errorf("exceeds heap block limit of %d bytes", h.limit))
	}
	data := make([]byte, size)
	ptr := unsafe.Pointer(&data[0])

	h.mu.Lock()
	h.blocks[uintptr(ptr)] = data
	h.mu.Unlock()

	h.stats.onAlloc(size)
	return ptr, nil
}

// Free drops the allocator's reference to the block.
func (h *HeapAllocator) Free(ptr unsafe.Pointer, size int) error {
	if isZeroBlock(ptr) && size == 0 {
		h.stats.onFree(0)
		return nil
	}
	h.mu.Lock()
	data, ok := h.blocks[uintptr(ptr)]
	if ok && len(data) == size {
		delete(h.blocks, uintptr(ptr))
	}
	h.mu.Unlock()
	if !ok || len(data) != size {
		return errUnknownBlock(NameHeap, ptr, size)
	}
	h.stats.onFree(size)
	return nil
}

// Fill writes value into the first length bytes at ptr.
func (h *HeapAllocator) Fill(ptr unsafe.Pointer, value byte, length int) {
	fill(ptr, value, length)
}

// Stats reports allocation counters.
func (h *HeapAllocator) Stats() api.AllocatorStats {
	return h.stats.snapshot()
}

var (
	_ api.Allocator     = (*HeapAllocator)(nil)
	_ api.StatsProvider = (*HeapAllocator)(nil)
)

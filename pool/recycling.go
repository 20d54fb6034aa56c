// File: pool/recycling.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Size-class block cache layered over any api.Allocator. Freed blocks are
// parked in a FIFO per exact size and handed out again, zeroed, before the
// backing allocator is asked for fresh memory.

package pool

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-rawmem/api"
	"go.uber.org/multierr"
)

// DefaultRecyclingDepth bounds how many blocks each size class keeps.
const DefaultRecyclingDepth = 64

// RecyclingAllocator caches freed blocks per size class.
type RecyclingAllocator struct {
	backing api.Allocator
	depth   int

	mu      sync.Mutex
	classes map[int]*queue.Queue // Key: block size
	live    map[uintptr]int      // Blocks handed out and not yet freed
	cached  int64

	hits   atomic.Int64
	misses atomic.Int64
	stats  counters
}

// NewRecycling wraps backing. depth <= 0 selects DefaultRecyclingDepth.
func NewRecycling(backing api.Allocator, depth int) *RecyclingAllocator {
	if depth <= 0 {
		depth = DefaultRecyclingDepth
	}
	return &RecyclingAllocator{
		backing: backing,
		depth:   depth,
		classes: make(map[int]*queue.Queue),
		live:    make(map[uintptr]int),
		stats:   counters{name: NameRecycling},
	}
}

// Allocate reuses the oldest cached block of this size, or asks backing.
// Zero-size blocks bypass the cache since backings may share their address.
func (r *RecyclingAllocator) Allocate(size int) (unsafe.Pointer, error) {
	if size < 0 {
		return nil, errNegativeSize(NameRecycling+".Allocate", size)
	}
	if size == 0 {
		ptr, err := r.backing.Allocate(0)
		if err != nil {
			return nil, err
		}
		r.stats.onAlloc(0)
		return ptr, nil
	}
	if ptr := r.take(size); ptr != nil {
		r.hits.Add(1)
		r.backing.Fill(ptr, 0, size)
		r.stats.onAlloc(size)
		return ptr, nil
	}
	r.misses.Add(1)
	ptr, err := r.backing.Allocate(size)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, errAllocFailed(NameRecycling, size, nil)
	}
	r.mu.Lock()
	r.live[uintptr(ptr)] = size
	r.mu.Unlock()
	r.stats.onAlloc(size)
	return ptr, nil
}

func (r *RecyclingAllocator) take(size int) unsafe.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.classes[size]
	if q == nil || q.Length() == 0 {
		return nil
	}
	r.cached--
	ptr := q.Remove().(unsafe.Pointer)
	r.live[uintptr(ptr)] = size
	return ptr
}

// Free parks the block for reuse, or releases it to backing when its size
// class is full. Only blocks handed out by Allocate, at their allocated size,
// are accepted, so a block is never queued twice.
func (r *RecyclingAllocator) Free(ptr unsafe.Pointer, size int) error {
	if ptr == nil {
		return errUnknownBlock(NameRecycling, ptr, size)
	}
	if size == 0 {
		if err := r.backing.Free(ptr, 0); err != nil {
			return err
		}
		r.stats.onFree(0)
		return nil
	}
	r.mu.Lock()
	if n, ok := r.live[uintptr(ptr)]; !ok || n != size {
		r.mu.Unlock()
		return errUnknownBlock(NameRecycling, ptr, size)
	}
	delete(r.live, uintptr(ptr))
	q := r.classes[size]
	if q == nil {
		q = queue.New()
		r.classes[size] = q
	}
	if q.Length() < r.depth {
		q.Add(ptr)
		r.cached++
		r.mu.Unlock()
		r.stats.onFree(size)
		return nil
	}
	r.mu.Unlock()

	if err := r.backing.Free(ptr, size); err != nil {
		return err
	}
	r.stats.onFree(size)
	return nil
}

// Fill delegates to the backing allocator.
func (r *RecyclingAllocator) Fill(ptr unsafe.Pointer, value byte, length int) {
	r.backing.Fill(ptr, value, length)
}

// Drain releases every cached block to the backing allocator.
func (r *RecyclingAllocator) Drain() error {
	r.mu.Lock()
	classes := r.classes
	r.classes = make(map[int]*queue.Queue)
	r.cached = 0
	r.mu.Unlock()

	var errs error
	for size, q := range classes {
		for q.Length() > 0 {
			ptr := q.Remove().(unsafe.Pointer)
			errs = multierr.Append(errs, r.backing.Free(ptr, size))
		}
	}
	return errs
}

// Hits returns how many allocations were served from the cache.
func (r *RecyclingAllocator) Hits() int64 { return r.hits.Load() }

// Misses returns how many allocations went to the backing allocator.
func (r *RecyclingAllocator) Misses() int64 { return r.misses.Load() }

// Stats reports counters as seen by callers; cached blocks count as freed.
func (r *RecyclingAllocator) Stats() api.AllocatorStats {
	s := r.stats.snapshot()
	r.mu.Lock()
	s.Cached = r.cached
	r.mu.Unlock()
	return s
}

var (
	_ api.Allocator     = (*RecyclingAllocator)(nil)
	_ api.StatsProvider = (*RecyclingAllocator)(nil)
)

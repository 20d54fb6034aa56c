// Package api
// Author: momentics
//
// Raw memory contracts for hioload-rawmem.
//
// Blocks may come from the Go heap, anonymous mmap, VirtualAlloc,
// or the host C runtime. Every block has a stable base address for its whole
// lifetime so it can be handed to native code.

package api

import "unsafe"

// Allocator is the injectable raw-memory capability a Buffer is built on.
type Allocator interface {
	// Allocate returns the base of a block of exactly size bytes.
	// A nil pointer with a nil error is treated as allocation failure by callers.
	Allocate(size int) (unsafe.Pointer, error)

	// Free releases a block previously returned by Allocate with the same size.
	Free(ptr unsafe.Pointer, size int) error

	// Fill writes value into the first length bytes at ptr. Callers bounds-check.
	Fill(ptr unsafe.Pointer, value byte, length int)
}

// StatsProvider is implemented by allocators that keep accounting.
type StatsProvider interface {
	Stats() AllocatorStats
}

// AllocatorStats aggregates block allocation/release counters.
type AllocatorStats struct {
	Name       string
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	BytesInUse int64
	Cached     int64 // blocks held for reuse, recycling allocators only
}

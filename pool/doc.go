// Package pool
// Author: momentics <momentics@gmail.com>
//
// Raw memory allocators for hioload-rawmem.
// Every allocator hands out blocks with a stable base address: Go heap
// blocks, anonymous mmap (VirtualAlloc on Windows), the host C runtime via cgo,
// and a recycling cache that keeps freed blocks per size class for reuse.
// All allocators are safe for concurrent use and implement api.StatsProvider.
// See heap.go, mmap.go, libc_cgo.go, recycling.go for implementation details.
package pool

// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake allocator implementation for testing: records every call and can be
// scripted to fail or to hand back a null address.

package fake

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
)

// ErrInjected is returned by Allocate when FailNext or FailAll is set.
var ErrInjected = errors.New("fake: injected allocation failure")

// ErrTooLarge is returned by Allocate for sizes outside [0, MaxBlock].
var ErrTooLarge = errors.New("fake: block size out of range")

// MaxBlock is the largest block the fake will back with a Go slice.
const MaxBlock = 1 << 30

// Allocator is a fake implementation of api.Allocator backed by Go slices.
type Allocator struct {
	mu     sync.Mutex
	blocks map[uintptr][]byte

	failNext bool
	failAll  bool
	nullNext bool
	freeErr  error

	allocs int
	frees  int
	fills  int
}

// NewAllocator creates a new fake allocator.
func NewAllocator() *Allocator {
	return &Allocator{blocks: make(map[uintptr][]byte)}
}

// FailNext makes the next Allocate return ErrInjected.
func (a *Allocator) FailNext() {
	a.mu.Lock()
	a.failNext = true
	a.mu.Unlock()
}

// FailAll makes every Allocate return ErrInjected.
func (a *Allocator) FailAll(fail bool) {
	a.mu.Lock()
	a.failAll = fail
	a.mu.Unlock()
}

// NullNext makes the next Allocate return a nil pointer and no error.
func (a *Allocator) NullNext() {
	a.mu.Lock()
	a.nullNext = true
	a.mu.Unlock()
}

// FreeError makes Free return err (after releasing the block).
func (a *Allocator) FreeError(err error) {
	a.mu.Lock()
	a.freeErr = err
	a.mu.Unlock()
}

// Allocate returns a Go slice sized exactly size, kept alive until Free.
func (a *Allocator) Allocate(size int) (unsafe.Pointer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.failAll:
		return nil, ErrInjected
	case a.failNext:
		a.failNext = false
		return nil, ErrInjected
	case a.nullNext:
		a.nullNext = false
		return nil, nil
	}
	if size < 0 || size > MaxBlock {
		return nil, ErrTooLarge
	}
	data := make([]byte, size+1) // +1 keeps zero-size blocks addressable
	ptr := unsafe.Pointer(&data[0])
	a.blocks[uintptr(ptr)] = data[:size]
	a.allocs++
	return ptr, nil
}

// Free forgets the block. Unknown pointers are an error so double frees show up.
func (a *Allocator) Free(ptr unsafe.Pointer, size int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.blocks[uintptr(ptr)]
	if !ok || len(data) != size {
		return api.NewError(api.ErrCodeInvalidArgument, "fake: free of unknown block")
	}
	delete(a.blocks, uintptr(ptr))
	a.frees++
	return a.freeErr
}

// Fill writes value into the first length bytes at ptr.
func (a *Allocator) Fill(ptr unsafe.Pointer, value byte, length int) {
	a.mu.Lock()
	a.fills++
	a.mu.Unlock()
	b := unsafe.Slice((*byte)(ptr), length)
	for i := range b {
		b[i] = value
	}
}

// Allocs returns the number of successful allocations.
func (a *Allocator) Allocs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs
}

// Frees returns the number of successful frees.
func (a *Allocator) Frees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frees
}

// Fills returns the number of Fill calls.
func (a *Allocator) Fills() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fills
}

// Live returns the number of blocks not yet freed.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}

// Stats exposes accounting in the api shape.
func (a *Allocator) Stats() api.AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	var bytes int64
	for _, b := range a.blocks {
		bytes += int64(len(b))
	}
	return api.AllocatorStats{
		Name:       "fake",
		TotalAlloc: int64(a.allocs),
		TotalFree:  int64(a.frees),
		InUse:      int64(len(a.blocks)),
		BytesInUse: bytes,
	}
}

var (
	_ api.Allocator     = (*Allocator)(nil)
	_ api.StatsProvider = (*Allocator)(nil)
)

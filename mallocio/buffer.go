// File: mallocio/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffer owns one raw block obtained from an api.Allocator and frees it
// exactly once.

package mallocio

import (
	"runtime"
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
	"go.uber.org/zap"
)

// Buffer is the exclusive owner of a fixed-capacity raw memory block.
type Buffer struct {
	alloc    api.Allocator
	base     unsafe.Pointer
	capacity int
	owned    bool

	log       *zap.Logger
	onRelease func(leaked bool)
}

// newBuffer asks a for capacity bytes. A nil address is an allocation
// failure even when the allocator reports no error.
func newBuffer(a api.Allocator, capacity int, log *zap.Logger) (*Buffer, error) {
	if capacity < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative capacity").
			WithOp("mallocio.New").
			WithContext("capacity", capacity)
	}
	ptr, err := a.Allocate(capacity)
	if err != nil || ptr == nil {
		return nil, api.NewError(api.ErrCodeAllocationFailure, "allocator could not supply block").
			WithOp("mallocio.New").
			WithContext("capacity", capacity).
			WithCause(err)
	}
	b := &Buffer{
		alloc:    a,
		base:     ptr,
		capacity: capacity,
		owned:    true,
		log:      log,
	}
	log.Debug("buffer allocated",
		zap.Int("capacity", capacity),
		zap.Uintptr("addr", uintptr(ptr)))
	return b, nil
}

// armFinalizer installs the leak backstop. Release disarms it.
func (b *Buffer) armFinalizer() {
	runtime.SetFinalizer(b, (*Buffer).finalize)
}

func (b *Buffer) finalize() {
	if !b.owned {
		return
	}
	b.log.Warn("buffer reclaimed by finalizer; stream was never closed",
		zap.Int("capacity", b.capacity),
		zap.Uintptr("addr", uintptr(b.base)))
	if err := b.release(true); err != nil {
		b.log.Error("finalizer release failed", zap.Error(err))
	}
}

// Capacity returns the fixed block size in bytes.
func (b *Buffer) Capacity() int { return b.capacity }

// Owned reports whether the block is still held.
func (b *Buffer) Owned() bool { return b.owned }

// RawAddress returns the block base address for native interop.
func (b *Buffer) RawAddress() (uintptr, error) {
	if !b.owned {
		return 0, errClosed("RawAddress")
	}
	return uintptr(b.base), nil
}

// Fill writes value into the first length bytes.
func (b *Buffer) Fill(value byte, length int) error {
	if !b.owned {
		return errClosed("Fill")
	}
	if length < 0 || length > b.capacity {
		return errRange("Fill", 0, int64(length), b.capacity)
	}
	b.alloc.Fill(b.base, value, length)
	return nil
}

// Release frees the block. Calling it again is a no-op.
func (b *Buffer) Release() error {
	if !b.owned {
		return nil
	}
	runtime.SetFinalizer(b, nil)
	return b.release(false)
}

// release drops ownership before reporting a Free error so the block is
// never handed back twice.
func (b *Buffer) release(leaked bool) error {
	ptr := b.base
	b.owned = false
	b.base = nil
	err := b.alloc.Free(ptr, b.capacity)
	if b.onRelease != nil {
		b.onRelease(leaked)
	}
	if err != nil {
		return api.NewError(api.ErrCodeInternal, "allocator failed to free block").
			WithOp("Release").
			WithContext("capacity", b.capacity).
			WithCause(err)
	}
	b.log.Debug("buffer released",
		zap.Int("capacity", b.capacity),
		zap.Uintptr("addr", uintptr(ptr)),
		zap.Bool("leaked", leaked))
	return nil
}

// bytes views the block as a slice. Callers check ownership first.
func (b *Buffer) bytes() []byte {
	return unsafe.Slice((*byte)(b.base), b.capacity)
}

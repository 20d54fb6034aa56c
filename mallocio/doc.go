// Package mallocio
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Seekable, bounds-checked stream over a manually allocated block of raw
// memory.
//
// A Stream owns exactly one Buffer. The Buffer's base address comes from an
// injected api.Allocator and stays fixed until release, so it can be handed
// to native code while the Stream offers Seek/Tell/ReadN/Write on top.
// Capacity is fixed at construction; nothing grows.
//
// Release is explicit. Close (or With, which closes on every exit path,
// panics included) frees the block exactly once; further calls are no-ops.
// Any other operation on a closed Stream fails with api.ErrUseAfterFree
// instead of touching freed memory. A finalizer reclaims Buffers that were
// never closed and logs them as leaks, but nothing depends on it running.
//
// Streams are not safe for concurrent use.
package mallocio

//go:build !unix && !windows

// File: pool/mmap_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub mapping primitives for platforms without mmap or VirtualAlloc.

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-rawmem/api"
)

const mmapSupported = false

func sysMap(int) (unsafe.Pointer, error) { return nil, api.ErrNotSupported }

func sysUnmap(unsafe.Pointer, int) error { return api.ErrNotSupported }

//go:build windows

// File: pool/mmap_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows committed regions via VirtualAlloc/VirtualFree.

package pool

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const mmapSupported = true

func sysMap(size int) (unsafe.Pointer, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT,
		windows.PAGE_READWRITE)
	if err != nil {
		return nil, errors.Wrap(err, "VirtualAlloc")
	}
	if addr == 0 {
		return nil, errors.New("VirtualAlloc returned null")
	}
	return unsafe.Pointer(addr), nil
}

func sysUnmap(ptr unsafe.Pointer, _ int) error {
	if err := windows.VirtualFree(uintptr(ptr), 0, windows.MEM_RELEASE); err != nil {
		return errors.Wrap(err, "VirtualFree")
	}
	return nil
}

//go:build unix

// File: pool/mmap_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unix anonymous private mappings via golang.org/x/sys/unix.

package pool

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const mmapSupported = true

func sysMap(size int) (unsafe.Pointer, error) {
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}
	return unsafe.Pointer(&data[0]), nil
}

// sysUnmap rebuilds the exact slice unix.Mmap returned; Munmap keys its
// bookkeeping on the address of the last byte.
func sysUnmap(ptr unsafe.Pointer, size int) error {
	if err := unix.Munmap(unsafe.Slice((*byte)(ptr), size)); err != nil {
		return errors.Wrap(err, "munmap")
	}
	return nil
}

// File: pool/physmem_linux.go
// Author: momentics <momentics@gmail.com>

package pool

import "golang.org/x/sys/unix"

// physicalMemory reports total RAM in bytes, or 0 when unknown.
func physicalMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(info.Totalram) * unit
}

// File: pool/physmem_other.go
// Author: momentics <momentics@gmail.com>

//go:build !linux

package pool

func physicalMemory() uint64 { return 0 }

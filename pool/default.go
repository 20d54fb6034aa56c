// File: pool/default.go
// Author: momentics <momentics@gmail.com>
//
// Allocator selection by name and the process-wide default allocator.

package pool

import (
	"sort"
	"strings"
	"sync"

	"github.com/momentics/hioload-rawmem/api"
)

// Allocator names accepted by ByName.
const (
	NameHeap      = "heap"
	NameMmap      = "mmap"
	NameLibc      = "libc"
	NameRecycling = "recycling"
)

var (
	defaultOnce sync.Once
	defaultHeap *HeapAllocator
)

// Default returns a process-wide heap allocator so all streams that do not
// pick one share the same accounting.
func Default() *HeapAllocator {
	defaultOnce.Do(func() {
		defaultHeap = NewHeap()
	})
	return defaultHeap
}

// ByName builds a fresh allocator. The empty name selects the default heap.
func ByName(name string) (api.Allocator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return Default(), nil
	case NameHeap:
		return NewHeap(), nil
	case NameMmap:
		if !mmapSupported {
			return nil, unsupported(name)
		}
		return NewMmap(), nil
	case NameLibc:
		if !libcSupported {
			return nil, unsupported(name)
		}
		return NewLibc(), nil
	case NameRecycling:
		return NewRecycling(NewHeap(), DefaultRecyclingDepth), nil
	}
	return nil, api.NewError(api.ErrCodeInvalidArgument, "unknown allocator").
		WithOp("pool.ByName").
		WithContext("name", name)
}

// Names lists the allocators usable on this platform and build.
func Names() []string {
	names := []string{NameHeap, NameRecycling}
	if mmapSupported {
		names = append(names, NameMmap)
	}
	if libcSupported {
		names = append(names, NameLibc)
	}
	sort.Strings(names)
	return names
}

func unsupported(name string) error {
	return api.NewError(api.ErrCodeNotSupported, "allocator unavailable in this build").
		WithOp("pool.ByName").
		WithContext("name", name)
}

// File: pool/stats.go
// Author: momentics <momentics@gmail.com>
//
// Atomic allocation counters shared by all allocators.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-rawmem/api"
)

// counters tracks block and byte accounting for one allocator instance.
type counters struct {
	name       string
	totalAlloc atomic.Int64
	totalFree  atomic.Int64
	bytesInUse atomic.Int64
}

func (c *counters) onAlloc(size int) {
	c.totalAlloc.Add(1)
	c.bytesInUse.Add(int64(size))
}

func (c *counters) onFree(size int) {
	c.totalFree.Add(1)
	c.bytesInUse.Add(-int64(size))
}

func (c *counters) snapshot() api.AllocatorStats {
	alloc := c.totalAlloc.Load()
	free := c.totalFree.Load()
	return api.AllocatorStats{
		Name:       c.name,
		TotalAlloc: alloc,
		TotalFree:  free,
		InUse:      alloc - free,
		BytesInUse: c.bytesInUse.Load(),
	}
}

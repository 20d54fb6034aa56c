// control/tracker.go
// Author: momentics <momentics@gmail.com>
//
// Live stream accounting. Streams register on open and unregister on release;
// releases driven by the finalizer are counted as leaks.

package control

import "sync/atomic"

// Tracker counts open streams and the bytes they hold.
type Tracker struct {
	opened   atomic.Int64
	closed   atomic.Int64
	leaked   atomic.Int64
	liveSize atomic.Int64
}

// NewTracker creates a zeroed tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Register records a newly opened stream of capacity bytes.
func (t *Tracker) Register(capacity int) {
	t.opened.Add(1)
	t.liveSize.Add(int64(capacity))
}

// Unregister records a release. leaked marks releases not made by the owner.
func (t *Tracker) Unregister(capacity int, leaked bool) {
	t.closed.Add(1)
	t.liveSize.Add(-int64(capacity))
	if leaked {
		t.leaked.Add(1)
	}
}

// Live returns the number of streams not yet released.
func (t *Tracker) Live() int64 { return t.opened.Load() - t.closed.Load() }

// LiveBytes returns the capacity held by unreleased streams.
func (t *Tracker) LiveBytes() int64 { return t.liveSize.Load() }

// Leaked returns how many streams were reclaimed by the finalizer.
func (t *Tracker) Leaked() int64 { return t.leaked.Load() }

// Publish copies the counters into mr under the "streams." prefix.
func (t *Tracker) Publish(mr *MetricsRegistry) {
	mr.Set("streams.opened", t.opened.Load())
	mr.Set("streams.closed", t.closed.Load())
	mr.Set("streams.live", t.Live())
	mr.Set("streams.live_bytes", t.LiveBytes())
	mr.Set("streams.leaked", t.Leaked())
}

package mallocio_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/momentics/hioload-rawmem/api"
	"github.com/momentics/hioload-rawmem/control"
	"github.com/momentics/hioload-rawmem/fake"
	"github.com/momentics/hioload-rawmem/mallocio"
	"github.com/momentics/hioload-rawmem/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allocators returns one constructor per backend usable in this build.
func allocators(t *testing.T) map[string]func() api.Allocator {
	t.Helper()
	out := map[string]func() api.Allocator{
		"fake": func() api.Allocator { return fake.NewAllocator() },
	}
	for _, name := range pool.Names() {
		name := name
		out[name] = func() api.Allocator {
			a, err := pool.ByName(name)
			require.NoError(t, err)
			return a
		}
	}
	return out
}

func forEachAllocator(t *testing.T, fn func(t *testing.T, a api.Allocator)) {
	for name, mk := range allocators(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, mk())
		})
	}
}

func open(t *testing.T, a api.Allocator, capacity int) *mallocio.Stream {
	t.Helper()
	s, err := mallocio.New(capacity, mallocio.WithAllocator(a))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func tell(t *testing.T, s *mallocio.Stream) int64 {
	t.Helper()
	off, err := s.Tell()
	require.NoError(t, err)
	return off
}

func TestNewStartsAtZero(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		for _, capacity := range []int{1, 64, 4096} {
			s := open(t, a, capacity)
			assert.Equal(t, int64(0), tell(t, s))
			assert.Equal(t, capacity, s.Cap())
			assert.Equal(t, capacity, s.Len())
			assert.False(t, s.Closed())
		}
	})
}

func TestNewDefaultCapacity(t *testing.T) {
	s, err := mallocio.NewDefault(mallocio.WithAllocator(fake.NewAllocator()))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, mallocio.DefaultCapacity, s.Cap())
	assert.Equal(t, 64, s.Cap())
}

func TestSeekTellRoundTrip(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		const capacity = 32
		s := open(t, a, capacity)
		for k := int64(0); k <= capacity; k++ {
			got, err := s.Seek(k, api.SeekStart)
			require.NoError(t, err)
			require.Equal(t, k, got)
			require.Equal(t, k, tell(t, s))
		}
	})
}

func TestSeekEndAndCurrent(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s := open(t, a, 100)

		got, err := s.Seek(0, api.SeekEnd)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got)

		got, err = s.Seek(-100, api.SeekEnd)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)

		got, err = s.Seek(10, api.SeekCurrent)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got)

		got, err = s.Seek(-4, api.SeekCurrent)
		require.NoError(t, err)
		assert.Equal(t, int64(6), got)
	})
}

func TestSeekOutOfRangeLeavesCursor(t *testing.T) {
	s := open(t, fake.NewAllocator(), 16)
	_, err := s.Seek(5, api.SeekStart)
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset int64
		whence int
	}{
		{"start negative", -1, api.SeekStart},
		{"start past end", 17, api.SeekStart},
		{"current negative", -6, api.SeekCurrent},
		{"current past end", 12, api.SeekCurrent},
		{"end positive", 1, api.SeekEnd},
		{"end before start", -17, api.SeekEnd},
		{"huge", 1<<63 - 1, api.SeekCurrent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Seek(tt.offset, tt.whence)
			require.ErrorIs(t, err, api.ErrOutOfRange)
			assert.Equal(t, int64(5), tell(t, s))
		})
	}
}

func TestSeekInvalidWhence(t *testing.T) {
	s := open(t, fake.NewAllocator(), 8)
	_, err := s.Seek(0, 3)
	require.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, int64(0), tell(t, s))
}

func TestWriteReadRoundTrip(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s := open(t, a, 64)
		_, err := s.Seek(7, api.SeekStart)
		require.NoError(t, err)

		data := []byte("raw memory round trip")
		n, err := s.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, int64(7+len(data)), tell(t, s))

		_, err = s.Seek(7, api.SeekStart)
		require.NoError(t, err)
		got, err := s.ReadN(len(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)

		// reads are non-destructive
		_, err = s.Seek(7, api.SeekStart)
		require.NoError(t, err)
		again, err := s.ReadN(len(data))
		require.NoError(t, err)
		assert.Equal(t, data, again)
	})
}

func TestWriteFillsExactlyToEnd(t *testing.T) {
	s := open(t, fake.NewAllocator(), 4)
	n, err := s.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, s.Len())

	n, err = s.Write(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWriteOutOfRangeLeavesState(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s := open(t, a, 8)
		require.NoError(t, s.Fill(0, 8))
		_, err := s.Write([]byte("abcdef"))
		require.NoError(t, err)

		n, err := s.Write([]byte("XYZ"))
		require.ErrorIs(t, err, api.ErrOutOfRange)
		assert.Equal(t, 0, n)
		assert.Equal(t, int64(6), tell(t, s))

		_, err = s.Seek(0, api.SeekStart)
		require.NoError(t, err)
		got, err := s.ReadN(8)
		require.NoError(t, err)
		assert.Equal(t, []byte("abcdef\x00\x00"), got)
	})
}

func TestReadOutOfRange(t *testing.T) {
	s := open(t, fake.NewAllocator(), 8)
	_, err := s.Seek(6, api.SeekStart)
	require.NoError(t, err)

	_, err = s.ReadN(3)
	require.ErrorIs(t, err, api.ErrOutOfRange)
	_, err = s.ReadN(-1)
	require.ErrorIs(t, err, api.ErrOutOfRange)
	assert.Equal(t, int64(6), tell(t, s))

	got, err := s.ReadN(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = s.ReadByte()
	require.ErrorIs(t, err, api.ErrOutOfRange)

	empty, err := s.ReadN(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFlushAndDetachAlwaysFail(t *testing.T) {
	s, err := mallocio.New(8, mallocio.WithAllocator(fake.NewAllocator()))
	require.NoError(t, err)

	require.ErrorIs(t, s.Flush(), api.ErrUnsupportedOperation)
	require.ErrorIs(t, s.Detach(), api.ErrUnsupportedOperation)

	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Flush(), api.ErrUnsupportedOperation)
	require.ErrorIs(t, s.Detach(), api.ErrUnsupportedOperation)
}

func TestCloseIsIdempotent(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s, err := mallocio.New(16, mallocio.WithAllocator(a))
		require.NoError(t, err)
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		require.NoError(t, s.Release())
		assert.True(t, s.Closed())
		assert.Equal(t, 0, s.Len())
	})
}

func TestCloseFreesExactlyOnce(t *testing.T) {
	a := fake.NewAllocator()
	s, err := mallocio.New(16, mallocio.WithAllocator(a))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, a.Allocs())
	assert.Equal(t, 1, a.Frees())
	assert.Equal(t, 0, a.Live())
}

func TestFillThenReadAll(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s := open(t, a, 128)
		require.NoError(t, s.Fill(0, 128))

		got, err := s.ReadN(128)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 128), got)
		assert.Equal(t, int64(128), tell(t, s))

		_, err = s.ReadN(1)
		require.ErrorIs(t, err, api.ErrOutOfRange)
	})
}

func TestWriteHello(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s := open(t, a, 16)
		n, err := s.Write([]byte("HELLO"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, int64(5), tell(t, s))

		_, err = s.Seek(0, api.SeekStart)
		require.NoError(t, err)
		got, err := s.ReadN(5)
		require.NoError(t, err)
		assert.Equal(t, []byte("HELLO"), got)
	})
}

func TestFillBounds(t *testing.T) {
	a := fake.NewAllocator()
	s := open(t, a, 8)
	_, err := s.Write([]byte("abcdefgh"))
	require.NoError(t, err)

	require.ErrorIs(t, s.Fill('z', 9), api.ErrOutOfRange)
	require.ErrorIs(t, s.Fill('z', -1), api.ErrOutOfRange)
	assert.Equal(t, 0, a.Fills())

	require.NoError(t, s.Fill('z', 3))
	assert.Equal(t, int64(8), tell(t, s), "fill must not move the cursor")

	got := make([]byte, 8)
	_, err = s.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("zzzdefgh"), got)
}

func TestUseAfterFree(t *testing.T) {
	s, err := mallocio.New(8, mallocio.WithAllocator(fake.NewAllocator()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.ReadN(1)
	require.ErrorIs(t, err, api.ErrUseAfterFree)

	ops := map[string]func() error{
		"Seek":        func() error { _, err := s.Seek(0, api.SeekStart); return err },
		"Tell":        func() error { _, err := s.Tell(); return err },
		"ReadByte":    func() error { _, err := s.ReadByte(); return err },
		"Read":        func() error { _, err := s.Read(make([]byte, 1)); return err },
		"Write":       func() error { _, err := s.Write([]byte{1}); return err },
		"WriteString": func() error { _, err := s.WriteString("x"); return err },
		"WriteByte":   func() error { return s.WriteByte(1) },
		"ReadAt":      func() error { _, err := s.ReadAt(make([]byte, 1), 0); return err },
		"WriteAt":     func() error { _, err := s.WriteAt([]byte{1}, 0); return err },
		"Fill":        func() error { return s.Fill(0, 1) },
		"RawAddress":  func() error { _, err := s.RawAddress(); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.ErrorIs(t, err, api.ErrUseAfterFree)
			assert.Equal(t, api.ErrCodeUseAfterFree, api.CodeOf(err))
		})
	}
}

func TestAllocationFailure(t *testing.T) {
	t.Run("allocator error", func(t *testing.T) {
		a := fake.NewAllocator()
		a.FailNext()
		s, err := mallocio.New(32, mallocio.WithAllocator(a))
		require.Nil(t, s)
		require.ErrorIs(t, err, api.ErrAllocationFailure)
		require.ErrorIs(t, err, fake.ErrInjected)
	})
	t.Run("null address", func(t *testing.T) {
		a := fake.NewAllocator()
		a.NullNext()
		_, err := mallocio.New(32, mallocio.WithAllocator(a))
		require.ErrorIs(t, err, api.ErrAllocationFailure)
	})
	t.Run("oversized on default allocator", func(t *testing.T) {
		s, err := mallocio.New(math.MaxInt)
		require.Nil(t, s)
		require.ErrorIs(t, err, api.ErrAllocationFailure)
	})
	t.Run("oversized on every allocator", func(t *testing.T) {
		forEachAllocator(t, func(t *testing.T, a api.Allocator) {
			_, err := mallocio.New(math.MaxInt, mallocio.WithAllocator(a))
			require.ErrorIs(t, err, api.ErrAllocationFailure)
		})
	})
	t.Run("negative capacity", func(t *testing.T) {
		a := fake.NewAllocator()
		_, err := mallocio.New(-1, mallocio.WithAllocator(a))
		require.ErrorIs(t, err, api.ErrInvalidArgument)
		assert.Equal(t, 0, a.Allocs())
	})
}

func TestFreeErrorStillCloses(t *testing.T) {
	a := fake.NewAllocator()
	boom := errors.New("boom")
	a.FreeError(boom)
	s, err := mallocio.New(8, mallocio.WithAllocator(a))
	require.NoError(t, err)

	err = s.Close()
	require.ErrorIs(t, err, boom)
	assert.True(t, s.Closed())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, a.Frees())
}

func TestWithReleasesOnEveryExit(t *testing.T) {
	t.Run("normal", func(t *testing.T) {
		a := fake.NewAllocator()
		var seen *mallocio.Stream
		err := mallocio.With(16, func(s *mallocio.Stream) error {
			seen = s
			_, err := s.WriteString("scoped")
			return err
		}, mallocio.WithAllocator(a))
		require.NoError(t, err)
		assert.True(t, seen.Closed())
		assert.Equal(t, 0, a.Live())
	})
	t.Run("error", func(t *testing.T) {
		a := fake.NewAllocator()
		boom := errors.New("boom")
		err := mallocio.With(16, func(*mallocio.Stream) error { return boom }, mallocio.WithAllocator(a))
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 0, a.Live())
		assert.Equal(t, 1, a.Frees())
	})
	t.Run("panic", func(t *testing.T) {
		a := fake.NewAllocator()
		require.PanicsWithValue(t, "boom", func() {
			_ = mallocio.With(16, func(*mallocio.Stream) error { panic("boom") }, mallocio.WithAllocator(a))
		})
		assert.Equal(t, 0, a.Live())
	})
	t.Run("allocation failure", func(t *testing.T) {
		a := fake.NewAllocator()
		a.FailNext()
		called := false
		err := mallocio.With(16, func(*mallocio.Stream) error { called = true; return nil }, mallocio.WithAllocator(a))
		require.ErrorIs(t, err, api.ErrAllocationFailure)
		assert.False(t, called)
	})
	t.Run("close error joins", func(t *testing.T) {
		a := fake.NewAllocator()
		closeErr := errors.New("close")
		a.FreeError(closeErr)
		boom := errors.New("boom")
		err := mallocio.With(16, func(*mallocio.Stream) error { return boom }, mallocio.WithAllocator(a))
		require.ErrorIs(t, err, boom)
		require.ErrorIs(t, err, closeErr)
	})
}

func TestReaderInterface(t *testing.T) {
	s := open(t, fake.NewAllocator(), 10)
	_, err := s.WriteString("0123456789")
	require.NoError(t, err)
	_, err = s.Seek(4, api.SeekStart)
	require.NoError(t, err)

	all, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, []byte("456789"), all)

	n, err := s.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	n, err = s.Read(nil)
	assert.Equal(t, 0, n)
	assert.NoError(t, err)
}

func TestCopyIntoStream(t *testing.T) {
	s := open(t, fake.NewAllocator(), 12)
	n, err := io.Copy(s, bytes.NewReader([]byte("hello, world")))
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = io.Copy(s, bytes.NewReader([]byte("!")))
	require.ErrorIs(t, err, api.ErrOutOfRange)
}

func TestReadAtWriteAt(t *testing.T) {
	s := open(t, fake.NewAllocator(), 8)

	n, err := s.WriteAt([]byte("xy"), 6)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(0), tell(t, s))

	_, err = s.WriteAt([]byte("xyz"), 6)
	require.ErrorIs(t, err, api.ErrOutOfRange)
	_, err = s.WriteAt([]byte("x"), -1)
	require.ErrorIs(t, err, api.ErrOutOfRange)

	buf := make([]byte, 2)
	n, err = s.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("xy"), buf)

	_, err = s.ReadAt(make([]byte, 3), 6)
	require.ErrorIs(t, err, api.ErrOutOfRange)
	_, err = s.ReadAt(nil, 9)
	require.ErrorIs(t, err, api.ErrOutOfRange)

	n, err = s.ReadAt(nil, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRawAddressIsStable(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s := open(t, a, 64)
		addr, err := s.RawAddress()
		require.NoError(t, err)
		require.NotZero(t, addr)

		_, err = s.WriteString("payload")
		require.NoError(t, err)
		require.NoError(t, s.Fill(1, 64))
		_, err = s.Seek(0, api.SeekEnd)
		require.NoError(t, err)

		again, err := s.RawAddress()
		require.NoError(t, err)
		assert.Equal(t, addr, again)
	})
}

func TestZeroCapacity(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a api.Allocator) {
		s := open(t, a, 0)
		got, err := s.Seek(0, api.SeekEnd)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)

		_, err = s.Write([]byte{1})
		require.ErrorIs(t, err, api.ErrOutOfRange)
		_, err = s.ReadN(1)
		require.ErrorIs(t, err, api.ErrOutOfRange)
		require.NoError(t, s.Fill(0, 0))
		require.NoError(t, s.Close())
	})
}

func TestTrackerCountsStreams(t *testing.T) {
	tr := control.NewTracker()
	a := fake.NewAllocator()

	s1, err := mallocio.New(16, mallocio.WithAllocator(a), mallocio.WithTracker(tr))
	require.NoError(t, err)
	s2, err := mallocio.New(48, mallocio.WithAllocator(a), mallocio.WithTracker(tr))
	require.NoError(t, err)
	assert.Equal(t, int64(2), tr.Live())
	assert.Equal(t, int64(64), tr.LiveBytes())

	require.NoError(t, s1.Close())
	require.NoError(t, s1.Close())
	assert.Equal(t, int64(1), tr.Live())
	assert.Equal(t, int64(48), tr.LiveBytes())

	require.NoError(t, s2.Close())
	assert.Equal(t, int64(0), tr.Live())
	assert.Equal(t, int64(0), tr.Leaked())
}

func TestNewFromConfig(t *testing.T) {
	cfg := mallocio.DefaultConfig()
	assert.Equal(t, 64, cfg.Capacity)
	assert.True(t, cfg.Finalizer)

	cfg.Capacity = 256
	cfg.Allocator = pool.NameRecycling
	s, err := mallocio.NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 256, s.Cap())
	require.NoError(t, s.Close())

	cfg.Allocator = "nope"
	_, err = mallocio.NewFromConfig(cfg)
	require.ErrorIs(t, err, api.ErrInvalidArgument)

	cfg.Allocator = ""
	cfg.Capacity = -5
	_, err = mallocio.NewFromConfig(cfg)
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

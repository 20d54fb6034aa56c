// File: mallocio/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream: cursor plus bounds-checked I/O over an owned Buffer.

package mallocio

import (
	"io"

	"github.com/momentics/hioload-rawmem/api"
	"github.com/momentics/hioload-rawmem/pool"
	"go.uber.org/multierr"
)

// Stream is a seekable view over one raw block. The cursor stays within
// [0, Cap()]; a failed call leaves both cursor and contents untouched.
type Stream struct {
	buf    *Buffer
	offset int64
}

var (
	_ api.Stream         = (*Stream)(nil)
	_ io.ReadWriteSeeker = (*Stream)(nil)
	_ io.ReaderAt        = (*Stream)(nil)
	_ io.WriterAt        = (*Stream)(nil)
	_ io.ByteWriter      = (*Stream)(nil)
	_ io.StringWriter    = (*Stream)(nil)
)

// New allocates a block of capacity bytes and opens a stream over it.
func New(capacity int, opts ...Option) (*Stream, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.allocator == nil {
		o.allocator = pool.Default()
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	buf, err := newBuffer(o.allocator, capacity, log)
	if err != nil {
		return nil, err
	}
	if t := o.tracker; t != nil {
		t.Register(capacity)
		buf.onRelease = func(leaked bool) { t.Unregister(capacity, leaked) }
	}
	if o.finalizer {
		buf.armFinalizer()
	}
	return &Stream{buf: buf}, nil
}

// NewDefault opens a stream of DefaultCapacity bytes.
func NewDefault(opts ...Option) (*Stream, error) {
	return New(DefaultCapacity, opts...)
}

// NewFromConfig opens a stream described by cfg. Extra options apply after
// the ones derived from cfg.
func NewFromConfig(cfg *Config, opts ...Option) (*Stream, error) {
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(cfg.Capacity, append(base, opts...)...)
}

// With opens a stream, runs fn and closes the stream on every exit path,
// including a panic in fn, which keeps propagating after the close.
func With(capacity int, fn func(*Stream) error, opts ...Option) (err error) {
	s, err := New(capacity, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()
	return fn(s)
}

func (s *Stream) checkOpen(op string) error {
	if !s.buf.owned {
		return errClosed(op)
	}
	return nil
}

// remaining is the byte count between the cursor and the end of the block.
func (s *Stream) remaining() int64 {
	return int64(s.buf.capacity) - s.offset
}

// Seek moves the cursor. whence is api.SeekStart, api.SeekCurrent or
// api.SeekEnd. Targets outside [0, Cap()] fail with api.ErrOutOfRange.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if err := s.checkOpen("Seek"); err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case api.SeekStart:
		target = offset
	case api.SeekCurrent:
		target = s.offset + offset
	case api.SeekEnd:
		target = int64(s.buf.capacity) + offset
	default:
		return 0, api.NewError(api.ErrCodeInvalidArgument, "invalid whence").
			WithOp("Seek").
			WithContext("whence", whence)
	}
	if target < 0 || target > int64(s.buf.capacity) {
		return 0, errRange("Seek", target, 0, s.buf.capacity)
	}
	s.offset = target
	return target, nil
}

// Tell returns the cursor offset.
func (s *Stream) Tell() (int64, error) {
	if err := s.checkOpen("Tell"); err != nil {
		return 0, err
	}
	return s.offset, nil
}

// ReadN returns a copy of the next n bytes and advances the cursor. Asking
// for more than remains fails without moving the cursor.
func (s *Stream) ReadN(n int) ([]byte, error) {
	if err := s.checkOpen("ReadN"); err != nil {
		return nil, err
	}
	if n < 0 || int64(n) > s.remaining() {
		return nil, errRange("ReadN", s.offset, int64(n), s.buf.capacity)
	}
	out := make([]byte, n)
	copy(out, s.buf.bytes()[s.offset:])
	s.offset += int64(n)
	return out, nil
}

// ReadByte reads one byte. At the end of the block it fails with
// api.ErrOutOfRange, not io.EOF.
func (s *Stream) ReadByte() (byte, error) {
	b, err := s.ReadN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Read implements io.Reader: it copies up to len(p) bytes and reports
// io.EOF once the cursor sits at the end of the block.
func (s *Stream) Read(p []byte) (int, error) {
	if err := s.checkOpen("Read"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if s.remaining() == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.buf.bytes()[s.offset:])
	s.offset += int64(n)
	return n, nil
}

// Write copies p at the cursor and advances it. Writes that do not fit fail
// whole; nothing is copied.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.checkOpen("Write"); err != nil {
		return 0, err
	}
	if int64(len(p)) > s.remaining() {
		return 0, errRange("Write", s.offset, int64(len(p)), s.buf.capacity)
	}
	n := copy(s.buf.bytes()[s.offset:], p)
	s.offset += int64(n)
	return n, nil
}

// WriteString is Write for a string without the intermediate []byte.
func (s *Stream) WriteString(str string) (int, error) {
	if err := s.checkOpen("WriteString"); err != nil {
		return 0, err
	}
	if int64(len(str)) > s.remaining() {
		return 0, errRange("WriteString", s.offset, int64(len(str)), s.buf.capacity)
	}
	n := copy(s.buf.bytes()[s.offset:], str)
	s.offset += int64(n)
	return n, nil
}

// WriteByte writes one byte at the cursor.
func (s *Stream) WriteByte(c byte) error {
	_, err := s.Write([]byte{c})
	return err
}

// ReadAt copies len(p) bytes starting at off. The cursor does not move.
func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	if err := s.checkOpen("ReadAt"); err != nil {
		return 0, err
	}
	if off < 0 || off > int64(s.buf.capacity) || int64(len(p)) > int64(s.buf.capacity)-off {
		return 0, errRange("ReadAt", off, int64(len(p)), s.buf.capacity)
	}
	return copy(p, s.buf.bytes()[off:]), nil
}

// WriteAt copies p into the block at off. The cursor does not move.
func (s *Stream) WriteAt(p []byte, off int64) (int, error) {
	if err := s.checkOpen("WriteAt"); err != nil {
		return 0, err
	}
	if off < 0 || off > int64(s.buf.capacity) || int64(len(p)) > int64(s.buf.capacity)-off {
		return 0, errRange("WriteAt", off, int64(len(p)), s.buf.capacity)
	}
	return copy(s.buf.bytes()[off:], p), nil
}

// Fill writes value into the first length bytes. The cursor does not move.
func (s *Stream) Fill(value byte, length int) error {
	return s.buf.Fill(value, length)
}

// RawAddress returns the block base address for native interop. It is
// valid only until Close; keep the stream reachable (runtime.KeepAlive)
// while native code holds the address.
func (s *Stream) RawAddress() (uintptr, error) {
	return s.buf.RawAddress()
}

// Flush always fails: writes land in the block immediately.
func (s *Stream) Flush() error {
	return errUnsupported("Flush", "raw memory has no write buffer to flush")
}

// Detach always fails: the block is the stream, there is nothing beneath it.
func (s *Stream) Detach() error {
	return errUnsupported("Detach", "raw memory cannot be detached from its stream")
}

// Close frees the block. Calling it again is a no-op.
func (s *Stream) Close() error {
	return s.buf.Release()
}

// Release is Close.
func (s *Stream) Release() error {
	return s.Close()
}

// Closed reports whether the stream has been released.
func (s *Stream) Closed() bool { return !s.buf.owned }

// Cap returns the fixed capacity in bytes.
func (s *Stream) Cap() int { return s.buf.capacity }

// Len returns the bytes left between the cursor and the end of the block,
// or 0 once closed.
func (s *Stream) Len() int {
	if s.Closed() {
		return 0
	}
	return int(s.remaining())
}

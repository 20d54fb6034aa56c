// File: api/stream.go
// Author: momentics <momentics@gmail.com>
//
// Stream contract over an owned raw memory block.

package api

import "io"

// Whence values accepted by Stream.Seek. They match the io package constants.
const (
	SeekStart   = io.SeekStart
	SeekCurrent = io.SeekCurrent
	SeekEnd     = io.SeekEnd
)

// Stream is a cursor-bearing, bounds-checked view over an owned block.
// Implementations are single-owner and not safe for concurrent use.
type Stream interface {
	io.Seeker
	io.Writer
	io.Closer

	// Tell returns the current cursor offset.
	Tell() (int64, error)

	// ReadN copies exactly n bytes from the cursor and advances it.
	ReadN(n int) ([]byte, error)

	// Fill writes value into the first length bytes of the block.
	Fill(value byte, length int) error

	// RawAddress returns the block base address for native interop.
	RawAddress() (uintptr, error)

	// Flush always fails: writes land directly in the block.
	Flush() error

	// Detach always fails: there is no transport underneath to hand back.
	Detach() error
}
